// Command simexport projects hex positions to cartesian coordinates for
// external renderers: feed it newline-delimited "roomQ roomR posQ posR"
// records (matching what an operator would scrape out of a log line or a
// sqlstore snapshot dump) and it prints one JSON object per line with the
// projected x/y/z. Kept as a standalone tool rather than built into simd
// since exporting is a one-shot, offline operation unrelated to the tick
// loop - replaces _examples/dm-vev-adamant's cmd/inspect_palette, a
// one-off NBT debugging script with no analogue in this domain.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hexswarm/sim/pkg/hexgrid"
)

// roomSpacing separates rooms along Z so their cartesian footprints never
// overlap; see hexgrid.WorldPosition.WorldVec3.
const roomSpacing = 64.0

type projected struct {
	Room string  `json:"room"`
	Pos  string  `json:"pos"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
}

func main() {
	scanner := bufio.NewScanner(os.Stdin)
	enc := json.NewEncoder(os.Stdout)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		wp, err := parseLine(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "simexport: skip %q: %v\n", line, err)
			continue
		}
		v := wp.WorldVec3(roomSpacing)
		_ = enc.Encode(projected{
			Room: wp.Room.String(),
			Pos:  wp.Pos.String(),
			X:    v[0], Y: v[1], Z: v[2],
		})
	}
}

func parseLine(line string) (hexgrid.WorldPosition, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return hexgrid.WorldPosition{}, fmt.Errorf("expected 4 fields, got %d", len(fields))
	}
	nums := make([]int32, 4)
	for i, f := range fields {
		n, err := strconv.ParseInt(f, 10, 32)
		if err != nil {
			return hexgrid.WorldPosition{}, fmt.Errorf("field %d: %w", i, err)
		}
		nums[i] = int32(n)
	}
	return hexgrid.WorldPosition{
		Room: hexgrid.NewRoom(nums[0], nums[1]),
		Pos:  hexgrid.NewAxial(nums[2], nums[3]),
	}, nil
}
