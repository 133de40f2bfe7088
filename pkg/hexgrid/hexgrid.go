// Package hexgrid implements the hexagonal axial coordinate system shared by
// every spatial table in the simulation core: room layout, in-room
// positions, pathfinding and the Morton-ordered spatial index all operate on
// the Axial type defined here.
package hexgrid

import "fmt"

// PosMax is the largest coordinate value a spatial table axis may hold. Both
// axes of an Axial must fit in 15 bits for the Morton index (see
// internal/store/morton.go); the 16th bit is reserved so interleaved keys
// never wrap around during comparisons.
const PosMax = 0x7FFF

// Axial is a 2-D hexagonal coordinate using the axial system described at
// https://www.redblobgames.com/grids/hexagons/#coordinates-axial. Q and R
// must lie in [0, PosMax] to be admitted into a spatial table.
type Axial struct {
	Q, R int32
}

// NewAxial builds an Axial from raw coordinates.
func NewAxial(q, r int32) Axial { return Axial{Q: q, R: r} }

// InDomain reports whether a lies within the domain a Morton table accepts.
func (a Axial) InDomain() bool {
	return a.Q&PosMax == a.Q && a.R&PosMax == a.R
}

// Add returns a+b.
func (a Axial) Add(b Axial) Axial { return Axial{Q: a.Q + b.Q, R: a.R + b.R} }

// Sub returns a-b.
func (a Axial) Sub(b Axial) Axial { return Axial{Q: a.Q - b.Q, R: a.R - b.R} }

// cube converts an axial coordinate to cube coordinates (x, y, z) with
// x+y+z == 0, used only to compute hex distance.
func (a Axial) cube() (x, y, z int32) {
	x = a.Q
	z = a.R
	y = -x - z
	return
}

func iabs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

// HexDistance returns the number of hex steps between a and b.
func (a Axial) HexDistance(b Axial) uint32 {
	ax, ay, az := a.cube()
	bx, by, bz := b.cube()
	dx, dy, dz := iabs32(ax-bx), iabs32(ay-by), iabs32(az-bz)
	return uint32(max32(dx, max32(dy, dz)))
}

func (a Axial) String() string { return fmt.Sprintf("(%d,%d)", a.Q, a.R) }

// Neighbours returns the six neighbours of a, starting with (q+1, r), which
// lies due east in Cartesian space, and proceeding counter-clockwise.
func (a Axial) Neighbours() [6]Axial {
	return [6]Axial{
		{a.Q + 1, a.R},
		{a.Q + 1, a.R - 1},
		{a.Q, a.R - 1},
		{a.Q - 1, a.R},
		{a.Q - 1, a.R + 1},
		{a.Q, a.R + 1},
	}
}

// Room identifies a room in the overworld grid; it is a distinct type from
// Axial so that room-keyed tables and in-room-position-keyed tables cannot
// be confused at compile time.
type Room struct{ Axial }

// NewRoom wraps an Axial as a Room identity.
func NewRoom(q, r int32) Room { return Room{Axial{Q: q, R: r}} }

func (r Room) String() string { return fmt.Sprintf("room%s", r.Axial) }

// Key renders a Room as a sparse-table key string.
func (r Room) Key() string { return fmt.Sprintf("%d,%d", r.Q, r.R) }

// WorldPosition locates a point inside a specific room.
type WorldPosition struct {
	Room Room
	Pos  Axial
}

func (p WorldPosition) String() string { return fmt.Sprintf("%s@%s", p.Pos, p.Room) }

// HexDistance is only meaningful for two positions in the same room; callers
// are expected to check Room equality first (see pkg/intent movement checks).
func (p WorldPosition) HexDistance(o WorldPosition) uint32 { return p.Pos.HexDistance(o.Pos) }
