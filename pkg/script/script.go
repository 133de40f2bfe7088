// Package script defines the interface a bot's compiled program runs
// against, and the set of host functions SPEC_FULL.md names (console_log,
// log_scalar, make_point, world_position, find_closest_by_range,
// mine_resource, approach_entity, move_bot_to_position, unload,
// parse_find_constant). The concrete runtime lives in pkg/script/hostscript;
// this package only fixes the contract so the tick pipeline (pkg/schedule)
// and the distributed executor (pkg/distributed) can depend on an
// interface rather than a specific engine.
package script

import (
	"context"

	"github.com/hexswarm/sim/pkg/hexgrid"
	"github.com/hexswarm/sim/pkg/intent"
)

// Runtime compiles and executes one bot's script for a single tick,
// producing the intents it requested. Grounded on original_source's
// executor scripting boundary: each bot's program runs against a snapshot
// of world state exposed only through View and the host functions a
// Runtime installs, never against the
// world directly, so script execution can be parallelised across bots (see
// pkg/schedule) without a lock per call.
type Runtime interface {
	// Compile parses and validates source, returning an opaque program
	// handle Run can later execute repeatedly.
	Compile(source string) (Program, error)
}

// Program is a compiled script ready to run against a tick's view.
type Program interface {
	// Run executes the program for bot against view, within the deadline
	// carried by ctx (a per-bot wall-clock budget, enforced by the
	// pkg/schedule worker pool so a single runaway script cannot stall a
	// tick). It returns the intents the script issued and any log lines
	// written via console_log/log_scalar.
	Run(ctx context.Context, bot hexgrid.EntityId, view View) (Result, error)
}

// Result is one bot's script output for a tick.
type Result struct {
	Intents intent.Batch
	Logs    []string
}

// View is the read-only snapshot of world state host functions are allowed
// to query; it is populated once per tick before scripts run in parallel, so
// every bot's script sees a consistent frozen view regardless of execution
// order (see SPEC_FULL.md §9's resolution of the EntityComponent
// inverse-index Open Question).
type View interface {
	// Self returns the calling bot's own current position.
	Self(bot hexgrid.EntityId) (hexgrid.WorldPosition, bool)
	// FindClosestByRange returns the closest entity to center within radius
	// hex steps for which kind matches, the Go analogue of the
	// find_closest_by_range host function.
	FindClosestByRange(center hexgrid.WorldPosition, radius uint32, kind EntityKind) (hexgrid.EntityId, hexgrid.WorldPosition, bool)
	// EntityKindOf reports what kind of thing an entity is, used by scripts
	// deciding whether a nearby entity is a resource, bot or structure.
	EntityKindOf(id hexgrid.EntityId) (EntityKind, bool)
}

// EntityKind is the coarse classification find_closest_by_range filters on,
// the Go analogue of the original's FindQuery constants (parsed from script
// source by parse_find_constant).
type EntityKind uint8

const (
	KindAny EntityKind = iota
	KindBot
	KindStructure
	KindResource
)

// ParseFindConstant maps a script-visible constant name to an EntityKind,
// the host function the original engine calls parse_find_constant.
func ParseFindConstant(name string) (EntityKind, bool) {
	switch name {
	case "FIND_BOTS":
		return KindBot, true
	case "FIND_STRUCTURES":
		return KindStructure, true
	case "FIND_RESOURCES":
		return KindResource, true
	case "FIND_ANY":
		return KindAny, true
	default:
		return 0, false
	}
}
