// Package intent defines the per-tick actions a bot's script can request and
// the reconciler that applies them against a world.World in the fixed
// priority order SPEC_FULL.md §4.8 specifies. Grounded on original_source's
// simulation/src/intents/mod.rs Intents/BotIntents collection and the
// systems/*_intent_system.rs apply functions.
package intent

import (
	"github.com/hexswarm/sim/pkg/hexgrid"
)

// Check is the outcome of validating or applying an intent, mirroring the
// original engine's per-intent result enum so script authors get a reason
// for a failed action rather than a bare bool.
type Check uint8

const (
	Ok Check = iota
	NotOwner
	InvalidInput
	InvalidTarget
	NotInRange
	OperationFailed
	Empty
	Full
	PathNotFound
)

func (c Check) String() string {
	switch c {
	case Ok:
		return "ok"
	case NotOwner:
		return "not_owner"
	case InvalidInput:
		return "invalid_input"
	case InvalidTarget:
		return "invalid_target"
	case NotInRange:
		return "not_in_range"
	case OperationFailed:
		return "operation_failed"
	case Empty:
		return "empty"
	case Full:
		return "full"
	case PathNotFound:
		return "path_not_found"
	default:
		return "unknown"
	}
}

// Move requests that Bot step to Target, which must be one of Bot's current
// hex neighbours. User is the account the issuing script ran under,
// checked against Bot's OwnedEntity row at application time (see
// checkMove in apply.go) since the bot that produced this intent during
// script execution may have changed owners by the time it applies.
type Move struct {
	Bot    hexgrid.EntityId
	Target hexgrid.WorldPosition
	User   hexgrid.UserId
}

// Attack requests a melee strike by Bot against Target.
type Attack struct {
	Bot    hexgrid.EntityId
	Target hexgrid.EntityId
	User   hexgrid.UserId
}

// Mine requests that Bot extract energy from the resource entity at Target.
type Mine struct {
	Bot    hexgrid.EntityId
	Target hexgrid.EntityId
	User   hexgrid.UserId
}

// Dropoff requests that Bot deposit its carried resource into Target (a
// spawn structure).
type Dropoff struct {
	Bot    hexgrid.EntityId
	Target hexgrid.EntityId
	User   hexgrid.UserId
}

// Spawn requests that a spawn structure enqueue a new bot.
type Spawn struct {
	Spawn hexgrid.EntityId
}

// Log appends Payload to Bot's log for this tick.
type Log struct {
	Bot     hexgrid.EntityId
	Payload string
}

// CachePath requests that Bot's cached path be replaced wholesale with
// Steps.
type CachePath struct {
	Bot   hexgrid.EntityId
	Steps []hexgrid.Axial
}

// MutPathCache requests an in-place edit to Bot's cached path: Pop removes
// the front Pop entries before Push is appended.
type MutPathCache struct {
	Bot  hexgrid.EntityId
	Pop  int
	Push []hexgrid.Axial
}

// ScriptHistory appends one execution-outcome record for Bot.
type ScriptHistory struct {
	Bot      hexgrid.EntityId
	ScriptId hexgrid.ScriptId
	Error    string
}

// RoomTransit requests that Bot cross a bridge into an adjacent room,
// landing at Target. Cross-room pathfinding beyond the bridge itself is not
// implemented (see SPEC_FULL.md §9): the script is responsible for issuing
// a fresh CachePath once it observes the bot in the new room.
type RoomTransit struct {
	Bot    hexgrid.EntityId
	Bridge hexgrid.EntityId
	Target hexgrid.WorldPosition
}

// Batch collects every intent a tick's script-execution phase produced,
// parallel to the original's per-type SOA Intents<T> singleton tables.
type Batch struct {
	Moves          []Move
	Attacks        []Attack
	Mines          []Mine
	Dropoffs       []Dropoff
	Spawns         []Spawn
	Logs           []Log
	CachePaths     []CachePath
	MutPathCaches  []MutPathCache
	ScriptHistories []ScriptHistory
	RoomTransits   []RoomTransit
}
