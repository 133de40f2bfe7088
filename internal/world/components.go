// Package world assembles the per-component tables from internal/store into
// the World aggregate and drives the tick pipeline over them. Grounded on
// _examples/dm-vev-adamant/server/world/world.go's World struct and its
// Exec/tick loop, adapted from a Minecraft block/entity world to the
// simulation's entity-component model.
package world

import (
	"time"

	"github.com/hexswarm/sim/pkg/hexgrid"
)

// Bot marks an entity as a player-owned unit capable of receiving intents.
type Bot struct {
	UserId hexgrid.UserId
}

// Structure marks an entity as a non-mobile, player-placed structure (a
// spawn, a bridge). Kind is one of the StructureKind constants.
type Structure struct {
	Kind StructureKind
}

// StructureKind enumerates placeable structure types.
type StructureKind uint8

const (
	StructureSpawn StructureKind = iota
	StructureBridge
)

// Hp is hit points; an entity with Hp.Current <= 0 is queued for deferred
// deletion by the death system.
type Hp struct {
	Current int32
	Max     int32
}

// Carry is resource-carrying capacity, mutated by mine and dropoff intents.
type Carry struct {
	Amount int32
	Max    int32
}

// Energy is the resource quantity held by a mineral/energy-source entity,
// drained by mine intents and regenerated by the energy-regen system.
type Energy struct {
	Amount int32
	Max    int32
}

// EnergyRegen configures the passive regeneration rate applied to Energy
// each tick by the energy-regen system.
type EnergyRegen struct {
	AmountPerTick int32
}

// Decay ages an entity toward death: every Eta ticks it loses HpAmount hit
// points, until it reaches zero and is queued for deletion. T tracks ticks
// remaining until the next decay application.
type Decay struct {
	Eta      uint32
	T        uint32
	HpAmount int32
}

// OwnedEntity records the user that owns an entity (a bot, a structure),
// distinct from Bot.UserId so that structures - which are not Bots - can
// still be attributed to an owner.
type OwnedEntity struct {
	UserId hexgrid.UserId
}

// EntityComponent is the generic script-assigned-program component: the
// entity's currently bound ScriptId, used by the tick
// pipeline's script execution phase to resolve which compiled program to
// run for a bot this tick.
type EntityComponent struct {
	ScriptId hexgrid.ScriptId
}

// Terrain marks a position as impassable or passable terrain, keyed
// separately from Position because terrain has no owning entity.
type Terrain struct {
	Kind TerrainKind
}

// TerrainKind enumerates terrain cell kinds.
type TerrainKind uint8

const (
	TerrainPlain TerrainKind = iota
	TerrainWall
	TerrainBridge
)

// RoomConnection records that two rooms are adjacent and transit between
// them is permitted via the bridge/transit intent (see pkg/intent).
type RoomConnection struct {
	A, B hexgrid.Room
}

// Script holds a compiled program's source metadata; the compiled bytecode
// or AST itself is owned by pkg/script's Runtime implementations, not by
// the world, since script compilation is independent of simulation state.
type Script struct {
	Id      hexgrid.ScriptId
	Owner   hexgrid.UserId
	Version string // semver, validated with golang.org/x/mod/semver
	Name    string
	Source  string
}

// LogEntry is one log line for an entity, keyed by EntityTime so the log
// table can be pruned per-entity by age. Scripts append lines via
// console_log or log_scalar; pkg/automation also writes one for each newly
// spawned bot.
type LogEntry struct {
	Tick    uint64
	Payload string
}

// ScriptHistoryEntry records one executed script invocation's outcome, a
// supplemented feature grounded in original_source's script execution
// telemetry: callers can inspect why a bot's last tick did what it did.
type ScriptHistoryEntry struct {
	Tick     uint64
	ScriptId hexgrid.ScriptId
	Error    string
}

// PathCache holds a bot's precomputed upcoming steps as a plain slice,
// capped at GameConfig.PathCacheLen so a long A* solution never grows the
// component table unbounded. Steps change only through CachePath and
// MutPathCache intents: move resolution does not read or pop the cache,
// and nothing in the tick pipeline refills it when it runs low.
type PathCache struct {
	Steps []hexgrid.Axial
}

// MeleeAttackComponent is a supplemented feature grounded in
// original_source's bot_components.rs MeleeAttackComponent: it marks a bot
// as capable of issuing attack intents and carries the strength used when
// computing damage.
type MeleeAttackComponent struct {
	Strength int32
}

// SpawnQueueComponent is a supplemented feature: a spawn structure's queue
// of pending continuous-spawn requests, each counting down TimeToSpawn
// before pkg/automation's spawn progression produces a new bot.
type SpawnQueueComponent struct {
	Queue []SpawnQueueEntry
}

// SpawnQueueEntry is one pending spawn request.
type SpawnQueueEntry struct {
	TimeToSpawn uint32
	EnergyCost  int32
}

// RoomProperties is a per-room singleton describing static room-level
// configuration (bridge positions are derived from RoomConnection + Terrain,
// this only carries metadata that has no other natural home).
type RoomProperties struct {
	Room      hexgrid.Room
	OwnerUser hexgrid.UserId
	Name      string
}

// GameConfig is the world-scoped singleton carrying tunables that the tick
// pipeline and automation systems read every tick (mine amount, max
// pathfinding iterations, mineral respawn bound, ...). Populated from
// internal/config at world construction.
type GameConfig struct {
	MineAmount              int32
	SpawnEnergyThreshold    int32
	NewBotHp                int32
	NewBotCarryMax          int32
	NewBotDecayEta          uint32
	NewBotDecayTAmount      int32
	MaxPathfindingIterations int
	PathCacheLen            int
	MineralRespawnMaxRetries int
	LogRetentionTicks        uint64
}

// WorldTime is the world-scoped singleton holding the current tick number,
// which pkg/schedule.RunTick advances by one per tick. StartedAt is not set
// by any code in this module and stays the zero time.
type WorldTime struct {
	Tick      uint64
	StartedAt time.Time
}
