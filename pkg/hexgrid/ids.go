package hexgrid

import (
	"strconv"

	"github.com/google/uuid"
)

// EntityId uniquely identifies an entity for the lifetime of a world. Ids
// are handed out by World.InsertEntity and are never reused.
type EntityId uint32

// UserId identifies a player account.
type UserId uuid.UUID

// ScriptId identifies a compiled script program.
type ScriptId uuid.UUID

// EntityTime is a compound key used by the log table: one row per entity
// per tick it logged something.
type EntityTime struct {
	Entity EntityId
	Tick   uint64
}

// EmptyKey is a zero-size key type. No table in this module uses it:
// store.SingletonTable holds its single row without any key.
type EmptyKey struct{}

func (i EntityId) String() string { return strconv.FormatUint(uint64(i), 10) }

// Key renders an EntityTime as a sparse-table key string; used by the log
// and script-history tables, which are keyed on (entity, tick) but need an
// store.Ordered key type rather than a struct.
func (t EntityTime) Key() string {
	return strconv.FormatUint(uint64(t.Entity), 10) + ":" + strconv.FormatUint(t.Tick, 10)
}

func (u UserId) String() string   { return uuid.UUID(u).String() }
func (s ScriptId) String() string { return uuid.UUID(s).String() }
