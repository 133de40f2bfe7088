// Package distributed implements the queen/drone distributed tick
// executor: one node (the queen) holds the authoritative world state and
// shards a tick's script jobs across drones, falling back to local
// execution when a drone fails to answer in time. Grounded on
// original_source's executor/mp_executor/{queen,drone,error}.rs, reworked
// against this module's redislock/natsqueue/sqlstore transport adapters in
// place of the original's redis+lapin+sqlx+rmp_serde+capnp stack.
package distributed

import (
	"errors"
	"fmt"
)

// ErrQueenRoleLost is returned when a queen's lease mutex could not be
// renewed, meaning another node has already taken over. The caller must
// stop acting as queen and fall back to drone behaviour immediately.
var ErrQueenRoleLost = errors.New("distributed: queen role lost")

// ErrWorldTimeMismatch describes a drone reply that references a world time
// the queen no longer recognises as current, meaning the reply arrived too
// late to apply. Queen does not return it: its drain loop skips such
// replies without reporting them.
type ErrWorldTimeMismatch struct {
	Requested, Actual uint64
}

func (e *ErrWorldTimeMismatch) Error() string {
	return fmt.Sprintf("distributed: world time mismatch: requested %d, actual %d", e.Requested, e.Actual)
}
