package distributed

import (
	"github.com/google/uuid"
	"github.com/segmentio/fasthash/fnv1a"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/hexswarm/sim/pkg/hexgrid"
	"github.com/hexswarm/sim/pkg/intent"
)

// ScriptWork is one bot's script source bundled with its id and owning
// user, the unit a queen chunks across a tick's jobs. User travels with
// the work item (rather than being looked up drone-side) since a drone's
// world snapshot may lag the queen's and is not guaranteed to carry
// OwnedEntity rows for every bot in the chunk.
type ScriptWork struct {
	Bot    hexgrid.EntityId `msgpack:"bot"`
	User   hexgrid.UserId   `msgpack:"user"`
	Source string           `msgpack:"source"`
}

// JobChunk is one message published to the job queue: a slice of a tick's
// script work plus the world time it must be evaluated against, so a drone
// whose reply arrives after the queen has moved on can be recognised: Queen
// skips replies whose batch id or world time does not match. Grounded on queen.rs's per-chunk capnp message,
// reworked here as a msgpack-encoded struct.
type JobChunk struct {
	BatchID   uuid.UUID    `msgpack:"batch_id"`
	ChunkID   int          `msgpack:"chunk_id"`
	WorldTime uint64       `msgpack:"world_time"`
	Work      []ScriptWork `msgpack:"work"`
}

// JobResult is one drone's reply for a JobChunk.
type JobResult struct {
	BatchID   uuid.UUID        `msgpack:"batch_id"`
	ChunkID   int              `msgpack:"chunk_id"`
	WorldTime uint64           `msgpack:"world_time"`
	Intents   intent.Batch     `msgpack:"intents"`
	Errors    map[uint32]string `msgpack:"errors"`
}

// EncodeJobChunk serializes a JobChunk for transport over natsqueue.
func EncodeJobChunk(c JobChunk) ([]byte, error) { return msgpack.Marshal(c) }

// DecodeJobChunk deserializes a JobChunk.
func DecodeJobChunk(b []byte) (JobChunk, error) {
	var c JobChunk
	err := msgpack.Unmarshal(b, &c)
	return c, err
}

// EncodeJobResult serializes a JobResult for transport over natsqueue.
func EncodeJobResult(r JobResult) ([]byte, error) { return msgpack.Marshal(r) }

// DecodeJobResult deserializes a JobResult.
func DecodeJobResult(b []byte) (JobResult, error) {
	var r JobResult
	err := msgpack.Unmarshal(b, &r)
	return r, err
}

// chunkFingerprint folds a chunk's bot ids into one uint64 with FNV-1a, so
// queen and drone log lines can be correlated by a short value instead of
// dumping every bot id in the chunk.
func chunkFingerprint(work []ScriptWork) uint64 {
	h := fnv1a.Init64
	for _, w := range work {
		h = fnv1a.AddUint64(h, uint64(w.Bot))
	}
	return h
}

// chunkWork splits work into groups of at most chunkSize entries, the Go
// analogue of queen.rs's script_chunk_size-bounded split.
func chunkWork(work []ScriptWork, chunkSize int) [][]ScriptWork {
	if chunkSize <= 0 {
		chunkSize = len(work)
		if chunkSize == 0 {
			chunkSize = 1
		}
	}
	var chunks [][]ScriptWork
	for chunkSize > 0 && len(work) > 0 {
		n := chunkSize
		if n > len(work) {
			n = len(work)
		}
		chunks = append(chunks, work[:n])
		work = work[n:]
	}
	return chunks
}
