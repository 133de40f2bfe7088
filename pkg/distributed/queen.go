package distributed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hexswarm/sim/pkg/intent"
	"github.com/hexswarm/sim/pkg/script"
	"github.com/hexswarm/sim/pkg/transport/natsqueue"
	"github.com/hexswarm/sim/pkg/transport/redislock"
	"github.com/hexswarm/sim/pkg/transport/sqlstore"
)

// maxReenqueues bounds how many times an unanswered chunk is republished
// before the queen gives up waiting and executes it locally, matching
// queen.rs's ArrayVec<[_;3]> retry bound.
const maxReenqueues = 3

// chunkStatus tracks one in-flight chunk's retry bookkeeping, the Go
// counterpart of queen.rs's ScriptBatchStatus{started, finished}.
type chunkStatus struct {
	started   time.Time
	finished  bool
	reenqueue int
}

// Queen is the node currently holding the leader mutex: it owns the
// authoritative world state for a tick, shards script work across drones,
// and falls back to local execution for any chunk that does not answer in
// time.
type Queen struct {
	log     *slog.Logger
	mutex   *redislock.Mutex
	queue   *natsqueue.Queue
	store   *sqlstore.Store
	runtime script.Runtime
	token   string

	chunkSize      int
	chunkTimeout   time.Duration
	localExecutor  func(ctx context.Context, work []ScriptWork, view script.View) JobResult

	mu      sync.Mutex
	pending map[int]*chunkStatus
	results chan JobResult
}

// NewQueen constructs a Queen. token identifies this node in the leader
// mutex and must be stable across this process's lifetime.
func NewQueen(log *slog.Logger, mutex *redislock.Mutex, queue *natsqueue.Queue, store *sqlstore.Store, runtime script.Runtime, token string, chunkSize int, chunkTimeout time.Duration) *Queen {
	q := &Queen{
		log: log, mutex: mutex, queue: queue, store: store, runtime: runtime, token: token,
		chunkSize: chunkSize, chunkTimeout: chunkTimeout,
		pending: make(map[int]*chunkStatus),
		results: make(chan JobResult, 64),
	}
	q.localExecutor = q.executeChunkLocally
	sub, err := queue.SubscribeResults(q.onResult)
	if err != nil {
		log.Error("queen: subscribe results failed", "err", err)
	} else {
		_ = sub
	}
	return q
}

func (q *Queen) onResult(payload []byte) {
	res, err := DecodeJobResult(payload)
	if err != nil {
		q.log.Warn("queen: malformed job result", "err", err)
		return
	}
	select {
	case q.results <- res:
	default:
		q.log.Warn("queen: result channel full, dropping", "chunk", res.ChunkID)
	}
}

// UpdateRole attempts to (re-)acquire the leader mutex, biased toward
// renewal over fresh acquisition so an already-leading queen keeps its
// role under contention, mirroring queen.rs's update_role.
func (q *Queen) UpdateRole(ctx context.Context) error {
	renewed, err := q.mutex.Renew(ctx, q.token)
	if err != nil {
		return fmt.Errorf("distributed: renew: %w", err)
	}
	if renewed {
		return nil
	}
	acquired, err := q.mutex.TryAcquire(ctx, q.token)
	if err != nil {
		return fmt.Errorf("distributed: acquire: %w", err)
	}
	if !acquired {
		return ErrQueenRoleLost
	}
	return nil
}

// RunTick shards work across chunkSize-sized jobs, executes the first chunk
// locally, enqueues the rest for drones, and waits up to chunkTimeout per
// chunk for a reply before re-enqueueing (up to maxReenqueues times) and
// finally falling back to local execution. Grounded on queen.rs's
// forward_queen / execute_batch_script_jobs.
func (q *Queen) RunTick(ctx context.Context, worldTime uint64, work []ScriptWork, view script.View) (intent.Batch, error) {
	if err := q.UpdateRole(ctx); err != nil {
		return intent.Batch{}, err
	}
	if err := q.store.SetFence(ctx, "WORLD_TIME_FENCE", worldTime); err != nil {
		return intent.Batch{}, fmt.Errorf("distributed: set world time fence: %w", err)
	}

	chunks := chunkWork(work, q.chunkSize)
	batchID := uuid.New()
	var merged intent.Batch
	if len(chunks) == 0 {
		return merged, nil
	}

	local := q.localExecutor(ctx, chunks[0], view)
	merged = mergeResult(merged, local)

	q.mu.Lock()
	q.pending = make(map[int]*chunkStatus, len(chunks)-1)
	for i := 1; i < len(chunks); i++ {
		q.pending[i] = &chunkStatus{started: time.Now()}
	}
	q.mu.Unlock()

	for i := 1; i < len(chunks); i++ {
		payload, err := EncodeJobChunk(JobChunk{BatchID: batchID, ChunkID: i, WorldTime: worldTime, Work: chunks[i]})
		if err != nil {
			return merged, fmt.Errorf("distributed: encode chunk %d: %w", i, err)
		}
		if err := q.queue.EnqueueJob(payload); err != nil {
			return merged, fmt.Errorf("distributed: enqueue chunk %d: %w", i, err)
		}
		q.log.Debug("queen: enqueued chunk", "chunk", i, "bots", len(chunks[i]), "fingerprint", chunkFingerprint(chunks[i]))
	}

	if err := q.store.SetFence(ctx, "UPDATE_FENCE", worldTime); err != nil {
		return merged, fmt.Errorf("distributed: set update fence: %w", err)
	}

	merged = q.drain(ctx, batchID, worldTime, chunks, merged, view)
	return merged, nil
}

func (q *Queen) drain(ctx context.Context, batchID uuid.UUID, worldTime uint64, chunks [][]ScriptWork, merged intent.Batch, view script.View) intent.Batch {
	for {
		q.mu.Lock()
		remaining := len(q.pending)
		q.mu.Unlock()
		if remaining == 0 {
			return merged
		}
		select {
		case <-ctx.Done():
			return q.fallbackRemaining(ctx, chunks, merged, view)
		case res := <-q.results:
			if res.BatchID != batchID || res.WorldTime != worldTime {
				continue
			}
			q.mu.Lock()
			if st, ok := q.pending[res.ChunkID]; ok {
				st.finished = true
				delete(q.pending, res.ChunkID)
			}
			q.mu.Unlock()
			merged = mergeResult(merged, res)
		case <-time.After(q.chunkTimeout):
			merged = q.retryOrFallback(ctx, batchID, worldTime, chunks, merged, view)
		}
	}
}

func (q *Queen) retryOrFallback(ctx context.Context, batchID uuid.UUID, worldTime uint64, chunks [][]ScriptWork, merged intent.Batch, view script.View) intent.Batch {
	q.mu.Lock()
	var toFallback []int
	for idx, st := range q.pending {
		if st.finished {
			continue
		}
		if st.reenqueue >= maxReenqueues {
			toFallback = append(toFallback, idx)
			continue
		}
		st.reenqueue++
		st.started = time.Now()
		payload, err := EncodeJobChunk(JobChunk{BatchID: batchID, ChunkID: idx, WorldTime: worldTime, Work: chunks[idx]})
		if err == nil {
			_ = q.queue.EnqueueJob(payload)
		}
	}
	for _, idx := range toFallback {
		delete(q.pending, idx)
	}
	q.mu.Unlock()

	for _, idx := range toFallback {
		res := q.localExecutor(ctx, chunks[idx], view)
		merged = mergeResult(merged, res)
	}
	return merged
}

func (q *Queen) fallbackRemaining(ctx context.Context, chunks [][]ScriptWork, merged intent.Batch, view script.View) intent.Batch {
	q.mu.Lock()
	remaining := make([]int, 0, len(q.pending))
	for idx := range q.pending {
		remaining = append(remaining, idx)
	}
	q.pending = map[int]*chunkStatus{}
	q.mu.Unlock()
	for _, idx := range remaining {
		res := q.localExecutor(ctx, chunks[idx], view)
		merged = mergeResult(merged, res)
	}
	return merged
}

// executeChunkLocally compiles and runs every script in work against view
// using the queen's own runtime, used both for chunk 0 (always local) and
// as the timeout fallback for any chunk a drone never answered.
func (q *Queen) executeChunkLocally(ctx context.Context, work []ScriptWork, view script.View) JobResult {
	var merged intent.Batch
	errs := make(map[uint32]string)
	for _, w := range work {
		prog, err := q.runtime.Compile(w.Source)
		if err != nil {
			errs[uint32(w.Bot)] = err.Error()
			continue
		}
		res, err := prog.Run(ctx, w.Bot, view)
		if err != nil {
			errs[uint32(w.Bot)] = err.Error()
		}
		stampUser(&res.Intents, w.User)
		merged = mergeIntents(merged, res.Intents)
	}
	return JobResult{Intents: merged, Errors: errs}
}

func mergeResult(into intent.Batch, r JobResult) intent.Batch {
	return mergeIntents(into, r.Intents)
}

func mergeIntents(a, b intent.Batch) intent.Batch {
	a.Moves = append(a.Moves, b.Moves...)
	a.Attacks = append(a.Attacks, b.Attacks...)
	a.Mines = append(a.Mines, b.Mines...)
	a.Dropoffs = append(a.Dropoffs, b.Dropoffs...)
	a.Spawns = append(a.Spawns, b.Spawns...)
	a.Logs = append(a.Logs, b.Logs...)
	a.CachePaths = append(a.CachePaths, b.CachePaths...)
	a.MutPathCaches = append(a.MutPathCaches, b.MutPathCaches...)
	a.ScriptHistories = append(a.ScriptHistories, b.ScriptHistories...)
	a.RoomTransits = append(a.RoomTransits, b.RoomTransits...)
	return a
}
