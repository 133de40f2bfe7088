package distributed

import (
	"context"
	"log/slog"
	"time"

	"github.com/hexswarm/sim/pkg/hexgrid"
	"github.com/hexswarm/sim/pkg/intent"
	"github.com/hexswarm/sim/pkg/script"
	"github.com/hexswarm/sim/pkg/transport/natsqueue"
	"github.com/hexswarm/sim/pkg/transport/redislock"
)

// roleCheckBias is the delay a drone waits before attempting to promote
// itself to queen, biasing promotion toward whichever node was already
// leading. Grounded on original_source's drone.rs update_role, which waits
// 50ms before contending for the mutex.
const roleCheckBias = 50 * time.Millisecond

// Drone consumes script-execution jobs from the queue and replies with
// their results, while periodically checking whether it should promote
// itself to queen (the current queen's lease has lapsed).
type Drone struct {
	log     *slog.Logger
	mutex   *redislock.Mutex
	queue   *natsqueue.Queue
	runtime script.Runtime
	token   string

	view script.View
}

// NewDrone constructs a Drone and subscribes it to the job queue at once.
// The drone's view starts nil and changes only through SetView, so jobs
// received before the first SetView call are handled with a nil view.
func NewDrone(log *slog.Logger, mutex *redislock.Mutex, queue *natsqueue.Queue, runtime script.Runtime, token string) *Drone {
	d := &Drone{log: log, mutex: mutex, queue: queue, runtime: runtime, token: token}
	if _, err := queue.SubscribeJobs(d.handleJob); err != nil {
		log.Error("drone: subscribe jobs failed", "err", err)
	}
	return d
}

// SetView installs the script.View jobs should run against; called by the
// owning process whenever it refreshes its local copy of world state.
func (d *Drone) SetView(v script.View) { d.view = v }

func (d *Drone) handleJob(payload []byte) {
	chunk, err := DecodeJobChunk(payload)
	if err != nil {
		d.log.Warn("drone: malformed job chunk", "err", err)
		return
	}
	d.log.Debug("drone: received chunk", "chunk", chunk.ChunkID, "bots", len(chunk.Work), "fingerprint", chunkFingerprint(chunk.Work))
	ctx := context.Background()
	merged, errs := d.execute(ctx, chunk.Work)
	result := JobResult{BatchID: chunk.BatchID, ChunkID: chunk.ChunkID, WorldTime: chunk.WorldTime, Intents: merged, Errors: errs}
	out, err := EncodeJobResult(result)
	if err != nil {
		d.log.Error("drone: encode result failed", "err", err)
		return
	}
	if err := d.queue.PublishResult(out); err != nil {
		d.log.Error("drone: publish result failed", "err", err)
	}
}

func (d *Drone) execute(ctx context.Context, work []ScriptWork) (merged intent.Batch, errs map[uint32]string) {
	view := d.view
	errs = make(map[uint32]string)
	for _, w := range work {
		prog, err := d.runtime.Compile(w.Source)
		if err != nil {
			errs[uint32(w.Bot)] = err.Error()
			continue
		}
		out, err := prog.Run(ctx, w.Bot, view)
		if err != nil {
			errs[uint32(w.Bot)] = err.Error()
		}
		stampUser(&out.Intents, w.User)
		merged = mergeIntents(merged, out.Intents)
	}
	return merged, errs
}

// stampUser fills User on every ownership-checked intent a bot's script
// produced; a drone only knows w.User from its ScriptWork item, never from
// a world it does not own, so this runs in place of pkg/schedule's
// equivalent step for the local single-process path.
func stampUser(batch *intent.Batch, user hexgrid.UserId) {
	for i := range batch.Moves {
		batch.Moves[i].User = user
	}
	for i := range batch.Attacks {
		batch.Attacks[i].User = user
	}
	for i := range batch.Mines {
		batch.Mines[i].User = user
	}
	for i := range batch.Dropoffs {
		batch.Dropoffs[i].User = user
	}
}

// UpdateRole waits roleCheckBias then attempts to acquire the leader mutex
// if it is currently unheld, the Go analogue of drone.rs's biased SET NX PX
// promotion attempt. It reports whether this node is now the queen.
func (d *Drone) UpdateRole(ctx context.Context) (bool, error) {
	select {
	case <-time.After(roleCheckBias):
	case <-ctx.Done():
		return false, ctx.Err()
	}
	holder, err := d.mutex.Holder(ctx)
	if err != nil {
		return false, err
	}
	if holder != "" {
		return false, nil
	}
	return d.mutex.TryAcquire(ctx, d.token)
}
