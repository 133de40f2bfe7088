// Package schedule runs a tick's script execution across all bots on a
// bounded worker pool, then applies the resulting intents and the automated
// systems sequentially inside one World transaction. Grounded on
// _examples/dm-vev-adamant/server/world/redstone's per-unit worker pattern
// and other_examples' mk48 server/world/sector.forEntitiesParallel
// work-splitting loop, expressed here with golang.org/x/sync/errgroup
// instead of a hand-rolled goroutine/WaitGroup pair since the teacher's own
// dependency set pulls in x/sync already (redstone/worker.go's command
// channel does the Minecraft equivalent of this by hand; scripts need
// bounded parallelism with error propagation, which errgroup gives for
// less plumbing).
package schedule

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hexswarm/sim/internal/world"
	"github.com/hexswarm/sim/pkg/hexgrid"
	"github.com/hexswarm/sim/pkg/intent"
	"github.com/hexswarm/sim/pkg/script"
)

// Job pairs a bot with the compiled program to run for it this tick. User
// is the account that owns Bot at job-construction time (the script
// author's aux.user_id in SPEC_FULL.md §6); RunScripts stamps it onto
// every intent the program produces so pkg/intent's ownership checks have
// something to compare against at application time, independent of
// whether Bot's owner changes mid-tick.
type Job struct {
	Bot     hexgrid.EntityId
	User    hexgrid.UserId
	Program script.Program
}

// RunScripts executes every job's program concurrently, bounded by
// maxWorkers in flight at once, each under perBotTimeout. A script that
// times out or errors contributes no intents but still contributes its
// ScriptHistory entry with the error recorded, so the script-history
// append phase (pkg/intent.Reconcile) can surface the failure to the
// owning player.
func RunScripts(ctx context.Context, view script.View, jobs []Job, maxWorkers int, perBotTimeout time.Duration) intent.Batch {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	results := make([]script.Result, len(jobs))
	histories := make([]intent.ScriptHistory, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			runCtx, cancel := context.WithTimeout(gctx, perBotTimeout)
			defer cancel()
			res, err := job.Program.Run(runCtx, job.Bot, view)
			stampUser(&res.Intents, job.User)
			results[i] = res
			errMsg := ""
			if err != nil {
				errMsg = err.Error()
			}
			histories[i] = intent.ScriptHistory{Bot: job.Bot, Error: errMsg}
			return nil
		})
	}
	// Script errors are captured per-job above rather than propagated, so a
	// single failing script cannot abort the tick for every other bot;
	// g.Wait() here only waits for completion.
	_ = g.Wait()

	var merged intent.Batch
	for _, r := range results {
		merged.Moves = append(merged.Moves, r.Intents.Moves...)
		merged.Attacks = append(merged.Attacks, r.Intents.Attacks...)
		merged.Mines = append(merged.Mines, r.Intents.Mines...)
		merged.Dropoffs = append(merged.Dropoffs, r.Intents.Dropoffs...)
		merged.Spawns = append(merged.Spawns, r.Intents.Spawns...)
		merged.Logs = append(merged.Logs, r.Intents.Logs...)
		merged.CachePaths = append(merged.CachePaths, r.Intents.CachePaths...)
		merged.MutPathCaches = append(merged.MutPathCaches, r.Intents.MutPathCaches...)
		merged.RoomTransits = append(merged.RoomTransits, r.Intents.RoomTransits...)
	}
	merged.ScriptHistories = append(merged.ScriptHistories, histories...)
	return merged
}

// stampUser fills User on every ownership-checked intent a job produced.
// Host functions (pkg/script/hostscript) only know their own bot, not the
// user account behind it, so the account is attached here instead, once
// per job, from the Job the scheduler was handed.
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

// RunTick executes one full tick: script execution against a frozen view,
// intent reconciliation, then the automated systems, advancing w.Time by
// one. Grounded on SPEC_FULL.md §4.8's full phase ordering and
// _examples/dm-vev-adamant/server/world/tick.go's per-tick loop shape.
// No TPS sampling is done here or in cmd/simd, which only calls RunTick
// from a fixed-interval ticker.
func RunTick(ctx context.Context, w *world.World, view script.View, jobs []Job, maxWorkers int, perBotTimeout time.Duration, postIntentSystems func(*world.World)) {
	batch := RunScripts(ctx, view, jobs, maxWorkers, perBotTimeout)
	w.ExecSync(func(w *world.World) {
		intent.Reconcile(w, batch)
		postIntentSystems(w)
		t := w.Time.UnwrapMut()
		t.Tick++
	})
}
