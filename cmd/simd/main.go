// Command simd runs the simulation's tick loop against a local World in a
// single process. It does not connect to Redis, NATS or Postgres and takes
// no part in queen/drone leader election, even when the
// SIM_REDIS_URL/SIM_NATS_URL/SIM_POSTGRES_URL environment variables are set.
// Kept intentionally thin: wiring here is just enough to start the
// process, grounded on _examples/dm-vev-adamant's cmd/ convention of a
// small main that constructs a Config and starts a long-lived loop.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hexswarm/sim/internal/config"
	"github.com/hexswarm/sim/internal/world"
	"github.com/hexswarm/sim/pkg/automation"
	"github.com/hexswarm/sim/pkg/hexgrid"
	"github.com/hexswarm/sim/pkg/schedule"
	"github.com/hexswarm/sim/pkg/script"
	"github.com/hexswarm/sim/pkg/script/hostscript"
	"github.com/hexswarm/sim/pkg/worldview"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfgPath := os.Getenv("SIM_CONFIG_FILE")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Error("simd: load config", "err", err)
		os.Exit(1)
	}

	w := world.New(cfg.GameConfig())
	defer w.Close()

	runtime := hostscript.NewCache(hostscript.New())
	tickInterval := time.Duration(cfg.Tick.IntervalMs) * time.Millisecond

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("simd: starting", "tick_interval", tickInterval)
	runLoop(ctx, log, w, runtime, tickInterval)
}

func runLoop(ctx context.Context, log *slog.Logger, w *world.World, cache *hostscript.Cache, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("simd: shutting down")
			return
		case <-ticker.C:
			runOneTick(ctx, w, cache)
		}
	}
}

// runOneTick freezes a view and compiles every bot's currently bound script
// inside one Exec transaction, then hands the compiled jobs to
// schedule.RunTick, which runs them in parallel outside the transaction and
// reconciles the resulting intents in a second transaction. Compilation
// goes through a hostscript.Cache keyed by source hash, so a tick with a
// thousand bots all running the same handful of scripts only compiles each
// distinct script body once.
func runOneTick(ctx context.Context, w *world.World, cache *hostscript.Cache) {
	var jobs []schedule.Job
	var view script.View
	w.ExecSync(func(w *world.World) {
		view = worldview.Build(w)
		w.EntityComponents.Iter(func(id hexgrid.EntityId, ec *world.EntityComponent) bool {
			scr, ok := w.Scripts.Get(ec.ScriptId.String())
			if !ok || scr.Source == "" {
				return true
			}
			prog, err := cache.Compile(scr.Source)
			if err != nil {
				return true
			}
			owner, _ := w.OwnedEntities.Get(id)
			jobs = append(jobs, schedule.Job{Bot: id, User: owner.UserId, Program: prog})
			return true
		})
	})
	schedule.RunTick(ctx, w, view, jobs, 8, 20*time.Millisecond, automation.Run)
}
