// Command simworker runs a drone process: it holds no authoritative world
// state of its own, only a local terrain/script cache, and spends its time
// executing script-job chunks handed to it by whichever node currently
// holds the queen lease. Kept thin for the same reason cmd/simd is: actual
// process wiring is outside this exercise's scope, only enough to start the
// loop lives here.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/hexswarm/sim/internal/config"
	"github.com/hexswarm/sim/pkg/distributed"
	"github.com/hexswarm/sim/pkg/script/hostscript"
	"github.com/hexswarm/sim/pkg/transport/localcache"
	"github.com/hexswarm/sim/pkg/transport/natsqueue"
	"github.com/hexswarm/sim/pkg/transport/redislock"
	"github.com/redis/go-redis/v9"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfgPath := os.Getenv("SIM_CONFIG_FILE")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Error("simworker: load config", "err", err)
		os.Exit(1)
	}
	if cfg.Services.RedisURL == "" || cfg.Services.NatsURL == "" {
		log.Error("simworker: SIM_REDIS_URL and SIM_NATS_URL are required")
		os.Exit(1)
	}

	opts, err := redis.ParseURL(cfg.Services.RedisURL)
	if err != nil {
		log.Error("simworker: parse redis url", "err", err)
		os.Exit(1)
	}
	rdb := redis.NewClient(opts)
	mutex := redislock.New(rdb, "sim:queen_lease", time.Duration(cfg.Services.MutexExpiryMs)*time.Millisecond)

	queue, err := natsqueue.Connect(cfg.Services.NatsURL)
	if err != nil {
		log.Error("simworker: connect nats", "err", err)
		os.Exit(1)
	}
	defer queue.Close()

	cachePath := os.Getenv("SIM_LOCAL_CACHE_PATH")
	if cachePath == "" {
		cachePath = "./simworker-cache"
	}
	cache, err := localcache.Open(cachePath)
	if err != nil {
		log.Error("simworker: open local cache", "err", err)
		os.Exit(1)
	}
	defer cache.Close()

	token := uuid.NewString()
	drone := distributed.NewDrone(log, mutex, queue, hostscript.New(), token)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("simworker: ready", "token", token)
	watchRole(ctx, log, drone)
	log.Info("simworker: shutting down")
}

// watchRole periodically checks whether this drone should promote itself to
// queen (the lease holder has gone quiet past roleCheckBias), logging the
// transition. Promotion itself - taking over chunk dispatch - is the queen
// binary's job; a drone noticing it holds the lease only means the operator
// should point a simd instance at this node.
func watchRole(ctx context.Context, log *slog.Logger, drone *distributed.Drone) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			promoted, err := drone.UpdateRole(ctx)
			if err != nil {
				log.Warn("simworker: role check failed", "err", err)
				continue
			}
			if promoted {
				log.Info("simworker: queen lease is unheld, acquired it")
			}
		}
	}
}
