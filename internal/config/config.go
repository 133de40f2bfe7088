// Package config loads the simulation's TOML configuration file and applies
// SIM_*-prefixed environment variable overrides, grounded on
// _examples/dm-vev-adamant/server/whitelist.go's pelletier/go-toml usage and
// server/conf.go's UserConfig-to-Config conversion pattern.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml"

	"github.com/hexswarm/sim/internal/world"
)

// FileConfig is the on-disk TOML shape; it mirrors GameConfig plus the
// external-service connection strings SPEC_FULL.md §6 names.
type FileConfig struct {
	Game struct {
		MineAmount               int32
		SpawnEnergyThreshold     int32
		NewBotHp                 int32
		NewBotCarryMax           int32
		NewBotDecayEta           uint32
		NewBotDecayTAmount       int32
		MaxPathfindingIterations int
		PathCacheLen             int
		MineralRespawnMaxRetries int
		LogRetentionTicks        uint64
	}
	Tick struct {
		IntervalMs     int
		ActorCount     int
		ScriptChunkSize int
	}
	Services struct {
		RedisURL      string
		PostgresURL   string
		NatsURL       string
		MutexExpiryMs int
	}
}

// Default returns the configuration new worlds use absent a config file or
// environment overrides.
func Default() FileConfig {
	var c FileConfig
	c.Game.MineAmount = 10
	c.Game.SpawnEnergyThreshold = 500
	c.Game.NewBotHp = 100
	c.Game.NewBotCarryMax = 50
	c.Game.NewBotDecayEta = 20
	c.Game.NewBotDecayTAmount = 100
	c.Game.MaxPathfindingIterations = 1000
	c.Game.PathCacheLen = 32
	c.Game.MineralRespawnMaxRetries = 10
	c.Game.LogRetentionTicks = 10_000
	c.Tick.IntervalMs = 50
	c.Tick.ActorCount = 1
	c.Tick.ScriptChunkSize = 1024
	c.Services.MutexExpiryMs = 2000
	return c
}

// Load reads path (if it exists) over Default(), then applies SIM_*
// environment variable overrides, matching SPEC_FULL.md §6's documented
// variable set (SIM_REDIS_URL, SIM_POSTGRES_URL, SIM_NATS_URL,
// SIM_MUTEX_EXPIRY_MS, SIM_SCRIPT_CHUNK_SIZE, SIM_TICK_INTERVAL_MS,
// SIM_ACTOR_COUNT, SIM_MAX_PATHFINDING_ITERATIONS).
func Load(path string) (FileConfig, error) {
	c := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return c, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if err := toml.Unmarshal(b, &c); err != nil {
			return c, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	applyEnvOverrides(&c)
	return c, nil
}

func applyEnvOverrides(c *FileConfig) {
	if v := os.Getenv("SIM_REDIS_URL"); v != "" {
		c.Services.RedisURL = v
	}
	if v := os.Getenv("SIM_POSTGRES_URL"); v != "" {
		c.Services.PostgresURL = v
	}
	if v := os.Getenv("SIM_NATS_URL"); v != "" {
		c.Services.NatsURL = v
	}
	if v, ok := envInt("SIM_MUTEX_EXPIRY_MS"); ok {
		c.Services.MutexExpiryMs = v
	}
	if v, ok := envInt("SIM_SCRIPT_CHUNK_SIZE"); ok {
		c.Tick.ScriptChunkSize = v
	}
	if v, ok := envInt("SIM_TICK_INTERVAL_MS"); ok {
		c.Tick.IntervalMs = v
	}
	if v, ok := envInt("SIM_ACTOR_COUNT"); ok {
		c.Tick.ActorCount = v
	}
	if v, ok := envInt("SIM_MAX_PATHFINDING_ITERATIONS"); ok {
		c.Game.MaxPathfindingIterations = v
	}
}

func envInt(name string) (int, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// GameConfig converts the loaded Game section to world.GameConfig.
func (c FileConfig) GameConfig() world.GameConfig {
	return world.GameConfig{
		MineAmount:               c.Game.MineAmount,
		SpawnEnergyThreshold:     c.Game.SpawnEnergyThreshold,
		NewBotHp:                 c.Game.NewBotHp,
		NewBotCarryMax:           c.Game.NewBotCarryMax,
		NewBotDecayEta:           c.Game.NewBotDecayEta,
		NewBotDecayTAmount:       c.Game.NewBotDecayTAmount,
		MaxPathfindingIterations: c.Game.MaxPathfindingIterations,
		PathCacheLen:             c.Game.PathCacheLen,
		MineralRespawnMaxRetries: c.Game.MineralRespawnMaxRetries,
		LogRetentionTicks:        c.Game.LogRetentionTicks,
	}
}
