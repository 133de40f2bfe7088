package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultMatchesGameConfigConversion(t *testing.T) {
	c := Default()
	gc := c.GameConfig()
	if gc.MineAmount != c.Game.MineAmount {
		t.Fatalf("expected GameConfig() to carry Game.MineAmount, got %d vs %d", gc.MineAmount, c.Game.MineAmount)
	}
	if gc.LogRetentionTicks != 10_000 {
		t.Fatalf("expected default LogRetentionTicks=10000, got %d", gc.LogRetentionTicks)
	}
}

func TestLoadMissingFileFallsBackToDefault(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Game.MineAmount != Default().Game.MineAmount {
		t.Fatal("expected default config when file does not exist")
	}
}

func TestLoadParsesTomlOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sim.toml")
	body := "[Game]\nMineAmount = 42\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Game.MineAmount != 42 {
		t.Fatalf("expected MineAmount=42 from file, got %d", c.Game.MineAmount)
	}
	if c.Game.NewBotHp != Default().Game.NewBotHp {
		t.Fatal("expected unspecified fields to keep their default value")
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("SIM_REDIS_URL", "redis://example:6379")
	t.Setenv("SIM_ACTOR_COUNT", "7")
	t.Setenv("SIM_MAX_PATHFINDING_ITERATIONS", "not-a-number")

	c, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Services.RedisURL != "redis://example:6379" {
		t.Fatalf("expected SIM_REDIS_URL override applied, got %q", c.Services.RedisURL)
	}
	if c.Tick.ActorCount != 7 {
		t.Fatalf("expected SIM_ACTOR_COUNT override applied, got %d", c.Tick.ActorCount)
	}
	if c.Game.MaxPathfindingIterations != Default().Game.MaxPathfindingIterations {
		t.Fatal("expected an unparseable env override to be ignored, not panic or zero the field")
	}
}
