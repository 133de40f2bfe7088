package automation

import (
	"testing"

	"github.com/hexswarm/sim/internal/world"
	"github.com/hexswarm/sim/pkg/hexgrid"
)

func testConfig() world.GameConfig {
	return world.GameConfig{
		MineAmount:               10,
		SpawnEnergyThreshold:     50,
		NewBotHp:                 100,
		NewBotCarryMax:           20,
		NewBotDecayEta:           5,
		NewBotDecayTAmount:       1,
		MaxPathfindingIterations: 100,
		PathCacheLen:             4,
		MineralRespawnMaxRetries: 3,
		LogRetentionTicks:        10,
	}
}

func TestRunDecayTicksDownThenDamages(t *testing.T) {
	w := world.New(testConfig())
	defer w.Close()

	w.ExecSync(func(w *world.World) {
		bot := w.InsertEntity()
		w.Hps.Insert(bot, world.Hp{Current: 10, Max: 10})
		w.Decays.Insert(bot, world.Decay{Eta: 2, T: 1, HpAmount: 3})

		runDecay(w)
		hp, _ := w.Hps.Get(bot)
		if hp.Current != 10 {
			t.Fatalf("expected no damage while T counts down, got %d", hp.Current)
		}
		decay, _ := w.Decays.Get(bot)
		if decay.T != 0 {
			t.Fatalf("expected T decremented to 0, got %d", decay.T)
		}

		runDecay(w)
		hp, _ = w.Hps.Get(bot)
		if hp.Current != 7 {
			t.Fatalf("expected damage applied once T reaches 0, got %d", hp.Current)
		}
		decay, _ = w.Decays.Get(bot)
		if decay.T != decay.Eta {
			t.Fatalf("expected T reset to Eta, got %d", decay.T)
		}
	})
}

func TestRunDeathQueuesZeroHpForDeletion(t *testing.T) {
	w := world.New(testConfig())
	defer w.Close()

	room := hexgrid.NewRoom(0, 0)
	w.ExecSync(func(w *world.World) {
		dead := w.InsertEntity()
		alive := w.InsertEntity()
		_ = w.PlaceEntity(dead, hexgrid.WorldPosition{Room: room, Pos: hexgrid.NewAxial(0, 0)})
		_ = w.PlaceEntity(alive, hexgrid.WorldPosition{Room: room, Pos: hexgrid.NewAxial(1, 0)})
		w.Hps.Insert(dead, world.Hp{Current: 0, Max: 100})
		w.Hps.Insert(alive, world.Hp{Current: 5, Max: 100})

		runDeath(w)
		w.PostProcess()

		if w.Hps.Contains(dead) {
			t.Fatal("expected dead entity's Hp row removed")
		}
		if !w.Hps.Contains(alive) {
			t.Fatal("expected alive entity's Hp row to survive")
		}
	})
}

func TestRunEnergyRegenCapsAtMax(t *testing.T) {
	w := world.New(testConfig())
	defer w.Close()

	w.ExecSync(func(w *world.World) {
		mineral := w.InsertEntity()
		w.Energies.Insert(mineral, world.Energy{Amount: 95, Max: 100})
		w.EnergyRegens.Insert(mineral, world.EnergyRegen{AmountPerTick: 10})

		runEnergyRegen(w)
		energy, _ := w.Energies.Get(mineral)
		if energy.Amount != 100 {
			t.Fatalf("expected regen capped at Max=100, got %d", energy.Amount)
		}
	})
}

func TestRunSpawnProgressionCreatesBotAfterCountdown(t *testing.T) {
	w := world.New(testConfig())
	defer w.Close()

	room := hexgrid.NewRoom(0, 0)
	pos := hexgrid.WorldPosition{Room: room, Pos: hexgrid.NewAxial(0, 0)}
	w.ExecSync(func(w *world.World) {
		spawn := w.InsertEntity()
		_ = w.PlaceEntity(spawn, pos)
		w.SpawnQueues.Insert(spawn, world.SpawnQueueComponent{
			Queue: []world.SpawnQueueEntry{{TimeToSpawn: 1, EnergyCost: 50}},
		})

		before := w.Bots.Len()
		runSpawnProgression(w)
		if w.Bots.Len() != before {
			t.Fatal("expected no bot spawned while countdown is still nonzero")
		}

		runSpawnProgression(w)
		if w.Bots.Len() != before+1 {
			t.Fatalf("expected exactly one bot spawned, Bots.Len()=%d", w.Bots.Len())
		}

		q, ok := w.SpawnQueues.Get(spawn)
		if !ok || len(q.Queue) != 0 {
			t.Fatalf("expected spawn queue drained, got %+v (ok=%v)", q, ok)
		}
	})
}

func TestRunLogPruningRemovesEntriesOlderThanRetention(t *testing.T) {
	w := world.New(testConfig())
	defer w.Close()

	w.ExecSync(func(w *world.World) {
		bot := w.InsertEntity()
		w.Time.Set(world.WorldTime{Tick: 20})
		oldKey := hexgrid.EntityTime{Entity: bot, Tick: 5}.Key()
		freshKey := hexgrid.EntityTime{Entity: bot, Tick: 15}.Key()
		w.Logs.Insert(oldKey, world.LogEntry{Tick: 5, Payload: "stale"})
		w.Logs.Insert(freshKey, world.LogEntry{Tick: 15, Payload: "fresh"})

		runLogPruning(w)

		if w.Logs.Contains(oldKey) {
			t.Fatal("expected stale log entry pruned")
		}
		if !w.Logs.Contains(freshKey) {
			t.Fatal("expected fresh log entry to survive pruning")
		}
	})
}
