// Package automation implements the systems that run every tick without
// being driven by a script intent: decay, death, energy regeneration, spawn
// progression, mineral respawn, the spatial-index rebuild and log pruning.
// Grounded on original_source's systems/decay_system.rs, death,
// energy_regen, spawn_system and mineral respawn logic, and
// SPEC_FULL.md §4.8's tick ordering.
package automation

import (
	"fmt"
	"math/rand/v2"

	"github.com/hexswarm/sim/internal/world"
	"github.com/hexswarm/sim/pkg/hexgrid"
)

// Run executes every automated system in the fixed order the tick pipeline
// requires: decay, death, energy regen, spawn progression, mineral respawn,
// position index rebuild, log pruning. Must be called from inside a
// world.ExecFunc, after pkg/intent.Reconcile for the same tick.
func Run(w *world.World) {
	runDecay(w)
	runDeath(w)
	runEnergyRegen(w)
	runSpawnProgression(w)
	runMineralRespawn(w)
	w.PostProcess() // deferred deletes apply here, acting as the "position index rebuild" phase
	runLogPruning(w)
}

// runDecay ages every entity with a Decay component; when its countdown T
// reaches zero, HpAmount is subtracted from Hp and T resets to Eta. An
// entity whose Hp reaches zero is left for runDeath to queue for deletion.
func runDecay(w *world.World) {
	w.Decays.Iter(func(id hexgrid.EntityId, d *world.Decay) bool {
		if d.T > 0 {
			d.T--
			return true
		}
		d.T = d.Eta
		if hp, ok := w.Hps.GetPtr(id); ok {
			hp.Current -= d.HpAmount
			if hp.Current < 0 {
				hp.Current = 0
			}
		}
		return true
	})
}

// runDeath queues every entity whose Hp has reached zero for deferred
// deletion, applied when World.PostProcess runs later this tick.
func runDeath(w *world.World) {
	w.Hps.Iter(func(id hexgrid.EntityId, hp *world.Hp) bool {
		if hp.Current <= 0 {
			w.QueueDeleteEntity(id)
		}
		return true
	})
}

// runEnergyRegen adds each resource entity's configured regeneration amount
// to its Energy, capped at Energy.Max.
func runEnergyRegen(w *world.World) {
	w.EnergyRegens.Iter(func(id hexgrid.EntityId, regen *world.EnergyRegen) bool {
		energy, ok := w.Energies.GetPtr(id)
		if !ok {
			return true
		}
		energy.Amount += regen.AmountPerTick
		if energy.Amount > energy.Max {
			energy.Amount = energy.Max
		}
		return true
	})
}

// runSpawnProgression counts down each spawn structure's queued spawn
// requests and, once a request reaches zero, creates the new bot. Grounded
// on original_source's spawn_system.rs spawn_bot: a new bot inherits the
// spawn's position and owner, and starts with the GameConfig-tunable
// defaults for Hp, Carry and Decay.
func runSpawnProgression(w *world.World) {
	cfg := w.Config.Unwrap()
	w.SpawnQueues.Iter(func(spawnID hexgrid.EntityId, q *world.SpawnQueueComponent) bool {
		if len(q.Queue) == 0 {
			return true
		}
		head := &q.Queue[0]
		if head.TimeToSpawn > 0 {
			head.TimeToSpawn--
			return true
		}
		spawnBot(w, spawnID, cfg, head.EnergyCost)
		q.Queue = q.Queue[1:]
		return true
	})
}

// spawnBot promotes a drained spawn-queue entry into a full bot. energyCost
// is the amount applySpawnRequests already deducted from the spawn's
// Energy when the request was queued; it is recorded against the new
// bot's own log so a player can see what each of their bots cost to raise.
func spawnBot(w *world.World, spawnID hexgrid.EntityId, cfg world.GameConfig, energyCost int32) {
	pos, ok := w.EntityPosition(spawnID)
	if !ok {
		return
	}
	id := w.InsertEntity()
	if err := w.PlaceEntity(id, pos); err != nil {
		return
	}
	w.Hps.Insert(id, world.Hp{Current: cfg.NewBotHp, Max: cfg.NewBotHp})
	w.Carries.Insert(id, world.Carry{Amount: 0, Max: cfg.NewBotCarryMax})
	w.Decays.Insert(id, world.Decay{Eta: cfg.NewBotDecayEta, T: cfg.NewBotDecayEta, HpAmount: cfg.NewBotDecayTAmount})
	if owner, ok := w.OwnedEntities.Get(spawnID); ok {
		w.OwnedEntities.Insert(id, owner)
	}
	w.Bots.Insert(id, world.Bot{UserId: ownerUserID(w, spawnID)})

	now := w.Time.Unwrap().Tick
	key := hexgrid.EntityTime{Entity: id, Tick: now}
	w.Logs.Insert(key.Key(), world.LogEntry{
		Tick:    now,
		Payload: fmt.Sprintf("spawned for %d energy", energyCost),
	})
}

func ownerUserID(w *world.World, spawnID hexgrid.EntityId) hexgrid.UserId {
	if owner, ok := w.OwnedEntities.Get(spawnID); ok {
		return owner.UserId
	}
	return hexgrid.UserId{}
}

// mineralRespawnMaxRetries is the retry bound runMineralRespawn uses when
// GameConfig.MineralRespawnMaxRetries is not positive, matching
// original_source's constant of 10.
const mineralRespawnMaxRetries = 10

// runMineralRespawn retires a depleted mineral (Energy.Amount == 0 with no
// EnergyRegen, distinguishing it from a regenerating resource) and places a
// freshly filled replacement on a randomly chosen neighbouring tile of the
// old one, retrying up to GameConfig.MineralRespawnMaxRetries times if the
// rolled tile is already occupied or outside the spatial domain. If every
// retry fails the mineral is still removed and no replacement is placed.
func runMineralRespawn(w *world.World) {
	type depleted struct {
		id  hexgrid.EntityId
		pos hexgrid.WorldPosition
		max int32
	}
	var minerals []depleted
	w.Energies.Iter(func(id hexgrid.EntityId, e *world.Energy) bool {
		if e.Amount > 0 {
			return true
		}
		if _, hasRegen := w.EnergyRegens.Get(id); hasRegen {
			return true
		}
		pos, ok := w.EntityPosition(id)
		if !ok {
			return true
		}
		minerals = append(minerals, depleted{id: id, pos: pos, max: e.Max})
		return true
	})
	maxRetries := w.Config.Unwrap().MineralRespawnMaxRetries
	if maxRetries <= 0 {
		maxRetries = mineralRespawnMaxRetries
	}
	for _, m := range minerals {
		w.QueueDeleteEntity(m.id)
		for attempt := 0; attempt < maxRetries; attempt++ {
			candidate := m.pos.Pos.Neighbours()[rand.IntN(6)]
			wp := hexgrid.WorldPosition{Room: m.pos.Room, Pos: candidate}
			if !candidate.InDomain() || w.Positions.Contains(wp) {
				continue
			}
			newID := w.InsertEntity()
			if err := w.PlaceEntity(newID, wp); err != nil {
				continue
			}
			w.Energies.Insert(newID, world.Energy{Amount: m.max, Max: m.max})
			break
		}
	}
}

// runLogPruning deletes log and script-history rows older than
// GameConfig.LogRetentionTicks, bounding the sparse log tables' memory use
// over a long-running world.
func runLogPruning(w *world.World) {
	cfg := w.Config.Unwrap()
	now := w.Time.Unwrap().Tick
	if cfg.LogRetentionTicks == 0 || now < cfg.LogRetentionTicks {
		return
	}
	cutoff := now - cfg.LogRetentionTicks
	var stale []string
	w.Logs.Iter(func(key string, entry *world.LogEntry) bool {
		if entry.Tick < cutoff {
			stale = append(stale, key)
		}
		return true
	})
	for _, key := range stale {
		w.Logs.Delete(key)
	}
	stale = stale[:0]
	w.ScriptHistory.Iter(func(key string, entry *world.ScriptHistoryEntry) bool {
		if entry.Tick < cutoff {
			stale = append(stale, key)
		}
		return true
	})
	for _, key := range stale {
		w.ScriptHistory.Delete(key)
	}
}
