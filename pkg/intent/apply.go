package intent

import (
	"github.com/hexswarm/sim/internal/world"
	"github.com/hexswarm/sim/pkg/hexgrid"
)

// Reconcile applies every intent in batch against w in the fixed order
// SPEC_FULL.md §4.8 requires: attack, movement (deduplicated by target
// position), room transit, mining, dropoff, spawn-request, log append, path-cache
// mutation, script-history append. Continuous spawn countdown and the
// automated systems that follow (decay, death, energy regen, spawn
// progression, mineral respawn, position rebuild, log pruning) are separate
// tick phases run by pkg/automation, since they are not driven by intents.
// Must be called from inside a world.ExecFunc.
func Reconcile(w *world.World, batch Batch) {
	applyAttacks(w, batch.Attacks)
	applyMoves(w, batch.Moves)
	applyRoomTransits(w, batch.RoomTransits)
	applyMines(w, batch.Mines)
	applyDropoffs(w, batch.Dropoffs)
	applySpawnRequests(w, batch.Spawns)
	applyLogs(w, batch.Logs)
	applyCachePaths(w, batch.CachePaths)
	applyMutPathCaches(w, batch.MutPathCaches)
	applyScriptHistories(w, batch.ScriptHistories)
}

// checkOwner reports whether bot is owned by user, the shared ownership
// test every check function in this file applies first: SPEC_FULL.md §8's
// "an intent whose bot is not owned by the caller's user is rejected with
// NotOwner" property.
func checkOwner(w *world.World, bot hexgrid.EntityId, user hexgrid.UserId) bool {
	owned, ok := w.OwnedEntities.Get(bot)
	return ok && owned.UserId == user
}

// inRange reports whether bot and target share a room and are at most one
// hex step apart, the adjacency test every melee/mine/dropoff check shares
// with the movement check contract.
func inRange(w *world.World, bot, target hexgrid.EntityId) bool {
	from, ok := w.EntityPosition(bot)
	if !ok {
		return false
	}
	to, ok := w.EntityPosition(target)
	if !ok {
		return false
	}
	return from.Room == to.Room && from.Pos.HexDistance(to.Pos) <= 1
}

// checkMove implements the Movement check contract (SPEC_FULL.md §4.8):
// succeeds iff the bot exists, is owned by user, has a current position in
// the same room as target, current-to-target hex-distance is <= 1, target
// terrain is not Wall, and target is not occupied. The contract names only
// NotOwner and InvalidInput as failure outcomes, so every precondition
// besides ownership collapses to InvalidInput.
func checkMove(w *world.World, user hexgrid.UserId, bot hexgrid.EntityId, target hexgrid.WorldPosition) Check {
	from, ok := w.EntityPosition(bot)
	if !ok {
		return InvalidInput
	}
	if !checkOwner(w, bot, user) {
		return NotOwner
	}
	if from.Room != target.Room || from.Pos.HexDistance(target.Pos) > 1 {
		return InvalidInput
	}
	if terrain, ok := w.Terrain.Get(target); ok && terrain.Kind == world.TerrainWall {
		return InvalidInput
	}
	if w.Positions.Contains(target) {
		return InvalidInput
	}
	return Ok
}

// checkAttack requires the attacker exist, carry a MeleeAttackComponent, be
// owned by user, and be adjacent to a target that still has Hp.
func checkAttack(w *world.World, user hexgrid.UserId, bot, target hexgrid.EntityId) Check {
	if _, ok := w.MeleeAttacks.Get(bot); !ok {
		return InvalidInput
	}
	if !checkOwner(w, bot, user) {
		return NotOwner
	}
	if _, ok := w.Hps.Get(target); !ok {
		return InvalidTarget
	}
	if !inRange(w, bot, target) {
		return NotInRange
	}
	return Ok
}

func applyAttacks(w *world.World, attacks []Attack) {
	for _, a := range attacks {
		if checkAttack(w, a.User, a.Bot, a.Target) != Ok {
			continue
		}
		strength, _ := w.MeleeAttacks.Get(a.Bot)
		hp, _ := w.Hps.GetPtr(a.Target)
		hp.Current -= strength.Strength
		if hp.Current < 0 {
			hp.Current = 0
		}
	}
}

// applyMoves applies move intents, skipping any whose checkMove is not Ok
// and deduplicating by target position: if two bots request the same
// destination this tick, only the first (in batch order) succeeds and the
// rest are dropped, matching original_source's move_intent_system.rs "skip
// if target position occupied" rule, extended to also treat a same-tick
// collision between two movers as occupied.
func applyMoves(w *world.World, moves []Move) {
	claimed := make(map[hexgrid.WorldPosition]struct{}, len(moves))
	for _, m := range moves {
		if checkMove(w, m.User, m.Bot, m.Target) != Ok {
			continue
		}
		if _, taken := claimed[m.Target]; taken {
			continue
		}
		if !w.MoveEntity(m.Bot, m.Target) {
			continue
		}
		claimed[m.Target] = struct{}{}
	}
}

// applyRoomTransits moves a bot through a bridge structure into an adjacent
// room, failing silently (the bot simply stays put) if the bridge does not
// exist, is not a bridge, the destination room is not connected to the
// bridge's room via a RoomConnection, or the destination is occupied.
// Grounded on original_source's room_transit_intent_system.rs bridge-walk
// check, reworked against the Room/RoomConnection types.
func applyRoomTransits(w *world.World, transits []RoomTransit) {
	for _, t := range transits {
		if _, ok := w.EntityPosition(t.Bot); !ok {
			continue
		}
		bridgePos, ok := w.EntityPosition(t.Bridge)
		if !ok {
			continue
		}
		structure, ok := w.Structures.Get(t.Bridge)
		if !ok || structure.Kind != world.StructureBridge {
			continue
		}
		if !connected(w, bridgePos.Room, t.Target.Room) {
			continue
		}
		w.MoveEntity(t.Bot, t.Target)
	}
}

// connected reports whether a and b are linked by a RoomConnection in
// either direction.
func connected(w *world.World, a, b hexgrid.Room) bool {
	if a == b {
		return true
	}
	found := false
	w.RoomConnections.Iter(func(_ string, rc *world.RoomConnection) bool {
		if (rc.A == a && rc.B == b) || (rc.A == b && rc.B == a) {
			found = true
			return false
		}
		return true
	})
	return found
}

// checkMine requires the miner exist with carry capacity, be owned by
// user, and be adjacent to a target that still holds Energy.
func checkMine(w *world.World, user hexgrid.UserId, bot, target hexgrid.EntityId) Check {
	carry, ok := w.Carries.Get(bot)
	if !ok {
		return InvalidInput
	}
	if !checkOwner(w, bot, user) {
		return NotOwner
	}
	energy, ok := w.Energies.Get(target)
	if !ok {
		return InvalidTarget
	}
	if !inRange(w, bot, target) {
		return NotInRange
	}
	if carry.Amount >= carry.Max {
		return Full
	}
	if energy.Amount <= 0 {
		return Empty
	}
	return Ok
}

func applyMines(w *world.World, mines []Mine) {
	cfg := w.Config.Unwrap()
	for _, m := range mines {
		if checkMine(w, m.User, m.Bot, m.Target) != Ok {
			continue
		}
		carry, _ := w.Carries.GetPtr(m.Bot)
		energy, _ := w.Energies.GetPtr(m.Target)
		mined := minInt32(energy.Amount, cfg.MineAmount, carry.Max-carry.Amount)
		if mined <= 0 {
			continue
		}
		energy.Amount -= mined
		carry.Amount += mined
	}
}

// checkDropoff requires the bot exist with something carried, be owned by
// user, and be adjacent to a spawn structure that can still receive
// Energy (the only structure kind applyDropoffs credits).
func checkDropoff(w *world.World, user hexgrid.UserId, bot, target hexgrid.EntityId) Check {
	carry, ok := w.Carries.Get(bot)
	if !ok {
		return InvalidInput
	}
	if !checkOwner(w, bot, user) {
		return NotOwner
	}
	structure, ok := w.Structures.Get(target)
	if !ok || structure.Kind != world.StructureSpawn {
		return InvalidTarget
	}
	if _, ok := w.Energies.Get(target); !ok {
		return InvalidTarget
	}
	if !inRange(w, bot, target) {
		return NotInRange
	}
	if carry.Amount == 0 {
		return Empty
	}
	return Ok
}

// applyDropoffs credits a spawn structure's Energy with the bot's full
// carry, capped at the structure's Energy.Max, then empties the carry.
// This is the only path that feeds a spawn structure's Energy, so it must
// run before applySpawnRequests can ever see Energy reach
// GameConfig.SpawnEnergyThreshold.
func applyDropoffs(w *world.World, dropoffs []Dropoff) {
	for _, d := range dropoffs {
		if checkDropoff(w, d.User, d.Bot, d.Target) != Ok {
			continue
		}
		carry, _ := w.Carries.GetPtr(d.Bot)
		energy, _ := w.Energies.GetPtr(d.Target)
		energy.Amount += carry.Amount
		if energy.Amount > energy.Max {
			energy.Amount = energy.Max
		}
		carry.Amount = 0
	}
}

// spawnTicks is the fixed countdown a queued spawn request runs before
// spawnBot promotes it, matching SPEC_FULL.md's exact time_to_spawn = 10.
const spawnTicks = 10

// checkSpawn requires the target be a spawn structure holding at least
// GameConfig.SpawnEnergyThreshold Energy before a new request is queued.
func checkSpawn(w *world.World, spawn hexgrid.EntityId, cfg world.GameConfig) Check {
	if _, ok := w.SpawnQueues.Get(spawn); !ok {
		return InvalidTarget
	}
	energy, ok := w.Energies.Get(spawn)
	if !ok || energy.Amount < cfg.SpawnEnergyThreshold {
		return Empty
	}
	return Ok
}

// applySpawnRequests deducts GameConfig.SpawnEnergyThreshold from the
// spawn structure's Energy immediately and queues an entry with
// TimeToSpawn = spawnTicks (10). pkg/automation's runSpawnProgression runs
// later in the same tick and already counts that entry down to 9, so at the
// end of the request tick the entry reads 9; the bot is created ten ticks
// after the request tick, once the countdown has reached zero.
func applySpawnRequests(w *world.World, spawns []Spawn) {
	cfg := w.Config.Unwrap()
	for _, s := range spawns {
		if checkSpawn(w, s.Spawn, cfg) != Ok {
			continue
		}
		q, _ := w.SpawnQueues.GetPtr(s.Spawn)
		energy, _ := w.Energies.GetPtr(s.Spawn)
		energy.Amount -= cfg.SpawnEnergyThreshold
		q.Queue = append(q.Queue, world.SpawnQueueEntry{
			TimeToSpawn: spawnTicks,
			EnergyCost:  cfg.SpawnEnergyThreshold,
		})
	}
}

func applyLogs(w *world.World, logs []Log) {
	t := w.Time.Unwrap()
	for _, l := range logs {
		key := hexgrid.EntityTime{Entity: l.Bot, Tick: t.Tick}
		w.Logs.Insert(key.Key(), world.LogEntry{Tick: t.Tick, Payload: l.Payload})
	}
}

// applyCachePaths replaces a bot's cached upcoming steps wholesale,
// truncating to GameConfig.PathCacheLen. Grounded on
// original_source's update_path_cache_intent, which likewise overwrites
// rather than merges.
func applyCachePaths(w *world.World, cps []CachePath) {
	limit := w.Config.Unwrap().PathCacheLen
	for _, cp := range cps {
		steps := cp.Steps
		if limit > 0 && len(steps) > limit {
			steps = steps[:limit]
		}
		w.PathCaches.Insert(cp.Bot, world.PathCache{Steps: append([]hexgrid.Axial(nil), steps...)})
	}
}

// applyMutPathCaches pops Pop steps from the front of a bot's cache, then
// appends Push, capping at GameConfig.PathCacheLen. Grounded on
// original_source's mut_path_cache_intent, used when a bot consumes one
// step and the script supplies the next leg without recomputing A* from
// scratch.
func applyMutPathCaches(w *world.World, mpcs []MutPathCache) {
	limit := w.Config.Unwrap().PathCacheLen
	for _, m := range mpcs {
		cache, ok := w.PathCaches.GetPtr(m.Bot)
		if !ok {
			w.PathCaches.Insert(m.Bot, world.PathCache{})
			cache, _ = w.PathCaches.GetPtr(m.Bot)
		}
		pop := m.Pop
		if pop > len(cache.Steps) {
			pop = len(cache.Steps)
		}
		cache.Steps = append(cache.Steps[:0:0], cache.Steps[pop:]...)
		cache.Steps = append(cache.Steps, m.Push...)
		if limit > 0 && len(cache.Steps) > limit {
			cache.Steps = cache.Steps[:limit]
		}
	}
}

func applyScriptHistories(w *world.World, hs []ScriptHistory) {
	t := w.Time.Unwrap()
	for _, h := range hs {
		key := hexgrid.EntityTime{Entity: h.Bot, Tick: t.Tick}
		w.ScriptHistory.Insert(key.Key(), world.ScriptHistoryEntry{
			Tick:     t.Tick,
			ScriptId: h.ScriptId,
			Error:    h.Error,
		})
	}
}

func minInt32(vs ...int32) int32 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
