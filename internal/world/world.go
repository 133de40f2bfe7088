package world

import (
	"sync"

	"github.com/hexswarm/sim/internal/store"
	"github.com/hexswarm/sim/pkg/hexgrid"
)

// World is the simulation's aggregate store: one table per component kind,
// guarded by a single transaction queue so every tick phase runs against a
// consistent snapshot without each table needing its own lock. Grounded on
// _examples/dm-vev-adamant/server/world/world.go's queue/transaction/Exec
// pattern; Minecraft's per-chunk block storage is replaced here by the
// per-kind component tables from internal/store.
type World struct {
	queue        chan transaction
	queueClosing chan struct{}
	queueing     sync.WaitGroup

	nextEntityID hexgrid.EntityId

	// Positions maps a spatial position to the entity occupying it; this is
	// the table every range query (pkg/pathfind, find_closest_by_range host
	// function) searches. EntityPositions is its inverse, mapping an entity
	// to its current position in O(1). PlaceEntity and MoveEntity update
	// both in place, so movement checks during intent application see moves
	// already applied earlier in the same tick; scripts read the per-tick
	// copy taken by pkg/worldview.Build instead (see SPEC_FULL.md §9's
	// resolution of the inverse-index Open Question).
	Positions        *store.HierarchicalTable[hexgrid.EntityId]
	EntityPositions  *store.DenseTable[hexgrid.WorldPosition]
	Bots             *store.DenseTable[Bot]
	Structures       *store.DenseTable[Structure]
	Hps              *store.DenseTable[Hp]
	Carries          *store.DenseTable[Carry]
	Energies         *store.DenseTable[Energy]
	EnergyRegens     *store.DenseTable[EnergyRegen]
	Decays           *store.DenseTable[Decay]
	OwnedEntities    *store.DenseTable[OwnedEntity]
	EntityComponents *store.DenseTable[EntityComponent]
	MeleeAttacks     *store.DenseTable[MeleeAttackComponent]
	SpawnQueues      *store.DenseTable[SpawnQueueComponent]
	PathCaches       *store.DenseTable[PathCache]

	Terrain         *store.HierarchicalTable[Terrain]
	RoomConnections *store.SparseTable[string, RoomConnection]
	RoomProperties  *store.SparseTable[string, RoomProperties]
	Scripts         *store.SparseTable[string, Script]
	Logs            *store.SparseTable[string, LogEntry]
	ScriptHistory   *store.SparseTable[string, ScriptHistoryEntry]

	Time   *store.SingletonTable[WorldTime]
	Config *store.SingletonTable[GameConfig]

	deleteEntities *store.DeferredDeleteQueue[hexgrid.EntityId]
	deletePositions *store.DeferredDeleteQueue[hexgrid.WorldPosition]
}

// transaction is run against the world from inside the single goroutine that
// owns its tables, mirroring the teacher's world.transaction interface.
type transaction interface {
	run(w *World)
}

type normalTransaction struct {
	c chan struct{}
	f ExecFunc
}

func (t normalTransaction) run(w *World) {
	f := t.f
	f(w)
	close(t.c)
}

// ExecFunc is a function that performs a synchronised operation against a
// World from inside its owning goroutine.
type ExecFunc func(w *World)

// New constructs an empty World with a populated GameConfig and WorldTime
// singleton, and starts its transaction-queue goroutine.
func New(cfg GameConfig) *World {
	w := &World{
		queue:        make(chan transaction, 64),
		queueClosing: make(chan struct{}),

		Positions:        store.NewHierarchicalTable[hexgrid.EntityId](),
		EntityPositions:  store.NewDenseTable[hexgrid.WorldPosition](),
		Bots:             store.NewDenseTable[Bot](),
		Structures:       store.NewDenseTable[Structure](),
		Hps:              store.NewDenseTable[Hp](),
		Carries:          store.NewDenseTable[Carry](),
		Energies:         store.NewDenseTable[Energy](),
		EnergyRegens:     store.NewDenseTable[EnergyRegen](),
		Decays:           store.NewDenseTable[Decay](),
		OwnedEntities:    store.NewDenseTable[OwnedEntity](),
		EntityComponents: store.NewDenseTable[EntityComponent](),
		MeleeAttacks:     store.NewDenseTable[MeleeAttackComponent](),
		SpawnQueues:      store.NewDenseTable[SpawnQueueComponent](),
		PathCaches:       store.NewDenseTable[PathCache](),

		Terrain:         store.NewHierarchicalTable[Terrain](),
		RoomConnections: store.NewSparseTable[string, RoomConnection](),
		RoomProperties:  store.NewSparseTable[string, RoomProperties](),
		Scripts:         store.NewSparseTable[string, Script](),
		Logs:            store.NewSparseTable[string, LogEntry](),
		ScriptHistory:   store.NewSparseTable[string, ScriptHistoryEntry](),

		Time:   store.NewSingletonTable[WorldTime](),
		Config: store.NewSingletonTable[GameConfig](),

		deleteEntities:  store.NewDeferredDeleteQueue[hexgrid.EntityId](),
		deletePositions: store.NewDeferredDeleteQueue[hexgrid.WorldPosition](),
	}
	w.Time.Set(WorldTime{})
	w.Config.Set(cfg)
	w.queueing.Add(1)
	go w.handleTransactions()
	return w
}

// Exec performs a synchronised transaction f on the World and returns a
// channel closed once it completes. Every tick phase and every command
// handler goes through Exec so that no two goroutines ever touch the tables
// directly at the same time.
func (w *World) Exec(f ExecFunc) <-chan struct{} {
	c := make(chan struct{})
	w.queue <- normalTransaction{c: c, f: f}
	return c
}

// ExecSync is Exec followed by a receive on the returned channel, for
// callers that have no work to overlap with the transaction.
func (w *World) ExecSync(f ExecFunc) {
	<-w.Exec(f)
}

func (w *World) handleTransactions() {
	for {
		select {
		case tx := <-w.queue:
			tx.run(w)
		case <-w.queueClosing:
			w.queueing.Done()
			return
		}
	}
}

// Close stops the World's transaction queue, waiting for any in-flight
// transaction to finish first.
func (w *World) Close() error {
	close(w.queueClosing)
	w.queueing.Wait()
	return nil
}

// InsertEntity allocates a fresh EntityId. Ids are handed out monotonically
// and never reused, matching SPEC_FULL.md §1's identity invariant. Must be
// called from inside an ExecFunc.
func (w *World) InsertEntity() hexgrid.EntityId {
	w.nextEntityID++
	return w.nextEntityID
}

// PlaceEntity inserts id into the spatial index at pos and records pos in
// the inverse index. Must be called from inside an ExecFunc.
func (w *World) PlaceEntity(id hexgrid.EntityId, pos hexgrid.WorldPosition) error {
	if err := w.Positions.Insert(pos, id); err != nil {
		return err
	}
	w.EntityPositions.Insert(id, pos)
	return nil
}

// MoveEntity relocates id from its current position to to, updating both
// the spatial index and its inverse. It reports false if to is already
// occupied or id has no current position.
func (w *World) MoveEntity(id hexgrid.EntityId, to hexgrid.WorldPosition) bool {
	from, ok := w.EntityPositions.Get(id)
	if !ok {
		return false
	}
	if w.Positions.Contains(to) {
		return false
	}
	w.Positions.Delete(from)
	w.Positions.Insert(to, id)
	w.EntityPositions.Insert(id, to)
	return true
}

// EntityPosition returns id's current position, if it has one.
func (w *World) EntityPosition(id hexgrid.EntityId) (hexgrid.WorldPosition, bool) {
	return w.EntityPositions.Get(id)
}

// QueueDeleteEntity defers removal of id's rows from every entity-keyed
// table until PostProcess runs, so a system midway through a tick phase
// never sees an entity disappear mid-iteration.
func (w *World) QueueDeleteEntity(id hexgrid.EntityId) {
	w.deleteEntities.Push(id)
}

// QueueDeletePosition defers removal of a position-keyed row (typically a
// depleted mineral or a destroyed bridge) until PostProcess.
func (w *World) QueueDeletePosition(pos hexgrid.WorldPosition) {
	w.deletePositions.Push(pos)
}

// PostProcess drains every deferred-delete queue against the tables that
// hold entity- or position-keyed rows. pkg/automation.Run calls it after the
// other automated systems and before log pruning; it does not advance world
// time. Grounded on SPEC_FULL.md §4.6 and §4.8's
// death/position-index-rebuild ordering.
func (w *World) PostProcess() {
	store.ApplyTo[hexgrid.EntityId](w.deleteEntities, w.Bots)
	store.ApplyTo[hexgrid.EntityId](w.deleteEntities, w.Structures)
	store.ApplyTo[hexgrid.EntityId](w.deleteEntities, w.Hps)
	store.ApplyTo[hexgrid.EntityId](w.deleteEntities, w.Carries)
	store.ApplyTo[hexgrid.EntityId](w.deleteEntities, w.Energies)
	store.ApplyTo[hexgrid.EntityId](w.deleteEntities, w.EnergyRegens)
	store.ApplyTo[hexgrid.EntityId](w.deleteEntities, w.Decays)
	store.ApplyTo[hexgrid.EntityId](w.deleteEntities, w.OwnedEntities)
	store.ApplyTo[hexgrid.EntityId](w.deleteEntities, w.EntityComponents)
	store.ApplyTo[hexgrid.EntityId](w.deleteEntities, w.MeleeAttacks)
	store.ApplyTo[hexgrid.EntityId](w.deleteEntities, w.SpawnQueues)
	store.ApplyTo[hexgrid.EntityId](w.deleteEntities, w.PathCaches)
	for _, id := range w.deleteEntities.Keys() {
		if pos, ok := w.EntityPositions.Get(id); ok {
			w.Positions.Delete(pos)
		}
	}
	store.ApplyTo[hexgrid.EntityId](w.deleteEntities, w.EntityPositions)
	w.deleteEntities.Reset()

	store.ApplyTo[hexgrid.WorldPosition](w.deletePositions, w.Positions)
	w.deletePositions.Reset()
}

// ResetWorldStorage clears every table, returning the World to its
// just-constructed state except for Time and Config, which are preserved.
func (w *World) ResetWorldStorage() {
	w.Positions.Clear()
	w.EntityPositions.Clear()
	w.Bots.Clear()
	w.Structures.Clear()
	w.Hps.Clear()
	w.Carries.Clear()
	w.Energies.Clear()
	w.EnergyRegens.Clear()
	w.Decays.Clear()
	w.OwnedEntities.Clear()
	w.EntityComponents.Clear()
	w.MeleeAttacks.Clear()
	w.SpawnQueues.Clear()
	w.PathCaches.Clear()
	w.Terrain.Clear()
	w.RoomConnections.Clear()
	w.RoomProperties.Clear()
	w.Scripts.Clear()
	w.Logs.Clear()
	w.ScriptHistory.Clear()
	w.nextEntityID = 0
}
