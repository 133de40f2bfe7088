// Package worldview builds the frozen, read-only script.View each tick's
// parallel script-execution phase runs against. Freezing the view before
// scripts run (rather than letting each goroutine query the live world)
// is the concrete resolution of SPEC_FULL.md §9's EntityComponent
// inverse-index Open Question: every bot sees the same snapshot regardless
// of execution order, and no table needs a per-read lock during the
// parallel phase.
package worldview

import (
	"github.com/hexswarm/sim/internal/world"
	"github.com/hexswarm/sim/pkg/hexgrid"
	"github.com/hexswarm/sim/pkg/script"
)

type entityRecord struct {
	pos  hexgrid.WorldPosition
	kind script.EntityKind
}

// Snapshot is an immutable script.View over one tick's world state.
type Snapshot struct {
	entities map[hexgrid.EntityId]entityRecord
	byRoom   map[hexgrid.Room][]hexgrid.EntityId
}

// Build captures a Snapshot from w. Must be called from inside a
// world.ExecFunc so the read is consistent with the rest of that
// transaction.
func Build(w *world.World) *Snapshot {
	s := &Snapshot{
		entities: make(map[hexgrid.EntityId]entityRecord),
		byRoom:   make(map[hexgrid.Room][]hexgrid.EntityId),
	}
	classify := func(id hexgrid.EntityId) script.EntityKind {
		if _, ok := w.Bots.Get(id); ok {
			return script.KindBot
		}
		if _, ok := w.Structures.Get(id); ok {
			return script.KindStructure
		}
		if _, ok := w.Energies.Get(id); ok {
			return script.KindResource
		}
		return script.KindAny
	}
	for _, room := range w.Positions.Rooms() {
		w.Positions.IterRoom(room, func(pos hexgrid.Axial, id *hexgrid.EntityId) bool {
			wp := hexgrid.WorldPosition{Room: room, Pos: pos}
			s.entities[*id] = entityRecord{pos: wp, kind: classify(*id)}
			s.byRoom[room] = append(s.byRoom[room], *id)
			return true
		})
	}
	return s
}

func (s *Snapshot) Self(bot hexgrid.EntityId) (hexgrid.WorldPosition, bool) {
	rec, ok := s.entities[bot]
	return rec.pos, ok
}

func (s *Snapshot) EntityKindOf(id hexgrid.EntityId) (script.EntityKind, bool) {
	rec, ok := s.entities[id]
	return rec.kind, ok
}

func (s *Snapshot) FindClosestByRange(center hexgrid.WorldPosition, radius uint32, kind script.EntityKind) (hexgrid.EntityId, hexgrid.WorldPosition, bool) {
	var bestID hexgrid.EntityId
	var bestPos hexgrid.WorldPosition
	found := false
	bestDist := radius + 1
	for _, id := range s.byRoom[center.Room] {
		rec := s.entities[id]
		if kind != script.KindAny && rec.kind != kind {
			continue
		}
		d := center.HexDistance(rec.pos)
		if d > radius {
			continue
		}
		if !found || d < bestDist {
			bestID, bestPos, bestDist, found = id, rec.pos, d, true
		}
	}
	return bestID, bestPos, found
}
