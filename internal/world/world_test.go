package world

import (
	"testing"

	"github.com/hexswarm/sim/pkg/hexgrid"
)

func testConfig() GameConfig {
	return GameConfig{
		MineAmount:               10,
		SpawnEnergyThreshold:     50,
		NewBotHp:                 100,
		NewBotCarryMax:           20,
		NewBotDecayEta:           5,
		NewBotDecayTAmount:       1,
		MaxPathfindingIterations: 100,
		PathCacheLen:             8,
		MineralRespawnMaxRetries: 3,
		LogRetentionTicks:        10,
	}
}

func TestInsertEntityIsMonotonicAndNeverZero(t *testing.T) {
	w := New(testConfig())
	defer w.Close()

	var ids []hexgrid.EntityId
	w.ExecSync(func(w *World) {
		ids = append(ids, w.InsertEntity(), w.InsertEntity(), w.InsertEntity())
	})
	for i, id := range ids {
		if id == 0 {
			t.Fatalf("entity id %d was zero", i)
		}
		if i > 0 && ids[i] <= ids[i-1] {
			t.Fatalf("expected strictly increasing ids, got %v", ids)
		}
	}
}

func TestPlaceAndMoveEntity(t *testing.T) {
	w := New(testConfig())
	defer w.Close()

	room := hexgrid.NewRoom(0, 0)
	from := hexgrid.WorldPosition{Room: room, Pos: hexgrid.NewAxial(1, 1)}
	to := hexgrid.WorldPosition{Room: room, Pos: hexgrid.NewAxial(2, 1)}

	var id hexgrid.EntityId
	w.ExecSync(func(w *World) {
		id = w.InsertEntity()
		if err := w.PlaceEntity(id, from); err != nil {
			t.Fatalf("place: %v", err)
		}
	})

	w.ExecSync(func(w *World) {
		if !w.MoveEntity(id, to) {
			t.Fatal("expected move to succeed")
		}
		pos, ok := w.EntityPosition(id)
		if !ok || pos != to {
			t.Fatalf("expected entity at %v, got %v (ok=%v)", to, pos, ok)
		}
		if w.Positions.Contains(from) {
			t.Fatal("expected old position vacated")
		}
	})
}

func TestMoveEntityFailsOntoOccupiedPosition(t *testing.T) {
	w := New(testConfig())
	defer w.Close()

	room := hexgrid.NewRoom(0, 0)
	posA := hexgrid.WorldPosition{Room: room, Pos: hexgrid.NewAxial(0, 0)}
	posB := hexgrid.WorldPosition{Room: room, Pos: hexgrid.NewAxial(1, 0)}

	w.ExecSync(func(w *World) {
		a := w.InsertEntity()
		b := w.InsertEntity()
		_ = w.PlaceEntity(a, posA)
		_ = w.PlaceEntity(b, posB)

		if w.MoveEntity(a, posB) {
			t.Fatal("expected move onto occupied position to fail")
		}
	})
}

func TestPostProcessRemovesDeletedEntity(t *testing.T) {
	w := New(testConfig())
	defer w.Close()

	room := hexgrid.NewRoom(0, 0)
	pos := hexgrid.WorldPosition{Room: room, Pos: hexgrid.NewAxial(0, 0)}

	var id hexgrid.EntityId
	w.ExecSync(func(w *World) {
		id = w.InsertEntity()
		_ = w.PlaceEntity(id, pos)
		w.Hps.Insert(id, Hp{Current: 0, Max: 100})
		w.QueueDeleteEntity(id)
		w.PostProcess()
	})

	w.ExecSync(func(w *World) {
		if w.Hps.Contains(id) {
			t.Fatal("expected Hp row removed")
		}
		if _, ok := w.EntityPosition(id); ok {
			t.Fatal("expected inverse position index cleared")
		}
		if w.Positions.Contains(pos) {
			t.Fatal("expected spatial index cleared")
		}
	})
}
