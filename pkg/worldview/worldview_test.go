package worldview

import (
	"testing"

	"github.com/hexswarm/sim/internal/world"
	"github.com/hexswarm/sim/pkg/hexgrid"
	"github.com/hexswarm/sim/pkg/script"
)

func TestBuildClassifiesEntityKinds(t *testing.T) {
	w := world.New(world.GameConfig{})
	defer w.Close()

	room := hexgrid.NewRoom(0, 0)
	var bot, structure, resource hexgrid.EntityId
	w.ExecSync(func(w *world.World) {
		bot = w.InsertEntity()
		structure = w.InsertEntity()
		resource = w.InsertEntity()
		_ = w.PlaceEntity(bot, hexgrid.WorldPosition{Room: room, Pos: hexgrid.NewAxial(0, 0)})
		_ = w.PlaceEntity(structure, hexgrid.WorldPosition{Room: room, Pos: hexgrid.NewAxial(1, 0)})
		_ = w.PlaceEntity(resource, hexgrid.WorldPosition{Room: room, Pos: hexgrid.NewAxial(2, 0)})
		w.Bots.Insert(bot, world.Bot{})
		w.Structures.Insert(structure, world.Structure{Kind: world.StructureSpawn})
		w.Energies.Insert(resource, world.Energy{Amount: 10, Max: 10})
	})

	var snap *Snapshot
	w.ExecSync(func(w *world.World) { snap = Build(w) })

	if k, ok := snap.EntityKindOf(bot); !ok || k != script.KindBot {
		t.Fatalf("expected bot classified KindBot, got %v (ok=%v)", k, ok)
	}
	if k, ok := snap.EntityKindOf(structure); !ok || k != script.KindStructure {
		t.Fatalf("expected structure classified KindStructure, got %v (ok=%v)", k, ok)
	}
	if k, ok := snap.EntityKindOf(resource); !ok || k != script.KindResource {
		t.Fatalf("expected resource classified KindResource, got %v (ok=%v)", k, ok)
	}
}

func TestFindClosestByRangeReturnsNearestWithinRadius(t *testing.T) {
	w := world.New(world.GameConfig{})
	defer w.Close()

	room := hexgrid.NewRoom(0, 0)
	var near, far hexgrid.EntityId
	w.ExecSync(func(w *world.World) {
		near = w.InsertEntity()
		far = w.InsertEntity()
		_ = w.PlaceEntity(near, hexgrid.WorldPosition{Room: room, Pos: hexgrid.NewAxial(1, 0)})
		_ = w.PlaceEntity(far, hexgrid.WorldPosition{Room: room, Pos: hexgrid.NewAxial(10, 0)})
		w.Energies.Insert(near, world.Energy{Amount: 1, Max: 1})
		w.Energies.Insert(far, world.Energy{Amount: 1, Max: 1})
	})

	var snap *Snapshot
	w.ExecSync(func(w *world.World) { snap = Build(w) })

	center := hexgrid.WorldPosition{Room: room, Pos: hexgrid.NewAxial(0, 0)}
	id, pos, found := snap.FindClosestByRange(center, 5, script.KindResource)
	if !found || id != near {
		t.Fatalf("expected nearest resource %v within radius, got %v (found=%v)", near, id, found)
	}
	if pos.Pos != hexgrid.NewAxial(1, 0) {
		t.Fatalf("expected matched position (1,0), got %v", pos.Pos)
	}
}

func TestFindClosestByRangeExcludesBeyondRadius(t *testing.T) {
	w := world.New(world.GameConfig{})
	defer w.Close()

	room := hexgrid.NewRoom(0, 0)
	w.ExecSync(func(w *world.World) {
		far := w.InsertEntity()
		_ = w.PlaceEntity(far, hexgrid.WorldPosition{Room: room, Pos: hexgrid.NewAxial(10, 0)})
		w.Energies.Insert(far, world.Energy{Amount: 1, Max: 1})
	})

	var snap *Snapshot
	w.ExecSync(func(w *world.World) { snap = Build(w) })

	center := hexgrid.WorldPosition{Room: room, Pos: hexgrid.NewAxial(0, 0)}
	_, _, found := snap.FindClosestByRange(center, 3, script.KindResource)
	if found {
		t.Fatal("expected entity beyond radius to be excluded")
	}
}

func TestFindClosestByRangeRestrictedToCenterRoom(t *testing.T) {
	w := world.New(world.GameConfig{})
	defer w.Close()

	roomA := hexgrid.NewRoom(0, 0)
	roomB := hexgrid.NewRoom(1, 0)
	w.ExecSync(func(w *world.World) {
		other := w.InsertEntity()
		_ = w.PlaceEntity(other, hexgrid.WorldPosition{Room: roomB, Pos: hexgrid.NewAxial(0, 0)})
		w.Energies.Insert(other, world.Energy{Amount: 1, Max: 1})
	})

	var snap *Snapshot
	w.ExecSync(func(w *world.World) { snap = Build(w) })

	center := hexgrid.WorldPosition{Room: roomA, Pos: hexgrid.NewAxial(0, 0)}
	_, _, found := snap.FindClosestByRange(center, 100, script.KindResource)
	if found {
		t.Fatal("expected search to be restricted to the center's own room")
	}
}
