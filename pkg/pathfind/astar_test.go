package pathfind

import (
	"errors"
	"testing"

	"github.com/hexswarm/sim/internal/world"
	"github.com/hexswarm/sim/pkg/hexgrid"
)

func TestFindSameStartAndGoalReturnsEmptyPath(t *testing.T) {
	room := hexgrid.NewRoom(0, 0)
	p := hexgrid.NewAxial(3, 3)
	path, err := Find(room, p, p, 100, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(path) != 0 {
		t.Fatalf("expected empty path, got %v", path)
	}
}

func TestFindStraightLineNoObstacles(t *testing.T) {
	room := hexgrid.NewRoom(0, 0)
	start := hexgrid.NewAxial(0, 0)
	goal := hexgrid.NewAxial(3, 0)
	path, err := Find(room, start, goal, 1000, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(path) == 0 || path[len(path)-1] != goal {
		t.Fatalf("expected path ending at goal, got %v", path)
	}
	if int(start.HexDistance(goal)) != len(path) {
		t.Fatalf("expected shortest path length %d, got %d", start.HexDistance(goal), len(path))
	}
}

func TestFindRoutesAroundBlockedCells(t *testing.T) {
	room := hexgrid.NewRoom(0, 0)
	start := hexgrid.NewAxial(0, 0)
	goal := hexgrid.NewAxial(2, 0)
	blockedSet := map[hexgrid.Axial]bool{
		hexgrid.NewAxial(1, 0): true,
	}
	blocked := func(r hexgrid.Room, p hexgrid.Axial) bool { return blockedSet[p] }

	path, err := Find(room, start, goal, 1000, blocked)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, step := range path {
		if blockedSet[step] {
			t.Fatalf("expected path to avoid blocked cell %v, got %v", step, path)
		}
	}
	if path[len(path)-1] != goal {
		t.Fatalf("expected path to reach goal, got %v", path)
	}
}

func TestFindReturnsErrNoPathWhenGoalFullyEnclosed(t *testing.T) {
	room := hexgrid.NewRoom(0, 0)
	start := hexgrid.NewAxial(0, 0)
	goal := hexgrid.NewAxial(10, 10)
	blocked := func(r hexgrid.Room, p hexgrid.Axial) bool {
		for _, n := range goal.Neighbours() {
			if n == p {
				return true
			}
		}
		return false
	}
	_, err := Find(room, start, goal, 1000, blocked)
	if !errors.Is(err, ErrNoPath) {
		t.Fatalf("expected ErrNoPath, got %v", err)
	}
}

func TestFindRespectsMaxIterations(t *testing.T) {
	room := hexgrid.NewRoom(0, 0)
	start := hexgrid.NewAxial(0, 0)
	goal := hexgrid.NewAxial(1000, 1000)
	_, err := Find(room, start, goal, 5, nil)
	if !errors.Is(err, ErrNoPath) {
		t.Fatalf("expected ErrNoPath once maxIterations is exceeded, got %v", err)
	}
}

func testConfig() world.GameConfig {
	return world.GameConfig{
		MaxPathfindingIterations: 1000,
		PathCacheLen:             3,
	}
}

func TestRefillFillsPathCacheTruncatedToLimit(t *testing.T) {
	w := world.New(testConfig())
	defer w.Close()

	room := hexgrid.NewRoom(0, 0)
	w.ExecSync(func(w *world.World) {
		bot := w.InsertEntity()
		_ = w.PlaceEntity(bot, hexgrid.WorldPosition{Room: room, Pos: hexgrid.NewAxial(0, 0)})

		if err := Refill(w, bot, hexgrid.NewAxial(5, 0)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		cache, ok := w.PathCaches.Get(bot)
		if !ok {
			t.Fatal("expected path cache populated")
		}
		if len(cache.Steps) != 3 {
			t.Fatalf("expected steps truncated to PathCacheLen=3, got %d", len(cache.Steps))
		}
	})
}

func TestRefillFailsForUnplacedBot(t *testing.T) {
	w := world.New(testConfig())
	defer w.Close()

	w.ExecSync(func(w *world.World) {
		bot := w.InsertEntity()
		if err := Refill(w, bot, hexgrid.NewAxial(1, 1)); !errors.Is(err, ErrNoPath) {
			t.Fatalf("expected ErrNoPath for unplaced bot, got %v", err)
		}
	})
}
