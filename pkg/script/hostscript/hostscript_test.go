package hostscript

import (
	"context"
	"testing"
	"time"

	"github.com/hexswarm/sim/pkg/hexgrid"
	"github.com/hexswarm/sim/pkg/script"
)

type fakeView struct {
	self   hexgrid.WorldPosition
	selfOk bool
	closest hexgrid.EntityId
	closestPos hexgrid.WorldPosition
	closestOk bool
	kinds   map[hexgrid.EntityId]script.EntityKind
}

func (f *fakeView) Self(bot hexgrid.EntityId) (hexgrid.WorldPosition, bool) { return f.self, f.selfOk }

func (f *fakeView) FindClosestByRange(center hexgrid.WorldPosition, radius uint32, kind script.EntityKind) (hexgrid.EntityId, hexgrid.WorldPosition, bool) {
	return f.closest, f.closestPos, f.closestOk
}

func (f *fakeView) EntityKindOf(id hexgrid.EntityId) (script.EntityKind, bool) {
	k, ok := f.kinds[id]
	return k, ok
}

func TestCompileRejectsSyntaxError(t *testing.T) {
	rt := New()
	if _, err := rt.Compile("this is not {{ valid js"); err == nil {
		t.Fatal("expected a syntax error to be reported")
	}
}

func TestRunMineResourceQueuesMineIntent(t *testing.T) {
	rt := New()
	prog, err := rt.Compile(`mine_resource(42)`)
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}

	view := &fakeView{}
	res, err := prog.Run(context.Background(), 7, view)
	if err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}
	if len(res.Intents.Mines) != 1 || res.Intents.Mines[0].Target != 42 || res.Intents.Mines[0].Bot != 7 {
		t.Fatalf("expected one Mine intent against target 42 from bot 7, got %+v", res.Intents.Mines)
	}
}

func TestRunConsoleLogAccumulatesLogsAndIntent(t *testing.T) {
	rt := New()
	prog, err := rt.Compile(`console_log("hello")`)
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}

	res, err := prog.Run(context.Background(), 1, &fakeView{})
	if err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}
	if len(res.Logs) != 1 || res.Logs[0] != "hello" {
		t.Fatalf("expected one log line %q, got %v", "hello", res.Logs)
	}
	if len(res.Intents.Logs) != 1 || res.Intents.Logs[0].Payload != "hello" {
		t.Fatalf("expected one Log intent carrying the same payload, got %+v", res.Intents.Logs)
	}
}

func TestRunRespectsContextDeadline(t *testing.T) {
	rt := New()
	prog, err := rt.Compile(`while (true) {}`)
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := prog.Run(ctx, 1, &fakeView{}); err == nil {
		t.Fatal("expected an infinite loop to be interrupted by the context deadline")
	}
}

func TestParseFindConstantIsCallableFromScript(t *testing.T) {
	rt := New()
	prog, err := rt.Compile(`
		var kind = parse_find_constant("FIND_BOTS");
		log_scalar("kind", kind);
	`)
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}

	res, err := prog.Run(context.Background(), 1, &fakeView{})
	if err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}
	if len(res.Logs) != 1 || res.Logs[0] != "kind=1" {
		t.Fatalf("expected parse_find_constant(\"FIND_BOTS\") to resolve to KindBot (1), got %v", res.Logs)
	}
}

func TestFindClosestByRangeTranslatesFindConstant(t *testing.T) {
	rt := New()
	prog, err := rt.Compile(`
		var pos = world_position(make_point(0,0), make_point(1,1));
		var found = find_closest_by_range(pos, 5, "FIND_RESOURCES");
		if (found) { mine_resource(99); }
	`)
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}

	view := &fakeView{closest: 99, closestOk: true}
	res, err := prog.Run(context.Background(), 3, view)
	if err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}
	if len(res.Intents.Mines) != 1 || res.Intents.Mines[0].Target != 99 {
		t.Fatalf("expected find_closest_by_range result to drive a mine intent, got %+v", res.Intents.Mines)
	}
}
