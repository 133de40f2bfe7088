// Package hostscript is the concrete script.Runtime backing: each bot
// program is valid JavaScript, compiled and executed by
// github.com/dop251/goja (grounded on other_examples/manifests'
// r3e-network-service_layer, the one repo in the retrieval pack that embeds
// a scripting engine). A fresh goja.Runtime is created per Program.Run call
// since goja.Runtime is not safe for concurrent use and pkg/schedule runs
// many bots' scripts in parallel within a tick.
package hostscript

import (
	"context"
	"fmt"

	"github.com/dop251/goja"

	"github.com/hexswarm/sim/pkg/hexgrid"
	"github.com/hexswarm/sim/pkg/intent"
	"github.com/hexswarm/sim/pkg/script"
)

// Runtime compiles JavaScript bot programs.
type Runtime struct{}

// New returns a Runtime ready to compile programs.
func New() *Runtime { return &Runtime{} }

// Compile compiles source into a goja.Program once, catching syntax errors
// early; each Program.Run call executes that compiled program on a fresh
// goja.Runtime, since a goja.Program can be reused across VM instances but
// the VM instance itself cannot be shared across goroutines.
func (r *Runtime) Compile(source string) (script.Program, error) {
	prog, err := goja.Compile("bot.js", wrapSource(source), true)
	if err != nil {
		return nil, fmt.Errorf("hostscript: compile: %w", err)
	}
	return &program{prog: prog}, nil
}

// wrapSource wires the bot's source into a function body so host functions
// declared as globals are in scope without the script needing to import
// anything, matching the original engine's "script is a function body"
// execution model.
func wrapSource(source string) string {
	return "(function(){\n" + source + "\n})();"
}

type program struct {
	prog *goja.Program
}

func (p *program) Run(ctx context.Context, bot hexgrid.EntityId, view script.View) (script.Result, error) {
	vm := goja.New()
	h := &hostFuncs{bot: bot, view: view}
	vm.Set("console_log", h.consoleLog)
	vm.Set("log_scalar", h.logScalar)
	vm.Set("make_point", h.makePoint)
	vm.Set("world_position", h.worldPosition)
	vm.Set("find_closest_by_range", h.findClosestByRange)
	vm.Set("mine_resource", h.mineResource)
	vm.Set("approach_entity", h.approachEntity)
	vm.Set("move_bot_to_position", h.moveBotToPosition)
	vm.Set("unload", h.unload)
	vm.Set("parse_find_constant", h.parseFindConstant)

	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		vm.Interrupt("deadline exceeded")
	}()
	defer close(done)

	if _, err := vm.RunProgram(p.prog); err != nil {
		return script.Result{Logs: h.logs}, fmt.Errorf("hostscript: run: %w", err)
	}
	return script.Result{Intents: h.batch, Logs: h.logs}, nil
}

// hostFuncs accumulates one bot's intents and log lines across a single
// script invocation; it is discarded after Run returns.
type hostFuncs struct {
	bot   hexgrid.EntityId
	view  script.View
	batch intent.Batch
	logs  []string
}

func (h *hostFuncs) consoleLog(msg string) {
	h.logs = append(h.logs, msg)
	h.batch.Logs = append(h.batch.Logs, intent.Log{Bot: h.bot, Payload: msg})
}

func (h *hostFuncs) logScalar(name string, value float64) {
	msg := fmt.Sprintf("%s=%g", name, value)
	h.logs = append(h.logs, msg)
	h.batch.Logs = append(h.batch.Logs, intent.Log{Bot: h.bot, Payload: msg})
}

// makePoint is the host function a script calls to build an axial
// coordinate literal: make_point(q, r).
func (h *hostFuncs) makePoint(q, r int32) hexgrid.Axial {
	return hexgrid.NewAxial(q, r)
}

// worldPosition combines a room and a point into a full WorldPosition.
func (h *hostFuncs) worldPosition(room hexgrid.Axial, pos hexgrid.Axial) hexgrid.WorldPosition {
	return hexgrid.WorldPosition{Room: hexgrid.Room{Axial: room}, Pos: pos}
}

// parseFindConstant exposes script.ParseFindConstant directly so a script
// can translate one of the FIND_* constants on its own (e.g. to stash it in
// a variable) rather than only indirectly through find_closest_by_range. An
// unrecognised constant resolves to KindAny, the same zero value the
// script would get from an unset variable.
func (h *hostFuncs) parseFindConstant(findConstant string) script.EntityKind {
	kind, _ := script.ParseFindConstant(findConstant)
	return kind
}

// findClosestByRange exposes script.View.FindClosestByRange, translating
// the script-level find-constant string into an EntityKind via
// script.ParseFindConstant.
func (h *hostFuncs) findClosestByRange(center hexgrid.WorldPosition, radius uint32, findConstant string) (hexgrid.EntityId, bool) {
	kind, ok := script.ParseFindConstant(findConstant)
	if !ok {
		return 0, false
	}
	id, _, found := h.view.FindClosestByRange(center, radius, kind)
	return id, found
}

// mineResource queues a Mine intent against target.
func (h *hostFuncs) mineResource(target hexgrid.EntityId) {
	h.batch.Mines = append(h.batch.Mines, intent.Mine{Bot: h.bot, Target: target})
}

// approachEntity queues a Move intent toward one hex step closer to
// target's current position. The actual step-selection pathfinding is the
// script's own responsibility in the original engine's model; this host
// function only issues the intent once the script has picked a neighbour.
func (h *hostFuncs) approachEntity(step hexgrid.WorldPosition) {
	h.batch.Moves = append(h.batch.Moves, intent.Move{Bot: h.bot, Target: step})
}

// moveBotToPosition queues a Move intent to an explicit neighbour position.
func (h *hostFuncs) moveBotToPosition(target hexgrid.WorldPosition) {
	h.batch.Moves = append(h.batch.Moves, intent.Move{Bot: h.bot, Target: target})
}

// unload queues a Dropoff intent against target.
func (h *hostFuncs) unload(target hexgrid.EntityId) {
	h.batch.Dropoffs = append(h.batch.Dropoffs, intent.Dropoff{Bot: h.bot, Target: target})
}
