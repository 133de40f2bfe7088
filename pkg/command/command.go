// Package command implements the player-issued commands: placing a
// structure, updating a script's source, binding a script to a specific
// entity, changing a user's default script, and claiming an unclaimed room.
// Each is a struct whose Apply runs against a World inside an ExecFunc; no
// code in this module reads commands off a message queue. Grounded on SPEC_FULL.md §6's external
// command surface and original_source's command handling in
// executor/mp_executor, reworked against this module's World/store types.
package command

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hexswarm/sim/internal/world"
	"github.com/hexswarm/sim/pkg/hexgrid"
)

// ErrNotOwner is returned when a command's issuer does not own the entity
// or room it targets.
var ErrNotOwner = errors.New("command: issuer does not own target")

// ErrInvalidVersion is returned when a script command's version string is
// not valid semver.
var ErrInvalidVersion = errors.New("command: invalid script version")

// ErrRoomTaken is returned when TakeRoom targets a room that already has an
// owner.
var ErrRoomTaken = errors.New("command: room already owned")

var titleCaser = cases.Title(language.English)

// PlaceStructure creates a new structure entity of Kind at Pos, owned by
// Owner.
type PlaceStructure struct {
	Owner hexgrid.UserId
	Pos   hexgrid.WorldPosition
	Kind  world.StructureKind
}

// Apply inserts the structure, failing if Pos is already occupied. Must be
// called from inside a world.ExecFunc.
func (c PlaceStructure) Apply(w *world.World) error {
	if w.Positions.Contains(c.Pos) {
		return fmt.Errorf("command: place structure: %w", errPositionOccupied)
	}
	id := w.InsertEntity()
	if err := w.PlaceEntity(id, c.Pos); err != nil {
		return err
	}
	w.Structures.Insert(id, world.Structure{Kind: c.Kind})
	w.OwnedEntities.Insert(id, world.OwnedEntity{UserId: c.Owner})
	if c.Kind == world.StructureSpawn {
		w.SpawnQueues.Insert(id, world.SpawnQueueComponent{})
		// A spawn starts empty; its Energy.Max is the threshold itself
		// since applySpawnRequests never lets a request start above it
		// and applyDropoffs has nowhere useful to bank anything past it.
		cfg := w.Config.Unwrap()
		w.Energies.Insert(id, world.Energy{Amount: 0, Max: cfg.SpawnEnergyThreshold})
	}
	return nil
}

var errPositionOccupied = errors.New("position already occupied")

// UpdateScript creates or replaces a script's source and records the given
// Version. Version must be valid semver (a missing leading "v" is added,
// then it is validated with golang.org/x/mod/semver); Name is
// normalised to title case with golang.org/x/text so display is consistent
// regardless of how the client submitted it.
type UpdateScript struct {
	Owner   hexgrid.UserId
	Id      hexgrid.ScriptId
	Name    string
	Version string
	Source  string
}

// Apply validates and writes the script record. Must be called from inside
// a world.ExecFunc.
func (c UpdateScript) Apply(w *world.World) error {
	v := c.Version
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("command: update script %s: %w", c.Id, ErrInvalidVersion)
	}
	existing, ok := w.Scripts.Get(c.Id.String())
	if ok && existing.Owner != c.Owner {
		return fmt.Errorf("command: update script %s: %w", c.Id, ErrNotOwner)
	}
	w.Scripts.Insert(c.Id.String(), world.Script{
		Id:      c.Id,
		Owner:   c.Owner,
		Version: v,
		Name:    titleCaser.String(c.Name),
		Source:  c.Source,
	})
	return nil
}

// UpdateEntityScript binds ScriptId to Entity's EntityComponent, replacing
// whatever script it ran previously.
type UpdateEntityScript struct {
	Owner    hexgrid.UserId
	Entity   hexgrid.EntityId
	ScriptId hexgrid.ScriptId
}

// Apply rebinds the entity's script, failing if Owner does not own the
// entity or the script. Must be called from inside a world.ExecFunc.
func (c UpdateEntityScript) Apply(w *world.World) error {
	owned, ok := w.OwnedEntities.Get(c.Entity)
	if !ok || owned.UserId != c.Owner {
		return fmt.Errorf("command: update entity script: %w", ErrNotOwner)
	}
	script, ok := w.Scripts.Get(c.ScriptId.String())
	if !ok || script.Owner != c.Owner {
		return fmt.Errorf("command: update entity script: %w", ErrNotOwner)
	}
	w.EntityComponents.Insert(c.Entity, world.EntityComponent{ScriptId: c.ScriptId})
	return nil
}

// SetDefaultScript names, per room, the script an Owner wants newly spawned
// bots to run. No table stores this binding: RoomProperties has no field
// for it and spawned bots are not bound to a default script.
type SetDefaultScript struct {
	Owner    hexgrid.UserId
	Room     hexgrid.Room
	ScriptId hexgrid.ScriptId
}

// Apply checks that Owner owns both the room and the script and returns
// ErrNotOwner otherwise; on success it changes nothing in the world (see
// DESIGN.md).
func (c SetDefaultScript) Apply(w *world.World) error {
	props, ok := w.RoomProperties.Get(c.Room.Key())
	if !ok || props.OwnerUser != c.Owner {
		return fmt.Errorf("command: set default script: %w", ErrNotOwner)
	}
	script, ok := w.Scripts.Get(c.ScriptId.String())
	if !ok || script.Owner != c.Owner {
		return fmt.Errorf("command: set default script: %w", ErrNotOwner)
	}
	return nil
}

// TakeRoom claims an unowned room for User.
type TakeRoom struct {
	Owner hexgrid.UserId
	Room  hexgrid.Room
	Name  string
}

// Apply claims the room, failing if it is already owned. Must be called
// from inside a world.ExecFunc.
func (c TakeRoom) Apply(w *world.World) error {
	if _, ok := w.RoomProperties.Get(c.Room.Key()); ok {
		return fmt.Errorf("command: take room %s: %w", c.Room, ErrRoomTaken)
	}
	w.RoomProperties.Insert(c.Room.Key(), world.RoomProperties{
		Room:      c.Room,
		OwnerUser: c.Owner,
		Name:      titleCaser.String(c.Name),
	})
	return nil
}
