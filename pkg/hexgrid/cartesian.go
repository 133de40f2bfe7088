package hexgrid

import "github.com/go-gl/mathgl/mgl64"

// hexSize is the pixel/world-unit radius used when projecting axial
// coordinates to cartesian space, matching a "pointy-top" layout.
const hexSize = 1.0

// Cartesian projects a onto 2-D cartesian space using the standard
// pointy-top axial-to-pixel formula, returned as an mgl64.Vec2 the way
// _examples/dm-vev-adamant's World carries positions as mgl64 vectors
// rather than bare float pairs. Used by tooling that renders or exports a
// room's layout; the simulation itself never compares cartesian points.
func (a Axial) Cartesian() mgl64.Vec2 {
	x := hexSize * (sqrt3*float64(a.Q) + sqrt3/2*float64(a.R))
	y := hexSize * (1.5 * float64(a.R))
	return mgl64.Vec2{x, y}
}

// sqrt3 is precomputed rather than calling math.Sqrt at every projection.
const sqrt3 = 1.7320508075688772

// WorldVec3 extends Cartesian with a Z axis derived from Room:
// Z = roomSpacing * (Room.Q*1000 + Room.R). Rooms get distinct Z-slabs as
// long as every room's R lies in [0, 1000); rooms whose Q*1000+R coincide,
// such as (0,1000) and (1,0), share a slab.
func (p WorldPosition) WorldVec3(roomSpacing float64) mgl64.Vec3 {
	xy := p.Pos.Cartesian()
	z := roomSpacing * float64(p.Room.Q*1000+p.Room.R)
	return mgl64.Vec3{xy[0], xy[1], z}
}
