package b2d

import (
	"fmt"

	"github.com/setanarut/b2d/collision"
	"github.com/setanarut/b2d/geom"
	"github.com/setanarut/vec"
)

// FixtureDef holds everything needed to attach a shape to a body.
type FixtureDef struct {
	// Shape is cloned into the fixture.
	Shape    collision.Shape
	UserData any

	// Friction coefficient, usually in [0,1].
	Friction float64
	// Restitution (elasticity), usually in [0,1].
	Restitution float64
	// Density in kg/m^2.
	Density float64

	// IsSensor fixtures detect overlap but produce no collision response.
	IsSensor bool
	Filter   Filter
}

// DefaultFixtureDef returns a definition with friction 0.2 and the default filter.
func DefaultFixtureDef(shape collision.Shape) FixtureDef {
	return FixtureDef{
		Shape:    shape,
		Friction: 0.2,
		Filter:   DefaultFilter,
	}
}

func (def *FixtureDef) validate() error {
	switch {
	case def.Shape == nil:
		return fmt.Errorf("%w: fixture without shape", ErrInvalidDef)
	case def.Density < 0 || !geom.IsFinite(def.Density):
		return fmt.Errorf("%w: density %v", ErrInvalidDef, def.Density)
	case def.Friction < 0 || !geom.IsFinite(def.Friction):
		return fmt.Errorf("%w: friction %v", ErrInvalidDef, def.Friction)
	case def.Restitution < 0 || !geom.IsFinite(def.Restitution):
		return fmt.Errorf("%w: restitution %v", ErrInvalidDef, def.Restitution)
	}
	return nil
}

// FixtureProxy connects one child of a fixture to the broad-phase.
type FixtureProxy struct {
	AABB       collision.AABB
	Fixture    *Fixture
	ChildIndex int
	ProxyID    int
}

// Fixture attaches a shape to a body for collision. Fixtures are created
// with Body.CreateFixture.
type Fixture struct {
	UserData any

	body        *Body
	shape       collision.Shape
	density     float64
	friction    float64
	restitution float64
	isSensor    bool
	filter      Filter

	// one per shape child, allocated once so proxy pointers stay stable
	proxies []FixtureProxy
}

func newFixture(body *Body, def *FixtureDef) *Fixture {
	return &Fixture{
		UserData:    def.UserData,
		body:        body,
		shape:       def.Shape.Clone(),
		density:     def.Density,
		friction:    def.Friction,
		restitution: def.Restitution,
		isSensor:    def.IsSensor,
		filter:      def.Filter,
	}
}

// Type returns the shape type.
func (f *Fixture) Type() collision.ShapeType {
	return f.shape.Type()
}

// Shape returns the fixture's own copy of the shape. Changing it
// invalidates mass data and proxies.
func (f *Fixture) Shape() collision.Shape {
	return f.shape
}

// Body returns the parent body, nil once the fixture is destroyed.
func (f *Fixture) Body() *Body {
	return f.body
}

func (f *Fixture) IsSensor() bool {
	return f.isSensor
}

// SetSensor toggles sensor mode and wakes the body.
func (f *Fixture) SetSensor(sensor bool) {
	if sensor != f.isSensor {
		f.body.SetAwake(true)
		f.isSensor = sensor
	}
}

func (f *Fixture) FilterData() Filter {
	return f.filter
}

// SetFilterData replaces the filter and re-evaluates contacts on the next step.
func (f *Fixture) SetFilterData(filter Filter) {
	f.filter = filter
	f.Refilter()
}

// Refilter flags the fixture's contacts for filtering and touches its proxies.
func (f *Fixture) Refilter() {
	if f.body == nil {
		return
	}

	// flag associated contacts for filtering
	for edge := f.body.contactList; edge != nil; edge = edge.Next {
		c := edge.Contact
		if c.fixtureA == f || c.fixtureB == f {
			c.FlagForFiltering()
		}
	}

	w := f.body.world
	if w == nil {
		return
	}

	// touch each proxy so that new pairs may be created
	bp := w.contactManager.broadPhase
	for i := range f.proxies {
		bp.TouchProxy(f.proxies[i].ProxyID)
	}
}

func (f *Fixture) Density() float64 {
	return f.density
}

// SetDensity changes the density. Call Body.ResetMassData to apply it.
func (f *Fixture) SetDensity(density float64) {
	f.density = density
}

func (f *Fixture) Friction() float64 {
	return f.friction
}

// SetFriction does not change existing contacts.
func (f *Fixture) SetFriction(friction float64) {
	f.friction = friction
}

func (f *Fixture) Restitution() float64 {
	return f.restitution
}

// SetRestitution does not change existing contacts.
func (f *Fixture) SetRestitution(restitution float64) {
	f.restitution = restitution
}

// TestPoint tests a world point for containment.
func (f *Fixture) TestPoint(p vec.Vec2) bool {
	return f.shape.TestPoint(f.body.xf, p)
}

// RayCast casts a ray against a shape child.
func (f *Fixture) RayCast(input collision.RayCastInput, childIndex int) (collision.RayCastOutput, bool) {
	return f.shape.RayCast(input, f.body.xf, childIndex)
}

// MassData computes the mass properties from shape and density.
func (f *Fixture) MassData() collision.MassData {
	return f.shape.ComputeMass(f.density)
}

// AABB returns the tight AABB of a child covering the body's motion over the
// last step. The broad-phase fattening is not included. Bounds are only valid
// while the body is active.
func (f *Fixture) AABB(childIndex int) collision.AABB {
	return f.proxies[childIndex].AABB
}

func (f *Fixture) createProxies(bp *collision.BroadPhase[*FixtureProxy], xf geom.Transform) {
	n := f.shape.ChildCount()
	f.proxies = make([]FixtureProxy, n)
	for i := range n {
		proxy := &f.proxies[i]
		proxy.AABB = f.shape.ComputeAABB(xf, i)
		proxy.Fixture = f
		proxy.ChildIndex = i
		proxy.ProxyID = bp.CreateProxy(proxy.AABB, proxy)
	}
}

func (f *Fixture) destroyProxies(bp *collision.BroadPhase[*FixtureProxy]) {
	for i := range f.proxies {
		bp.DestroyProxy(f.proxies[i].ProxyID)
		f.proxies[i].ProxyID = collision.NullProxy
	}
	f.proxies = nil
}

// synchronize moves each proxy to the union of the child AABBs at the two
// transforms.
func (f *Fixture) synchronize(bp *collision.BroadPhase[*FixtureProxy], xf1, xf2 geom.Transform) {
	for i := range f.proxies {
		proxy := &f.proxies[i]

		aabb1 := f.shape.ComputeAABB(xf1, proxy.ChildIndex)
		aabb2 := f.shape.ComputeAABB(xf2, proxy.ChildIndex)
		proxy.AABB = aabb1.Merge(aabb2)

		displacement := xf2.P.Sub(xf1.P)
		bp.MoveProxy(proxy.ProxyID, proxy.AABB, displacement)
	}
}
