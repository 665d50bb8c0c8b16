package b2d_test

import (
	"errors"
	"math"
	"testing"

	"github.com/setanarut/b2d"
	"github.com/setanarut/b2d/collision"
	"github.com/setanarut/vec"
)

func TestBodyMassData(t *testing.T) {
	w := newWorld(t, vec.Vec2{})

	tests := []struct {
		name        string
		shape       collision.Shape
		density     float64
		mass        float64
		center      vec.Vec2
		inertia     float64
		fixRotation bool
	}{
		{"box", collision.NewBox(0.5, 0.5), 2, 2, vec.Vec2{}, 1.0 / 3.0, false},
		{"offset box", collision.NewOrientedBox(0.5, 0.5, vec.Vec2{X: 1, Y: 0}, 0), 2, 2, vec.Vec2{X: 1, Y: 0}, 1.0/3.0 + 2, false},
		{"circle", collision.NewCircle(vec.Vec2{}, 1), 1, math.Pi, vec.Vec2{}, 0.5 * math.Pi, false},
		{"fixed rotation", collision.NewBox(0.5, 0.5), 2, 2, vec.Vec2{}, 0, true},
		{"massless", collision.NewBox(0.5, 0.5), 0, 1, vec.Vec2{}, 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			def := b2d.DefaultBodyDef()
			def.Type = b2d.Dynamic
			def.FixedRotation = tc.fixRotation
			b, err := w.CreateBody(&def)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := b.CreateFixtureFromShape(tc.shape, tc.density); err != nil {
				t.Fatal(err)
			}
			b.ResetMassData()

			if got := b.Mass(); !near(got, tc.mass, 1e-9) {
				t.Errorf("got mass %v want %v", got, tc.mass)
			}
			if got := b.LocalCenter(); !near(got.X, tc.center.X, 1e-9) || !near(got.Y, tc.center.Y, 1e-9) {
				t.Errorf("got center %v want %v", got, tc.center)
			}
			if got := b.Inertia(); !near(got, tc.inertia, 1e-9) {
				t.Errorf("got inertia %v want %v", got, tc.inertia)
			}
			if got, want := b.InvMass(), 1/tc.mass; !near(got, want, 1e-9) {
				t.Errorf("got inverse mass %v want %v", got, want)
			}
		})
	}
}

func TestSetMassData(t *testing.T) {
	w := newWorld(t, vec.Vec2{})
	b := addBox(t, w, vec.Vec2{X: 1, Y: 1}, 0.5, 0.5, 1)

	if err := b.SetMassData(collision.MassData{Mass: 4, Center: vec.Vec2{X: 0.5, Y: 0}, I: 3}); err != nil {
		t.Fatal(err)
	}
	if got := b.Mass(); got != 4 {
		t.Errorf("got mass %v want 4", got)
	}
	if got := b.WorldCenter(); !near(got.X, 1.5, 1e-12) || !near(got.Y, 1, 1e-12) {
		t.Errorf("got world center %v want (1.5, 1)", got)
	}
	if got, want := b.InvInertia(), 1/(3-4*0.25); !near(got, want, 1e-12) {
		t.Errorf("got inverse inertia %v want %v", got, want)
	}

	md := b.MassData()
	if !near(md.I, 3, 1e-12) {
		t.Errorf("got mass data inertia %v want 3", md.I)
	}
}

func TestBodyTypeChange(t *testing.T) {
	w := newWorld(t, vec.Vec2{X: 0, Y: -10})
	addGround(t, w)
	b := addBox(t, w, vec.Vec2{X: 0, Y: 0.5}, 0.5, 0.5, 1)
	step(t, w, 2)
	if w.ContactCount() != 1 {
		t.Fatalf("got %v contacts want 1", w.ContactCount())
	}

	if err := b.SetType(b2d.Static); err != nil {
		t.Fatal(err)
	}
	if b.Mass() != 0 || b.InvMass() != 0 {
		t.Errorf("static body has mass %v", b.Mass())
	}
	if w.ContactCount() != 0 {
		t.Errorf("got %v contacts want 0", w.ContactCount())
	}

	// static pairs never form contacts
	step(t, w, 1)
	if w.ContactCount() != 0 {
		t.Errorf("got %v contacts between static bodies", w.ContactCount())
	}

	if err := b.SetType(b2d.Dynamic); err != nil {
		t.Fatal(err)
	}
	step(t, w, 1)
	if w.ContactCount() != 1 {
		t.Errorf("got %v contacts after making the body dynamic want 1", w.ContactCount())
	}
	if got := b.Type().String(); got != "dynamic" {
		t.Errorf("got type %q want dynamic", got)
	}
}

func TestSetActive(t *testing.T) {
	w := newWorld(t, vec.Vec2{X: 0, Y: -10})
	addGround(t, w)
	b := addBox(t, w, vec.Vec2{X: 0, Y: 0.5}, 0.5, 0.5, 1)
	step(t, w, 1)

	if err := b.SetActive(false); err != nil {
		t.Fatal(err)
	}
	if got := w.ProxyCount(); got != 1 {
		t.Errorf("got %v proxies want 1", got)
	}
	if w.ContactCount() != 0 {
		t.Errorf("got %v contacts want 0", w.ContactCount())
	}

	pos := b.Position()
	step(t, w, 10)
	if b.Position() != pos {
		t.Error("inactive body moved")
	}

	if err := b.SetActive(true); err != nil {
		t.Fatal(err)
	}
	step(t, w, 1)
	if w.ContactCount() != 1 {
		t.Errorf("got %v contacts after reactivation want 1", w.ContactCount())
	}
}

func TestBodyTransforms(t *testing.T) {
	w := newWorld(t, vec.Vec2{})
	b := addBox(t, w, vec.Vec2{}, 0.5, 0.5, 1)
	if err := b.SetTransform(vec.Vec2{X: 2, Y: 3}, math.Pi/2); err != nil {
		t.Fatal(err)
	}

	p := b.WorldPoint(vec.Vec2{X: 1, Y: 0})
	if !near(p.X, 2, 1e-12) || !near(p.Y, 4, 1e-12) {
		t.Errorf("got world point %v want (2, 4)", p)
	}
	l := b.LocalPoint(p)
	if !near(l.X, 1, 1e-12) || !near(l.Y, 0, 1e-12) {
		t.Errorf("got local point %v want (1, 0)", l)
	}

	b.SetAngularVelocity(2)
	v := b.LinearVelocityFromLocalPoint(vec.Vec2{X: 1, Y: 0})
	if !near(v.X, -2, 1e-12) || !near(v.Y, 0, 1e-12) {
		t.Errorf("got point velocity %v want (-2, 0)", v)
	}
}

func TestApplyForces(t *testing.T) {
	w := newWorld(t, vec.Vec2{})
	b := addBox(t, w, vec.Vec2{}, 0.5, 0.5, 1)
	b.SetAwake(false)

	b.ApplyForceToCenter(vec.Vec2{X: 1, Y: 0}, false)
	if b.Force() != (vec.Vec2{}) {
		t.Error("force applied to a sleeping body without waking it")
	}

	b.ApplyForceToCenter(vec.Vec2{X: 60, Y: 0}, true)
	step(t, w, 1)
	if got := b.LinearVelocity().X; !near(got, 1, 1e-12) {
		t.Errorf("got vx %v want 1", got)
	}
	if b.Force() != (vec.Vec2{}) {
		t.Error("forces were not cleared after the step")
	}

	b.ApplyLinearImpulse(vec.Vec2{X: 0, Y: 1}, b.WorldPoint(vec.Vec2{X: 0.5, Y: 0}), true)
	if got := b.AngularVelocity(); got <= 0 {
		t.Errorf("got angular velocity %v want positive", got)
	}
}

func TestFixtureFilter(t *testing.T) {
	tests := []struct {
		name string
		a, b b2d.Filter
		want bool
	}{
		{"default", b2d.DefaultFilter, b2d.DefaultFilter, true},
		{"same positive group", b2d.Filter{CategoryBits: 1, MaskBits: 0, GroupIndex: 2}, b2d.Filter{CategoryBits: 1, MaskBits: 0, GroupIndex: 2}, true},
		{"same negative group", b2d.Filter{CategoryBits: 1, MaskBits: 0xFFFF, GroupIndex: -1}, b2d.Filter{CategoryBits: 1, MaskBits: 0xFFFF, GroupIndex: -1}, false},
		{"masked out", b2d.Filter{CategoryBits: 2, MaskBits: 0xFFFF}, b2d.Filter{CategoryBits: 1, MaskBits: 1}, false},
		{"different groups fall back to bits", b2d.Filter{CategoryBits: 1, MaskBits: 0xFFFF, GroupIndex: -1}, b2d.Filter{CategoryBits: 1, MaskBits: 0xFFFF, GroupIndex: -2}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.ShouldCollide(tc.b); got != tc.want {
				t.Errorf("got %v want %v", got, tc.want)
			}
			if got := tc.b.ShouldCollide(tc.a); got != tc.want {
				t.Errorf("got %v reversed want %v", got, tc.want)
			}
		})
	}
}

func TestSetFilterDataRemovesContact(t *testing.T) {
	w := newWorld(t, vec.Vec2{X: 0, Y: -10})
	addGround(t, w)
	b := addBox(t, w, vec.Vec2{X: 0, Y: 0.5}, 0.5, 0.5, 1)
	step(t, w, 1)
	if w.ContactCount() != 1 {
		t.Fatalf("got %v contacts want 1", w.ContactCount())
	}

	f := b.Fixtures()[0]
	f.SetFilterData(b2d.Filter{CategoryBits: 2, MaskBits: 2})
	step(t, w, 1)
	if w.ContactCount() != 0 {
		t.Errorf("got %v contacts after filtering want 0", w.ContactCount())
	}

	f.SetFilterData(b2d.DefaultFilter)
	step(t, w, 1)
	if w.ContactCount() != 1 {
		t.Errorf("got %v contacts after restoring the filter want 1", w.ContactCount())
	}
}

func TestFixtureErrors(t *testing.T) {
	w := newWorld(t, vec.Vec2{})
	b := addBox(t, w, vec.Vec2{}, 0.5, 0.5, 1)

	def := b2d.DefaultFixtureDef(collision.NewBox(1, 1))
	def.Density = -1
	if _, err := b.CreateFixture(&def); !errors.Is(err, b2d.ErrInvalidDef) {
		t.Errorf("got %v want ErrInvalidDef for negative density", err)
	}

	other := addBox(t, w, vec.Vec2{X: 5, Y: 0}, 0.5, 0.5, 1)
	if err := b.DestroyFixture(other.Fixtures()[0]); !errors.Is(err, b2d.ErrForeignBody) {
		t.Errorf("got %v want ErrForeignBody", err)
	}

	f := b.Fixtures()[0]
	if err := b.DestroyFixture(f); err != nil {
		t.Fatal(err)
	}
	if f.Body() != nil || len(b.Fixtures()) != 0 {
		t.Error("fixture still attached")
	}
	// dynamic bodies keep a unit mass without fixtures
	if b.Mass() != 1 {
		t.Errorf("got mass %v want 1", b.Mass())
	}
}

func TestBodyDefValidation(t *testing.T) {
	w := newWorld(t, vec.Vec2{})
	def := b2d.DefaultBodyDef()
	def.Position = vec.Vec2{X: math.NaN(), Y: 0}
	if _, err := w.CreateBody(&def); !errors.Is(err, b2d.ErrInvalidDef) {
		t.Errorf("got %v want ErrInvalidDef", err)
	}
}

func TestBodyFlags(t *testing.T) {
	w := newWorld(t, vec.Vec2{})
	def := b2d.DefaultBodyDef()
	def.Type = b2d.Dynamic
	def.Bullet = true
	def.FixedRotation = true
	b, err := w.CreateBody(&def)
	if err != nil {
		t.Fatal(err)
	}

	if !b.IsBullet() || !b.IsFixedRotation() || !b.IsAwake() || !b.IsActive() || !b.IsSleepingAllowed() {
		t.Fatal("definition flags not applied")
	}
	b.SetBullet(false)
	b.SetFixedRotation(false)
	b.SetSleepingAllowed(false)
	if b.IsBullet() || b.IsFixedRotation() || b.IsSleepingAllowed() {
		t.Error("flags not cleared")
	}
	// the remaining flags are untouched
	if !b.IsAwake() || !b.IsActive() {
		t.Error("awake or active flag lost")
	}
}

func TestFixtureAABBCoversMotion(t *testing.T) {
	w := newWorld(t, vec.Vec2{})
	b := addBox(t, w, vec.Vec2{}, 0.5, 0.5, 1)
	f := b.Fixtures()[0]

	r := collision.PolygonRadius
	box := f.AABB(0)
	if !near(box.Lower.X, -0.5-r, 1e-12) || !near(box.Upper.Y, 0.5+r, 1e-12) {
		t.Errorf("got %v want tight bounds at +-%v", box, 0.5+r)
	}

	b.SetLinearVelocity(vec.Vec2{X: 60})
	step(t, w, 1)
	box = f.AABB(0)
	// swept union of the box at x=0 and x=1
	if !near(box.Lower.X, -0.5-r, 1e-9) || !near(box.Upper.X, 1.5+r, 1e-9) {
		t.Errorf("got %v want x range [%v, %v]", box, -0.5-r, 1.5+r)
	}
	if !near(box.Lower.Y, -0.5-r, 1e-9) {
		t.Errorf("got lower y %v want %v", box.Lower.Y, -0.5-r)
	}
}
