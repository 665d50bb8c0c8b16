package b2d_test

import (
	"errors"
	"math"
	"testing"

	"github.com/setanarut/b2d"
	"github.com/setanarut/b2d/collision"
	"github.com/setanarut/vec"
)

const dt = 1.0 / 60.0

func newWorld(t *testing.T, gravity vec.Vec2) *b2d.World {
	t.Helper()
	def := b2d.DefaultWorldDef()
	def.Gravity = gravity
	return b2d.NewWorld(def)
}

// addGround creates a 40m wide static slab whose top face is y = 0.
func addGround(t *testing.T, w *b2d.World) *b2d.Body {
	t.Helper()
	def := b2d.DefaultBodyDef()
	def.Position = vec.Vec2{X: 0, Y: -1}
	b, err := w.CreateBody(&def)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.CreateFixtureFromShape(collision.NewBox(20, 1), 0); err != nil {
		t.Fatal(err)
	}
	return b
}

func addBox(t *testing.T, w *b2d.World, pos vec.Vec2, hx, hy, density float64) *b2d.Body {
	t.Helper()
	def := b2d.DefaultBodyDef()
	def.Type = b2d.Dynamic
	def.Position = pos
	b, err := w.CreateBody(&def)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.CreateFixtureFromShape(collision.NewBox(hx, hy), density); err != nil {
		t.Fatal(err)
	}
	return b
}

func step(t *testing.T, w *b2d.World, n int) {
	t.Helper()
	for range n {
		if err := w.Step(dt, 8, 3); err != nil {
			t.Fatal(err)
		}
	}
}

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestFreeFall(t *testing.T) {
	w := newWorld(t, vec.Vec2{X: 0, Y: -10})

	def := b2d.DefaultBodyDef()
	def.Type = b2d.Dynamic
	def.Position = vec.Vec2{X: 0, Y: 10}
	b, err := w.CreateBody(&def)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.CreateFixtureFromShape(collision.NewCircle(vec.Vec2{}, 0.5), 1); err != nil {
		t.Fatal(err)
	}

	step(t, w, 1)

	// velocity is integrated before position
	if got, want := b.LinearVelocity().Y, -10*dt; !near(got, want, 1e-12) {
		t.Errorf("got vy %v want %v", got, want)
	}
	if got, want := b.Position().Y, 10-10*dt*dt; !near(got, want, 1e-12) {
		t.Errorf("got y %v want %v", got, want)
	}
	if got := b.Position().X; got != 0 {
		t.Errorf("got x %v want 0", got)
	}
}

func TestStepZeroDt(t *testing.T) {
	w := newWorld(t, vec.Vec2{X: 0, Y: -10})
	b := addBox(t, w, vec.Vec2{X: 0, Y: 5}, 0.5, 0.5, 1)

	if err := w.Step(0, 8, 3); err != nil {
		t.Fatal(err)
	}
	if got := b.Position(); got != (vec.Vec2{X: 0, Y: 5}) {
		t.Errorf("got %v want unchanged position", got)
	}
	if got := b.LinearVelocity(); got != (vec.Vec2{}) {
		t.Errorf("got %v want zero velocity", got)
	}
}

func TestLockedDuringCallbacks(t *testing.T) {
	w := newWorld(t, vec.Vec2{X: 0, Y: -10})
	addGround(t, w)
	addBox(t, w, vec.Vec2{X: 0, Y: 0.6}, 0.5, 0.5, 1)

	var createErr, stepErr error
	listener := &b2d.ContactListenerFuncs{
		BeginFunc: func(c *b2d.Contact) {
			def := b2d.DefaultBodyDef()
			_, createErr = w.CreateBody(&def)
			stepErr = w.Step(dt, 8, 3)
			w.AddPostStepCallback(func(w *b2d.World, key any) {
				def := b2d.DefaultBodyDef()
				if _, err := w.CreateBody(&def); err != nil {
					t.Error(err)
				}
			}, c)
		},
	}
	w.SetContactListener(listener)

	step(t, w, 30)

	if !errors.Is(createErr, b2d.ErrLocked) {
		t.Errorf("got %v want ErrLocked from CreateBody", createErr)
	}
	if !errors.Is(stepErr, b2d.ErrLocked) {
		t.Errorf("got %v want ErrLocked from Step", stepErr)
	}
	if w.IsLocked() {
		t.Error("world still locked after Step")
	}
	if got, want := w.BodyCount(), 3; got != want {
		t.Errorf("got %v bodies want %v", got, want)
	}
}

func TestPostStepCallbackOncePerKey(t *testing.T) {
	w := newWorld(t, vec.Vec2{})
	calls := 0
	fn := func(*b2d.World, any) { calls++ }

	key := new(int)
	if !w.AddPostStepCallback(fn, key) {
		t.Fatal("first callback rejected")
	}
	if w.AddPostStepCallback(fn, key) {
		t.Error("second callback with the same key accepted")
	}

	step(t, w, 1)
	if calls != 1 {
		t.Errorf("got %v calls want 1", calls)
	}

	step(t, w, 1)
	if calls != 1 {
		t.Errorf("got %v calls after second step want 1", calls)
	}
}

type goodbyeCounter struct {
	joints, fixtures int
}

func (g *goodbyeCounter) SayGoodbyeJoint(b2d.Joint)      { g.joints++ }
func (g *goodbyeCounter) SayGoodbyeFixture(*b2d.Fixture) { g.fixtures++ }

func TestDestroyBody(t *testing.T) {
	w := newWorld(t, vec.Vec2{X: 0, Y: -10})
	ground := addGround(t, w)
	b := addBox(t, w, vec.Vec2{X: 0, Y: 0.5}, 0.5, 0.5, 1)
	if _, err := b.CreateFixtureFromShape(collision.NewCircle(vec.Vec2{X: 0, Y: 1}, 0.25), 1); err != nil {
		t.Fatal(err)
	}

	var jd b2d.RevoluteJointDef
	jd.Initialize(ground, b, vec.Vec2{X: 0, Y: 0.5})
	jd.CollideConnected = true
	if err := w.CreateJoint(b2d.NewRevoluteJoint(&jd)); err != nil {
		t.Fatal(err)
	}

	ended := 0
	w.SetContactListener(&b2d.ContactListenerFuncs{
		EndFunc: func(*b2d.Contact) { ended++ },
	})
	counter := &goodbyeCounter{}
	w.SetDestructionListener(counter)

	step(t, w, 5)
	if w.ContactCount() == 0 {
		t.Fatal("box is not touching the ground")
	}

	if err := w.DestroyBody(b); err != nil {
		t.Fatal(err)
	}

	if counter.fixtures != 2 || counter.joints != 1 {
		t.Errorf("got %d fixtures %d joints want 2 and 1", counter.fixtures, counter.joints)
	}
	if ended != 1 {
		t.Errorf("got %v end contacts want 1", ended)
	}
	if got := w.BodyCount(); got != 1 {
		t.Errorf("got %v bodies want 1", got)
	}
	if w.JointCount() != 0 || ground.JointList() != nil {
		t.Error("joint survived its body")
	}
	if w.ContactCount() != 0 || ground.ContactList() != nil {
		t.Error("contact survived its body")
	}
	if got := w.ProxyCount(); got != 1 {
		t.Errorf("got %v proxies want 1", got)
	}
	if err := w.DestroyBody(b); !errors.Is(err, b2d.ErrForeignBody) {
		t.Errorf("got %v want ErrForeignBody", err)
	}
}

func TestQueryAABB(t *testing.T) {
	w := newWorld(t, vec.Vec2{})
	for i := range 5 {
		addBox(t, w, vec.Vec2{X: float64(i) * 3, Y: 0}, 0.5, 0.5, 1)
	}

	var found []*b2d.Fixture
	w.QueryAABB(collision.NewAABB(vec.Vec2{X: 5.5, Y: -0.25}, vec.Vec2{X: 6.5, Y: 0.25}), func(f *b2d.Fixture) bool {
		found = append(found, f)
		return true
	})
	if len(found) != 1 {
		t.Fatalf("got %v fixtures want 1", len(found))
	}
	if got := found[0].Body().Position(); got != (vec.Vec2{X: 6, Y: 0}) {
		t.Errorf("got body at %v want (6, 0)", got)
	}

	calls := 0
	w.QueryAABB(collision.NewAABB(vec.Vec2{X: -10, Y: -10}, vec.Vec2{X: 20, Y: 10}), func(*b2d.Fixture) bool {
		calls++
		return false
	})
	if calls != 1 {
		t.Errorf("got %v calls after stopping want 1", calls)
	}
}

func TestRayCastClosest(t *testing.T) {
	w := newWorld(t, vec.Vec2{})
	addBox(t, w, vec.Vec2{X: 8, Y: 0}, 0.5, 0.5, 1)
	addBox(t, w, vec.Vec2{X: 4, Y: 0}, 0.5, 0.5, 1)
	addBox(t, w, vec.Vec2{X: 4, Y: 5}, 0.5, 0.5, 1)

	var (
		hit     *b2d.Fixture
		point   vec.Vec2
		normal  vec.Vec2
		closest = 1.0
	)
	w.RayCast(vec.Vec2{}, vec.Vec2{X: 10, Y: 0}, func(f *b2d.Fixture, p, n vec.Vec2, fraction float64) float64 {
		if fraction < closest {
			hit, point, normal, closest = f, p, n, fraction
		}
		return fraction
	})

	if hit == nil {
		t.Fatal("ray missed")
	}
	if got := hit.Body().Position().X; got != 4 {
		t.Errorf("got hit body at x %v want 4", got)
	}
	if !near(point.X, 3.5, 1e-9) || !near(point.Y, 0, 1e-9) {
		t.Errorf("got point %v want (3.5, 0)", point)
	}
	if !near(normal.X, -1, 1e-9) {
		t.Errorf("got normal %v want (-1, 0)", normal)
	}
	if !near(closest, 0.35, 1e-9) {
		t.Errorf("got fraction %v want 0.35", closest)
	}
}

func TestStackFallsAsleep(t *testing.T) {
	w := newWorld(t, vec.Vec2{X: 0, Y: -10})
	addGround(t, w)
	lower := addBox(t, w, vec.Vec2{X: 0, Y: 0.5}, 0.5, 0.5, 1)
	upper := addBox(t, w, vec.Vec2{X: 0, Y: 1.5}, 0.5, 0.5, 1)

	for range 600 {
		step(t, w, 1)
		if !lower.IsAwake() && !upper.IsAwake() {
			break
		}
		// islands sleep as a unit
		if lower.IsAwake() != upper.IsAwake() {
			t.Fatal("stacked boxes disagree on sleep state")
		}
	}
	if lower.IsAwake() || upper.IsAwake() {
		t.Fatal("stack never fell asleep")
	}
	if got := upper.LinearVelocity(); got != (vec.Vec2{}) {
		t.Errorf("got %v want zero velocity while asleep", got)
	}
	if y := upper.Position().Y; !near(y, 1.5, 0.02) {
		t.Errorf("got upper box y %v want about 1.5", y)
	}

	upper.ApplyLinearImpulseToCenter(vec.Vec2{X: 0, Y: 1}, true)
	if !upper.IsAwake() {
		t.Error("impulse did not wake the box")
	}
	step(t, w, 1)
	if !lower.IsAwake() {
		t.Error("waking one box did not wake its island")
	}
}

func TestBulletDoesNotTunnel(t *testing.T) {
	tests := []struct {
		name   string
		bullet bool
		speed  float64
	}{
		{"static wall", false, 600},
		{"dynamic wall", true, 600},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := newWorld(t, vec.Vec2{})

			wallDef := b2d.DefaultBodyDef()
			wallDef.Position = vec.Vec2{X: 10, Y: 0}
			if tc.bullet {
				wallDef.Type = b2d.Dynamic
			}
			wall, err := w.CreateBody(&wallDef)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := wall.CreateFixtureFromShape(collision.NewBox(0.1, 5), 50); err != nil {
				t.Fatal(err)
			}

			def := b2d.DefaultBodyDef()
			def.Type = b2d.Dynamic
			def.Bullet = tc.bullet
			def.LinearVelocity = vec.Vec2{X: tc.speed, Y: 0}
			ball, err := w.CreateBody(&def)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := ball.CreateFixtureFromShape(collision.NewCircle(vec.Vec2{}, 0.1), 1); err != nil {
				t.Fatal(err)
			}

			for i := range 30 {
				step(t, w, 1)
				if ball.Position().X > wall.Position().X {
					t.Fatalf("ball passed the wall at step %d: ball %v wall %v", i, ball.Position(), wall.Position())
				}
			}
		})
	}
}

func TestSetAllowSleepingWakesBodies(t *testing.T) {
	w := newWorld(t, vec.Vec2{X: 0, Y: -10})
	addGround(t, w)
	b := addBox(t, w, vec.Vec2{X: 0, Y: 0.5}, 0.5, 0.5, 1)
	b.SetAwake(false)

	w.SetAllowSleeping(false)
	if !b.IsAwake() {
		t.Error("disabling sleep left a body asleep")
	}
	if w.AllowSleeping() {
		t.Error("got AllowSleeping true")
	}
}

func TestShiftOrigin(t *testing.T) {
	w := newWorld(t, vec.Vec2{})
	b := addBox(t, w, vec.Vec2{X: 5, Y: 5}, 0.5, 0.5, 1)

	if err := w.ShiftOrigin(vec.Vec2{X: 5, Y: 0}); err != nil {
		t.Fatal(err)
	}
	if got := b.Position(); got != (vec.Vec2{X: 0, Y: 5}) {
		t.Errorf("got %v want (0, 5)", got)
	}

	found := 0
	w.QueryAABB(collision.NewAABB(vec.Vec2{X: -0.1, Y: 4.9}, vec.Vec2{X: 0.1, Y: 5.1}), func(*b2d.Fixture) bool {
		found++
		return true
	})
	if found != 1 {
		t.Errorf("got %v fixtures at the shifted position want 1", found)
	}
}
