package collision_test

import (
	"math"
	"testing"

	"github.com/setanarut/b2d/collision"
	"github.com/setanarut/b2d/geom"
	"github.com/setanarut/vec"
)

func TestTimeOfImpactCircleThroughBox(t *testing.T) {
	c := collision.NewCircle(vec.Vec2{}, 0.5)
	b := collision.NewBox(1, 1)

	input := collision.TOIInput{
		ProxyA: b.Proxy(0),
		ProxyB: c.Proxy(0),
		SweepA: geom.Sweep{},
		SweepB: geom.Sweep{
			C0: vec.Vec2{X: -5, Y: 0},
			C:  vec.Vec2{X: 5, Y: 0},
		},
		TMax: 1,
	}
	out := collision.TimeOfImpact(&input)
	if out.State != collision.TOITouching {
		t.Fatalf("state: got %v want touching", out.State)
	}

	// the cores stop at target = totalRadius - 3*LinearSlop
	target := c.R + b.R - 3*collision.LinearSlop
	want := (-1 - target + 5) / 10
	if math.Abs(out.T-want) > 1e-3 {
		t.Errorf("t: got %v want %v", out.T, want)
	}
}

func TestTimeOfImpactSeparated(t *testing.T) {
	c := collision.NewCircle(vec.Vec2{}, 0.5)
	b := collision.NewBox(1, 1)

	input := collision.TOIInput{
		ProxyA: b.Proxy(0),
		ProxyB: c.Proxy(0),
		SweepB: geom.Sweep{
			C0: vec.Vec2{X: -5, Y: 3},
			C:  vec.Vec2{X: 5, Y: 3},
		},
		TMax: 1,
	}
	out := collision.TimeOfImpact(&input)
	if out.State != collision.TOISeparated || out.T != 1 {
		t.Errorf("got %+v want separated at 1", out)
	}
}

func TestTimeOfImpactOverlapped(t *testing.T) {
	a := collision.NewBox(1, 1)
	b := collision.NewBox(1, 1)
	input := collision.TOIInput{
		ProxyA: a.Proxy(0),
		ProxyB: b.Proxy(0),
		SweepB: geom.Sweep{C0: vec.Vec2{X: 0.5}, C: vec.Vec2{X: 0.5}},
		TMax:   1,
	}
	out := collision.TimeOfImpact(&input)
	if out.State != collision.TOIOverlapped || out.T != 0 {
		t.Errorf("got %+v want overlapped at 0", out)
	}
}
