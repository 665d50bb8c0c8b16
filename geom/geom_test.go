package geom_test

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/setanarut/b2d/geom"
	"github.com/setanarut/vec"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func nearV(a, b vec.Vec2) bool {
	return near(a.X, b.X) && near(a.Y, b.Y)
}

func TestTransformRoundTrip(t *testing.T) {
	xf := geom.NewTransform(vec.Vec2{X: 3, Y: -2}, 0.7)
	p := vec.Vec2{X: 1.5, Y: 4}
	if got := xf.ApplyT(xf.Apply(p)); !nearV(got, p) {
		t.Errorf("got %v want %v", got, p)
	}
}

func TestTransformCompose(t *testing.T) {
	a := geom.NewTransform(vec.Vec2{X: 1, Y: 2}, 0.3)
	b := geom.NewTransform(vec.Vec2{X: -4, Y: 0.5}, -1.1)
	p := vec.Vec2{X: 0.25, Y: -3}

	if got, want := a.Mul(b).Apply(p), a.Apply(b.Apply(p)); !nearV(got, want) {
		t.Errorf("Mul: got %v want %v", got, want)
	}
	if got, want := a.MulT(b).Apply(p), a.ApplyT(b.Apply(p)); !nearV(got, want) {
		t.Errorf("MulT: got %v want %v", got, want)
	}
}

func TestRotAngle(t *testing.T) {
	q := geom.NewRot(1.25)
	if !near(q.Angle(), 1.25) {
		t.Errorf("got %v want 1.25", q.Angle())
	}
	if got := q.Mul(geom.NewRot(-1.25)); !near(got.Angle(), 0) {
		t.Errorf("got %v want 0", got.Angle())
	}
}

func TestSweepTransform(t *testing.T) {
	s := geom.Sweep{
		LocalCenter: vec.Vec2{X: 1, Y: 0},
		C0:          vec.Vec2{X: 0, Y: 0},
		C:           vec.Vec2{X: 10, Y: 0},
		A0:          0,
		A:           math.Pi / 2,
	}
	xf := s.Transform(0.5)
	// the center of mass lies halfway along the sweep
	if got := xf.Apply(s.LocalCenter); !nearV(got, vec.Vec2{X: 5, Y: 0}) {
		t.Errorf("center: got %v", got)
	}

	s.Advance(0.5)
	if !nearV(s.C0, vec.Vec2{X: 5, Y: 0}) || !near(s.A0, math.Pi/4) || s.Alpha0 != 0.5 {
		t.Errorf("advance: got %+v", s)
	}
}

func TestSweepNormalize(t *testing.T) {
	s := geom.Sweep{A0: 7, A: 8}
	s.Normalize()
	if s.A0 < 0 || s.A0 >= 2*math.Pi || !near(s.A-s.A0, 1) {
		t.Errorf("got %+v", s)
	}
}

func TestSolve(t *testing.T) {
	m := geom.Mat22(vec.Vec2{X: 4, Y: 1}, vec.Vec2{X: 2, Y: 3})
	b := vec.Vec2{X: 1, Y: 2}
	x := geom.Solve22(m, b)
	if got := geom.MulM22(m, x); !nearV(got, b) {
		t.Errorf("Solve22: got %v want %v", got, b)
	}

	k := mgl64.Mat3{4, 1, 0, 1, 3, 1, 0, 1, 2}
	b3 := mgl64.Vec3{1, 2, 3}
	x3 := geom.Solve33(k, b3)
	if got := k.Mul3x1(x3); !got.ApproxEqualThreshold(b3, 1e-9) {
		t.Errorf("Solve33: got %v want %v", got, b3)
	}

	if got := geom.Solve22(mgl64.Mat2{}, b); got != (vec.Vec2{}) {
		t.Errorf("singular: got %v", got)
	}
}

func TestNormalize(t *testing.T) {
	n, l := geom.Normalize(vec.Vec2{X: 3, Y: 4})
	if !near(l, 5) || !nearV(n, vec.Vec2{X: 0.6, Y: 0.8}) {
		t.Errorf("got %v %v", n, l)
	}
	if _, l := geom.Normalize(vec.Vec2{}); l != 0 {
		t.Errorf("zero vector length %v", l)
	}
}

func TestCrossWithUnitScalar(t *testing.T) {
	v := vec.Vec2{X: 2, Y: -3}
	if got, want := geom.CrossSV(1, v), v.Perp(); got != want {
		t.Errorf("CrossSV: got %v want %v", got, want)
	}
	if got, want := geom.CrossVS(v, 1), v.ReversePerp(); got != want {
		t.Errorf("CrossVS: got %v want %v", got, want)
	}
	if got, want := geom.CrossSV(2.5, v), v.Perp().Scale(2.5); !nearV(got, want) {
		t.Errorf("scaled CrossSV: got %v want %v", got, want)
	}
}

func TestRotAxes(t *testing.T) {
	q := geom.NewRot(0.4)
	x, y := q.XAxis(), q.YAxis()
	if got := q.Apply(vec.Vec2{X: 1}); !nearV(got, x) {
		t.Errorf("x axis: got %v want %v", x, got)
	}
	if got := q.Apply(vec.Vec2{Y: 1}); !nearV(got, y) {
		t.Errorf("y axis: got %v want %v", y, got)
	}
	if !near(x.Dot(y), 0) || !near(x.Mag(), 1) {
		t.Errorf("axes not orthonormal: %v %v", x, y)
	}
}
