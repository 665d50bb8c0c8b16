package collision_test

import (
	"math"
	"testing"

	"github.com/setanarut/b2d/collision"
	"github.com/setanarut/b2d/geom"
	"github.com/setanarut/vec"
)

func TestContactFeatureKeyRoundTrip(t *testing.T) {
	cf := collision.ContactFeature{IndexA: 3, IndexB: 7, TypeA: collision.FeatureFace, TypeB: collision.FeatureVertex}
	if got := collision.ContactFeatureFromKey(cf.Key()); got != cf {
		t.Errorf("got %+v want %+v", got, cf)
	}
	other := cf
	other.TypeB = collision.FeatureFace
	if other.Key() == cf.Key() {
		t.Error("distinct features share a key")
	}
}

func TestCollideCircles(t *testing.T) {
	a := collision.NewCircle(vec.Vec2{}, 1)
	b := collision.NewCircle(vec.Vec2{}, 1)
	var m collision.Manifold

	collision.CollideCircles(&m, a, geom.TransformIdentity(), b, geom.NewTransform(vec.Vec2{X: 1.5}, 0))
	if m.PointCount != 1 || m.Type != collision.ManifoldCircles {
		t.Fatalf("got %+v", m)
	}

	var wm collision.WorldManifold
	wm.Initialize(&m, geom.TransformIdentity(), a.R, geom.NewTransform(vec.Vec2{X: 1.5}, 0), b.R)
	if math.Abs(wm.Normal.X-1) > 1e-12 || math.Abs(wm.Separations[0]+0.5) > 1e-12 {
		t.Errorf("world manifold %+v", wm)
	}
	if math.Abs(wm.Points[0].X-0.75) > 1e-12 {
		t.Errorf("contact point %v want midway", wm.Points[0])
	}

	collision.CollideCircles(&m, a, geom.TransformIdentity(), b, geom.NewTransform(vec.Vec2{X: 2.5}, 0))
	if m.PointCount != 0 {
		t.Errorf("separated circles produced %d points", m.PointCount)
	}
}

func TestCollidePolygonsBoxOnBox(t *testing.T) {
	ground := collision.NewBox(1, 1)
	top := collision.NewBox(0.5, 0.5)
	xfA := geom.TransformIdentity()
	xfB := geom.NewTransform(vec.Vec2{X: 0, Y: 1.49}, 0)

	var m collision.Manifold
	collision.CollidePolygons(&m, ground, xfA, top, xfB)
	if m.PointCount != 2 {
		t.Fatalf("point count %d want 2", m.PointCount)
	}
	if m.Type != collision.ManifoldFaceA || m.LocalNormal != (vec.Vec2{X: 0, Y: 1}) {
		t.Errorf("type %v normal %v", m.Type, m.LocalNormal)
	}

	var wm collision.WorldManifold
	wm.Initialize(&m, xfA, ground.R, xfB, top.R)
	for i := range m.PointCount {
		// 0.01 overlap plus both skins
		if want := -0.01 - ground.R - top.R; math.Abs(wm.Separations[i]-want) > 1e-9 {
			t.Errorf("separation %d: got %v want %v", i, wm.Separations[i], want)
		}
	}

	// a small slide keeps the same features so impulses can be matched
	old := m
	collision.CollidePolygons(&m, ground, xfA, top, geom.NewTransform(vec.Vec2{X: 0.02, Y: 1.495}, 0))
	s1, s2 := collision.GetPointStates(&old, &m)
	for i := range 2 {
		if s1[i] != collision.PointPersist || s2[i] != collision.PointPersist {
			t.Errorf("point %d: states %v %v", i, s1[i], s2[i])
		}
	}
}

func TestCollidePolygonsFlipped(t *testing.T) {
	// a small box resting on a large one
	small := collision.NewBox(0.5, 0.5)
	large := collision.NewBox(2, 2)
	xfA := geom.NewTransform(vec.Vec2{X: 0, Y: 2.49}, 0)

	var m collision.Manifold
	collision.CollidePolygons(&m, small, xfA, large, geom.TransformIdentity())
	if m.PointCount != 2 {
		t.Fatalf("point count %d", m.PointCount)
	}

	var wm collision.WorldManifold
	wm.Initialize(&m, xfA, small.R, geom.TransformIdentity(), large.R)
	// the world normal always points from A to B
	if wm.Normal.Y > -0.99 {
		t.Errorf("normal %v should point down toward B", wm.Normal)
	}
}

func TestCollidePolygonAndCircle(t *testing.T) {
	p := collision.NewBox(1, 1)
	c := collision.NewCircle(vec.Vec2{}, 0.5)

	tests := []struct {
		name   string
		pos    vec.Vec2
		points int
		normal vec.Vec2
	}{
		{"face", vec.Vec2{X: 0, Y: 1.4}, 1, vec.Vec2{X: 0, Y: 1}},
		{"center inside", vec.Vec2{X: 0, Y: 0.9}, 1, vec.Vec2{X: 0, Y: 1}},
		{"apart", vec.Vec2{X: 0, Y: 2}, 0, vec.Vec2{}},
		{"corner", vec.Vec2{X: 1.3, Y: 1.3}, 1, vec.Vec2{X: math.Sqrt2 / 2, Y: math.Sqrt2 / 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m collision.Manifold
			collision.CollidePolygonAndCircle(&m, p, geom.TransformIdentity(), c, geom.NewTransform(tt.pos, 0))
			if m.PointCount != tt.points {
				t.Fatalf("points: got %d want %d", m.PointCount, tt.points)
			}
			if tt.points == 0 {
				return
			}
			if math.Abs(m.LocalNormal.X-tt.normal.X) > 1e-9 || math.Abs(m.LocalNormal.Y-tt.normal.Y) > 1e-9 {
				t.Errorf("normal: got %v want %v", m.LocalNormal, tt.normal)
			}
		})
	}
}

func TestCollideEdgeAndCircle(t *testing.T) {
	e := collision.NewEdge(vec.Vec2{X: -2}, vec.Vec2{X: 2})
	c := collision.NewCircle(vec.Vec2{}, 0.5)

	var m collision.Manifold
	collision.CollideEdgeAndCircle(&m, e, geom.TransformIdentity(), c, geom.NewTransform(vec.Vec2{X: 0.5, Y: 0.4}, 0))
	if m.PointCount != 1 || m.Type != collision.ManifoldFaceA || m.LocalNormal != (vec.Vec2{X: 0, Y: 1}) {
		t.Errorf("face region: %+v", m)
	}

	collision.CollideEdgeAndCircle(&m, e, geom.TransformIdentity(), c, geom.NewTransform(vec.Vec2{X: 2.3, Y: 0.1}, 0))
	if m.PointCount != 1 || m.Type != collision.ManifoldCircles || m.Points[0].ID.IndexA != 1 {
		t.Errorf("vertex region: %+v", m)
	}
}

func TestCollideEdgeAndPolygon(t *testing.T) {
	e := collision.NewEdge(vec.Vec2{X: -5}, vec.Vec2{X: 5})
	b := collision.NewBox(0.5, 0.5)

	var m collision.Manifold
	collision.CollideEdgeAndPolygon(&m, e, geom.TransformIdentity(), b, geom.NewTransform(vec.Vec2{Y: 0.51}, 0))
	if m.PointCount != 2 {
		t.Fatalf("point count %d want 2", m.PointCount)
	}
	var wm collision.WorldManifold
	wm.Initialize(&m, geom.TransformIdentity(), e.R, geom.NewTransform(vec.Vec2{Y: 0.51}, 0), b.R)
	if math.Abs(wm.Normal.Y-1) > 1e-9 {
		t.Errorf("normal %v", wm.Normal)
	}
}

func TestClipSegmentToLine(t *testing.T) {
	in := [2]collision.ClipVertex{
		{V: vec.Vec2{X: -1, Y: 0}},
		{V: vec.Vec2{X: 1, Y: 0}},
	}
	out, n := collision.ClipSegmentToLine(in, vec.Vec2{X: 1, Y: 0}, 0.5, 3)
	if n != 2 {
		t.Fatalf("count %d", n)
	}
	if out[0].V.X != -1 || math.Abs(out[1].V.X-0.5) > 1e-12 {
		t.Errorf("got %v %v", out[0].V, out[1].V)
	}
	if out[1].ID.IndexA != 3 || out[1].ID.TypeA != collision.FeatureVertex {
		t.Errorf("clip feature %+v", out[1].ID)
	}

	if _, n := collision.ClipSegmentToLine(in, vec.Vec2{X: 1, Y: 0}, -2, 0); n != 0 {
		t.Errorf("fully clipped count %d", n)
	}
}

func TestRegistryLookup(t *testing.T) {
	r := collision.DefaultRegistry()
	if fn, swap := r.Lookup(collision.TypePolygon, collision.TypeCircle); fn == nil || swap {
		t.Error("polygon-circle should be registered forward")
	}
	if fn, swap := r.Lookup(collision.TypeCircle, collision.TypePolygon); fn == nil || !swap {
		t.Error("circle-polygon should resolve through the reverse pair")
	}
	if fn, _ := r.Lookup(collision.TypeChain, collision.TypeChain); fn != nil {
		t.Error("chain-chain should be unsupported")
	}
	if fn, _ := r.Lookup(collision.TypeEdge, collision.TypeEdge); fn != nil {
		t.Error("edge-edge should be unsupported")
	}
}
