package collision_test

import (
	"math"
	"testing"

	"github.com/setanarut/b2d/collision"
	"github.com/setanarut/b2d/geom"
	"github.com/setanarut/vec"
)

func TestDistanceCircles(t *testing.T) {
	a := collision.NewCircle(vec.Vec2{}, 1)
	b := collision.NewCircle(vec.Vec2{}, 2)
	input := collision.DistanceInput{
		ProxyA:     a.Proxy(0),
		ProxyB:     b.Proxy(0),
		TransformA: geom.NewTransform(vec.Vec2{X: 0, Y: 0}, 0),
		TransformB: geom.NewTransform(vec.Vec2{X: 5, Y: 0}, 0),
		UseRadii:   true,
	}
	var cache collision.SimplexCache
	out := collision.Distance(&cache, &input)
	if math.Abs(out.Distance-2) > 1e-12 {
		t.Errorf("distance: got %v want 2", out.Distance)
	}
	if math.Abs(out.PointA.X-1) > 1e-12 || math.Abs(out.PointB.X-3) > 1e-12 {
		t.Errorf("witness points: %v %v", out.PointA, out.PointB)
	}

	// overlapping with radii reports zero at the midpoint
	input.TransformB = geom.NewTransform(vec.Vec2{X: 2, Y: 0}, 0)
	cache = collision.SimplexCache{}
	out = collision.Distance(&cache, &input)
	if out.Distance != 0 || out.PointA != out.PointB {
		t.Errorf("overlap: got %+v", out)
	}
}

func TestDistanceBoxes(t *testing.T) {
	a := collision.NewBox(1, 1)
	b := collision.NewBox(1, 1)
	input := collision.DistanceInput{
		ProxyA:     a.Proxy(0),
		ProxyB:     b.Proxy(0),
		TransformA: geom.TransformIdentity(),
		TransformB: geom.NewTransform(vec.Vec2{X: 4, Y: 0.5}, 0),
	}
	var cache collision.SimplexCache
	out := collision.Distance(&cache, &input)
	if math.Abs(out.Distance-2) > 1e-9 {
		t.Errorf("distance: got %v want 2", out.Distance)
	}
	if cache.Count == 0 {
		t.Fatal("cache not written")
	}

	// a warm cache reaches the same answer in fewer or equal iterations
	iters := out.Iterations
	out = collision.Distance(&cache, &input)
	if math.Abs(out.Distance-2) > 1e-9 {
		t.Errorf("warm distance: got %v want 2", out.Distance)
	}
	if out.Iterations > iters {
		t.Errorf("warm start took %d iterations, cold %d", out.Iterations, iters)
	}
}

func TestOverlap(t *testing.T) {
	c := collision.NewCircle(vec.Vec2{}, 0.5)
	p := collision.NewBox(1, 1)
	tests := []struct {
		name string
		pos  vec.Vec2
		want bool
	}{
		{"inside", vec.Vec2{X: 0, Y: 0}, true},
		{"crossing face", vec.Vec2{X: 1.3, Y: 0}, true},
		{"clear", vec.Vec2{X: 2, Y: 0}, false},
		{"near corner", vec.Vec2{X: 1.4, Y: 1.4}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collision.TestOverlap(p, 0, c, 0, geom.TransformIdentity(), geom.NewTransform(tt.pos, 0))
			if got != tt.want {
				t.Errorf("got %v want %v", got, tt.want)
			}
		})
	}
}

func TestSupportVertex(t *testing.T) {
	p := collision.NewBox(1, 2)
	proxy := p.Proxy(0)
	tests := []struct {
		d    vec.Vec2
		want vec.Vec2
	}{
		{vec.Vec2{X: 1, Y: 1}, vec.Vec2{X: 1, Y: 2}},
		{vec.Vec2{X: -1, Y: 0.5}, vec.Vec2{X: -1, Y: 2}},
		{vec.Vec2{X: -0.1, Y: -1}, vec.Vec2{X: -1, Y: -2}},
		{vec.Vec2{X: 3, Y: -1}, vec.Vec2{X: 1, Y: -2}},
	}
	for _, tc := range tests {
		got := proxy.SupportVertex(tc.d)
		if got != tc.want {
			t.Errorf("direction %v: got %v want %v", tc.d, got, tc.want)
		}
		if got != proxy.Vertex(proxy.Support(tc.d)) {
			t.Errorf("direction %v: SupportVertex disagrees with Support", tc.d)
		}
	}
}
