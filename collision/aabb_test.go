package collision_test

import (
	"math"
	"testing"

	"github.com/setanarut/b2d/collision"
	"github.com/setanarut/vec"
)

func box(lx, ly, ux, uy float64) collision.AABB {
	return collision.NewAABB(vec.Vec2{X: lx, Y: ly}, vec.Vec2{X: ux, Y: uy})
}

func TestAABBIntersects(t *testing.T) {
	a := box(0, 0, 1, 1)
	tests := []struct {
		name string
		b    collision.AABB
		want bool
	}{
		{"overlap", box(0.5, 0.5, 2, 2), true},
		{"touching edge", box(1, 0, 2, 1), true},
		{"apart x", box(1.01, 0, 2, 1), false},
		{"apart y", box(0, -2, 1, -0.5), false},
		{"inside", box(0.2, 0.2, 0.3, 0.3), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Intersects(tt.b); got != tt.want {
				t.Errorf("got %v want %v", got, tt.want)
			}
			if got := tt.b.Intersects(a); got != tt.want {
				t.Errorf("reversed: got %v want %v", got, tt.want)
			}
		})
	}
}

func TestAABBMergeContains(t *testing.T) {
	a := box(0, 0, 1, 1)
	b := box(2, -1, 3, 0.5)
	m := a.Merge(b)
	if !m.Contains(a) || !m.Contains(b) {
		t.Errorf("merge %v does not contain inputs", m)
	}
	if got, want := m.Perimeter(), 2*(3.0+2.0); got != want {
		t.Errorf("perimeter: got %v want %v", got, want)
	}
	if got := a.MergedPerimeter(b); got != m.Perimeter() {
		t.Errorf("merged perimeter: got %v want %v", got, m.Perimeter())
	}
	if a.Contains(m) {
		t.Error("smaller box contains larger one")
	}
}

func TestAABBRayCast(t *testing.T) {
	bb := box(-1, -1, 1, 1)
	in := collision.RayCastInput{P1: vec.Vec2{X: -3, Y: 0}, P2: vec.Vec2{X: 3, Y: 0}, MaxFraction: 1}
	out, hit := bb.RayCast(in)
	if !hit {
		t.Fatal("expected hit")
	}
	if math.Abs(out.Fraction-1.0/3.0) > 1e-12 || out.Normal != (vec.Vec2{X: -1, Y: 0}) {
		t.Errorf("got %+v", out)
	}

	in.MaxFraction = 0.2
	if _, hit := bb.RayCast(in); hit {
		t.Error("ray shorter than the gap should miss")
	}

	in = collision.RayCastInput{P1: vec.Vec2{X: -3, Y: 2}, P2: vec.Vec2{X: 3, Y: 2}, MaxFraction: 1}
	if _, hit := bb.RayCast(in); hit {
		t.Error("parallel ray outside the slab should miss")
	}
}
