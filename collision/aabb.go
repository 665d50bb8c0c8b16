package collision

import (
	"fmt"
	"math"

	"github.com/setanarut/b2d/geom"
	"github.com/setanarut/vec"
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	Lower, Upper vec.Vec2
}

// NewAABB is a convenience constructor for AABB values.
func NewAABB(lower, upper vec.Vec2) AABB {
	return AABB{Lower: lower, Upper: upper}
}

// NewAABBForExtents constructs an AABB centered on c with the given half sizes.
func NewAABBForExtents(c vec.Vec2, hw, hh float64) AABB {
	return AABB{
		Lower: vec.Vec2{X: c.X - hw, Y: c.Y - hh},
		Upper: vec.Vec2{X: c.X + hw, Y: c.Y + hh},
	}
}

func (bb AABB) String() string {
	return fmt.Sprintf("%v %v %v %v", bb.Lower.X, bb.Lower.Y, bb.Upper.X, bb.Upper.Y)
}

// IsValid reports whether the bounds are sorted and finite.
func (bb AABB) IsValid() bool {
	d := bb.Upper.Sub(bb.Lower)
	return d.X >= 0 && d.Y >= 0 && geom.IsValid(bb.Lower) && geom.IsValid(bb.Upper)
}

// Center returns the center of the box.
func (bb AABB) Center() vec.Vec2 {
	return bb.Lower.Add(bb.Upper).Scale(0.5)
}

// Extents returns the half sizes of the box.
func (bb AABB) Extents() vec.Vec2 {
	return bb.Upper.Sub(bb.Lower).Scale(0.5)
}

// Perimeter returns the perimeter length.
func (bb AABB) Perimeter() float64 {
	return 2 * ((bb.Upper.X - bb.Lower.X) + (bb.Upper.Y - bb.Lower.Y))
}

// Merge returns a box that holds both boxes.
func (bb AABB) Merge(b AABB) AABB {
	return AABB{
		Lower: geom.MinV(bb.Lower, b.Lower),
		Upper: geom.MaxV(bb.Upper, b.Upper),
	}
}

// MergedPerimeter returns the perimeter of the merged box without building it.
func (bb AABB) MergedPerimeter(b AABB) float64 {
	return 2 * ((math.Max(bb.Upper.X, b.Upper.X) - math.Min(bb.Lower.X, b.Lower.X)) +
		(math.Max(bb.Upper.Y, b.Upper.Y) - math.Min(bb.Lower.Y, b.Lower.Y)))
}

// Contains returns true if other lies completely within bb.
func (bb AABB) Contains(other AABB) bool {
	return bb.Lower.X <= other.Lower.X && bb.Lower.Y <= other.Lower.Y &&
		other.Upper.X <= bb.Upper.X && other.Upper.Y <= bb.Upper.Y
}

// ContainsPoint returns true if bb contains p.
func (bb AABB) ContainsPoint(p vec.Vec2) bool {
	return bb.Lower.X <= p.X && p.X <= bb.Upper.X && bb.Lower.Y <= p.Y && p.Y <= bb.Upper.Y
}

// Intersects returns true if a and b overlap. Touching boxes overlap.
func (bb AABB) Intersects(b AABB) bool {
	if b.Lower.X-bb.Upper.X > 0 || b.Lower.Y-bb.Upper.Y > 0 {
		return false
	}
	if bb.Lower.X-b.Upper.X > 0 || bb.Lower.Y-b.Upper.Y > 0 {
		return false
	}
	return true
}

// Expand returns bb grown by r on every side.
func (bb AABB) Expand(r float64) AABB {
	d := vec.Vec2{X: r, Y: r}
	return AABB{Lower: bb.Lower.Sub(d), Upper: bb.Upper.Add(d)}
}

// Offset returns bb translated by v.
func (bb AABB) Offset(v vec.Vec2) AABB {
	return AABB{Lower: bb.Lower.Add(v), Upper: bb.Upper.Add(v)}
}

// RayCast clips the ray in input against the box using the slab method.
// The reported fraction is the entry point; rays starting inside miss.
func (bb AABB) RayCast(input RayCastInput) (RayCastOutput, bool) {
	var out RayCastOutput
	tmin := -maxFloat
	tmax := maxFloat

	p := input.P1
	d := input.P2.Sub(input.P1)
	absD := geom.AbsV(d)

	var normal vec.Vec2
	for i := range 2 {
		pi, di, absDi, lo, hi := p.X, d.X, absD.X, bb.Lower.X, bb.Upper.X
		if i == 1 {
			pi, di, absDi, lo, hi = p.Y, d.Y, absD.Y, bb.Lower.Y, bb.Upper.Y
		}

		if absDi < Epsilon {
			// parallel
			if pi < lo || hi < pi {
				return out, false
			}
			continue
		}

		inv := 1 / di
		t1 := (lo - pi) * inv
		t2 := (hi - pi) * inv

		// sign of the normal vector
		s := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			s = 1
		}

		if t1 > tmin {
			normal = vec.Vec2{}
			if i == 0 {
				normal.X = s
			} else {
				normal.Y = s
			}
			tmin = t1
		}
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return out, false
		}
	}

	if tmin < 0 || input.MaxFraction < tmin {
		return out, false
	}
	out.Fraction = tmin
	out.Normal = normal
	return out, true
}

// RayCastInput is a ray from P1 to P1 + MaxFraction * (P2 - P1).
type RayCastInput struct {
	P1, P2      vec.Vec2
	MaxFraction float64
}

// RayCastOutput holds the hit normal and the fraction along the input ray.
type RayCastOutput struct {
	Normal   vec.Vec2
	Fraction float64
}
