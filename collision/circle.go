package collision

import (
	"math"

	"github.com/setanarut/b2d/geom"
	"github.com/setanarut/vec"
)

// CircleShape is a solid circle. P is the center relative to the body origin.
type CircleShape struct {
	P vec.Vec2
	R float64
}

// NewCircle returns a circle of radius r centered at p.
func NewCircle(p vec.Vec2, r float64) *CircleShape {
	return &CircleShape{P: p, R: r}
}

func (c *CircleShape) Type() ShapeType {
	return TypeCircle
}

func (c *CircleShape) Radius() float64 {
	return c.R
}

func (c *CircleShape) ChildCount() int {
	return 1
}

func (c *CircleShape) Clone() Shape {
	clone := *c
	return &clone
}

func (c *CircleShape) TestPoint(xf geom.Transform, p vec.Vec2) bool {
	center := xf.Apply(c.P)
	return center.DistanceSq(p) <= c.R*c.R
}

// RayCast intersects the ray with the circle.
// The ray starting point must lie outside the circle to hit.
func (c *CircleShape) RayCast(input RayCastInput, xf geom.Transform, _ int) (RayCastOutput, bool) {
	var out RayCastOutput

	position := xf.Apply(c.P)
	s := input.P1.Sub(position)
	b := s.Dot(s) - c.R*c.R

	// solve quadratic equation
	r := input.P2.Sub(input.P1)
	cc := s.Dot(r)
	rr := r.Dot(r)
	sigma := cc*cc - rr*b

	// negative discriminant or short segment
	if sigma < 0 || rr < Epsilon {
		return out, false
	}

	// find the point of intersection of the line with the circle
	a := -(cc + math.Sqrt(sigma))

	if 0 <= a && a <= input.MaxFraction*rr {
		a /= rr
		out.Fraction = a
		out.Normal, _ = geom.Normalize(s.Add(r.Scale(a)))
		return out, true
	}
	return out, false
}

func (c *CircleShape) ComputeAABB(xf geom.Transform, _ int) AABB {
	p := xf.Apply(c.P)
	return NewAABBForExtents(p, c.R, c.R)
}

func (c *CircleShape) ComputeMass(density float64) MassData {
	mass := density * math.Pi * c.R * c.R
	return MassData{
		Mass:   mass,
		Center: c.P,
		// inertia about the local origin
		I: mass * (0.5*c.R*c.R + c.P.Dot(c.P)),
	}
}

func (c *CircleShape) Proxy(int) DistanceProxy {
	return DistanceProxy{Vertices: []vec.Vec2{c.P}, Radius: c.R}
}
