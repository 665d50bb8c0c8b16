package collision

import (
	"github.com/setanarut/b2d/geom"
	"github.com/setanarut/vec"
)

// EdgeShape is a line segment. Edges have no volume and only collide with
// circles and polygons.
type EdgeShape struct {
	V1, V2 vec.Vec2
	R      float64
}

// NewEdge returns a segment from v1 to v2.
func NewEdge(v1, v2 vec.Vec2) *EdgeShape {
	return &EdgeShape{V1: v1, V2: v2, R: PolygonRadius}
}

func (e *EdgeShape) Type() ShapeType {
	return TypeEdge
}

func (e *EdgeShape) Radius() float64 {
	return e.R
}

func (e *EdgeShape) ChildCount() int {
	return 1
}

func (e *EdgeShape) Clone() Shape {
	clone := *e
	return &clone
}

func (e *EdgeShape) TestPoint(geom.Transform, vec.Vec2) bool {
	return false
}

// RayCast intersects the ray with the segment. Both faces report a hit,
// with the normal facing the ray origin.
func (e *EdgeShape) RayCast(input RayCastInput, xf geom.Transform, _ int) (RayCastOutput, bool) {
	var out RayCastOutput

	// put the ray into the edge's frame of reference
	p1 := xf.Q.ApplyT(input.P1.Sub(xf.P))
	p2 := xf.Q.ApplyT(input.P2.Sub(xf.P))
	d := p2.Sub(p1)

	v1, v2 := e.V1, e.V2
	ev := v2.Sub(v1)
	normal, _ := geom.Normalize(vec.Vec2{X: ev.Y, Y: -ev.X})

	// q = p1 + t * d
	// dot(normal, q - v1) = 0
	// dot(normal, p1 - v1) + t * dot(normal, d) = 0
	numerator := normal.Dot(v1.Sub(p1))
	denominator := normal.Dot(d)
	if denominator == 0 {
		return out, false
	}

	t := numerator / denominator
	if t < 0 || input.MaxFraction < t {
		return out, false
	}

	q := p1.Add(d.Scale(t))

	// q = v1 + s * r
	// s = dot(q - v1, r) / dot(r, r)
	rr := ev.Dot(ev)
	if rr == 0 {
		return out, false
	}
	s := q.Sub(v1).Dot(ev) / rr
	if s < 0 || 1 < s {
		return out, false
	}

	out.Fraction = t
	if numerator > 0 {
		out.Normal = xf.Q.Apply(normal).Neg()
	} else {
		out.Normal = xf.Q.Apply(normal)
	}
	return out, true
}

func (e *EdgeShape) ComputeAABB(xf geom.Transform, _ int) AABB {
	v1 := xf.Apply(e.V1)
	v2 := xf.Apply(e.V2)
	return AABB{Lower: geom.MinV(v1, v2), Upper: geom.MaxV(v1, v2)}.Expand(e.R)
}

// ComputeMass returns zero mass centered on the segment midpoint.
func (e *EdgeShape) ComputeMass(float64) MassData {
	return MassData{Center: e.V1.Add(e.V2).Scale(0.5)}
}

func (e *EdgeShape) Proxy(int) DistanceProxy {
	return DistanceProxy{Vertices: []vec.Vec2{e.V1, e.V2}, Radius: e.R}
}
