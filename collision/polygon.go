package collision

import (
	"errors"

	"github.com/setanarut/b2d/geom"
	"github.com/setanarut/vec"
)

// ErrDegeneratePolygon is returned when the hull of the input points has
// fewer than three vertices.
var ErrDegeneratePolygon = errors.New("collision: degenerate polygon")

// PolygonShape is a solid convex polygon with counter-clockwise winding.
// Edges and chain children are handled as two vertex polygons by the
// narrow phase.
type PolygonShape struct {
	Vertices []vec.Vec2
	Normals  []vec.Vec2
	Centroid vec.Vec2
	R        float64
}

// NewPolygon computes the convex hull of points and builds a polygon from it.
func NewPolygon(points []vec.Vec2) (*PolygonShape, error) {
	p := &PolygonShape{R: PolygonRadius}
	if err := p.Set(points); err != nil {
		return nil, err
	}
	return p, nil
}

// NewBox returns an axis-aligned box with the given half sizes.
func NewBox(hx, hy float64) *PolygonShape {
	p := &PolygonShape{R: PolygonRadius}
	p.SetAsBox(hx, hy)
	return p
}

// NewOrientedBox returns a box with the given half sizes, center and angle in body space.
func NewOrientedBox(hx, hy float64, center vec.Vec2, angle float64) *PolygonShape {
	p := &PolygonShape{R: PolygonRadius}
	p.SetAsOrientedBox(hx, hy, center, angle)
	return p
}

// newSegmentPolygon builds the two vertex polygon used to collide edges.
func newSegmentPolygon(v1, v2 vec.Vec2, radius float64) *PolygonShape {
	n, _ := geom.Normalize(geom.CrossVS(v2.Sub(v1), 1))
	return &PolygonShape{
		Vertices: []vec.Vec2{v1, v2},
		Normals:  []vec.Vec2{n, n.Neg()},
		Centroid: v1.Add(v2).Scale(0.5),
		R:        radius,
	}
}

func (p *PolygonShape) Type() ShapeType {
	return TypePolygon
}

func (p *PolygonShape) Radius() float64 {
	return p.R
}

func (p *PolygonShape) ChildCount() int {
	return 1
}

func (p *PolygonShape) Count() int {
	return len(p.Vertices)
}

func (p *PolygonShape) Clone() Shape {
	clone := *p
	clone.Vertices = append([]vec.Vec2(nil), p.Vertices...)
	clone.Normals = append([]vec.Vec2(nil), p.Normals...)
	return &clone
}

// SetAsBox makes p an axis-aligned box centered on the body origin.
func (p *PolygonShape) SetAsBox(hx, hy float64) {
	p.Vertices = []vec.Vec2{{X: -hx, Y: -hy}, {X: hx, Y: -hy}, {X: hx, Y: hy}, {X: -hx, Y: hy}}
	p.Normals = []vec.Vec2{{X: 0, Y: -1}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}}
	p.Centroid = vec.Vec2{}
}

// SetAsOrientedBox makes p a box placed at center and rotated by angle.
func (p *PolygonShape) SetAsOrientedBox(hx, hy float64, center vec.Vec2, angle float64) {
	p.SetAsBox(hx, hy)
	p.Centroid = center
	xf := geom.NewTransform(center, angle)
	for i := range p.Vertices {
		p.Vertices[i] = xf.Apply(p.Vertices[i])
		p.Normals[i] = xf.Q.Apply(p.Normals[i])
	}
}

// Set replaces the polygon with the convex hull of points. At most
// MaxPolygonVertices points are used.
func (p *PolygonShape) Set(points []vec.Vec2) error {
	n := min(len(points), MaxPolygonVertices)
	if n < 3 {
		return ErrDegeneratePolygon
	}

	verts := make([]vec.Vec2, n)
	copy(verts, points[:n])
	count := convexHull(verts, 0.5*LinearSlop)
	if count < 3 {
		return ErrDegeneratePolygon
	}
	verts = verts[:count]

	// force counter-clockwise winding
	area := 0.0
	for i := range verts {
		area += verts[i].Cross(verts[(i+1)%count])
	}
	if area < 0 {
		for i, j := 0, count-1; i < j; i, j = i+1, j-1 {
			verts[i], verts[j] = verts[j], verts[i]
		}
	}

	normals := make([]vec.Vec2, count)
	for i := range count {
		edge := verts[(i+1)%count].Sub(verts[i])
		if edge.LengthSq() <= Epsilon*Epsilon {
			return ErrDegeneratePolygon
		}
		normals[i], _ = geom.Normalize(edge.ReversePerp())
	}

	p.Vertices = verts
	p.Normals = normals
	p.Centroid = computeCentroid(verts)
	return nil
}

func (p *PolygonShape) TestPoint(xf geom.Transform, point vec.Vec2) bool {
	pLocal := xf.Q.ApplyT(point.Sub(xf.P))
	for i, n := range p.Normals {
		if n.Dot(pLocal.Sub(p.Vertices[i])) > 0 {
			return false
		}
	}
	return true
}

// RayCast clips the ray against each face plane. Rays that start inside miss.
func (p *PolygonShape) RayCast(input RayCastInput, xf geom.Transform, _ int) (RayCastOutput, bool) {
	var out RayCastOutput

	// put the ray into the polygon's frame of reference
	p1 := xf.Q.ApplyT(input.P1.Sub(xf.P))
	p2 := xf.Q.ApplyT(input.P2.Sub(xf.P))
	d := p2.Sub(p1)

	lower, upper := 0.0, input.MaxFraction
	index := -1

	for i, n := range p.Normals {
		// p = p1 + a * d
		// dot(normal, p - v) = 0
		// dot(normal, p1 - v) + a * dot(normal, d) = 0
		numerator := n.Dot(p.Vertices[i].Sub(p1))
		denominator := n.Dot(d)

		if denominator == 0 {
			if numerator < 0 {
				return out, false
			}
		} else {
			if denominator < 0 && numerator < lower*denominator {
				// the segment enters this half-space
				lower = numerator / denominator
				index = i
			} else if denominator > 0 && numerator < upper*denominator {
				// the segment exits this half-space
				upper = numerator / denominator
			}
		}

		if upper < lower {
			return out, false
		}
	}

	if index >= 0 {
		out.Fraction = lower
		out.Normal = xf.Q.Apply(p.Normals[index])
		return out, true
	}
	return out, false
}

func (p *PolygonShape) ComputeAABB(xf geom.Transform, _ int) AABB {
	lower := xf.Apply(p.Vertices[0])
	upper := lower
	for _, v := range p.Vertices[1:] {
		w := xf.Apply(v)
		lower = geom.MinV(lower, w)
		upper = geom.MaxV(upper, w)
	}
	return AABB{Lower: lower, Upper: upper}.Expand(p.R)
}

// ComputeMass integrates the polygon area and second moment by splitting
// it into triangles fanned from the first vertex. The skin radius is
// ignored.
func (p *PolygonShape) ComputeMass(density float64) MassData {
	const inv3 = 1.0 / 3.0

	center := vec.Vec2{}
	area := 0.0
	inertia := 0.0

	// reference point inside the polygon keeps round-off low
	s := p.Vertices[0]

	count := len(p.Vertices)
	for i := range count {
		e1 := p.Vertices[i].Sub(s)
		e2 := p.Vertices[(i+1)%count].Sub(s)

		d := e1.Cross(e2)
		triangleArea := 0.5 * d
		area += triangleArea

		center = center.Add(e1.Add(e2).Scale(triangleArea * inv3))

		ex1, ey1 := e1.X, e1.Y
		ex2, ey2 := e2.X, e2.Y
		intx2 := ex1*ex1 + ex2*ex1 + ex2*ex2
		inty2 := ey1*ey1 + ey2*ey1 + ey2*ey2
		inertia += (0.25 * inv3 * d) * (intx2 + inty2)
	}

	var md MassData
	md.Mass = density * area
	center = center.Scale(1 / area)
	md.Center = center.Add(s)

	// inertia relative to the reference point, shifted to the body origin
	md.I = density * inertia
	md.I += md.Mass * (md.Center.Dot(md.Center) - center.Dot(center))
	return md
}

func (p *PolygonShape) Proxy(int) DistanceProxy {
	return DistanceProxy{Vertices: p.Vertices, Radius: p.R}
}

func computeCentroid(vs []vec.Vec2) vec.Vec2 {
	const inv3 = 1.0 / 3.0
	c := vec.Vec2{}
	area := 0.0
	ref := vs[0]
	count := len(vs)
	for i := range count {
		p2 := vs[i]
		p3 := vs[(i+1)%count]
		e1 := p2.Sub(ref)
		e2 := p3.Sub(ref)
		triangleArea := 0.5 * e1.Cross(e2)
		area += triangleArea
		c = c.Add(ref.Add(p2).Add(p3).Scale(triangleArea * inv3))
	}
	return c.Scale(1 / area)
}

// convexHull reduces verts in place to its convex hull using QuickHull and
// returns the hull vertex count. Points closer than tol to a hull edge are
// dropped.
func convexHull(verts []vec.Vec2, tol float64) int {
	count := len(verts)
	start, end := loopIndexes(verts)
	if start == end {
		return 1
	}

	verts[0], verts[start] = verts[start], verts[0]
	if end == 0 {
		verts[1], verts[start] = verts[start], verts[1]
	} else {
		verts[1], verts[end] = verts[end], verts[1]
	}

	a := verts[0]
	b := verts[1]

	return qhullReduce(tol, verts[2:], count-2, a, b, a, verts[1:]) + 1
}

func loopIndexes(verts []vec.Vec2) (int, int) {
	start := 0
	end := 0

	lo := verts[0]
	hi := lo

	for i := 1; i < len(verts); i++ {
		v := verts[i]

		if v.X < lo.X || (v.X == lo.X && v.Y < lo.Y) {
			lo = v
			start = i
		} else if v.X > hi.X || (v.X == hi.X && v.Y > hi.Y) {
			hi = v
			end = i
		}
	}

	return start, end
}

func qhullReduce(tol float64, verts []vec.Vec2, count int, a, pivot, b vec.Vec2, result []vec.Vec2) int {
	if count == 0 {
		result[0] = pivot
		return 1
	}

	leftCount := qhullPartition(verts, count, a, pivot, tol)
	var index int
	if leftCount-1 >= 0 {
		index = qhullReduce(tol, verts[1:], leftCount-1, a, verts[0], pivot, result)
	}

	result[index] = pivot
	index++

	rightCount := qhullPartition(verts[leftCount:], count-leftCount, pivot, b, tol)
	if rightCount-1 < 0 {
		return index
	}
	return index + qhullReduce(tol, verts[leftCount+1:], rightCount-1, pivot, verts[leftCount], b, result[index:])
}

func qhullPartition(verts []vec.Vec2, count int, a, b vec.Vec2, tol float64) int {
	if count == 0 {
		return 0
	}

	best := 0.0
	pivot := 0

	delta := b.Sub(a)
	valueTol := tol * delta.Mag()

	head := 0
	for tail := count - 1; head <= tail; {
		value := verts[head].Sub(a).Cross(delta)
		if value > valueTol {
			if value > best {
				best = value
				pivot = head
			}
			head++
		} else {
			verts[head], verts[tail] = verts[tail], verts[head]
			tail--
		}
	}

	// move the new pivot to the front if it's not already there
	if pivot != 0 {
		verts[0], verts[pivot] = verts[pivot], verts[0]
	}
	return head
}
