package collision

import (
	"errors"

	"github.com/setanarut/b2d/geom"
	"github.com/setanarut/vec"
)

// ErrShortChain is returned when a chain is built from too few vertices.
var ErrShortChain = errors.New("collision: chain needs at least two vertices")

// ChainShape is a free-form sequence of segments. Each segment is a child
// and collides as an edge. Loops repeat the first vertex at the end.
type ChainShape struct {
	Vertices []vec.Vec2
	R        float64
}

// NewChain returns an open chain through vertices.
func NewChain(vertices []vec.Vec2) (*ChainShape, error) {
	if len(vertices) < 2 {
		return nil, ErrShortChain
	}
	return &ChainShape{
		Vertices: append([]vec.Vec2(nil), vertices...),
		R:        PolygonRadius,
	}, nil
}

// NewLoop returns a closed chain through vertices.
func NewLoop(vertices []vec.Vec2) (*ChainShape, error) {
	if len(vertices) < 3 {
		return nil, ErrShortChain
	}
	vs := make([]vec.Vec2, 0, len(vertices)+1)
	vs = append(vs, vertices...)
	vs = append(vs, vertices[0])
	return &ChainShape{Vertices: vs, R: PolygonRadius}, nil
}

func (c *ChainShape) Type() ShapeType {
	return TypeChain
}

func (c *ChainShape) Radius() float64 {
	return c.R
}

// ChildCount is the number of segments.
func (c *ChainShape) ChildCount() int {
	return len(c.Vertices) - 1
}

func (c *ChainShape) Clone() Shape {
	clone := *c
	clone.Vertices = append([]vec.Vec2(nil), c.Vertices...)
	return &clone
}

// ChildEdge returns segment i as an edge shape.
func (c *ChainShape) ChildEdge(i int) *EdgeShape {
	return &EdgeShape{V1: c.Vertices[i], V2: c.Vertices[i+1], R: c.R}
}

func (c *ChainShape) TestPoint(geom.Transform, vec.Vec2) bool {
	return false
}

func (c *ChainShape) RayCast(input RayCastInput, xf geom.Transform, childIndex int) (RayCastOutput, bool) {
	return c.ChildEdge(childIndex).RayCast(input, xf, 0)
}

func (c *ChainShape) ComputeAABB(xf geom.Transform, childIndex int) AABB {
	v1 := xf.Apply(c.Vertices[childIndex])
	v2 := xf.Apply(c.Vertices[childIndex+1])
	return AABB{Lower: geom.MinV(v1, v2), Upper: geom.MaxV(v1, v2)}.Expand(c.R)
}

// ComputeMass returns zero mass. Chains only make sense on static bodies.
func (c *ChainShape) ComputeMass(float64) MassData {
	return MassData{}
}

func (c *ChainShape) Proxy(childIndex int) DistanceProxy {
	return DistanceProxy{
		Vertices: c.Vertices[childIndex : childIndex+2],
		Radius:   c.R,
	}
}
