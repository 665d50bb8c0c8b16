package collision

import (
	"fmt"

	"github.com/setanarut/b2d/geom"
	"github.com/setanarut/vec"
)

// ShapeType identifies a concrete shape. It also indexes the collide
// registry, so the values are dense.
type ShapeType int

const (
	TypeCircle ShapeType = iota
	TypeEdge
	TypePolygon
	TypeChain
	// ShapeTypeCount is the number of shape types.
	ShapeTypeCount
)

func (t ShapeType) String() string {
	switch t {
	case TypeCircle:
		return "circle"
	case TypeEdge:
		return "edge"
	case TypePolygon:
		return "polygon"
	case TypeChain:
		return "chain"
	default:
		return fmt.Sprintf("ShapeType(%d)", int(t))
	}
}

// MassData holds the mass properties computed from a shape and a density.
type MassData struct {
	Mass   float64
	Center vec.Vec2 // relative to the shape origin
	I      float64  // rotational inertia about the shape origin
}

// Shape is the geometric contract used by fixtures, the broad phase and
// the narrow phase. Shapes are immutable once attached to a fixture.
type Shape interface {
	Type() ShapeType
	// Radius is the skin radius. Polygons use PolygonRadius.
	Radius() float64
	// ChildCount is the number of child primitives. Only chains have more than one.
	ChildCount() int
	TestPoint(xf geom.Transform, p vec.Vec2) bool
	RayCast(input RayCastInput, xf geom.Transform, childIndex int) (RayCastOutput, bool)
	ComputeAABB(xf geom.Transform, childIndex int) AABB
	ComputeMass(density float64) MassData
	// Proxy returns the convex vertex set GJK works on for one child.
	Proxy(childIndex int) DistanceProxy
	Clone() Shape
}
