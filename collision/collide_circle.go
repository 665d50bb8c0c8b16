package collision

import (
	"github.com/setanarut/b2d/geom"
	"github.com/setanarut/vec"
)

// CollideCircles computes the manifold between two circles.
func CollideCircles(m *Manifold, circleA *CircleShape, xfA geom.Transform, circleB *CircleShape, xfB geom.Transform) {
	m.PointCount = 0

	pA := xfA.Apply(circleA.P)
	pB := xfB.Apply(circleB.P)

	distSqr := pA.DistanceSq(pB)
	radius := circleA.R + circleB.R
	if distSqr > radius*radius {
		return
	}

	m.Type = ManifoldCircles
	m.LocalPoint = circleA.P
	m.LocalNormal = vec.Vec2{}
	m.PointCount = 1

	m.Points[0].LocalPoint = circleB.P
	m.Points[0].ID = ContactFeature{}
}

// CollidePolygonAndCircle computes the manifold between a polygon and a circle.
func CollidePolygonAndCircle(m *Manifold, polyA *PolygonShape, xfA geom.Transform, circleB *CircleShape, xfB geom.Transform) {
	m.PointCount = 0

	// compute circle position in the frame of the polygon
	c := xfB.Apply(circleB.P)
	cLocal := xfA.ApplyT(c)

	// find the min separating edge
	normalIndex := 0
	separation := -maxFloat
	radius := polyA.R + circleB.R
	vertices := polyA.Vertices
	normals := polyA.Normals
	count := len(vertices)

	for i := range count {
		s := normals[i].Dot(cLocal.Sub(vertices[i]))
		if s > radius {
			// early out
			return
		}
		if s > separation {
			separation = s
			normalIndex = i
		}
	}

	// vertices that subtend the incident face
	vertIndex1 := normalIndex
	vertIndex2 := 0
	if vertIndex1+1 < count {
		vertIndex2 = vertIndex1 + 1
	}
	v1 := vertices[vertIndex1]
	v2 := vertices[vertIndex2]

	// if the center is inside the polygon
	if separation < Epsilon {
		m.PointCount = 1
		m.Type = ManifoldFaceA
		m.LocalNormal = normals[normalIndex]
		m.LocalPoint = v1.Add(v2).Scale(0.5)
		m.Points[0].LocalPoint = circleB.P
		m.Points[0].ID = ContactFeature{}
		return
	}

	// compute barycentric coordinates
	u1 := cLocal.Sub(v1).Dot(v2.Sub(v1))
	u2 := cLocal.Sub(v2).Dot(v1.Sub(v2))

	switch {
	case u1 <= 0:
		if cLocal.DistanceSq(v1) > radius*radius {
			return
		}
		m.PointCount = 1
		m.Type = ManifoldFaceA
		m.LocalNormal, _ = geom.Normalize(cLocal.Sub(v1))
		m.LocalPoint = v1
	case u2 <= 0:
		if cLocal.DistanceSq(v2) > radius*radius {
			return
		}
		m.PointCount = 1
		m.Type = ManifoldFaceA
		m.LocalNormal, _ = geom.Normalize(cLocal.Sub(v2))
		m.LocalPoint = v2
	default:
		faceCenter := v1.Add(v2).Scale(0.5)
		s := cLocal.Sub(faceCenter).Dot(normals[vertIndex1])
		if s > radius {
			return
		}
		m.PointCount = 1
		m.Type = ManifoldFaceA
		m.LocalNormal = normals[vertIndex1]
		m.LocalPoint = faceCenter
	}
	m.Points[0].LocalPoint = circleB.P
	m.Points[0].ID = ContactFeature{}
}

// CollideEdgeAndCircle computes the manifold between an edge and a circle.
// The circle is classified against the vertex regions and the face region
// of the segment.
func CollideEdgeAndCircle(m *Manifold, edgeA *EdgeShape, xfA geom.Transform, circleB *CircleShape, xfB geom.Transform) {
	m.PointCount = 0

	// compute circle in frame of edge
	q := xfA.ApplyT(xfB.Apply(circleB.P))

	a, b := edgeA.V1, edgeA.V2
	e := b.Sub(a)

	// barycentric coordinates
	u := e.Dot(b.Sub(q))
	v := e.Dot(q.Sub(a))

	radius := edgeA.R + circleB.R

	cf := ContactFeature{IndexB: 0, TypeB: FeatureVertex}

	// region A
	if v <= 0 {
		if a.DistanceSq(q) > radius*radius {
			return
		}
		cf.IndexA = 0
		cf.TypeA = FeatureVertex
		m.PointCount = 1
		m.Type = ManifoldCircles
		m.LocalNormal = vec.Vec2{}
		m.LocalPoint = a
		m.Points[0].ID = cf
		m.Points[0].LocalPoint = circleB.P
		return
	}

	// region B
	if u <= 0 {
		if b.DistanceSq(q) > radius*radius {
			return
		}
		cf.IndexA = 1
		cf.TypeA = FeatureVertex
		m.PointCount = 1
		m.Type = ManifoldCircles
		m.LocalNormal = vec.Vec2{}
		m.LocalPoint = b
		m.Points[0].ID = cf
		m.Points[0].LocalPoint = circleB.P
		return
	}

	// region AB
	den := e.Dot(e)
	p := a.Scale(u).Add(b.Scale(v)).Scale(1 / den)
	if p.DistanceSq(q) > radius*radius {
		return
	}

	n := vec.Vec2{X: -e.Y, Y: e.X}
	if n.Dot(q.Sub(a)) < 0 {
		n = n.Neg()
	}
	n, _ = geom.Normalize(n)

	cf.IndexA = 0
	cf.TypeA = FeatureFace
	m.PointCount = 1
	m.Type = ManifoldFaceA
	m.LocalNormal = n
	m.LocalPoint = a
	m.Points[0].ID = cf
	m.Points[0].LocalPoint = circleB.P
}
