package collision

import (
	"github.com/setanarut/b2d/geom"
)

// findMaxSeparation finds the edge normal of poly1 with the largest
// separation from poly2.
func findMaxSeparation(poly1 *PolygonShape, xf1 geom.Transform, poly2 *PolygonShape, xf2 geom.Transform) (edgeIndex int, maxSeparation float64) {
	n1s := poly1.Normals
	v1s := poly1.Vertices
	v2s := poly2.Vertices
	xf := xf2.MulT(xf1)

	bestIndex := 0
	maxSeparation = -maxFloat
	for i := range v1s {
		// get poly1 normal in frame2
		n := xf.Q.Apply(n1s[i])
		v1 := xf.Apply(v1s[i])

		// find deepest point for normal i
		si := maxFloat
		for _, v2 := range v2s {
			if sij := n.Dot(v2.Sub(v1)); sij < si {
				si = sij
			}
		}

		if si > maxSeparation {
			maxSeparation = si
			bestIndex = i
		}
	}
	return bestIndex, maxSeparation
}

// findIncidentEdge returns the edge of poly2 most anti-parallel to the
// reference edge edge1 of poly1, in world space.
func findIncidentEdge(poly1 *PolygonShape, xf1 geom.Transform, edge1 int, poly2 *PolygonShape, xf2 geom.Transform) [2]ClipVertex {
	normals1 := poly1.Normals

	count2 := len(poly2.Vertices)
	vertices2 := poly2.Vertices
	normals2 := poly2.Normals

	// get the normal of the reference edge in poly2's frame
	normal1 := xf2.Q.ApplyT(xf1.Q.Apply(normals1[edge1]))

	// find the incident edge on poly2
	index := 0
	minDot := maxFloat
	for i := range count2 {
		if dot := normal1.Dot(normals2[i]); dot < minDot {
			minDot = dot
			index = i
		}
	}

	// build the clip vertices for the incident edge
	i1 := index
	i2 := 0
	if i1+1 < count2 {
		i2 = i1 + 1
	}

	var c [2]ClipVertex
	c[0].V = xf2.Apply(vertices2[i1])
	c[0].ID = ContactFeature{IndexA: uint8(edge1), IndexB: uint8(i1), TypeA: FeatureFace, TypeB: FeatureVertex}
	c[1].V = xf2.Apply(vertices2[i2])
	c[1].ID = ContactFeature{IndexA: uint8(edge1), IndexB: uint8(i2), TypeA: FeatureFace, TypeB: FeatureVertex}
	return c
}

// CollidePolygons computes the manifold between two polygons with the
// separating axis test and reference face clipping.
//
// Find edge normal of max separation on A, then on B. Choose the reference
// edge as the one with the larger separation, preferring A within a small
// tolerance. Find the incident edge on the other polygon and clip it
// against the side planes of the reference edge.
func CollidePolygons(m *Manifold, polyA *PolygonShape, xfA geom.Transform, polyB *PolygonShape, xfB geom.Transform) {
	m.PointCount = 0
	totalRadius := polyA.R + polyB.R

	edgeA, separationA := findMaxSeparation(polyA, xfA, polyB, xfB)
	if separationA > totalRadius {
		return
	}

	edgeB, separationB := findMaxSeparation(polyB, xfB, polyA, xfA)
	if separationB > totalRadius {
		return
	}

	var (
		poly1, poly2 *PolygonShape // reference and incident polygon
		xf1, xf2     geom.Transform
		edge1        int
		flip         bool
	)
	const tol = 0.1 * LinearSlop

	if separationB > separationA+tol {
		poly1, poly2 = polyB, polyA
		xf1, xf2 = xfB, xfA
		edge1 = edgeB
		m.Type = ManifoldFaceB
		flip = true
	} else {
		poly1, poly2 = polyA, polyB
		xf1, xf2 = xfA, xfB
		edge1 = edgeA
		m.Type = ManifoldFaceA
		flip = false
	}

	incidentEdge := findIncidentEdge(poly1, xf1, edge1, poly2, xf2)

	count1 := len(poly1.Vertices)
	vertices1 := poly1.Vertices

	iv1 := edge1
	iv2 := 0
	if edge1+1 < count1 {
		iv2 = edge1 + 1
	}

	v11 := vertices1[iv1]
	v12 := vertices1[iv2]

	localTangent, _ := geom.Normalize(v12.Sub(v11))

	localNormal := localTangent.ReversePerp()
	planePoint := v11.Add(v12).Scale(0.5)

	tangent := xf1.Q.Apply(localTangent)
	normal := tangent.ReversePerp()

	v11 = xf1.Apply(v11)
	v12 = xf1.Apply(v12)

	// face offset
	frontOffset := normal.Dot(v11)

	// side offsets, extended by polytope skin thickness
	sideOffset1 := -tangent.Dot(v11) + totalRadius
	sideOffset2 := tangent.Dot(v12) + totalRadius

	// clip incident edge against extruded edge1 side edges
	clipPoints1, np := ClipSegmentToLine(incidentEdge, tangent.Neg(), sideOffset1, iv1)
	if np < 2 {
		return
	}

	clipPoints2, np := ClipSegmentToLine(clipPoints1, tangent, sideOffset2, iv2)
	if np < 2 {
		return
	}

	// now clipPoints2 contains the clipped points
	m.LocalNormal = localNormal
	m.LocalPoint = planePoint

	pointCount := 0
	for i := range MaxManifoldPoints {
		separation := normal.Dot(clipPoints2[i].V) - frontOffset
		if separation <= totalRadius {
			cp := &m.Points[pointCount]
			cp.LocalPoint = xf2.ApplyT(clipPoints2[i].V)
			cp.ID = clipPoints2[i].ID
			if flip {
				// swap features
				cp.ID = cp.ID.swap()
			}
			pointCount++
		}
	}
	m.PointCount = pointCount
}

// CollideEdgeAndPolygon computes the manifold between an edge and a
// polygon. The edge collides as a two vertex polygon carrying the edge
// radius.
func CollideEdgeAndPolygon(m *Manifold, edgeA *EdgeShape, xfA geom.Transform, polyB *PolygonShape, xfB geom.Transform) {
	CollidePolygons(m, newSegmentPolygon(edgeA.V1, edgeA.V2, edgeA.R), xfA, polyB, xfB)
}
