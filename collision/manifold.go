package collision

import (
	"github.com/setanarut/b2d/geom"
	"github.com/setanarut/vec"
)

// FeatureType tells whether a contact feature index names a vertex or a face.
type FeatureType uint8

const (
	FeatureVertex FeatureType = iota
	FeatureFace
)

// ContactFeature identifies the pair of features that produced a contact
// point. It is stable across steps and drives warm-start matching.
type ContactFeature struct {
	IndexA, IndexB uint8 // feature index on shape A and shape B
	TypeA, TypeB   FeatureType
}

// Key packs the feature into a single comparable value.
func (cf ContactFeature) Key() uint32 {
	return uint32(cf.IndexA) | uint32(cf.IndexB)<<8 | uint32(cf.TypeA)<<16 | uint32(cf.TypeB)<<24
}

// ContactFeatureFromKey unpacks a value produced by Key.
func ContactFeatureFromKey(key uint32) ContactFeature {
	return ContactFeature{
		IndexA: uint8(key),
		IndexB: uint8(key >> 8),
		TypeA:  FeatureType(key >> 16),
		TypeB:  FeatureType(key >> 24),
	}
}

// swap exchanges the A and B sides.
func (cf ContactFeature) swap() ContactFeature {
	return ContactFeature{IndexA: cf.IndexB, IndexB: cf.IndexA, TypeA: cf.TypeB, TypeB: cf.TypeA}
}

// ManifoldPoint is a contact point in local coordinates together with the
// impulses accumulated for it.
//
// The local point depends on the manifold type:
//   - ManifoldCircles: the local center of circle B
//   - ManifoldFaceA: the local center of circle B or the clip point of polygon B
//   - ManifoldFaceB: the clip point of polygon A
type ManifoldPoint struct {
	LocalPoint     vec.Vec2
	NormalImpulse  float64
	TangentImpulse float64
	ID             ContactFeature
}

// ManifoldType selects how the local fields of a Manifold are interpreted.
type ManifoldType int

const (
	ManifoldCircles ManifoldType = iota
	ManifoldFaceA
	ManifoldFaceB
)

// Manifold is the contact description between two convex shapes, stored
// in local coordinates so it survives small motions.
//
// The local normal and point depend on the type:
//   - ManifoldCircles: point is the local center of circle A, normal unused
//   - ManifoldFaceA: normal and a point on face A
//   - ManifoldFaceB: normal and a point on face B
type Manifold struct {
	Points      [MaxManifoldPoints]ManifoldPoint
	LocalNormal vec.Vec2
	LocalPoint  vec.Vec2
	Type        ManifoldType
	PointCount  int
}

// WorldManifold is a manifold expressed in world coordinates.
type WorldManifold struct {
	Normal      vec.Vec2 // from A to B
	Points      [MaxManifoldPoints]vec.Vec2
	Separations [MaxManifoldPoints]float64 // negative when overlapping
}

// Initialize evaluates the manifold with the given transforms and radii.
// Contact points are placed midway between the two surfaces.
func (wm *WorldManifold) Initialize(m *Manifold, xfA geom.Transform, radiusA float64, xfB geom.Transform, radiusB float64) {
	if m.PointCount == 0 {
		return
	}

	switch m.Type {
	case ManifoldCircles:
		wm.Normal = vec.Vec2{X: 1, Y: 0}
		pointA := xfA.Apply(m.LocalPoint)
		pointB := xfB.Apply(m.Points[0].LocalPoint)
		if pointA.DistanceSq(pointB) > Epsilon*Epsilon {
			wm.Normal, _ = geom.Normalize(pointB.Sub(pointA))
		}

		cA := pointA.Add(wm.Normal.Scale(radiusA))
		cB := pointB.Sub(wm.Normal.Scale(radiusB))
		wm.Points[0] = cA.Add(cB).Scale(0.5)
		wm.Separations[0] = cB.Sub(cA).Dot(wm.Normal)

	case ManifoldFaceA:
		wm.Normal = xfA.Q.Apply(m.LocalNormal)
		planePoint := xfA.Apply(m.LocalPoint)

		for i := range m.PointCount {
			clipPoint := xfB.Apply(m.Points[i].LocalPoint)
			cA := clipPoint.Add(wm.Normal.Scale(radiusA - clipPoint.Sub(planePoint).Dot(wm.Normal)))
			cB := clipPoint.Sub(wm.Normal.Scale(radiusB))
			wm.Points[i] = cA.Add(cB).Scale(0.5)
			wm.Separations[i] = cB.Sub(cA).Dot(wm.Normal)
		}

	case ManifoldFaceB:
		wm.Normal = xfB.Q.Apply(m.LocalNormal)
		planePoint := xfB.Apply(m.LocalPoint)

		for i := range m.PointCount {
			clipPoint := xfA.Apply(m.Points[i].LocalPoint)
			cB := clipPoint.Add(wm.Normal.Scale(radiusB - clipPoint.Sub(planePoint).Dot(wm.Normal)))
			cA := clipPoint.Sub(wm.Normal.Scale(radiusA))
			wm.Points[i] = cA.Add(cB).Scale(0.5)
			wm.Separations[i] = cA.Sub(cB).Dot(wm.Normal)
		}

		// ensure normal points from A to B
		wm.Normal = wm.Normal.Neg()
	}
}

// PointState describes how a contact point changed between two manifolds.
type PointState int

const (
	PointNull    PointState = iota // point does not exist
	PointAdd                       // point was added in the update
	PointPersist                   // point persisted across the update
	PointRemove                    // point was removed in the update
)

// GetPointStates compares two manifolds by contact feature id.
// state1 holds the fate of the points of m1, state2 of the points of m2.
func GetPointStates(m1, m2 *Manifold) (state1, state2 [MaxManifoldPoints]PointState) {
	// detect persists and removes
	for i := range m1.PointCount {
		id := m1.Points[i].ID
		state1[i] = PointRemove
		for j := range m2.PointCount {
			if m2.Points[j].ID.Key() == id.Key() {
				state1[i] = PointPersist
				break
			}
		}
	}

	// detect persists and adds
	for i := range m2.PointCount {
		id := m2.Points[i].ID
		state2[i] = PointAdd
		for j := range m1.PointCount {
			if m1.Points[j].ID.Key() == id.Key() {
				state2[i] = PointPersist
				break
			}
		}
	}
	return state1, state2
}

// ClipVertex is a point used while clipping a reference face.
type ClipVertex struct {
	V  vec.Vec2
	ID ContactFeature
}

// ClipSegmentToLine clips the segment in vIn against the half plane
// dot(normal, v) <= offset and returns the surviving points. Points created
// by the clip take vertexIndexA as their feature on A.
func ClipSegmentToLine(vIn [2]ClipVertex, normal vec.Vec2, offset float64, vertexIndexA int) (vOut [2]ClipVertex, count int) {
	// calculate the distance of end points to the line
	distance0 := normal.Dot(vIn[0].V) - offset
	distance1 := normal.Dot(vIn[1].V) - offset

	// if the points are behind the plane
	if distance0 <= 0 {
		vOut[count] = vIn[0]
		count++
	}
	if distance1 <= 0 {
		vOut[count] = vIn[1]
		count++
	}

	// if the points are on different sides of the plane
	if distance0*distance1 < 0 {
		// find intersection point of edge and plane
		interp := distance0 / (distance0 - distance1)
		vOut[count].V = vIn[0].V.Add(vIn[1].V.Sub(vIn[0].V).Scale(interp))

		// VertexA is hitting edgeB
		vOut[count].ID = ContactFeature{
			IndexA: uint8(vertexIndexA),
			IndexB: vIn[0].ID.IndexB,
			TypeA:  FeatureVertex,
			TypeB:  FeatureFace,
		}
		count++
	}
	return vOut, count
}
