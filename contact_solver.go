package b2d

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/setanarut/b2d/collision"
	"github.com/setanarut/b2d/geom"
	"github.com/setanarut/vec"
)

// maxConditionNumber guards the block solver against an ill conditioned K.
const maxConditionNumber = 1000.0

type velocityConstraintPoint struct {
	rA, rB         vec.Vec2
	normalImpulse  float64
	tangentImpulse float64
	normalMass     float64
	tangentMass    float64
	velocityBias   float64
}

type contactVelocityConstraint struct {
	points       [collision.MaxManifoldPoints]velocityConstraintPoint
	normal       vec.Vec2
	normalMass   mgl64.Mat2
	K            mgl64.Mat2
	indexA       int
	indexB       int
	invMassA     float64
	invMassB     float64
	invIA        float64
	invIB        float64
	friction     float64
	restitution  float64
	tangentSpeed float64
	pointCount   int
}

type contactPositionConstraint struct {
	localPoints  [collision.MaxManifoldPoints]vec.Vec2
	localNormal  vec.Vec2
	localPoint   vec.Vec2
	indexA       int
	indexB       int
	invMassA     float64
	invMassB     float64
	localCenterA vec.Vec2
	localCenterB vec.Vec2
	invIA        float64
	invIB        float64
	kind         collision.ManifoldType
	radiusA      float64
	radiusB      float64
	pointCount   int
}

// contactSolver runs sequential impulses over the contacts of one island.
// The constraints live on the contacts themselves.
type contactSolver struct {
	step       TimeStep
	positions  []Position
	velocities []Velocity
	contacts   []*Contact
	blockSolve bool
}

func (s *contactSolver) init(step TimeStep, positions []Position, velocities []Velocity, contacts []*Contact, blockSolve bool) {
	s.step = step
	s.positions = positions
	s.velocities = velocities
	s.contacts = contacts
	s.blockSolve = blockSolve

	// initialize position independent portions of the constraints
	for _, c := range contacts {
		fixtureA := c.fixtureA
		fixtureB := c.fixtureB
		bodyA := fixtureA.body
		bodyB := fixtureB.body
		manifold := &c.manifold

		pointCount := manifold.PointCount

		vc := &c.vc
		vc.friction = c.friction
		vc.restitution = c.restitution
		vc.tangentSpeed = c.tangentSpeed
		vc.indexA = bodyA.islandIndex
		vc.indexB = bodyB.islandIndex
		vc.invMassA = bodyA.invMass
		vc.invMassB = bodyB.invMass
		vc.invIA = bodyA.invI
		vc.invIB = bodyB.invI
		vc.pointCount = pointCount
		vc.K = mgl64.Mat2{}
		vc.normalMass = mgl64.Mat2{}

		pc := &c.pc
		pc.indexA = bodyA.islandIndex
		pc.indexB = bodyB.islandIndex
		pc.invMassA = bodyA.invMass
		pc.invMassB = bodyB.invMass
		pc.localCenterA = bodyA.sweep.LocalCenter
		pc.localCenterB = bodyB.sweep.LocalCenter
		pc.invIA = bodyA.invI
		pc.invIB = bodyB.invI
		pc.localNormal = manifold.LocalNormal
		pc.localPoint = manifold.LocalPoint
		pc.pointCount = pointCount
		pc.radiusA = fixtureA.shape.Radius()
		pc.radiusB = fixtureB.shape.Radius()
		pc.kind = manifold.Type

		for j := range pointCount {
			cp := &manifold.Points[j]
			vcp := &vc.points[j]

			if step.WarmStarting {
				vcp.normalImpulse = step.DtRatio * cp.NormalImpulse
				vcp.tangentImpulse = step.DtRatio * cp.TangentImpulse
			} else {
				vcp.normalImpulse = 0
				vcp.tangentImpulse = 0
			}

			vcp.rA = vec.Vec2{}
			vcp.rB = vec.Vec2{}
			vcp.normalMass = 0
			vcp.tangentMass = 0
			vcp.velocityBias = 0

			pc.localPoints[j] = cp.LocalPoint
		}
	}
}

// initializeVelocityConstraints computes the world anchors, effective
// masses and restitution bias from the current positions.
func (s *contactSolver) initializeVelocityConstraints() {
	for _, c := range s.contacts {
		vc := &c.vc
		pc := &c.pc

		radiusA := pc.radiusA
		radiusB := pc.radiusB

		indexA := vc.indexA
		indexB := vc.indexB

		mA := vc.invMassA
		mB := vc.invMassB
		iA := vc.invIA
		iB := vc.invIB

		cA := s.positions[indexA].C
		aA := s.positions[indexA].A
		vA := s.velocities[indexA].V
		wA := s.velocities[indexA].W

		cB := s.positions[indexB].C
		aB := s.positions[indexB].A
		vB := s.velocities[indexB].V
		wB := s.velocities[indexB].W

		xfA := geom.Transform{Q: geom.NewRot(aA)}
		xfB := geom.Transform{Q: geom.NewRot(aB)}
		xfA.P = cA.Sub(xfA.Q.Apply(pc.localCenterA))
		xfB.P = cB.Sub(xfB.Q.Apply(pc.localCenterB))

		var wm collision.WorldManifold
		wm.Initialize(&c.manifold, xfA, radiusA, xfB, radiusB)

		vc.normal = wm.Normal
		tangent := vc.normal.ReversePerp()

		for j := range vc.pointCount {
			vcp := &vc.points[j]

			vcp.rA = wm.Points[j].Sub(cA)
			vcp.rB = wm.Points[j].Sub(cB)

			rnA := vcp.rA.Cross(vc.normal)
			rnB := vcp.rB.Cross(vc.normal)

			kNormal := mA + mB + iA*rnA*rnA + iB*rnB*rnB
			vcp.normalMass = 0
			if kNormal > 0 {
				vcp.normalMass = 1 / kNormal
			}

			rtA := vcp.rA.Cross(tangent)
			rtB := vcp.rB.Cross(tangent)

			kTangent := mA + mB + iA*rtA*rtA + iB*rtB*rtB
			vcp.tangentMass = 0
			if kTangent > 0 {
				vcp.tangentMass = 1 / kTangent
			}

			// setup a velocity bias for restitution
			vcp.velocityBias = 0
			dv := vB.Add(geom.CrossSV(wB, vcp.rB)).Sub(vA).Sub(geom.CrossSV(wA, vcp.rA))
			vRel := vc.normal.Dot(dv)
			if vRel < -velocityThreshold {
				vcp.velocityBias = -vc.restitution * vRel
			}
		}

		// if we have two points, then prepare the block solver
		if vc.pointCount == 2 && s.blockSolve {
			vcp1 := &vc.points[0]
			vcp2 := &vc.points[1]

			rn1A := vcp1.rA.Cross(vc.normal)
			rn1B := vcp1.rB.Cross(vc.normal)
			rn2A := vcp2.rA.Cross(vc.normal)
			rn2B := vcp2.rB.Cross(vc.normal)

			k11 := mA + mB + iA*rn1A*rn1A + iB*rn1B*rn1B
			k22 := mA + mB + iA*rn2A*rn2A + iB*rn2B*rn2B
			k12 := mA + mB + iA*rn1A*rn2A + iB*rn1B*rn2B

			K := mgl64.Mat2{k11, k12, k12, k22}
			if k11*k11 < maxConditionNumber*K.Det() {
				// K is safe to invert
				vc.K = K
				vc.normalMass = K.Inv()
			} else {
				// the constraints are redundant, just use one
				vc.pointCount = 1
			}
		}
	}
}

func (s *contactSolver) warmStart() {
	for _, c := range s.contacts {
		vc := &c.vc

		indexA := vc.indexA
		indexB := vc.indexB
		mA := vc.invMassA
		iA := vc.invIA
		mB := vc.invMassB
		iB := vc.invIB

		vA := s.velocities[indexA].V
		wA := s.velocities[indexA].W
		vB := s.velocities[indexB].V
		wB := s.velocities[indexB].W

		normal := vc.normal
		tangent := normal.ReversePerp()

		for j := range vc.pointCount {
			vcp := &vc.points[j]
			P := normal.Scale(vcp.normalImpulse).Add(tangent.Scale(vcp.tangentImpulse))
			wA -= iA * vcp.rA.Cross(P)
			vA = vA.Sub(P.Scale(mA))
			wB += iB * vcp.rB.Cross(P)
			vB = vB.Add(P.Scale(mB))
		}

		s.velocities[indexA].V = vA
		s.velocities[indexA].W = wA
		s.velocities[indexB].V = vB
		s.velocities[indexB].W = wB
	}
}

func (s *contactSolver) solveVelocityConstraints() {
	for _, c := range s.contacts {
		vc := &c.vc

		indexA := vc.indexA
		indexB := vc.indexB
		mA := vc.invMassA
		iA := vc.invIA
		mB := vc.invMassB
		iB := vc.invIB
		pointCount := vc.pointCount

		vA := s.velocities[indexA].V
		wA := s.velocities[indexA].W
		vB := s.velocities[indexB].V
		wB := s.velocities[indexB].W

		normal := vc.normal
		tangent := normal.ReversePerp()
		friction := vc.friction

		// solve tangent constraints first because non-penetration is more
		// important than friction
		for j := range pointCount {
			vcp := &vc.points[j]

			// relative velocity at contact
			dv := vB.Add(geom.CrossSV(wB, vcp.rB)).Sub(vA).Sub(geom.CrossSV(wA, vcp.rA))

			// compute tangent force
			vt := dv.Dot(tangent) - vc.tangentSpeed
			lambda := vcp.tangentMass * (-vt)

			// clamp the accumulated force
			maxFriction := friction * vcp.normalImpulse
			newImpulse := geom.Clamp(vcp.tangentImpulse+lambda, -maxFriction, maxFriction)
			lambda = newImpulse - vcp.tangentImpulse
			vcp.tangentImpulse = newImpulse

			// apply contact impulse
			P := tangent.Scale(lambda)

			vA = vA.Sub(P.Scale(mA))
			wA -= iA * vcp.rA.Cross(P)

			vB = vB.Add(P.Scale(mB))
			wB += iB * vcp.rB.Cross(P)
		}

		if pointCount == 1 || !s.blockSolve {
			for j := range pointCount {
				vcp := &vc.points[j]

				dv := vB.Add(geom.CrossSV(wB, vcp.rB)).Sub(vA).Sub(geom.CrossSV(wA, vcp.rA))

				// compute normal impulse
				vn := dv.Dot(normal)
				lambda := -vcp.normalMass * (vn - vcp.velocityBias)

				// clamp the accumulated impulse
				newImpulse := math.Max(vcp.normalImpulse+lambda, 0)
				lambda = newImpulse - vcp.normalImpulse
				vcp.normalImpulse = newImpulse

				P := normal.Scale(lambda)
				vA = vA.Sub(P.Scale(mA))
				wA -= iA * vcp.rA.Cross(P)

				vB = vB.Add(P.Scale(mB))
				wB += iB * vcp.rB.Cross(P)
			}
		} else {
			vA, wA, vB, wB = s.blockSolveNormal(vc, vA, wA, vB, wB)
		}

		s.velocities[indexA].V = vA
		s.velocities[indexA].W = wA
		s.velocities[indexB].V = vB
		s.velocities[indexB].W = wB
	}
}

// blockSolveNormal solves both normal constraints of a two point manifold
// as a linear complementarity problem:
//
//	vn = A * x + b, vn >= 0, x >= 0 and vn_i * x_i = 0
//
// where b holds the current normal velocities minus the restitution bias
// and the accumulated impulse a. The solution is searched among the four
// combinations of active points. The accumulated impulse is x and the
// incremental impulse applied is x - a.
func (s *contactSolver) blockSolveNormal(vc *contactVelocityConstraint, vA vec.Vec2, wA float64, vB vec.Vec2, wB float64) (vec.Vec2, float64, vec.Vec2, float64) {
	mA := vc.invMassA
	iA := vc.invIA
	mB := vc.invMassB
	iB := vc.invIB
	normal := vc.normal

	cp1 := &vc.points[0]
	cp2 := &vc.points[1]

	a := vec.Vec2{X: cp1.normalImpulse, Y: cp2.normalImpulse}

	// relative velocity at contact
	dv1 := vB.Add(geom.CrossSV(wB, cp1.rB)).Sub(vA).Sub(geom.CrossSV(wA, cp1.rA))
	dv2 := vB.Add(geom.CrossSV(wB, cp2.rB)).Sub(vA).Sub(geom.CrossSV(wA, cp2.rA))

	// compute normal velocity
	vn1 := dv1.Dot(normal)
	vn2 := dv2.Dot(normal)

	b := vec.Vec2{X: vn1 - cp1.velocityBias, Y: vn2 - cp2.velocityBias}

	// compute b'
	b = b.Sub(geom.MulM22(vc.K, a))

	apply := func(x vec.Vec2) {
		// resubstitute for the incremental impulse
		d := x.Sub(a)

		// apply incremental impulse
		P1 := normal.Scale(d.X)
		P2 := normal.Scale(d.Y)
		vA = vA.Sub(P1.Add(P2).Scale(mA))
		wA -= iA * (cp1.rA.Cross(P1) + cp2.rA.Cross(P2))

		vB = vB.Add(P1.Add(P2).Scale(mB))
		wB += iB * (cp1.rB.Cross(P1) + cp2.rB.Cross(P2))

		// accumulate
		cp1.normalImpulse = x.X
		cp2.normalImpulse = x.Y
	}

	// case 1: vn = 0
	//
	//	0 = A * x + b'
	//	x = -inv(A) * b'
	x := geom.MulM22(vc.normalMass, b).Neg()
	if x.X >= 0 && x.Y >= 0 {
		apply(x)
		return vA, wA, vB, wB
	}

	// case 2: vn1 = 0 and x2 = 0
	//
	//	  0 = a11 * x1 + a12 * 0 + b1'
	//	vn2 = a21 * x1 + a22 * 0 + b2'
	x = vec.Vec2{X: -cp1.normalMass * b.X, Y: 0}
	vn2 = vc.K[1]*x.X + b.Y
	if x.X >= 0 && vn2 >= 0 {
		apply(x)
		return vA, wA, vB, wB
	}

	// case 3: vn2 = 0 and x1 = 0
	//
	//	vn1 = a11 * 0 + a12 * x2 + b1'
	//	  0 = a21 * 0 + a22 * x2 + b2'
	x = vec.Vec2{X: 0, Y: -cp2.normalMass * b.Y}
	vn1 = vc.K[2]*x.Y + b.X
	if x.Y >= 0 && vn1 >= 0 {
		apply(x)
		return vA, wA, vB, wB
	}

	// case 4: x = 0
	//
	//	vn1 = b1
	//	vn2 = b2
	x = vec.Vec2{}
	vn1 = b.X
	vn2 = b.Y
	if vn1 >= 0 && vn2 >= 0 {
		apply(x)
	}

	// no solution, give up. This is hit sometimes, but it doesn't seem to matter.
	return vA, wA, vB, wB
}

// storeImpulses copies the accumulated impulses back to the manifolds for
// warm starting the next step.
func (s *contactSolver) storeImpulses() {
	for _, c := range s.contacts {
		vc := &c.vc
		for j := range vc.pointCount {
			c.manifold.Points[j].NormalImpulse = vc.points[j].normalImpulse
			c.manifold.Points[j].TangentImpulse = vc.points[j].tangentImpulse
		}
	}
}

// solverManifold evaluates one point of the position constraint at the
// current transforms.
func (pc *contactPositionConstraint) solverManifold(xfA, xfB geom.Transform, index int) (normal, point vec.Vec2, separation float64) {
	switch pc.kind {
	case collision.ManifoldCircles:
		pointA := xfA.Apply(pc.localPoint)
		pointB := xfB.Apply(pc.localPoints[0])
		normal, _ = geom.Normalize(pointB.Sub(pointA))
		point = pointA.Add(pointB).Scale(0.5)
		separation = pointB.Sub(pointA).Dot(normal) - pc.radiusA - pc.radiusB

	case collision.ManifoldFaceA:
		normal = xfA.Q.Apply(pc.localNormal)
		planePoint := xfA.Apply(pc.localPoint)

		clipPoint := xfB.Apply(pc.localPoints[index])
		separation = clipPoint.Sub(planePoint).Dot(normal) - pc.radiusA - pc.radiusB
		point = clipPoint

	case collision.ManifoldFaceB:
		normal = xfB.Q.Apply(pc.localNormal)
		planePoint := xfB.Apply(pc.localPoint)

		clipPoint := xfA.Apply(pc.localPoints[index])
		separation = clipPoint.Sub(planePoint).Dot(normal) - pc.radiusA - pc.radiusB
		point = clipPoint

		// ensure normal points from A to B
		normal = normal.Neg()
	}
	return normal, point, separation
}

// solvePositionConstraints pushes overlapping bodies apart with
// non-linear Gauss-Seidel. It reports whether the largest overlap is
// within tolerance.
func (s *contactSolver) solvePositionConstraints() bool {
	return s.solvePositions(baumgarte, -3*linearSlop, func(pc *contactPositionConstraint) (float64, float64, float64, float64) {
		return pc.invMassA, pc.invIA, pc.invMassB, pc.invIB
	})
}

// solveTOIPositionConstraints is the sub-step variant. Only the two TOI
// bodies are movable; everything else acts as static.
func (s *contactSolver) solveTOIPositionConstraints(toiIndexA, toiIndexB int) bool {
	return s.solvePositions(toiBaumgarte, -1.5*linearSlop, func(pc *contactPositionConstraint) (mA, iA, mB, iB float64) {
		if pc.indexA == toiIndexA || pc.indexA == toiIndexB {
			mA = pc.invMassA
			iA = pc.invIA
		}
		if pc.indexB == toiIndexA || pc.indexB == toiIndexB {
			mB = pc.invMassB
			iB = pc.invIB
		}
		return mA, iA, mB, iB
	})
}

func (s *contactSolver) solvePositions(bias, tolerance float64, masses func(pc *contactPositionConstraint) (float64, float64, float64, float64)) bool {
	minSeparation := 0.0

	for _, c := range s.contacts {
		pc := &c.pc

		indexA := pc.indexA
		indexB := pc.indexB
		localCenterA := pc.localCenterA
		localCenterB := pc.localCenterB
		mA, iA, mB, iB := masses(pc)

		cA := s.positions[indexA].C
		aA := s.positions[indexA].A
		cB := s.positions[indexB].C
		aB := s.positions[indexB].A

		// solve normal constraints
		for j := range pc.pointCount {
			xfA := geom.Transform{Q: geom.NewRot(aA)}
			xfB := geom.Transform{Q: geom.NewRot(aB)}
			xfA.P = cA.Sub(xfA.Q.Apply(localCenterA))
			xfB.P = cB.Sub(xfB.Q.Apply(localCenterB))

			normal, point, separation := pc.solverManifold(xfA, xfB, j)

			rA := point.Sub(cA)
			rB := point.Sub(cB)

			// track max constraint error
			minSeparation = math.Min(minSeparation, separation)

			// prevent large corrections and allow slop
			C := geom.Clamp(bias*(separation+linearSlop), -maxLinearCorrection, 0)

			// compute the effective mass
			rnA := rA.Cross(normal)
			rnB := rB.Cross(normal)
			K := mA + mB + iA*rnA*rnA + iB*rnB*rnB

			// compute normal impulse
			impulse := 0.0
			if K > 0 {
				impulse = -C / K
			}

			P := normal.Scale(impulse)

			cA = cA.Sub(P.Scale(mA))
			aA -= iA * rA.Cross(P)

			cB = cB.Add(P.Scale(mB))
			aB += iB * rB.Cross(P)
		}

		s.positions[indexA].C = cA
		s.positions[indexA].A = aA
		s.positions[indexB].C = cB
		s.positions[indexB].A = aB
	}

	// we can't expect minSeparation >= -linearSlop because we don't push
	// the separation above -linearSlop
	return minSeparation >= tolerance
}
