package b2d

import (
	"math"

	"github.com/setanarut/b2d/geom"
	"github.com/setanarut/vec"
)

// RopeJointDef requires two body anchor points and a maximum length.
type RopeJointDef struct {
	BodyA, BodyB     *Body
	CollideConnected bool

	LocalAnchorA vec.Vec2
	LocalAnchorB vec.Vec2

	// MaxLength is the maximum distance between the anchors.
	MaxLength float64
}

// DefaultRopeJointDef returns anchors one meter left of A and right of B.
func DefaultRopeJointDef() RopeJointDef {
	return RopeJointDef{
		LocalAnchorA: vec.Vec2{X: -1, Y: 0},
		LocalAnchorB: vec.Vec2{X: 1, Y: 0},
	}
}

// RopeJoint enforces a maximum distance between two anchor points. It
// pulls the bodies together but never pushes them apart.
//
//	C = norm(pB - pA) - L
//	u = (pB - pA) / norm(pB - pA)
//	Cdot = dot(u, vB + cross(wB, rB) - vA - cross(wA, rA))
//	J = [-u -cross(rA, u) u cross(rB, u)]
//	K = J * invM * JT = invMassA + invIA * cross(rA, u)^2 + invMassB + invIB * cross(rB, u)^2
type RopeJoint struct {
	*JointBase

	localAnchorA vec.Vec2
	localAnchorB vec.Vec2
	maxLength    float64
	length       float64
	impulse      float64

	// solver temp
	jointBodies
	u, rA, rB vec.Vec2
	mass      float64
	state     LimitState
}

// NewRopeJoint creates a joint from def. Add it with World.CreateJoint.
func NewRopeJoint(def *RopeJointDef) *RopeJoint {
	return &RopeJoint{
		JointBase:    NewJointBase(JointRope, def.BodyA, def.BodyB, def.CollideConnected),
		localAnchorA: def.LocalAnchorA,
		localAnchorB: def.LocalAnchorB,
		maxLength:    def.MaxLength,
	}
}

func (j *RopeJoint) AnchorA() vec.Vec2 {
	return j.bodyA.WorldPoint(j.localAnchorA)
}

func (j *RopeJoint) AnchorB() vec.Vec2 {
	return j.bodyB.WorldPoint(j.localAnchorB)
}

func (j *RopeJoint) ReactionForce(invDt float64) vec.Vec2 {
	return j.u.Scale(invDt * j.impulse)
}

// ReactionTorque is always zero.
func (j *RopeJoint) ReactionTorque(float64) float64 {
	return 0
}

func (j *RopeJoint) LocalAnchorA() vec.Vec2 {
	return j.localAnchorA
}

func (j *RopeJoint) LocalAnchorB() vec.Vec2 {
	return j.localAnchorB
}

func (j *RopeJoint) MaxLength() float64 {
	return j.maxLength
}

func (j *RopeJoint) SetMaxLength(length float64) {
	j.maxLength = length
}

// LimitState is LimitAtUpper while the rope is taut.
func (j *RopeJoint) LimitState() LimitState {
	return j.state
}

func (j *RopeJoint) InitVelocityConstraints(data *SolverData) {
	j.jointBodies.load(j.bodyA, j.bodyB)

	cA := data.Positions[j.indexA].C
	aA := data.Positions[j.indexA].A
	vA := data.Velocities[j.indexA].V
	wA := data.Velocities[j.indexA].W

	cB := data.Positions[j.indexB].C
	aB := data.Positions[j.indexB].A
	vB := data.Velocities[j.indexB].V
	wB := data.Velocities[j.indexB].W

	qA := geom.NewRot(aA)
	qB := geom.NewRot(aB)

	j.rA = qA.Apply(j.localAnchorA.Sub(j.localCenterA))
	j.rB = qB.Apply(j.localAnchorB.Sub(j.localCenterB))
	j.u = cB.Add(j.rB).Sub(cA).Sub(j.rA)

	j.length = j.u.Mag()

	C := j.length - j.maxLength
	if C > 0 {
		j.state = LimitAtUpper
	} else {
		j.state = LimitInactive
	}

	if j.length > linearSlop {
		j.u = j.u.Scale(1 / j.length)
	} else {
		j.u = vec.Vec2{}
		j.mass = 0
		j.impulse = 0
		return
	}

	// compute effective mass
	crA := j.rA.Cross(j.u)
	crB := j.rB.Cross(j.u)
	invMass := j.invMassA + j.invIA*crA*crA + j.invMassB + j.invIB*crB*crB

	j.mass = 0
	if invMass != 0 {
		j.mass = 1 / invMass
	}

	if data.Step.WarmStarting {
		// scale the impulse to support a variable time step
		j.impulse *= data.Step.DtRatio

		P := j.u.Scale(j.impulse)
		vA = vA.Sub(P.Scale(j.invMassA))
		wA -= j.invIA * j.rA.Cross(P)
		vB = vB.Add(P.Scale(j.invMassB))
		wB += j.invIB * j.rB.Cross(P)
	} else {
		j.impulse = 0
	}

	data.Velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.Velocities[j.indexB] = Velocity{V: vB, W: wB}
}

func (j *RopeJoint) SolveVelocityConstraints(data *SolverData) {
	vA := data.Velocities[j.indexA].V
	wA := data.Velocities[j.indexA].W
	vB := data.Velocities[j.indexB].V
	wB := data.Velocities[j.indexB].W

	// Cdot = dot(u, v + cross(w, r))
	vpA := vA.Add(geom.CrossSV(wA, j.rA))
	vpB := vB.Add(geom.CrossSV(wB, j.rB))
	C := j.length - j.maxLength
	Cdot := j.u.Dot(vpB.Sub(vpA))

	// predictive constraint
	if C < 0 {
		Cdot += data.Step.InvDt * C
	}

	impulse := -j.mass * Cdot
	oldImpulse := j.impulse
	j.impulse = math.Min(0, j.impulse+impulse)
	impulse = j.impulse - oldImpulse

	P := j.u.Scale(impulse)
	vA = vA.Sub(P.Scale(j.invMassA))
	wA -= j.invIA * j.rA.Cross(P)
	vB = vB.Add(P.Scale(j.invMassB))
	wB += j.invIB * j.rB.Cross(P)

	data.Velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.Velocities[j.indexB] = Velocity{V: vB, W: wB}
}

func (j *RopeJoint) SolvePositionConstraints(data *SolverData) bool {
	cA := data.Positions[j.indexA].C
	aA := data.Positions[j.indexA].A
	cB := data.Positions[j.indexB].C
	aB := data.Positions[j.indexB].A

	qA := geom.NewRot(aA)
	qB := geom.NewRot(aB)

	rA := qA.Apply(j.localAnchorA.Sub(j.localCenterA))
	rB := qB.Apply(j.localAnchorB.Sub(j.localCenterB))
	u, length := geom.Normalize(cB.Add(rB).Sub(cA).Sub(rA))
	C := geom.Clamp(length-j.maxLength, 0, maxLinearCorrection)

	impulse := -j.mass * C
	P := u.Scale(impulse)

	cA = cA.Sub(P.Scale(j.invMassA))
	aA -= j.invIA * rA.Cross(P)
	cB = cB.Add(P.Scale(j.invMassB))
	aB += j.invIB * rB.Cross(P)

	data.Positions[j.indexA] = Position{C: cA, A: aA}
	data.Positions[j.indexB] = Position{C: cB, A: aB}

	return length-j.maxLength < linearSlop
}
