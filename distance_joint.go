package b2d

import (
	"math"

	"github.com/setanarut/b2d/geom"
	"github.com/setanarut/vec"
)

// DistanceJointDef requires two body anchor points and a length. The
// joint is soft when FrequencyHz is positive.
type DistanceJointDef struct {
	BodyA, BodyB     *Body
	CollideConnected bool

	// LocalAnchorA is the anchor relative to body A's origin.
	LocalAnchorA vec.Vec2
	// LocalAnchorB is the anchor relative to body B's origin.
	LocalAnchorB vec.Vec2

	// Length is the natural length between the anchors.
	Length float64
	// FrequencyHz is the mass-spring-damper frequency, 0 disables softness.
	FrequencyHz float64
	// DampingRatio is 0 for no damping and 1 for critical damping.
	DampingRatio float64
}

// DefaultDistanceJointDef returns a rigid unit length definition.
func DefaultDistanceJointDef() DistanceJointDef {
	return DistanceJointDef{Length: 1}
}

// Initialize sets the bodies, anchors and length from world anchors.
func (def *DistanceJointDef) Initialize(bodyA, bodyB *Body, anchorA, anchorB vec.Vec2) {
	def.BodyA = bodyA
	def.BodyB = bodyB
	def.LocalAnchorA = bodyA.LocalPoint(anchorA)
	def.LocalAnchorB = bodyB.LocalPoint(anchorB)
	def.Length = anchorA.Distance(anchorB)
}

// DistanceJoint keeps two anchor points at a fixed distance, like a
// massless rigid rod. With a frequency it behaves like a spring.
//
//	C = norm(p2 - p1) - L
//	u = (p2 - p1) / norm(p2 - p1)
//	Cdot = dot(u, v2 + cross(w2, r2) - v1 - cross(w1, r1))
//	J = [-u -cross(r1, u) u cross(r2, u)]
//	K = J * invM * JT = invMass1 + invI1 * cross(r1, u)^2 + invMass2 + invI2 * cross(r2, u)^2
type DistanceJoint struct {
	*JointBase

	frequencyHz  float64
	dampingRatio float64
	bias         float64

	localAnchorA vec.Vec2
	localAnchorB vec.Vec2
	gamma        float64
	impulse      float64
	length       float64

	// solver temp
	jointBodies
	u, rA, rB vec.Vec2
	mass      float64
}

// NewDistanceJoint creates a joint from def. Add it with World.CreateJoint.
func NewDistanceJoint(def *DistanceJointDef) *DistanceJoint {
	return &DistanceJoint{
		JointBase:    NewJointBase(JointDistance, def.BodyA, def.BodyB, def.CollideConnected),
		localAnchorA: def.LocalAnchorA,
		localAnchorB: def.LocalAnchorB,
		length:       def.Length,
		frequencyHz:  def.FrequencyHz,
		dampingRatio: def.DampingRatio,
	}
}

func (j *DistanceJoint) AnchorA() vec.Vec2 {
	return j.bodyA.WorldPoint(j.localAnchorA)
}

func (j *DistanceJoint) AnchorB() vec.Vec2 {
	return j.bodyB.WorldPoint(j.localAnchorB)
}

// ReactionForce returns the force along the rod.
func (j *DistanceJoint) ReactionForce(invDt float64) vec.Vec2 {
	return j.u.Scale(invDt * j.impulse)
}

// ReactionTorque is always zero.
func (j *DistanceJoint) ReactionTorque(float64) float64 {
	return 0
}

func (j *DistanceJoint) LocalAnchorA() vec.Vec2 {
	return j.localAnchorA
}

func (j *DistanceJoint) LocalAnchorB() vec.Vec2 {
	return j.localAnchorB
}

func (j *DistanceJoint) Length() float64 {
	return j.length
}

// SetLength sets the natural length.
func (j *DistanceJoint) SetLength(length float64) {
	j.length = length
}

func (j *DistanceJoint) Frequency() float64 {
	return j.frequencyHz
}

func (j *DistanceJoint) SetFrequency(hz float64) {
	j.frequencyHz = hz
}

func (j *DistanceJoint) DampingRatio() float64 {
	return j.dampingRatio
}

func (j *DistanceJoint) SetDampingRatio(ratio float64) {
	j.dampingRatio = ratio
}

func (j *DistanceJoint) InitVelocityConstraints(data *SolverData) {
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

	// handle singularity
	length := j.u.Mag()
	if length > linearSlop {
		j.u = j.u.Scale(1 / length)
	} else {
		j.u = vec.Vec2{}
	}

	crAu := j.rA.Cross(j.u)
	crBu := j.rB.Cross(j.u)
	invMass := j.invMassA + j.invIA*crAu*crAu + j.invMassB + j.invIB*crBu*crBu

	// compute the effective mass matrix
	j.mass = 0
	if invMass != 0 {
		j.mass = 1 / invMass
	}

	if j.frequencyHz > 0 {
		C := length - j.length

		// frequency
		omega := 2 * math.Pi * j.frequencyHz

		// damping coefficient
		d := 2 * j.mass * j.dampingRatio * omega

		// spring stiffness
		k := j.mass * omega * omega

		// magic formulas
		h := data.Step.Dt
		j.gamma = h * (d + h*k)
		if j.gamma != 0 {
			j.gamma = 1 / j.gamma
		}
		j.bias = C * h * k * j.gamma

		invMass += j.gamma
		j.mass = 0
		if invMass != 0 {
			j.mass = 1 / invMass
		}
	} else {
		j.gamma = 0
		j.bias = 0
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

func (j *DistanceJoint) SolveVelocityConstraints(data *SolverData) {
	vA := data.Velocities[j.indexA].V
	wA := data.Velocities[j.indexA].W
	vB := data.Velocities[j.indexB].V
	wB := data.Velocities[j.indexB].W

	// Cdot = dot(u, v + cross(w, r))
	vpA := vA.Add(geom.CrossSV(wA, j.rA))
	vpB := vB.Add(geom.CrossSV(wB, j.rB))
	Cdot := j.u.Dot(vpB.Sub(vpA))

	impulse := -j.mass * (Cdot + j.bias + j.gamma*j.impulse)
	j.impulse += impulse

	P := j.u.Scale(impulse)
	vA = vA.Sub(P.Scale(j.invMassA))
	wA -= j.invIA * j.rA.Cross(P)
	vB = vB.Add(P.Scale(j.invMassB))
	wB += j.invIB * j.rB.Cross(P)

	data.Velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.Velocities[j.indexB] = Velocity{V: vB, W: wB}
}

func (j *DistanceJoint) SolvePositionConstraints(data *SolverData) bool {
	if j.frequencyHz > 0 {
		// there is no position correction for soft distance constraints
		return true
	}

	cA := data.Positions[j.indexA].C
	aA := data.Positions[j.indexA].A
	cB := data.Positions[j.indexB].C
	aB := data.Positions[j.indexB].A

	qA := geom.NewRot(aA)
	qB := geom.NewRot(aB)

	rA := qA.Apply(j.localAnchorA.Sub(j.localCenterA))
	rB := qB.Apply(j.localAnchorB.Sub(j.localCenterB))
	u, length := geom.Normalize(cB.Add(rB).Sub(cA).Sub(rA))
	C := geom.Clamp(length-j.length, -maxLinearCorrection, maxLinearCorrection)

	impulse := -j.mass * C
	P := u.Scale(impulse)

	cA = cA.Sub(P.Scale(j.invMassA))
	aA -= j.invIA * rA.Cross(P)
	cB = cB.Add(P.Scale(j.invMassB))
	aB += j.invIB * rB.Cross(P)

	data.Positions[j.indexA] = Position{C: cA, A: aA}
	data.Positions[j.indexB] = Position{C: cB, A: aB}

	return math.Abs(C) < linearSlop
}
