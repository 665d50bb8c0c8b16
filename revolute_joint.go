package b2d

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/setanarut/b2d/geom"
	"github.com/setanarut/vec"
)

// RevoluteJointDef requires an anchor point where the bodies are joined.
// The reference angle is the body B angle minus the body A angle in the
// reference state; limits are measured from it.
type RevoluteJointDef struct {
	BodyA, BodyB     *Body
	CollideConnected bool

	LocalAnchorA   vec.Vec2
	LocalAnchorB   vec.Vec2
	ReferenceAngle float64

	EnableLimit bool
	// LowerAngle and UpperAngle are in radians.
	LowerAngle float64
	UpperAngle float64

	EnableMotor bool
	// MotorSpeed is the desired speed in radians per second.
	MotorSpeed float64
	// MaxMotorTorque bounds the motor torque in N*m.
	MaxMotorTorque float64
}

// Initialize sets the bodies, anchors and reference angle from a world anchor.
func (def *RevoluteJointDef) Initialize(bodyA, bodyB *Body, anchor vec.Vec2) {
	def.BodyA = bodyA
	def.BodyB = bodyB
	def.LocalAnchorA = bodyA.LocalPoint(anchor)
	def.LocalAnchorB = bodyB.LocalPoint(anchor)
	def.ReferenceAngle = bodyB.Angle() - bodyA.Angle()
}

// RevoluteJoint forces two bodies to share an anchor point so only the
// relative rotation is free. A limit bounds the relative angle and a
// motor drives it.
//
// Point-to-point constraint
//
//	C = p2 - p1
//	Cdot = v2 - v1
//	     = v2 + cross(w2, r2) - v1 - cross(w1, r1)
//	J = [-I -r1_skew I r2_skew ]
//
// Motor constraint
//
//	Cdot = w2 - w1
//	J = [0 0 -1 0 0 1]
//	K = invI1 + invI2
type RevoluteJoint struct {
	*JointBase

	localAnchorA vec.Vec2
	localAnchorB vec.Vec2
	impulse      mgl64.Vec3
	motorImpulse float64

	enableMotor    bool
	maxMotorTorque float64
	motorSpeed     float64

	enableLimit    bool
	referenceAngle float64
	lowerAngle     float64
	upperAngle     float64

	// solver temp
	jointBodies
	rA, rB     vec.Vec2
	mass       mgl64.Mat3 // effective mass for point-to-point constraint
	motorMass  float64    // effective mass for motor/limit angular constraint
	limitState LimitState
}

// NewRevoluteJoint creates a joint from def. Add it with World.CreateJoint.
func NewRevoluteJoint(def *RevoluteJointDef) *RevoluteJoint {
	return &RevoluteJoint{
		JointBase:      NewJointBase(JointRevolute, def.BodyA, def.BodyB, def.CollideConnected),
		localAnchorA:   def.LocalAnchorA,
		localAnchorB:   def.LocalAnchorB,
		referenceAngle: def.ReferenceAngle,
		lowerAngle:     def.LowerAngle,
		upperAngle:     def.UpperAngle,
		maxMotorTorque: def.MaxMotorTorque,
		motorSpeed:     def.MotorSpeed,
		enableLimit:    def.EnableLimit,
		enableMotor:    def.EnableMotor,
	}
}

func (j *RevoluteJoint) AnchorA() vec.Vec2 {
	return j.bodyA.WorldPoint(j.localAnchorA)
}

func (j *RevoluteJoint) AnchorB() vec.Vec2 {
	return j.bodyB.WorldPoint(j.localAnchorB)
}

// ReactionForce returns the point constraint force on body B.
func (j *RevoluteJoint) ReactionForce(invDt float64) vec.Vec2 {
	return vec.Vec2{X: j.impulse[0], Y: j.impulse[1]}.Scale(invDt)
}

// ReactionTorque returns the limit torque on body B.
func (j *RevoluteJoint) ReactionTorque(invDt float64) float64 {
	return invDt * j.impulse[2]
}

func (j *RevoluteJoint) LocalAnchorA() vec.Vec2 {
	return j.localAnchorA
}

func (j *RevoluteJoint) LocalAnchorB() vec.Vec2 {
	return j.localAnchorB
}

func (j *RevoluteJoint) ReferenceAngle() float64 {
	return j.referenceAngle
}

// JointAngle returns the current angle relative to the reference angle.
func (j *RevoluteJoint) JointAngle() float64 {
	return j.bodyB.sweep.A - j.bodyA.sweep.A - j.referenceAngle
}

// JointSpeed returns the relative angular velocity.
func (j *RevoluteJoint) JointSpeed() float64 {
	return j.bodyB.angularVelocity - j.bodyA.angularVelocity
}

func (j *RevoluteJoint) IsLimitEnabled() bool {
	return j.enableLimit
}

// EnableLimit enables or disables the angle limit and wakes the bodies.
func (j *RevoluteJoint) EnableLimit(flag bool) {
	if flag != j.enableLimit {
		j.bodyA.SetAwake(true)
		j.bodyB.SetAwake(true)
		j.enableLimit = flag
		j.impulse[2] = 0
	}
}

func (j *RevoluteJoint) LowerLimit() float64 {
	return j.lowerAngle
}

func (j *RevoluteJoint) UpperLimit() float64 {
	return j.upperAngle
}

// SetLimits sets the angle limits in radians. lower must not exceed upper.
func (j *RevoluteJoint) SetLimits(lower, upper float64) {
	if lower != j.lowerAngle || upper != j.upperAngle {
		j.bodyA.SetAwake(true)
		j.bodyB.SetAwake(true)
		j.impulse[2] = 0
		j.lowerAngle = lower
		j.upperAngle = upper
	}
}

// LimitState returns the limit state of the last step.
func (j *RevoluteJoint) LimitState() LimitState {
	return j.limitState
}

func (j *RevoluteJoint) IsMotorEnabled() bool {
	return j.enableMotor
}

// EnableMotor enables or disables the motor and wakes the bodies.
func (j *RevoluteJoint) EnableMotor(flag bool) {
	j.bodyA.SetAwake(true)
	j.bodyB.SetAwake(true)
	j.enableMotor = flag
}

func (j *RevoluteJoint) MotorSpeed() float64 {
	return j.motorSpeed
}

// SetMotorSpeed sets the motor speed in radians per second.
func (j *RevoluteJoint) SetMotorSpeed(speed float64) {
	j.bodyA.SetAwake(true)
	j.bodyB.SetAwake(true)
	j.motorSpeed = speed
}

func (j *RevoluteJoint) MaxMotorTorque() float64 {
	return j.maxMotorTorque
}

// SetMaxMotorTorque sets the maximum motor torque in N*m.
func (j *RevoluteJoint) SetMaxMotorTorque(torque float64) {
	j.bodyA.SetAwake(true)
	j.bodyB.SetAwake(true)
	j.maxMotorTorque = torque
}

// MotorTorque returns the motor torque applied in the last step.
func (j *RevoluteJoint) MotorTorque(invDt float64) float64 {
	return invDt * j.motorImpulse
}

func (j *RevoluteJoint) InitVelocityConstraints(data *SolverData) {
	j.jointBodies.load(j.bodyA, j.bodyB)

	aA := data.Positions[j.indexA].A
	vA := data.Velocities[j.indexA].V
	wA := data.Velocities[j.indexA].W

	aB := data.Positions[j.indexB].A
	vB := data.Velocities[j.indexB].V
	wB := data.Velocities[j.indexB].W

	qA := geom.NewRot(aA)
	qB := geom.NewRot(aB)

	j.rA = qA.Apply(j.localAnchorA.Sub(j.localCenterA))
	j.rB = qB.Apply(j.localAnchorB.Sub(j.localCenterB))

	// J = [-I -r1_skew I r2_skew]
	//     [ 0       -1 0       1]
	// r_skew = [-ry; rx]
	//
	// K = [ mA+mB+iA*rA.y*rA.y+iB*rB.y*rB.y,  -iA*rA.y*rA.x-iB*rB.y*rB.x,          -iA*rA.y-iB*rB.y]
	//     [  -iA*rA.y*rA.x-iB*rB.y*rB.x, mA+mB+iA*rA.x*rA.x+iB*rB.x*rB.x,           iA*rA.x+iB*rB.x]
	//     [          -iA*rA.y-iB*rB.y,           iA*rA.x+iB*rB.x,                   iA+iB]

	mA, mB := j.invMassA, j.invMassB
	iA, iB := j.invIA, j.invIB
	rA, rB := j.rA, j.rB

	fixedRotation := iA+iB == 0

	exX := mA + mB + rA.Y*rA.Y*iA + rB.Y*rB.Y*iB
	eyX := -rA.Y*rA.X*iA - rB.Y*rB.X*iB
	ezX := -rA.Y*iA - rB.Y*iB
	eyY := mA + mB + rA.X*rA.X*iA + rB.X*rB.X*iB
	ezY := rA.X*iA + rB.X*iB
	ezZ := iA + iB

	// columns ex, ey, ez
	j.mass = mgl64.Mat3{
		exX, eyX, ezX,
		eyX, eyY, ezY,
		ezX, ezY, ezZ,
	}

	j.motorMass = iA + iB
	if j.motorMass > 0 {
		j.motorMass = 1 / j.motorMass
	}

	if !j.enableMotor || fixedRotation {
		j.motorImpulse = 0
	}

	if j.enableLimit && !fixedRotation {
		jointAngle := aB - aA - j.referenceAngle
		switch {
		case math.Abs(j.upperAngle-j.lowerAngle) < 2*angularSlop:
			j.limitState = LimitEqual
		case jointAngle <= j.lowerAngle:
			if j.limitState != LimitAtLower {
				j.impulse[2] = 0
			}
			j.limitState = LimitAtLower
		case jointAngle >= j.upperAngle:
			if j.limitState != LimitAtUpper {
				j.impulse[2] = 0
			}
			j.limitState = LimitAtUpper
		default:
			j.limitState = LimitInactive
			j.impulse[2] = 0
		}
	} else {
		j.limitState = LimitInactive
	}

	if data.Step.WarmStarting {
		// scale impulses to support a variable time step
		j.impulse = j.impulse.Mul(data.Step.DtRatio)
		j.motorImpulse *= data.Step.DtRatio

		P := vec.Vec2{X: j.impulse[0], Y: j.impulse[1]}

		vA = vA.Sub(P.Scale(mA))
		wA -= iA * (rA.Cross(P) + j.motorImpulse + j.impulse[2])

		vB = vB.Add(P.Scale(mB))
		wB += iB * (rB.Cross(P) + j.motorImpulse + j.impulse[2])
	} else {
		j.impulse = mgl64.Vec3{}
		j.motorImpulse = 0
	}

	data.Velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.Velocities[j.indexB] = Velocity{V: vB, W: wB}
}

func (j *RevoluteJoint) SolveVelocityConstraints(data *SolverData) {
	vA := data.Velocities[j.indexA].V
	wA := data.Velocities[j.indexA].W
	vB := data.Velocities[j.indexB].V
	wB := data.Velocities[j.indexB].W

	mA, mB := j.invMassA, j.invMassB
	iA, iB := j.invIA, j.invIB
	rA, rB := j.rA, j.rB

	fixedRotation := iA+iB == 0

	// solve motor constraint
	if j.enableMotor && j.limitState != LimitEqual && !fixedRotation {
		Cdot := wB - wA - j.motorSpeed
		impulse := -j.motorMass * Cdot
		oldImpulse := j.motorImpulse
		maxImpulse := data.Step.Dt * j.maxMotorTorque
		j.motorImpulse = geom.Clamp(j.motorImpulse+impulse, -maxImpulse, maxImpulse)
		impulse = j.motorImpulse - oldImpulse

		wA -= iA * impulse
		wB += iB * impulse
	}

	// solve limit constraint
	if j.enableLimit && j.limitState != LimitInactive && !fixedRotation {
		Cdot1 := vB.Add(geom.CrossSV(wB, rB)).Sub(vA).Sub(geom.CrossSV(wA, rA))
		Cdot2 := wB - wA
		Cdot := mgl64.Vec3{Cdot1.X, Cdot1.Y, Cdot2}

		impulse := geom.Solve33(j.mass, Cdot).Mul(-1)

		switch j.limitState {
		case LimitEqual:
			j.impulse = j.impulse.Add(impulse)

		case LimitAtLower:
			newImpulse := j.impulse[2] + impulse[2]
			if newImpulse < 0 {
				impulse = j.reducedImpulse(Cdot1)
			} else {
				j.impulse = j.impulse.Add(impulse)
			}

		case LimitAtUpper:
			newImpulse := j.impulse[2] + impulse[2]
			if newImpulse > 0 {
				impulse = j.reducedImpulse(Cdot1)
			} else {
				j.impulse = j.impulse.Add(impulse)
			}
		}

		P := vec.Vec2{X: impulse[0], Y: impulse[1]}

		vA = vA.Sub(P.Scale(mA))
		wA -= iA * (rA.Cross(P) + impulse[2])

		vB = vB.Add(P.Scale(mB))
		wB += iB * (rB.Cross(P) + impulse[2])
	} else {
		// solve point to point constraint
		Cdot := vB.Add(geom.CrossSV(wB, rB)).Sub(vA).Sub(geom.CrossSV(wA, rA))
		impulse := geom.Solve33x2(j.mass, Cdot.Neg())

		j.impulse[0] += impulse.X
		j.impulse[1] += impulse.Y

		vA = vA.Sub(impulse.Scale(mA))
		wA -= iA * rA.Cross(impulse)

		vB = vB.Add(impulse.Scale(mB))
		wB += iB * rB.Cross(impulse)
	}

	data.Velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.Velocities[j.indexB] = Velocity{V: vB, W: wB}
}

// reducedImpulse drops the angular limit impulse and solves the point
// constraint alone. It returns the incremental impulse.
func (j *RevoluteJoint) reducedImpulse(Cdot1 vec.Vec2) mgl64.Vec3 {
	ez := vec.Vec2{X: j.mass[6], Y: j.mass[7]}
	rhs := Cdot1.Neg().Add(ez.Scale(j.impulse[2]))
	reduced := geom.Solve33x2(j.mass, rhs)

	impulse := mgl64.Vec3{reduced.X, reduced.Y, -j.impulse[2]}
	j.impulse[0] += reduced.X
	j.impulse[1] += reduced.Y
	j.impulse[2] = 0
	return impulse
}

func (j *RevoluteJoint) SolvePositionConstraints(data *SolverData) bool {
	cA := data.Positions[j.indexA].C
	aA := data.Positions[j.indexA].A
	cB := data.Positions[j.indexB].C
	aB := data.Positions[j.indexB].A

	mA, mB := j.invMassA, j.invMassB
	iA, iB := j.invIA, j.invIB

	angularError := 0.0
	positionError := 0.0

	fixedRotation := iA+iB == 0

	// solve angular limit constraint
	if j.enableLimit && j.limitState != LimitInactive && !fixedRotation {
		angle := aB - aA - j.referenceAngle
		limitImpulse := 0.0

		switch j.limitState {
		case LimitEqual:
			// prevent large angular corrections
			C := geom.Clamp(angle-j.lowerAngle, -maxAngularCorrection, maxAngularCorrection)
			limitImpulse = -j.motorMass * C
			angularError = math.Abs(C)

		case LimitAtLower:
			C := angle - j.lowerAngle
			angularError = -C

			// prevent large angular corrections and allow some slop
			C = geom.Clamp(C+angularSlop, -maxAngularCorrection, 0)
			limitImpulse = -j.motorMass * C

		case LimitAtUpper:
			C := angle - j.upperAngle
			angularError = C

			// prevent large angular corrections and allow some slop
			C = geom.Clamp(C-angularSlop, 0, maxAngularCorrection)
			limitImpulse = -j.motorMass * C
		}

		aA -= iA * limitImpulse
		aB += iB * limitImpulse
	}

	// solve point to point constraint
	{
		qA := geom.NewRot(aA)
		qB := geom.NewRot(aB)
		rA := qA.Apply(j.localAnchorA.Sub(j.localCenterA))
		rB := qB.Apply(j.localAnchorB.Sub(j.localCenterB))

		C := cB.Add(rB).Sub(cA).Sub(rA)
		positionError = C.Mag()

		kxy := -iA*rA.X*rA.Y - iB*rB.X*rB.Y
		K := geom.Mat22(
			vec.Vec2{X: mA + mB + iA*rA.Y*rA.Y + iB*rB.Y*rB.Y, Y: kxy},
			vec.Vec2{X: kxy, Y: mA + mB + iA*rA.X*rA.X + iB*rB.X*rB.X},
		)

		impulse := geom.Solve22(K, C).Neg()

		cA = cA.Sub(impulse.Scale(mA))
		aA -= iA * rA.Cross(impulse)

		cB = cB.Add(impulse.Scale(mB))
		aB += iB * rB.Cross(impulse)
	}

	data.Positions[j.indexA] = Position{C: cA, A: aA}
	data.Positions[j.indexB] = Position{C: cB, A: aB}

	return positionError <= linearSlop && angularError <= angularSlop
}
