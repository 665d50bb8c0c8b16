package b2d

import (
	"fmt"

	"github.com/setanarut/vec"
)

// JointType identifies the concrete joint.
type JointType uint8

const (
	JointUnknown JointType = iota
	JointRevolute
	JointDistance
	JointRope
)

func (t JointType) String() string {
	switch t {
	case JointRevolute:
		return "revolute"
	case JointDistance:
		return "distance"
	case JointRope:
		return "rope"
	default:
		return fmt.Sprintf("JointType(%d)", uint8(t))
	}
}

// JointEdge connects bodies and joints in the constraint graph. Each joint
// owns two edges, one per body, threaded into that body's list.
type JointEdge struct {
	// Other is the body on the far side of the joint.
	Other *Body
	Joint Joint
	Prev  *JointEdge
	Next  *JointEdge
}

// Joint constrains two bodies. Joints are solved alongside contacts inside
// islands. Custom joints embed *JointBase and implement the solver methods.
type Joint interface {
	Type() JointType
	BodyA() *Body
	BodyB() *Body

	// AnchorA returns the anchor on body A in world coordinates.
	AnchorA() vec.Vec2
	// AnchorB returns the anchor on body B in world coordinates.
	AnchorB() vec.Vec2

	// ReactionForce returns the force on body B at the anchor in Newtons.
	ReactionForce(invDt float64) vec.Vec2
	// ReactionTorque returns the torque on body B in N*m.
	ReactionTorque(invDt float64) float64

	CollideConnected() bool
	IsActive() bool

	// ShiftOrigin moves world space anchors by -newOrigin.
	ShiftOrigin(newOrigin vec.Vec2)

	// InitVelocityConstraints snapshots masses and anchors and applies
	// the warm start impulse scaled by the step's DtRatio.
	InitVelocityConstraints(data *SolverData)
	// SolveVelocityConstraints applies one velocity iteration.
	SolveVelocityConstraints(data *SolverData)
	// SolvePositionConstraints applies one position iteration and reports
	// whether the error is within the slop tolerances.
	SolvePositionConstraints(data *SolverData) bool

	// Base exposes the shared state used by the world.
	Base() *JointBase
}

// JointBase is the state shared by all joints: the two bodies, the
// collide connected flag and the graph edges.
type JointBase struct {
	// UserData is an object that this joint is associated with.
	UserData any

	jointType        JointType
	bodyA, bodyB     *Body
	edgeA, edgeB     JointEdge
	collideConnected bool
	islandFlag       bool
	world            *World
}

// NewJointBase returns the base of a joint between bodyA and bodyB.
func NewJointBase(t JointType, bodyA, bodyB *Body, collideConnected bool) *JointBase {
	return &JointBase{
		jointType:        t,
		bodyA:            bodyA,
		bodyB:            bodyB,
		collideConnected: collideConnected,
	}
}

func (j *JointBase) Base() *JointBase {
	return j
}

func (j *JointBase) Type() JointType {
	return j.jointType
}

func (j *JointBase) BodyA() *Body {
	return j.bodyA
}

func (j *JointBase) BodyB() *Body {
	return j.bodyB
}

// CollideConnected reports whether the two bodies may still collide.
func (j *JointBase) CollideConnected() bool {
	return j.collideConnected
}

// IsActive is short-hand for both bodies being active.
func (j *JointBase) IsActive() bool {
	return j.bodyA.IsActive() && j.bodyB.IsActive()
}

// World returns the owning world, nil when the joint is not added.
func (j *JointBase) World() *World {
	return j.world
}

// ShiftOrigin does nothing for joints without world space state.
func (j *JointBase) ShiftOrigin(vec.Vec2) {}

// LimitState of a joint limit.
type LimitState uint8

const (
	LimitInactive LimitState = iota
	LimitAtLower
	LimitAtUpper
	LimitEqual
)

// jointBodies caches the solver view of the two bodies of a joint.
type jointBodies struct {
	indexA, indexB             int
	localCenterA, localCenterB vec.Vec2
	invMassA, invMassB         float64
	invIA, invIB               float64
}

func (jb *jointBodies) load(bodyA, bodyB *Body) {
	jb.indexA = bodyA.IslandIndex()
	jb.indexB = bodyB.IslandIndex()
	jb.localCenterA = bodyA.LocalCenter()
	jb.localCenterB = bodyB.LocalCenter()
	jb.invMassA = bodyA.InvMass()
	jb.invMassB = bodyB.InvMass()
	jb.invIA = bodyA.InvInertia()
	jb.invIB = bodyB.InvInertia()
}
