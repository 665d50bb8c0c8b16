package b2d

import (
	"fmt"

	"github.com/setanarut/b2d/collision"
	"github.com/setanarut/b2d/geom"
	"github.com/setanarut/vec"
)

// BodyType for bodies; Static, Kinematic or Dynamic
type BodyType uint8

const (
	// Static bodies have zero mass and velocity and are moved only by the user.
	Static BodyType = iota
	// Kinematic bodies move by velocity and ignore forces and contacts.
	Kinematic
	// Dynamic bodies are fully simulated.
	Dynamic
)

func (t BodyType) String() string {
	switch t {
	case Static:
		return "static"
	case Kinematic:
		return "kinematic"
	case Dynamic:
		return "dynamic"
	default:
		return fmt.Sprintf("BodyType(%d)", uint8(t))
	}
}

type bodyFlags uint16

const (
	bodyIslandFlag bodyFlags = 1 << iota
	bodyAwakeFlag
	bodyAutoSleepFlag
	bodyBulletFlag
	bodyFixedRotationFlag
	bodyActiveFlag
)

// BodyDef holds everything needed to construct a body. Bodies copy the
// definition, so it can be reused.
type BodyDef struct {
	Type BodyType

	// Position is the world position of the body origin.
	Position vec.Vec2
	// Angle is the world angle in radians.
	Angle float64

	LinearVelocity  vec.Vec2
	AngularVelocity float64

	LinearDamping  float64
	AngularDamping float64

	// AllowSleep lets the body fall asleep when it comes to rest.
	AllowSleep bool
	// Awake is the initial sleep state.
	Awake bool
	// FixedRotation prevents rotation.
	FixedRotation bool
	// Bullet enables continuous collision against other dynamic bodies.
	Bullet bool
	// Active bodies take part in collision and simulation.
	Active bool

	// GravityScale scales the world gravity for this body.
	GravityScale float64

	UserData any
}

// DefaultBodyDef returns a definition of an awake, active static body at the origin.
func DefaultBodyDef() BodyDef {
	return BodyDef{
		Type:         Static,
		AllowSleep:   true,
		Awake:        true,
		Active:       true,
		GravityScale: 1,
	}
}

func (def *BodyDef) validate() error {
	switch {
	case !geom.IsValid(def.Position), !geom.IsFinite(def.Angle):
		return fmt.Errorf("%w: body position %v angle %v", ErrInvalidDef, def.Position, def.Angle)
	case !geom.IsValid(def.LinearVelocity), !geom.IsFinite(def.AngularVelocity):
		return fmt.Errorf("%w: body velocity", ErrInvalidDef)
	case def.LinearDamping < 0, def.AngularDamping < 0:
		return fmt.Errorf("%w: negative damping", ErrInvalidDef)
	case !geom.IsFinite(def.GravityScale):
		return fmt.Errorf("%w: gravity scale %v", ErrInvalidDef, def.GravityScale)
	}
	return nil
}

// Body is a rigid body. Create bodies with World.CreateBody.
type Body struct {
	// UserData is an object that this body is associated with.
	UserData any

	bodyType    BodyType
	flags       bodyFlags
	islandIndex int

	xf    geom.Transform // body origin transform
	sweep geom.Sweep     // swept motion for CCD

	linearVelocity  vec.Vec2
	angularVelocity float64

	force  vec.Vec2
	torque float64

	world    *World
	fixtures []*Fixture

	jointList   *JointEdge
	contactList *ContactEdge

	mass, invMass float64
	// rotational inertia about the center of mass
	inertia, invI float64

	linearDamping  float64
	angularDamping float64
	gravityScale   float64

	sleepTime float64
}

func newBody(def *BodyDef, world *World) *Body {
	body := &Body{
		UserData:       def.UserData,
		bodyType:       def.Type,
		world:          world,
		linearDamping:  def.LinearDamping,
		angularDamping: def.AngularDamping,
		gravityScale:   def.GravityScale,
	}

	if def.Bullet {
		body.flags |= bodyBulletFlag
	}
	if def.FixedRotation {
		body.flags |= bodyFixedRotationFlag
	}
	if def.AllowSleep {
		body.flags |= bodyAutoSleepFlag
	}
	if def.Awake {
		body.flags |= bodyAwakeFlag
	}
	if def.Active {
		body.flags |= bodyActiveFlag
	}

	body.xf = geom.NewTransform(def.Position, def.Angle)

	body.sweep.C0 = body.xf.P
	body.sweep.C = body.xf.P
	body.sweep.A0 = def.Angle
	body.sweep.A = def.Angle

	body.linearVelocity = def.LinearVelocity
	body.angularVelocity = def.AngularVelocity

	if body.bodyType == Dynamic {
		body.mass = 1
		body.invMass = 1
	}
	return body
}

// String returns the body type and position.
func (body *Body) String() string {
	return fmt.Sprintf("Body(%v %v)", body.bodyType, body.xf.P)
}

// World returns the owning world, nil once destroyed.
func (body *Body) World() *World {
	return body.world
}

// Fixtures returns the fixtures attached to the body. The slice must not be modified.
func (body *Body) Fixtures() []*Fixture {
	return body.fixtures
}

// JointList returns the head of the body's joint edge list.
func (body *Body) JointList() *JointEdge {
	return body.jointList
}

// ContactList returns the head of the body's contact edge list.
func (body *Body) ContactList() *ContactEdge {
	return body.contactList
}

// CreateFixture attaches a fixture built from def. Mass data is updated
// when the fixture has a positive density. Contacts for the new fixture
// are created at the start of the next step.
func (body *Body) CreateFixture(def *FixtureDef) (*Fixture, error) {
	w := body.world
	if w == nil {
		return nil, ErrForeignBody
	}
	if w.IsLocked() {
		w.logger.Warn("CreateFixture called during step")
		return nil, ErrLocked
	}
	if err := def.validate(); err != nil {
		return nil, err
	}

	f := newFixture(body, def)
	if body.flags&bodyActiveFlag != 0 {
		f.createProxies(w.contactManager.broadPhase, body.xf)
	}
	body.fixtures = append(body.fixtures, f)

	if f.density > 0 {
		body.ResetMassData()
	}

	// let the world know we have a new fixture
	w.flags |= worldNewFixture
	return f, nil
}

// CreateFixtureFromShape is a shortcut for a fixture with default
// properties, the given shape and density.
func (body *Body) CreateFixtureFromShape(shape collision.Shape, density float64) (*Fixture, error) {
	def := DefaultFixtureDef(shape)
	def.Density = density
	return body.CreateFixture(&def)
}

// DestroyFixture removes the fixture, its contacts and proxies, and
// updates the mass data.
func (body *Body) DestroyFixture(f *Fixture) error {
	w := body.world
	if w == nil || f.body != body {
		return ErrForeignBody
	}
	if w.IsLocked() {
		w.logger.Warn("DestroyFixture called during step")
		return ErrLocked
	}

	i := -1
	for j, g := range body.fixtures {
		if g == f {
			i = j
			break
		}
	}
	if i < 0 {
		return ErrForeignBody
	}

	// destroy any contacts associated with the fixture
	edge := body.contactList
	for edge != nil {
		c := edge.Contact
		edge = edge.Next
		if c.fixtureA == f || c.fixtureB == f {
			// this destroys the contact and removes it from this body's contact list
			w.contactManager.destroy(c)
		}
	}

	if body.flags&bodyActiveFlag != 0 {
		f.destroyProxies(w.contactManager.broadPhase)
	}

	body.fixtures = append(body.fixtures[:i], body.fixtures[i+1:]...)
	f.body = nil

	body.ResetMassData()
	return nil
}

// ResetMassData recomputes mass, inertia and center of mass from the
// fixtures. Dynamic bodies without mass get a mass of one.
func (body *Body) ResetMassData() {
	body.mass = 0
	body.invMass = 0
	body.inertia = 0
	body.invI = 0
	body.sweep.LocalCenter = vec.Vec2{}

	// static and kinematic sweeps have zero mass
	if body.bodyType == Static || body.bodyType == Kinematic {
		body.sweep.C0 = body.xf.P
		body.sweep.C = body.xf.P
		body.sweep.A0 = body.sweep.A
		return
	}

	// accumulate mass over all fixtures
	localCenter := vec.Vec2{}
	for _, f := range body.fixtures {
		if f.density == 0 {
			continue
		}
		md := f.MassData()
		body.mass += md.Mass
		localCenter = localCenter.Add(md.Center.Scale(md.Mass))
		body.inertia += md.I
	}

	// compute center of mass
	if body.mass > 0 {
		body.invMass = 1 / body.mass
		localCenter = localCenter.Scale(body.invMass)
	} else {
		// force all dynamic bodies to have a positive mass
		body.mass = 1
		body.invMass = 1
	}

	if body.inertia > 0 && body.flags&bodyFixedRotationFlag == 0 {
		// center the inertia about the center of mass
		body.inertia -= body.mass * localCenter.Dot(localCenter)
		body.invI = 1 / body.inertia
	} else {
		body.inertia = 0
		body.invI = 0
	}

	// move center of mass
	oldCenter := body.sweep.C
	body.sweep.LocalCenter = localCenter
	body.sweep.C = body.xf.Apply(localCenter)
	body.sweep.C0 = body.sweep.C

	// update center of mass velocity
	body.linearVelocity = body.linearVelocity.Add(geom.CrossSV(body.angularVelocity, body.sweep.C.Sub(oldCenter)))
}

// MassData returns the mass, the local center of mass and the inertia
// about the body origin.
func (body *Body) MassData() collision.MassData {
	return collision.MassData{
		Mass:   body.mass,
		I:      body.inertia + body.mass*body.sweep.LocalCenter.Dot(body.sweep.LocalCenter),
		Center: body.sweep.LocalCenter,
	}
}

// SetMassData overrides the mass properties computed from fixtures. The
// inertia is about the body origin. Only dynamic bodies are affected.
func (body *Body) SetMassData(md collision.MassData) error {
	if body.world != nil && body.world.IsLocked() {
		return ErrLocked
	}
	if body.bodyType != Dynamic {
		return nil
	}

	body.invMass = 0
	body.inertia = 0
	body.invI = 0

	body.mass = md.Mass
	if body.mass <= 0 {
		body.mass = 1
	}
	body.invMass = 1 / body.mass

	if md.I > 0 && body.flags&bodyFixedRotationFlag == 0 {
		body.inertia = md.I - body.mass*md.Center.Dot(md.Center)
		body.invI = 1 / body.inertia
	}

	// move center of mass
	oldCenter := body.sweep.C
	body.sweep.LocalCenter = md.Center
	body.sweep.C = body.xf.Apply(md.Center)
	body.sweep.C0 = body.sweep.C

	// update center of mass velocity
	body.linearVelocity = body.linearVelocity.Add(geom.CrossSV(body.angularVelocity, body.sweep.C.Sub(oldCenter)))
	return nil
}

// Mass returns the total mass in kilograms.
func (body *Body) Mass() float64 {
	return body.mass
}

// InvMass returns the inverse mass, zero for static and kinematic bodies.
func (body *Body) InvMass() float64 {
	return body.invMass
}

// Inertia returns the rotational inertia about the body origin.
func (body *Body) Inertia() float64 {
	return body.inertia + body.mass*body.sweep.LocalCenter.Dot(body.sweep.LocalCenter)
}

// InvInertia returns the inverse rotational inertia about the center of mass.
func (body *Body) InvInertia() float64 {
	return body.invI
}

// IslandIndex is the body's index into SolverData positions and velocities.
func (body *Body) IslandIndex() int {
	return body.islandIndex
}

// SetTransform teleports the body origin. Contacts are updated on the next step.
func (body *Body) SetTransform(position vec.Vec2, angle float64) error {
	w := body.world
	if w == nil {
		return ErrForeignBody
	}
	if w.IsLocked() {
		w.logger.Warn("SetTransform called during step")
		return ErrLocked
	}

	body.xf = geom.NewTransform(position, angle)

	body.sweep.C = body.xf.Apply(body.sweep.LocalCenter)
	body.sweep.A = angle

	body.sweep.C0 = body.sweep.C
	body.sweep.A0 = angle

	bp := w.contactManager.broadPhase
	for _, f := range body.fixtures {
		f.synchronize(bp, body.xf, body.xf)
	}
	return nil
}

// Transform returns the body origin transform.
func (body *Body) Transform() geom.Transform {
	return body.xf
}

// Position returns the world position of the body origin.
func (body *Body) Position() vec.Vec2 {
	return body.xf.P
}

// Angle returns the body angle in radians.
func (body *Body) Angle() float64 {
	return body.sweep.A
}

// WorldCenter returns the world position of the center of mass.
func (body *Body) WorldCenter() vec.Vec2 {
	return body.sweep.C
}

// LocalCenter returns the local position of the center of mass.
func (body *Body) LocalCenter() vec.Vec2 {
	return body.sweep.LocalCenter
}

// LinearVelocity returns the velocity of the center of mass.
func (body *Body) LinearVelocity() vec.Vec2 {
	return body.linearVelocity
}

// SetLinearVelocity sets the velocity of the center of mass. Static bodies ignore it.
func (body *Body) SetLinearVelocity(v vec.Vec2) {
	if body.bodyType == Static {
		return
	}
	if v.Dot(v) > 0 {
		body.SetAwake(true)
	}
	body.linearVelocity = v
}

// AngularVelocity returns the angular velocity in radians per second.
func (body *Body) AngularVelocity() float64 {
	return body.angularVelocity
}

// SetAngularVelocity sets the angular velocity. Static bodies ignore it.
func (body *Body) SetAngularVelocity(w float64) {
	if body.bodyType == Static {
		return
	}
	if w*w > 0 {
		body.SetAwake(true)
	}
	body.angularVelocity = w
}

// Force returns the force accumulated for the next step.
func (body *Body) Force() vec.Vec2 {
	return body.force
}

// Torque returns the torque accumulated for the next step.
func (body *Body) Torque() float64 {
	return body.torque
}

// ApplyForce applies a force at a world point. Off-center forces also
// produce torque. Sleeping bodies ignore the force unless wake is set.
func (body *Body) ApplyForce(force, point vec.Vec2, wake bool) {
	if body.bodyType != Dynamic {
		return
	}
	if wake && body.flags&bodyAwakeFlag == 0 {
		body.SetAwake(true)
	}
	// don't accumulate a force if the body is sleeping
	if body.flags&bodyAwakeFlag != 0 {
		body.force = body.force.Add(force)
		body.torque += point.Sub(body.sweep.C).Cross(force)
	}
}

// ApplyForceToCenter applies a force at the center of mass.
func (body *Body) ApplyForceToCenter(force vec.Vec2, wake bool) {
	if body.bodyType != Dynamic {
		return
	}
	if wake && body.flags&bodyAwakeFlag == 0 {
		body.SetAwake(true)
	}
	if body.flags&bodyAwakeFlag != 0 {
		body.force = body.force.Add(force)
	}
}

// ApplyTorque applies a torque about the center of mass.
func (body *Body) ApplyTorque(torque float64, wake bool) {
	if body.bodyType != Dynamic {
		return
	}
	if wake && body.flags&bodyAwakeFlag == 0 {
		body.SetAwake(true)
	}
	if body.flags&bodyAwakeFlag != 0 {
		body.torque += torque
	}
}

// ApplyLinearImpulse applies an impulse at a world point, changing the
// velocity immediately.
func (body *Body) ApplyLinearImpulse(impulse, point vec.Vec2, wake bool) {
	if body.bodyType != Dynamic {
		return
	}
	if wake && body.flags&bodyAwakeFlag == 0 {
		body.SetAwake(true)
	}
	if body.flags&bodyAwakeFlag != 0 {
		body.linearVelocity = body.linearVelocity.Add(impulse.Scale(body.invMass))
		body.angularVelocity += body.invI * point.Sub(body.sweep.C).Cross(impulse)
	}
}

// ApplyLinearImpulseToCenter applies an impulse at the center of mass.
func (body *Body) ApplyLinearImpulseToCenter(impulse vec.Vec2, wake bool) {
	if body.bodyType != Dynamic {
		return
	}
	if wake && body.flags&bodyAwakeFlag == 0 {
		body.SetAwake(true)
	}
	if body.flags&bodyAwakeFlag != 0 {
		body.linearVelocity = body.linearVelocity.Add(impulse.Scale(body.invMass))
	}
}

// ApplyAngularImpulse applies an angular impulse.
func (body *Body) ApplyAngularImpulse(impulse float64, wake bool) {
	if body.bodyType != Dynamic {
		return
	}
	if wake && body.flags&bodyAwakeFlag == 0 {
		body.SetAwake(true)
	}
	if body.flags&bodyAwakeFlag != 0 {
		body.angularVelocity += body.invI * impulse
	}
}

// WorldPoint converts a local point to world coordinates.
func (body *Body) WorldPoint(localPoint vec.Vec2) vec.Vec2 {
	return body.xf.Apply(localPoint)
}

// WorldVector rotates a local vector to world coordinates.
func (body *Body) WorldVector(localVector vec.Vec2) vec.Vec2 {
	return body.xf.Q.Apply(localVector)
}

// LocalPoint converts a world point to local coordinates.
func (body *Body) LocalPoint(worldPoint vec.Vec2) vec.Vec2 {
	return body.xf.ApplyT(worldPoint)
}

// LocalVector rotates a world vector to local coordinates.
func (body *Body) LocalVector(worldVector vec.Vec2) vec.Vec2 {
	return body.xf.Q.ApplyT(worldVector)
}

// LinearVelocityFromWorldPoint returns the velocity of a world point attached to the body.
func (body *Body) LinearVelocityFromWorldPoint(worldPoint vec.Vec2) vec.Vec2 {
	return body.linearVelocity.Add(geom.CrossSV(body.angularVelocity, worldPoint.Sub(body.sweep.C)))
}

// LinearVelocityFromLocalPoint returns the velocity of a local point attached to the body.
func (body *Body) LinearVelocityFromLocalPoint(localPoint vec.Vec2) vec.Vec2 {
	return body.LinearVelocityFromWorldPoint(body.WorldPoint(localPoint))
}

func (body *Body) LinearDamping() float64 {
	return body.linearDamping
}

func (body *Body) SetLinearDamping(d float64) {
	body.linearDamping = d
}

func (body *Body) AngularDamping() float64 {
	return body.angularDamping
}

func (body *Body) SetAngularDamping(d float64) {
	body.angularDamping = d
}

func (body *Body) GravityScale() float64 {
	return body.gravityScale
}

func (body *Body) SetGravityScale(scale float64) {
	body.gravityScale = scale
}

// Type returns the body type.
func (body *Body) Type() BodyType {
	return body.bodyType
}

// SetType changes the body type. Mass data is reset, attached contacts
// are destroyed and proxies are touched so new contacts form next step.
func (body *Body) SetType(t BodyType) error {
	w := body.world
	if w == nil {
		return ErrForeignBody
	}
	if w.IsLocked() {
		w.logger.Warn("SetType called during step")
		return ErrLocked
	}
	if body.bodyType == t {
		return nil
	}

	body.bodyType = t
	body.ResetMassData()

	if body.bodyType == Static {
		body.linearVelocity = vec.Vec2{}
		body.angularVelocity = 0
		body.sweep.A0 = body.sweep.A
		body.sweep.C0 = body.sweep.C
		body.synchronizeFixtures()
	}

	body.SetAwake(true)

	body.force = vec.Vec2{}
	body.torque = 0

	// delete the attached contacts
	ce := body.contactList
	for ce != nil {
		ce0 := ce
		ce = ce.Next
		w.contactManager.destroy(ce0.Contact)
	}
	body.contactList = nil

	// touch the proxies so that new contacts will be created (when appropriate)
	bp := w.contactManager.broadPhase
	for _, f := range body.fixtures {
		for i := range f.proxies {
			bp.TouchProxy(f.proxies[i].ProxyID)
		}
	}
	return nil
}

// IsBullet reports whether the body uses continuous collision against dynamic bodies.
func (body *Body) IsBullet() bool {
	return body.flags&bodyBulletFlag != 0
}

// SetBullet marks the body as a bullet.
func (body *Body) SetBullet(flag bool) {
	if flag {
		body.flags |= bodyBulletFlag
	} else {
		body.flags &^= bodyBulletFlag
	}
}

// IsSleepingAllowed reports whether the body may fall asleep.
func (body *Body) IsSleepingAllowed() bool {
	return body.flags&bodyAutoSleepFlag != 0
}

// SetSleepingAllowed allows or forbids sleep. Forbidding wakes the body.
func (body *Body) SetSleepingAllowed(flag bool) {
	if flag {
		body.flags |= bodyAutoSleepFlag
	} else {
		body.flags &^= bodyAutoSleepFlag
		body.SetAwake(true)
	}
}

// IsAwake reports whether the body is simulated.
func (body *Body) IsAwake() bool {
	return body.flags&bodyAwakeFlag != 0
}

// SetAwake wakes the body or puts it to sleep. A sleeping body has zero
// velocity and no accumulated force.
func (body *Body) SetAwake(flag bool) {
	if flag {
		if body.flags&bodyAwakeFlag == 0 {
			body.flags |= bodyAwakeFlag
			body.sleepTime = 0
		}
		return
	}
	body.flags &^= bodyAwakeFlag
	body.sleepTime = 0
	body.linearVelocity = vec.Vec2{}
	body.angularVelocity = 0
	body.force = vec.Vec2{}
	body.torque = 0
}

// IsActive reports whether the body takes part in collision and simulation.
func (body *Body) IsActive() bool {
	return body.flags&bodyActiveFlag != 0
}

// SetActive adds the body to or removes it from the simulation. Inactive
// bodies keep their fixtures and joints but have no proxies or contacts.
func (body *Body) SetActive(flag bool) error {
	w := body.world
	if w == nil {
		return ErrForeignBody
	}
	if w.IsLocked() {
		w.logger.Warn("SetActive called during step")
		return ErrLocked
	}
	if flag == body.IsActive() {
		return nil
	}

	bp := w.contactManager.broadPhase
	if flag {
		body.flags |= bodyActiveFlag

		// create all proxies; contacts are created the next time step
		for _, f := range body.fixtures {
			f.createProxies(bp, body.xf)
		}
		return nil
	}

	body.flags &^= bodyActiveFlag

	// destroy all proxies
	for _, f := range body.fixtures {
		f.destroyProxies(bp)
	}

	// destroy the attached contacts
	ce := body.contactList
	for ce != nil {
		ce0 := ce
		ce = ce.Next
		w.contactManager.destroy(ce0.Contact)
	}
	body.contactList = nil
	return nil
}

// IsFixedRotation reports whether rotation is locked.
func (body *Body) IsFixedRotation() bool {
	return body.flags&bodyFixedRotationFlag != 0
}

// SetFixedRotation locks or unlocks rotation and resets the mass data.
func (body *Body) SetFixedRotation(flag bool) {
	if flag == body.IsFixedRotation() {
		return
	}
	if flag {
		body.flags |= bodyFixedRotationFlag
	} else {
		body.flags &^= bodyFixedRotationFlag
	}
	body.angularVelocity = 0
	body.ResetMassData()
}

// synchronizeFixtures moves the proxies to cover the sweep from the start
// transform to the current one.
func (body *Body) synchronizeFixtures() {
	xf1 := geom.Transform{Q: geom.NewRot(body.sweep.A0)}
	xf1.P = body.sweep.C0.Sub(xf1.Q.Apply(body.sweep.LocalCenter))

	bp := body.world.contactManager.broadPhase
	for _, f := range body.fixtures {
		f.synchronize(bp, xf1, body.xf)
	}
}

// synchronizeTransform derives the origin transform from the sweep.
func (body *Body) synchronizeTransform() {
	body.xf.Q = geom.NewRot(body.sweep.A)
	body.xf.P = body.sweep.C.Sub(body.xf.Q.Apply(body.sweep.LocalCenter))
}

// advance moves the body to the sweep time alpha, discarding the rest
// of the step's motion.
func (body *Body) advance(alpha float64) {
	body.sweep.Advance(alpha)
	body.sweep.C = body.sweep.C0
	body.sweep.A = body.sweep.A0
	body.synchronizeTransform()
}

// shouldCollide reports whether the two bodies may have contacts. At least
// one must be dynamic, and joints may forbid it.
func (body *Body) shouldCollide(other *Body) bool {
	if body.bodyType != Dynamic && other.bodyType != Dynamic {
		return false
	}

	for jn := body.jointList; jn != nil; jn = jn.Next {
		if jn.Other == other && !jn.Joint.CollideConnected() {
			return false
		}
	}
	return true
}
