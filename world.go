package b2d

import (
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/setanarut/b2d/collision"
	"github.com/setanarut/vec"
)

type worldFlags uint8

const (
	worldNewFixture worldFlags = 1 << iota
	worldLocked
	worldClearForces
)

// WorldDef configures a new World.
type WorldDef struct {
	Gravity vec.Vec2

	// AllowSleep lets resting islands fall asleep.
	AllowSleep bool
	// WarmStarting seeds the solver with last step's impulses.
	WarmStarting bool
	// ContinuousPhysics enables TOI sub-stepping.
	ContinuousPhysics bool
	// SubStepping resolves one TOI event per Step call.
	SubStepping bool
	// BlockSolve solves two point manifolds as a 2x2 LCP.
	BlockSolve bool

	// Registry provides the collide functions, DefaultRegistry when nil.
	Registry *collision.Registry
	// Logger receives debug events, discarded when nil.
	Logger *slog.Logger
}

// DefaultWorldDef returns Earth gravity with sleeping, warm starting,
// continuous physics and the block solver enabled.
func DefaultWorldDef() WorldDef {
	return WorldDef{
		Gravity:           vec.Vec2{X: 0, Y: -10},
		AllowSleep:        true,
		WarmStarting:      true,
		ContinuousPhysics: true,
		BlockSolve:        true,
	}
}

type postStepCallback struct {
	fn  PostStepFunc
	key any
}

// World manages all physics entities, dynamic simulation and
// asynchronous queries.
type World struct {
	flags worldFlags

	contactManager *contactManager

	bodies []*Body
	joints []Joint

	gravity    vec.Vec2
	allowSleep bool

	destructionListener DestructionListener

	// used to compute the time step ratio for a variable time step
	invDt0 float64

	warmStarting      bool
	continuousPhysics bool
	subStepping       bool
	blockSolve        bool
	stepComplete      bool

	profile Profile

	island island
	stack  []*Body

	postStepCallbacks []postStepCallback
	skipPostStep      bool

	logger *slog.Logger
}

// NewWorld allocates and initializes a World.
func NewWorld(def WorldDef) *World {
	registry := def.Registry
	if registry == nil {
		registry = collision.DefaultRegistry()
	}
	logger := def.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &World{
		flags:             worldClearForces,
		contactManager:    newContactManager(registry, logger),
		gravity:           def.Gravity,
		allowSleep:        def.AllowSleep,
		warmStarting:      def.WarmStarting,
		continuousPhysics: def.ContinuousPhysics,
		subStepping:       def.SubStepping,
		blockSolve:        def.BlockSolve,
		stepComplete:      true,
		logger:            logger,
	}
}

// SetDestructionListener registers the listener for implicitly destroyed
// joints and fixtures.
func (w *World) SetDestructionListener(listener DestructionListener) {
	w.destructionListener = listener
}

// SetContactFilter replaces the default filter.
func (w *World) SetContactFilter(filter ContactFilter) {
	w.contactManager.contactFilter = filter
}

// SetContactListener registers the contact event listener.
func (w *World) SetContactListener(listener ContactListener) {
	w.contactManager.contactListener = listener
}

// CreateBody adds a rigid body. Returns ErrLocked inside callbacks.
func (w *World) CreateBody(def *BodyDef) (*Body, error) {
	if w.IsLocked() {
		w.logger.Warn("CreateBody called during step")
		return nil, ErrLocked
	}
	if err := def.validate(); err != nil {
		return nil, err
	}

	b := newBody(def, w)
	w.bodies = append(w.bodies, b)
	return b, nil
}

// DestroyBody removes the body together with its joints, contacts and
// fixtures. The destruction listener is told about joints and fixtures.
func (w *World) DestroyBody(b *Body) error {
	if b.world != w {
		return ErrForeignBody
	}
	if w.IsLocked() {
		w.logger.Warn("DestroyBody called during step")
		return ErrLocked
	}

	// delete the attached joints
	je := b.jointList
	for je != nil {
		je0 := je
		je = je.Next

		if w.destructionListener != nil {
			w.destructionListener.SayGoodbyeJoint(je0.Joint)
		}
		w.destroyJoint(je0.Joint)
		b.jointList = je
	}
	b.jointList = nil

	// delete the attached contacts
	ce := b.contactList
	for ce != nil {
		ce0 := ce
		ce = ce.Next
		w.contactManager.destroy(ce0.Contact)
	}
	b.contactList = nil

	// delete the attached fixtures. This destroys broad-phase proxies.
	for _, f := range b.fixtures {
		if w.destructionListener != nil {
			w.destructionListener.SayGoodbyeFixture(f)
		}
		f.destroyProxies(w.contactManager.broadPhase)
		f.body = nil
	}
	b.fixtures = nil

	if i := slices.Index(w.bodies, b); i >= 0 {
		w.bodies = slices.Delete(w.bodies, i, i+1)
	}
	b.world = nil
	return nil
}

// CreateJoint adds a joint between two bodies of this world. Contacts
// between the bodies are refiltered when the joint forbids collision.
func (w *World) CreateJoint(j Joint) error {
	if w.IsLocked() {
		w.logger.Warn("CreateJoint called during step")
		return ErrLocked
	}

	base := j.Base()
	bodyA := base.bodyA
	bodyB := base.bodyB

	switch {
	case base.world != nil, bodyA == nil, bodyB == nil:
		return ErrInvalidDef
	case bodyA == bodyB:
		return ErrSameBody
	case bodyA.world != w, bodyB.world != w:
		return ErrForeignBody
	}

	base.world = w
	w.joints = append(w.joints, j)

	// connect to the bodies' doubly linked lists
	base.edgeA = JointEdge{Joint: j, Other: bodyB, Next: bodyA.jointList}
	if bodyA.jointList != nil {
		bodyA.jointList.Prev = &base.edgeA
	}
	bodyA.jointList = &base.edgeA

	base.edgeB = JointEdge{Joint: j, Other: bodyA, Next: bodyB.jointList}
	if bodyB.jointList != nil {
		bodyB.jointList.Prev = &base.edgeB
	}
	bodyB.jointList = &base.edgeB

	// if the joint prevents collisions, then flag any contacts for filtering
	if !base.collideConnected {
		flagContactsBetween(bodyA, bodyB)
	}
	return nil
}

// DestroyJoint removes the joint and wakes both bodies.
func (w *World) DestroyJoint(j Joint) error {
	if j.Base().world != w {
		return ErrForeignBody
	}
	if w.IsLocked() {
		w.logger.Warn("DestroyJoint called during step")
		return ErrLocked
	}
	w.destroyJoint(j)
	return nil
}

func (w *World) destroyJoint(j Joint) {
	base := j.Base()
	collideConnected := base.collideConnected

	if i := slices.Index(w.joints, j); i >= 0 {
		w.joints = slices.Delete(w.joints, i, i+1)
	}

	// disconnect from island graph
	bodyA := base.bodyA
	bodyB := base.bodyB

	// wake up connected bodies
	bodyA.SetAwake(true)
	bodyB.SetAwake(true)

	// remove from body A
	if base.edgeA.Prev != nil {
		base.edgeA.Prev.Next = base.edgeA.Next
	}
	if base.edgeA.Next != nil {
		base.edgeA.Next.Prev = base.edgeA.Prev
	}
	if &base.edgeA == bodyA.jointList {
		bodyA.jointList = base.edgeA.Next
	}
	base.edgeA = JointEdge{}

	// remove from body B
	if base.edgeB.Prev != nil {
		base.edgeB.Prev.Next = base.edgeB.Next
	}
	if base.edgeB.Next != nil {
		base.edgeB.Next.Prev = base.edgeB.Prev
	}
	if &base.edgeB == bodyB.jointList {
		bodyB.jointList = base.edgeB.Next
	}
	base.edgeB = JointEdge{}

	base.world = nil

	// if the joint prevented collisions, then flag any contacts for filtering
	if !collideConnected {
		flagContactsBetween(bodyA, bodyB)
	}
}

func flagContactsBetween(bodyA, bodyB *Body) {
	for edge := bodyB.contactList; edge != nil; edge = edge.Next {
		if edge.Other == bodyA {
			// flag the contact for filtering at the next time step
			edge.Contact.FlagForFiltering()
		}
	}
}

// Step advances the world by dt seconds: collision, island solving and
// continuous collision. It returns ErrLocked when called from a callback.
func (w *World) Step(dt float64, velocityIterations, positionIterations int) error {
	if w.IsLocked() {
		return ErrLocked
	}
	stepStart := time.Now()

	// if new fixtures were added, we need to find the new contacts
	if w.flags&worldNewFixture != 0 {
		w.contactManager.findNewContacts()
		w.flags &^= worldNewFixture
	}

	w.flags |= worldLocked
	w.profile = Profile{}

	step := TimeStep{
		Dt:                 dt,
		VelocityIterations: velocityIterations,
		PositionIterations: positionIterations,
		WarmStarting:       w.warmStarting,
	}
	if dt > 0 {
		step.InvDt = 1 / dt
	}
	step.DtRatio = w.invDt0 * dt

	// update contacts. This is where some contacts are destroyed.
	start := time.Now()
	w.contactManager.collide()
	w.profile.Collide = time.Since(start)

	// integrate velocities, solve velocity constraints and integrate positions
	if w.stepComplete && step.Dt > 0 {
		start = time.Now()
		w.solve(step)
		w.profile.Solve = time.Since(start)
	}

	// handle TOI events
	if w.continuousPhysics && step.Dt > 0 {
		start = time.Now()
		w.solveTOI(step)
		w.profile.SolveTOI = time.Since(start)
	}

	if step.Dt > 0 {
		w.invDt0 = step.InvDt
	}

	if w.flags&worldClearForces != 0 {
		w.ClearForces()
	}

	w.flags &^= worldLocked
	w.profile.Step = time.Since(stepStart)

	w.runPostStepCallbacks()
	return nil
}

// solve builds the islands of awake bodies and solves each of them.
func (w *World) solve(step TimeStep) {
	isl := &w.island
	isl.listener = w.contactManager.contactListener
	isl.blockSolve = w.blockSolve

	// clear all the island flags
	for _, b := range w.bodies {
		b.flags &^= bodyIslandFlag
	}
	for c := w.contactManager.contactList; c != nil; c = c.next {
		c.flags &^= contactIslandFlag
	}
	for _, j := range w.joints {
		j.Base().islandFlag = false
	}

	// build and simulate all awake islands
	stack := w.stack[:0]
	for _, seed := range w.bodies {
		if seed.flags&bodyIslandFlag != 0 {
			continue
		}
		if !seed.IsAwake() || !seed.IsActive() {
			continue
		}
		// the seed can be dynamic or kinematic
		if seed.bodyType == Static {
			continue
		}

		// reset island and stack
		isl.clear()
		stack = append(stack[:0], seed)
		seed.flags |= bodyIslandFlag

		// perform a depth first search (DFS) on the constraint graph
		for len(stack) > 0 {
			// grab the next body off the stack and add it to the island
			b := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			isl.addBody(b)

			// make sure the body is awake without resetting its sleep timer
			b.flags |= bodyAwakeFlag

			// to keep islands as small as possible, we don't propagate
			// islands across static bodies
			if b.bodyType == Static {
				continue
			}

			// search all contacts connected to this body
			for ce := b.contactList; ce != nil; ce = ce.Next {
				c := ce.Contact

				// has this contact already been added to an island?
				if c.flags&contactIslandFlag != 0 {
					continue
				}

				// is this contact solid and touching?
				if !c.IsEnabled() || !c.IsTouching() {
					continue
				}

				// skip sensors
				if c.fixtureA.isSensor || c.fixtureB.isSensor {
					continue
				}

				isl.addContact(c)
				c.flags |= contactIslandFlag

				other := ce.Other

				// was the other body already added to this island?
				if other.flags&bodyIslandFlag != 0 {
					continue
				}

				stack = append(stack, other)
				other.flags |= bodyIslandFlag
			}

			// search all joints connected to this body
			for je := b.jointList; je != nil; je = je.Next {
				base := je.Joint.Base()
				if base.islandFlag {
					continue
				}

				other := je.Other

				// don't simulate joints connected to inactive bodies
				if !other.IsActive() {
					continue
				}

				isl.addJoint(je.Joint)
				base.islandFlag = true

				if other.flags&bodyIslandFlag != 0 {
					continue
				}

				stack = append(stack, other)
				other.flags |= bodyIslandFlag
			}
		}

		if isl.solve(&w.profile, step, w.gravity, w.allowSleep) {
			w.logger.Debug("island asleep", "bodies", len(isl.bodies), "contacts", len(isl.contacts), "joints", len(isl.joints))
		}

		// post solve cleanup: allow static bodies to participate in other islands
		for _, b := range isl.bodies {
			if b.bodyType == Static {
				b.flags &^= bodyIslandFlag
			}
		}
	}
	w.stack = stack
	isl.clear()

	start := time.Now()

	// synchronize fixtures, check for out of range bodies
	for _, b := range w.bodies {
		// if a body was not in an island then it did not move
		if b.flags&bodyIslandFlag == 0 {
			continue
		}
		if b.bodyType == Static {
			continue
		}

		// update fixtures (for broad-phase)
		b.synchronizeFixtures()
	}

	// look for new contacts
	w.contactManager.findNewContacts()
	w.profile.Broadphase = time.Since(start)
}

// solveTOI finds the earliest time of impact among contacts involving
// bullets or non-dynamic bodies, moves the pair there and resolves it
// with a small sub-step island. This repeats until the step is consumed.
func (w *World) solveTOI(step TimeStep) {
	cm := w.contactManager
	isl := &w.island
	isl.listener = cm.contactListener
	isl.blockSolve = w.blockSolve

	const bodyCapacity = 2 * maxTOIContacts
	const contactCapacity = maxTOIContacts

	if w.stepComplete {
		for _, b := range w.bodies {
			b.flags &^= bodyIslandFlag
			b.sweep.Alpha0 = 0
		}

		for c := cm.contactList; c != nil; c = c.next {
			// invalidate TOI
			c.flags &^= contactTOIFlag | contactIslandFlag
			c.toiCount = 0
			c.toi = 1
		}
	}

	// find TOI events and solve them
	for {
		// find the first TOI
		var minContact *Contact
		minAlpha := 1.0

		for c := cm.contactList; c != nil; c = c.next {
			// is this contact disabled?
			if !c.IsEnabled() {
				continue
			}

			// prevent excessive sub-stepping
			if c.toiCount > maxSubSteps {
				continue
			}

			alpha := 1.0
			if c.flags&contactTOIFlag != 0 {
				// this contact has a valid cached TOI
				alpha = c.toi
			} else {
				fA := c.fixtureA
				fB := c.fixtureB

				// is there a sensor?
				if fA.isSensor || fB.isSensor {
					continue
				}

				bA := fA.body
				bB := fB.body

				activeA := bA.IsAwake() && bA.bodyType != Static
				activeB := bB.IsAwake() && bB.bodyType != Static

				// is at least one body active (awake and dynamic or kinematic)?
				if !activeA && !activeB {
					continue
				}

				collideA := bA.IsBullet() || bA.bodyType != Dynamic
				collideB := bB.IsBullet() || bB.bodyType != Dynamic

				// are these two non-bullet dynamic bodies?
				if !collideA && !collideB {
					continue
				}

				// compute the TOI for this contact.
				// put the sweeps onto the same time interval.
				alpha0 := bA.sweep.Alpha0

				if bA.sweep.Alpha0 < bB.sweep.Alpha0 {
					alpha0 = bB.sweep.Alpha0
					bA.sweep.Advance(alpha0)
				} else if bB.sweep.Alpha0 < bA.sweep.Alpha0 {
					alpha0 = bA.sweep.Alpha0
					bB.sweep.Advance(alpha0)
				}

				input := collision.TOIInput{
					ProxyA: collision.NewDistanceProxy(fA.shape, c.indexA),
					ProxyB: collision.NewDistanceProxy(fB.shape, c.indexB),
					SweepA: bA.sweep,
					SweepB: bB.sweep,
					TMax:   1,
				}
				output := collision.TimeOfImpact(&input)

				// beta is the fraction of the remaining portion of the step
				beta := output.T
				if output.State == collision.TOITouching {
					alpha = math.Min(alpha0+(1-alpha0)*beta, 1)
				} else {
					alpha = 1
				}
				if output.State == collision.TOIFailed {
					w.logger.Debug("toi failed", "t", output.T)
				}

				c.toi = alpha
				c.flags |= contactTOIFlag
			}

			if alpha < minAlpha {
				// this is the minimum TOI found so far
				minContact = c
				minAlpha = alpha
			}
		}

		if minContact == nil || 1-10*epsilon < minAlpha {
			// no more TOI events. Done!
			w.stepComplete = true
			break
		}

		// advance the bodies to the TOI
		bA := minContact.fixtureA.body
		bB := minContact.fixtureB.body

		backup1 := bA.sweep
		backup2 := bB.sweep

		bA.advance(minAlpha)
		bB.advance(minAlpha)

		// the TOI contact likely has some new contact points
		minContact.update(cm.contactListener)
		minContact.flags &^= contactTOIFlag
		minContact.toiCount++

		// is the contact solid?
		if !minContact.IsEnabled() || !minContact.IsTouching() {
			// restore the sweeps
			minContact.SetEnabled(false)
			bA.sweep = backup1
			bB.sweep = backup2
			bA.synchronizeTransform()
			bB.synchronizeTransform()
			continue
		}

		bA.SetAwake(true)
		bB.SetAwake(true)

		// build the island
		isl.clear()
		isl.addBody(bA)
		isl.addBody(bB)
		isl.addContact(minContact)

		bA.flags |= bodyIslandFlag
		bB.flags |= bodyIslandFlag
		minContact.flags |= contactIslandFlag

		// get contacts on bodyA and bodyB
		for _, body := range [2]*Body{bA, bB} {
			if body.bodyType != Dynamic {
				continue
			}

			for ce := body.contactList; ce != nil; ce = ce.Next {
				if len(isl.bodies) == bodyCapacity || len(isl.contacts) == contactCapacity {
					break
				}

				c := ce.Contact

				// has this contact already been added to the island?
				if c.flags&contactIslandFlag != 0 {
					continue
				}

				// only add static, kinematic, or bullet bodies
				other := ce.Other
				if other.bodyType == Dynamic && !body.IsBullet() && !other.IsBullet() {
					continue
				}

				// skip sensors
				if c.fixtureA.isSensor || c.fixtureB.isSensor {
					continue
				}

				// tentatively advance the body to the TOI
				backup := other.sweep
				if other.flags&bodyIslandFlag == 0 {
					other.advance(minAlpha)
				}

				// update the contact points
				c.update(cm.contactListener)

				// was the contact disabled by the user, or are there no
				// contact points?
				if !c.IsEnabled() || !c.IsTouching() {
					other.sweep = backup
					other.synchronizeTransform()
					continue
				}

				// add the contact to the island
				c.flags |= contactIslandFlag
				isl.addContact(c)

				// has the other body already been added to the island?
				if other.flags&bodyIslandFlag != 0 {
					continue
				}

				// add the other body to the island
				other.flags |= bodyIslandFlag

				if other.bodyType != Static {
					other.SetAwake(true)
				}

				isl.addBody(other)
			}
		}

		dt := (1 - minAlpha) * step.Dt
		subStep := TimeStep{
			Dt:                 dt,
			InvDt:              1 / dt,
			DtRatio:            1,
			PositionIterations: 20,
			VelocityIterations: step.VelocityIterations,
			WarmStarting:       false,
		}
		w.logger.Debug("toi event", "alpha", minAlpha, "bodies", len(isl.bodies), "contacts", len(isl.contacts))
		isl.solveTOI(subStep, bA.islandIndex, bB.islandIndex)

		// reset island flags and synchronize broad-phase proxies
		for _, body := range isl.bodies {
			body.flags &^= bodyIslandFlag

			if body.bodyType != Dynamic {
				continue
			}

			body.synchronizeFixtures()

			// invalidate all contact TOIs on this displaced body
			for ce := body.contactList; ce != nil; ce = ce.Next {
				ce.Contact.flags &^= contactTOIFlag | contactIslandFlag
			}
		}

		// commit fixture proxy movements to the broad-phase so that new
		// contacts are created. Also, some contacts can be destroyed.
		cm.findNewContacts()

		if w.subStepping {
			w.stepComplete = false
			break
		}
	}
	isl.clear()
}

// ClearForces zeroes the accumulated forces and torques of all bodies.
// Step calls it automatically unless disabled with SetAutoClearForces.
func (w *World) ClearForces() {
	for _, b := range w.bodies {
		b.force = vec.Vec2{}
		b.torque = 0
	}
}

// SetAutoClearForces sets whether forces are cleared after each Step.
func (w *World) SetAutoClearForces(flag bool) {
	if flag {
		w.flags |= worldClearForces
	} else {
		w.flags &^= worldClearForces
	}
}

func (w *World) AutoClearForces() bool {
	return w.flags&worldClearForces != 0
}

// QueryAABB calls fn for each fixture child whose fat AABB overlaps aabb.
func (w *World) QueryAABB(aabb collision.AABB, fn QueryFunc) {
	bp := w.contactManager.broadPhase
	bp.Query(aabb, func(proxyID int) bool {
		return fn(bp.UserData(proxyID).Fixture)
	})
}

// RayCast casts a ray from point1 to point2 and reports hits to fn in no
// particular order. See RayCastFunc for clipping.
func (w *World) RayCast(point1, point2 vec.Vec2, fn RayCastFunc) {
	bp := w.contactManager.broadPhase
	input := collision.RayCastInput{P1: point1, P2: point2, MaxFraction: 1}

	bp.RayCast(input, func(subInput collision.RayCastInput, proxyID int) float64 {
		proxy := bp.UserData(proxyID)
		f := proxy.Fixture

		output, hit := f.RayCast(subInput, proxy.ChildIndex)
		if !hit {
			return subInput.MaxFraction
		}

		fraction := output.Fraction
		point := point1.Lerp(point2, fraction)
		return fn(f, point, output.Normal, fraction)
	})
}

// ShiftOrigin moves the world origin to newOrigin, translating every
// body, joint and proxy by -newOrigin.
func (w *World) ShiftOrigin(newOrigin vec.Vec2) error {
	if w.IsLocked() {
		return ErrLocked
	}

	for _, b := range w.bodies {
		b.xf.P = b.xf.P.Sub(newOrigin)
		b.sweep.C0 = b.sweep.C0.Sub(newOrigin)
		b.sweep.C = b.sweep.C.Sub(newOrigin)
	}

	for _, j := range w.joints {
		j.ShiftOrigin(newOrigin)
	}

	w.contactManager.broadPhase.ShiftOrigin(newOrigin)
	return nil
}

// AddPostStepCallback schedules f to run when the current or next Step
// returns, when the world is unlocked. Only one callback per non-nil key
// is kept; adding a second one is a no-op that returns false.
func (w *World) AddPostStepCallback(f PostStepFunc, key any) bool {
	if key != nil {
		for _, cb := range w.postStepCallbacks {
			if cb.key == key {
				return false
			}
		}
	}
	w.postStepCallbacks = append(w.postStepCallbacks, postStepCallback{fn: f, key: key})
	return true
}

func (w *World) runPostStepCallbacks() {
	if w.skipPostStep {
		return
	}
	w.skipPostStep = true

	// callbacks may schedule further callbacks
	for i := 0; i < len(w.postStepCallbacks); i++ {
		cb := w.postStepCallbacks[i]
		if cb.fn != nil {
			cb.fn(w, cb.key)
		}
	}

	clear(w.postStepCallbacks)
	w.postStepCallbacks = w.postStepCallbacks[:0]
	w.skipPostStep = false
}

// IsLocked reports whether the world is inside Step.
func (w *World) IsLocked() bool {
	return w.flags&worldLocked != 0
}

// Bodies returns the bodies in creation order. The slice must not be modified.
func (w *World) Bodies() []*Body {
	return w.bodies
}

// Joints returns the joints in creation order. The slice must not be modified.
func (w *World) Joints() []Joint {
	return w.joints
}

// ContactList returns the head of the world contact list.
func (w *World) ContactList() *Contact {
	return w.contactManager.contactList
}

func (w *World) BodyCount() int {
	return len(w.bodies)
}

func (w *World) JointCount() int {
	return len(w.joints)
}

func (w *World) ContactCount() int {
	return w.contactManager.contactCount
}

// ProxyCount returns the number of broad-phase proxies.
func (w *World) ProxyCount() int {
	return w.contactManager.broadPhase.ProxyCount()
}

// TreeHeight returns the height of the broad-phase tree.
func (w *World) TreeHeight() int {
	return w.contactManager.broadPhase.Tree().Height()
}

// TreeBalance returns the largest height difference of sibling subtrees.
func (w *World) TreeBalance() int {
	return w.contactManager.broadPhase.Tree().MaxBalance()
}

// TreeQuality returns the ratio of the sum of node perimeters to the root perimeter.
func (w *World) TreeQuality() float64 {
	return w.contactManager.broadPhase.Tree().AreaRatio()
}

func (w *World) Gravity() vec.Vec2 {
	return w.gravity
}

func (w *World) SetGravity(gravity vec.Vec2) {
	w.gravity = gravity
}

// SetAllowSleeping enables or disables sleep. Disabling wakes every body.
func (w *World) SetAllowSleeping(flag bool) {
	if flag == w.allowSleep {
		return
	}
	w.allowSleep = flag
	if !w.allowSleep {
		for _, b := range w.bodies {
			b.SetAwake(true)
		}
	}
}

func (w *World) AllowSleeping() bool {
	return w.allowSleep
}

func (w *World) SetWarmStarting(flag bool) {
	w.warmStarting = flag
}

func (w *World) SetContinuousPhysics(flag bool) {
	w.continuousPhysics = flag
}

func (w *World) SetSubStepping(flag bool) {
	w.subStepping = flag
}

// Profile returns the timings of the last step.
func (w *World) Profile() Profile {
	return w.profile
}
