package b2d

import (
	"math"
	"slices"
	"time"

	"github.com/setanarut/b2d/geom"
	"github.com/setanarut/vec"
)

// island is a connected group of awake bodies with their contacts and
// joints, solved as one unit. The world reuses one island for every
// group it builds.
//
// Position correction uses a modified non-linear Gauss-Seidel pass on
// top of the sequential impulse velocity solver. Velocities are solved
// without position error feedback so restitution stays accurate, then
// positions are integrated and the remaining overlap is removed by
// directly moving the bodies.
type island struct {
	listener ContactListener

	bodies   []*Body
	contacts []*Contact
	joints   []Joint

	positions  []Position
	velocities []Velocity

	solver     contactSolver
	blockSolve bool
}

func (isl *island) clear() {
	clear(isl.bodies)
	clear(isl.contacts)
	clear(isl.joints)
	isl.bodies = isl.bodies[:0]
	isl.contacts = isl.contacts[:0]
	isl.joints = isl.joints[:0]
}

func (isl *island) addBody(body *Body) {
	body.islandIndex = len(isl.bodies)
	isl.bodies = append(isl.bodies, body)
}

func (isl *island) addContact(c *Contact) {
	isl.contacts = append(isl.contacts, c)
}

func (isl *island) addJoint(j Joint) {
	isl.joints = append(isl.joints, j)
}

// prepare sizes the solver arrays to the body count.
func (isl *island) prepare() {
	n := len(isl.bodies)
	isl.positions = slices.Grow(isl.positions[:0], n)[:n]
	isl.velocities = slices.Grow(isl.velocities[:0], n)[:n]
}

// solve reports whether the island was put to sleep.
func (isl *island) solve(profile *Profile, step TimeStep, gravity vec.Vec2, allowSleep bool) bool {
	start := time.Now()
	h := step.Dt

	isl.prepare()

	// integrate velocities and apply damping, initialize the body state
	for i, b := range isl.bodies {
		c := b.sweep.C
		a := b.sweep.A
		v := b.linearVelocity
		w := b.angularVelocity

		// store positions for continuous collision
		b.sweep.C0 = b.sweep.C
		b.sweep.A0 = b.sweep.A

		if b.bodyType == Dynamic {
			// integrate velocities
			v = v.Add(gravity.Scale(b.gravityScale).Add(b.force.Scale(b.invMass)).Scale(h))
			w += h * b.invI * b.torque

			// apply damping as a Pade approximation of
			// dv/dt + c * v = 0, which is stable for large c
			v = v.Scale(1 / (1 + h*b.linearDamping))
			w *= 1 / (1 + h*b.angularDamping)
		}

		isl.positions[i] = Position{C: c, A: a}
		isl.velocities[i] = Velocity{V: v, W: w}
	}

	solverData := SolverData{
		Step:       step,
		Positions:  isl.positions,
		Velocities: isl.velocities,
	}

	// initialize velocity constraints
	isl.solver.init(step, isl.positions, isl.velocities, isl.contacts, isl.blockSolve)
	isl.solver.initializeVelocityConstraints()

	if step.WarmStarting {
		isl.solver.warmStart()
	}

	for _, j := range isl.joints {
		j.InitVelocityConstraints(&solverData)
	}

	profile.SolveInit += time.Since(start)

	// solve velocity constraints
	start = time.Now()
	for range step.VelocityIterations {
		for _, j := range isl.joints {
			j.SolveVelocityConstraints(&solverData)
		}
		isl.solver.solveVelocityConstraints()
	}

	// store impulses for warm starting
	isl.solver.storeImpulses()
	profile.SolveVelocity += time.Since(start)

	isl.integratePositions(h)

	// solve position constraints
	start = time.Now()
	positionSolved := false
	for range step.PositionIterations {
		contactsOkay := isl.solver.solvePositionConstraints()

		jointsOkay := true
		for _, j := range isl.joints {
			jointOkay := j.SolvePositionConstraints(&solverData)
			jointsOkay = jointsOkay && jointOkay
		}

		if contactsOkay && jointsOkay {
			// exit early if the position errors are small
			positionSolved = true
			break
		}
	}

	// copy state buffers back to the bodies
	for i, b := range isl.bodies {
		b.sweep.C = isl.positions[i].C
		b.sweep.A = isl.positions[i].A
		b.linearVelocity = isl.velocities[i].V
		b.angularVelocity = isl.velocities[i].W
		b.synchronizeTransform()
	}

	profile.SolvePosition += time.Since(start)

	isl.report()

	if !allowSleep {
		return false
	}

	minSleepTime := geom.MaxFloat

	const linTolSqr = linearSleepTolerance * linearSleepTolerance
	const angTolSqr = angularSleepTolerance * angularSleepTolerance

	for _, b := range isl.bodies {
		if b.bodyType == Static {
			continue
		}

		if b.flags&bodyAutoSleepFlag == 0 ||
			b.angularVelocity*b.angularVelocity > angTolSqr ||
			b.linearVelocity.Dot(b.linearVelocity) > linTolSqr {
			b.sleepTime = 0
			minSleepTime = 0
		} else {
			b.sleepTime += h
			minSleepTime = math.Min(minSleepTime, b.sleepTime)
		}
	}

	if minSleepTime < timeToSleep || !positionSolved {
		return false
	}
	for _, b := range isl.bodies {
		b.SetAwake(false)
	}
	return true
}

// integratePositions advances positions from the solved velocities,
// clamping large motions.
func (isl *island) integratePositions(h float64) {
	for i := range isl.bodies {
		c := isl.positions[i].C
		a := isl.positions[i].A
		v := isl.velocities[i].V
		w := isl.velocities[i].W

		// check for large velocities
		translation := v.Scale(h)
		if translation.Dot(translation) > maxTranslationSquared {
			ratio := maxTranslation / translation.Mag()
			v = v.Scale(ratio)
		}

		rotation := h * w
		if rotation*rotation > maxRotationSquared {
			ratio := maxRotation / math.Abs(rotation)
			w *= ratio
		}

		// integrate
		c = c.Add(v.Scale(h))
		a += h * w

		isl.positions[i] = Position{C: c, A: a}
		isl.velocities[i] = Velocity{V: v, W: w}
	}
}

// solveTOI resolves the contacts of a sub-step island. Only the bodies at
// toiIndexA and toiIndexB are moved by the position solver.
func (isl *island) solveTOI(subStep TimeStep, toiIndexA, toiIndexB int) {
	isl.prepare()

	// initialize the body state
	for i, b := range isl.bodies {
		isl.positions[i] = Position{C: b.sweep.C, A: b.sweep.A}
		isl.velocities[i] = Velocity{V: b.linearVelocity, W: b.angularVelocity}
	}

	isl.solver.init(subStep, isl.positions, isl.velocities, isl.contacts, isl.blockSolve)

	// solve position constraints
	for range subStep.PositionIterations {
		if isl.solver.solveTOIPositionConstraints(toiIndexA, toiIndexB) {
			break
		}
	}

	// leap of faith to new safe state
	isl.bodies[toiIndexA].sweep.C0 = isl.positions[toiIndexA].C
	isl.bodies[toiIndexA].sweep.A0 = isl.positions[toiIndexA].A
	isl.bodies[toiIndexB].sweep.C0 = isl.positions[toiIndexB].C
	isl.bodies[toiIndexB].sweep.A0 = isl.positions[toiIndexB].A

	// no warm starting is needed for TOI events because warm starting
	// impulses were applied in the discrete solver
	isl.solver.initializeVelocityConstraints()

	// solve velocity constraints
	for range subStep.VelocityIterations {
		isl.solver.solveVelocityConstraints()
	}

	// don't store the TOI contact forces for warm starting because they
	// can be quite large

	isl.integratePositions(subStep.Dt)

	// sync bodies
	for i, b := range isl.bodies {
		b.sweep.C = isl.positions[i].C
		b.sweep.A = isl.positions[i].A
		b.linearVelocity = isl.velocities[i].V
		b.angularVelocity = isl.velocities[i].W
		b.synchronizeTransform()
	}

	isl.report()
}

// report sends the solver impulses to the PostSolve listener.
func (isl *island) report() {
	if isl.listener == nil {
		return
	}

	for _, c := range isl.contacts {
		vc := &c.vc

		impulse := ContactImpulse{Count: vc.pointCount}
		for j := range vc.pointCount {
			impulse.NormalImpulses[j] = vc.points[j].normalImpulse
			impulse.TangentImpulses[j] = vc.points[j].tangentImpulse
		}

		isl.listener.PostSolve(c, &impulse)
	}
}
