package b2d

import (
	"time"

	"github.com/setanarut/vec"
)

// TimeStep is the per step solver configuration.
type TimeStep struct {
	Dt                 float64 // time step
	InvDt              float64 // inverse time step (0 if Dt == 0)
	DtRatio            float64 // Dt * previous InvDt, scales warm start impulses
	VelocityIterations int
	PositionIterations int
	WarmStarting       bool
}

// Position is the solver copy of a body's center of mass and angle.
type Position struct {
	C vec.Vec2
	A float64
}

// Velocity is the solver copy of a body's velocities.
type Velocity struct {
	V vec.Vec2
	W float64
}

// SolverData is handed to joints during the solver phases. Joints index
// Positions and Velocities with Body.IslandIndex.
type SolverData struct {
	Step       TimeStep
	Positions  []Position
	Velocities []Velocity
}

// Profile holds the wall clock spent in each phase of the last step.
type Profile struct {
	Step          time.Duration
	Collide       time.Duration
	Solve         time.Duration
	SolveInit     time.Duration
	SolveVelocity time.Duration
	SolvePosition time.Duration
	Broadphase    time.Duration
	SolveTOI      time.Duration
}
