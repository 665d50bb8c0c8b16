// Package b2d is a deterministic fixed-step 2D rigid body simulator.
//
// A World owns bodies, fixtures, joints and contacts. Each call to
// World.Step runs the broad phase, refreshes contact manifolds, solves
// islands of touching bodies with sequential impulses and then resolves
// fast movers with continuous collision sub-steps.
package b2d

import (
	"math"

	"github.com/setanarut/b2d/collision"
)

const (
	// maxSubSteps bounds the TOI events a single contact may take per step.
	maxSubSteps = 8

	// maxTOIContacts bounds the contacts gathered into a TOI island.
	maxTOIContacts = 32

	// velocityThreshold is the relative normal speed below which
	// collisions are treated as inelastic.
	velocityThreshold = 1.0

	// maxLinearCorrection caps the position correction per iteration.
	maxLinearCorrection = 0.2

	// maxAngularCorrection caps the angular correction per iteration.
	maxAngularCorrection = 8.0 / 180.0 * math.Pi

	// maxTranslation caps the distance a body moves in one step.
	maxTranslation        = 2.0
	maxTranslationSquared = maxTranslation * maxTranslation

	// maxRotation caps the angle a body turns in one step.
	maxRotation        = 0.5 * math.Pi
	maxRotationSquared = maxRotation * maxRotation

	// baumgarte is the fraction of overlap resolved per position iteration.
	baumgarte    = 0.2
	toiBaumgarte = 0.75

	// timeToSleep is how long a body must rest before it may sleep.
	timeToSleep = 0.5

	linearSleepTolerance  = 0.01
	angularSleepTolerance = 2.0 / 180.0 * math.Pi

	linearSlop  = collision.LinearSlop
	angularSlop = collision.AngularSlop
	epsilon     = collision.Epsilon
)

// MixFriction is the friction of a contact between two fixtures.
func MixFriction(friction1, friction2 float64) float64 {
	return math.Sqrt(friction1 * friction2)
}

// MixRestitution is the restitution of a contact between two fixtures.
// Anything bounces off an inelastic surface.
func MixRestitution(restitution1, restitution2 float64) float64 {
	return math.Max(restitution1, restitution2)
}

// Filter holds the collision filtering data of a fixture.
type Filter struct {
	// CategoryBits are the categories this fixture belongs to.
	CategoryBits uint16
	// MaskBits are the categories this fixture accepts collisions with.
	MaskBits uint16
	// GroupIndex overrides the bits: fixtures sharing a positive group
	// always collide, a shared negative group never does.
	GroupIndex int16
}

// DefaultFilter collides with everything.
var DefaultFilter = Filter{CategoryBits: 0x0001, MaskBits: 0xFFFF, GroupIndex: 0}

// ShouldCollide applies the group and category rules.
func (f Filter) ShouldCollide(other Filter) bool {
	if f.GroupIndex == other.GroupIndex && f.GroupIndex != 0 {
		return f.GroupIndex > 0
	}
	return f.MaskBits&other.CategoryBits != 0 && f.CategoryBits&other.MaskBits != 0
}

// ContactImpulse reports the impulses applied by the solver to a contact.
type ContactImpulse struct {
	NormalImpulses  [collision.MaxManifoldPoints]float64
	TangentImpulses [collision.MaxManifoldPoints]float64
	Count           int
}
