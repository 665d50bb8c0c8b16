package b2d

import (
	"github.com/setanarut/b2d/collision"
	"github.com/setanarut/vec"
)

// ContactListener receives contact events. The world is locked while any
// of these run, so structural changes return ErrLocked; defer them with
// World.AddPostStepCallback instead.
type ContactListener interface {
	// BeginContact is called when two fixtures begin to touch.
	BeginContact(c *Contact)
	// EndContact is called when two fixtures stop touching, and when a
	// touching contact is destroyed.
	EndContact(c *Contact)
	// PreSolve is called after the manifold is updated and before it is
	// solved. Disabling the contact here skips it for the current step.
	PreSolve(c *Contact, oldManifold *collision.Manifold)
	// PostSolve reports the impulses the solver applied.
	PostSolve(c *Contact, impulse *ContactImpulse)
}

// ContactListenerFuncs adapts plain functions to a ContactListener.
// Nil fields are skipped.
type ContactListenerFuncs struct {
	BeginFunc     func(c *Contact)
	EndFunc       func(c *Contact)
	PreSolveFunc  func(c *Contact, oldManifold *collision.Manifold)
	PostSolveFunc func(c *Contact, impulse *ContactImpulse)
}

func (l *ContactListenerFuncs) BeginContact(c *Contact) {
	if l.BeginFunc != nil {
		l.BeginFunc(c)
	}
}

func (l *ContactListenerFuncs) EndContact(c *Contact) {
	if l.EndFunc != nil {
		l.EndFunc(c)
	}
}

func (l *ContactListenerFuncs) PreSolve(c *Contact, oldManifold *collision.Manifold) {
	if l.PreSolveFunc != nil {
		l.PreSolveFunc(c, oldManifold)
	}
}

func (l *ContactListenerFuncs) PostSolve(c *Contact, impulse *ContactImpulse) {
	if l.PostSolveFunc != nil {
		l.PostSolveFunc(c, impulse)
	}
}

// ContactFilter decides whether two fixtures may form a contact.
type ContactFilter interface {
	ShouldCollide(fixtureA, fixtureB *Fixture) bool
}

// DefaultContactFilter applies the fixtures' Filter data.
type DefaultContactFilter struct{}

func (DefaultContactFilter) ShouldCollide(fixtureA, fixtureB *Fixture) bool {
	return fixtureA.filter.ShouldCollide(fixtureB.filter)
}

// DestructionListener is told about joints and fixtures destroyed
// implicitly because their body was destroyed.
type DestructionListener interface {
	SayGoodbyeJoint(j Joint)
	SayGoodbyeFixture(f *Fixture)
}

// QueryFunc is called for every fixture whose fat AABB overlaps the query
// box. Return false to stop the query.
type QueryFunc func(f *Fixture) bool

// RayCastFunc is called for every fixture hit by the ray with the hit
// point, normal and fraction. The return value controls the cast:
// -1 ignores this fixture and continues, 0 terminates, the fraction clips
// the ray to this hit and 1 continues unclipped.
type RayCastFunc func(f *Fixture, point, normal vec.Vec2, fraction float64) float64

// PostStepFunc runs after Step finishes and the world is unlocked.
type PostStepFunc func(w *World, key any)
