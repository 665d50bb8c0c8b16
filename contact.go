package b2d

import (
	"github.com/setanarut/b2d/collision"
	"github.com/setanarut/b2d/geom"
)

type contactFlags uint16

const (
	// used when crawling the contact graph to build islands
	contactIslandFlag contactFlags = 1 << iota
	// set when the shapes are touching
	contactTouchingFlag
	// cleared by the user to skip the contact for one step
	contactEnabledFlag
	// set when the filter must be re-run
	contactFilterFlag
	// set when the TOI field holds a valid value
	contactTOIFlag
)

// ContactEdge connects bodies and contacts in the contact graph. Each
// contact owns two edges, one per body, threaded into that body's list.
type ContactEdge struct {
	// Other is the body on the far side of the contact.
	Other   *Body
	Contact *Contact
	Prev    *ContactEdge
	Next    *ContactEdge
}

// Contact manages the narrow-phase state of two overlapping fixture
// children. It exists while their fat AABBs overlap, touching or not.
type Contact struct {
	flags contactFlags

	// world contact list
	prev, next *Contact

	nodeA, nodeB ContactEdge

	fixtureA, fixtureB *Fixture
	indexA, indexB     int

	manifold collision.Manifold
	evaluate collision.CollideFunc

	toiCount int
	toi      float64

	friction     float64
	restitution  float64
	tangentSpeed float64

	// solver scratch, valid during a step only
	vc contactVelocityConstraint
	pc contactPositionConstraint
}

func (c *Contact) init(fA *Fixture, indexA int, fB *Fixture, indexB int, fn collision.CollideFunc) {
	*c = Contact{
		flags:       contactEnabledFlag,
		fixtureA:    fA,
		fixtureB:    fB,
		indexA:      indexA,
		indexB:      indexB,
		evaluate:    fn,
		friction:    MixFriction(fA.friction, fB.friction),
		restitution: MixRestitution(fA.restitution, fB.restitution),
	}
}

// Manifold returns the contact manifold. Do not modify it outside PreSolve.
func (c *Contact) Manifold() *collision.Manifold {
	return &c.manifold
}

// WorldManifold returns the manifold in world coordinates.
func (c *Contact) WorldManifold() collision.WorldManifold {
	var wm collision.WorldManifold
	bodyA := c.fixtureA.body
	bodyB := c.fixtureB.body
	wm.Initialize(&c.manifold, bodyA.xf, c.fixtureA.shape.Radius(), bodyB.xf, c.fixtureB.shape.Radius())
	return wm
}

// IsTouching reports whether the manifold has points or, for sensors,
// whether the shapes overlap.
func (c *Contact) IsTouching() bool {
	return c.flags&contactTouchingFlag != 0
}

// SetEnabled disables the contact for the current step. Use it inside
// PreSolve; the flag is reset by every update.
func (c *Contact) SetEnabled(flag bool) {
	if flag {
		c.flags |= contactEnabledFlag
	} else {
		c.flags &^= contactEnabledFlag
	}
}

func (c *Contact) IsEnabled() bool {
	return c.flags&contactEnabledFlag != 0
}

// Next returns the next contact in the world list.
func (c *Contact) Next() *Contact {
	return c.next
}

func (c *Contact) FixtureA() *Fixture {
	return c.fixtureA
}

func (c *Contact) ChildIndexA() int {
	return c.indexA
}

func (c *Contact) FixtureB() *Fixture {
	return c.fixtureB
}

func (c *Contact) ChildIndexB() int {
	return c.indexB
}

// SetFriction overrides the mixed friction. It persists for the life of the contact.
func (c *Contact) SetFriction(friction float64) {
	c.friction = friction
}

func (c *Contact) Friction() float64 {
	return c.friction
}

// ResetFriction restores the mixed friction of the fixtures.
func (c *Contact) ResetFriction() {
	c.friction = MixFriction(c.fixtureA.friction, c.fixtureB.friction)
}

// SetRestitution overrides the mixed restitution. It persists for the life of the contact.
func (c *Contact) SetRestitution(restitution float64) {
	c.restitution = restitution
}

func (c *Contact) Restitution() float64 {
	return c.restitution
}

// ResetRestitution restores the mixed restitution of the fixtures.
func (c *Contact) ResetRestitution() {
	c.restitution = MixRestitution(c.fixtureA.restitution, c.fixtureB.restitution)
}

// SetTangentSpeed sets the desired surface speed in meters per second,
// used for conveyor belts.
func (c *Contact) SetTangentSpeed(speed float64) {
	c.tangentSpeed = speed
}

func (c *Contact) TangentSpeed() float64 {
	return c.tangentSpeed
}

// FlagForFiltering makes the next collide pass re-run the filters.
func (c *Contact) FlagForFiltering() {
	c.flags |= contactFilterFlag
}

// Evaluate computes the manifold for the given transforms.
func (c *Contact) Evaluate(m *collision.Manifold, xfA, xfB geom.Transform) {
	c.evaluate(m, c.fixtureA.shape, c.indexA, xfA, c.fixtureB.shape, c.indexB, xfB)
}

// update refreshes the manifold, carries matching impulses over for warm
// starting and fires the listener.
func (c *Contact) update(listener ContactListener) {
	oldManifold := c.manifold

	// re-enable this contact
	c.flags |= contactEnabledFlag

	touching := false
	wasTouching := c.flags&contactTouchingFlag != 0

	sensor := c.fixtureA.isSensor || c.fixtureB.isSensor

	bodyA := c.fixtureA.body
	bodyB := c.fixtureB.body
	xfA := bodyA.xf
	xfB := bodyB.xf

	if sensor {
		touching = collision.TestOverlap(c.fixtureA.shape, c.indexA, c.fixtureB.shape, c.indexB, xfA, xfB)

		// sensors don't generate manifolds
		c.manifold.PointCount = 0
	} else {
		c.evaluate(&c.manifold, c.fixtureA.shape, c.indexA, xfA, c.fixtureB.shape, c.indexB, xfB)
		touching = c.manifold.PointCount > 0

		// match old contact ids to new contact ids and copy the stored
		// impulses to warm start the solver
		for i := range c.manifold.PointCount {
			mp2 := &c.manifold.Points[i]
			mp2.NormalImpulse = 0
			mp2.TangentImpulse = 0
			id2 := mp2.ID.Key()

			for j := range oldManifold.PointCount {
				mp1 := &oldManifold.Points[j]
				if mp1.ID.Key() == id2 {
					mp2.NormalImpulse = mp1.NormalImpulse
					mp2.TangentImpulse = mp1.TangentImpulse
					break
				}
			}
		}

		if touching != wasTouching {
			bodyA.SetAwake(true)
			bodyB.SetAwake(true)
		}
	}

	if touching {
		c.flags |= contactTouchingFlag
	} else {
		c.flags &^= contactTouchingFlag
	}

	if listener == nil {
		return
	}
	if !wasTouching && touching {
		listener.BeginContact(c)
	}
	if wasTouching && !touching {
		listener.EndContact(c)
	}
	if !sensor && touching {
		listener.PreSolve(c, &oldManifold)
	}
}
