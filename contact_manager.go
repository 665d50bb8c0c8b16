package b2d

import (
	"log/slog"
	"sync"

	"github.com/setanarut/b2d/collision"
)

// contactManager owns the broad-phase and the world contact list.
type contactManager struct {
	broadPhase   *collision.BroadPhase[*FixtureProxy]
	contactList  *Contact
	contactCount int

	contactFilter   ContactFilter
	contactListener ContactListener
	registry        *collision.Registry

	pooledContacts sync.Pool
	logger         *slog.Logger
}

func newContactManager(registry *collision.Registry, logger *slog.Logger) *contactManager {
	return &contactManager{
		broadPhase:     collision.NewBroadPhase[*FixtureProxy](),
		contactFilter:  DefaultContactFilter{},
		registry:       registry,
		pooledContacts: sync.Pool{New: func() any { return &Contact{} }},
		logger:         logger,
	}
}

// addPair is the broad-phase callback for a new overlapping pair.
func (cm *contactManager) addPair(proxyA, proxyB *FixtureProxy) {
	fixtureA := proxyA.Fixture
	fixtureB := proxyB.Fixture

	indexA := proxyA.ChildIndex
	indexB := proxyB.ChildIndex

	bodyA := fixtureA.body
	bodyB := fixtureB.body

	// are the fixtures on the same body?
	if bodyA == bodyB {
		return
	}

	// does a contact already exist?
	for edge := bodyB.contactList; edge != nil; edge = edge.Next {
		if edge.Other != bodyA {
			continue
		}
		fA := edge.Contact.fixtureA
		fB := edge.Contact.fixtureB
		iA := edge.Contact.indexA
		iB := edge.Contact.indexB

		if fA == fixtureA && fB == fixtureB && iA == indexA && iB == indexB {
			return
		}
		if fA == fixtureB && fB == fixtureA && iA == indexB && iB == indexA {
			return
		}
	}

	// does a joint override collision? is at least one body dynamic?
	if !bodyB.shouldCollide(bodyA) {
		return
	}

	// check user filtering
	if cm.contactFilter != nil && !cm.contactFilter.ShouldCollide(fixtureA, fixtureB) {
		return
	}

	c := cm.create(fixtureA, indexA, fixtureB, indexB)
	if c == nil {
		return
	}

	// create may have swapped the fixtures
	bodyA = c.fixtureA.body
	bodyB = c.fixtureB.body

	// insert into the world
	c.prev = nil
	c.next = cm.contactList
	if cm.contactList != nil {
		cm.contactList.prev = c
	}
	cm.contactList = c

	// connect to island graph

	// connect to body A
	c.nodeA.Contact = c
	c.nodeA.Other = bodyB

	c.nodeA.Prev = nil
	c.nodeA.Next = bodyA.contactList
	if bodyA.contactList != nil {
		bodyA.contactList.Prev = &c.nodeA
	}
	bodyA.contactList = &c.nodeA

	// connect to body B
	c.nodeB.Contact = c
	c.nodeB.Other = bodyA

	c.nodeB.Prev = nil
	c.nodeB.Next = bodyB.contactList
	if bodyB.contactList != nil {
		bodyB.contactList.Prev = &c.nodeB
	}
	bodyB.contactList = &c.nodeB

	cm.contactCount++
}

// create takes a contact from the pool for a supported shape pair. The
// fixtures are swapped when the registry only knows the reverse order.
func (cm *contactManager) create(fixtureA *Fixture, indexA int, fixtureB *Fixture, indexB int) *Contact {
	fn, swap := cm.registry.Lookup(fixtureA.Type(), fixtureB.Type())
	if fn == nil {
		cm.logger.Debug("no collide function", "typeA", fixtureA.Type(), "typeB", fixtureB.Type())
		return nil
	}
	if swap {
		fixtureA, fixtureB = fixtureB, fixtureA
		indexA, indexB = indexB, indexA
	}

	c := cm.pooledContacts.Get().(*Contact)
	c.init(fixtureA, indexA, fixtureB, indexB, fn)
	return c
}

// findNewContacts reports the pairs of moved proxies to addPair.
func (cm *contactManager) findNewContacts() {
	cm.broadPhase.UpdatePairs(cm.addPair)
}

// destroy unlinks and recycles the contact. EndContact fires if it was touching.
func (cm *contactManager) destroy(c *Contact) {
	bodyA := c.fixtureA.body
	bodyB := c.fixtureB.body

	if cm.contactListener != nil && c.IsTouching() {
		cm.contactListener.EndContact(c)
	}

	// remove from the world
	if c.prev != nil {
		c.prev.next = c.next
	}
	if c.next != nil {
		c.next.prev = c.prev
	}
	if c == cm.contactList {
		cm.contactList = c.next
	}

	// remove from body A
	if c.nodeA.Prev != nil {
		c.nodeA.Prev.Next = c.nodeA.Next
	}
	if c.nodeA.Next != nil {
		c.nodeA.Next.Prev = c.nodeA.Prev
	}
	if &c.nodeA == bodyA.contactList {
		bodyA.contactList = c.nodeA.Next
	}

	// remove from body B
	if c.nodeB.Prev != nil {
		c.nodeB.Prev.Next = c.nodeB.Next
	}
	if c.nodeB.Next != nil {
		c.nodeB.Next.Prev = c.nodeB.Prev
	}
	if &c.nodeB == bodyB.contactList {
		bodyB.contactList = c.nodeB.Next
	}

	// wake the bodies if a solid contact goes away
	if c.manifold.PointCount > 0 && !c.fixtureA.isSensor && !c.fixtureB.isSensor {
		bodyA.SetAwake(true)
		bodyB.SetAwake(true)
	}

	*c = Contact{}
	cm.pooledContacts.Put(c)
	cm.contactCount--
}

// collide is the narrow phase. It drops contacts whose fat AABBs no longer
// overlap and updates the rest.
func (cm *contactManager) collide() {
	c := cm.contactList
	for c != nil {
		fixtureA := c.fixtureA
		fixtureB := c.fixtureB
		indexA := c.indexA
		indexB := c.indexB
		bodyA := fixtureA.body
		bodyB := fixtureB.body

		// is this contact flagged for filtering?
		if c.flags&contactFilterFlag != 0 {
			// should these bodies collide?
			if !bodyB.shouldCollide(bodyA) {
				next := c.next
				cm.destroy(c)
				c = next
				continue
			}

			// check user filtering
			if cm.contactFilter != nil && !cm.contactFilter.ShouldCollide(fixtureA, fixtureB) {
				next := c.next
				cm.destroy(c)
				c = next
				continue
			}

			// clear the filtering flag
			c.flags &^= contactFilterFlag
		}

		activeA := bodyA.IsAwake() && bodyA.bodyType != Static
		activeB := bodyB.IsAwake() && bodyB.bodyType != Static

		// at least one body must be awake and it must be dynamic or kinematic
		if !activeA && !activeB {
			c = c.next
			continue
		}

		proxyIDA := fixtureA.proxies[indexA].ProxyID
		proxyIDB := fixtureB.proxies[indexB].ProxyID

		// here we destroy contacts that cease to overlap in the broad-phase
		if !cm.broadPhase.TestOverlap(proxyIDA, proxyIDB) {
			next := c.next
			cm.destroy(c)
			c = next
			continue
		}

		// the contact persists
		c.update(cm.contactListener)
		c = c.next
	}
}
