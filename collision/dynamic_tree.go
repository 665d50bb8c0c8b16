package collision

import (
	"math"

	"github.com/setanarut/b2d/geom"
	"github.com/setanarut/b2d/internal/debug"
	"github.com/setanarut/vec"
)

// NullNode marks an absent node index.
const NullNode = -1

type treeNode[T any] struct {
	// aabb is the fat AABB for leaves and the union of the children otherwise.
	aabb     AABB
	userData T

	// parent while allocated, next free node while pooled
	parent int

	child1, child2 int

	// leaf = 0, free node = -1
	height int
}

func (n *treeNode[T]) IsLeaf() bool {
	return n.child1 == NullNode
}

// DynamicTree is a balanced AABB tree. Leaves are proxies holding a fat
// AABB and user data; internal nodes hold the union of their children.
// Nodes live in a growable array and are recycled through a free list, so
// proxy ids are stable array indices.
type DynamicTree[T any] struct {
	root      int
	nodes     []treeNode[T]
	nodeCount int
	freeList  int

	insertionCount int
}

// NewDynamicTree returns an empty tree with a small preallocated node pool.
func NewDynamicTree[T any]() *DynamicTree[T] {
	t := &DynamicTree[T]{root: NullNode}
	t.grow(16)
	return t
}

// grow extends the node array and threads the new nodes onto the free list.
func (t *DynamicTree[T]) grow(capacity int) {
	old := len(t.nodes)
	nodes := make([]treeNode[T], capacity)
	copy(nodes, t.nodes)
	for i := old; i < capacity-1; i++ {
		nodes[i].parent = i + 1
		nodes[i].height = -1
	}
	nodes[capacity-1].parent = NullNode
	nodes[capacity-1].height = -1
	t.nodes = nodes
	t.freeList = old
}

func (t *DynamicTree[T]) allocateNode() int {
	if t.freeList == NullNode {
		debug.Assert(t.nodeCount == len(t.nodes), "free list empty with %d of %d nodes used", t.nodeCount, len(t.nodes))
		t.grow(2 * len(t.nodes))
	}

	id := t.freeList
	n := &t.nodes[id]
	t.freeList = n.parent
	n.parent = NullNode
	n.child1 = NullNode
	n.child2 = NullNode
	n.height = 0
	var zero T
	n.userData = zero
	t.nodeCount++
	return id
}

func (t *DynamicTree[T]) freeNode(id int) {
	debug.Assert(0 <= id && id < len(t.nodes), "node %d out of range", id)
	var zero T
	t.nodes[id].userData = zero
	t.nodes[id].parent = t.freeList
	t.nodes[id].height = -1
	t.freeList = id
	t.nodeCount--
}

// CreateProxy inserts a leaf for aabb, fattened by AABBExtension, and
// returns its id.
func (t *DynamicTree[T]) CreateProxy(aabb AABB, userData T) int {
	id := t.allocateNode()
	t.nodes[id].aabb = aabb.Expand(AABBExtension)
	t.nodes[id].userData = userData
	t.nodes[id].height = 0
	t.insertLeaf(id)
	return id
}

// DestroyProxy removes the leaf id from the tree.
func (t *DynamicTree[T]) DestroyProxy(id int) {
	debug.Assert(t.nodes[id].IsLeaf(), "proxy %d is not a leaf", id)
	t.removeLeaf(id)
	t.freeNode(id)
}

// MoveProxy updates the leaf for a new tight aabb. If the stored fat AABB
// still contains aabb nothing changes and false is returned. Otherwise the
// leaf is reinserted with an AABB fattened by AABBExtension and predicted
// along displacement.
func (t *DynamicTree[T]) MoveProxy(id int, aabb AABB, displacement vec.Vec2) bool {
	debug.Assert(t.nodes[id].IsLeaf(), "proxy %d is not a leaf", id)
	if t.nodes[id].aabb.Contains(aabb) {
		return false
	}

	t.removeLeaf(id)

	b := aabb.Expand(AABBExtension)

	// predict AABB displacement
	d := displacement.Scale(AABBMultiplier)
	if d.X < 0 {
		b.Lower.X += d.X
	} else {
		b.Upper.X += d.X
	}
	if d.Y < 0 {
		b.Lower.Y += d.Y
	} else {
		b.Upper.Y += d.Y
	}

	t.nodes[id].aabb = b
	t.insertLeaf(id)
	return true
}

// UserData returns the data stored with proxy id.
func (t *DynamicTree[T]) UserData(id int) T {
	return t.nodes[id].userData
}

// FatAABB returns the fat AABB stored with proxy id.
func (t *DynamicTree[T]) FatAABB(id int) AABB {
	return t.nodes[id].aabb
}

// Query calls fn for every leaf whose fat AABB overlaps aabb until fn
// returns false.
func (t *DynamicTree[T]) Query(aabb AABB, fn func(proxyID int) bool) {
	var buf [256]int
	stack := append(buf[:0], t.root)

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == NullNode {
			continue
		}

		n := &t.nodes[id]
		if !n.aabb.Intersects(aabb) {
			continue
		}
		if n.IsLeaf() {
			if !fn(id) {
				return
			}
		} else {
			stack = append(stack, n.child1, n.child2)
		}
	}
}

// RayCastFunc is called for every leaf the ray may hit. Returning 0
// terminates the cast, a value in (0,1] clips the ray to that fraction and
// a negative value leaves it unchanged.
type RayCastFunc func(input RayCastInput, proxyID int) float64

// RayCast walks the leaves whose fat AABBs the ray crosses, tightening the
// ray as fn clips it.
func (t *DynamicTree[T]) RayCast(input RayCastInput, fn RayCastFunc) {
	p1 := input.P1
	p2 := input.P2
	r, _ := geom.Normalize(p2.Sub(p1))

	// v is perpendicular to the segment
	v := r.Perp()
	absV := geom.AbsV(v)

	// separating axis for segment (Gino, p80)
	// |dot(v, p1 - c)| > dot(|v|, h)

	maxFraction := input.MaxFraction

	segmentAABB := func() AABB {
		tp := p1.Add(p2.Sub(p1).Scale(maxFraction))
		return AABB{Lower: geom.MinV(p1, tp), Upper: geom.MaxV(p1, tp)}
	}
	segAABB := segmentAABB()

	var buf [256]int
	stack := append(buf[:0], t.root)

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == NullNode {
			continue
		}

		n := &t.nodes[id]
		if !n.aabb.Intersects(segAABB) {
			continue
		}

		c := n.aabb.Center()
		h := n.aabb.Extents()
		separation := math.Abs(v.Dot(p1.Sub(c))) - absV.Dot(h)
		if separation > 0 {
			continue
		}

		if n.IsLeaf() {
			subInput := RayCastInput{P1: input.P1, P2: input.P2, MaxFraction: maxFraction}
			value := fn(subInput, id)
			if value == 0 {
				// the client has terminated the ray cast
				return
			}
			if value > 0 {
				maxFraction = value
				segAABB = segmentAABB()
			}
		} else {
			stack = append(stack, n.child1, n.child2)
		}
	}
}

func (t *DynamicTree[T]) insertLeaf(leaf int) {
	t.insertionCount++

	if t.root == NullNode {
		t.root = leaf
		t.nodes[leaf].parent = NullNode
		return
	}

	// find the best sibling for this node
	leafAABB := t.nodes[leaf].aabb
	index := t.root
	for !t.nodes[index].IsLeaf() {
		n := &t.nodes[index]
		child1 := n.child1
		child2 := n.child2

		area := n.aabb.Perimeter()
		combinedArea := n.aabb.MergedPerimeter(leafAABB)

		// cost of creating a new parent for this node and the new leaf
		cost := 2 * combinedArea

		// minimum cost of pushing the leaf further down the tree
		inheritanceCost := 2 * (combinedArea - area)

		cost1 := t.descendCost(child1, leafAABB) + inheritanceCost
		cost2 := t.descendCost(child2, leafAABB) + inheritanceCost

		// descend according to the minimum cost
		if cost < cost1 && cost < cost2 {
			break
		}
		if cost1 < cost2 {
			index = child1
		} else {
			index = child2
		}
	}

	sibling := index

	// create a new parent
	oldParent := t.nodes[sibling].parent
	newParent := t.allocateNode()
	t.nodes[newParent].parent = oldParent
	t.nodes[newParent].aabb = leafAABB.Merge(t.nodes[sibling].aabb)
	t.nodes[newParent].height = t.nodes[sibling].height + 1

	if oldParent != NullNode {
		// the sibling was not the root
		if t.nodes[oldParent].child1 == sibling {
			t.nodes[oldParent].child1 = newParent
		} else {
			t.nodes[oldParent].child2 = newParent
		}
	} else {
		t.root = newParent
	}
	t.nodes[newParent].child1 = sibling
	t.nodes[newParent].child2 = leaf
	t.nodes[sibling].parent = newParent
	t.nodes[leaf].parent = newParent

	// walk back up the tree fixing heights and AABBs
	t.refit(t.nodes[leaf].parent)
}

// descendCost is the cost of pushing leafAABB into child.
func (t *DynamicTree[T]) descendCost(child int, leafAABB AABB) float64 {
	c := &t.nodes[child]
	if c.IsLeaf() {
		return c.aabb.MergedPerimeter(leafAABB)
	}
	return c.aabb.MergedPerimeter(leafAABB) - c.aabb.Perimeter()
}

func (t *DynamicTree[T]) removeLeaf(leaf int) {
	if leaf == t.root {
		t.root = NullNode
		return
	}

	parent := t.nodes[leaf].parent
	grandParent := t.nodes[parent].parent
	sibling := t.nodes[parent].child1
	if sibling == leaf {
		sibling = t.nodes[parent].child2
	}

	if grandParent != NullNode {
		// destroy parent and connect sibling to grandParent
		if t.nodes[grandParent].child1 == parent {
			t.nodes[grandParent].child1 = sibling
		} else {
			t.nodes[grandParent].child2 = sibling
		}
		t.nodes[sibling].parent = grandParent
		t.freeNode(parent)

		t.refit(grandParent)
	} else {
		t.root = sibling
		t.nodes[sibling].parent = NullNode
		t.freeNode(parent)
	}
}

// refit walks from index to the root, balancing and recomputing heights
// and AABBs.
func (t *DynamicTree[T]) refit(index int) {
	for index != NullNode {
		index = t.balance(index)

		child1 := t.nodes[index].child1
		child2 := t.nodes[index].child2
		debug.Assert(child1 != NullNode && child2 != NullNode, "internal node %d missing a child", index)

		t.nodes[index].height = 1 + max(t.nodes[child1].height, t.nodes[child2].height)
		t.nodes[index].aabb = t.nodes[child1].aabb.Merge(t.nodes[child2].aabb)

		index = t.nodes[index].parent
	}
}

// balance performs a left or right rotation if node iA is imbalanced and
// returns the new subtree root.
func (t *DynamicTree[T]) balance(iA int) int {
	A := &t.nodes[iA]
	if A.IsLeaf() || A.height < 2 {
		return iA
	}

	iB := A.child1
	iC := A.child2
	B := &t.nodes[iB]
	C := &t.nodes[iC]

	bal := C.height - B.height

	// rotate C up
	if bal > 1 {
		iF := C.child1
		iG := C.child2
		F := &t.nodes[iF]
		G := &t.nodes[iG]

		// swap A and C
		C.child1 = iA
		C.parent = A.parent
		A.parent = iC

		// A's old parent should point to C
		if C.parent != NullNode {
			if t.nodes[C.parent].child1 == iA {
				t.nodes[C.parent].child1 = iC
			} else {
				t.nodes[C.parent].child2 = iC
			}
		} else {
			t.root = iC
		}

		// rotate
		if F.height > G.height {
			C.child2 = iF
			A.child2 = iG
			G.parent = iA
			A.aabb = B.aabb.Merge(G.aabb)
			C.aabb = A.aabb.Merge(F.aabb)

			A.height = 1 + max(B.height, G.height)
			C.height = 1 + max(A.height, F.height)
		} else {
			C.child2 = iG
			A.child2 = iF
			F.parent = iA
			A.aabb = B.aabb.Merge(F.aabb)
			C.aabb = A.aabb.Merge(G.aabb)

			A.height = 1 + max(B.height, F.height)
			C.height = 1 + max(A.height, G.height)
		}
		return iC
	}

	// rotate B up
	if bal < -1 {
		iD := B.child1
		iE := B.child2
		D := &t.nodes[iD]
		E := &t.nodes[iE]

		// swap A and B
		B.child1 = iA
		B.parent = A.parent
		A.parent = iB

		// A's old parent should point to B
		if B.parent != NullNode {
			if t.nodes[B.parent].child1 == iA {
				t.nodes[B.parent].child1 = iB
			} else {
				t.nodes[B.parent].child2 = iB
			}
		} else {
			t.root = iB
		}

		// rotate
		if D.height > E.height {
			B.child2 = iD
			A.child1 = iE
			E.parent = iA
			A.aabb = C.aabb.Merge(E.aabb)
			B.aabb = A.aabb.Merge(D.aabb)

			A.height = 1 + max(C.height, E.height)
			B.height = 1 + max(A.height, D.height)
		} else {
			B.child2 = iE
			A.child1 = iD
			D.parent = iA
			A.aabb = C.aabb.Merge(D.aabb)
			B.aabb = A.aabb.Merge(E.aabb)

			A.height = 1 + max(C.height, D.height)
			B.height = 1 + max(A.height, E.height)
		}
		return iB
	}

	return iA
}

// Height returns the height of the tree, 0 for a single leaf or an empty tree.
func (t *DynamicTree[T]) Height() int {
	if t.root == NullNode {
		return 0
	}
	return t.nodes[t.root].height
}

// MaxBalance returns the largest height difference between two siblings.
func (t *DynamicTree[T]) MaxBalance() int {
	maxBalance := 0
	for i := range t.nodes {
		n := &t.nodes[i]
		if n.height <= 1 {
			continue
		}
		bal := abs(t.nodes[n.child2].height - t.nodes[n.child1].height)
		maxBalance = max(maxBalance, bal)
	}
	return maxBalance
}

// AreaRatio returns the summed perimeter of all nodes over the root perimeter.
func (t *DynamicTree[T]) AreaRatio() float64 {
	if t.root == NullNode {
		return 0
	}
	rootArea := t.nodes[t.root].aabb.Perimeter()
	totalArea := 0.0
	for i := range t.nodes {
		if t.nodes[i].height < 0 {
			// free node in pool
			continue
		}
		totalArea += t.nodes[i].aabb.Perimeter()
	}
	return totalArea / rootArea
}

// ShiftOrigin translates every node by -newOrigin.
func (t *DynamicTree[T]) ShiftOrigin(newOrigin vec.Vec2) {
	for i := range t.nodes {
		t.nodes[i].aabb = t.nodes[i].aabb.Offset(newOrigin.Neg())
	}
}

// RebuildBottomUp rebuilds the whole tree by greedily pairing the nodes
// with the smallest combined perimeter. It is slow but produces a good tree.
func (t *DynamicTree[T]) RebuildBottomUp() {
	leaves := make([]int, 0, t.nodeCount)

	// build array of leaves, free the rest
	for i := range t.nodes {
		if t.nodes[i].height < 0 {
			continue
		}
		if t.nodes[i].IsLeaf() {
			t.nodes[i].parent = NullNode
			leaves = append(leaves, i)
		} else {
			t.freeNode(i)
		}
	}

	for len(leaves) > 1 {
		minCost := maxFloat
		iMin, jMin := -1, -1
		for i := range leaves {
			aabbi := t.nodes[leaves[i]].aabb
			for j := i + 1; j < len(leaves); j++ {
				cost := aabbi.MergedPerimeter(t.nodes[leaves[j]].aabb)
				if cost < minCost {
					iMin, jMin = i, j
					minCost = cost
				}
			}
		}

		index1 := leaves[iMin]
		index2 := leaves[jMin]

		parent := t.allocateNode()
		t.nodes[parent].child1 = index1
		t.nodes[parent].child2 = index2
		t.nodes[parent].height = 1 + max(t.nodes[index1].height, t.nodes[index2].height)
		t.nodes[parent].aabb = t.nodes[index1].aabb.Merge(t.nodes[index2].aabb)
		t.nodes[parent].parent = NullNode

		t.nodes[index1].parent = parent
		t.nodes[index2].parent = parent

		leaves[jMin] = leaves[len(leaves)-1]
		leaves[iMin] = parent
		leaves = leaves[:len(leaves)-1]
	}

	if len(leaves) == 1 {
		t.root = leaves[0]
	} else {
		t.root = NullNode
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
