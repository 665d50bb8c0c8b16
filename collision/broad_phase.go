package collision

import (
	"cmp"
	"slices"

	"github.com/setanarut/vec"
)

// NullProxy marks an absent proxy id.
const NullProxy = -1

type proxyPair struct {
	a, b int
}

// BroadPhase sits on top of a DynamicTree and reports the proxy pairs whose
// fat AABBs start to overlap. Proxies moved since the last update are kept
// in a move buffer and only those are queried.
type BroadPhase[T any] struct {
	tree       *DynamicTree[T]
	proxyCount int

	moveBuffer []int
	pairBuffer []proxyPair

	queryProxyID int
}

// NewBroadPhase returns an empty broad phase.
func NewBroadPhase[T any]() *BroadPhase[T] {
	return &BroadPhase[T]{
		tree:       NewDynamicTree[T](),
		moveBuffer: make([]int, 0, 16),
		pairBuffer: make([]proxyPair, 0, 16),
	}
}

// CreateProxy inserts aabb and buffers the new proxy for pairing.
func (bp *BroadPhase[T]) CreateProxy(aabb AABB, userData T) int {
	id := bp.tree.CreateProxy(aabb, userData)
	bp.proxyCount++
	bp.bufferMove(id)
	return id
}

// DestroyProxy removes the proxy. No pairs are reported for it afterwards.
func (bp *BroadPhase[T]) DestroyProxy(id int) {
	bp.unbufferMove(id)
	bp.proxyCount--
	bp.tree.DestroyProxy(id)
}

// MoveProxy updates the proxy for a new tight aabb. It returns true when
// the fat AABB had to be enlarged and the proxy was buffered.
func (bp *BroadPhase[T]) MoveProxy(id int, aabb AABB, displacement vec.Vec2) bool {
	if bp.tree.MoveProxy(id, aabb, displacement) {
		bp.bufferMove(id)
		return true
	}
	return false
}

// TouchProxy buffers the proxy so its pairs are re-reported by the next
// UpdatePairs call.
func (bp *BroadPhase[T]) TouchProxy(id int) {
	bp.bufferMove(id)
}

// FatAABB returns the fat AABB of the proxy.
func (bp *BroadPhase[T]) FatAABB(id int) AABB {
	return bp.tree.FatAABB(id)
}

// UserData returns the data stored with the proxy.
func (bp *BroadPhase[T]) UserData(id int) T {
	return bp.tree.UserData(id)
}

// TestOverlap reports whether two proxies' fat AABBs overlap.
func (bp *BroadPhase[T]) TestOverlap(a, b int) bool {
	return bp.tree.FatAABB(a).Intersects(bp.tree.FatAABB(b))
}

// ProxyCount returns the number of live proxies.
func (bp *BroadPhase[T]) ProxyCount() int {
	return bp.proxyCount
}

// Tree exposes the underlying tree for statistics and validation.
func (bp *BroadPhase[T]) Tree() *DynamicTree[T] {
	return bp.tree
}

// UpdatePairs queries every buffered proxy against the tree and calls fn
// once for each new overlapping pair. The move buffer is cleared.
func (bp *BroadPhase[T]) UpdatePairs(fn func(a, b T)) {
	bp.pairBuffer = bp.pairBuffer[:0]

	for _, id := range bp.moveBuffer {
		bp.queryProxyID = id
		if id == NullProxy {
			continue
		}
		// any overlapping leaf becomes a pair candidate
		bp.tree.Query(bp.tree.FatAABB(id), bp.queryCallback)
	}
	bp.moveBuffer = bp.moveBuffer[:0]

	// sort so duplicates are adjacent
	slices.SortFunc(bp.pairBuffer, func(p, q proxyPair) int {
		if c := cmp.Compare(p.a, q.a); c != 0 {
			return c
		}
		return cmp.Compare(p.b, q.b)
	})

	for i := 0; i < len(bp.pairBuffer); {
		primary := bp.pairBuffer[i]
		fn(bp.tree.UserData(primary.a), bp.tree.UserData(primary.b))
		i++

		// skip duplicate pairs
		for i < len(bp.pairBuffer) && bp.pairBuffer[i] == primary {
			i++
		}
	}
}

func (bp *BroadPhase[T]) queryCallback(proxyID int) bool {
	// a proxy cannot form a pair with itself
	if proxyID == bp.queryProxyID {
		return true
	}
	bp.pairBuffer = append(bp.pairBuffer, proxyPair{
		a: min(proxyID, bp.queryProxyID),
		b: max(proxyID, bp.queryProxyID),
	})
	return true
}

// Query calls fn for every proxy whose fat AABB overlaps aabb.
func (bp *BroadPhase[T]) Query(aabb AABB, fn func(proxyID int) bool) {
	bp.tree.Query(aabb, fn)
}

// RayCast casts a ray against the proxies. See DynamicTree.RayCast.
func (bp *BroadPhase[T]) RayCast(input RayCastInput, fn RayCastFunc) {
	bp.tree.RayCast(input, fn)
}

// ShiftOrigin translates every proxy by -newOrigin.
func (bp *BroadPhase[T]) ShiftOrigin(newOrigin vec.Vec2) {
	bp.tree.ShiftOrigin(newOrigin)
}

func (bp *BroadPhase[T]) bufferMove(id int) {
	bp.moveBuffer = append(bp.moveBuffer, id)
}

func (bp *BroadPhase[T]) unbufferMove(id int) {
	for i, m := range bp.moveBuffer {
		if m == id {
			bp.moveBuffer[i] = NullProxy
		}
	}
}
