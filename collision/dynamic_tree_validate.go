package collision

import "fmt"

// Validate checks the tree structure and cached metrics: parent links,
// heights, enclosing AABBs and free list accounting. It is meant for tests
// and debugging.
func (t *DynamicTree[T]) Validate() error {
	if t.root != NullNode && t.nodes[t.root].parent != NullNode {
		return fmt.Errorf("root %d has parent %d", t.root, t.nodes[t.root].parent)
	}
	if err := t.validateNode(t.root); err != nil {
		return err
	}

	freeCount := 0
	for id := t.freeList; id != NullNode; id = t.nodes[id].parent {
		if id < 0 || id >= len(t.nodes) {
			return fmt.Errorf("free list index %d out of range", id)
		}
		freeCount++
	}
	if got := t.computeHeight(t.root); got != t.Height() {
		return fmt.Errorf("root height %d, computed %d", t.Height(), got)
	}
	if t.nodeCount+freeCount != len(t.nodes) {
		return fmt.Errorf("%d used + %d free != capacity %d", t.nodeCount, freeCount, len(t.nodes))
	}
	return nil
}

func (t *DynamicTree[T]) validateNode(index int) error {
	if index == NullNode {
		return nil
	}
	n := &t.nodes[index]
	if n.height < 0 {
		return fmt.Errorf("node %d is on the free list", index)
	}

	if n.IsLeaf() {
		if n.child2 != NullNode {
			return fmt.Errorf("leaf %d has child2 %d", index, n.child2)
		}
		if n.height != 0 {
			return fmt.Errorf("leaf %d has height %d", index, n.height)
		}
		return nil
	}

	c1, c2 := &t.nodes[n.child1], &t.nodes[n.child2]
	if c1.parent != index || c2.parent != index {
		return fmt.Errorf("children of %d do not point back", index)
	}
	if h := 1 + max(c1.height, c2.height); n.height != h {
		return fmt.Errorf("node %d height %d, want %d", index, n.height, h)
	}
	if !n.aabb.Contains(c1.aabb) || !n.aabb.Contains(c2.aabb) {
		return fmt.Errorf("node %d does not enclose its children", index)
	}
	if u := c1.aabb.Merge(c2.aabb); u != n.aabb {
		return fmt.Errorf("node %d aabb %v, want union %v", index, n.aabb, u)
	}

	if err := t.validateNode(n.child1); err != nil {
		return err
	}
	return t.validateNode(n.child2)
}

func (t *DynamicTree[T]) computeHeight(index int) int {
	if index == NullNode {
		return 0
	}
	n := &t.nodes[index]
	if n.IsLeaf() {
		return 0
	}
	return 1 + max(t.computeHeight(n.child1), t.computeHeight(n.child2))
}
