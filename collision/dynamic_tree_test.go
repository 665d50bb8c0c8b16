package collision_test

import (
	"math"
	"math/rand"
	"slices"
	"testing"

	"github.com/setanarut/b2d/collision"
	"github.com/setanarut/vec"
)

func randomAABB(r *rand.Rand) collision.AABB {
	x := r.Float64()*100 - 50
	y := r.Float64()*100 - 50
	w := 0.1 + r.Float64()*3
	h := 0.1 + r.Float64()*3
	return box(x, y, x+w, y+h)
}

func TestDynamicTreeInvariants(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	tree := collision.NewDynamicTree[int]()
	live := map[int]int{}

	for i := range 200 {
		id := tree.CreateProxy(randomAABB(r), i)
		live[id] = i
		if err := tree.Validate(); err != nil {
			t.Fatalf("after insert %d: %v", i, err)
		}
	}

	ids := make([]int, 0, len(live))
	for id := range live {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for i, id := range ids {
		if i%3 == 0 {
			aabb := randomAABB(r)
			tree.MoveProxy(id, aabb, vec.Vec2{X: 1, Y: -1})
			if fat := tree.FatAABB(id); !fat.Contains(aabb) {
				t.Fatalf("fat aabb %v does not contain %v", fat, aabb)
			}
		}
		if i%2 == 0 {
			tree.DestroyProxy(id)
			delete(live, id)
		}
		if err := tree.Validate(); err != nil {
			t.Fatalf("after update of %d: %v", id, err)
		}
	}

	for id, data := range live {
		if got := tree.UserData(id); got != data {
			t.Errorf("user data for %d: got %d want %d", id, got, data)
		}
	}

	// 100 leaves remain; a balanced tree stays shallow
	if h := tree.Height(); h > 20 {
		t.Errorf("height %d, max balance %d", h, tree.MaxBalance())
	}

	tree.RebuildBottomUp()
	if err := tree.Validate(); err != nil {
		t.Fatalf("after rebuild: %v", err)
	}
	if ratio := tree.AreaRatio(); ratio < 1 {
		t.Errorf("area ratio %v below 1", ratio)
	}
}

func TestDynamicTreeQuery(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	tree := collision.NewDynamicTree[int]()
	var ids []int
	for i := range 120 {
		ids = append(ids, tree.CreateProxy(randomAABB(r), i))
	}

	for range 20 {
		q := randomAABB(r)
		q.Upper = q.Upper.Add(vec.Vec2{X: 10, Y: 10})

		var want []int
		for _, id := range ids {
			if tree.FatAABB(id).Intersects(q) {
				want = append(want, id)
			}
		}
		var got []int
		tree.Query(q, func(id int) bool {
			got = append(got, id)
			return true
		})
		slices.Sort(got)
		slices.Sort(want)
		if !slices.Equal(got, want) {
			t.Fatalf("query %v: got %v want %v", q, got, want)
		}
	}
}

func TestDynamicTreeMoveWithinFatAABB(t *testing.T) {
	tree := collision.NewDynamicTree[string]()
	id := tree.CreateProxy(box(0, 0, 1, 1), "a")

	if tree.MoveProxy(id, box(0.05, 0.05, 1.05, 1.05), vec.Vec2{X: 0.05, Y: 0.05}) {
		t.Error("small move inside the fat aabb should not reinsert")
	}
	if !tree.MoveProxy(id, box(5, 5, 6, 6), vec.Vec2{X: 5, Y: 5}) {
		t.Error("large move should reinsert")
	}
	fat := tree.FatAABB(id)
	// displacement is predicted on the upper side only
	if fat.Upper.X < 6+collision.AABBExtension+collision.AABBMultiplier*5-1e-9 {
		t.Errorf("fat aabb %v lacks displacement prediction", fat)
	}
	if math.Abs(fat.Lower.X-(5-collision.AABBExtension)) > 1e-12 {
		t.Errorf("fat aabb %v lower bound", fat)
	}
}

func TestDynamicTreeRayCast(t *testing.T) {
	tree := collision.NewDynamicTree[int]()
	near := tree.CreateProxy(box(2, -1, 3, 1), 0)
	far := tree.CreateProxy(box(6, -1, 7, 1), 1)
	tree.CreateProxy(box(2, 5, 3, 6), 2)

	var hits []int
	in := collision.RayCastInput{P1: vec.Vec2{X: 0, Y: 0}, P2: vec.Vec2{X: 10, Y: 0}, MaxFraction: 1}
	tree.RayCast(in, func(in collision.RayCastInput, id int) float64 {
		hits = append(hits, id)
		return -1
	})
	slices.Sort(hits)
	if !slices.Equal(hits, []int{near, far}) {
		t.Errorf("got %v want %v", hits, []int{near, far})
	}

	// clipping at the near box prunes the far one
	hits = hits[:0]
	tree.RayCast(in, func(in collision.RayCastInput, id int) float64 {
		hits = append(hits, id)
		if id == near {
			return 0.2
		}
		return -1
	})
	if slices.Contains(hits, far) && hits[0] == near {
		t.Errorf("far box visited after clip: %v", hits)
	}

	// returning 0 stops immediately
	calls := 0
	tree.RayCast(in, func(collision.RayCastInput, int) float64 {
		calls++
		return 0
	})
	if calls != 1 {
		t.Errorf("terminate: got %d calls", calls)
	}
}

func TestDynamicTreeShiftOrigin(t *testing.T) {
	tree := collision.NewDynamicTree[int]()
	id := tree.CreateProxy(box(10, 10, 11, 11), 0)
	before := tree.FatAABB(id)
	tree.ShiftOrigin(vec.Vec2{X: 10, Y: 10})
	after := tree.FatAABB(id)
	if after.Lower.X != before.Lower.X-10 || after.Upper.Y != before.Upper.Y-10 {
		t.Errorf("got %v from %v", after, before)
	}
}
