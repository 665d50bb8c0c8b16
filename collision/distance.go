package collision

import (
	"github.com/setanarut/b2d/geom"
	"github.com/setanarut/vec"
)

const maxDistanceIterations = 20

// DistanceProxy is a convex vertex set with a skin radius, the form every
// shape child takes for GJK.
type DistanceProxy struct {
	Vertices []vec.Vec2
	Radius   float64
}

// NewDistanceProxy returns the proxy for child index of shape.
func NewDistanceProxy(shape Shape, index int) DistanceProxy {
	return shape.Proxy(index)
}

// Support returns the index of the vertex furthest along d.
func (p *DistanceProxy) Support(d vec.Vec2) int {
	bestIndex := 0
	bestValue := p.Vertices[0].Dot(d)
	for i := 1; i < len(p.Vertices); i++ {
		if value := p.Vertices[i].Dot(d); value > bestValue {
			bestIndex = i
			bestValue = value
		}
	}
	return bestIndex
}

// SupportVertex returns the vertex furthest along d.
func (p *DistanceProxy) SupportVertex(d vec.Vec2) vec.Vec2 {
	return p.Vertices[p.Support(d)]
}

// Vertex returns vertex i.
func (p *DistanceProxy) Vertex(i int) vec.Vec2 {
	return p.Vertices[i]
}

// SimplexCache stores the final simplex of a distance query so the next
// query on the same pair can warm start. Count == 0 means empty.
type SimplexCache struct {
	// Metric is the length or area of the cached simplex.
	Metric float64
	Count  int
	IndexA [3]int
	IndexB [3]int
}

// DistanceInput holds two proxies and their transforms. With UseRadii the
// result is measured between the rounded shapes instead of their cores.
type DistanceInput struct {
	ProxyA, ProxyB         DistanceProxy
	TransformA, TransformB geom.Transform
	UseRadii               bool
}

// DistanceOutput holds the closest points and their distance.
type DistanceOutput struct {
	PointA, PointB vec.Vec2 // closest point on shape A and shape B
	Distance       float64
	Iterations     int // number of GJK iterations used
}

type simplexVertex struct {
	wA     vec.Vec2 // support point in proxyA
	wB     vec.Vec2 // support point in proxyB
	w      vec.Vec2 // wB - wA
	a      float64  // barycentric coordinate for closest point
	indexA int
	indexB int
}

type simplex struct {
	v     [3]simplexVertex
	count int
}

func (s *simplex) readCache(cache *SimplexCache, proxyA *DistanceProxy, xfA geom.Transform, proxyB *DistanceProxy, xfB geom.Transform) {
	// copy data from cache
	s.count = cache.Count
	for i := range s.count {
		v := &s.v[i]
		v.indexA = cache.IndexA[i]
		v.indexB = cache.IndexB[i]
		v.wA = xfA.Apply(proxyA.Vertex(v.indexA))
		v.wB = xfB.Apply(proxyB.Vertex(v.indexB))
		v.w = v.wB.Sub(v.wA)
		v.a = 0
	}

	// flush the simplex if the metric changed a lot
	if s.count > 1 {
		metric1 := cache.Metric
		metric2 := s.metric()
		if metric2 < 0.5*metric1 || 2*metric1 < metric2 || metric2 < Epsilon {
			s.count = 0
		}
	}

	// an empty simplex starts from the first vertices
	if s.count == 0 {
		v := &s.v[0]
		v.indexA = 0
		v.indexB = 0
		v.wA = xfA.Apply(proxyA.Vertex(0))
		v.wB = xfB.Apply(proxyB.Vertex(0))
		v.w = v.wB.Sub(v.wA)
		v.a = 1
		s.count = 1
	}
}

func (s *simplex) writeCache(cache *SimplexCache) {
	cache.Metric = s.metric()
	cache.Count = s.count
	for i := range s.count {
		cache.IndexA[i] = s.v[i].indexA
		cache.IndexB[i] = s.v[i].indexB
	}
}

func (s *simplex) searchDirection() vec.Vec2 {
	switch s.count {
	case 1:
		return s.v[0].w.Neg()
	case 2:
		e12 := s.v[1].w.Sub(s.v[0].w)
		sgn := e12.Cross(s.v[0].w.Neg())
		if sgn > 0 {
			// origin is left of e12
			return e12.Perp()
		}
		// origin is right of e12
		return e12.ReversePerp()
	default:
		return vec.Vec2{}
	}
}

func (s *simplex) closestPoint() vec.Vec2 {
	switch s.count {
	case 1:
		return s.v[0].w
	case 2:
		return s.v[0].w.Scale(s.v[0].a).Add(s.v[1].w.Scale(s.v[1].a))
	default:
		return vec.Vec2{}
	}
}

func (s *simplex) witnessPoints() (pA, pB vec.Vec2) {
	switch s.count {
	case 1:
		return s.v[0].wA, s.v[0].wB
	case 2:
		pA = s.v[0].wA.Scale(s.v[0].a).Add(s.v[1].wA.Scale(s.v[1].a))
		pB = s.v[0].wB.Scale(s.v[0].a).Add(s.v[1].wB.Scale(s.v[1].a))
		return pA, pB
	case 3:
		pA = s.v[0].wA.Scale(s.v[0].a).Add(s.v[1].wA.Scale(s.v[1].a)).Add(s.v[2].wA.Scale(s.v[2].a))
		return pA, pA
	default:
		return vec.Vec2{}, vec.Vec2{}
	}
}

func (s *simplex) metric() float64 {
	switch s.count {
	case 2:
		return s.v[0].w.Distance(s.v[1].w)
	case 3:
		return s.v[1].w.Sub(s.v[0].w).Cross(s.v[2].w.Sub(s.v[0].w))
	default:
		return 0
	}
}

// solve2 reduces a line segment simplex to the feature closest to the
// origin using barycentric coordinates.
//
//	p = a1 * w1 + a2 * w2, a1 + a2 = 1
//
// The vector from the origin to the closest point is orthogonal to e12.
func (s *simplex) solve2() {
	w1 := s.v[0].w
	w2 := s.v[1].w
	e12 := w2.Sub(w1)

	// w1 region
	d12n2 := -w1.Dot(e12)
	if d12n2 <= 0 {
		// a2 <= 0, so we clamp it to 0
		s.v[0].a = 1
		s.count = 1
		return
	}

	// w2 region
	d12n1 := w2.Dot(e12)
	if d12n1 <= 0 {
		// a1 <= 0, so we clamp it to 0
		s.v[1].a = 1
		s.count = 1
		s.v[0] = s.v[1]
		return
	}

	// must be in e12 region
	inv := 1 / (d12n1 + d12n2)
	s.v[0].a = d12n1 * inv
	s.v[1].a = d12n2 * inv
	s.count = 2
}

// solve3 reduces a triangle simplex. It tests the three vertex regions,
// the three edge regions and the interior.
func (s *simplex) solve3() {
	w1 := s.v[0].w
	w2 := s.v[1].w
	w3 := s.v[2].w

	// edge12
	e12 := w2.Sub(w1)
	d12n1 := w2.Dot(e12)
	d12n2 := -w1.Dot(e12)

	// edge13
	e13 := w3.Sub(w1)
	d13n1 := w3.Dot(e13)
	d13n2 := -w1.Dot(e13)

	// edge23
	e23 := w3.Sub(w2)
	d23n1 := w3.Dot(e23)
	d23n2 := -w2.Dot(e23)

	// triangle123
	n123 := e12.Cross(e13)

	d123n1 := n123 * w2.Cross(w3)
	d123n2 := n123 * w3.Cross(w1)
	d123n3 := n123 * w1.Cross(w2)

	// w1 region
	if d12n2 <= 0 && d13n2 <= 0 {
		s.v[0].a = 1
		s.count = 1
		return
	}

	// e12
	if d12n1 > 0 && d12n2 > 0 && d123n3 <= 0 {
		inv := 1 / (d12n1 + d12n2)
		s.v[0].a = d12n1 * inv
		s.v[1].a = d12n2 * inv
		s.count = 2
		return
	}

	// e13
	if d13n1 > 0 && d13n2 > 0 && d123n2 <= 0 {
		inv := 1 / (d13n1 + d13n2)
		s.v[0].a = d13n1 * inv
		s.v[2].a = d13n2 * inv
		s.count = 2
		s.v[1] = s.v[2]
		return
	}

	// w2 region
	if d12n1 <= 0 && d23n2 <= 0 {
		s.v[1].a = 1
		s.count = 1
		s.v[0] = s.v[1]
		return
	}

	// w3 region
	if d13n1 <= 0 && d23n1 <= 0 {
		s.v[2].a = 1
		s.count = 1
		s.v[0] = s.v[2]
		return
	}

	// e23
	if d23n1 > 0 && d23n2 > 0 && d123n1 <= 0 {
		inv := 1 / (d23n1 + d23n2)
		s.v[1].a = d23n1 * inv
		s.v[2].a = d23n2 * inv
		s.count = 2
		s.v[0] = s.v[2]
		return
	}

	// must be in triangle123
	inv := 1 / (d123n1 + d123n2 + d123n3)
	s.v[0].a = d123n1 * inv
	s.v[1].a = d123n2 * inv
	s.v[2].a = d123n3 * inv
	s.count = 3
}

// Distance computes the closest points between two convex proxies with
// GJK. The cache is read to warm start the simplex and overwritten with
// the final one; pass a zero cache on the first call.
func Distance(cache *SimplexCache, input *DistanceInput) DistanceOutput {
	var out DistanceOutput

	proxyA := &input.ProxyA
	proxyB := &input.ProxyB
	xfA := input.TransformA
	xfB := input.TransformB

	var s simplex
	s.readCache(cache, proxyA, xfA, proxyB, xfB)

	// vertices of the last simplex, used to detect cycling
	var saveA, saveB [3]int

	iter := 0
	for iter < maxDistanceIterations {
		saveCount := s.count
		for i := range saveCount {
			saveA[i] = s.v[i].indexA
			saveB[i] = s.v[i].indexB
		}

		switch s.count {
		case 2:
			s.solve2()
		case 3:
			s.solve3()
		}

		// a triangle simplex means the origin is inside: overlap
		if s.count == 3 {
			break
		}

		d := s.searchDirection()

		// the origin is probably contained by a line segment or triangle
		if d.LengthSq() < Epsilon*Epsilon {
			break
		}

		// compute a tentative new simplex vertex using support points
		v := &s.v[s.count]
		v.indexA = proxyA.Support(xfA.Q.ApplyT(d.Neg()))
		v.wA = xfA.Apply(proxyA.Vertex(v.indexA))
		v.indexB = proxyB.Support(xfB.Q.ApplyT(d))
		v.wB = xfB.Apply(proxyB.Vertex(v.indexB))
		v.w = v.wB.Sub(v.wA)

		iter++

		// a repeated support point means no further progress
		duplicate := false
		for i := range saveCount {
			if v.indexA == saveA[i] && v.indexB == saveB[i] {
				duplicate = true
				break
			}
		}
		if duplicate {
			break
		}

		s.count++
	}

	out.PointA, out.PointB = s.witnessPoints()
	out.Distance = out.PointA.Distance(out.PointB)
	out.Iterations = iter

	s.writeCache(cache)

	// apply radii if requested
	if input.UseRadii {
		rA := proxyA.Radius
		rB := proxyB.Radius

		if out.Distance > rA+rB && out.Distance > Epsilon {
			// shapes are still not overlapped; move the witness points to the outer surface
			out.Distance -= rA + rB
			normal, _ := geom.Normalize(out.PointB.Sub(out.PointA))
			out.PointA = out.PointA.Add(normal.Scale(rA))
			out.PointB = out.PointB.Sub(normal.Scale(rB))
		} else {
			// shapes are overlapped when radii are considered; use the midpoint
			p := out.PointA.Add(out.PointB).Scale(0.5)
			out.PointA = p
			out.PointB = p
			out.Distance = 0
		}
	}
	return out
}

// TestOverlap reports whether two shape children overlap, skins included.
func TestOverlap(shapeA Shape, indexA int, shapeB Shape, indexB int, xfA, xfB geom.Transform) bool {
	input := DistanceInput{
		ProxyA:     shapeA.Proxy(indexA),
		ProxyB:     shapeB.Proxy(indexB),
		TransformA: xfA,
		TransformB: xfB,
		UseRadii:   true,
	}
	var cache SimplexCache
	out := Distance(&cache, &input)
	return out.Distance < 10*Epsilon
}
