package collision

import (
	"math"

	"github.com/setanarut/b2d/geom"
	"github.com/setanarut/vec"
)

const (
	maxTOIIterations     = 20
	maxTOIRootIterations = 50
)

// TOIInput holds two proxies and their sweeps over [0, TMax].
type TOIInput struct {
	ProxyA, ProxyB DistanceProxy
	SweepA, SweepB geom.Sweep
	TMax           float64 // defines the sweep interval [0, TMax]
}

// TOIState is the outcome of a time of impact query.
type TOIState int

const (
	TOIUnknown TOIState = iota
	TOIFailed
	TOIOverlapped
	TOITouching
	TOISeparated
)

func (s TOIState) String() string {
	switch s {
	case TOIFailed:
		return "failed"
	case TOIOverlapped:
		return "overlapped"
	case TOITouching:
		return "touching"
	case TOISeparated:
		return "separated"
	default:
		return "unknown"
	}
}

// TOIOutput holds the state and the time in [0, TMax] it refers to.
type TOIOutput struct {
	State TOIState
	T     float64
}

type separationType int

const (
	separationPoints separationType = iota
	separationFaceA
	separationFaceB
)

// separationFunction measures the signed distance between two proxies
// along an axis fixed in one of them, as a function of sweep time.
type separationFunction struct {
	proxyA, proxyB *DistanceProxy
	sweepA, sweepB geom.Sweep
	kind           separationType
	localPoint     vec.Vec2
	axis           vec.Vec2
}

// initialize builds the axis from the cached simplex and returns the
// separation at t1.
func (f *separationFunction) initialize(cache *SimplexCache, proxyA *DistanceProxy, sweepA geom.Sweep, proxyB *DistanceProxy, sweepB geom.Sweep, t1 float64) float64 {
	f.proxyA = proxyA
	f.proxyB = proxyB
	f.sweepA = sweepA
	f.sweepB = sweepB

	xfA := f.sweepA.Transform(t1)
	xfB := f.sweepB.Transform(t1)

	if cache.Count == 1 {
		f.kind = separationPoints
		localPointA := proxyA.Vertex(cache.IndexA[0])
		localPointB := proxyB.Vertex(cache.IndexB[0])
		pointA := xfA.Apply(localPointA)
		pointB := xfB.Apply(localPointB)
		var s float64
		f.axis, s = geom.Normalize(pointB.Sub(pointA))
		return s
	}

	if cache.IndexA[0] == cache.IndexA[1] {
		// two points on B and one on A
		f.kind = separationFaceB
		localPointB1 := proxyB.Vertex(cache.IndexB[0])
		localPointB2 := proxyB.Vertex(cache.IndexB[1])

		f.axis, _ = geom.Normalize(geom.CrossVS(localPointB2.Sub(localPointB1), 1))
		normal := xfB.Q.Apply(f.axis)

		f.localPoint = localPointB1.Add(localPointB2).Scale(0.5)
		pointB := xfB.Apply(f.localPoint)

		localPointA := proxyA.Vertex(cache.IndexA[0])
		pointA := xfA.Apply(localPointA)

		s := pointA.Sub(pointB).Dot(normal)
		if s < 0 {
			f.axis = f.axis.Neg()
			s = -s
		}
		return s
	}

	// two points on A and one or two points on B
	f.kind = separationFaceA
	localPointA1 := proxyA.Vertex(cache.IndexA[0])
	localPointA2 := proxyA.Vertex(cache.IndexA[1])

	f.axis, _ = geom.Normalize(geom.CrossVS(localPointA2.Sub(localPointA1), 1))
	normal := xfA.Q.Apply(f.axis)

	f.localPoint = localPointA1.Add(localPointA2).Scale(0.5)
	pointA := xfA.Apply(f.localPoint)

	localPointB := proxyB.Vertex(cache.IndexB[0])
	pointB := xfB.Apply(localPointB)

	s := pointB.Sub(pointA).Dot(normal)
	if s < 0 {
		f.axis = f.axis.Neg()
		s = -s
	}
	return s
}

// findMinSeparation returns the deepest points along the axis at time t
// and their separation.
func (f *separationFunction) findMinSeparation(t float64) (indexA, indexB int, sep float64) {
	xfA := f.sweepA.Transform(t)
	xfB := f.sweepB.Transform(t)

	switch f.kind {
	case separationPoints:
		axisA := xfA.Q.ApplyT(f.axis)
		axisB := xfB.Q.ApplyT(f.axis.Neg())

		indexA = f.proxyA.Support(axisA)
		indexB = f.proxyB.Support(axisB)

		pointA := xfA.Apply(f.proxyA.Vertex(indexA))
		pointB := xfB.Apply(f.proxyB.Vertex(indexB))
		return indexA, indexB, pointB.Sub(pointA).Dot(f.axis)

	case separationFaceA:
		normal := xfA.Q.Apply(f.axis)
		pointA := xfA.Apply(f.localPoint)

		axisB := xfB.Q.ApplyT(normal.Neg())

		indexA = -1
		indexB = f.proxyB.Support(axisB)

		pointB := xfB.Apply(f.proxyB.Vertex(indexB))
		return indexA, indexB, pointB.Sub(pointA).Dot(normal)

	case separationFaceB:
		normal := xfB.Q.Apply(f.axis)
		pointB := xfB.Apply(f.localPoint)

		axisA := xfA.Q.ApplyT(normal.Neg())

		indexB = -1
		indexA = f.proxyA.Support(axisA)

		pointA := xfA.Apply(f.proxyA.Vertex(indexA))
		return indexA, indexB, pointA.Sub(pointB).Dot(normal)
	}
	return -1, -1, 0
}

// evaluate returns the separation of the given points along the axis at time t.
func (f *separationFunction) evaluate(indexA, indexB int, t float64) float64 {
	xfA := f.sweepA.Transform(t)
	xfB := f.sweepB.Transform(t)

	switch f.kind {
	case separationPoints:
		pointA := xfA.Apply(f.proxyA.Vertex(indexA))
		pointB := xfB.Apply(f.proxyB.Vertex(indexB))
		return pointB.Sub(pointA).Dot(f.axis)

	case separationFaceA:
		normal := xfA.Q.Apply(f.axis)
		pointA := xfA.Apply(f.localPoint)
		pointB := xfB.Apply(f.proxyB.Vertex(indexB))
		return pointB.Sub(pointA).Dot(normal)

	case separationFaceB:
		normal := xfB.Q.Apply(f.axis)
		pointB := xfB.Apply(f.localPoint)
		pointA := xfA.Apply(f.proxyA.Vertex(indexA))
		return pointA.Sub(pointB).Dot(normal)
	}
	return 0
}

// TimeOfImpact computes the upper bound on the first time two sweeping
// proxies come within LinearSlop of touching, using conservative
// advancement along separating axes with a mixed bisection and secant
// root finder. Rotation is handled, so fast spinning shapes may still
// miss.
func TimeOfImpact(input *TOIInput) TOIOutput {
	out := TOIOutput{State: TOIUnknown, T: input.TMax}

	proxyA := &input.ProxyA
	proxyB := &input.ProxyB

	sweepA := input.SweepA
	sweepB := input.SweepB

	// large rotations make the root finder fail, so normalize the sweep angles
	sweepA.Normalize()
	sweepB.Normalize()

	tMax := input.TMax

	totalRadius := proxyA.Radius + proxyB.Radius
	target := math.Max(LinearSlop, totalRadius-3*LinearSlop)
	tolerance := 0.25 * LinearSlop

	t1 := 0.0
	iter := 0

	// prepare input for distance query
	var cache SimplexCache
	distanceInput := DistanceInput{ProxyA: input.ProxyA, ProxyB: input.ProxyB}

	// the outer loop progressively attempts to compute new separating axes;
	// it terminates when an axis is repeated (no progress is made)
	for {
		distanceInput.TransformA = sweepA.Transform(t1)
		distanceInput.TransformB = sweepB.Transform(t1)

		// get the distance between shapes; also use the results to get a
		// separating axis
		dist := Distance(&cache, &distanceInput)

		// if the shapes are overlapped, we give up on continuous collision
		if dist.Distance <= 0 {
			out.State = TOIOverlapped
			out.T = 0
			break
		}

		if dist.Distance < target+tolerance {
			// victory
			out.State = TOITouching
			out.T = t1
			break
		}

		// initialize the separating axis
		var fcn separationFunction
		fcn.initialize(&cache, proxyA, sweepA, proxyB, sweepB, t1)

		// compute the TOI on the separating axis by successively resolving
		// the deepest point; this loop is bounded by the number of vertices
		done := false
		t2 := tMax
		pushBackIter := 0
		for {
			// find the deepest point at t2, store the witness point indices
			indexA, indexB, s2 := fcn.findMinSeparation(t2)

			// is the final configuration separated?
			if s2 > target+tolerance {
				out.State = TOISeparated
				out.T = tMax
				done = true
				break
			}

			// has the separation reached tolerance?
			if s2 > target-tolerance {
				// advance the sweeps
				t1 = t2
				break
			}

			// compute the initial separation of the witness points
			s1 := fcn.evaluate(indexA, indexB, t1)

			// check for initial overlap; this might happen if the root finder
			// runs out of iterations
			if s1 < target-tolerance {
				out.State = TOIFailed
				out.T = t1
				done = true
				break
			}

			// check for touching
			if s1 <= target+tolerance {
				// victory! t1 should hold the TOI (could be 0.0)
				out.State = TOITouching
				out.T = t1
				done = true
				break
			}

			// compute 1D root of: f(x) - target = 0
			rootIterCount := 0
			a1, a2 := t1, t2
			for {
				// use a mix of the secant rule and bisection
				var t float64
				if rootIterCount&1 == 1 {
					// secant rule to improve convergence
					t = a1 + (target-s1)*(a2-a1)/(s2-s1)
				} else {
					// bisection to guarantee progress
					t = 0.5 * (a1 + a2)
				}
				rootIterCount++

				s := fcn.evaluate(indexA, indexB, t)

				if math.Abs(s-target) < tolerance {
					// t2 holds a tentative value for t1
					t2 = t
					break
				}

				// ensure we continue to bracket the root
				if s > target {
					a1 = t
					s1 = s
				} else {
					a2 = t
					s2 = s
				}

				if rootIterCount == maxTOIRootIterations {
					break
				}
			}

			pushBackIter++
			if pushBackIter == MaxPolygonVertices {
				break
			}
		}

		iter++
		if done {
			break
		}

		if iter == maxTOIIterations {
			// root finder got stuck; semi-victory
			out.State = TOIFailed
			out.T = t1
			break
		}
	}

	return out
}
