package collision

import (
	"sync"

	"github.com/setanarut/b2d/geom"
)

// CollideFunc evaluates the manifold between child indexA of shapeA and
// child indexB of shapeB.
type CollideFunc func(m *Manifold, shapeA Shape, indexA int, xfA geom.Transform, shapeB Shape, indexB int, xfB geom.Transform)

// Registry maps ordered shape type pairs to narrow phase routines.
// A pair missing in one order is served by the reverse registration with
// the shapes swapped.
type Registry struct {
	funcs [ShapeTypeCount * ShapeTypeCount]CollideFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register installs fn for the ordered pair (typeA, typeB).
func (r *Registry) Register(typeA, typeB ShapeType, fn CollideFunc) {
	r.funcs[int(typeA)+int(typeB)*int(ShapeTypeCount)] = fn
}

// Lookup returns the routine for (typeA, typeB). When only the reverse
// pair is registered, swap is true and the caller must exchange the shapes.
func (r *Registry) Lookup(typeA, typeB ShapeType) (fn CollideFunc, swap bool) {
	if fn := r.funcs[int(typeA)+int(typeB)*int(ShapeTypeCount)]; fn != nil {
		return fn, false
	}
	if fn := r.funcs[int(typeB)+int(typeA)*int(ShapeTypeCount)]; fn != nil {
		return fn, true
	}
	return nil, false
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the process-wide registry with the builtin
// routines. It is built once and must not be modified.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewBuiltinRegistry()
	})
	return defaultRegistry
}

// NewBuiltinRegistry returns a fresh registry holding the builtin routines.
// Chains have no chain-chain routine; chains never collide with each other.
func NewBuiltinRegistry() *Registry {
	r := NewRegistry()
	r.Register(TypeCircle, TypeCircle, circleToCircle)
	r.Register(TypePolygon, TypeCircle, polygonToCircle)
	r.Register(TypePolygon, TypePolygon, polygonToPolygon)
	r.Register(TypeEdge, TypeCircle, edgeToCircle)
	r.Register(TypeEdge, TypePolygon, edgeToPolygon)
	r.Register(TypeChain, TypeCircle, chainToCircle)
	r.Register(TypeChain, TypePolygon, chainToPolygon)
	return r
}

func circleToCircle(m *Manifold, a Shape, _ int, xfA geom.Transform, b Shape, _ int, xfB geom.Transform) {
	CollideCircles(m, a.(*CircleShape), xfA, b.(*CircleShape), xfB)
}

func polygonToCircle(m *Manifold, a Shape, _ int, xfA geom.Transform, b Shape, _ int, xfB geom.Transform) {
	CollidePolygonAndCircle(m, a.(*PolygonShape), xfA, b.(*CircleShape), xfB)
}

func polygonToPolygon(m *Manifold, a Shape, _ int, xfA geom.Transform, b Shape, _ int, xfB geom.Transform) {
	CollidePolygons(m, a.(*PolygonShape), xfA, b.(*PolygonShape), xfB)
}

func edgeToCircle(m *Manifold, a Shape, _ int, xfA geom.Transform, b Shape, _ int, xfB geom.Transform) {
	CollideEdgeAndCircle(m, a.(*EdgeShape), xfA, b.(*CircleShape), xfB)
}

func edgeToPolygon(m *Manifold, a Shape, _ int, xfA geom.Transform, b Shape, _ int, xfB geom.Transform) {
	CollideEdgeAndPolygon(m, a.(*EdgeShape), xfA, b.(*PolygonShape), xfB)
}

func chainToCircle(m *Manifold, a Shape, indexA int, xfA geom.Transform, b Shape, _ int, xfB geom.Transform) {
	CollideEdgeAndCircle(m, a.(*ChainShape).ChildEdge(indexA), xfA, b.(*CircleShape), xfB)
}

func chainToPolygon(m *Manifold, a Shape, indexA int, xfA geom.Transform, b Shape, _ int, xfB geom.Transform) {
	CollideEdgeAndPolygon(m, a.(*ChainShape).ChildEdge(indexA), xfA, b.(*PolygonShape), xfB)
}
