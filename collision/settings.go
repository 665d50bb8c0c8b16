// Package collision implements the geometric half of the engine: shapes,
// the dynamic AABB tree and broad phase, GJK distance, time of impact and
// contact manifold generation.
package collision

import "math"

const (
	// LinearSlop is the collision and constraint tolerance in meters.
	LinearSlop = 0.005

	// AngularSlop is the collision and constraint tolerance in radians.
	AngularSlop = 2.0 / 180.0 * math.Pi

	// PolygonRadius is the skin around polygons and edges that keeps
	// the TOI solver from resting exactly on the surface.
	PolygonRadius = 2.0 * LinearSlop

	// AABBExtension fattens leaf AABBs so that small motions do not
	// trigger tree updates.
	AABBExtension = 0.1

	// AABBMultiplier scales the displacement that is added to a moved
	// proxy's fat AABB.
	AABBMultiplier = 2.0

	// MaxManifoldPoints is the maximum number of contact points between two convex shapes.
	MaxManifoldPoints = 2

	// MaxPolygonVertices is the maximum vertex count of a polygon.
	MaxPolygonVertices = 8

	// Epsilon is the machine epsilon for float64.
	Epsilon = 2.220446049250313e-16

	maxFloat = math.MaxFloat64
)
