package sat

import (
	"math"

	"github.com/akmonengine/convex/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// CrossTolerance is the minimum length of an edge-edge cross product to be used as an axis.
// Shorter products come from parallel edges and carry no direction.
const CrossTolerance = 1e-6

// Result of a separating axis search.
//
// Found reports that a separating axis exists: the hulls do not intersect and Axis separates them.
// When Found is false the hulls interpenetrate; Axis is then the axis of least penetration
// and Depth the overlap along it.
//
// Axis is a unit vector oriented from B toward A: A's interval lies on its positive side.
// The sign is taken from the projected intervals, never from the body positions.
// Reference faces are picked on A with the most negative dot product against it,
// incident faces on B with the most positive one.
type Result struct {
	Found bool
	Axis  mgl64.Vec3
	Depth float64
}

// Project returns the interval covered by the hull's world vertices along axis.
// The axis is brought into the local frame once so no vertex is transformed.
func Project(hull *actor.ConvexPolyhedron, transform actor.Transform, axis mgl64.Vec3) (float64, float64) {
	localAxis := transform.DirectionToLocal(axis)
	offset := transform.Position.Dot(axis)

	min := math.MaxFloat64
	max := -math.MaxFloat64
	for _, v := range hull.Vertices {
		d := v.Dot(localAxis)
		min = math.Min(min, d)
		max = math.Max(max, d)
	}

	return min + offset, max + offset
}

// TestSepAxis projects both hulls onto axis.
// It returns the overlap depth and true when the intervals overlap,
// or 0 and false when axis separates the hulls.
// The depth is the smaller of the two ways the intervals can be pulled apart.
func TestSepAxis(axis mgl64.Vec3, hullA, hullB *actor.ConvexPolyhedron, transformA, transformB actor.Transform) (float64, bool) {
	d0, d1 := overlaps(axis, hullA, hullB, transformA, transformB)
	if d0 < 0 || d1 < 0 {
		return 0, false
	}

	return math.Min(d0, d1), true
}

// overlaps returns maxA - minB and maxB - minA along axis
func overlaps(axis mgl64.Vec3, hullA, hullB *actor.ConvexPolyhedron, transformA, transformB actor.Transform) (float64, float64) {
	minA, maxA := Project(hullA, transformA, axis)
	minB, maxB := Project(hullB, transformB, axis)

	return maxA - minB, maxB - minA
}

// towardA flips axis when A's interval lies on its negative side, i.e. when
// pulling A back along axis is the shorter way out
func towardA(axis mgl64.Vec3, d0, d1 float64) mgl64.Vec3 {
	if d0 < d1 {
		return axis.Mul(-1)
	}
	return axis
}

// FindSeparatingAxis runs the separating axis test over the full candidate set of two polyhedra:
// face normals of A, face normals of B, then every cross product of an edge of A with an edge of B.
// It stops on the first separating axis found.
func FindSeparatingAxis(hullA, hullB *actor.ConvexPolyhedron, transformA, transformB actor.Transform) Result {
	best := Result{Depth: math.MaxFloat64}

	// test returns false when axis separates the hulls
	test := func(axis mgl64.Vec3) bool {
		d0, d1 := overlaps(axis, hullA, hullB, transformA, transformB)
		if d0 < 0 || d1 < 0 {
			best = Result{Found: true, Axis: towardA(axis, d0, d1)}
			return false
		}
		if depth := math.Min(d0, d1); depth < best.Depth {
			best.Depth = depth
			best.Axis = towardA(axis, d0, d1)
		}
		return true
	}

	for i := range hullA.Faces {
		if !test(hullA.NormalToWorld(i, transformA.Rotation)) {
			return best
		}
	}

	for i := range hullB.Faces {
		if !test(hullB.NormalToWorld(i, transformB.Rotation)) {
			return best
		}
	}

	for _, localEdgeA := range hullA.UniqueEdges() {
		edgeA := transformA.DirectionToWorld(localEdgeA)
		for _, localEdgeB := range hullB.UniqueEdges() {
			edgeB := transformB.DirectionToWorld(localEdgeB)

			axis := edgeA.Cross(edgeB)
			length := axis.Len()
			if length < CrossTolerance {
				continue
			}

			if !test(axis.Mul(1.0 / length)) {
				return best
			}
		}
	}

	// No candidate at all: a hull without faces has no volume to intersect
	if best.Depth == math.MaxFloat64 {
		return Result{Found: true}
	}

	return best
}
