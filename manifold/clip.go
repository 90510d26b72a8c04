package manifold

import (
	"math"

	"github.com/akmonengine/convex/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// PlaneEpsilon widens the inside half-space so grazing and coplanar vertices are kept
const PlaneEpsilon = 1e-9

// ContactPoint is a world-space contact with its penetration depth (>= 0)
type ContactPoint struct {
	Position    mgl64.Vec3
	Penetration float64
}

// ClipFaceAgainstPlane implements Sutherland-Hodgman for a single plane.
//
// A point p is inside when n·p - d <= PlaneEpsilon; points on the plane are kept.
// out is truncated, filled with the clipped polygon and returned. in and out must not share storage.
func ClipFaceAgainstPlane(in, out []mgl64.Vec3, n mgl64.Vec3, d float64) []mgl64.Vec3 {
	out = out[:0]
	if len(in) == 0 {
		return out
	}

	first := in[len(in)-1]
	firstDist := n.Dot(first) - d

	for _, last := range in {
		lastDist := n.Dot(last) - d

		if firstDist <= PlaneEpsilon {
			if lastDist <= PlaneEpsilon {
				// Both inside
				out = append(out, last)
			} else {
				// Leaving the half-space
				out = append(out, lineIntersectPlane(first, last, firstDist, lastDist))
			}
		} else if lastDist <= PlaneEpsilon {
			// Entering the half-space
			out = append(out, lineIntersectPlane(first, last, firstDist, lastDist))
			out = append(out, last)
		}

		first = last
		firstDist = lastDist
	}

	return out
}

// lineIntersectPlane interpolates the crossing point of segment [p1, p2]
// from the signed distances of its endpoints
func lineIntersectPlane(p1, p2 mgl64.Vec3, dist1, dist2 float64) mgl64.Vec3 {
	denom := dist1 - dist2
	if math.Abs(denom) < 1e-12 {
		return p1 // Segment parallel to plane
	}

	t := dist1 / denom
	t = math.Max(0, math.Min(1, t)) // Clamp to segment

	return p1.Add(p2.Sub(p1).Mul(t))
}

// ClipFaceAgainstHull clips the incident polygon (world space) against a face of hullA
// and appends the surviving points to out.
//
// The reference face is the face of hullA whose world normal is most opposed to axis.
// The polygon is clipped against the side plane of each reference edge, then every point is measured
// against the reference plane: it is kept when its signed distance lies in [minDist, maxDist],
// with a penetration of the distance below the face.
func ClipFaceAgainstHull(axis mgl64.Vec3, hullA *actor.ConvexPolyhedron, transformA actor.Transform,
	incident []mgl64.Vec3, minDist, maxDist float64, out []ContactPoint) []ContactPoint {
	if len(incident) < 3 {
		return out
	}

	reference := closestFace(hullA, transformA.Rotation, axis, -1)
	if reference < 0 {
		return out
	}

	refNormal := hullA.NormalToWorld(reference, transformA.Rotation)
	refFace := hullA.WorldFace(reference, transformA, make([]mgl64.Vec3, 0, len(hullA.Faces[reference].Indices)))
	refCenter := transformA.PointToWorld(hullA.FaceCenter(reference))

	// Ping-pong buffers, local to the call
	bufferA := make([]mgl64.Vec3, 0, 2*len(incident)+len(refFace))
	bufferB := make([]mgl64.Vec3, 0, 2*len(incident)+len(refFace))
	bufferA = append(bufferA, incident...)

	for i := range refFace {
		if len(bufferA) == 0 {
			break
		}

		v1 := refFace[i]
		v2 := refFace[(i+1)%len(refFace)]

		sideNormal := v2.Sub(v1).Cross(refNormal)
		length := sideNormal.Len()
		if length < 1e-12 {
			continue // coincident vertices
		}
		sideNormal = sideNormal.Mul(1.0 / length)

		// The side plane normal points away from the face center, whatever the loop winding
		if refCenter.Sub(v1).Dot(sideNormal) > 0 {
			sideNormal = sideNormal.Mul(-1)
		}

		bufferB = ClipFaceAgainstPlane(bufferA, bufferB, sideNormal, sideNormal.Dot(v1))
		bufferA, bufferB = bufferB, bufferA
	}

	offset := refNormal.Dot(refFace[0])
	for _, point := range bufferA {
		distance := refNormal.Dot(point) - offset
		if distance < minDist || distance > maxDist {
			continue
		}

		out = append(out, ContactPoint{
			Position:    point,
			Penetration: math.Max(0, -distance),
		})
	}

	return out
}

// ClipAgainstHull picks the incident face on hullB (the face most aligned with axis),
// then clips it against hullA with ClipFaceAgainstHull.
// axis must point from B toward A, as returned by sat.FindSeparatingAxis.
func ClipAgainstHull(hullA *actor.ConvexPolyhedron, transformA actor.Transform,
	hullB *actor.ConvexPolyhedron, transformB actor.Transform,
	axis mgl64.Vec3, minDist, maxDist float64, out []ContactPoint) []ContactPoint {
	incidentFace := closestFace(hullB, transformB.Rotation, axis, 1)
	if incidentFace < 0 {
		return out
	}

	incident := hullB.WorldFace(incidentFace, transformB, make([]mgl64.Vec3, 0, len(hullB.Faces[incidentFace].Indices)))

	return ClipFaceAgainstHull(axis, hullA, transformA, incident, minDist, maxDist, out)
}

// closestFace returns the face whose world normal maximizes sign * (normal · axis), or -1 without faces
func closestFace(hull *actor.ConvexPolyhedron, rotation mgl64.Quat, axis mgl64.Vec3, sign float64) int {
	best := -1
	bestDot := -math.MaxFloat64
	for i := range hull.Faces {
		d := sign * hull.NormalToWorld(i, rotation).Dot(axis)
		if d > bestDot {
			bestDot = d
			best = i
		}
	}
	return best
}
