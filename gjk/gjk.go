// Package gjk answers the boolean overlap query between two convex sets.
//
// It grows a simplex inside the Minkowski difference A - B toward the origin.
// The sets overlap when a tetrahedron of support points encloses the origin.
// No penetration depth or contact data is produced, see package sat and manifold for that.
package gjk

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// MaxIterations bounds the refinement loop; hitting it reports no overlap
const MaxIterations = 32

// Convex is a convex set placed in world space
type Convex interface {
	// SupportWorld returns the farthest world point along direction
	SupportWorld(direction mgl64.Vec3) mgl64.Vec3
	// Center returns any world point inside the set
	Center() mgl64.Vec3
}

// Simplex holds 1 to 4 points of the Minkowski difference.
// Points[Count-1] is the most recent support point.
type Simplex struct {
	Points [4]mgl64.Vec3
	Count  int
}

func (s *Simplex) Reset() {
	s.Count = 0
}

func (s *Simplex) push(p mgl64.Vec3) {
	s.Points[s.Count] = p
	s.Count++
}

func (s *Simplex) set(points ...mgl64.Vec3) {
	s.Count = copy(s.Points[:], points)
}

var SimplexPool = sync.Pool{
	New: func() interface{} {
		return &Simplex{}
	},
}

// MinkowskiSupport returns the support point of A - B along direction
func MinkowskiSupport(a, b Convex, direction mgl64.Vec3) mgl64.Vec3 {
	return a.SupportWorld(direction).Sub(b.SupportWorld(direction.Mul(-1)))
}

// Intersect reports whether a and b overlap. Touching sets may go either way.
// The simplex is overwritten; callers can recycle it through SimplexPool.
func Intersect(a, b Convex, simplex *Simplex) bool {
	direction := b.Center().Sub(a.Center())
	if direction.LenSqr() < 1e-8 {
		direction = mgl64.Vec3{1, 0, 0}
	}

	simplex.set(MinkowskiSupport(a, b, direction))
	direction = simplex.Points[0].Mul(-1)
	if direction.LenSqr() < 1e-16 {
		return true
	}

	for range MaxIterations {
		p := MinkowskiSupport(a, b, direction)
		// the new point does not pass the origin: it is out of reach
		if p.Dot(direction) <= 0 {
			return false
		}

		simplex.push(p)
		if simplex.evolve(&direction) {
			return true
		}
	}

	return false
}

// evolve keeps the feature of the simplex closest to the origin and
// points direction toward the origin from it
func (s *Simplex) evolve(direction *mgl64.Vec3) bool {
	switch s.Count {
	case 2:
		return s.line(direction)
	case 3:
		return s.triangle(direction)
	case 4:
		return s.tetrahedron(direction)
	}
	return false
}

func (s *Simplex) line(direction *mgl64.Vec3) bool {
	a, b := s.Points[1], s.Points[0]
	ab := b.Sub(a)
	ao := a.Mul(-1)

	if ab.LenSqr() < 1e-8 {
		if ao.LenSqr() < 1e-8 {
			return true
		}
		s.set(a)
		*direction = ao
		return false
	}

	if ab.Dot(ao) <= 0 {
		s.set(a)
		*direction = ao
		return false
	}

	perp := ab.Cross(ao).Cross(ab)
	// origin on the segment
	if perp.LenSqr() < 1e-8 {
		return true
	}
	*direction = perp
	return false
}

func (s *Simplex) triangle(direction *mgl64.Vec3) bool {
	a, b, c := s.Points[2], s.Points[1], s.Points[0]
	ab := b.Sub(a)
	ac := c.Sub(a)
	ao := a.Mul(-1)
	abc := ab.Cross(ac)

	// collinear: drop the oldest point
	if abc.LenSqr() < 1e-10 {
		s.set(b, a)
		return s.line(direction)
	}

	if ab.Cross(abc).Dot(ao) > 0 {
		s.set(b, a)
		*direction = ab.Cross(ao).Cross(ab)
		return false
	}

	if abc.Cross(ac).Dot(ao) > 0 {
		s.set(c, a)
		*direction = ac.Cross(ao).Cross(ac)
		return false
	}

	if abc.Dot(ao) > 0 {
		*direction = abc
	} else {
		s.set(a, c, b)
		*direction = abc.Mul(-1)
	}
	return false
}

func (s *Simplex) tetrahedron(direction *mgl64.Vec3) bool {
	a, b, c, d := s.Points[3], s.Points[2], s.Points[1], s.Points[0]
	ab := b.Sub(a)
	ac := c.Sub(a)
	ad := d.Sub(a)
	ao := a.Mul(-1)

	// each face normal points away from the opposite vertex
	abc := outward(ab.Cross(ac), ad)
	acd := outward(ac.Cross(ad), ab)
	adb := outward(ad.Cross(ab), ac)

	if abc.LenSqr() < 1e-10 || acd.LenSqr() < 1e-10 || adb.LenSqr() < 1e-10 {
		s.set(c, b, a)
		return s.triangle(direction)
	}

	switch {
	case abc.Dot(ao) > 0:
		s.set(c, b, a)
	case acd.Dot(ao) > 0:
		s.set(d, c, a)
	case adb.Dot(ao) > 0:
		s.set(b, d, a)
	default:
		return true
	}
	return s.triangle(direction)
}

func outward(normal, toOpposite mgl64.Vec3) mgl64.Vec3 {
	if normal.Dot(toOpposite) > 0 {
		return normal.Mul(-1)
	}
	return normal
}
