package manifold

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Reduce limits a manifold to at most maxPoints contacts.
//
// With 4 points, the extremes of the contact patch along two tangent directions are kept,
// which preserves the patch area. Any other limit keeps the deepest point and then
// repeatedly adds the point farthest from those already kept.
// The input slice is not modified; the result keeps the input order.
func Reduce(points []ContactPoint, normal mgl64.Vec3, maxPoints int) []ContactPoint {
	if maxPoints <= 0 || len(points) <= maxPoints {
		return points
	}

	var indices []int
	if maxPoints == 4 {
		indices = extremeIndices(points, normal)
	}
	indices = farthestIndices(points, indices, maxPoints)

	sort.Ints(indices)
	result := make([]ContactPoint, 0, len(indices))
	for _, idx := range indices {
		result = append(result, points[idx])
	}

	return result
}

// extremeIndices returns the distinct indices of the points with min/max coordinates
// in the tangent plane of normal
func extremeIndices(points []ContactPoint, normal mgl64.Vec3) []int {
	tangent1, tangent2 := getTangentBasis(normal)

	minX, maxX, minY, maxY := 0, 0, 0, 0
	minXval, maxXval := math.Inf(1), math.Inf(-1)
	minYval, maxYval := math.Inf(1), math.Inf(-1)

	for i, p := range points {
		x := p.Position.Dot(tangent1)
		y := p.Position.Dot(tangent2)

		if x < minXval {
			minXval, minX = x, i
		}
		if x > maxXval {
			maxXval, maxX = x, i
		}
		if y < minYval {
			minYval, minY = y, i
		}
		if y > maxYval {
			maxYval, maxY = y, i
		}
	}

	indices := make([]int, 0, 4)
	for _, idx := range []int{minX, maxX, minY, maxY} {
		if !containsIndex(indices, idx) {
			indices = append(indices, idx)
		}
	}

	return indices
}

// farthestIndices completes selected up to maxPoints, deepest point first
func farthestIndices(points []ContactPoint, selected []int, maxPoints int) []int {
	if len(selected) == 0 {
		deepest := 0
		for i, p := range points {
			if p.Penetration > points[deepest].Penetration {
				deepest = i
			}
		}
		selected = append(selected, deepest)
	}

	for len(selected) < maxPoints && len(selected) < len(points) {
		best := -1
		bestDist := -1.0
		for i, p := range points {
			if containsIndex(selected, i) {
				continue
			}

			// distance to the closest already selected point
			dist := math.MaxFloat64
			for _, j := range selected {
				dist = math.Min(dist, p.Position.Sub(points[j].Position).LenSqr())
			}

			if dist > bestDist {
				bestDist = dist
				best = i
			}
		}
		selected = append(selected, best)
	}

	return selected
}

func containsIndex(indices []int, idx int) bool {
	for _, i := range indices {
		if i == idx {
			return true
		}
	}
	return false
}

// Center calculates the centroid of the contact positions
func Center(points []ContactPoint) mgl64.Vec3 {
	if len(points) == 0 {
		return mgl64.Vec3{0, 0, 0}
	}

	sum := mgl64.Vec3{0, 0, 0}
	for _, p := range points {
		sum = sum.Add(p.Position)
	}
	return sum.Mul(1.0 / float64(len(points)))
}

// MaxPenetration returns the deepest penetration of the manifold, 0 when empty
func MaxPenetration(points []ContactPoint) float64 {
	depth := 0.0
	for _, p := range points {
		depth = math.Max(depth, p.Penetration)
	}
	return depth
}

func getTangentBasis(normal mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	tangent1 := mgl64.Vec3{1, 0, 0}
	if math.Abs(normal.X()) > 0.9 {
		tangent1 = mgl64.Vec3{0, 1, 0}
	}

	tangent1 = tangent1.Sub(normal.Mul(tangent1.Dot(normal))).Normalize()
	tangent2 := normal.Cross(tangent1).Normalize()

	return tangent1, tangent2
}
