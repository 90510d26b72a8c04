package actor

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// NormalTolerance is the accepted deviation of a face normal's length from 1
	NormalTolerance = 1e-6
	// EdgeTolerance is used to merge parallel edge directions
	EdgeTolerance = 1e-6
)

var (
	ErrFaceNormalMismatch = errors.New("face loops and normals count differ")
	ErrDegenerateFace     = errors.New("face has fewer than 3 vertices")
	ErrIndexOutOfRange    = errors.New("face index out of range")
	ErrNormalNotUnit      = errors.New("face normal is not unit length")
	ErrNonPositiveExtent  = errors.New("box half extent must be positive")
)

// Face is an ordered loop of vertex indices with its outward unit normal.
// The loop winding must be consistent across the hull.
type Face struct {
	Indices []int
	Normal  mgl64.Vec3
}

// ConvexPolyhedron stores local-space geometry of a convex hull.
// Queries never mutate it, so a single instance can be shared between goroutines
// and reused for any number of poses.
type ConvexPolyhedron struct {
	Vertices []mgl64.Vec3
	Faces    []Face

	// unit edge directions, parallel edges merged
	uniqueEdges []mgl64.Vec3
}

// NewConvexPolyhedron builds a hull from trusted face data, see AddGeometry
func NewConvexPolyhedron(points []mgl64.Vec3, loops [][]int, normals []mgl64.Vec3) (*ConvexPolyhedron, error) {
	h := &ConvexPolyhedron{}
	if err := h.AddGeometry(points, loops, normals); err != nil {
		return nil, err
	}
	return h, nil
}

// AddGeometry appends vertices and faces to the hull.
// Loop indices refer to points and are shifted by the number of vertices already stored.
// The input is validated before anything is stored: on error the hull is unchanged.
func (h *ConvexPolyhedron) AddGeometry(points []mgl64.Vec3, loops [][]int, normals []mgl64.Vec3) error {
	if len(loops) != len(normals) {
		return fmt.Errorf("%w: %d loops, %d normals", ErrFaceNormalMismatch, len(loops), len(normals))
	}

	for i, loop := range loops {
		if len(loop) < 3 {
			return fmt.Errorf("face %d: %w (%d)", i, ErrDegenerateFace, len(loop))
		}
		for _, index := range loop {
			if index < 0 || index >= len(points) {
				return fmt.Errorf("face %d: %w: %d not in [0, %d)", i, ErrIndexOutOfRange, index, len(points))
			}
		}
		if math.Abs(normals[i].Len()-1.0) > NormalTolerance {
			return fmt.Errorf("face %d: %w (len=%v)", i, ErrNormalNotUnit, normals[i].Len())
		}
	}

	offset := len(h.Vertices)
	h.Vertices = append(h.Vertices, points...)
	for i, loop := range loops {
		indices := make([]int, len(loop))
		for j, index := range loop {
			indices[j] = index + offset
		}
		h.Faces = append(h.Faces, Face{Indices: indices, Normal: normals[i]})
	}

	h.computeUniqueEdges()

	return nil
}

func (h *ConvexPolyhedron) computeUniqueEdges() {
	// fresh storage: slices returned by UniqueEdges stay valid after AddGeometry
	edges := make([]mgl64.Vec3, 0, len(h.uniqueEdges)+3)

	for _, face := range h.Faces {
		n := len(face.Indices)
		for i := 0; i < n; i++ {
			edge := h.Vertices[face.Indices[(i+1)%n]].Sub(h.Vertices[face.Indices[i]])
			length := edge.Len()
			if length < EdgeTolerance {
				continue
			}
			edge = edge.Mul(1.0 / length)

			duplicate := false
			for _, known := range edges {
				// parallel or anti-parallel: the cross axis would be the same
				if known.Cross(edge).Len() < EdgeTolerance {
					duplicate = true
					break
				}
			}
			if !duplicate {
				edges = append(edges, edge)
			}
		}
	}

	h.uniqueEdges = edges
}

// UniqueEdges returns the local-space edge directions, one per parallel class.
// The returned slice must not be modified.
func (h *ConvexPolyhedron) UniqueEdges() []mgl64.Vec3 {
	return h.uniqueEdges
}

// VertexToWorld returns vertex i transformed into world space
func (h *ConvexPolyhedron) VertexToWorld(i int, transform Transform) mgl64.Vec3 {
	return transform.PointToWorld(h.Vertices[i])
}

// NormalToWorld returns the world normal of face i; it only depends on the rotation
func (h *ConvexPolyhedron) NormalToWorld(face int, rotation mgl64.Quat) mgl64.Vec3 {
	return rotation.Rotate(h.Faces[face].Normal)
}

// WorldVertices appends every vertex in world space to out[:0] and returns it
func (h *ConvexPolyhedron) WorldVertices(transform Transform, out []mgl64.Vec3) []mgl64.Vec3 {
	out = out[:0]
	for _, v := range h.Vertices {
		out = append(out, transform.PointToWorld(v))
	}
	return out
}

// WorldFace appends the world-space loop of face i to out[:0] and returns it
func (h *ConvexPolyhedron) WorldFace(face int, transform Transform, out []mgl64.Vec3) []mgl64.Vec3 {
	out = out[:0]
	for _, index := range h.Faces[face].Indices {
		out = append(out, transform.PointToWorld(h.Vertices[index]))
	}
	return out
}

// FaceCenter returns the local-space centroid of face i
func (h *ConvexPolyhedron) FaceCenter(face int) mgl64.Vec3 {
	indices := h.Faces[face].Indices
	sum := mgl64.Vec3{0, 0, 0}
	for _, index := range indices {
		sum = sum.Add(h.Vertices[index])
	}
	return sum.Mul(1.0 / float64(len(indices)))
}

// Support returns the local vertex farthest along a local direction
func (h *ConvexPolyhedron) Support(direction mgl64.Vec3) mgl64.Vec3 {
	best := mgl64.Vec3{}
	bestDot := -math.MaxFloat64
	for _, v := range h.Vertices {
		if d := v.Dot(direction); d > bestDot {
			bestDot = d
			best = v
		}
	}
	return best
}

// SupportWorld returns the world vertex farthest along a world direction
func (h *ConvexPolyhedron) SupportWorld(direction mgl64.Vec3, transform Transform) mgl64.Vec3 {
	return transform.PointToWorld(h.Support(transform.DirectionToLocal(direction)))
}

// ComputeAABB calculates the world bounding box of the hull at the given transform
func (h *ConvexPolyhedron) ComputeAABB(transform Transform) AABB {
	aabb := EmptyAABB()
	for _, v := range h.Vertices {
		aabb = aabb.Extend(transform.PointToWorld(v))
	}
	return aabb
}

// NewBox creates a box hull centered on the origin.
// It panics with ErrNonPositiveExtent when a half extent is <= 0: the face normals would point inward.
func NewBox(halfExtents mgl64.Vec3) *ConvexPolyhedron {
	hx, hy, hz := halfExtents.X(), halfExtents.Y(), halfExtents.Z()
	if hx <= 0 || hy <= 0 || hz <= 0 {
		panic(fmt.Errorf("%w: %v", ErrNonPositiveExtent, halfExtents))
	}

	points := []mgl64.Vec3{
		{-hx, -hy, -hz},
		{+hx, -hy, -hz},
		{+hx, +hy, -hz},
		{-hx, +hy, -hz},
		{-hx, -hy, +hz},
		{+hx, -hy, +hz},
		{+hx, +hy, +hz},
		{-hx, +hy, +hz},
	}

	// Loops are CCW seen from outside
	loops := [][]int{
		{0, 3, 2, 1}, // -Z
		{4, 5, 6, 7}, // +Z
		{0, 1, 5, 4}, // -Y
		{3, 7, 6, 2}, // +Y
		{0, 4, 7, 3}, // -X
		{1, 2, 6, 5}, // +X
	}

	normals := []mgl64.Vec3{
		{0, 0, -1},
		{0, 0, 1},
		{0, -1, 0},
		{0, 1, 0},
		{-1, 0, 0},
		{1, 0, 0},
	}

	box, err := NewConvexPolyhedron(points, loops, normals)
	if err != nil {
		// the loops above are static and valid
		panic(err)
	}

	return box
}
