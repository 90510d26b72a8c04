package actor

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// Helper functions
func vec3Equal(a, b mgl64.Vec3, tolerance float64) bool {
	return math.Abs(a.X()-b.X()) < tolerance &&
		math.Abs(a.Y()-b.Y()) < tolerance &&
		math.Abs(a.Z()-b.Z()) < tolerance
}

func floatEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) < tolerance
}

func tetrahedron() ([]mgl64.Vec3, [][]int, []mgl64.Vec3) {
	points := []mgl64.Vec3{
		{0, 0, 0},
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
	loops := [][]int{
		{0, 3, 2}, // -x
		{0, 1, 3}, // -y
		{0, 2, 1}, // -z
		{1, 2, 3}, // +xyz
	}
	normals := []mgl64.Vec3{
		{-1, 0, 0},
		{0, -1, 0},
		{0, 0, -1},
		mgl64.Vec3{1, 1, 1}.Normalize(),
	}
	return points, loops, normals
}

func TestNewConvexPolyhedron(t *testing.T) {
	points, loops, normals := tetrahedron()

	hull, err := NewConvexPolyhedron(points, loops, normals)
	if err != nil {
		t.Fatalf("NewConvexPolyhedron() error = %v", err)
	}

	if len(hull.Vertices) != 4 {
		t.Errorf("len(Vertices) = %d, want 4", len(hull.Vertices))
	}
	if len(hull.Faces) != 4 {
		t.Errorf("len(Faces) = %d, want 4", len(hull.Faces))
	}
	// 6 edges, none parallel
	if len(hull.UniqueEdges()) != 6 {
		t.Errorf("len(UniqueEdges()) = %d, want 6", len(hull.UniqueEdges()))
	}
}

func TestNewConvexPolyhedron_InvalidInput(t *testing.T) {
	points, loops, normals := tetrahedron()

	tests := []struct {
		name    string
		loops   [][]int
		normals []mgl64.Vec3
		wantErr error
	}{
		{
			name:    "missing normal",
			loops:   loops,
			normals: normals[:3],
			wantErr: ErrFaceNormalMismatch,
		},
		{
			name:    "two vertices face",
			loops:   [][]int{{0, 1}},
			normals: []mgl64.Vec3{{0, 0, 1}},
			wantErr: ErrDegenerateFace,
		},
		{
			name:    "index past the end",
			loops:   [][]int{{0, 1, 4}},
			normals: []mgl64.Vec3{{0, 0, 1}},
			wantErr: ErrIndexOutOfRange,
		},
		{
			name:    "negative index",
			loops:   [][]int{{-1, 1, 2}},
			normals: []mgl64.Vec3{{0, 0, 1}},
			wantErr: ErrIndexOutOfRange,
		},
		{
			name:    "normal not normalized",
			loops:   [][]int{{1, 2, 3}},
			normals: []mgl64.Vec3{{1, 1, 1}},
			wantErr: ErrNormalNotUnit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hull, err := NewConvexPolyhedron(points, tt.loops, tt.normals)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if hull != nil {
				t.Errorf("hull should be nil on error")
			}
		})
	}
}

func TestAddGeometry_Append(t *testing.T) {
	points, loops, normals := tetrahedron()

	hull, err := NewConvexPolyhedron(points, loops, normals)
	if err != nil {
		t.Fatalf("NewConvexPolyhedron() error = %v", err)
	}

	shifted := make([]mgl64.Vec3, len(points))
	for i, p := range points {
		shifted[i] = p.Add(mgl64.Vec3{5, 0, 0})
	}
	if err := hull.AddGeometry(shifted, loops, normals); err != nil {
		t.Fatalf("AddGeometry() error = %v", err)
	}

	if len(hull.Vertices) != 8 || len(hull.Faces) != 8 {
		t.Fatalf("got %d vertices, %d faces, want 8 and 8", len(hull.Vertices), len(hull.Faces))
	}

	// Indices of the appended faces are offset by the previous vertex count
	for i, index := range hull.Faces[4].Indices {
		if index != loops[0][i]+4 {
			t.Errorf("Faces[4].Indices[%d] = %d, want %d", i, index, loops[0][i]+4)
		}
	}
	if !vec3Equal(hull.Vertices[hull.Faces[7].Indices[0]], mgl64.Vec3{6, 0, 0}, 1e-12) {
		t.Errorf("appended face references %v", hull.Vertices[hull.Faces[7].Indices[0]])
	}
}

func TestAddGeometry_ErrorLeavesHullUnchanged(t *testing.T) {
	box := NewBox(mgl64.Vec3{1, 1, 1})

	err := box.AddGeometry([]mgl64.Vec3{{0, 0, 0}}, [][]int{{0, 0, 7}}, []mgl64.Vec3{{0, 0, 1}})
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("error = %v, want ErrIndexOutOfRange", err)
	}
	if len(box.Vertices) != 8 || len(box.Faces) != 6 {
		t.Errorf("box modified: %d vertices, %d faces", len(box.Vertices), len(box.Faces))
	}
}

func TestNewBox(t *testing.T) {
	box := NewBox(mgl64.Vec3{0.5, 1, 2})

	if len(box.Vertices) != 8 {
		t.Fatalf("len(Vertices) = %d, want 8", len(box.Vertices))
	}
	if len(box.Faces) != 6 {
		t.Fatalf("len(Faces) = %d, want 6", len(box.Faces))
	}
	if len(box.UniqueEdges()) != 3 {
		t.Errorf("len(UniqueEdges()) = %d, want 3", len(box.UniqueEdges()))
	}

	for i, face := range box.Faces {
		// Every vertex of the face lies on its plane
		offset := face.Normal.Dot(box.Vertices[face.Indices[0]])
		for _, index := range face.Indices {
			if !floatEqual(face.Normal.Dot(box.Vertices[index]), offset, 1e-12) {
				t.Errorf("face %d: vertex %d is off the face plane", i, index)
			}
		}

		// The normal points away from the center
		if face.Normal.Dot(box.FaceCenter(i)) <= 0 {
			t.Errorf("face %d: normal %v points inward", i, face.Normal)
		}

		// Loops are CCW seen from outside
		a := box.Vertices[face.Indices[0]]
		b := box.Vertices[face.Indices[1]]
		c := box.Vertices[face.Indices[2]]
		if b.Sub(a).Cross(c.Sub(b)).Dot(face.Normal) <= 0 {
			t.Errorf("face %d: loop is not CCW around %v", i, face.Normal)
		}
	}
}

func TestAddGeometry_ReturnedEdgesStayValid(t *testing.T) {
	box := NewBox(mgl64.Vec3{1, 1, 1})
	before := box.UniqueEdges()
	snapshot := append([]mgl64.Vec3(nil), before...)

	points, loops, normals := tetrahedron()
	if err := box.AddGeometry(points, loops, normals); err != nil {
		t.Fatalf("AddGeometry() error = %v", err)
	}

	after := box.UniqueEdges()
	if len(after) <= len(before) {
		t.Fatalf("len(UniqueEdges()) = %d, want more than %d", len(after), len(before))
	}
	if &before[0] == &after[0] {
		t.Error("AddGeometry reused the storage of a previously returned edge slice")
	}
	for i := range snapshot {
		if before[i] != snapshot[i] {
			t.Errorf("edge %d changed from %v to %v", i, snapshot[i], before[i])
		}
	}
}

func TestNewBox_NonPositiveExtent(t *testing.T) {
	tests := []struct {
		name        string
		halfExtents mgl64.Vec3
	}{
		{"negative", mgl64.Vec3{-1, 1, 1}},
		{"zero", mgl64.Vec3{1, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				err, ok := r.(error)
				if !ok || !errors.Is(err, ErrNonPositiveExtent) {
					t.Errorf("NewBox(%v) panic = %v, want ErrNonPositiveExtent", tt.halfExtents, r)
				}
			}()
			NewBox(tt.halfExtents)
		})
	}
}

func TestWorldTransform_IdentityRoundTrip(t *testing.T) {
	points, loops, normals := tetrahedron()
	hull, err := NewConvexPolyhedron(points, loops, normals)
	if err != nil {
		t.Fatalf("NewConvexPolyhedron() error = %v", err)
	}

	world := hull.WorldVertices(NewTransform(), nil)
	if len(world) != len(points) {
		t.Fatalf("len(world) = %d, want %d", len(world), len(points))
	}
	for i := range points {
		if !vec3Equal(world[i], points[i], 1e-12) {
			t.Errorf("world[%d] = %v, want %v", i, world[i], points[i])
		}
		if !vec3Equal(hull.VertexToWorld(i, NewTransform()), points[i], 1e-12) {
			t.Errorf("VertexToWorld(%d) = %v, want %v", i, hull.VertexToWorld(i, NewTransform()), points[i])
		}
	}
}

func TestWorldTransform_RotatedTranslated(t *testing.T) {
	box := NewBox(mgl64.Vec3{1, 1, 1})
	transform := Transform{
		Position: mgl64.Vec3{3, 0, 0},
		Rotation: mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1}),
	}

	t.Run("vertex", func(t *testing.T) {
		// Vertex 1 is (+1, -1, -1): rotated to (1, 1, -1), then translated
		got := box.VertexToWorld(1, transform)
		want := mgl64.Vec3{4, 1, -1}
		if !vec3Equal(got, want, 1e-9) {
			t.Errorf("VertexToWorld() = %v, want %v", got, want)
		}
	})

	t.Run("normal ignores position", func(t *testing.T) {
		// Face 5 is +X
		got := box.NormalToWorld(5, transform.Rotation)
		want := mgl64.Vec3{0, 1, 0}
		if !vec3Equal(got, want, 1e-9) {
			t.Errorf("NormalToWorld() = %v, want %v", got, want)
		}
	})

	t.Run("world face reuses buffer", func(t *testing.T) {
		buffer := make([]mgl64.Vec3, 0, 4)
		face := box.WorldFace(5, transform, buffer)
		if len(face) != 4 {
			t.Fatalf("len(face) = %d, want 4", len(face))
		}
		if &face[0] != &buffer[:1][0] {
			t.Errorf("WorldFace() did not reuse the given buffer")
		}
		for _, v := range face {
			if !floatEqual(v.Y(), 1, 1e-9) {
				t.Errorf("vertex %v should be on plane y=1", v)
			}
		}
	})
}

func TestSupport(t *testing.T) {
	box := NewBox(mgl64.Vec3{1, 2, 3})

	tests := []struct {
		name      string
		direction mgl64.Vec3
		want      mgl64.Vec3
	}{
		{"positive octant", mgl64.Vec3{1, 1, 1}, mgl64.Vec3{1, 2, 3}},
		{"negative octant", mgl64.Vec3{-1, -1, -1}, mgl64.Vec3{-1, -2, -3}},
		{"mixed", mgl64.Vec3{1, -1, 1}, mgl64.Vec3{1, -2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := box.Support(tt.direction)
			if !vec3Equal(got, tt.want, 1e-12) {
				t.Errorf("Support(%v) = %v, want %v", tt.direction, got, tt.want)
			}
		})
	}

	t.Run("world", func(t *testing.T) {
		transform := Transform{Position: mgl64.Vec3{0, 10, 0}, Rotation: mgl64.QuatIdent()}
		got := box.SupportWorld(mgl64.Vec3{0, -1, 0}, transform)
		if !floatEqual(got.Y(), 8, 1e-12) {
			t.Errorf("SupportWorld().Y() = %v, want 8", got.Y())
		}
	})
}
