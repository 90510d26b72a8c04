// Package scene decodes YAML scene descriptions into bodies ready for collision detection.
package scene

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/akmonengine/convex"
	"github.com/akmonengine/convex/actor"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownHull   = errors.New("unknown hull")
	ErrDuplicateHull = errors.New("duplicate hull name")
	ErrInvalidHull   = errors.New("invalid hull")
)

// Scene is the document layout
type Scene struct {
	Settings *convex.Config `yaml:"config"`
	Hulls    []Hull         `yaml:"hulls"`
	Bodies   []BodyDesc     `yaml:"bodies"`
}

// Hull is either a box (half extents) or explicit vertices and faces
type Hull struct {
	Name     string       `yaml:"name"`
	Box      []float64    `yaml:"box,omitempty"`
	Vertices [][3]float64 `yaml:"vertices,omitempty"`
	Faces    []FaceDesc   `yaml:"faces,omitempty"`
}

type FaceDesc struct {
	Indices []int      `yaml:"indices"`
	Normal  [3]float64 `yaml:"normal"`
}

type BodyDesc struct {
	Hull     string     `yaml:"hull"`
	Position [3]float64 `yaml:"position"`
	Rotation *AxisAngle `yaml:"rotation,omitempty"`
	Static   bool       `yaml:"static,omitempty"`
}

// AxisAngle is a rotation of Angle radians around Axis
type AxisAngle struct {
	Axis  [3]float64 `yaml:"axis"`
	Angle float64    `yaml:"angle"`
}

// Decode reads a YAML scene. Settings missing from the config section keep their default value.
func Decode(r io.Reader) (*Scene, error) {
	defaults := convex.DefaultConfig()
	s := Scene{Settings: &defaults}
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode scene: %w", err)
	}

	if err := s.Config().Validate(); err != nil {
		return nil, err
	}

	return &s, nil
}

// Load reads a YAML scene file
func Load(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Decode(f)
}

// Config returns the scene settings, falling back to convex.DefaultConfig
func (s *Scene) Config() convex.Config {
	if s.Settings == nil {
		return convex.DefaultConfig()
	}
	return *s.Settings
}

// BuildHulls validates every hull description. Hulls are shared between the bodies referencing them.
func (s *Scene) BuildHulls() (map[string]*actor.ConvexPolyhedron, error) {
	hulls := make(map[string]*actor.ConvexPolyhedron, len(s.Hulls))

	for _, desc := range s.Hulls {
		if _, ok := hulls[desc.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateHull, desc.Name)
		}

		hull, err := desc.build()
		if err != nil {
			return nil, fmt.Errorf("hull %q: %w", desc.Name, err)
		}
		hulls[desc.Name] = hull
	}

	return hulls, nil
}

// BuildBodies creates one body per description
func (s *Scene) BuildBodies() ([]*convex.Body, error) {
	hulls, err := s.BuildHulls()
	if err != nil {
		return nil, err
	}

	bodies := make([]*convex.Body, 0, len(s.Bodies))
	for i, desc := range s.Bodies {
		hull, ok := hulls[desc.Hull]
		if !ok {
			return nil, fmt.Errorf("body %d: %w %q", i, ErrUnknownHull, desc.Hull)
		}

		transform := actor.NewTransform()
		transform.Position = mgl64.Vec3(desc.Position)
		if desc.Rotation != nil {
			axis := mgl64.Vec3(desc.Rotation.Axis)
			if axis.Len() == 0 {
				return nil, fmt.Errorf("body %d: rotation axis is zero", i)
			}
			transform.Rotation = mgl64.QuatRotate(desc.Rotation.Angle, axis.Normalize())
		}

		bodies = append(bodies, convex.NewBody(hull, transform, desc.Static))
	}

	return bodies, nil
}

func (h Hull) build() (*actor.ConvexPolyhedron, error) {
	if h.Box != nil {
		if len(h.Box) != 3 {
			return nil, fmt.Errorf("%w: box needs 3 half extents, got %d", ErrInvalidHull, len(h.Box))
		}
		for _, extent := range h.Box {
			if extent <= 0 {
				return nil, fmt.Errorf("%w: box half extents must be positive, got %v", ErrInvalidHull, h.Box)
			}
		}
		if h.Vertices != nil || h.Faces != nil {
			return nil, fmt.Errorf("%w: box and explicit geometry are exclusive", ErrInvalidHull)
		}
		return actor.NewBox(mgl64.Vec3{h.Box[0], h.Box[1], h.Box[2]}), nil
	}

	points := make([]mgl64.Vec3, len(h.Vertices))
	for i, v := range h.Vertices {
		points[i] = mgl64.Vec3(v)
	}

	loops := make([][]int, len(h.Faces))
	normals := make([]mgl64.Vec3, len(h.Faces))
	for i, f := range h.Faces {
		loops[i] = f.Indices
		normals[i] = mgl64.Vec3(f.Normal)
	}

	return actor.NewConvexPolyhedron(points, loops, normals)
}
