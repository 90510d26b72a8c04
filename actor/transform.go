package actor

import "github.com/go-gl/mathgl/mgl64"

// Transform represents a pose in 3D space: a position and a unit rotation.
// It is supplied per query and never stored by a shape.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position: mgl64.Vec3{0, 0, 0},
		Rotation: mgl64.QuatIdent(),
	}
}

// PointToWorld rotates then translates a local-space point
func (t Transform) PointToWorld(point mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(point).Add(t.Position)
}

// DirectionToWorld rotates a local-space direction. Translation does not apply to directions.
func (t Transform) DirectionToWorld(direction mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(direction)
}

// DirectionToLocal brings a world-space direction into the local frame
func (t Transform) DirectionToLocal(direction mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Conjugate().Rotate(direction)
}

// PointToLocal is the inverse of PointToWorld
func (t Transform) PointToLocal(point mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Conjugate().Rotate(point.Sub(t.Position))
}
