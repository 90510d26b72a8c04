package convex

import (
	"github.com/akmonengine/convex/actor"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Body places a shared hull in the world
type Body struct {
	ID        uuid.UUID
	Shape     *actor.ConvexPolyhedron
	Transform actor.Transform
	// Static bodies are never tested against each other
	Static bool

	aabb actor.AABB
}

// NewBody creates a body with a random ID and computes its bounding box
func NewBody(shape *actor.ConvexPolyhedron, transform actor.Transform, static bool) *Body {
	b := &Body{
		ID:        uuid.New(),
		Shape:     shape,
		Transform: transform,
		Static:    static,
	}
	b.UpdateAABB()

	return b
}

// UpdateAABB recomputes the world bounding box, to be called after the transform changed
func (b *Body) UpdateAABB() {
	b.aabb = b.Shape.ComputeAABB(b.Transform)
}

func (b *Body) GetAABB() actor.AABB {
	return b.aabb
}

// SupportWorld returns the farthest world point of the body along direction
func (b *Body) SupportWorld(direction mgl64.Vec3) mgl64.Vec3 {
	return b.Shape.SupportWorld(direction, b.Transform)
}

func (b *Body) Center() mgl64.Vec3 {
	return b.Transform.Position
}
