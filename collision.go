package convex

import (
	"context"
	"log/slog"
	"sync"

	"github.com/akmonengine/convex/gjk"
	"github.com/akmonengine/convex/manifold"
	"github.com/akmonengine/convex/sat"
	"github.com/go-gl/mathgl/mgl64"
)

const DEFAULT_WORKERS = 1

// Contact is the manifold of an intersecting pair, ready for a solver
type Contact struct {
	BodyA *Body
	BodyB *Body
	// Normal points from A toward B
	Normal mgl64.Vec3
	// Depth is the overlap along Normal found by the axis search
	Depth  float64
	Points []manifold.ContactPoint
}

// Collide tests a pair of bodies and builds its manifold.
// It returns false when a separating axis exists.
//
// Pipeline:
//  1. Separating axis search over face normals and edge-edge axes
//  2. Incident face of B clipped against the reference face side planes of A
//  3. Points filtered by the [MinDist, MaxDist] band of the reference plane
//  4. Reduction to cfg.MaxContacts points
func Collide(a, b *Body, cfg Config) (Contact, bool) {
	result := sat.FindSeparatingAxis(a.Shape, b.Shape, a.Transform, b.Transform)
	if result.Found {
		return Contact{}, false
	}

	points := manifold.ClipAgainstHull(a.Shape, a.Transform, b.Shape, b.Transform,
		result.Axis, cfg.MinDist, cfg.MaxDist, nil)

	normal := result.Axis.Mul(-1)

	// Fallback when nothing survives clipping: deepest point of B
	if len(points) == 0 {
		points = append(points, manifold.ContactPoint{
			Position:    b.Shape.SupportWorld(normal.Mul(-1), b.Transform),
			Penetration: result.Depth,
		})
	}

	if cfg.MaxContacts > 0 {
		points = manifold.Reduce(points, normal, cfg.MaxContacts)
	}

	return Contact{
		BodyA:  a,
		BodyB:  b,
		Normal: normal,
		Depth:  result.Depth,
		Points: points,
	}, true
}

// Intersects reports whether two bodies overlap, without building a manifold.
// The cached bounding boxes must be current. Bodies exactly touching may be reported either way.
func Intersects(a, b *Body) bool {
	if !a.GetAABB().Overlaps(b.GetAABB()) {
		return false
	}

	simplex := gjk.SimplexPool.Get().(*gjk.Simplex)
	defer gjk.SimplexPool.Put(simplex)
	simplex.Reset()

	return gjk.Intersect(a, b, simplex)
}

// BroadPhase refreshes the bounding boxes and streams the pairs whose boxes overlap
func BroadPhase(spatialGrid *SpatialGrid, bodies []*Body, workersCount int) <-chan Pair {
	task(workersCount, bodies, func(body *Body) {
		body.UpdateAABB()
	})

	spatialGrid.Clear()
	for i, body := range bodies {
		spatialGrid.Insert(i, body)
	}
	spatialGrid.SortCells()

	return spatialGrid.FindPairsParallel(bodies, workersCount)
}

// NarrowPhase runs Collide on every pair with cfg.Workers goroutines.
// The order of the returned contacts is not deterministic. logger may be nil.
func NarrowPhase(pairs <-chan Pair, cfg Config, logger *slog.Logger) []Contact {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	workersCount := max(DEFAULT_WORKERS, cfg.Workers)

	contactsChan := make(chan Contact, workersCount*2)

	go func() {
		var wg sync.WaitGroup
		defer close(contactsChan)

		for range workersCount {
			wg.Add(1)
			go func() {
				defer wg.Done()

				for pair := range pairs {
					contact, ok := Collide(pair.BodyA, pair.BodyB, cfg)
					if !ok {
						continue
					}

					if logger.Enabled(context.Background(), slog.LevelDebug) {
						logger.Debug("contact",
							slog.String("bodyA", pair.BodyA.ID.String()),
							slog.String("bodyB", pair.BodyB.ID.String()),
							slog.Any("normal", contact.Normal),
							slog.Float64("depth", contact.Depth),
							slog.Int("points", len(contact.Points)),
						)
					}

					contactsChan <- contact
				}
			}()
		}

		wg.Wait()
	}()

	contacts := make([]Contact, 0)
	for c := range contactsChan {
		contacts = append(contacts, c)
	}

	logger.Debug("narrow phase done", slog.Int("contacts", len(contacts)))

	return contacts
}

// DetectCollisions runs the broad and narrow phases over bodies
func DetectCollisions(spatialGrid *SpatialGrid, bodies []*Body, cfg Config, logger *slog.Logger) []Contact {
	return NarrowPhase(BroadPhase(spatialGrid, bodies, cfg.Workers), cfg, logger)
}
