package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/akmonengine/convex"
	"github.com/akmonengine/convex/scene"
)

func main() {
	path := flag.String("scene", "scene.yaml", "YAML scene file")
	debug := flag.Bool("debug", false, "log every contact")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	s, err := scene.Load(*path)
	if err != nil {
		logger.Error("load scene", slog.String("path", *path), slog.Any("err", err))
		os.Exit(1)
	}

	bodies, err := s.BuildBodies()
	if err != nil {
		logger.Error("build bodies", slog.Any("err", err))
		os.Exit(1)
	}

	cfg := s.Config()
	grid := convex.NewSpatialGrid(cfg.CellSize, convex.DEFAULT_CELLS)
	contacts := convex.DetectCollisions(grid, bodies, cfg, logger)

	logger.Info("collisions", slog.Int("bodies", len(bodies)), slog.Int("contacts", len(contacts)))
	for _, contact := range contacts {
		for i, point := range contact.Points {
			logger.Info("contact point",
				slog.String("bodyA", contact.BodyA.ID.String()),
				slog.String("bodyB", contact.BodyB.ID.String()),
				slog.Int("index", i),
				slog.Any("position", point.Position),
				slog.Float64("penetration", point.Penetration),
			)
		}
	}
}
