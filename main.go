// Package main provides the entry point for the pose review application.
package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"

	"pose-gate/internal/config"
	"pose-gate/internal/edgemap"
	"pose-gate/internal/fidelity"
	"pose-gate/internal/imageutil"
	"pose-gate/internal/landmark"
	"pose-gate/internal/silhouette"
	"pose-gate/internal/version"
	"pose-gate/ui/review"

	"fyne.io/fyne/v2/app"
)

func main() {
	sourcePath := flag.String("source", "", "Path to the reference pose image")
	candidatePath := flag.String("candidate", "", "Path to the generated candidate image")
	configPath := flag.String("config", "", "Path to YAML config (optional)")
	flag.Parse()

	slog.Info("starting pose review", "version", version.String())

	if *sourcePath == "" || *candidatePath == "" {
		slog.Error("usage: pose-gate -source <image> -candidate <image> [-config <yaml>]")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	sourceBytes, err := os.ReadFile(*sourcePath)
	if err != nil {
		slog.Error("failed to read source image", "error", err)
		os.Exit(1)
	}
	candidateBytes, err := os.ReadFile(*candidatePath)
	if err != nil {
		slog.Error("failed to read candidate image", "error", err)
		os.Exit(1)
	}

	pair, err := buildPair(cfg, sourceBytes, candidateBytes)
	if err != nil {
		slog.Error("failed to score pair", "error", err)
		os.Exit(1)
	}

	review.New(app.New(), pair).ShowAndRun()
}

// buildPair scores the pair the same way the retry loop would: landmarks
// when the detector is available, silhouettes otherwise.
func buildPair(cfg config.Config, sourceBytes, candidateBytes []byte) (review.Pair, error) {
	var pair review.Pair

	sourceImg, _, err := imageutil.DecodeOriented(sourceBytes)
	if err != nil {
		return pair, err
	}
	candidateImg, _, err := imageutil.DecodeOriented(candidateBytes)
	if err != nil {
		return pair, err
	}
	pair.Source = sourceImg
	pair.Candidate = candidateImg

	if edges, err := edgemap.Build(sourceImg, cfg.Loop.EdgeMap); err == nil {
		pair.EdgeMap = edges
	} else if !errors.Is(err, edgemap.ErrNoUsableEdges) {
		slog.Warn("edge extraction failed", "error", err)
	}

	extractor := landmark.New(cfg.Landmark)
	defer extractor.Close()

	if extractor.Available() {
		srcSet, _ := extractor.Extract(sourceBytes)
		candSet, _ := extractor.Extract(candidateBytes)
		if srcSet != nil && candSet != nil {
			pair.Fidelity = fidelity.Score(srcSet, candSet, cfg.Loop.Fidelity)
			return pair, nil
		}
		pair.Fidelity = fidelity.Score(srcSet, candSet, cfg.Loop.Fidelity)
	} else {
		pair.Fidelity = fidelity.Unavailable()
	}

	// No landmark evidence: fall back to silhouette agreement.
	res, err := silhouette.Score(sourceImg, candidateImg, cfg.Loop.Silhouette)
	if err != nil {
		return pair, err
	}
	pair.Silhouette = &res
	return pair, nil
}
