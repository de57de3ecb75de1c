// Command posegen runs the quality-gated generation loop for one exercise:
// a pose photo scored against a reference, plus an optional muscle diagram,
// both generated concurrently with per-artifact retry budgets.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"pose-gate/internal/config"
	"pose-gate/internal/generator"
	"pose-gate/internal/genloop"
	"pose-gate/internal/landmark"
	"pose-gate/internal/metrics"
	"pose-gate/internal/store"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

func main() {
	referencePath := flag.String("reference", "", "Path to reference pose image")
	contentKey := flag.String("content-key", "", "Stable content identifier for seed derivation")
	prompt := flag.String("prompt", "", "Generation prompt for the pose photo")
	diagramPrompt := flag.String("diagram-prompt", "", "Generation prompt for the muscle diagram (empty = skip)")
	outputDir := flag.String("output", "out", "Directory for accepted candidates")
	configPath := flag.String("config", "", "Path to YAML config (optional)")
	metricsAddr := flag.String("metrics-addr", "", "Address to serve Prometheus metrics on (empty = disabled)")
	flag.Parse()

	if *referencePath == "" || *contentKey == "" || *prompt == "" {
		fmt.Println("Usage: posegen -reference <image> -content-key <id> -prompt <text> [-diagram-prompt <text>] [-output <dir>] [-config <yaml>] [-metrics-addr <host:port>]")
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	reference, err := os.ReadFile(*referencePath)
	if err != nil {
		log.Error("failed to read reference", "error", err)
		os.Exit(1)
	}

	gen, err := generator.NewOpenAI(cfg.Generator)
	if err != nil {
		log.Error("failed to build generator", "error", err)
		os.Exit(1)
	}

	st, err := store.Open(cfg.Store)
	if err != nil {
		log.Error("failed to open attempt store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	extractor := landmark.New(cfg.Landmark)
	defer extractor.Close()
	if !extractor.Available() {
		log.Warn("landmark detector unavailable, pose scoring will use silhouette fallback")
	}

	if *metricsAddr != "" {
		go serveMetrics(*metricsAddr, log)
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		log.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	orch := genloop.New(gen, st, extractor, cfg.Loop)

	g, gctx := errgroup.WithContext(ctx)
	var poseOutcome, diagramOutcome *genloop.Outcome

	g.Go(func() error {
		out, err := orch.RunPose(gctx, *contentKey+"_pose", *contentKey, *prompt, reference)
		if err != nil {
			return fmt.Errorf("pose loop: %w", err)
		}
		poseOutcome = out
		return nil
	})

	if *diagramPrompt != "" {
		g.Go(func() error {
			out, err := orch.RunDiagram(gctx, *contentKey+"_diagram", *contentKey, *diagramPrompt, reference)
			if err != nil {
				return fmt.Errorf("diagram loop: %w", err)
			}
			diagramOutcome = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("generation failed", "error", err)
		os.Exit(2)
	}

	exit := 0
	if !report(poseOutcome, *outputDir, log) {
		exit = 3
	}
	if diagramOutcome != nil && !report(diagramOutcome, *outputDir, log) {
		exit = 3
	}
	os.Exit(exit)
}

// report writes the delivered candidate and logs its provenance. It returns
// false when the candidate shipped without passing validation.
func report(out *genloop.Outcome, dir string, log *slog.Logger) bool {
	path := fmt.Sprintf("%s/%s.png", dir, out.Artifact)
	if err := os.WriteFile(path, out.Best.Candidate, 0o644); err != nil {
		log.Error("failed to write candidate", "artifact", out.Artifact, "error", err)
		return false
	}

	log.Info("artifact delivered",
		"artifact", out.Artifact,
		"state", out.State.String(),
		"attempts", out.Attempts,
		"winning_attempt", out.Best.Index,
		"seed", out.Best.Seed,
		"score", out.Best.Score,
		"path", path)
	return out.State == genloop.StatePassed
}

func serveMetrics(addr string, log *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	log.Info("serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Warn("metrics server stopped", "error", err)
	}
}
