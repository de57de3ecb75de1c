// Command scoretest scores a candidate image against a reference pose and
// prints the full fidelity breakdown.
package main

import (
	"flag"
	"fmt"
	"os"

	"pose-gate/internal/config"
	"pose-gate/internal/fidelity"
	"pose-gate/internal/imageutil"
	"pose-gate/internal/landmark"
	"pose-gate/internal/silhouette"
)

func main() {
	sourcePath := flag.String("source", "", "Path to reference pose image (PNG, JPEG, TIFF, or WebP)")
	candidatePath := flag.String("candidate", "", "Path to generated candidate image")
	configPath := flag.String("config", "", "Path to YAML config (optional)")
	flag.Parse()

	if *sourcePath == "" || *candidatePath == "" {
		fmt.Println("Usage: scoretest -source <image> -candidate <image> [-config <yaml>]")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	sourceBytes, err := os.ReadFile(*sourcePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read source: %v\n", err)
		os.Exit(1)
	}
	candidateBytes, err := os.ReadFile(*candidatePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read candidate: %v\n", err)
		os.Exit(1)
	}

	extractor := landmark.New(cfg.Landmark)
	defer extractor.Close()

	if !extractor.Available() {
		fmt.Println("Landmark detector unavailable; falling back to silhouette comparison")
		runSilhouette(cfg, sourceBytes, candidateBytes)
		return
	}

	srcSet, _ := extractor.Extract(sourceBytes)
	candSet, _ := extractor.Extract(candidateBytes)
	fmt.Printf("Source landmarks: %s\n", setSummary(srcSet))
	fmt.Printf("Candidate landmarks: %s\n", setSummary(candSet))

	if srcSet == nil || candSet == nil {
		fmt.Println("\nNo pose in at least one image; falling back to silhouette comparison")
		runSilhouette(cfg, sourceBytes, candidateBytes)
		return
	}

	result := fidelity.Score(srcSet, candSet, cfg.Loop.Fidelity)

	fmt.Printf("\nScoring parameters:\n")
	fmt.Printf("  Score threshold: %.2f\n", cfg.Loop.Fidelity.ScoreThreshold)
	fmt.Printf("  Max joint delta: %.1f°\n", cfg.Loop.Fidelity.MaxJointDeltaDegrees)
	fmt.Printf("  Min visibility: %.2f\n", cfg.Loop.Fidelity.MinVisibility)
	fmt.Printf("  Min joint matches: %d\n", cfg.Loop.Fidelity.MinJointMatches)

	fmt.Printf("\nResult:\n")
	fmt.Printf("  Pose score: %.3f (angle %.3f, position %.3f)\n",
		result.PoseScore, result.AngleScore, result.PositionScore)
	fmt.Printf("  Max joint delta: %.1f° over %d joints (%d points)\n",
		result.MaxJointDelta, result.ComparedJointCount, result.ComparedPointCount)
	fmt.Printf("  Mirror suspected: %v\n", result.MirrorSuspected)
	if result.FailureReason != fidelity.FailureNone {
		fmt.Printf("  Failure reason: %s\n", result.FailureReason)
	}

	if len(result.JointDeltas) > 0 {
		fmt.Printf("\n%-18s %10s\n", "Joint", "Delta")
		for _, d := range result.JointDeltas {
			fmt.Printf("%-18s %9.1f°\n", d.Joint, d.DegreesDelta)
		}
	}

	if result.Passed {
		fmt.Println("\nPASS")
	} else {
		fmt.Println("\nFAIL")
		os.Exit(2)
	}
}

func runSilhouette(cfg config.Config, sourceBytes, candidateBytes []byte) {
	srcImg, _, err := imageutil.DecodeOriented(sourceBytes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to decode source: %v\n", err)
		os.Exit(1)
	}
	candImg, _, err := imageutil.DecodeOriented(candidateBytes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to decode candidate: %v\n", err)
		os.Exit(1)
	}

	result, err := silhouette.Score(srcImg, candImg, cfg.Loop.Silhouette)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Silhouette comparison failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nSilhouette result:\n")
	fmt.Printf("  Score: %.3f (IoU %.3f, shape %.3f, profile %.3f)\n",
		result.Score, result.IoU, result.ShapeScore, result.ProfileScore)
	if result.Passed {
		fmt.Println("\nPASS")
	} else {
		fmt.Println("\nFAIL")
		os.Exit(2)
	}
}

func setSummary(s *landmark.Set) string {
	if s == nil {
		return "none detected"
	}
	return fmt.Sprintf("%d parts detected", s.Len())
}
