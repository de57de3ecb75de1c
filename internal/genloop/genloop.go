package genloop

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"log/slog"

	"pose-gate/internal/diagram"
	"pose-gate/internal/edgemap"
	"pose-gate/internal/imageutil"
	"pose-gate/internal/landmark"
	"pose-gate/internal/metrics"

	"github.com/google/uuid"
)

// Stage names feed the seed derivation, keeping seeds distinct across the
// two artifact loops for the same content key.
const (
	StagePosePhoto     = "pose_photo"
	StageMuscleDiagram = "muscle_diagram"
)

// Orchestrator runs the per-artifact retry state machine:
// PENDING → ATTEMPT(1..K) → {PASSED, EXHAUSTED}.
//
// Attempts for one artifact are strictly sequential. Independent artifacts
// share no mutable state, so RunPose and RunDiagram may be called
// concurrently.
type Orchestrator struct {
	gen               Generator
	store             AttemptStore
	extractor         Extractor
	extractorInjected bool
	params            Params
}

// New builds an orchestrator around the process-owned landmark extractor.
// Both store and extractor may be nil: a nil store skips the audit trail, a
// nil extractor behaves as a permanently unavailable detector.
func New(gen Generator, store AttemptStore, extractor *landmark.Extractor, params Params) *Orchestrator {
	o := &Orchestrator{gen: gen, store: store, params: params}
	if extractor != nil {
		o.extractor = extractor
	}
	return o
}

// WithExtractor replaces the landmark extractor with an injected one and
// suppresses the silhouette fallback, keeping unit tests deterministic.
func (o *Orchestrator) WithExtractor(e Extractor) *Orchestrator {
	o.extractor = e
	o.extractorInjected = true
	return o
}

// RunPose drives the retry loop for the pose photo artifact. The reference
// is augmented with an edge map when usable edges exist; otherwise the
// unmodified reference conditions generation.
func (o *Orchestrator) RunPose(ctx context.Context, artifact, contentKey, prompt string, reference []byte) (*Outcome, error) {
	job := uuid.NewString()
	log := slog.With("job", job, "artifact", artifact, "stage", StagePosePhoto)

	edges := o.buildEdgeMap(reference, log)

	var best *Attempt
	budget := o.params.MaxAttempts
	for i := 1; i <= budget; i++ {
		seed := Seed(contentKey, StagePosePhoto, i)
		candidate, ok := o.generate(ctx, StagePosePhoto, artifact, i, Request{
			Prompt:    prompt,
			Seed:      seed,
			Reference: reference,
			EdgeMap:   edges,
		}, log)
		if !ok {
			continue
		}

		att := &Attempt{Index: i, Seed: seed, Candidate: candidate}

		eval, err, panicked := o.safeEvaluatePose(reference, candidate)
		if panicked {
			// An evaluator bug must never block content delivery: accept
			// the attempt as-is instead of retrying.
			log.Error("scorer failed, accepting current attempt without validation", "attempt", i)
			return &Outcome{Artifact: artifact, State: StateAccepted, Attempts: i, Best: att}, nil
		}
		if err != nil {
			log.Warn("attempt evaluation failed", "attempt", i, "error", err)
		} else {
			att.Fidelity = eval.fidelity
			att.Silhouette = eval.silhouette
			att.Score = eval.score
			att.Passed = eval.passed
		}

		if best == nil || att.Score > best.Score {
			best = att
		}
		if att.Passed {
			metrics.GenerationPasses.WithLabelValues(StagePosePhoto).Inc()
			log.Info("attempt passed validation", "attempt", i, "score", att.Score)
			return &Outcome{Artifact: artifact, State: StatePassed, Attempts: i, Best: att}, nil
		}
		log.Info("attempt below threshold", "attempt", i,
			"score", att.Score, "reason", att.Fidelity.FailureReason)
	}

	if best == nil {
		return nil, ErrNoCandidate
	}
	log.Warn("budget exhausted, returning best-scoring attempt",
		"attempts", budget, "best_attempt", best.Index, "score", best.Score)
	return &Outcome{Artifact: artifact, State: StateExhausted, Attempts: budget, Best: best}, nil
}

// RunDiagram drives the companion loop for the muscle diagram artifact,
// gated by pixel-ratio heuristics instead of landmark geometry.
func (o *Orchestrator) RunDiagram(ctx context.Context, artifact, contentKey, prompt string, reference []byte) (*Outcome, error) {
	job := uuid.NewString()
	log := slog.With("job", job, "artifact", artifact, "stage", StageMuscleDiagram)

	var best *Attempt
	budget := o.params.MaxAttempts
	for i := 1; i <= budget; i++ {
		seed := Seed(contentKey, StageMuscleDiagram, i)
		candidate, ok := o.generate(ctx, StageMuscleDiagram, artifact, i, Request{
			Prompt:    prompt,
			Seed:      seed,
			Reference: reference,
		}, log)
		if !ok {
			continue
		}

		att := &Attempt{Index: i, Seed: seed, Candidate: candidate}
		if img, _, err := imageutil.DecodeOriented(candidate); err != nil {
			log.Warn("diagram candidate did not decode", "attempt", i, "error", err)
		} else {
			res := diagram.Evaluate(img, o.params.Diagram)
			att.Diagram = &res
			att.Score = res.Composite
			att.Passed = res.Passed
		}

		if best == nil || att.Score > best.Score {
			best = att
		}
		if att.Passed {
			metrics.GenerationPasses.WithLabelValues(StageMuscleDiagram).Inc()
			log.Info("diagram passed gate", "attempt", i)
			return &Outcome{Artifact: artifact, State: StatePassed, Attempts: i, Best: att}, nil
		}
	}

	if best == nil {
		return nil, ErrNoCandidate
	}
	return &Outcome{Artifact: artifact, State: StateExhausted, Attempts: budget, Best: best}, nil
}

// generate issues one bounded generator call and archives the result. A
// generator error or timeout consumes the attempt and the loop moves on.
func (o *Orchestrator) generate(ctx context.Context, stage, artifact string, attempt int, req Request, log *slog.Logger) ([]byte, bool) {
	metrics.GenerationAttempts.WithLabelValues(stage).Inc()

	genCtx, cancel := context.WithTimeout(ctx, o.params.GenerateTimeout)
	defer cancel()

	candidate, err := o.gen.Generate(genCtx, req)
	if err != nil {
		log.Warn("generator call failed", "attempt", attempt, "error", err)
		return nil, false
	}
	if len(candidate) == 0 {
		log.Warn("generator returned empty candidate", "attempt", attempt)
		return nil, false
	}

	// Audit trail: raw bytes are kept unconditionally; a persistence
	// failure never blocks scoring or retry progression.
	if o.store != nil {
		if err := o.store.Put(ctx, artifact, attempt, candidate); err != nil {
			metrics.StoreFailures.Inc()
			log.Warn("failed to archive attempt", "attempt", attempt, "error", err)
		}
	}
	return candidate, true
}

// safeEvaluatePose contains scorer panics so they surface as an acceptance
// decision instead of an orchestrator crash.
func (o *Orchestrator) safeEvaluatePose(source, candidate []byte) (eval poseEval, err error, panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			metrics.ScorerPanics.Inc()
			slog.Error("scorer panic contained", "panic", r)
			panicked = true
		}
	}()
	eval, err = o.evaluatePose(source, candidate)
	return eval, err, panicked
}

// buildEdgeMap derives the conditioning edge image from the reference.
// Every failure path falls back to nil (generate from the raw reference);
// this stage never fails the pipeline.
func (o *Orchestrator) buildEdgeMap(reference []byte, log *slog.Logger) []byte {
	img, _, err := imageutil.DecodeOriented(reference)
	if err != nil {
		log.Warn("reference did not decode for edge extraction", "error", err)
		return nil
	}

	edges, err := edgemap.Build(img, o.params.EdgeMap)
	if err != nil {
		if errors.Is(err, edgemap.ErrNoUsableEdges) {
			log.Info("no usable edges, conditioning on raw reference")
		} else {
			log.Warn("edge extraction failed", "error", err)
		}
		return nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, edges); err != nil {
		log.Warn("edge map encoding failed", "error", err)
		return nil
	}
	return buf.Bytes()
}
