// Package genloop drives the quality-gated generation retry loop: it calls
// an external generator, scores each candidate for pose fidelity (or
// silhouette agreement when landmarks are unavailable), and keeps the
// best-scoring candidate across a bounded attempt budget.
package genloop

import (
	"context"
	"errors"
	"time"

	"pose-gate/internal/diagram"
	"pose-gate/internal/edgemap"
	"pose-gate/internal/fidelity"
	"pose-gate/internal/landmark"
	"pose-gate/internal/silhouette"
)

// ErrNoCandidate reports that the generator produced nothing at all across
// the full attempt budget. This is the only user-visible failure; budget
// exhaustion without a fidelity pass still returns the best candidate.
var ErrNoCandidate = errors.New("genloop: generator produced no candidate")

// Request is one generation call. EdgeMap is nil when the reference yielded
// no usable edges.
type Request struct {
	Prompt    string
	Seed      int64
	Reference []byte
	EdgeMap   []byte
}

// Generator is the external, fidelity-unaware generative process.
type Generator interface {
	Generate(ctx context.Context, req Request) ([]byte, error)
}

// AttemptStore archives raw candidate bytes keyed by artifact and attempt
// number. Failures are logged and never block scoring.
type AttemptStore interface {
	Put(ctx context.Context, artifact string, attempt int, data []byte) error
}

// Extractor is the landmark detection capability. *landmark.Extractor
// satisfies it; tests inject fakes, which also suppresses the silhouette
// fallback so unit runs stay deterministic.
type Extractor interface {
	Available() bool
	Extract(data []byte) (*landmark.Set, error)
}

// State is the terminal state of one artifact's retry loop.
type State int

const (
	// StatePassed means an attempt passed validation and the loop exited
	// early.
	StatePassed State = iota
	// StateExhausted means the budget ran out; the best-scoring attempt is
	// returned anyway.
	StateExhausted
	// StateAccepted means the scorer itself failed and the current attempt
	// was accepted without validation rather than blocking delivery.
	StateAccepted
)

func (s State) String() string {
	switch s {
	case StatePassed:
		return "passed"
	case StateExhausted:
		return "exhausted"
	case StateAccepted:
		return "accepted"
	default:
		return "unknown"
	}
}

// Attempt records one retry iteration. Never mutated after creation.
type Attempt struct {
	Index      int                `json:"index"`
	Seed       int64              `json:"seed"`
	Candidate  []byte             `json:"-"`
	Fidelity   fidelity.Result    `json:"fidelity"`
	Silhouette *silhouette.Result `json:"silhouette,omitempty"`
	Diagram    *diagram.Result    `json:"diagram,omitempty"`
	Score      float64            `json:"score"`
	Passed     bool               `json:"passed"`
}

// Outcome is the final result of an artifact's retry loop.
type Outcome struct {
	Artifact string   `json:"artifact"`
	State    State    `json:"state"`
	Attempts int      `json:"attempts"`
	Best     *Attempt `json:"best"`
}

// Params configures the retry loops.
type Params struct {
	// MaxAttempts is the fidelity budget per artifact.
	MaxAttempts int `yaml:"max_attempts"`

	// GenerateTimeout bounds one external generator call. A timeout is a
	// failed attempt consuming one unit of budget, never a pipeline
	// failure.
	GenerateTimeout time.Duration `yaml:"generate_timeout"`

	Fidelity   fidelity.Params   `yaml:"fidelity"`
	Silhouette silhouette.Params `yaml:"silhouette"`
	EdgeMap    edgemap.Params    `yaml:"edge_map"`
	Diagram    diagram.Params    `yaml:"diagram"`
}

// DefaultParams returns the default loop configuration.
func DefaultParams() Params {
	return Params{
		MaxAttempts:     3,
		GenerateTimeout: 2 * time.Minute,
		Fidelity:        fidelity.DefaultParams(),
		Silhouette:      silhouette.DefaultParams(),
		EdgeMap:         edgemap.DefaultParams(),
		Diagram:         diagram.DefaultParams(),
	}
}
