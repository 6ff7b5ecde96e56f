// Package semantic provides confidence scoring for continuity intent when
// no literal pattern matches. The Scorer contract is the swap point: the
// default heuristic and the embedding-backed implementation are
// interchangeable behind it.
package semantic

import (
	"context"

	"github.com/luaraujo/continuity/internal/model"
)

// Result is a scorer verdict: a confidence in [0,1] plus a short rationale
// explaining what drove the score.
type Result struct {
	Confidence float64
	Rationale  string
}

// Scorer estimates how likely text is a continuity question. langHint may
// be Unknown. Implementations must honor ctx cancellation; the classifier
// applies the caller-supplied timeout through it.
type Scorer interface {
	Score(ctx context.Context, text string, langHint model.Language) (Result, error)
}

// Adapter is the optional online-adaptation capability. Scorers that
// implement it incorporate learned examples within the current process
// lifetime; for others, examples are only recorded for later reload.
type Adapter interface {
	Adapt(ex model.LearningExample)
}
