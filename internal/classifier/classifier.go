// Package classifier orchestrates language identification, pattern
// matching, and semantic scoring into a single continuity decision.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/luaraujo/continuity/internal/lang"
	"github.com/luaraujo/continuity/internal/model"
	"github.com/luaraujo/continuity/internal/pattern"
	"github.com/luaraujo/continuity/internal/semantic"
)

// Config holds classifier tuning. Zero values fall back to defaults.
type Config struct {
	// Threshold is the minimum semantic confidence treated as positive.
	Threshold float64

	// CharCap bounds input length; longer text is truncated on a word
	// boundary before any scoring.
	CharCap int

	// ScorerTimeout bounds the semantic scorer call. On timeout the
	// classification degrades to a negative result.
	ScorerTimeout time.Duration

	// Priority is the candidate language order tried when
	// identification returns Unknown.
	Priority []model.Language
}

const (
	defaultThreshold = 0.5
	defaultCharCap   = 2000
	defaultTimeout   = 5 * time.Second
)

// Classifier is safe for concurrent use: the pattern table and identifier
// are read-only after construction and scorers manage their own locking.
type Classifier struct {
	identifier *lang.Identifier
	table      *pattern.Table
	scorer     semantic.Scorer
	cfg        Config
}

// New creates a classifier.
func New(identifier *lang.Identifier, table *pattern.Table, scorer semantic.Scorer, cfg Config) *Classifier {
	if cfg.Threshold <= 0 {
		cfg.Threshold = defaultThreshold
	}
	if cfg.CharCap <= 0 {
		cfg.CharCap = defaultCharCap
	}
	if cfg.ScorerTimeout <= 0 {
		cfg.ScorerTimeout = defaultTimeout
	}
	if len(cfg.Priority) == 0 {
		cfg.Priority = model.DefaultLanguagePriority
	}
	return &Classifier{identifier: identifier, table: table, scorer: scorer, cfg: cfg}
}

// Classify decides whether text is a continuity question. Pattern hits
// short-circuit semantic scoring: a literal match is trusted outright.
func (c *Classifier) Classify(ctx context.Context, text string) model.ClassificationResult {
	if strings.TrimSpace(text) == "" {
		return model.ClassificationResult{
			IsContinuityQuestion: false,
			Confidence:           1.0,
			Language:             model.LangUnknown,
			Method:               model.MethodNone,
		}
	}

	text = lang.TruncateWords(text, c.cfg.CharCap)

	identified := c.identifier.Identify(text)
	candidates := []model.Language{identified}
	if identified == model.LangUnknown {
		candidates = c.cfg.Priority
	}

	for _, candidate := range candidates {
		if m, ok := c.table.Match(text, candidate); ok {
			return model.ClassificationResult{
				IsContinuityQuestion: true,
				Confidence:           m.Weight,
				Language:             candidate,
				MatchedRule:          m.Rule,
				Method:               model.MethodPattern,
			}
		}
	}

	result, err := c.scoreWithTimeout(ctx, text, identified)
	if err != nil {
		// A slow or failing scorer degrades to "not a continuity
		// question" rather than propagating.
		return model.ClassificationResult{
			IsContinuityQuestion: false,
			Confidence:           1.0,
			Language:             identified,
			Method:               model.MethodNone,
			Rationale:            "semantic scoring unavailable",
		}
	}

	if result.Confidence >= c.cfg.Threshold {
		return model.ClassificationResult{
			IsContinuityQuestion: true,
			Confidence:           result.Confidence,
			Language:             identified,
			Method:               model.MethodSemantic,
			Rationale:            result.Rationale,
		}
	}

	return model.ClassificationResult{
		IsContinuityQuestion: false,
		Confidence:           1.0 - result.Confidence,
		Language:             identified,
		Method:               model.MethodNone,
		Rationale:            result.Rationale,
	}
}

func (c *Classifier) scoreWithTimeout(ctx context.Context, text string, langHint model.Language) (semantic.Result, error) {
	tctx, cancel := context.WithTimeout(ctx, c.cfg.ScorerTimeout)
	defer cancel()

	result, err := c.scorer.Score(tctx, text, langHint)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return semantic.Result{}, fmt.Errorf("%w: %v", model.ErrScorerTimeout, err)
		}
		return semantic.Result{}, err
	}
	if result.Confidence < 0 {
		result.Confidence = 0
	}
	if result.Confidence > 1 {
		result.Confidence = 1
	}
	return result, nil
}
