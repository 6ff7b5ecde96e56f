// Package engine wires the continuity components behind the narrow
// request/response boundary consumed by the surrounding service layer.
package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/luaraujo/continuity/internal/classifier"
	"github.com/luaraujo/continuity/internal/lang"
	"github.com/luaraujo/continuity/internal/learner"
	"github.com/luaraujo/continuity/internal/model"
	"github.com/luaraujo/continuity/internal/pattern"
	"github.com/luaraujo/continuity/internal/recovery"
	"github.com/luaraujo/continuity/internal/semantic"
	"github.com/luaraujo/continuity/internal/store"
)

// Options configures an Engine. Store is required; everything else has a
// working default.
type Options struct {
	Store         store.SessionStore
	Scorer        semantic.Scorer
	Table         *pattern.Table
	Priority      []model.Language
	Threshold     float64
	CharCap       int
	ScorerTimeout time.Duration
	TimelineBound int
	Logger        *zap.Logger
}

// LearnResult reports whether a learn call recorded a new example.
// Duplicates are accepted without being double-counted.
type LearnResult struct {
	Accepted bool `json:"accepted"`
}

// Engine is the continuity detection and recovery engine. Classification
// is stateless per call; the session store is the only shared mutable
// resource.
type Engine struct {
	classifier *classifier.Classifier
	recovery   *recovery.Engine
	learner    *learner.Learner
	store      store.SessionStore
	log        *zap.Logger
}

// New assembles an engine from options.
func New(opts Options) *Engine {
	if opts.Table == nil {
		opts.Table = pattern.Default()
	}
	if opts.Scorer == nil {
		opts.Scorer = semantic.NewHeuristicScorer()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	identifier := lang.NewIdentifier(opts.Priority)
	cls := classifier.New(identifier, opts.Table, opts.Scorer, classifier.Config{
		Threshold:     opts.Threshold,
		CharCap:       opts.CharCap,
		ScorerTimeout: opts.ScorerTimeout,
		Priority:      opts.Priority,
	})

	return &Engine{
		classifier: cls,
		recovery:   recovery.New(opts.Store, opts.TimelineBound),
		learner:    learner.New(opts.Store, opts.Scorer, identifier),
		store:      opts.Store,
		log:        opts.Logger,
	}
}

// Classify decides whether text asks to resume prior context.
func (e *Engine) Classify(ctx context.Context, text string) model.ClassificationResult {
	result := e.classifier.Classify(ctx, text)
	e.log.Debug("classified input",
		zap.Bool("continuity", result.IsContinuityQuestion),
		zap.Float64("confidence", result.Confidence),
		zap.String("language", string(result.Language)),
		zap.String("method", string(result.Method)),
		zap.String("rule", result.MatchedRule),
	)
	return result
}

// Recover returns the reconstructed working context for a session,
// resolved by id, then project, then most recent activity.
func (e *Engine) Recover(ctx context.Context, sessionID, projectName string) (*model.RecoveryPayload, error) {
	payload, err := e.recovery.Recover(ctx, sessionID, projectName)
	if err != nil {
		e.log.Debug("recovery failed",
			zap.String("session_id", sessionID),
			zap.String("project", projectName),
			zap.String("code", model.ErrorCode(err)),
		)
		return nil, err
	}
	e.log.Debug("recovered session",
		zap.String("session_id", payload.SessionID),
		zap.Int("timeline_entries", len(payload.RecentTimeline)),
	)
	return payload, nil
}

// Learn records a labeled example and adapts the active scorer when it
// supports it.
func (e *Engine) Learn(ctx context.Context, text string, label bool, language model.Language) (LearnResult, error) {
	accepted, err := e.learner.Learn(ctx, text, label, language)
	if err != nil {
		return LearnResult{}, err
	}
	return LearnResult{Accepted: accepted}, nil
}

// ReloadExamples replays persisted examples into the scorer, typically at
// startup.
func (e *Engine) ReloadExamples(ctx context.Context) (int, error) {
	return e.learner.Reload(ctx)
}

// StartSession creates a new active session.
func (e *Engine) StartSession(ctx context.Context, p store.StartParams) (*model.SessionState, error) {
	return e.store.StartSession(ctx, p)
}

// UpdateFocus replaces an active session's current focus.
func (e *Engine) UpdateFocus(ctx context.Context, sessionID, focus string) error {
	return e.store.UpdateFocus(ctx, sessionID, focus)
}

// AppendTimelineEvent appends an event to an active session.
func (e *Engine) AppendTimelineEvent(ctx context.Context, p store.EventParams) error {
	return e.store.AppendTimelineEvent(ctx, p)
}

// AddPendingTask adds a pending task to an active session.
func (e *Engine) AddPendingTask(ctx context.Context, sessionID, task string) error {
	return e.store.AddPendingTask(ctx, sessionID, task)
}

// CompletePendingTask removes a pending task from an active session.
func (e *Engine) CompletePendingTask(ctx context.Context, sessionID, task string) error {
	return e.store.CompletePendingTask(ctx, sessionID, task)
}

// EndSession transitions a session active -> ended.
func (e *Engine) EndSession(ctx context.Context, sessionID string) error {
	return e.store.EndSession(ctx, sessionID)
}

// ArchiveSession transitions a session ended -> archived. The inactivity
// sweep invoking it is an external scheduled collaborator.
func (e *Engine) ArchiveSession(ctx context.Context, sessionID string) error {
	return e.store.ArchiveSession(ctx, sessionID)
}

// GetSession returns a session by id regardless of status.
func (e *Engine) GetSession(ctx context.Context, sessionID string) (*model.SessionState, error) {
	return e.store.Get(ctx, sessionID)
}

// ListActive returns active sessions, most recently updated first.
func (e *Engine) ListActive(ctx context.Context) ([]model.SessionState, error) {
	return e.store.ListActive(ctx)
}

// Stats summarizes store contents.
func (e *Engine) Stats(ctx context.Context) (*store.Stats, error) {
	return e.store.Stats(ctx)
}
