// Package recovery assembles recovery payloads from persisted session
// state after a positive continuity classification.
package recovery

import (
	"context"
	"fmt"
	"time"

	"github.com/luaraujo/continuity/internal/model"
	"github.com/luaraujo/continuity/internal/store"
)

// DefaultTimelineBound caps recent_timeline length when no bound is
// configured.
const DefaultTimelineBound = 20

// Engine selects the relevant session and derives a payload from it. The
// payload is built fresh on every call; it is never written back.
type Engine struct {
	store store.SessionStore
	bound int
}

// New creates a recovery engine. bound <= 0 falls back to
// DefaultTimelineBound.
func New(st store.SessionStore, bound int) *Engine {
	if bound <= 0 {
		bound = DefaultTimelineBound
	}
	return &Engine{store: st, bound: bound}
}

// Recover resolves a session by id, then project, then the most recently
// updated active session, and returns its payload. A missing session is
// model.ErrNotFound, left for the caller to decide whether to start fresh.
func (e *Engine) Recover(ctx context.Context, sessionID, projectName string) (*model.RecoveryPayload, error) {
	state, err := e.resolve(ctx, sessionID, projectName)
	if err != nil {
		return nil, err
	}
	return e.assemble(state), nil
}

func (e *Engine) resolve(ctx context.Context, sessionID, projectName string) (*model.SessionState, error) {
	switch {
	case sessionID != "":
		return e.store.Get(ctx, sessionID)
	case projectName != "":
		return e.store.LatestFor(ctx, projectName)
	}

	active, err := e.store.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, fmt.Errorf("%w: no active sessions", model.ErrNotFound)
	}
	// ListActive is ordered most recently updated first.
	return &active[0], nil
}

// assemble truncates the timeline to the most recent entries, reordered
// most-recent-first, and carries pending tasks over as-is.
func (e *Engine) assemble(state *model.SessionState) *model.RecoveryPayload {
	timeline := state.Timeline
	if len(timeline) > e.bound {
		timeline = timeline[len(timeline)-e.bound:]
	}
	recent := make([]model.TimelineEvent, len(timeline))
	for i, ev := range timeline {
		recent[len(timeline)-1-i] = ev
	}

	return &model.RecoveryPayload{
		SessionID:      state.SessionID,
		ProjectName:    state.ProjectName,
		CurrentFocus:   state.CurrentFocus,
		RecentTimeline: recent,
		PendingTasks:   state.PendingTasks,
		GeneratedAt:    time.Now().UTC(),
	}
}
