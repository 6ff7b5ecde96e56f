// Package store provides the session storage interface and SQLite
// implementation. Sessions are the engine's only shared mutable state;
// writes to the same session are serialized per session_id.
package store

import (
	"context"

	"github.com/luaraujo/continuity/internal/model"
)

// StartParams holds parameters for creating a session.
type StartParams struct {
	SessionID   string // optional; generated when empty
	ProjectName string
	Focus       string
}

// EventParams holds parameters for appending a timeline event.
type EventParams struct {
	SessionID   string
	Description string
	Importance  string // low, normal, high; defaults to normal
}

// ExampleParams holds parameters for recording a learning example.
type ExampleParams struct {
	Text     string
	Label    bool
	Language model.Language
}

// Stats summarizes store contents.
type Stats struct {
	Sessions      int `json:"sessions"`
	ActiveCount   int `json:"active"`
	EndedCount    int `json:"ended"`
	ArchivedCount int `json:"archived"`
	Examples      int `json:"examples"`
}

// SessionStore defines session and example persistence.
type SessionStore interface {
	// Get retrieves a session by id regardless of status.
	Get(ctx context.Context, sessionID string) (*model.SessionState, error)

	// Put upserts a full session state keyed by session_id.
	Put(ctx context.Context, state *model.SessionState) error

	// LatestFor returns the active session of a project with the
	// greatest last_updated.
	LatestFor(ctx context.Context, projectName string) (*model.SessionState, error)

	// ListActive returns all active sessions, most recently updated first.
	ListActive(ctx context.Context) ([]model.SessionState, error)

	// StartSession creates a new active session.
	StartSession(ctx context.Context, p StartParams) (*model.SessionState, error)

	// UpdateFocus replaces the current focus of an active session.
	UpdateFocus(ctx context.Context, sessionID, focus string) error

	// AppendTimelineEvent adds an event to an active session's timeline.
	AppendTimelineEvent(ctx context.Context, p EventParams) error

	// AddPendingTask adds a task to an active session. Adding an
	// existing task is a no-op.
	AddPendingTask(ctx context.Context, sessionID, task string) error

	// CompletePendingTask removes a task from an active session.
	CompletePendingTask(ctx context.Context, sessionID, task string) error

	// EndSession transitions active -> ended.
	EndSession(ctx context.Context, sessionID string) error

	// ArchiveSession transitions ended -> archived.
	ArchiveSession(ctx context.Context, sessionID string) error

	// AppendExample records a learning example. Returns the stored
	// example and false when an equal (text, language) pair already
	// exists.
	AppendExample(ctx context.Context, p ExampleParams) (*model.LearningExample, bool, error)

	// ListExamples returns stored examples, oldest first, optionally
	// filtered by language.
	ListExamples(ctx context.Context, language model.Language) ([]model.LearningExample, error)

	// Stats summarizes store contents.
	Stats(ctx context.Context) (*Stats, error)

	// Close closes the store.
	Close() error
}
