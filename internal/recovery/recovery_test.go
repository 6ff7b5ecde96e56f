package recovery

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/luaraujo/continuity/internal/model"
	"github.com/luaraujo/continuity/internal/store"
)

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "continuity.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecoverBySessionID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	state, err := s.StartSession(ctx, store.StartParams{ProjectName: "luaraujo", Focus: "recovery engine"})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AddPendingTask(ctx, state.SessionID, "write docs"); err != nil {
		t.Fatal(err)
	}

	payload, err := New(s, 0).Recover(ctx, state.SessionID, "")
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if payload.SessionID != state.SessionID || payload.ProjectName != "luaraujo" {
		t.Errorf("got %+v", payload)
	}
	if payload.CurrentFocus != "recovery engine" {
		t.Errorf("focus = %q", payload.CurrentFocus)
	}
	if len(payload.PendingTasks) != 1 || payload.PendingTasks[0] != "write docs" {
		t.Errorf("tasks = %v", payload.PendingTasks)
	}
	if payload.GeneratedAt.IsZero() {
		t.Error("missing generated_at")
	}
}

func TestRecoverTimelineBoundAndOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	state := &model.SessionState{
		SessionID:   "bounded",
		ProjectName: "p",
		Status:      model.StatusActive,
	}
	for i := 0; i < 30; i++ {
		state.Timeline = append(state.Timeline, model.TimelineEvent{
			Timestamp:   now.Add(time.Duration(i) * time.Minute),
			Description: fmt.Sprintf("event-%d", i),
		})
	}
	if err := s.Put(ctx, state); err != nil {
		t.Fatal(err)
	}

	payload, err := New(s, 5).Recover(ctx, "bounded", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(payload.RecentTimeline) != 5 {
		t.Fatalf("timeline length = %d, want 5", len(payload.RecentTimeline))
	}
	// Most recent first.
	for i, want := range []string{"event-29", "event-28", "event-27", "event-26", "event-25"} {
		if payload.RecentTimeline[i].Description != want {
			t.Errorf("timeline[%d] = %q, want %q", i, payload.RecentTimeline[i].Description, want)
		}
	}
}

func TestRecoverResolutionOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	byID, _ := s.StartSession(ctx, store.StartParams{ProjectName: "alpha"})
	other, _ := s.StartSession(ctx, store.StartParams{ProjectName: "beta"})
	time.Sleep(10 * time.Millisecond)
	if err := s.UpdateFocus(ctx, other.SessionID, "bump"); err != nil {
		t.Fatal(err)
	}

	eng := New(s, 0)

	// Explicit id wins even when another session is fresher.
	payload, err := eng.Recover(ctx, byID.SessionID, "beta")
	if err != nil {
		t.Fatal(err)
	}
	if payload.SessionID != byID.SessionID {
		t.Errorf("by id: got %s", payload.SessionID)
	}

	// Project name selects that project's latest active session.
	payload, err = eng.Recover(ctx, "", "beta")
	if err != nil {
		t.Fatal(err)
	}
	if payload.SessionID != other.SessionID {
		t.Errorf("by project: got %s", payload.SessionID)
	}

	// Neither given: most recently updated active session.
	payload, err = eng.Recover(ctx, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if payload.SessionID != other.SessionID {
		t.Errorf("fallback: got %s, want %s", payload.SessionID, other.SessionID)
	}
}

func TestRecoverNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	eng := New(s, 0)

	if _, err := eng.Recover(ctx, "never-created", ""); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("by id: got %v, want ErrNotFound", err)
	}
	if _, err := eng.Recover(ctx, "", "no-such-project"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("by project: got %v, want ErrNotFound", err)
	}
	if _, err := eng.Recover(ctx, "", ""); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("no active sessions: got %v, want ErrNotFound", err)
	}
}
