package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/luaraujo/continuity/internal/lang"
	"github.com/luaraujo/continuity/internal/model"
)

// timeLayout is RFC3339 with fixed-width nanoseconds so that stored
// timestamps order correctly under SQLite's lexicographic TEXT comparison.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements SessionStore using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, storageErr("create db dir", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, storageErr("open db", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
		locks:   make(map[string]*sync.Mutex),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, storageErr("migrate", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

// lockSession returns the per-session mutex enforcing the
// single-writer-per-session discipline.
func (s *SQLiteStore) lockSession(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sessionID] = l
	}
	return l
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		session_id    TEXT PRIMARY KEY,
		project_name  TEXT NOT NULL,
		current_focus TEXT NOT NULL DEFAULT '',
		status        TEXT NOT NULL DEFAULT 'active',
		created_at    TEXT NOT NULL,
		last_updated  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_project ON sessions(project_name, status);
	CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(last_updated DESC);

	CREATE TABLE IF NOT EXISTS timeline_events (
		id          TEXT PRIMARY KEY,
		session_id  TEXT NOT NULL REFERENCES sessions(session_id),
		ts          TEXT NOT NULL,
		description TEXT NOT NULL,
		importance  TEXT NOT NULL DEFAULT 'normal'
	);
	CREATE INDEX IF NOT EXISTS idx_events_session ON timeline_events(session_id, ts);

	CREATE TABLE IF NOT EXISTS pending_tasks (
		session_id TEXT NOT NULL REFERENCES sessions(session_id),
		task       TEXT NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (session_id, task)
	);

	CREATE TABLE IF NOT EXISTS learning_examples (
		id         TEXT PRIMARY KEY,
		text       TEXT NOT NULL,
		text_norm  TEXT NOT NULL,
		label      INTEGER NOT NULL,
		language   TEXT NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE (text_norm, language)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(model.ErrStorage, err))
}

func (s *SQLiteStore) Get(ctx context.Context, sessionID string) (*model.SessionState, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session_id is required", model.ErrValidation)
	}
	return s.loadSession(ctx, s.db, sessionID)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLiteStore) loadSession(ctx context.Context, q querier, sessionID string) (*model.SessionState, error) {
	var st model.SessionState
	var createdAt, lastUpdated string
	err := q.QueryRowContext(ctx,
		`SELECT session_id, project_name, current_focus, status, created_at, last_updated
		 FROM sessions WHERE session_id = ?`, sessionID).
		Scan(&st.SessionID, &st.ProjectName, &st.CurrentFocus, &st.Status, &createdAt, &lastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: session %s", model.ErrNotFound, sessionID)
	}
	if err != nil {
		return nil, storageErr("load session", err)
	}
	st.LastUpdated, _ = time.Parse(time.RFC3339Nano, lastUpdated)

	rows, err := q.QueryContext(ctx,
		`SELECT ts, description, importance FROM timeline_events
		 WHERE session_id = ? ORDER BY ts, id`, sessionID)
	if err != nil {
		return nil, storageErr("load timeline", err)
	}
	defer rows.Close()
	for rows.Next() {
		var ev model.TimelineEvent
		var ts string
		if err := rows.Scan(&ts, &ev.Description, &ev.Importance); err != nil {
			return nil, storageErr("scan event", err)
		}
		ev.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		st.Timeline = append(st.Timeline, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("load timeline", err)
	}

	taskRows, err := q.QueryContext(ctx,
		`SELECT task FROM pending_tasks WHERE session_id = ? ORDER BY created_at, task`, sessionID)
	if err != nil {
		return nil, storageErr("load tasks", err)
	}
	defer taskRows.Close()
	for taskRows.Next() {
		var task string
		if err := taskRows.Scan(&task); err != nil {
			return nil, storageErr("scan task", err)
		}
		st.PendingTasks = append(st.PendingTasks, task)
	}
	if err := taskRows.Err(); err != nil {
		return nil, storageErr("load tasks", err)
	}

	return &st, nil
}

// Put upserts the full session state. Status may only move forward through
// the active -> ended -> archived machine.
func (s *SQLiteStore) Put(ctx context.Context, state *model.SessionState) error {
	if state == nil || state.SessionID == "" {
		return fmt.Errorf("%w: session_id is required", model.ErrValidation)
	}
	if state.ProjectName == "" {
		return fmt.Errorf("%w: project_name is required", model.ErrValidation)
	}
	switch state.Status {
	case model.StatusActive, model.StatusEnded, model.StatusArchived:
	default:
		return fmt.Errorf("%w: unknown status %q", model.ErrValidation, state.Status)
	}

	l := s.lockSession(state.SessionID)
	l.Lock()
	defer l.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin put", err)
	}
	defer tx.Rollback()

	var current model.SessionStatus
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM sessions WHERE session_id = ?`, state.SessionID).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// new session
	case err != nil:
		return storageErr("read status", err)
	case current != state.Status && !current.CanTransitionTo(state.Status):
		return fmt.Errorf("%w: %s -> %s", model.ErrInvalidState, current, state.Status)
	}

	now := time.Now().UTC()
	lastUpdated := state.LastUpdated
	if lastUpdated.IsZero() {
		lastUpdated = now
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (session_id, project_name, current_focus, status, created_at, last_updated)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET
		   project_name = excluded.project_name,
		   current_focus = excluded.current_focus,
		   status = excluded.status,
		   last_updated = excluded.last_updated`,
		state.SessionID, state.ProjectName, state.CurrentFocus, state.Status,
		now.Format(timeLayout), lastUpdated.UTC().Format(timeLayout))
	if err != nil {
		return storageErr("upsert session", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM timeline_events WHERE session_id = ?`, state.SessionID); err != nil {
		return storageErr("replace timeline", err)
	}
	for _, ev := range state.Timeline {
		importance := ev.Importance
		if importance == "" {
			importance = "normal"
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO timeline_events (id, session_id, ts, description, importance) VALUES (?, ?, ?, ?, ?)`,
			s.newID(), state.SessionID, ev.Timestamp.UTC().Format(timeLayout), ev.Description, importance)
		if err != nil {
			return storageErr("insert event", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM pending_tasks WHERE session_id = ?`, state.SessionID); err != nil {
		return storageErr("replace tasks", err)
	}
	for _, task := range state.PendingTasks {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO pending_tasks (session_id, task, created_at) VALUES (?, ?, ?)`,
			state.SessionID, task, now.Format(timeLayout))
		if err != nil {
			return storageErr("insert task", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr("commit put", err)
	}
	return nil
}

func (s *SQLiteStore) LatestFor(ctx context.Context, projectName string) (*model.SessionState, error) {
	if projectName == "" {
		return nil, fmt.Errorf("%w: project_name is required", model.ErrValidation)
	}
	var sessionID string
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id FROM sessions
		 WHERE project_name = ? AND status = 'active'
		 ORDER BY last_updated DESC, session_id LIMIT 1`, projectName).Scan(&sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no active session for project %s", model.ErrNotFound, projectName)
	}
	if err != nil {
		return nil, storageErr("latest for project", err)
	}
	return s.loadSession(ctx, s.db, sessionID)
}

func (s *SQLiteStore) ListActive(ctx context.Context) ([]model.SessionState, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id FROM sessions WHERE status = 'active' ORDER BY last_updated DESC, session_id`)
	if err != nil {
		return nil, storageErr("list active", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, storageErr("scan session id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list active", err)
	}

	var states []model.SessionState
	for _, id := range ids {
		st, err := s.loadSession(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
		states = append(states, *st)
	}
	return states, nil
}

func (s *SQLiteStore) StartSession(ctx context.Context, p StartParams) (*model.SessionState, error) {
	if strings.TrimSpace(p.ProjectName) == "" {
		return nil, fmt.Errorf("%w: project_name is required", model.ErrValidation)
	}
	sessionID := p.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	l := s.lockSession(sessionID)
	l.Lock()
	defer l.Unlock()

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, project_name, current_focus, status, created_at, last_updated)
		 VALUES (?, ?, ?, 'active', ?, ?)`,
		sessionID, p.ProjectName, p.Focus, now.Format(timeLayout), now.Format(timeLayout))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "PRIMARY") {
			return nil, fmt.Errorf("%w: session %s already exists", model.ErrValidation, sessionID)
		}
		return nil, storageErr("insert session", err)
	}

	return &model.SessionState{
		SessionID:    sessionID,
		ProjectName:  p.ProjectName,
		CurrentFocus: p.Focus,
		LastUpdated:  now,
		Status:       model.StatusActive,
	}, nil
}

// mutateActive runs fn inside one transaction after verifying the session
// exists and is active. A failed check or failed fn leaves the stored
// state untouched.
func (s *SQLiteStore) mutateActive(ctx context.Context, sessionID string, fn func(tx *sql.Tx) error) error {
	if sessionID == "" {
		return fmt.Errorf("%w: session_id is required", model.ErrValidation)
	}

	l := s.lockSession(sessionID)
	l.Lock()
	defer l.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin mutation", err)
	}
	defer tx.Rollback()

	var status model.SessionStatus
	err = tx.QueryRowContext(ctx, `SELECT status FROM sessions WHERE session_id = ?`, sessionID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: session %s", model.ErrNotFound, sessionID)
	}
	if err != nil {
		return storageErr("read status", err)
	}
	if status != model.StatusActive {
		return fmt.Errorf("%w: session %s is %s", model.ErrInvalidState, sessionID, status)
	}

	if err := fn(tx); err != nil {
		return err
	}

	now := time.Now().UTC().Format(timeLayout)
	if _, err := tx.ExecContext(ctx, `UPDATE sessions SET last_updated = ? WHERE session_id = ?`, now, sessionID); err != nil {
		return storageErr("touch session", err)
	}

	if err := tx.Commit(); err != nil {
		return storageErr("commit mutation", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateFocus(ctx context.Context, sessionID, focus string) error {
	return s.mutateActive(ctx, sessionID, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `UPDATE sessions SET current_focus = ? WHERE session_id = ?`, focus, sessionID)
		if err != nil {
			return storageErr("update focus", err)
		}
		return nil
	})
}

func (s *SQLiteStore) AppendTimelineEvent(ctx context.Context, p EventParams) error {
	if strings.TrimSpace(p.Description) == "" {
		return fmt.Errorf("%w: event description is required", model.ErrValidation)
	}
	importance := p.Importance
	if importance == "" {
		importance = "normal"
	}
	if !model.ValidImportances[importance] {
		return fmt.Errorf("%w: unknown importance %q", model.ErrValidation, importance)
	}
	return s.mutateActive(ctx, p.SessionID, func(tx *sql.Tx) error {
		now := time.Now().UTC().Format(timeLayout)
		_, err := tx.ExecContext(ctx,
			`INSERT INTO timeline_events (id, session_id, ts, description, importance) VALUES (?, ?, ?, ?, ?)`,
			s.newID(), p.SessionID, now, p.Description, importance)
		if err != nil {
			return storageErr("insert event", err)
		}
		return nil
	})
}

func (s *SQLiteStore) AddPendingTask(ctx context.Context, sessionID, task string) error {
	if strings.TrimSpace(task) == "" {
		return fmt.Errorf("%w: task is required", model.ErrValidation)
	}
	return s.mutateActive(ctx, sessionID, func(tx *sql.Tx) error {
		now := time.Now().UTC().Format(timeLayout)
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO pending_tasks (session_id, task, created_at) VALUES (?, ?, ?)`,
			sessionID, task, now)
		if err != nil {
			return storageErr("insert task", err)
		}
		return nil
	})
}

func (s *SQLiteStore) CompletePendingTask(ctx context.Context, sessionID, task string) error {
	return s.mutateActive(ctx, sessionID, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM pending_tasks WHERE session_id = ? AND task = ?`, sessionID, task)
		if err != nil {
			return storageErr("delete task", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: task %q", model.ErrNotFound, task)
		}
		return nil
	})
}

// transition moves a session from one status to the next, rejecting any
// other move.
func (s *SQLiteStore) transition(ctx context.Context, sessionID string, from, to model.SessionStatus) error {
	if sessionID == "" {
		return fmt.Errorf("%w: session_id is required", model.ErrValidation)
	}

	l := s.lockSession(sessionID)
	l.Lock()
	defer l.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin transition", err)
	}
	defer tx.Rollback()

	var status model.SessionStatus
	err = tx.QueryRowContext(ctx, `SELECT status FROM sessions WHERE session_id = ?`, sessionID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: session %s", model.ErrNotFound, sessionID)
	}
	if err != nil {
		return storageErr("read status", err)
	}
	if status != from || !status.CanTransitionTo(to) {
		return fmt.Errorf("%w: session %s is %s, cannot become %s", model.ErrInvalidState, sessionID, status, to)
	}

	now := time.Now().UTC().Format(timeLayout)
	if _, err := tx.ExecContext(ctx,
		`UPDATE sessions SET status = ?, last_updated = ? WHERE session_id = ?`, to, now, sessionID); err != nil {
		return storageErr("update status", err)
	}

	if err := tx.Commit(); err != nil {
		return storageErr("commit transition", err)
	}
	return nil
}

func (s *SQLiteStore) EndSession(ctx context.Context, sessionID string) error {
	return s.transition(ctx, sessionID, model.StatusActive, model.StatusEnded)
}

func (s *SQLiteStore) ArchiveSession(ctx context.Context, sessionID string) error {
	return s.transition(ctx, sessionID, model.StatusEnded, model.StatusArchived)
}

func (s *SQLiteStore) AppendExample(ctx context.Context, p ExampleParams) (*model.LearningExample, bool, error) {
	text := strings.TrimSpace(p.Text)
	if text == "" {
		return nil, false, fmt.Errorf("%w: example text is required", model.ErrValidation)
	}
	language := p.Language
	if language == "" {
		language = model.LangUnknown
	}
	if language != model.LangUnknown && !language.Supported() {
		return nil, false, fmt.Errorf("%w: unsupported language %q", model.ErrValidation, language)
	}

	now := time.Now().UTC()
	ex := &model.LearningExample{
		ID:        s.newID(),
		Text:      text,
		Label:     p.Label,
		Language:  language,
		CreatedAt: now,
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO learning_examples (id, text, text_norm, label, language, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ex.ID, text, lang.Fold(text), boolToInt(p.Label), string(language), now.Format(timeLayout))
	if err != nil {
		return nil, false, storageErr("insert example", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ex, false, nil
	}
	return ex, true, nil
}

func (s *SQLiteStore) ListExamples(ctx context.Context, language model.Language) ([]model.LearningExample, error) {
	query := `SELECT id, text, label, language, created_at FROM learning_examples ORDER BY created_at, id`
	args := []any{}
	if language != "" {
		query = `SELECT id, text, label, language, created_at FROM learning_examples
		         WHERE language = ? ORDER BY created_at, id`
		args = append(args, string(language))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list examples", err)
	}
	defer rows.Close()

	var examples []model.LearningExample
	for rows.Next() {
		var ex model.LearningExample
		var label int
		var createdAt string
		if err := rows.Scan(&ex.ID, &ex.Text, &label, &ex.Language, &createdAt); err != nil {
			return nil, storageErr("scan example", err)
		}
		ex.Label = label != 0
		ex.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		examples = append(examples, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list examples", err)
	}
	return examples, nil
}

func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM sessions GROUP BY status`)
	if err != nil {
		return nil, storageErr("session stats", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status model.SessionStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, storageErr("scan stats", err)
		}
		stats.Sessions += n
		switch status {
		case model.StatusActive:
			stats.ActiveCount = n
		case model.StatusEnded:
			stats.EndedCount = n
		case model.StatusArchived:
			stats.ArchivedCount = n
		}
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("session stats", err)
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM learning_examples`).Scan(&stats.Examples); err != nil {
		return nil, storageErr("example stats", err)
	}
	return stats, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
