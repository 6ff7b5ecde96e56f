// Package model defines the core continuity engine data types.
package model

import "time"

// Language is a supported language tag ("pt", "en", ...) or Unknown.
type Language string

const (
	LangPT      Language = "pt"
	LangEN      Language = "en"
	LangES      Language = "es"
	LangFR      Language = "fr"
	LangDE      Language = "de"
	LangIT      Language = "it"
	LangJA      Language = "ja"
	LangZH      Language = "zh"
	LangRU      Language = "ru"
	LangUnknown Language = "unknown"
)

// DefaultLanguagePriority is the fixed order in which candidate languages
// are tried when identification returns Unknown.
var DefaultLanguagePriority = []Language{
	LangPT, LangEN, LangES, LangFR, LangDE, LangIT, LangJA, LangZH, LangRU,
}

// Supported reports whether l is one of the closed set of language tags.
func (l Language) Supported() bool {
	for _, s := range DefaultLanguagePriority {
		if l == s {
			return true
		}
	}
	return false
}

// Method records which component produced a classification.
type Method string

const (
	MethodPattern  Method = "pattern"
	MethodSemantic Method = "semantic"
	MethodNone     Method = "none"
)

// ClassificationResult is the outcome of a single classify call.
// It is produced fresh per call and never persisted.
type ClassificationResult struct {
	IsContinuityQuestion bool     `json:"is_continuity_question"`
	Confidence           float64  `json:"confidence"`
	Language             Language `json:"language"`
	MatchedRule          string   `json:"matched_rule,omitempty"`
	Method               Method   `json:"method"`
	Rationale            string   `json:"rationale,omitempty"`
}

// SessionStatus is the lifecycle state of a session.
type SessionStatus string

const (
	StatusActive   SessionStatus = "active"
	StatusEnded    SessionStatus = "ended"
	StatusArchived SessionStatus = "archived"
)

// CanTransitionTo reports whether the status change is allowed.
// The only legal transitions are active->ended and ended->archived.
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	switch s {
	case StatusActive:
		return next == StatusEnded
	case StatusEnded:
		return next == StatusArchived
	}
	return false
}

// ValidImportances are the allowed timeline event importance levels.
var ValidImportances = map[string]bool{
	"low":    true,
	"normal": true,
	"high":   true,
}

// TimelineEvent is one entry in a session's timeline.
type TimelineEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
	Importance  string    `json:"importance"`
}

// SessionState is the authoritative persisted state of a session.
// Timeline is kept in chronological (ascending) order.
type SessionState struct {
	SessionID    string          `json:"session_id"`
	ProjectName  string          `json:"project_name"`
	CurrentFocus string          `json:"current_focus"`
	Timeline     []TimelineEvent `json:"timeline,omitempty"`
	PendingTasks []string        `json:"pending_tasks,omitempty"`
	LastUpdated  time.Time       `json:"last_updated"`
	Status       SessionStatus   `json:"status"`
}

// RecoveryPayload is the derived snapshot returned by a recover call.
// RecentTimeline is bounded and ordered most-recent-first. The payload is
// never persisted; SessionState remains the source of truth.
type RecoveryPayload struct {
	SessionID      string          `json:"session_id"`
	ProjectName    string          `json:"project_name"`
	CurrentFocus   string          `json:"current_focus"`
	RecentTimeline []TimelineEvent `json:"recent_timeline"`
	PendingTasks   []string        `json:"pending_tasks"`
	GeneratedAt    time.Time       `json:"generated_at"`
}

// LearningExample is a labeled utterance used to adapt semantic scoring.
// Examples are append-only and never mutated after creation.
type LearningExample struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Label     bool      `json:"label"`
	Language  Language  `json:"language"`
	CreatedAt time.Time `json:"created_at"`
}
