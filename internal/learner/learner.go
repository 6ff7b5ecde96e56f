// Package learner accumulates labeled continuity examples and feeds them
// to scorers capable of online adaptation.
package learner

import (
	"context"
	"fmt"
	"strings"

	"github.com/luaraujo/continuity/internal/lang"
	"github.com/luaraujo/continuity/internal/model"
	"github.com/luaraujo/continuity/internal/semantic"
	"github.com/luaraujo/continuity/internal/store"
)

// Learner records learning examples. Recording only fails on storage
// failure; a scorer without adaptation capability is not an error, the
// example is still kept for later reloads.
type Learner struct {
	store      store.SessionStore
	scorer     semantic.Scorer
	identifier *lang.Identifier
}

// New creates a learner. identifier fills in the language when the caller
// omits it.
func New(st store.SessionStore, scorer semantic.Scorer, identifier *lang.Identifier) *Learner {
	return &Learner{store: st, scorer: scorer, identifier: identifier}
}

// Learn appends a labeled example and, when the active scorer adapts
// online, signals it. Returns whether the example was newly recorded;
// duplicates by (text, language) are accepted but not double-counted.
func (l *Learner) Learn(ctx context.Context, text string, label bool, language model.Language) (bool, error) {
	if strings.TrimSpace(text) == "" {
		return false, fmt.Errorf("%w: example text is required", model.ErrValidation)
	}
	if language == "" || language == model.LangUnknown {
		language = l.identifier.Identify(text)
	}

	ex, inserted, err := l.store.AppendExample(ctx, store.ExampleParams{
		Text:     text,
		Label:    label,
		Language: language,
	})
	if err != nil {
		return false, err
	}

	if adapter, ok := l.scorer.(semantic.Adapter); ok {
		adapter.Adapt(*ex)
	}
	return inserted, nil
}

// Reload replays all stored examples into an adaptive scorer, typically at
// startup so prior lifetimes' learning takes effect.
func (l *Learner) Reload(ctx context.Context) (int, error) {
	adapter, ok := l.scorer.(semantic.Adapter)
	if !ok {
		return 0, nil
	}
	examples, err := l.store.ListExamples(ctx, "")
	if err != nil {
		return 0, err
	}
	for _, ex := range examples {
		adapter.Adapt(ex)
	}
	return len(examples), nil
}
