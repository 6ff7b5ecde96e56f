package classifier

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/luaraujo/continuity/internal/lang"
	"github.com/luaraujo/continuity/internal/model"
	"github.com/luaraujo/continuity/internal/pattern"
	"github.com/luaraujo/continuity/internal/semantic"
)

// stubScorer returns a fixed confidence and records the text it saw.
type stubScorer struct {
	confidence float64
	err        error
	lastText   string
}

func (s *stubScorer) Score(ctx context.Context, text string, hint model.Language) (semantic.Result, error) {
	s.lastText = text
	if s.err != nil {
		return semantic.Result{}, s.err
	}
	return semantic.Result{Confidence: s.confidence, Rationale: "stub"}, nil
}

// slowScorer blocks until its context expires.
type slowScorer struct{}

func (slowScorer) Score(ctx context.Context, text string, hint model.Language) (semantic.Result, error) {
	<-ctx.Done()
	return semantic.Result{}, ctx.Err()
}

func newTestClassifier(s semantic.Scorer, cfg Config) *Classifier {
	return New(lang.NewIdentifier(nil), pattern.Default(), s, cfg)
}

func TestClassifyEmptyInput(t *testing.T) {
	c := newTestClassifier(&stubScorer{}, Config{})
	for _, text := range []string{"", "   ", "\n\t"} {
		res := c.Classify(context.Background(), text)
		if res.IsContinuityQuestion {
			t.Errorf("Classify(%q) positive", text)
		}
		if res.Confidence != 1.0 || res.Language != model.LangUnknown || res.Method != model.MethodNone {
			t.Errorf("Classify(%q) = %+v", text, res)
		}
	}
}

func TestClassifyPatternShortCircuit(t *testing.T) {
	scorer := &stubScorer{confidence: 0.1}
	c := newTestClassifier(scorer, Config{})

	res := c.Classify(context.Background(), "onde paramos?")
	if !res.IsContinuityQuestion {
		t.Fatalf("got %+v", res)
	}
	if res.Method != model.MethodPattern || res.Language != model.LangPT {
		t.Errorf("got method %s language %s", res.Method, res.Language)
	}
	if res.MatchedRule != "pt-onde-paramos" {
		t.Errorf("rule = %s", res.MatchedRule)
	}
	if res.Confidence < 0.9 {
		t.Errorf("confidence = %.2f", res.Confidence)
	}
	if scorer.lastText != "" {
		t.Error("scorer ran despite pattern match")
	}
}

func TestClassifySemanticPositive(t *testing.T) {
	c := newTestClassifier(&stubScorer{confidence: 0.8}, Config{})

	res := c.Classify(context.Background(), "could you remind me what we were discussing?")
	if !res.IsContinuityQuestion {
		t.Fatalf("got %+v", res)
	}
	if res.Method != model.MethodSemantic {
		t.Errorf("method = %s", res.Method)
	}
	if res.Language != model.LangEN {
		t.Errorf("language = %s", res.Language)
	}
	if res.Confidence != 0.8 {
		t.Errorf("confidence = %.2f", res.Confidence)
	}
	if res.Rationale == "" {
		t.Error("missing rationale")
	}
}

func TestClassifyBelowThreshold(t *testing.T) {
	c := newTestClassifier(&stubScorer{confidence: 0.3}, Config{Threshold: 0.5})

	res := c.Classify(context.Background(), "the weather is nice today")
	if res.IsContinuityQuestion {
		t.Fatalf("got %+v", res)
	}
	if res.Method != model.MethodNone {
		t.Errorf("method = %s", res.Method)
	}
	// Negative confidence is confidence in the negative decision.
	if res.Confidence != 0.7 {
		t.Errorf("confidence = %.2f, want 0.7", res.Confidence)
	}
}

func TestClassifyConfigurableThreshold(t *testing.T) {
	c := newTestClassifier(&stubScorer{confidence: 0.45}, Config{Threshold: 0.4})
	res := c.Classify(context.Background(), "the weather is nice today")
	if !res.IsContinuityQuestion {
		t.Errorf("confidence 0.45 under threshold 0.4 should be positive: %+v", res)
	}
}

func TestClassifyTruncatesLongInput(t *testing.T) {
	scorer := &stubScorer{confidence: 0.1}
	c := newTestClassifier(scorer, Config{CharCap: 50})

	long := strings.Repeat("filler words about the current topic ", 40)
	c.Classify(context.Background(), long)
	if len(scorer.lastText) > 50 {
		t.Errorf("scorer saw %d chars, cap is 50", len(scorer.lastText))
	}
	if strings.HasSuffix(scorer.lastText, " ") {
		t.Errorf("truncation left trailing space: %q", scorer.lastText)
	}
}

func TestClassifyPatternAppliesAfterTruncation(t *testing.T) {
	// The continuity phrase sits beyond the cap, so it must not match.
	text := strings.Repeat("unrelated preamble text here ", 10) + "where did we leave off?"
	c := newTestClassifier(&stubScorer{confidence: 0.1}, Config{CharCap: 60})

	res := c.Classify(context.Background(), text)
	if res.Method == model.MethodPattern {
		t.Errorf("pattern matched text past the cap: %+v", res)
	}
}

func TestClassifyScorerTimeoutDegrades(t *testing.T) {
	c := newTestClassifier(slowScorer{}, Config{ScorerTimeout: 20 * time.Millisecond})

	res := c.Classify(context.Background(), "is this about picking things up again")
	if res.IsContinuityQuestion {
		t.Fatalf("got %+v", res)
	}
	if res.Method != model.MethodNone {
		t.Errorf("method = %s", res.Method)
	}
	if res.Rationale != "semantic scoring unavailable" {
		t.Errorf("rationale = %q", res.Rationale)
	}
}

func TestClassifyScorerErrorDegrades(t *testing.T) {
	c := newTestClassifier(&stubScorer{err: context.Canceled}, Config{})

	res := c.Classify(context.Background(), "some neutral sentence about nothing")
	if res.IsContinuityQuestion || res.Method != model.MethodNone {
		t.Errorf("got %+v", res)
	}
}

func TestClassifyUnknownLanguageTriesPriorityOrder(t *testing.T) {
	c := newTestClassifier(&stubScorer{confidence: 0.1}, Config{})

	// No stop words identify a language, but the pt pattern still fires
	// through the priority sweep.
	res := c.Classify(context.Background(), "retomar conversa")
	if !res.IsContinuityQuestion || res.Method != model.MethodPattern {
		t.Fatalf("got %+v", res)
	}
	if res.Language != model.LangPT {
		t.Errorf("language = %s, want pt", res.Language)
	}
}

func TestClassifyClampsScorerOutput(t *testing.T) {
	c := newTestClassifier(&stubScorer{confidence: 1.7}, Config{})
	res := c.Classify(context.Background(), "neutral text with enough words")
	if res.Confidence > 1 {
		t.Errorf("confidence %v above 1", res.Confidence)
	}
}
