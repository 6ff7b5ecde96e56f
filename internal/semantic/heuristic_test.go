package semantic

import (
	"context"
	"testing"

	"github.com/luaraujo/continuity/internal/model"
)

func TestHeuristicContinuityQuestions(t *testing.T) {
	s := NewHeuristicScorer()
	ctx := context.Background()

	cases := []struct {
		text string
		hint model.Language
	}{
		{"could you remind me what we were discussing?", model.LangEN},
		{"what was the context of our last session?", model.LangEN},
		{"em que parte estávamos trabalhando antes?", model.LangPT},
		{"können wir da weitermachen wo wir waren? kontext bitte", model.LangDE},
	}
	for _, tc := range cases {
		res, err := s.Score(ctx, tc.text, tc.hint)
		if err != nil {
			t.Fatalf("score %q: %v", tc.text, err)
		}
		if res.Confidence < 0.5 {
			t.Errorf("Score(%q) = %.2f, want >= 0.5 (%s)", tc.text, res.Confidence, res.Rationale)
		}
		if res.Rationale == "" {
			t.Errorf("Score(%q): missing rationale", tc.text)
		}
	}
}

func TestHeuristicNonContinuity(t *testing.T) {
	s := NewHeuristicScorer()
	ctx := context.Background()

	cases := []string{
		"the weather is nice today",
		"please write a sorting function in go for a list of integers with duplicate values and negative numbers",
		"what is the capital of france?",
	}
	for _, text := range cases {
		res, err := s.Score(ctx, text, model.LangEN)
		if err != nil {
			t.Fatalf("score %q: %v", text, err)
		}
		if res.Confidence >= 0.5 {
			t.Errorf("Score(%q) = %.2f, want < 0.5 (%s)", text, res.Confidence, res.Rationale)
		}
	}
}

func TestHeuristicConfidenceRange(t *testing.T) {
	s := NewHeuristicScorer()
	ctx := context.Background()
	for _, text := range []string{"", "a", "where did we leave off before? context progress session"} {
		res, err := s.Score(ctx, text, model.LangUnknown)
		if err != nil {
			t.Fatalf("score: %v", err)
		}
		if res.Confidence < 0 || res.Confidence > 1 {
			t.Errorf("Score(%q) = %v outside [0,1]", text, res.Confidence)
		}
	}
}

func TestHeuristicLearningMovesScoreTowardLabel(t *testing.T) {
	s := NewHeuristicScorer()
	ctx := context.Background()
	text := "can we get back to that thing from before?"

	before, err := s.Score(ctx, text, model.LangEN)
	if err != nil {
		t.Fatal(err)
	}

	s.Adapt(model.LearningExample{Text: text, Label: true, Language: model.LangEN})
	after, err := s.Score(ctx, text, model.LangEN)
	if err != nil {
		t.Fatal(err)
	}
	if after.Confidence < before.Confidence {
		t.Errorf("positive example lowered score: %.2f -> %.2f", before.Confidence, after.Confidence)
	}
	if after.Confidence < 0.9 {
		t.Errorf("exact learned match scored %.2f, want >= 0.9", after.Confidence)
	}

	// Learning the same example twice must not change the outcome.
	s.Adapt(model.LearningExample{Text: text, Label: true, Language: model.LangEN})
	again, err := s.Score(ctx, text, model.LangEN)
	if err != nil {
		t.Fatal(err)
	}
	if again.Confidence != after.Confidence {
		t.Errorf("duplicate learn changed score: %.2f -> %.2f", after.Confidence, again.Confidence)
	}
}

func TestHeuristicNegativeExampleSuppresses(t *testing.T) {
	s := NewHeuristicScorer()
	ctx := context.Background()
	text := "what was the context of our last session?"

	before, err := s.Score(ctx, text, model.LangEN)
	if err != nil {
		t.Fatal(err)
	}
	if before.Confidence < 0.5 {
		t.Fatalf("precondition: expected positive-leaning score, got %.2f", before.Confidence)
	}

	s.Adapt(model.LearningExample{Text: text, Label: false, Language: model.LangEN})
	after, err := s.Score(ctx, text, model.LangEN)
	if err != nil {
		t.Fatal(err)
	}
	if after.Confidence >= 0.5 {
		t.Errorf("negative example did not suppress: %.2f", after.Confidence)
	}
}

func TestHeuristicLanguageScoping(t *testing.T) {
	s := NewHeuristicScorer()
	ctx := context.Background()

	// A Portuguese-labeled example must not fire for an English hint.
	s.Adapt(model.LearningExample{Text: "volta naquilo de antes", Label: true, Language: model.LangPT})

	res, err := s.Score(ctx, "volta naquilo de antes", model.LangEN)
	if err != nil {
		t.Fatal(err)
	}
	if res.Confidence >= 0.9 {
		t.Errorf("cross-language neighbor fired: %.2f", res.Confidence)
	}
}

func TestHeuristicHonorsContext(t *testing.T) {
	s := NewHeuristicScorer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Score(ctx, "where did we leave off", model.LangEN); err == nil {
		t.Error("expected error from canceled context")
	}
}
