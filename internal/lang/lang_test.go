package lang

import (
	"strings"
	"testing"

	"github.com/luaraujo/continuity/internal/model"
)

func TestFold(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Onde Paramos?", "onde paramos"},
		{"não", "nao"},
		{"¿Dónde nos quedamos?", "donde nos quedamos"},
		{"  multiple   spaces\tand\npunctuation!!! ", "multiple spaces and punctuation"},
		{"", ""},
		{"?!...", ""},
	}
	for _, tc := range cases {
		if got := Fold(tc.in); got != tc.want {
			t.Errorf("Fold(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTokenize(t *testing.T) {
	tokens := Tokenize("Where did we LEAVE off?")
	want := []string{"where", "did", "we", "leave", "off"}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(tokens), len(want), tokens)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, tokens[i], want[i])
		}
	}
}

func TestTruncateWords(t *testing.T) {
	text := "alpha beta gamma delta"
	got := TruncateWords(text, 12)
	if got != "alpha beta" {
		t.Errorf("TruncateWords = %q, want %q", got, "alpha beta")
	}
	if strings.HasSuffix(got, " ") {
		t.Errorf("truncated text has trailing space: %q", got)
	}

	if got := TruncateWords("short", 100); got != "short" {
		t.Errorf("text under cap changed: %q", got)
	}

	// Multi-byte input must not be cut mid-rune.
	jp := "どこまで話しましたか"
	cut := TruncateWords(jp, 7)
	for _, r := range cut {
		if r == '�' {
			t.Fatalf("truncation split a rune: %q", cut)
		}
	}
}

func TestIdentify(t *testing.T) {
	d := NewIdentifier(nil)

	cases := []struct {
		text string
		want model.Language
	}{
		{"onde paramos? eu estava trabalhando com você", model.LangPT},
		{"could you remind me what we were discussing?", model.LangEN},
		{"¿dónde nos quedamos cuando hablamos la última vez?", model.LangES},
		{"où est-ce que nous en étions dans notre travail?", model.LangFR},
		{"wo waren wir stehen geblieben mit der Arbeit?", model.LangDE},
		{"dove eravamo rimasti con il lavoro di ieri?", model.LangIT},
		{"どこまで話しましたか", model.LangJA},
		{"我们上次说到哪里", model.LangZH},
		{"где мы остановились в прошлый раз", model.LangRU},
	}
	for _, tc := range cases {
		if got := d.Identify(tc.text); got != tc.want {
			t.Errorf("Identify(%q) = %s, want %s", tc.text, got, tc.want)
		}
	}
}

func TestIdentifyUnknown(t *testing.T) {
	d := NewIdentifier(nil)
	for _, text := range []string{"", "   ", "xyzzy plugh quux", "12345 67890"} {
		if got := d.Identify(text); got != model.LangUnknown {
			t.Errorf("Identify(%q) = %s, want unknown", text, got)
		}
	}
}

func TestIdentifyDeterministic(t *testing.T) {
	d := NewIdentifier(nil)
	text := "que no se"
	first := d.Identify(text)
	for i := 0; i < 20; i++ {
		if got := d.Identify(text); got != first {
			t.Fatalf("Identify not deterministic: %s then %s", first, got)
		}
	}
}
