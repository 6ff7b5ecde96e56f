package pattern

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/luaraujo/continuity/internal/model"
)

func TestDefaultLiteralPhrasesMatch(t *testing.T) {
	table := Default()
	for _, language := range table.Languages() {
		for _, rule := range table.Rules(language) {
			if rule.Phrase == "" {
				continue
			}
			m, ok := table.Match(rule.Phrase, language)
			if !ok {
				t.Errorf("%s: phrase %q did not match its own table", language, rule.Phrase)
				continue
			}
			if m.Weight <= 0 || m.Weight > 1 {
				t.Errorf("%s: rule %s weight %v outside (0,1]", language, m.Rule, m.Weight)
			}
		}
	}
}

func TestMatchPunctuationAndDiacriticVariance(t *testing.T) {
	table := Default()

	cases := []struct {
		text     string
		language model.Language
		rule     string
	}{
		{"Onde paramos?", model.LangPT, "pt-onde-paramos"},
		{"onde paramos!!!", model.LangPT, "pt-onde-paramos"},
		{"então, onde paramos ontem?", model.LangPT, "pt-onde-paramos"},
		{"Where did we leave off?", model.LangEN, "en-where-did-we-leave-off"},
		{"hey — where did we leave off", model.LangEN, "en-where-did-we-leave-off"},
		{"¿Dónde nos quedamos?", model.LangES, "es-donde-nos-quedamos"},
		{"Wo waren wir stehen geblieben?", model.LangDE, "de-wo-waren-wir-stehen-geblieben"},
		{"請問、どこまで話しましたか？", model.LangJA, "ja-dokomade-hanashimashita"},
		{"我们上次说到哪里了？", model.LangZH, "zh-shangci-shuodao-nali"},
		{"Где мы остановились?", model.LangRU, "ru-gde-my-ostanovilis"},
	}
	for _, tc := range cases {
		m, ok := table.Match(tc.text, tc.language)
		if !ok {
			t.Errorf("no match for %q in %s", tc.text, tc.language)
			continue
		}
		if m.Rule != tc.rule {
			t.Errorf("Match(%q) = rule %s, want %s", tc.text, m.Rule, tc.rule)
		}
	}
}

func TestMatchDeclarationOrderWins(t *testing.T) {
	table := Default()
	// This text satisfies both the literal context rule and the generic
	// pt regex; the earlier literal rule must win.
	m, ok := table.Match("qual era o contexto para continuar o trabalho?", model.LangPT)
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Rule != "pt-qual-era-o-contexto" {
		t.Errorf("got rule %s, want pt-qual-era-o-contexto", m.Rule)
	}
}

func TestMatchRegexFallback(t *testing.T) {
	table := Default()
	m, ok := table.Match("I'd like to resume our session from yesterday", model.LangEN)
	if !ok {
		t.Fatal("expected regex fallback match")
	}
	if m.Rule != "en-resume-generic" {
		t.Errorf("got rule %s, want en-resume-generic", m.Rule)
	}
}

func TestMatchNoFalsePositives(t *testing.T) {
	table := Default()
	for _, text := range []string{
		"the weather is nice today",
		"please write a sorting function",
		"",
		"wherever you go",
	} {
		if m, ok := table.Match(text, model.LangEN); ok {
			t.Errorf("unexpected match %s for %q", m.Rule, text)
		}
	}
}

func TestMatchWordBoundaries(t *testing.T) {
	table := Default()
	// "where were well" contains "where were we" as a prefix but not on
	// a word boundary.
	if m, ok := table.Match("where were wellington boots made", model.LangEN); ok {
		t.Errorf("matched %s across a word boundary", m.Rule)
	}
}

func TestLoadOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "patterns.yaml")
	content := `version: "test-2"
languages:
  en:
    - name: en-custom
      phrase: "back to our thing"
      weight: 0.9
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if table.Version() != "test-2" {
		t.Errorf("version = %q, want test-2", table.Version())
	}

	if _, ok := table.Match("where did we leave off", model.LangEN); ok {
		t.Error("builtin en rules should be replaced by the override")
	}
	m, ok := table.Match("let's get back to our thing", model.LangEN)
	if !ok {
		t.Fatal("custom rule did not match")
	}
	if m.Rule != "en-custom" || m.Weight != 0.9 {
		t.Errorf("got %+v", m)
	}

	// Languages not overridden keep their builtin rules.
	if _, ok := table.Match("onde paramos", model.LangPT); !ok {
		t.Error("builtin pt rules lost after partial override")
	}
}

func TestLoadRejectsBadTable(t *testing.T) {
	dir := t.TempDir()

	for name, content := range map[string]string{
		"missing-version.yaml": "languages:\n  en:\n    - name: x\n      phrase: y\n      weight: 0.5\n",
		"bad-weight.yaml":      "version: \"1\"\nlanguages:\n  en:\n    - name: x\n      phrase: y\n      weight: 1.5\n",
		"empty-rule.yaml":      "version: \"1\"\nlanguages:\n  en:\n    - name: x\n      weight: 0.5\n",
		"bad-language.yaml":    "version: \"1\"\nlanguages:\n  xx:\n    - name: x\n      phrase: y\n      weight: 0.5\n",
	} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
