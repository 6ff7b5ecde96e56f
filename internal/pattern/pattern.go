// Package pattern implements the per-language continuity rule tables and
// the first-match pattern matcher. Tables are loaded once at startup and
// read-only thereafter; declaration order is rule priority.
package pattern

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/luaraujo/continuity/internal/lang"
	"github.com/luaraujo/continuity/internal/model"
)

// Rule is a single match rule: either a literal phrase or a regular
// expression, with a static confidence weight. Literals are authored in
// folded form (lowercase, no diacritics) and matched by containment.
type Rule struct {
	Name   string  `yaml:"name" json:"name"`
	Phrase string  `yaml:"phrase,omitempty" json:"phrase,omitempty"`
	Regex  string  `yaml:"regex,omitempty" json:"regex,omitempty"`
	Weight float64 `yaml:"weight" json:"weight"`
}

// Match is a satisfied rule returned by the matcher.
type Match struct {
	Rule     string
	Language model.Language
	Weight   float64
}

type compiledRule struct {
	name   string
	phrase string
	re     *regexp.Regexp
	weight float64
}

// Table holds the compiled rule lists keyed by language.
type Table struct {
	version string
	decls   map[model.Language][]Rule
	rules   map[model.Language][]compiledRule
}

// Version returns the version string of the loaded table.
func (t *Table) Version() string { return t.version }

// Rules returns the declared rules for a language, in priority order.
func (t *Table) Rules(language model.Language) []Rule {
	return t.decls[language]
}

// Languages returns the languages that have at least one rule, in the
// default priority order.
func (t *Table) Languages() []model.Language {
	var out []model.Language
	for _, l := range model.DefaultLanguagePriority {
		if len(t.decls[l]) > 0 {
			out = append(out, l)
		}
	}
	return out
}

// compile validates and compiles a declared table.
func compile(version string, decls map[model.Language][]Rule) (*Table, error) {
	t := &Table{
		version: version,
		decls:   decls,
		rules:   make(map[model.Language][]compiledRule, len(decls)),
	}
	for language, rules := range decls {
		if !language.Supported() {
			return nil, fmt.Errorf("%w: unsupported pattern language %q", model.ErrValidation, language)
		}
		for _, r := range rules {
			cr := compiledRule{name: r.Name, weight: r.Weight}
			switch {
			case r.Phrase != "" && r.Regex != "":
				return nil, fmt.Errorf("%w: rule %q has both phrase and regex", model.ErrValidation, r.Name)
			case r.Phrase != "":
				cr.phrase = lang.Fold(r.Phrase)
			case r.Regex != "":
				re, err := regexp.Compile(r.Regex)
				if err != nil {
					return nil, fmt.Errorf("compile rule %q: %w", r.Name, err)
				}
				cr.re = re
			default:
				return nil, fmt.Errorf("%w: rule %q has neither phrase nor regex", model.ErrValidation, r.Name)
			}
			if cr.weight < 0 || cr.weight > 1 {
				return nil, fmt.Errorf("%w: rule %q weight %v outside [0,1]", model.ErrValidation, r.Name, cr.weight)
			}
			t.rules[language] = append(t.rules[language], cr)
		}
	}
	return t, nil
}

// Match evaluates the rules for language against text in declaration order
// and returns the first satisfying rule. Matching is case-insensitive and
// tolerates punctuation and diacritic variance.
func (t *Table) Match(text string, language model.Language) (Match, bool) {
	rules := t.rules[language]
	if len(rules) == 0 {
		return Match{}, false
	}
	folded := lang.Fold(text)
	if folded == "" {
		return Match{}, false
	}
	for _, r := range rules {
		if r.phrase != "" {
			if containsPhrase(folded, r.phrase) {
				return Match{Rule: r.name, Language: language, Weight: r.weight}, true
			}
			continue
		}
		if r.re.MatchString(folded) {
			return Match{Rule: r.name, Language: language, Weight: r.weight}, true
		}
	}
	return Match{}, false
}

// containsPhrase reports whether folded contains phrase. Word-boundary
// checks apply only at ASCII word edges; CJK phrases carry no spaces and
// match by plain containment.
func containsPhrase(folded, phrase string) bool {
	for idx := 0; idx <= len(folded)-len(phrase); {
		i := strings.Index(folded[idx:], phrase)
		if i < 0 {
			return false
		}
		i += idx
		end := i + len(phrase)
		ok := true
		if isWordByte(phrase[0]) && i > 0 && folded[i-1] != ' ' {
			ok = false
		}
		if ok && isWordByte(phrase[len(phrase)-1]) && end < len(folded) && folded[end] != ' ' {
			ok = false
		}
		if ok {
			return true
		}
		idx = i + 1
	}
	return false
}

func isWordByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}
