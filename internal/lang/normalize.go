// Package lang provides text normalization and language identification
// for the continuity classifier.
package lang

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer strips combining marks so that "não" and "nao" compare
// equal. Pattern rules are authored in folded form, so folding is applied
// symmetrically to rules and input.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases text, removes diacritics, and collapses punctuation and
// whitespace runs into single spaces.
func Fold(text string) string {
	folded, _, err := transform.String(foldTransformer, strings.ToLower(text))
	if err != nil {
		folded = strings.ToLower(text)
	}

	var b strings.Builder
	b.Grow(len(folded))
	lastSpace := true
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			b.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// Tokenize splits folded text into word tokens.
func Tokenize(text string) []string {
	return strings.Fields(Fold(text))
}

// TruncateWords cuts text to at most max bytes, backing up to the nearest
// word boundary so no word is split. Text at or under the cap is returned
// unchanged.
func TruncateWords(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	for max > 0 && !utf8.RuneStart(text[max]) {
		max--
	}
	cut := text[:max]
	if idx := strings.LastIndexFunc(cut, unicode.IsSpace); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " \t\n")
}
