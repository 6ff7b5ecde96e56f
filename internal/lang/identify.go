package lang

import (
	"unicode"

	"github.com/luaraujo/continuity/internal/model"
)

// stopWords maps each Latin-script language to a folded set of
// high-frequency function words. Identification counts hits per language;
// script detection handles ja/zh/ru before word counting runs.
var stopWords = map[model.Language]map[string]bool{
	model.LangPT: wordSet("o", "a", "os", "as", "de", "do", "da", "em", "um", "uma", "que", "nao", "para", "com", "por", "mais", "mas", "como", "foi", "ele", "ela", "seu", "sua", "ou", "quando", "muito", "nos", "ja", "eu", "tambem", "so", "pelo", "pela", "ate", "isso", "entre", "depois", "sem", "mesmo", "aos", "seus", "quem", "nas", "esse", "essa", "num", "onde", "paramos", "estavamos", "fazendo", "voce", "qual", "era"),
	model.LangEN: wordSet("the", "be", "to", "of", "and", "a", "in", "that", "have", "i", "it", "for", "not", "on", "with", "he", "as", "you", "do", "at", "this", "but", "his", "by", "from", "they", "we", "say", "her", "she", "or", "an", "will", "my", "would", "there", "their", "what", "so", "up", "out", "if", "about", "who", "get", "which", "go", "me", "were", "was", "where", "did", "could", "been", "working", "remind", "discussing"),
	model.LangES: wordSet("el", "la", "de", "que", "y", "en", "un", "una", "ser", "se", "no", "haber", "por", "con", "su", "para", "como", "estar", "tener", "le", "lo", "todo", "pero", "mas", "hacer", "o", "poder", "decir", "este", "ir", "otro", "ese", "si", "me", "ya", "ver", "porque", "dar", "cuando", "muy", "sin", "vez", "mucho", "donde", "quedamos", "estabamos", "haciendo", "cual", "nos"),
	model.LangFR: wordSet("le", "la", "de", "un", "une", "et", "etre", "a", "il", "avoir", "ne", "je", "son", "que", "se", "qui", "ce", "dans", "du", "elle", "au", "pour", "pas", "vous", "par", "sur", "faire", "plus", "dire", "me", "on", "mon", "lui", "nous", "comme", "mais", "avec", "tout", "y", "aller", "voir", "bien", "ou", "sans", "tu", "peux", "etions", "sommes", "arrete", "reprendre", "quoi", "est", "quel"),
	model.LangDE: wordSet("der", "die", "und", "in", "den", "von", "zu", "das", "mit", "sich", "des", "auf", "fur", "ist", "im", "dem", "nicht", "ein", "eine", "als", "auch", "es", "an", "werden", "aus", "er", "hat", "dass", "sie", "nach", "wird", "bei", "einer", "um", "am", "sind", "noch", "wie", "einem", "uber", "wir", "wo", "waren", "haben", "gearbeitet", "stehen", "geblieben", "was", "woran"),
	model.LangIT: wordSet("il", "di", "che", "e", "la", "per", "un", "in", "una", "mi", "sono", "ho", "lo", "ha", "le", "si", "ti", "con", "cosa", "se", "io", "come", "no", "ci", "questo", "qui", "hai", "del", "tu", "ma", "al", "della", "da", "quando", "anche", "ne", "piu", "dove", "eravamo", "rimasti", "fermati", "stavamo", "facendo", "quale", "punto"),
}

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// Identifier guesses the language of free-form input from a fixed supported
// set. It is deterministic and side-effect-free; garbage input degrades to
// Unknown rather than erroring.
type Identifier struct {
	priority []model.Language
}

// NewIdentifier builds an identifier that breaks ties using the given
// priority order. An empty priority falls back to the default order.
func NewIdentifier(priority []model.Language) *Identifier {
	if len(priority) == 0 {
		priority = model.DefaultLanguagePriority
	}
	return &Identifier{priority: priority}
}

// Identify returns the best-guess language for text, or Unknown when no
// language scores confidently enough.
func (d *Identifier) Identify(text string) model.Language {
	if byScript := detectScript(text); byScript != model.LangUnknown {
		return byScript
	}

	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return model.LangUnknown
	}

	hits := make(map[model.Language]int, len(stopWords))
	for _, tok := range tokens {
		for l, set := range stopWords {
			if set[tok] {
				hits[l]++
			}
		}
	}

	best := model.LangUnknown
	bestHits := 0
	for _, l := range d.priority {
		if hits[l] > bestHits {
			best = l
			bestHits = hits[l]
		}
	}
	if bestHits == 0 {
		return model.LangUnknown
	}
	return best
}

// detectScript short-circuits identification for scripts that uniquely
// determine the language within the supported set: kana means Japanese,
// Han without kana means Chinese, Cyrillic means Russian.
func detectScript(text string) model.Language {
	var han, kana, cyrillic bool
	for _, r := range text {
		switch {
		case unicode.In(r, unicode.Hiragana, unicode.Katakana):
			kana = true
		case unicode.In(r, unicode.Han):
			han = true
		case unicode.In(r, unicode.Cyrillic):
			cyrillic = true
		}
	}
	switch {
	case kana:
		return model.LangJA
	case han:
		return model.LangZH
	case cyrillic:
		return model.LangRU
	}
	return model.LangUnknown
}
