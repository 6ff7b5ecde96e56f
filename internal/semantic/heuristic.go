package semantic

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/luaraujo/continuity/internal/lang"
	"github.com/luaraujo/continuity/internal/model"
)

// Heuristic weights. Seed-vocabulary overlap dominates so that a bare
// question mark never clears the 0.5 threshold on its own.
const (
	interrogativeWeight = 0.25
	overlapWeight       = 0.55
	lengthWeight        = 0.20
	neighborFloor       = 0.6
	normalLength        = 12 // tokens; longer input decays the length term
)

// seedVocab is the multilingual vocabulary of continuity-related concepts,
// in folded form. Tokenized languages match per word.
var seedVocab = wordSet(
	// en
	"context", "progress", "left", "leave", "working", "continue", "resume",
	"remind", "discussing", "discussed", "before", "earlier", "last", "previous", "session",
	// pt
	"contexto", "progresso", "paramos", "trabalhando", "continuar", "retomar",
	"falando", "conversando", "antes", "anterior", "ultima", "sessao",
	// es
	"quedamos", "trabajando", "seguir", "hablando", "sesion", "progreso",
	// fr
	"contexte", "reprendre", "continuer", "travaillait", "arrete", "parlait", "avant", "derniere",
	// de
	"kontext", "weitermachen", "fortsetzen", "gearbeitet", "geblieben", "vorher", "letzte", "sitzung",
	// it
	"contesto", "riprendere", "continuare", "lavorando", "fermati", "rimasti", "parlando", "prima", "sessione",
	// ru (folded)
	"остановились", "продолжим", "продолжить", "контекст", "работали", "говорили", "прошлыи", "раньше",
)

// seedSubstrings cover languages that tokenization cannot split.
var seedSubstrings = []string{
	"続き", "前回", "途中", "再開",
	"上次", "之前", "继续", "话题",
}

// interrogatives are folded question markers across the supported set.
var interrogatives = wordSet(
	"where", "what", "which", "how",
	"onde", "que", "qual", "como",
	"donde", "cual",
	"ou", "quoi", "quel",
	"wo", "was", "woran",
	"dove", "cosa", "quale",
	"где", "что",
)

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

type learnedExample struct {
	tokens   map[string]bool
	text     string
	label    bool
	language model.Language
}

// HeuristicScorer is the default scorer: interrogative markers, seed
// vocabulary overlap, and sentence length, adjusted by nearest-neighbor
// lookup over learned examples. Safe for concurrent use.
type HeuristicScorer struct {
	mu      sync.RWMutex
	learned map[string]learnedExample // keyed by folded text + language
}

// NewHeuristicScorer returns an empty heuristic scorer.
func NewHeuristicScorer() *HeuristicScorer {
	return &HeuristicScorer{learned: make(map[string]learnedExample)}
}

// Score implements Scorer.
func (h *HeuristicScorer) Score(ctx context.Context, text string, langHint model.Language) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	folded := lang.Fold(text)
	tokens := strings.Fields(folded)
	if folded == "" {
		return Result{Confidence: 0, Rationale: "empty input"}, nil
	}

	interrog := 0.0
	if strings.ContainsAny(text, "?？") {
		interrog = interrogativeWeight
	} else {
		for _, tok := range tokens {
			if interrogatives[tok] {
				interrog = interrogativeWeight
				break
			}
		}
	}

	hits := 0
	for _, tok := range tokens {
		if seedVocab[tok] {
			hits++
		}
	}
	for _, sub := range seedSubstrings {
		if strings.Contains(folded, sub) {
			hits++
		}
	}
	overlap := float64(hits) / 2
	if overlap > 1 {
		overlap = 1
	}
	overlap *= overlapWeight

	lengthFactor := 1.0
	if n := len(tokens); n > normalLength {
		lengthFactor = float64(normalLength) / float64(n)
	}
	length := lengthWeight * lengthFactor

	confidence := interrog + overlap + length
	if confidence > 1 {
		confidence = 1
	}

	rationale := fmt.Sprintf("interrogative=%.2f seed_hits=%d length=%.2f", interrog, hits, length)

	if sim, label, ok := h.nearestNeighbor(tokens, langHint); ok {
		adjusted := confidence
		if label {
			if boosted := 0.5 + 0.5*sim; boosted > adjusted {
				adjusted = boosted
			}
		} else {
			if capped := 0.5 - 0.5*sim; capped < adjusted {
				adjusted = capped
			}
		}
		rationale = fmt.Sprintf("%s learned_sim=%.2f learned_label=%v", rationale, sim, label)
		confidence = adjusted
	}

	return Result{Confidence: confidence, Rationale: rationale}, nil
}

// Adapt implements Adapter. Re-learning the same text and language
// overwrites the stored example, so duplicates never double-count.
func (h *HeuristicScorer) Adapt(ex model.LearningExample) {
	folded := lang.Fold(ex.Text)
	if folded == "" {
		return
	}
	tokens := make(map[string]bool)
	for _, tok := range strings.Fields(folded) {
		tokens[tok] = true
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.learned[folded+"|"+string(ex.Language)] = learnedExample{
		tokens:   tokens,
		text:     folded,
		label:    ex.Label,
		language: ex.Language,
	}
}

// nearestNeighbor finds the learned example with the highest token Jaccard
// similarity to the input, restricted to the hinted language when both
// sides declare one. Matches below neighborFloor are ignored.
func (h *HeuristicScorer) nearestNeighbor(tokens []string, langHint model.Language) (float64, bool, bool) {
	set := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		set[tok] = true
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	best := 0.0
	bestLabel := false
	found := false
	for _, ex := range h.learned {
		if langHint != model.LangUnknown && ex.language != model.LangUnknown && ex.language != langHint {
			continue
		}
		sim := jaccard(set, ex.tokens)
		if sim >= neighborFloor && sim > best {
			best = sim
			bestLabel = ex.label
			found = true
		}
	}
	return best, bestLabel, found
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for tok := range a {
		if b[tok] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
