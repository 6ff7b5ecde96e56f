package semantic

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/luaraujo/continuity/internal/lang"
	"github.com/luaraujo/continuity/internal/model"
)

// seedSentences are canonical continuity questions embedded once per
// process and compared against input by cosine similarity.
var seedSentences = map[model.Language][]string{
	model.LangPT: {"onde paramos?", "o que estávamos fazendo?", "podemos continuar de onde paramos?"},
	model.LangEN: {"where did we leave off?", "what were we working on?", "can we pick up where we left off?"},
	model.LangES: {"¿dónde nos quedamos?", "¿qué estábamos haciendo?"},
	model.LangFR: {"où en étions-nous?", "qu'est-ce qu'on faisait?"},
	model.LangDE: {"wo waren wir stehen geblieben?", "woran haben wir gearbeitet?"},
	model.LangIT: {"dove eravamo rimasti?", "cosa stavamo facendo?"},
	model.LangJA: {"どこまで話しましたか？", "前回の続きからお願いします"},
	model.LangZH: {"我们上次说到哪里？", "继续上次的话题吧"},
	model.LangRU: {"где мы остановились?", "что мы делали в прошлый раз?"},
}

type refVector struct {
	text     string
	language model.Language
	label    bool
	vec      Vector
}

// EmbeddingScorer scores continuity intent by cosine similarity against a
// seed set and any learned examples, searched in parallel. It satisfies
// both Scorer and Adapter.
type EmbeddingScorer struct {
	emb Embedder

	mu      sync.RWMutex
	seeded  bool
	seeds   []refVector
	learned map[string]refVector
}

// NewEmbeddingScorer wraps an Embedder. Seeds are embedded lazily on the
// first Score call so that construction never performs I/O.
func NewEmbeddingScorer(emb Embedder) *EmbeddingScorer {
	return &EmbeddingScorer{emb: emb, learned: make(map[string]refVector)}
}

// Score implements Scorer. The one network suspension point is the Embed
// call; the classifier bounds it through ctx.
func (s *EmbeddingScorer) Score(ctx context.Context, text string, langHint model.Language) (Result, error) {
	if err := s.ensureSeeds(ctx); err != nil {
		return Result{}, err
	}

	query, err := s.emb.Embed(ctx, text)
	if err != nil {
		return Result{}, fmt.Errorf("embed query: %w", err)
	}

	s.mu.RLock()
	seeds := s.seeds
	learned := make([]refVector, 0, len(s.learned))
	for _, rv := range s.learned {
		learned = append(learned, rv)
	}
	s.mu.RUnlock()

	var seedBest, learnedBest refVector
	var seedSim, learnedSim float64

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		seedBest, seedSim = bestMatch(query, seeds, langHint)
		return nil
	})
	g.Go(func() error {
		learnedBest, learnedSim = bestMatch(query, learned, langHint)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	confidence := clamp01(seedSim)
	rationale := fmt.Sprintf("seed_sim=%.2f", seedSim)
	if seedBest.text != "" {
		rationale = fmt.Sprintf("%s seed=%q", rationale, seedBest.text)
	}

	if learnedSim > 0 {
		if learnedBest.label {
			if boosted := clamp01(learnedSim); boosted > confidence {
				confidence = boosted
			}
		} else if learnedSim >= neighborFloor {
			if capped := 0.5 - 0.5*learnedSim; capped < confidence {
				confidence = clamp01(capped)
			}
		}
		rationale = fmt.Sprintf("%s learned_sim=%.2f learned_label=%v", rationale, learnedSim, learnedBest.label)
	}

	return Result{Confidence: confidence, Rationale: rationale}, nil
}

// Adapt implements Adapter. Embedding failures drop the example from the
// in-process index; the stored copy still feeds the next reload.
func (s *EmbeddingScorer) Adapt(ex model.LearningExample) {
	folded := lang.Fold(ex.Text)
	if folded == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	vec, err := s.emb.Embed(ctx, ex.Text)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.learned[folded+"|"+string(ex.Language)] = refVector{
		text:     ex.Text,
		language: ex.Language,
		label:    ex.Label,
		vec:      vec,
	}
	s.mu.Unlock()
}

func (s *EmbeddingScorer) ensureSeeds(ctx context.Context) error {
	s.mu.RLock()
	done := s.seeded
	s.mu.RUnlock()
	if done {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seeded {
		return nil
	}
	var seeds []refVector
	for language, sentences := range seedSentences {
		for _, sentence := range sentences {
			vec, err := s.emb.Embed(ctx, sentence)
			if err != nil {
				return fmt.Errorf("embed seed %q: %w", sentence, err)
			}
			seeds = append(seeds, refVector{text: sentence, language: language, label: true, vec: vec})
		}
	}
	s.seeds = seeds
	s.seeded = true
	return nil
}

// bestMatch returns the highest-similarity reference, preferring the
// hinted language but falling back to all languages.
func bestMatch(query Vector, refs []refVector, langHint model.Language) (refVector, float64) {
	var best refVector
	bestSim := 0.0
	for _, rv := range refs {
		sim := CosineSimilarity(query, rv.vec)
		if langHint != model.LangUnknown && rv.language == langHint {
			sim += 0.05 // slight preference for hinted-language references
		}
		if sim > bestSim {
			bestSim = sim
			best = rv
		}
	}
	return best, clamp01(bestSim)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
