// Package cli implements the continuity CLI commands.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/luaraujo/continuity/internal/config"
	"github.com/luaraujo/continuity/internal/engine"
	"github.com/luaraujo/continuity/internal/logging"
	"github.com/luaraujo/continuity/internal/pattern"
	"github.com/luaraujo/continuity/internal/semantic"
	"github.com/luaraujo/continuity/internal/store"
)

var (
	dbPath     string
	configPath string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "continuity",
	Short: "Continuity detection and recovery engine",
	Long:  "Detects \"where did we leave off?\" questions in multiple languages and reconstructs the prior working context from persisted session state.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.Init()
		if configPath != "" {
			if err := config.Load(configPath); err != nil {
				return fmt.Errorf("load config: %w", err)
			}
		}
		return nil
	},
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $CONTINUITY_DB or ~/.continuity/continuity.db)")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (YAML/TOML/JSON, optional)")
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(config.DBPath(dbPath))
}

// openEngine builds the full engine from configuration. The returned
// closer shuts the store down.
func openEngine(ctx context.Context) (*engine.Engine, func(), error) {
	st, err := openStore()
	if err != nil {
		return nil, nil, err
	}

	log, err := logging.New(config.LogLevel(), config.LogFormat())
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	scorer, err := buildScorer()
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	table := pattern.Default()
	if path := config.PatternFile(); path != "" {
		table, err = pattern.Load(path)
		if err != nil {
			st.Close()
			return nil, nil, err
		}
	}

	eng := engine.New(engine.Options{
		Store:         st,
		Scorer:        scorer,
		Table:         table,
		Priority:      config.LanguagePriority(),
		Threshold:     config.SemanticThreshold(),
		CharCap:       config.CharCap(),
		ScorerTimeout: config.ScorerTimeout(),
		TimelineBound: config.TimelineBound(),
		Logger:        log,
	})

	if n, err := eng.ReloadExamples(ctx); err != nil {
		log.Warn("reload learned examples", zap.Error(err))
	} else if n > 0 {
		log.Debug("reloaded learned examples", zap.Int("count", n))
	}

	closer := func() {
		log.Sync()
		st.Close()
	}
	return eng, closer, nil
}

func buildScorer() (semantic.Scorer, error) {
	switch provider := config.ScorerProvider(); provider {
	case "", "heuristic":
		return semantic.NewHeuristicScorer(), nil
	case "ollama":
		emb, err := semantic.NewOllamaEmbedder(config.EmbedModel())
		if err != nil {
			return nil, err
		}
		return semantic.NewEmbeddingScorer(emb), nil
	case "openai":
		emb := semantic.NewOpenAIEmbedder(config.EmbedURL(), os.Getenv("OPENAI_API_KEY"), config.EmbedModel())
		return semantic.NewEmbeddingScorer(emb), nil
	default:
		return nil, fmt.Errorf("unknown scorer provider %q", provider)
	}
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
