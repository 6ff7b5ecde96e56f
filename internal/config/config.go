// Package config exposes engine settings through viper. Defaults are
// registered once; the CLI optionally layers a config file and
// CONTINUITY_* environment variables on top.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/luaraujo/continuity/internal/model"
)

// Init registers defaults and environment binding. Call once at startup,
// before reading any setting.
func Init() {
	viper.SetDefault("semantic.threshold", 0.5)
	viper.SetDefault("semantic.scorer", "heuristic")
	viper.SetDefault("semantic.timeout", "5s")
	viper.SetDefault("semantic.embed_model", "")
	viper.SetDefault("semantic.embed_url", "")
	viper.SetDefault("classifier.char_cap", 2000)
	viper.SetDefault("recovery.timeline_bound", 20)
	viper.SetDefault("patterns.file", "")
	viper.SetDefault("languages.priority", []string{})
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")

	viper.SetEnvPrefix("continuity")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// Load reads an explicit config file. A missing file is an error; running
// without one is the normal case and uses defaults.
func Load(path string) error {
	viper.SetConfigFile(path)
	return viper.ReadInConfig()
}

// SemanticThreshold returns the minimum semantic confidence treated as a
// positive classification.
func SemanticThreshold() float64 {
	return viper.GetFloat64("semantic.threshold")
}

// ScorerProvider returns the active scorer: heuristic, ollama, or openai.
func ScorerProvider() string {
	return viper.GetString("semantic.scorer")
}

// ScorerTimeout returns the semantic scoring timeout.
func ScorerTimeout() time.Duration {
	return viper.GetDuration("semantic.timeout")
}

// EmbedModel returns the embedding model name for embedding scorers.
func EmbedModel() string {
	return viper.GetString("semantic.embed_model")
}

// EmbedURL returns the embedding API base URL override.
func EmbedURL() string {
	return viper.GetString("semantic.embed_url")
}

// CharCap returns the input length cap applied before scoring.
func CharCap() int {
	return viper.GetInt("classifier.char_cap")
}

// TimelineBound returns the maximum recent_timeline length in recovery
// payloads.
func TimelineBound() int {
	return viper.GetInt("recovery.timeline_bound")
}

// PatternFile returns the optional YAML pattern table path.
func PatternFile() string {
	return viper.GetString("patterns.file")
}

// LanguagePriority returns the candidate language order for unknown-language
// inputs. Unrecognized tags are dropped.
func LanguagePriority() []model.Language {
	raw := viper.GetStringSlice("languages.priority")
	if len(raw) == 0 {
		return nil
	}
	var out []model.Language
	for _, tag := range raw {
		l := model.Language(tag)
		if l.Supported() {
			out = append(out, l)
		}
	}
	return out
}

// DBPath returns the session database path: --db flag value if set, then
// $CONTINUITY_DB, then ~/.continuity/continuity.db.
func DBPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("CONTINUITY_DB"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".continuity", "continuity.db")
}

// LogLevel returns the logging level name.
func LogLevel() string {
	return viper.GetString("logging.level")
}

// LogFormat returns "console" or "json".
func LogFormat() string {
	return viper.GetString("logging.format")
}
