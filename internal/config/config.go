// Package config loads runtime configuration for a debate session from
// flags, DEBATE_* environment variables, and .debate.yaml through viper.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/papapumpkin/debate/internal/artifact"
	"github.com/papapumpkin/debate/internal/judge"
)

// ErrInvalid is wrapped by every validation failure returned from Load.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all runtime configuration for a debate session.
// Values are populated from .debate.yaml, DEBATE_* env vars, and CLI flags.
type Config struct {
	ClaudePath              string `mapstructure:"claude_path"`
	CodexPath               string `mapstructure:"codex_path"`
	Model                   string `mapstructure:"model"`
	MaxRounds               int    `mapstructure:"max_rounds"`
	BudgetMinutes           int    `mapstructure:"budget_minutes"`
	BackendTimeoutSeconds   int    `mapstructure:"backend_timeout_seconds"`
	Mode                    string `mapstructure:"mode"`
	Scope                   string `mapstructure:"scope"`
	Target                  string `mapstructure:"target"`
	StateDir                string `mapstructure:"state_dir"`
	SkipMaterializeOpposite bool   `mapstructure:"skip_materialize_opposite"`
	History                 bool   `mapstructure:"history"`
	Verbose                 bool   `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags, and validates it.
func Load() (Config, error) {
	viper.SetDefault("claude_path", "claude")
	viper.SetDefault("codex_path", "codex")
	viper.SetDefault("model", "")
	viper.SetDefault("max_rounds", 3)
	viper.SetDefault("budget_minutes", 20)
	viper.SetDefault("backend_timeout_seconds", 600)
	viper.SetDefault("mode", string(judge.ModeAuto))
	viper.SetDefault("scope", "uncommitted")
	viper.SetDefault("target", "auto")
	viper.SetDefault("state_dir", "")
	viper.SetDefault("skip_materialize_opposite", false)
	viper.SetDefault("history", true)
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if _, err := judge.ParseMode(c.Mode); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.MaxRounds < 1 {
		return fmt.Errorf("%w: max_rounds must be at least 1, got %d", ErrInvalid, c.MaxRounds)
	}
	if c.BudgetMinutes < 0 {
		return fmt.Errorf("%w: budget_minutes must not be negative, got %d", ErrInvalid, c.BudgetMinutes)
	}
	if c.BackendTimeoutSeconds < 1 {
		return fmt.Errorf("%w: backend_timeout_seconds must be at least 1, got %d", ErrInvalid, c.BackendTimeoutSeconds)
	}
	return nil
}

// BackendTimeout is the limit for a single backend call.
func (c Config) BackendTimeout() time.Duration {
	return time.Duration(c.BackendTimeoutSeconds) * time.Second
}

// Budget is the wall-clock budget of a whole session.
func (c Config) Budget() time.Duration {
	return time.Duration(c.BudgetMinutes) * time.Minute
}

// LowTimeoutSeconds is the threshold below which proposal and mixed reviews
// are likely to time out.
const LowTimeoutSeconds = 120

// TimeoutTooLow reports whether the backend timeout is low for reviewing
// prose, which takes longer than reviewing a diff.
func (c Config) TimeoutTooLow(target artifact.Kind) bool {
	return c.BackendTimeoutSeconds < LowTimeoutSeconds && (target == artifact.KindProposal || target == artifact.KindMixed)
}
