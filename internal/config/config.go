// Package config provides configuration loading for ctxpack.
package config

import (
	"fmt"
	"time"
)

// AbsoluteBudget is the hard input-size limit of the analysis model, in
// tokens. Headroom is subtracted from this before any packing decision.
const AbsoluteBudget = 1_000_000

// DefaultExcludes is the built-in discovery exclude set: VCS metadata,
// dependency and build output directories, and binary/media extensions
// that never help answer a question.
var DefaultExcludes = []string{
	".git/",
	".svn/",
	".hg/",
	"node_modules/",
	"dist/",
	"build/",
	".next/",
	".cache/",
	"coverage/",
	"target/",
	"out/",
	"__pycache__/",
	".venv/",
	"*.png",
	"*.jpg",
	"*.jpeg",
	"*.gif",
	"*.pdf",
	"*.zip",
	"*.tar",
	"*.gz",
	"*.mp4",
	"*.mov",
	"*.ogg",
	"*.wav",
	"*.webm",
	"*.ico",
	"*.woff*",
	"*.min.*",
}

// Config holds all resolved settings for a run.
//
// Precedence per key: explicit CLI flag > CTXPACK_* environment variable >
// project config file (.ctxpack.yml) > built-in default.
type Config struct {
	// Headroom is the fraction of AbsoluteBudget reserved as safety
	// margin. Must be in [0, 1).
	Headroom float64 `koanf:"headroom"`

	// FileCapBytes is the per-file size cap; larger files are skipped
	// at admission.
	FileCapBytes int64 `koanf:"file_cap_bytes"`

	// SelectorModel is the model used for both selection stages.
	SelectorModel string `koanf:"selector_model"`

	// AnalysisModel is the model used for the final analysis call.
	AnalysisModel string `koanf:"analysis_model"`

	// MaxStage1 caps the candidate set produced by stage-1 pattern
	// expansion.
	MaxStage1 int `koanf:"max_stage1"`

	// MaxStage2 caps the candidate set offered to stage-2 ranking.
	MaxStage2 int `koanf:"max_stage2"`

	// AllowSecrets disables the secret filename blocklist.
	AllowSecrets bool `koanf:"allow_secrets"`

	// Excludes are discovery exclude patterns: directory patterns end
	// with "/", everything else is a glob.
	Excludes []string `koanf:"excludes"`

	// Timeout bounds each call to the remote model.
	Timeout time.Duration `koanf:"timeout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	excludes := make([]string, len(DefaultExcludes))
	copy(excludes, DefaultExcludes)
	return &Config{
		Headroom:      0.15,
		FileCapBytes:  524288,
		SelectorModel: "gemini-2.5-flash",
		AnalysisModel: "gemini-2.5-pro",
		MaxStage1:     2000,
		MaxStage2:     20000,
		AllowSecrets:  false,
		Excludes:      excludes,
		Timeout:       120 * time.Second,
	}
}

// Validate checks invariants on resolved values.
func (c *Config) Validate() error {
	if c.Headroom < 0 || c.Headroom >= 1 {
		return fmt.Errorf("headroom must be in [0, 1), got %v", c.Headroom)
	}
	if c.FileCapBytes <= 0 {
		return fmt.Errorf("file_cap_bytes must be positive, got %d", c.FileCapBytes)
	}
	if c.MaxStage1 <= 0 || c.MaxStage2 <= 0 {
		return fmt.Errorf("stage caps must be positive, got %d/%d", c.MaxStage1, c.MaxStage2)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	return nil
}

// EffectiveBudget returns the usable token budget after headroom.
func (c *Config) EffectiveBudget() int {
	return int((1.0 - c.Headroom) * float64(AbsoluteBudget))
}
