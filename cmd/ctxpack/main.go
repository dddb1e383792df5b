// Package main implements the ctxpack CLI: ask a question about a
// codebase, get an answer assembled within the analysis model's input
// budget.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/ctxpack/internal/config"
	"github.com/fyrsmithlabs/ctxpack/internal/llm"
	"github.com/fyrsmithlabs/ctxpack/internal/logging"
	"github.com/fyrsmithlabs/ctxpack/internal/pipeline"
	"github.com/fyrsmithlabs/ctxpack/internal/tokens"
)

// Exit codes: 0 success, 1 analysis failure, 2 invalid working directory.
const (
	exitOK            = 0
	exitAnalysisError = 1
	exitBadWorkdir    = 2
)

var version = "dev"

type cliFlags struct {
	request       string
	headroom      float64
	fileCapBytes  int64
	selectorModel string
	analysisModel string
	maxStage1     int
	maxStage2     int
	allowSecrets  bool
	cwd           string
	timeout       time.Duration
	verbose       bool
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := &cliFlags{}
	exitCode := exitOK

	rootCmd := &cobra.Command{
		Use:   "ctxpack",
		Short: "High-recall codebase question answering",
		Long: `ctxpack assembles a token-budget-constrained, privacy-filtered subset
of a codebase and sends it to a remote model to answer a question.

The answer is written to stdout; all diagnostics (blocked, skipped,
redacted, trimmed, fallback notices) go to stderr.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			code, err := runAsk(cmd, flags)
			exitCode = code
			return err
		},
	}

	wd, _ := os.Getwd()
	f := rootCmd.Flags()
	f.StringVar(&flags.request, "request", "", "question to answer (required)")
	f.Float64Var(&flags.headroom, "headroom", 0.15, "fraction of the token budget reserved as safety margin")
	f.Int64Var(&flags.fileCapBytes, "file-cap-bytes", 524288, "per-file size cap in bytes")
	f.StringVar(&flags.selectorModel, "selector-model", "", "model for the selection stages")
	f.StringVar(&flags.analysisModel, "analysis-model", "", "model for the final analysis")
	f.IntVar(&flags.maxStage1, "max-stage1", 2000, "stage-1 candidate cap")
	f.IntVar(&flags.maxStage2, "max-stage2", 20000, "stage-2 candidate cap")
	f.BoolVar(&flags.allowSecrets, "allow-secrets", false, "disable the secret filename blocklist")
	f.StringVar(&flags.cwd, "cwd", wd, "project root to analyze")
	f.DurationVar(&flags.timeout, "timeout", 120*time.Second, "per-call timeout for remote model calls")
	f.BoolVar(&flags.verbose, "verbose", false, "enable debug diagnostics")
	_ = rootCmd.MarkFlagRequired("request")

	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if exitCode == exitOK {
			exitCode = exitAnalysisError
		}
	}
	return exitCode
}

// runAsk resolves configuration, builds the pipeline, and executes one
// run. It returns the process exit code alongside any error.
func runAsk(cmd *cobra.Command, flags *cliFlags) (int, error) {
	root, err := filepath.Abs(flags.cwd)
	if err != nil {
		return exitBadWorkdir, fmt.Errorf("invalid --cwd %q: %w", flags.cwd, err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return exitBadWorkdir, fmt.Errorf("invalid --cwd: %s", root)
	}

	logCfg := logging.NewDefaultConfig()
	if flags.verbose {
		logCfg.Level = "debug"
	}
	log, err := logging.New(logCfg)
	if err != nil {
		return exitAnalysisError, err
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load(root, log)
	if err != nil {
		return exitAnalysisError, err
	}
	applyFlagOverrides(cmd, flags, cfg)
	if err := cfg.Validate(); err != nil {
		return exitAnalysisError, err
	}

	ctx := context.Background()
	counter := tokens.NewCounter(log)
	// Selection stays deterministic-leaning; only analysis gets sampling
	// temperature.
	ranker := llm.NewClient(ctx, cfg.SelectorModel, cfg.Timeout, 0.0)
	analyzer := llm.NewClient(ctx, cfg.AnalysisModel, cfg.Timeout, 0.2)

	p := pipeline.New(cfg, log, counter, ranker, analyzer)
	answer, err := p.Run(ctx, root, flags.request)
	if err != nil {
		return exitAnalysisError, err
	}

	fmt.Fprintln(os.Stdout, answer)
	return exitOK, nil
}

// applyFlagOverrides copies explicitly set flags over the resolved
// config, so precedence is flag > env > project file > default.
func applyFlagOverrides(cmd *cobra.Command, flags *cliFlags, cfg *config.Config) {
	set := cmd.Flags().Changed
	if set("headroom") {
		cfg.Headroom = flags.headroom
	}
	if set("file-cap-bytes") {
		cfg.FileCapBytes = flags.fileCapBytes
	}
	if set("selector-model") {
		cfg.SelectorModel = flags.selectorModel
	}
	if set("analysis-model") {
		cfg.AnalysisModel = flags.analysisModel
	}
	if set("max-stage1") {
		cfg.MaxStage1 = flags.maxStage1
	}
	if set("max-stage2") {
		cfg.MaxStage2 = flags.maxStage2
	}
	if set("allow-secrets") {
		cfg.AllowSecrets = flags.allowSecrets
	}
	if set("timeout") {
		cfg.Timeout = flags.timeout
	}
}
