// Package pipeline orchestrates a full context-assembly run: discovery,
// admission, redaction, the early-fit gate, two-stage selection, budgeted
// packing with the transitive fallback, bundle assembly, and the final
// analysis call.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ctxpack/internal/bundle"
	"github.com/fyrsmithlabs/ctxpack/internal/config"
	"github.com/fyrsmithlabs/ctxpack/internal/corpus"
	"github.com/fyrsmithlabs/ctxpack/internal/discover"
	"github.com/fyrsmithlabs/ctxpack/internal/logging"
	"github.com/fyrsmithlabs/ctxpack/internal/overview"
	"github.com/fyrsmithlabs/ctxpack/internal/packer"
	"github.com/fyrsmithlabs/ctxpack/internal/redact"
	"github.com/fyrsmithlabs/ctxpack/internal/selector"
	"github.com/fyrsmithlabs/ctxpack/internal/tokens"
)

// ErrAnalysis marks a failure of the final answer-producing call — the
// only error allowed to fail a run once preconditions hold.
var ErrAnalysis = errors.New("analysis failed")

// Analyzer is the remote reasoning capability that produces the answer.
type Analyzer interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Pipeline wires the stages together. Every external capability is
// injected so the selection/packing/fallback logic is testable with
// deterministic stand-ins.
type Pipeline struct {
	cfg       *config.Config
	log       *logging.Logger
	counter   tokens.Counter
	ranker    selector.Oracle
	analyzer  Analyzer
	assembler *bundle.Assembler
	scrubber  *redact.Scrubber
}

// New constructs a Pipeline.
func New(cfg *config.Config, log *logging.Logger, counter tokens.Counter, ranker selector.Oracle, analyzer Analyzer) *Pipeline {
	if log == nil {
		log = logging.Nop()
	}
	return &Pipeline{
		cfg:       cfg,
		log:       log,
		counter:   counter,
		ranker:    ranker,
		analyzer:  analyzer,
		assembler: bundle.New(log),
		scrubber:  redact.New(nil),
	}
}

// Run assembles context for the request under root and returns the
// answer text. Diagnostics go to the logger; the answer is the only
// primary output.
func (p *Pipeline) Run(ctx context.Context, root, request string) (string, error) {
	files, err := discover.Files(ctx, root, p.cfg.Excludes, p.log)
	if err != nil {
		return "", fmt.Errorf("discovery failed: %w", err)
	}

	ov := overview.Build(root)

	c, _ := corpus.Filter(files, root, corpus.FilterConfig{
		FileCapBytes: p.cfg.FileCapBytes,
		AllowSecrets: p.cfg.AllowSecrets,
	}, p.log)

	if err := c.LoadAndRedact(ctx, root, p.scrubber, 0, p.log); err != nil {
		return "", fmt.Errorf("load failed: %w", err)
	}

	base := []string{bundle.AnalysisSystem, request, ov}
	budget := p.cfg.EffectiveBudget()

	var packed []selector.Ranked
	var prioritized []selector.Ranked

	if p.fitsEarly(base, c, budget) {
		// Whole-corpus mode: everything ships at priority 100 in
		// admission order, and the ranking oracle is never touched.
		for _, rel := range c.Paths() {
			packed = append(packed, selector.Ranked{Priority: 100, Path: rel})
		}
	} else {
		prioritized = p.selectCandidates(ctx, files, root, request, ov)

		pk := packer.New(p.counter, budget)
		packed = pk.Pack(prioritized, c, base)

		if len(packed) < len(prioritized) {
			p.log.Warn("FALLBACK: switched to transitive scope (B) due to token budget")
			ranked := packer.ExpandTransitive(prioritized, c)
			packed = pk.Pack(ranked, c, base)
		}
	}

	system, user, err := p.assembler.Build(ctx, packed, c, request, ov)
	if err != nil {
		return "", fmt.Errorf("bundle assembly failed: %w", err)
	}

	answer, err := p.analyzer.Generate(ctx, system, user)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAnalysis, err)
	}

	p.logTrimmed(prioritized, packed, c)
	return strings.TrimSpace(answer), nil
}

// fitsEarly reports whether the entire admitted corpus fits the budget
// alongside the fixed texts.
func (p *Pipeline) fitsEarly(base []string, c *corpus.Corpus, budget int) bool {
	texts := make([]string, 0, len(base)+c.Len())
	texts = append(texts, base...)
	texts = append(texts, c.Contents()...)
	return p.counter.Count(texts) <= budget
}

// selectCandidates runs the two ranking stages and always returns a
// non-empty prioritized list when any file was discovered: stage
// failures degrade to broader defaults, never to an aborted run.
func (p *Pipeline) selectCandidates(ctx context.Context, files []string, root, request, ov string) []selector.Ranked {
	rels := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(root, f)
		if err != nil {
			continue
		}
		rels = append(rels, filepath.ToSlash(rel))
	}

	st1 := selector.Stage1(ctx, p.ranker, request, ov)
	expanded := selector.ExpandPatterns(st1, rels, p.cfg.MaxStage1)
	if len(expanded) == 0 {
		// Nothing matched (or stage 1 was empty): rank the whole
		// discovered list instead.
		expanded = rels
	}
	if len(expanded) > p.cfg.MaxStage2 {
		expanded = expanded[:p.cfg.MaxStage2]
	}

	prioritized := selector.Stage2(ctx, p.ranker, request, ov, expanded)
	if len(prioritized) == 0 {
		// The oracle yielded nothing; a uniform default keeps packing
		// supplied with input.
		prioritized = make([]selector.Ranked, 0, len(expanded))
		for _, rel := range expanded {
			prioritized = append(prioritized, selector.Ranked{Priority: 50, Path: rel})
		}
	}
	return prioritized
}

// logTrimmed reports every prioritized candidate that did not make the
// final bundle.
func (p *Pipeline) logTrimmed(prioritized, packed []selector.Ranked, c *corpus.Corpus) {
	if len(prioritized) == 0 {
		return
	}
	included := make(map[string]bool, len(packed))
	for _, f := range packed {
		included[f.Path] = true
	}
	for _, cand := range prioritized {
		if !included[cand.Path] && c.Has(cand.Path) {
			p.log.Warn("TRIMMED (low priority)",
				zap.String("path", cand.Path),
				zap.Int("priority", cand.Priority))
		}
	}
}
