// Package bundle serializes the final file selection into the outbound
// analysis document.
//
// The external files-to-prompt tool builds the CXML body when available;
// an internal builder produces an equivalent structure otherwise, so
// assembly never fails on a missing tool.
package bundle

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ctxpack/internal/corpus"
	"github.com/fyrsmithlabs/ctxpack/internal/logging"
	"github.com/fyrsmithlabs/ctxpack/internal/selector"
)

// AnalysisSystem is the fixed system preamble for the analysis call. It
// participates in every token count, so it is defined here next to the
// body it fronts.
const AnalysisSystem = "You are a senior staff-level engineer. \n" +
	"Use the provided files (CXML blocks) and answer the user's request precisely and concisely. \n" +
	"If the answer may depend on omitted code, call it out explicitly."

// Assembler builds analysis documents.
type Assembler struct {
	log *logging.Logger
}

// New creates an Assembler. A nil logger discards diagnostics.
func New(log *logging.Logger) *Assembler {
	if log == nil {
		log = logging.Nop()
	}
	return &Assembler{log: log}
}

// Build materializes the accepted files under a scratch directory,
// produces the CXML body, and prepends the request and overview.
// Returns the system preamble and the full user document.
func (a *Assembler) Build(ctx context.Context, files []selector.Ranked, c *corpus.Corpus, request, overview string) (string, string, error) {
	body, err := a.cxmlBody(ctx, files, c)
	if err != nil {
		return "", "", err
	}
	user := fmt.Sprintf("%s\n\nPROJECT OVERVIEW:\n%s\n\n%s", request, overview, body)
	return AnalysisSystem, user, nil
}

// cxmlBody tries the external bundler, falling back to the internal
// builder on any failure.
func (a *Assembler) cxmlBody(ctx context.Context, files []selector.Ranked, c *corpus.Corpus) (string, error) {
	tmpdir, err := os.MkdirTemp("", "ctxpack_f2p_")
	if err != nil {
		return "", fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer os.RemoveAll(tmpdir)

	for _, f := range files {
		rec := c.Get(f.Path)
		if rec == nil || !rec.Loaded {
			continue
		}
		dst := filepath.Join(tmpdir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return "", fmt.Errorf("failed to stage %s: %w", f.Path, err)
		}
		if err := os.WriteFile(dst, []byte(rec.Content), 0o644); err != nil {
			return "", fmt.Errorf("failed to stage %s: %w", f.Path, err)
		}
	}

	if body, err := a.externalCXML(ctx, tmpdir); err == nil {
		return body, nil
	} else {
		a.log.Warn("files-to-prompt unavailable, using internal builder", zap.Error(err))
	}
	return internalCXML(files, c), nil
}

// externalCXML invokes files-to-prompt --cxml over the staged tree.
func (a *Assembler) externalCXML(ctx context.Context, dir string) (string, error) {
	exe, err := exec.LookPath("files-to-prompt")
	if err != nil {
		return "", err
	}
	out, err := exec.CommandContext(ctx, exe, "--cxml", dir).Output()
	if err != nil {
		return "", fmt.Errorf("files-to-prompt failed: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// internalCXML is the fallback builder: same file set, same order, one
// block per file keyed by relative path.
func internalCXML(files []selector.Ranked, c *corpus.Corpus) string {
	var b strings.Builder
	b.WriteString("<files>")
	for _, f := range files {
		rec := c.Get(f.Path)
		if rec == nil || !rec.Loaded {
			continue
		}
		fmt.Fprintf(&b, "\n  <file path=%q>\n", f.Path)
		b.WriteString("  <![CDATA[\n")
		b.WriteString(rec.Content)
		b.WriteString("\n  ]]>\n  </file>")
	}
	b.WriteString("\n</files>")
	return b.String()
}
