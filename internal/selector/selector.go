// Package selector drives the two-stage relevance ranking.
//
// Stage 1 names directories and globs from the request and overview alone;
// stage 2 ranks individual files from the expanded candidate set. Both
// stages degrade to an empty result when the oracle is unavailable — the
// caller, not this package, decides what a usable default looks like.
package selector

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Oracle is the remote ranking capability. Implementations return free
// text which is parsed into ranked lines.
type Oracle interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Ranked pairs a priority in [1,100] with a path or pattern.
type Ranked struct {
	Priority int
	Path     string
}

const stage1System = "You are a codebase file selector optimizing for RECALL. \n" +
	"Goal: choose directories and globs that likely contain information to answer the user's request.\n" +
	"Output ONLY lines in the format: \"<priority>\t<glob_or_dir>\" where priority is 1-100 (100 = must-include).\n" +
	"Avoid binaries/build artifacts. Prefer source, configs, infra, tests, and relevant docs."

const stage2SystemC = "You are a file selector optimizing for RECALL under Mode=C (pragmatic, answer-centric).\n" +
	"Return ONLY lines: \"<priority>\t<path>\" where priority is 1-100 (100 = must-include).\n" +
	"Prioritize files most useful to answer the question; include tests/docs/configs if helpful."

// Stage1 asks the oracle for directory/glob patterns given only the
// request and overview. Unavailability yields nil, never an error.
func Stage1(ctx context.Context, o Oracle, request, overview string) []Ranked {
	user := request + "\n----\nPROJECT OVERVIEW (READMEs + tree):\n" + overview + "\n\n" +
		"Return the smallest set of dirs/globs that achieves high recall.\n" +
		"If in doubt, include; we will trim later by priority."
	text, err := o.Generate(ctx, stage1System, user)
	if err != nil {
		return nil
	}
	return ParseRankedLines(text)
}

// Stage2 asks the oracle to rank the candidate files. Unavailability
// yields nil, never an error.
func Stage2(ctx context.Context, o Oracle, request, overview string, candidates []string) []Ranked {
	user := request + "\n----\nPROJECT OVERVIEW:\n" + overview +
		"\n----\nCANDIDATE FILES:\n" + strings.Join(candidates, "\n") + "\n\n" +
		"Select and rank files. Be generous; we will budget-trim by priority later."
	text, err := o.Generate(ctx, stage2SystemC, user)
	if err != nil {
		return nil
	}
	return ParseRankedLines(text)
}

// ParseRankedLines parses oracle output into ranked entries. Each
// non-empty line splits on the first tab, or failing that the first
// space; lines without an integer priority are dropped. Priorities clamp
// to [1,100]. Output sorts priority descending, path ascending.
func ParseRankedLines(text string) []Ranked {
	var out []Ranked
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var prioStr, rest string
		if idx := strings.Index(line, "\t"); idx >= 0 {
			prioStr, rest = line[:idx], line[idx+1:]
		} else if idx := strings.Index(line, " "); idx >= 0 {
			prioStr, rest = line[:idx], line[idx+1:]
		} else {
			continue
		}
		prio, err := strconv.Atoi(prioStr)
		if err != nil {
			continue
		}
		if prio < 1 {
			prio = 1
		} else if prio > 100 {
			prio = 100
		}
		out = append(out, Ranked{Priority: prio, Path: strings.TrimSpace(rest)})
	}
	SortRanked(out)
	return out
}

// SortRanked orders entries priority descending, path ascending.
func SortRanked(rs []Ranked) {
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].Priority != rs[j].Priority {
			return rs[i].Priority > rs[j].Priority
		}
		return rs[i].Path < rs[j].Path
	})
}

// ExpandPatterns resolves stage-1 patterns against the discovered
// relative-path list. A path qualifies if it starts with the pattern's
// literal prefix (trailing wildcards and slashes stripped) or matches the
// pattern as a glob. A pattern that strips to an empty prefix (a bare "*"
// or "**") matches every path. The result is deduplicated in first-match
// order; both the pattern list and the output are capped at max entries.
func ExpandPatterns(patterns []Ranked, rels []string, max int) []string {
	if len(patterns) > max {
		patterns = patterns[:max]
	}
	var out []string
	seen := make(map[string]bool)
	for _, pat := range patterns {
		norm := strings.ReplaceAll(pat.Path, "\\", "/")
		prefix := strings.TrimRight(norm, "*/")
		for _, rel := range rels {
			if seen[rel] {
				continue
			}
			match := strings.HasPrefix(rel, prefix)
			if !match {
				match, _ = doublestar.Match(norm, rel)
			}
			if match {
				seen[rel] = true
				out = append(out, rel)
				if len(out) >= max {
					return out
				}
			}
		}
	}
	return out
}
