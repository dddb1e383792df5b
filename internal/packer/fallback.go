package packer

import (
	"regexp"
	"sort"
	"strings"

	"github.com/fyrsmithlabs/ctxpack/internal/corpus"
	"github.com/fyrsmithlabs/ctxpack/internal/selector"
)

// maxSeeds bounds how many top-priority candidates seed the transitive
// expansion.
const maxSeeds = 50

// importPatterns is a fixed battery of import-like statement shapes
// across ecosystems. The goal is cheap recall, not a dependency graph;
// false positives are tolerated and trimmed by the re-pack.
var importPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(import|require)\s*\(|\bfrom\s+['"][^'"]+['"]`),       // JS/TS
	regexp.MustCompile(`(?m)^\s*(from\s+[.\w]+\s+import|import\s+[.\w]+)`),      // Python
	regexp.MustCompile(`(?m)^\s*import\s*\(|^\s*import\s+"[^"]+"`),              // Go
	regexp.MustCompile(`(?m)^\s*use\s+[a-zA-Z0-9_:]+`),                          // Rust
	regexp.MustCompile(`(?m)^\s*#\s*include\s+[<"].+[>"]`),                      // C/C++
	regexp.MustCompile(`(?m)^\s*import\s+[a-zA-Z0-9_.]+;`),                      // Java/Kotlin
	regexp.MustCompile(`(?i)\binclude(s)?\s*:\s*`),                              // YAML/TOML
}

var (
	quotedPathRe = regexp.MustCompile(`['"]([^'"]+)['"]`)
	refWordRe    = regexp.MustCompile(`[A-Za-z0-9_./-]+`)
)

// minRefWordLen filters out noise words when no quoted path is present.
const minRefWordLen = 3

// CollectImportRefs extracts lexical reference tokens from source text
// using the import battery. Quoted paths win; otherwise token-ish words
// from the matched statement are taken.
func CollectImportRefs(text string) []string {
	seen := make(map[string]bool)
	for _, rx := range importPatterns {
		for _, m := range rx.FindAllString(text, -1) {
			if q := quotedPathRe.FindStringSubmatch(m); q != nil {
				seen[q[1]] = true
				continue
			}
			for _, w := range refWordRe.FindAllString(m, -1) {
				if len(w) >= minRefWordLen && !isAllDigits(w) {
					seen[w] = true
				}
			}
		}
	}
	refs := make([]string, 0, len(seen))
	for r := range seen {
		refs = append(refs, r)
	}
	sort.Strings(refs)
	return refs
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// ResolveRefs maps references to admitted paths by best-effort basename
// matching: a reference resolves to any path whose lowercase form ends
// with "/"+basename or with the basename itself.
func ResolveRefs(refs []string, allPaths []string) []string {
	lowered := make([]string, len(allPaths))
	for i, p := range allPaths {
		lowered[i] = strings.ToLower(p)
	}
	chosen := make(map[string]bool)
	for _, ref := range refs {
		base := ref
		if idx := strings.LastIndex(ref, "/"); idx >= 0 {
			base = ref[idx+1:]
		}
		base = strings.ToLower(base)
		if base == "" {
			continue
		}
		for i, pl := range lowered {
			if strings.HasSuffix(pl, "/"+base) || strings.HasSuffix(pl, base) {
				chosen[allPaths[i]] = true
			}
		}
	}
	out := make([]string, 0, len(chosen))
	for p := range chosen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// ExpandTransitive implements the Mode B fallback: the top-priority
// packed-pool candidates seed a lexical dependency sweep, and every
// resolved dependency joins the list at max(1, seed_priority-5) — deps
// are presumed less critical than their seed but never zero. Original
// candidates keep their scores; discovered paths are added or raised.
// The result sorts score descending, path ascending, ready for a re-pack.
func ExpandTransitive(prioritized []selector.Ranked, c *corpus.Corpus) []selector.Ranked {
	k := maxSeeds
	if len(prioritized) < k {
		k = len(prioritized)
	}

	allPaths := c.Paths()
	depScores := make(map[string]int)
	for _, seed := range prioritized[:k] {
		rec := c.Get(seed.Path)
		if rec == nil || !rec.Loaded {
			continue
		}
		refs := CollectImportRefs(rec.Content)
		score := seed.Priority - 5
		if score < 1 {
			score = 1
		}
		for _, p := range ResolveRefs(refs, allPaths) {
			if score > depScores[p] {
				depScores[p] = score
			}
		}
	}

	merged := make(map[string]int)
	for _, cand := range prioritized {
		merged[cand.Path] = cand.Priority
	}
	for p, sc := range depScores {
		if sc > merged[p] {
			merged[p] = sc
		}
	}

	out := make([]selector.Ranked, 0, len(merged))
	for p, sc := range merged {
		out = append(out, selector.Ranked{Priority: sc, Path: p})
	}
	selector.SortRanked(out)
	return out
}
