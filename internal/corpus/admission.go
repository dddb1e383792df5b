package corpus

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ctxpack/internal/logging"
)

// secretBlockGlobs match credential-like filenames. Each pattern is tried
// against both the full relative path and the basename.
var secretBlockGlobs = []string{
	".env*",
	"*.pem",
	"id_rsa*",
	"secrets.*",
	"*.key",
	"*.p12",
	"*.keystore",
}

// secretPathSubstrings match common credential-store directories anywhere
// in the path.
var secretPathSubstrings = []string{
	"aws/credentials",
	"gcp/",
	"gcloud/",
}

// IsSecretBlocklisted reports whether a relative path looks like a
// credential file.
func IsSecretBlocklisted(rel string) bool {
	p := filepath.ToSlash(rel)
	base := p
	if idx := strings.LastIndex(p, "/"); idx >= 0 {
		base = p[idx+1:]
	}
	for _, pat := range secretBlockGlobs {
		if ok, _ := doublestar.Match(pat, p); ok {
			return true
		}
		if ok, _ := doublestar.Match(pat, base); ok {
			return true
		}
	}
	lower := strings.ToLower(p)
	for _, sub := range secretPathSubstrings {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}

// FilterConfig controls admission.
type FilterConfig struct {
	FileCapBytes int64
	AllowSecrets bool
}

// Filter stats and classifies discovered absolute paths. Paths that fail
// to stat are dropped silently (I/O race or broken link). Oversized and
// secret-blocked paths are excluded with a diagnostic, in input order.
// Returns the admitted corpus and the list of secret-blocked paths.
func Filter(paths []string, root string, cfg FilterConfig, log *logging.Logger) (*Corpus, []string) {
	c := NewCorpus()
	var blocked []string

	for _, path := range paths {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)

		st, err := os.Stat(path)
		if err != nil {
			continue
		}
		size := st.Size()

		if size > cfg.FileCapBytes {
			log.Warn("SKIPPED (too large)",
				zap.String("path", rel),
				zap.String("size", humanize.Bytes(uint64(size))),
				zap.String("cap", humanize.Bytes(uint64(cfg.FileCapBytes))))
			continue
		}
		if !cfg.AllowSecrets && IsSecretBlocklisted(rel) {
			blocked = append(blocked, rel)
			log.Warn("BLOCKED (secret)", zap.String("path", rel))
			continue
		}
		c.Add(&FileRecord{RelPath: rel, SizeBytes: size})
	}
	return c, blocked
}
