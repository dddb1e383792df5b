// Package redact provides high-entropy token redaction.
//
// Every admitted file passes through scrubbing before it can reach a
// bundle, so credential-shaped strings never leave the machine. Detection
// is statistical (Shannon entropy over contiguous token runs), not a
// security boundary guarantee.
package redact

import (
	"math"
	"strings"
	"unicode"
)

// Sentinel replaces each detected span. Replacement preserves line
// structure but not column alignment.
const Sentinel = "‹REDACTED›"

// Config tunes the entropy scanner.
type Config struct {
	// MinRunLength is the minimum length of a candidate token run.
	MinRunLength int

	// EntropyThreshold is the per-character Shannon entropy (bits) at or
	// above which a run is redacted.
	EntropyThreshold float64

	// Sentinel replaces detected runs.
	Sentinel string
}

// DefaultConfig returns the standard thresholds: runs of at least 20
// token characters with entropy >= 3.7 bits per character.
func DefaultConfig() *Config {
	return &Config{
		MinRunLength:     20,
		EntropyThreshold: 3.7,
		Sentinel:         Sentinel,
	}
}

// Result holds the outcome of scrubbing one blob.
type Result struct {
	// Scrubbed is the content with detected runs replaced.
	Scrubbed string

	// Count is the number of runs replaced.
	Count int
}

// Scrubber detects and redacts high-entropy token runs.
type Scrubber struct {
	cfg *Config
}

// New creates a Scrubber. A nil config uses DefaultConfig.
func New(cfg *Config) *Scrubber {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Sentinel == "" {
		cfg.Sentinel = Sentinel
	}
	return &Scrubber{cfg: cfg}
}

// span is a half-open byte range into the scanned string.
type span struct {
	start, end int
}

// Scrub replaces every qualifying run in content with the sentinel.
func (s *Scrubber) Scrub(content string) *Result {
	spans := s.findSpans(content)
	if len(spans) == 0 {
		return &Result{Scrubbed: content}
	}

	var b strings.Builder
	b.Grow(len(content))
	last := 0
	for _, sp := range spans {
		b.WriteString(content[last:sp.start])
		b.WriteString(s.cfg.Sentinel)
		last = sp.end
	}
	b.WriteString(content[last:])
	return &Result{Scrubbed: b.String(), Count: len(spans)}
}

// findSpans scans for contiguous runs of token characters and keeps those
// long and random enough to look like credentials.
func (s *Scrubber) findSpans(content string) []span {
	var spans []span
	runStart := -1
	runLen := 0

	flush := func(end int) {
		if runStart >= 0 && runLen >= s.cfg.MinRunLength {
			run := content[runStart:end]
			if shannonEntropy(run) >= s.cfg.EntropyThreshold {
				spans = append(spans, span{start: runStart, end: end})
			}
		}
		runStart = -1
		runLen = 0
	}

	for i, r := range content {
		if isTokenRune(r) {
			if runStart < 0 {
				runStart = i
			}
			runLen++
		} else {
			flush(i)
		}
	}
	flush(len(content))
	return spans
}

// isTokenRune reports whether r can appear in a credential-shaped token:
// alphanumerics plus the base64/path punctuation set.
func isTokenRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	switch r {
	case '_', '-', '.', '+', '/', '=':
		return true
	}
	return false
}

// shannonEntropy returns the per-character entropy of s in bits.
func shannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}
	freq := make(map[rune]int)
	total := 0
	for _, r := range s {
		freq[r]++
		total++
	}
	ent := 0.0
	for _, c := range freq {
		p := float64(c) / float64(total)
		ent -= p * math.Log2(p)
	}
	return ent
}
