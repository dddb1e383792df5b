package corpus

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fyrsmithlabs/ctxpack/internal/logging"
	"github.com/fyrsmithlabs/ctxpack/internal/redact"
)

// LoadAndRedact reads and scrubs every admitted record using a bounded
// worker pool. Each record is written exactly once by its owning worker;
// the method returns only after the whole corpus is loaded, so later
// stages never observe a partially-redacted record.
//
// workers <= 0 sizes the pool to the available CPUs (minimum 4).
func (c *Corpus) LoadAndRedact(ctx context.Context, root string, scrubber *redact.Scrubber, workers int, log *logging.Logger) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
		if workers < 4 {
			workers = 4
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, rel := range c.order {
		rec := c.records[rel]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			text := readTextSafe(filepath.Join(root, rec.RelPath))
			result := scrubber.Scrub(text)
			rec.Content = result.Scrubbed
			rec.Loaded = true
			rec.Redactions = result.Count
			if result.Count > 0 {
				log.Warn("REDACTED token(s)",
					zap.String("path", rec.RelPath),
					zap.Int("matches", result.Count))
			}
			return nil
		})
	}
	return g.Wait()
}

// readTextSafe reads a file as text without ever hard-failing on encoding:
// valid UTF-8 passes through, anything else decodes byte-wise as Latin-1.
// Read errors yield empty content; the record was already admitted and a
// vanished file is treated like an empty one.
func readTextSafe(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	if utf8.Valid(data) {
		return string(data)
	}
	var b strings.Builder
	b.Grow(len(data))
	for _, by := range data {
		b.WriteRune(rune(by))
	}
	return b.String()
}
