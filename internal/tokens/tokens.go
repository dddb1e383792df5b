// Package tokens provides token counting for budget decisions.
//
// Counts are advisory: callers may rely on monotonicity (more text never
// yields fewer tokens) but not on exactness, since the estimator fallback
// activates whenever the tiktoken encoding cannot be constructed.
package tokens

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/fyrsmithlabs/ctxpack/internal/logging"
)

// encodingName is the tokenizer used for all budget estimates. It does not
// need to match the analysis model exactly; headroom absorbs the error.
const encodingName = "cl100k_base"

// Counter sums token counts over a list of text blobs. No cross-blob
// deduplication is performed.
type Counter interface {
	Count(texts []string) int
}

// TiktokenCounter counts with a real BPE encoding.
type TiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

// NewTiktoken constructs a counter backed by the cl100k_base encoding.
func NewTiktoken() (*TiktokenCounter, error) {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", encodingName, err)
	}
	return &TiktokenCounter{enc: enc}, nil
}

// Count sums the encoded length of each blob.
func (c *TiktokenCounter) Count(texts []string) int {
	n := 0
	for _, t := range texts {
		n += len(c.enc.Encode(t, nil, nil))
	}
	return n
}

// Estimator is the crude fallback: max(1, len/4) per blob.
type Estimator struct{}

// Count estimates tokens at roughly four bytes each.
func (Estimator) Count(texts []string) int {
	n := 0
	for _, t := range texts {
		est := len(t) / 4
		if est < 1 {
			est = 1
		}
		n += est
	}
	return n
}

// NewCounter returns the best available counter, constructed once and
// injected everywhere a sizing decision is made.
func NewCounter(log *logging.Logger) Counter {
	c, err := NewTiktoken()
	if err != nil {
		log.Warn("tiktoken unavailable, using length estimator")
		return Estimator{}
	}
	return c
}
