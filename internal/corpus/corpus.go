// Package corpus tracks the admitted file set for one run.
//
// Admission classifies every discovered path (oversized, secret-blocked,
// or admitted); loading reads and redacts content for admitted records.
// Records are written once and immutable afterwards.
package corpus

// FileRecord describes one admitted file. RelPath is the identity key:
// root-relative with forward slashes.
type FileRecord struct {
	RelPath   string
	SizeBytes int64

	// Oversized and SecretBlocked records never carry content and never
	// reach packing.
	Oversized     bool
	SecretBlocked bool

	// Redactions counts sentinel replacements made while loading.
	Redactions int

	// Content is set by LoadAndRedact; Loaded distinguishes an empty
	// file from a not-yet-loaded one.
	Content string
	Loaded  bool
}

// Corpus is the admitted-record map plus a stable iteration order
// (admission insertion order, which follows sorted discovery output).
type Corpus struct {
	records map[string]*FileRecord
	order   []string
}

// NewCorpus returns an empty corpus.
func NewCorpus() *Corpus {
	return &Corpus{records: make(map[string]*FileRecord)}
}

// Add inserts a record under its relative path.
func (c *Corpus) Add(rec *FileRecord) {
	if _, ok := c.records[rec.RelPath]; !ok {
		c.order = append(c.order, rec.RelPath)
	}
	c.records[rec.RelPath] = rec
}

// Get returns the record for a relative path, or nil.
func (c *Corpus) Get(rel string) *FileRecord {
	return c.records[rel]
}

// Has reports whether a relative path was admitted.
func (c *Corpus) Has(rel string) bool {
	_, ok := c.records[rel]
	return ok
}

// Paths returns admitted relative paths in insertion order.
func (c *Corpus) Paths() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Len returns the number of admitted records.
func (c *Corpus) Len() int {
	return len(c.records)
}

// Contents returns the content of every loaded record, in insertion
// order. Used by the early-fit gate to size the whole corpus.
func (c *Corpus) Contents() []string {
	out := make([]string, 0, len(c.order))
	for _, rel := range c.order {
		if rec := c.records[rel]; rec.Loaded {
			out = append(out, rec.Content)
		}
	}
	return out
}
