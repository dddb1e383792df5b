package packer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/ctxpack/internal/corpus"
	"github.com/fyrsmithlabs/ctxpack/internal/selector"
	"github.com/fyrsmithlabs/ctxpack/internal/tokens"
)

// buildCorpus creates a loaded corpus from rel -> content pairs, inserted
// in the given order.
func buildCorpus(files [][2]string) *corpus.Corpus {
	c := corpus.NewCorpus()
	for _, f := range files {
		c.Add(&corpus.FileRecord{
			RelPath:   f[0],
			SizeBytes: int64(len(f[1])),
			Content:   f[1],
			Loaded:    true,
		})
	}
	return c
}

func TestPack(t *testing.T) {
	base := []string{"system", "request", "overview"}

	t.Run("everything fits", func(t *testing.T) {
		c := buildCorpus([][2]string{
			{"a.go", strings.Repeat("a", 40)},
			{"b.go", strings.Repeat("b", 40)},
		})
		p := New(tokens.Estimator{}, 1000)
		out := p.Pack([]selector.Ranked{{Priority: 90, Path: "a.go"}, {Priority: 80, Path: "b.go"}}, c, base)
		require.Len(t, out, 2)
		assert.Equal(t, "a.go", out[0].Path)
		assert.Equal(t, "b.go", out[1].Path)
	})

	t.Run("budget drops low tiers", func(t *testing.T) {
		// base is 3 tokens; each file is 100 tokens.
		c := buildCorpus([][2]string{
			{"a.go", strings.Repeat("a", 400)},
			{"b.go", strings.Repeat("b", 400)},
			{"c.go", strings.Repeat("c", 400)},
		})
		p := New(tokens.Estimator{}, 210)
		out := p.Pack([]selector.Ranked{{Priority: 90, Path: "a.go"}, {Priority: 80, Path: "b.go"}, {Priority: 70, Path: "c.go"}}, c, base)
		require.Len(t, out, 2)
		assert.Equal(t, "a.go", out[0].Path)
		assert.Equal(t, "b.go", out[1].Path)
	})

	t.Run("shorter files first within a tier", func(t *testing.T) {
		c := buildCorpus([][2]string{
			{"long.go", strings.Repeat("x", 800)},
			{"short.go", strings.Repeat("y", 40)},
			{"mid.go", strings.Repeat("z", 400)},
		})
		p := New(tokens.Estimator{}, 10_000)
		out := p.Pack([]selector.Ranked{{Priority: 50, Path: "long.go"}, {Priority: 50, Path: "short.go"}, {Priority: 50, Path: "mid.go"}}, c, base)
		require.Len(t, out, 3)
		assert.Equal(t, []string{"short.go", "mid.go", "long.go"},
			[]string{out[0].Path, out[1].Path, out[2].Path})
	})

	t.Run("equal lengths break ties by path", func(t *testing.T) {
		c := buildCorpus([][2]string{
			{"zz.go", strings.Repeat("a", 40)},
			{"aa.go", strings.Repeat("b", 40)},
		})
		p := New(tokens.Estimator{}, 10_000)
		out := p.Pack([]selector.Ranked{{Priority: 50, Path: "zz.go"}, {Priority: 50, Path: "aa.go"}}, c, base)
		require.Len(t, out, 2)
		assert.Equal(t, "aa.go", out[0].Path)
	})

	t.Run("skipped candidate is not retried, later ones still tried", func(t *testing.T) {
		// Tier 90 holds a file too big for the budget; tier 80 fits.
		c := buildCorpus([][2]string{
			{"huge.go", strings.Repeat("x", 4000)},
			{"tiny.go", strings.Repeat("y", 40)},
		})
		p := New(tokens.Estimator{}, 100)
		out := p.Pack([]selector.Ranked{{Priority: 90, Path: "huge.go"}, {Priority: 80, Path: "tiny.go"}}, c, base)
		require.Len(t, out, 1)
		assert.Equal(t, "tiny.go", out[0].Path)
	})

	t.Run("unloaded and unknown candidates dropped", func(t *testing.T) {
		c := buildCorpus([][2]string{{"a.go", "package a"}})
		c.Add(&corpus.FileRecord{RelPath: "pending.go"})
		p := New(tokens.Estimator{}, 10_000)
		out := p.Pack([]selector.Ranked{{Priority: 90, Path: "a.go"}, {Priority: 80, Path: "pending.go"}, {Priority: 70, Path: "ghost.go"}}, c, base)
		require.Len(t, out, 1)
		assert.Equal(t, "a.go", out[0].Path)
	})

	t.Run("duplicate path packs once at max priority", func(t *testing.T) {
		c := buildCorpus([][2]string{{"a.go", "package a"}})
		p := New(tokens.Estimator{}, 10_000)
		out := p.Pack([]selector.Ranked{{Priority: 40, Path: "a.go"}, {Priority: 90, Path: "a.go"}}, c, base)
		require.Len(t, out, 1)
		assert.Equal(t, 90, out[0].Priority)
	})

	t.Run("idempotent on fixed input", func(t *testing.T) {
		c := buildCorpus([][2]string{
			{"a.go", strings.Repeat("a", 120)},
			{"b.go", strings.Repeat("b", 360)},
			{"c.go", strings.Repeat("c", 200)},
			{"d.go", strings.Repeat("d", 80)},
		})
		cands := []selector.Ranked{{Priority: 90, Path: "a.go"}, {Priority: 70, Path: "b.go"}, {Priority: 70, Path: "c.go"}, {Priority: 50, Path: "d.go"}}
		p := New(tokens.Estimator{}, 150)
		first := p.Pack(cands, c, base)
		second := p.Pack(cands, c, base)
		assert.Equal(t, first, second)
	})

	t.Run("tighter budget never accepts more", func(t *testing.T) {
		c := buildCorpus([][2]string{
			{"a.go", strings.Repeat("a", 120)},
			{"b.go", strings.Repeat("b", 360)},
			{"c.go", strings.Repeat("c", 200)},
		})
		cands := []selector.Ranked{{Priority: 90, Path: "a.go"}, {Priority: 80, Path: "b.go"}, {Priority: 70, Path: "c.go"}}
		prev := len(cands) + 1
		for _, budget := range []int{10_000, 300, 150, 40, 4} {
			got := len(New(tokens.Estimator{}, budget).Pack(cands, c, base))
			assert.LessOrEqual(t, got, prev, "budget %d", budget)
			prev = got
		}
	})

	t.Run("empty candidate list", func(t *testing.T) {
		c := buildCorpus(nil)
		p := New(tokens.Estimator{}, 100)
		assert.Empty(t, p.Pack(nil, c, base))
	})
}
