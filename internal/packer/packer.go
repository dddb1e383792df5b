// Package packer fills the token budget from a priority-ordered
// candidate list.
//
// Packing is a single greedy forward pass: tiers from highest priority
// down, shorter files first within a tier so more distinct files fit
// before the budget runs out. A skipped candidate is never retried. This
// is deliberately not a knapsack optimization; predictability wins.
package packer

import (
	"sort"

	"github.com/fyrsmithlabs/ctxpack/internal/corpus"
	"github.com/fyrsmithlabs/ctxpack/internal/selector"
	"github.com/fyrsmithlabs/ctxpack/internal/tokens"
)

// Packer makes budget admission decisions.
type Packer struct {
	counter tokens.Counter
	budget  int
}

// New creates a Packer with an effective token budget (headroom already
// subtracted).
func New(counter tokens.Counter, budget int) *Packer {
	return &Packer{counter: counter, budget: budget}
}

// Pack accepts candidates while the running total stays within budget.
// base is the fixed text set (system preamble, request, overview) that
// every trial includes. The running total is recounted from scratch on
// every trial; counts are cheap relative to the remote calls they guard.
//
// Candidates without loaded content are dropped up front. The returned
// list preserves tier order, length-ascending within tier, path-ascending
// on equal lengths.
func (p *Packer) Pack(prioritized []selector.Ranked, c *corpus.Corpus, base []string) []selector.Ranked {
	// A path offered at several priorities packs once, at its maximum.
	best := make(map[string]int)
	for _, cand := range prioritized {
		rec := c.Get(cand.Path)
		if rec == nil || !rec.Loaded {
			continue
		}
		if cand.Priority > best[cand.Path] {
			best[cand.Path] = cand.Priority
		}
	}

	grouped := make(map[int][]string)
	var tiers []int
	for rel, prio := range best {
		if _, ok := grouped[prio]; !ok {
			tiers = append(tiers, prio)
		}
		grouped[prio] = append(grouped[prio], rel)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(tiers)))

	running := make([]string, len(base))
	copy(running, base)

	var out []selector.Ranked
	for _, tier := range tiers {
		rels := grouped[tier]
		sort.Slice(rels, func(i, j int) bool {
			li := len(c.Get(rels[i]).Content)
			lj := len(c.Get(rels[j]).Content)
			if li != lj {
				return li < lj
			}
			return rels[i] < rels[j]
		})
		for _, rel := range rels {
			trial := append(running, c.Get(rel).Content)
			if p.counter.Count(trial) <= p.budget {
				running = trial
				out = append(out, selector.Ranked{Priority: tier, Path: rel})
			}
		}
	}
	return out
}
