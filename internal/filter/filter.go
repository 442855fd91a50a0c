// Package filter applies compiled trigger rules to story batches and
// dedups the survivors by identity key.
package filter

import (
	"newswatch/internal/story"
	"newswatch/internal/trigger"
)

// Apply returns the stories for which at least one root trigger fires,
// preserving input order. An empty root list keeps nothing.
func Apply(stories []story.Story, roots []trigger.Trigger) []story.Story {
	var kept []story.Story
	for _, s := range stories {
		for _, t := range roots {
			if t.Evaluate(s) {
				kept = append(kept, s)
				break
			}
		}
	}
	return kept
}

// Gate tracks identity keys already forwarded to the sink. It holds the
// seen-set for the process lifetime only and never evicts. Not safe for
// concurrent use; the poll loop owns it exclusively.
type Gate struct {
	seen map[string]struct{}
}

// NewGate creates an empty gate.
func NewGate() *Gate {
	return &Gate{seen: make(map[string]struct{})}
}

// Admit returns the stories whose key has not been seen before, in
// order, and marks them seen. Duplicate keys within one batch are also
// collapsed to the first occurrence.
func (g *Gate) Admit(stories []story.Story) []story.Story {
	var fresh []story.Story
	for _, s := range stories {
		key := s.Key()
		if _, ok := g.seen[key]; ok {
			continue
		}
		g.seen[key] = struct{}{}
		fresh = append(fresh, s)
	}
	return fresh
}

// Len returns the number of keys seen so far.
func (g *Gate) Len() int {
	return len(g.seen)
}
