// Package watch runs the poll loop: acquire stories, filter them
// through the trigger rules, dedup, and deliver survivors to the sink.
package watch

import (
	"context"
	"log"
	"time"

	"newswatch/internal/filter"
	"newswatch/internal/sink"
	"newswatch/internal/story"
	"newswatch/internal/trigger"
)

// Acquirer produces one cycle's worth of stories. Implementations log
// per-source failures themselves; a bad cycle just yields fewer stories.
type Acquirer interface {
	CollectAll(ctx context.Context) []story.Story
}

// Enricher rewrites story descriptions before sink delivery.
type Enricher interface {
	Enrich(stories []story.Story) []story.Story
}

// Watcher owns the poll loop and its dedup gate. Acquisition,
// filtering, dedup and delivery run sequentially within one cycle; the
// gate is touched by nothing else.
type Watcher struct {
	acquirer Acquirer
	roots    []trigger.Trigger
	gate     *filter.Gate
	sink     sink.Sink
	enricher Enricher // optional
	interval time.Duration
}

// New creates a watcher. enricher may be nil.
func New(acquirer Acquirer, roots []trigger.Trigger, s sink.Sink, enricher Enricher, interval time.Duration) *Watcher {
	return &Watcher{
		acquirer: acquirer,
		roots:    roots,
		gate:     filter.NewGate(),
		sink:     s,
		enricher: enricher,
		interval: interval,
	}
}

// Run polls until ctx is cancelled. The first cycle starts immediately;
// the sleep between cycles aborts promptly on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		w.Cycle(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.interval):
		}
	}
}

// Cycle runs one acquire-filter-dedup-deliver pass.
func (w *Watcher) Cycle(ctx context.Context) {
	stories := w.acquirer.CollectAll(ctx)
	matched := filter.Apply(stories, w.roots)
	fresh := w.gate.Admit(matched)

	log.Printf("watch: %d collected, %d matched, %d new (seen-set %d)",
		len(stories), len(matched), len(fresh), w.gate.Len())

	if len(fresh) == 0 {
		return
	}
	if w.enricher != nil {
		fresh = w.enricher.Enrich(fresh)
	}
	if err := w.sink.Deliver(ctx, fresh); err != nil {
		log.Printf("watch: delivering stories: %v", err)
	}
}
