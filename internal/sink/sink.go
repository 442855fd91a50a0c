// Package sink delivers newly-surfaced stories to their destinations:
// console, markdown digest files, and the SQLite archive.
package sink

import (
	"context"
	"log"

	"newswatch/internal/story"
)

// Sink receives the stories surfaced in one poll cycle. The poll loop
// guarantees a given identity key is delivered at most once per process
// lifetime.
type Sink interface {
	Deliver(ctx context.Context, stories []story.Story) error
}

// Multi fans deliveries out to several sinks. A failing sink is logged
// and does not block the others.
type Multi []Sink

func (m Multi) Deliver(ctx context.Context, stories []story.Story) error {
	for _, s := range m {
		if err := s.Deliver(ctx, stories); err != nil {
			log.Printf("sink: %v", err)
		}
	}
	return nil
}
