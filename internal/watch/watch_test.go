package watch

import (
	"context"
	"errors"
	"testing"
	"time"

	"newswatch/internal/sink"
	"newswatch/internal/story"
	"newswatch/internal/trigger"
)

type fakeAcquirer struct {
	batches [][]story.Story
	calls   int
}

func (f *fakeAcquirer) CollectAll(context.Context) []story.Story {
	if f.calls >= len(f.batches) {
		f.calls++
		return nil
	}
	b := f.batches[f.calls]
	f.calls++
	return b
}

type recordingSink struct {
	delivered [][]story.Story
}

func (r *recordingSink) Deliver(_ context.Context, stories []story.Story) error {
	r.delivered = append(r.delivered, stories)
	return nil
}

func electionRoots(t *testing.T) []trigger.Trigger {
	t.Helper()
	roots, err := trigger.Compile([]string{"t1,TITLE,election", "ADD,t1"}, time.UTC)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return roots
}

func TestCycleFiltersAndForwards(t *testing.T) {
	acq := &fakeAcquirer{batches: [][]story.Story{{
		{GUID: "1", Title: "Election results in"},
		{GUID: "2", Title: "Weather today"},
	}}}
	rec := &recordingSink{}
	w := New(acq, electionRoots(t), rec, nil, time.Minute)

	w.Cycle(context.Background())

	if len(rec.delivered) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(rec.delivered))
	}
	got := rec.delivered[0]
	if len(got) != 1 || got[0].GUID != "1" {
		t.Errorf("expected only the election story, got %v", got)
	}
}

func TestCyclesDedupAcrossOverlappingBatches(t *testing.T) {
	acq := &fakeAcquirer{batches: [][]story.Story{
		{
			{GUID: "1", Title: "Election results in"},
			{GUID: "2", Title: "Election recount ordered"},
		},
		{
			{GUID: "2", Title: "Election recount ordered"},
			{GUID: "3", Title: "Election certified"},
		},
	}}
	rec := &recordingSink{}
	w := New(acq, electionRoots(t), rec, nil, time.Minute)

	w.Cycle(context.Background())
	w.Cycle(context.Background())

	counts := make(map[string]int)
	for _, batch := range rec.delivered {
		for _, s := range batch {
			counts[s.Key()]++
		}
	}
	for key, n := range counts {
		if n != 1 {
			t.Errorf("key %s forwarded %d times, want once", key, n)
		}
	}
	if len(counts) != 3 {
		t.Errorf("expected 3 distinct keys forwarded, got %d", len(counts))
	}
}

func TestCycleNoMatchesNoDelivery(t *testing.T) {
	acq := &fakeAcquirer{batches: [][]story.Story{{
		{GUID: "1", Title: "Weather today"},
	}}}
	rec := &recordingSink{}
	w := New(acq, electionRoots(t), rec, nil, time.Minute)

	w.Cycle(context.Background())

	if len(rec.delivered) != 0 {
		t.Errorf("expected no deliveries, got %d", len(rec.delivered))
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	acq := &fakeAcquirer{}
	w := New(acq, nil, sink.Multi{}, nil, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(25 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop promptly after cancellation")
	}

	if acq.calls == 0 {
		t.Error("expected at least one poll cycle before cancellation")
	}
}

type upperEnricher struct{}

func (upperEnricher) Enrich(stories []story.Story) []story.Story {
	out := make([]story.Story, len(stories))
	for i, s := range stories {
		out[i] = s
		out[i].Description = "enriched: " + s.Description
	}
	return out
}

func TestCycleEnrichesBeforeDelivery(t *testing.T) {
	acq := &fakeAcquirer{batches: [][]story.Story{{
		{GUID: "1", Title: "Election night", Description: "short"},
	}}}
	rec := &recordingSink{}
	w := New(acq, electionRoots(t), rec, upperEnricher{}, time.Minute)

	w.Cycle(context.Background())

	if len(rec.delivered) != 1 || len(rec.delivered[0]) != 1 {
		t.Fatalf("expected 1 delivered story, got %v", rec.delivered)
	}
	if rec.delivered[0][0].Description != "enriched: short" {
		t.Errorf("expected enriched description, got %q", rec.delivered[0][0].Description)
	}
}
