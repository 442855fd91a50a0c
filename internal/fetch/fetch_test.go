package fetch

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"newswatch/internal/story"
)

func articlePage() string {
	para := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 10)
	return fmt.Sprintf(`<!DOCTYPE html>
<html><head><title>Test Article</title></head>
<body>
<article>
<h1>Test Article</h1>
<p>%s</p>
<p>%s</p>
</article>
</body></html>`, para, para)
}

func TestEnrichReplacesDescription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, articlePage())
	}))
	defer srv.Close()

	e := NewEnricher(5 * time.Second)
	in := []story.Story{{GUID: "1", Title: "Test Article", Description: "stub", Link: srv.URL + "/article"}}
	out := e.Enrich(in)

	if len(out) != 1 {
		t.Fatalf("expected 1 story, got %d", len(out))
	}
	if out[0].Description == "stub" {
		t.Error("expected description to be replaced with extracted text")
	}
	if !strings.Contains(out[0].Description, "quick brown fox") {
		t.Errorf("expected extracted text, got %q", out[0].Description)
	}
	if in[0].Description != "stub" {
		t.Error("input slice must not be mutated")
	}
}

func TestEnrichLeavesStoryOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	e := NewEnricher(5 * time.Second)
	in := []story.Story{
		{GUID: "1", Title: "Missing", Description: "original", Link: srv.URL + "/a"},
		{GUID: "2", Title: "Also missing", Description: "kept", Link: srv.URL + "/b"},
		{GUID: "3", Title: "No link", Description: "untouched"},
	}
	out := e.Enrich(in)

	for i, s := range out {
		if s.Description != in[i].Description {
			t.Errorf("story %d: description changed on failure: %q", i, s.Description)
		}
	}
}

func TestExcerptTruncatesOnWordBoundary(t *testing.T) {
	long := strings.Repeat("word ", 200)
	got := excerpt(long)
	if len(got) > maxExcerpt+len("…") {
		t.Errorf("excerpt too long: %d bytes", len(got))
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("expected ellipsis suffix, got %q", got[len(got)-10:])
	}
	if strings.HasSuffix(strings.TrimSuffix(got, "…"), " ") {
		t.Error("excerpt should not end with a space before the ellipsis")
	}

	short := "short text"
	if excerpt(short) != short {
		t.Errorf("short text should pass through, got %q", excerpt(short))
	}
}
