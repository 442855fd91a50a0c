package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"newswatch/internal/database"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func ptr(s string) *string { return &s }

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestIndexRoute(t *testing.T) {
	db := openTestDB(t)
	srv, err := New(db, "")
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	rec := get(t, srv, "/")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Surfaced stories") {
		t.Error("expected 'Surfaced stories' in response body")
	}
}

func TestIndexListsDaysAndRecent(t *testing.T) {
	db := openTestDB(t)
	db.InsertStory("k1", "Election results", nil, ptr("Votes counted."),
		ptr("https://news.example/1"), nil, "2024-10-18")

	srv, err := New(db, "")
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	rec := get(t, srv, "/")
	body := rec.Body.String()
	if !strings.Contains(body, "2024-10-18") {
		t.Error("expected day link in index")
	}
	if !strings.Contains(body, "Election results") {
		t.Error("expected recent story title in index")
	}
}

func TestDayRoute(t *testing.T) {
	db := openTestDB(t)
	db.InsertStory("k1", "Election results", nil, ptr("Votes counted."),
		ptr("https://news.example/1"), ptr("2024-10-18T12:00:00Z"), "2024-10-18")

	srv, err := New(db, "")
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	rec := get(t, srv, "/day/2024-10-18")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Election results") {
		t.Error("expected story title in day view")
	}
	if !strings.Contains(body, "Votes counted.") {
		t.Error("expected story description in day view")
	}
}

func TestDayRouteRendersDigestMarkdown(t *testing.T) {
	db := openTestDB(t)
	digestDir := t.TempDir()
	md := "# News digest — 2024-10-18\n\n## Election results\n\nVotes counted.\n"
	if err := os.WriteFile(filepath.Join(digestDir, "2024-10-18.md"), []byte(md), 0o644); err != nil {
		t.Fatalf("writing digest: %v", err)
	}

	srv, err := New(db, digestDir)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	rec := get(t, srv, "/day/2024-10-18")
	body := rec.Body.String()
	if !strings.Contains(body, "<h2>Election results</h2>") {
		t.Errorf("expected rendered digest heading, got:\n%s", body)
	}
}

func TestDayRouteRejectsBadDay(t *testing.T) {
	db := openTestDB(t)
	srv, err := New(db, "")
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	for _, path := range []string{"/day/", "/day/notaday", "/day/2024-10-18/extra"} {
		rec := get(t, srv, path)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, rec.Code)
		}
	}
}

func TestStaticRoute(t *testing.T) {
	db := openTestDB(t)
	srv, err := New(db, "")
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	rec := get(t, srv, "/static/style.css")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "font-sans") {
		t.Error("expected CSS content")
	}
}
