// Package server is the local web UI over the story archive.
package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"os"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"

	"newswatch/internal/database"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New()

var dayPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Server serves the surfaced-story archive and daily digests.
type Server struct {
	db        *database.DB
	digestDir string
	pages     map[string]*template.Template
	mux       *http.ServeMux
}

// New creates a Server. digestDir is where the digest sink writes its
// per-day markdown files; empty disables the digest view.
func New(db *database.DB, digestDir string) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown": renderMarkdown,
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}

	// Parse base template first
	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// For each page template, clone the base and parse the page into the clone.
	// This gives each page its own {{define "content"}} and {{define "title"}}.
	pageNames := []string{"index.html", "day.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		_, err = clone.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{db: db, digestDir: digestDir, pages: pages, mux: http.NewServeMux()}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	staticSub, _ := fs.Sub(staticFS, "static")
	s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/day/", s.handleDay)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	days, err := s.db.Days()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	recent, err := s.db.RecentStories(25)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	stats, _ := s.db.GetStats()

	s.render(w, "index.html", map[string]any{
		"Days":   days,
		"Recent": recent,
		"Stats":  stats,
	})
}

func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	day := strings.TrimPrefix(r.URL.Path, "/day/")
	if !dayPattern.MatchString(day) {
		http.NotFound(w, r)
		return
	}

	stories, err := s.db.StoriesForDay(day)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, "day.html", map[string]any{
		"Day":     day,
		"Stories": stories,
		"Digest":  s.digestMarkdown(day),
	})
}

// digestMarkdown reads the day's digest file, if any.
func (s *Server) digestMarkdown(day string) string {
	if s.digestDir == "" {
		return ""
	}
	data, err := os.ReadFile(s.digestDir + "/" + day + ".md")
	if err != nil {
		return ""
	}
	return string(data)
}

func (s *Server) render(w http.ResponseWriter, page string, data map[string]any) {
	tmpl, ok := s.pages[page]
	if !ok {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		log.Printf("server: rendering %s: %v", page, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String())
}

// Serve starts the HTTP server on the given port and blocks.
func Serve(db *database.DB, digestDir string, port int) error {
	srv, err := New(db, digestDir)
	if err != nil {
		return err
	}
	addr := fmt.Sprintf(":%d", port)
	log.Printf("server: listening on %s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
