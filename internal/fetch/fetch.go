// Package fetch optionally enriches surfaced stories with readable
// text extracted from their linked pages, for fuller digest excerpts.
package fetch

import (
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"newswatch/internal/story"
)

const maxExcerpt = 600

// Enricher fetches linked pages via HTTP and extracts readable text.
type Enricher struct {
	client *http.Client
}

// NewEnricher creates an enricher with the given HTTP timeout.
func NewEnricher(timeout time.Duration) *Enricher {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Enricher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// Enrich replaces each story's description with extracted page text
// where extraction succeeds. Stories whose pages cannot be fetched or
// yield no text are passed through unchanged; once a domain fails, the
// remaining stories from it are skipped for this batch.
func (e *Enricher) Enrich(stories []story.Story) []story.Story {
	failedDomains := make(map[string]struct{})

	out := make([]story.Story, len(stories))
	for i, s := range stories {
		out[i] = s
		if s.Link == "" {
			continue
		}

		u, _ := url.Parse(s.Link)
		domain := ""
		if u != nil {
			domain = strings.ToLower(u.Host)
		}
		if _, failed := failedDomains[domain]; failed {
			continue
		}

		text, err := e.extract(s.Link)
		if err != nil {
			if domain != "" {
				failedDomains[domain] = struct{}{}
			}
			log.Printf("fetch: %s: %v — skipping remaining from %s", s.Link, err, domain)
			continue
		}
		if text != "" {
			out[i].Description = excerpt(text)
		}
	}
	return out
}

func (e *Enricher) extract(pageURL string) (string, error) {
	req, err := http.NewRequest("GET", pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "newswatch/1.0 (feed watcher)")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &httpError{code: resp.StatusCode}
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil
	}

	parsedURL, _ := url.Parse(pageURL)
	article, err := readability.FromReader(strings.NewReader(string(bodyBytes)), parsedURL)
	if err != nil {
		return "", nil
	}

	text := strings.TrimSpace(article.TextContent)
	if len(text) > 100 {
		return text, nil
	}
	return "", nil
}

func excerpt(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= maxExcerpt {
		return text
	}
	cut := strings.LastIndex(text[:maxExcerpt], " ")
	if cut <= 0 {
		cut = maxExcerpt
	}
	return text[:cut] + "…"
}

type httpError struct {
	code int
}

func (e *httpError) Error() string {
	return http.StatusText(e.code)
}
