package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"newswatch/internal/story"
)

// Digest appends surfaced stories to a per-day markdown file under
// dir/YYYY-MM-DD.md.
type Digest struct {
	dir string
	now func() time.Time
}

// NewDigest creates a digest sink writing into dir.
func NewDigest(dir string) *Digest {
	return &Digest{dir: dir, now: time.Now}
}

// Path returns the digest file path for a given day (YYYY-MM-DD).
func (d *Digest) Path(day string) string {
	return filepath.Join(d.dir, day+".md")
}

func (d *Digest) Deliver(_ context.Context, stories []story.Story) error {
	if len(stories) == 0 {
		return nil
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("creating digest directory: %w", err)
	}

	now := d.now()
	day := now.Format("2006-01-02")
	path := d.Path(day)

	var b strings.Builder
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintf(&b, "# News digest — %s\n", day)
	}
	for _, s := range stories {
		fmt.Fprintf(&b, "\n## %s\n\n", escapeMarkdown(s.Title))
		if s.PubDate != nil {
			fmt.Fprintf(&b, "*Published %s, surfaced %s*\n\n",
				s.PubDate.Format("02 Jan 2006 15:04"), now.Format("15:04"))
		} else {
			fmt.Fprintf(&b, "*Surfaced %s*\n\n", now.Format("15:04"))
		}
		if s.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", s.Description)
		}
		if s.Link != "" {
			fmt.Fprintf(&b, "[Read more](%s)\n", s.Link)
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening digest: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("writing digest: %w", err)
	}
	return nil
}

func escapeMarkdown(s string) string {
	return strings.NewReplacer("#", `\#`, "*", `\*`, "_", `\_`).Replace(s)
}
