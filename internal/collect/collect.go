// Package collect fetches configured RSS/Atom feeds and normalizes
// their entries into stories for the filter pipeline.
package collect

import (
	"context"
	"html"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"

	"newswatch/internal/story"
)

const defaultTimeout = 20 * time.Second

// Source is one feed endpoint.
type Source struct {
	URL  string
	Name string
}

// Collector fetches and parses a fixed set of feed sources.
type Collector struct {
	sources []Source
	loc     *time.Location
	parser  *gofeed.Parser
	timeout time.Duration
}

// New creates a collector. Publish timestamps that carry no timezone
// are interpreted in loc.
func New(sources []Source, loc *time.Location) *Collector {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: defaultTimeout}
	parser.UserAgent = "newswatch/1.0 (feed watcher)"
	return &Collector{
		sources: sources,
		loc:     loc,
		parser:  parser,
		timeout: defaultTimeout,
	}
}

// CollectAll fetches every source in order and concatenates the
// results. A source that fails to fetch or parse contributes nothing
// this cycle; the failure is logged and the remaining sources still
// run.
func (c *Collector) CollectAll(ctx context.Context) []story.Story {
	var all []story.Story
	for _, src := range c.sources {
		stories, err := c.collectSource(ctx, src)
		if err != nil {
			log.Printf("collect: %s: %v", sourceLabel(src), err)
			continue
		}
		log.Printf("collect: %d stories from %s", len(stories), sourceLabel(src))
		all = append(all, stories...)
	}
	return all
}

func (c *Collector) collectSource(ctx context.Context, src Source) ([]story.Story, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	feed, err := c.parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, err
	}
	return c.storiesFromFeed(feed), nil
}

func (c *Collector) storiesFromFeed(feed *gofeed.Feed) []story.Story {
	var stories []story.Story
	for _, item := range feed.Items {
		stories = append(stories, c.storyFromItem(item))
	}
	return stories
}

func (c *Collector) storyFromItem(item *gofeed.Item) story.Story {
	desc := item.Description
	if desc == "" {
		desc = item.Content
	}
	return story.Story{
		GUID:        item.GUID,
		Title:       cleanText(item.Title),
		Description: cleanText(desc),
		Link:        item.Link,
		PubDate:     c.parsePubDate(item),
	}
}

// parsePubDate parses the raw publish timestamp, trying the item's
// published then updated stamps. Timestamps without zone information
// are pinned to the collector's reference location. An unparseable
// stamp yields nil; such stories never satisfy time triggers.
func (c *Collector) parsePubDate(item *gofeed.Item) *time.Time {
	for _, raw := range []string{item.Published, item.Updated} {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if t, err := dateparse.ParseIn(raw, c.loc); err == nil {
			return &t
		}
	}
	return nil
}

// cleanText strips HTML tags, decodes entity references and collapses
// whitespace.
func cleanText(text string) string {
	var b strings.Builder
	inTag := false
	for _, r := range text {
		switch {
		case r == '<':
			inTag = true
			b.WriteByte(' ')
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(html.UnescapeString(b.String())), " ")
}

func sourceLabel(src Source) string {
	if src.Name != "" {
		return src.Name
	}
	u, err := url.Parse(src.URL)
	if err != nil || u.Hostname() == "" {
		return src.URL
	}
	return u.Hostname()
}
