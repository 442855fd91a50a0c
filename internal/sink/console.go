package sink

import (
	"context"
	"fmt"
	"io"
	"strings"

	"newswatch/internal/story"
)

// Console prints surfaced stories to a writer, one block per story.
type Console struct {
	w io.Writer
}

// NewConsole creates a console sink writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Deliver(_ context.Context, stories []story.Story) error {
	for _, s := range stories {
		fmt.Fprintln(c.w, s.Title)
		fmt.Fprintln(c.w, strings.Repeat("-", 63))
		if s.Description != "" {
			fmt.Fprintln(c.w, s.Description)
		}
		if s.Link != "" {
			fmt.Fprintln(c.w, s.Link)
		}
		fmt.Fprintln(c.w)
	}
	return nil
}
