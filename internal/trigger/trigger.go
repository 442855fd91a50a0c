// Package trigger implements the boolean predicates that decide whether
// a story is surfaced, plus the compiler for the textual rule file that
// assembles them.
package trigger

import (
	"strings"
	"time"

	"newswatch/internal/story"
)

// Trigger is a predicate over a single story. Evaluate has no side
// effects and never fails: a story with missing or malformed fields
// simply does not match.
type Trigger interface {
	Evaluate(s story.Story) bool
}

// TimeLayout is the literal datetime format accepted by time triggers,
// e.g. "18 Oct 2024 12:00:00".
const TimeLayout = "02 Jan 2006 15:04:05"

const asciiPunct = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// phraseWords lowercases a trigger phrase and splits it into words.
// Punctuation inside the phrase is kept as-is; since punctuation is
// stripped from the target text before matching, a phrase word that
// contains punctuation can never match.
func phraseWords(phrase string) []string {
	return strings.Fields(strings.ToLower(phrase))
}

// textWords lowercases text, replaces each ASCII punctuation character
// with a space, and splits on whitespace. The replacement keeps
// punctuation from joining adjacent words ("Stock-Market" becomes two
// words) without inventing new ones.
func textWords(text string) []string {
	text = strings.ToLower(text)
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r < 0x80 && strings.ContainsRune(asciiPunct, r) {
			b.WriteByte(' ')
		} else {
			b.WriteRune(r)
		}
	}
	return strings.Fields(b.String())
}

// phraseIn reports whether phrase occurs in text as a contiguous run of
// whole words. An empty phrase (e.g. punctuation only) never matches.
func phraseIn(phrase []string, text string) bool {
	if len(phrase) == 0 {
		return false
	}
	words := textWords(text)
	for i := 0; i+len(phrase) <= len(words); i++ {
		match := true
		for j, w := range phrase {
			if words[i+j] != w {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// TitleTrigger fires when its phrase occurs in the story title.
type TitleTrigger struct {
	phrase []string
}

// NewTitleTrigger creates a title phrase trigger.
func NewTitleTrigger(phrase string) *TitleTrigger {
	return &TitleTrigger{phrase: phraseWords(phrase)}
}

func (t *TitleTrigger) Evaluate(s story.Story) bool {
	return phraseIn(t.phrase, s.Title)
}

// DescriptionTrigger fires when its phrase occurs in the story description.
type DescriptionTrigger struct {
	phrase []string
}

// NewDescriptionTrigger creates a description phrase trigger.
func NewDescriptionTrigger(phrase string) *DescriptionTrigger {
	return &DescriptionTrigger{phrase: phraseWords(phrase)}
}

func (t *DescriptionTrigger) Evaluate(s story.Story) bool {
	return phraseIn(t.phrase, s.Description)
}

// Time triggers compare absolute instants. Feed timestamps that carried
// no zone information are already pinned to the reference location by
// the collector (dateparse.ParseIn), so a nil PubDate is the only case
// handled here: it never satisfies a time bound.

// BeforeTrigger fires for stories published strictly before its bound.
type BeforeTrigger struct {
	bound time.Time
}

// NewBeforeTrigger parses a datetime in TimeLayout, interpreted in loc.
func NewBeforeTrigger(datetime string, loc *time.Location) (*BeforeTrigger, error) {
	bound, err := time.ParseInLocation(TimeLayout, datetime, loc)
	if err != nil {
		return nil, err
	}
	return &BeforeTrigger{bound: bound}, nil
}

func (t *BeforeTrigger) Evaluate(s story.Story) bool {
	if s.PubDate == nil {
		return false
	}
	return s.PubDate.Before(t.bound)
}

// AfterTrigger fires for stories published strictly after its bound.
type AfterTrigger struct {
	bound time.Time
}

// NewAfterTrigger parses a datetime in TimeLayout, interpreted in loc.
func NewAfterTrigger(datetime string, loc *time.Location) (*AfterTrigger, error) {
	bound, err := time.ParseInLocation(TimeLayout, datetime, loc)
	if err != nil {
		return nil, err
	}
	return &AfterTrigger{bound: bound}, nil
}

func (t *AfterTrigger) Evaluate(s story.Story) bool {
	if s.PubDate == nil {
		return false
	}
	return s.PubDate.After(t.bound)
}

// NotTrigger negates its inner trigger.
type NotTrigger struct {
	inner Trigger
}

// NewNotTrigger creates a negation of inner.
func NewNotTrigger(inner Trigger) *NotTrigger {
	return &NotTrigger{inner: inner}
}

func (t *NotTrigger) Evaluate(s story.Story) bool {
	return !t.inner.Evaluate(s)
}

// AndTrigger fires when both children fire. The right child is not
// evaluated when the left already failed.
type AndTrigger struct {
	left, right Trigger
}

// NewAndTrigger creates a conjunction of left and right.
func NewAndTrigger(left, right Trigger) *AndTrigger {
	return &AndTrigger{left: left, right: right}
}

func (t *AndTrigger) Evaluate(s story.Story) bool {
	return t.left.Evaluate(s) && t.right.Evaluate(s)
}

// OrTrigger fires when either child fires. The right child is not
// evaluated when the left already fired.
type OrTrigger struct {
	left, right Trigger
}

// NewOrTrigger creates a disjunction of left and right.
func NewOrTrigger(left, right Trigger) *OrTrigger {
	return &OrTrigger{left: left, right: right}
}

func (t *OrTrigger) Evaluate(s story.Story) bool {
	return t.left.Evaluate(s) || t.right.Evaluate(s)
}
