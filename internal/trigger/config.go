package trigger

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"
)

// ConfigError describes a rejected line in a trigger rule file.
// Compilation stops at the first bad line; no partial root list is
// ever returned alongside an error.
type ConfigError struct {
	Line   int    // 1-based line number within the filtered input
	Text   string // the offending line
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("trigger config line %d (%q): %s", e.Line, e.Text, e.Reason)
}

// Load reads a trigger rule file, drops comment lines (starting with
// "//") and blank lines, and compiles the remainder. Time triggers are
// interpreted in loc.
func Load(path string, loc *time.Location) ([]Trigger, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening trigger config: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading trigger config: %w", err)
	}

	return Compile(lines, loc)
}

// Compile builds the root trigger list from already-filtered directive
// lines, in a single pass. Every name must be defined before it is used
// as an operand or added to the root list; a name defined twice is
// silently overwritten (last definition wins).
func Compile(lines []string, loc *time.Location) ([]Trigger, error) {
	named := make(map[string]Trigger)
	var roots []Trigger

	for i, line := range lines {
		parts := strings.Split(line, ",")
		if parts[0] == "ADD" {
			if len(parts) < 2 {
				return nil, &ConfigError{Line: i + 1, Text: line, Reason: "ADD needs at least one trigger name"}
			}
			for _, name := range parts[1:] {
				t, ok := named[name]
				if !ok {
					return nil, &ConfigError{Line: i + 1, Text: line, Reason: fmt.Sprintf("undefined trigger %q", name)}
				}
				roots = append(roots, t)
			}
			continue
		}

		if len(parts) < 3 {
			return nil, &ConfigError{Line: i + 1, Text: line, Reason: "definition needs name, type and argument"}
		}
		name, kind := parts[0], parts[1]

		var t Trigger
		switch kind {
		case "TITLE", "DESCRIPTION":
			// The phrase is the rest of the line verbatim, so phrases
			// may contain the delimiter.
			phrase := strings.SplitN(line, ",", 3)[2]
			if kind == "TITLE" {
				t = NewTitleTrigger(phrase)
			} else {
				t = NewDescriptionTrigger(phrase)
			}
		case "BEFORE", "AFTER":
			datetime := strings.SplitN(line, ",", 3)[2]
			var err error
			if kind == "BEFORE" {
				t, err = NewBeforeTrigger(datetime, loc)
			} else {
				t, err = NewAfterTrigger(datetime, loc)
			}
			if err != nil {
				return nil, &ConfigError{Line: i + 1, Text: line, Reason: fmt.Sprintf("bad datetime %q (want %q)", datetime, TimeLayout)}
			}
		case "NOT":
			inner, ok := named[parts[2]]
			if !ok {
				return nil, &ConfigError{Line: i + 1, Text: line, Reason: fmt.Sprintf("undefined trigger %q", parts[2])}
			}
			t = NewNotTrigger(inner)
		case "AND", "OR":
			if len(parts) != 4 {
				return nil, &ConfigError{Line: i + 1, Text: line, Reason: kind + " needs exactly two trigger names"}
			}
			left, ok := named[parts[2]]
			if !ok {
				return nil, &ConfigError{Line: i + 1, Text: line, Reason: fmt.Sprintf("undefined trigger %q", parts[2])}
			}
			right, ok := named[parts[3]]
			if !ok {
				return nil, &ConfigError{Line: i + 1, Text: line, Reason: fmt.Sprintf("undefined trigger %q", parts[3])}
			}
			if kind == "AND" {
				t = NewAndTrigger(left, right)
			} else {
				t = NewOrTrigger(left, right)
			}
		default:
			return nil, &ConfigError{Line: i + 1, Text: line, Reason: fmt.Sprintf("unknown trigger type %q", kind)}
		}

		named[name] = t
	}

	return roots, nil
}
