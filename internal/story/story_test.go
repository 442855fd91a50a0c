package story

import (
	"strings"
	"testing"
)

func TestKeyUsesGUIDWhenPresent(t *testing.T) {
	s := Story{GUID: "guid-1", Title: "A", Link: "https://a.example"}
	if s.Key() != "guid-1" {
		t.Errorf("expected GUID key, got %q", s.Key())
	}
}

func TestKeyFallbackIsDeterministic(t *testing.T) {
	a := Story{Title: "A story", Link: "https://a.example"}
	b := Story{Title: "A story", Link: "https://a.example"}
	c := Story{Title: "Another story", Link: "https://a.example"}

	if a.Key() != b.Key() {
		t.Error("identical stories must share a key")
	}
	if a.Key() == c.Key() {
		t.Error("different stories must not share a key")
	}
	if !strings.HasPrefix(a.Key(), "sha256:") {
		t.Errorf("fallback key should be marked as derived, got %q", a.Key())
	}
}
