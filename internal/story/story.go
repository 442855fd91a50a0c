// Package story defines the news story value passed between pipeline stages.
package story

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Story is one entry from a news feed. Fields are set once by the
// collector and never mutated afterwards; stages pass stories by value.
// Title and Description are already HTML-entity-decoded. PubDate is nil
// when the feed's publish timestamp could not be parsed.
type Story struct {
	GUID        string
	Title       string
	Description string
	Link        string
	PubDate     *time.Time
}

// Key returns the identity key used for dedup. The feed GUID is used
// when present; otherwise a hash of title and link, so stories without
// a GUID still dedup individually instead of collapsing into one.
func (s Story) Key() string {
	if s.GUID != "" {
		return s.GUID
	}
	sum := sha256.Sum256([]byte(s.Title + "\n" + s.Link))
	return "sha256:" + hex.EncodeToString(sum[:])
}
