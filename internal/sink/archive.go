package sink

import (
	"context"
	"log"
	"time"

	"newswatch/internal/database"
	"newswatch/internal/story"
)

// Archive stores surfaced stories in the SQLite archive for browsing.
// It is presentation only: the poll loop's dedup gate never reads it,
// so a restarted process may re-surface stories the archive already
// holds (the unique key constraint quietly drops those rows).
type Archive struct {
	db  *database.DB
	now func() time.Time
}

// NewArchive creates an archive sink over db.
func NewArchive(db *database.DB) *Archive {
	return &Archive{db: db, now: time.Now}
}

func (a *Archive) Deliver(_ context.Context, stories []story.Story) error {
	day := a.now().Format("2006-01-02")
	inserted := 0
	for _, s := range stories {
		var guid, desc, link, published *string
		if s.GUID != "" {
			guid = &s.GUID
		}
		if s.Description != "" {
			desc = &s.Description
		}
		if s.Link != "" {
			link = &s.Link
		}
		if s.PubDate != nil {
			p := s.PubDate.Format(time.RFC3339)
			published = &p
		}

		id, err := a.db.InsertStory(s.Key(), s.Title, guid, desc, link, published, day)
		if err != nil {
			return err
		}
		if id > 0 {
			inserted++
		}
	}
	if inserted > 0 {
		log.Printf("archive: stored %d stories", inserted)
	}
	return nil
}
