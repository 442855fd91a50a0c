package database

// StoryRow is a surfaced story as stored in the archive.
type StoryRow struct {
	ID          int64
	Key         string
	GUID        *string
	Title       string
	Description *string
	Link        *string
	PublishedAt *string // RFC 3339, nil when the feed date was unparseable
	Day         string  // YYYY-MM-DD the story was surfaced
	SurfacedAt  string
}

// DayCount is the number of stories surfaced on one day.
type DayCount struct {
	Day   string
	Count int
}

// Stats summarizes the archive contents.
type Stats struct {
	TotalStories int
	Days         int
}
