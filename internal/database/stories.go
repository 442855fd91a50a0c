package database

import "database/sql"

// InsertStory inserts a surfaced story. Returns the row ID on success,
// 0 if a story with the same key is already archived.
func (db *DB) InsertStory(key, title string, guid, description, link, publishedAt *string, day string) (int64, error) {
	result, err := db.conn.Exec(
		`INSERT INTO stories (story_key, guid, title, description, link, published_at, day)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		key, guid, title, description, link, publishedAt, day,
	)
	if err != nil {
		// Duplicate key constraint
		return 0, nil //nolint: nilerr
	}
	return result.LastInsertId()
}

// RecentStories returns the most recently surfaced stories, newest first.
func (db *DB) RecentStories(limit int) ([]StoryRow, error) {
	rows, err := db.conn.Query(
		`SELECT id, story_key, guid, title, description, link, published_at, day, surfaced_at
		FROM stories ORDER BY surfaced_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStories(rows)
}

// StoriesForDay returns stories surfaced on the given day, newest first.
func (db *DB) StoriesForDay(day string) ([]StoryRow, error) {
	rows, err := db.conn.Query(
		`SELECT id, story_key, guid, title, description, link, published_at, day, surfaced_at
		FROM stories WHERE day = ? ORDER BY surfaced_at DESC, id DESC`, day,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStories(rows)
}

// Days returns every day with surfaced stories, newest first.
func (db *DB) Days() ([]DayCount, error) {
	rows, err := db.conn.Query(
		`SELECT day, COUNT(*) FROM stories GROUP BY day ORDER BY day DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []DayCount
	for rows.Next() {
		var d DayCount
		if err := rows.Scan(&d.Day, &d.Count); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// GetStats returns archive totals.
func (db *DB) GetStats() (*Stats, error) {
	s := &Stats{}
	err := db.conn.QueryRow(
		`SELECT COUNT(*), COUNT(DISTINCT day) FROM stories`,
	).Scan(&s.TotalStories, &s.Days)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func scanStories(rows *sql.Rows) ([]StoryRow, error) {
	var stories []StoryRow
	for rows.Next() {
		var s StoryRow
		if err := rows.Scan(&s.ID, &s.Key, &s.GUID, &s.Title, &s.Description,
			&s.Link, &s.PublishedAt, &s.Day, &s.SurfacedAt); err != nil {
			return nil, err
		}
		stories = append(stories, s)
	}
	return stories, rows.Err()
}
