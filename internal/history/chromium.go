package history

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// webkitEpochOffsetMs is the distance between 1601-01-01 and the Unix epoch.
const webkitEpochOffsetMs = 11644473600000

// ToWebKit converts a ms Unix epoch to Chromium's µs since 1601.
func ToWebKit(ms int64) int64 {
	return (ms + webkitEpochOffsetMs) * 1000
}

// FromWebKit converts Chromium's µs since 1601 to a ms Unix epoch.
func FromWebKit(us int64) int64 {
	if us <= 0 {
		return 0
	}
	return us/1000 - webkitEpochOffsetMs
}

// ChromiumReader reads a Chromium "History" sqlite file.
//
// The file is opened immutable so that reading works while the browser holds
// its lock. Connections are recycled after connMaxLifetime so a long running
// process picks up rows the browser wrote since.
type ChromiumReader struct {
	db *sql.DB
}

const connMaxLifetime = time.Minute

// OpenChromium opens the history file at path read-only.
func OpenChromium(path string) (*ChromiumReader, error) {
	dsn := (&url.URL{
		Scheme:   "file",
		Path:     path,
		RawQuery: "mode=ro&immutable=1&_query_only=true",
	}).String()

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}
	db.SetConnMaxLifetime(connMaxLifetime)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}
	return &ChromiumReader{db: db}, nil
}

func (r *ChromiumReader) Close() error {
	return r.db.Close()
}

const searchQuery = `
SELECT id, url, COALESCE(title, ''), last_visit_time, visit_count
FROM urls
WHERE hidden = 0 AND last_visit_time >= ? AND last_visit_time < ?
ORDER BY last_visit_time DESC`

// Search returns the URLs last visited in [start, end).
func (r *ChromiumReader) Search(ctx context.Context, start, end int64) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx, searchQuery, ToWebKit(start), ToWebKit(end))
	if err != nil {
		return nil, fmt.Errorf("query urls: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var (
			id        int64
			item      Item
			lastVisit int64
		)
		if err := rows.Scan(&id, &item.URL, &item.Title, &lastVisit, &item.VisitCount); err != nil {
			return nil, fmt.Errorf("scan url: %w", err)
		}
		item.ID = strconv.FormatInt(id, 10)
		item.LastVisitTime = FromWebKit(lastVisit)
		items = append(items, item)
	}
	return items, rows.Err()
}

const visitsQuery = `
SELECT v.id, v.visit_time, v.from_visit
FROM visits v
JOIN urls u ON u.id = v.url
WHERE u.url = ?
ORDER BY v.visit_time ASC`

// GetVisits returns every visit to url, oldest first.
func (r *ChromiumReader) GetVisits(ctx context.Context, rawURL string) ([]Visit, error) {
	rows, err := r.db.QueryContext(ctx, visitsQuery, rawURL)
	if err != nil {
		return nil, fmt.Errorf("query visits: %w", err)
	}
	defer rows.Close()

	var visits []Visit
	for rows.Next() {
		var id, visitTime, fromVisit int64
		if err := rows.Scan(&id, &visitTime, &fromVisit); err != nil {
			return nil, fmt.Errorf("scan visit: %w", err)
		}
		visits = append(visits, Visit{
			VisitID:          strconv.FormatInt(id, 10),
			VisitTime:        FromWebKit(visitTime),
			ReferringVisitID: strconv.FormatInt(fromVisit, 10),
		})
	}
	return visits, rows.Err()
}
