package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// timeLayout is fixed width so stored timestamps sort lexically in time
// order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// Release operations

// InsertRelease records a release and returns its ID.
func (s *Store) InsertRelease(r *Release) (int64, error) {
	if r.RecordedAt.IsZero() {
		r.RecordedAt = time.Now()
	}

	query := `
		INSERT INTO releases (token, version, url, sha256, archive_path, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.Exec(query,
		r.Token,
		r.Version,
		r.URL,
		r.SHA256,
		r.ArchivePath,
		formatTime(r.RecordedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return 0, fmt.Errorf("%s %s: %w", r.Token, r.Version, ErrReleaseExists)
		}
		return 0, wrapErr(err, "failed to insert release %s %s", r.Token, r.Version)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get release ID: %w", err)
	}
	r.ID = id
	return id, nil
}

const releaseColumns = `id, token, version, url, sha256, archive_path, recorded_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRelease(row rowScanner) (*Release, error) {
	var r Release
	var recordedAt string
	if err := row.Scan(&r.ID, &r.Token, &r.Version, &r.URL, &r.SHA256, &r.ArchivePath, &recordedAt); err != nil {
		return nil, err
	}
	t, err := parseTime(recordedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse recorded_at for %s %s: %w", r.Token, r.Version, err)
	}
	r.RecordedAt = t
	return &r, nil
}

// GetRelease returns the release of token at version.
func (s *Store) GetRelease(token, version string) (*Release, error) {
	query := `SELECT ` + releaseColumns + ` FROM releases WHERE token = ? AND version = ?`

	r, err := scanRelease(s.db.QueryRow(query, token, version))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("release %s %s: %w", token, version, ErrNotFound)
	}
	if err != nil {
		return nil, wrapErr(err, "failed to get release %s %s", token, version)
	}
	return r, nil
}

// LatestRelease returns the most recently recorded release of token.
func (s *Store) LatestRelease(token string) (*Release, error) {
	query := `SELECT ` + releaseColumns + ` FROM releases WHERE token = ? ORDER BY recorded_at DESC, id DESC LIMIT 1`

	r, err := scanRelease(s.db.QueryRow(query, token))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no releases for %s: %w", token, ErrNotFound)
	}
	if err != nil {
		return nil, wrapErr(err, "failed to get latest release of %s", token)
	}
	return r, nil
}

// ListReleases returns releases newest first. An empty token lists all casks.
func (s *Store) ListReleases(token string) ([]*Release, error) {
	query := `SELECT ` + releaseColumns + ` FROM releases`
	var args []any
	if token != "" {
		query += ` WHERE token = ?`
		args = append(args, token)
	}
	query += ` ORDER BY recorded_at DESC, id DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, wrapErr(err, "failed to list releases")
	}
	defer rows.Close()

	var releases []*Release
	for rows.Next() {
		r, err := scanRelease(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan release row: %w", err)
		}
		releases = append(releases, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating releases: %w", err)
	}
	return releases, nil
}

// Event operations

// InsertEvent records a lifecycle event, assigning an ID and timestamp
// when unset.
func (s *Store) InsertEvent(e *Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO events (id, token, version, action, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query,
		e.ID,
		e.Token,
		e.Version,
		string(e.Action),
		e.Detail,
		formatTime(e.CreatedAt),
	)
	if err != nil {
		return wrapErr(err, "failed to insert %s event for %s", e.Action, e.Token)
	}
	return nil
}

// ListEvents returns events newest first. An empty token lists all casks;
// limit <= 0 means no limit.
func (s *Store) ListEvents(token string, limit int) ([]*Event, error) {
	query := `SELECT id, token, version, action, detail, created_at FROM events`
	var args []any
	if token != "" {
		query += ` WHERE token = ?`
		args = append(args, token)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, wrapErr(err, "failed to list events")
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var e Event
		var version, detail sql.NullString
		var action, createdAt string
		if err := rows.Scan(&e.ID, &e.Token, &version, &action, &detail, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		e.Version = version.String
		e.Detail = detail.String
		e.Action = Action(action)
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at for event %s: %w", e.ID, err)
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}
	return events, nil
}
