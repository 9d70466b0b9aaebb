package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const trackColumns = `
		t.id, t.title, t.genre, t.description, t.url,
		u.id, u.username, u.email`

const trackFrom = `
	FROM tracks t
	JOIN users u ON u.id = t.posted_by_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrack(row rowScanner) (Track, error) {
	var t Track
	err := row.Scan(&t.ID, &t.Title, &t.Genre, &t.Description, &t.URL,
		&t.PostedBy.ID, &t.PostedBy.Username, &t.PostedBy.Email)
	return t, err
}

// GetTrack returns a single track by ID.
func (s *Store) GetTrack(ctx context.Context, id int64) (Track, error) {
	track, err := scanTrack(s.db.QueryRowContext(ctx,
		`SELECT`+trackColumns+trackFrom+`
	WHERE t.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Track{}, fmt.Errorf("track %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Track{}, fmt.Errorf("get track: %w", err)
	}
	return track, nil
}

// ListTracks returns tracks whose title, genre, description, url or owner
// username contains filter.Search, ignoring case.
func (s *Store) ListTracks(ctx context.Context, filter TrackFilter) ([]Track, error) {
	query := `SELECT` + trackColumns + trackFrom
	var args []any

	if filter.Search != "" {
		query += `
	WHERE LOWER(t.title) LIKE $1 ESCAPE '\'
	   OR LOWER(t.genre) LIKE $1 ESCAPE '\'
	   OR LOWER(t.description) LIKE $1 ESCAPE '\'
	   OR LOWER(t.url) LIKE $1 ESCAPE '\'
	   OR LOWER(u.username) LIKE $1 ESCAPE '\'`
		args = append(args, containsPattern(filter.Search))
	}

	query += `
	ORDER BY t.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tracks: %w", err)
	}
	defer rows.Close()

	tracks := make([]Track, 0)
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		tracks = append(tracks, track)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tracks: %w", err)
	}

	return tracks, nil
}

// CreateTrack persists a track owned by track.PostedBy.
func (s *Store) CreateTrack(ctx context.Context, track Track) (Track, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tracks (title, genre, description, url, posted_by_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, track.Title, track.Genre, track.Description, track.URL, track.PostedBy.ID).Scan(&track.ID)
	if err != nil {
		return Track{}, fmt.Errorf("insert track: %w", err)
	}
	return track, nil
}

// SaveTrack overwrites the editable fields of an existing track.
func (s *Store) SaveTrack(ctx context.Context, track Track) (Track, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tracks
		SET title = $1, genre = $2, description = $3, url = $4
		WHERE id = $5
	`, track.Title, track.Genre, track.Description, track.URL, track.ID)
	if err != nil {
		return Track{}, fmt.Errorf("update track: %w", err)
	}
	if err := expectAffected(res, fmt.Sprintf("track %d", track.ID)); err != nil {
		return Track{}, err
	}
	return track, nil
}

// DeleteTrack removes a track. Likes and comments go with it through the
// ON DELETE CASCADE foreign keys.
func (s *Store) DeleteTrack(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM tracks
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("delete track: %w", err)
	}
	return expectAffected(res, fmt.Sprintf("track %d", id))
}

func expectAffected(res sql.Result, subject string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", subject, ErrNotFound)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns free text into a lower-cased LIKE pattern that matches
// the text anywhere, with wildcard characters taken literally.
func containsPattern(search string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
}
