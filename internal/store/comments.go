package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const commentSelect = `
		SELECT c.id, c.comment, c.music_time,
		       cu.id, cu.username, cu.email,
		       t.id, t.title, t.genre, t.description, t.url,
		       tu.id, tu.username, tu.email
		FROM comments c
		JOIN users cu ON cu.id = c.posted_by_id
		JOIN tracks t ON t.id = c.track_id
		JOIN users tu ON tu.id = t.posted_by_id`

func scanComment(row rowScanner) (Comment, error) {
	var (
		c Comment
		t = &c.Track
	)
	err := row.Scan(&c.ID, &c.Comment, &c.MusicTime,
		&c.PostedBy.ID, &c.PostedBy.Username, &c.PostedBy.Email,
		&t.ID, &t.Title, &t.Genre, &t.Description, &t.URL,
		&t.PostedBy.ID, &t.PostedBy.Username, &t.PostedBy.Email,
	)
	return c, err
}

// GetComment returns a single comment by ID.
func (s *Store) GetComment(ctx context.Context, id int64) (Comment, error) {
	comment, err := scanComment(s.db.QueryRowContext(ctx, commentSelect+`
		WHERE c.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Comment{}, fmt.Errorf("comment %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Comment{}, fmt.Errorf("get comment: %w", err)
	}
	return comment, nil
}

// ListComments returns every comment with its author and track resolved.
func (s *Store) ListComments(ctx context.Context) ([]Comment, error) {
	rows, err := s.db.QueryContext(ctx, commentSelect+`
		ORDER BY c.id`)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	comments := make([]Comment, 0)
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}

	return comments, nil
}

// CreateComment persists comment against comment.Track by comment.PostedBy.
func (s *Store) CreateComment(ctx context.Context, comment Comment) (Comment, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO comments (track_id, comment, posted_by_id, music_time)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, comment.Track.ID, comment.Comment, comment.PostedBy.ID, comment.MusicTime).Scan(&comment.ID)
	if err != nil {
		return Comment{}, fmt.Errorf("insert comment: %w", err)
	}
	return comment, nil
}

// DeleteComment removes a comment by ID.
func (s *Store) DeleteComment(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM comments
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return expectAffected(res, fmt.Sprintf("comment %d", id))
}
