package store

import (
	"context"
	"fmt"
)

// ListLikes returns every like with its user and track resolved.
func (s *Store) ListLikes(ctx context.Context) ([]Like, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT l.id,
		       lu.id, lu.username, lu.email,
		       t.id, t.title, t.genre, t.description, t.url,
		       tu.id, tu.username, tu.email
		FROM likes l
		JOIN users lu ON lu.id = l.user_id
		JOIN tracks t ON t.id = l.track_id
		JOIN users tu ON tu.id = t.posted_by_id
		ORDER BY l.id
	`)
	if err != nil {
		return nil, fmt.Errorf("query likes: %w", err)
	}
	defer rows.Close()

	likes := make([]Like, 0)
	for rows.Next() {
		var (
			l Like
			t = &l.Track
		)
		if err := rows.Scan(&l.ID,
			&l.User.ID, &l.User.Username, &l.User.Email,
			&t.ID, &t.Title, &t.Genre, &t.Description, &t.URL,
			&t.PostedBy.ID, &t.PostedBy.Username, &t.PostedBy.Email,
		); err != nil {
			return nil, fmt.Errorf("scan like: %w", err)
		}
		likes = append(likes, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate likes: %w", err)
	}

	return likes, nil
}

// CreateLike records that user likes track.
func (s *Store) CreateLike(ctx context.Context, user User, track Track) (Like, error) {
	like := Like{User: user, Track: track}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO likes (user_id, track_id)
		VALUES ($1, $2)
		RETURNING id
	`, user.ID, track.ID).Scan(&like.ID)
	if err != nil {
		return Like{}, fmt.Errorf("insert like: %w", err)
	}
	return like, nil
}
