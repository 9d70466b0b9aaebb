package store

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound signals that a referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUserExists signals the username is already taken.
	ErrUserExists = errors.New("user already exists")
)

// User is the account that owns tracks, likes and comments.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email,omitempty"`
	PasswordHash string `json:"-"`
}

// Track is a shared piece of music owned by the user who posted it.
type Track struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Genre       string `json:"genre"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PostedBy    User   `json:"postedBy"`
}

// Like links a user to a track. Duplicates are allowed.
type Like struct {
	ID    int64 `json:"id"`
	User  User  `json:"user"`
	Track Track `json:"track"`
}

// Comment is a note left on a track at a playback offset in seconds.
type Comment struct {
	ID        int64  `json:"id"`
	Track     Track  `json:"track"`
	Comment   string `json:"comment"`
	PostedBy  User   `json:"postedBy"`
	MusicTime int    `json:"musicTime"`
}

// TrackFilter narrows ListTracks. An empty Search matches every track.
type TrackFilter struct {
	Search string
}

// Store provides persistence backed by a SQL database (Postgres or SQLite).
type Store struct {
	db *sql.DB
}

// New sets up a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
