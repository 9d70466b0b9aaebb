package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// openSQLite returns a migrated SQLite store in a temporary directory. The
// test is skipped when the binary was built without cgo.
func openSQLite(t *testing.T) *Store {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	db, err := Open(ctx, DriverSQLite, filepath.Join(t.TempDir(), "trackshare.db"))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := Migrate(db, DriverSQLite, MigrateUp); err != nil {
		t.Fatalf("Migrate up: %v", err)
	}
	// Re-running is a no-op.
	if err := Migrate(db, DriverSQLite, MigrateUp); err != nil {
		t.Fatalf("Migrate up again: %v", err)
	}
	return New(db)
}

func TestSQLiteRoundTrip(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()

	ada, err := s.CreateUser(ctx, User{Username: "ada", Email: "ada@example.com", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := s.CreateUser(ctx, User{Username: "ada", PasswordHash: "h"}); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	grace, err := s.CreateUser(ctx, User{Username: "grace", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	keep, err := s.CreateTrack(ctx, Track{Title: "Teardrop", Genre: "Trip Hop", Description: "100% classic", PostedBy: ada})
	if err != nil {
		t.Fatalf("CreateTrack: %v", err)
	}
	drop, err := s.CreateTrack(ctx, Track{Title: "Angel", Genre: "Trip Hop", URL: "https://example.com/angel", PostedBy: grace})
	if err != nil {
		t.Fatalf("CreateTrack: %v", err)
	}

	found, err := s.ListTracks(ctx, TrackFilter{Search: "100%"})
	if err != nil {
		t.Fatalf("ListTracks: %v", err)
	}
	if len(found) != 1 || found[0].ID != keep.ID || found[0].PostedBy.Username != "ada" {
		t.Fatalf("unexpected search result %#v", found)
	}
	found, err = s.ListTracks(ctx, TrackFilter{Search: "GRACE"})
	if err != nil {
		t.Fatalf("ListTracks: %v", err)
	}
	if len(found) != 1 || found[0].ID != drop.ID {
		t.Fatalf("expected owner username match, got %#v", found)
	}

	umlaut, err := s.CreateTrack(ctx, Track{Title: "Ölgarten", Genre: "Krautrock", PostedBy: grace})
	if err != nil {
		t.Fatalf("CreateTrack: %v", err)
	}
	found, err = s.ListTracks(ctx, TrackFilter{Search: "ölgarten"})
	if err != nil {
		t.Fatalf("ListTracks: %v", err)
	}
	if len(found) != 1 || found[0].ID != umlaut.ID {
		t.Fatalf("expected non-ASCII case-insensitive match, got %#v", found)
	}

	if _, err := s.CreateLike(ctx, ada, drop); err != nil {
		t.Fatalf("CreateLike: %v", err)
	}
	if _, err := s.CreateLike(ctx, ada, keep); err != nil {
		t.Fatalf("CreateLike: %v", err)
	}
	if _, err := s.CreateComment(ctx, Comment{Track: drop, Comment: "wow", PostedBy: ada, MusicTime: -3}); err != nil {
		t.Fatalf("CreateComment: %v", err)
	}

	if err := s.DeleteTrack(ctx, drop.ID); err != nil {
		t.Fatalf("DeleteTrack: %v", err)
	}

	likes, err := s.ListLikes(ctx)
	if err != nil {
		t.Fatalf("ListLikes: %v", err)
	}
	if len(likes) != 1 || likes[0].Track.ID != keep.ID {
		t.Fatalf("expected likes on the deleted track to cascade, got %#v", likes)
	}
	comments, err := s.ListComments(ctx)
	if err != nil {
		t.Fatalf("ListComments: %v", err)
	}
	if len(comments) != 0 {
		t.Fatalf("expected comments to cascade, got %#v", comments)
	}

	updated, err := s.SaveTrack(ctx, Track{ID: keep.ID, Title: "Teardrop (live)", Genre: "Live", Description: "", URL: "u", PostedBy: ada})
	if err != nil {
		t.Fatalf("SaveTrack: %v", err)
	}
	reloaded, err := s.GetTrack(ctx, keep.ID)
	if err != nil {
		t.Fatalf("GetTrack: %v", err)
	}
	if reloaded.Title != updated.Title || reloaded.Genre != "Live" || reloaded.URL != "u" {
		t.Fatalf("unexpected reloaded track %#v", reloaded)
	}
}
