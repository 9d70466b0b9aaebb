package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Memory keeps every record in process memory. It implements the same
// operations as Store and is used for demos and tests.
type Memory struct {
	mu       sync.RWMutex
	users    map[int64]User
	tracks   map[int64]trackRow
	likes    map[int64]likeRow
	comments map[int64]commentRow
	nextID   map[string]int64
}

type trackRow struct {
	ID          int64
	Title       string
	Genre       string
	Description string
	URL         string
	PostedByID  int64
}

type likeRow struct {
	ID      int64
	UserID  int64
	TrackID int64
}

type commentRow struct {
	ID         int64
	TrackID    int64
	Comment    string
	PostedByID int64
	MusicTime  int
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:    make(map[int64]User),
		tracks:   make(map[int64]trackRow),
		likes:    make(map[int64]likeRow),
		comments: make(map[int64]commentRow),
		nextID:   make(map[string]int64),
	}
}

func (m *Memory) allocID(table string) int64 {
	m.nextID[table]++
	return m.nextID[table]
}

// GetTrack returns a single track by ID.
func (m *Memory) GetTrack(_ context.Context, id int64) (Track, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	row, ok := m.tracks[id]
	if !ok {
		return Track{}, fmt.Errorf("track %d: %w", id, ErrNotFound)
	}
	return m.resolveTrack(row), nil
}

// ListTracks returns tracks matching filter ordered by ID.
func (m *Memory) ListTracks(_ context.Context, filter TrackFilter) ([]Track, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(filter.Search)
	tracks := make([]Track, 0, len(m.tracks))
	for _, row := range m.tracks {
		track := m.resolveTrack(row)
		if needle != "" && !trackMatches(track, needle) {
			continue
		}
		tracks = append(tracks, track)
	}
	sort.Slice(tracks, func(i, j int) bool { return tracks[i].ID < tracks[j].ID })
	return tracks, nil
}

func trackMatches(t Track, needle string) bool {
	for _, field := range []string{t.Title, t.Genre, t.Description, t.URL, t.PostedBy.Username} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// CreateTrack persists a track owned by track.PostedBy.
func (m *Memory) CreateTrack(_ context.Context, track Track) (Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[track.PostedBy.ID]; !ok {
		return Track{}, fmt.Errorf("user %d: %w", track.PostedBy.ID, ErrNotFound)
	}

	track.ID = m.allocID("tracks")
	m.tracks[track.ID] = trackRow{
		ID:          track.ID,
		Title:       track.Title,
		Genre:       track.Genre,
		Description: track.Description,
		URL:         track.URL,
		PostedByID:  track.PostedBy.ID,
	}
	return m.resolveTrack(m.tracks[track.ID]), nil
}

// SaveTrack overwrites the editable fields of an existing track.
func (m *Memory) SaveTrack(_ context.Context, track Track) (Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.tracks[track.ID]
	if !ok {
		return Track{}, fmt.Errorf("track %d: %w", track.ID, ErrNotFound)
	}
	row.Title = track.Title
	row.Genre = track.Genre
	row.Description = track.Description
	row.URL = track.URL
	m.tracks[track.ID] = row
	return m.resolveTrack(row), nil
}

// DeleteTrack removes a track along with its likes and comments.
func (m *Memory) DeleteTrack(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tracks[id]; !ok {
		return fmt.Errorf("track %d: %w", id, ErrNotFound)
	}
	delete(m.tracks, id)
	for likeID, like := range m.likes {
		if like.TrackID == id {
			delete(m.likes, likeID)
		}
	}
	for commentID, comment := range m.comments {
		if comment.TrackID == id {
			delete(m.comments, commentID)
		}
	}
	return nil
}

// ListLikes returns every like ordered by ID.
func (m *Memory) ListLikes(_ context.Context) ([]Like, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	likes := make([]Like, 0, len(m.likes))
	for _, row := range m.likes {
		likes = append(likes, Like{
			ID:    row.ID,
			User:  m.users[row.UserID],
			Track: m.resolveTrack(m.tracks[row.TrackID]),
		})
	}
	sort.Slice(likes, func(i, j int) bool { return likes[i].ID < likes[j].ID })
	return likes, nil
}

// CreateLike records that user likes track.
func (m *Memory) CreateLike(_ context.Context, user User, track Track) (Like, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkRefs(user.ID, track.ID); err != nil {
		return Like{}, err
	}

	row := likeRow{ID: m.allocID("likes"), UserID: user.ID, TrackID: track.ID}
	m.likes[row.ID] = row
	return Like{ID: row.ID, User: user, Track: track}, nil
}

// GetComment returns a single comment by ID.
func (m *Memory) GetComment(_ context.Context, id int64) (Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	row, ok := m.comments[id]
	if !ok {
		return Comment{}, fmt.Errorf("comment %d: %w", id, ErrNotFound)
	}
	return m.resolveComment(row), nil
}

// ListComments returns every comment ordered by ID.
func (m *Memory) ListComments(_ context.Context) ([]Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	comments := make([]Comment, 0, len(m.comments))
	for _, row := range m.comments {
		comments = append(comments, m.resolveComment(row))
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments, nil
}

// CreateComment persists comment against comment.Track by comment.PostedBy.
func (m *Memory) CreateComment(_ context.Context, comment Comment) (Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkRefs(comment.PostedBy.ID, comment.Track.ID); err != nil {
		return Comment{}, err
	}

	comment.ID = m.allocID("comments")
	m.comments[comment.ID] = commentRow{
		ID:         comment.ID,
		TrackID:    comment.Track.ID,
		Comment:    comment.Comment,
		PostedByID: comment.PostedBy.ID,
		MusicTime:  comment.MusicTime,
	}
	return comment, nil
}

// DeleteComment removes a comment by ID.
func (m *Memory) DeleteComment(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.comments[id]; !ok {
		return fmt.Errorf("comment %d: %w", id, ErrNotFound)
	}
	delete(m.comments, id)
	return nil
}

// CreateUser registers a user. The password must already be hashed.
func (m *Memory) CreateUser(_ context.Context, user User) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Username == user.Username {
			return User{}, ErrUserExists
		}
	}

	user.ID = m.allocID("users")
	m.users[user.ID] = user
	return user, nil
}

// GetUser returns a user by ID.
func (m *Memory) GetUser(_ context.Context, id int64) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return User{}, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return user, nil
}

// GetUserByUsername returns a user by exact username.
func (m *Memory) GetUserByUsername(_ context.Context, username string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Username == username {
			return user, nil
		}
	}
	return User{}, fmt.Errorf("user %s: %w", username, ErrNotFound)
}

// checkRefs mirrors the foreign keys of the SQL schema. Callers hold m.mu.
func (m *Memory) checkRefs(userID, trackID int64) error {
	if _, ok := m.users[userID]; !ok {
		return fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	if _, ok := m.tracks[trackID]; !ok {
		return fmt.Errorf("track %d: %w", trackID, ErrNotFound)
	}
	return nil
}

func (m *Memory) resolveTrack(row trackRow) Track {
	return Track{
		ID:          row.ID,
		Title:       row.Title,
		Genre:       row.Genre,
		Description: row.Description,
		URL:         row.URL,
		PostedBy:    m.users[row.PostedByID],
	}
}

func (m *Memory) resolveComment(row commentRow) Comment {
	return Comment{
		ID:        row.ID,
		Track:     m.resolveTrack(m.tracks[row.TrackID]),
		Comment:   row.Comment,
		PostedBy:  m.users[row.PostedByID],
		MusicTime: row.MusicTime,
	}
}
