package tracks

import (
	"context"
	"errors"
	"fmt"

	"trackshare/internal/identity"
	"trackshare/internal/store"
)

// ErrPermissionDenied is returned when the caller does not own the track.
var ErrPermissionDenied = errors.New("permission denied")

// Store defines persistence operations required for track, like and comment
// workflows.
type Store interface {
	GetTrack(ctx context.Context, id int64) (store.Track, error)
	ListTracks(ctx context.Context, filter store.TrackFilter) ([]store.Track, error)
	CreateTrack(ctx context.Context, track store.Track) (store.Track, error)
	SaveTrack(ctx context.Context, track store.Track) (store.Track, error)
	DeleteTrack(ctx context.Context, id int64) error

	ListLikes(ctx context.Context) ([]store.Like, error)
	CreateLike(ctx context.Context, user store.User, track store.Track) (store.Like, error)

	GetComment(ctx context.Context, id int64) (store.Comment, error)
	ListComments(ctx context.Context) ([]store.Comment, error)
	CreateComment(ctx context.Context, comment store.Comment) (store.Comment, error)
	DeleteComment(ctx context.Context, id int64) error
}

// TrackInput carries the editable fields of a track. Values are stored as given.
type TrackInput struct {
	Title       string
	Genre       string
	Description string
	URL         string
}

// CommentInput carries a comment body and the playback offset it refers to.
type CommentInput struct {
	Comment   string
	MusicTime int
}

// LikeResult is returned by CreateLike: the caller and the liked track.
type LikeResult struct {
	User  store.User  `json:"user"`
	Track store.Track `json:"track"`
}

// Service describes the queries and mutations of the track API.
type Service interface {
	ListTracks(ctx context.Context, search string) ([]store.Track, error)
	ListLikes(ctx context.Context) ([]store.Like, error)
	ListComments(ctx context.Context) ([]store.Comment, error)

	CreateTrack(ctx context.Context, caller identity.Identity, in TrackInput) (store.Track, error)
	UpdateTrack(ctx context.Context, caller identity.Identity, trackID int64, in TrackInput) (store.Track, error)
	DeleteTrack(ctx context.Context, caller identity.Identity, trackID int64) (int64, error)

	CreateLike(ctx context.Context, caller identity.Identity, trackID int64) (LikeResult, error)

	CreateComment(ctx context.Context, caller identity.Identity, trackID int64, in CommentInput) (store.Comment, error)
	DeleteComment(ctx context.Context, caller identity.Identity, commentID int64) (int64, error)
}

type service struct {
	store Store
}

// New constructs a track Service backed by the given store.
func New(st Store) Service {
	return &service{store: st}
}

func (s *service) ListTracks(ctx context.Context, search string) ([]store.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListTracks(ctx, store.TrackFilter{Search: search})
}

func (s *service) ListLikes(ctx context.Context) ([]store.Like, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListLikes(ctx)
}

func (s *service) ListComments(ctx context.Context) ([]store.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListComments(ctx)
}

func (s *service) CreateTrack(ctx context.Context, caller identity.Identity, in TrackInput) (store.Track, error) {
	if err := ctx.Err(); err != nil {
		return store.Track{}, err
	}

	user, ok := caller.User()
	if !ok {
		return store.Track{}, fmt.Errorf("%w: log in to add a track", identity.ErrUnauthenticated)
	}

	return s.store.CreateTrack(ctx, store.Track{
		Title:       in.Title,
		Genre:       in.Genre,
		Description: in.Description,
		URL:         in.URL,
		PostedBy:    user,
	})
}

func (s *service) UpdateTrack(ctx context.Context, caller identity.Identity, trackID int64, in TrackInput) (store.Track, error) {
	if err := ctx.Err(); err != nil {
		return store.Track{}, err
	}

	track, err := s.store.GetTrack(ctx, trackID)
	if err != nil {
		return store.Track{}, err
	}
	if !caller.Owns(track.PostedBy) {
		return store.Track{}, fmt.Errorf("%w: not permitted to update track", ErrPermissionDenied)
	}

	track.Title = in.Title
	track.Genre = in.Genre
	track.Description = in.Description
	track.URL = in.URL

	return s.store.SaveTrack(ctx, track)
}

func (s *service) DeleteTrack(ctx context.Context, caller identity.Identity, trackID int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	track, err := s.store.GetTrack(ctx, trackID)
	if err != nil {
		return 0, err
	}
	if !caller.Owns(track.PostedBy) {
		return 0, fmt.Errorf("%w: not permitted to delete this track", ErrPermissionDenied)
	}

	if err := s.store.DeleteTrack(ctx, trackID); err != nil {
		return 0, err
	}
	return trackID, nil
}

func (s *service) CreateLike(ctx context.Context, caller identity.Identity, trackID int64) (LikeResult, error) {
	if err := ctx.Err(); err != nil {
		return LikeResult{}, err
	}

	user, ok := caller.User()
	if !ok {
		return LikeResult{}, fmt.Errorf("%w: log in to like tracks", identity.ErrUnauthenticated)
	}

	track, err := s.store.GetTrack(ctx, trackID)
	if err != nil {
		return LikeResult{}, err
	}

	if _, err := s.store.CreateLike(ctx, user, track); err != nil {
		return LikeResult{}, err
	}
	return LikeResult{User: user, Track: track}, nil
}

func (s *service) CreateComment(ctx context.Context, caller identity.Identity, trackID int64, in CommentInput) (store.Comment, error) {
	if err := ctx.Err(); err != nil {
		return store.Comment{}, err
	}

	user, ok := caller.User()
	if !ok {
		return store.Comment{}, fmt.Errorf("%w: log in to add a comment", identity.ErrUnauthenticated)
	}

	track, err := s.store.GetTrack(ctx, trackID)
	if err != nil {
		return store.Comment{}, err
	}

	return s.store.CreateComment(ctx, store.Comment{
		Track:     track,
		Comment:   in.Comment,
		PostedBy:  user,
		MusicTime: in.MusicTime,
	})
}

// DeleteComment removes any comment for any caller, anonymous included.
func (s *service) DeleteComment(ctx context.Context, _ identity.Identity, commentID int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if _, err := s.store.GetComment(ctx, commentID); err != nil {
		return 0, err
	}
	if err := s.store.DeleteComment(ctx, commentID); err != nil {
		return 0, err
	}
	return commentID, nil
}
