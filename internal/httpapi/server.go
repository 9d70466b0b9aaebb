package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"trackshare/internal/app/tracks"
	"trackshare/internal/app/users"
	"trackshare/internal/identity"
	"trackshare/internal/logging"
	"trackshare/internal/store"
)

// UserService captures the account operations needed by the HTTP handlers.
type UserService interface {
	Signup(ctx context.Context, username, password, email string) (store.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	Me(ctx context.Context, caller identity.Identity) (store.User, error)
}

// TrackService exposes the track, like and comment queries and mutations.
type TrackService interface {
	ListTracks(ctx context.Context, search string) ([]store.Track, error)
	ListLikes(ctx context.Context) ([]store.Like, error)
	ListComments(ctx context.Context) ([]store.Comment, error)
	CreateTrack(ctx context.Context, caller identity.Identity, in tracks.TrackInput) (store.Track, error)
	UpdateTrack(ctx context.Context, caller identity.Identity, trackID int64, in tracks.TrackInput) (store.Track, error)
	DeleteTrack(ctx context.Context, caller identity.Identity, trackID int64) (int64, error)
	CreateLike(ctx context.Context, caller identity.Identity, trackID int64) (tracks.LikeResult, error)
	CreateComment(ctx context.Context, caller identity.Identity, trackID int64, in tracks.CommentInput) (store.Comment, error)
	DeleteComment(ctx context.Context, caller identity.Identity, commentID int64) (int64, error)
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	users  UserService
	tracks TrackService
}

// New configures a Server with the given services.
func New(users UserService, tracks TrackService) *Server {
	return &Server{users: users, tracks: tracks}
}

// Routes exposes the HTTP handlers. Callers are expected to attach the
// request identity (see middleware.Authenticate) before these handlers run;
// without it every request is treated as anonymous.
func (s *Server) Routes() http.Handler {
	notFound := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	})
	methodNotAllowed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})

	r := mux.NewRouter()
	r.NotFoundHandler = notFound
	r.MethodNotAllowedHandler = methodNotAllowed

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	// Subrouters do not inherit the parent's fallback handlers.
	api := r.PathPrefix("/api/v1").Subrouter()
	api.NotFoundHandler = notFound
	api.MethodNotAllowedHandler = methodNotAllowed

	api.HandleFunc("/auth/signup", s.handleSignup).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/users/me", s.handleMe).Methods(http.MethodGet)

	api.HandleFunc("/tracks", s.handleListTracks).Methods(http.MethodGet)
	api.HandleFunc("/tracks", s.handleCreateTrack).Methods(http.MethodPost)
	api.HandleFunc("/tracks/{id}", s.handleUpdateTrack).Methods(http.MethodPut)
	api.HandleFunc("/tracks/{id}", s.handleDeleteTrack).Methods(http.MethodDelete)
	api.HandleFunc("/tracks/{id}/likes", s.handleCreateLike).Methods(http.MethodPost)
	api.HandleFunc("/tracks/{id}/comments", s.handleCreateComment).Methods(http.MethodPost)

	api.HandleFunc("/likes", s.handleListLikes).Methods(http.MethodGet)
	api.HandleFunc("/comments", s.handleListComments).Methods(http.MethodGet)
	api.HandleFunc("/comments/{id}", s.handleDeleteComment).Methods(http.MethodDelete)

	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps service errors onto HTTP status codes. Unexpected errors are
// logged and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logging.FromContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeJSON(w, status, errorResponse{Error: "internal server error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, identity.ErrUnauthenticated),
		errors.Is(err, users.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, tracks.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, users.ErrInvalidSignup):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}
