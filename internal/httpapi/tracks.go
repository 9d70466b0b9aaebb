package httpapi

import (
	"math"
	"net/http"
	"strings"

	"trackshare/internal/app/tracks"
	"trackshare/internal/identity"
	"trackshare/internal/store"
)

type trackRequest struct {
	Title       *string `json:"title"`
	Genre       *string `json:"genre"`
	Description *string `json:"description"`
	URL         *string `json:"url"`
}

// input converts the request, reporting the names of any missing fields.
func (req trackRequest) input() (tracks.TrackInput, []string) {
	var missing []string
	field := func(name string, v *string) string {
		if v == nil {
			missing = append(missing, name)
			return ""
		}
		return *v
	}
	in := tracks.TrackInput{
		Title:       field("title", req.Title),
		Genre:       field("genre", req.Genre),
		Description: field("description", req.Description),
		URL:         field("url", req.URL),
	}
	return in, missing
}

type commentRequest struct {
	Comment   string `json:"comment"`
	MusicTime *int   `json:"musicTime"`
}

type deleteTrackResponse struct {
	TrackID int64 `json:"trackId"`
}

type deleteCommentResponse struct {
	CommentID int64 `json:"commentId"`
}

func (s *Server) handleListTracks(w http.ResponseWriter, r *http.Request) {
	list, err := s.tracks.ListTracks(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []store.Track{}
	}
	writeJSON(w, http.StatusOK, struct {
		Tracks []store.Track `json:"tracks"`
	}{Tracks: list})
}

func (s *Server) handleCreateTrack(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	in, _ := req.input()
	track, err := s.tracks.CreateTrack(r.Context(), identity.FromContext(r.Context()), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, track)
}

func (s *Server) handleUpdateTrack(w http.ResponseWriter, r *http.Request) {
	trackID, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid track id"})
		return
	}

	var req trackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}
	in, missing := req.input()
	if len(missing) > 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing fields: " + strings.Join(missing, ", ")})
		return
	}

	track, err := s.tracks.UpdateTrack(r.Context(), identity.FromContext(r.Context()), trackID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, track)
}

func (s *Server) handleDeleteTrack(w http.ResponseWriter, r *http.Request) {
	trackID, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid track id"})
		return
	}

	deleted, err := s.tracks.DeleteTrack(r.Context(), identity.FromContext(r.Context()), trackID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteTrackResponse{TrackID: deleted})
}

func (s *Server) handleCreateLike(w http.ResponseWriter, r *http.Request) {
	trackID, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid track id"})
		return
	}

	like, err := s.tracks.CreateLike(r.Context(), identity.FromContext(r.Context()), trackID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, like)
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	trackID, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid track id"})
		return
	}

	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}
	if req.MusicTime == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "musicTime is required"})
		return
	}
	if *req.MusicTime > math.MaxInt32 || *req.MusicTime < math.MinInt32 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "musicTime is out of range"})
		return
	}

	comment, err := s.tracks.CreateComment(r.Context(), identity.FromContext(r.Context()), trackID, tracks.CommentInput{
		Comment:   req.Comment,
		MusicTime: *req.MusicTime,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (s *Server) handleListLikes(w http.ResponseWriter, r *http.Request) {
	list, err := s.tracks.ListLikes(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []store.Like{}
	}
	writeJSON(w, http.StatusOK, struct {
		Likes []store.Like `json:"likes"`
	}{Likes: list})
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	list, err := s.tracks.ListComments(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []store.Comment{}
	}
	writeJSON(w, http.StatusOK, struct {
		Comments []store.Comment `json:"comments"`
	}{Comments: list})
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	commentID, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid comment id"})
		return
	}

	deleted, err := s.tracks.DeleteComment(r.Context(), identity.FromContext(r.Context()), commentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteCommentResponse{CommentID: deleted})
}
