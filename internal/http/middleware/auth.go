package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"trackshare/internal/identity"
	"trackshare/internal/logging"
	"trackshare/internal/store"
)

// TokenVerifier resolves a bearer token to the user ID it was issued for.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// UserLookup loads the user named by a verified token.
type UserLookup interface {
	Lookup(ctx context.Context, id int64) (store.User, error)
}

// Authenticate attaches the caller identity to each request. Requests without
// an Authorization header continue as anonymous; a header carrying an invalid
// token, or one naming a user that no longer exists, is rejected with 401.
func Authenticate(tokens TokenVerifier, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := strings.TrimSpace(r.Header.Get("Authorization"))
			if header == "" {
				next.ServeHTTP(w, r.WithContext(identity.WithIdentity(r.Context(), identity.Anonymous())))
				return
			}

			token, ok := bearerToken(header)
			if !ok {
				unauthorized(w, "authorization header must use the Bearer scheme")
				return
			}

			userID, err := tokens.Verify(token)
			if err != nil {
				logging.FromContext(r.Context()).Debug().Err(err).Msg("rejected access token")
				unauthorized(w, "invalid or expired token")
				return
			}

			user, err := users.Lookup(r.Context(), userID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					unauthorized(w, "invalid or expired token")
					return
				}
				logging.FromContext(r.Context()).Error().Err(err).Int64("user_id", userID).Msg("load token user")
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			ctx := identity.WithIdentity(r.Context(), identity.Authenticated(user))
			ctx = logging.WithUserID(ctx, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="trackshare"`)
	writeError(w, http.StatusUnauthorized, msg)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
