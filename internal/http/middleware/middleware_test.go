package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trackshare/internal/identity"
	"trackshare/internal/store"
)

type stubLookup struct {
	users map[int64]store.User
	err   error
}

func (s stubLookup) Lookup(_ context.Context, id int64) (store.User, error) {
	if s.err != nil {
		return store.User{}, s.err
	}
	user, ok := s.users[id]
	if !ok {
		return store.User{}, store.ErrNotFound
	}
	return user, nil
}

// echoIdentity writes the username of the caller, or "anonymous".
func echoIdentity() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := identity.FromContext(r.Context()).User()
		if !ok {
			_, _ = w.Write([]byte("anonymous"))
			return
		}
		_, _ = w.Write([]byte(user.Username))
	})
}

func TestAuthenticate(t *testing.T) {
	tokens := identity.NewTokenManager("0123456789abcdef", time.Hour)
	ada := store.User{ID: 1, Username: "ada"}
	ghost := store.User{ID: 2, Username: "ghost"}

	adaToken, err := tokens.Issue(ada)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	ghostToken, err := tokens.Issue(ghost)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	handler := Authenticate(tokens, stubLookup{users: map[int64]store.User{1: ada}})(echoIdentity())

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "no header", wantStatus: http.StatusOK, wantBody: "anonymous"},
		{name: "valid token", header: "Bearer " + adaToken, wantStatus: http.StatusOK, wantBody: "ada"},
		{name: "lowercase scheme", header: "bearer " + adaToken, wantStatus: http.StatusOK, wantBody: "ada"},
		{name: "garbage token", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "deleted user", header: "Bearer " + ghostToken, wantStatus: http.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/tracks", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d (%s)", tc.wantStatus, rr.Code, rr.Body.String())
			}
			if tc.wantBody != "" && rr.Body.String() != tc.wantBody {
				t.Fatalf("expected body %q, got %q", tc.wantBody, rr.Body.String())
			}
		})
	}
}

func TestAuthenticateLookupFailure(t *testing.T) {
	tokens := identity.NewTokenManager("0123456789abcdef", time.Hour)
	token, err := tokens.Issue(store.User{ID: 1, Username: "ada"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	handler := Authenticate(tokens, stubLookup{err: errors.New("db down")})(echoIdentity())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := CORS([]string{"https://app.example"})(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://APP.example")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Header().Get("Access-Control-Allow-Origin") != "https://APP.example" {
		t.Fatalf("expected allowed origin echoed, got %q", rr.Header().Get("Access-Control-Allow-Origin"))
	}
	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected request to reach handler, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("unexpected CORS header for disallowed origin")
	}

	req = httptest.NewRequest(http.MethodOptions, "/", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected preflight 204, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	CORS([]string{"*"})(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("expected wildcard origin")
	}
}

func TestRateLimit(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	handler := RateLimit(0.001, 2)(next)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, rr.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}

	disabled := RateLimit(0, 0)(next)
	for i := 0; i < 5; i++ {
		rr := httptest.NewRecorder()
		disabled.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("disabled limiter rejected request %d", i)
		}
	}
}

func TestRequestLoggingAndRecovery(t *testing.T) {
	panicky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	handler := RequestLogging()(Recovery()(panicky))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if rr.Header().Get("X-Request-ID") != "req-42" {
		t.Fatalf("expected request id to be echoed")
	}

	rr = httptest.NewRecorder()
	RequestLogging()(http.NotFoundHandler()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected generated request id")
	}
}
