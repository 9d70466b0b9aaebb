package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"trackshare/internal/identity"
	"trackshare/internal/store"
)

func newService(t *testing.T) (Service, *identity.TokenManager) {
	t.Helper()
	tokens := identity.NewTokenManager("0123456789abcdef", time.Hour)
	return New(store.NewMemory(), tokens), tokens
}

func TestSignup(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{name: "valid", username: "  ada ", password: "secret"},
		{name: "duplicate", username: "ada", password: "other", wantErr: store.ErrUserExists},
		{name: "empty username", username: "   ", password: "secret", wantErr: ErrInvalidSignup},
		{name: "empty password", username: "grace", password: "", wantErr: ErrInvalidSignup},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			user, err := svc.Signup(ctx, tc.username, tc.password, "ada@example.com")
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Signup: %v", err)
			}
			if user.ID == 0 || user.Username != "ada" {
				t.Fatalf("unexpected user %+v", user)
			}
			if user.PasswordHash == tc.password {
				t.Fatalf("password must be hashed")
			}
		})
	}
}

func TestLogin(t *testing.T) {
	svc, tokens := newService(t)
	ctx := context.Background()

	ada, err := svc.Signup(ctx, "ada", "secret", "")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}

	token, err := svc.Login(ctx, "ada", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	userID, err := tokens.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if userID != ada.ID {
		t.Fatalf("token subject %d, want %d", userID, ada.ID)
	}

	if _, err := svc.Login(ctx, "ada", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody", "secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestMe(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	if _, err := svc.Me(ctx, identity.Anonymous()); !errors.Is(err, identity.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	ada := store.User{ID: 3, Username: "ada"}
	got, err := svc.Me(ctx, identity.Authenticated(ada))
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if got != ada {
		t.Fatalf("expected %+v, got %+v", ada, got)
	}
}

func TestLookup(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	ada, err := svc.Signup(ctx, "ada", "secret", "")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	got, err := svc.Lookup(ctx, ada.ID)
	if err != nil || got.Username != "ada" {
		t.Fatalf("Lookup: %+v, %v", got, err)
	}
	if _, err := svc.Lookup(ctx, 99); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
