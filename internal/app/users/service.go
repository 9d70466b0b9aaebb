package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"trackshare/internal/identity"
	"trackshare/internal/store"
)

var (
	// ErrInvalidCredentials indicates a login failure.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidSignup indicates missing signup fields.
	ErrInvalidSignup = errors.New("username and password are required")

	dummyPasswordHash = []byte("$2a$10$CwTycUXWue0Thq9StjUM0uJ8n4VWeNseyX2fA9DE.D7su7J6iYGTC")
)

// Store describes the persistence operations required by the user service.
type Store interface {
	CreateUser(ctx context.Context, user store.User) (store.User, error)
	GetUser(ctx context.Context, id int64) (store.User, error)
	GetUserByUsername(ctx context.Context, username string) (store.User, error)
}

// TokenIssuer signs access tokens for a user.
type TokenIssuer interface {
	Issue(user store.User) (string, error)
}

// Service exposes account workflows.
type Service interface {
	Signup(ctx context.Context, username, password, email string) (store.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	Me(ctx context.Context, caller identity.Identity) (store.User, error)
	Lookup(ctx context.Context, id int64) (store.User, error)
}

type service struct {
	store  Store
	tokens TokenIssuer
}

// New wires a Service backed by the provided Store and token issuer.
func New(st Store, tokens TokenIssuer) Service {
	return &service{store: st, tokens: tokens}
}

func (s *service) Signup(ctx context.Context, username, password, email string) (store.User, error) {
	if err := ctx.Err(); err != nil {
		return store.User{}, err
	}

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return store.User{}, ErrInvalidSignup
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return store.User{}, fmt.Errorf("hash password: %w", err)
	}

	return s.store.CreateUser(ctx, store.User{
		Username:     username,
		Email:        strings.TrimSpace(email),
		PasswordHash: string(hash),
	})
}

func (s *service) Login(ctx context.Context, username, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	user, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(password))
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.tokens.Issue(user)
}

func (s *service) Me(ctx context.Context, caller identity.Identity) (store.User, error) {
	if err := ctx.Err(); err != nil {
		return store.User{}, err
	}
	user, ok := caller.User()
	if !ok {
		return store.User{}, fmt.Errorf("%w: not logged in", identity.ErrUnauthenticated)
	}
	return user, nil
}

func (s *service) Lookup(ctx context.Context, id int64) (store.User, error) {
	if err := ctx.Err(); err != nil {
		return store.User{}, err
	}
	return s.store.GetUser(ctx, id)
}
