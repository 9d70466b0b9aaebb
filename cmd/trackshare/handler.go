package main

import (
	"net/http"

	"trackshare/internal/app/tracks"
	"trackshare/internal/app/users"
	"trackshare/internal/config"
	"trackshare/internal/http/middleware"
	"trackshare/internal/httpapi"
	"trackshare/internal/identity"
)

func newHTTPHandler(cfg *config.Config, repo repository) http.Handler {
	tokens := identity.NewTokenManager(cfg.Security.JWTSecret, cfg.Security.TokenTTL)

	userSvc := users.New(repo, tokens)
	trackSvc := tracks.New(repo)

	var handler http.Handler = httpapi.New(userSvc, trackSvc).Routes()
	handler = middleware.Authenticate(tokens, userSvc)(handler)
	handler = middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst)(handler)
	handler = middleware.CORS(cfg.CORS.AllowedOrigins)(handler)
	handler = middleware.Recovery()(handler)
	handler = middleware.RequestLogging()(handler)
	return handler
}
