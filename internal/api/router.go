// Package api serves the JSON listing API under /api/.
package api

import (
	"net/http"

	"github.com/erazemk/recyclehub/internal/service"
)

// Config carries the router settings that are not services.
type Config struct {
	// MaxUploadBytes bounds a multipart create request's image part.
	MaxUploadBytes int64
	// RateLimiter throttles the auth endpoints per client IP when set.
	RateLimiter *RateLimiter
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(items *service.ItemService, accounts *service.AccountService, cfg Config) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{Accounts: accounts}
	itemsHandler := &ItemsHandler{Items: items, MaxUploadBytes: cfg.MaxUploadBytes}

	authMW := AuthMiddleware(accounts)
	throttle := func(h http.Handler) http.Handler { return h }
	if cfg.RateLimiter != nil {
		throttle = cfg.RateLimiter.Middleware
	}

	// Public.
	mux.Handle("POST /api/auth/register", throttle(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /api/auth/login", throttle(http.HandlerFunc(authHandler.Login)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.HandleFunc("GET /api/items/{id}", itemsHandler.Get)

	// Authenticated; ownership is checked by the item service.
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("PATCH /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.SetStatus)))
	mux.Handle("DELETE /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Delete)))

	return CORSMiddleware(mux)
}
