// Package web serves the server-rendered pages.
package web

import (
	"net/http"
	"strings"

	"github.com/erazemk/recyclehub/internal/model"
	"github.com/erazemk/recyclehub/internal/service"
	"github.com/erazemk/recyclehub/internal/upload"
	webembed "github.com/erazemk/recyclehub/web"
)

// Config carries the page router settings that are not services.
type Config struct {
	MaxUploadBytes int64
	// UploadDir is served read-only under /uploads/ when set.
	UploadDir string
	// Throttle wraps the login and registration posts when set.
	Throttle func(http.Handler) http.Handler
}

// NewRouter creates the web page router with all page routes registered.
func NewRouter(items *service.ItemService, accounts *service.AccountService, cfg Config) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		Items:          items,
		Accounts:       accounts,
		Templates:      templates,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}

	throttle := cfg.Throttle
	if throttle == nil {
		throttle = func(h http.Handler) http.Handler { return h }
	}

	mux := http.NewServeMux()
	cookieAuth := CookieAuthMiddleware(accounts)
	asUser := func(h http.HandlerFunc) http.Handler { return cookieAuth(RequireRole(model.RoleUser)(h)) }
	asVendor := func(h http.HandlerFunc) http.Handler { return cookieAuth(RequireRole(model.RoleVendor)(h)) }

	// Static assets and uploaded images.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))
	if cfg.UploadDir != "" {
		mux.Handle("GET "+upload.URLPrefix, http.StripPrefix(upload.URLPrefix, noListing(http.FileServer(http.Dir(cfg.UploadDir)))))
	}

	// Public routes.
	mux.HandleFunc("GET /{$}", s.Landing)
	mux.HandleFunc("GET /login/{role}", s.LoginPage)
	mux.Handle("POST /login/{role}", throttle(http.HandlerFunc(s.LoginSubmit)))
	mux.HandleFunc("GET /register", s.RegisterPage)
	mux.Handle("POST /register", throttle(http.HandlerFunc(s.RegisterSubmit)))
	mux.HandleFunc("POST /logout", s.Logout)

	// User pages.
	mux.Handle("GET /dashboard", asUser(s.Dashboard))
	mux.Handle("POST /dashboard/items", asUser(s.ItemCreateSubmit))
	mux.Handle("POST /dashboard/items/{id}/recycle", asUser(s.ItemRecycleSubmit))
	mux.Handle("POST /dashboard/items/{id}/delete", asUser(s.ItemDeleteSubmit))

	// Vendor pages.
	mux.Handle("GET /vendor", asVendor(s.VendorPage))

	return mux, nil
}

// noListing hides directory indexes.
func noListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		next.ServeHTTP(w, r)
	})
}
