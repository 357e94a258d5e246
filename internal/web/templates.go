package web

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/erazemk/recyclehub/internal/auth"
	"github.com/erazemk/recyclehub/internal/listing"
	"github.com/erazemk/recyclehub/internal/model"
	"github.com/erazemk/recyclehub/internal/service"
	webembed "github.com/erazemk/recyclehub/web"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
}

var sortLabels = map[string]string{
	listing.SortNewest:   "Newest first",
	listing.SortOldest:   "Oldest first",
	listing.SortNameAsc:  "Name A-Z",
	listing.SortNameDesc: "Name Z-A",
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"sortLabel": func(key string) string {
			if l, ok := sortLabels[key]; ok {
				return l
			}
			return key
		},
		"statusName": func(status string) string {
			switch status {
			case model.ItemStatusAvailable:
				return "Available"
			case model.ItemStatusRecycled:
				return "Recycled"
			default:
				return status
			}
		},
		"date": func(t time.Time) string {
			return t.Local().Format("2 Jan 2006")
		},
	}
}

// pages are rendered inside layout.html.
var pages = []string{"landing.html", "login.html", "register.html", "dashboard.html", "vendor.html"}

// LoadTemplates parses every page together with the shared layout.
func LoadTemplates() (*Templates, error) {
	tfs := webembed.TemplatesFS()
	ts := &Templates{templates: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		tmpl, err := template.New(page).Funcs(FuncMap()).ParseFS(tfs, "layout.html", page)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}
		ts.templates[page] = tmpl
	}
	return ts, nil
}

// Render executes a page into a buffer first so a template failure turns
// into a clean 500 instead of a half-written page.
func (ts *Templates) Render(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		slog.Error("unknown template", "template", name)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title   string
	User    *auth.Claims
	Error   string
	Success string
}

// Server holds all dependencies for page handlers.
type Server struct {
	Items     *service.ItemService
	Accounts  *service.AccountService
	Templates *Templates
	// MaxUploadBytes bounds the image part of the add-item form.
	MaxUploadBytes int64
}
