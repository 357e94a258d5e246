package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/recyclehub/internal/listing"
	"github.com/erazemk/recyclehub/internal/model"
	"github.com/erazemk/recyclehub/internal/service"
	"github.com/erazemk/recyclehub/internal/upload"
)

// formOverhead is room for the text fields of the add-item form.
const formOverhead = 64 << 10

type dashboardPage struct {
	PageData
	Items      []model.Item
	Total      int
	Query      listing.Query
	Form       model.ItemFields
	Categories []string
	Cities     []string
	SortKeys   []string
}

// queryFromRequest reads the search and sort controls of a listing page.
func queryFromRequest(r *http.Request) listing.Query {
	q := r.URL.Query()
	sortKey, err := listing.ParseSort(q.Get("sort"))
	if err != nil {
		sortKey = listing.SortNewest
	}
	return listing.Query{
		Text: q.Get("q"),
		City: q.Get("city"),
		Sort: sortKey,
	}
}

// Dashboard handles GET /dashboard: the signed-in user's own items.
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	s.renderDashboard(w, r, http.StatusOK, PageData{Success: popFlash(w, r)}, model.ItemFields{})
}

func (s *Server) renderDashboard(w http.ResponseWriter, r *http.Request, status int, data PageData, form model.ItemFields) {
	claims := GetWebClaims(r.Context())
	data.Title = "My items"
	data.User = claims

	all, err := s.Items.List(r.Context())
	if err != nil {
		slog.Error("failed to list items for dashboard", "error", err)
		data.Error = "Could not load your items."
	}

	var own []model.Item
	for _, it := range all {
		if it.OwnerID == claims.UserID {
			own = append(own, it)
		}
	}

	q := queryFromRequest(r)
	q.City = ""
	s.Templates.Render(w, status, "dashboard.html", &dashboardPage{
		PageData:   data,
		Items:      listing.Apply(own, q),
		Total:      len(own),
		Query:      q,
		Form:       form,
		Categories: model.Categories,
		Cities:     model.Cities,
		SortKeys:   listing.SortKeys,
	})
}

// ItemCreateSubmit handles POST /dashboard/items.
func (s *Server) ItemCreateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	maxBytes := s.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = upload.DefaultMaxBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+formOverhead)
	if err := r.ParseMultipartForm(maxBytes + formOverhead); err != nil {
		s.renderDashboard(w, r, http.StatusBadRequest, PageData{Error: "The image is too large or the form is invalid."}, model.ItemFields{})
		return
	}
	defer r.MultipartForm.RemoveAll()

	fields := model.ItemFields{
		Name:          r.FormValue("name"),
		Description:   r.FormValue("description"),
		Category:      r.FormValue("category"),
		City:          r.FormValue("city"),
		ContactNumber: r.FormValue("contact_number"),
	}

	var image *upload.File
	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		image = &upload.File{Name: header.Filename, Body: file}
	case errors.Is(err, http.ErrMissingFile):
	default:
		slog.Warn("unreadable image part", "user", claims.UserID, "error", err)
		s.renderDashboard(w, r, http.StatusBadRequest, PageData{Error: "The image could not be read."}, fields)
		return
	}

	item, err := s.Items.Create(r.Context(), claims.Actor(), fields, image)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			s.renderDashboard(w, r, http.StatusBadRequest, PageData{Error: verr.Error()}, fields)
			return
		}
		slog.Error("failed to create item", "user", claims.UserID, "error", err)
		s.renderDashboard(w, r, http.StatusInternalServerError, PageData{Error: "Could not add the item."}, fields)
		return
	}

	slog.Info("item created", "user", claims.UserID, "item", item.ID, "status", item.Status)
	setFlash(w, "Item added.")
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// ItemRecycleSubmit handles POST /dashboard/items/{id}/recycle.
func (s *Server) ItemRecycleSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id := r.PathValue("id")

	item, err := s.Items.SetStatus(r.Context(), claims.Actor(), id, model.ItemStatusRecycled)
	if err != nil {
		s.mutationFailed(w, r, "recycle", id, err)
		return
	}

	slog.Info("item status updated", "user", claims.UserID, "item", id, "status", item.Status)
	setFlash(w, "Marked as recycled.")
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// ItemDeleteSubmit handles POST /dashboard/items/{id}/delete.
func (s *Server) ItemDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id := r.PathValue("id")

	if err := s.Items.Delete(r.Context(), claims.Actor(), id); err != nil {
		s.mutationFailed(w, r, "delete", id, err)
		return
	}

	slog.Info("item deleted", "user", claims.UserID, "item", id)
	setFlash(w, "Item deleted.")
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) mutationFailed(w http.ResponseWriter, r *http.Request, action, id string, err error) {
	var (
		verr *service.ValidationError
		nerr *service.NotFoundError
		ferr *service.ForbiddenError
	)
	switch {
	case errors.As(err, &verr):
		s.renderDashboard(w, r, http.StatusBadRequest, PageData{Error: verr.Error()}, model.ItemFields{})
	case errors.As(err, &nerr):
		s.renderDashboard(w, r, http.StatusNotFound, PageData{Error: "That item no longer exists."}, model.ItemFields{})
	case errors.As(err, &ferr):
		s.renderDashboard(w, r, http.StatusForbidden, PageData{Error: ferr.Error()}, model.ItemFields{})
	default:
		slog.Error("item "+action+" failed", "item", id, "error", err)
		s.renderDashboard(w, r, http.StatusInternalServerError, PageData{Error: "Something went wrong. Please try again."}, model.ItemFields{})
	}
}
