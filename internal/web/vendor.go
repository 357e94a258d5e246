package web

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/recyclehub/internal/listing"
	"github.com/erazemk/recyclehub/internal/model"
)

type vendorPage struct {
	PageData
	Items    []model.Item
	Total    int
	Query    listing.Query
	Cities   []string
	SortKeys []string
}

// VendorPage handles GET /vendor: every listed item with contact details.
func (s *Server) VendorPage(w http.ResponseWriter, r *http.Request) {
	data := PageData{Title: "Available items", User: GetWebClaims(r.Context()), Success: popFlash(w, r)}

	items, err := s.Items.List(r.Context())
	if err != nil {
		slog.Error("failed to list items for vendor", "error", err)
		data.Error = "Could not load items."
	}

	q := queryFromRequest(r)
	s.Templates.Render(w, http.StatusOK, "vendor.html", &vendorPage{
		PageData: data,
		Items:    listing.Apply(items, q),
		Total:    len(items),
		Query:    q,
		Cities:   model.Cities,
		SortKeys: listing.SortKeys,
	})
}
