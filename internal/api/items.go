package api

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"github.com/erazemk/recyclehub/internal/model"
	"github.com/erazemk/recyclehub/internal/service"
	"github.com/erazemk/recyclehub/internal/upload"
)

// formOverhead is room for the text fields of a multipart create request.
const formOverhead = 64 << 10

// ItemsHandler handles item endpoints.
type ItemsHandler struct {
	Items          *service.ItemService
	MaxUploadBytes int64
}

type statusRequest struct {
	Status string `json:"status"`
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Items.List(r.Context())
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.Items.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Create handles POST /api/items. The body is either a multipart form with
// an optional image file part or a JSON object.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var (
		fields model.ItemFields
		image  *upload.File
	)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		maxBytes := h.MaxUploadBytes
		if maxBytes <= 0 {
			maxBytes = upload.DefaultMaxBytes
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+formOverhead)
		if err := r.ParseMultipartForm(maxBytes + formOverhead); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				jsonError(w, http.StatusBadRequest, upload.ErrTooLarge.Error())
				return
			}
			jsonError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		defer r.MultipartForm.RemoveAll()

		fields = model.ItemFields{
			Name:          r.FormValue("name"),
			Description:   r.FormValue("description"),
			Category:      r.FormValue("category"),
			City:          r.FormValue("city"),
			ContactNumber: r.FormValue("contact_number"),
		}

		file, header, err := r.FormFile("image")
		switch {
		case err == nil:
			defer file.Close()
			image = &upload.File{Name: header.Filename, Body: file}
		case errors.Is(err, http.ErrMissingFile):
		default:
			jsonError(w, http.StatusBadRequest, "invalid image part")
			return
		}
	} else if err := decodeJSON(r, &fields); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	actor := GetClaims(r.Context()).Actor()
	item, err := h.Items.Create(r.Context(), actor, fields, image)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	slog.Info("item created", "item", item.ID, "owner", item.OwnerID)
	jsonResponse(w, http.StatusCreated, item)
}

// SetStatus handles PATCH /api/items/{id}.
func (h *ItemsHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	actor := GetClaims(r.Context()).Actor()
	item, err := h.Items.SetStatus(r.Context(), actor, r.PathValue("id"), req.Status)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	actor := GetClaims(r.Context()).Actor()
	if err := h.Items.Delete(r.Context(), actor, id); err != nil {
		serviceError(w, r, err)
		return
	}

	slog.Info("item deleted", "item", id, "user", actor.UserID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}
