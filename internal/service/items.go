// Package service holds the item and account operations shared by the JSON
// API and the web pages.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/erazemk/recyclehub/internal/events"
	"github.com/erazemk/recyclehub/internal/model"
	"github.com/erazemk/recyclehub/internal/store"
	"github.com/erazemk/recyclehub/internal/upload"
)

// ImageStore saves and removes item images.
type ImageStore interface {
	Save(ctx context.Context, f upload.File) (string, error)
	Remove(ctx context.Context, path string) error
}

// ItemService validates item input, enforces ownership and talks to the
// item store. Concurrent status updates on one item are last-write-wins.
type ItemService struct {
	store  store.ItemStore
	images ImageStore
	events events.Publisher
	now    func() time.Time
}

// NewItemService builds the service. images may be nil, in which case
// uploads are rejected; a nil publisher discards events.
func NewItemService(s store.ItemStore, images ImageStore, pub events.Publisher) *ItemService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &ItemService{store: s, images: images, events: pub, now: time.Now}
}

// Create validates fields, stores the optional image and persists a new
// available item owned by the actor.
func (s *ItemService) Create(ctx context.Context, actor model.Actor, fields model.ItemFields, image *upload.File) (*model.Item, error) {
	if err := canList(actor); err != nil {
		return nil, err
	}

	fields = normalize(fields)
	if err := validate(fields); err != nil {
		return nil, err
	}

	if image != nil {
		if s.images == nil {
			return nil, &ValidationError{Field: "image", Message: "image uploads are disabled"}
		}
		path, err := s.images.Save(ctx, *image)
		if err != nil {
			if isUploadRejection(err) {
				return nil, &ValidationError{Field: "image", Message: err.Error()}
			}
			return nil, fmt.Errorf("saving image: %w", err)
		}
		fields.Image = path
	}

	item := &model.Item{
		OwnerID:       actor.UserID,
		Name:          fields.Name,
		Description:   fields.Description,
		Category:      fields.Category,
		City:          fields.City,
		ContactNumber: fields.ContactNumber,
		Image:         fields.Image,
		Status:        model.ItemStatusAvailable,
		CreatedAt:     s.now().UTC().Truncate(time.Millisecond),
	}

	if err := s.store.CreateItem(ctx, item); err != nil {
		if image != nil {
			s.removeImage(ctx, fields.Image)
		}
		return nil, fmt.Errorf("creating item: %w", err)
	}

	s.publish(ctx, events.SubjectItemCreated, actor, item.ID, item)
	return item, nil
}

// List returns all items in store order.
func (s *ItemService) List(ctx context.Context) ([]model.Item, error) {
	items, err := s.store.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}

// Get returns one item.
func (s *ItemService) Get(ctx context.Context, id string) (*model.Item, error) {
	item, err := s.store.GetItem(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// SetStatus moves an item to status. Setting the current status is a no-op;
// recycled items cannot return to available.
func (s *ItemService) SetStatus(ctx context.Context, actor model.Actor, id, status string) (*model.Item, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := canModify(actor, item); err != nil {
		return nil, err
	}

	status = strings.TrimSpace(status)
	if status == "" {
		return nil, required("status")
	}
	if !model.ValidItemStatus(status) {
		return nil, &ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("status must be %q or %q", model.ItemStatusAvailable, model.ItemStatusRecycled),
		}
	}
	if item.Status == status {
		return item, nil
	}
	if item.Status == model.ItemStatusRecycled {
		return nil, &ValidationError{Field: "status", Message: "a recycled item cannot be made available again"}
	}

	updated, err := s.store.UpdateItemStatus(ctx, id, status)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("updating item status: %w", err)
	}

	s.publish(ctx, events.SubjectItemRecycled, actor, id, updated)
	return updated, nil
}

// Delete removes an item. Its image is kept; image paths may be shared by
// records created through the JSON API.
func (s *ItemService) Delete(ctx context.Context, actor model.Actor, id string) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := canModify(actor, item); err != nil {
		return err
	}

	err = s.store.DeleteItem(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{ID: id}
	}
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}

	s.publish(ctx, events.SubjectItemDeleted, actor, id, nil)
	return nil
}

func canList(actor model.Actor) error {
	if actor.Anonymous() {
		return &ForbiddenError{Reason: "sign in to list items"}
	}
	if actor.Role != model.RoleUser {
		return &ForbiddenError{Reason: "only users can list items"}
	}
	return nil
}

// canModify allows the owner, or any user for items created before
// ownership was recorded.
func canModify(actor model.Actor, item *model.Item) error {
	if err := canList(actor); err != nil {
		return err
	}
	if item.OwnerID != "" && item.OwnerID != actor.UserID {
		return &ForbiddenError{Reason: "item belongs to another user"}
	}
	return nil
}

func normalize(f model.ItemFields) model.ItemFields {
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)
	f.Category = model.CanonicalCategory(strings.TrimSpace(f.Category))
	f.City = model.CanonicalCity(strings.TrimSpace(f.City))
	f.ContactNumber = strings.TrimSpace(f.ContactNumber)
	f.Image = strings.TrimSpace(f.Image)
	return f
}

func validate(f model.ItemFields) error {
	checks := []struct {
		field, value string
	}{
		{"name", f.Name},
		{"description", f.Description},
		{"category", f.Category},
		{"city", f.City},
		{"contact_number", f.ContactNumber},
	}
	for _, c := range checks {
		if c.value == "" {
			return required(c.field)
		}
	}
	if strings.HasPrefix(strings.ToLower(f.Image), "data:") {
		return &ValidationError{Field: "image", Message: "image must be an uploaded file path, not inline data"}
	}
	return nil
}

func isUploadRejection(err error) bool {
	return errors.Is(err, upload.ErrUnsupportedType) ||
		errors.Is(err, upload.ErrTooLarge) ||
		errors.Is(err, upload.ErrNotImage)
}

func (s *ItemService) removeImage(ctx context.Context, path string) {
	if err := s.images.Remove(ctx, path); err != nil {
		slog.Warn("failed to remove item image", "path", path, "error", err)
	}
}

func (s *ItemService) publish(ctx context.Context, subject string, actor model.Actor, id string, item *model.Item) {
	event := events.ItemEvent{ItemID: id, ActorID: actor.UserID, Item: item, At: s.now().UTC()}
	if err := s.events.Publish(ctx, subject, event); err != nil {
		slog.Warn("failed to publish item event", "subject", subject, "item", id, "error", err)
	}
}
