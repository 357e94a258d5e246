package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/erazemk/recyclehub/internal/model"
	"github.com/erazemk/recyclehub/internal/store"
)

// CreateItem inserts the item under a new ObjectID.
func (s *Store) CreateItem(ctx context.Context, item *model.Item) error {
	doc := toItemDocument(item)
	doc.ID = primitive.NewObjectID()
	if _, err := s.items.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("inserting item: %w", err)
	}
	item.ID = doc.ID.Hex()
	return nil
}

// ListItems returns all items in natural order.
func (s *Store) ListItems(ctx context.Context) ([]model.Item, error) {
	cursor, err := s.items.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("finding items: %w", err)
	}
	var docs []itemDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding items: %w", err)
	}

	items := make([]model.Item, 0, len(docs))
	for i := range docs {
		items = append(items, docs[i].toModel())
	}
	return items, nil
}

// GetItem returns an item by hex ObjectID. Malformed ids are not found.
func (s *Store) GetItem(ctx context.Context, id string) (*model.Item, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrNotFound
	}

	var doc itemDocument
	err = s.items.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("finding item: %w", err)
	}
	item := doc.toModel()
	return &item, nil
}

// UpdateItemStatus sets the status and returns the document after update.
func (s *Store) UpdateItemStatus(ctx context.Context, id, status string) (*model.Item, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrNotFound
	}

	var doc itemDocument
	err = s.items.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": status}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating item status: %w", err)
	}
	item := doc.toModel()
	return &item, nil
}

// DeleteItem removes an item by hex ObjectID.
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return store.ErrNotFound
	}

	res, err := s.items.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
