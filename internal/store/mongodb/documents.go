package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/erazemk/recyclehub/internal/model"
)

// itemDocument is the stored shape of an item.
type itemDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	OwnerID       string             `bson:"owner_id,omitempty"`
	Name          string             `bson:"name"`
	Description   string             `bson:"description"`
	Category      string             `bson:"category"`
	City          string             `bson:"city"`
	ContactNumber string             `bson:"contact_number"`
	Image         string             `bson:"image"`
	Status        string             `bson:"status"`
	CreatedAt     time.Time          `bson:"createdAt"`
}

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	Role         string             `bson:"role"`
	CreatedAt    time.Time          `bson:"created_at"`
}

func toItemDocument(item *model.Item) *itemDocument {
	return &itemDocument{
		OwnerID:       item.OwnerID,
		Name:          item.Name,
		Description:   item.Description,
		Category:      item.Category,
		City:          item.City,
		ContactNumber: item.ContactNumber,
		Image:         item.Image,
		Status:        item.Status,
		CreatedAt:     item.CreatedAt,
	}
}

func (d *itemDocument) toModel() model.Item {
	return model.Item{
		ID:            d.ID.Hex(),
		OwnerID:       d.OwnerID,
		Name:          d.Name,
		Description:   d.Description,
		Category:      d.Category,
		City:          d.City,
		ContactNumber: d.ContactNumber,
		Image:         d.Image,
		Status:        d.Status,
		CreatedAt:     d.CreatedAt.UTC(),
	}
}

func (d *userDocument) toModel() *model.User {
	return &model.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         d.Role,
		CreatedAt:    d.CreatedAt.UTC(),
	}
}
