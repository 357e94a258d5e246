package model

import (
	"strings"
	"time"
)

// Item is a listing of a reusable or recyclable good.
type Item struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id,omitempty"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	City          string    `json:"city"`
	ContactNumber string    `json:"contact_number"`
	Image         string    `json:"image"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ItemFields are the caller-supplied fields of a new item.
type ItemFields struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	City          string `json:"city"`
	ContactNumber string `json:"contact_number"`
	Image         string `json:"image,omitempty"`
}

// Item statuses. The only transition is available -> recycled.
const (
	ItemStatusAvailable = "available"
	ItemStatusRecycled  = "recycled"
)

// ValidItemStatus reports whether status is a recognized item status.
func ValidItemStatus(status string) bool {
	return status == ItemStatusAvailable || status == ItemStatusRecycled
}

// Categories offered by the listing forms.
var Categories = []string{
	"Paper",
	"Plastic",
	"Glass",
	"Metal",
	"Electronics",
	"Furniture",
	"Clothing",
	"Books",
	"Others",
}

// Cities offered by the listing forms.
var Cities = []string{
	"Delhi",
	"Mumbai",
	"Bangalore",
	"Chennai",
	"Kolkata",
}

// CanonicalCategory returns the list spelling of category if it matches one
// case-insensitively, otherwise category unchanged.
func CanonicalCategory(category string) string {
	return canonical(Categories, category)
}

// CanonicalCity is CanonicalCategory for cities.
func CanonicalCity(city string) string {
	return canonical(Cities, city)
}

func canonical(list []string, v string) string {
	for _, c := range list {
		if strings.EqualFold(c, v) {
			return c
		}
	}
	return v
}
