package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DealType is whether a listing is offered for sale or for rent.
type DealType string

const (
	DealSale DealType = "sale"
	DealRent DealType = "rent"
)

func (d DealType) IsValid() bool {
	return d == DealSale || d == DealRent
}

// Category groups listings in the catalog.
type Category string

const (
	CategoryHouse    Category = "house"
	CategoryLand     Category = "land"
	CategoryMaterial Category = "material"
)

func (c Category) IsValid() bool {
	return c == CategoryHouse || c == CategoryLand || c == CategoryMaterial
}

// Features is stored as a JSON text column and always marshals as an array,
// never null, so clients can iterate it directly.
type Features []string

// MarshalJSON implements json.Marshaler.
func (f Features) MarshalJSON() ([]byte, error) {
	if f == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(f))
}

// Scan implements sql.Scanner for reading from DB (json column).
func (f *Features) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*f = Features{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("unsupported type for Features")
	}
	if len(raw) == 0 {
		*f = Features{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	if out == nil {
		out = []string{}
	}
	*f = Features(out)
	return nil
}

// Value implements driver.Valuer for writing to DB.
func (f Features) Value() (driver.Value, error) {
	if f == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(f))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// OwnerContact is the public contact card of a listing owner. It is attached
// on reads and never persisted with the listing.
type OwnerContact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Listing is a catalog entry for a house, a plot of land or a construction material.
type Listing struct {
	ID           uuid.UUID     `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OwnerID      *uuid.UUID    `gorm:"column:owner_id;type:uuid;index" json:"ownerId"`
	Title        string        `gorm:"column:title;not null" json:"title"`
	Description  string        `gorm:"column:description;type:text;not null" json:"description"`
	Price        float64       `gorm:"column:price;type:decimal(15,2);not null" json:"price"`
	Location     string        `gorm:"column:location;not null" json:"location"`
	DealType     DealType      `gorm:"column:deal_type;type:varchar(10);not null" json:"dealType"`
	Category     Category      `gorm:"column:category;type:varchar(20);not null;index" json:"category"`
	PropertyType *string       `gorm:"column:property_type" json:"propertyType"`
	Bedrooms     int           `gorm:"column:bedrooms;not null;default:0" json:"bedrooms"`
	Bathrooms    int           `gorm:"column:bathrooms;not null;default:0" json:"bathrooms"`
	Size         *string       `gorm:"column:size" json:"size"`
	MapLink      *string       `gorm:"column:map_link;type:text" json:"mapLink"`
	Features     Features      `gorm:"column:features;type:json" json:"features"`
	Status       Status        `gorm:"column:status;type:varchar(20);not null;index" json:"status"`
	CreatedAt    time.Time     `gorm:"column:created_at;index" json:"createdAt"`
	UpdatedAt    time.Time     `gorm:"column:updated_at" json:"updatedAt"`
	Images       []Image       `gorm:"foreignKey:ListingID" json:"images"`
	Owner        *OwnerContact `gorm:"-" json:"owner,omitempty"`
}

func (Listing) TableName() string {
	return "listings"
}

// BeforeCreate sets id if not already set (DBs without default uuid).
func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.Features == nil {
		l.Features = Features{}
	}
	return nil
}

// Image is a picture attached to a listing. Images belong to exactly one
// listing and are removed with it.
type Image struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ListingID uuid.UUID `gorm:"column:listing_id;type:uuid;not null;index" json:"listingId"`
	URL       string    `gorm:"column:image_url;type:text;not null" json:"url"`
	Position  int       `gorm:"column:position;not null;default:0" json:"position"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
}

func (Image) TableName() string {
	return "listing_images"
}

func (i *Image) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
