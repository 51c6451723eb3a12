package listings

import (
	"strings"

	"tabiconst-backend/internal/domain"
	"tabiconst-backend/internal/pkg/validation"
)

// maxPrice keeps values inside decimal(15,2).
const maxPrice = 1e13

// Input is the allow-list of fields a client may set on a listing. Nil fields
// are absent: on create they take their defaults, on update they keep the
// stored value. Anything else in the request body is ignored.
type Input struct {
	Title        *string          `json:"title" validate:"omitempty,max=255"`
	Description  *string          `json:"description" validate:"omitempty,max=10000"`
	Price        *float64         `json:"price" validate:"omitempty,gte=0"`
	Location     *string          `json:"location" validate:"omitempty,max=255"`
	DealType     *domain.DealType `json:"dealType" validate:"omitempty,oneof=sale rent"`
	Type         *domain.DealType `json:"type" validate:"omitempty,oneof=sale rent"`
	Category     *domain.Category `json:"category" validate:"omitempty,oneof=house land material"`
	PropertyType *string          `json:"propertyType" validate:"omitempty,max=100"`
	Bedrooms     *int             `json:"bedrooms" validate:"omitempty,gte=0"`
	Bathrooms    *int             `json:"bathrooms" validate:"omitempty,gte=0"`
	Size         *string          `json:"size" validate:"omitempty,max=100"`
	MapLink      *string          `json:"mapLink" validate:"omitempty,max=2048"`
	Features     []string         `json:"features" validate:"omitempty,max=50,dive,max=100"`
}

// IsEmpty reports whether no field is set.
func (in Input) IsEmpty() bool {
	return in.Title == nil && in.Description == nil && in.Price == nil && in.Location == nil &&
		in.DealType == nil && in.Type == nil && in.Category == nil && in.PropertyType == nil &&
		in.Bedrooms == nil && in.Bathrooms == nil && in.Size == nil && in.MapLink == nil &&
		in.Features == nil
}

func (in Input) dealType() *domain.DealType {
	if in.DealType != nil {
		return in.DealType
	}
	return in.Type
}

// apply merges the set fields onto l and returns the json names of the fields
// whose value changed.
func (in Input) apply(l *domain.Listing) []string {
	var changed []string
	setString := func(name string, dst *string, src *string) {
		if src == nil {
			return
		}
		v := strings.TrimSpace(*src)
		if *dst != v {
			*dst = v
			changed = append(changed, name)
		}
	}
	setOptional := func(name string, dst **string, src *string) {
		if src == nil {
			return
		}
		var next *string
		if v := strings.TrimSpace(*src); v != "" {
			next = &v
		}
		if (*dst == nil) != (next == nil) || (next != nil && **dst != *next) {
			*dst = next
			changed = append(changed, name)
		}
	}
	setInt := func(name string, dst *int, src *int) {
		if src != nil && *dst != *src {
			*dst = *src
			changed = append(changed, name)
		}
	}

	setString("title", &l.Title, in.Title)
	setString("description", &l.Description, in.Description)
	if in.Price != nil && l.Price != *in.Price {
		l.Price = *in.Price
		changed = append(changed, "price")
	}
	setString("location", &l.Location, in.Location)
	if d := in.dealType(); d != nil && l.DealType != *d {
		l.DealType = *d
		changed = append(changed, "dealType")
	}
	if in.Category != nil && l.Category != *in.Category {
		l.Category = *in.Category
		changed = append(changed, "category")
	}
	setOptional("propertyType", &l.PropertyType, in.PropertyType)
	setInt("bedrooms", &l.Bedrooms, in.Bedrooms)
	setInt("bathrooms", &l.Bathrooms, in.Bathrooms)
	setOptional("size", &l.Size, in.Size)
	setOptional("mapLink", &l.MapLink, in.MapLink)
	if in.Features != nil && !equalFeatures(l.Features, in.Features) {
		l.Features = append(domain.Features{}, in.Features...)
		changed = append(changed, "features")
	}
	return changed
}

func equalFeatures(a domain.Features, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// shape is the complete-record rule set checked after a merge.
type shape struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description string  `json:"description" validate:"max=10000"`
	Price       float64 `json:"price" validate:"gte=0"`
	Location    string  `json:"location" validate:"required,max=255"`
	DealType    string  `json:"dealType" validate:"required,oneof=sale rent"`
	Category    string  `json:"category" validate:"required,oneof=house land material"`
	Bedrooms    int     `json:"bedrooms" validate:"gte=0"`
	Bathrooms   int     `json:"bathrooms" validate:"gte=0"`
	MapLink     string  `json:"mapLink" validate:"omitempty,url"`
}

func validateListing(l *domain.Listing) error {
	if l.Price >= maxPrice {
		return domain.Invalid("price", "is too large")
	}
	return validation.Struct(shape{
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price,
		Location:    l.Location,
		DealType:    string(l.DealType),
		Category:    string(l.Category),
		Bedrooms:    l.Bedrooms,
		Bathrooms:   l.Bathrooms,
		MapLink:     deref(l.MapLink),
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
