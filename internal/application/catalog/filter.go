package catalog

import (
	"math"
	"strconv"
	"strings"

	"tabiconst-backend/internal/domain"
)

// Filter holds the optional catalog filters a client may send. Nil pointers
// and empty strings mean the filter is absent.
type Filter struct {
	Category     *domain.Category
	DealType     *domain.DealType
	MinPrice     *float64
	MaxPrice     *float64
	Location     string
	PropertyType string
	Search       string
	Status       *domain.Status
}

// Getter reads one raw query value by key; fiber's Ctx.Query fits.
type Getter func(key string) string

// ParseFilter builds a Filter from raw query values. Blank values are absent.
// Malformed price bounds and unknown enum values are rejected with a
// ValidationError rather than silently dropped.
func ParseFilter(get Getter) (Filter, error) {
	var f Filter
	value := func(key string) string { return strings.TrimSpace(get(key)) }

	if v := value("category"); v != "" {
		c := domain.Category(v)
		if !c.IsValid() {
			return Filter{}, domain.Invalid("category", "must be one of house, land, material")
		}
		f.Category = &c
	}

	dealType := value("dealType")
	if dealType == "" {
		dealType = value("type")
	}
	if dealType != "" {
		d := domain.DealType(dealType)
		if !d.IsValid() {
			return Filter{}, domain.Invalid("dealType", "must be one of sale, rent")
		}
		f.DealType = &d
	}

	var err error
	if f.MinPrice, err = parseBound("minPrice", value("minPrice")); err != nil {
		return Filter{}, err
	}
	if f.MaxPrice, err = parseBound("maxPrice", value("maxPrice")); err != nil {
		return Filter{}, err
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return Filter{}, domain.Invalid("minPrice", "must not exceed maxPrice")
	}

	if v := value("status"); v != "" {
		st, err := domain.ParseStatus(v)
		if err != nil {
			return Filter{}, err
		}
		f.Status = &st
	}

	f.Location = value("location")
	f.PropertyType = value("propertyType")
	f.Search = value("search")
	return f, nil
}

func parseBound(field, raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, domain.Invalid(field, "must be a number")
	}
	return &v, nil
}
