// Package catalog turns client filters into a listing predicate. The same
// predicate is available as a GORM scope for the database and as an
// in-memory matcher for fakes and tests.
package catalog

import (
	"sort"
	"strings"

	"tabiconst-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Query is a Filter resolved against a visibility scope.
type Query struct {
	Filter  Filter
	Status  *domain.Status
	OwnerID *uuid.UUID
}

// ForScope resolves f for scope. The public scope is pinned to active listings
// whatever the filter says; the mine and admin scopes apply only an explicit
// status filter.
func ForScope(f Filter, scope domain.Scope, actor *domain.Actor) (Query, error) {
	q := Query{Filter: f}
	switch scope {
	case domain.ScopePublic:
		active := domain.StatusActive
		q.Status = &active
		q.Filter.Status = nil
	case domain.ScopeMine:
		if actor == nil {
			return Query{}, domain.ErrUnauthenticated
		}
		id := actor.ID
		q.OwnerID = &id
		q.Status = f.Status
	case domain.ScopeAdmin:
		q.Status = f.Status
	default:
		return Query{}, domain.Invalid("scope", "unknown scope")
	}
	return q, nil
}

// Scope applies the predicate and ordering to a GORM query on listings.
func (q Query) Scope() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		f := q.Filter
		if q.Status != nil {
			db = db.Where("status = ?", *q.Status)
		}
		if q.OwnerID != nil {
			db = db.Where("owner_id = ?", *q.OwnerID)
		}
		if f.Category != nil {
			db = db.Where("category = ?", *f.Category)
		}
		if f.DealType != nil {
			db = db.Where("deal_type = ?", *f.DealType)
		}
		if f.PropertyType != "" {
			db = db.Where("property_type = ?", f.PropertyType)
		}
		if f.MinPrice != nil {
			db = db.Where("price >= ?", *f.MinPrice)
		}
		if f.MaxPrice != nil {
			db = db.Where("price <= ?", *f.MaxPrice)
		}
		if f.Location != "" {
			db = db.Where(`LOWER(location) LIKE ? ESCAPE '\'`, likePattern(f.Location))
		}
		if f.Search != "" {
			p := likePattern(f.Search)
			db = db.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, p, p)
		}
		return db.Order("created_at DESC").Order("id DESC")
	}
}

// Matches reports whether l satisfies the predicate.
func (q Query) Matches(l *domain.Listing) bool {
	f := q.Filter
	if q.Status != nil && l.Status != *q.Status {
		return false
	}
	if q.OwnerID != nil && (l.OwnerID == nil || *l.OwnerID != *q.OwnerID) {
		return false
	}
	if f.Category != nil && l.Category != *f.Category {
		return false
	}
	if f.DealType != nil && l.DealType != *f.DealType {
		return false
	}
	if f.PropertyType != "" && (l.PropertyType == nil || *l.PropertyType != f.PropertyType) {
		return false
	}
	if f.MinPrice != nil && l.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && l.Price > *f.MaxPrice {
		return false
	}
	if f.Location != "" && !containsFold(l.Location, f.Location) {
		return false
	}
	if f.Search != "" && !containsFold(l.Title, f.Search) && !containsFold(l.Description, f.Search) {
		return false
	}
	return true
}

// Sort orders listings newest first, breaking ties by id.
func Sort(listings []domain.Listing) {
	sort.SliceStable(listings, func(i, j int) bool {
		a, b := listings[i], listings[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.String() > b.ID.String()
	})
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}
