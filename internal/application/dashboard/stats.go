// Package dashboard aggregates catalog and user counts for the moderation
// dashboard. Counts are read at query time and may lag concurrent writes.
package dashboard

import (
	"context"
	"time"

	"tabiconst-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const recentLimit = 5

type ListingCounts struct {
	Total     int64 `json:"total"`
	Active    int64 `json:"active"`
	Pending   int64 `json:"pending"`
	Rejected  int64 `json:"rejected"`
	Houses    int64 `json:"houses"`
	Land      int64 `json:"land"`
	Materials int64 `json:"materials"`
	ForSale   int64 `json:"forSale"`
	ForRent   int64 `json:"forRent"`
}

type UserCounts struct {
	Total       int64 `json:"total"`
	Admins      int64 `json:"admins"`
	Managers    int64 `json:"managers"`
	Landlords   int64 `json:"landlords"`
	NormalUsers int64 `json:"normalUsers"`
	Pending     int64 `json:"pending"`
}

// RecentListing is a dashboard row for a newly created listing.
type RecentListing struct {
	ID        uuid.UUID       `json:"id"`
	Title     string          `json:"title"`
	Price     float64         `json:"price"`
	Category  domain.Category `json:"category"`
	DealType  domain.DealType `json:"dealType"`
	Status    domain.Status   `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	OwnerName string          `json:"ownerName"`
}

type Stats struct {
	Listings       ListingCounts   `json:"listings"`
	Users          UserCounts      `json:"users"`
	RecentListings []RecentListing `json:"recentListings"`
	RecentUsers    []domain.User   `json:"recentUsers"`
}

// Source computes fresh statistics.
type Source interface {
	Collect(ctx context.Context) (*Stats, error)
}

// GormSource computes Stats with grouped counts over the listings and users tables.
type GormSource struct {
	DB *gorm.DB
}

type groupCount struct {
	Grp   string
	Total int64
}

func (s *GormSource) grouped(ctx context.Context, model interface{}, column string) (map[string]int64, error) {
	var rows []groupCount
	err := s.DB.WithContext(ctx).Model(model).
		Select(column + " AS grp, COUNT(*) AS total").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, domain.Storage("count by "+column, err)
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Grp] = r.Total
	}
	return out, nil
}

func (s *GormSource) Collect(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	byStatus, err := s.grouped(ctx, &domain.Listing{}, "status")
	if err != nil {
		return nil, err
	}
	byCategory, err := s.grouped(ctx, &domain.Listing{}, "category")
	if err != nil {
		return nil, err
	}
	byDeal, err := s.grouped(ctx, &domain.Listing{}, "deal_type")
	if err != nil {
		return nil, err
	}
	for _, n := range byStatus {
		stats.Listings.Total += n
	}
	stats.Listings.Active = byStatus[string(domain.StatusActive)]
	stats.Listings.Pending = byStatus[string(domain.StatusPending)]
	stats.Listings.Rejected = byStatus[string(domain.StatusRejected)]
	stats.Listings.Houses = byCategory[string(domain.CategoryHouse)]
	stats.Listings.Land = byCategory[string(domain.CategoryLand)]
	stats.Listings.Materials = byCategory[string(domain.CategoryMaterial)]
	stats.Listings.ForSale = byDeal[string(domain.DealSale)]
	stats.Listings.ForRent = byDeal[string(domain.DealRent)]

	byRole, err := s.grouped(ctx, &domain.User{}, "role")
	if err != nil {
		return nil, err
	}
	userStatus, err := s.grouped(ctx, &domain.User{}, "status")
	if err != nil {
		return nil, err
	}
	for _, n := range byRole {
		stats.Users.Total += n
	}
	stats.Users.Admins = byRole[string(domain.RoleAdmin)]
	stats.Users.Managers = byRole[string(domain.RoleManager)]
	stats.Users.Landlords = byRole[string(domain.RoleLandlord)]
	stats.Users.NormalUsers = byRole[string(domain.RoleUser)]
	stats.Users.Pending = userStatus[string(domain.ApprovalPending)]

	stats.RecentListings = []RecentListing{}
	err = s.DB.WithContext(ctx).Table("listings").
		Select("listings.id, listings.title, listings.price, listings.category, listings.deal_type, listings.status, listings.created_at, COALESCE(users.name, '') AS owner_name").
		Joins("LEFT JOIN users ON users.id = listings.owner_id").
		Order("listings.created_at DESC").Order("listings.id DESC").
		Limit(recentLimit).
		Scan(&stats.RecentListings).Error
	if err != nil {
		return nil, domain.Storage("recent listings", err)
	}

	stats.RecentUsers = []domain.User{}
	err = s.DB.WithContext(ctx).Order("created_at DESC").Limit(recentLimit).Find(&stats.RecentUsers).Error
	if err != nil {
		return nil, domain.Storage("recent users", err)
	}
	return stats, nil
}
