package favorites

import (
	"context"
	"errors"
	"strings"

	policies "tabiconst-backend/internal/application/policies/listings"
	"tabiconst-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

// List returns actor's favorites, newest first, each with its listing and images.
func (s *Service) List(ctx context.Context, actor *domain.Actor) ([]domain.Favorite, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	favorites := []domain.Favorite{}
	err := s.DB.WithContext(ctx).
		Preload("Listing").
		Preload("Listing.Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("user_id = ?", actor.ID).
		Order("created_at DESC").
		Find(&favorites).Error
	if err != nil {
		return nil, domain.Storage("list favorites", err)
	}
	return favorites, nil
}

// Add bookmarks a listing visible to actor. Bookmarking twice is a conflict.
func (s *Service) Add(ctx context.Context, actor *domain.Actor, listingID uuid.UUID) (*domain.Favorite, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	if listingID == uuid.Nil {
		return nil, domain.Invalid("listingId", "is required")
	}

	var listing domain.Listing
	if err := s.DB.WithContext(ctx).Where("id = ?", listingID).First(&listing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.Storage("find listing", err)
	}
	if err := policies.CanView(actor, &listing); err != nil {
		return nil, err
	}

	var existing int64
	if err := s.DB.WithContext(ctx).Model(&domain.Favorite{}).
		Where("user_id = ? AND listing_id = ?", actor.ID, listingID).
		Count(&existing).Error; err != nil {
		return nil, domain.Storage("find favorite", err)
	}
	if existing > 0 {
		return nil, domain.ErrConflict
	}

	fav := &domain.Favorite{UserID: actor.ID, ListingID: listingID}
	if err := s.DB.WithContext(ctx).Create(fav).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrConflict
		}
		return nil, domain.Storage("create favorite", err)
	}
	return fav, nil
}

// Remove deletes one of actor's favorites.
func (s *Service) Remove(ctx context.Context, actor *domain.Actor, id uuid.UUID) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	res := s.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, actor.ID).Delete(&domain.Favorite{})
	if res.Error != nil {
		return domain.Storage("delete favorite", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// isUniqueViolation covers a concurrent insert racing the existence check.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}
