package repositories

import (
	"context"
	"errors"
	"time"

	"tabiconst-backend/internal/application/catalog"
	"tabiconst-backend/internal/application/listings"
	"tabiconst-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// listingRepository implements listings.Repository on GORM.
type listingRepository struct {
	db *gorm.DB
}

// NewListingRepository creates a GORM backed listing repository.
func NewListingRepository(db *gorm.DB) listings.Repository {
	return &listingRepository{db: db}
}

func orderedImages(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC").Order("created_at ASC")
}

func (r *listingRepository) Create(ctx context.Context, l *domain.Listing) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		images := l.Images
		l.Images = nil
		if err := tx.Create(l).Error; err != nil {
			l.Images = images
			return err
		}
		for i := range images {
			images[i].ListingID = l.ID
		}
		l.Images = images
		if len(images) == 0 {
			return nil
		}
		return tx.Create(&l.Images).Error
	})
	return domain.Storage("create listing", err)
}

func (r *listingRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	var l domain.Listing
	err := r.db.WithContext(ctx).Preload("Images", orderedImages).Where("id = ?", id).First(&l).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.Storage("find listing", err)
	}
	return &l, nil
}

func (r *listingRepository) Update(ctx context.Context, l *domain.Listing) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&domain.Listing{}).Where("id = ?", l.ID).Updates(map[string]interface{}{
		"title":         l.Title,
		"description":   l.Description,
		"price":         l.Price,
		"location":      l.Location,
		"deal_type":     l.DealType,
		"category":      l.Category,
		"property_type": l.PropertyType,
		"bedrooms":      l.Bedrooms,
		"bathrooms":     l.Bathrooms,
		"size":          l.Size,
		"map_link":      l.MapLink,
		"features":      l.Features,
		"updated_at":    now,
	})
	if res.Error != nil {
		return domain.Storage("update listing", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	l.UpdatedAt = now
	return nil
}

func (r *listingRepository) AppendImages(ctx context.Context, listingID uuid.UUID, images []domain.Image) error {
	if len(images) == 0 {
		return nil
	}
	for i := range images {
		images[i].ListingID = listingID
	}
	return domain.Storage("append images", r.db.WithContext(ctx).Create(&images).Error)
}

func (r *listingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) error {
	res := r.db.WithContext(ctx).Model(&domain.Listing{}).Where("id = ?", id).UpdateColumn("status", status)
	if res.Error != nil {
		return domain.Storage("update listing status", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the listing with its images and the favorites pointing at it.
func (r *listingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("listing_id = ?", id).Delete(&domain.Image{}).Error; err != nil {
			return err
		}
		if err := tx.Where("listing_id = ?", id).Delete(&domain.Favorite{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Listing{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	return domain.Storage("delete listing", err)
}

func (r *listingRepository) Search(ctx context.Context, q catalog.Query) ([]domain.Listing, error) {
	var out []domain.Listing
	err := r.db.WithContext(ctx).Scopes(q.Scope()).Preload("Images", orderedImages).Find(&out).Error
	if err != nil {
		return nil, domain.Storage("search listings", err)
	}
	return out, nil
}

func (r *listingRepository) OwnerContacts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.OwnerContact, error) {
	out := make(map[uuid.UUID]domain.OwnerContact, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []domain.User
	err := r.db.WithContext(ctx).Select("id", "name", "email", "phone").Where("id IN ?", ids).Find(&users).Error
	if err != nil {
		return nil, domain.Storage("load owner contacts", err)
	}
	for _, u := range users {
		out[u.ID] = *u.Contact()
	}
	return out, nil
}

func (r *listingRepository) RecordEvent(ctx context.Context, e *domain.ListingEvent) error {
	return domain.Storage("record listing event", r.db.WithContext(ctx).Create(e).Error)
}

func (r *listingRepository) ListEvents(ctx context.Context, listingID uuid.UUID) ([]domain.ListingEvent, error) {
	events := []domain.ListingEvent{}
	err := r.db.WithContext(ctx).Where("listing_id = ?", listingID).Order("created_at ASC").Find(&events).Error
	if err != nil {
		return nil, domain.Storage("list listing events", err)
	}
	return events, nil
}
