package listings

import (
	"context"

	"tabiconst-backend/internal/application/catalog"
	"tabiconst-backend/internal/domain"

	"github.com/google/uuid"
)

// Repository is the listing store used by Service. Implementations return
// domain.ErrNotFound for unknown ids and wrap driver failures with
// domain.Storage.
type Repository interface {
	// Create persists l together with l.Images in one transaction.
	Create(ctx context.Context, l *domain.Listing) error
	// FindByID loads a listing with its images ordered by position.
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)
	// Update writes the editable columns of l. Owner and status are never written.
	Update(ctx context.Context, l *domain.Listing) error
	// AppendImages inserts images as one batch.
	AppendImages(ctx context.Context, listingID uuid.UUID, images []domain.Image) error
	// UpdateStatus writes the status column only.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) error
	// Delete removes the listing and its images.
	Delete(ctx context.Context, id uuid.UUID) error
	// Search returns the listings matching q, images attached, in q's order.
	Search(ctx context.Context, q catalog.Query) ([]domain.Listing, error)
	// OwnerContacts returns contact cards keyed by user id. Unknown ids are omitted.
	OwnerContacts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.OwnerContact, error)
	RecordEvent(ctx context.Context, e *domain.ListingEvent) error
	ListEvents(ctx context.Context, listingID uuid.UUID) ([]domain.ListingEvent, error)
}
