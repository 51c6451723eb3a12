// Package listings runs the listing lifecycle: it checks the authorization
// policy, applies state transitions and talks to the store through Repository.
package listings

import (
	"context"
	"encoding/json"

	"tabiconst-backend/internal/application/catalog"
	policies "tabiconst-backend/internal/application/policies/listings"
	"tabiconst-backend/internal/domain"
	"tabiconst-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

type Service struct {
	Repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{Repo: repo}
}

// ImageSaver stores a pending image batch and returns the public URLs. It is
// invoked only once the operation has passed validation and policy.
type ImageSaver func(ctx context.Context) ([]string, error)

func storedImages(urls []string) ImageSaver {
	return func(context.Context) ([]string, error) { return urls, nil }
}

// Create publishes a new listing owned by actor. imageURLs may be empty.
func (s *Service) Create(ctx context.Context, actor *domain.Actor, in Input, imageURLs []string) (*domain.Listing, error) {
	return s.CreateWithImages(ctx, actor, in, storedImages(imageURLs))
}

// CreateWithImages is Create with images stored by save after the listing is
// authorized. save may be nil.
func (s *Service) CreateWithImages(ctx context.Context, actor *domain.Actor, in Input, save ImageSaver) (*domain.Listing, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if in.Price == nil {
		return nil, domain.Invalid("price", "is required")
	}

	l := &domain.Listing{Features: domain.Features{}}
	in.apply(l)
	if err := validateListing(l); err != nil {
		return nil, err
	}
	if err := policies.CanCreate(actor, l); err != nil {
		return nil, err
	}

	imageURLs, err := saveImages(ctx, save)
	if err != nil {
		return nil, err
	}
	owner := actor.ID
	l.OwnerID = &owner
	l.Status = domain.InitialStatus(actor.Role)
	l.Images = newImages(uuid.Nil, imageURLs, 0)

	if err := s.Repo.Create(ctx, l); err != nil {
		return nil, err
	}
	s.record(ctx, l.ID, domain.EventCreated, actor, map[string]interface{}{
		"status":   l.Status,
		"category": l.Category,
		"images":   len(l.Images),
	})
	return l, nil
}

// Update merges in onto the stored listing and appends imageURLs to its images.
func (s *Service) Update(ctx context.Context, actor *domain.Actor, id uuid.UUID, in Input, imageURLs []string) (*domain.Listing, error) {
	return s.UpdateWithImages(ctx, actor, id, in, storedImages(imageURLs))
}

// UpdateWithImages is Update with appended images stored by save after the
// change is authorized. save may be nil.
func (s *Service) UpdateWithImages(ctx context.Context, actor *domain.Actor, id uuid.UUID, in Input, save ImageSaver) (*domain.Listing, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	l, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policies.CanUpdate(actor, l); err != nil {
		return nil, err
	}

	before := l.Category
	changed := in.apply(l)
	if l.Category != before {
		if err := policies.CanSetCategory(actor, l.Category); err != nil {
			return nil, err
		}
	}
	if err := validateListing(l); err != nil {
		return nil, err
	}
	imageURLs, err := saveImages(ctx, save)
	if err != nil {
		return nil, err
	}

	if len(changed) > 0 {
		if err := s.Repo.Update(ctx, l); err != nil {
			return nil, err
		}
	}
	if len(imageURLs) > 0 {
		images := newImages(l.ID, imageURLs, nextPosition(l.Images))
		if err := s.Repo.AppendImages(ctx, l.ID, images); err != nil {
			return nil, err
		}
		l.Images = append(l.Images, images...)
	}
	if len(changed) > 0 || len(imageURLs) > 0 {
		s.record(ctx, l.ID, domain.EventUpdated, actor, map[string]interface{}{
			"fields": changed,
			"images": len(imageURLs),
		})
	}
	return l, nil
}

func saveImages(ctx context.Context, save ImageSaver) ([]string, error) {
	if save == nil {
		return nil, nil
	}
	return save(ctx)
}

// Delete removes the listing and its images.
func (s *Service) Delete(ctx context.Context, actor *domain.Actor, id uuid.UUID) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	l, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := policies.CanDelete(actor, l); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, id, domain.EventDeleted, actor, map[string]interface{}{
		"title":  l.Title,
		"status": l.Status,
	})
	return nil
}

// ChangeStatus moves a listing to status. Moving to the current status
// succeeds without writing.
func (s *Service) ChangeStatus(ctx context.Context, actor *domain.Actor, id uuid.UUID, status string) (*domain.Listing, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	to, err := domain.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	l, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policies.CanChangeStatus(actor, l, to); err != nil {
		return nil, err
	}
	from := l.Status
	if err := l.Transition(to); err != nil {
		return nil, err
	}
	if from == to {
		return l, nil
	}
	if err := s.Repo.UpdateStatus(ctx, id, to); err != nil {
		return nil, err
	}
	s.record(ctx, id, domain.EventStatusChanged, actor, map[string]interface{}{
		"from": from,
		"to":   to,
	})
	return l, nil
}

// Get returns a single listing with its owner's contact card. Listings that
// are not active are only visible to their owner and to staff.
func (s *Service) Get(ctx context.Context, actor *domain.Actor, id uuid.UUID) (*domain.Listing, error) {
	l, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policies.CanView(actor, l); err != nil {
		return nil, err
	}
	if l.OwnerID != nil {
		contacts, err := s.Repo.OwnerContacts(ctx, []uuid.UUID{*l.OwnerID})
		if err != nil {
			return nil, err
		}
		if c, ok := contacts[*l.OwnerID]; ok {
			l.Owner = &c
		}
	}
	return l, nil
}

// List runs the catalog query for scope. Admin results carry owner contacts.
func (s *Service) List(ctx context.Context, actor *domain.Actor, filter catalog.Filter, scope domain.Scope) ([]domain.Listing, error) {
	if err := policies.CanListScope(actor, scope); err != nil {
		return nil, err
	}
	q, err := catalog.ForScope(filter, scope, actor)
	if err != nil {
		return nil, err
	}
	out, err := s.Repo.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	if scope == domain.ScopeAdmin {
		if err := s.attachOwners(ctx, out); err != nil {
			return nil, err
		}
	}
	if out == nil {
		out = []domain.Listing{}
	}
	return out, nil
}

// Events returns the audit trail of a listing, oldest first.
func (s *Service) Events(ctx context.Context, actor *domain.Actor, id uuid.UUID) ([]domain.ListingEvent, error) {
	if err := policies.CanViewEvents(actor); err != nil {
		return nil, err
	}
	return s.Repo.ListEvents(ctx, id)
}

func (s *Service) attachOwners(ctx context.Context, listings []domain.Listing) error {
	seen := map[uuid.UUID]bool{}
	var ids []uuid.UUID
	for _, l := range listings {
		if l.OwnerID != nil && !seen[*l.OwnerID] {
			seen[*l.OwnerID] = true
			ids = append(ids, *l.OwnerID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	contacts, err := s.Repo.OwnerContacts(ctx, ids)
	if err != nil {
		return err
	}
	for i := range listings {
		if listings[i].OwnerID == nil {
			continue
		}
		if c, ok := contacts[*listings[i].OwnerID]; ok {
			c := c
			listings[i].Owner = &c
		}
	}
	return nil
}

// record appends an audit event. Failures are logged and never fail the
// operation that triggered them.
func (s *Service) record(ctx context.Context, listingID uuid.UUID, eventType string, actor *domain.Actor, data map[string]interface{}) {
	raw, err := json.Marshal(data)
	if err != nil {
		raw = []byte("{}")
	}
	actorID := actor.ID
	e := &domain.ListingEvent{
		ListingID: listingID,
		EventType: eventType,
		ActorID:   &actorID,
		EventData: datatypes.JSON(raw),
	}
	if err := s.Repo.RecordEvent(ctx, e); err != nil {
		log.Error().Err(err).
			Str("listing_id", listingID.String()).
			Str("event_type", eventType).
			Msg("failed to record listing event")
	}
}

func newImages(listingID uuid.UUID, urls []string, start int) []domain.Image {
	if len(urls) == 0 {
		return nil
	}
	images := make([]domain.Image, 0, len(urls))
	for i, u := range urls {
		images = append(images, domain.Image{ListingID: listingID, URL: u, Position: start + i})
	}
	return images
}

func nextPosition(images []domain.Image) int {
	next := 0
	for _, img := range images {
		if img.Position >= next {
			next = img.Position + 1
		}
	}
	return next
}
