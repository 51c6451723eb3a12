package listings

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"tabiconst-backend/internal/application/catalog"
	"tabiconst-backend/internal/domain"

	"github.com/google/uuid"
)

// memoryRepo is an in-memory Repository for service tests.
type memoryRepo struct {
	mu       sync.Mutex
	listings map[uuid.UUID]domain.Listing
	contacts map[uuid.UUID]domain.OwnerContact
	events   []domain.ListingEvent
	clock    time.Time

	updates       int
	statusWrites  int
	failEvents    bool
	failNextWrite error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		listings: map[uuid.UUID]domain.Listing{},
		contacts: map[uuid.UUID]domain.OwnerContact{},
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *memoryRepo) tick() time.Time {
	r.clock = r.clock.Add(time.Second)
	return r.clock
}

func (r *memoryRepo) takeFailure() error {
	err := r.failNextWrite
	r.failNextWrite = nil
	if err != nil {
		return domain.Storage("write", err)
	}
	return nil
}

func clone(l domain.Listing) domain.Listing {
	l.Images = append([]domain.Image(nil), l.Images...)
	l.Features = append(domain.Features{}, l.Features...)
	l.Owner = nil
	return l
}

func (r *memoryRepo) Create(ctx context.Context, l *domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return err
	}
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	now := r.tick()
	l.CreatedAt, l.UpdatedAt = now, now
	for i := range l.Images {
		l.Images[i].ID = uuid.New()
		l.Images[i].ListingID = l.ID
		l.Images[i].CreatedAt = now
	}
	r.listings[l.ID] = clone(*l)
	return nil
}

func (r *memoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := clone(l)
	return &out, nil
}

func (r *memoryRepo) Update(ctx context.Context, l *domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return err
	}
	stored, ok := r.listings[l.ID]
	if !ok {
		return domain.ErrNotFound
	}
	next := clone(*l)
	next.OwnerID = stored.OwnerID
	next.Status = stored.Status
	next.Images = stored.Images
	next.CreatedAt = stored.CreatedAt
	next.UpdatedAt = r.tick()
	l.UpdatedAt = next.UpdatedAt
	r.listings[l.ID] = next
	r.updates++
	return nil
}

func (r *memoryRepo) AppendImages(ctx context.Context, listingID uuid.UUID, images []domain.Image) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return err
	}
	stored, ok := r.listings[listingID]
	if !ok {
		return domain.ErrNotFound
	}
	for i := range images {
		images[i].ID = uuid.New()
		images[i].ListingID = listingID
	}
	stored.Images = append(stored.Images, images...)
	r.listings[listingID] = stored
	return nil
}

func (r *memoryRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return err
	}
	stored, ok := r.listings[id]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Status = status
	r.listings[id] = stored
	r.statusWrites++
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return err
	}
	if _, ok := r.listings[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.listings, id)
	return nil
}

func (r *memoryRepo) Search(ctx context.Context, q catalog.Query) ([]domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Listing
	for _, l := range r.listings {
		if q.Matches(&l) {
			out = append(out, clone(l))
		}
	}
	catalog.Sort(out)
	return out, nil
}

func (r *memoryRepo) OwnerContacts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.OwnerContact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[uuid.UUID]domain.OwnerContact{}
	for _, id := range ids {
		if c, ok := r.contacts[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func (r *memoryRepo) RecordEvent(ctx context.Context, e *domain.ListingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failEvents {
		return domain.Storage("record event", errors.New("events table unavailable"))
	}
	e.ID = uuid.New()
	e.CreatedAt = r.tick()
	r.events = append(r.events, *e)
	return nil
}

func (r *memoryRepo) ListEvents(ctx context.Context, listingID uuid.UUID) ([]domain.ListingEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.ListingEvent{}
	for _, e := range r.events {
		if e.ListingID == listingID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
