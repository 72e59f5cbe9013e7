// Package rentaltest provides an in-memory rental.Store for tests.
package rentaltest

import (
	"context"
	"sort"
	"sync"
	"time"

	"lodgia.org/internal/rental"
)

// MemStore keeps everything in maps guarded by one mutex. It implements
// rental.Store with the same not-found and overlap semantics as the
// Postgres store.
type MemStore struct {
	mu       sync.Mutex
	users    map[string]*rental.User
	listings map[string]*rental.Listing
	bookings map[string]*rental.Booking
	reviews  map[string]*rental.Review
}

var _ rental.Store = (*MemStore)(nil)

// NewMemStore returns an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		users:    map[string]*rental.User{},
		listings: map[string]*rental.Listing{},
		bookings: map[string]*rental.Booking{},
		reviews:  map[string]*rental.Review{},
	}
}

func (m *MemStore) Users() rental.UserStore       { return (*memUsers)(m) }
func (m *MemStore) Listings() rental.ListingStore { return (*memListings)(m) }
func (m *MemStore) Bookings() rental.BookingStore { return (*memBookings)(m) }
func (m *MemStore) Reviews() rental.ReviewStore   { return (*memReviews)(m) }

type memUsers MemStore

func (m *memUsers) Create(_ context.Context, u *rental.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return rental.ErrConflict
		}
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUsers) Find(_ context.Context, id string) (*rental.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, rental.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*rental.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, rental.ErrNotFound
}

func (m *memUsers) List(_ context.Context) ([]*rental.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*rental.User, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memListings MemStore

func (m *memListings) Create(_ context.Context, l *rental.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *l
	m.listings[l.ID] = &cp
	return nil
}

func (m *memListings) Find(_ context.Context, id string) (*rental.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.listings[id]
	if !ok {
		return nil, rental.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memListings) List(_ context.Context, limit, offset int) ([]*rental.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]*rental.Listing, 0, len(m.listings))
	for _, l := range m.listings {
		cp := *l
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (m *memListings) Update(_ context.Context, l *rental.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.listings[l.ID]; !ok {
		return rental.ErrNotFound
	}
	cp := *l
	m.listings[l.ID] = &cp
	return nil
}

func (m *memListings) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.listings[id]; !ok {
		return rental.ErrNotFound
	}
	delete(m.listings, id)
	return nil
}

type memBookings MemStore

func (m *memBookings) Create(_ context.Context, b *rental.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *b
	m.bookings[b.ID] = &cp
	return nil
}

func (m *memBookings) Find(_ context.Context, id string) (*rental.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, rental.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memBookings) ListByGuest(_ context.Context, guestID string) ([]*rental.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*rental.Booking
	for _, b := range m.bookings {
		if b.GuestID == guestID {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memBookings) HasOverlap(_ context.Context, listingID string, checkIn, checkOut time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.ListingID != listingID || b.Status != rental.BookingConfirmed {
			continue
		}
		if b.CheckIn.Before(checkOut) && b.CheckOut.After(checkIn) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memBookings) Cancel(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return rental.ErrNotFound
	}
	b.Status = rental.BookingCancelled
	return nil
}

type memReviews MemStore

func (m *memReviews) Create(_ context.Context, rv *rental.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rv
	m.reviews[rv.ID] = &cp
	return nil
}

func (m *memReviews) ListByListing(_ context.Context, listingID string) ([]*rental.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*rental.Review
	for _, rv := range m.reviews {
		if rv.ListingID == listingID {
			cp := *rv
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
