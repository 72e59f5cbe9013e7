package rental

import (
	"context"
	"time"
)

// Store bundles the persistence operations the service needs. The Postgres
// implementation lives in internal/store/pg; tests use in-memory fakes.
type Store interface {
	Users() UserStore
	Listings() ListingStore
	Bookings() BookingStore
	Reviews() ReviewStore
}

// UserStore manages accounts.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
}

// ListingStore manages properties.
type ListingStore interface {
	Create(ctx context.Context, l *Listing) error
	Find(ctx context.Context, id string) (*Listing, error)
	List(ctx context.Context, limit, offset int) ([]*Listing, error)
	Update(ctx context.Context, l *Listing) error
	Delete(ctx context.Context, id string) error
}

// BookingStore manages reservations.
type BookingStore interface {
	Create(ctx context.Context, b *Booking) error
	Find(ctx context.Context, id string) (*Booking, error)
	ListByGuest(ctx context.Context, guestID string) ([]*Booking, error)
	// HasOverlap reports whether a confirmed booking for the listing
	// intersects the half-open range [checkIn, checkOut).
	HasOverlap(ctx context.Context, listingID string, checkIn, checkOut time.Time) (bool, error)
	Cancel(ctx context.Context, id string) error
}

// ReviewStore manages listing reviews.
type ReviewStore interface {
	Create(ctx context.Context, rv *Review) error
	ListByListing(ctx context.Context, listingID string) ([]*Review, error)
}
