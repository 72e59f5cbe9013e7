package rental

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"lodgia.org/internal/auth"
	"lodgia.org/internal/ids"
)

// Service implements the rental domain on top of a Store. Struct inputs are
// checked with validator tags before touching the store; the HTTP layer has
// already sanitized and shape-checked the raw payload at this point.
type Service struct {
	store    Store
	hasher   auth.Hasher
	validate *validator.Validate
	now      func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithClock overrides the time source, for tests.
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the domain service.
func NewService(store Store, hasher auth.Hasher, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	svc := &Service{
		store:    store,
		hasher:   hasher,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

func (s *Service) checkStruct(in any) error {
	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("%w: %s", ErrInvalidInput, describeViolation(verrs[0]))
		}
		return err
	}
	return nil
}

func describeViolation(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed '%s' validation", field, fe.Tag())
	}
}

// --- users -----------------------------------------------------------------

// RegisterInput creates an account.
type RegisterInput struct {
	Email    string `validate:"required,email,max=254"`
	Username string `validate:"required,min=3,max=40"`
	Password string `validate:"required,min=8,max=72"`
}

// Register creates a user with the regular role. The plaintext password is
// hashed here and discarded.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	if err := s.checkStruct(in); err != nil {
		return nil, err
	}
	if existing, err := s.store.Users().FindByEmail(ctx, in.Email); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	user := &User{
		ID:           ids.New(),
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: hash,
		Role:         auth.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and returns the account. Unknown email and bad
// password are the same error so callers cannot probe for accounts.
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, auth.ErrPasswordMismatch
	}
	user, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, auth.ErrPasswordMismatch
		}
		return nil, err
	}
	if err := s.hasher.Verify(user.PasswordHash, password); err != nil {
		return nil, err
	}
	return user, nil
}

// FindByTokenSubject resolves a verified token subject to a principal. This
// is the user-lookup collaborator of the authentication gate.
func (s *Service) FindByTokenSubject(ctx context.Context, id string) (auth.Principal, error) {
	user, err := s.store.Users().Find(ctx, id)
	if err != nil {
		return auth.Principal{}, err
	}
	return auth.Principal{
		ID:       user.ID,
		Role:     user.Role,
		Username: user.Username,
		Email:    user.Email,
	}, nil
}

// ListUsers returns every account. Admin-only at the HTTP layer.
func (s *Service) ListUsers(ctx context.Context) ([]*User, error) {
	return s.store.Users().List(ctx)
}

// --- listings --------------------------------------------------------------

// NewListingInput creates a listing.
type NewListingInput struct {
	Title             string `validate:"required,min=3,max=140"`
	Description       string `validate:"max=2000"`
	Location          string `validate:"required,max=200"`
	NightlyPriceCents int64  `validate:"required,gt=0"`
	MaxGuests         int    `validate:"required,gte=1,lte=32"`
}

// UpdateListingInput carries only the fields being changed.
type UpdateListingInput struct {
	Title             *string `validate:"omitempty,min=3,max=140"`
	Description       *string `validate:"omitempty,max=2000"`
	Location          *string `validate:"omitempty,max=200"`
	NightlyPriceCents *int64  `validate:"omitempty,gt=0"`
	MaxGuests         *int    `validate:"omitempty,gte=1,lte=32"`
}

// CreateListing registers a property owned by ownerID.
func (s *Service) CreateListing(ctx context.Context, ownerID string, in NewListingInput) (*Listing, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Location = strings.TrimSpace(in.Location)
	if err := s.checkStruct(in); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	listing := &Listing{
		ID:                ids.New(),
		OwnerID:           ownerID,
		Title:             in.Title,
		Description:       strings.TrimSpace(in.Description),
		Location:          in.Location,
		NightlyPriceCents: in.NightlyPriceCents,
		MaxGuests:         in.MaxGuests,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.store.Listings().Create(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// GetListing fetches one listing.
func (s *Service) GetListing(ctx context.Context, id string) (*Listing, error) {
	return s.store.Listings().Find(ctx, id)
}

// ListListings pages through listings, newest first.
func (s *Service) ListListings(ctx context.Context, limit, offset int) ([]*Listing, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.Listings().List(ctx, limit, offset)
}

// UpdateListing applies a partial update.
func (s *Service) UpdateListing(ctx context.Context, id string, in UpdateListingInput) (*Listing, error) {
	if err := s.checkStruct(in); err != nil {
		return nil, err
	}
	listing, err := s.store.Listings().Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		listing.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		listing.Description = strings.TrimSpace(*in.Description)
	}
	if in.Location != nil {
		listing.Location = strings.TrimSpace(*in.Location)
	}
	if in.NightlyPriceCents != nil {
		listing.NightlyPriceCents = *in.NightlyPriceCents
	}
	if in.MaxGuests != nil {
		listing.MaxGuests = *in.MaxGuests
	}
	listing.UpdatedAt = s.now().UTC()
	if err := s.store.Listings().Update(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// DeleteListing removes a listing.
func (s *Service) DeleteListing(ctx context.Context, id string) error {
	return s.store.Listings().Delete(ctx, id)
}

// ListingOwner resolves the owning user of a listing. This is the
// resource-ownership collaborator of the authorization gate.
func (s *Service) ListingOwner(ctx context.Context, id string) (string, error) {
	listing, err := s.store.Listings().Find(ctx, id)
	if err != nil {
		return "", err
	}
	return listing.OwnerID, nil
}

// --- bookings --------------------------------------------------------------

// NewBookingInput reserves a listing. Dates are ISO days (2006-01-02).
type NewBookingInput struct {
	ListingID string `validate:"required"`
	CheckIn   string `validate:"required"`
	CheckOut  string `validate:"required"`
	Guests    int    `validate:"required,gte=1"`
}

const dateLayout = "2006-01-02"

// CreateBooking reserves a listing for the guest. Overlapping confirmed
// bookings for the same listing are rejected with ErrConflict.
func (s *Service) CreateBooking(ctx context.Context, guestID string, in NewBookingInput) (*Booking, error) {
	if err := s.checkStruct(in); err != nil {
		return nil, err
	}
	checkIn, err := time.Parse(dateLayout, in.CheckIn)
	if err != nil {
		return nil, fmt.Errorf("%w: check_in must be a date (%s)", ErrInvalidInput, dateLayout)
	}
	checkOut, err := time.Parse(dateLayout, in.CheckOut)
	if err != nil {
		return nil, fmt.Errorf("%w: check_out must be a date (%s)", ErrInvalidInput, dateLayout)
	}
	if !checkOut.After(checkIn) {
		return nil, fmt.Errorf("%w: check_out must be after check_in", ErrInvalidInput)
	}

	listing, err := s.store.Listings().Find(ctx, in.ListingID)
	if err != nil {
		return nil, err
	}
	if in.Guests > listing.MaxGuests {
		return nil, fmt.Errorf("%w: listing sleeps at most %d guests", ErrInvalidInput, listing.MaxGuests)
	}

	overlap, err := s.store.Bookings().HasOverlap(ctx, listing.ID, checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, fmt.Errorf("%w: listing is already booked for those dates", ErrConflict)
	}

	booking := &Booking{
		ID:        ids.New(),
		ListingID: listing.ID,
		GuestID:   guestID,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Guests:    in.Guests,
		Status:    BookingConfirmed,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Bookings().Create(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// ListBookings returns the guest's own bookings.
func (s *Service) ListBookings(ctx context.Context, guestID string) ([]*Booking, error) {
	return s.store.Bookings().ListByGuest(ctx, guestID)
}

// CancelBooking marks a booking cancelled.
func (s *Service) CancelBooking(ctx context.Context, id string) error {
	return s.store.Bookings().Cancel(ctx, id)
}

// BookingOwner resolves the guest who made the booking, for the ownership
// gate on cancellation.
func (s *Service) BookingOwner(ctx context.Context, id string) (string, error) {
	booking, err := s.store.Bookings().Find(ctx, id)
	if err != nil {
		return "", err
	}
	return booking.GuestID, nil
}

// --- reviews ---------------------------------------------------------------

// NewReviewInput rates a listing.
type NewReviewInput struct {
	Rating  int    `validate:"required,gte=1,lte=5"`
	Comment string `validate:"max=2000"`
}

// CreateReview attaches a review to a listing.
func (s *Service) CreateReview(ctx context.Context, listingID, authorID string, in NewReviewInput) (*Review, error) {
	if err := s.checkStruct(in); err != nil {
		return nil, err
	}
	if _, err := s.store.Listings().Find(ctx, listingID); err != nil {
		return nil, err
	}
	review := &Review{
		ID:        ids.New(),
		ListingID: listingID,
		AuthorID:  authorID,
		Rating:    in.Rating,
		Comment:   strings.TrimSpace(in.Comment),
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Reviews().Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// ListReviews returns reviews for a listing, newest first.
func (s *Service) ListReviews(ctx context.Context, listingID string) ([]*Review, error) {
	if _, err := s.store.Listings().Find(ctx, listingID); err != nil {
		return nil, err
	}
	return s.store.Reviews().ListByListing(ctx, listingID)
}
