// Package pg implements rental.Store on PostgreSQL through the pgx stdlib
// driver.
package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"lodgia.org/internal/auth"
	"lodgia.org/internal/ids"
	"lodgia.org/internal/rental"
)

const uniqueViolation = "23505"

// Store holds the connection pool.
type Store struct {
	db *sql.DB
}

var _ rental.Store = (*Store)(nil)

// Open connects and tunes the pool.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewStore wraps an existing pool (used by tests with sqlmock).
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Users() rental.UserStore       { return &userStore{db: s.db} }
func (s *Store) Listings() rental.ListingStore { return &listingStore{db: s.db} }
func (s *Store) Bookings() rental.BookingStore { return &bookingStore{db: s.db} }
func (s *Store) Reviews() rental.ReviewStore   { return &reviewStore{db: s.db} }

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return rental.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: already exists", rental.ErrConflict)
	}
	return err
}

// Users ---------------------------------------------------------------------

type userStore struct{ db *sql.DB }

func (s *userStore) Create(ctx context.Context, u *rental.User) error {
	if u.ID == "" {
		u.ID = ids.New()
	}
	_, err := s.db.ExecContext(ctx,
		`insert into users(id, email, username, password_hash, role, created_at, updated_at)
		 values($1,$2,$3,$4,$5,$6,$7)`,
		u.ID, u.Email, u.Username, u.PasswordHash, string(u.Role), u.CreatedAt, u.UpdatedAt,
	)
	return mapError(err)
}

const userColumns = `id, email, username, password_hash, role, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*rental.User, error) {
	var u rental.User
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	u.Role = roleFromString(role)
	return &u, nil
}

func (s *userStore) Find(ctx context.Context, id string) (*rental.User, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where id=$1`, id))
}

func (s *userStore) FindByEmail(ctx context.Context, email string) (*rental.User, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where email=$1`, email))
}

func (s *userStore) List(ctx context.Context) ([]*rental.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+userColumns+` from users order by created_at asc`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var res []*rental.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	return res, rows.Err()
}

// Listings ------------------------------------------------------------------

type listingStore struct{ db *sql.DB }

const listingColumns = `id, owner_id, title, description, location, nightly_price_cents, max_guests, created_at, updated_at`

func scanListing(row interface{ Scan(...any) error }) (*rental.Listing, error) {
	var l rental.Listing
	if err := row.Scan(&l.ID, &l.OwnerID, &l.Title, &l.Description, &l.Location,
		&l.NightlyPriceCents, &l.MaxGuests, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	return &l, nil
}

func (s *listingStore) Create(ctx context.Context, l *rental.Listing) error {
	if l.ID == "" {
		l.ID = ids.New()
	}
	_, err := s.db.ExecContext(ctx,
		`insert into listings(id, owner_id, title, description, location, nightly_price_cents, max_guests, created_at, updated_at)
		 values($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		l.ID, l.OwnerID, l.Title, l.Description, l.Location, l.NightlyPriceCents, l.MaxGuests, l.CreatedAt, l.UpdatedAt,
	)
	return mapError(err)
}

func (s *listingStore) Find(ctx context.Context, id string) (*rental.Listing, error) {
	return scanListing(s.db.QueryRowContext(ctx,
		`select `+listingColumns+` from listings where id=$1`, id))
}

func (s *listingStore) List(ctx context.Context, limit, offset int) ([]*rental.Listing, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+listingColumns+` from listings order by created_at desc limit $1 offset $2`,
		limit, offset)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var res []*rental.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, l)
	}
	return res, rows.Err()
}

func (s *listingStore) Update(ctx context.Context, l *rental.Listing) error {
	res, err := s.db.ExecContext(ctx,
		`update listings
		 set title=$2, description=$3, location=$4, nightly_price_cents=$5, max_guests=$6, updated_at=$7
		 where id=$1`,
		l.ID, l.Title, l.Description, l.Location, l.NightlyPriceCents, l.MaxGuests, l.UpdatedAt,
	)
	if err != nil {
		return mapError(err)
	}
	return checkAffected(res)
}

func (s *listingStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from listings where id=$1`, id)
	if err != nil {
		return mapError(err)
	}
	return checkAffected(res)
}

// Bookings ------------------------------------------------------------------

type bookingStore struct{ db *sql.DB }

const bookingColumns = `id, listing_id, guest_id, check_in, check_out, guests, status, created_at`

func scanBooking(row interface{ Scan(...any) error }) (*rental.Booking, error) {
	var b rental.Booking
	if err := row.Scan(&b.ID, &b.ListingID, &b.GuestID, &b.CheckIn, &b.CheckOut,
		&b.Guests, &b.Status, &b.CreatedAt); err != nil {
		return nil, mapError(err)
	}
	return &b, nil
}

func (s *bookingStore) Create(ctx context.Context, b *rental.Booking) error {
	if b.ID == "" {
		b.ID = ids.New()
	}
	_, err := s.db.ExecContext(ctx,
		`insert into bookings(id, listing_id, guest_id, check_in, check_out, guests, status, created_at)
		 values($1,$2,$3,$4,$5,$6,$7,$8)`,
		b.ID, b.ListingID, b.GuestID, b.CheckIn, b.CheckOut, b.Guests, b.Status, b.CreatedAt,
	)
	return mapError(err)
}

func (s *bookingStore) Find(ctx context.Context, id string) (*rental.Booking, error) {
	return scanBooking(s.db.QueryRowContext(ctx,
		`select `+bookingColumns+` from bookings where id=$1`, id))
}

func (s *bookingStore) ListByGuest(ctx context.Context, guestID string) ([]*rental.Booking, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+bookingColumns+` from bookings where guest_id=$1 order by check_in asc`, guestID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var res []*rental.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, b)
	}
	return res, rows.Err()
}

func (s *bookingStore) HasOverlap(ctx context.Context, listingID string, checkIn, checkOut time.Time) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`select exists(
		   select 1 from bookings
		   where listing_id=$1 and status='confirmed' and check_in < $3 and check_out > $2
		 )`,
		listingID, checkIn, checkOut,
	).Scan(&exists)
	if err != nil {
		return false, mapError(err)
	}
	return exists, nil
}

func (s *bookingStore) Cancel(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`update bookings set status='cancelled' where id=$1`, id)
	if err != nil {
		return mapError(err)
	}
	return checkAffected(res)
}

// Reviews -------------------------------------------------------------------

type reviewStore struct{ db *sql.DB }

func (s *reviewStore) Create(ctx context.Context, rv *rental.Review) error {
	if rv.ID == "" {
		rv.ID = ids.New()
	}
	_, err := s.db.ExecContext(ctx,
		`insert into reviews(id, listing_id, author_id, rating, comment, created_at)
		 values($1,$2,$3,$4,$5,$6)`,
		rv.ID, rv.ListingID, rv.AuthorID, rv.Rating, rv.Comment, rv.CreatedAt,
	)
	return mapError(err)
}

func (s *reviewStore) ListByListing(ctx context.Context, listingID string) ([]*rental.Review, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, listing_id, author_id, rating, comment, created_at
		 from reviews where listing_id=$1 order by created_at desc`, listingID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var res []*rental.Review
	for rows.Next() {
		var rv rental.Review
		if err := rows.Scan(&rv.ID, &rv.ListingID, &rv.AuthorID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, mapError(err)
		}
		res = append(res, &rv)
	}
	return res, rows.Err()
}

// helpers -------------------------------------------------------------------

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return rental.ErrNotFound
	}
	return nil
}

func roleFromString(s string) auth.Role {
	return auth.Role(s)
}
