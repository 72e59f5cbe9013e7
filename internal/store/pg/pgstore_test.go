package pg

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"lodgia.org/internal/auth"
	"lodgia.org/internal/rental"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		db.Close()
	})
	return NewStore(db), mock
}

func TestUserFind(t *testing.T) {
	store, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(`select .+ from users where id=\$1`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "email", "username", "password_hash", "role", "created_at", "updated_at",
		}).AddRow("u-1", "ada@example.com", "ada", "hash", "admin", now, now))

	user, err := store.Users().Find(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if user.Email != "ada@example.com" || user.Role != auth.RoleAdmin {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestUserFindNotFound(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectQuery(`select .+ from users where id=\$1`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	if _, err := store.Users().Find(context.Background(), "missing"); !errors.Is(err, rental.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectExec(`insert into users`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	err := store.Users().Create(context.Background(), &rental.User{
		ID:    "u-1",
		Email: "ada@example.com",
	})
	if !errors.Is(err, rental.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestUserCreateAssignsID(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectExec(`insert into users`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	u := &rental.User{Email: "ada@example.com", Username: "ada", Role: auth.RoleUser}
	if err := store.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID == "" {
		t.Fatal("expected an assigned id")
	}
}

func TestListingList(t *testing.T) {
	store, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(`select .+ from listings order by created_at desc limit \$1 offset \$2`).
		WithArgs(2, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "owner_id", "title", "description", "location",
			"nightly_price_cents", "max_guests", "created_at", "updated_at",
		}).
			AddRow("l-2", "u-1", "Loft", "", "Amsterdam", int64(12000), 4, now, now).
			AddRow("l-1", "u-1", "Studio", "", "Utrecht", int64(8000), 2, now, now))

	listings, err := store.Listings().List(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listings) != 2 || listings[0].ID != "l-2" {
		t.Fatalf("unexpected listings: %v", listings)
	}
}

func TestListingUpdateMissing(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectExec(`update listings`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Listings().Update(context.Background(), &rental.Listing{ID: "missing"})
	if !errors.Is(err, rental.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListingDelete(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectExec(`delete from listings where id=\$1`).
		WithArgs("l-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.Listings().Delete(context.Background(), "l-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestBookingHasOverlap(t *testing.T) {
	store, mock := newMock(t)
	checkIn := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`select exists`).
		WithArgs("l-1", checkIn, checkOut).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	overlap, err := store.Bookings().HasOverlap(context.Background(), "l-1", checkIn, checkOut)
	if err != nil {
		t.Fatalf("HasOverlap: %v", err)
	}
	if !overlap {
		t.Fatal("expected overlap")
	}
}

func TestBookingCancelMissing(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectExec(`update bookings set status='cancelled' where id=\$1`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.Bookings().Cancel(context.Background(), "missing"); !errors.Is(err, rental.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReviewListByListing(t *testing.T) {
	store, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(`from reviews where listing_id=\$1 order by created_at desc`).
		WithArgs("l-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "listing_id", "author_id", "rating", "comment", "created_at",
		}).AddRow("r-1", "l-1", "u-2", 5, "great stay", now))

	reviews, err := store.Reviews().ListByListing(context.Background(), "l-1")
	if err != nil {
		t.Fatalf("ListByListing: %v", err)
	}
	if len(reviews) != 1 || reviews[0].Rating != 5 {
		t.Fatalf("unexpected reviews: %v", reviews)
	}
}
