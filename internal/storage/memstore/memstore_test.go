package memstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_booking/internal/domain"
	"hotel_booking/internal/storage/memstore"
)

func seedRoom(t *testing.T, db *memstore.DB) (domain.Room, domain.User) {
	t.Helper()
	ctx := context.Background()
	h, err := db.Hotels.Create(ctx, domain.Hotel{Name: "Mem", Location: "Kazan"})
	require.NoError(t, err)
	rm, err := db.Rooms.Create(ctx, domain.Room{HotelID: h.ID, Name: "Std", Price: 10, Quantity: 1})
	require.NoError(t, err)
	return rm, db.Users.AddUser(domain.User{Email: "mem@x.io"})
}

func stay(t *testing.T) domain.DateRange {
	t.Helper()
	r, err := domain.ParseDateRange("2024-05-01", "2024-05-03")
	require.NoError(t, err)
	return r
}

func TestInTx_RoomDeletedBeforeCommit(t *testing.T) {
	db := memstore.New()
	ctx := context.Background()
	rm, u := seedRoom(t, db)
	r := stay(t)

	err := db.Bookings.InTx(ctx, func(tx domain.ReservationTx) error {
		if _, err := tx.InsertBooking(ctx, domain.Booking{UID: "b-1", RoomID: rm.ID, UserID: u.ID,
			DateFrom: r.From, DateTo: r.To, Price: rm.Price}); err != nil {
			return err
		}
		_, err := db.Rooms.Delete(ctx, rm.ID)
		return err
	})
	require.ErrorIs(t, err, domain.ErrNotFound)

	bs, err := db.Bookings.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, bs)
}

func TestInTx_UpdateOfCascadedBooking(t *testing.T) {
	db := memstore.New()
	ctx := context.Background()
	rm, u := seedRoom(t, db)
	r := stay(t)

	var b domain.Booking
	require.NoError(t, db.Bookings.InTx(ctx, func(tx domain.ReservationTx) error {
		var err error
		b, err = tx.InsertBooking(ctx, domain.Booking{UID: "b-2", RoomID: rm.ID, UserID: u.ID,
			DateFrom: r.From, DateTo: r.To, Price: rm.Price})
		return err
	}))

	err := db.Bookings.InTx(ctx, func(tx domain.ReservationTx) error {
		if _, err := tx.UpdateBooking(ctx, b); err != nil {
			return err
		}
		_, err := db.Users.Delete(ctx, u.ID)
		return err
	})
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = db.Bookings.Get(ctx, b.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInTx_FnErrorDiscardsWrites(t *testing.T) {
	db := memstore.New()
	ctx := context.Background()
	rm, u := seedRoom(t, db)
	r := stay(t)

	err := db.Bookings.InTx(ctx, func(tx domain.ReservationTx) error {
		if _, err := tx.InsertBooking(ctx, domain.Booking{UID: "b-3", RoomID: rm.ID, UserID: u.ID,
			DateFrom: r.From, DateTo: r.To, Price: rm.Price}); err != nil {
			return err
		}
		return domain.ErrNoAvailability
	})
	require.ErrorIs(t, err, domain.ErrNoAvailability)

	n, err := db.Bookings.FreeUnits(ctx, rm.ID, r)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
