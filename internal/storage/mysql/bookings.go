package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"hotel_booking/internal/domain"
)

// Bookings is the booking store plus the availability queries. Reservation
// transactions run at READ COMMITTED and serialize per room on the room row lock.
type Bookings struct {
	Table[domain.Booking]
	rooms Table[domain.Room]
}

func scanBooking(s scanner) (domain.Booking, error) {
	var b domain.Booking
	if err := s.Scan(&b.ID, &b.UID, &b.RoomID, &b.UserID, &b.DateFrom, &b.DateTo,
		&b.Price, &b.TotalDays, &b.TotalCost, &b.CreatedAt); err != nil {
		return domain.Booking{}, err
	}
	return b, nil
}

func dateArg(t time.Time) string { return t.Format(domain.DateLayout) }

func overlapArgs(rng domain.DateRange) []any {
	from, to := dateArg(rng.From), dateArg(rng.To)
	return []any{from, to, from, from}
}

func (r *Bookings) ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	return r.where(ctx, r.db, "user_id = ?", []any{userID})
}

func (r *Bookings) FreeUnits(ctx context.Context, roomID int64, rng domain.DateRange) (int, error) {
	args := append(overlapArgs(rng), roomID)
	var n int
	err := r.db.QueryRowContext(ctx, freeUnitsSQL, args...).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, mapErr(err)
	}
	return n, nil
}

func (r *Bookings) RoomsWithAvailability(ctx context.Context, hotelID int64, rng domain.DateRange) ([]domain.RoomAvailability, error) {
	args := append(overlapArgs(rng), hotelID)
	rows, err := r.db.QueryContext(ctx, roomsWithAvailabilitySQL, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []domain.RoomAvailability{}
	for rows.Next() {
		var ra domain.RoomAvailability
		var desc sql.NullString
		var services []byte
		var img sql.NullInt64
		if err := rows.Scan(&ra.ID, &ra.HotelID, &ra.Name, &desc, &ra.Price, &services,
			&ra.Quantity, &img, &ra.RoomsLeft); err != nil {
			return nil, err
		}
		ra.Description = ptrStr(desc)
		ra.Services = scanJSON(services)
		ra.ImageID = ptrInt64(img)
		out = append(out, ra)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

func (r *Bookings) HotelsByLocation(ctx context.Context, location string, rng domain.DateRange) ([]domain.HotelAvailability, error) {
	args := append(overlapArgs(rng), "%"+escapeLike(location)+"%")
	rows, err := r.db.QueryContext(ctx, hotelsByLocationSQL, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []domain.HotelAvailability{}
	for rows.Next() {
		var ha domain.HotelAvailability
		var services []byte
		var img sql.NullInt64
		var roomIDs []byte
		if err := rows.Scan(&ha.ID, &ha.Name, &ha.Location, &services, &ha.RoomsQuantity, &img,
			&ha.RoomsLeft, &roomIDs); err != nil {
			return nil, err
		}
		ha.Services = scanJSON(services)
		ha.ImageID = ptrInt64(img)
		if ha.RoomIDs, err = roomIDsFromJSON(roomIDs); err != nil {
			return nil, fmt.Errorf("room_ids of hotel %d: %w", ha.ID, err)
		}
		out = append(out, ha)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

// InTx gives fn a reservation unit of work on its own connection. READ COMMITTED
// makes the overlap count see every booking committed before the room lock was granted.
func (r *Bookings) InTx(ctx context.Context, fn func(tx domain.ReservationTx) error) error {
	return withTx(ctx, r.db, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, func(tx *sql.Tx) error {
		return fn(&reservationTx{tx: tx, r: r})
	})
}

type reservationTx struct {
	tx *sql.Tx
	r  *Bookings
}

func (t *reservationTx) LockRoom(ctx context.Context, roomID int64) (domain.Room, error) {
	return t.r.rooms.get(ctx, t.tx, roomID, " FOR UPDATE")
}

func (t *reservationTx) LockBooking(ctx context.Context, bookingID int64) (domain.Booking, error) {
	return t.r.get(ctx, t.tx, bookingID, " FOR UPDATE")
}

func (t *reservationTx) CountOverlaps(ctx context.Context, roomID int64, rng domain.DateRange, excludeID int64) (int, error) {
	args := append([]any{roomID, excludeID}, overlapArgs(rng)...)
	var n int
	if err := t.tx.QueryRowContext(ctx, countOverlapsSQL, args...).Scan(&n); err != nil {
		return 0, mapErr(err)
	}
	return n, nil
}

func (t *reservationTx) InsertBooking(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	return t.r.insert(ctx, t.tx, insertBookingSQL,
		b.UID, b.RoomID, b.UserID, dateArg(b.DateFrom), dateArg(b.DateTo), b.Price)
}

func (t *reservationTx) UpdateBooking(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	return t.r.update(ctx, t.tx, b.ID, updateBookingSQL,
		b.RoomID, dateArg(b.DateFrom), dateArg(b.DateTo), b.Price, b.ID)
}

func (t *reservationTx) DeleteBooking(ctx context.Context, bookingID int64) error {
	res, err := t.tx.ExecContext(ctx, "DELETE FROM bookings WHERE id = ?", bookingID)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFound("booking", bookingID)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

// roomIDsFromJSON reads a JSON_ARRAYAGG of room ids, dropping nulls, in ascending order.
func roomIDsFromJSON(raw []byte) ([]int64, error) {
	out := []int64{}
	if len(raw) == 0 {
		return out, nil
	}
	var ids []*int64
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, err
	}
	for _, id := range ids {
		if id != nil {
			out = append(out, *id)
		}
	}
	slices.Sort(out)
	return out, nil
}
