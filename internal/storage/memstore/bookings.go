package memstore

import (
	"context"
	"fmt"
	"strings"

	"hotel_booking/internal/domain"
)

type Bookings struct{ table[domain.Booking] }

func (r *Bookings) ListByUser(_ context.Context, userID int64) ([]domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.where(func(b domain.Booking) bool { return b.UserID == userID }), nil
}

// overlapping counts bookings on roomID overlapping rng; caller holds mu.
func (s *state) overlapping(roomID int64, rng domain.DateRange, excludeID int64) int {
	n := 0
	for _, b := range s.bookings {
		if b.RoomID == roomID && b.ID != excludeID && domain.Overlaps(b.Range(), rng) {
			n++
		}
	}
	return n
}

func (r *Bookings) FreeUnits(_ context.Context, roomID int64, rng domain.DateRange) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rm, ok := r.s.rooms[roomID]
	if !ok {
		return 0, nil
	}
	return rm.Quantity - r.s.overlapping(roomID, rng, 0), nil
}

func (r *Bookings) RoomsWithAvailability(_ context.Context, hotelID int64, rng domain.DateRange) ([]domain.RoomAvailability, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rooms := table[domain.Room]{s: r.s, rows: func(s *state) map[int64]domain.Room { return s.rooms }}
	out := []domain.RoomAvailability{}
	for _, rm := range rooms.where(func(rm domain.Room) bool { return rm.HotelID == hotelID }) {
		out = append(out, domain.RoomAvailability{Room: rm, RoomsLeft: rm.Quantity - r.s.overlapping(rm.ID, rng, 0)})
	}
	return out, nil
}

func (r *Bookings) HotelsByLocation(_ context.Context, location string, rng domain.DateRange) ([]domain.HotelAvailability, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	needle := strings.ToLower(location)
	hotels := table[domain.Hotel]{s: r.s, rows: func(s *state) map[int64]domain.Hotel { return s.hotels }}
	rooms := table[domain.Room]{s: r.s, rows: func(s *state) map[int64]domain.Room { return s.rooms }}

	out := []domain.HotelAvailability{}
	for _, h := range hotels.where(func(h domain.Hotel) bool { return strings.Contains(strings.ToLower(h.Location), needle) }) {
		ha := domain.HotelAvailability{Hotel: h, RoomIDs: []int64{}}
		for _, rm := range rooms.where(func(rm domain.Room) bool { return rm.HotelID == h.ID }) {
			left := max(rm.Quantity-r.s.overlapping(rm.ID, rng, 0), 0)
			if left > 0 {
				ha.RoomsLeft += left
				ha.RoomIDs = append(ha.RoomIDs, rm.ID)
			}
		}
		if ha.RoomsLeft > 0 {
			out = append(out, ha)
		}
	}
	return out, nil
}

// InTx runs fn with every other reservation transaction excluded. Writes are staged
// and applied only when fn returns nil. Catalog deletes do not take txMu, so each
// staged write re-checks its parents at commit the way the foreign keys would.
func (r *Bookings) InTx(ctx context.Context, fn func(tx domain.ReservationTx) error) error {
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	r.s.mu.Lock()
	if r.s.transient > 0 {
		r.s.transient--
		r.s.mu.Unlock()
		return fmt.Errorf("%w: injected deadlock", domain.ErrTransient)
	}
	r.s.mu.Unlock()

	t := &tx{s: r.s}
	if err := fn(t); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, op := range t.staged {
		if op.check == nil {
			continue
		}
		if err := op.check(); err != nil {
			return err
		}
	}
	for _, op := range t.staged {
		op.apply()
	}
	return nil
}

type stagedOp struct {
	check func() error
	apply func()
}

type tx struct {
	s      *state
	staged []stagedOp
}

func (t *tx) LockRoom(_ context.Context, roomID int64) (domain.Room, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	rm, ok := t.s.rooms[roomID]
	if !ok {
		return domain.Room{}, domain.NotFound("room", roomID)
	}
	return rm, nil
}

func (t *tx) LockBooking(_ context.Context, bookingID int64) (domain.Booking, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	b, ok := t.s.bookings[bookingID]
	if !ok {
		return domain.Booking{}, domain.NotFound("booking", bookingID)
	}
	return b, nil
}

func (t *tx) CountOverlaps(_ context.Context, roomID int64, rng domain.DateRange, excludeID int64) (int, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	return t.s.overlapping(roomID, rng, excludeID), nil
}

func (t *tx) InsertBooking(_ context.Context, b domain.Booking) (domain.Booking, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if err := t.parents(b); err != nil {
		return domain.Booking{}, err
	}
	for _, o := range t.s.bookings {
		if o.UID == b.UID {
			return domain.Booking{}, duplicate("booking", b.UID)
		}
	}
	b = b.Derive()
	b.ID = t.s.next("bookings")
	b.CreatedAt = t.s.now()
	t.staged = append(t.staged, stagedOp{
		check: func() error { return t.parents(b) },
		apply: func() { t.s.bookings[b.ID] = b },
	})
	return b, nil
}

func (t *tx) UpdateBooking(_ context.Context, b domain.Booking) (domain.Booking, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	if _, ok := t.s.bookings[b.ID]; !ok {
		return domain.Booking{}, domain.NotFound("booking", b.ID)
	}
	if err := t.parents(b); err != nil {
		return domain.Booking{}, err
	}
	b = b.Derive()
	t.staged = append(t.staged, stagedOp{
		check: func() error {
			if _, ok := t.s.bookings[b.ID]; !ok {
				return domain.NotFound("booking", b.ID)
			}
			return t.parents(b)
		},
		apply: func() { t.s.bookings[b.ID] = b },
	})
	return b, nil
}

func (t *tx) DeleteBooking(_ context.Context, bookingID int64) error {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	if _, ok := t.s.bookings[bookingID]; !ok {
		return domain.NotFound("booking", bookingID)
	}
	t.staged = append(t.staged, stagedOp{apply: func() { delete(t.s.bookings, bookingID) }})
	return nil
}

func (t *tx) parents(b domain.Booking) error {
	if _, ok := t.s.rooms[b.RoomID]; !ok {
		return missingParent("room")
	}
	if _, ok := t.s.users[b.UserID]; !ok {
		return missingParent("user")
	}
	return nil
}
