package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/domain"
)

// BookingService runs the reservation protocol: lock the room, recount overlapping
// bookings, then write, all inside one transaction per attempt.
type BookingService struct {
	repo     domain.BookingRepository
	attempts int
}

// NewBookingService; attempts bounds how many times a transaction is run when the
// concurrency control reports a transient conflict (2 means one retry).
func NewBookingService(r domain.BookingRepository, attempts int) *BookingService {
	if attempts <= 0 {
		attempts = 2
	}
	return &BookingService{repo: r, attempts: attempts}
}

// Reserve books one unit of roomID for userID if a unit is still free at commit time.
func (s *BookingService) Reserve(ctx context.Context, userID, roomID int64, rng domain.DateRange) (domain.Booking, error) {
	oc := opContext{op: "reserve", userID: userID, roomID: roomID, rng: rng}
	start := time.Now()
	if err := checkStay(rng); err != nil {
		return domain.Booking{}, s.finish(oc, start, err)
	}

	var out domain.Booking
	err := s.inTx(ctx, oc.op, func(tx domain.ReservationTx) error {
		room, err := tx.LockRoom(ctx, roomID)
		if err != nil {
			return err
		}
		n, err := tx.CountOverlaps(ctx, roomID, rng, 0)
		if err != nil {
			return err
		}
		if room.Quantity-n <= 0 {
			return domain.ErrNoAvailability
		}
		b, err := tx.InsertBooking(ctx, domain.Booking{
			UID:      uuid.NewString(),
			RoomID:   roomID,
			UserID:   userID,
			DateFrom: rng.From,
			DateTo:   rng.To,
			Price:    room.Price,
		})
		if err != nil {
			return err
		}
		out = b
		return nil
	})
	return out, s.finish(oc, start, err)
}

// UpdateBooking moves a booking to another room and/or dates. Capacity is rechecked
// for the target room with the booking's own row left out of the count. The nightly
// price is recaptured only when the room changes.
func (s *BookingService) UpdateBooking(ctx context.Context, actor domain.Actor, bookingID int64, ch domain.BookingChange) (domain.Booking, error) {
	oc := opContext{op: "update", userID: actor.UserID, bookingID: bookingID}
	start := time.Now()
	if ch.Empty() {
		return domain.Booking{}, s.finish(oc, start, fmt.Errorf("%w: nothing to update", domain.ErrInvalidInput))
	}

	var out domain.Booking
	err := s.inTx(ctx, oc.op, func(tx domain.ReservationTx) error {
		cur, err := tx.LockBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if !actor.CanAccess(cur.UserID) {
			return domain.NotFound("booking", bookingID)
		}

		next := cur
		if ch.RoomID != nil {
			next.RoomID = *ch.RoomID
		}
		from, to := cur.DateFrom, cur.DateTo
		if ch.DateFrom != nil {
			from = *ch.DateFrom
		}
		if ch.DateTo != nil {
			to = *ch.DateTo
		}
		rng, err := domain.NewDateRange(from, to)
		if err != nil {
			return err
		}
		if err := checkStay(rng); err != nil {
			return err
		}
		oc.roomID, oc.rng = next.RoomID, rng

		room, err := tx.LockRoom(ctx, next.RoomID)
		if err != nil {
			return err
		}
		n, err := tx.CountOverlaps(ctx, next.RoomID, rng, cur.ID)
		if err != nil {
			return err
		}
		if room.Quantity-n <= 0 {
			return domain.ErrNoAvailability
		}

		next.DateFrom, next.DateTo = rng.From, rng.To
		if next.RoomID != cur.RoomID {
			next.Price = room.Price
		}
		b, err := tx.UpdateBooking(ctx, next)
		if err != nil {
			return err
		}
		out = b
		return nil
	})
	return out, s.finish(oc, start, err)
}

// CancelBooking deletes the booking and returns it. Free units are always recomputed
// from live rows, so a second cancel is simply not-found.
func (s *BookingService) CancelBooking(ctx context.Context, actor domain.Actor, bookingID int64) (domain.Booking, error) {
	oc := opContext{op: "cancel", userID: actor.UserID, bookingID: bookingID}
	start := time.Now()

	var out domain.Booking
	err := s.inTx(ctx, oc.op, func(tx domain.ReservationTx) error {
		b, err := tx.LockBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if !actor.CanAccess(b.UserID) {
			return domain.NotFound("booking", bookingID)
		}
		if err := tx.DeleteBooking(ctx, bookingID); err != nil {
			return err
		}
		oc.roomID, oc.rng = b.RoomID, b.Range()
		out = b
		return nil
	})
	return out, s.finish(oc, start, err)
}

func (s *BookingService) GetBooking(ctx context.Context, actor domain.Actor, bookingID int64) (domain.Booking, error) {
	b, err := s.repo.Get(ctx, bookingID)
	if err != nil {
		return domain.Booking{}, storageErr(err, "get booking", bookingID)
	}
	if !actor.CanAccess(b.UserID) {
		return domain.Booking{}, domain.NotFound("booking", bookingID)
	}
	return b, nil
}

func (s *BookingService) ListBookings(ctx context.Context, actor domain.Actor) ([]domain.Booking, error) {
	bs, err := s.repo.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, storageErr(err, "list bookings", actor.UserID)
	}
	return bs, nil
}

// inTx runs fn in a fresh transaction, retrying only transient conflicts. When the
// retries run out the answer is capacity-exhausted, never a raw storage error.
func (s *BookingService) inTx(ctx context.Context, op string, fn func(tx domain.ReservationTx) error) error {
	var err error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		err = s.repo.InTx(ctx, fn)
		if !errors.Is(err, domain.ErrTransient) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt < s.attempts {
			observability.ObserveRetry(op)
			log.Debug().Err(err).Str("op", op).Int("attempt", attempt).Msg("transient conflict, retrying")
		}
	}
	if op == "cancel" {
		return err
	}
	return fmt.Errorf("%w: gave up after %d attempts: %v", domain.ErrNoAvailability, s.attempts, err)
}

type opContext struct {
	op        string
	userID    int64
	roomID    int64
	bookingID int64
	rng       domain.DateRange
}

// finish records the outcome and converts unexpected failures into ErrInternal.
func (s *BookingService) finish(oc opContext, start time.Time, err error) error {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNoAvailability):
		outcome = "no_availability"
	case errors.Is(err, domain.ErrNotFound):
		outcome = "not_found"
	case errors.Is(err, domain.ErrInvalidRange), errors.Is(err, domain.ErrInvalidInput):
		outcome = "invalid"
	case errors.Is(err, domain.ErrAlreadyExists):
		// uid or other unique constraint tripped by a concurrent writer
		outcome = "no_availability"
		err = fmt.Errorf("%w: %v", domain.ErrNoAvailability, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		outcome = "canceled"
	default:
		outcome = "error"
		ev := log.Error().Err(err).
			Str("op", oc.op).
			Int64("user_id", oc.userID).
			Int64("room_id", oc.roomID).
			Int64("booking_id", oc.bookingID)
		if !oc.rng.From.IsZero() {
			ev = ev.Str("date_from", oc.rng.From.Format(domain.DateLayout)).
				Str("date_to", oc.rng.To.Format(domain.DateLayout))
		}
		ev.Msg("reservation failed")
		err = fmt.Errorf("%s: %w", oc.op, domain.ErrInternal)
	}
	observability.ObserveReservation(oc.op, outcome, time.Since(start))
	if outcome != "ok" && outcome != "error" {
		log.Debug().Str("op", oc.op).Str("outcome", outcome).Int64("room_id", oc.roomID).Msg("reservation rejected")
	}
	return err
}

func checkStay(rng domain.DateRange) error {
	if err := rng.Validate(); err != nil {
		return err
	}
	if rng.Nights() > domain.MaxStayNights {
		return fmt.Errorf("%w: stay longer than %d nights", domain.ErrInvalidRange, domain.MaxStayNights)
	}
	return nil
}

// storageErr passes domain errors through and hides everything else behind ErrInternal.
func storageErr(err error, what string, id int64) error {
	for _, known := range []error{
		domain.ErrNotFound, domain.ErrAlreadyExists, domain.ErrInvalidInput,
		domain.ErrInvalidRange, domain.ErrForbidden, domain.ErrUnauthorized,
		context.Canceled, context.DeadlineExceeded,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	log.Error().Err(err).Int64("id", id).Msg(what + " failed")
	return fmt.Errorf("%s: %w", what, domain.ErrInternal)
}
