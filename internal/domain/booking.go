package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	DateLayout = "2006-01-02"

	// MaxStayNights bounds a single request; longer ranges are rejected at the edge.
	MaxStayNights = 31
)

// DateRange is a stay: From is the check-in date, To the check-out date.
// To is exclusive of the last booked night, so Nights() == To - From.
type DateRange struct {
	From time.Time
	To   time.Time
}

// NewDateRange truncates both ends to UTC calendar dates and rejects From > To.
func NewDateRange(from, to time.Time) (DateRange, error) {
	r := DateRange{From: day(from), To: day(to)}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

func ParseDateRange(from, to string) (DateRange, error) {
	f, err := time.Parse(DateLayout, from)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: date_from %q", ErrInvalidRange, from)
	}
	t, err := time.Parse(DateLayout, to)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: date_to %q", ErrInvalidRange, to)
	}
	return NewDateRange(f, t)
}

func (r DateRange) Validate() error {
	if r.From.IsZero() || r.To.IsZero() {
		return fmt.Errorf("%w: both dates are required", ErrInvalidRange)
	}
	if r.From.After(r.To) {
		return fmt.Errorf("%w: date_from %s is after date_to %s", ErrInvalidRange, r.From.Format(DateLayout), r.To.Format(DateLayout))
	}
	return nil
}

func (r DateRange) Nights() int {
	return int(r.To.Sub(r.From).Hours() / 24)
}

func (r DateRange) String() string {
	return r.From.Format(DateLayout) + ".." + r.To.Format(DateLayout)
}

// Overlaps reports whether an existing booking on the same room takes a unit away from query.
// The rule is kept verbatim from the storage query so both agree:
//
//	existing.From in [query.From, query.To]
//	OR (existing.From <= query.From AND existing.To > query.From)
//
// It is not symmetric. A booking that starts on the query's check-out day still counts.
func Overlaps(existing, query DateRange) bool {
	if !existing.From.Before(query.From) && !existing.From.After(query.To) {
		return true
	}
	return !existing.From.After(query.From) && existing.To.After(query.From)
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Booking is one reserved unit of a room. TotalDays and TotalCost are generated by the
// database from the dates and Price and are never written by the application.
type Booking struct {
	ID        int64     `json:"id"`
	UID       string    `json:"uid"`
	RoomID    int64     `json:"room_id"`
	UserID    int64     `json:"user_id"`
	DateFrom  time.Time `json:"date_from"`
	DateTo    time.Time `json:"date_to"`
	Price     int64     `json:"price"`
	TotalDays int       `json:"total_days"`
	TotalCost int64     `json:"total_cost"`
	CreatedAt time.Time `json:"created_at"`
}

func (b Booking) Range() DateRange { return DateRange{From: b.DateFrom, To: b.DateTo} }

// bookingJSON renders the stay as calendar dates, the same layout requests use.
type bookingJSON struct {
	bookingFields
	DateFrom string `json:"date_from"`
	DateTo   string `json:"date_to"`
}

type bookingFields Booking

func (b Booking) MarshalJSON() ([]byte, error) {
	return json.Marshal(bookingJSON{
		bookingFields: bookingFields(b),
		DateFrom:      b.DateFrom.Format(DateLayout),
		DateTo:        b.DateTo.Format(DateLayout),
	})
}

func (b *Booking) UnmarshalJSON(data []byte) error {
	var in bookingJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	rng, err := ParseDateRange(in.DateFrom, in.DateTo)
	if err != nil {
		return err
	}
	*b = Booking(in.bookingFields)
	b.DateFrom, b.DateTo = rng.From, rng.To
	return nil
}

// Derive recomputes the generated fields; used by stores that have no generated columns.
func (b Booking) Derive() Booking {
	b.TotalDays = b.Range().Nights()
	b.TotalCost = int64(b.TotalDays) * b.Price
	return b
}

// BookingChange is a partial update of room and/or dates.
type BookingChange struct {
	RoomID   *int64
	DateFrom *time.Time
	DateTo   *time.Time
}

func (c BookingChange) Empty() bool {
	return c.RoomID == nil && c.DateFrom == nil && c.DateTo == nil
}
