package domain

import "context"

// Store is the generic CRUD surface shared by every entity repository.
type Store[T any] interface {
	Get(ctx context.Context, id int64) (T, error)
	List(ctx context.Context) ([]T, error)
	// Delete removes the row and returns it as it was.
	Delete(ctx context.Context, id int64) (T, error)
}

type HotelRepository interface {
	Store[Hotel]
	Create(ctx context.Context, h Hotel) (Hotel, error)
	Update(ctx context.Context, h Hotel) (Hotel, error)
}

type RoomRepository interface {
	Store[Room]
	Create(ctx context.Context, r Room) (Room, error)
	Update(ctx context.Context, r Room) (Room, error)
	ListByHotel(ctx context.Context, hotelID int64) ([]Room, error)
}

type UserRepository interface {
	Store[User]
	Create(ctx context.Context, u User) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
}

// AvailabilityReader answers the read-side availability questions. Read committed
// consistency is enough here; the answers are advisory until a reservation commits.
type AvailabilityReader interface {
	// FreeUnits returns quantity minus overlapping bookings; 0 for a missing room.
	FreeUnits(ctx context.Context, roomID int64, rng DateRange) (int, error)
	RoomsWithAvailability(ctx context.Context, hotelID int64, rng DateRange) ([]RoomAvailability, error)
	// HotelsByLocation returns only hotels with RoomsLeft > 0.
	HotelsByLocation(ctx context.Context, location string, rng DateRange) ([]HotelAvailability, error)
}

type BookingRepository interface {
	AvailabilityReader
	Get(ctx context.Context, id int64) (Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]Booking, error)
	// InTx runs fn inside one transaction owned by the caller. fn's error rolls back.
	InTx(ctx context.Context, fn func(tx ReservationTx) error) error
}

// ReservationTx is the unit of work of the reservation protocol. LockRoom must hold
// the room exclusively until the transaction ends so that no other booking on that
// room can commit between the capacity read and the write.
type ReservationTx interface {
	LockRoom(ctx context.Context, roomID int64) (Room, error)
	LockBooking(ctx context.Context, bookingID int64) (Booking, error)
	// CountOverlaps counts bookings on roomID overlapping rng, ignoring excludeID (0 = none).
	CountOverlaps(ctx context.Context, roomID int64, rng DateRange, excludeID int64) (int, error)
	InsertBooking(ctx context.Context, b Booking) (Booking, error)
	UpdateBooking(ctx context.Context, b Booking) (Booking, error)
	DeleteBooking(ctx context.Context, bookingID int64) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
