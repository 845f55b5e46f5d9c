package mysql

import (
	"context"
	"database/sql"

	"hotel_booking/internal/domain"
)

// Repo bundles the per-entity repositories over one connection pool. The pool is
// owned by the caller (cmd/api opens and closes it).
type Repo struct {
	Hotels   *Hotels
	Rooms    *Rooms
	Users    *Users
	Bookings *Bookings
}

// New wires every repository. Open db with a SessionDSN so reservations get the
// configured lock wait timeout.
func New(db *sql.DB) *Repo {
	rooms := Table[domain.Room]{db: db, name: "rooms", entity: "room", columns: roomColumns, scan: scanRoom}
	return &Repo{
		Hotels: &Hotels{Table[domain.Hotel]{db: db, name: "hotels", entity: "hotel", columns: hotelColumns, scan: scanHotel}},
		Rooms:  &Rooms{rooms},
		Users:  &Users{Table[domain.User]{db: db, name: "users", entity: "user", columns: userColumns, scan: scanUser}},
		Bookings: &Bookings{
			Table: Table[domain.Booking]{db: db, name: "bookings", entity: "booking", columns: bookingColumns, scan: scanBooking},
			rooms: rooms,
		},
	}
}

// ---- hotels ----

type Hotels struct{ Table[domain.Hotel] }

func scanHotel(s scanner) (domain.Hotel, error) {
	var h domain.Hotel
	var services []byte
	var img sql.NullInt64
	if err := s.Scan(&h.ID, &h.Name, &h.Location, &services, &h.RoomsQuantity, &img); err != nil {
		return domain.Hotel{}, err
	}
	h.Services = scanJSON(services)
	h.ImageID = ptrInt64(img)
	return h, nil
}

func (r *Hotels) Create(ctx context.Context, h domain.Hotel) (domain.Hotel, error) {
	return r.insert(ctx, r.db, insertHotelSQL,
		h.Name, h.Location, valJSON(h.Services), h.RoomsQuantity, valInt64(h.ImageID))
}

func (r *Hotels) Update(ctx context.Context, h domain.Hotel) (domain.Hotel, error) {
	return r.update(ctx, r.db, h.ID, updateHotelSQL,
		h.Name, h.Location, valJSON(h.Services), h.RoomsQuantity, valInt64(h.ImageID), h.ID)
}

// GetByName backs the seeder's idempotency check.
func (r *Hotels) GetByName(ctx context.Context, name string) (domain.Hotel, error) {
	return r.one(ctx, r.db, "name = ?", name)
}

// ---- rooms ----

type Rooms struct{ Table[domain.Room] }

func scanRoom(s scanner) (domain.Room, error) {
	var rm domain.Room
	var desc sql.NullString
	var services []byte
	var img sql.NullInt64
	if err := s.Scan(&rm.ID, &rm.HotelID, &rm.Name, &desc, &rm.Price, &services, &rm.Quantity, &img); err != nil {
		return domain.Room{}, err
	}
	rm.Description = ptrStr(desc)
	rm.Services = scanJSON(services)
	rm.ImageID = ptrInt64(img)
	return rm, nil
}

func (r *Rooms) Create(ctx context.Context, rm domain.Room) (domain.Room, error) {
	return r.insert(ctx, r.db, insertRoomSQL,
		rm.HotelID, rm.Name, valStr(rm.Description), rm.Price, valJSON(rm.Services), rm.Quantity, valInt64(rm.ImageID))
}

func (r *Rooms) Update(ctx context.Context, rm domain.Room) (domain.Room, error) {
	return r.update(ctx, r.db, rm.ID, updateRoomSQL,
		rm.Name, valStr(rm.Description), rm.Price, valJSON(rm.Services), rm.Quantity, valInt64(rm.ImageID), rm.ID)
}

func (r *Rooms) ListByHotel(ctx context.Context, hotelID int64) ([]domain.Room, error) {
	return r.where(ctx, r.db, "hotel_id = ?", []any{hotelID})
}

// ---- users ----

type Users struct{ Table[domain.User] }

func scanUser(s scanner) (domain.User, error) {
	var u domain.User
	if err := s.Scan(&u.ID, &u.Email, &u.HashedPassword, &u.Admin); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (r *Users) Create(ctx context.Context, u domain.User) (domain.User, error) {
	return r.insert(ctx, r.db, insertUserSQL, u.Email, u.HashedPassword, u.Admin)
}

func (r *Users) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.one(ctx, r.db, "email = ?", email)
}
