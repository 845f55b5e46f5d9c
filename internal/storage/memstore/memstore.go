// Package memstore keeps every storage port in process memory. It enforces the same
// uniqueness, foreign-key and cascade rules as the MySQL schema and serializes
// reservation transactions, so service and handler tests run against it unchanged.
package memstore

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"hotel_booking/internal/domain"
)

type state struct {
	mu   sync.RWMutex
	txMu sync.Mutex // one reservation transaction at a time

	hotels   map[int64]domain.Hotel
	rooms    map[int64]domain.Room
	users    map[int64]domain.User
	bookings map[int64]domain.Booking
	seq      map[string]int64

	transient int
	now       func() time.Time
}

func (s *state) next(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

// DB mirrors mysql.Repo: one repository per entity over shared state.
type DB struct {
	Hotels   *Hotels
	Rooms    *Rooms
	Users    *Users
	Bookings *Bookings

	s *state
}

func New() *DB {
	s := &state{
		hotels:   map[int64]domain.Hotel{},
		rooms:    map[int64]domain.Room{},
		users:    map[int64]domain.User{},
		bookings: map[int64]domain.Booking{},
		seq:      map[string]int64{},
		now:      func() time.Time { return time.Now().UTC() },
	}
	return &DB{
		Hotels: &Hotels{table[domain.Hotel]{s: s, entity: "hotel",
			rows: func(s *state) map[int64]domain.Hotel { return s.hotels }, onDelete: dropHotel}},
		Rooms: &Rooms{table[domain.Room]{s: s, entity: "room",
			rows: func(s *state) map[int64]domain.Room { return s.rooms }, onDelete: dropRoom}},
		Users: &Users{table[domain.User]{s: s, entity: "user",
			rows: func(s *state) map[int64]domain.User { return s.users }, onDelete: dropUser}},
		Bookings: &Bookings{table[domain.Booking]{s: s, entity: "booking",
			rows: func(s *state) map[int64]domain.Booking { return s.bookings }}},
		s: s,
	}
}

// FailTransient makes the next n reservation transactions fail the way a deadlock would.
func (db *DB) FailTransient(n int) {
	db.s.mu.Lock()
	db.s.transient = n
	db.s.mu.Unlock()
}

// table is the in-memory counterpart of mysql.Table.
type table[T any] struct {
	s        *state
	entity   string
	rows     func(*state) map[int64]T
	onDelete func(s *state, v T) // cascades, called with mu held
}

func (t table[T]) Get(_ context.Context, id int64) (T, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	v, ok := t.rows(t.s)[id]
	if !ok {
		var zero T
		return zero, domain.NotFound(t.entity, id)
	}
	return v, nil
}

func (t table[T]) List(_ context.Context) ([]T, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	return t.where(func(T) bool { return true }), nil
}

func (t table[T]) Delete(_ context.Context, id int64) (T, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	rows := t.rows(t.s)
	v, ok := rows[id]
	if !ok {
		var zero T
		return zero, domain.NotFound(t.entity, id)
	}
	delete(rows, id)
	if t.onDelete != nil {
		t.onDelete(t.s, v)
	}
	return v, nil
}

// where returns matching rows ordered by id; caller holds mu.
func (t table[T]) where(keep func(T) bool) []T {
	rows := t.rows(t.s)
	out := []T{}
	for _, id := range slices.Sorted(maps.Keys(rows)) {
		if keep(rows[id]) {
			out = append(out, rows[id])
		}
	}
	return out
}

func dropHotel(s *state, h domain.Hotel) {
	for id, r := range s.rooms {
		if r.HotelID == h.ID {
			delete(s.rooms, id)
			dropRoom(s, r)
		}
	}
}

func dropRoom(s *state, r domain.Room) {
	for id, b := range s.bookings {
		if b.RoomID == r.ID {
			delete(s.bookings, id)
		}
	}
}

func dropUser(s *state, u domain.User) {
	for id, b := range s.bookings {
		if b.UserID == u.ID {
			delete(s.bookings, id)
		}
	}
}

func duplicate(what, key string) error {
	return fmt.Errorf("%w: %s %q", domain.ErrAlreadyExists, what, key)
}

func missingParent(what string) error {
	return fmt.Errorf("referenced %s: %w", what, domain.ErrNotFound)
}

// ---- hotels ----

type Hotels struct{ table[domain.Hotel] }

func (r *Hotels) Create(_ context.Context, h domain.Hotel) (domain.Hotel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.nameTaken(h.Name, 0) {
		return domain.Hotel{}, duplicate("hotel", h.Name)
	}
	h.ID = r.s.next("hotels")
	h.Services = services(h.Services)
	r.s.hotels[h.ID] = h
	return h, nil
}

func (r *Hotels) Update(_ context.Context, h domain.Hotel) (domain.Hotel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.hotels[h.ID]; !ok {
		return domain.Hotel{}, domain.NotFound("hotel", h.ID)
	}
	if r.nameTaken(h.Name, h.ID) {
		return domain.Hotel{}, duplicate("hotel", h.Name)
	}
	h.Services = services(h.Services)
	r.s.hotels[h.ID] = h
	return h, nil
}

func (r *Hotels) GetByName(_ context.Context, name string) (domain.Hotel, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, h := range r.s.hotels {
		if strings.EqualFold(h.Name, name) {
			return h, nil
		}
	}
	return domain.Hotel{}, fmt.Errorf("hotel: %w", domain.ErrNotFound)
}

func (r *Hotels) nameTaken(name string, self int64) bool {
	for _, h := range r.s.hotels {
		if h.ID != self && strings.EqualFold(h.Name, name) {
			return true
		}
	}
	return false
}

// ---- rooms ----

type Rooms struct{ table[domain.Room] }

func (r *Rooms) Create(_ context.Context, rm domain.Room) (domain.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.hotels[rm.HotelID]; !ok {
		return domain.Room{}, missingParent("hotel")
	}
	if r.nameTaken(rm.HotelID, rm.Name, 0) {
		return domain.Room{}, duplicate("room", rm.Name)
	}
	rm.ID = r.s.next("rooms")
	rm.Services = services(rm.Services)
	r.s.rooms[rm.ID] = rm
	return rm, nil
}

func (r *Rooms) Update(_ context.Context, rm domain.Room) (domain.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.rooms[rm.ID]; !ok {
		return domain.Room{}, domain.NotFound("room", rm.ID)
	}
	if r.nameTaken(rm.HotelID, rm.Name, rm.ID) {
		return domain.Room{}, duplicate("room", rm.Name)
	}
	rm.Services = services(rm.Services)
	r.s.rooms[rm.ID] = rm
	return rm, nil
}

func (r *Rooms) ListByHotel(_ context.Context, hotelID int64) ([]domain.Room, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.where(func(rm domain.Room) bool { return rm.HotelID == hotelID }), nil
}

func (r *Rooms) nameTaken(hotelID int64, name string, self int64) bool {
	for _, rm := range r.s.rooms {
		if rm.ID != self && rm.HotelID == hotelID && strings.EqualFold(rm.Name, name) {
			return true
		}
	}
	return false
}

// ---- users ----

type Users struct{ table[domain.User] }

func (r *Users) Create(_ context.Context, u domain.User) (domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.users {
		if strings.EqualFold(o.Email, u.Email) {
			return domain.User{}, duplicate("user", u.Email)
		}
	}
	u.ID = r.s.next("users")
	r.s.users[u.ID] = u
	return u, nil
}

func (r *Users) GetByEmail(_ context.Context, email string) (domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return domain.User{}, fmt.Errorf("user: %w", domain.ErrNotFound)
}

// AddUser stores a user as-is; tests use it to create admins.
func (r *Users) AddUser(u domain.User) domain.User {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u.ID = r.s.next("users")
	r.s.users[u.ID] = u
	return u
}

func services(v []string) []string {
	if v == nil {
		return []string{}
	}
	return slices.Clone(v)
}
