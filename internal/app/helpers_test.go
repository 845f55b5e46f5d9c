package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	redisad "hotel_booking/internal/adapters/redis"
	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
	"hotel_booking/internal/storage/memstore"
)

type env struct {
	db    *memstore.DB
	mr    *miniredis.Miniredis
	cache *redisad.Cache

	q *app.QueryService
	c *app.CatalogService
	b *app.BookingService
	u *app.UserService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := redisad.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = cache.Close() })

	db := memstore.New()
	return &env{
		db:    db,
		mr:    mr,
		cache: cache,
		q:     app.NewQueryService(db.Hotels, db.Rooms, db.Bookings, cache, time.Minute, 30*time.Second),
		c:     app.NewCatalogService(db.Hotels, db.Rooms, cache),
		b:     app.NewBookingService(db.Bookings, 2),
		u:     app.NewUserService(db.Users, bcrypt.MinCost),
	}
}

func (e *env) hotel(t *testing.T, name, location string) domain.Hotel {
	t.Helper()
	h, err := e.c.CreateHotel(context.Background(), domain.Hotel{Name: name, Location: location})
	require.NoError(t, err)
	return h
}

func (e *env) room(t *testing.T, hotelID int64, name string, price int64, qty int) domain.Room {
	t.Helper()
	r, err := e.c.CreateRoom(context.Background(), hotelID, domain.Room{Name: name, Price: price, Quantity: qty})
	require.NoError(t, err)
	return r
}

func (e *env) user(t *testing.T, email string) domain.User {
	t.Helper()
	return e.db.Users.AddUser(domain.User{Email: email})
}

func rng(t *testing.T, from, to string) domain.DateRange {
	t.Helper()
	r, err := domain.ParseDateRange(from, to)
	require.NoError(t, err)
	return r
}

func date(t *testing.T, s string) *time.Time {
	t.Helper()
	d, err := time.Parse(domain.DateLayout, s)
	require.NoError(t, err)
	return &d
}

func ptr[T any](v T) *T { return &v }
