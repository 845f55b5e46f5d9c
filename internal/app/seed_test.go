package app_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
)

const fixtureJSON = `[
  {"name": "Seeded", "location": "Altai", "services": ["wifi"],
   "rooms": [{"name": "A", "price": 100, "quantity": 2}, {"name": "B", "price": 200, "quantity": 3}]}
]`

func TestSeeder_CreatesOnceThenSkips(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	fx, err := app.LoadFixtures(strings.NewReader(fixtureJSON))
	require.NoError(t, err)
	require.Len(t, fx, 1)
	require.Len(t, fx[0].Rooms, 2)

	s := app.NewSeeder(e.c, e.db.Hotels)
	created, err := s.Seed(ctx, fx[0])
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.Seed(ctx, fx[0])
	require.NoError(t, err)
	assert.False(t, created)

	hotels, err := e.q.ListHotels(ctx)
	require.NoError(t, err)
	require.Len(t, hotels, 1)
	assert.Equal(t, 5, hotels[0].RoomsQuantity)

	rooms, err := e.q.ListRooms(ctx, hotels[0].ID)
	require.NoError(t, err)
	assert.Len(t, rooms, 2)
}

func TestSeeder_CompletesHalfSeededHotel(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	fx, err := app.LoadFixtures(strings.NewReader(fixtureJSON))
	require.NoError(t, err)
	s := app.NewSeeder(e.c, e.db.Hotels)

	broken := fx[0]
	broken.Rooms = []domain.Room{fx[0].Rooms[0], {Name: "B", Price: -1, Quantity: 3}}
	created, err := s.Seed(ctx, broken)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.True(t, created)

	created, err = s.Seed(ctx, fx[0])
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.Seed(ctx, fx[0])
	require.NoError(t, err)
	assert.False(t, created)

	hotels, err := e.q.ListHotels(ctx)
	require.NoError(t, err)
	require.Len(t, hotels, 1)
	rooms, err := e.q.ListRooms(ctx, hotels[0].ID)
	require.NoError(t, err)
	names := []string{}
	for _, r := range rooms {
		names = append(names, r.Name)
	}
	assert.ElementsMatch(t, []string{"A", "B"}, names)
}

func TestLoadFixtures_Malformed(t *testing.T) {
	_, err := app.LoadFixtures(strings.NewReader(`{"name":`))
	require.Error(t, err)
}
