package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_booking/internal/domain"
)

func TestUsers_RegisterAndVerify(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u, err := e.u.Register(ctx, " Guest@Example.com ", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "guest@example.com", u.Email)
	assert.NotEqual(t, "correct-horse", u.HashedPassword)

	_, err = e.u.Register(ctx, "guest@example.com", "another-pass")
	require.ErrorIs(t, err, domain.ErrAlreadyExists)
	_, err = e.u.Register(ctx, "not-an-email", "long-enough")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = e.u.Register(ctx, "short@example.com", "short")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := e.u.Verify(ctx, "GUEST@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = e.u.Verify(ctx, "guest@example.com", "wrong-horse")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = e.u.Verify(ctx, "nobody@example.com", "correct-horse")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestUsers_DeleteIsAdminOnlyAndCascades(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	h := e.hotel(t, "Del", "Altai")
	r := e.room(t, h.ID, "Std", 10, 1)
	u := e.user(t, "bye@x.io")
	stay := rng(t, "2024-01-01", "2024-01-03")
	_, err := e.b.Reserve(ctx, u.ID, r.ID, stay)
	require.NoError(t, err)

	_, err = e.u.Delete(ctx, domain.Actor{UserID: u.ID}, u.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = e.u.Delete(ctx, domain.Actor{UserID: 100, Admin: true}, u.ID)
	require.NoError(t, err)

	free, err := e.q.FreeUnits(ctx, r.ID, stay)
	require.NoError(t, err)
	assert.Equal(t, 1, free)

	_, err = e.u.Get(ctx, u.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
