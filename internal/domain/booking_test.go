package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_booking/internal/domain"
)

func rng(t *testing.T, from, to string) domain.DateRange {
	t.Helper()
	r, err := domain.ParseDateRange(from, to)
	require.NoError(t, err)
	return r
}

func TestOverlaps_Predicate(t *testing.T) {
	existing := rng(t, "2024-01-10", "2024-01-20")

	cases := []struct {
		name     string
		from, to string
		want     bool
	}{
		{"query starts inside existing", "2024-01-15", "2024-01-25", true},
		{"query contains existing", "2024-01-01", "2024-01-31", true},
		{"query inside existing", "2024-01-12", "2024-01-14", true},
		{"same range", "2024-01-10", "2024-01-20", true},
		{"after existing check-out", "2024-01-21", "2024-01-30", false},
		{"before existing", "2024-01-05", "2024-01-09", false},
		// existing.From == query.To is inside the inclusive BETWEEN branch.
		{"query checks out on existing check-in", "2024-01-05", "2024-01-10", true},
		// query.From == existing.To: neither branch, the unit is free again.
		{"query checks in on existing check-out", "2024-01-20", "2024-01-25", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, domain.Overlaps(existing, rng(t, tc.from, tc.to)))
		})
	}
}

func TestOverlaps_ExistingStartsAfterQueryStart(t *testing.T) {
	// starts after the query start and ends after its end: caught by the BETWEEN branch
	existing := rng(t, "2024-02-05", "2024-02-20")
	assert.True(t, domain.Overlaps(existing, rng(t, "2024-02-01", "2024-02-10")))
}

func TestDateRange_Nights(t *testing.T) {
	assert.Equal(t, 4, rng(t, "2024-03-01", "2024-03-05").Nights())
	assert.Equal(t, 0, rng(t, "2024-03-01", "2024-03-01").Nights())
	assert.Equal(t, 2, rng(t, "2024-02-28", "2024-03-01").Nights()) // leap year
}

func TestParseDateRange_Rejects(t *testing.T) {
	_, err := domain.ParseDateRange("2024-03-05", "2024-03-01")
	require.ErrorIs(t, err, domain.ErrInvalidRange)

	_, err = domain.ParseDateRange("2024-13-01", "2024-03-01")
	require.ErrorIs(t, err, domain.ErrInvalidRange)

	_, err = domain.ParseDateRange("", "2024-03-01")
	require.ErrorIs(t, err, domain.ErrInvalidRange)
}

func TestBooking_Derive(t *testing.T) {
	r := rng(t, "2024-03-01", "2024-03-05")
	b := domain.Booking{DateFrom: r.From, DateTo: r.To, Price: 100}.Derive()
	assert.Equal(t, 4, b.TotalDays)
	assert.EqualValues(t, 400, b.TotalCost)
}

func TestBooking_JSONUsesCalendarDates(t *testing.T) {
	r := rng(t, "2024-03-01", "2024-03-05")
	b := domain.Booking{ID: 3, UID: "u-1", RoomID: 2, UserID: 9, DateFrom: r.From, DateTo: r.To, Price: 100}.Derive()

	raw, err := json.Marshal(b)
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, "2024-03-01", fields["date_from"])
	assert.Equal(t, "2024-03-05", fields["date_to"])
	assert.EqualValues(t, 400, fields["total_cost"])

	var back domain.Booking
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, back.DateFrom.Equal(r.From))
	assert.True(t, back.DateTo.Equal(r.To))
	assert.Equal(t, "u-1", back.UID)
	assert.Equal(t, 4, back.TotalDays)
}

func TestActor_CanAccess(t *testing.T) {
	assert.True(t, domain.Actor{UserID: 7}.CanAccess(7))
	assert.False(t, domain.Actor{UserID: 7}.CanAccess(8))
	assert.True(t, domain.Actor{UserID: 1, Admin: true}.CanAccess(8))
}

func TestPatches(t *testing.T) {
	name := "New"
	assert.True(t, domain.HotelPatch{}.Empty())
	h := domain.HotelPatch{Name: &name}.Apply(domain.Hotel{Name: "Old", Location: "Altai"})
	assert.Equal(t, "New", h.Name)
	assert.Equal(t, "Altai", h.Location)

	q := -1
	r := domain.RoomPatch{Quantity: &q}.Apply(domain.Room{Name: "Std", Quantity: 2})
	require.ErrorIs(t, r.Validate(), domain.ErrInvalidInput)
}
