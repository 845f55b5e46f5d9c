package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"hotel_booking/internal/domain"
)

// HotelFixture is one seed record: a hotel with its room types inline.
type HotelFixture struct {
	domain.Hotel
	Rooms []domain.Room `json:"rooms"`
}

func LoadFixtures(r io.Reader) ([]HotelFixture, error) {
	var out []HotelFixture
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	return out, nil
}

type HotelFinder interface {
	GetByName(ctx context.Context, name string) (domain.Hotel, error)
}

// Seeder loads fixtures through the catalog, so validation and cache eviction apply.
type Seeder struct {
	catalog *CatalogService
	finder  HotelFinder
}

func NewSeeder(c *CatalogService, f HotelFinder) *Seeder {
	return &Seeder{catalog: c, finder: f}
}

// Seed creates the hotel and any of its rooms that are not there yet, matching rooms
// by name. A hotel left half-seeded by an earlier failure is completed on the next run.
// It reports whether anything was created.
func (s *Seeder) Seed(ctx context.Context, fx HotelFixture) (bool, error) {
	h, err := s.finder.GetByName(ctx, fx.Name)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h, err = s.createHotel(ctx, fx)
		if errors.Is(err, domain.ErrAlreadyExists) {
			// another seeder won the race
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return true, s.createRooms(ctx, h, fx.Rooms)
	case err != nil:
		return false, err
	}

	existing, err := s.catalog.rooms.ListByHotel(ctx, h.ID)
	if err != nil {
		return false, fmt.Errorf("rooms of hotel %q: %w", h.Name, err)
	}
	have := make(map[string]bool, len(existing))
	for _, r := range existing {
		have[r.Name] = true
	}
	var missing []domain.Room
	for _, r := range fx.Rooms {
		if !have[r.Name] {
			missing = append(missing, r)
		}
	}
	if len(missing) == 0 {
		log.Debug().Str("hotel", fx.Name).Msg("already seeded, skipping")
		return false, nil
	}
	log.Info().Str("hotel", fx.Name).Int("missing", len(missing)).Msg("completing partially seeded hotel")
	return true, s.createRooms(ctx, h, missing)
}

func (s *Seeder) createHotel(ctx context.Context, fx HotelFixture) (domain.Hotel, error) {
	h := fx.Hotel
	h.ID = 0
	if h.RoomsQuantity == 0 {
		for _, r := range fx.Rooms {
			h.RoomsQuantity += r.Quantity
		}
	}
	return s.catalog.CreateHotel(ctx, h)
}

func (s *Seeder) createRooms(ctx context.Context, h domain.Hotel, rooms []domain.Room) error {
	for _, r := range rooms {
		r.ID = 0
		if _, err := s.catalog.CreateRoom(ctx, h.ID, r); err != nil {
			return fmt.Errorf("room %q of hotel %q: %w", r.Name, h.Name, err)
		}
	}
	return nil
}
