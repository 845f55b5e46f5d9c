package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"hotel_booking/internal/domain"
)

type QueryService struct {
	hotels    domain.HotelRepository
	rooms     domain.RoomRepository
	avail     domain.AvailabilityReader
	cache     domain.Cache
	cacheTTL  time.Duration
	searchTTL time.Duration
	sf        singleflight.Group
}

func NewQueryService(h domain.HotelRepository, r domain.RoomRepository, a domain.AvailabilityReader,
	c domain.Cache, ttl, searchTTL time.Duration) *QueryService {
	return &QueryService{hotels: h, rooms: r, avail: a, cache: c, cacheTTL: ttl, searchTTL: searchTTL}
}

// searchTimeout bounds a coalesced location lookup, which runs detached from its callers.
const searchTimeout = 10 * time.Second

func hotelKey(id int64) string { return fmt.Sprintf("hotel:%d", id) }

// searchKey normalizes the location the same way the store matches it (case-insensitive).
func searchKey(location string, rng domain.DateRange) string {
	sum := sha1.Sum([]byte(strings.ToLower(location)))
	return fmt.Sprintf("search:%s:%s:%s", hex.EncodeToString(sum[:8]),
		rng.From.Format(domain.DateLayout), rng.To.Format(domain.DateLayout))
}

func (s *QueryService) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	key := hotelKey(id)
	var h domain.Hotel
	if ok, _ := s.cache.Get(ctx, key, &h); ok {
		return h, nil
	}
	h, err := s.hotels.Get(ctx, id)
	if err != nil {
		return domain.Hotel{}, storageErr(err, "get hotel", id)
	}
	_ = s.cache.Set(ctx, key, h, int(s.cacheTTL.Seconds()))
	return h, nil
}

func (s *QueryService) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	hs, err := s.hotels.List(ctx)
	if err != nil {
		return nil, storageErr(err, "list hotels", 0)
	}
	return hs, nil
}

// HotelsByLocation lists hotels whose location contains the substring and that still
// have free units for rng. Results are advisory and cached for searchTTL; identical
// concurrent searches share one storage round-trip.
func (s *QueryService) HotelsByLocation(ctx context.Context, location string, rng domain.DateRange) ([]domain.HotelAvailability, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("%w: location is required", domain.ErrInvalidInput)
	}
	if err := checkStay(rng); err != nil {
		return nil, err
	}

	key := searchKey(location, rng)
	var out []domain.HotelAvailability
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}

	// The shared lookup outlives any single caller; each caller still honors its own ctx.
	ch := s.sf.DoChan(key, func() (any, error) {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), searchTimeout)
		defer cancel()
		res, err := s.avail.HotelsByLocation(sctx, location, rng)
		if err != nil {
			return nil, err
		}
		if res == nil {
			res = []domain.HotelAvailability{}
		}
		_ = s.cache.Set(sctx, key, res, int(s.searchTTL.Seconds()))
		return res, nil
	})
	var r singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r = <-ch:
	}
	if r.Err != nil {
		return nil, storageErr(r.Err, "hotels by location", 0)
	}
	return cloneAvailability(r.Val.([]domain.HotelAvailability)), nil
}

// cloneAvailability deep-copies a result shared between coalesced callers.
func cloneAvailability(shared []domain.HotelAvailability) []domain.HotelAvailability {
	out := make([]domain.HotelAvailability, len(shared))
	for i, ha := range shared {
		ha.RoomIDs = slices.Clone(ha.RoomIDs)
		ha.Services = slices.Clone(ha.Services)
		if ha.ImageID != nil {
			id := *ha.ImageID
			ha.ImageID = &id
		}
		out[i] = ha
	}
	return out
}

func (s *QueryService) GetRoom(ctx context.Context, hotelID, roomID int64) (domain.Room, error) {
	r, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return domain.Room{}, storageErr(err, "get room", roomID)
	}
	if r.HotelID != hotelID {
		return domain.Room{}, domain.NotFound("room", roomID)
	}
	return r, nil
}

func (s *QueryService) ListRooms(ctx context.Context, hotelID int64) ([]domain.Room, error) {
	if _, err := s.GetHotel(ctx, hotelID); err != nil {
		return nil, err
	}
	rs, err := s.rooms.ListByHotel(ctx, hotelID)
	if err != nil {
		return nil, storageErr(err, "list rooms", hotelID)
	}
	return rs, nil
}

// RoomsWithAvailability annotates every room of the hotel, fully booked ones included.
func (s *QueryService) RoomsWithAvailability(ctx context.Context, hotelID int64, rng domain.DateRange) ([]domain.RoomAvailability, error) {
	if err := checkStay(rng); err != nil {
		return nil, err
	}
	if _, err := s.GetHotel(ctx, hotelID); err != nil {
		return nil, err
	}
	rs, err := s.avail.RoomsWithAvailability(ctx, hotelID, rng)
	if err != nil {
		return nil, storageErr(err, "rooms with availability", hotelID)
	}
	for i := range rs {
		rs[i].RoomsLeft = max(rs[i].RoomsLeft, 0)
		rs[i].TotalCost = rs[i].Price * int64(rng.Nights())
	}
	return rs, nil
}

// FreeUnits is the single-room answer; a negative store value (overbooked data) reads as 0.
func (s *QueryService) FreeUnits(ctx context.Context, roomID int64, rng domain.DateRange) (int, error) {
	if err := checkStay(rng); err != nil {
		return 0, err
	}
	if _, err := s.rooms.Get(ctx, roomID); err != nil {
		return 0, storageErr(err, "get room", roomID)
	}
	n, err := s.avail.FreeUnits(ctx, roomID, rng)
	if err != nil {
		return 0, storageErr(err, "free units", roomID)
	}
	return max(n, 0), nil
}
