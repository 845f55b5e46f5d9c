package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"hotel_booking/internal/domain"
)

// CatalogService owns hotel and room writes. Hotel reads are cached by QueryService,
// so every hotel write evicts its key.
type CatalogService struct {
	hotels domain.HotelRepository
	rooms  domain.RoomRepository
	cache  domain.Cache
}

func NewCatalogService(h domain.HotelRepository, r domain.RoomRepository, cache domain.Cache) *CatalogService {
	return &CatalogService{hotels: h, rooms: r, cache: cache}
}

func (s *CatalogService) CreateHotel(ctx context.Context, h domain.Hotel) (domain.Hotel, error) {
	if err := h.Validate(); err != nil {
		return domain.Hotel{}, err
	}
	out, err := s.hotels.Create(ctx, h)
	if err != nil {
		return domain.Hotel{}, storageErr(err, "create hotel", 0)
	}
	log.Info().Int64("hotel_id", out.ID).Str("name", out.Name).Msg("hotel created")
	return out, nil
}

func (s *CatalogService) UpdateHotel(ctx context.Context, id int64, p domain.HotelPatch) (domain.Hotel, error) {
	if p.Empty() {
		return domain.Hotel{}, fmt.Errorf("%w: no fields to update", domain.ErrInvalidInput)
	}
	cur, err := s.hotels.Get(ctx, id)
	if err != nil {
		return domain.Hotel{}, storageErr(err, "get hotel", id)
	}
	next := p.Apply(cur)
	if err := next.Validate(); err != nil {
		return domain.Hotel{}, err
	}
	out, err := s.hotels.Update(ctx, next)
	if err != nil {
		return domain.Hotel{}, storageErr(err, "update hotel", id)
	}
	s.invalidateHotel(ctx, id)
	return out, nil
}

// DeleteHotel removes the hotel; its rooms and their bookings go with it.
func (s *CatalogService) DeleteHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	out, err := s.hotels.Delete(ctx, id)
	if err != nil {
		return domain.Hotel{}, storageErr(err, "delete hotel", id)
	}
	s.invalidateHotel(ctx, id)
	log.Info().Int64("hotel_id", id).Msg("hotel deleted")
	return out, nil
}

func (s *CatalogService) CreateRoom(ctx context.Context, hotelID int64, r domain.Room) (domain.Room, error) {
	r.HotelID = hotelID
	if err := r.Validate(); err != nil {
		return domain.Room{}, err
	}
	if _, err := s.hotels.Get(ctx, hotelID); err != nil {
		return domain.Room{}, storageErr(err, "get hotel", hotelID)
	}
	out, err := s.rooms.Create(ctx, r)
	if err != nil {
		return domain.Room{}, storageErr(err, "create room", hotelID)
	}
	return out, nil
}

func (s *CatalogService) UpdateRoom(ctx context.Context, hotelID, roomID int64, p domain.RoomPatch) (domain.Room, error) {
	if p.Empty() {
		return domain.Room{}, fmt.Errorf("%w: no fields to update", domain.ErrInvalidInput)
	}
	cur, err := s.roomOf(ctx, hotelID, roomID)
	if err != nil {
		return domain.Room{}, err
	}
	next := p.Apply(cur)
	if err := next.Validate(); err != nil {
		return domain.Room{}, err
	}
	out, err := s.rooms.Update(ctx, next)
	if err != nil {
		return domain.Room{}, storageErr(err, "update room", roomID)
	}
	return out, nil
}

// DeleteRoom removes the room and, by cascade, its bookings.
func (s *CatalogService) DeleteRoom(ctx context.Context, hotelID, roomID int64) (domain.Room, error) {
	if _, err := s.roomOf(ctx, hotelID, roomID); err != nil {
		return domain.Room{}, err
	}
	out, err := s.rooms.Delete(ctx, roomID)
	if err != nil {
		return domain.Room{}, storageErr(err, "delete room", roomID)
	}
	return out, nil
}

func (s *CatalogService) roomOf(ctx context.Context, hotelID, roomID int64) (domain.Room, error) {
	r, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return domain.Room{}, storageErr(err, "get room", roomID)
	}
	if r.HotelID != hotelID {
		return domain.Room{}, domain.NotFound("room", roomID)
	}
	return r, nil
}

func (s *CatalogService) invalidateHotel(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, hotelKey(id)); err != nil {
		log.Warn().Err(err).Int64("hotel_id", id).Msg("hotel cache eviction failed")
	}
}
