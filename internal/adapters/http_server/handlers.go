package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
)

const maxBodyBytes = 1 << 20

type Handlers struct {
	Q *app.QueryService
	C *app.CatalogService
	B *app.BookingService
	U *app.UserService

	// booking writes share one token bucket; zero RPS disables it
	BookingRPS   float64
	BookingBurst int
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	limit := RateLimit(h.BookingRPS, h.BookingBurst)

	s.mux.Route("/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/", h.registerUser)
			r.Post("/verify", h.verifyUser)
			r.With(RequireUser).Get("/me", h.me)
			r.With(RequireAdmin).Delete("/{userID}", h.deleteUser)
		})

		r.Route("/hotels", func(r chi.Router) {
			r.Get("/", h.listHotels)
			r.With(RequireAdmin).Post("/", h.createHotel)

			r.Route("/{hotelID}", func(r chi.Router) {
				r.Get("/", h.getHotel)
				r.With(RequireAdmin).Put("/", h.updateHotel)
				r.With(RequireAdmin).Delete("/", h.deleteHotel)

				r.Get("/rooms", h.listRooms)
				r.Get("/rooms/free", h.freeRooms)
				r.With(RequireAdmin).Post("/rooms", h.createRoom)
				r.Get("/rooms/{roomID}", h.getRoom)
				r.With(RequireAdmin).Put("/rooms/{roomID}", h.updateRoom)
				r.With(RequireAdmin).Delete("/rooms/{roomID}", h.deleteRoom)
			})
		})

		r.Get("/rooms/{roomID}/availability", h.roomAvailability)

		r.Route("/bookings", func(r chi.Router) {
			r.Use(RequireUser)
			r.Get("/", h.listBookings)
			r.With(limit).Post("/", h.reserve)
			r.Get("/{bookingID}", h.getBooking)
			r.With(limit).Patch("/{bookingID}", h.updateBooking)
			r.With(limit).Delete("/{bookingID}", h.cancelBooking)
		})
	})
}

// ---- request helpers ----

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidInput, name)
	}
	return id, nil
}

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

// queryRange reads date_from/date_to (YYYY-MM-DD) from the query string.
func queryRange(r *http.Request) (domain.DateRange, error) {
	q := r.URL.Query()
	rng, err := domain.ParseDateRange(q.Get("date_from"), q.Get("date_to"))
	if err != nil {
		return domain.DateRange{}, err
	}
	if rng.Nights() > domain.MaxStayNights {
		return domain.DateRange{}, fmt.Errorf("%w: stay longer than %d nights", domain.ErrInvalidRange, domain.MaxStayNights)
	}
	return rng, nil
}

func parseDate(field string, v *string) (*time.Time, error) {
	if v == nil {
		return nil, nil
	}
	t, err := time.Parse(domain.DateLayout, *v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q", domain.ErrInvalidRange, field, *v)
	}
	return &t, nil
}

func actor(r *http.Request) domain.Actor {
	a, _ := actorFrom(r.Context())
	return a
}

// ---- hotels ----

// listHotels is a plain listing, or a location search when location is given.
func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	if !r.URL.Query().Has("location") {
		out, err := h.Q.ListHotels(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	rng, err := queryRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Q.HotelsByLocation(r.Context(), r.URL.Query().Get("location"), rng)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "hotelID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	hotel, err := h.Q.GetHotel(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, hotel)
}

func (h *Handlers) createHotel(w http.ResponseWriter, r *http.Request) {
	var in domain.Hotel
	if err := decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.ID = 0
	out, err := h.C.CreateHotel(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handlers) updateHotel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "hotelID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var p domain.HotelPatch
	if err := decode(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.C.UpdateHotel(r.Context(), id, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) deleteHotel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "hotelID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.C.DeleteHotel(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// ---- rooms ----

func (h *Handlers) listRooms(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "hotelID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Q.ListRooms(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// freeRooms lists every room of the hotel annotated with rooms_left and total_cost.
func (h *Handlers) freeRooms(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "hotelID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rng, err := queryRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Q.RoomsWithAvailability(r.Context(), id, rng)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getRoom(w http.ResponseWriter, r *http.Request) {
	hotelID, err := pathID(r, "hotelID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	roomID, err := pathID(r, "roomID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Q.GetRoom(r.Context(), hotelID, roomID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) createRoom(w http.ResponseWriter, r *http.Request) {
	hotelID, err := pathID(r, "hotelID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in domain.Room
	if err := decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	in.ID = 0
	out, err := h.C.CreateRoom(r.Context(), hotelID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handlers) updateRoom(w http.ResponseWriter, r *http.Request) {
	hotelID, err := pathID(r, "hotelID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	roomID, err := pathID(r, "roomID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var p domain.RoomPatch
	if err := decode(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.C.UpdateRoom(r.Context(), hotelID, roomID, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) deleteRoom(w http.ResponseWriter, r *http.Request) {
	hotelID, err := pathID(r, "hotelID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	roomID, err := pathID(r, "roomID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.C.DeleteRoom(r.Context(), hotelID, roomID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type availabilityResponse struct {
	RoomID    int64 `json:"room_id"`
	FreeUnits int   `json:"free_units"`
}

func (h *Handlers) roomAvailability(w http.ResponseWriter, r *http.Request) {
	roomID, err := pathID(r, "roomID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rng, err := queryRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	n, err := h.Q.FreeUnits(r.Context(), roomID, rng)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, availabilityResponse{RoomID: roomID, FreeUnits: n})
}
