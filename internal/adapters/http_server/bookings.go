package httpserver

import (
	"net/http"

	"hotel_booking/internal/domain"
)

type reserveRequest struct {
	RoomID   int64  `json:"room_id"`
	DateFrom string `json:"date_from"`
	DateTo   string `json:"date_to"`
}

type changeRequest struct {
	RoomID   *int64  `json:"room_id"`
	DateFrom *string `json:"date_from"`
	DateTo   *string `json:"date_to"`
}

func (h *Handlers) reserve(w http.ResponseWriter, r *http.Request) {
	var in reserveRequest
	if err := decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	rng, err := domain.ParseDateRange(in.DateFrom, in.DateTo)
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.B.Reserve(r.Context(), actor(r).UserID, in.RoomID, rng)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *Handlers) listBookings(w http.ResponseWriter, r *http.Request) {
	out, err := h.B.ListBookings(r.Context(), actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "bookingID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.B.GetBooking(r.Context(), actor(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handlers) updateBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "bookingID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in changeRequest
	if err := decode(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	ch := domain.BookingChange{RoomID: in.RoomID}
	if ch.DateFrom, err = parseDate("date_from", in.DateFrom); err != nil {
		writeError(w, r, err)
		return
	}
	if ch.DateTo, err = parseDate("date_to", in.DateTo); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.B.UpdateBooking(r.Context(), actor(r), id, ch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handlers) cancelBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "bookingID")
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.B.CancelBooking(r.Context(), actor(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}
