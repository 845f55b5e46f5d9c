package domain

type Hotel struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Location      string   `json:"location"` // free text, substring-searchable
	Services      []string `json:"services"`
	RoomsQuantity int      `json:"rooms_quantity"`
	ImageID       *int64   `json:"image_id,omitempty"`
}

// Room is a room type: Quantity interchangeable physical rooms sharing one nightly Price.
type Room struct {
	ID          int64    `json:"id"`
	HotelID     int64    `json:"hotel_id"`
	Name        string   `json:"name"`
	Description *string  `json:"description,omitempty"`
	Price       int64    `json:"price"`
	Services    []string `json:"services"`
	Quantity    int      `json:"quantity"`
	ImageID     *int64   `json:"image_id,omitempty"`
}

// HotelPatch carries a partial hotel update; nil fields are left untouched.
type HotelPatch struct {
	Name          *string   `json:"name"`
	Location      *string   `json:"location"`
	Services      *[]string `json:"services"`
	RoomsQuantity *int      `json:"rooms_quantity"`
	ImageID       *int64    `json:"image_id"`
}

func (p HotelPatch) Empty() bool {
	return p.Name == nil && p.Location == nil && p.Services == nil && p.RoomsQuantity == nil && p.ImageID == nil
}

func (p HotelPatch) Apply(h Hotel) Hotel {
	if p.Name != nil {
		h.Name = *p.Name
	}
	if p.Location != nil {
		h.Location = *p.Location
	}
	if p.Services != nil {
		h.Services = *p.Services
	}
	if p.RoomsQuantity != nil {
		h.RoomsQuantity = *p.RoomsQuantity
	}
	if p.ImageID != nil {
		h.ImageID = p.ImageID
	}
	return h
}

type RoomPatch struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Price       *int64    `json:"price"`
	Services    *[]string `json:"services"`
	Quantity    *int      `json:"quantity"`
	ImageID     *int64    `json:"image_id"`
}

func (p RoomPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil &&
		p.Services == nil && p.Quantity == nil && p.ImageID == nil
}

func (p RoomPatch) Apply(r Room) Room {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Description != nil {
		r.Description = p.Description
	}
	if p.Price != nil {
		r.Price = *p.Price
	}
	if p.Services != nil {
		r.Services = *p.Services
	}
	if p.Quantity != nil {
		r.Quantity = *p.Quantity
	}
	if p.ImageID != nil {
		r.ImageID = p.ImageID
	}
	return r
}

func (r Room) Validate() error {
	if r.Name == "" {
		return invalid("room name is required")
	}
	if r.Quantity < 0 {
		return invalid("room quantity must be >= 0")
	}
	if r.Price < 0 {
		return invalid("room price must be >= 0")
	}
	return nil
}

func (h Hotel) Validate() error {
	if h.Name == "" {
		return invalid("hotel name is required")
	}
	if h.Location == "" {
		return invalid("hotel location is required")
	}
	if h.RoomsQuantity < 0 {
		return invalid("rooms_quantity must be >= 0")
	}
	return nil
}

// Read models

// RoomAvailability annotates a room with what is left for a date range.
// RoomsLeft may be <= 0; room listings never filter.
type RoomAvailability struct {
	Room
	RoomsLeft int   `json:"rooms_left"`
	TotalCost int64 `json:"total_cost"`
}

// HotelAvailability is one location-search hit: free units summed over the hotel's rooms.
type HotelAvailability struct {
	Hotel
	RoomsLeft int     `json:"rooms_left"`
	RoomIDs   []int64 `json:"room_ids"`
}
