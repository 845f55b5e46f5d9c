package mysql

const (
	hotelColumns   = "id, name, location, services, rooms_quantity, image_id"
	roomColumns    = "id, hotel_id, name, description, price, services, quantity, image_id"
	userColumns    = "id, email, hashed_password, admin"
	bookingColumns = "id, uid, room_id, user_id, date_from, date_to, price, total_days, total_cost, created_at"
)

const insertHotelSQL = `
INSERT INTO hotels (name, location, services, rooms_quantity, image_id)
VALUES (?, ?, ?, ?, ?)
`

const updateHotelSQL = `
UPDATE hotels
SET name = ?, location = ?, services = ?, rooms_quantity = ?, image_id = ?
WHERE id = ?
`

const insertRoomSQL = `
INSERT INTO rooms (hotel_id, name, description, price, services, quantity, image_id)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

const updateRoomSQL = `
UPDATE rooms
SET name = ?, description = ?, price = ?, services = ?, quantity = ?, image_id = ?
WHERE id = ?
`

const insertUserSQL = `
INSERT INTO users (email, hashed_password, admin)
VALUES (?, ?, ?)
`

// total_days and total_cost are generated columns; never listed on writes.
const insertBookingSQL = `
INSERT INTO bookings (uid, room_id, user_id, date_from, date_to, price)
VALUES (?, ?, ?, ?, ?, ?)
`

const updateBookingSQL = `
UPDATE bookings
SET room_id = ?, date_from = ?, date_to = ?, price = ?
WHERE id = ?
`

// -----------------------------------------------------------------------------
// AVAILABILITY
// -----------------------------------------------------------------------------

// overlapCond is the overlap rule for an existing booking b against a query range.
// Params: from, to, from, from. Must stay in step with domain.Overlaps.
const overlapCond = `(b.date_from BETWEEN ? AND ? OR (b.date_from <= ? AND b.date_to > ?))`

// Params: roomID, excludeID, overlap params.
const countOverlapsSQL = `
SELECT COUNT(*)
FROM bookings b
WHERE b.room_id = ?
  AND b.id <> ?
  AND ` + overlapCond

// Params: overlap params, roomID. No row when the room does not exist.
const freeUnitsSQL = `
SELECT r.quantity - (
  SELECT COUNT(*)
  FROM bookings b
  WHERE b.room_id = r.id
    AND ` + overlapCond + `
)
FROM rooms r
WHERE r.id = ?
`

// Every room of a hotel with its raw rooms_left (may be <= 0).
// Params: overlap params, hotelID.
const roomsWithAvailabilitySQL = `
SELECT r.id, r.hotel_id, r.name, r.description, r.price, r.services, r.quantity, r.image_id,
       r.quantity - COUNT(b.id) AS rooms_left
FROM rooms r
LEFT JOIN bookings b
  ON b.room_id = r.id
 AND ` + overlapCond + `
WHERE r.hotel_id = ?
GROUP BY r.id
ORDER BY r.id
`

// Hotels whose location contains the pattern, with free units summed per hotel.
// Overbooked rooms count as zero so they cannot hide another room's free units.
// Matching is case-insensitive through the column collation; the derived table
// filters on location first so only matching hotels' rooms are aggregated.
// room_ids is a JSON array with nulls for fully booked rooms.
// Params: overlap params, LIKE pattern.
const hotelsByLocationSQL = `
SELECT h.id, h.name, h.location, h.services, h.rooms_quantity, h.image_id,
       CAST(SUM(a.rooms_left) AS SIGNED) AS rooms_left,
       JSON_ARRAYAGG(CASE WHEN a.rooms_left > 0 THEN a.room_id END) AS room_ids
FROM hotels h
JOIN (
  SELECT r.id AS room_id, r.hotel_id, GREATEST(r.quantity - COUNT(b.id), 0) AS rooms_left
  FROM hotels lh
  JOIN rooms r ON r.hotel_id = lh.id
  LEFT JOIN bookings b
    ON b.room_id = r.id
   AND ` + overlapCond + `
  WHERE lh.location LIKE ?
  GROUP BY r.id
) a ON a.hotel_id = h.id
GROUP BY h.id
HAVING SUM(a.rooms_left) > 0
ORDER BY h.id
`
