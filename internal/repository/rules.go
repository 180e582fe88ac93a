package repository

import (
	"net/http"
	"strings"
	"time"
)

// instantLayouts are the datetime shapes accepted for booking instants.
var instantLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.RFC3339,
}

func parseInstant(value string) (time.Time, bool) {
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// clock normalises HH:MM and HH:MM:SS to HH:MM:SS so they compare as strings.
func clock(value string) (string, bool) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("15:04:05"), true
		}
	}
	return "", false
}

func unprocessable(detail string) error {
	return newAPIError(http.StatusUnprocessableEntity, detail)
}

func checkRoom(r storedRoom) error {
	if len(strings.TrimSpace(r.Name)) < 3 {
		return unprocessable("Room name must have at least 3 characters")
	}
	if len(strings.TrimSpace(r.Local)) < 3 {
		return unprocessable("Room location must have at least 3 characters")
	}
	if r.Capacity <= 0 {
		return unprocessable("Room capacity must be greater than 0")
	}
	start, ok := clock(r.StartTime)
	if !ok {
		return unprocessable("Invalid room start time")
	}
	end, ok := clock(r.EndTime)
	if !ok {
		return unprocessable("Invalid room end time")
	}
	if end <= start {
		return unprocessable("Room end time must be after start time")
	}
	return nil
}

// checkBooking enforces the room reference, the room's opening hours and
// that bookings of one room never overlap.
func (d *DataDocument) checkBooking(b storedBooking) error {
	if len(strings.TrimSpace(b.ResponsibleName)) < 3 {
		return unprocessable("Responsible name must have at least 3 characters")
	}
	if b.Attendees <= 0 {
		return unprocessable("Attendees must be greater than 0")
	}
	i := d.roomIndex(b.RoomID)
	if i < 0 {
		return errRoomNotFound()
	}
	room := d.Rooms[i]

	start, ok := parseInstant(b.StartTime)
	if !ok {
		return unprocessable("Invalid booking start time")
	}
	end, ok := parseInstant(b.EndTime)
	if !ok {
		return unprocessable("Invalid booking end time")
	}
	if !end.After(start) {
		return unprocessable("Booking end time must be after start time")
	}
	if start.Format(time.DateOnly) != end.Format(time.DateOnly) {
		return unprocessable("Booking must start and end on the same day")
	}

	roomStart, _ := clock(room.StartTime)
	roomEnd, _ := clock(room.EndTime)
	if start.Format("15:04:05") < roomStart || end.Format("15:04:05") > roomEnd {
		return unprocessable("Booking is outside the room opening hours")
	}

	if b.HasCoffee && b.CoffeeDescription != nil && strings.TrimSpace(*b.CoffeeDescription) == "" {
		return unprocessable("Coffee description must not be blank")
	}

	for _, other := range d.Bookings {
		if other.ID == b.ID || other.RoomID != b.RoomID {
			continue
		}
		otherStart, ok1 := parseInstant(other.StartTime)
		otherEnd, ok2 := parseInstant(other.EndTime)
		if !ok1 || !ok2 {
			continue
		}
		if start.Before(otherEnd) && otherStart.Before(end) {
			return newAPIError(http.StatusConflict, "Room is already booked for this time slot")
		}
	}
	return nil
}
