package view

import (
	"context"
	"fmt"

	"github.com/bassista/room_desk/internal/cache"
	"github.com/bassista/room_desk/internal/form"
	"github.com/bassista/room_desk/internal/repository"
)

// RoomOptionsKey is the cached room page backing the booking form's room select.
func RoomOptionsKey(limit int) cache.Key {
	return cache.Key{Resource: cache.ResourceRooms, Page: 1, Limit: limit}
}

// LoadRoomOptions reads the room select through the cache.
func LoadRoomOptions(ctx context.Context, l cache.Loader, rooms repository.RoomRepository, limit int) cache.Cached[repository.Page[repository.Room]] {
	return cache.Load(ctx, l, RoomOptionsKey(limit), func(ctx context.Context) (repository.Page[repository.Room], error) {
		return rooms.ListRooms(ctx, 1, limit)
	})
}

// CapacityWarner warns when a booking form exceeds the selected room's
// capacity. It only reads rooms already cached and never fetches.
func CapacityWarner(engine *form.Engine, l cache.Loader, limit int) func(form.Values) form.Warnings {
	return func(values form.Values) form.Warnings {
		rooms := cache.Peek[repository.Page[repository.Room]](l, RoomOptionsKey(limit))
		if rooms.Status != cache.StatusSuccess {
			return form.Warnings{}
		}
		return engine.BookingWarnings(values, rooms.Value.Items)
	}
}

// BookingsInRoom counts the distinct cached bookings held in roomID.
func BookingsInRoom(b cache.Browser, roomID int) int {
	seen := map[int]struct{}{}
	for _, data := range b.Snapshot(cache.ResourceBookings) {
		page, ok := data.(repository.Page[repository.Booking])
		if !ok {
			continue
		}
		for _, bk := range page.Items {
			if bk.Room.ID == roomID {
				seen[bk.ID] = struct{}{}
			}
		}
	}
	return len(seen)
}

// RoomDeleteWarner warns in the delete confirmation when the room still has
// bookings among the loaded booking pages.
func RoomDeleteWarner(b cache.Browser) func(repository.Room) form.Warnings {
	return func(r repository.Room) form.Warnings {
		n := BookingsInRoom(b, r.ID)
		if n == 0 {
			return form.Warnings{}
		}
		noun := "bookings"
		if n == 1 {
			noun = "booking"
		}
		return form.Warnings{"room": fmt.Sprintf("%s still has %d %s.", r.Name, n, noun)}
	}
}
