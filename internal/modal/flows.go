package modal

import (
	"context"

	"github.com/bassista/room_desk/internal/cache"
	"github.com/bassista/room_desk/internal/form"
	"github.com/bassista/room_desk/internal/repository"
)

type (
	RoomFlow    = Flow[repository.Room, repository.RoomCreate]
	BookingFlow = Flow[repository.Booking, repository.BookingCreate]
)

type roomMutator struct {
	repo repository.RoomRepository
}

func (m roomMutator) Create(ctx context.Context, p repository.RoomCreate) (repository.Room, error) {
	return m.repo.CreateRoom(ctx, p)
}

func (m roomMutator) Update(ctx context.Context, id int, p repository.RoomCreate) (repository.Room, error) {
	return m.repo.UpdateRoom(ctx, id, form.RoomUpdateFrom(p))
}

func (m roomMutator) Delete(ctx context.Context, id int) (repository.Room, error) {
	return m.repo.DeleteRoom(ctx, id)
}

type bookingMutator struct {
	repo repository.BookingRepository
}

func (m bookingMutator) Create(ctx context.Context, p repository.BookingCreate) (repository.Booking, error) {
	return m.repo.CreateBooking(ctx, p)
}

func (m bookingMutator) Update(ctx context.Context, id int, p repository.BookingCreate) (repository.Booking, error) {
	return m.repo.UpdateBooking(ctx, id, form.BookingUpdateFrom(p))
}

func (m bookingMutator) Delete(ctx context.Context, id int) (repository.Booking, error) {
	return m.repo.DeleteBooking(ctx, id)
}

// NewRoomFlow wires the room modal. Editing or deleting a room also
// invalidates bookings, which embed the room name and may be cascaded.
func NewRoomFlow(engine *form.Engine, repo repository.RoomRepository, c cache.Invalidator) *RoomFlow {
	return &RoomFlow{
		Name:    "room",
		Schema:  form.RoomSchema{Engine: engine},
		Mutator: roomMutator{repo: repo},
		ID:      func(r repository.Room) int { return r.ID },
		Cache:   c,
		Invalidates: func(k Kind) []cache.Resource {
			if k == KindCreate {
				return []cache.Resource{cache.ResourceRooms}
			}
			return []cache.Resource{cache.ResourceRooms, cache.ResourceBookings}
		},
	}
}

// NewBookingFlow wires the booking modal.
func NewBookingFlow(engine *form.Engine, repo repository.BookingRepository, c cache.Invalidator) *BookingFlow {
	return &BookingFlow{
		Name:    "booking",
		Schema:  form.BookingSchema{Engine: engine},
		Mutator: bookingMutator{repo: repo},
		ID:      func(b repository.Booking) int { return b.ID },
		Cache:   c,
		Invalidates: func(Kind) []cache.Resource {
			return []cache.Resource{cache.ResourceBookings}
		},
	}
}
