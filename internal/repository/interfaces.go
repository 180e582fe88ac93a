package repository

import "context"

// RoomRepository is the gateway surface for the /rooms/ resource.
type RoomRepository interface {
	ListRooms(ctx context.Context, page, limit int) (Page[Room], error)
	GetRoom(ctx context.Context, id int) (Room, error)
	CreateRoom(ctx context.Context, room RoomCreate) (Room, error)
	UpdateRoom(ctx context.Context, id int, patch RoomUpdate) (Room, error)
	DeleteRoom(ctx context.Context, id int) (Room, error)
}

// BookingRepository is the gateway surface for the /bookings/ resource.
type BookingRepository interface {
	ListBookings(ctx context.Context, page, limit int) (Page[Booking], error)
	GetBooking(ctx context.Context, id int) (Booking, error)
	CreateBooking(ctx context.Context, booking BookingCreate) (Booking, error)
	UpdateBooking(ctx context.Context, id int, patch BookingUpdate) (Booking, error)
	DeleteBooking(ctx context.Context, id int) (Booking, error)
}

// Gateway is the remote data gateway for both resources.
// HTTPRepository and JSONRepository implement this interface.
type Gateway interface {
	RoomRepository
	BookingRepository
}
