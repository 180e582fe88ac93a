package route

import (
	"context"

	"github.com/bassista/room_desk/internal/api/controller"
	"github.com/bassista/room_desk/internal/app"
	"github.com/bassista/room_desk/internal/cache"
	"github.com/bassista/room_desk/internal/modal"
	"github.com/bassista/room_desk/internal/repository"
	"github.com/bassista/room_desk/internal/session"
	"github.com/bassista/room_desk/internal/view"
)

// resources are the controllers shared by the API and UI routers.
type resources struct {
	roomList     *controller.ListController[repository.Room]
	roomModal    *controller.ModalController[repository.Room, repository.RoomCreate]
	bookingList  *controller.ListController[repository.Booking]
	bookingModal *controller.ModalController[repository.Booking, repository.BookingCreate]
	roomOptions  controller.RoomOptionsLoader
}

func newResources(appCtx *app.App) *resources {
	forms := appCtx.Config.Forms
	gw := appCtx.Gateway

	roomOptions := func(ctx context.Context) ([]view.RoomOption, error) {
		res := view.LoadRoomOptions(ctx, appCtx.Cache, gw, forms.RoomOptionsLimit)
		if res.Status == cache.StatusError {
			return []view.RoomOption{}, res.Err
		}
		return view.RoomOptions(res.Value.Items), nil
	}

	return &resources{
		roomList: &controller.ListController[repository.Room]{
			Resource:     cache.ResourceRooms,
			Cache:        appCtx.Cache,
			Fetch:        gw.ListRooms,
			DefaultLimit: forms.DefaultPageSize,
			MaxLimit:     forms.MaxPageSize,
		},
		roomModal: &controller.ModalController[repository.Room, repository.RoomCreate]{
			Flow:     appCtx.RoomFlow,
			Sessions: appCtx.Sessions,
			Select:   func(d *session.Data) *modal.Session[repository.Room] { return &d.Rooms },
			Get:      gw.GetRoom,
			Noun:     "room",
		},
		bookingList: &controller.ListController[repository.Booking]{
			Resource:     cache.ResourceBookings,
			Cache:        appCtx.Cache,
			Fetch:        gw.ListBookings,
			DefaultLimit: forms.DefaultPageSize,
			MaxLimit:     forms.MaxPageSize,
		},
		bookingModal: &controller.ModalController[repository.Booking, repository.BookingCreate]{
			Flow:     appCtx.BookingFlow,
			Sessions: appCtx.Sessions,
			Select:   func(d *session.Data) *modal.Session[repository.Booking] { return &d.Bookings },
			Get:      gw.GetBooking,
			Noun:     "booking",
			Prefetch: func(ctx context.Context) { _, _ = roomOptions(ctx) },
		},
		roomOptions: roomOptions,
	}
}
