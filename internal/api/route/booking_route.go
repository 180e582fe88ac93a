package route

import (
	"github.com/bassista/room_desk/internal/api/controller"
	"github.com/gin-gonic/gin"
)

// NewBookingRouter sets up the bookings list, modal and room select endpoints.
func NewBookingRouter(group *gin.RouterGroup, res *resources) {
	lc := res.bookingList
	mc := res.bookingModal
	oc := controller.NewRoomOptionsController(res.roomOptions)

	group.GET("bookings", lc.List)
	group.GET("bookings/room-options", oc.GetOptions)
	group.GET("bookings/modal", mc.Show)
	group.POST("bookings/modal/create", mc.Create)
	group.POST("bookings/modal/edit/:id", mc.Edit)
	group.POST("bookings/modal/delete/:id", mc.Delete)
	group.PATCH("bookings/modal/form", mc.Change)
	group.POST("bookings/modal/submit", mc.Submit)
	group.POST("bookings/modal/cancel", mc.Cancel)
}
