package route

import (
	"github.com/gin-gonic/gin"
)

// NewRoomRouter sets up the rooms list and modal endpoints.
func NewRoomRouter(group *gin.RouterGroup, res *resources) {
	lc := res.roomList
	mc := res.roomModal

	group.GET("rooms", lc.List)
	group.GET("rooms/modal", mc.Show)
	group.POST("rooms/modal/create", mc.Create)
	group.POST("rooms/modal/edit/:id", mc.Edit)
	group.POST("rooms/modal/delete/:id", mc.Delete)
	group.PATCH("rooms/modal/form", mc.Change)
	group.POST("rooms/modal/submit", mc.Submit)
	group.POST("rooms/modal/cancel", mc.Cancel)
}
