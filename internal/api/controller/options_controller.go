package controller

import (
	"context"
	"net/http"

	"github.com/bassista/room_desk/internal/logger"
	"github.com/bassista/room_desk/internal/repository"
	"github.com/bassista/room_desk/internal/view"
	"github.com/gin-gonic/gin"
)

// RoomOptionsLoader loads the booking form's room select.
type RoomOptionsLoader func(ctx context.Context) ([]view.RoomOption, error)

type RoomOptionsController struct {
	load RoomOptionsLoader
}

func NewRoomOptionsController(load RoomOptionsLoader) *RoomOptionsController {
	return &RoomOptionsController{load: load}
}

// GetOptions handles GET /api/bookings/room-options.
func (oc *RoomOptionsController) GetOptions(c *gin.Context) {
	opts, err := oc.load(c.Request.Context())
	if err != nil {
		logger.WithComponent("options-controller").Warnf("load room options: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": repository.DetailMessage(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": opts})
}
