package route

import (
	"github.com/bassista/room_desk/internal/api/controller"
	"github.com/bassista/room_desk/internal/config"
	"github.com/gin-gonic/gin"
)

// NewConfigurationRouter sets up configuration-related routes.
func NewConfigurationRouter(group *gin.RouterGroup, cfg *config.Config) {
	cc := controller.NewConfigurationController(cfg)

	group.GET("configuration", cc.GetConfiguration)
}
