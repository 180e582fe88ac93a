package route

import (
	"github.com/bassista/room_desk/internal/api/controller"
	"github.com/bassista/room_desk/internal/app"
	"github.com/gin-gonic/gin"
)

// NewCacheRouter sets up the query cache endpoints.
func NewCacheRouter(group *gin.RouterGroup, appCtx *app.App) {
	cc := controller.NewCacheController(appCtx.Cache)

	group.GET("cache/stats", cc.GetStats)
	group.POST("cache/:resource/invalidate", cc.Invalidate)
}
