package controller

import (
	"net/http"

	"github.com/bassista/room_desk/internal/cache"
	"github.com/bassista/room_desk/internal/logger"
	"github.com/gin-gonic/gin"
)

// CacheStore is the cache surface exposed over HTTP.
type CacheStore interface {
	cache.Invalidator
	Stats() cache.Stats
}

// CacheController exposes query cache counters and manual invalidation.
type CacheController struct {
	store CacheStore
}

func NewCacheController(store CacheStore) *CacheController {
	return &CacheController{store: store}
}

// GetStats handles GET /api/cache/stats.
func (cc *CacheController) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, cc.store.Stats())
}

// Invalidate handles POST /api/cache/:resource/invalidate.
func (cc *CacheController) Invalidate(c *gin.Context) {
	resource := cache.Resource(c.Param("resource"))
	switch resource {
	case cache.ResourceRooms, cache.ResourceBookings:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown resource"})
		return
	}
	dropped := cc.store.Invalidate(resource)
	logger.WithComponent("cache-controller").Infof("manual invalidation of %s dropped %d entries", resource, dropped)
	c.JSON(http.StatusOK, gin.H{"resource": resource, "dropped": dropped})
}
