package controller

import (
	"net/http"

	"github.com/bassista/room_desk/internal/config"
	"github.com/gin-gonic/gin"
)

// ConfigurationResponse is the client-visible subset of the configuration.
type ConfigurationResponse struct {
	DefaultPageSize          int    `json:"defaultPageSize"`
	MaxPageSize              int    `json:"maxPageSize"`
	RoomOptionsLimit         int    `json:"roomOptionsLimit"`
	RequireCoffeeDescription bool   `json:"requireCoffeeDescription"`
	CacheStaleAfterSec       int    `json:"cacheStaleAfterSec"`
	BackendType              string `json:"backendType"`
}

// ConfigurationController handles configuration-related API endpoints.
type ConfigurationController struct {
	config *config.Config
}

// NewConfigurationController creates a new ConfigurationController.
func NewConfigurationController(cfg *config.Config) *ConfigurationController {
	return &ConfigurationController{
		config: cfg,
	}
}

// GetConfiguration returns the form and paging settings for API clients.
func (cc *ConfigurationController) GetConfiguration(c *gin.Context) {
	response := ConfigurationResponse{
		DefaultPageSize:          cc.config.Forms.DefaultPageSize,
		MaxPageSize:              cc.config.Forms.MaxPageSize,
		RoomOptionsLimit:         cc.config.Forms.RoomOptionsLimit,
		RequireCoffeeDescription: cc.config.Forms.RequireCoffeeDescription,
		CacheStaleAfterSec:       int(cc.config.Cache.StaleAfter.Seconds()),
		BackendType:              cc.config.Backend.Type,
	}
	c.JSON(http.StatusOK, response)
}
