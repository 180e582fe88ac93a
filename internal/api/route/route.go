package route

import (
	"fmt"
	"net/http"

	"github.com/bassista/room_desk/internal/api/middleware"
	"github.com/bassista/room_desk/internal/app"
	"github.com/bassista/room_desk/web"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SetupRoutes builds the engine serving /health, the JSON API under /api and
// the admin pages under /ui.
func SetupRoutes(appCtx *app.App, logger *logrus.Logger) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(middleware.ErrorReporting(logger, appCtx.Config.Misc.HoneybadgerAPIKey, appCtx.Config.Misc.Env)...)
	// Preflight requests match no route, so CORS runs globally.
	r.Use(middleware.CORSMiddleware(appCtx.Config.Server.CORSAllowedOrigins))

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "UP",
		})
	})

	sessionCookie := middleware.SessionCookie(
		appCtx.Config.Session.CookieName,
		appCtx.Config.Session.CookieSecure,
		int(appCtx.Config.Session.TTL.Seconds()),
	)
	timeout := middleware.RequestTimeout(appCtx.Config.Server.RequestTimeout)

	apiRouter := r.Group("/api")
	apiRouter.Use(timeout, sessionCookie)

	resources := newResources(appCtx)
	NewRoomRouter(apiRouter, resources)
	NewBookingRouter(apiRouter, resources)
	NewCacheRouter(apiRouter, appCtx)
	NewConfigurationRouter(apiRouter, appCtx.Config)

	uiRouter := r.Group("/ui")
	uiRouter.Use(timeout, sessionCookie)
	NewUIRouter(r, uiRouter, resources)

	return r, nil
}
