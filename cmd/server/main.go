package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"syscall"

	route "github.com/bassista/room_desk/internal/api/route"
	appctx "github.com/bassista/room_desk/internal/app"
	"github.com/bassista/room_desk/internal/cache"
	"github.com/bassista/room_desk/internal/config"
	"github.com/bassista/room_desk/internal/logger"
	"github.com/bassista/room_desk/internal/repository"
	"github.com/bassista/room_desk/internal/session"
	"github.com/gin-gonic/gin"

	"github.com/enrichman/httpgrace"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithComponent("main").Fatalf("configuration error: %v", err)
	}

	if err := logger.SetLevel(cfg.Misc.LogLevel); err != nil {
		logger.WithComponent("main").Warnf("%v, keeping '%s'", err, logger.Logger.GetLevel())
	}
	logger.WithComponent("main").Debugf("log level set to: %s", logger.Logger.GetLevel())
	logger.WithComponent("main").Infof("App will run on port: %d", cfg.Server.Port)
	logger.WithComponent("main").Infof("Backend: %s", describeBackend(cfg.Backend))

	gateway, err := repository.NewGatewayFromConfig(cfg.Backend)
	if err != nil {
		logger.WithComponent("main").Fatalf("cannot init gateway: %v", err)
	}

	store, err := session.NewStoreFromConfig(cfg.Session)
	if err != nil {
		logger.WithComponent("main").Fatalf("cannot init session store: %v", err)
	}

	app, err := appctx.New(cfg, gateway, cache.NewQueryCache(cfg.Cache.StaleAfter), store)
	if err != nil {
		logger.WithComponent("main").Fatalf("cannot init app: %v", err)
	}
	defer app.Shutdown()

	if err := app.StartWatchers(); err != nil {
		logger.WithComponent("main").Fatalf("cannot start watchers: %v", err)
	}

	gin.SetMode(cfg.Misc.GinMode)
	gin.DefaultWriter = logger.Logger.Writer()
	gin.DefaultErrorWriter = logger.Logger.Writer()

	r, err := route.SetupRoutes(app, logger.Logger)
	if err != nil {
		logger.WithComponent("main").Fatalf("cannot setup routes: %v", err)
	}
	mainSrv := createGraceHttpServer(app.BaseCtx, "main-server", app.Config.Server, r)

	if err := mainSrv.ListenAndServe(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithComponent("main").Error(err)
	}
}

func describeBackend(cfg config.BackendConfig) string {
	if cfg.Type == config.BackendTypeFile {
		return fmt.Sprintf("file %s", cfg.DataFilePath)
	}
	return fmt.Sprintf("http %s (timeout %s)", cfg.BaseURL, cfg.Timeout)
}

func createGraceHttpServer(ctx context.Context, name string, serverConfig config.ServerConfig, r *gin.Engine) *httpgrace.Server {
	srv := httpgrace.NewServer(r,
		httpgrace.WithTimeout(serverConfig.ShutDownTimeout),
		httpgrace.WithSignals(syscall.SIGTERM, syscall.SIGINT),
		httpgrace.WithLogger(logger.Slog()),
		httpgrace.WithBeforeShutdown(func() {
			logger.WithComponent("http").Infof("Shutting down %s server....", name)
		}),
		httpgrace.WithServerOptions(
			httpgrace.WithReadTimeout(serverConfig.ReadTimeout),
			httpgrace.WithWriteTimeout(serverConfig.WriteTimeout),
			httpgrace.WithIdleTimeout(serverConfig.IdleTimeout),
			func(srv *http.Server) {
				srv.BaseContext = func(_ net.Listener) context.Context {
					return ctx
				}
			},
			func(srv *http.Server) {
				srv.ErrorLog = log.New(logger.Logger.Writer(), fmt.Sprintf("[%s] ", name), log.LstdFlags)
			},
		),
	)
	return srv
}
