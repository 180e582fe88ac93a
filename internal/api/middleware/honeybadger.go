package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	honeybadger "github.com/honeybadger-io/honeybadger-go"
	"github.com/sirupsen/logrus"
)

var notify = honeybadger.Notify

// ErrorReporting is gin.Recovery wrapped around HoneybadgerMiddleware, so a
// panic is reported with its stack before Recovery answers 500.
func ErrorReporting(logger *logrus.Logger, apiKey, env string) gin.HandlersChain {
	return gin.HandlersChain{gin.Recovery(), HoneybadgerMiddleware(logger, apiKey, env)}
}

// HoneybadgerMiddleware reports panics and failed responses to Honeybadger.
// With an empty apiKey it is a no-op. Panics are re-raised for an outer
// gin.Recovery.
// 404s and 4xx validation outcomes (400, 409, 422) are normal traffic for
// the modal forms and are not reported.
func HoneybadgerMiddleware(logger *logrus.Logger, apiKey, env string) gin.HandlerFunc {
	if apiKey == "" {
		logger.Info("Honeybadger is not active. To enable error reporting, set misc.honeybadger_api_key.")
		return func(c *gin.Context) {
			c.Next()
		}
	}

	honeybadger.Configure(honeybadger.Configuration{
		APIKey: apiKey,
		Env:    env,
	})

	logger.Info("Honeybadger error reporting is enabled.")

	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				notify(fmt.Sprintf("Panic: %s %s", c.Request.Method, c.Request.URL.Path),
					c.Request, honeybadger.Context{"stack": string(debug.Stack())}, honeybadger.Tags{"panic", "http"})
				logger.Error("Recovered from panic, notified Honeybadger: ", rec)
				panic(rec)
			}
		}()

		c.Next()

		status := c.Writer.Status()
		if !reportable(status) {
			return
		}
		if status >= 500 {
			notify(fmt.Sprintf("Error: HTTP %d: %s %s", status, c.Request.Method, c.Request.URL.Path),
				c.Request, honeybadger.Tags{"5XX", "http"})
		} else {
			notify(fmt.Sprintf("Warning: HTTP %d: %s %s", status, c.Request.Method, c.Request.URL.Path),
				honeybadger.Tags{"4XX", "http"})
		}
		logger.Warnf("Honeybadger reported HTTP %d for %s %s", status, c.Request.Method, c.Request.URL.Path)
	}
}

func reportable(status int) bool {
	switch status {
	case http.StatusBadRequest, http.StatusNotFound, http.StatusConflict, http.StatusUnprocessableEntity:
		return false
	}
	return status >= 400
}
