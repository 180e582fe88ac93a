package middleware

import (
	"net/http"

	"github.com/bassista/room_desk/internal/session"
	"github.com/gin-gonic/gin"
)

// SessionIDKey is the gin context key holding the caller's session id.
const SessionIDKey = "session_id"

// SessionCookie makes sure every request carries a session id. A missing or
// malformed cookie is replaced with a freshly issued one.
func SessionCookie(name string, secure bool, maxAge int) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(name)
		if err != nil || !session.ValidID(id) {
			id = session.NewID()
		}
		// Refreshed on every request so the cookie slides with the store TTL.
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(name, id, maxAge, "/", "", secure, true)
		c.Set(SessionIDKey, id)
		c.Next()
	}
}

// SessionID returns the id set by SessionCookie.
func SessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}
