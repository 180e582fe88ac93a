package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bassista/room_desk/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionRouter(seen *string) *gin.Engine {
	r := gin.New()
	r.Use(SessionCookie("room_desk_session", true, 3600))
	r.GET("/api/rooms/modal", func(c *gin.Context) {
		*seen = SessionID(c)
		c.Status(http.StatusOK)
	})
	return r
}

func TestSessionCookie_IssuesNewID(t *testing.T) {
	var seen string
	r := sessionRouter(&seen)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/rooms/modal", nil))

	assert.True(t, session.ValidID(seen))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "room_desk_session", cookies[0].Name)
	assert.Equal(t, seen, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
}

func TestSessionCookie_KeepsValidID(t *testing.T) {
	var seen string
	r := sessionRouter(&seen)
	id := session.NewID()

	req := httptest.NewRequest(http.MethodGet, "/api/rooms/modal", nil)
	req.AddCookie(&http.Cookie{Name: "room_desk_session", Value: id})
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, id, seen)
}

func TestSessionCookie_ReplacesMalformedID(t *testing.T) {
	var seen string
	r := sessionRouter(&seen)

	req := httptest.NewRequest(http.MethodGet, "/api/rooms/modal", nil)
	req.AddCookie(&http.Cookie{Name: "room_desk_session", Value: "../../etc"})
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.NotEqual(t, "../../etc", seen)
	assert.True(t, session.ValidID(seen))
}
