package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func corsRouter(allowed string) *gin.Engine {
	r := gin.New()
	r.Use(CORSMiddleware(allowed))
	r.GET("/api/rooms", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.PATCH("/api/rooms/modal/form", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name        string
		allowed     string
		method      string
		path        string
		origin      string
		reqHeaders  string
		wantStatus  int
		wantOrigin  string
		wantCreds   string
		wantVary    string
		wantMethods bool
		wantHeaders string
	}{
		{
			name: "wildcard", allowed: "*", method: http.MethodGet, path: "/api/rooms",
			origin: "http://example.com", wantStatus: http.StatusOK, wantOrigin: "*",
		},
		{
			name: "listed origin gets credentials", allowed: "http://allowed.com,http://also-allowed.com",
			method: http.MethodGet, path: "/api/rooms", origin: "http://allowed.com",
			wantStatus: http.StatusOK, wantOrigin: "http://allowed.com", wantCreds: "true", wantVary: "Origin",
		},
		{
			name: "unlisted origin is served without headers", allowed: "http://allowed.com",
			method: http.MethodGet, path: "/api/rooms", origin: "http://not-allowed.com",
			wantStatus: http.StatusOK,
		},
		{
			name: "no origin header", allowed: "http://allowed.com", method: http.MethodGet,
			path: "/api/rooms", wantStatus: http.StatusOK,
		},
		{
			name: "empty allow list", allowed: "", method: http.MethodGet, path: "/api/rooms",
			origin: "http://example.com", wantStatus: http.StatusOK,
		},
		{
			name: "origins are trimmed", allowed: "  http://a.com  ,  http://b.com  ", method: http.MethodGet,
			path: "/api/rooms", origin: "http://b.com",
			wantStatus: http.StatusOK, wantOrigin: "http://b.com", wantCreds: "true", wantVary: "Origin",
		},
		{
			name: "preflight uses default headers", allowed: "*", method: http.MethodOptions,
			path: "/api/rooms/modal/form", origin: "http://example.com",
			wantStatus: http.StatusNoContent, wantOrigin: "*", wantMethods: true, wantHeaders: corsAllowHeaders,
		},
		{
			name: "preflight echoes requested headers", allowed: "http://allowed.com", method: http.MethodOptions,
			path: "/api/rooms/modal/form", origin: "http://allowed.com", reqHeaders: "Content-Type, X-Requested-With",
			wantStatus: http.StatusNoContent, wantOrigin: "http://allowed.com", wantCreds: "true", wantVary: "Origin",
			wantMethods: true, wantHeaders: "Content-Type, X-Requested-With",
		},
		{
			name: "preflight from unlisted origin is not answered", allowed: "http://allowed.com",
			method: http.MethodOptions, path: "/api/rooms/modal/form", origin: "http://evil.com",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.method == http.MethodOptions {
				req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
			}
			if tt.reqHeaders != "" {
				req.Header.Set("Access-Control-Request-Headers", tt.reqHeaders)
			}
			w := httptest.NewRecorder()

			corsRouter(tt.allowed).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantCreds, w.Header().Get("Access-Control-Allow-Credentials"))
			assert.Equal(t, tt.wantVary, w.Header().Get("Vary"))
			assert.Equal(t, tt.wantMethods, w.Header().Get("Access-Control-Allow-Methods") != "")
			assert.Equal(t, tt.wantHeaders, w.Header().Get("Access-Control-Allow-Headers"))
		})
	}
}
