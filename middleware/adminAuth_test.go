package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"slotify/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func adminTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin/ping", AdminAuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return r
}

func doAdminRequest(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminAuth(t *testing.T) {
	prev := config.AppConfig.AdminToken
	defer func() { config.AppConfig.AdminToken = prev }()

	config.AppConfig.AdminToken = "super-secret"
	r := adminTestRouter()

	assert.Equal(t, http.StatusUnauthorized, doAdminRequest(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doAdminRequest(r, "Bearer wrong").Code)
	assert.Equal(t, http.StatusOK, doAdminRequest(r, "Bearer super-secret").Code)
}

func TestAdminAuthUnconfiguredTokenRejectsAll(t *testing.T) {
	prev := config.AppConfig.AdminToken
	defer func() { config.AppConfig.AdminToken = prev }()

	config.AppConfig.AdminToken = ""
	r := adminTestRouter()

	// An empty configured token must never mean "no auth".
	assert.Equal(t, http.StatusUnauthorized, doAdminRequest(r, "Bearer ").Code)
	assert.Equal(t, http.StatusUnauthorized, doAdminRequest(r, "Bearer anything").Code)
}
