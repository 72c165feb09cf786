package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"slotify/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/whoami", CustomerAuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"customerId": CustomerID(c)})
	})
	return r
}

func doAuthRequest(t *testing.T, r *gin.Engine, header string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMissingHeader(t *testing.T) {
	r := authTestRouter()
	w := doAuthRequest(t, r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMalformedHeader(t *testing.T) {
	r := authTestRouter()
	w := doAuthRequest(t, r, "Token abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthGarbageToken(t *testing.T) {
	client, _ := redismock.NewClientMock()
	utils.AuthCacheClient = client

	r := authTestRouter()
	w := doAuthRequest(t, r, "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthExpiredToken(t *testing.T) {
	token, err := utils.GenerateToken("cust-a", -time.Minute)
	require.NoError(t, err)

	r := authTestRouter()
	w := doAuthRequest(t, r, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthFirstSeenTokenIsPinned(t *testing.T) {
	token, err := utils.GenerateToken("cust-a", time.Hour)
	require.NoError(t, err)
	hash := utils.HashToken(token)
	key := utils.AuthCachePrefix + "cust-a"

	client, mock := redismock.NewClientMock()
	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, hash, utils.AuthCacheTTL).SetVal("OK")
	utils.AuthCacheClient = client

	r := authTestRouter()
	w := doAuthRequest(t, r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cust-a")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthPinnedTokenAccepted(t *testing.T) {
	token, err := utils.GenerateToken("cust-a", time.Hour)
	require.NoError(t, err)
	hash := utils.HashToken(token)
	key := utils.AuthCachePrefix + "cust-a"

	client, mock := redismock.NewClientMock()
	mock.ExpectGet(key).SetVal(hash)
	mock.ExpectExpire(key, utils.AuthCacheTTL).SetVal(true)
	utils.AuthCacheClient = client

	r := authTestRouter()
	w := doAuthRequest(t, r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthSupersededTokenRejected(t *testing.T) {
	token, err := utils.GenerateToken("cust-a", time.Hour)
	require.NoError(t, err)
	key := utils.AuthCachePrefix + "cust-a"

	client, mock := redismock.NewClientMock()
	mock.ExpectGet(key).SetVal("hash-of-a-newer-token")
	utils.AuthCacheClient = client

	r := authTestRouter()
	w := doAuthRequest(t, r, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "superseded")
	assert.NoError(t, mock.ExpectationsWereMet())
}
