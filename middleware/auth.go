package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"slotify/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// CustomerAuthMiddleware authenticates the bearer token and attaches the
// authenticated customer id to the request context. A Redis-side token hash
// supports revocation: once a hash is pinned for a customer, only that token
// is accepted until it expires or is replaced.
func CustomerAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Missing or invalid Authorization header",
			})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		customerID, err := utils.ExtractCustomerIDFromToken(tokenString)
		if err != nil || customerID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Invalid or expired token",
			})
			return
		}

		computedHash := utils.HashToken(tokenString)
		cacheKey := utils.AuthCachePrefix + customerID

		authCache := utils.GetAuthCacheClient()
		if authCache != nil {
			cachedHash, err := authCache.Get(ctx, cacheKey).Result()
			switch {
			case err == nil:
				if cachedHash != computedHash {
					c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
						"success": false,
						"message": "Token has been superseded",
					})
					return
				}
				_ = authCache.Expire(ctx, cacheKey, utils.AuthCacheTTL).Err()
			case err == redis.Nil:
				_ = authCache.Set(ctx, cacheKey, computedHash, utils.AuthCacheTTL).Err()
			default:
				// Cache unavailable: the signed token already proved identity.
				log.Printf("WARNING: auth cache lookup failed: %v", err)
			}
		}

		c.Set("customerID", customerID)
		c.Next()
	}
}

// CustomerID returns the authenticated customer id from the request context.
func CustomerID(c *gin.Context) string {
	id, _ := c.Get("customerID")
	s, _ := id.(string)
	return s
}
