package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	accountcache "marketplace-backend/internal/cache/redis"
	"marketplace-backend/internal/common/logger"
	"marketplace-backend/internal/features/account/models"
	"marketplace-backend/internal/features/account/service"
)

const accountContextKey = "account"

// Auth resolves the bearer token to the acting account before any
// protected handler runs. The redis cache is consulted first; cache
// failures fall through to the account store.
func Auth(accounts service.AccountService, cache *accountcache.AccountCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		if cache != nil {
			if account, err := cache.GetByToken(c.Request.Context(), token); err == nil {
				c.Set(accountContextKey, account)
				c.Next()
				return
			}
		}

		account, err := accounts.GetByToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}

		if cache != nil {
			if err := cache.Set(c.Request.Context(), token, account); err != nil {
				logger.Debug().Err(err).Msg("failed to cache account lookup")
			}
		}

		c.Set(accountContextKey, account)
		c.Next()
	}
}

// AccountFromContext returns the authenticated account placed by Auth.
func AccountFromContext(c *gin.Context) (*models.Account, bool) {
	v, exists := c.Get(accountContextKey)
	if !exists {
		return nil, false
	}
	account, ok := v.(*models.Account)
	return account, ok
}
