package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/tripmarket/marketplace-backend/internal/utils"
)

// ClientIP stores the resolved client address for utils.GetRealIP
func ClientIP(resolver *utils.ProxyResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(utils.ClientIPKey, resolver.Resolve(c))
		c.Next()
	}
}
