package guard

import (
	"github.com/gin-gonic/gin"
)

// Gin returns gin middleware guarding with the default rules
func Gin(source SessionSource, opts ...Option) gin.HandlerFunc {
	return New(source, opts...).Gin()
}

func (g *Guard) Gin() gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := g.Check(c.Request.Context())
		if !decision.Proceed() {
			c.Redirect(redirectStatus(c.Request.Method), decision.Redirect)
			c.Abort()
			return
		}
		c.Next()
	}
}
