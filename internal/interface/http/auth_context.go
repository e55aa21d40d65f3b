package http

import (
	"github.com/gin-gonic/gin"

	"github.com/prepnest/prepnest/internal/domain/users"
)

const authClaimsKey = "auth_claims"

func setClaims(c *gin.Context, claims users.Claims) {
	c.Set(authClaimsKey, claims)
}

func getClaims(c *gin.Context) (users.Claims, bool) {
	value, ok := c.Get(authClaimsKey)
	if !ok {
		return users.Claims{}, false
	}
	claims, ok := value.(users.Claims)
	return claims, ok
}
