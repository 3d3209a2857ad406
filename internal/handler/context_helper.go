package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/educ8/educ8-api/internal/access"
	"github.com/educ8/educ8-api/internal/middleware"
	"github.com/educ8/educ8-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func capabilitiesFromContext(c *gin.Context) (access.Capabilities, *models.JWTClaims) {
	claims := claimsFromContext(c)
	if claims == nil {
		return access.Anonymous(), nil
	}
	return access.Resolve(claims.Role), claims
}
