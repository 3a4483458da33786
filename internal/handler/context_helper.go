package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/campus-dcm/slot-booking-api/internal/middleware"
	"github.com/campus-dcm/slot-booking-api/internal/models"
)

// currentClaims extracts the validated JWT claims placed by the auth middleware.
func currentClaims(c *gin.Context) *models.JWTClaims {
	claimsValue, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := claimsValue.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}
