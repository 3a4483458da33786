package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-dcm/slot-booking-api/internal/models"
	appErrors "github.com/campus-dcm/slot-booking-api/pkg/errors"
	"github.com/campus-dcm/slot-booking-api/pkg/response"
)

type bookingService interface {
	Book(ctx context.Context, slotID string, actor models.Actor) (*models.Slot, error)
	Cancel(ctx context.Context, slotID string, actor models.Actor) (*models.Slot, error)
}

// BookingHandler exposes the reservation engine.
type BookingHandler struct {
	service bookingService
}

// NewBookingHandler constructs handler.
func NewBookingHandler(svc bookingService) *BookingHandler {
	return &BookingHandler{service: svc}
}

// Book godoc
// @Summary Book a slot
// @Tags Bookings
// @Produce json
// @Param id path string true "Slot ID"
// @Success 200 {object} response.Envelope
// @Router /slots/{id}/book [post]
func (h *BookingHandler) Book(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	slot, err := h.service.Book(c.Request.Context(), c.Param("id"), models.ActorFromClaims(claims))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// Cancel godoc
// @Summary Cancel a booking
// @Tags Bookings
// @Produce json
// @Param id path string true "Slot ID"
// @Success 200 {object} response.Envelope
// @Router /slots/{id}/cancel [post]
func (h *BookingHandler) Cancel(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	slot, err := h.service.Cancel(c.Request.Context(), c.Param("id"), models.ActorFromClaims(claims))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}
