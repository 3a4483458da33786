package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campus-dcm/slot-booking-api/internal/models"
	appErrors "github.com/campus-dcm/slot-booking-api/pkg/errors"
	"github.com/campus-dcm/slot-booking-api/pkg/response"
)

const dateLayout = "2006-01-02"

type slotService interface {
	Get(ctx context.Context, id string) (*models.Slot, error)
	ListByDate(ctx context.Context, date time.Time) ([]models.Slot, error)
	ListByRange(ctx context.Context, from, to time.Time) ([]models.Slot, error)
	ListMine(ctx context.Context, userID string, from time.Time) ([]models.Slot, error)
	Update(ctx context.Context, id string, upd models.SlotUpdate) (*models.Slot, error)
	Delete(ctx context.Context, id string) error
}

// SlotHandler serves slot queries and admin slot edits.
type SlotHandler struct {
	service slotService
	loc     *time.Location
}

// NewSlotHandler constructs handler.
func NewSlotHandler(svc slotService, loc *time.Location) *SlotHandler {
	if loc == nil {
		loc = time.Local
	}
	return &SlotHandler{service: svc, loc: loc}
}

// List godoc
// @Summary List slots for a date or instant range
// @Tags Slots
// @Produce json
// @Param date query string false "Calendar date (YYYY-MM-DD)"
// @Param from query string false "Range start (YYYY-MM-DD)"
// @Param to query string false "Range end, exclusive (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /slots [get]
func (h *SlotHandler) List(c *gin.Context) {
	if date := c.Query("date"); date != "" {
		day, err := time.ParseInLocation(dateLayout, date, h.loc)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD"))
			return
		}
		slots, err := h.service.ListByDate(c.Request.Context(), day)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, slots, nil)
		return
	}

	from, err := time.ParseInLocation(dateLayout, c.Query("from"), h.loc)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "from must be YYYY-MM-DD"))
		return
	}
	to, err := time.ParseInLocation(dateLayout, c.Query("to"), h.loc)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "to must be YYYY-MM-DD"))
		return
	}

	slots, err := h.service.ListByRange(c.Request.Context(), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// ListMine godoc
// @Summary List the caller's upcoming bookings
// @Tags Slots
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /slots/mine [get]
func (h *SlotHandler) ListMine(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	actor := models.ActorFromClaims(claims)
	slots, err := h.service.ListMine(c.Request.Context(), actor.ID, time.Now().In(h.loc))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// Get godoc
// @Summary Get one slot
// @Tags Slots
// @Produce json
// @Param id path string true "Slot ID"
// @Success 200 {object} response.Envelope
// @Router /slots/{id} [get]
func (h *SlotHandler) Get(c *gin.Context) {
	slot, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// Update godoc
// @Summary Edit slot fields (admin)
// @Tags Slots
// @Accept json
// @Produce json
// @Param id path string true "Slot ID"
// @Param payload body models.SlotUpdate true "Fields to update"
// @Success 200 {object} response.Envelope
// @Router /slots/{id} [put]
func (h *SlotHandler) Update(c *gin.Context) {
	var upd models.SlotUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot payload"))
		return
	}

	slot, err := h.service.Update(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// Delete godoc
// @Summary Delete one slot (admin)
// @Tags Slots
// @Param id path string true "Slot ID"
// @Success 204
// @Router /slots/{id} [delete]
func (h *SlotHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
