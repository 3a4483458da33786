package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	appErrors "github.com/campus-dcm/slot-booking-api/pkg/errors"
	"github.com/campus-dcm/slot-booking-api/pkg/response"
)

type scheduleService interface {
	Materialize(ctx context.Context, date time.Time) (int, error)
	EraseRange(ctx context.Context, startDate, endDate time.Time) (int64, error)
}

// MaterializeRequest names the date whose template should be expanded.
type MaterializeRequest struct {
	Date string `json:"date" binding:"required"`
}

// ScheduleHandler exposes schedule materialization and withdrawal.
type ScheduleHandler struct {
	service scheduleService
	loc     *time.Location
}

// NewScheduleHandler constructs handler.
func NewScheduleHandler(svc scheduleService, loc *time.Location) *ScheduleHandler {
	if loc == nil {
		loc = time.Local
	}
	return &ScheduleHandler{service: svc, loc: loc}
}

// Materialize godoc
// @Summary Materialize the weekday template onto a date (admin)
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body MaterializeRequest true "Target date"
// @Success 201 {object} response.Envelope
// @Router /schedules/materialize [post]
func (h *ScheduleHandler) Materialize(c *gin.Context) {
	var req MaterializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid materialize payload"))
		return
	}

	date, err := time.ParseInLocation(dateLayout, req.Date, h.loc)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD"))
		return
	}

	created, err := h.service.Materialize(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, gin.H{"date": req.Date, "created": created}, nil)
}

// EraseRange godoc
// @Summary Delete all slots in an inclusive date range (admin)
// @Tags Schedules
// @Produce json
// @Param start query string true "First date (YYYY-MM-DD)"
// @Param end query string true "Last date, inclusive (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /schedules [delete]
func (h *ScheduleHandler) EraseRange(c *gin.Context) {
	start, err := time.ParseInLocation(dateLayout, c.Query("start"), h.loc)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "start must be YYYY-MM-DD"))
		return
	}
	end, err := time.ParseInLocation(dateLayout, c.Query("end"), h.loc)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "end must be YYYY-MM-DD"))
		return
	}

	deleted, err := h.service.EraseRange(c.Request.Context(), start, end)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deleted": deleted}, nil)
}
