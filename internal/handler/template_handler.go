package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-dcm/slot-booking-api/internal/models"
	"github.com/campus-dcm/slot-booking-api/internal/service"
	appErrors "github.com/campus-dcm/slot-booking-api/pkg/errors"
	"github.com/campus-dcm/slot-booking-api/pkg/response"
)

type templateService interface {
	Get(ctx context.Context, day string) (*models.ScheduleTemplate, error)
	List(ctx context.Context) ([]models.ScheduleTemplate, error)
	Save(ctx context.Context, day string, req service.SaveTemplateRequest) (*models.ScheduleTemplate, error)
	Delete(ctx context.Context, day string) error
	SeedDefaults(ctx context.Context) (int, error)
}

// TemplateHandler manages weekday schedule templates.
type TemplateHandler struct {
	service templateService
}

// NewTemplateHandler constructs handler.
func NewTemplateHandler(svc templateService) *TemplateHandler {
	return &TemplateHandler{service: svc}
}

// List godoc
// @Summary List all weekday templates (admin)
// @Tags Templates
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /templates [get]
func (h *TemplateHandler) List(c *gin.Context) {
	templates, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, templates, nil)
}

// Get godoc
// @Summary Get the template for one weekday (admin)
// @Tags Templates
// @Produce json
// @Param day path string true "Weekday name, e.g. monday"
// @Success 200 {object} response.Envelope
// @Router /templates/{day} [get]
func (h *TemplateHandler) Get(c *gin.Context) {
	tmpl, err := h.service.Get(c.Request.Context(), c.Param("day"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tmpl, nil)
}

// Save godoc
// @Summary Replace the template for one weekday (admin)
// @Tags Templates
// @Accept json
// @Produce json
// @Param day path string true "Weekday name"
// @Param payload body service.SaveTemplateRequest true "Template entries"
// @Success 200 {object} response.Envelope
// @Router /templates/{day} [put]
func (h *TemplateHandler) Save(c *gin.Context) {
	var req service.SaveTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid template payload"))
		return
	}

	tmpl, err := h.service.Save(c.Request.Context(), c.Param("day"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tmpl, nil)
}

// Delete godoc
// @Summary Delete the template for one weekday (admin)
// @Tags Templates
// @Param day path string true "Weekday name"
// @Success 204
// @Router /templates/{day} [delete]
func (h *TemplateHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("day")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Seed godoc
// @Summary Create default weekday templates where none exist (admin)
// @Tags Templates
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /templates/seed [post]
func (h *TemplateHandler) Seed(c *gin.Context) {
	created, err := h.service.SeedDefaults(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, gin.H{"created": created}, nil)
}
