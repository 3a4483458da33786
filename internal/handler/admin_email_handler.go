package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-dcm/slot-booking-api/internal/models"
	appErrors "github.com/campus-dcm/slot-booking-api/pkg/errors"
	"github.com/campus-dcm/slot-booking-api/pkg/response"
)

type adminEmailService interface {
	List(ctx context.Context) ([]models.AuthorizedEmail, error)
	Add(ctx context.Context, email string) (*models.AuthorizedEmail, error)
	Remove(ctx context.Context, email string) error
}

// AddEmailRequest carries the email to authorize.
type AddEmailRequest struct {
	Email string `json:"email" binding:"required"`
}

// AdminEmailHandler manages the authorized admin email roster.
type AdminEmailHandler struct {
	service adminEmailService
}

// NewAdminEmailHandler constructs handler.
func NewAdminEmailHandler(svc adminEmailService) *AdminEmailHandler {
	return &AdminEmailHandler{service: svc}
}

// List godoc
// @Summary List authorized admin emails (admin)
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/emails [get]
func (h *AdminEmailHandler) List(c *gin.Context) {
	emails, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, emails, nil)
}

// Add godoc
// @Summary Authorize an email for admin access (admin)
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body AddEmailRequest true "Email to authorize"
// @Success 201 {object} response.Envelope
// @Router /admin/emails [post]
func (h *AdminEmailHandler) Add(c *gin.Context) {
	var req AddEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid email payload"))
		return
	}

	record, err := h.service.Add(c.Request.Context(), req.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Remove godoc
// @Summary Revoke an email's admin authorization (admin)
// @Tags Admin
// @Param email path string true "Email to revoke"
// @Success 204
// @Router /admin/emails/{email} [delete]
func (h *AdminEmailHandler) Remove(c *gin.Context) {
	if err := h.service.Remove(c.Request.Context(), c.Param("email")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
