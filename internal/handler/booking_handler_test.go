package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-dcm/slot-booking-api/internal/middleware"
	"github.com/campus-dcm/slot-booking-api/internal/models"
	appErrors "github.com/campus-dcm/slot-booking-api/pkg/errors"
)

type bookingServiceMock struct {
	bookResp   *models.Slot
	bookErr    error
	cancelResp *models.Slot
	cancelErr  error
	lastSlotID string
	lastActor  models.Actor
}

func (m *bookingServiceMock) Book(ctx context.Context, slotID string, actor models.Actor) (*models.Slot, error) {
	m.lastSlotID = slotID
	m.lastActor = actor
	return m.bookResp, m.bookErr
}

func (m *bookingServiceMock) Cancel(ctx context.Context, slotID string, actor models.Actor) (*models.Slot, error) {
	m.lastSlotID = slotID
	m.lastActor = actor
	return m.cancelResp, m.cancelErr
}

func TestBookingHandlerBook(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &bookingServiceMock{bookResp: &models.Slot{ID: "s1", IsBooked: true}}
	handler := NewBookingHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/slots/s1/book", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "s1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1", FullName: "Dr. Rao"})

	handler.Book(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s1", mockSvc.lastSlotID)
	assert.Equal(t, "u1", mockSvc.lastActor.ID)
	assert.Equal(t, "Dr. Rao", mockSvc.lastActor.DisplayName)
}

func TestBookingHandlerBookUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewBookingHandler(&bookingServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/slots/s1/book", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "s1"}}

	handler.Book(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBookingHandlerBookAlreadyBooked(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &bookingServiceMock{bookErr: appErrors.ErrAlreadyBooked}
	handler := NewBookingHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/slots/s1/book", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "s1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1"})

	handler.Book(c)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestBookingHandlerCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &bookingServiceMock{cancelResp: &models.Slot{ID: "s1"}}
	handler := NewBookingHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/slots/s1/cancel", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "s1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1", Admin: true})

	handler.Cancel(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.lastActor.Admin)
}

func TestBookingHandlerCancelNotOwner(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &bookingServiceMock{cancelErr: appErrors.ErrNotOwner}
	handler := NewBookingHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/slots/s1/cancel", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "s1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u2"})

	handler.Cancel(c)
	require.Equal(t, http.StatusPreconditionFailed, w.Code)
}
