package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/campus-dcm/slot-booking-api/pkg/errors"
)

type scheduleServiceMock struct {
	created    int
	matErr     error
	deleted    int64
	eraseErr   error
	lastDate   time.Time
	lastStart  time.Time
	lastEnd    time.Time
	matCalled  bool
	eraseCalls int
}

func (m *scheduleServiceMock) Materialize(ctx context.Context, date time.Time) (int, error) {
	m.matCalled = true
	m.lastDate = date
	return m.created, m.matErr
}

func (m *scheduleServiceMock) EraseRange(ctx context.Context, startDate, endDate time.Time) (int64, error) {
	m.eraseCalls++
	m.lastStart, m.lastEnd = startDate, endDate
	return m.deleted, m.eraseErr
}

func TestScheduleHandlerMaterialize(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &scheduleServiceMock{created: 8}
	handler := NewScheduleHandler(mockSvc, time.UTC)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/schedules/materialize", bytes.NewBufferString(`{"date":"2026-09-07"}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Materialize(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, mockSvc.matCalled)
	assert.Equal(t, time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), mockSvc.lastDate)
}

func TestScheduleHandlerMaterializeBadDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewScheduleHandler(&scheduleServiceMock{}, time.UTC)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/schedules/materialize", bytes.NewBufferString(`{"date":"next monday"}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Materialize(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleHandlerMaterializeConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &scheduleServiceMock{matErr: appErrors.ErrAlreadyMaterialized}
	handler := NewScheduleHandler(mockSvc, time.UTC)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/schedules/materialize", bytes.NewBufferString(`{"date":"2026-09-07"}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Materialize(c)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestScheduleHandlerEraseRange(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &scheduleServiceMock{deleted: 16}
	handler := NewScheduleHandler(mockSvc, time.UTC)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/schedules?start=2026-09-01&end=2026-09-05", nil)
	c.Request = req

	handler.EraseRange(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, mockSvc.eraseCalls)
	assert.Equal(t, time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC), mockSvc.lastEnd)
}

func TestScheduleHandlerEraseRangeMissingParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewScheduleHandler(&scheduleServiceMock{}, time.UTC)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/schedules?start=2026-09-01", nil)
	c.Request = req

	handler.EraseRange(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
