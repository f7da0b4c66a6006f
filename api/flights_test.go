package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avolare/skybook/internal/domain"
	"github.com/avolare/skybook/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockFlightUseCase is a mock implementation of flights.FlightUseCase
type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) Create(ctx context.Context, input flights.CreateFlightInput) (*domain.Flight, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Update(ctx context.Context, id string, upd domain.FlightUpdate) error {
	args := m.Called(ctx, id, upd)
	return args.Error(0)
}

func (m *MockFlightUseCase) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFlightUseCase) GetByID(ctx context.Context, id string) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Search(ctx context.Context, q domain.FlightSearch) ([]domain.Flight, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func TestFlightHandler_search(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest("GET", "/api/flights/search?source=AMS&destination=LIS&date=2026-09-01", nil)

	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	mockService.On("Search", c.Request.Context(), domain.FlightSearch{
		Source:      "AMS",
		Destination: "LIS",
		Date:        &date,
	}).Return([]domain.Flight{{ID: "flight-1", FlightNumber: "SB101"}}, nil)

	handler.search(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "SB101")
	mockService.AssertExpectations(t)
}

func TestFlightHandler_search_badDate(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest("GET", "/api/flights/search?date=next-friday", nil)

	handler.search(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestFlightHandler_get(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "flight-1"}}
	c.Request = httptest.NewRequest("GET", "/api/flights/flight-1", nil)

	mockService.On("GetByID", c.Request.Context(), "flight-1").Return(&domain.Flight{
		ID:           "flight-1",
		FlightNumber: "SB101",
	}, nil)

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var flight domain.Flight
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &flight))
	assert.Equal(t, "SB101", flight.FlightNumber)
}

func TestFlightHandler_get_notFound(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	c.Request = httptest.NewRequest("GET", "/api/flights/missing", nil)

	mockService.On("GetByID", c.Request.Context(), "missing").Return(nil, domain.NotFoundError{Resource: "flight"})

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFlightHandler_create(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	input := flights.CreateFlightInput{
		FlightNumber:  "SB101",
		Source:        "AMS",
		Destination:   "LIS",
		DepartureTime: "2026-09-01T08:00:00Z",
		ArrivalTime:   "2026-09-01T11:00:00Z",
		TotalSeats:    180,
		Price:         120.5,
	}
	body, _ := json.Marshal(input)
	c.Request = httptest.NewRequest("POST", "/api/admin/flights/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("Create", c.Request.Context(), input).Return(&domain.Flight{ID: "flight-1"}, nil)

	handler.create(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "flight-1")
	mockService.AssertExpectations(t)
}

func TestFlightHandler_update(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	price := 99.0
	body, _ := json.Marshal(domain.FlightUpdate{Price: &price})
	c.Params = gin.Params{{Key: "id", Value: "flight-1"}}
	c.Request = httptest.NewRequest("PUT", "/api/admin/flights/flight-1", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("Update", c.Request.Context(), "flight-1", mock.MatchedBy(func(upd domain.FlightUpdate) bool {
		return upd.Price != nil && *upd.Price == 99.0
	})).Return(nil)

	handler.update(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestFlightHandler_delete(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "flight-1"}}
	c.Request = httptest.NewRequest("DELETE", "/api/admin/flights/flight-1", nil)

	mockService.On("Delete", c.Request.Context(), "flight-1").Return(nil)

	handler.delete(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}
