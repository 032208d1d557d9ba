package reserve_booking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SkiBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SkiBookingService/internal/domain"
	"github.com/m04kA/SMC-SkiBookingService/internal/service/bookings/models"
	reserveBooking "github.com/m04kA/SMC-SkiBookingService/internal/usecase/reserve_booking"
	"github.com/m04kA/SMC-SkiBookingService/pkg/logger"
)

type stubUseCase struct {
	err error
	got *reserveBooking.Request
}

func (s *stubUseCase) Execute(_ context.Context, req *reserveBooking.Request) (*reserveBooking.Response, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return &reserveBooking.Response{
		Price:   600,
		Booking: models.BookingResponse{ID: 1, UserID: req.UserID, ServiceID: req.ServiceID},
	}, nil
}

const body = `{"serviceId":3,"dateFrom":"2024-02-05","dateTo":"2024-02-07","numOfGuests":2}`

func serve(h *Handler, payload string, withUser bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(payload))
	if withUser {
		req = req.WithContext(middleware.WithIdentity(req.Context(), domain.Identity{UserID: 5, Role: domain.RoleUser}))
	}
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandler_Created(t *testing.T) {
	uc := &stubUseCase{}
	rec := serve(NewHandler(uc, logger.NewNop()), body, true)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, uc.got)
	assert.Equal(t, int64(5), uc.got.UserID)
	assert.Equal(t, int64(3), uc.got.ServiceID)
	assert.Equal(t, 2, uc.got.NumOfGuests)
	assert.Equal(t, time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC), uc.got.DateFrom)

	var resp struct {
		Price   int64 `json:"price"`
		Booking struct {
			ID int64 `json:"id"`
		} `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(600), resp.Price)
	assert.Equal(t, int64(1), resp.Booking.ID)
}

func TestHandler_BadRequests(t *testing.T) {
	h := NewHandler(&stubUseCase{}, logger.NewNop())

	assert.Equal(t, http.StatusUnauthorized, serve(h, body, false).Code)
	assert.Equal(t, http.StatusBadRequest, serve(h, `{"serviceId":`, true).Code)
	assert.Equal(t, http.StatusBadRequest, serve(h, `{"serviceId":3,"extra":1}`, true).Code)
	assert.Equal(t, http.StatusBadRequest, serve(h, `{"serviceId":3,"dateFrom":"05.02.2024","dateTo":"2024-02-07","numOfGuests":1}`, true).Code)
}

func TestHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{reserveBooking.ErrInvalidDateRange, http.StatusBadRequest},
		{reserveBooking.ErrOutOfWindow, http.StatusBadRequest},
		{reserveBooking.ErrUnverifiedAccount, http.StatusForbidden},
		{reserveBooking.ErrServiceNotFound, http.StatusNotFound},
		{reserveBooking.ErrUserNotFound, http.StatusNotFound},
		{reserveBooking.ErrDayUnavailable, http.StatusBadRequest},
		{reserveBooking.ErrCapacityExceeded, http.StatusBadRequest},
		{reserveBooking.ErrInsufficientFunds, http.StatusBadRequest},
		{reserveBooking.ErrServiceBusy, http.StatusConflict},
		{fmt.Errorf("%w: db down", reserveBooking.ErrInternal), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := serve(NewHandler(&stubUseCase{err: tt.err}, logger.NewNop()), body, true)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}
