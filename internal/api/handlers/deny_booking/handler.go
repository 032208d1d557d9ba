package deny_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SkiBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SkiBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SkiBookingService/internal/service/bookings"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgForbidden        = "доступно только администраторам курорта"
	msgNotFound         = "бронирование не найдено"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/admin/bookings/{bookingId}/deny
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathInt64(r, "bookingId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	admin, ok := middleware.GetAdmin(r.Context())
	if !ok {
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	resp, err := h.service.Deny(r.Context(), admin, bookingID)
	if err != nil {
		if errors.Is(err, bookings.ErrBookingNotFound) {
			handlers.RespondNotFound(w, msgNotFound)
			return
		}
		h.logger.Error("POST /admin/bookings/{id}/deny - Failed: booking_id=%d, admin_id=%d, error=%v", bookingID, admin.UserID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /admin/bookings/{id}/deny - Denied: booking_id=%d, admin_id=%d", bookingID, admin.UserID)
	handlers.RespondJSON(w, http.StatusOK, resp)
}
