package approve_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SkiBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SkiBookingService/internal/api/middleware"
	approveBooking "github.com/m04kA/SMC-SkiBookingService/internal/usecase/approve_booking"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgForbidden        = "доступно только администраторам курорта"
	msgNotFound         = "бронирование не найдено"
	msgServiceBusy      = "услуга занята, повторите запрос"
)

type Handler struct {
	useCase ApproveBookingUseCase
	logger  Logger
}

func NewHandler(useCase ApproveBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/admin/bookings/{bookingId}/approve
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

	result, err := h.useCase.Execute(r.Context(), &approveBooking.Request{Admin: admin, BookingID: bookingID})
	if err != nil {
		switch {
		case errors.Is(err, approveBooking.ErrBookingNotFound):
			handlers.RespondNotFound(w, msgNotFound)
		case errors.Is(err, approveBooking.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidBookingID)
		case errors.Is(err, approveBooking.ErrServiceBusy):
			handlers.RespondConflict(w, msgServiceBusy)
		default:
			h.logger.Error("POST /admin/bookings/{id}/approve - Failed: booking_id=%d, admin_id=%d, error=%v", bookingID, admin.UserID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /admin/bookings/{id}/approve - Approved: booking_id=%d, denied=%d", bookingID, len(result.DeniedRequests))
	handlers.RespondJSON(w, http.StatusOK, result)
}
