package reserve_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SkiBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SkiBookingService/internal/api/middleware"
	reserveBooking "github.com/m04kA/SMC-SkiBookingService/internal/usecase/reserve_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidDateRange   = "дата выезда должна быть позже даты заезда"
	msgOutOfWindow        = "даты вне доступного периода бронирования"
	msgUnverifiedAccount  = "email не подтвержден"
	msgServiceNotFound    = "услуга не найдена"
	msgUserNotFound       = "пользователь не найден"
	msgDayUnavailable     = "услуга недоступна в выбранные дни недели"
	msgCapacityExceeded   = "недостаточно мест на выбранные даты"
	msgInsufficientFunds  = "недостаточно кредитов на балансе"
	msgServiceBusy        = "услуга занята, повторите запрос"
	msgInvalidInput       = "некорректные параметры бронирования"
)

type Handler struct {
	useCase ReserveBookingUseCase
	logger  Logger
}

func NewHandler(useCase ReserveBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req ReserveBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, reserveBooking.ErrInvalidDateRange):
			handlers.RespondBadRequest(w, msgInvalidDateRange)
		case errors.Is(err, reserveBooking.ErrOutOfWindow):
			handlers.RespondBadRequest(w, msgOutOfWindow)
		case errors.Is(err, reserveBooking.ErrUnverifiedAccount):
			handlers.RespondForbidden(w, msgUnverifiedAccount)
		case errors.Is(err, reserveBooking.ErrServiceNotFound):
			handlers.RespondNotFound(w, msgServiceNotFound)
		case errors.Is(err, reserveBooking.ErrUserNotFound):
			handlers.RespondNotFound(w, msgUserNotFound)
		case errors.Is(err, reserveBooking.ErrDayUnavailable):
			handlers.RespondBadRequest(w, msgDayUnavailable)
		case errors.Is(err, reserveBooking.ErrCapacityExceeded):
			handlers.RespondBadRequest(w, msgCapacityExceeded)
		case errors.Is(err, reserveBooking.ErrInsufficientFunds):
			handlers.RespondBadRequest(w, msgInsufficientFunds)
		case errors.Is(err, reserveBooking.ErrServiceBusy):
			handlers.RespondConflict(w, msgServiceBusy)
		case errors.Is(err, reserveBooking.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidInput)
		default:
			h.logger.Error("POST /bookings - Failed to reserve: user_id=%d, service_id=%d, error=%v",
				userID, req.ServiceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created: booking_id=%d, user_id=%d, price=%d",
		result.Booking.ID, userID, result.Price)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
