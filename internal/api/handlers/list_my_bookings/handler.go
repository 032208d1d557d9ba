package list_my_bookings

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SkiBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SkiBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SkiBookingService/internal/domain"
	"github.com/m04kA/SMC-SkiBookingService/internal/service/bookings"
	"github.com/m04kA/SMC-SkiBookingService/internal/service/bookings/models"
)

const (
	msgMissingUserID     = "отсутствует ID пользователя"
	msgInvalidPagination = "perPage и page должны быть не меньше 1"
	msgInvalidSort       = "sort должен быть asc или desc"
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

// Handle GET /api/v1/bookings?perPage=10&page=1&sort=asc
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	perPage, err := handlers.QueryInt(r, "perPage", domain.DefaultPerPage)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidPagination)
		return
	}
	page, err := handlers.QueryInt(r, "page", 1)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidPagination)
		return
	}

	var sortAsc bool
	switch r.URL.Query().Get("sort") {
	case "", "desc":
	case "asc":
		sortAsc = true
	default:
		handlers.RespondBadRequest(w, msgInvalidSort)
		return
	}

	resp, err := h.service.ListMine(r.Context(), &models.ListMineRequest{
		UserID:  userID,
		PerPage: perPage,
		Page:    page,
		SortAsc: sortAsc,
	})
	if err != nil {
		if errors.Is(err, bookings.ErrInvalidPagination) {
			handlers.RespondBadRequest(w, msgInvalidPagination)
			return
		}
		h.logger.Error("GET /bookings - Failed to list bookings: user_id=%d, error=%v", userID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, resp)
}
