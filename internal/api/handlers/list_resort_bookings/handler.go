package list_resort_bookings

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
	msgForbidden         = "доступно только администраторам курорта"
	msgInvalidPagination = "perPage и page должны быть не меньше 1"
	msgInvalidQuery      = "некорректные параметры запроса"
	msgInvalidFilter     = "filter должен быть pending, approved, expired или finished"
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

// Handle GET /api/v1/admin/bookings
// Query: filter, userId, serviceId, perPage, page, sort
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	admin, ok := middleware.GetAdmin(r.Context())
	if !ok {
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	req, err := parseQuery(r, admin)
	if err != nil {
		h.logger.Warn("GET /admin/bookings - Invalid query: %v", err)
		handlers.RespondBadRequest(w, msgInvalidQuery)
		return
	}

	resp, err := h.service.ListResort(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidPagination):
			handlers.RespondBadRequest(w, msgInvalidPagination)
		case errors.Is(err, bookings.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidFilter)
		default:
			h.logger.Error("GET /admin/bookings - Failed to list bookings: resort_id=%d, error=%v", admin.ResortID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, resp)
}

func parseQuery(r *http.Request, admin domain.Admin) (*models.ListResortRequest, error) {
	perPage, err := handlers.QueryInt(r, "perPage", domain.DefaultPerPage)
	if err != nil {
		return nil, err
	}
	page, err := handlers.QueryInt(r, "page", 1)
	if err != nil {
		return nil, err
	}
	userID, err := handlers.QueryInt64Ptr(r, "userId")
	if err != nil {
		return nil, err
	}
	serviceID, err := handlers.QueryInt64Ptr(r, "serviceId")
	if err != nil {
		return nil, err
	}

	return &models.ListResortRequest{
		Admin:     admin,
		UserID:    userID,
		ServiceID: serviceID,
		Filter:    r.URL.Query().Get("filter"),
		PerPage:   perPage,
		Page:      page,
		SortAsc:   r.URL.Query().Get("sort") == "asc",
	}, nil
}
