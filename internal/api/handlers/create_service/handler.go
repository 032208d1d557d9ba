package create_service

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SkiBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SkiBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SkiBookingService/internal/service/catalog"
	"github.com/m04kA/SMC-SkiBookingService/internal/service/catalog/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgForbidden          = "доступно только администраторам курорта"
)

type Handler struct {
	service CatalogService
	logger  Logger
}

func NewHandler(service CatalogService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/admin/services
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	admin, ok := middleware.GetAdmin(r.Context())
	if !ok {
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	var req models.CreateServiceRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /admin/services - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	resp, err := h.service.Create(r.Context(), admin, &req)
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidInput) {
			handlers.RespondBadRequest(w, err.Error())
			return
		}
		h.logger.Error("POST /admin/services - Failed: resort_id=%d, error=%v", admin.ResortID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /admin/services - Service created: service_id=%d, resort_id=%d", resp.ID, admin.ResortID)
	handlers.RespondJSON(w, http.StatusCreated, resp)
}
