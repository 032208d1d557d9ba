package delete_service

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SkiBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SkiBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-SkiBookingService/internal/service/catalog"
)

const (
	msgInvalidServiceID = "некорректный ID услуги"
	msgForbidden        = "доступно только администраторам курорта"
	msgNotFound         = "услуга не найдена"
	msgAccessDenied     = "услуга принадлежит другому курорту"
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

// Handle DELETE /api/v1/admin/services/{serviceId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	serviceID, err := handlers.PathInt64(r, "serviceId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	admin, ok := middleware.GetAdmin(r.Context())
	if !ok {
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	if err := h.service.Delete(r.Context(), admin, serviceID); err != nil {
		switch {
		case errors.Is(err, catalog.ErrServiceNotFound):
			handlers.RespondNotFound(w, msgNotFound)
		case errors.Is(err, catalog.ErrAccessDenied):
			handlers.RespondForbidden(w, msgAccessDenied)
		default:
			h.logger.Error("DELETE /admin/services/{id} - Failed: service_id=%d, error=%v", serviceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
