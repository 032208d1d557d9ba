package get_service

import (
	"context"

	"github.com/m04kA/SMC-SkiBookingService/internal/service/catalog/models"
)

type CatalogService interface {
	Get(ctx context.Context, id int64) (*models.ServiceResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
