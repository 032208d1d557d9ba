package create_service

import (
	"context"

	"github.com/m04kA/SMC-SkiBookingService/internal/domain"
	"github.com/m04kA/SMC-SkiBookingService/internal/service/catalog/models"
)

type CatalogService interface {
	Create(ctx context.Context, admin domain.Admin, req *models.CreateServiceRequest) (*models.ServiceResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
