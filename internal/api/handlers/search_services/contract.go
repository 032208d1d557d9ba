package search_services

import (
	"context"

	"github.com/m04kA/SMC-SkiBookingService/internal/service/catalog/models"
)

type CatalogService interface {
	Search(ctx context.Context, req *models.SearchRequest) (*models.ServiceListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
