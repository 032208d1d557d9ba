package delete_service

import (
	"context"

	"github.com/m04kA/SMC-SkiBookingService/internal/domain"
)

type CatalogService interface {
	Delete(ctx context.Context, admin domain.Admin, id int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
