package catalog

import (
	"context"

	"github.com/m04kA/SMC-SkiBookingService/internal/domain"
)

// ServiceRepository интерфейс каталога услуг
type ServiceRepository interface {
	Create(ctx context.Context, svc domain.Bookable) (domain.Bookable, error)
	GetByID(ctx context.Context, id int64) (domain.Bookable, error)
	Delete(ctx context.Context, id, resortID int64) error
	Search(ctx context.Context, filter domain.ServicesFilter, page domain.Page) ([]domain.Bookable, int, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	FindOverlapping(ctx context.Context, q domain.OverlapQuery) ([]*domain.Booking, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
