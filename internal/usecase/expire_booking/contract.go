package expire_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SkiBookingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]int64, error)
}

// Denier отменяет бронирование с возвратом средств (реализуется bookings.Service)
type Denier interface {
	DenyBooking(ctx context.Context, id int64, reason domain.CancelReason, scope domain.CancelScope) (*domain.Booking, int64, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
