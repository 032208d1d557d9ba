package approve_booking

import (
	"context"

	"github.com/m04kA/SMC-SkiBookingService/internal/domain"
	"github.com/m04kA/SMC-SkiBookingService/internal/integrations/mailer"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	Approve(ctx context.Context, id, resortID int64) (*domain.Booking, error)
	FindOverlapping(ctx context.Context, q domain.OverlapQuery) ([]*domain.Booking, error)
}

// ServiceRepository интерфейс каталога услуг
type ServiceRepository interface {
	GetByID(ctx context.Context, id int64) (domain.Bookable, error)
}

// UserRepository интерфейс репозитория пользователей
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// Denier отменяет бронирование с возвратом средств (реализуется bookings.Service)
type Denier interface {
	DenyBooking(ctx context.Context, id int64, reason domain.CancelReason, scope domain.CancelScope) (*domain.Booking, int64, error)
}

// Locker сериализует изменения вместимости одной услуги
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// Notifier фоновая отправка уведомлений
type Notifier interface {
	Approved(ctx context.Context, n mailer.Notification)
}

// EventRecorder счетчики доменных событий
type EventRecorder interface {
	IncBookingEvent(event string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
