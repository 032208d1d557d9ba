package bookings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SkiBookingService/internal/domain"
	"github.com/m04kA/SMC-SkiBookingService/internal/integrations/mailer"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	Cancel(ctx context.Context, id int64, reason domain.CancelReason, scope domain.CancelScope) (*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingsFilter, page domain.Page) ([]*domain.Booking, int, error)
}

// ServiceRepository интерфейс каталога услуг
type ServiceRepository interface {
	GetByID(ctx context.Context, id int64) (domain.Bookable, error)
}

// UserRepository интерфейс репозитория пользователей
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// Wallet интерфейс кошелька
type Wallet interface {
	AddCredits(ctx context.Context, userID, amount int64) (int64, error)
	Balance(ctx context.Context, userID int64) (int64, error)
}

// Notifier фоновая отправка уведомлений
type Notifier interface {
	Denied(ctx context.Context, n mailer.Notification)
}

// EventRecorder счетчики доменных событий
type EventRecorder interface {
	IncBookingEvent(event string)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
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
