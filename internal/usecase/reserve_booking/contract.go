package reserve_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SkiBookingService/internal/domain"
	"github.com/m04kA/SMC-SkiBookingService/internal/integrations/mailer"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
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

// Wallet интерфейс кошелька
type Wallet interface {
	Debit(ctx context.Context, userID, amount int64) (int64, error)
	AddCredits(ctx context.Context, userID, amount int64) (int64, error)
}

// Locker сериализует проверку вместимости и создание бронирования по услуге
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// ExpirationScheduler планирует отмену неподтвержденного бронирования
type ExpirationScheduler interface {
	Schedule(ctx context.Context, bookingID int64, delay time.Duration) error
}

// Notifier фоновая отправка уведомлений
type Notifier interface {
	Approved(ctx context.Context, n mailer.Notification)
}

// EventRecorder счетчики доменных событий
type EventRecorder interface {
	IncBookingEvent(event string)
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
