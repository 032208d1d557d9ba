package scheduler

import "context"

// ExpiredSweeper отменяет зависшие неподтвержденные бронирования
type ExpiredSweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

// ExpirationHandler обработчик сработавшей задачи истечения
type ExpirationHandler interface {
	Expire(ctx context.Context, bookingID int64) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
