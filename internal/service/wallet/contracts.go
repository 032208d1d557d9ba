package wallet

import "context"

// UserRepository хранилище кошельков пользователей
type UserRepository interface {
	Balance(ctx context.Context, id int64) (int64, error)
	AddCredits(ctx context.Context, id, amount int64) (int64, error)
	Debit(ctx context.Context, id, amount int64) (int64, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
