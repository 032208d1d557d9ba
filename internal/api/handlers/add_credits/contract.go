package add_credits

import "context"

type WalletService interface {
	AddCredits(ctx context.Context, userID, amount int64) (int64, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
