package lock

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotAcquired блокировку не удалось взять за отведенное время
	ErrNotAcquired = errors.New("lock: not acquired")

	// ErrLockBackend ошибка хранилища блокировок
	ErrLockBackend = errors.New("lock: backend error")
)

// notAcquired ошибка ожидания, прерванного контекстом; сохраняет ctx.Err() в цепочке
func notAcquired(ctx context.Context) error {
	return fmt.Errorf("%w: %w", ErrNotAcquired, ctx.Err())
}
