package lock

import (
	"context"
	"sync"
)

// LocalLocker блокировка в пределах одного процесса
// Используется, когда Redis выключен
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]chan struct{})}
}

func (l *LocalLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch, ok := l.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[key] = ch
	}
	return ch
}

// WithLock выполняет fn, удерживая блокировку key
// При отмене контекста во время ожидания возвращает ErrNotAcquired
func (l *LocalLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	ch := l.slot(key)

	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return notAcquired(ctx)
	}
	defer func() { <-ch }()

	return fn(ctx)
}
