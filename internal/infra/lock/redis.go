// Package lock реализует блокировки на уровне услуги, которые сериализуют
// проверку вместимости и создание бронирования
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "ski-booking:lock:"

	DefaultTTL        = 5 * time.Second
	DefaultWait       = 2 * time.Second
	DefaultRetryDelay = 50 * time.Millisecond
)

// releaseScript удаляет ключ, только если он все еще принадлежит владельцу токена
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker распределенная блокировка через SET NX PX
type RedisLocker struct {
	client     *redis.Client
	ttl        time.Duration
	wait       time.Duration
	retryDelay time.Duration
}

// NewRedisLocker создает блокировку с временем жизни ключа ttl
func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisLocker{
		client:     client,
		ttl:        ttl,
		wait:       DefaultWait,
		retryDelay: DefaultRetryDelay,
	}
}

// NewRedisClient создает клиента и проверяет соединение
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: ping %s: %v", ErrLockBackend, addr, err)
	}
	return client, nil
}

// WithLock выполняет fn, удерживая блокировку key
// Если блокировка не получена за wait или контекст отменен, возвращает ErrNotAcquired
func (l *RedisLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	token := uuid.NewString()
	fullKey := keyPrefix + key

	if err := l.acquire(ctx, fullKey, token); err != nil {
		return err
	}
	defer func() {
		// Освобождаем даже при отмененном контексте запроса
		_ = releaseScript.Run(context.WithoutCancel(ctx), l.client, []string{fullKey}, token).Err()
	}()

	return fn(ctx)
}

func (l *RedisLocker) acquire(ctx context.Context, key, token string) error {
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return notAcquired(ctx)
			}
			return fmt.Errorf("%w: SetNX %s: %v", ErrLockBackend, key, err)
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrNotAcquired
		}

		select {
		case <-ctx.Done():
			return notAcquired(ctx)
		case <-time.After(l.retryDelay):
		}
	}
}
