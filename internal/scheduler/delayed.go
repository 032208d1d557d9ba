package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Delayed локальный планировщик отложенных задач истечения
// Используется вместо RabbitMQ, когда брокер выключен; задачи не переживают рестарт,
// их подбирает Sweeper
type Delayed struct {
	inner   gocron.Scheduler
	handler ExpirationHandler
	logger  Logger
}

// NewDelayed создает и запускает планировщик
func NewDelayed(handler ExpirationHandler, logger Logger) (*Delayed, error) {
	inner, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("scheduler: init gocron: %w", err)
	}
	inner.Start()

	return &Delayed{
		inner:   inner,
		handler: handler,
		logger:  logger,
	}, nil
}

// Schedule ставит однократную задачу истечения бронирования через delay
func (d *Delayed) Schedule(_ context.Context, bookingID int64, delay time.Duration) error {
	fireAt := time.Now().Add(delay)

	start := gocron.OneTimeJobStartDateTime(fireAt)
	if delay <= 0 {
		start = gocron.OneTimeJobStartImmediately()
	}

	_, err := d.inner.NewJob(
		gocron.OneTimeJob(start),
		gocron.NewTask(func(id int64) {
			if err := d.handler.Expire(context.Background(), id); err != nil {
				d.logger.Error("scheduler: expire booking id=%d failed: %v", id, err)
			}
		}, bookingID),
	)
	if err != nil {
		return fmt.Errorf("scheduler: schedule booking id=%d: %w", bookingID, err)
	}

	d.logger.Info("scheduler: scheduled expiration of booking id=%d at %s", bookingID, fireAt.Format(time.RFC3339))
	return nil
}

// Close останавливает планировщик
func (d *Delayed) Close() error {
	return d.inner.Shutdown()
}
