// Package scheduler содержит фоновые задачи истечения бронирований:
// периодическую проверку по cron и локальный планировщик отложенных задач
package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
)

var ErrInvalidSchedule = errors.New("scheduler: invalid schedule")

// Sweeper периодически отменяет бронирования, чьи задачи истечения потерялись
type Sweeper struct {
	sweeper  ExpiredSweeper
	schedule string
	logger   Logger
	cron     *cron.Cron
}

// NewSweeper создает периодическую задачу по cron-выражению (например "@every 15m")
func NewSweeper(sweeper ExpiredSweeper, schedule string, logger Logger) *Sweeper {
	return &Sweeper{
		sweeper:  sweeper,
		schedule: schedule,
		logger:   logger,
		cron:     cron.New(),
	}
}

// Start регистрирует задачу и запускает cron до отмены ctx
func (s *Sweeper) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.schedule, func() { s.tick(ctx) }); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidSchedule, s.schedule, err)
	}

	s.cron.Start()
	s.logger.Info("scheduler: expiration sweeper started (%s)", s.schedule)

	go func() {
		<-ctx.Done()
		<-s.cron.Stop().Done()
		s.logger.Info("scheduler: expiration sweeper stopped")
	}()
	return nil
}

func (s *Sweeper) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	n, err := s.sweeper.SweepExpired(ctx)
	if err != nil {
		s.logger.Error("scheduler: sweep expired bookings failed: %v", err)
		return
	}
	if n > 0 {
		s.logger.Info("scheduler: expired %d stale bookings", n)
	}
}
