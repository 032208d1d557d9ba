package expire_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SkiBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SkiBookingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-SkiBookingService/internal/service/bookings"
)

// sweepBatch максимум бронирований за один проход
const sweepBatch = 100

// UseCase отмена неподтвержденных бронирований по истечении срока
// Повторная доставка одной и той же задачи безопасна
type UseCase struct {
	bookingRepo  BookingRepository
	denier       Denier
	delay        time.Duration
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(bookingRepo BookingRepository, denier Denier, delay time.Duration, logger Logger) *UseCase {
	if delay <= 0 {
		delay = domain.ExpirationDelay
	}
	return &UseCase{
		bookingRepo:  bookingRepo,
		denier:       denier,
		delay:        delay,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Expire отменяет бронирование, если оно все еще ждет подтверждения
// Подтвержденные, отмененные и несуществующие бронирования пропускаются
func (uc *UseCase) Expire(ctx context.Context, bookingID int64) error {
	_, err := uc.expire(ctx, bookingID)
	return err
}

func (uc *UseCase) expire(ctx context.Context, bookingID int64) (bool, error) {
	booking, err := uc.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("ExpireBooking: booking id=%d not found, skipping", bookingID)
			return false, nil
		}
		return false, fmt.Errorf("%w: failed to get booking id=%d: %v", ErrInternal, bookingID, err)
	}

	if !booking.IsPending() {
		return false, nil
	}

	_, _, err = uc.denier.DenyBooking(ctx, bookingID, domain.CancelledByExpiration, domain.CancelScope{OnlyPending: true})
	if err != nil {
		if errors.Is(err, bookings.ErrNotCancellable) || errors.Is(err, bookings.ErrBookingNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%w: failed to expire booking id=%d: %v", ErrInternal, bookingID, err)
	}

	uc.logger.Info("ExpireBooking: booking id=%d expired", bookingID)
	return true, nil
}

// SweepExpired отменяет все зависшие бронирования старше срока истечения
// Подстраховывает потерянные сообщения очереди
func (uc *UseCase) SweepExpired(ctx context.Context) (int, error) {
	cutoff := uc.timeProvider.Now().Add(-uc.delay)

	ids, err := uc.bookingRepo.ListStalePending(ctx, cutoff, sweepBatch)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to list stale bookings: %v", ErrInternal, err)
	}

	expired := 0
	var errs []error
	for _, id := range ids {
		ok, err := uc.expire(ctx, id)
		if err != nil {
			uc.logger.Error("SweepExpired: %v", err)
			errs = append(errs, err)
			continue
		}
		if ok {
			expired++
		}
	}

	return expired, errors.Join(errs...)
}
