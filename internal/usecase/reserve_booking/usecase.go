package reserve_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SkiBookingService/internal/availability"
	"github.com/m04kA/SMC-SkiBookingService/internal/domain"
	"github.com/m04kA/SMC-SkiBookingService/internal/infra/lock"
	serviceRepo "github.com/m04kA/SMC-SkiBookingService/internal/infra/storage/service"
	userRepo "github.com/m04kA/SMC-SkiBookingService/internal/infra/storage/user"
	"github.com/m04kA/SMC-SkiBookingService/internal/integrations/mailer"
	"github.com/m04kA/SMC-SkiBookingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-SkiBookingService/internal/service/wallet"
	"github.com/m04kA/SMC-SkiBookingService/pkg/daterange"
)

// UseCase use case для бронирования услуги
type UseCase struct {
	bookingRepo  BookingRepository
	serviceRepo  ServiceRepository
	userRepo     UserRepository
	wallet       Wallet
	locker       Locker
	scheduler    ExpirationScheduler
	notifier     Notifier
	events       EventRecorder
	opts         Options
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	serviceRepo ServiceRepository,
	userRepo UserRepository,
	wallet Wallet,
	locker Locker,
	scheduler ExpirationScheduler,
	notifier Notifier,
	events EventRecorder,
	opts Options,
	logger Logger,
) *UseCase {
	if opts.HorizonMonths <= 0 {
		opts.HorizonMonths = domain.DefaultBookingHorizonMonths
	}
	if opts.ExpirationDelay <= 0 {
		opts.ExpirationDelay = domain.ExpirationDelay
	}

	return &UseCase{
		bookingRepo:  bookingRepo,
		serviceRepo:  serviceRepo,
		userRepo:     userRepo,
		wallet:       wallet,
		locker:       locker,
		scheduler:    scheduler,
		notifier:     notifier,
		events:       events,
		opts:         opts,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case бронирования
// Проверка вместимости и создание записи выполняются под блокировкой услуги
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("ReserveBooking: user=%d, service=%d, %s..%s, guests=%d",
		req.UserID, req.ServiceID, daterange.Format(req.DateFrom), daterange.Format(req.DateTo), req.NumOfGuests)

	// 1. Валидация входных данных и порядка дат
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("ReserveBooking: validation failed: %v", err)
		return nil, err
	}
	from, to := daterange.Truncate(req.DateFrom), daterange.Truncate(req.DateTo)

	// 2. Горизонт бронирования
	if err := validateWindow(from, to, uc.timeProvider.Now(), uc.opts.HorizonMonths); err != nil {
		uc.logger.Warn("ReserveBooking: %v", err)
		return nil, err
	}

	// 3. Пользователь должен подтвердить email
	user, err := uc.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			uc.logger.Warn("ReserveBooking: user id=%d not found", req.UserID)
			return nil, ErrUserNotFound
		}
		uc.logger.Error("ReserveBooking: failed to get user id=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: failed to get user: %v", ErrInternal, err)
	}
	if !user.IsValidated {
		uc.logger.Warn("ReserveBooking: user id=%d is not validated", req.UserID)
		return nil, ErrUnverifiedAccount
	}

	// 4. Услуга
	svc, err := uc.serviceRepo.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrServiceNotFound) {
			uc.logger.Warn("ReserveBooking: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("ReserveBooking: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	info := svc.Info()

	// 5. Дни недели
	if err := validateWeekdays(svc, from, to); err != nil {
		uc.logger.Warn("ReserveBooking: service id=%d accepts only %v: %v", info.ID, weekdayNames(info.AvailableDays), err)
		return nil, err
	}

	var (
		booking *domain.Booking
		price   int64
	)

	// 6-9. Вместимость, стоимость, списание и создание записи
	err = uc.locker.WithLock(ctx, fmt.Sprintf("service:%d", info.ID), func(ctx context.Context) error {
		approved, err := uc.bookingRepo.FindOverlapping(ctx, domain.OverlapQuery{
			ServiceID: info.ID,
			DateFrom:  from,
			DateTo:    to,
			Approved:  true,
		})
		if err != nil {
			uc.logger.Error("ReserveBooking: failed to get approved bookings: %v", err)
			return fmt.Errorf("%w: failed to get approved bookings: %v", ErrInternal, err)
		}

		if err := availability.CheckCapacity(info.MaxGuests, req.NumOfGuests, from, to, approved); err != nil {
			uc.logger.Warn("ReserveBooking: service id=%d: %v", info.ID, err)
			return fmt.Errorf("%w: %v", ErrCapacityExceeded, err)
		}

		price = availability.Price(from, to, info.Price, req.NumOfGuests)
		if !hasFunds(user.Wallet, price) {
			uc.logger.Warn("ReserveBooking: user id=%d wallet=%d, price=%d", user.ID, user.Wallet, price)
			return ErrInsufficientFunds
		}

		// Баланс, прочитанный до блокировки, мог устареть: списание условное
		if _, err := uc.wallet.Debit(ctx, user.ID, price); err != nil {
			if errors.Is(err, wallet.ErrInsufficientFunds) {
				uc.logger.Warn("ReserveBooking: debit of %d for user id=%d rejected: %v", price, user.ID, err)
				return ErrInsufficientFunds
			}
			uc.logger.Error("ReserveBooking: debit of %d for user id=%d failed: %v", price, user.ID, err)
			return fmt.Errorf("%w: failed to debit wallet: %v", ErrInternal, err)
		}

		booking, err = uc.bookingRepo.Create(ctx, &domain.Booking{
			UserID:      user.ID,
			ServiceID:   info.ID,
			ResortID:    info.ResortID,
			ServiceType: svc.Kind(),
			NumOfGuests: req.NumOfGuests,
			Value:       price,
			DateFrom:    from,
			DateTo:      to,
			IsApproved:  info.AutoAccept,
		})
		if err != nil {
			uc.logger.Error("ReserveBooking: failed to create booking: %v", err)
			uc.compensate(ctx, user.ID, price)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) || errors.Is(err, lock.ErrLockBackend) {
			uc.logger.Warn("ReserveBooking: service id=%d is busy: %v", info.ID, err)
			return nil, ErrServiceBusy
		}
		return nil, err
	}

	uc.events.IncBookingEvent("reserved")
	uc.logger.Info("ReserveBooking: created booking id=%d, price=%d, approved=%t", booking.ID, price, booking.IsApproved)

	// 10. Истечение неподтвержденного бронирования
	if !booking.IsApproved {
		if err := uc.scheduler.Schedule(ctx, booking.ID, uc.opts.ExpirationDelay); err != nil {
			uc.logger.Error("ReserveBooking: failed to schedule expiration for booking id=%d: %v", booking.ID, err)
		}
	}

	// 11. Автоподтверждение
	if booking.IsApproved {
		uc.events.IncBookingEvent("approved")
		uc.notifier.Approved(ctx, mailer.Notification{
			Email:       user.Email,
			UserName:    user.Name,
			ServiceName: info.Name,
			DateFrom:    booking.DateFrom,
			DateTo:      booking.DateTo,
		})
	}

	return &Response{
		Price:   price,
		Booking: *models.FromDomainBooking(booking),
	}, nil
}

// compensate возвращает списанные кредиты, если бронирование не удалось сохранить
func (uc *UseCase) compensate(ctx context.Context, userID, amount int64) {
	if amount <= 0 {
		return
	}
	if _, err := uc.wallet.AddCredits(context.WithoutCancel(ctx), userID, amount); err != nil {
		uc.logger.Error("ReserveBooking: failed to return %d credits to user id=%d: %v", amount, userID, err)
	}
}
