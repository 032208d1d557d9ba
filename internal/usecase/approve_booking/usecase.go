package approve_booking

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/m04kA/SMC-SkiBookingService/internal/availability"
	"github.com/m04kA/SMC-SkiBookingService/internal/domain"
	"github.com/m04kA/SMC-SkiBookingService/internal/infra/lock"
	bookingRepo "github.com/m04kA/SMC-SkiBookingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-SkiBookingService/internal/integrations/mailer"
	"github.com/m04kA/SMC-SkiBookingService/internal/service/bookings"
	"github.com/m04kA/SMC-SkiBookingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-SkiBookingService/pkg/daterange"
)

const approvedMessageFormat = "Request approved and email sent to %s"

// UseCase use case подтверждения бронирования администратором
// После подтверждения отклоняет пересекающиеся неподтвержденные бронирования, которые больше не помещаются
type UseCase struct {
	bookingRepo BookingRepository
	serviceRepo ServiceRepository
	userRepo    UserRepository
	denier      Denier
	locker      Locker
	notifier    Notifier
	events      EventRecorder
	logger      Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	serviceRepo ServiceRepository,
	userRepo UserRepository,
	denier Denier,
	locker Locker,
	notifier Notifier,
	events EventRecorder,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo: bookingRepo,
		serviceRepo: serviceRepo,
		userRepo:    userRepo,
		denier:      denier,
		locker:      locker,
		notifier:    notifier,
		events:      events,
		logger:      logger,
	}
}

// approval результат подтверждения под блокировкой услуги
type approval struct {
	booking *domain.Booking
	svc     domain.Bookable
	user    *domain.User
	denied  []models.BookingResponse
}

// Execute подтверждает бронирование и разбирает переполнение
// Подтверждение и отклонение переполнения выполняются под той же блокировкой услуги, что и бронирование
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("ApproveBooking: booking=%d, admin=%d, resort=%d", req.BookingID, req.Admin.UserID, req.Admin.ResortID)

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("ApproveBooking: validation failed: %v", err)
		return nil, err
	}

	// 1. Услуга нужна до подтверждения, чтобы взять ее блокировку
	current, err := uc.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("ApproveBooking: booking id=%d not found", req.BookingID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("ApproveBooking: failed to get booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}
	if current.ResortID != req.Admin.ResortID {
		uc.logger.Warn("ApproveBooking: booking id=%d belongs to resort=%d, not %d", current.ID, current.ResortID, req.Admin.ResortID)
		return nil, ErrBookingNotFound
	}

	// 2-4. Подтверждение, загрузка пересечений и first-fit под блокировкой услуги
	var result *approval
	err = uc.locker.WithLock(ctx, fmt.Sprintf("service:%d", current.ServiceID), func(ctx context.Context) error {
		var err error
		result, err = uc.approve(ctx, req)
		return err
	})
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) || errors.Is(err, lock.ErrLockBackend) {
			uc.logger.Warn("ApproveBooking: service id=%d is busy: %v", current.ServiceID, err)
			return nil, ErrServiceBusy
		}
		return nil, err
	}

	// 5. Уведомление владельца подтвержденного бронирования
	uc.notifier.Approved(ctx, mailer.Notification{
		Email:       result.user.Email,
		UserName:    result.user.Name,
		ServiceName: result.svc.Info().Name,
		DateFrom:    result.booking.DateFrom,
		DateTo:      result.booking.DateTo,
	})

	uc.logger.Info("ApproveBooking: booking id=%d approved, %d pending denied", result.booking.ID, len(result.denied))
	return &Response{
		Message:        fmt.Sprintf(approvedMessageFormat, result.user.Email),
		DeniedRequests: result.denied,
	}, nil
}

func (uc *UseCase) approve(ctx context.Context, req *Request) (*approval, error) {
	// Условное подтверждение в пределах курорта администратора
	booking, err := uc.bookingRepo.Approve(ctx, req.BookingID, req.Admin.ResortID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("ApproveBooking: booking id=%d not found in resort=%d", req.BookingID, req.Admin.ResortID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("ApproveBooking: failed to approve booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to approve booking: %v", ErrInternal, err)
	}
	uc.events.IncBookingEvent("approved")

	// Параллельно загружаем пересекающиеся бронирования, услугу и пользователя
	var (
		pending  []*domain.Booking
		approved []*domain.Booking
		svc      domain.Bookable
		user     *domain.User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pending, err = uc.bookingRepo.FindOverlapping(gctx, domain.OverlapQuery{
			ServiceID: booking.ServiceID,
			DateFrom:  booking.DateFrom,
			DateTo:    booking.DateTo,
			Approved:  false,
			ExcludeID: booking.ID,
		})
		return err
	})
	g.Go(func() error {
		var err error
		approved, err = uc.bookingRepo.FindOverlapping(gctx, domain.OverlapQuery{
			ServiceID: booking.ServiceID,
			DateFrom:  booking.DateFrom,
			DateTo:    booking.DateTo,
			Approved:  true,
		})
		return err
	})
	g.Go(func() error {
		var err error
		svc, err = uc.serviceRepo.GetByID(gctx, booking.ServiceID)
		return err
	})
	g.Go(func() error {
		var err error
		user, err = uc.userRepo.GetByID(gctx, booking.UserID)
		return err
	})
	if err := g.Wait(); err != nil {
		uc.logger.Error("ApproveBooking: failed to load context for booking id=%d: %v", booking.ID, err)
		return nil, fmt.Errorf("%w: failed to load overlapping bookings: %v", ErrInternal, err)
	}

	// First-fit: каждое неподтвержденное бронирование проверяется независимо, в порядке создания
	ceiling := svc.Info().MaxGuests
	denied := make([]models.BookingResponse, 0)
	for _, p := range pending {
		overflowDay, over := availability.Exceeds(ceiling, p, approved)
		if !over {
			continue
		}

		uc.logger.Info("ApproveBooking: pending booking id=%d overflows service id=%d on %s",
			p.ID, booking.ServiceID, daterange.Format(overflowDay))

		cancelled, _, err := uc.denier.DenyBooking(ctx, p.ID, domain.CancelledByOverBooking, domain.CancelScope{OnlyPending: true})
		if err != nil {
			if errors.Is(err, bookings.ErrNotCancellable) {
				// уже отменено пользователем или истекло
				continue
			}
			uc.logger.Error("ApproveBooking: failed to deny booking id=%d: %v", p.ID, err)
			return nil, fmt.Errorf("%w: failed to deny overbooked booking id=%d: %v", ErrInternal, p.ID, err)
		}
		denied = append(denied, *models.FromDomainBooking(cancelled))
	}

	return &approval{booking: booking, svc: svc, user: user, denied: denied}, nil
}
