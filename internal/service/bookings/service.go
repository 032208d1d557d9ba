package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SkiBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SkiBookingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-SkiBookingService/internal/integrations/mailer"
	"github.com/m04kA/SMC-SkiBookingService/internal/service/bookings/models"
)

// Service сервис для работы с бронированиями
type Service struct {
	bookingRepo  BookingRepository
	serviceRepo  ServiceRepository
	userRepo     UserRepository
	wallet       Wallet
	notifier     Notifier
	txManager    TransactionManager
	events       EventRecorder
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	serviceRepo ServiceRepository,
	userRepo UserRepository,
	wallet Wallet,
	notifier Notifier,
	txManager TransactionManager,
	events EventRecorder,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		serviceRepo:  serviceRepo,
		userRepo:     userRepo,
		wallet:       wallet,
		notifier:     notifier,
		txManager:    txManager,
		events:       events,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// DenyBooking отменяет бронирование с указанной причиной и возвращает его стоимость на баланс
// Отмена и возврат выполняются в одной транзакции
// Уведомление об отказе отправляется для всех причин, кроме отмены самим пользователем
func (s *Service) DenyBooking(ctx context.Context, id int64, reason domain.CancelReason, scope domain.CancelScope) (*domain.Booking, int64, error) {
	var (
		cancelled *domain.Booking
		balance   int64
	)

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		booking, err := s.bookingRepo.Cancel(ctx, id, reason, scope)
		if err != nil {
			return err
		}
		cancelled = booking

		if booking.Value > 0 {
			balance, err = s.wallet.AddCredits(ctx, booking.UserID, booking.Value)
			if err != nil {
				return fmt.Errorf("refund %d credits to user id=%d: %w", booking.Value, booking.UserID, err)
			}
			return nil
		}

		balance, err = s.wallet.Balance(ctx, booking.UserID)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, bookingRepo.ErrNotCancellable):
			s.logger.Warn("DenyBooking: booking id=%d is not cancellable (reason=%s)", id, reason)
			return nil, 0, ErrNotCancellable
		case errors.Is(err, bookingRepo.ErrBookingNotFound):
			return nil, 0, ErrBookingNotFound
		}
		s.logger.Error("DenyBooking: failed to deny booking id=%d: %v", id, err)
		return nil, 0, fmt.Errorf("%w: DenyBooking - %v", ErrInternal, err)
	}

	s.events.IncBookingEvent("cancelled_" + string(reason))
	s.logger.Info("DenyBooking: booking id=%d cancelled by %s, refunded %d", id, reason, cancelled.Value)

	if reason != domain.CancelledByUser {
		s.notifyDenied(ctx, cancelled)
	}

	return cancelled, balance, nil
}

// notifyDenied собирает данные письма; недоступные пользователь или услуга только логируются
func (s *Service) notifyDenied(ctx context.Context, booking *domain.Booking) {
	user, err := s.userRepo.GetByID(ctx, booking.UserID)
	if err != nil {
		s.logger.Warn("notifyDenied: user id=%d unavailable: %v", booking.UserID, err)
		return
	}

	var serviceName string
	if svc, err := s.serviceRepo.GetByID(ctx, booking.ServiceID); err == nil {
		serviceName = svc.Info().Name
	} else {
		s.logger.Warn("notifyDenied: service id=%d unavailable: %v", booking.ServiceID, err)
	}

	s.notifier.Denied(ctx, mailer.Notification{
		Email:       user.Email,
		UserName:    user.Name,
		ServiceName: serviceName,
		DateFrom:    booking.DateFrom,
		DateTo:      booking.DateTo,
	})
}

// Get получает бронирование по ID
// Доступно владельцу и администраторам курорта, к которому относится бронирование
func (s *Service) Get(ctx context.Context, id int64, caller domain.Identity) (*models.BookingResponse, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("Get: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("Get: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Get - repository error: %v", ErrInternal, err)
	}

	if !canView(booking, caller) {
		s.logger.Warn("Get: access denied for user=%d to booking id=%d", caller.UserID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainBooking(booking), nil
}

func canView(booking *domain.Booking, caller domain.Identity) bool {
	if booking.UserID == caller.UserID {
		return true
	}
	admin, ok := caller.AsAdmin()
	return ok && admin.ResortID == booking.ResortID
}

// ListMine возвращает бронирования пользователя, отсортированные по дате начала
func (s *Service) ListMine(ctx context.Context, req *models.ListMineRequest) (*models.BookingListResponse, error) {
	page := domain.Page{PerPage: req.PerPage, Page: req.Page}
	if err := page.Validate(); err != nil {
		return nil, ErrInvalidPagination
	}

	userID := req.UserID
	filter := domain.BookingsFilter{
		UserID:  &userID,
		Now:     s.timeProvider.Now(),
		SortAsc: req.SortAsc,
	}

	items, total, err := s.bookingRepo.List(ctx, filter, page)
	if err != nil {
		s.logger.Error("ListMine: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: ListMine - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBookings(items, total), nil
}

// ListResort возвращает бронирования курорта администратора
// Поддерживает фильтрацию по пользователю, услуге и статусу
func (s *Service) ListResort(ctx context.Context, req *models.ListResortRequest) (*models.BookingListResponse, error) {
	page := domain.Page{PerPage: req.PerPage, Page: req.Page}
	if err := page.Validate(); err != nil {
		return nil, ErrInvalidPagination
	}

	status := domain.BookingStatusFilter(req.Filter)
	if !status.Valid() {
		s.logger.Warn("ListResort: invalid filter=%q from admin=%d", req.Filter, req.Admin.UserID)
		return nil, fmt.Errorf("%w: unknown filter %q", ErrInvalidInput, req.Filter)
	}

	resortID := req.Admin.ResortID
	filter := domain.BookingsFilter{
		ResortID:  &resortID,
		UserID:    req.UserID,
		ServiceID: req.ServiceID,
		Status:    status,
		Now:       s.timeProvider.Now(),
		SortAsc:   req.SortAsc,
	}

	items, total, err := s.bookingRepo.List(ctx, filter, page)
	if err != nil {
		s.logger.Error("ListResort: repository error for resort=%d: %v", resortID, err)
		return nil, fmt.Errorf("%w: ListResort - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListResort: fetched %d of %d bookings for resort=%d", len(items), total, resortID)
	return models.FromDomainBookings(items, total), nil
}

// Deny отклоняет бронирование администратором курорта
// Бронирование другого курорта неотличимо от несуществующего
func (s *Service) Deny(ctx context.Context, admin domain.Admin, id int64) (*models.BookingResponse, error) {
	resortID := admin.ResortID
	booking, _, err := s.DenyBooking(ctx, id, domain.CancelledByAdmin, domain.CancelScope{ResortID: &resortID})
	if err != nil {
		if errors.Is(err, ErrNotCancellable) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	return models.FromDomainBooking(booking), nil
}

// Refund отменяет собственное бронирование пользователя и возвращает кредиты
// Отмена закрывается за 24 часа до начала бронирования
func (s *Service) Refund(ctx context.Context, userID, id int64) (*models.RefundResponse, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		s.logger.Error("Refund: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Refund - repository error: %v", ErrInternal, err)
	}

	if booking.UserID != userID {
		s.logger.Warn("Refund: user=%d tried to refund foreign booking id=%d", userID, id)
		return nil, ErrBookingNotFound
	}
	if booking.IsCancelled {
		return nil, ErrAlreadyCancelled
	}
	if !booking.CanBeRefunded(s.timeProvider.Now()) {
		s.logger.Warn("Refund: booking id=%d starts %s, too late to refund", id, booking.DateFrom.Format("2006-01-02"))
		return nil, ErrTooLateToRefund
	}

	owner := userID
	cancelled, balance, err := s.DenyBooking(ctx, id, domain.CancelledByUser, domain.CancelScope{UserID: &owner})
	if err != nil {
		// Параллельная отмена успела раньше
		if errors.Is(err, ErrNotCancellable) {
			return nil, ErrAlreadyCancelled
		}
		return nil, err
	}

	return &models.RefundResponse{
		Booking: *models.FromDomainBooking(cancelled),
		Wallet:  balance,
	}, nil
}
