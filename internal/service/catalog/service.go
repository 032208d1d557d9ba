package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/m04kA/SMC-SkiBookingService/internal/availability"
	"github.com/m04kA/SMC-SkiBookingService/internal/domain"
	serviceRepo "github.com/m04kA/SMC-SkiBookingService/internal/infra/storage/service"
	"github.com/m04kA/SMC-SkiBookingService/internal/service/catalog/models"
	"github.com/m04kA/SMC-SkiBookingService/pkg/daterange"
	"github.com/m04kA/SMC-SkiBookingService/pkg/ptr"
)

// Service каталог услуг курортов
type Service struct {
	serviceRepo ServiceRepository
	bookingRepo BookingRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса каталога
func NewService(serviceRepo ServiceRepository, bookingRepo BookingRepository, logger Logger) *Service {
	return &Service{
		serviceRepo: serviceRepo,
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// Create публикует услугу в курорте администратора
func (s *Service) Create(ctx context.Context, admin domain.Admin, req *models.CreateServiceRequest) (*models.ServiceResponse, error) {
	svc, err := toBookable(admin, req)
	if err != nil {
		s.logger.Warn("Create: validation failed for admin=%d: %v", admin.UserID, err)
		return nil, err
	}

	created, err := s.serviceRepo.Create(ctx, svc)
	if err != nil {
		s.logger.Error("Create: repository error for resort=%d: %v", admin.ResortID, err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Create: %s id=%d created in resort=%d", created.Kind(), created.Info().ID, admin.ResortID)
	return models.FromDomainService(created), nil
}

// Get получает услугу по ID
func (s *Service) Get(ctx context.Context, id int64) (*models.ServiceResponse, error) {
	svc, err := s.serviceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrServiceNotFound) {
			return nil, ErrServiceNotFound
		}
		s.logger.Error("Get: repository error for service id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Get - repository error: %v", ErrInternal, err)
	}
	return models.FromDomainService(svc), nil
}

// Delete удаляет услугу; услуги чужого курорта недоступны
func (s *Service) Delete(ctx context.Context, admin domain.Admin, id int64) error {
	svc, err := s.serviceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrServiceNotFound) {
			return ErrServiceNotFound
		}
		return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
	}

	if svc.Info().ResortID != admin.ResortID {
		s.logger.Warn("Delete: admin=%d of resort=%d tried to delete service id=%d of resort=%d",
			admin.UserID, admin.ResortID, id, svc.Info().ResortID)
		return ErrAccessDenied
	}

	if err := s.serviceRepo.Delete(ctx, id, admin.ResortID); err != nil {
		if errors.Is(err, serviceRepo.ErrServiceNotFound) {
			return ErrServiceNotFound
		}
		s.logger.Error("Delete: repository error for service id=%d: %v", id, err)
		return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Delete: service id=%d deleted by admin=%d", id, admin.UserID)
	return nil
}

// Search ищет услуги по фильтру
// С диапазоном дат страница дополнительно фильтруется по свободным местам,
// и totalItems уменьшается на число отброшенных услуг этой страницы
func (s *Service) Search(ctx context.Context, req *models.SearchRequest) (*models.ServiceListResponse, error) {
	page := domain.Page{PerPage: req.PerPage, Page: req.Page}
	if err := page.Validate(); err != nil {
		return nil, ErrInvalidPagination
	}

	filter, err := toFilter(req)
	if err != nil {
		s.logger.Warn("Search: %v", err)
		return nil, err
	}

	from := daterange.Truncate(ptr.Deref(req.DateFrom, time.Time{}))
	to := daterange.Truncate(ptr.Deref(req.DateTo, time.Time{}))
	withDates := req.DateFrom != nil
	if withDates {
		for _, d := range daterange.WeekdaysTouched(from, to) {
			if !slices.Contains(filter.Weekdays, d) {
				filter.Weekdays = append(filter.Weekdays, d)
			}
		}
	}

	items, total, err := s.serviceRepo.Search(ctx, filter, page)
	if err != nil {
		s.logger.Error("Search: repository error: %v", err)
		return nil, fmt.Errorf("%w: Search - repository error: %v", ErrInternal, err)
	}

	guests := max(req.Guests, domain.MinGuestsLimit)
	result := make([]models.ServiceResponse, 0, len(items))
	for _, svc := range items {
		if withDates {
			fits, err := s.fits(ctx, svc, from, to, guests)
			if err != nil {
				return nil, err
			}
			if !fits {
				total--
				continue
			}
		}
		result = append(result, *models.FromDomainService(svc))
	}

	return &models.ServiceListResponse{Items: result, TotalItems: total}, nil
}

func (s *Service) fits(ctx context.Context, svc domain.Bookable, from, to time.Time, guests int) (bool, error) {
	info := svc.Info()
	approved, err := s.bookingRepo.FindOverlapping(ctx, domain.OverlapQuery{
		ServiceID: info.ID,
		DateFrom:  from,
		DateTo:    to,
		Approved:  true,
	})
	if err != nil {
		s.logger.Error("Search: failed to load bookings of service id=%d: %v", info.ID, err)
		return false, fmt.Errorf("%w: Search - repository error: %v", ErrInternal, err)
	}
	return availability.Fits(info.MaxGuests, guests, from, to, approved), nil
}
