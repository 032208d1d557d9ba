package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/m04kA/SMC-SkiBookingService/internal/domain"
	serviceRepo "github.com/m04kA/SMC-SkiBookingService/internal/infra/storage/service"
)

// ServiceStore in-memory каталог услуг
type ServiceStore struct {
	mu       sync.RWMutex
	nextID   int64
	services map[int64]domain.Bookable
}

// NewServiceStore создает пустой каталог
func NewServiceStore() *ServiceStore {
	return &ServiceStore{services: make(map[int64]domain.Bookable)}
}

func cloneService(svc domain.Bookable) domain.Bookable {
	switch v := svc.(type) {
	case *domain.Hotel:
		c := *v
		c.AvailableDays = slices.Clone(v.AvailableDays)
		return &c
	case *domain.Track:
		c := *v
		c.AvailableDays = slices.Clone(v.AvailableDays)
		return &c
	}
	return svc
}

func (s *ServiceStore) Create(_ context.Context, svc domain.Bookable) (domain.Bookable, error) {
	switch svc.(type) {
	case *domain.Hotel, *domain.Track:
	default:
		return nil, fmt.Errorf("%w: %T", serviceRepo.ErrUnknownType, svc)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	info := svc.Info()
	info.ID = s.nextID
	info.Type = svc.Kind()
	info.CreatedAt = time.Now()
	s.services[info.ID] = cloneService(svc)

	return svc, nil
}

func (s *ServiceStore) GetByID(_ context.Context, id int64) (domain.Bookable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	svc, ok := s.services[id]
	if !ok {
		return nil, serviceRepo.ErrServiceNotFound
	}
	return cloneService(svc), nil
}

func (s *ServiceStore) Delete(_ context.Context, id, resortID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	svc, ok := s.services[id]
	if !ok || svc.Info().ResortID != resortID {
		return serviceRepo.ErrServiceNotFound
	}
	delete(s.services, id)
	return nil
}

func (s *ServiceStore) Search(_ context.Context, filter domain.ServicesFilter, page domain.Page) ([]domain.Bookable, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.Bookable, 0)
	for _, svc := range s.services {
		if matchesServiceFilter(svc, filter) {
			matched = append(matched, cloneService(svc))
		}
	}

	slices.SortFunc(matched, func(a, b domain.Bookable) int {
		c := strings.Compare(a.Info().Name, b.Info().Name)
		if filter.NameDesc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return compareID(a.Info().ID, b.Info().ID)
	})

	return paginate(matched, page), len(matched), nil
}

func matchesServiceFilter(svc domain.Bookable, f domain.ServicesFilter) bool {
	info := svc.Info()

	if f.Type != nil && svc.Kind() != *f.Type {
		return false
	}
	if f.ResortID != nil && info.ResortID != *f.ResortID {
		return false
	}
	if name := strings.TrimSpace(f.Name); name != "" && !containsFold(info.Name, name) {
		return false
	}
	if f.MinPrice != nil && info.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && info.Price > *f.MaxPrice {
		return false
	}
	for _, d := range f.Weekdays {
		if !svc.AcceptsOn(d) {
			return false
		}
	}

	hotel, isHotel := svc.(*domain.Hotel)
	if f.MinStars != nil && (!isHotel || hotel.Stars < *f.MinStars) {
		return false
	}
	if f.MaxStars != nil && (!isHotel || hotel.Stars > *f.MaxStars) {
		return false
	}
	if f.Rating != nil {
		track, isTrack := svc.(*domain.Track)
		if !isTrack || track.Rating != *f.Rating {
			return false
		}
	}
	return true
}
