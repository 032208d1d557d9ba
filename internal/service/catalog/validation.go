package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-SkiBookingService/internal/domain"
	"github.com/m04kA/SMC-SkiBookingService/internal/service/catalog/models"
)

func parseWeekdays(names []string) ([]time.Weekday, error) {
	days := make([]time.Weekday, 0, len(names))
	seen := make(map[time.Weekday]bool, len(names))
	for _, name := range names {
		d, ok := domain.ParseWeekday(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown weekday %q", ErrInvalidInput, name)
		}
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	return days, nil
}

// toBookable валидирует запрос и собирает вариант услуги
func toBookable(admin domain.Admin, req *models.CreateServiceRequest) (domain.Bookable, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > domain.MaxNameLength {
		return nil, fmt.Errorf("%w: name must be 1..%d characters", ErrInvalidInput, domain.MaxNameLength)
	}
	if req.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	if req.MaxGuests < domain.MinGuestsLimit {
		return nil, fmt.Errorf("%w: maxGuests must be at least %d", ErrInvalidInput, domain.MinGuestsLimit)
	}
	if len(req.AvailableDays) == 0 {
		return nil, fmt.Errorf("%w: availableDays must not be empty", ErrInvalidInput)
	}
	days, err := parseWeekdays(req.AvailableDays)
	if err != nil {
		return nil, err
	}

	base := domain.Service{
		ResortID:      admin.ResortID,
		Name:          name,
		Price:         req.Price,
		MaxGuests:     req.MaxGuests,
		AvailableDays: days,
		AutoAccept:    req.AutoAccept,
	}

	switch domain.ServiceType(req.Type) {
	case domain.ServiceTypeHotel:
		if req.Stars < domain.MinStars || req.Stars > domain.MaxStars {
			return nil, fmt.Errorf("%w: stars must be %d..%d", ErrInvalidInput, domain.MinStars, domain.MaxStars)
		}
		base.Type = domain.ServiceTypeHotel
		return &domain.Hotel{Service: base, Address: strings.TrimSpace(req.Address), Stars: req.Stars}, nil

	case domain.ServiceTypeTrack:
		rating := domain.TrackRating(req.Rating)
		if !rating.Valid() {
			return nil, fmt.Errorf("%w: unknown rating %q", ErrInvalidInput, req.Rating)
		}
		if req.LengthMeters < 0 {
			return nil, fmt.Errorf("%w: lengthMeters must not be negative", ErrInvalidInput)
		}
		base.Type = domain.ServiceTypeTrack
		return &domain.Track{Service: base, LengthMeters: req.LengthMeters, Rating: rating}, nil
	}

	return nil, fmt.Errorf("%w: unknown service type %q", ErrInvalidInput, req.Type)
}

// toFilter переводит параметры поиска в фильтр репозитория
func toFilter(req *models.SearchRequest) (domain.ServicesFilter, error) {
	filter := domain.ServicesFilter{
		ResortID: req.ResortID,
		Name:     strings.TrimSpace(req.Name),
		MinPrice: req.MinPrice,
		MaxPrice: req.MaxPrice,
		MinStars: req.MinStars,
		MaxStars: req.MaxStars,
		NameDesc: req.NameDesc,
	}

	if req.Type != nil {
		t := domain.ServiceType(*req.Type)
		if t != domain.ServiceTypeHotel && t != domain.ServiceTypeTrack {
			return filter, fmt.Errorf("%w: unknown service type %q", ErrInvalidInput, *req.Type)
		}
		filter.Type = &t
	}

	if req.Rating != nil {
		r := domain.TrackRating(*req.Rating)
		if !r.Valid() {
			return filter, fmt.Errorf("%w: unknown rating %q", ErrInvalidInput, *req.Rating)
		}
		filter.Rating = &r
	}

	days, err := parseWeekdays(req.Weekdays)
	if err != nil {
		return filter, err
	}
	filter.Weekdays = days

	if (req.DateFrom == nil) != (req.DateTo == nil) {
		return filter, fmt.Errorf("%w: dateFrom and dateTo must be set together", ErrInvalidInput)
	}
	if req.DateFrom != nil && !req.DateTo.After(*req.DateFrom) {
		return filter, fmt.Errorf("%w: dateTo must be after dateFrom", ErrInvalidInput)
	}

	return filter, nil
}
