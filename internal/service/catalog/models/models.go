package models

import (
	"time"

	"github.com/m04kA/SMC-SkiBookingService/internal/domain"
)

// CreateServiceRequest запрос на создание услуги курорта
type CreateServiceRequest struct {
	Type          string   `json:"type"` // hotel / track
	Name          string   `json:"name"`
	Price         int64    `json:"price"`
	MaxGuests     int      `json:"maxGuests"`
	AvailableDays []string `json:"availableDays"` // ["Monday", "Saturday"]
	AutoAccept    bool     `json:"autoAccept"`

	// Отель
	Address string `json:"address,omitempty"`
	Stars   int    `json:"stars,omitempty"`

	// Трасса
	LengthMeters int    `json:"lengthMeters,omitempty"`
	Rating       string `json:"rating,omitempty"`
}

// SearchRequest параметры поиска по каталогу
// Если заданы DateFrom и DateTo, остаются только услуги со свободными местами на Guests гостей
type SearchRequest struct {
	Type     *string
	ResortID *int64
	Name     string
	MinPrice *int64
	MaxPrice *int64
	MinStars *int
	MaxStars *int
	Rating   *string
	Weekdays []string
	NameDesc bool

	DateFrom *time.Time
	DateTo   *time.Time
	Guests   int

	PerPage int
	Page    int
}

// ServiceResponse ответ с данными услуги
type ServiceResponse struct {
	ID            int64     `json:"id"`
	ResortID      int64     `json:"resortId"`
	Type          string    `json:"type"`
	Name          string    `json:"name"`
	Price         int64     `json:"price"`
	MaxGuests     int       `json:"maxGuests"`
	AvailableDays []string  `json:"availableDays"`
	AutoAccept    bool      `json:"autoAccept"`
	Address       *string   `json:"address,omitempty"`
	Stars         *int      `json:"stars,omitempty"`
	LengthMeters  *int      `json:"lengthMeters,omitempty"`
	Rating        *string   `json:"rating,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ServiceListResponse страница каталога
type ServiceListResponse struct {
	Items      []ServiceResponse `json:"items"`
	TotalItems int               `json:"totalItems"`
}

// FromDomainService конвертирует вариант услуги в ServiceResponse
func FromDomainService(svc domain.Bookable) *ServiceResponse {
	info := svc.Info()

	days := make([]string, 0, len(info.AvailableDays))
	for _, d := range info.AvailableDays {
		days = append(days, d.String())
	}

	resp := &ServiceResponse{
		ID:            info.ID,
		ResortID:      info.ResortID,
		Type:          string(svc.Kind()),
		Name:          info.Name,
		Price:         info.Price,
		MaxGuests:     info.MaxGuests,
		AvailableDays: days,
		AutoAccept:    info.AutoAccept,
		CreatedAt:     info.CreatedAt,
	}

	switch v := svc.(type) {
	case *domain.Hotel:
		resp.Address = &v.Address
		resp.Stars = &v.Stars
	case *domain.Track:
		resp.LengthMeters = &v.LengthMeters
		rating := string(v.Rating)
		resp.Rating = &rating
	}

	return resp
}
