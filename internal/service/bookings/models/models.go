package models

import (
	"time"

	"github.com/m04kA/SMC-SkiBookingService/internal/domain"
	"github.com/m04kA/SMC-SkiBookingService/pkg/daterange"
)

// Request модели

// ListMineRequest запрос на получение бронирований пользователя
type ListMineRequest struct {
	UserID  int64
	PerPage int
	Page    int
	SortAsc bool
}

// ListResortRequest запрос администратора на получение бронирований курорта
type ListResortRequest struct {
	Admin     domain.Admin
	UserID    *int64
	ServiceID *int64
	Filter    string // pending / approved / expired / finished
	PerPage   int
	Page      int
	SortAsc   bool
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID          int64   `json:"id"`
	UserID      int64   `json:"userId"`
	ServiceID   int64   `json:"serviceId"`
	ResortID    int64   `json:"resortId"`
	ServiceType string  `json:"serviceType"`
	NumOfGuests int     `json:"numOfGuests"`
	Value       int64   `json:"value"`
	DateFrom    string  `json:"dateFrom"` // "2023-12-01"
	DateTo      string  `json:"dateTo"`
	IsApproved  bool    `json:"isApproved"`
	IsCancelled bool    `json:"isCancelled"`
	CancelledBy *string `json:"cancelledBy,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse страница бронирований
type BookingListResponse struct {
	Items      []BookingResponse `json:"items"`
	TotalItems int               `json:"totalItems"`
}

// RefundResponse результат отмены бронирования пользователем
type RefundResponse struct {
	Booking BookingResponse `json:"booking"`
	Wallet  int64           `json:"wallet"`
}

// FromDomainBooking конвертирует domain.Booking в BookingResponse
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	resp := &BookingResponse{
		ID:          b.ID,
		UserID:      b.UserID,
		ServiceID:   b.ServiceID,
		ResortID:    b.ResortID,
		ServiceType: string(b.ServiceType),
		NumOfGuests: b.NumOfGuests,
		Value:       b.Value,
		DateFrom:    daterange.Format(b.DateFrom),
		DateTo:      daterange.Format(b.DateTo),
		IsApproved:  b.IsApproved,
		IsCancelled: b.IsCancelled,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
	if b.CancelledBy != nil {
		reason := string(*b.CancelledBy)
		resp.CancelledBy = &reason
	}
	return resp
}

// FromDomainBookings конвертирует страницу бронирований
func FromDomainBookings(bookings []*domain.Booking, total int) *BookingListResponse {
	items := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, *FromDomainBooking(b))
	}
	return &BookingListResponse{Items: items, TotalItems: total}
}
