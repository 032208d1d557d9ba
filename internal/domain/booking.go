package domain

import (
	"time"
)

// ServiceType tags the variant of a bookable service
type ServiceType string

const (
	ServiceTypeHotel ServiceType = "hotel"
	ServiceTypeTrack ServiceType = "track"
)

// CancelReason records who or what cancelled a booking
type CancelReason string

const (
	CancelledByUser        CancelReason = "user"
	CancelledByAdmin       CancelReason = "admin"
	CancelledByOverBooking CancelReason = "overBooking"
	CancelledByExpiration  CancelReason = "expiration"
)

// Valid reports whether r is one of the known reasons
func (r CancelReason) Valid() bool {
	switch r {
	case CancelledByUser, CancelledByAdmin, CancelledByOverBooking, CancelledByExpiration:
		return true
	}
	return false
}

// Booking represents a reservation of a service for a date range.
// DateTo is exclusive for billing and inclusive for capacity checks.
type Booking struct {
	ID          int64
	UserID      int64
	ServiceID   int64
	ResortID    int64
	ServiceType ServiceType
	NumOfGuests int
	Value       int64 // total price in credits
	DateFrom    time.Time
	DateTo      time.Time

	IsApproved  bool
	IsCancelled bool
	CancelledBy *CancelReason // set iff IsCancelled

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsPending returns true if the booking awaits an admin decision
func (b *Booking) IsPending() bool {
	return !b.IsApproved && !b.IsCancelled
}

// HoldsCapacity returns true if the booking counts against the service ceiling
func (b *Booking) HoldsCapacity() bool {
	return b.IsApproved && !b.IsCancelled
}

// CanBeRefunded returns true if the owner may still cancel the booking at now.
// Refunds are closed from 24 hours before the first reserved day.
func (b *Booking) CanBeRefunded(now time.Time) bool {
	if b.IsCancelled {
		return false
	}
	return b.DateFrom.After(now.Add(RefundNotice))
}

// Cancel marks the booking cancelled with the given reason
func (b *Booking) Cancel(reason CancelReason) {
	b.IsCancelled = true
	r := reason
	b.CancelledBy = &r
}

// BookingStatusFilter narrows booking listings for admins
type BookingStatusFilter string

const (
	FilterAll      BookingStatusFilter = ""
	FilterPending  BookingStatusFilter = "pending"
	FilterApproved BookingStatusFilter = "approved"
	FilterExpired  BookingStatusFilter = "expired"
	FilterFinished BookingStatusFilter = "finished"
)

// Valid reports whether f is a known filter
func (f BookingStatusFilter) Valid() bool {
	switch f {
	case FilterAll, FilterPending, FilterApproved, FilterExpired, FilterFinished:
		return true
	}
	return false
}

// BookingsFilter фильтр для постраничного получения бронирований
type BookingsFilter struct {
	ResortID  *int64              // Ограничение по курорту (для админов)
	UserID    *int64              // Бронирования конкретного пользователя
	ServiceID *int64              // Бронирования конкретной услуги
	Status    BookingStatusFilter // pending / approved / expired / finished
	Now       time.Time           // Точка отсчета для "finished"
	SortAsc   bool                // Сортировка по date_from по возрастанию
}

// OverlapQuery выборка бронирований услуги, пересекающихся с диапазоном дат
// Отмененные бронирования не возвращаются никогда
type OverlapQuery struct {
	ServiceID int64
	DateFrom  time.Time
	DateTo    time.Time
	Approved  bool
	ExcludeID int64 // 0 = не исключать
}

// CancelScope ограничения условной отмены бронирования
// Отмена всегда требует is_cancelled = false
type CancelScope struct {
	ResortID    *int64 // Только бронирования курорта администратора
	UserID      *int64 // Только бронирования владельца
	OnlyPending bool   // Только неподтвержденные бронирования
}
