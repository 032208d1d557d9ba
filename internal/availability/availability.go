// Package availability implements the per-day guest capacity check and the
// pricing rule shared by reservation, approval and catalog search.
package availability

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-SkiBookingService/internal/domain"
	"github.com/m04kA/SMC-SkiBookingService/pkg/daterange"
)

var (
	ErrCapacityExceeded = errors.New("availability: capacity exceeded")
)

// GuestsOn суммирует гостей в бронированиях, покрывающих день (включительно с обеих сторон)
// Бронирование с ID == excludeID не учитывается
func GuestsOn(day time.Time, bookings []*domain.Booking, excludeID int64) int {
	total := 0
	for _, b := range bookings {
		if excludeID != 0 && b.ID == excludeID {
			continue
		}
		if daterange.Contains(b.DateFrom, b.DateTo, day) {
			total += b.NumOfGuests
		}
	}
	return total
}

// CheckCapacity проверяет, что добавление requested гостей на [from, to] не превысит ceiling
// ни в один из дней. approved - подтвержденные неотмененные бронирования той же услуги
func CheckCapacity(ceiling, requested int, from, to time.Time, approved []*domain.Booking) error {
	if !Fits(ceiling, requested, from, to, approved) {
		return ErrCapacityExceeded
	}
	return nil
}

// Fits то же, что CheckCapacity, но возвращает bool
func Fits(ceiling, requested int, from, to time.Time, approved []*domain.Booking) bool {
	for day := range daterange.Dates(from, to) {
		if GuestsOn(day, approved, 0)+requested > ceiling {
			return false
		}
	}
	return true
}

// Exceeds возвращает первый день, в который booking вместе с approved превышает ceiling
func Exceeds(ceiling int, booking *domain.Booking, approved []*domain.Booking) (time.Time, bool) {
	for day := range daterange.Dates(booking.DateFrom, booking.DateTo) {
		if GuestsOn(day, approved, booking.ID)+booking.NumOfGuests > ceiling {
			return day, true
		}
	}
	return time.Time{}, false
}

// Price стоимость бронирования: дни (без дня выезда) * цена за день * гости
func Price(from, to time.Time, unitPrice int64, guests int) int64 {
	return int64(daterange.DaysBetween(from, to)) * unitPrice * int64(guests)
}
