package reserve_booking

import (
	"fmt"
	"slices"
	"time"

	"github.com/m04kA/SMC-SkiBookingService/internal/domain"
	"github.com/m04kA/SMC-SkiBookingService/pkg/daterange"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.NumOfGuests < domain.MinGuestsLimit {
		return fmt.Errorf("%w: numOfGuests must be at least %d", ErrInvalidInput, domain.MinGuestsLimit)
	}

	if req.DateFrom.IsZero() || req.DateTo.IsZero() {
		return fmt.Errorf("%w: dateFrom and dateTo are required", ErrInvalidInput)
	}

	if !daterange.Truncate(req.DateTo).After(daterange.Truncate(req.DateFrom)) {
		return ErrInvalidDateRange
	}

	return nil
}

// validateWindow проверяет, что обе даты лежат в диапазоне [сегодня, сегодня + horizonMonths]
func validateWindow(from, to, now time.Time, horizonMonths int) error {
	today := daterange.Truncate(now)
	limit := today.AddDate(0, horizonMonths, 0)

	for _, d := range []time.Time{daterange.Truncate(from), daterange.Truncate(to)} {
		if d.Before(today) || d.After(limit) {
			return fmt.Errorf("%w: %s is outside %s..%s", ErrOutOfWindow,
				daterange.Format(d), daterange.Format(today), daterange.Format(limit))
		}
	}
	return nil
}

// validateWeekdays проверяет, что услуга работает во все задетые дни недели
// День выезда не учитывается
func validateWeekdays(svc domain.Bookable, from, to time.Time) error {
	for _, wd := range daterange.WeekdaysTouched(from, to) {
		if !svc.AcceptsOn(wd) {
			return fmt.Errorf("%w: %s", ErrDayUnavailable, wd)
		}
	}
	return nil
}

// hasFunds баланс должен строго превышать стоимость
func hasFunds(wallet, price int64) bool {
	return wallet > price
}

func weekdayNames(days []time.Weekday) []string {
	names := make([]string, 0, len(days))
	for _, d := range slices.Sorted(slices.Values(days)) {
		names = append(names, d.String())
	}
	return names
}
