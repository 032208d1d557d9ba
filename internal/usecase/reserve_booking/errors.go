package reserve_booking

import "errors"

var (
	// ErrInvalidDateRange возвращается, когда dateTo не позже dateFrom
	ErrInvalidDateRange = errors.New("reserve_booking: dateTo must be after dateFrom")

	// ErrOutOfWindow возвращается, когда даты выходят за горизонт бронирования
	ErrOutOfWindow = errors.New("reserve_booking: dates are out of booking window")

	// ErrUnverifiedAccount возвращается, когда email пользователя не подтвержден
	ErrUnverifiedAccount = errors.New("reserve_booking: account is not verified")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("reserve_booking: service not found")

	// ErrUserNotFound возвращается, когда пользователь не найден
	ErrUserNotFound = errors.New("reserve_booking: user not found")

	// ErrDayUnavailable возвращается, когда услуга не принимает гостей в один из дней диапазона
	ErrDayUnavailable = errors.New("reserve_booking: service is unavailable on requested days")

	// ErrCapacityExceeded возвращается, когда на одну из дат не хватает мест
	ErrCapacityExceeded = errors.New("reserve_booking: capacity exceeded")

	// ErrInsufficientFunds возвращается, когда баланс не превышает стоимость
	ErrInsufficientFunds = errors.New("reserve_booking: insufficient funds")

	// ErrServiceBusy возвращается, когда не удалось захватить блокировку услуги
	ErrServiceBusy = errors.New("reserve_booking: service is busy, retry later")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reserve_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reserve_booking: internal error")
)
