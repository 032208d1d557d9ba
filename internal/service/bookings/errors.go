package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("bookings: booking not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("bookings: access denied")

	// ErrNotCancellable возвращается, когда бронирование уже отменено или не подходит под условие отмены
	ErrNotCancellable = errors.New("bookings: booking cannot be cancelled")

	// ErrAlreadyCancelled возвращается при повторной отмене
	ErrAlreadyCancelled = errors.New("bookings: booking already cancelled")

	// ErrTooLateToRefund возвращается, когда до начала бронирования меньше 24 часов
	ErrTooLateToRefund = errors.New("bookings: too late to refund")

	// ErrInvalidPagination возвращается при perPage или page меньше 1
	ErrInvalidPagination = errors.New("bookings: invalid pagination")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("bookings: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("bookings: internal error")
)
