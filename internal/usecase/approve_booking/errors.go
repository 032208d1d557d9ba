package approve_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено, отменено или принадлежит другому курорту
	ErrBookingNotFound = errors.New("approve_booking: booking not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("approve_booking: invalid input data")

	// ErrServiceBusy возвращается, когда блокировка услуги не получена
	ErrServiceBusy = errors.New("approve_booking: service is busy, retry later")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("approve_booking: internal error")
)
