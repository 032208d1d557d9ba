package expire_booking

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках; задачу стоит повторить
	ErrInternal = errors.New("expire_booking: internal error")
)
