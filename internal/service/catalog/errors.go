package catalog

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("catalog: service not found")

	// ErrAccessDenied возвращается, когда услуга принадлежит другому курорту
	ErrAccessDenied = errors.New("catalog: access denied")

	// ErrInvalidPagination возвращается при perPage или page меньше 1
	ErrInvalidPagination = errors.New("catalog: invalid pagination")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("catalog: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("catalog: internal error")
)
