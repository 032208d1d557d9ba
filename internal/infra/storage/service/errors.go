package service

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("service.repository: service not found")

	// ErrUnknownType возвращается для неизвестного варианта услуги
	ErrUnknownType = errors.New("service.repository: unknown service type")

	ErrBuildQuery = errors.New("service.repository: failed to build query")
	ErrExecQuery  = errors.New("service.repository: failed to execute query")
	ErrScanRow    = errors.New("service.repository: failed to scan row")
)
