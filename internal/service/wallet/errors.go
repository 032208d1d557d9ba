package wallet

import "errors"

var (
	// ErrUserNotFound возвращается, когда пользователь не найден
	ErrUserNotFound = errors.New("wallet: user not found")

	// ErrInvalidAmount возвращается для неположительной суммы пополнения
	ErrInvalidAmount = errors.New("wallet: invalid amount")

	// ErrInsufficientFunds возвращается, когда на балансе меньше суммы списания
	ErrInsufficientFunds = errors.New("wallet: insufficient funds")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("wallet: internal error")
)
