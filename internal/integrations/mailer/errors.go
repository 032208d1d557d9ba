package mailer

import "errors"

var (
	ErrInit    = errors.New("mailer: failed to init smtp client")
	ErrMessage = errors.New("mailer: failed to build message")
	ErrSend    = errors.New("mailer: failed to send message")
)
