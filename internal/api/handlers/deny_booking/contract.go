package deny_booking

import (
	"context"

	"github.com/m04kA/SMC-SkiBookingService/internal/domain"
	"github.com/m04kA/SMC-SkiBookingService/internal/service/bookings/models"
)

type BookingService interface {
	Deny(ctx context.Context, admin domain.Admin, id int64) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
