package refund_booking

import (
	"context"

	"github.com/m04kA/SMC-SkiBookingService/internal/service/bookings/models"
)

type BookingService interface {
	Refund(ctx context.Context, userID, id int64) (*models.RefundResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
