package list_resort_bookings

import (
	"context"

	"github.com/m04kA/SMC-SkiBookingService/internal/service/bookings/models"
)

type BookingService interface {
	ListResort(ctx context.Context, req *models.ListResortRequest) (*models.BookingListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
