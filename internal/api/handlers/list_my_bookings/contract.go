package list_my_bookings

import (
	"context"

	"github.com/m04kA/SMC-SkiBookingService/internal/service/bookings/models"
)

type BookingService interface {
	ListMine(ctx context.Context, req *models.ListMineRequest) (*models.BookingListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
