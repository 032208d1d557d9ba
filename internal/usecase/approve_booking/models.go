package approve_booking

import (
	"github.com/m04kA/SMC-SkiBookingService/internal/domain"
	"github.com/m04kA/SMC-SkiBookingService/internal/service/bookings/models"
)

// Request модель запроса на подтверждение бронирования
type Request struct {
	Admin     domain.Admin
	BookingID int64
}

// Response итог подтверждения
// DeniedRequests - бронирования, отклоненные из-за переполнения
type Response struct {
	Message        string                   `json:"message"`
	DeniedRequests []models.BookingResponse `json:"deniedRequests"`
}
