package reserve_booking

import (
	"fmt"

	reserveBooking "github.com/m04kA/SMC-SkiBookingService/internal/usecase/reserve_booking"
	"github.com/m04kA/SMC-SkiBookingService/pkg/daterange"
)

// ReserveBookingRequest HTTP request model
type ReserveBookingRequest struct {
	ServiceID   int64  `json:"serviceId"`
	DateFrom    string `json:"dateFrom"` // "2024-02-05"
	DateTo      string `json:"dateTo"`
	NumOfGuests int    `json:"numOfGuests"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *ReserveBookingRequest) ToUseCaseRequest(userID int64) (*reserveBooking.Request, error) {
	from, err := daterange.Parse(r.DateFrom)
	if err != nil {
		return nil, fmt.Errorf("dateFrom: %w", err)
	}
	to, err := daterange.Parse(r.DateTo)
	if err != nil {
		return nil, fmt.Errorf("dateTo: %w", err)
	}

	return &reserveBooking.Request{
		UserID:      userID,
		ServiceID:   r.ServiceID,
		DateFrom:    from,
		DateTo:      to,
		NumOfGuests: r.NumOfGuests,
	}, nil
}
