package approve_booking

import "fmt"

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}
	if req.Admin.ResortID <= 0 {
		return fmt.Errorf("%w: admin has no resort", ErrInvalidInput)
	}
	return nil
}
