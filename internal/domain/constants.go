package domain

import "time"

// Booking rules
const (
	// ExpirationDelay time an unapproved booking stays pending
	ExpirationDelay = 24 * time.Hour

	// RefundNotice minimal time between a refund and the first reserved day
	RefundNotice = 24 * time.Hour

	// DefaultBookingHorizonMonths how far ahead reservations are accepted
	DefaultBookingHorizonMonths = 3
)

// Pagination limits
const (
	MaxPerPage     = 50
	DefaultPerPage = 10
)

// Catalog validation
const (
	MinStars       = 1
	MaxStars       = 5
	MaxNameLength  = 200
	MinGuestsLimit = 1
)
