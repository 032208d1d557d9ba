package domain

import (
	"slices"
	"time"
)

// TrackRating difficulty of a ski track
type TrackRating string

const (
	RatingGreen TrackRating = "green"
	RatingBlue  TrackRating = "blue"
	RatingRed   TrackRating = "red"
	RatingBlack TrackRating = "black"
)

// Valid reports whether r is a known rating
func (r TrackRating) Valid() bool {
	switch r {
	case RatingGreen, RatingBlue, RatingRed, RatingBlack:
		return true
	}
	return false
}

// Service is the shape shared by every bookable service of a resort
type Service struct {
	ID            int64
	ResortID      int64
	Type          ServiceType
	Name          string
	Price         int64 // per guest per day
	MaxGuests     int   // guest ceiling per calendar day
	AvailableDays []time.Weekday
	AutoAccept    bool
	CreatedAt     time.Time
}

// Info returns the shared part of a bookable service
func (s *Service) Info() *Service {
	return s
}

// AcceptsOn returns true if the service takes bookings on the weekday
func (s *Service) AcceptsOn(day time.Weekday) bool {
	return slices.Contains(s.AvailableDays, day)
}

// Hotel is a bookable service with an address and a star rating
type Hotel struct {
	Service
	Address string
	Stars   int
}

// Kind identifies the variant
func (h *Hotel) Kind() ServiceType {
	return ServiceTypeHotel
}

// Track is a bookable ski track
type Track struct {
	Service
	LengthMeters int
	Rating       TrackRating
}

// Kind identifies the variant
func (t *Track) Kind() ServiceType {
	return ServiceTypeTrack
}

// Bookable is implemented by every service variant that can be reserved.
// Reservation and reconciliation logic work only through this interface.
type Bookable interface {
	Info() *Service
	Kind() ServiceType
	AcceptsOn(day time.Weekday) bool
}

// ServicesFilter фильтр каталога услуг
type ServicesFilter struct {
	Type     *ServiceType
	ResortID *int64
	Name     string // подстрока, без учета регистра
	MinPrice *int64
	MaxPrice *int64
	MinStars *int           // только для отелей
	MaxStars *int           // только для отелей
	Rating   *TrackRating   // только для трасс
	Weekdays []time.Weekday // услуга должна принимать все перечисленные дни
	NameDesc bool
}

// ParseWeekday converts an English weekday name ("Monday") to time.Weekday
func ParseWeekday(name string) (time.Weekday, bool) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if d.String() == name {
			return d, true
		}
	}
	return 0, false
}
