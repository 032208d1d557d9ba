package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SkiBookingService/internal/domain"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func approved(id int64, from, to string, guests int) *domain.Booking {
	return &domain.Booking{
		ID:          id,
		DateFrom:    day(from),
		DateTo:      day(to),
		NumOfGuests: guests,
		IsApproved:  true,
	}
}

func TestPrice(t *testing.T) {
	assert.Equal(t, int64(6000), Price(day("2023-12-01"), day("2023-12-04"), 500, 4))
	assert.Equal(t, int64(0), Price(day("2023-12-01"), day("2023-12-01"), 500, 4))
}

func TestGuestsOn(t *testing.T) {
	bookings := []*domain.Booking{
		approved(1, "2023-12-01", "2023-12-03", 2),
		approved(2, "2023-12-03", "2023-12-05", 3),
	}

	assert.Equal(t, 2, GuestsOn(day("2023-12-01"), bookings, 0))
	// dateTo is included in membership checks
	assert.Equal(t, 5, GuestsOn(day("2023-12-03"), bookings, 0))
	assert.Equal(t, 3, GuestsOn(day("2023-12-03"), bookings, 1))
	assert.Equal(t, 0, GuestsOn(day("2023-12-06"), bookings, 0))
}

func TestCheckCapacity(t *testing.T) {
	existing := []*domain.Booking{
		approved(1, "2023-12-01", "2023-12-03", 6),
		approved(2, "2023-12-05", "2023-12-06", 9),
	}

	tests := []struct {
		name      string
		requested int
		from, to  string
		wantErr   error
	}{
		{name: "fits", requested: 4, from: "2023-12-01", to: "2023-12-03"},
		{name: "free range", requested: 10, from: "2023-12-08", to: "2023-12-10"},
		{name: "one day over", requested: 5, from: "2023-12-01", to: "2023-12-02", wantErr: ErrCapacityExceeded},
		{name: "end date touches next booking", requested: 2, from: "2023-12-03", to: "2023-12-05", wantErr: ErrCapacityExceeded},
		{name: "above ceiling alone", requested: 11, from: "2023-12-20", to: "2023-12-21", wantErr: ErrCapacityExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckCapacity(10, tt.requested, day(tt.from), day(tt.to), existing)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCheckCapacity_PostStateWithinCeiling(t *testing.T) {
	const ceiling = 8
	var accepted []*domain.Booking

	requests := []*domain.Booking{
		approved(1, "2023-12-01", "2023-12-04", 3),
		approved(2, "2023-12-02", "2023-12-03", 4),
		approved(3, "2023-12-03", "2023-12-06", 2),
		approved(4, "2023-12-04", "2023-12-05", 5),
		approved(5, "2023-12-06", "2023-12-08", 6),
	}

	for _, r := range requests {
		if CheckCapacity(ceiling, r.NumOfGuests, r.DateFrom, r.DateTo, accepted) == nil {
			accepted = append(accepted, r)
		}
	}

	for d := day("2023-11-30"); d.Before(day("2023-12-10")); d = d.AddDate(0, 0, 1) {
		assert.LessOrEqual(t, GuestsOn(d, accepted, 0), ceiling, d.Format("2006-01-02"))
	}
}

func TestExceeds(t *testing.T) {
	approvedSet := []*domain.Booking{approved(1, "2023-12-01", "2023-12-04", 6)}
	pending := &domain.Booking{ID: 2, DateFrom: day("2023-12-04"), DateTo: day("2023-12-06"), NumOfGuests: 5}

	d, over := Exceeds(10, pending, approvedSet)
	assert.True(t, over)
	assert.Equal(t, day("2023-12-04"), d)

	_, over = Exceeds(11, pending, approvedSet)
	assert.False(t, over)

	// a pending booking never counts against itself
	self := approved(2, "2023-12-04", "2023-12-06", 5)
	_, over = Exceeds(5, pending, []*domain.Booking{self})
	assert.False(t, over)
}
