package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SkiBookingService/internal/domain"
	"github.com/m04kA/SMC-SkiBookingService/pkg/ptr"
)

var created = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func hotelRow() []driver.Value {
	return []driver.Value{
		int64(3), int64(1), "hotel", "Grand", int64(500), 10, []byte("{1,6}"), false,
		"Main street 1", int64(4), nil, nil, created,
	}
}

func trackRow() []driver.Value {
	return []driver.Value{
		int64(4), int64(1), "track", "Black Run", int64(100), 50, []byte("{0,6}"), true,
		nil, nil, int64(1200), "black", created,
	}
}

func TestRepository_CreateHotel(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO services \(resort_id,type,name,price,max_guests,available_days,auto_accept,address,stars,length_meters,rating\)`).
		WithArgs(int64(1), "hotel", "Grand", int64(500), 10, sqlmock.AnyArg(), false, "Main street 1", 4, nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(3), created))

	hotel := &domain.Hotel{
		Service: domain.Service{
			ResortID:      1,
			Name:          "Grand",
			Price:         500,
			MaxGuests:     10,
			AvailableDays: []time.Weekday{time.Monday, time.Saturday},
		},
		Address: "Main street 1",
		Stars:   4,
	}

	svc, err := repo.Create(context.Background(), hotel)
	require.NoError(t, err)
	assert.Equal(t, int64(3), svc.Info().ID)
	assert.Equal(t, domain.ServiceTypeHotel, svc.Info().Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID(t *testing.T) {
	t.Run("hotel", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`SELECT .+ FROM services WHERE id = \$1`).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(hotelRow()...))

		svc, err := repo.GetByID(context.Background(), 3)
		require.NoError(t, err)

		hotel, ok := svc.(*domain.Hotel)
		require.True(t, ok)
		assert.Equal(t, 4, hotel.Stars)
		assert.Equal(t, []time.Weekday{time.Monday, time.Saturday}, hotel.AvailableDays)
		assert.True(t, svc.AcceptsOn(time.Saturday))
	})

	t.Run("track", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`SELECT .+ FROM services WHERE id = \$1`).
			WithArgs(int64(4)).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(trackRow()...))

		svc, err := repo.GetByID(context.Background(), 4)
		require.NoError(t, err)

		track, ok := svc.(*domain.Track)
		require.True(t, ok)
		assert.Equal(t, domain.RatingBlack, track.Rating)
		assert.True(t, track.AutoAccept)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`SELECT .+ FROM services`).WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(context.Background(), 5)
		assert.ErrorIs(t, err, ErrServiceNotFound)
	})
}

func TestRepository_Delete(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`DELETE FROM services WHERE \(?id = \$1 AND resort_id = \$2\)?`).
			WithArgs(int64(3), int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Delete(context.Background(), 3, 1))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nothing deleted", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`DELETE FROM services`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(context.Background(), 3, 2), ErrServiceNotFound)
	})
}

func TestRepository_Search(t *testing.T) {
	repo, mock := newMockRepo(t)
	hotelType := domain.ServiceTypeHotel

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM services WHERE type = \$1 AND name ILIKE \$2 AND price <= \$3 AND available_days @> \$4`).
		WithArgs("hotel", "%gra%", int64(800), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT .+ FROM services WHERE .+ ORDER BY name DESC, id ASC LIMIT 10 OFFSET 0`).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(hotelRow()...))

	items, total, err := repo.Search(context.Background(), domain.ServicesFilter{
		Type:     &hotelType,
		Name:     "gra",
		MaxPrice: ptr.Ptr(int64(800)),
		Weekdays: []time.Weekday{time.Monday},
		NameDesc: true,
	}, domain.Page{PerPage: 10, Page: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Grand", items[0].Info().Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
