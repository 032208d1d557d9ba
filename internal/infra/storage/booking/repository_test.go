package booking

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SkiBookingService/internal/domain"
	"github.com/m04kA/SMC-SkiBookingService/pkg/ptr"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

var (
	dateFrom = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	dateTo   = time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)
	created  = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
)

func bookingRow(id int64, approved, cancelled bool, reason interface{}) *sqlmock.Rows {
	return sqlmock.NewRows(columns).AddRow(
		id, int64(7), int64(3), int64(1), "hotel", 2, int64(4000),
		dateFrom, dateTo, approved, cancelled, reason, created, created,
	)
}

func TestRepository_Create(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO bookings \(user_id,service_id,resort_id,service_type,num_of_guests,value,date_from,date_to,is_approved\)`).
		WithArgs(int64(7), int64(3), int64(1), "hotel", 2, int64(4000), dateFrom, dateTo, false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(11), created, created))

	b, err := repo.Create(context.Background(), &domain.Booking{
		UserID:      7,
		ServiceID:   3,
		ResortID:    1,
		ServiceType: domain.ServiceTypeHotel,
		NumOfGuests: 2,
		Value:       4000,
		DateFrom:    dateFrom,
		DateTo:      dateTo,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), b.ID)
	assert.Equal(t, created, b.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`SELECT .+ FROM bookings WHERE id = \$1`).
			WithArgs(int64(11)).
			WillReturnRows(bookingRow(11, false, true, "expiration"))

		b, err := repo.GetByID(context.Background(), 11)
		require.NoError(t, err)
		assert.Equal(t, domain.ServiceTypeHotel, b.ServiceType)
		assert.True(t, b.IsCancelled)
		require.NotNil(t, b.CancelledBy)
		assert.Equal(t, domain.CancelledByExpiration, *b.CancelledBy)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`SELECT .+ FROM bookings`).WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(context.Background(), 11)
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})
}

func TestRepository_FindOverlapping(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT .+ FROM bookings WHERE .*service_id = \$\d.* AND date_from <= \$\d AND date_to >= \$\d AND id <> \$\d ORDER BY created_at ASC, id ASC`).
		WillReturnRows(bookingRow(12, false, false, nil).AddRow(
			int64(13), int64(8), int64(3), int64(1), "hotel", 1, int64(2000),
			dateFrom, dateTo, false, false, nil, created, created,
		))

	bookings, err := repo.FindOverlapping(context.Background(), domain.OverlapQuery{
		ServiceID: 3,
		DateFrom:  dateFrom,
		DateTo:    dateTo,
		ExcludeID: 11,
	})
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, int64(12), bookings[0].ID)
	assert.Nil(t, bookings[0].CancelledBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Approve(t *testing.T) {
	t.Run("approved", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`UPDATE bookings SET is_approved = \$1, updated_at = NOW\(\) WHERE \(?id = \$2 AND is_cancelled = \$3 AND resort_id = \$4\)? RETURNING`).
			WithArgs(true, int64(11), false, int64(1)).
			WillReturnRows(bookingRow(11, true, false, nil))

		b, err := repo.Approve(context.Background(), 11, 1)
		require.NoError(t, err)
		assert.True(t, b.IsApproved)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("foreign resort", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`UPDATE bookings`).WillReturnError(sql.ErrNoRows)

		_, err := repo.Approve(context.Background(), 11, 2)
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})
}

func TestRepository_Cancel(t *testing.T) {
	t.Run("pending only", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`UPDATE bookings SET is_cancelled = \$1, cancelled_by = \$2, updated_at = NOW\(\) WHERE \(?id = \$3 AND is_approved = \$4 AND is_cancelled = \$5\)? RETURNING`).
			WithArgs(true, "expiration", int64(11), false, false).
			WillReturnRows(bookingRow(11, false, true, "expiration"))

		b, err := repo.Cancel(context.Background(), 11, domain.CancelledByExpiration, domain.CancelScope{OnlyPending: true})
		require.NoError(t, err)
		assert.True(t, b.IsCancelled)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("scoped to user", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`UPDATE bookings SET .+ WHERE \(?id = \$3 AND is_cancelled = \$4 AND user_id = \$5`).
			WithArgs(true, "user", int64(11), false, int64(7)).
			WillReturnRows(bookingRow(11, true, true, "user"))

		_, err := repo.Cancel(context.Background(), 11, domain.CancelledByUser, domain.CancelScope{UserID: ptr.Ptr(int64(7))})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already cancelled", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`UPDATE bookings`).WillReturnError(sql.ErrNoRows)

		_, err := repo.Cancel(context.Background(), 11, domain.CancelledByAdmin, domain.CancelScope{})
		assert.ErrorIs(t, err, ErrNotCancellable)
	})
}

func TestRepository_List(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE resort_id = \$1 AND \(?is_approved = \$2 AND is_cancelled = \$3\)?`).
		WithArgs(int64(1), false, false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT .+ FROM bookings WHERE resort_id = \$1 AND \(?is_approved = \$2 AND is_cancelled = \$3\)? ORDER BY date_from DESC, id ASC LIMIT 2 OFFSET 2`).
		WithArgs(int64(1), false, false).
		WillReturnRows(bookingRow(12, false, false, nil))

	items, total, err := repo.List(context.Background(),
		domain.BookingsFilter{ResortID: ptr.Ptr(int64(1)), Status: domain.FilterPending},
		domain.Page{PerPage: 2, Page: 2},
	)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListStalePending(t *testing.T) {
	repo, mock := newMockRepo(t)
	cutoff := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id FROM bookings WHERE \(?is_approved = \$1 AND is_cancelled = \$2\)? AND created_at < \$3 ORDER BY created_at ASC LIMIT 100`).
		WithArgs(false, false, cutoff).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(4)).AddRow(int64(9)))

	ids, err := repo.ListStalePending(context.Background(), cutoff, 100)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 9}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}
