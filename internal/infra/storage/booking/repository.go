package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SkiBookingService/internal/domain"
	"github.com/m04kA/SMC-SkiBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SkiBookingService/pkg/psqlbuilder"
)

const table = "bookings"

var columns = []string{
	"id",
	"user_id",
	"service_id",
	"resort_id",
	"service_type",
	"num_of_guests",
	"value",
	"date_from",
	"date_to",
	"is_approved",
	"is_cancelled",
	"cancelled_by",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		b           domain.Booking
		serviceType string
		cancelledBy sql.NullString
	)

	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.ServiceID,
		&b.ResortID,
		&serviceType,
		&b.NumOfGuests,
		&b.Value,
		&b.DateFrom,
		&b.DateTo,
		&b.IsApproved,
		&b.IsCancelled,
		&cancelledBy,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.ServiceType = domain.ServiceType(serviceType)
	if cancelledBy.Valid {
		reason := domain.CancelReason(cancelledBy.String)
		b.CancelledBy = &reason
	}
	return &b, nil
}

// Create создает новое бронирование
// Если в контексте передана активная транзакция, использует её
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		Columns(
			"user_id",
			"service_id",
			"resort_id",
			"service_type",
			"num_of_guests",
			"value",
			"date_from",
			"date_to",
			"is_approved",
		).
		Values(
			booking.UserID,
			booking.ServiceID,
			booking.ResortID,
			string(booking.ServiceType),
			booking.NumOfGuests,
			booking.Value,
			booking.DateFrom,
			booking.DateTo,
			booking.IsApproved,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return booking, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// FindOverlapping возвращает неотмененные бронирования услуги, пересекающиеся с диапазоном
// Границы диапазонов включаются с обеих сторон
func (r *Repository) FindOverlapping(ctx context.Context, q domain.OverlapQuery) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{
			"service_id":   q.ServiceID,
			"is_approved":  q.Approved,
			"is_cancelled": false,
		}).
		Where(squirrel.LtOrEq{"date_from": q.DateTo}).
		Where(squirrel.GtOrEq{"date_to": q.DateFrom}).
		OrderBy("created_at ASC", "id ASC")

	if q.ExcludeID != 0 {
		builder = builder.Where(squirrel.NotEq{"id": q.ExcludeID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindOverlapping - build select query: %v", ErrBuildQuery, err)
	}

	return r.query(ctx, executor, "FindOverlapping", query, args)
}

// Approve подтверждает бронирование в рамках курорта администратора
// Отмененные бронирования не подтверждаются
func (r *Repository) Approve(ctx context.Context, id, resortID int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("is_approved", true).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"id":           id,
			"resort_id":    resortID,
			"is_cancelled": false,
		}).
		Suffix("RETURNING " + returning()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Approve - build update query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Approve - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// Cancel условно отменяет бронирование с указанной причиной
// Возвращает ErrNotCancellable, если бронирование уже отменено или не подходит под scope
func (r *Repository) Cancel(ctx context.Context, id int64, reason domain.CancelReason, scope domain.CancelScope) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	where := squirrel.Eq{
		"id":           id,
		"is_cancelled": false,
	}
	if scope.ResortID != nil {
		where["resort_id"] = *scope.ResortID
	}
	if scope.UserID != nil {
		where["user_id"] = *scope.UserID
	}
	if scope.OnlyPending {
		where["is_approved"] = false
	}

	query, args, err := psqlbuilder.Update(table).
		Set("is_cancelled", true).
		Set("cancelled_by", string(reason)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(where).
		Suffix("RETURNING " + returning()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotCancellable
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Cancel - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// List возвращает страницу бронирований по фильтру и общее количество
func (r *Repository) List(ctx context.Context, filter domain.BookingsFilter, page domain.Page) ([]*domain.Booking, int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	countQuery, countArgs, err := applyFilter(psqlbuilder.Select("COUNT(*)").From(table), filter).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: List - build count query: %v", ErrBuildQuery, err)
	}

	var total int
	if err := executor.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%w: List - count bookings: %v", ErrExecQuery, err)
	}

	order := "date_from DESC"
	if filter.SortAsc {
		order = "date_from ASC"
	}

	query, args, err := applyFilter(psqlbuilder.Select(columns...).From(table), filter).
		OrderBy(order, "id ASC").
		Limit(uint64(page.PerPage)).
		Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	bookings, err := r.query(ctx, executor, "List", query, args)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// ListStalePending возвращает ID неподтвержденных бронирований, созданных раньше createdBefore
func (r *Repository) ListStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id").
		From(table).
		Where(squirrel.Eq{"is_approved": false, "is_cancelled": false}).
		Where(squirrel.Lt{"created_at": createdBefore}).
		OrderBy("created_at ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListStalePending - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListStalePending - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: ListStalePending - scan id: %v", ErrScanRow, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListStalePending - rows iteration: %v", ErrScanRow, err)
	}

	return ids, nil
}

func (r *Repository) query(ctx context.Context, executor DBExecutor, op, query string, args []interface{}) ([]*domain.Booking, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute select: %v", ErrExecQuery, op, err)
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan booking: %v", ErrScanRow, op, err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows iteration: %v", ErrScanRow, op, err)
	}

	return bookings, nil
}

func applyFilter(b squirrel.SelectBuilder, filter domain.BookingsFilter) squirrel.SelectBuilder {
	if filter.ResortID != nil {
		b = b.Where(squirrel.Eq{"resort_id": *filter.ResortID})
	}
	if filter.UserID != nil {
		b = b.Where(squirrel.Eq{"user_id": *filter.UserID})
	}
	if filter.ServiceID != nil {
		b = b.Where(squirrel.Eq{"service_id": *filter.ServiceID})
	}

	switch filter.Status {
	case domain.FilterPending:
		b = b.Where(squirrel.Eq{"is_approved": false, "is_cancelled": false})
	case domain.FilterApproved:
		b = b.Where(squirrel.Eq{"is_approved": true, "is_cancelled": false})
	case domain.FilterExpired:
		b = b.Where(squirrel.Eq{"is_cancelled": true, "cancelled_by": string(domain.CancelledByExpiration)})
	case domain.FilterFinished:
		b = b.Where(squirrel.LtOrEq{"date_to": filter.Now})
	}

	return b
}

func returning() string {
	return strings.Join(columns, ", ")
}
