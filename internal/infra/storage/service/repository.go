package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-SkiBookingService/internal/domain"
	"github.com/m04kA/SMC-SkiBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SkiBookingService/pkg/psqlbuilder"
)

const table = "services"

var columns = []string{
	"id",
	"resort_id",
	"type",
	"name",
	"price",
	"max_guests",
	"available_days",
	"auto_accept",
	"address",
	"stars",
	"length_meters",
	"rating",
	"created_at",
}

// Repository хранит отели и трассы в одной таблице с колонкой type
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория услуг
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanService(row rowScanner) (domain.Bookable, error) {
	var (
		base         domain.Service
		serviceType  string
		days         []int64
		address      sql.NullString
		stars        sql.NullInt64
		lengthMeters sql.NullInt64
		rating       sql.NullString
	)

	err := row.Scan(
		&base.ID,
		&base.ResortID,
		&serviceType,
		&base.Name,
		&base.Price,
		&base.MaxGuests,
		pq.Array(&days),
		&base.AutoAccept,
		&address,
		&stars,
		&lengthMeters,
		&rating,
		&base.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	base.Type = domain.ServiceType(serviceType)
	base.AvailableDays = make([]time.Weekday, 0, len(days))
	for _, d := range days {
		base.AvailableDays = append(base.AvailableDays, time.Weekday(d))
	}

	switch base.Type {
	case domain.ServiceTypeHotel:
		return &domain.Hotel{
			Service: base,
			Address: address.String,
			Stars:   int(stars.Int64),
		}, nil
	case domain.ServiceTypeTrack:
		return &domain.Track{
			Service:      base,
			LengthMeters: int(lengthMeters.Int64),
			Rating:       domain.TrackRating(rating.String),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, serviceType)
	}
}

func weekdays(days []time.Weekday) []int64 {
	out := make([]int64, 0, len(days))
	for _, d := range days {
		out = append(out, int64(d))
	}
	return out
}

// Create сохраняет отель или трассу
func (r *Repository) Create(ctx context.Context, svc domain.Bookable) (domain.Bookable, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)
	info := svc.Info()

	var (
		address      interface{}
		stars        interface{}
		lengthMeters interface{}
		rating       interface{}
	)
	switch v := svc.(type) {
	case *domain.Hotel:
		address, stars = v.Address, v.Stars
	case *domain.Track:
		lengthMeters, rating = v.LengthMeters, string(v.Rating)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownType, svc)
	}

	query, args, err := psqlbuilder.Insert(table).
		Columns(
			"resort_id",
			"type",
			"name",
			"price",
			"max_guests",
			"available_days",
			"auto_accept",
			"address",
			"stars",
			"length_meters",
			"rating",
		).
		Values(
			info.ResortID,
			string(svc.Kind()),
			info.Name,
			info.Price,
			info.MaxGuests,
			pq.Array(weekdays(info.AvailableDays)),
			info.AutoAccept,
			address,
			stars,
			lengthMeters,
			rating,
		).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&info.ID, &info.CreatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}
	info.Type = svc.Kind()

	return svc, nil
}

// GetByID получает услугу по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (domain.Bookable, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	svc, err := scanService(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan service: %v", ErrScanRow, err)
	}

	return svc, nil
}

// Delete удаляет услугу курорта
func (r *Repository) Delete(ctx context.Context, id, resortID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(table).
		Where(squirrel.Eq{"id": id, "resort_id": resortID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - rows affected: %v", ErrExecQuery, err)
	}
	if affected == 0 {
		return ErrServiceNotFound
	}

	return nil
}

// Search возвращает страницу услуг по фильтру и общее количество
func (r *Repository) Search(ctx context.Context, filter domain.ServicesFilter, page domain.Page) ([]domain.Bookable, int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	countQuery, countArgs, err := applyFilter(psqlbuilder.Select("COUNT(*)").From(table), filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: Search - build count query: %v", ErrBuildQuery, err)
	}

	var total int
	if err := executor.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%w: Search - count services: %v", ErrExecQuery, err)
	}

	order := "name ASC"
	if filter.NameDesc {
		order = "name DESC"
	}

	query, args, err := applyFilter(psqlbuilder.Select(columns...).From(table), filter).
		OrderBy(order, "id ASC").
		Limit(uint64(page.PerPage)).
		Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: Search - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: Search - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	services := make([]domain.Bookable, 0)
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: Search - scan service: %v", ErrScanRow, err)
		}
		services = append(services, svc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: Search - rows iteration: %v", ErrScanRow, err)
	}

	return services, total, nil
}

func applyFilter(b squirrel.SelectBuilder, filter domain.ServicesFilter) squirrel.SelectBuilder {
	if filter.Type != nil {
		b = b.Where(squirrel.Eq{"type": string(*filter.Type)})
	}
	if filter.ResortID != nil {
		b = b.Where(squirrel.Eq{"resort_id": *filter.ResortID})
	}
	if name := strings.TrimSpace(filter.Name); name != "" {
		b = b.Where(squirrel.ILike{"name": "%" + name + "%"})
	}
	if filter.MinPrice != nil {
		b = b.Where(squirrel.GtOrEq{"price": *filter.MinPrice})
	}
	if filter.MaxPrice != nil {
		b = b.Where(squirrel.LtOrEq{"price": *filter.MaxPrice})
	}
	if filter.MinStars != nil {
		b = b.Where(squirrel.GtOrEq{"stars": *filter.MinStars})
	}
	if filter.MaxStars != nil {
		b = b.Where(squirrel.LtOrEq{"stars": *filter.MaxStars})
	}
	if filter.Rating != nil {
		b = b.Where(squirrel.Eq{"rating": string(*filter.Rating)})
	}
	if len(filter.Weekdays) > 0 {
		b = b.Where(squirrel.Expr("available_days @> ?", pq.Array(weekdays(filter.Weekdays))))
	}
	return b
}
