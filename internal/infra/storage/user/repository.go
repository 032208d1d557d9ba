package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SkiBookingService/internal/domain"
	"github.com/m04kA/SMC-SkiBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SkiBookingService/pkg/psqlbuilder"
)

const table = "users"

// Repository репозиторий пользователей и их кошельков
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория пользователей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает пользователя по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"name",
		"username",
		"email",
		"role",
		"resort_id",
		"is_validated",
		"wallet",
	).
		From(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var (
		u        domain.User
		role     string
		resortID sql.NullInt64
	)
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&u.ID,
		&u.Name,
		&u.Username,
		&u.Email,
		&role,
		&resortID,
		&u.IsValidated,
		&u.Wallet,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan user: %v", ErrScanRow, err)
	}

	u.Role = domain.Role(role)
	if resortID.Valid {
		u.ResortID = &resortID.Int64
	}
	return &u, nil
}

// Balance текущий баланс кошелька
func (r *Repository) Balance(ctx context.Context, id int64) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("wallet").
		From(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: Balance - build select query: %v", ErrBuildQuery, err)
	}

	var balance int64
	err = executor.QueryRowContext(ctx, query, args...).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("%w: Balance - scan wallet: %v", ErrScanRow, err)
	}
	return balance, nil
}

// AddCredits атомарно увеличивает баланс и возвращает новое значение
func (r *Repository) AddCredits(ctx context.Context, id, amount int64) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("wallet", squirrel.Expr("wallet + ?", amount)).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING wallet").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: AddCredits - build update query: %v", ErrBuildQuery, err)
	}

	var balance int64
	err = executor.QueryRowContext(ctx, query, args...).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("%w: AddCredits - execute update: %v", ErrExecQuery, err)
	}
	return balance, nil
}

// Debit атомарно списывает amount, только если на балансе достаточно средств
func (r *Repository) Debit(ctx context.Context, id, amount int64) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("wallet", squirrel.Expr("wallet - ?", amount)).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.GtOrEq{"wallet": amount}).
		Suffix("RETURNING wallet").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: Debit - build update query: %v", ErrBuildQuery, err)
	}

	var balance int64
	err = executor.QueryRowContext(ctx, query, args...).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		// Строка не обновлена: либо пользователя нет, либо не хватает средств
		if _, balanceErr := r.Balance(ctx, id); balanceErr != nil {
			return 0, balanceErr
		}
		return 0, ErrInsufficientFunds
	}
	if err != nil {
		return 0, fmt.Errorf("%w: Debit - execute update: %v", ErrExecQuery, err)
	}
	return balance, nil
}
