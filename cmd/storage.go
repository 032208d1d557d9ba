package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SkiBookingService/internal/config"
	"github.com/m04kA/SMC-SkiBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SkiBookingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-SkiBookingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SkiBookingService/internal/infra/storage/migrations"
	serviceRepo "github.com/m04kA/SMC-SkiBookingService/internal/infra/storage/service"
	userRepo "github.com/m04kA/SMC-SkiBookingService/internal/infra/storage/user"
	"github.com/m04kA/SMC-SkiBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SkiBookingService/pkg/logger"
	"github.com/m04kA/SMC-SkiBookingService/pkg/metrics"
	"github.com/m04kA/SMC-SkiBookingService/pkg/txmanager"
)

type bookingStore interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	FindOverlapping(ctx context.Context, q domain.OverlapQuery) ([]*domain.Booking, error)
	Approve(ctx context.Context, id, resortID int64) (*domain.Booking, error)
	Cancel(ctx context.Context, id int64, reason domain.CancelReason, scope domain.CancelScope) (*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingsFilter, page domain.Page) ([]*domain.Booking, int, error)
	ListStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]int64, error)
}

type serviceStore interface {
	Create(ctx context.Context, svc domain.Bookable) (domain.Bookable, error)
	GetByID(ctx context.Context, id int64) (domain.Bookable, error)
	Delete(ctx context.Context, id, resortID int64) error
	Search(ctx context.Context, filter domain.ServicesFilter, page domain.Page) ([]domain.Bookable, int, error)
}

type userStore interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Balance(ctx context.Context, id int64) (int64, error)
	AddCredits(ctx context.Context, id, amount int64) (int64, error)
	Debit(ctx context.Context, id, amount int64) (int64, error)
}

type txManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// storage набор хранилищ выбранного драйвера
type storage struct {
	bookings bookingStore
	services serviceStore
	users    userStore
	tx       txManager
	close    func() error
}

// openStorage поднимает postgres (с метриками пула и миграциями) или in-memory хранилища
func openStorage(cfg *config.Config, m *metrics.Metrics, stopCh <-chan struct{}, log *logger.Logger) (*storage, error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		log.Warn("Using in-memory storage, data is lost on restart")
		return &storage{
			bookings: memory.NewBookingStore(),
			services: memory.NewServiceStore(),
			users:    memory.NewUserStore(),
			tx:       txmanager.Nop{},
			close:    func() error { return nil },
		}, nil
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	if cfg.Database.AutoMigrate {
		if err := migrations.Up(db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		log.Info("Database migrations applied")
	}

	var wrapped *dbmetrics.DB
	if m != nil {
		wrapped = dbmetrics.WrapWithDefault(db, m, stopCh)
		log.Info("Database metrics collection started")
	} else {
		wrapped = dbmetrics.Wrap(db, nil)
	}

	return &storage{
		bookings: bookingRepo.NewRepository(wrapped),
		services: serviceRepo.NewRepository(wrapped),
		users:    userRepo.NewRepository(wrapped),
		tx:       txmanager.NewTransactionManager(wrapped),
		close:    db.Close,
	}, nil
}
