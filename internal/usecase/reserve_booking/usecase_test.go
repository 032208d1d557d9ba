package reserve_booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SkiBookingService/internal/domain"
	"github.com/m04kA/SMC-SkiBookingService/internal/infra/lock"
	"github.com/m04kA/SMC-SkiBookingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SkiBookingService/internal/integrations/mailer"
	"github.com/m04kA/SMC-SkiBookingService/internal/service/wallet"
	"github.com/m04kA/SMC-SkiBookingService/pkg/logger"
)

var allDays = []time.Weekday{
	time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday,
}

// четверг
var now = time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

func day(d int) time.Time {
	return time.Date(2024, 2, d, 0, 0, 0, 0, time.UTC)
}

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

type scheduled struct {
	bookingID int64
	delay     time.Duration
}

type recordingScheduler struct {
	mu    sync.Mutex
	tasks []scheduled
}

func (s *recordingScheduler) Schedule(_ context.Context, bookingID int64, delay time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, scheduled{bookingID: bookingID, delay: delay})
	return nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	approved []mailer.Notification
}

func (n *recordingNotifier) Approved(_ context.Context, msg mailer.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.approved = append(n.approved, msg)
}

type nopEvents struct{}

func (nopEvents) IncBookingEvent(string) {}

type busyLocker struct{}

func (busyLocker) WithLock(context.Context, string, func(ctx context.Context) error) error {
	return lock.ErrNotAcquired
}

type fixture struct {
	uc        *UseCase
	bookings  *memory.BookingStore
	services  *memory.ServiceStore
	users     *memory.UserStore
	scheduler *recordingScheduler
	notifier  *recordingNotifier
}

func newFixture(t *testing.T, locker Locker) *fixture {
	t.Helper()

	f := &fixture{
		bookings: memory.NewBookingStore(),
		services: memory.NewServiceStore(),
		users: memory.NewUserStore(
			&domain.User{ID: 1, Name: "Ann", Email: "ann@example.com", IsValidated: true, Wallet: 1000},
			&domain.User{ID: 2, Name: "Bob", Email: "bob@example.com", IsValidated: true, Wallet: 1000},
			&domain.User{ID: 3, Name: "Eve", Email: "eve@example.com", IsValidated: false, Wallet: 1000},
		),
		scheduler: &recordingScheduler{},
		notifier:  &recordingNotifier{},
	}
	f.bookings.SetClock(func() time.Time { return now })

	log := logger.NewNop()
	f.uc = NewUseCase(
		f.bookings, f.services, f.users,
		wallet.NewService(f.users, log),
		locker, f.scheduler, f.notifier, nopEvents{},
		Options{HorizonMonths: 3, ExpirationDelay: 24 * time.Hour},
		log,
	).WithTimeProvider(&fixedClock{now: now})
	return f
}

func (f *fixture) hotel(t *testing.T, maxGuests int, days []time.Weekday, autoAccept bool) int64 {
	t.Helper()
	svc, err := f.services.Create(context.Background(), &domain.Hotel{
		Service: domain.Service{
			ResortID:      7,
			Name:          "Chalet",
			Price:         100,
			MaxGuests:     maxGuests,
			AvailableDays: days,
			AutoAccept:    autoAccept,
		},
		Stars: 3,
	})
	require.NoError(t, err)
	return svc.Info().ID
}

func TestUseCase_ReservePending(t *testing.T) {
	f := newFixture(t, lock.NewLocalLocker())
	ctx := context.Background()
	serviceID := f.hotel(t, 4, allDays, false)

	resp, err := f.uc.Execute(ctx, &Request{UserID: 1, ServiceID: serviceID, DateFrom: day(5), DateTo: day(8), NumOfGuests: 2})
	require.NoError(t, err)

	// 3 ночи * 100 * 2 гостя
	assert.Equal(t, int64(600), resp.Price)
	assert.False(t, resp.Booking.IsApproved)
	assert.Equal(t, "2024-02-05", resp.Booking.DateFrom)
	assert.Equal(t, int64(7), resp.Booking.ResortID)

	balance, err := f.users.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(400), balance)

	require.Len(t, f.scheduler.tasks, 1)
	assert.Equal(t, resp.Booking.ID, f.scheduler.tasks[0].bookingID)
	assert.Equal(t, 24*time.Hour, f.scheduler.tasks[0].delay)
	assert.Empty(t, f.notifier.approved)
}

func TestUseCase_PendingBookingsDoNotHoldCapacity(t *testing.T) {
	f := newFixture(t, lock.NewLocalLocker())
	ctx := context.Background()
	serviceID := f.hotel(t, 4, allDays, false)

	first, err := f.uc.Execute(ctx, &Request{UserID: 1, ServiceID: serviceID, DateFrom: day(5), DateTo: day(7), NumOfGuests: 3})
	require.NoError(t, err)
	second, err := f.uc.Execute(ctx, &Request{UserID: 2, ServiceID: serviceID, DateFrom: day(5), DateTo: day(7), NumOfGuests: 3})
	require.NoError(t, err)

	assert.Equal(t, first.Price, second.Price)
	assert.NotEqual(t, first.Booking.ID, second.Booking.ID)
}

func TestUseCase_AutoAccept(t *testing.T) {
	f := newFixture(t, lock.NewLocalLocker())
	serviceID := f.hotel(t, 4, allDays, true)

	resp, err := f.uc.Execute(context.Background(), &Request{UserID: 1, ServiceID: serviceID, DateFrom: day(5), DateTo: day(6), NumOfGuests: 1})
	require.NoError(t, err)
	assert.True(t, resp.Booking.IsApproved)
	assert.Empty(t, f.scheduler.tasks)
	require.Len(t, f.notifier.approved, 1)
	assert.Equal(t, "ann@example.com", f.notifier.approved[0].Email)
}

func TestUseCase_Rejections(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		setup   func(t *testing.T, f *fixture) *Request
		wantErr error
	}{
		{
			name: "dateTo equals dateFrom",
			setup: func(t *testing.T, f *fixture) *Request {
				return &Request{UserID: 1, ServiceID: f.hotel(t, 4, allDays, false), DateFrom: day(5), DateTo: day(5), NumOfGuests: 1}
			},
			wantErr: ErrInvalidDateRange,
		},
		{
			name: "zero guests",
			setup: func(t *testing.T, f *fixture) *Request {
				return &Request{UserID: 1, ServiceID: f.hotel(t, 4, allDays, false), DateFrom: day(5), DateTo: day(6), NumOfGuests: 0}
			},
			wantErr: ErrInvalidInput,
		},
		{
			name: "in the past",
			setup: func(t *testing.T, f *fixture) *Request {
				return &Request{UserID: 1, ServiceID: f.hotel(t, 4, allDays, false),
					DateFrom: time.Date(2024, 1, 30, 0, 0, 0, 0, time.UTC), DateTo: day(2), NumOfGuests: 1}
			},
			wantErr: ErrOutOfWindow,
		},
		{
			name: "beyond horizon",
			setup: func(t *testing.T, f *fixture) *Request {
				return &Request{UserID: 1, ServiceID: f.hotel(t, 4, allDays, false),
					DateFrom: time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC), DateTo: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), NumOfGuests: 1}
			},
			wantErr: ErrOutOfWindow,
		},
		{
			name: "unverified account",
			setup: func(t *testing.T, f *fixture) *Request {
				return &Request{UserID: 3, ServiceID: f.hotel(t, 4, allDays, false), DateFrom: day(5), DateTo: day(6), NumOfGuests: 1}
			},
			wantErr: ErrUnverifiedAccount,
		},
		{
			name: "unknown service",
			setup: func(t *testing.T, f *fixture) *Request {
				return &Request{UserID: 1, ServiceID: 42, DateFrom: day(5), DateTo: day(6), NumOfGuests: 1}
			},
			wantErr: ErrServiceNotFound,
		},
		{
			name: "weekend-only service on weekdays",
			setup: func(t *testing.T, f *fixture) *Request {
				id := f.hotel(t, 4, []time.Weekday{time.Saturday, time.Sunday}, false)
				return &Request{UserID: 1, ServiceID: id, DateFrom: day(5), DateTo: day(7), NumOfGuests: 1}
			},
			wantErr: ErrDayUnavailable,
		},
		{
			name: "approved guests fill the day",
			setup: func(t *testing.T, f *fixture) *Request {
				id := f.hotel(t, 4, allDays, false)
				_, err := f.bookings.Create(context.Background(), &domain.Booking{
					UserID: 2, ServiceID: id, ResortID: 7, NumOfGuests: 3, DateFrom: day(7), DateTo: day(9), IsApproved: true,
				})
				require.NoError(t, err)
				// день выезда 7-го пересекается с заездом другого бронирования
				return &Request{UserID: 1, ServiceID: id, DateFrom: day(5), DateTo: day(7), NumOfGuests: 2}
			},
			wantErr: ErrCapacityExceeded,
		},
		{
			name: "wallet equal to price",
			setup: func(t *testing.T, f *fixture) *Request {
				// 5 ночей * 100 * 2 гостя = 1000
				return &Request{UserID: 1, ServiceID: f.hotel(t, 4, allDays, false), DateFrom: day(5), DateTo: day(10), NumOfGuests: 2}
			},
			wantErr: ErrInsufficientFunds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, lock.NewLocalLocker())
			_, err := f.uc.Execute(ctx, tt.setup(t, f))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.scheduler.tasks)
		})
	}
}

func TestUseCase_ServiceBusy(t *testing.T) {
	f := newFixture(t, busyLocker{})
	serviceID := f.hotel(t, 4, allDays, false)

	_, err := f.uc.Execute(context.Background(), &Request{UserID: 1, ServiceID: serviceID, DateFrom: day(5), DateTo: day(6), NumOfGuests: 1})
	assert.ErrorIs(t, err, ErrServiceBusy)

	balance, err := f.users.Balance(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), balance)
}

// interleavingLocker перед первой критической секцией выполняет before
type interleavingLocker struct {
	mu     sync.Mutex
	before func()
}

func (l *interleavingLocker) WithLock(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	before := l.before
	l.before = nil
	l.mu.Unlock()

	if before != nil {
		before()
	}
	return fn(ctx)
}

func TestUseCase_StaleWalletDoesNotOverspend(t *testing.T) {
	locker := &interleavingLocker{}
	f := newFixture(t, locker)
	ctx := context.Background()
	first := f.hotel(t, 4, allDays, false)
	second := f.hotel(t, 4, allDays, false)

	// 9 ночей * 100 * 1 гость = 900, баланс 1000 покрывает только одну
	var nestedErr error
	locker.before = func() {
		_, nestedErr = f.uc.Execute(ctx, &Request{UserID: 1, ServiceID: second, DateFrom: day(5), DateTo: day(14), NumOfGuests: 1})
	}

	_, err := f.uc.Execute(ctx, &Request{UserID: 1, ServiceID: first, DateFrom: day(5), DateTo: day(14), NumOfGuests: 1})
	require.NoError(t, nestedErr)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	balance, err := f.users.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance)

	kept, err := f.bookings.FindOverlapping(ctx, domain.OverlapQuery{ServiceID: second, DateFrom: day(5), DateTo: day(14)})
	require.NoError(t, err)
	assert.Len(t, kept, 1)

	rejected, err := f.bookings.FindOverlapping(ctx, domain.OverlapQuery{ServiceID: first, DateFrom: day(5), DateTo: day(14)})
	require.NoError(t, err)
	assert.Empty(t, rejected)
	assert.Len(t, f.scheduler.tasks, 1)
}

type failingCreate struct {
	*memory.BookingStore
}

func (failingCreate) Create(context.Context, *domain.Booking) (*domain.Booking, error) {
	return nil, errors.New("insert failed")
}

func TestUseCase_CreateFailureReturnsCredits(t *testing.T) {
	f := newFixture(t, lock.NewLocalLocker())
	ctx := context.Background()
	serviceID := f.hotel(t, 4, allDays, false)

	log := logger.NewNop()
	uc := NewUseCase(
		failingCreate{f.bookings}, f.services, f.users,
		wallet.NewService(f.users, log),
		lock.NewLocalLocker(), f.scheduler, f.notifier, nopEvents{},
		Options{HorizonMonths: 3, ExpirationDelay: 24 * time.Hour},
		log,
	).WithTimeProvider(&fixedClock{now: now})

	_, err := uc.Execute(ctx, &Request{UserID: 1, ServiceID: serviceID, DateFrom: day(5), DateTo: day(8), NumOfGuests: 2})
	assert.ErrorIs(t, err, ErrInternal)

	balance, err := f.users.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), balance)
	assert.Empty(t, f.scheduler.tasks)
}
