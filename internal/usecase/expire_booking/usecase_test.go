package expire_booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SkiBookingService/internal/domain"
	"github.com/m04kA/SMC-SkiBookingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SkiBookingService/internal/integrations/mailer"
	"github.com/m04kA/SMC-SkiBookingService/internal/service/bookings"
	"github.com/m04kA/SMC-SkiBookingService/internal/service/wallet"
	"github.com/m04kA/SMC-SkiBookingService/pkg/logger"
	"github.com/m04kA/SMC-SkiBookingService/pkg/txmanager"
)

var created = time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

type countingNotifier struct {
	mu     sync.Mutex
	denied int
}

func (n *countingNotifier) Denied(context.Context, mailer.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.denied++
}

type nopEvents struct{}

func (nopEvents) IncBookingEvent(string) {}

type fixture struct {
	uc       *UseCase
	bookings *memory.BookingStore
	users    *memory.UserStore
	notifier *countingNotifier
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	log := logger.NewNop()

	f := &fixture{
		bookings: memory.NewBookingStore(),
		users:    memory.NewUserStore(&domain.User{ID: 1, Email: "ann@example.com", Wallet: 0}),
		notifier: &countingNotifier{},
	}
	f.bookings.SetClock(func() time.Time { return created })

	services := memory.NewServiceStore()
	_, err := services.Create(context.Background(), &domain.Hotel{
		Service: domain.Service{ResortID: 7, Name: "Chalet", Price: 100, MaxGuests: 4},
		Stars:   2,
	})
	require.NoError(t, err)

	denier := bookings.NewService(
		f.bookings, services, f.users,
		wallet.NewService(f.users, log),
		f.notifier, txmanager.Nop{}, nopEvents{}, &fixedClock{now: now}, log,
	)
	f.uc = NewUseCase(f.bookings, denier, 24*time.Hour, log).WithTimeProvider(&fixedClock{now: now})
	return f
}

func (f *fixture) create(t *testing.T, approved bool) *domain.Booking {
	t.Helper()
	b, err := f.bookings.Create(context.Background(), &domain.Booking{
		UserID:      1,
		ServiceID:   1,
		ResortID:    7,
		NumOfGuests: 1,
		Value:       200,
		DateFrom:    time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
		DateTo:      time.Date(2024, 2, 12, 0, 0, 0, 0, time.UTC),
		IsApproved:  approved,
	})
	require.NoError(t, err)
	return b
}

func TestUseCase_ExpireIsIdempotent(t *testing.T) {
	f := newFixture(t, created.Add(24*time.Hour))
	ctx := context.Background()
	b := f.create(t, false)

	require.NoError(t, f.uc.Expire(ctx, b.ID))
	require.NoError(t, f.uc.Expire(ctx, b.ID))

	got, err := f.bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, got.IsCancelled)
	require.NotNil(t, got.CancelledBy)
	assert.Equal(t, domain.CancelledByExpiration, *got.CancelledBy)

	// возврат только один раз
	balance, err := f.users.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(200), balance)
	assert.Equal(t, 1, f.notifier.denied)
}

func TestUseCase_ExpireSkipsNonPending(t *testing.T) {
	f := newFixture(t, created.Add(24*time.Hour))
	ctx := context.Background()
	approved := f.create(t, true)

	require.NoError(t, f.uc.Expire(ctx, approved.ID))
	require.NoError(t, f.uc.Expire(ctx, 404))

	got, err := f.bookings.GetByID(ctx, approved.ID)
	require.NoError(t, err)
	assert.False(t, got.IsCancelled)

	balance, err := f.users.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, balance)
	assert.Zero(t, f.notifier.denied)
}

func TestUseCase_SweepExpired(t *testing.T) {
	t.Run("expires stale pending bookings", func(t *testing.T) {
		f := newFixture(t, created.Add(25*time.Hour))
		f.create(t, false)
		f.create(t, false)
		f.create(t, true)

		n, err := f.uc.SweepExpired(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		n, err = f.uc.SweepExpired(context.Background())
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("keeps fresh bookings", func(t *testing.T) {
		f := newFixture(t, created.Add(time.Hour))
		f.create(t, false)

		n, err := f.uc.SweepExpired(context.Background())
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}
