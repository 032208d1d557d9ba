package approve_booking

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SkiBookingService/internal/domain"
	"github.com/m04kA/SMC-SkiBookingService/internal/infra/lock"
	"github.com/m04kA/SMC-SkiBookingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SkiBookingService/internal/integrations/mailer"
	"github.com/m04kA/SMC-SkiBookingService/internal/service/bookings"
	"github.com/m04kA/SMC-SkiBookingService/internal/service/wallet"
	"github.com/m04kA/SMC-SkiBookingService/pkg/logger"
	"github.com/m04kA/SMC-SkiBookingService/pkg/txmanager"
)

func day(d int) time.Time {
	return time.Date(2024, 2, d, 0, 0, 0, 0, time.UTC)
}

type recordingNotifier struct {
	mu       sync.Mutex
	approved []mailer.Notification
	denied   []mailer.Notification
}

func (n *recordingNotifier) Approved(_ context.Context, msg mailer.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.approved = append(n.approved, msg)
}

func (n *recordingNotifier) Denied(_ context.Context, msg mailer.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.denied = append(n.denied, msg)
}

type nopEvents struct{}

func (nopEvents) IncBookingEvent(string) {}

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

type fixture struct {
	uc        *UseCase
	bookings  *memory.BookingStore
	users     *memory.UserStore
	notifier  *recordingNotifier
	serviceID int64
	clock     time.Time
}

func newFixture(t *testing.T, ceiling int) *fixture {
	t.Helper()
	return newLockedFixture(t, ceiling, lock.NewLocalLocker())
}

func newLockedFixture(t *testing.T, ceiling int, locker Locker) *fixture {
	t.Helper()
	log := logger.NewNop()

	f := &fixture{
		bookings: memory.NewBookingStore(),
		users: memory.NewUserStore(
			&domain.User{ID: 1, Name: "Ann", Email: "ann@example.com", IsValidated: true},
			&domain.User{ID: 2, Name: "Bob", Email: "bob@example.com", IsValidated: true},
			&domain.User{ID: 3, Name: "Eve", Email: "eve@example.com", IsValidated: true},
		),
		notifier: &recordingNotifier{},
		clock:    day(1),
	}
	f.bookings.SetClock(func() time.Time {
		f.clock = f.clock.Add(time.Minute)
		return f.clock
	})

	services := memory.NewServiceStore()
	svc, err := services.Create(context.Background(), &domain.Track{
		Service: domain.Service{ResortID: 7, Name: "Black run", Price: 50, MaxGuests: ceiling},
		Rating:  domain.RatingBlack,
	})
	require.NoError(t, err)
	f.serviceID = svc.Info().ID

	denier := bookings.NewService(
		f.bookings, services, f.users,
		wallet.NewService(f.users, log),
		f.notifier, txmanager.Nop{}, nopEvents{}, &fixedClock{now: day(1)}, log,
	)
	f.uc = NewUseCase(f.bookings, services, f.users, denier, locker, f.notifier, nopEvents{}, log)
	return f
}

func (f *fixture) pending(t *testing.T, userID int64, from, to time.Time, guests int, value int64) *domain.Booking {
	t.Helper()
	b, err := f.bookings.Create(context.Background(), &domain.Booking{
		UserID:      userID,
		ServiceID:   f.serviceID,
		ResortID:    7,
		ServiceType: domain.ServiceTypeTrack,
		NumOfGuests: guests,
		Value:       value,
		DateFrom:    from,
		DateTo:      to,
	})
	require.NoError(t, err)
	return b
}

func TestUseCase_DeniesOverlappingOverflow(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()

	target := f.pending(t, 1, day(10), day(12), 3, 300)
	other := f.pending(t, 2, day(11), day(13), 3, 300)
	untouched := f.pending(t, 3, day(20), day(22), 3, 300)

	resp, err := f.uc.Execute(ctx, &Request{Admin: domain.Admin{UserID: 10, ResortID: 7}, BookingID: target.ID})
	require.NoError(t, err)
	assert.Equal(t, "Request approved and email sent to ann@example.com", resp.Message)

	require.Len(t, resp.DeniedRequests, 1)
	assert.Equal(t, other.ID, resp.DeniedRequests[0].ID)
	require.NotNil(t, resp.DeniedRequests[0].CancelledBy)
	assert.Equal(t, "overBooking", *resp.DeniedRequests[0].CancelledBy)

	// стоимость отклоненного бронирования возвращена
	balance, err := f.users.Balance(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(300), balance)

	got, err := f.bookings.GetByID(ctx, untouched.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPending())

	require.Len(t, f.notifier.approved, 1)
	assert.Equal(t, "ann@example.com", f.notifier.approved[0].Email)
	require.Len(t, f.notifier.denied, 1)
	assert.Equal(t, "bob@example.com", f.notifier.denied[0].Email)
}

func TestUseCase_FirstFitKeepsIndividuallyFittingBookings(t *testing.T) {
	f := newFixture(t, 4)

	target := f.pending(t, 1, day(10), day(12), 2, 100)
	f.pending(t, 2, day(10), day(12), 2, 100)
	f.pending(t, 3, day(11), day(12), 2, 100)

	// каждое из оставшихся помещается рядом с подтвержденным, вместе - нет
	resp, err := f.uc.Execute(context.Background(), &Request{Admin: domain.Admin{UserID: 10, ResortID: 7}, BookingID: target.ID})
	require.NoError(t, err)
	assert.Empty(t, resp.DeniedRequests)
	assert.Empty(t, f.notifier.denied)
}

func TestUseCase_PostStateWithinCeiling(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()

	already := f.pending(t, 1, day(10), day(11), 2, 100)
	_, err := f.bookings.Approve(ctx, already.ID, 7)
	require.NoError(t, err)

	target := f.pending(t, 2, day(11), day(14), 2, 100)
	tooBig := f.pending(t, 3, day(9), day(12), 2, 100)
	fits := f.pending(t, 3, day(13), day(14), 3, 100)

	resp, err := f.uc.Execute(ctx, &Request{Admin: domain.Admin{UserID: 10, ResortID: 7}, BookingID: target.ID})
	require.NoError(t, err)
	require.Len(t, resp.DeniedRequests, 1)
	assert.Equal(t, tooBig.ID, resp.DeniedRequests[0].ID)

	got, err := f.bookings.GetByID(ctx, fits.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPending())
}

func TestUseCase_NotFound(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()
	b := f.pending(t, 1, day(10), day(12), 1, 100)

	_, err := f.uc.Execute(ctx, &Request{Admin: domain.Admin{UserID: 11, ResortID: 8}, BookingID: b.ID})
	assert.ErrorIs(t, err, ErrBookingNotFound)

	_, err = f.bookings.Cancel(ctx, b.ID, domain.CancelledByExpiration, domain.CancelScope{})
	require.NoError(t, err)

	_, err = f.uc.Execute(ctx, &Request{Admin: domain.Admin{UserID: 10, ResortID: 7}, BookingID: b.ID})
	assert.ErrorIs(t, err, ErrBookingNotFound)

	_, err = f.uc.Execute(ctx, &Request{Admin: domain.Admin{UserID: 10, ResortID: 7}, BookingID: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

// interleavingLocker запоминает ключи и перед первой критической секцией выполняет before
type interleavingLocker struct {
	mu     sync.Mutex
	keys   []string
	before func()
}

func (l *interleavingLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	l.keys = append(l.keys, key)
	before := l.before
	l.before = nil
	l.mu.Unlock()

	if before != nil {
		before()
	}
	return fn(ctx)
}

type busyLocker struct{}

func (busyLocker) WithLock(context.Context, string, func(ctx context.Context) error) error {
	return lock.ErrNotAcquired
}

func approvedGuests(t *testing.T, f *fixture, on time.Time) int {
	t.Helper()
	approved, err := f.bookings.FindOverlapping(context.Background(), domain.OverlapQuery{
		ServiceID: f.serviceID, DateFrom: on, DateTo: on.AddDate(0, 0, 1), Approved: true,
	})
	require.NoError(t, err)

	total := 0
	for _, b := range approved {
		total += b.NumOfGuests
	}
	return total
}

func TestUseCase_ApprovalsOfOneServiceAreSerialized(t *testing.T) {
	locker := &interleavingLocker{}
	f := newLockedFixture(t, 4, locker)
	ctx := context.Background()
	admin := domain.Admin{UserID: 10, ResortID: 7}

	first := f.pending(t, 1, day(10), day(12), 3, 300)
	second := f.pending(t, 2, day(10), day(12), 3, 300)

	var nestedResp *Response
	var nestedErr error
	locker.before = func() {
		nestedResp, nestedErr = f.uc.Execute(ctx, &Request{Admin: admin, BookingID: second.ID})
	}

	_, err := f.uc.Execute(ctx, &Request{Admin: admin, BookingID: first.ID})
	require.NoError(t, nestedErr)
	require.Len(t, nestedResp.DeniedRequests, 1)
	assert.Equal(t, first.ID, nestedResp.DeniedRequests[0].ID)

	// первое бронирование отклонено, пока его подтверждение ждало блокировку
	assert.ErrorIs(t, err, ErrBookingNotFound)

	key := fmt.Sprintf("service:%d", f.serviceID)
	assert.Equal(t, []string{key, key}, locker.keys)
	assert.Equal(t, 3, approvedGuests(t, f, day(10)))
	assert.Equal(t, 3, approvedGuests(t, f, day(11)))
}

func TestUseCase_ConcurrentApprovalsKeepCeiling(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()
	admin := domain.Admin{UserID: 10, ResortID: 7}

	ids := []int64{
		f.pending(t, 1, day(10), day(12), 3, 300).ID,
		f.pending(t, 2, day(10), day(12), 3, 300).ID,
	}

	errs := make([]error, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.uc.Execute(ctx, &Request{Admin: admin, BookingID: id})
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrBookingNotFound)
	}
	assert.Equal(t, 1, succeeded)
	assert.LessOrEqual(t, approvedGuests(t, f, day(10)), 4)
}

func TestUseCase_ServiceBusy(t *testing.T) {
	f := newLockedFixture(t, 4, busyLocker{})
	ctx := context.Background()
	b := f.pending(t, 1, day(10), day(12), 1, 100)

	_, err := f.uc.Execute(ctx, &Request{Admin: domain.Admin{UserID: 10, ResortID: 7}, BookingID: b.ID})
	assert.ErrorIs(t, err, ErrServiceBusy)

	got, err := f.bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPending())
	assert.Empty(t, f.notifier.approved)
}
