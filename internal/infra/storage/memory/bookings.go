// Package memory содержит in-process реализации хранилищ
// Используется в тестах и при storage.driver = "memory"
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/m04kA/SMC-SkiBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SkiBookingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-SkiBookingService/pkg/daterange"
)

// BookingStore in-memory хранилище бронирований
type BookingStore struct {
	mu       sync.RWMutex
	nextID   int64
	bookings map[int64]*domain.Booking
	now      func() time.Time
}

// NewBookingStore создает пустое хранилище бронирований
func NewBookingStore() *BookingStore {
	return &BookingStore{
		bookings: make(map[int64]*domain.Booking),
		now:      time.Now,
	}
}

// SetClock подменяет источник времени для created_at/updated_at
func (s *BookingStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func clone(b *domain.Booking) *domain.Booking {
	c := *b
	if b.CancelledBy != nil {
		reason := *b.CancelledBy
		c.CancelledBy = &reason
	}
	return &c
}

func (s *BookingStore) Create(_ context.Context, booking *domain.Booking) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	booking.ID = s.nextID
	booking.CreatedAt = s.now()
	booking.UpdatedAt = booking.CreatedAt
	s.bookings[booking.ID] = clone(booking)

	return booking, nil
}

func (s *BookingStore) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return clone(b), nil
}

func (s *BookingStore) FindOverlapping(_ context.Context, q domain.OverlapQuery) ([]*domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Booking, 0)
	for _, b := range s.bookings {
		if b.ServiceID != q.ServiceID || b.IsCancelled || b.IsApproved != q.Approved {
			continue
		}
		if q.ExcludeID != 0 && b.ID == q.ExcludeID {
			continue
		}
		if !daterange.Overlaps(b.DateFrom, b.DateTo, q.DateFrom, q.DateTo) {
			continue
		}
		out = append(out, clone(b))
	}

	slices.SortFunc(out, func(a, b *domain.Booking) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return compareID(a.ID, b.ID)
	})
	return out, nil
}

func (s *BookingStore) Approve(_ context.Context, id, resortID int64) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok || b.ResortID != resortID || b.IsCancelled {
		return nil, bookingRepo.ErrBookingNotFound
	}
	b.IsApproved = true
	b.UpdatedAt = s.now()
	return clone(b), nil
}

func (s *BookingStore) Cancel(_ context.Context, id int64, reason domain.CancelReason, scope domain.CancelScope) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok || b.IsCancelled {
		return nil, bookingRepo.ErrNotCancellable
	}
	if scope.ResortID != nil && b.ResortID != *scope.ResortID {
		return nil, bookingRepo.ErrNotCancellable
	}
	if scope.UserID != nil && b.UserID != *scope.UserID {
		return nil, bookingRepo.ErrNotCancellable
	}
	if scope.OnlyPending && b.IsApproved {
		return nil, bookingRepo.ErrNotCancellable
	}

	b.Cancel(reason)
	b.UpdatedAt = s.now()
	return clone(b), nil
}

func (s *BookingStore) List(_ context.Context, filter domain.BookingsFilter, page domain.Page) ([]*domain.Booking, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*domain.Booking, 0)
	for _, b := range s.bookings {
		if matchesFilter(b, filter) {
			matched = append(matched, clone(b))
		}
	}

	slices.SortFunc(matched, func(a, b *domain.Booking) int {
		c := a.DateFrom.Compare(b.DateFrom)
		if !filter.SortAsc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return compareID(a.ID, b.ID)
	})

	return paginate(matched, page), len(matched), nil
}

func (s *BookingStore) ListStalePending(_ context.Context, createdBefore time.Time, limit int) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stale := make([]*domain.Booking, 0)
	for _, b := range s.bookings {
		if b.IsPending() && b.CreatedAt.Before(createdBefore) {
			stale = append(stale, b)
		}
	}
	slices.SortFunc(stale, func(a, b *domain.Booking) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	ids := make([]int64, 0, len(stale))
	for _, b := range stale {
		if len(ids) == limit {
			break
		}
		ids = append(ids, b.ID)
	}
	return ids, nil
}

func matchesFilter(b *domain.Booking, f domain.BookingsFilter) bool {
	if f.ResortID != nil && b.ResortID != *f.ResortID {
		return false
	}
	if f.UserID != nil && b.UserID != *f.UserID {
		return false
	}
	if f.ServiceID != nil && b.ServiceID != *f.ServiceID {
		return false
	}

	switch f.Status {
	case domain.FilterPending:
		return b.IsPending()
	case domain.FilterApproved:
		return b.HoldsCapacity()
	case domain.FilterExpired:
		return b.IsCancelled && b.CancelledBy != nil && *b.CancelledBy == domain.CancelledByExpiration
	case domain.FilterFinished:
		return !b.DateTo.After(f.Now)
	}
	return true
}

func paginate[T any](items []T, page domain.Page) []T {
	from := page.Offset()
	if from >= len(items) {
		return []T{}
	}
	to := min(from+page.PerPage, len(items))
	return items[from:to]
}

func compareID(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
