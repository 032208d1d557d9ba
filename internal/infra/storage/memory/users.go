package memory

import (
	"context"
	"sync"

	"github.com/m04kA/SMC-SkiBookingService/internal/domain"
	userRepo "github.com/m04kA/SMC-SkiBookingService/internal/infra/storage/user"
)

// UserStore in-memory пользователи с кошельками
type UserStore struct {
	mu    sync.RWMutex
	users map[int64]*domain.User
}

// NewUserStore создает хранилище с переданными пользователями
func NewUserStore(users ...*domain.User) *UserStore {
	s := &UserStore{users: make(map[int64]*domain.User, len(users))}
	for _, u := range users {
		c := *u
		s.users[u.ID] = &c
	}
	return s
}

// Put добавляет или заменяет пользователя
func (s *UserStore) Put(u *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *u
	s.users[u.ID] = &c
}

func (s *UserStore) GetByID(_ context.Context, id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, userRepo.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (s *UserStore) Balance(_ context.Context, id int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return 0, userRepo.ErrUserNotFound
	}
	return u.Wallet, nil
}

func (s *UserStore) AddCredits(_ context.Context, id, amount int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return 0, userRepo.ErrUserNotFound
	}
	u.Wallet += amount
	return u.Wallet, nil
}

func (s *UserStore) Debit(_ context.Context, id, amount int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return 0, userRepo.ErrUserNotFound
	}
	if u.Wallet < amount {
		return 0, userRepo.ErrInsufficientFunds
	}
	u.Wallet -= amount
	return u.Wallet, nil
}
