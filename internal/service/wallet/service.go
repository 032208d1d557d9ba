package wallet

import (
	"context"
	"errors"
	"fmt"

	userRepo "github.com/m04kA/SMC-SkiBookingService/internal/infra/storage/user"
)

// Service кошелек кредитов пользователя
// Все изменения баланса выполняются одним условным UPDATE
type Service struct {
	repo   UserRepository
	logger Logger
}

// NewService создает сервис кошелька
func NewService(repo UserRepository, logger Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// AddCredits пополняет баланс и возвращает новое значение
func (s *Service) AddCredits(ctx context.Context, userID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	balance, err := s.repo.AddCredits(ctx, userID, amount)
	if err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			s.logger.Warn("AddCredits: user id=%d not found", userID)
			return 0, ErrUserNotFound
		}
		s.logger.Error("AddCredits: failed for user id=%d: %v", userID, err)
		return 0, fmt.Errorf("%w: AddCredits - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("AddCredits: user id=%d +%d, balance=%d", userID, amount, balance)
	return balance, nil
}

// Debit списывает amount, только если баланс не меньше суммы
func (s *Service) Debit(ctx context.Context, userID, amount int64) (int64, error) {
	if amount < 0 {
		return 0, ErrInvalidAmount
	}
	if amount == 0 {
		return s.Balance(ctx, userID)
	}

	balance, err := s.repo.Debit(ctx, userID, amount)
	if err != nil {
		switch {
		case errors.Is(err, userRepo.ErrUserNotFound):
			return 0, ErrUserNotFound
		case errors.Is(err, userRepo.ErrInsufficientFunds):
			s.logger.Warn("Debit: user id=%d has insufficient funds for %d", userID, amount)
			return 0, ErrInsufficientFunds
		}
		s.logger.Error("Debit: failed for user id=%d: %v", userID, err)
		return 0, fmt.Errorf("%w: Debit - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Debit: user id=%d -%d, balance=%d", userID, amount, balance)
	return balance, nil
}

// Balance текущий баланс пользователя
func (s *Service) Balance(ctx context.Context, userID int64) (int64, error) {
	balance, err := s.repo.Balance(ctx, userID)
	if err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("%w: Balance - repository error: %v", ErrInternal, err)
	}
	return balance, nil
}
