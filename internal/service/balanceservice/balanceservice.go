package balanceservice

//go:generate mockgen -source=balanceservice.go -destination=mock_balanceservice.go -package=balanceservice

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/lifestylelure/payouts/internal/domain"
)

// HistoryLimit caps how many ledger rows one request returns.
const HistoryLimit = 100

type BalanceRepo interface {
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
}

type CommissionRepo interface {
	ListByRecipient(ctx context.Context, recipientID string, limit int) ([]domain.CommissionRecord, error)
}

type Service struct {
	balanceRepo    BalanceRepo
	commissionRepo CommissionRepo
}

func New(balanceRepo BalanceRepo, commissionRepo CommissionRepo) *Service {
	return &Service{
		balanceRepo:    balanceRepo,
		commissionRepo: commissionRepo,
	}
}

var (
	ErrProfileNotFound = errors.New("profile not found")
)

func (s *Service) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	profile, err := s.balanceRepo.GetProfile(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get balance", zap.Error(err))
		return decimal.Zero, err
	}
	if profile == nil {
		return decimal.Zero, ErrProfileNotFound
	}
	return profile.CommissionBalance, nil
}

func (s *Service) GetCommissions(ctx context.Context, userID string) ([]domain.CommissionRecord, error) {
	records, err := s.commissionRepo.ListByRecipient(ctx, userID, HistoryLimit)
	if err != nil {
		zap.L().Error("failed to fetch commissions", zap.Error(err))
		return nil, err
	}
	return records, nil
}
