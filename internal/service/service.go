package service

import (
	"github.com/lifestylelure/payouts/internal/handlers/commissions"
	"github.com/lifestylelure/payouts/internal/handlers/webhook"
	"github.com/lifestylelure/payouts/internal/repo"
	"github.com/lifestylelure/payouts/internal/service/balanceservice"
	"github.com/lifestylelure/payouts/internal/service/payoutservice"
)

type Services struct {
	PayoutService  webhook.Service
	BalanceService commissions.Service
}

func New(repo *repo.Repositories, subscriptions payoutservice.SubscriptionAPI) *Services {
	return &Services{
		PayoutService:  payoutservice.New(repo.ProfileRepo, repo.LedgerRepo, subscriptions),
		BalanceService: balanceservice.New(repo.BalanceRepo, repo.CommissionRepo),
	}
}
