package repo

import (
	"github.com/lifestylelure/payouts/internal/integrity"
	"github.com/lifestylelure/payouts/internal/pg"
	commissionrepo "github.com/lifestylelure/payouts/internal/repo/commission-repo"
	profilerepo "github.com/lifestylelure/payouts/internal/repo/profile-repo"
	"github.com/lifestylelure/payouts/internal/service/balanceservice"
	"github.com/lifestylelure/payouts/internal/service/payoutservice"
)

type Repositories struct {
	ProfileRepo    payoutservice.ProfileRepo
	LedgerRepo     payoutservice.LedgerRepo
	BalanceRepo    balanceservice.BalanceRepo
	CommissionRepo balanceservice.CommissionRepo
	ReferralRepo   integrity.Repo
}

func New(conn pg.Database, txManager pg.TXManager) *Repositories {
	profileRepo := profilerepo.New(conn)
	commissionRepo := commissionrepo.New(conn, txManager)

	return &Repositories{
		ProfileRepo:    profileRepo,
		LedgerRepo:     commissionRepo,
		BalanceRepo:    profileRepo,
		CommissionRepo: commissionRepo,
		ReferralRepo:   profileRepo,
	}
}
