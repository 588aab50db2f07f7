package commissions

//go:generate mockgen -source=commissions.go -destination=mock_commissions.go -package=commissions

import (
	"context"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/lifestylelure/payouts/internal/domain"
	"github.com/lifestylelure/payouts/internal/dto"
	"github.com/lifestylelure/payouts/internal/service/balanceservice"
	"github.com/lifestylelure/payouts/pkg/auth"
	"github.com/lifestylelure/payouts/pkg/utils"
)

type Service interface {
	GetBalance(ctx context.Context, userID string) (decimal.Decimal, error)
	GetCommissions(ctx context.Context, userID string) ([]domain.CommissionRecord, error)
}

type CommissionHandler struct {
	balanceService Service
}

func New(balanceService Service) *CommissionHandler {
	return &CommissionHandler{
		balanceService: balanceService,
	}
}

// GetBalance godoc
//
//	@Summary		Get commission balance
//	@Description	Retrieve the accumulated referral commission of the authenticated user.
//	@Tags			Commissions
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.BalanceResponseDTO	"Current commission balance"
//	@Failure		401	{object}	utils.Response			"User not authorized"
//	@Failure		404	{object}	utils.Response			"Profile not found"
//	@Failure		500	{object}	utils.Response			"Internal server error"
//	@Router			/api/user/balance [get]
func (h *CommissionHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	balance, err := h.balanceService.GetBalance(r.Context(), userID)
	if err != nil {
		if errors.Is(err, balanceservice.ErrProfileNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Profile not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.BalanceResponseDTO{
		CommissionBalance: balance.StringFixed(2),
	})
}

// GetCommissions godoc
//
//	@Summary		Get commission history
//	@Description	Ledger entries credited to the authenticated user, newest first.
//	@Tags			Commissions
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		dto.CommissionResponseDTO	"Commission history"
//	@Success		204	{object}	utils.Response				"No commissions yet"
//	@Failure		401	{object}	utils.Response				"User not authorized"
//	@Failure		500	{object}	utils.Response				"Internal server error"
//	@Router			/api/user/commissions [get]
func (h *CommissionHandler) GetCommissions(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	records, err := h.balanceService.GetCommissions(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch commissions")
		return
	}

	if len(records) == 0 {
		utils.RespondWithError(w, http.StatusNoContent, "Commissions not found")
		return
	}

	response := make([]dto.CommissionResponseDTO, len(records))
	for i, rec := range records {
		response[i] = dto.CommissionResponseDTO{
			EventID:     rec.EventID,
			SourcePayer: rec.SourcePayer,
			Amount:      rec.Amount.StringFixed(2),
			Reason:      string(rec.Reason),
			CreatedAt:   rec.CreatedAt,
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, response)
}
