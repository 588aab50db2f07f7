package webhook

//go:generate mockgen -source=webhook.go -destination=mock_webhook.go -package=webhook

import (
	"context"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/lifestylelure/payouts/internal/domain"
	"github.com/lifestylelure/payouts/internal/dto"
	verifier "github.com/lifestylelure/payouts/internal/webhook"
	"github.com/lifestylelure/payouts/pkg/utils"
)

// MaxBodyBytes caps the notification body.
const MaxBodyBytes = 64 << 10

type Verifier interface {
	Verify(payload []byte, header string) (domain.BillingEvent, error)
}

type Service interface {
	Process(ctx context.Context, event domain.BillingEvent) (domain.Outcome, error)
}

type WebhookHandler struct {
	verifier      Verifier
	payoutService Service
}

func New(v Verifier, payoutService Service) *WebhookHandler {
	return &WebhookHandler{
		verifier:      v,
		payoutService: payoutService,
	}
}

// Handle godoc
//
//	@Summary		Receive payment notification
//	@Description	Verifies a signed payment processor event and distributes referral commission for new subscriptions and renewals. Any 2xx stops redelivery; 5xx asks for a retry.
//	@Tags			Webhook
//	@Accept			json
//	@Produce		json
//	@Param			Stripe-Signature	header		string					true	"Processor signature (t=<ts>,v1=<hmac>)"
//	@Success		200					{object}	dto.WebhookResponseDTO	"Processed, duplicate, ignored or nobody to pay"
//	@Failure		400					{object}	utils.Response			"Invalid signature or payload"
//	@Failure		413					{object}	utils.Response			"Payload too large"
//	@Failure		500					{object}	utils.Response			"Processing failed, retry"
//	@Router			/webhook [post]
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.RespondWithError(w, http.StatusRequestEntityTooLarge, "Payload too large")
			return
		}
		utils.RespondWithError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	event, err := h.verifier.Verify(payload, r.Header.Get(verifier.SignatureHeader))
	if err != nil {
		switch {
		case errors.Is(err, verifier.ErrInvalidSignature):
			zap.L().Warn("rejected webhook signature", zap.Error(err))
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid signature")
		case errors.Is(err, verifier.ErrMalformedPayload):
			zap.L().Warn("rejected webhook payload", zap.Error(err))
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		default:
			zap.L().Error("failed to verify webhook", zap.Error(err))
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	outcome, err := h.payoutService.Process(r.Context(), event)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to process event")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.WebhookResponseDTO{
		Received: true,
		Status:   string(outcome),
	})
}
