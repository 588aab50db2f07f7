// Package webhook authenticates payment processor notifications and turns
// them into billing events.
package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/lifestylelure/payouts/internal/domain"
)

// SignatureHeader carries the processor's signature.
const SignatureHeader = "Stripe-Signature"

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMalformedPayload = errors.New("malformed webhook payload")
)

type Verifier struct {
	secret    string
	tolerance time.Duration
	planPrice decimal.Decimal
}

// NewVerifier returns a verifier for the endpoint secret. planPriceCents is
// charged when a checkout session does not report its total.
func NewVerifier(secret string, tolerance time.Duration, planPriceCents int64) *Verifier {
	return &Verifier{
		secret:    secret,
		tolerance: tolerance,
		planPrice: decimal.New(planPriceCents, -2),
	}
}

// Verify checks the signature and timestamp of payload and decodes it.
// Event types other than new subscriptions and renewals come back with
// Kind EventUnsupported.
func (v *Verifier) Verify(payload []byte, header string) (domain.BillingEvent, error) {
	if strings.TrimSpace(header) == "" {
		return domain.BillingEvent{}, fmt.Errorf("%w: missing %s header", ErrInvalidSignature, SignatureHeader)
	}

	event, err := webhook.ConstructEventWithOptions(payload, header, v.secret, webhook.ConstructEventOptions{
		Tolerance:                v.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		if isSignatureError(err) {
			return domain.BillingEvent{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
		return domain.BillingEvent{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	return v.decode(event)
}

func isSignatureError(err error) bool {
	return errors.Is(err, webhook.ErrNotSigned) ||
		errors.Is(err, webhook.ErrInvalidHeader) ||
		errors.Is(err, webhook.ErrNoValidSignature) ||
		errors.Is(err, webhook.ErrTooOld)
}

func (v *Verifier) decode(event stripe.Event) (domain.BillingEvent, error) {
	if event.ID == "" || event.Type == "" {
		return domain.BillingEvent{}, fmt.Errorf("%w: event id or type missing", ErrMalformedPayload)
	}
	out := domain.BillingEvent{
		ID:   event.ID,
		Type: string(event.Type),
		Kind: domain.EventUnsupported,
	}
	if event.Data == nil {
		if isHandled(event.Type) {
			return domain.BillingEvent{}, fmt.Errorf("%w: event data missing", ErrMalformedPayload)
		}
		return out, nil
	}

	switch domain.EventKind(event.Type) {
	case domain.EventNewSubscription:
		var session checkoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return domain.BillingEvent{}, fmt.Errorf("%w: checkout session: %v", ErrMalformedPayload, err)
		}
		return v.fromCheckout(out, session)
	case domain.EventRenewal:
		var inv invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return domain.BillingEvent{}, fmt.Errorf("%w: invoice: %v", ErrMalformedPayload, err)
		}
		return fromInvoice(out, inv)
	}
	return out, nil
}

func isHandled(t stripe.EventType) bool {
	k := domain.EventKind(t)
	return k == domain.EventNewSubscription || k == domain.EventRenewal
}

func (v *Verifier) fromCheckout(out domain.BillingEvent, s checkoutSession) (domain.BillingEvent, error) {
	if s.ID == "" {
		return domain.BillingEvent{}, fmt.Errorf("%w: checkout session id missing", ErrMalformedPayload)
	}
	amount := v.planPrice
	if s.AmountTotal != nil {
		if *s.AmountTotal < 0 {
			return domain.BillingEvent{}, fmt.Errorf("%w: negative amount_total", ErrMalformedPayload)
		}
		amount = decimal.New(*s.AmountTotal, -2)
	}

	out.Kind = domain.EventNewSubscription
	out.ObjectID = s.ID
	out.SubscriptionID = s.Subscription.ID
	out.PayerEmail = firstNonEmpty(s.CustomerDetails.Email, s.CustomerEmail)
	out.Amount = amount
	out.ReferredBy = strings.TrimSpace(s.Metadata["referred_by"])
	return out, nil
}

func fromInvoice(out domain.BillingEvent, inv invoice) (domain.BillingEvent, error) {
	if inv.ID == "" {
		return domain.BillingEvent{}, fmt.Errorf("%w: invoice id missing", ErrMalformedPayload)
	}
	if inv.AmountPaid < 0 {
		return domain.BillingEvent{}, fmt.Errorf("%w: negative amount_paid", ErrMalformedPayload)
	}

	out.Kind = domain.EventRenewal
	out.ObjectID = inv.ID
	out.SubscriptionID = firstNonEmpty(inv.Subscription.ID, inv.Parent.SubscriptionDetails.Subscription.ID)
	out.PayerEmail = inv.CustomerEmail
	out.Amount = decimal.New(inv.AmountPaid, -2)
	out.BillingReason = inv.BillingReason
	return out, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
