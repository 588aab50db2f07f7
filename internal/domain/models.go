package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Profile struct {
	ID                string          `db:"id"`
	Email             string          `db:"email"`
	ReferredBy        *string         `db:"referred_by"`
	CommissionBalance decimal.Decimal `db:"commission_balance"`
	CreatedAt         time.Time       `db:"created_at"`
}

// Subscription is the processor-side billing agreement. ReferredBy is the
// durable tag stamped on first payment.
type Subscription struct {
	ID         string
	ReferredBy string
}

type Reason string

const (
	ReasonDirect        Reason = "direct"
	ReasonScoutOverride Reason = "scout_override"
	ReasonEliteOverride Reason = "elite_override"
)

type Credit struct {
	Recipient string
	Amount    decimal.Decimal
	Reason    Reason
}

type CommissionRecord struct {
	ID          string          `db:"id"`
	EventID     string          `db:"event_id"`
	RecipientID string          `db:"recipient_id"`
	SourcePayer string          `db:"source_payer"`
	Amount      decimal.Decimal `db:"amount"`
	Reason      Reason          `db:"reason"`
	CreatedAt   time.Time       `db:"created_at"`
}

type EventKind string

const (
	EventNewSubscription EventKind = "checkout.session.completed"
	EventRenewal         EventKind = "invoice.payment_succeeded"
	EventUnsupported     EventKind = "unsupported"
)

// BillingReasonCycle marks an invoice raised by a regular renewal.
const BillingReasonCycle = "subscription_cycle"

// BillingEvent is one verified payment notification.
type BillingEvent struct {
	ID             string
	Type           string
	Kind           EventKind
	ObjectID       string
	SubscriptionID string
	PayerEmail     string
	Amount         decimal.Decimal
	ReferredBy     string
	BillingReason  string
}

type Outcome string

const (
	OutcomeProcessed  Outcome = "processed"
	OutcomeDuplicate  Outcome = "duplicate"
	OutcomeNoReferrer Outcome = "no_referrer"
	OutcomeIgnored    Outcome = "ignored"
)
