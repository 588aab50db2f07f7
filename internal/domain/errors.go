package domain

import "errors"

// ErrSubscriptionNotFound is returned by the payment processor client when
// the subscription does not exist (or is not visible to this account).
var ErrSubscriptionNotFound = errors.New("subscription not found")

// ErrRecipientNotFound is returned by the ledger when a commission recipient
// has no profile.
var ErrRecipientNotFound = errors.New("commission recipient not found")
