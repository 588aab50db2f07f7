// Package billing talks to the payment processor's subscription API.
package billing

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"go.uber.org/zap"

	"github.com/lifestylelure/payouts/internal/domain"
)

// ReferrerKey is the subscription metadata key holding the referrer id.
const ReferrerKey = "referred_by"

type Client struct {
	api *client.API
}

// New builds a client for the live API. backends may be nil.
func New(secretKey string, backends *stripe.Backends) *Client {
	return &Client{api: client.New(secretKey, backends)}
}

// NewBackends points every API call at baseURL. Used for tests and local
// processor simulators.
func NewBackends(baseURL string, httpClient *http.Client) *stripe.Backends {
	cfg := &stripe.BackendConfig{
		URL:               stripe.String(baseURL),
		HTTPClient:        httpClient,
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelError},
	}
	return &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, cfg),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, cfg),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, cfg),
	}
}

func (c *Client) Retrieve(ctx context.Context, subscriptionID string) (*domain.Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	sub, err := c.api.Subscriptions.Get(subscriptionID, params)
	if err != nil {
		return nil, translate(subscriptionID, err)
	}
	return &domain.Subscription{
		ID:         sub.ID,
		ReferredBy: sub.Metadata[ReferrerKey],
	}, nil
}

// SetReferrer writes the referrer tag. Other metadata keys are left as is.
func (c *Client) SetReferrer(ctx context.Context, subscriptionID, referrerID string) error {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	params.AddMetadata(ReferrerKey, referrerID)

	if _, err := c.api.Subscriptions.Update(subscriptionID, params); err != nil {
		return translate(subscriptionID, err)
	}
	return nil
}

func translate(subscriptionID string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", domain.ErrSubscriptionNotFound, subscriptionID)
	}
	zap.L().Error("subscription api call failed", zap.String("subscription_id", subscriptionID), zap.Error(err))
	return fmt.Errorf("subscription %s: %w", subscriptionID, err)
}
