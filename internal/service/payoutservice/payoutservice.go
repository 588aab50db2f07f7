package payoutservice

//go:generate mockgen -source=payoutservice.go -destination=mock_payoutservice.go -package=payoutservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lifestylelure/payouts/internal/commission"
	"github.com/lifestylelure/payouts/internal/domain"
	"github.com/lifestylelure/payouts/internal/metrics"
)

type ProfileRepo interface {
	GetReferrer(ctx context.Context, userID string) (string, bool, error)
	CountDirectReferrals(ctx context.Context, userID string) (int, error)
	Exists(ctx context.Context, userID string) (bool, error)
	FindByEmail(ctx context.Context, email string) (*domain.Profile, error)
}

type LedgerRepo interface {
	HasEvent(ctx context.Context, eventID string) (bool, error)
	ApplyCredits(ctx context.Context, eventID, payer string, credits []domain.Credit) (int, error)
}

type SubscriptionAPI interface {
	Retrieve(ctx context.Context, subscriptionID string) (*domain.Subscription, error)
	SetReferrer(ctx context.Context, subscriptionID, referrerID string) error
}

type Service struct {
	profileRepo   ProfileRepo
	ledgerRepo    LedgerRepo
	subscriptions SubscriptionAPI
}

func New(profileRepo ProfileRepo, ledgerRepo LedgerRepo, subscriptions SubscriptionAPI) *Service {
	return &Service{
		profileRepo:   profileRepo,
		ledgerRepo:    ledgerRepo,
		subscriptions: subscriptions,
	}
}

// Process distributes commission for one verified billing event. Any
// returned error is transient: nothing was committed and the processor
// should redeliver.
func (s *Service) Process(ctx context.Context, event domain.BillingEvent) (domain.Outcome, error) {
	log := zap.L().With(zap.String("event_id", event.ID), zap.String("type", event.Type))

	outcome, err := s.process(ctx, event, log)
	if err != nil {
		log.Error("failed to process billing event", zap.Error(err))
		metrics.WebhookEvents.WithLabelValues(string(event.Kind), "failed").Inc()
		return "", err
	}
	metrics.WebhookEvents.WithLabelValues(string(event.Kind), string(outcome)).Inc()
	return outcome, nil
}

func (s *Service) process(ctx context.Context, event domain.BillingEvent, log *zap.Logger) (domain.Outcome, error) {
	switch event.Kind {
	case domain.EventNewSubscription:
	case domain.EventRenewal:
		if event.BillingReason != domain.BillingReasonCycle {
			log.Info("invoice is not a renewal, skipping", zap.String("billing_reason", event.BillingReason))
			return domain.OutcomeIgnored, nil
		}
	default:
		log.Info("event type not handled")
		return domain.OutcomeIgnored, nil
	}

	done, err := s.ledgerRepo.HasEvent(ctx, event.ID)
	if err != nil {
		return "", fmt.Errorf("check event %s: %w", event.ID, err)
	}
	if done {
		log.Info("event already processed")
		return domain.OutcomeDuplicate, nil
	}

	referrer, err := s.resolveReferrer(ctx, event, log)
	if err != nil {
		return "", err
	}
	if referrer == "" {
		log.Info("payer has no referrer")
		return domain.OutcomeNoReferrer, nil
	}

	payer := payerKey(event)
	graph := newSnapshot(s.profileRepo, payer, referrer)
	result, err := commission.Calculate(ctx, payer, event.Amount, graph)
	if err != nil {
		return "", fmt.Errorf("calculate commission: %w", err)
	}
	if result.CycleDetected {
		log.Error("referral cycle in upline", zap.String("alarm", "cycle"), zap.Int("visited", result.Visited))
		metrics.IntegrityAlarms.WithLabelValues("cycle", "payout").Inc()
	}
	if result.DepthExceeded {
		log.Error("upline walk hit depth bound", zap.String("alarm", "depth"), zap.Int("visited", result.Visited))
		metrics.IntegrityAlarms.WithLabelValues("depth", "payout").Inc()
	}

	applied, err := s.ledgerRepo.ApplyCredits(ctx, event.ID, payer, result.Credits)
	if errors.Is(err, domain.ErrRecipientNotFound) {
		log.Warn("commission recipient has no profile, nothing paid", zap.Error(err))
		return domain.OutcomeNoReferrer, nil
	}
	if err != nil {
		return "", fmt.Errorf("apply credits: %w", err)
	}
	for _, c := range result.Credits {
		metrics.CommissionCredits.WithLabelValues(string(c.Reason)).Inc()
		metrics.CommissionAmount.WithLabelValues(string(c.Reason)).Add(c.Amount.InexactFloat64())
	}

	log.Info("commission distributed",
		zap.String("payer", payer),
		zap.String("amount", event.Amount.StringFixed(2)),
		zap.Int("credits", len(result.Credits)),
		zap.Int("applied", applied),
		zap.String("total", result.Total().StringFixed(2)),
	)
	return domain.OutcomeProcessed, nil
}

// resolveReferrer finds the referrer who earns the direct commission. An
// empty result with a nil error means nobody is owed anything.
func (s *Service) resolveReferrer(ctx context.Context, event domain.BillingEvent, log *zap.Logger) (string, error) {
	var candidate string

	switch event.Kind {
	case domain.EventNewSubscription:
		candidate = event.ReferredBy
		if candidate == "" && event.PayerEmail != "" {
			profile, err := s.profileRepo.FindByEmail(ctx, event.PayerEmail)
			if err != nil {
				return "", fmt.Errorf("find payer profile: %w", err)
			}
			if profile != nil && profile.ReferredBy != nil {
				candidate = *profile.ReferredBy
			}
		}
	case domain.EventRenewal:
		if event.SubscriptionID == "" {
			log.Warn("renewal without subscription id")
			return "", nil
		}
		sub, err := s.subscriptions.Retrieve(ctx, event.SubscriptionID)
		if err != nil {
			if errors.Is(err, domain.ErrSubscriptionNotFound) {
				log.Warn("subscription not found", zap.String("subscription_id", event.SubscriptionID))
				return "", nil
			}
			return "", fmt.Errorf("retrieve subscription %s: %w", event.SubscriptionID, err)
		}
		candidate = sub.ReferredBy
	}

	referrer := parseReferrer(candidate, log)
	if referrer == "" {
		return "", nil
	}
	exists, err := s.profileRepo.Exists(ctx, referrer)
	if err != nil {
		return "", fmt.Errorf("check referrer %s: %w", referrer, err)
	}
	if !exists {
		log.Warn("referrer profile not found", zap.String("referrer", referrer))
		return "", nil
	}

	if event.Kind == domain.EventNewSubscription {
		if err := s.stamp(ctx, event.SubscriptionID, referrer, log); err != nil {
			return "", err
		}
	}
	return referrer, nil
}

// parseReferrer normalizes a referrer tag to a profile id. Anything that is
// not a UUID counts as no referrer.
func parseReferrer(candidate string, log *zap.Logger) string {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return ""
	}
	id, err := uuid.Parse(candidate)
	if err != nil {
		log.Warn("referrer is not a profile id", zap.String("referred_by", candidate))
		return ""
	}
	return id.String()
}

// stamp records the referrer on the subscription so renewals can be
// attributed. An existing tag is never overwritten.
func (s *Service) stamp(ctx context.Context, subscriptionID, referrer string, log *zap.Logger) error {
	if subscriptionID == "" {
		log.Warn("checkout without subscription, nothing to stamp")
		return nil
	}
	log = log.With(zap.String("subscription_id", subscriptionID))

	sub, err := s.subscriptions.Retrieve(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, domain.ErrSubscriptionNotFound) {
			log.Warn("subscription not found, skipping stamp")
			return nil
		}
		return fmt.Errorf("retrieve subscription %s: %w", subscriptionID, err)
	}
	if sub.ReferredBy != "" {
		if sub.ReferredBy != referrer {
			log.Warn("subscription already attributed to another referrer",
				zap.String("stamped", sub.ReferredBy),
				zap.String("referrer", referrer),
			)
		}
		return nil
	}

	if err := s.subscriptions.SetReferrer(ctx, subscriptionID, referrer); err != nil {
		if errors.Is(err, domain.ErrSubscriptionNotFound) {
			log.Warn("subscription vanished before stamping")
			return nil
		}
		return fmt.Errorf("stamp subscription %s: %w", subscriptionID, err)
	}
	log.Info("subscription stamped", zap.String("referrer", referrer))
	return nil
}

// payerKey identifies the payer in the ledger and in the upline walk.
func payerKey(event domain.BillingEvent) string {
	if event.PayerEmail != "" {
		return strings.ToLower(event.PayerEmail)
	}
	return event.ObjectID
}
