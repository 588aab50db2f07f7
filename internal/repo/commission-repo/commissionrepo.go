package commissionrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/lifestylelure/payouts/internal/domain"
	"github.com/lifestylelure/payouts/internal/pg"
)

const (
	hasEventQuery = `
		SELECT EXISTS (SELECT 1 FROM commission_records WHERE event_id = $1)
	`
	insertRecordQuery = `
		INSERT INTO commission_records (id, event_id, recipient_id, source_payer, amount, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_id, reason) DO NOTHING
	`
	creditBalanceQuery = `
		UPDATE profiles
		SET commission_balance = commission_balance + $1
		WHERE id = $2
	`
	listByRecipientQuery = `
		SELECT id::text, event_id, recipient_id::text, source_payer, amount, reason, created_at
		FROM commission_records
		WHERE recipient_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
)

const foreignKeyViolation = "23503"

var ErrRecipientNotFound = domain.ErrRecipientNotFound

type Repository struct {
	db        pg.Database
	txManager pg.TXManager
	newID     func() string
}

func New(db pg.Database, txManager pg.TXManager) *Repository {
	return &Repository{
		db:        db,
		txManager: txManager,
		newID:     uuid.NewString,
	}
}

// HasEvent reports whether any commission was already recorded for eventID.
func (r *Repository) HasEvent(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, hasEventQuery, eventID).Scan(&exists); err != nil {
		zap.L().Error("failed to check processed event", zap.String("event_id", eventID), zap.Error(err))
		return false, err
	}
	return exists, nil
}

// ApplyCredits records every credit of one billing event and adds it to the
// recipient's balance, all in one transaction. A credit whose (event,
// recipient, reason) row already exists is skipped without touching the
// balance, so replaying an event is safe. Each reason is paid once per event
// whoever the recipient is. It returns how many credits were newly applied.
func (r *Repository) ApplyCredits(ctx context.Context, eventID, payer string, credits []domain.Credit) (int, error) {
	if len(credits) == 0 {
		return 0, nil
	}

	var applied int
	err := r.txManager.Begin(ctx, func(ctx context.Context) error {
		applied = 0
		for _, c := range credits {
			tag, err := r.db.Exec(ctx, insertRecordQuery, r.newID(), eventID, c.Recipient, payer, c.Amount, string(c.Reason))
			if err != nil {
				var pgErr *pgconn.PgError
				if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
					return fmt.Errorf("%w: %s", ErrRecipientNotFound, c.Recipient)
				}
				zap.L().Error("can't save commission record", zap.String("event_id", eventID), zap.String("recipient", c.Recipient), zap.Error(err))
				return fmt.Errorf("insert %s commission for %s: %w", c.Reason, c.Recipient, err)
			}
			if tag.RowsAffected() == 0 {
				zap.L().Info("commission already recorded",
					zap.String("event_id", eventID),
					zap.String("recipient", c.Recipient),
					zap.String("reason", string(c.Reason)),
				)
				continue
			}

			tag, err = r.db.Exec(ctx, creditBalanceQuery, c.Amount, c.Recipient)
			if err != nil {
				zap.L().Error("failed to credit balance", zap.String("recipient", c.Recipient), zap.Error(err))
				return fmt.Errorf("credit %s: %w", c.Recipient, err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("%w: %s", ErrRecipientNotFound, c.Recipient)
			}
			applied++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return applied, nil
}

func (r *Repository) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]domain.CommissionRecord, error) {
	rows, err := r.db.Query(ctx, listByRecipientQuery, recipientID, limit)
	if err != nil {
		zap.L().Error("failed to fetch commissions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var records []domain.CommissionRecord
	for rows.Next() {
		var (
			rec    domain.CommissionRecord
			reason string
		)
		err := rows.Scan(&rec.ID, &rec.EventID, &rec.RecipientID, &rec.SourcePayer, &rec.Amount, &reason, &rec.CreatedAt)
		if err != nil {
			zap.L().Error("failed to scan commission row", zap.Error(err))
			return nil, err
		}
		rec.Reason = domain.Reason(reason)
		records = append(records, rec)
	}

	return records, rows.Err()
}
