// Package commission computes referral payouts for a single billing event.
//
// The direct referrer always earns DirectRate. Walking up from the direct
// referrer (inclusive), the first scout-tier ancestor takes the scout
// override and the first elite-tier ancestor takes the elite override. An
// elite ancestor reached while the scout override is still unclaimed takes
// that too. Each override is paid at most once per event, so the total never
// exceeds DirectRate + ScoutRate + EliteRate of the payment.
package commission

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/lifestylelure/payouts/internal/domain"
)

const (
	// MaxDepth bounds the ancestor walk.
	MaxDepth = 20

	ScoutThreshold = 10
	EliteThreshold = 100
)

var (
	DirectRate = decimal.RequireFromString("0.15")
	ScoutRate  = decimal.RequireFromString("0.02")
	EliteRate  = decimal.RequireFromString("0.05")
)

// Graph answers referral questions. Implementations must give the same
// answer for the same question during one Calculate call.
type Graph interface {
	Referrer(ctx context.Context, userID string) (string, bool, error)
	DirectReferrals(ctx context.Context, userID string) (int, error)
}

type Result struct {
	Credits []domain.Credit
	// Visited is the number of ancestors whose tier was checked.
	Visited int
	// CycleDetected is set when an ancestor repeats; the walk stops there.
	CycleDetected bool
	// DepthExceeded is set when ancestors remain after MaxDepth nodes.
	DepthExceeded bool
}

func (r Result) Total() decimal.Decimal {
	total := decimal.Zero
	for _, c := range r.Credits {
		total = total.Add(c.Amount)
	}
	return total
}

func (r *Result) add(recipient string, amount, rate decimal.Decimal, reason domain.Reason) {
	share := amount.Mul(rate).Truncate(2)
	if !share.IsPositive() {
		return
	}
	r.Credits = append(r.Credits, domain.Credit{
		Recipient: recipient,
		Amount:    share,
		Reason:    reason,
	})
}

// Calculate returns the ordered credits owed for a payment of amount made by
// payer. Lookup errors abort the calculation; nothing partial is returned.
func Calculate(ctx context.Context, payer string, amount decimal.Decimal, g Graph) (Result, error) {
	var res Result
	if !amount.IsPositive() {
		return res, nil
	}

	direct, ok, err := g.Referrer(ctx, payer)
	if err != nil {
		return Result{}, fmt.Errorf("resolve referrer of %s: %w", payer, err)
	}
	if !ok {
		return res, nil
	}
	res.add(direct, amount, DirectRate, domain.ReasonDirect)

	scoutOpen, eliteOpen := true, true
	visited := map[string]struct{}{payer: {}}
	node := direct
	for {
		if _, seen := visited[node]; seen {
			res.CycleDetected = true
			break
		}
		if res.Visited == MaxDepth {
			res.DepthExceeded = true
			break
		}
		visited[node] = struct{}{}
		res.Visited++

		count, err := g.DirectReferrals(ctx, node)
		if err != nil {
			return Result{}, fmt.Errorf("count referrals of %s: %w", node, err)
		}

		switch {
		case count >= EliteThreshold:
			if eliteOpen {
				res.add(node, amount, EliteRate, domain.ReasonEliteOverride)
				eliteOpen = false
			}
			if scoutOpen {
				res.add(node, amount, ScoutRate, domain.ReasonScoutOverride)
				scoutOpen = false
			}
		case count >= ScoutThreshold && scoutOpen:
			res.add(node, amount, ScoutRate, domain.ReasonScoutOverride)
			scoutOpen = false
		}

		if !scoutOpen && !eliteOpen {
			break
		}

		next, ok, err := g.Referrer(ctx, node)
		if err != nil {
			return Result{}, fmt.Errorf("resolve referrer of %s: %w", node, err)
		}
		if !ok {
			break
		}
		node = next
	}

	return res, nil
}
