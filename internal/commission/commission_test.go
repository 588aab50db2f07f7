package commission

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifestylelure/payouts/internal/domain"
)

type fakeGraph struct {
	referrers map[string]string
	counts    map[string]int
	failOn    string
}

func (g *fakeGraph) Referrer(_ context.Context, userID string) (string, bool, error) {
	if userID == g.failOn {
		return "", false, errors.New("connection refused")
	}
	ref, ok := g.referrers[userID]
	return ref, ok, nil
}

func (g *fakeGraph) DirectReferrals(_ context.Context, userID string) (int, error) {
	if userID == g.failOn {
		return 0, errors.New("connection refused")
	}
	return g.counts[userID], nil
}

type line struct {
	recipient string
	amount    string
	reason    domain.Reason
}

func lines(credits []domain.Credit) []line {
	out := make([]line, 0, len(credits))
	for _, c := range credits {
		out = append(out, line{c.Recipient, c.Amount.StringFixed(2), c.Reason})
	}
	return out
}

func TestCalculate(t *testing.T) {
	twenty := decimal.RequireFromString("20.00")

	tests := []struct {
		name     string
		amount   decimal.Decimal
		graph    *fakeGraph
		expected []line
	}{
		{
			name:     "Payer without referrer earns nothing for anyone",
			amount:   twenty,
			graph:    &fakeGraph{},
			expected: []line{},
		},
		{
			name:   "Referrer below both thresholds gets direct only",
			amount: twenty,
			graph: &fakeGraph{
				referrers: map[string]string{"payer": "ref"},
				counts:    map[string]int{"ref": 5},
			},
			expected: []line{{"ref", "3.00", domain.ReasonDirect}},
		},
		{
			name:   "Scout referrer takes scout, elite grandparent takes elite only",
			amount: twenty,
			graph: &fakeGraph{
				referrers: map[string]string{"payer": "ref", "ref": "boss"},
				counts:    map[string]int{"ref": 12, "boss": 150},
			},
			expected: []line{
				{"ref", "3.00", domain.ReasonDirect},
				{"ref", "0.40", domain.ReasonScoutOverride},
				{"boss", "1.00", domain.ReasonEliteOverride},
			},
		},
		{
			name:   "Elite direct referrer gets three separate lines",
			amount: twenty,
			graph: &fakeGraph{
				referrers: map[string]string{"payer": "shark", "shark": "root"},
				counts:    map[string]int{"shark": 100, "root": 500},
			},
			expected: []line{
				{"shark", "3.00", domain.ReasonDirect},
				{"shark", "1.00", domain.ReasonEliteOverride},
				{"shark", "0.40", domain.ReasonScoutOverride},
			},
		},
		{
			name:   "Elite ancestor above a plain referrer absorbs the scout bonus",
			amount: twenty,
			graph: &fakeGraph{
				referrers: map[string]string{"payer": "ref", "ref": "mid", "mid": "elite"},
				counts:    map[string]int{"ref": 1, "mid": 3, "elite": 120},
			},
			expected: []line{
				{"ref", "3.00", domain.ReasonDirect},
				{"elite", "1.00", domain.ReasonEliteOverride},
				{"elite", "0.40", domain.ReasonScoutOverride},
			},
		},
		{
			name:   "Only the first scout is paid",
			amount: twenty,
			graph: &fakeGraph{
				referrers: map[string]string{"payer": "ref", "ref": "s1", "s1": "s2", "s2": "elite"},
				counts:    map[string]int{"ref": 0, "s1": 10, "s2": 40, "elite": 100},
			},
			expected: []line{
				{"ref", "3.00", domain.ReasonDirect},
				{"s1", "0.40", domain.ReasonScoutOverride},
				{"elite", "1.00", domain.ReasonEliteOverride},
			},
		},
		{
			name:   "Fractional cents are truncated",
			amount: decimal.RequireFromString("14.99"),
			graph: &fakeGraph{
				referrers: map[string]string{"payer": "ref"},
				counts:    map[string]int{"ref": 150},
			},
			expected: []line{
				{"ref", "2.24", domain.ReasonDirect},
				{"ref", "0.74", domain.ReasonEliteOverride},
				{"ref", "0.29", domain.ReasonScoutOverride},
			},
		},
		{
			name:   "Zero amount pays nothing",
			amount: decimal.Zero,
			graph: &fakeGraph{
				referrers: map[string]string{"payer": "ref"},
				counts:    map[string]int{"ref": 150},
			},
			expected: []line{},
		},
		{
			name:   "Shares below a cent are dropped",
			amount: decimal.RequireFromString("0.10"),
			graph: &fakeGraph{
				referrers: map[string]string{"payer": "ref"},
				counts:    map[string]int{"ref": 150},
			},
			expected: []line{{"ref", "0.01", domain.ReasonDirect}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Calculate(context.Background(), "payer", tt.amount, tt.graph)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, lines(res.Credits))
			assert.False(t, res.CycleDetected)
			assert.False(t, res.DepthExceeded)
		})
	}
}

func TestCalculate_StopsWhenBothSlotsConsumed(t *testing.T) {
	g := &fakeGraph{
		referrers: map[string]string{"payer": "ref", "ref": "elite", "elite": "above"},
		counts:    map[string]int{"elite": 100},
		failOn:    "above",
	}

	res, err := Calculate(context.Background(), "payer", decimal.RequireFromString("20"), g)

	require.NoError(t, err)
	assert.Equal(t, 2, res.Visited)
	assert.Len(t, res.Credits, 3)
}

func TestCalculate_DepthBound(t *testing.T) {
	g := &fakeGraph{referrers: map[string]string{}, counts: map[string]int{}}
	prev := "payer"
	for i := 0; i < MaxDepth+10; i++ {
		node := fmt.Sprintf("u%02d", i)
		g.referrers[prev] = node
		prev = node
	}
	// Elite sits beyond the bound and must not be reached.
	g.counts[prev] = 1000

	res, err := Calculate(context.Background(), "payer", decimal.RequireFromString("20"), g)

	require.NoError(t, err)
	assert.True(t, res.DepthExceeded)
	assert.Equal(t, MaxDepth, res.Visited)
	assert.Equal(t, []line{{"u00", "3.00", domain.ReasonDirect}}, lines(res.Credits))
}

func TestCalculate_ChainEndingAtBoundIsNotExceeded(t *testing.T) {
	g := &fakeGraph{referrers: map[string]string{}, counts: map[string]int{}}
	prev := "payer"
	for i := 0; i < MaxDepth; i++ {
		node := fmt.Sprintf("u%02d", i)
		g.referrers[prev] = node
		prev = node
	}

	res, err := Calculate(context.Background(), "payer", decimal.RequireFromString("20"), g)

	require.NoError(t, err)
	assert.False(t, res.DepthExceeded)
	assert.Equal(t, MaxDepth, res.Visited)
}

func TestCalculate_Cycle(t *testing.T) {
	g := &fakeGraph{
		referrers: map[string]string{"payer": "a", "a": "b", "b": "a"},
		counts:    map[string]int{"a": 12},
	}

	res, err := Calculate(context.Background(), "payer", decimal.RequireFromString("20"), g)

	require.NoError(t, err)
	assert.True(t, res.CycleDetected)
	assert.Equal(t, 2, res.Visited)
	assert.Equal(t, []line{
		{"a", "3.00", domain.ReasonDirect},
		{"a", "0.40", domain.ReasonScoutOverride},
	}, lines(res.Credits))
}

func TestCalculate_PayerInOwnUpline(t *testing.T) {
	g := &fakeGraph{referrers: map[string]string{"payer": "a", "a": "payer"}}

	res, err := Calculate(context.Background(), "payer", decimal.RequireFromString("20"), g)

	require.NoError(t, err)
	assert.True(t, res.CycleDetected)
	assert.Len(t, res.Credits, 1)
}

func TestCalculate_LookupErrors(t *testing.T) {
	tests := []struct {
		name   string
		failOn string
	}{
		{name: "Payer lookup fails", failOn: "payer"},
		{name: "Ancestor lookup fails", failOn: "ref"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &fakeGraph{
				referrers: map[string]string{"payer": "ref", "ref": "top"},
				counts:    map[string]int{"top": 150},
				failOn:    tt.failOn,
			}

			res, err := Calculate(context.Background(), "payer", decimal.RequireFromString("20"), g)

			assert.Error(t, err)
			assert.Empty(t, res.Credits)
		})
	}
}

func TestCalculate_Invariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	tiers := []int{0, 3, 9, 10, 57, 99, 100, 250}
	ceiling := DirectRate.Add(ScoutRate).Add(EliteRate)

	for i := 0; i < 500; i++ {
		g := &fakeGraph{referrers: map[string]string{}, counts: map[string]int{}}
		prev := "payer"
		depth := 1 + rng.Intn(MaxDepth+5)
		for d := 0; d < depth; d++ {
			node := fmt.Sprintf("n%d", d)
			g.referrers[prev] = node
			g.counts[node] = tiers[rng.Intn(len(tiers))]
			prev = node
		}
		amount := decimal.New(int64(1+rng.Intn(100000)), -2)

		res, err := Calculate(context.Background(), "payer", amount, g)
		require.NoError(t, err)

		assert.True(t, res.Total().LessThanOrEqual(amount.Mul(ceiling)), "total %s exceeds 22%% of %s", res.Total(), amount)

		perReason := map[domain.Reason]int{}
		for _, c := range res.Credits {
			perReason[c.Reason]++
		}
		assert.LessOrEqual(t, perReason[domain.ReasonScoutOverride], 1)
		assert.LessOrEqual(t, perReason[domain.ReasonEliteOverride], 1)

		if direct := amount.Mul(DirectRate).Truncate(2); direct.IsPositive() {
			require.NotEmpty(t, res.Credits)
			assert.Equal(t, domain.ReasonDirect, res.Credits[0].Reason)
			assert.Equal(t, "n0", res.Credits[0].Recipient)
			assert.True(t, direct.Equal(res.Credits[0].Amount))
		}
	}
}
