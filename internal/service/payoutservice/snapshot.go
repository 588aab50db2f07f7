package payoutservice

import (
	"context"
)

type referrerAnswer struct {
	id    string
	found bool
}

// snapshot answers graph reads for a single event. Each node is read at most
// once, so a concurrent write cannot make one walk see two versions of it.
// The payer's first hop is the referrer already resolved for the event.
type snapshot struct {
	repo      ProfileRepo
	payer     string
	direct    string
	referrers map[string]referrerAnswer
	counts    map[string]int
}

func newSnapshot(repo ProfileRepo, payer, direct string) *snapshot {
	return &snapshot{
		repo:      repo,
		payer:     payer,
		direct:    direct,
		referrers: make(map[string]referrerAnswer),
		counts:    make(map[string]int),
	}
}

func (s *snapshot) Referrer(ctx context.Context, userID string) (string, bool, error) {
	if userID == s.payer {
		return s.direct, true, nil
	}
	if a, ok := s.referrers[userID]; ok {
		return a.id, a.found, nil
	}
	id, found, err := s.repo.GetReferrer(ctx, userID)
	if err != nil {
		return "", false, err
	}
	s.referrers[userID] = referrerAnswer{id: id, found: found}
	return id, found, nil
}

func (s *snapshot) DirectReferrals(ctx context.Context, userID string) (int, error) {
	if n, ok := s.counts[userID]; ok {
		return n, nil
	}
	n, err := s.repo.CountDirectReferrals(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.counts[userID] = n
	return n, nil
}
