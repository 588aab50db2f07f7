// Package integrity periodically walks every referral chain looking for
// cycles and chains deeper than the payout walk can follow. It only reports;
// it never changes data.
package integrity

//go:generate mockgen -source=integrity.go -destination=mock_integrity.go -package=integrity

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lifestylelure/payouts/internal/commission"
	"github.com/lifestylelure/payouts/internal/config"
	"github.com/lifestylelure/payouts/internal/metrics"
)

const (
	pageSize = 500
	workers  = 10
)

const (
	AlarmCycle = "cycle"
	AlarmDepth = "depth"
)

type Repo interface {
	ListReferred(ctx context.Context, afterID string, limit int) ([]string, error)
	GetReferrer(ctx context.Context, userID string) (string, bool, error)
}

// Report summarizes one scan.
type Report struct {
	Scanned int64
	Cycles  int64
	Deep    int64
	Failed  int64
}

type report struct {
	scanned, cycles, deep, failed atomic.Int64
}

func (r *report) snapshot() Report {
	return Report{
		Scanned: r.scanned.Load(),
		Cycles:  r.cycles.Load(),
		Deep:    r.deep.Load(),
		Failed:  r.failed.Load(),
	}
}

type Scanner struct {
	repo       Repo
	pageSize   int
	maxDepth   int
	workerPool WorkerPoolI
	interval   time.Duration
	inFlight   sync.Map
}

func New(cfg *config.Config, repo Repo) *Scanner {
	return &Scanner{
		repo:       repo,
		pageSize:   pageSize,
		maxDepth:   commission.MaxDepth,
		workerPool: NewWorkerPool(workers),
		interval:   cfg.IntegrityInterval,
	}
}

func (s *Scanner) Start(ctx context.Context) {
	if s.interval <= 0 {
		zap.L().Warn("referral integrity scanner disabled")
		s.workerPool.Close()
		return
	}
	zap.L().Info("referral integrity scanner started", zap.Duration("interval", s.interval))
	go s.run(ctx)
}

func (s *Scanner) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer s.workerPool.Close()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("context canceled, stopping integrity scanner")
			return
		case <-ticker.C:
			rep, err := s.Scan(ctx)
			if err != nil {
				zap.L().Error("integrity scan aborted", zap.Error(err))
				continue
			}
			zap.L().Info("integrity scan finished",
				zap.Int64("scanned", rep.Scanned),
				zap.Int64("cycles", rep.Cycles),
				zap.Int64("deep", rep.Deep),
				zap.Int64("failed", rep.Failed),
			)
		}
	}
}

// Scan walks the chain above every profile that has a referrer.
func (s *Scanner) Scan(ctx context.Context) (Report, error) {
	var rep report
	after := ""
	for {
		ids, err := s.repo.ListReferred(ctx, after, s.pageSize)
		if err != nil {
			return rep.snapshot(), fmt.Errorf("list referred profiles after %q: %w", after, err)
		}
		if len(ids) == 0 {
			return rep.snapshot(), nil
		}
		if err := s.scanPage(ctx, ids, &rep); err != nil {
			return rep.snapshot(), err
		}
		if len(ids) < s.pageSize {
			return rep.snapshot(), nil
		}
		after = ids[len(ids)-1]
	}
}

func (s *Scanner) scanPage(ctx context.Context, ids []string, rep *report) error {
	var (
		g  errgroup.Group
		wg sync.WaitGroup
	)
	for _, id := range ids {
		if _, loaded := s.inFlight.LoadOrStore(id, struct{}{}); loaded {
			continue
		}

		wg.Add(1)
		g.Go(func() error {
			err := s.workerPool.AddTask(ctx, func() error {
				defer wg.Done()
				defer s.inFlight.Delete(id)
				return s.walk(ctx, id, rep)
			})
			if err != nil {
				wg.Done()
				s.inFlight.Delete(id)
				return err
			}
			return nil
		})
	}

	err := g.Wait()
	wg.Wait()
	return err
}

// walk follows referrers from start until the root, a repeat, or the depth
// bound.
func (s *Scanner) walk(ctx context.Context, start string, rep *report) error {
	rep.scanned.Add(1)
	visited := map[string]struct{}{start: {}}
	node := start
	for depth := 1; ; depth++ {
		next, ok, err := s.repo.GetReferrer(ctx, node)
		if err != nil {
			rep.failed.Add(1)
			return fmt.Errorf("walk from %s: %w", start, err)
		}
		if !ok {
			return nil
		}
		if _, seen := visited[next]; seen {
			rep.cycles.Add(1)
			alarm(AlarmCycle, start, next, depth)
			return nil
		}
		if depth > s.maxDepth {
			rep.deep.Add(1)
			alarm(AlarmDepth, start, next, depth)
			return nil
		}
		visited[next] = struct{}{}
		node = next
	}
}

func alarm(kind, start, node string, depth int) {
	zap.L().Error("referral graph integrity alarm",
		zap.String("alarm", kind),
		zap.String("profile", start),
		zap.String("node", node),
		zap.Int("depth", depth),
	)
	metrics.IntegrityAlarms.WithLabelValues(kind, "scanner").Inc()
}
