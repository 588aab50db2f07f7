package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/lifestylelure/payouts/internal/billing"
	"github.com/lifestylelure/payouts/internal/config"
	"github.com/lifestylelure/payouts/internal/handlers"
	"github.com/lifestylelure/payouts/internal/integrity"
	"github.com/lifestylelure/payouts/internal/pg"
	"github.com/lifestylelure/payouts/internal/repo"
	"github.com/lifestylelure/payouts/internal/service"
	"github.com/lifestylelure/payouts/internal/webhook"
	"github.com/lifestylelure/payouts/pkg/auth"
	"github.com/lifestylelure/payouts/pkg/logger"
)

type ApplicationI interface {
	Start(ctx context.Context) error
	Wait(ctx context.Context, cancel context.CancelFunc) error
}

type Application struct {
	cfg     *config.Config
	api     *handlers.Handlers
	srv     *service.Services
	repo    *repo.Repositories
	scanner *integrity.Scanner
	pool    *pgxpool.Pool

	errCh chan error
	wg    sync.WaitGroup
	ready bool
}

func New() *Application {
	return &Application{
		errCh: make(chan error),
	}
}

func (a *Application) Start(ctx context.Context) error {
	cfg := config.New()

	err := logger.InitLogger(cfg)
	if err != nil {
		return fmt.Errorf("can't init logger: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	pool, err := getPgxpool(ctx, cfg)
	if err != nil {
		zap.L().Error("build pgx pool failed: ", zap.Error(err))
		return fmt.Errorf("can't build pgx pool: %w", err)
	}
	if err := pg.RunMigrations(pool); err != nil {
		pool.Close()
		zap.L().Error("migrations failed: ", zap.Error(err))
		return fmt.Errorf("can't run migrations: %w", err)
	}
	a.pool = pool

	a.wire(cfg, pg.New(pool), pg.NewTXManager(pool))

	if err = a.startHTTPServer(ctx); err != nil {
		return fmt.Errorf("can't start http server: %w", err)
	}

	a.startIntegrityScanner(ctx)

	a.ready = true
	zap.L().Info("all systems started successfully")
	return nil
}

// wire builds every component on top of the given storage.
func (a *Application) wire(cfg *config.Config, conn pg.Database, txManager pg.TXManager) {
	a.cfg = cfg
	a.repo = repo.New(conn, txManager)
	a.srv = service.New(a.repo, newBillingClient(cfg))
	a.api = handlers.New(
		a.srv,
		webhook.NewVerifier(cfg.WebhookSecret, cfg.WebhookTolerance, cfg.PlanPriceCents),
		auth.NewJWTService(cfg.JWTSecret),
	)
	a.scanner = integrity.New(cfg, a.repo.ReferralRepo)
}

func newBillingClient(cfg *config.Config) *billing.Client {
	if cfg.StripeAPIBase == "" {
		return billing.New(cfg.StripeSecretKey, nil)
	}
	zap.L().Info("using custom payment processor endpoint", zap.String("url", cfg.StripeAPIBase))
	return billing.New(cfg.StripeSecretKey, billing.NewBackends(cfg.StripeAPIBase, &http.Client{Timeout: 30 * time.Second}))
}

func getPgxpool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	cfgpool, err := pgxpool.ParseConfig(cfg.Database)
	if err != nil {
		return nil, err
	}
	dbpool, err := pgxpool.NewWithConfig(ctx, cfgpool)
	if err != nil {
		return nil, err
	}
	if err = dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, err
	}
	return dbpool, nil
}

func (a *Application) startHTTPServer(ctx context.Context) error {
	router := chi.NewRouter()
	a.api.InitRoutes(router)
	server := http.Server{
		Addr:              a.cfg.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()

		sCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(sCtx); err != nil {
			zap.L().Error("http server shutdown failed", zap.Error(err))
		}
		if a.pool != nil {
			a.pool.Close()
		}
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		zap.L().Info("starting http server on port", zap.String("port", a.cfg.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.errCh <- fmt.Errorf("http server exited with error: %w", err)
		}
	}()

	return nil
}

func (a *Application) startIntegrityScanner(ctx context.Context) {
	a.scanner.Start(ctx)
}

func (a *Application) Wait(ctx context.Context, cancel context.CancelFunc) error {
	var appErr error

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		for err := range a.errCh {
			cancel()
			zap.L().Error(err.Error())
			appErr = err
		}
	}()

	<-ctx.Done()
	a.wg.Wait()
	close(a.errCh)
	wg.Wait()

	return appErr
}
