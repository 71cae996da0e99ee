package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/holiman/uint256"
	"golang.org/x/sync/errgroup"

	"github.com/Sayrarh/Fast/internal/events"
	"github.com/Sayrarh/Fast/internal/ledger"
	"github.com/Sayrarh/Fast/internal/platform/config"
	"github.com/Sayrarh/Fast/internal/platform/httpserver"
	"github.com/Sayrarh/Fast/internal/platform/logger"
	platformmetrics "github.com/Sayrarh/Fast/internal/platform/metrics"
	"github.com/Sayrarh/Fast/internal/platform/middleware"
	"github.com/Sayrarh/Fast/internal/platform/postgres"
	platformredis "github.com/Sayrarh/Fast/internal/platform/redis"
	"github.com/Sayrarh/Fast/internal/receipt"
	"github.com/Sayrarh/Fast/internal/registry"
	"github.com/Sayrarh/Fast/internal/registry/metrics"
	"github.com/Sayrarh/Fast/internal/registry/service"
	"github.com/Sayrarh/Fast/internal/registry/store"
	httptransport "github.com/Sayrarh/Fast/internal/transport/http"
)

// genesisSupply seeds the registrar's ledger account so it can fund faucet
// grants. One million whole tokens at 18 decimals.
const genesisSupply = "1000000000000000000000000"

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in internal services packages.
func main() {
	log := logger.New()
	if err := run(log); err != nil {
		log.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	policy, err := service.PolicyFromConfig(cfg.Registrar)
	if err != nil {
		return err
	}

	// The in-memory ledger stands in for the token contract. The registrar
	// account holds the genesis supply and acts as a transfer operator so
	// fee collection needs no per-caller approval.
	supply, parseErr := uint256.FromDecimal(genesisSupply)
	if parseErr != nil {
		return parseErr
	}
	tokens := ledger.NewInMemory()
	tokens.Mint(policy.Account, supply)
	tokens.SetOperator(policy.Account)

	receipts := receipt.NewInMemory()

	var checks []httptransport.HealthCheck
	var st store.Store = store.NewInMemory()
	if cfg.PostgresURL != "" {
		db, err := postgres.Open(ctx, cfg.PostgresURL)
		if err != nil {
			return err
		}
		defer db.Close()
		pg := store.NewPostgres(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		st = pg
		checks = append(checks, httptransport.HealthCheck{Name: "postgres", Check: db.PingContext})
		log.Info("using postgres registration store")
	} else {
		log.Info("using in-memory registration store")
	}

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(metrics.New()),
		service.WithCorrectedTransfer(cfg.Registrar.CorrectedTransfer),
	}

	if cfg.Redis.URL != "" {
		cache, err := platformredis.New(cfg.Redis)
		if err != nil {
			return err
		}
		defer cache.Close()
		opts = append(opts, service.WithCache(store.NewRedisCache(cache, cfg.Redis.CacheTTL, log)))
		checks = append(checks, httptransport.HealthCheck{Name: "redis", Check: cache.Health})
		log.Info("resolution cache enabled")
	}

	g, ctx := errgroup.WithContext(ctx)

	if len(cfg.Kafka.Brokers) > 0 {
		sink, err := events.NewKafkaSink(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		defer sink.Close()

		inbox := make(chan events.Event, 256)
		opts = append(opts, service.WithPublisher(events.NewChannelPublisher(inbox)))
		worker := events.NewWorker(sink, inbox, log)
		g.Go(func() error { return worker.Run(ctx) })
		log.Info("kafka event sink enabled", "topic", cfg.Kafka.Topic)
	}

	registrar := registry.NewRegistrar(st, tokens, receipts, policy, opts...)

	router := httptransport.NewRouter(httptransport.Deps{
		Registry: registry.NewHandler(registrar, log),
		Verifier: middleware.NewTokenVerifier(cfg.JWTSigningKey),
		Logger:   log,
		Metrics:  platformmetrics.New(),
		Checks:   checks,
	})

	srv := httpserver.New(cfg.Addr, router)

	g.Go(func() error {
		log.Info("starting registrar server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
