package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"skillmint/internal/audit"
	binderservice "skillmint/internal/binder/service"
	challengehandler "skillmint/internal/challenge/handler"
	challengemetrics "skillmint/internal/challenge/metrics"
	challengeservice "skillmint/internal/challenge/service"
	challengestore "skillmint/internal/challenge/store"
	credentialhandler "skillmint/internal/credential/handler"
	credentialmetrics "skillmint/internal/credential/metrics"
	credentialservice "skillmint/internal/credential/service"
	credentialstore "skillmint/internal/credential/store"
	escrowhandler "skillmint/internal/escrow/handler"
	escrowmetrics "skillmint/internal/escrow/metrics"
	escrowservice "skillmint/internal/escrow/service"
	escrowstore "skillmint/internal/escrow/store"
	"skillmint/internal/platform/config"
	"skillmint/internal/platform/database"
	"skillmint/internal/platform/httpserver"
	"skillmint/internal/platform/logger"
	proofhandler "skillmint/internal/proof/handler"
	proofmetrics "skillmint/internal/proof/metrics"
	"skillmint/internal/proof/oracle"
	proofservice "skillmint/internal/proof/service"
	proofstore "skillmint/internal/proof/store"
	prooftracer "skillmint/internal/proof/tracer"
	httptransport "skillmint/internal/transport/http"
)

// storage bundles the per-domain stores so the memory and sqlite stacks wire
// identically. The challenge store doubles as the escrow's reward source.
type storage struct {
	challenges interface {
		challengeservice.Store
		escrowservice.ChallengeReader
	}
	proofs      proofservice.Store
	credentials interface {
		credentialservice.Store
		binderservice.CredentialReader
	}
	escrow escrowservice.Store
	audit  audit.Store
}

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("initializing skillmint",
		"addr", cfg.Addr,
		"metrics_addr", cfg.MetricsAddr,
		"db", cfg.DBPath,
	)

	stores, cleanup, err := openStorage(ctx, cfg.DBPath)
	if err != nil {
		log.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	auditorOpts := []audit.PublisherOption{audit.WithPublisherLogger(log)}
	if cfg.AuditBuffer > 0 {
		auditorOpts = append(auditorOpts, audit.WithAsyncBuffer(cfg.AuditBuffer))
	}
	auditor := audit.NewPublisher(stores.audit, auditorOpts...)
	defer auditor.Close()

	escrowSvc := escrowservice.NewService(stores.escrow, stores.challenges, auditor, log,
		escrowservice.WithMetrics(escrowmetrics.New()),
	)
	challengeSvc := challengeservice.NewService(stores.challenges, escrowSvc, auditor, log,
		challengeservice.WithMetrics(challengemetrics.New()),
	)
	credentialSvc := credentialservice.NewService(stores.credentials, auditor, log,
		credentialservice.WithMetrics(credentialmetrics.New()),
	)
	proofSvc := proofservice.NewService(
		stores.proofs,
		challengeSvc,
		credentialSvc,
		escrowSvc,
		oracle.NewTokenPresence(),
		auditor,
		log,
		proofservice.WithMetrics(proofmetrics.New()),
		proofservice.WithTracer(prooftracer.NewOTel()),
	)
	binderSvc := binderservice.NewService(stores.credentials, auditor, log)

	router := httptransport.NewRouter(
		httptransport.Config{
			SigningKey:     []byte(cfg.JWTSigningKey),
			RequestTimeout: cfg.RequestTimeout,
		},
		log,
		challengehandler.New(challengeSvc, log),
		proofhandler.New(proofSvc, log),
		credentialhandler.New(credentialSvc, binderSvc, log),
		escrowhandler.New(escrowSvc, log),
	)

	apiServer := httpserver.New(cfg.Addr, router)
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := httpserver.New(cfg.MetricsAddr, metricsMux)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		log.Info("starting metrics server", "addr", cfg.MetricsAddr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutting down servers gracefully")
		var shutdownErr error
		if err := httpserver.Shutdown(apiServer, 10*time.Second); err != nil {
			shutdownErr = err
		}
		if err := httpserver.Shutdown(metricsServer, 10*time.Second); err != nil {
			shutdownErr = err
		}
		return shutdownErr
	})

	if err := group.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// openStorage selects the storage stack: a sqlite file when configured,
// otherwise in-memory stores.
func openStorage(ctx context.Context, dbPath string) (*storage, func(), error) {
	if dbPath == "" {
		return &storage{
			challenges:  challengestore.New(),
			proofs:      proofstore.New(),
			credentials: credentialstore.New(),
			escrow:      escrowstore.New(),
			audit:       audit.NewInMemoryStore(),
		}, func() {}, nil
	}

	db, err := database.Open(ctx, dbPath)
	if err != nil {
		return nil, nil, err
	}
	return &storage{
		challenges:  challengestore.NewSQLite(db),
		proofs:      proofstore.NewSQLite(db),
		credentials: credentialstore.NewSQLite(db),
		escrow:      escrowstore.NewSQLite(db),
		audit:       audit.NewSQLite(db),
	}, func() { db.Close() }, nil
}
