package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"recibo/internal/artifact"
	"recibo/internal/directory"
	"recibo/internal/issuance"
	"recibo/internal/issuance/events"
	issuancehandler "recibo/internal/issuance/handler"
	issuancemetrics "recibo/internal/issuance/metrics"
	"recibo/internal/ledger"
	"recibo/internal/platform/config"
	"recibo/internal/platform/httpserver"
	"recibo/internal/platform/logger"
	"recibo/internal/platform/postgres"
	platformredis "recibo/internal/platform/redis"
	"recibo/internal/renderer"
	"recibo/internal/sequencer"
	httptransport "recibo/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal services.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, cleanup, err := buildStores(ctx, cfg, log)
	if err != nil {
		log.Error("failed to build stores", "error", err.Error())
		os.Exit(1)
	}
	defer cleanup()

	scheme := sequencer.Scheme{Prefix: cfg.CorrelativePrefix, Width: cfg.CorrelativeWidth}
	seq, err := sequencer.New(stores.counter, sequencer.WithScheme(scheme), sequencer.WithLogger(log))
	if err != nil {
		log.Error("failed to build sequencer", "error", err.Error())
		os.Exit(1)
	}

	dir, err := directory.NewService(stores.members)
	if err != nil {
		log.Error("failed to build directory", "error", err.Error())
		os.Exit(1)
	}

	rend, err := renderer.NewTemplateRenderer()
	if err != nil {
		log.Error("failed to build renderer", "error", err.Error())
		os.Exit(1)
	}

	opts := []issuance.Option{
		issuance.WithLogger(log),
		issuance.WithScheme(scheme),
		issuance.WithMetrics(issuancemetrics.New(prometheus.DefaultRegisterer)),
		issuance.WithLedgerWriteTimeout(cfg.CollaboratorTimeout),
	}
	if len(cfg.KafkaBrokers) > 0 {
		publisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer publisher.Close()
		opts = append(opts, issuance.WithEventPublisher(publisher))
		log.Info("kafka event publisher enabled", "topic", cfg.KafkaTopic)
	}

	svc, err := issuance.New(dir, seq, rend, stores.artifacts, stores.recorder, opts...)
	if err != nil {
		log.Error("failed to build issuance service", "error", err.Error())
		os.Exit(1)
	}

	router := httptransport.NewRouter(issuancehandler.New(svc, log), log, prometheus.DefaultGatherer)
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting recibo", "addr", cfg.Addr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err.Error())
		os.Exit(1)
	}
}

type storeSet struct {
	counter   sequencer.CounterStore
	members   directory.Store
	artifacts artifact.Store
	recorder  ledger.Recorder
}

// buildStores selects the backing stores: PostgreSQL when a database is
// configured, Redis for the counter when only Redis is, and in-memory
// otherwise (dev mode).
func buildStores(ctx context.Context, cfg config.Config, log *slog.Logger) (storeSet, func(), error) {
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return storeSet{}, nil, err
		}

		counter := sequencer.NewPostgresCounterStore(db)
		members := directory.NewPostgresStore(db)
		artifacts := artifact.NewPostgresStore(db)
		recorder := ledger.NewPostgresRecorder(db)

		for _, ensure := range []func(context.Context) error{
			counter.EnsureSchema, members.EnsureSchema, artifacts.EnsureSchema, recorder.EnsureSchema,
		} {
			if err := ensure(ctx); err != nil {
				db.Close()
				return storeSet{}, nil, err
			}
		}

		log.Info("using postgres stores")
		return storeSet{counter: counter, members: members, artifacts: artifacts, recorder: recorder},
			func() { db.Close() }, nil
	}

	memoryStores := storeSet{
		members:   seededMembers(log),
		artifacts: artifact.NewInMemoryStore(),
		recorder:  ledger.NewInMemoryRecorder(),
	}

	if cfg.RedisURL != "" {
		client, err := platformredis.New(ctx, cfg.RedisURL)
		if err != nil {
			return storeSet{}, nil, err
		}
		memoryStores.counter = sequencer.NewRedisCounterStore(client.Client)
		log.Info("using redis counter with in-memory stores")
		return memoryStores, func() { client.Close() }, nil
	}

	memoryStores.counter = sequencer.NewInMemoryCounterStore(0)
	log.Info("using in-memory stores (dev mode)")
	return memoryStores, func() {}, nil
}

// seededMembers returns an in-memory directory with sample members so the
// service is usable out of the box in dev mode.
func seededMembers(log *slog.Logger) *directory.InMemoryStore {
	store := directory.NewInMemoryStore()
	for _, m := range []directory.Member{
		{ID: uuid.New(), DocumentNumber: "12345678", LegalName: "Maria Quispe"},
		{ID: uuid.New(), DocumentNumber: "23456789", LegalName: "Jorge Castillo"},
	} {
		store.Seed(m)
		log.Debug("seeded dev member", "document_number", m.DocumentNumber)
	}
	return store
}
