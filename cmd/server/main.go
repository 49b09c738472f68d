// Command server runs the veridian registry platform: the identity registry,
// the credential registry, and the verification ledger behind one HTTP
// surface. main wires dependencies and owns the process lifecycle; business
// logic lives under internal.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	credentialhandler "veridian/internal/credential/handler"
	credentialservice "veridian/internal/credential/service"
	credentialstore "veridian/internal/credential/store"
	"veridian/internal/docstore"
	identityhandler "veridian/internal/identity/handler"
	identityservice "veridian/internal/identity/service"
	identitystore "veridian/internal/identity/store"
	"veridian/internal/platform/config"
	"veridian/internal/platform/database"
	"veridian/internal/platform/health"
	"veridian/internal/platform/httpserver"
	"veridian/internal/platform/kafka"
	"veridian/internal/platform/kafka/producer"
	"veridian/internal/platform/logger"
	"veridian/internal/platform/metrics"
	platformredis "veridian/internal/platform/redis"
	"veridian/internal/proof"
	verificationhandler "veridian/internal/verification/handler"
	"veridian/internal/verification/resolver"
	verificationservice "veridian/internal/verification/service"
	verificationstore "veridian/internal/verification/store"
	"veridian/internal/verification/tracer"
	"veridian/pkg/platform/audit"
	"veridian/pkg/platform/audit/publisher"
	auditkafka "veridian/pkg/platform/audit/store/kafka"
	auditmem "veridian/pkg/platform/audit/store/memory"
	auditpg "veridian/pkg/platform/audit/store/postgres"
	"veridian/pkg/platform/middleware/principal"
	"veridian/pkg/platform/middleware/request"
)

const auditTopic = "veridian.audit.events"

// endpointLatency records per-route latency under the chi route pattern, so
// /api/identity/{did} aggregates instead of exploding per DID.
func endpointLatency(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			pattern := chi.RouteContext(r.Context()).RoutePattern()
			if pattern == "" {
				pattern = r.URL.Path
			}
			m.ObserveEndpointLatency(pattern, time.Since(start).Seconds())
		})
	}
}

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing veridian",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"postgres", cfg.DatabaseURL != "",
		"redis", cfg.RedisURL != "",
		"kafka", cfg.KafkaBrokers != "",
		"reject_on_invalid_proof", cfg.RejectOnInvalidProof,
	)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	healthHandler := health.New(cfg.Environment)

	// Persistence. Empty DATABASE_URL keeps everything in process memory.
	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	pool, err := database.New(dbCfg)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
		healthHandler.RegisterCheck("postgres", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return pool.Health(ctx)
		})
	}

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		healthHandler.RegisterCheck("redis", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return redisClient.Health(ctx)
		})
	}

	var docs docstore.Store = docstore.NewInMemory()
	if redisClient != nil {
		docs = docstore.NewRedisCache(redisClient.Client, docs, 5*time.Minute)
	}

	var (
		identityStore     identitystore.Store
		credentialStore   credentialstore.Store
		verificationStore verificationstore.Store
		auditStore        audit.Store
	)
	if pool != nil {
		identityStore = identitystore.NewPostgres(pool.DB())
		credentialStore = credentialstore.NewPostgres(pool.DB())
		verificationStore = verificationstore.NewPostgres(pool.DB())
		auditStore = auditpg.New(pool.DB())
	} else {
		identityStore = identitystore.NewMemory()
		credentialStore = credentialstore.NewMemory()
		verificationStore = verificationstore.NewMemory()
		auditStore = auditmem.New()
	}

	if cfg.KafkaBrokers != "" {
		producerCfg := kafka.DefaultProducerConfig()
		producerCfg.Brokers = cfg.KafkaBrokers
		prod, err := producer.New(producerCfg, log)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = prod.Close(ctx)
		}()

		kafkaHealth := kafka.NewHealthChecker(prod.Client())
		healthHandler.RegisterCheck(kafkaHealth.Name(), func() error {
			return kafkaHealth.Check(context.Background())
		})
		auditStore = auditkafka.New(auditStore, prod, auditTopic, log)
	}

	auditPub := publisher.New(auditStore,
		publisher.WithAsyncBuffer(256),
		publisher.WithLogger(log),
	)
	defer auditPub.Close()

	m := metrics.New()

	proofs := proof.NewService(
		proof.NewMockGenerator(),
		proof.NewStructuralVerifier(),
		proof.NewCircuitRegistry(cfg.CircuitTypes),
	)

	identitySvc := identityservice.New(identityStore, docs, auditPub, m, log)
	credentialSvc := credentialservice.New(credentialStore, docs, identitySvc, auditPub, m, log)
	verificationSvc := verificationservice.New(
		verificationStore,
		proofs.Circuits(),
		proof.NewStructuralVerifier(),
		credentialSvc,
		auditPub,
		m,
		log,
		verificationservice.WithAsyncResolution(128),
		verificationservice.WithRejectOnInvalidProof(cfg.RejectOnInvalidProof),
		verificationservice.WithTracer(tracer.NewOTel()),
	)

	worker := resolver.New(verificationSvc, verificationSvc.Queue(), log)
	worker.Start()
	defer worker.Stop()

	principals := principal.NewResolver(cfg.JWTSigningKey, cfg.DevPrincipalHeader, log)

	router := chi.NewRouter()
	router.Use(request.RequestID)
	router.Use(request.Recovery(log))
	router.Use(request.Logger(log))
	router.Use(request.ContentTypeJSON)
	router.Use(principals.Middleware)
	router.Use(endpointLatency(m))

	healthHandler.Register(router)
	router.Handle("/metrics", promhttp.Handler())
	router.Route("/api", func(r chi.Router) {
		identityhandler.New(identitySvc, log).Register(r)
		credentialhandler.New(credentialSvc, log).Register(r)
		verificationhandler.New(verificationSvc, proofs, log).Register(r)
	})

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
