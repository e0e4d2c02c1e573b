// Command assina-server starts the document signing gateway: eligibility
// gating over HTTP plus the structured audit log. main wires high-level
// dependencies and keeps the server lifecycle small; business logic lives
// in the internal services packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"assina/internal/auditlog"
	auditforwarder "assina/internal/auditlog/forwarder"
	auditmetrics "assina/internal/auditlog/metrics"
	"assina/internal/auditlog/sink"
	auditpg "assina/internal/auditlog/store/postgres"
	"assina/internal/directory"
	"assina/internal/platform/config"
	"assina/internal/platform/httpserver"
	"assina/internal/platform/logger"
	"assina/internal/platform/migrate"
	platformredis "assina/internal/platform/redis"
	"assina/internal/signing"
	signinghandler "assina/internal/signing/handler"
	signingmetrics "assina/internal/signing/metrics"
	"assina/pkg/platform/middleware/auth"
	"assina/pkg/platform/middleware/metadata"
	"assina/pkg/platform/middleware/requestid"
	"assina/pkg/platform/middleware/requesttime"
	"assina/pkg/platform/middleware/rewrite"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	log := logger.New(cfg.AuditDebug)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		log.Error("open postgres", "error", err)
		return
	}
	defer db.Close()

	if err := migrate.Up(ctx, db); err != nil {
		log.Error("migrate up", "error", err)
		return
	}

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("connect redis", "error", err)
		return
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Audit log: postgres store, optional debug sinks, optional Kafka
	// forwarder observer.
	auditOpts := []auditlog.Option{auditlog.WithMetrics(auditmetrics.New())}
	if cfg.AuditDebug {
		sinks := []auditlog.DebugSink{sink.NewSlog(log)}
		if redisClient != nil {
			sinks = append(sinks, sink.NewRedis(redisClient.Client, cfg.RedisDebugKey, cfg.RedisDebugCap))
		}
		auditOpts = append(auditOpts, auditlog.WithDebugSinks(sinks...))
	}
	if cfg.AuditPreferExplicitActor {
		auditOpts = append(auditOpts, auditlog.WithPreferExplicitActor())
	}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaClient, err := auditforwarder.NewClient(cfg.KafkaBrokers)
		if err != nil {
			log.Error("connect kafka", "error", err)
			return
		}
		defer kafkaClient.Close()
		auditOpts = append(auditOpts, auditlog.WithObservers(
			auditforwarder.New(kafkaClient, cfg.KafkaTopic, log),
		))
	}

	audit, err := auditlog.NewService(auditpg.New(db), log, auditOpts...)
	if err != nil {
		log.Error("build audit service", "error", err)
		return
	}

	// Directory and signing services share the postgres store.
	dirStore := directory.NewPostgresStore(db)
	dir, err := directory.NewService(dirStore)
	if err != nil {
		log.Error("build directory service", "error", err)
		return
	}
	signer, err := signing.NewService(dir, dirStore, dirStore, audit, signingmetrics.New())
	if err != nil {
		log.Error("build signing service", "error", err)
		return
	}

	h := signinghandler.New(signer, audit, log)
	validator := auth.NewValidator(cfg.JWTSigningKey)

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(rewrite.LegacyDocs(audit))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(validator, log))
		h.Register(r)
		h.RegisterAdmin(r)
	})

	srv := httpserver.New(cfg.Addr, r)
	log.Info("starting assina-server", "addr", cfg.Addr)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
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

	if err := g.Wait(); err != nil {
		log.Error("server stopped", "error", err)
	}
}
