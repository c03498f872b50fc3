package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"skgov/internal/audit"
	"skgov/internal/fanout"
	"skgov/internal/identity"
	"skgov/internal/notify"
	"skgov/internal/platform/config"
	"skgov/internal/platform/httpserver"
	"skgov/internal/platform/logger"
	"skgov/internal/platform/metrics"
	"skgov/internal/platform/middleware"
	"skgov/internal/platform/postgres"
	redisclient "skgov/internal/platform/redis"
	"skgov/internal/realtime"
	httptransport "skgov/internal/transport/http"
	"skgov/internal/validation"
	validationhandler "skgov/internal/validation/handler"
	validationservice "skgov/internal/validation/service"
	"skgov/internal/youth"
	"skgov/pkg/platform/tx"
)

// main wires dependencies and runs the HTTP server alongside the
// background workers. Business logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Redis is optional; a nil client disables real-time broadcasting.
	var broadcaster realtime.Broadcaster
	redisClient, err := redisclient.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		broadcaster = realtime.NewRedisBroadcaster(redisClient.Client)
		log.Info("real-time broadcasting enabled")
	} else {
		broadcaster = realtime.NopBroadcaster{}
		log.Info("redis not configured, real-time broadcasting disabled")
	}

	sender := notify.NewBreakerSender(notify.LogSender{Logger: log}, log)
	mailScheduler := notify.NewScheduler(sender, cfg.EmailDelay, log, m)
	publisher := audit.NewPublisher(audit.NewPostgres(db))
	dispatcher := fanout.NewDispatcher(broadcaster, publisher, mailScheduler, log, m)

	svc := validationservice.New(validationservice.Deps{
		Runner:     tx.NewSQLRunner(db),
		Store:      validation.NewPostgres(db),
		Profiles:   youth.NewPostgres(db),
		Identity:   identity.NewPostgres(db),
		Parser:     validation.NewConflictParser(log),
		Dispatcher: dispatcher,
		Logger:     log,
		Metrics:    m,
	})

	jwtValidator := middleware.NewJWTValidator(cfg.JWTSigningKey)
	handler := validationhandler.New(svc, log, m, jwtValidator)
	router := httptransport.NewRouter(db, log, handler)
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting skgov validation service", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		if err := mailScheduler.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	if len(cfg.KafkaBrokers) > 0 {
		outbox, err := audit.NewOutboxWorker(db, cfg.KafkaBrokers, cfg.AuditTopic, cfg.OutboxPollInterval, log, m)
		if err != nil {
			log.Error("kafka connection failed", "error", err)
			os.Exit(1)
		}
		defer outbox.Close()
		if err := outbox.EnsureTopic(ctx); err != nil {
			log.Error("audit topic creation failed", "error", err)
			os.Exit(1)
		}
		g.Go(func() error {
			if err := outbox.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
		log.Info("audit outbox publishing enabled", "topic", cfg.AuditTopic)
	} else {
		log.Info("kafka not configured, audit events stay in the outbox table")
	}

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
