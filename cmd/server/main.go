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

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v2"
	"github.com/joho/godotenv"

	eventhandler "tekfest/internal/event/handler"
	eventservice "tekfest/internal/event/service"
	eventstore "tekfest/internal/event/store"
	httpapi "tekfest/internal/http"
	identitycache "tekfest/internal/identity/cache"
	identitymetrics "tekfest/internal/identity/metrics"
	identityservice "tekfest/internal/identity/service"
	identitystore "tekfest/internal/identity/store"
	judginghandler "tekfest/internal/judging/handler"
	"tekfest/internal/judging/leaderboard"
	judgingmetrics "tekfest/internal/judging/metrics"
	"tekfest/internal/judging/rubric"
	judgingservice "tekfest/internal/judging/service"
	judgingstore "tekfest/internal/judging/store"
	"tekfest/internal/judging/winner"
	"tekfest/internal/nik"
	"tekfest/internal/platform/config"
	"tekfest/internal/platform/httpserver"
	"tekfest/internal/platform/logger"
	"tekfest/internal/platform/postgres"
	platformredis "tekfest/internal/platform/redis"
	"tekfest/internal/ratelimit"
	registrationhandler "tekfest/internal/registration/handler"
	regmetrics "tekfest/internal/registration/metrics"
	registrationservice "tekfest/internal/registration/service"
	registrationstore "tekfest/internal/registration/store"
	"tekfest/pkg/platform/audit"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		log.Error("connect postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var redisClient *platformredis.Client
	if cfg.Redis.URL != "" {
		redisClient, err = platformredis.New(cfg.Redis)
		if err != nil {
			log.Error("connect redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
	}

	var publisher audit.Publisher = &audit.LogPublisher{Logger: log}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher, err := audit.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			log.Error("connect kafka", "error", err)
			os.Exit(1)
		}
		defer func() {
			// Flush with a fresh context; the signal context is already done
			// by the time the process unwinds.
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := kafkaPublisher.Close(flushCtx); err != nil {
				log.Error("close audit publisher", "error", err)
			}
		}()
		publisher = kafkaPublisher
	}

	// Stores.
	accounts := identitystore.NewPostgresAccountStore(db)
	teams := registrationstore.NewPostgresTeamStore(db)
	events := eventstore.NewPostgresEventStore(db)
	submissions := judgingstore.NewPostgresSubmissionStore(db)
	evaluations := judgingstore.NewPostgresEvaluationStore(db)
	winners := judgingstore.NewPostgresWinnerStore(db)

	// Services.
	eventSvc := eventservice.New(events, rubric.Builtin(), log)

	idMetrics := identitymetrics.New()
	var resolverOpts []identityservice.Option
	if redisClient != nil {
		resolverOpts = append(resolverOpts,
			identityservice.WithCache(identitycache.NewRedisProfileCache(redisClient, cfg.ProfileCacheTTL)))
	}
	resolver := identityservice.New(accounts, teams, idMetrics, log, resolverOpts...)

	regSvc := registrationservice.New(teams, accounts, resolver, nik.New(teams), publisher, regmetrics.New(), log)

	jMetrics := judgingmetrics.New()
	leaderboardSvc := leaderboard.NewService(submissions, evaluations, eventSvc, redisClient, cfg.LeaderboardCacheTTL, jMetrics, log)
	judgingSvc := judgingservice.New(submissions, evaluations, eventSvc, leaderboardSvc, jMetrics, log)
	winnerSvc := winner.New(winners, submissions, publisher, jMetrics, log)

	// HTTP surface.
	requestLogger := httplog.NewLogger("tekfest", httplog.Options{
		LogLevel: logger.Level(cfg.LogLevel),
		Concise:  true,
	})

	health := map[string]httpapi.HealthChecker{
		"postgres": postgresHealth{db: db},
	}
	if redisClient != nil {
		health["redis"] = redisClient
	}

	var validationMW []func(http.Handler) http.Handler
	if cfg.ValidationTimeout > 0 {
		validationMW = append(validationMW, middleware.Timeout(cfg.ValidationTimeout))
	}
	if cfg.ValidationRateLimit > 0 {
		limiter := ratelimit.NewSlidingWindow(cfg.ValidationRateLimit, cfg.ValidationRateWindow)
		validationMW = append(validationMW, ratelimit.Middleware(limiter, log))
	}

	router := httpapi.NewRouter(httpapi.Deps{
		Events:               eventhandler.New(eventSvc, log),
		Registration:         registrationhandler.New(regSvc, log),
		Judging:              judginghandler.New(judgingSvc, leaderboardSvc, winnerSvc, log),
		Logger:               requestLogger,
		Health:               health,
		ValidationMiddleware: validationMW,
	})

	srv := httpserver.New(cfg.Addr, router, httpserver.Timeouts{
		ReadHeader: cfg.HTTP.ReadHeaderTimeout,
		Read:       cfg.HTTP.ReadTimeout,
		Write:      cfg.HTTP.WriteTimeout,
		Idle:       cfg.HTTP.IdleTimeout,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		log.Error("server failed", "error", err)
		os.Exit(1)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

type postgresHealth struct {
	db interface {
		PingContext(ctx context.Context) error
	}
}

func (p postgresHealth) Health(ctx context.Context) error {
	return p.db.PingContext(ctx)
}
