package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/squadline/squadline-backend/config"
	httpapi "github.com/squadline/squadline-backend/internal/api/http"
	"github.com/squadline/squadline-backend/internal/auth"
	"github.com/squadline/squadline-backend/internal/bootstrap"
	"github.com/squadline/squadline-backend/internal/docstore"
	"github.com/squadline/squadline-backend/internal/events/domain"
	"github.com/squadline/squadline-backend/internal/events/repository"
	"github.com/squadline/squadline-backend/internal/jobs"
	"github.com/squadline/squadline-backend/internal/logging"
	"github.com/squadline/squadline-backend/internal/metrics"
	"github.com/squadline/squadline-backend/internal/notify"
	teamrepo "github.com/squadline/squadline-backend/internal/teams/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logging.Setup(cfg.App.LogLevel, cfg.App.Environment)
	logger = logger.With().Str("service", cfg.App.ServiceName).Str("version", cfg.App.Version).Logger()
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.New(reg)

	backends, err := bootstrap.OpenBackends(ctx, cfg, recorder)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open backends")
	}
	defer func() {
		if err := backends.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close firestore client")
		}
	}()

	pingers := map[string]httpapi.Pinger{
		"store": httpapi.PingFunc(func(ctx context.Context) error {
			_, err := backends.Store.Query(ctx, docstore.Teams, docstore.Query{Limit: 1})
			return err
		}),
		"redis": nil,
	}

	var publisher notify.Publisher = notify.Nop{}
	rdb, err := bootstrap.OpenRedis(ctx, cfg.Redis, bootstrap.RedisOptions{})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	if rdb != nil {
		defer rdb.Close()
		publisher = notify.NewRedisPublisher(rdb)
		pingers["redis"] = httpapi.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("publishing changes to redis")
	}

	deps := bootstrap.RouterDeps{
		Config:    cfg,
		Logger:    logger,
		Store:     backends.Store,
		Publisher: publisher,
		Metrics:   recorder,
		Gatherer:  reg,
		Pingers:   pingers,
		Directory: auth.StaticDirectory{},
	}
	if backends.Firebase != nil {
		deps.Verifier = backends.Firebase.Auth
		deps.Directory = auth.NewFirebaseDirectory(backends.Firebase.Auth)
	}
	router := bootstrap.BuildRouter(deps)

	var scheduler *jobs.Scheduler
	if cfg.Jobs.AutoArchiveSpec != "" {
		loc, err := cfg.Location()
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid time zone")
		}
		archiver := jobs.NewArchiver(
			teamrepo.New(backends.Store), clockwork.NewRealClock(), loc, publisher,
			repository.New[domain.Match](backends.Store),
			repository.New[domain.Training](backends.Store),
			repository.New[domain.RefereeingAssignment](backends.Store),
		)
		scheduler = jobs.NewScheduler(loc, logger)
		err = scheduler.Add("auto-archive", cfg.Jobs.AutoArchiveSpec, func(ctx context.Context) error {
			_, err := archiver.Run(ctx)
			return err
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to schedule auto-archive")
		}
		scheduler.Start()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Server.Port).Str("store", cfg.Store.Driver).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server failed")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
