package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	gomongo "go.mongodb.org/mongo-driver/mongo"

	"github.com/taskflow/taskflow-core/internal/api"
	"github.com/taskflow/taskflow-core/internal/core/ports"
	"github.com/taskflow/taskflow-core/internal/core/service"
	"github.com/taskflow/taskflow-core/internal/infrastructure/config"
	mongoconn "github.com/taskflow/taskflow-core/internal/infrastructure/db/mongo"
	redisconn "github.com/taskflow/taskflow-core/internal/infrastructure/db/redis"
	"github.com/taskflow/taskflow-core/internal/notify"
	"github.com/taskflow/taskflow-core/internal/store/memory"
	"github.com/taskflow/taskflow-core/internal/store/mongostore"
	"github.com/taskflow/taskflow-core/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	store, mongoDB, err := buildStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}

	sessions, redisClient, err := buildSessions(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("session store init failed")
	}

	authorizer := api.NewMeteredAuthorizer(service.NewAuthorizer())

	notifSvc := service.NewNotificationService(store, log)
	dispatcher := notify.NewDispatcher(cfg.NotifyWorkers, notifSvc, log)
	dispatcher.Start(ctx)

	authSvc := service.NewAuthService(store.Users(), sessions, cfg.JWTSecret, cfg.TokenTTL, log)
	taskSvc := service.NewTaskService(store, authorizer, dispatcher, log)

	e := api.NewRouter(api.Dependencies{
		Auth:          authSvc,
		Users:         service.NewUserService(store, authorizer, dispatcher, log),
		Departments:   service.NewDepartmentService(store, authorizer, log),
		Clients:       service.NewClientService(store, authorizer, log),
		Projects:      service.NewProjectService(store, authorizer, dispatcher, log),
		Tasks:         taskSvc,
		Reports:       service.NewReportService(store, authorizer, log),
		Notifications: notifSvc,
		Mongo:         mongoDB,
		Redis:         redisClient,
		Log:           log,
	})

	go runScheduler(ctx, taskSvc, cfg.SchedulerInterval, log)

	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if mongoDB != nil {
		_ = mongoDB.Client().Disconnect(shutdownCtx)
	}
}

// buildStore selects the entity store driver. The in-memory store is seeded
// with the development fixture when SEED is set.
func buildStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.Store, *gomongo.Database, error) {
	switch cfg.StoreDriver {
	case "mongo":
		_, db, err := mongoconn.Connect(ctx, mongoconn.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			return nil, nil, err
		}
		store := mongostore.New(db)
		if err := store.EnsureIndexes(ctx); err != nil {
			return nil, nil, err
		}
		return store, db, nil
	default:
		store := memory.New()
		if cfg.Seed {
			if err := memory.Seed(ctx, store); err != nil {
				return nil, nil, err
			}
			log.Info().Msg("development fixture loaded")
		}
		return store, nil, nil
	}
}

// buildSessions selects the session store driver.
func buildSessions(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.SessionStore, *goredis.Client, error) {
	switch cfg.SessionDriver {
	case "redis":
		client, err := redisconn.Connect(ctx, redisconn.Config{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return redisconn.NewSessionStore(client), client, nil
	default:
		log.Warn().Msg("using in-memory sessions; logins do not survive restarts")
		return memory.NewSessionStore(), nil, nil
	}
}

// runScheduler promotes upcoming tasks whose start time has arrived. One tick
// is run immediately so tasks due while the process was down are not delayed
// by a full interval.
func runScheduler(ctx context.Context, tasks ports.TaskService, interval time.Duration, log zerolog.Logger) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	tick := func() {
		n, err := tasks.StartDueTasks(ctx, time.Now().UTC())
		if err != nil {
			log.Error().Err(err).Msg("scheduled task promotion failed")
			return
		}
		if n > 0 {
			log.Info().Int("promoted", n).Msg("upcoming tasks started")
		}
	}

	tick()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick()
		}
	}
}
