// Package portal собирает приложение портала заявок: хранилище, кеш,
// почтовый транспорт, сервисы, HTTP-сервер и фоновый планировщик.
package portal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/workabroad/application-portal/internal/cache"
	"github.com/workabroad/application-portal/internal/config"
	"github.com/workabroad/application-portal/internal/lib/jwt"
	"github.com/workabroad/application-portal/internal/lib/smtp"
	"github.com/workabroad/application-portal/internal/migrations"
	adminservice "github.com/workabroad/application-portal/internal/services/admin"
	applicationservice "github.com/workabroad/application-portal/internal/services/application"
	authservice "github.com/workabroad/application-portal/internal/services/auth"
	schedulerservice "github.com/workabroad/application-portal/internal/services/scheduler"
	senderservice "github.com/workabroad/application-portal/internal/services/sender"
	"github.com/workabroad/application-portal/internal/storage/repository"
)

// App объединяет HTTP-сервер и фоновый планировщик портала.
type App struct {
	server    *http.Server
	scheduler *schedulerservice.SchedulerService
	logger    *slog.Logger
	db        *repository.Storage
	cache     *cache.Cache
}

// New создает приложение: подключает базу и Redis, накатывает миграции
// и собирает сервисы с маршрутами.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	transport := smtp.NewTransport(cfg, logger)
	senderService := senderservice.NewSenderService(logger, transport)
	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	authService := authservice.NewAuthService(db, jwtMaker, senderService, logger)
	applicationService := applicationservice.NewApplicationService(db, cacheRedis, logger)
	adminService := adminservice.NewAdminService(db, senderService, cacheRedis, logger)
	schedulerService := schedulerservice.NewSchedulerService(db, senderService, cacheRedis, logger, cfg.Scheduler)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, db, authService, applicationService, adminService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:    srv,
		scheduler: schedulerService,
		logger:    logger,
		db:        db,
		cache:     cacheRedis,
	}, nil
}

// Run запускает сервер и планировщик. Отмена контекста останавливает
// планировщик и мягко гасит HTTP-сервер.
func (a *App) Run(ctx context.Context) error {
	go a.scheduler.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if cerr := a.cache.Db.Close(); cerr != nil {
			a.logger.Error("failed to close redis", slog.Any("err", cerr))
		}
		if dberr := a.db.DB.Close(); dberr != nil {
			a.logger.Error("failed to close database", slog.Any("err", dberr))
		}
		return err
	}
}
