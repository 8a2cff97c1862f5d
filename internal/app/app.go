package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/RoGogDBD/inventory/internal/config"
	"github.com/RoGogDBD/inventory/internal/config/db"
	"github.com/RoGogDBD/inventory/internal/events"
	"github.com/RoGogDBD/inventory/internal/handlers"
	"github.com/RoGogDBD/inventory/internal/inventory"
	"github.com/RoGogDBD/inventory/internal/photos"
	"github.com/RoGogDBD/inventory/internal/repository"
	"github.com/RoGogDBD/inventory/internal/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// App содержит все зависимости приложения
type App struct {
	Config    *config.Config
	Log       *zap.Logger
	DBPool    *pgxpool.Pool
	Items     repository.ItemStore
	Photos    *photos.Store
	Publisher events.Publisher
	Telemetry *telemetry.Providers
	Service   *inventory.Service
	Server    *http.Server
}

// NewApp создает приложение и все его зависимости согласно cfg.
func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Log: log}

	providers, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}
	a.Telemetry = providers

	if err := a.initItemStore(ctx); err != nil {
		a.Close(ctx)
		return nil, err
	}

	a.Photos, err = photos.New(cfg.Storage.CacheDir)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	log.Info("photo cache directory ready", zap.String("path", a.Photos.Root()))

	a.Publisher = events.New(cfg.Kafka, log)
	a.Service = inventory.NewService(a.Items, a.Photos, cfg.Server.PublicURL,
		inventory.WithPublisher(a.Publisher),
		inventory.WithLogger(log),
	)

	a.Server = &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      a.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return a, nil
}

// initItemStore выбирает хранилище записей: память или PostgreSQL.
func (a *App) initItemStore(ctx context.Context) error {
	switch a.Config.Storage.Backend {
	case config.BackendPostgres:
		pool, err := db.NewPool(ctx, a.Config.Database.ConnString(), a.Config.Database.MigrationsPath, a.Log)
		if err != nil {
			return err
		}
		a.DBPool = pool
		a.Items = repository.NewPostgresStorage(pool)
		a.Log.Info("using PostgreSQL item store")
	default:
		a.Items = repository.NewMemStorage()
		a.Log.Info("using in-memory item store")
	}
	return nil
}

// Handler собирает корневой HTTP-обработчик с мидлварами и телеметрией.
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	config.SetupMiddlewares(r, a.Log)

	h := handlers.NewHandler(a.Service, a.Log, a.Config.Server.MaxUploadBytes, a.Config.Server.StaticDir)
	h.Routes(r)

	if a.Telemetry != nil && a.Telemetry.MetricsHandler != nil {
		r.Handle(a.Telemetry.MetricsPath, a.Telemetry.MetricsHandler)
	}
	return a.Telemetry.Instrument(r)
}

// Run запускает HTTP-сервер и блокируется до отмены ctx или ошибки сервера.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("http server listening",
			zap.String("addr", a.Server.Addr),
			zap.String("public_url", a.Config.Server.PublicURL),
		)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

// Close освобождает все ресурсы приложения
func (a *App) Close(ctx context.Context) {
	a.Log.Info("shutting down application")

	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			a.Log.Warn("failed to close event publisher", zap.Error(err))
		}
	}
	if a.DBPool != nil {
		a.DBPool.Close()
		a.Log.Info("database connection closed")
	}
	if err := a.Telemetry.Shutdown(ctx); err != nil {
		a.Log.Warn("failed to shutdown telemetry", zap.Error(err))
	}
}
