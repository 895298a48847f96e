package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"taskKeeper/internal/config"
	"taskKeeper/internal/handlers"
	"taskKeeper/internal/logger"
	"taskKeeper/internal/middleware"
	"taskKeeper/internal/repository/task/file"
	"taskKeeper/internal/repository/task/inmemory"
	"taskKeeper/internal/repository/task/postgres"
	"taskKeeper/internal/repository/task/redis"
	"taskKeeper/internal/repository/task/sqlite"
	"taskKeeper/internal/service"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const defaultRedisAddr = "localhost:6379"

type App struct {
	config    *config.Config
	server    *http.Server
	router    *chi.Mux
	store     *service.TaskStore
	shutdowns []func(context.Context) error // выполняются в обратном порядке
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(context.Context) error, 0),
	}
}

func (a *App) Init(ctx context.Context) (*App, error) {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return nil, fmt.Errorf("инициализация логгера: %w", err)
	}
	a.onShutdown(func(context.Context) error {
		logger.Info("App: Завершение работы логгирования")
		logger.Sync()
		return nil
	})

	location, err := a.config.Location()
	if err != nil {
		return nil, err
	}

	repo, err := a.initStorage(ctx)
	if err != nil {
		return nil, fmt.Errorf("инициализация хранилища: %w", err)
	}

	a.store = service.NewTaskStore(ctx, repo)
	handler := handlers.NewTaskHandler(a.store, handlers.WithLocation(location))

	a.router = chi.NewRouter()
	a.router.Use(chimw.Recoverer)
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Logging)
	a.router.Use(middleware.CORS(a.config.Server.CORSOrigins))
	a.router.Use(middleware.RateLimit(a.config.Server.RateLimit))
	handler.Routes(a.router)

	a.server = &http.Server{
		Addr:              a.config.GetServerAddr(),
		Handler:           a.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	a.onShutdown(func(ctx context.Context) error {
		logger.Info("App: Остановка HTTP-сервера")
		return a.server.Shutdown(ctx)
	})

	logger.Info("App: Приложение инициализировано",
		zap.String("storage", a.config.Storage.Type),
		zap.String("addr", a.server.Addr),
		zap.String("timezone", location.String()))

	return a, nil
}

func (a *App) initStorage(ctx context.Context) (service.Persistence, error) {
	cfg := a.config.Storage

	switch cfg.Type {
	case config.StorageMemory:
		return inmemory.NewTaskStorage(cfg.Key), nil

	case config.StorageFile:
		return file.New(cfg.Path)

	case config.StorageSQLite:
		storage, err := sqlite.New(ctx, cfg.Path, cfg.Key)
		if err != nil {
			return nil, err
		}
		a.onShutdown(func(context.Context) error { return storage.Close() })
		return storage, nil

	case config.StoragePostgres:
		storage, err := postgres.New(ctx, cfg.URL, cfg.Key)
		if err != nil {
			return nil, err
		}
		a.onShutdown(func(context.Context) error {
			storage.Close()
			return nil
		})
		return storage, nil

	case config.StorageRedis:
		addr := cfg.RedisAddr
		if addr == "" {
			addr = defaultRedisAddr
		}
		storage, err := redis.New(ctx, redis.Options{
			Addr:     addr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Key:      cfg.Key,
		})
		if err != nil {
			return nil, err
		}
		a.onShutdown(func(context.Context) error { return storage.Close() })
		return storage, nil
	}

	return nil, fmt.Errorf("неизвестный тип хранилища %q", cfg.Type)
}

func (a *App) onShutdown(fn func(context.Context) error) {
	a.shutdowns = append(a.shutdowns, fn)
}

func (a *App) Router() http.Handler {
	return a.router
}

func (a *App) Store() *service.TaskStore {
	return a.store
}

// Run блокируется до остановки сервера. Штатная остановка не считается ошибкой.
func (a *App) Run() error {
	logger.Info("App: Сервер запущен", zap.String("addr", a.server.Addr))

	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http сервер: %w", err)
	}
	return nil
}

// Shutdown закрывает ресурсы в порядке, обратном регистрации:
// сначала сервер, затем хранилище, логгер последним.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		if err := a.shutdowns[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.shutdowns = nil
	return errors.Join(errs...)
}
