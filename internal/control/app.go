package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/vietddude/linkpay/internal/api"
	"github.com/vietddude/linkpay/internal/core/collection"
	"github.com/vietddude/linkpay/internal/core/config"
	redisclient "github.com/vietddude/linkpay/internal/infra/redis"
	"github.com/vietddude/linkpay/internal/infra/storage"
	"github.com/vietddude/linkpay/internal/infra/storage/memory"
	"github.com/vietddude/linkpay/internal/infra/storage/postgres"
)

// App is the main application struct that manages the API lifecycle.
type App struct {
	cfg         Config
	manager     *collection.DefaultManager
	server      *api.Server
	db          *postgres.DB
	redisClient *redisclient.Client
	log         *slog.Logger
}

// Config holds the application configuration.
type Config struct {
	Server   api.Config
	Auth     config.AuthConfig
	Redis    redisclient.Config
	Database postgres.Config
}

// NewConfig transforms the loaded configuration into the application config.
func NewConfig(cfg *config.AppConfig) Config {
	return Config{
		Server: api.Config{
			Port:           cfg.Server.Port,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			ReadTimeout:    cfg.Server.ReadTimeout,
			WriteTimeout:   cfg.Server.WriteTimeout,
		},
		Auth:     cfg.Auth,
		Redis:    cfg.Redis,
		Database: cfg.Database,
	}
}

// NewApp creates a new App instance with all dependencies initialized.
func NewApp(ctx context.Context, cfg Config) (*App, error) {
	log := slog.Default()

	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret is required")
	}

	checks := make(map[string]api.HealthCheck)

	// 1. Storage
	var repo storage.ItemRepository
	var db *postgres.DB

	if cfg.Database.URL != "" {
		var err error
		db, err = postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		if err := postgres.Migrate(ctx, db.DB.DB); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}
		repo = postgres.NewItemRepo(db)
		checks["database"] = db.Health
		log.Info("Using PostgreSQL storage")
	} else {
		repo = memory.NewItemRepo(memory.NewMemoryStorage())
		log.Info("Using Memory storage")
	}

	// 2. Listing cache
	opts := []collection.Option{collection.WithLogger(log)}

	var redisClient *redisclient.Client
	if cfg.Redis.URL != "" {
		var err error
		redisClient, err = redisclient.NewClient(cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, serving listings without cache", "error", err)
		} else {
			opts = append(opts, collection.WithCache(redisclient.NewListingCache(redisClient, cfg.Redis.TTL)))
			checks["redis"] = redisClient.Health
			log.Info("Listing cache enabled", "ttl", cfg.Redis.TTL)
		}
	}

	// 3. Manager and API
	manager := collection.NewManager(repo, opts...)
	auth := api.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Audience)
	server := api.NewServer(cfg.Server, manager, auth, checks, log)

	return &App{
		cfg:         cfg,
		manager:     manager,
		server:      server,
		db:          db,
		redisClient: redisClient,
		log:         log,
	}, nil
}

// Manager returns the collection manager.
func (a *App) Manager() *collection.DefaultManager {
	return a.manager
}

// Start starts the API server and background collectors.
func (a *App) Start(ctx context.Context) error {
	go func() {
		if err := a.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("API server failed", "error", err)
		}
	}()

	if a.db != nil {
		a.db.StartMetricsCollector(ctx)
	}
	return nil
}

// Stop stops the server and releases connections.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping linkpay...")

	err := a.server.Stop(ctx)

	if a.redisClient != nil {
		if cerr := a.redisClient.Close(); cerr != nil {
			a.log.Error("Failed to close redis client", "error", cerr)
		}
	}
	if a.db != nil {
		if cerr := a.db.Close(); cerr != nil {
			a.log.Error("Failed to close database", "error", cerr)
		}
	}
	return err
}
