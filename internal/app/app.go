package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/idea2sns-backend/internal/data/db"
	apphttp "github.com/yungbote/idea2sns-backend/internal/http"
	"github.com/yungbote/idea2sns-backend/internal/observability"
	"github.com/yungbote/idea2sns-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Server   *apphttp.Server
	Cfg      Config
	Repos    Repos
	Clients  Clients
	Services Services
	Metrics  *observability.Metrics

	dbService    *db.Service
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// OpenDatabase connects with the configured driver and migrates when DB_AUTO_MIGRATE is on.
func OpenDatabase(cfg Config, log *logger.Logger) (*db.Service, error) {
	svc, err := db.NewService(db.Config{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.DSN(),
	}, log)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		log.Info("Auto migrating tables...")
		if err := db.AutoMigrateAll(svc.DB()); err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("automigrate: %w", err)
		}
	}
	return svc, nil
}

func New(ctx context.Context, cfg Config, log *logger.Logger) (*App, error) {
	svc, err := OpenDatabase(cfg, log)
	if err != nil {
		return nil, err
	}
	a, err := NewWithDB(ctx, cfg, log, svc.DB())
	if err != nil {
		_ = svc.Close()
		return nil, err
	}
	a.dbService = svc
	return a, nil
}

// NewWithDB wires the application over an already opened database.
func NewWithDB(ctx context.Context, cfg Config, log *logger.Logger, theDB *gorm.DB) (*App, error) {
	metrics := observability.Init(log)
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "idea2sns",
		Environment: cfg.Env,
	})

	reposet := wireRepos(theDB, log)

	clientset, err := wireClients(log, cfg, metrics)
	if err != nil {
		return nil, err
	}

	serviceset, err := wireServices(theDB, log, cfg, reposet, clientset)
	if err != nil {
		if clientset.LimitsCache != nil {
			_ = clientset.LimitsCache.Close()
		}
		return nil, err
	}

	handlerset := wireHandlers(log, serviceset)
	middleware := wireMiddleware(log, serviceset)
	router := wireRouter(log, cfg, metrics, handlerset, middleware)

	return &App{
		Log:      log,
		DB:       theDB,
		Router:   router,
		Server: apphttp.NewServer(log, router, apphttp.ServerOptions{
			Addr:              cfg.HTTP.Addr,
			ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout.Duration,
			ShutdownTimeout:   cfg.HTTP.ShutdownTimeout.Duration,
		}),
		Cfg:          cfg,
		Repos:        reposet,
		Clients:      clientset,
		Services:     serviceset,
		Metrics:      metrics,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches the background collectors.
func (a *App) Start(ctx context.Context) {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.Metrics.StartDBCollector(ctx, a.Log, a.DB)
	if a.Clients.LimitsCache != nil {
		a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.LimitsCache.Client())
	}
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Server.Run(ctx)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.otelShutdown != nil {
		timeout := a.Cfg.HTTP.ShutdownTimeout.Duration
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.Clients.LimitsCache != nil {
		_ = a.Clients.LimitsCache.Close()
	}
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil {
			a.Log.Warn("database close failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
