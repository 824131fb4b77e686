package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/cloudyy74/teams-api/internal/auth"
	"github.com/cloudyy74/teams-api/internal/config"
	"github.com/cloudyy74/teams-api/internal/data"
	router "github.com/cloudyy74/teams-api/internal/http"
	"github.com/cloudyy74/teams-api/internal/models"
	"github.com/cloudyy74/teams-api/internal/service"
	"github.com/cloudyy74/teams-api/internal/storage"
	"github.com/cloudyy74/teams-api/internal/throttle"
	"github.com/cloudyy74/teams-api/pkg/postgres"
)

const (
	defaultAddr      = "localhost:8080"
	redisPingTimeout = 3 * time.Second
)

type App struct {
	httpServer  *http.Server
	addr        string
	database    *postgres.Postgres
	redis       *redis.Client
	authService *service.AuthService
	log         *slog.Logger
}

func NewApp(cfg *config.Config, log *slog.Logger) (*App, error) {
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.DBURL == "" {
		return nil, errors.New("database url cannot be empty")
	}

	ctx := context.Background()
	database, err := postgres.New(ctx, cfg.DBURL, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}
	a := &App{
		addr:     cfg.Addr,
		database: database,
		log:      log,
	}
	if err := a.build(ctx, cfg); err != nil {
		a.closeClients()
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context, cfg *config.Config) error {
	log := a.log
	if cfg.Migrate {
		if err := a.database.Migrate(ctx, data.Migrations, data.MigrationsDir); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	teamStorage, err := storage.NewTeamStorage(a.database, log)
	if err != nil {
		return fmt.Errorf("failed to create team storage: %w", err)
	}
	userStorage, err := storage.NewUserStorage(a.database, log)
	if err != nil {
		return fmt.Errorf("failed to create user storage: %w", err)
	}
	txManager, err := storage.NewTxManager(a.database, log)
	if err != nil {
		return fmt.Errorf("failed to create tx manager: %w", err)
	}

	hasher := auth.NewHasher(cfg.BcryptCost)
	issuer, err := auth.NewTokenIssuer(
		cfg.JWT.Secret,
		auth.WithAccessTTL(cfg.JWT.AccessTTL),
		auth.WithRefreshTTL(cfg.JWT.RefreshTTL),
	)
	if err != nil {
		return fmt.Errorf("failed to create token issuer: %w", err)
	}
	denylist, err := a.newDenylist(ctx, cfg.Redis)
	if err != nil {
		return err
	}

	authService, err := service.NewAuthService(
		txManager,
		userStorage,
		teamStorage,
		hasher,
		issuer,
		denylist,
		log,
		service.WithRefreshRotation(cfg.JWT.RotateRefresh),
	)
	if err != nil {
		return fmt.Errorf("failed to create auth service: %w", err)
	}
	userService, err := service.NewUserService(txManager, userStorage, teamStorage, hasher, log)
	if err != nil {
		return fmt.Errorf("failed to create user service: %w", err)
	}
	teamService, err := service.NewTeamService(teamStorage, log)
	if err != nil {
		return fmt.Errorf("failed to create team service: %w", err)
	}
	a.authService = authService

	limiter := throttle.New(cfg.Throttle.RPS, cfg.Throttle.Burst, cfg.Throttle.IdleTTL)
	mux := http.NewServeMux()
	if err := router.SetupRouter(mux, authService, userService, teamService, limiter, log); err != nil {
		return fmt.Errorf("failed to create router: %w", err)
	}
	a.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.Timeout,
		ReadTimeout:       cfg.Timeout,
		WriteTimeout:      cfg.Timeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
	return nil
}

func (a *App) newDenylist(ctx context.Context, cfg config.Redis) (service.Denylist, error) {
	if cfg.Addr == "" {
		a.log.Info("redis is not configured, using in-memory token denylist")
		return auth.NewMemoryDenylist(), nil
	}
	a.redis = redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := a.redis.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	a.log.Info("using redis token denylist", slog.String("addr", cfg.Addr))
	return auth.NewRedisDenylist(a.redis), nil
}

// CreateSuperuser registers a staff superuser without starting the server.
func (a *App) CreateSuperuser(ctx context.Context, email, password string) (*models.User, error) {
	return a.authService.CreateSuperuser(ctx, email, password)
}

func (a *App) Run() error {
	a.log.Info("starting http server", slog.String("addr", a.addr))
	return a.httpServer.ListenAndServe()
}

func (a *App) MustRun() {
	if err := a.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		a.log.Error("failed to run http server", slog.Any("error", err))
		panic(err)
	}
}

func (a *App) Close(ctx context.Context) {
	a.log.Info("trying to shutdown server")
	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			a.log.Warn("failed to close http server", slog.Any("error", err))
		}
	}
	a.closeClients()
}

func (a *App) closeClients() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("failed to close redis client", slog.Any("error", err))
		}
	}
	a.database.Close()
}
