package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/frahmantamala/projecthub/api"
	"github.com/frahmantamala/projecthub/internal"
	"github.com/frahmantamala/projecthub/internal/auth"
	authPostgres "github.com/frahmantamala/projecthub/internal/auth/postgres"
	"github.com/frahmantamala/projecthub/internal/core/events"
	"github.com/frahmantamala/projecthub/internal/core/store"
	"github.com/frahmantamala/projecthub/internal/organization"
	orgPostgres "github.com/frahmantamala/projecthub/internal/organization/postgres"
	"github.com/frahmantamala/projecthub/internal/rbac"
	rbacPostgres "github.com/frahmantamala/projecthub/internal/rbac/postgres"
	"github.com/frahmantamala/projecthub/internal/transport/rest"
	"github.com/frahmantamala/projecthub/internal/user"
	userPostgres "github.com/frahmantamala/projecthub/internal/user/postgres"
	"github.com/frahmantamala/projecthub/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *gorm.DB
	EventBus *events.EventBus
	Router   *chi.Mux
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if deps.Config.Security.JWTSecret == "" {
		deps.Logger.Warn("JWT_SECRET is not set; login and authenticated routes will fail")
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "env", deps.Config.Env)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		deps.EventBus.Wait()
		if sqlDB, err := deps.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				deps.Logger.Error("Database close error", "error", err)
			}
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.LoggerWrapper()

	if _, err := api.Load(context.Background()); err != nil {
		return nil, err
	}

	db, err := store.Open(config.Database, lg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	eventBus := events.NewEventBus(lg)
	events.SubscribeAudit(eventBus, lg)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, buildRoutes(config, db, sqlx.NewDb(sqlDB, driverName(config.Database.Dialect)), eventBus, lg))

	return &Dependencies{
		Config:   config,
		DB:       db,
		EventBus: eventBus,
		Router:   router,
		Logger:   lg,
	}, nil
}

func buildRoutes(cfg *internal.Config, db *gorm.DB, sqlxDB *sqlx.DB, bus events.Publisher, lg *slog.Logger) rest.Dependencies {
	hasher := auth.NewBcryptHasher(cfg.Security.BCryptCost)
	tokens := auth.NewJWTTokenService(cfg.Security.JWTSecret, cfg.Security.TokenTTL)

	rbacService := rbac.NewService(rbacPostgres.NewRepository(db), bus, lg)
	authService := auth.NewService(authPostgres.NewRepository(db), hasher, tokens, bus, lg)
	userService := user.NewService(userPostgres.NewUserRepository(db), lg)
	orgService := organization.NewService(orgPostgres.NewRepository(db), lg)

	return rest.Dependencies{
		DB:             sqlxDB,
		Dialect:        cfg.Database.Dialect,
		AllowedOrigins: cfg.Server.Origins(),
		Logger:         lg,

		Authenticator: authService,
		Permissions:   rbacService,

		AuthHandler: auth.NewHandler(authService, auth.CookieConfig{
			Secure: cfg.IsProduction(),
			TTL:    cfg.Security.TokenTTL,
		}),
		UserHandler:         user.NewHandler(userService),
		RBACHandler:         rbac.NewHandler(rbacService),
		OrganizationHandler: organization.NewHandler(orgService),
	}
}

// driverName is the database/sql driver name sqlx uses to pick bind vars.
func driverName(dialect string) string {
	if dialect == internal.DialectSQLite {
		return "sqlite3"
	}
	return "pgx"
}
