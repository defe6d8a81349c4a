package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/prasetyow/expense-reimbursement/internal"
	"github.com/prasetyow/expense-reimbursement/internal/auth"
	authPostgres "github.com/prasetyow/expense-reimbursement/internal/auth/postgres"
	"github.com/prasetyow/expense-reimbursement/internal/core/events"
	"github.com/prasetyow/expense-reimbursement/internal/reimbursement"
	reimbPostgres "github.com/prasetyow/expense-reimbursement/internal/reimbursement/postgres"
	"github.com/prasetyow/expense-reimbursement/internal/transport/rest"
	"github.com/prasetyow/expense-reimbursement/internal/transport/swagger"
	"github.com/prasetyow/expense-reimbursement/internal/user"
	userPostgres "github.com/prasetyow/expense-reimbursement/internal/user/postgres"
	"github.com/prasetyow/expense-reimbursement/pkg/logger"
)

const openAPIPath = "./api/openapi.yml"

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config        *internal.Config
	DB            *sqlx.DB
	GormDB        *gorm.DB
	Router        *chi.Mux
	Logger        *slog.Logger
	AuthHandler   *auth.Handler
	UserHandler   *user.Handler
	ReimbHandler  *reimbursement.Handler
	LegacyHandler *rest.LegacyHandler
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

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
		deps.Logger.Info("received signal, shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func setupRoutes(deps *Dependencies) {
	rest.RegisterAllRoutes(deps.Router, rest.RouterDeps{
		DB:             deps.DB.DB,
		AuthHandler:    deps.AuthHandler,
		UserHandler:    deps.UserHandler,
		ReimbHandler:   deps.ReimbHandler,
		LegacyHandler:  deps.LegacyHandler,
		Logger:         deps.Logger,
		AllowedOrigins: deps.Config.Server.AllowedOrigins,
		OpenAPIPath:    openAPIPath,
	})
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Format, config.Observability.Logging.Level)
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	if err := swagger.ValidateSpec(context.Background(), openAPIPath); err != nil {
		// The API still works without docs; keep serving.
		lg.Warn("openapi spec validation failed", "error", err)
	}

	bus := events.NewEventBus(lg)
	events.RegisterAuditSubscriber(bus, lg)

	tokenGen := auth.NewJWTTokenGenerator(config.Security.JWTSecret, config.Security.AccessTokenDuration)
	authRepo := authPostgres.NewRepository(gormDB)
	authService := auth.NewService(authRepo, tokenGen, config.Security.BCryptCost)
	authHandler := auth.NewHandler(authService)

	userRepo := userPostgres.NewUserRepository(gormDB)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService)

	reimbRepo := reimbPostgres.NewReimbursementRepository(gormDB)
	reimbService := reimbursement.NewService(reimbRepo, bus, lg)
	reimbHandler := reimbursement.NewHandler(reimbService)

	legacyHandler := rest.NewLegacyHandler(authService, reimbService)

	return &Dependencies{
		Config:        config,
		DB:            db,
		GormDB:        gormDB,
		Router:        chi.NewRouter(),
		Logger:        lg,
		AuthHandler:   authHandler,
		UserHandler:   userHandler,
		ReimbHandler:  reimbHandler,
		LegacyHandler: legacyHandler,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
