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

	"github.com/arifwidianto/shift-management/internal"
	"github.com/arifwidianto/shift-management/internal/core/events"
	"github.com/arifwidianto/shift-management/internal/core/keylock"
	directoryPostgres "github.com/arifwidianto/shift-management/internal/directory/postgres"
	"github.com/arifwidianto/shift-management/internal/leave"
	leavePostgres "github.com/arifwidianto/shift-management/internal/leave/postgres"
	"github.com/arifwidianto/shift-management/internal/schedule"
	"github.com/arifwidianto/shift-management/internal/shift"
	shiftPostgres "github.com/arifwidianto/shift-management/internal/shift/postgres"
	"github.com/arifwidianto/shift-management/internal/transport/rest"
	"github.com/arifwidianto/shift-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
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
	Config *internal.Config
	DB     *sqlx.DB
	GormDB *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger

	ShiftHandler    *shift.Handler
	ScheduleHandler *schedule.Handler
	LeaveHandler    *leave.Handler
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(
		deps.Router,
		deps.DB.DB,
		deps.Config,
		deps.ShiftHandler,
		deps.ScheduleHandler,
		deps.LeaveHandler,
		deps.Logger,
	)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
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
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.InitWithConfig(config.Observability.Logging.Level, config.Observability.Logging.Format)
	appLogger := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	// repositories
	dirRepo := directoryPostgres.NewDirectoryRepository(gormDB)
	shiftRepo := shiftPostgres.NewShiftRepository(gormDB)
	leaveRepo := leavePostgres.NewLeaveRepository(gormDB)

	// shared infrastructure
	eventBus := events.NewEventBus(appLogger)
	locks := keylock.New()

	// pattern resolution
	resolver := schedule.NewPatternResolver(dirRepo, appLogger)
	patterns := schedule.NewStoreSource(resolver, dirRepo)

	// services
	shiftService := shift.NewService(shiftRepo, patterns, locks, appLogger)
	scheduleService := schedule.NewService(dirRepo, shiftService, resolver, eventBus, config.Scheduler, appLogger)
	leaveService := leave.NewService(leaveRepo, shiftService, eventBus, appLogger)
	quotaReporter := leave.NewQuotaReporter(dirRepo, shiftService, appLogger)

	subscribeEventHandlers(eventBus, appLogger)

	return &Dependencies{
		Config:          config,
		Logger:          appLogger,
		DB:              db,
		GormDB:          gormDB,
		Router:          chi.NewRouter(),
		ShiftHandler:    shift.NewHandler(shiftService),
		ScheduleHandler: schedule.NewHandler(scheduleService),
		LeaveHandler:    leave.NewHandler(leaveService, quotaReporter),
	}, nil
}

// subscribeEventHandlers attaches the in-process consumers. The failed
// side-effect handler is the operational alarm channel for approved leave
// that never reached the shift store.
func subscribeEventHandlers(bus *events.EventBus, appLogger *slog.Logger) {
	bus.Subscribe(events.EventLeaveSideEffectFailed, func(ctx context.Context, event events.Event) error {
		appLogger.Error("leave side effect requires attention",
			"event_id", event.EventID(),
			"payload", event.Payload())
		return nil
	})
	bus.Subscribe(events.EventScheduleGenerated, func(ctx context.Context, event events.Event) error {
		appLogger.Info("schedule generation recorded",
			"event_id", event.EventID(),
			"payload", event.Payload())
		return nil
	})
}

// initDB initializes the health-check database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm opens the ORM connection the repositories run on
func initGorm(cfg internal.DatabaseConfig) (*gorm.DB, error) {
	gormDB, err := gorm.Open(gormPostgres.Open(cfg.Source), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open orm connection: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access orm connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return gormDB, nil
}
