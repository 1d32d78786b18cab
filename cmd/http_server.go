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

	"github.com/canermastan/hotel-operations/internal"
	"github.com/canermastan/hotel-operations/internal/checkin"
	checkinPostgres "github.com/canermastan/hotel-operations/internal/checkin/postgres"
	"github.com/canermastan/hotel-operations/internal/core/events"
	"github.com/canermastan/hotel-operations/internal/docverify"
	"github.com/canermastan/hotel-operations/internal/liveness"
	"github.com/canermastan/hotel-operations/internal/notification"
	"github.com/canermastan/hotel-operations/internal/payment"
	paymentPostgres "github.com/canermastan/hotel-operations/internal/payment/postgres"
	"github.com/canermastan/hotel-operations/internal/paymentgateway"
	"github.com/canermastan/hotel-operations/internal/reservation"
	reservationPostgres "github.com/canermastan/hotel-operations/internal/reservation/postgres"
	"github.com/canermastan/hotel-operations/internal/transport/rest"
	"github.com/canermastan/hotel-operations/pkg/logger"
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
	Config         *internal.Config
	DB             *sqlx.DB
	Router         *chi.Mux
	CheckinHandler *checkin.Handler
	PaymentHandler *payment.Handler
	Verifier       *docverify.Client
	Logger         *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.CheckinHandler, deps.PaymentHandler, deps.Logger)

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
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		deps.Verifier.Shutdown()
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

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ORM: %w", err)
	}

	eventBus := events.NewEventBus(lg)
	notification.NewEventHandler(lg).RegisterEventHandlers(eventBus)

	reservationRepo := reservationPostgres.NewReservationRepository(gormDB)
	reservationService := reservation.NewService(reservationRepo, lg)

	verifier := docverify.NewClient(docverify.Config{
		MRZAPIURL:         config.Checkin.MRZAPIURL,
		APIKey:            config.Checkin.MRZAPIKey,
		ProcessingTimeout: config.Checkin.VerificationTimeout,
		MaxWorkers:        config.Checkin.MaxWorkers,
		JobQueueSize:      config.Checkin.JobQueueSize,
	}, lg)

	livenessClient := liveness.NewClient(liveness.Config{
		AppID:  config.Checkin.FaceIOAppID,
		APIKey: config.Checkin.FaceIOAPIKey,
	}, lg)

	checkinRepo := checkinPostgres.NewCheckinRepository(gormDB)
	checkinService := checkin.NewService(checkinRepo, reservationService, verifier, livenessClient, eventBus, config.Checkin.PassportUploadDir, lg)

	gatewayClient := paymentgateway.NewClient(paymentgateway.Config{
		BaseURL: config.Payment.GatewayURL,
		APIKey:  config.Payment.APIKey,
		Timeout: config.Payment.GatewayTimeout,
	}, lg)

	paymentRepo := paymentPostgres.NewPaymentRepository(gormDB)
	paymentService := payment.NewService(paymentRepo, reservationService, gatewayClient, eventBus, config.Payment.Currency, config.Payment.GatewayTimeout, lg)

	return &Dependencies{
		Config:         config,
		Logger:         lg,
		DB:             db,
		Router:         chi.NewRouter(),
		CheckinHandler: checkin.NewHandler(checkinService),
		PaymentHandler: payment.NewHandler(paymentService, config.Payment.SweepTimeout),
		Verifier:       verifier,
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

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
