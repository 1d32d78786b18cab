package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/canermastan/hotel-operations/internal/core/events"
	"github.com/canermastan/hotel-operations/internal/payment"
	paymentPostgres "github.com/canermastan/hotel-operations/internal/payment/postgres"
	"github.com/canermastan/hotel-operations/internal/paymentgateway"
	"github.com/canermastan/hotel-operations/internal/reservation"
	reservationPostgres "github.com/canermastan/hotel-operations/internal/reservation/postgres"
	"github.com/canermastan/hotel-operations/pkg/logger"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start and manage background workers for recurring maintenance tasks.`,
}

// Sweep worker command
var sweepWorkerCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Start the stuck-payment sweep worker",
	Long:  `Periodically force-fail payments stuck in PROCESSING beyond the configured timeout`,
	Run: func(cmd *cobra.Command, args []string) {
		startSweepWorker()
	},
}

var (
	sweepInterval time.Duration
	sweepTimeout  time.Duration
)

func startSweepWorker() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize ORM: %v\n", err)
		os.Exit(1)
	}

	interval := sweepInterval
	if interval <= 0 {
		interval = config.Payment.SweepInterval
	}
	timeout := sweepTimeout
	if timeout <= 0 {
		timeout = config.Payment.SweepTimeout
	}

	eventBus := events.NewEventBus(lg)
	reservationService := reservation.NewService(reservationPostgres.NewReservationRepository(gormDB), lg)
	gatewayClient := paymentgateway.NewClient(paymentgateway.Config{
		BaseURL: config.Payment.GatewayURL,
		APIKey:  config.Payment.APIKey,
		Timeout: config.Payment.GatewayTimeout,
	}, lg)
	paymentService := payment.NewService(paymentPostgres.NewPaymentRepository(gormDB), reservationService, gatewayClient, eventBus, config.Payment.Currency, config.Payment.GatewayTimeout, lg)

	lg.Info("sweep worker started",
		"interval", interval.String(),
		"stuck_timeout", timeout.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			swept, err := paymentService.SweepStuckPayments(timeout)
			if err != nil {
				lg.Error("sweep run failed", "error", err)
				continue
			}
			if swept > 0 {
				lg.Warn("sweep run finished", "swept_count", swept)
			} else {
				lg.Debug("sweep run finished, nothing stuck")
			}
		case sig := <-sigChan:
			lg.Info("received signal, shutting down sweep worker", "signal", sig)
			return
		}
	}
}

func init() {
	sweepWorkerCmd.Flags().DurationVar(&sweepInterval, "interval", 0, "Sweep interval (overrides config)")
	sweepWorkerCmd.Flags().DurationVar(&sweepTimeout, "timeout", 0, "Stuck payment timeout (overrides config)")

	workerCmd.AddCommand(sweepWorkerCmd)
}
