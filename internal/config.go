package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Checkin       CheckinConfig       `mapstructure:"checkin"`
	Payment       PaymentConfig       `mapstructure:"payment"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Source          string        `mapstructure:"source"`
}

// CheckinConfig carries the document-verification and liveness provider
// settings for the self-check-in workflow.
type CheckinConfig struct {
	PassportUploadDir   string        `mapstructure:"passport_upload_dir"`
	MRZAPIURL           string        `mapstructure:"mrz_api_url"`
	MRZAPIKey           string        `mapstructure:"mrz_api_key"`
	FaceIOAppID         string        `mapstructure:"faceio_app_id"`
	FaceIOAPIKey        string        `mapstructure:"faceio_api_key"`
	VerificationTimeout time.Duration `mapstructure:"verification_timeout"`
	MaxWorkers          int           `mapstructure:"max_workers"`
	JobQueueSize        int           `mapstructure:"job_queue_size"`
}

type PaymentConfig struct {
	GatewayURL     string        `mapstructure:"gateway_url"`
	APIKey         string        `mapstructure:"api_key"`
	Currency       string        `mapstructure:"currency"`
	GatewayTimeout time.Duration `mapstructure:"gateway_timeout"`
	SweepTimeout   time.Duration `mapstructure:"sweep_timeout"`
	SweepInterval  time.Duration `mapstructure:"sweep_interval"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ----------------- HELPERS -----------------

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// LoadConfigFromEnv builds the configuration purely from environment
// variables, used for container deployments that have no config file.
func LoadConfigFromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              getEnvInt("SERVER_PORT", 8080),
			BaseURL:           getEnv("SERVER_BASE_URL", "http://localhost:8080"),
			AllowedOrigins:    getEnv("SERVER_ALLOWED_ORIGINS", "*"),
			ReadHeaderTimeout: getEnvDuration("SERVER_READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			IdleTimeout:       getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			WriteTimeout:      getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			Source:          getEnv("DB_SOURCE", ""),
		},
		Checkin: CheckinConfig{
			PassportUploadDir:   getEnv("CHECKIN_PASSPORT_UPLOAD_DIR", "uploads/passports"),
			MRZAPIURL:           getEnv("CHECKIN_MRZ_API_URL", "https://api.mindee.net/v1/products/mindee/passport/v1/predict"),
			MRZAPIKey:           getEnv("CHECKIN_MRZ_API_KEY", ""),
			FaceIOAppID:         getEnv("CHECKIN_FACEIO_APP_ID", ""),
			FaceIOAPIKey:        getEnv("CHECKIN_FACEIO_API_KEY", ""),
			VerificationTimeout: getEnvDuration("CHECKIN_VERIFICATION_TIMEOUT", 30*time.Second),
			MaxWorkers:          getEnvInt("CHECKIN_MAX_WORKERS", 4),
			JobQueueSize:        getEnvInt("CHECKIN_JOB_QUEUE_SIZE", 100),
		},
		Payment: PaymentConfig{
			GatewayURL:     getEnv("PAYMENT_GATEWAY_URL", ""),
			APIKey:         getEnv("PAYMENT_API_KEY", ""),
			Currency:       getEnv("PAYMENT_CURRENCY", "USD"),
			GatewayTimeout: getEnvDuration("PAYMENT_GATEWAY_TIMEOUT", 30*time.Second),
			SweepTimeout:   getEnvDuration("PAYMENT_SWEEP_TIMEOUT", time.Hour),
			SweepInterval:  getEnvDuration("PAYMENT_SWEEP_INTERVAL", 10*time.Minute),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
	}
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Database.Source == "" {
		return errors.New("database source is required")
	}
	if c.Checkin.VerificationTimeout <= 0 {
		return errors.New("checkin verification timeout must be positive")
	}
	if c.Payment.SweepTimeout <= 0 {
		return errors.New("payment sweep timeout must be positive")
	}
	if c.Payment.GatewayURL != "" {
		if _, err := url.Parse(c.Payment.GatewayURL); err != nil {
			return fmt.Errorf("invalid payment gateway url: %w", err)
		}
	}
	return nil
}
