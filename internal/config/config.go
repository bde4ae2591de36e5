package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Business  BusinessConfig  `mapstructure:"business"`
	Health    HealthConfig    `mapstructure:"health"`
}

type ServerConfig struct {
	Port         string `mapstructure:"SERVER_PORT"`
	Host         string `mapstructure:"SERVER_HOST"`
	Env          string `mapstructure:"ENV"`
	ReadTimeout  string `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout string `mapstructure:"SERVER_WRITE_TIMEOUT"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"DATABASE_HOST"`
	Port            string `mapstructure:"DATABASE_PORT"`
	Name            string `mapstructure:"DATABASE_NAME"`
	User            string `mapstructure:"DATABASE_USER"`
	Password        string `mapstructure:"DATABASE_PASSWORD"`
	SSLMode         string `mapstructure:"DATABASE_SSLMODE"`
	MaxOpenConns    int    `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int    `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime string `mapstructure:"DATABASE_CONN_MAX_LIFETIME"`
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

type SchedulerConfig struct {
	Timezone string `mapstructure:"SCHEDULER_TIMEZONE"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Format string `mapstructure:"LOG_FORMAT"`
}

type BusinessConfig struct {
	// Share of each loan payment booked as interest, in percent.
	PaymentInterestSplit string `mapstructure:"PAYMENT_INTEREST_SPLIT_PERCENT"`
	// Allowed deviation between a supplied installment and the reference EMI
	// before approval logs a discrepancy warning, in percent.
	EMITolerance    string `mapstructure:"EMI_TOLERANCE_PERCENT"`
	SummaryCacheTTL string `mapstructure:"SUMMARY_CACHE_TTL"`
	DueSoonDays     int    `mapstructure:"DUE_SOON_DAYS"`
}

type HealthConfig struct {
	Timeout string `mapstructure:"HEALTH_CHECK_TIMEOUT"`
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("SERVER_READ_TIMEOUT", "15s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "15s")
	viper.SetDefault("DATABASE_HOST", "localhost")
	viper.SetDefault("DATABASE_PORT", "5432")
	viper.SetDefault("DATABASE_NAME", "society_ledger")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_SSLMODE", "disable")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DATABASE_CONN_MAX_LIFETIME", "5m")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("PAYMENT_INTEREST_SPLIT_PERCENT", "1")
	viper.SetDefault("EMI_TOLERANCE_PERCENT", "5")
	viper.SetDefault("SUMMARY_CACHE_TTL", "10m")
	viper.SetDefault("DUE_SOON_DAYS", 3)
	viper.SetDefault("SCHEDULER_TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("HEALTH_CHECK_TIMEOUT", "5s")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read from .env file (optional)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./deployments")

	// Don't fail if .env file doesn't exist
	_ = viper.ReadInConfig()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.Name == "" {
		return fmt.Errorf("DATABASE_NAME is required")
	}

	if c.Business.DueSoonDays <= 0 {
		return fmt.Errorf("DUE_SOON_DAYS must be greater than 0")
	}

	if _, err := decimal.NewFromString(c.Business.PaymentInterestSplit); err != nil {
		return fmt.Errorf("PAYMENT_INTEREST_SPLIT_PERCENT must be a valid decimal: %w", err)
	}

	if _, err := decimal.NewFromString(c.Business.EMITolerance); err != nil {
		return fmt.Errorf("EMI_TOLERANCE_PERCENT must be a valid decimal: %w", err)
	}

	if _, err := time.ParseDuration(c.Business.SummaryCacheTTL); err != nil {
		return fmt.Errorf("SUMMARY_CACHE_TTL must be a valid duration: %w", err)
	}

	if _, err := time.ParseDuration(c.Health.Timeout); err != nil {
		return fmt.Errorf("HEALTH_CHECK_TIMEOUT must be a valid duration: %w", err)
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// DSN builds the Postgres connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// GetConnMaxLifetime returns the connection max lifetime as duration
func (c *DatabaseConfig) GetConnMaxLifetime() time.Duration {
	d, _ := time.ParseDuration(c.ConnMaxLifetime)
	return d
}

// GetReadTimeout returns the server read timeout as duration
func (c *ServerConfig) GetReadTimeout() time.Duration {
	d, _ := time.ParseDuration(c.ReadTimeout)
	return d
}

// GetWriteTimeout returns the server write timeout as duration
func (c *ServerConfig) GetWriteTimeout() time.Duration {
	d, _ := time.ParseDuration(c.WriteTimeout)
	return d
}

// GetPaymentInterestSplit returns the payment interest split as decimal percent
func (c *Config) GetPaymentInterestSplit() decimal.Decimal {
	pct, _ := decimal.NewFromString(c.Business.PaymentInterestSplit)
	return pct
}

// GetEMITolerance returns the EMI cross-check tolerance as decimal percent
func (c *Config) GetEMITolerance() decimal.Decimal {
	pct, _ := decimal.NewFromString(c.Business.EMITolerance)
	return pct
}

// GetSummaryCacheTTL returns the report cache TTL as duration
func (c *Config) GetSummaryCacheTTL() time.Duration {
	d, _ := time.ParseDuration(c.Business.SummaryCacheTTL)
	return d
}

// GetHealthTimeout returns the health check timeout as duration
func (c *Config) GetHealthTimeout() time.Duration {
	timeout, _ := time.ParseDuration(c.Health.Timeout)
	return timeout
}
