package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/database"
	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Roster   RosterConfig
	NATS     NATSConfig
	Metrics  MetricsConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
	MinConns int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	Store          string
	SeedFile       string
	AllowedOrigins []string
}

// RosterConfig drives the implicit day lock and default environment.
type RosterConfig struct {
	Timezone           string
	ShiftStart         string // HH:MM
	DefaultEnvironment string
	// CrewHorizonDays is how far ahead crew shifts are materialised; 0 disables the job.
	CrewHorizonDays      int
	CrewScheduleInterval time.Duration
}

type NATSConfig struct {
	URL           string
	SubjectPrefix string
}

type MetricsConfig struct {
	Enabled   bool
	Namespace string
}

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded, using process environment", "error", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.Atoi(getEnv("DB_MIN_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "labor-roster"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: maxConns,
		MinConns: minConns,
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Store:          getEnv("APP_STORE", StorePostgres),
		SeedFile:       getEnv("SEED_FILE", ""),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}
	if len(config.App.AllowedOrigins) == 0 {
		config.App.AllowedOrigins = []string{"http://localhost:3000"}
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Roster configuration
	horizon, err := strconv.Atoi(getEnv("CREW_SCHEDULE_HORIZON_DAYS", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid CREW_SCHEDULE_HORIZON_DAYS: %w", err)
	}
	interval, err := time.ParseDuration(getEnv("CREW_SCHEDULE_INTERVAL", "6h"))
	if err != nil {
		return nil, fmt.Errorf("invalid CREW_SCHEDULE_INTERVAL: %w", err)
	}
	config.Roster = RosterConfig{
		Timezone:             getEnv("ROSTER_TIMEZONE", "Local"),
		ShiftStart:           getEnv("ROSTER_SHIFT_START", "06:00"),
		DefaultEnvironment:   getEnv("ROSTER_DEFAULT_ENVIRONMENT", "production"),
		CrewHorizonDays:      horizon,
		CrewScheduleInterval: interval,
	}

	config.NATS = NATSConfig{
		URL:           getEnv("NATS_URL", ""),
		SubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "roster"),
	}

	metricsEnabled, err := strconv.ParseBool(getEnv("METRICS_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid METRICS_ENABLED: %w", err)
	}
	config.Metrics = MetricsConfig{
		Enabled:   metricsEnabled,
		Namespace: getEnv("METRICS_NAMESPACE", "labor_roster"),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.App.Store {
	case StorePostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("APP_STORE must be one of: %s, %s", StorePostgres, StoreMemory)
	}
	if c.Database.MaxConns < 1 || c.Database.MinConns < 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive and DB_MIN_CONNS not negative")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := c.Roster.Location(); err != nil {
		return fmt.Errorf("invalid ROSTER_TIMEZONE: %w", err)
	}
	if _, _, err := c.Roster.ShiftStartClock(); err != nil {
		return fmt.Errorf("invalid ROSTER_SHIFT_START: %w", err)
	}
	if c.Roster.CrewHorizonDays < 0 {
		return fmt.Errorf("CREW_SCHEDULE_HORIZON_DAYS must not be negative")
	}
	if c.Roster.CrewHorizonDays > 0 && c.Roster.CrewScheduleInterval <= 0 {
		return fmt.Errorf("CREW_SCHEDULE_INTERVAL must be positive")
	}
	return nil
}

// SlogLevel parses LOG_LEVEL, falling back to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// PoolSize returns the configured connection pool bounds.
func (c *Config) PoolSize() database.PoolSize {
	return database.PoolSize{MaxConns: int32(c.Database.MaxConns), MinConns: int32(c.Database.MinConns)}
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Location resolves the facility time zone.
func (r RosterConfig) Location() (*time.Location, error) {
	return time.LoadLocation(r.Timezone)
}

// ShiftStartClock returns the hour and minute of the first shift.
func (r RosterConfig) ShiftStartClock() (int, int, error) {
	t, err := time.Parse("15:04", r.ShiftStart)
	if err != nil {
		return 0, 0, err
	}
	return t.Hour(), t.Minute(), nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string = strings.Split(value, ",")
	return result
}
