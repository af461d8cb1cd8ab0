package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string

	// DBDriver is mysql (default), postgres or sqlite.
	DBDriver string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	DatabaseURL string
	SQLitePath  string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	LoanPeriodDays      int
	MaxRenewals         int
	MaxActiveBorrowings int
	PickupWindowHours   int

	// LibraryUTCOffsetMinutes is the library's civil time offset; 420 = UTC+7.
	LibraryUTCOffsetMinutes int
	SettingsCacheSecs       int
	SweepIntervalSecs       int

	RateLimitPerSecond float64
	RateLimitBurst     int

	OTLPEndpoint string
	OTLPInsecure bool
	LogLevel     string
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		slog.Warn("ignoring non-integer env value", "key", k, "value", v)
	}
	return d
}

func getfloat(k string, d float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		slog.Warn("ignoring non-numeric env value", "key", k, "value", v)
	}
	return d
}

// Load reads the process environment, after an optional .env in the working directory.
// Variables already set in the environment win over the file.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn(".env not loaded", "err", err)
	}
	return fromEnv()
}

func fromEnv() *Config {
	return &Config{
		AppPort:  getenv("APP_PORT", "8080"),
		DBDriver: strings.ToLower(getenv("DB_DRIVER", "mysql")),

		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "library"),
		MySQLUser: getenv("MYSQL_USER", "library"),
		MySQLPass: getenv("MYSQL_PASS", "library"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  getenv("SQLITE_PATH", "library.db"),

		RedisAddr:    getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:      getint("REDIS_DB", 0),
		IdempTTLSecs: getint("IDEMPOTENCY_TTL_SECONDS", 300),

		LoanPeriodDays:      getint("LOAN_PERIOD_DAYS", 14),
		MaxRenewals:         getint("MAX_RENEWALS", 2),
		MaxActiveBorrowings: getint("MAX_ACTIVE_BORROWINGS", 5),
		PickupWindowHours:   getint("PICKUP_WINDOW_HOURS", 48),

		LibraryUTCOffsetMinutes: getint("LIBRARY_UTC_OFFSET_MINUTES", 420),
		SettingsCacheSecs:       getint("SETTINGS_CACHE_SECONDS", 60),
		SweepIntervalSecs:       getint("SWEEP_INTERVAL_SECONDS", 86400),

		RateLimitPerSecond: getfloat("RATE_LIMIT_PER_SECOND", 20),
		RateLimitBurst:     getint("RATE_LIMIT_BURST", 40),

		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTLPInsecure: os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true",
		LogLevel:     getenv("LOG_LEVEL", "info"),
	}
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DBDriver {
	case "mysql":
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("DB_DRIVER=postgres needs DATABASE_URL")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("DB_DRIVER=sqlite needs SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
	if c.LoanPeriodDays <= 0 {
		return errors.New("LOAN_PERIOD_DAYS must be positive")
	}
	if c.MaxRenewals < 0 {
		return errors.New("MAX_RENEWALS must not be negative")
	}
	if c.PickupWindowHours <= 0 {
		return errors.New("PICKUP_WINDOW_HOURS must be positive")
	}
	if c.LibraryUTCOffsetMinutes < -12*60 || c.LibraryUTCOffsetMinutes > 14*60 {
		return fmt.Errorf("LIBRARY_UTC_OFFSET_MINUTES %d out of range", c.LibraryUTCOffsetMinutes)
	}
	if c.SweepIntervalSecs <= 0 {
		return errors.New("SWEEP_INTERVAL_SECONDS must be positive")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME, loc=UTC keeps stored instants in UTC
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

// DSN returns the connection string for the selected driver.
func (c *Config) DSN() string {
	switch c.DBDriver {
	case "postgres":
		return c.DatabaseURL
	case "sqlite":
		return c.SQLitePath
	}
	return c.MySQLDSN()
}

// Location is the library's fixed civil zone.
func (c *Config) Location() *time.Location {
	off := c.LibraryUTCOffsetMinutes
	sign := "+"
	if off < 0 {
		sign, off = "-", -off
	}
	name := fmt.Sprintf("UTC%s%d", sign, off/60)
	if off%60 != 0 {
		name = fmt.Sprintf("UTC%s%d:%02d", sign, off/60, off%60)
	}
	return time.FixedZone(name, c.LibraryUTCOffsetMinutes*60)
}

func (c *Config) IdempotencyTTL() time.Duration { return time.Duration(c.IdempTTLSecs) * time.Second }

func (c *Config) SweepInterval() time.Duration { return time.Duration(c.SweepIntervalSecs) * time.Second }

func (c *Config) SettingsCacheTTL() time.Duration {
	return time.Duration(c.SettingsCacheSecs) * time.Second
}

func (c *Config) PickupWindow() time.Duration { return time.Duration(c.PickupWindowHours) * time.Hour }
