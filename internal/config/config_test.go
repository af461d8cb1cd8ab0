package config

import (
	"strings"
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	c := fromEnv()
	if c.DBDriver != "mysql" || c.LoanPeriodDays != 14 || c.MaxRenewals != 2 || c.MaxActiveBorrowings != 5 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.PickupWindow() != 48*time.Hour || c.SweepInterval() != 24*time.Hour {
		t.Fatalf("durations: pickup=%v sweep=%v", c.PickupWindow(), c.SweepInterval())
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/lib.db")
	t.Setenv("MAX_RENEWALS", "0")
	t.Setenv("LIBRARY_UTC_OFFSET_MINUTES", "-210")
	t.Setenv("RATE_LIMIT_PER_SECOND", "2.5")
	t.Setenv("REDIS_DB", "not-a-number")

	c := fromEnv()
	if c.DBDriver != "sqlite" || c.DSN() != "/tmp/lib.db" {
		t.Fatalf("driver/dsn = %q/%q", c.DBDriver, c.DSN())
	}
	if c.MaxRenewals != 0 || c.RateLimitPerSecond != 2.5 || c.RedisDB != 0 {
		t.Fatalf("unexpected overrides: %+v", c)
	}
	_, off := time.Date(2025, 9, 1, 0, 0, 0, 0, c.Location()).Zone()
	if off != -210*60 || c.Location().String() != "UTC-3:30" {
		t.Fatalf("location = %s offset %d", c.Location(), off)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown driver", func(c *Config) { c.DBDriver = "oracle" }, "unknown DB_DRIVER"},
		{"postgres without url", func(c *Config) { c.DBDriver = "postgres" }, "DATABASE_URL"},
		{"bad mysql port", func(c *Config) { c.MySQLPort = "no-such-port" }, "MYSQL_PORT"},
		{"zero loan period", func(c *Config) { c.LoanPeriodDays = 0 }, "LOAN_PERIOD_DAYS"},
		{"offset out of range", func(c *Config) { c.LibraryUTCOffsetMinutes = 15 * 60 }, "out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := fromEnv()
			tt.mutate(c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestMySQLDSN(t *testing.T) {
	c := fromEnv()
	dsn := c.MySQLDSN()
	if !strings.HasPrefix(dsn, "library:library@tcp(mysql:3306)/library?") || !strings.Contains(dsn, "parseTime=true") {
		t.Fatalf("dsn = %q", dsn)
	}
}
