package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name     string `envconfig:"APP_NAME" default:"Khata"`
		Port     int    `envconfig:"PORT" default:"8080"`
		Currency string `envconfig:"CURRENCY" default:"INR"`
	}

	DB struct {
		Driver     string `envconfig:"DB_DRIVER" default:"sqlite"`
		Host       string `envconfig:"DB_HOST" default:"localhost"`
		Port       int    `envconfig:"DB_PORT" default:"5432"`
		User       string `envconfig:"DB_USER" default:"postgres"`
		Password   string `envconfig:"DB_PASSWORD" default:""`
		Name       string `envconfig:"DB_NAME" default:"khata"`
		SQLitePath string `envconfig:"DB_SQLITE_PATH" default:"khata.db"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Auth struct {
		// Empty disables token checks on the API.
		Secret   string        `envconfig:"AUTH_SECRET"`
		TokenTTL time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"720h"`
	}

	Cloud struct {
		Provider string `envconfig:"CLOUD_PROVIDER" default:"memory"`
		BaseURL  string `envconfig:"CLOUD_BASE_URL"`
		Token    string `envconfig:"CLOUD_TOKEN"`
	}

	Notify struct {
		Enabled          bool          `envconfig:"NOTIFY_ENABLED" default:"true"`
		ReminderDays     int           `envconfig:"NOTIFY_REMINDER_DAYS" default:"3"`
		OverdueReminders bool          `envconfig:"NOTIFY_OVERDUE_REMINDERS" default:"true"`
		WeeklyReports    bool          `envconfig:"NOTIFY_WEEKLY_REPORTS" default:"false"`
		Interval         time.Duration `envconfig:"NOTIFY_INTERVAL" default:"1h"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}
}

// DSN returns the data source name for the configured driver.
func (c *Config) DSN() string {
	if c.DB.Driver == "sqlite" {
		return c.DB.SQLitePath
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
