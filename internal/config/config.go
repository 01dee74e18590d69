package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// Config holds the application configuration.
type Config struct {
	ServerPort   int    `env:"PORT" envDefault:"8080"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"./events.db"`
	MediaPath    string `env:"MEDIA_PATH" envDefault:"./media"` // Base path for uploaded event images
	AppEnv       string `env:"APP_ENV" envDefault:"development"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`

	JWTSecret  string        `env:"JWT_SECRET"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// Origins allowed both for CORS and for the same-origin check on mutations.
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	SMTP SMTPConfig `envPrefix:"SMTP_"`

	// Activity log entries older than ActivityRetention are pruned on this cron schedule.
	ActivityRetention     time.Duration `env:"ACTIVITY_RETENTION" envDefault:"720h"`
	ActivityPruneSchedule string        `env:"ACTIVITY_PRUNE_SCHEDULE" envDefault:"0 3 * * *"`

	// Optional bootstrap administrator, created or promoted on startup.
	AdminUsername string `env:"ADMIN_USERNAME"`
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

// SMTPConfig configures outgoing contact-form notifications.
type SMTPConfig struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT" envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM" envDefault:"noreply@localhost"`
	// TLS is "starttls" (upgrade when offered), "tls" (implicit TLS, usually port 465) or "none".
	TLS string `env:"TLS" envDefault:"starttls"`
}

// IsProduction reports whether cookies should be marked Secure and logs emitted as JSON.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = "dev-insecure-secret"
	}
	validate := validator.New()
	if err := validate.Var(cfg.SMTP.TLS, "oneof=starttls tls none"); err != nil {
		return nil, fmt.Errorf("SMTP_TLS must be one of starttls, tls or none, got %q", cfg.SMTP.TLS)
	}
	if cfg.AdminUsername != "" {
		if err := validate.Var(cfg.AdminEmail, "required,email"); err != nil {
			return nil, fmt.Errorf("ADMIN_EMAIL must be a valid address when ADMIN_USERNAME is set")
		}
	}
	return cfg, nil
}
