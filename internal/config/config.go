package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	AppPort           string
	AppEnv            string
	LogLevel          string
	SecretKey         string
	DatabaseDriver    string
	DatabaseDSN       string
	UploadDir         string
	AllowedExtensions []string
	SessionTTL        time.Duration
	RememberTTL       time.Duration
	CookieSecure      bool
	LoginRateLimit    int
	BodyLimitMB       int
	RabbitMQURL       string
	AdminUsername     string
	AdminEmail        string
	AdminPassword     string
}

// IsProduction reports whether the app runs with APP_ENV=production.
func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// SetDefaults registers the default value of every setting on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SECRET_KEY", "")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "el_punto.db")
	v.SetDefault("UPLOAD_DIR", "static/uploads")
	v.SetDefault("ALLOWED_EXTENSIONS", "png,jpg,jpeg,gif")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("REMEMBER_TTL", "720h")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("LOGIN_RATE_LIMIT", 10)
	v.SetDefault("BODY_LIMIT_MB", 32)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("ADMIN_USERNAME", "")
	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("ADMIN_PASSWORD", "")
}

// Load reads configuration from the environment and, when present, from a
// .env file in the working directory. Environment variables win.
func Load() (Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to read .env: %w", err)
		}
	}
	v.AutomaticEnv()

	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		AppPort:           v.GetString("APP_PORT"),
		AppEnv:            v.GetString("APP_ENV"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		SecretKey:         v.GetString("SECRET_KEY"),
		DatabaseDriver:    strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseDSN:       v.GetString("DATABASE_DSN"),
		UploadDir:         v.GetString("UPLOAD_DIR"),
		AllowedExtensions: ParseExtensions(v.GetString("ALLOWED_EXTENSIONS")),
		SessionTTL:        v.GetDuration("SESSION_TTL"),
		RememberTTL:       v.GetDuration("REMEMBER_TTL"),
		CookieSecure:      v.GetBool("COOKIE_SECURE"),
		LoginRateLimit:    v.GetInt("LOGIN_RATE_LIMIT"),
		BodyLimitMB:       v.GetInt("BODY_LIMIT_MB"),
		RabbitMQURL:       v.GetString("RABBITMQ_URL"),
		AdminUsername:     v.GetString("ADMIN_USERNAME"),
		AdminEmail:        v.GetString("ADMIN_EMAIL"),
		AdminPassword:     v.GetString("ADMIN_PASSWORD"),
	}
	return cfg, cfg.Validate()
}

// Validate rejects configurations the server cannot run with.
func (c Config) Validate() error {
	if c.SecretKey == "" {
		return errors.New("SECRET_KEY must be set")
	}
	if len(c.AllowedExtensions) == 0 {
		return errors.New("ALLOWED_EXTENSIONS must list at least one extension")
	}
	if c.SessionTTL <= 0 || c.RememberTTL <= 0 {
		return errors.New("SESSION_TTL and REMEMBER_TTL must be positive durations")
	}
	if c.UploadDir == "" {
		return errors.New("UPLOAD_DIR must be set")
	}
	if c.AdminUsername != "" && (c.AdminEmail == "" || c.AdminPassword == "") {
		return errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together with ADMIN_USERNAME")
	}
	return nil
}

// ParseExtensions splits a comma separated list into lowercased extensions
// without leading dots.
func ParseExtensions(raw string) []string {
	var exts []string
	for _, part := range strings.Split(raw, ",") {
		ext := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(part), "."))
		if ext != "" {
			exts = append(exts, ext)
		}
	}
	return exts
}
