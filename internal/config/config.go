// Package config reads the application settings from the environment.
// A .env file in the working directory is loaded first when present; real
// environment variables always win over it.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	GinMode string

	// Database
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	JWTSecret          string
	JWTTTL             time.Duration
	AllowedOrigins     []string
	RateLimitPerMinute int

	// Logging
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool

	// Redis is optional; cooldowns fall back to process memory without it.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Mail
	MailProvider           string
	SMTPHost               string
	SMTPPort               int
	SMTPUsername           string
	SMTPPassword           string
	SMTPFrom               string
	SMTPFromName           string
	TwilioAccountSID       string
	TwilioAuthToken        string
	TwilioVerifyServiceSID string
	VerifyURL              string
	ResendCooldown         time.Duration

	AIServiceURL string
	AITimeout    time.Duration
}

// DSN builds a Postgres connection string, preferring DATABASE_URL when set.
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// Load reads .env (if any) and the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, applying defaults.
func FromEnv(getenv func(string) string) (Config, error) {
	p := parser{getenv: getenv}
	cfg := Config{
		Port:    p.str("PORT", "8080"),
		GinMode: p.str("GIN_MODE", "release"),

		DatabaseURL: p.str("DATABASE_URL", ""),
		DBHost:      p.str("DB_HOST", "localhost"),
		DBPort:      p.str("DB_PORT", "5432"),
		DBUser:      p.str("DB_USER", "postgres"),
		DBPassword:  p.str("DB_PASSWORD", ""),
		DBName:      p.str("DB_NAME", "librescript"),
		DBSSLMode:   p.str("DB_SSLMODE", "disable"),

		JWTSecret:          p.str("JWT_SECRET", ""),
		JWTTTL:             p.duration("JWT_TTL", 7*24*time.Hour),
		AllowedOrigins:     p.list("ALLOWED_ORIGINS", []string{"*"}),
		RateLimitPerMinute: p.number("RATE_LIMIT_PER_MINUTE", 60),

		LogLevel:      p.str("LOG_LEVEL", "info"),
		LogPath:       p.str("LOG_PATH", ""),
		LogMaxSizeMB:  p.number("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups: p.number("LOG_MAX_BACKUPS", 3),
		LogMaxAgeDays: p.number("LOG_MAX_AGE_DAYS", 7),
		LogCompress:   p.flag("LOG_COMPRESS", false),

		RedisAddr:     p.str("REDIS_ADDR", ""),
		RedisPassword: p.str("REDIS_PASSWORD", ""),
		RedisDB:       p.number("REDIS_DB", 0),

		MailProvider:           strings.ToLower(p.str("MAIL_PROVIDER", "smtp")),
		SMTPHost:               p.str("SMTP_HOST", ""),
		SMTPPort:               p.number("SMTP_PORT", 587),
		SMTPUsername:           p.str("SMTP_USERNAME", ""),
		SMTPPassword:           p.str("SMTP_PASSWORD", ""),
		SMTPFrom:               p.str("SMTP_FROM", "noreply@librescript.com"),
		SMTPFromName:           p.str("SMTP_FROM_NAME", "LibreScript"),
		TwilioAccountSID:       p.str("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:        p.str("TWILIO_AUTH_TOKEN", ""),
		TwilioVerifyServiceSID: p.str("TWILIO_VERIFY_SERVICE_SID", ""),
		VerifyURL:              p.str("VERIFY_URL", "http://localhost:5173/verify"),
		ResendCooldown:         p.duration("VERIFICATION_RESEND_COOLDOWN", time.Minute),

		AIServiceURL: strings.TrimRight(p.str("AI_SERVICE_URL", "http://localhost:5050"), "/"),
		AITimeout:    p.duration("AI_TIMEOUT", 60*time.Second),
	}

	if cfg.JWTSecret == "" {
		p.errs = append(p.errs, errors.New("JWT_SECRET must be set"))
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		p.errs = append(p.errs, fmt.Errorf("GIN_MODE: unknown mode %q", cfg.GinMode))
	}
	switch cfg.MailProvider {
	case "smtp", "twilio", "none":
	default:
		p.errs = append(p.errs, fmt.Errorf("MAIL_PROVIDER: unknown provider %q", cfg.MailProvider))
	}

	return cfg, errors.Join(p.errs...)
}

type parser struct {
	getenv func(string) string
	errs   []error
}

func (p *parser) str(key, def string) string {
	if v := strings.TrimSpace(p.getenv(key)); v != "" {
		return v
	}
	return def
}

func (p *parser) number(key string, def int) int {
	v := p.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (p *parser) flag(key string, def bool) bool {
	v := p.str(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return b
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := p.str(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}

func (p *parser) list(key string, def []string) []string {
	v := p.str(key, "")
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
