package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	ServerPort  int

	DatabaseURL string
	DBDriver    string

	LogLevel string
	LogFile  string

	SessionSecret    []byte
	SessionDir       string
	AdminUsername    string
	AdminPassword    string
	AdminPassHash    string
	AdminTokenSecret []byte
	AdminSessionTTL  time.Duration

	InvoiceDir      string
	InvoiceFont     string
	InvoiceCompress bool
	StaticDir       string

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	CSRFEnabled  bool
	CookieSecure bool
}

// Load reads .env (if present) and the process environment once at startup.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	port := EnvIntDefault("PORT", 0)
	if port == 0 {
		port = EnvIntDefault("SERVER_PORT", 3000)
	}

	cfg := &Config{
		ServiceName: EnvDefault("SERVICE_NAME", "medicart"),
		ServerPort:  port,

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBDriver:    EnvDefault("DB_DRIVER", "pgx"),

		LogLevel: EnvDefault("LOG_LEVEL", "info"),
		LogFile:  os.Getenv("LOG_FILE"),

		SessionSecret: []byte(os.Getenv("SESSION_SECRET")),
		SessionDir:    EnvDefault("SESSION_DIR", "sessions"),
		AdminUsername: EnvDefault("ADMIN_USERNAME", "admin"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminPassHash: os.Getenv("ADMIN_PASSWORD_HASH"),

		InvoiceDir:      EnvDefault("INVOICE_DIR", "invoices"),
		InvoiceFont:     EnvDefault("INVOICE_FONT", "public/fonts/NotoSans-Regular.ttf"),
		InvoiceCompress: EnvBoolDefault("INVOICE_COMPRESS", true),
		StaticDir:       EnvDefault("STATIC_DIR", "public"),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "product"),

		CSRFEnabled:  EnvBoolDefault("CSRF_ENABLED", true),
		CookieSecure: EnvBoolDefault("COOKIE_SECURE", false),
	}

	cfg.AdminTokenSecret = []byte(EnvDefault("ADMIN_TOKEN_SECRET", string(cfg.SessionSecret)))

	ttl, err := time.ParseDuration(EnvDefault("ADMIN_SESSION_TTL", "12h"))
	if err != nil {
		return nil, fmt.Errorf("ADMIN_SESSION_TTL: %w", err)
	}
	cfg.AdminSessionTTL = ttl

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if err := NonEmpty(c.DatabaseURL, "DATABASE_URL"); err != nil {
		errs = append(errs, err)
	}
	if err := NonEmptyBytes(c.SessionSecret, "SESSION_SECRET"); err != nil {
		errs = append(errs, err)
	}
	if c.AdminPassword == "" && c.AdminPassHash == "" {
		errs = append(errs, errors.New("missing required env ADMIN_PASSWORD or ADMIN_PASSWORD_HASH"))
	}
	if c.DBDriver != "pgx" && c.DBDriver != "pq" {
		errs = append(errs, fmt.Errorf("DB_DRIVER must be pgx or pq, got %q", c.DBDriver))
	}
	if c.AdminSessionTTL <= 0 {
		errs = append(errs, errors.New("ADMIN_SESSION_TTL must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}
