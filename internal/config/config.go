package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Stripe    StripeConfig
	Ledger    LedgerConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	Env             string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// DatabaseConfig holds SurrealDB connection settings
type DatabaseConfig struct {
	Host      string
	Port      string
	Namespace string
	Database  string
	User      string
	Password  string

	TLS             bool
	ConnectAttempts int
}

// JWTConfig holds JWT signing settings. A non-empty Secret selects HS256;
// otherwise the RS256 key pair is used.
type JWTConfig struct {
	PrivateKeyPath string
	PublicKeyPath  string
	Secret         string
	ExpirationMins int
	Issuer         string
}

// StripeConfig holds payment processor settings
type StripeConfig struct {
	SecretKey      string
	Currency       string
	PaymentMethods []string
	VerifyCharges  bool
}

// LedgerConfig holds donation ledger settings
type LedgerConfig struct {
	ReversalPolicy    string // reject or clamp
	MaxRetries        int
	AcceptPaused      bool
	ReconcileInterval time.Duration
	ReconcileBatch    int
	AuditOnStartup    bool
}

// RateLimitConfig holds request rate limiting settings
type RateLimitConfig struct {
	Rate   int
	Window time.Duration
	Burst  int

	// Stricter budget for payment intents, payment records and token issuance
	PaymentRate  int
	PaymentBurst int
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
}

// defaults maps every key to its default value. Keys double as environment
// variable names once upper-cased.
var defaults = map[string]interface{}{
	"server_port":             "8080",
	"server_env":              "development",
	"server_read_timeout":     15 * time.Second,
	"server_write_timeout":    15 * time.Second,
	"server_shutdown_timeout": 30 * time.Second,
	"cors_allowed_origins":    "http://localhost:5173",

	"db_host":      "localhost",
	"db_port":      "8000",
	"db_namespace": "petzadopt",
	"db_database":  "main",
	"db_user":      "root",
	"db_password":  "root",

	"db_tls":              false,
	"db_connect_attempts": 5,

	"jwt_private_key_path": "./keys/private.pem",
	"jwt_public_key_path":  "./keys/public.pem",
	"jwt_secret":           "",
	"jwt_expiration_mins":  60,
	"jwt_issuer":           "petzadopt",

	"stripe_secret_key":      "",
	"stripe_currency":        "usd",
	"stripe_payment_methods": "card",
	"stripe_verify_charges":  false,

	"ledger_reversal_policy":    "reject",
	"ledger_max_retries":        16,
	"ledger_accept_paused":      false,
	"ledger_reconcile_interval": time.Minute,
	"ledger_reconcile_batch":    100,
	"ledger_audit_on_startup":   true,

	"rate_limit_rate":   100,
	"rate_limit_window": time.Minute,
	"rate_limit_burst":  20,

	"rate_limit_payment_rate":  10,
	"rate_limit_payment_burst": 5,

	"log_level": "info",
}

// Load reads configuration from defaults, an optional YAML file named by
// CONFIG_FILE, and environment variables, in increasing precedence.
func Load() (*Config, error) {
	return LoadFile(os.Getenv("CONFIG_FILE"))
}

// LoadFile is Load with an explicit config file path (empty for none)
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	return &Config{
		Server: ServerConfig{
			Port:            v.GetString("server_port"),
			Env:             v.GetString("server_env"),
			ReadTimeout:     v.GetDuration("server_read_timeout"),
			WriteTimeout:    v.GetDuration("server_write_timeout"),
			ShutdownTimeout: v.GetDuration("server_shutdown_timeout"),
			AllowedOrigins:  getList(v, "cors_allowed_origins"),
		},
		Database: DatabaseConfig{
			Host:      v.GetString("db_host"),
			Port:      v.GetString("db_port"),
			Namespace: v.GetString("db_namespace"),
			Database:  v.GetString("db_database"),
			User:      v.GetString("db_user"),
			Password:  v.GetString("db_password"),

			TLS:             v.GetBool("db_tls"),
			ConnectAttempts: v.GetInt("db_connect_attempts"),
		},
		JWT: JWTConfig{
			PrivateKeyPath: v.GetString("jwt_private_key_path"),
			PublicKeyPath:  v.GetString("jwt_public_key_path"),
			Secret:         v.GetString("jwt_secret"),
			ExpirationMins: v.GetInt("jwt_expiration_mins"),
			Issuer:         v.GetString("jwt_issuer"),
		},
		Stripe: StripeConfig{
			SecretKey:      v.GetString("stripe_secret_key"),
			Currency:       strings.ToLower(v.GetString("stripe_currency")),
			PaymentMethods: getList(v, "stripe_payment_methods"),
			VerifyCharges:  v.GetBool("stripe_verify_charges"),
		},
		Ledger: LedgerConfig{
			ReversalPolicy:    strings.ToLower(v.GetString("ledger_reversal_policy")),
			MaxRetries:        v.GetInt("ledger_max_retries"),
			AcceptPaused:      v.GetBool("ledger_accept_paused"),
			ReconcileInterval: v.GetDuration("ledger_reconcile_interval"),
			ReconcileBatch:    v.GetInt("ledger_reconcile_batch"),
			AuditOnStartup:    v.GetBool("ledger_audit_on_startup"),
		},
		RateLimit: RateLimitConfig{
			Rate:   v.GetInt("rate_limit_rate"),
			Window: v.GetDuration("rate_limit_window"),
			Burst:  v.GetInt("rate_limit_burst"),

			PaymentRate:  v.GetInt("rate_limit_payment_rate"),
			PaymentBurst: v.GetInt("rate_limit_payment_burst"),
		},
		Log: LogConfig{
			Level: strings.ToLower(v.GetString("log_level")),
		},
	}, nil
}

// getList reads a comma-separated string (environment) or a YAML sequence
func getList(v *viper.Viper, key string) []string {
	if s, ok := v.Get(key).(string); ok {
		var out []string
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return v.GetStringSlice(key)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	// Server validation
	if c.Server.Port == "" {
		errs = append(errs, errors.New("SERVER_PORT is required"))
	}
	if c.Server.Env != "development" && c.Server.Env != "production" && c.Server.Env != "test" {
		errs = append(errs, fmt.Errorf("SERVER_ENV must be 'development', 'production', or 'test', got '%s'", c.Server.Env))
	}
	if len(c.Server.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must have at least one origin"))
	}

	// Database validation
	if c.Database.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.Database.Port == "" {
		errs = append(errs, errors.New("DB_PORT is required"))
	}
	if c.Database.Namespace == "" {
		errs = append(errs, errors.New("DB_NAMESPACE is required"))
	}
	if c.Database.Database == "" {
		errs = append(errs, errors.New("DB_DATABASE is required"))
	}

	// JWT validation - one signing mode must be fully configured in production
	if c.IsProduction() && c.JWT.Secret == "" {
		if c.JWT.PrivateKeyPath == "" {
			errs = append(errs, errors.New("JWT_PRIVATE_KEY_PATH or JWT_SECRET is required in production"))
		}
		if c.JWT.PublicKeyPath == "" {
			errs = append(errs, errors.New("JWT_PUBLIC_KEY_PATH or JWT_SECRET is required in production"))
		}
	}
	if c.JWT.Secret != "" && len(c.JWT.Secret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 characters"))
	}
	if c.JWT.ExpirationMins <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRATION_MINS must be positive"))
	}
	if c.JWT.Issuer == "" {
		errs = append(errs, errors.New("JWT_ISSUER is required"))
	}

	// Payment processor validation
	if c.IsProduction() && c.Stripe.SecretKey == "" {
		errs = append(errs, errors.New("STRIPE_SECRET_KEY is required in production"))
	}
	if c.Stripe.VerifyCharges && c.Stripe.SecretKey == "" {
		errs = append(errs, errors.New("STRIPE_SECRET_KEY is required when STRIPE_VERIFY_CHARGES is true"))
	}
	if len(c.Stripe.Currency) != 3 {
		errs = append(errs, fmt.Errorf("STRIPE_CURRENCY must be a 3-letter ISO code, got '%s'", c.Stripe.Currency))
	}
	if len(c.Stripe.PaymentMethods) == 0 {
		errs = append(errs, errors.New("STRIPE_PAYMENT_METHODS must have at least one method"))
	}

	// Ledger validation
	if c.Ledger.ReversalPolicy != "reject" && c.Ledger.ReversalPolicy != "clamp" {
		errs = append(errs, fmt.Errorf("LEDGER_REVERSAL_POLICY must be 'reject' or 'clamp', got '%s'", c.Ledger.ReversalPolicy))
	}
	if c.Ledger.MaxRetries <= 0 {
		errs = append(errs, errors.New("LEDGER_MAX_RETRIES must be positive"))
	}
	if c.Ledger.ReconcileInterval <= 0 {
		errs = append(errs, errors.New("LEDGER_RECONCILE_INTERVAL must be positive"))
	}

	// Rate limit validation
	if c.RateLimit.Rate <= 0 || c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RATE and RATE_LIMIT_WINDOW must be positive"))
	}
	if c.RateLimit.PaymentRate <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PAYMENT_RATE must be positive"))
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got '%s'", c.Log.Level))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
