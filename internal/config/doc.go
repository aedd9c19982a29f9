// Package config manages application configuration for the PetzAdopt API.
//
// Settings are resolved by viper from three layers, later ones winning:
// built-in defaults, an optional YAML file named by CONFIG_FILE, and
// environment variables.
//
//	cfg, err := config.Load()
//	if err == nil {
//	    err = cfg.Validate()
//	}
//
// # Configuration Groups
//
//   - ServerConfig: HTTP server settings (port, timeouts, CORS origins)
//   - DatabaseConfig: SurrealDB connection settings
//   - JWTConfig: RS256 key paths or an HS256 secret, issuer, lifetime
//   - StripeConfig: payment processor key, currency, methods
//   - LedgerConfig: reversal policy, retry limit, reconciliation schedule
//   - RateLimitConfig: per-client request budget, stricter for payments
//
// # Keys
//
// File keys are the lower-case form of the environment names:
//
//	SERVER_PORT               server_port               (default 8080)
//	DB_HOST                   db_host                   (default localhost)
//	JWT_SECRET                jwt_secret                (empty: use RS256 keys)
//	JWT_EXPIRATION_MINS       jwt_expiration_mins       (default 60)
//	STRIPE_SECRET_KEY         stripe_secret_key
//	LEDGER_REVERSAL_POLICY    ledger_reversal_policy    (reject | clamp)
//	LEDGER_RECONCILE_INTERVAL ledger_reconcile_interval (default 1m)
//	RATE_LIMIT_PAYMENT_RATE   rate_limit_payment_rate   (default 10 per window)
//
// List values accept a YAML sequence or a comma-separated string.
package config
