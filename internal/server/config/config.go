// Package config handles configuration for the auth server, layering
// defaults, a JSON file, environment variables and command-line flags.
package config

import (
	"errors"
	"time"
)

// Config holds runtime settings for the gophauth server.
//
// Fields:
//   - EndpointAddrGRPC / EndpointAddrHTTP: bind addresses of the two transports.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty keeps users and tokens in memory.
//   - RedisURL: when set, refresh tokens live in Redis instead of the database.
//   - AccessSecretKey / RefreshSecretKey: HS256 keys; they must differ.
//   - Issuer / Audience: iss and aud of every minted token.
//   - AccessTokenValidityDuration / RefreshTokenValidityDuration: token lifetimes.
//   - RequestTimeout: deadline applied to each auth operation.
//   - ReaperInterval: how often expired refresh tokens are purged (0 disables).
//   - LogLevel: debug, info, warn or error.
//   - AdminEmail / AdminPassword: when set, this user is created with the
//     "admin" role at startup unless it already exists. Needed to sign in
//     against the in-memory directory.
type Config struct {
	EndpointAddrGRPC             string        `env:"GRPC_ADDR"`
	EndpointAddrHTTP             string        `env:"HTTP_ADDR"`
	DatabaseDSN                  string        `env:"DATABASE_DSN"`
	RedisURL                     string        `env:"REDIS_URL"`
	AccessSecretKey              string        `env:"ACCESS_SECRET_KEY"`
	RefreshSecretKey             string        `env:"REFRESH_SECRET_KEY"`
	Issuer                       string        `env:"JWT_ISSUER"`
	Audience                     string        `env:"JWT_AUDIENCE"`
	AccessTokenValidityDuration  time.Duration `env:"ACCESS_TOKEN_TTL"`
	RefreshTokenValidityDuration time.Duration `env:"REFRESH_TOKEN_TTL"`
	RequestTimeout               time.Duration `env:"REQUEST_TIMEOUT"`
	ReaperInterval               time.Duration `env:"REAPER_INTERVAL"`
	LogLevel                     string        `env:"LOG_LEVEL"`
	AdminEmail                   string        `env:"ADMIN_EMAIL"`
	AdminPassword                string        `env:"ADMIN_PASSWORD"`
}

// LoadDefaults populates Config with development defaults.
// NOTE: the keys are insecure for production and must be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.EndpointAddrHTTP = ":8080"
	c.DatabaseDSN = ""
	c.RedisURL = ""
	c.AccessSecretKey = "accessSecretKey"
	c.RefreshSecretKey = "refreshSecretKey"
	c.Issuer = "gophauth"
	c.Audience = "gophauth-clients"
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.RefreshTokenValidityDuration = 7 * 24 * time.Hour
	c.RequestTimeout = 5 * time.Second
	c.ReaperInterval = 10 * time.Minute
	c.LogLevel = "info"
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.AccessSecretKey == "" || c.RefreshSecretKey == "" {
		errs = append(errs, errors.New("access and refresh secret keys are required"))
	}
	if c.AccessSecretKey != "" && c.AccessSecretKey == c.RefreshSecretKey {
		errs = append(errs, errors.New("access and refresh secret keys must differ"))
	}
	if c.AccessTokenValidityDuration <= 0 || c.RefreshTokenValidityDuration <= 0 {
		errs = append(errs, errors.New("token validity durations must be positive"))
	}
	if c.Issuer == "" || c.Audience == "" {
		errs = append(errs, errors.New("issuer and audience are required"))
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		errs = append(errs, errors.New("admin email and password must be set together"))
	}
	if c.ReaperInterval < 0 {
		errs = append(errs, errors.New("reaper interval must not be negative"))
	}
	return errors.Join(errs...)
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment (including a .env file) and
// finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
