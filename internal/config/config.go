package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
// It is built once at startup and passed by reference to every component.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"     validate:"required"`
	Firebase  FirebaseConfig  `mapstructure:"firebase"   validate:"required"`
	Store     StoreConfig     `mapstructure:"store"      validate:"required"`
	Gateway   GatewayConfig   `mapstructure:"gateway"    validate:"required"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" validate:"required"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	ReadTimeoutSeconds     int `mapstructure:"read_timeout_seconds"     validate:"gt=0"`
	WriteTimeoutSeconds    int `mapstructure:"write_timeout_seconds"    validate:"gt=0"`
	IdleTimeoutSeconds     int `mapstructure:"idle_timeout_seconds"     validate:"gt=0"`
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`

	// TrustProxyHeaders takes the client address from X-Forwarded-For and
	// X-Real-IP. Enable it only behind a proxy that overwrites them.
	TrustProxyHeaders bool `mapstructure:"trust_proxy_headers"`
}

// FirebaseConfig contains the settings for the Firebase identity provider
// and its Identity Toolkit REST API.
type FirebaseConfig struct {
	ProjectID string `mapstructure:"project_id" validate:"required"`

	// CredentialsFile is the service account key file, read once at startup.
	CredentialsFile string `mapstructure:"credentials_file" validate:"required"`

	// APIKey is the Web API key used for password sign-in and reset emails.
	APIKey string `mapstructure:"api_key" validate:"required"`

	// CheckRevoked makes token verification also confirm the account still
	// exists and its tokens were not revoked.
	CheckRevoked bool `mapstructure:"check_revoked"`

	// IdentityToolkitEndpoint overrides the REST endpoint, e.g. for the
	// Firebase Auth emulator.
	IdentityToolkitEndpoint string `mapstructure:"identity_toolkit_endpoint" validate:"omitempty,url"`
}

// StoreConfig selects and configures the profile document store.
type StoreConfig struct {
	Backend        string `mapstructure:"backend"          validate:"required,oneof=firestore postgres"`
	Collection     string `mapstructure:"collection"       validate:"required"`
	DatabaseURL    string `mapstructure:"database_url"     validate:"required_if=Backend postgres"`
	MigrateOnStart bool   `mapstructure:"migrate_on_start"`
}

// GatewayConfig bounds every call made to the identity provider and store.
type GatewayConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds" validate:"required,gt=0,lte=120"`
}

// RateLimitConfig limits credential-bearing public endpoints per client IP.
type RateLimitConfig struct {
	LoginPerMinute int `mapstructure:"login_per_minute" validate:"required,gt=0"`
	ResetPerMinute int `mapstructure:"reset_per_minute" validate:"required,gt=0"`
	Burst          int `mapstructure:"burst"            validate:"required,gt=0"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// GatewayCallsPerRequest is the most sequential gateway calls a single
// request makes (DELETE /account: verify, delete account, delete profile).
const GatewayCallsPerRequest = 3

// ResponseHeadroom is the time left after the last gateway call times out
// for the handler to write its 503.
const ResponseHeadroom = 5 * time.Second

// CheckTimeouts returns an error unless the server write timeout outlasts
// GatewayCallsPerRequest gateway timeouts plus ResponseHeadroom.
func (c *Config) CheckTimeouts() error {
	gateway := time.Duration(c.Gateway.TimeoutSeconds) * time.Second
	write := time.Duration(c.Server.WriteTimeoutSeconds) * time.Second

	need := GatewayCallsPerRequest*gateway + ResponseHeadroom
	if write < need {
		return fmt.Errorf("server.write_timeout_seconds (%s) must be at least %d x gateway.timeout_seconds + %s (%s)",
			write, GatewayCallsPerRequest, ResponseHeadroom, need)
	}
	return nil
}
