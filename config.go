package adminauth

import (
	"errors"
	"time"
)

// Config defines a public type used by adminauth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	API     APIConfig
	Refresh RefreshConfig
	TOTP    TOTPInputConfig
	Pending PendingConfig
	Invite  InviteConfig
	OAuth   OAuthConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig bounds every backend round trip. Exceeding RequestTimeout is
// classified as ErrServerUnavailable rather than hanging a flow indefinitely.
type APIConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	UserAgent      string
}

/*
====================================
REFRESH CONFIG
====================================
*/

// RefreshConfig defines a public type used by adminauth APIs.
//
// RefreshConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RefreshConfig struct {
	// SafetyMargin is how long before the access token's exp claim a refresh is
	// already triggered. An expired or undecodable token refreshes immediately.
	SafetyMargin time.Duration
}

/*
====================================
TOTP INPUT CONFIG
====================================
*/

// TOTPInputConfig defines a public type used by adminauth APIs.
//
// TOTPInputConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TOTPInputConfig struct {
	// Digits is the accepted one-time-code length. Codes of any other shape fail
	// client-side as ErrMalformedCode without a network round trip.
	Digits int
}

/*
====================================
PENDING CONFIG
====================================
*/

// PendingConfig defines a public type used by adminauth APIs.
//
// PendingConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PendingConfig struct {
	// MaxAge is how long a persisted PendingAuthContext stays usable. Older
	// records are treated as stale and discarded on read.
	MaxAge time.Duration
}

/*
====================================
INVITE CONFIG
====================================
*/

// InviteConfig defines a public type used by adminauth APIs.
//
// InviteConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type InviteConfig struct {
	ValidateTimeout time.Duration
}

/*
====================================
OAUTH CONFIG
====================================
*/

// OAuthConfig names the external identity provider whose assertions the backend
// accepts. Assertion acquisition itself lives in the oauth subpackage.
type OAuthConfig struct {
	Provider          string
	ReadyPollInterval time.Duration
	ReadyPollTimeout  time.Duration
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by adminauth APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by adminauth APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled bool
}

func defaultConfig() Config {
	return Config{
		API: APIConfig{
			RequestTimeout: 10 * time.Second,
			UserAgent:      "nebulahunt-admin",
		},
		Refresh: RefreshConfig{
			SafetyMargin: 30 * time.Second,
		},
		TOTP: TOTPInputConfig{
			Digits: 6,
		},
		Pending: PendingConfig{
			MaxAge: 10 * time.Minute,
		},
		Invite: InviteConfig{
			ValidateTimeout: 5 * time.Second,
		},
		OAuth: OAuthConfig{
			ReadyPollInterval: 200 * time.Millisecond,
			ReadyPollTimeout:  10 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
func (c *Config) Validate() error {
	if c.API.RequestTimeout <= 0 {
		return errors.New("API.RequestTimeout must be positive")
	}
	if c.Refresh.SafetyMargin < 0 {
		return errors.New("Refresh.SafetyMargin must not be negative")
	}
	if c.TOTP.Digits != 6 {
		return errors.New("TOTP.Digits must be 6")
	}
	if c.Pending.MaxAge <= 0 {
		return errors.New("Pending.MaxAge must be positive")
	}
	if c.Invite.ValidateTimeout <= 0 {
		return errors.New("Invite.ValidateTimeout must be positive")
	}
	if c.OAuth.ReadyPollInterval <= 0 || c.OAuth.ReadyPollTimeout <= 0 {
		return errors.New("OAuth poll interval and timeout must be positive")
	}
	if c.OAuth.ReadyPollInterval >= c.OAuth.ReadyPollTimeout {
		return errors.New("OAuth.ReadyPollInterval must be below ReadyPollTimeout")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit.BufferSize must be positive when audit is enabled")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	// All fields are value types; a shallow copy is a deep copy.
	return cfg
}
