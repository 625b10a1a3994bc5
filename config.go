package mailauth

import (
	"errors"
	"strings"
	"time"

	"github.com/sentivox/mailauth/internal"
)

// Config defines the engine's tunables. Config instances are intended to
// be set up during initialization and then treated as immutable.
type Config struct {
	OTP        OTPConfig
	RateLimit  RateLimitConfig
	APIKey     APIKeyConfig
	Validation ValidationConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

// OTPConfig controls passcode generation and lifetime.
type OTPConfig struct {
	CodeLength int
	Alphabet   string
	TTL        time.Duration
	// MaxVerifyAttempts caps failed code submissions per Flow before the
	// flow resets to the start. Enforced server-side in the flow object.
	MaxVerifyAttempts int
}

// RateLimitConfig controls per-email throttling of OTP issuance. The
// window is anchored on the last attempt (fixed lookback), not a true
// sliding window.
type RateLimitConfig struct {
	Cooldown     time.Duration
	MaxPerWindow int
	Window       time.Duration
}

// APIKeyConfig controls credential minting.
type APIKeyConfig struct {
	Length   int
	Alphabet string
	// MaxIssueAttempts bounds the generate-and-check loop in the
	// credential issuer. The loop is defensive, not load-bearing: hitting
	// the bound means the random source is broken, not that keys ran out.
	MaxIssueAttempts int
}

// ValidationConfig controls email and display-name acceptance.
type ValidationConfig struct {
	// AllowedDomains is the case-insensitive suffix allow-list, e.g.
	// "@gmail.com". Empty list rejects every address.
	AllowedDomains []string
	MinNameLength  int
	MaxNameLength  int
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the production defaults: 6-character lowercase
// OTPs valid for 5 minutes, a 60 second resend cooldown with 5 sends per
// hour, 64-character API keys with 5 issuance attempts, and the
// gmail/outlook domain allow-list.
func DefaultConfig() Config {
	return Config{
		OTP: OTPConfig{
			CodeLength:        6,
			Alphabet:          internal.OTPAlphabet,
			TTL:               300 * time.Second,
			MaxVerifyAttempts: 3,
		},
		RateLimit: RateLimitConfig{
			Cooldown:     60 * time.Second,
			MaxPerWindow: 5,
			Window:       time.Hour,
		},
		APIKey: APIKeyConfig{
			Length:           64,
			Alphabet:         internal.APIKeyAlphabet,
			MaxIssueAttempts: 5,
		},
		Validation: ValidationConfig{
			AllowedDomains: []string{"@gmail.com", "@outlook.com"},
			MinNameLength:  2,
			MaxNameLength:  19,
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

// Validate reports the first configuration problem found, or nil.
func (c Config) Validate() error {
	if c.OTP.CodeLength <= 0 {
		return errors.New("OTP.CodeLength must be positive")
	}
	if len(c.OTP.Alphabet) == 0 {
		return errors.New("OTP.Alphabet must not be empty")
	}
	if strings.ToLower(c.OTP.Alphabet) != c.OTP.Alphabet {
		return errors.New("OTP.Alphabet must be lowercase; comparisons are case-insensitive")
	}
	if c.OTP.TTL <= 0 {
		return errors.New("OTP.TTL must be positive")
	}
	if c.OTP.MaxVerifyAttempts <= 0 {
		return errors.New("OTP.MaxVerifyAttempts must be positive")
	}
	if c.RateLimit.Cooldown <= 0 {
		return errors.New("RateLimit.Cooldown must be positive")
	}
	if c.RateLimit.MaxPerWindow <= 0 {
		return errors.New("RateLimit.MaxPerWindow must be positive")
	}
	if c.RateLimit.Window < c.RateLimit.Cooldown {
		return errors.New("RateLimit.Window must be at least the cooldown")
	}
	if c.APIKey.Length <= 0 {
		return errors.New("APIKey.Length must be positive")
	}
	if len(c.APIKey.Alphabet) == 0 {
		return errors.New("APIKey.Alphabet must not be empty")
	}
	if c.APIKey.MaxIssueAttempts <= 0 {
		return errors.New("APIKey.MaxIssueAttempts must be positive")
	}
	if len(c.Validation.AllowedDomains) == 0 {
		return errors.New("Validation.AllowedDomains must not be empty")
	}
	for _, d := range c.Validation.AllowedDomains {
		if !strings.HasPrefix(d, "@") || len(d) < 3 {
			return errors.New("Validation.AllowedDomains entries must look like \"@example.com\"")
		}
	}
	if c.Validation.MinNameLength < 1 || c.Validation.MaxNameLength < c.Validation.MinNameLength {
		return errors.New("Validation name length bounds are inconsistent")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Validation.AllowedDomains = append([]string(nil), cfg.Validation.AllowedDomains...)
	return out
}
