package mailauth

import (
	"context"
	"time"
)

// Account is the durable record owned by the UserStore. The engine only
// constructs candidates; persistence and uniqueness (on both Email and
// APIKey) belong to the store.
type Account struct {
	Email    string
	Name     string
	APIKey   string
	JoinDate time.Time
}

// CreateAccountInput carries the candidate record handed to
// [UserStore.CreateAccount]. Email is already normalized and Name already
// trimmed when the engine builds it.
type CreateAccountInput struct {
	Email    string
	Name     string
	APIKey   string
	JoinDate time.Time
}

// UserStore is the external collaborator holding durable accounts.
// Implementations must keep both email and API key unique. A Redis-backed
// reference implementation lives in store/redisstore.
type UserStore interface {
	// GetAccountByEmail returns the account for a normalized email, or
	// ErrAccountNotFound.
	GetAccountByEmail(ctx context.Context, email string) (Account, error)
	// IsAPIKeyUnique reports whether no account currently holds the key.
	IsAPIKeyUnique(ctx context.Context, apiKey string) (bool, error)
	// CreateAccount persists a new account, failing with ErrAccountExists
	// when the email is already taken.
	CreateAccount(ctx context.Context, input CreateAccountInput) (Account, error)
}

// MailDispatcher is the external collaborator delivering passcodes. The
// engine calls it outside of every internal lock; implementations own
// their timeouts. An SMTP-pool implementation lives in mail/smtpmail.
type MailDispatcher interface {
	SendOTP(ctx context.Context, email, code string, ttl time.Duration) error
}

// TokenGranter is an optional collaborator that seeds a freshly minted
// API key with free analysis tokens before the account is persisted.
// When unset, registration skips the grant.
type TokenGranter interface {
	GrantFreeTokens(ctx context.Context, apiKey string) error
}

// VerifyOTPResult is the tagged success result of [Engine.VerifyOTP].
// Exists distinguishes login (account returned) from a first-time user
// who must continue to registration.
type VerifyOTPResult struct {
	Exists  bool
	Account *Account
}

// ThrottleReason names the rate-limit rule that denied a send.
type ThrottleReason string

const (
	// ThrottleCooldown denies a send inside the per-email resend cooldown.
	ThrottleCooldown ThrottleReason = "cooldown"
	// ThrottleQuota denies a send past the per-email hourly quota.
	ThrottleQuota ThrottleReason = "quota"
)

// ThrottleError is the structured denial returned by [Engine.SendOTP]
// when the rate limiter rejects the request. It matches
// [ErrOTPRateLimited] under [errors.Is].
type ThrottleError struct {
	Reason ThrottleReason
	// RetryAfter is the wait before the caller may retry. Always positive
	// for cooldown denials; for quota denials it is the window remainder.
	RetryAfter time.Duration
}

func (e *ThrottleError) Error() string {
	return "otp requests rate limited (" + string(e.Reason) + ")"
}

// Is makes ThrottleError values match the ErrOTPRateLimited sentinel.
func (e *ThrottleError) Is(target error) bool {
	return target == ErrOTPRateLimited
}

// RetryAfterSeconds rounds the wait up to whole seconds for callers that
// surface it in a Retry-After style header or message.
func (e *ThrottleError) RetryAfterSeconds() int {
	secs := int((e.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
