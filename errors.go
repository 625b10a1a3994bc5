package mailauth

import "errors"

var (
	// ErrInvalidEmail reports an address that fails the basic shape check
	// or does not end with an allow-listed domain.
	ErrInvalidEmail = errors.New("invalid or disallowed email address")
	// ErrInvalidName reports a display name outside the letters/whitespace,
	// 2..19 character policy.
	ErrInvalidName = errors.New("invalid display name")
	// ErrOTPInvalid reports a passcode that is absent, expired, malformed,
	// or does not match the pending code for the email.
	ErrOTPInvalid = errors.New("invalid or expired otp")
	// ErrOTPRateLimited reports a send request denied by the cooldown or
	// hourly quota. The concrete error is a *ThrottleError carrying the
	// retry-after hint.
	ErrOTPRateLimited = errors.New("otp requests rate limited")
	// ErrOTPAttemptsExceeded reports a flow that burned its verification
	// attempts and was reset to the start.
	ErrOTPAttemptsExceeded = errors.New("otp verification attempts exceeded")
	// ErrKeyIssuanceExhausted reports failure to mint a collision-free API
	// key within the configured attempt bound. With a healthy random
	// source this is astronomically unlikely; treat it as a systemic fault.
	ErrKeyIssuanceExhausted = errors.New("api key issuance attempts exhausted")
	// ErrMailDeliveryFailed reports a mail dispatcher failure. Retryable by
	// the caller.
	ErrMailDeliveryFailed = errors.New("otp mail delivery failed")
	// ErrUserStoreUnavailable reports a user store failure. Retryable by
	// the caller; the engine never retries internally.
	ErrUserStoreUnavailable = errors.New("user store unavailable")
	// ErrAccountNotFound is returned by UserStore implementations when no
	// account exists for the given email.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountExists is returned by UserStore implementations when an
	// account already exists for the given email.
	ErrAccountExists = errors.New("account already exists")
	// ErrFlowState reports input submitted to a Flow in the wrong state.
	ErrFlowState = errors.New("input not valid in current flow state")
	// ErrFlowCompleted reports input submitted to a finished Flow.
	ErrFlowCompleted = errors.New("flow already completed")
	// ErrEngineNotReady reports an Engine used before Build wired its
	// dependencies.
	ErrEngineNotReady = errors.New("engine not initialized")
)
