package mailauth

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// FlowState names a position in the login/registration state machine.
type FlowState uint8

const (
	// FlowAwaitingEmail accepts an email address and sends an OTP.
	FlowAwaitingEmail FlowState = iota
	// FlowAwaitingOTP accepts passcode submissions.
	FlowAwaitingOTP
	// FlowAwaitingRegistration accepts a display name for a new account.
	FlowAwaitingRegistration
	// FlowCompleted is terminal; the flow holds the resolved account.
	FlowCompleted
)

// String returns the state name for logs and errors.
func (s FlowState) String() string {
	switch s {
	case FlowAwaitingEmail:
		return "awaiting_email"
	case FlowAwaitingOTP:
		return "awaiting_otp"
	case FlowAwaitingRegistration:
		return "awaiting_registration"
	case FlowCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Flow is one instance of the request-level state machine:
//
//	AwaitingEmail → AwaitingOTP → (Completed | AwaitingRegistration → Completed)
//
// Validation failures return an error without advancing state. The
// failed-verification counter lives here, server-side: after the
// configured cap the flow resets to AwaitingEmail and the pending
// passcode is invalidated, regardless of anything the client claims.
// Completed is terminal; start a fresh flow for the next sign-in.
//
// A Flow serializes its own transitions and may be shared across
// goroutines, though it models a single user session.
type Flow struct {
	id     string
	engine *Engine

	mu       sync.Mutex
	state    FlowState
	email    string
	attempts int
	account  *Account
}

// NewFlow starts a flow in FlowAwaitingEmail.
func (e *Engine) NewFlow() *Flow {
	return &Flow{
		id:     uuid.NewString(),
		engine: e,
		state:  FlowAwaitingEmail,
	}
}

// ID returns the flow's unique identifier, also attached to its audit
// events.
func (f *Flow) ID() string {
	return f.id
}

// State returns the current position in the state machine.
func (f *Flow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Account returns the resolved account once the flow is Completed.
func (f *Flow) Account() *Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.account
}

// SubmitEmail validates the address and dispatches an OTP. On success
// the flow advances to FlowAwaitingOTP. Throttle denials keep the flow
// in FlowAwaitingEmail and surface the retry-after through the returned
// *ThrottleError.
func (f *Flow) SubmitEmail(ctx context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case FlowAwaitingEmail:
	case FlowCompleted:
		return ErrFlowCompleted
	default:
		return ErrFlowState
	}

	normalized := normalizeEmail(email)
	if err := f.engine.sendOTPForFlow(ctx, normalized, f.id); err != nil {
		return err
	}

	f.email = normalized
	f.attempts = 0
	f.state = FlowAwaitingOTP
	return nil
}

// SubmitCode verifies a passcode submission. Malformed codes (wrong
// shape) are validation errors and do not consume an attempt. A wrong or
// expired code consumes one attempt; at the cap the flow resets to
// FlowAwaitingEmail, the pending passcode is expired, and
// ErrOTPAttemptsExceeded is returned. On success the flow moves to
// FlowCompleted for an existing account or FlowAwaitingRegistration for
// a new one.
func (f *Flow) SubmitCode(ctx context.Context, code string) (*VerifyOTPResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case FlowAwaitingOTP:
	case FlowCompleted:
		return nil, ErrFlowCompleted
	default:
		return nil, ErrFlowState
	}

	candidate := normalizeOTP(code)
	if len(candidate) != f.engine.config.OTP.CodeLength {
		return nil, ErrOTPInvalid
	}

	result, err := f.engine.verifyOTPForFlow(ctx, f.email, candidate, f.id)
	if err != nil {
		if !errors.Is(err, ErrOTPInvalid) {
			// Infrastructure failure after consumption; the caller decides
			// whether to restart. State is untouched.
			return nil, err
		}

		f.attempts++
		if f.attempts >= f.engine.config.OTP.MaxVerifyAttempts {
			f.engine.otps.Expire(f.email)
			f.engine.metricInc(MetricOTPAttemptsExceeded)
			f.engine.emitAudit(ctx, auditEventFlowReset, false, f.email, f.id, ErrOTPAttemptsExceeded, nil)
			f.email = ""
			f.attempts = 0
			f.state = FlowAwaitingEmail
			return nil, ErrOTPAttemptsExceeded
		}
		return nil, err
	}

	if result.Exists {
		f.account = result.Account
		f.state = FlowCompleted
	} else {
		f.state = FlowAwaitingRegistration
	}
	return result, nil
}

// SubmitName completes registration for a first-time user. On success
// the flow holds the new account and is Completed. Validation and
// infrastructure failures leave the flow in FlowAwaitingRegistration.
func (f *Flow) SubmitName(ctx context.Context, name string) (*Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case FlowAwaitingRegistration:
	case FlowCompleted:
		return nil, ErrFlowCompleted
	default:
		return nil, ErrFlowState
	}

	account, err := f.engine.registerForFlow(ctx, f.email, name, f.id)
	if err != nil {
		return nil, err
	}

	f.account = account
	f.state = FlowCompleted
	return account, nil
}
