package mailauth

import (
	"context"
	"errors"
	"fmt"
)

// VerifyOTP checks the candidate passcode for the email and, on match,
// consumes it and resolves the account. The result distinguishes login
// (Exists true, account attached) from a first-time user who must
// continue to registration.
//
// Verification and consumption are one atomic step in the store: once a
// code verifies it is gone, and a concurrent or repeated submission of
// the same code fails with [ErrOTPInvalid]. Malformed candidates (wrong
// length after trimming) fail the same way without touching the store.
//
// The user-store lookup happens after consumption; if the store is down
// the code is already spent and the caller restarts the flow
// ([ErrUserStoreUnavailable]).
func (e *Engine) VerifyOTP(ctx context.Context, email, code string) (*VerifyOTPResult, error) {
	return e.verifyOTPForFlow(ctx, normalizeEmail(email), normalizeOTP(code), "")
}

// verifyOTPForFlow expects an already-normalized email and candidate.
func (e *Engine) verifyOTPForFlow(ctx context.Context, email, candidate, flowID string) (*VerifyOTPResult, error) {
	if e == nil || e.otps == nil || e.users == nil {
		return nil, ErrEngineNotReady
	}

	if len(candidate) != e.config.OTP.CodeLength {
		e.metricInc(MetricOTPVerifyFailure)
		e.emitAudit(ctx, auditEventOTPVerify, false, email, flowID, ErrOTPInvalid, func() map[string]string {
			return map[string]string{"reason": "malformed_code"}
		})
		return nil, ErrOTPInvalid
	}

	if !e.otps.Verify(email, candidate) {
		e.metricInc(MetricOTPVerifyFailure)
		e.emitAudit(ctx, auditEventOTPVerify, false, email, flowID, ErrOTPInvalid, nil)
		return nil, ErrOTPInvalid
	}

	account, err := e.users.GetAccountByEmail(ctx, email)
	switch {
	case err == nil:
		e.metricInc(MetricOTPVerifySuccess)
		e.metricInc(MetricLoginExisting)
		e.emitAudit(ctx, auditEventOTPVerify, true, email, flowID, nil, func() map[string]string {
			return map[string]string{"existing_account": "true"}
		})
		return &VerifyOTPResult{Exists: true, Account: &account}, nil

	case errors.Is(err, ErrAccountNotFound):
		e.metricInc(MetricOTPVerifySuccess)
		e.metricInc(MetricRegistrationRequired)
		e.emitAudit(ctx, auditEventOTPVerify, true, email, flowID, nil, func() map[string]string {
			return map[string]string{"existing_account": "false"}
		})
		return &VerifyOTPResult{Exists: false}, nil

	default:
		e.metricInc(MetricUserStoreFailure)
		e.emitAudit(ctx, auditEventOTPVerify, false, email, flowID, ErrUserStoreUnavailable, func() map[string]string {
			return map[string]string{"cause": err.Error()}
		})
		return nil, fmt.Errorf("%w: %v", ErrUserStoreUnavailable, err)
	}
}
