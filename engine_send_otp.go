package mailauth

import (
	"context"
	"fmt"
	"strconv"
)

// SendOTP validates the address, gates it through the rate limiter,
// issues a fresh passcode and hands it to the mail dispatcher.
//
// Failure modes: [ErrInvalidEmail] for shape or domain rejections, a
// *[ThrottleError] (matching [ErrOTPRateLimited]) with a retry-after
// hint when throttled, and [ErrMailDeliveryFailed] when the dispatcher
// cannot deliver — in which case the issued code is expired again so no
// live OTP outlives a failed send.
//
// Mail dispatch happens after every internal lock is released.
func (e *Engine) SendOTP(ctx context.Context, email string) error {
	return e.sendOTPForFlow(ctx, normalizeEmail(email), "")
}

// sendOTPForFlow expects an already-normalized email.
func (e *Engine) sendOTPForFlow(ctx context.Context, email, flowID string) error {
	if e == nil || e.otps == nil || e.limiter == nil || e.mailer == nil {
		return ErrEngineNotReady
	}

	if !validEmail(email, e.config.Validation.AllowedDomains) {
		e.metricInc(MetricOTPSendInvalidEmail)
		e.emitAudit(ctx, auditEventOTPSend, false, email, flowID, ErrInvalidEmail, nil)
		return ErrInvalidEmail
	}

	decision := e.limiter.CheckAndRecord(email)
	if !decision.allowed {
		throttled := &ThrottleError{
			Reason:     decision.reason,
			RetryAfter: decision.retryAfter,
		}
		e.metricInc(MetricOTPSendRateLimited)
		e.emitAudit(ctx, auditEventRateLimited, false, email, flowID, throttled, func() map[string]string {
			return map[string]string{
				"reason":      string(decision.reason),
				"retry_after": strconv.Itoa(throttled.RetryAfterSeconds()),
			}
		})
		return throttled
	}

	code, err := e.otps.Issue(email)
	if err != nil {
		// Random-source exhaustion; systemic, not retryable.
		e.emitAudit(ctx, auditEventOTPSend, false, email, flowID, err, nil)
		return fmt.Errorf("otp generation failed: %w", err)
	}

	if err := e.mailer.SendOTP(ctx, email, code, e.config.OTP.TTL); err != nil {
		// Drop the pending code: a passcode the user never received must
		// not stay verifiable.
		e.otps.Expire(email)
		e.metricInc(MetricOTPDeliveryFailure)
		e.emitAudit(ctx, auditEventOTPSend, false, email, flowID, ErrMailDeliveryFailed, func() map[string]string {
			return map[string]string{"cause": err.Error()}
		})
		return fmt.Errorf("%w: %v", ErrMailDeliveryFailed, err)
	}

	e.metricInc(MetricOTPSent)
	e.emitAudit(ctx, auditEventOTPSend, true, email, flowID, nil, nil)
	return nil
}
