package mailauth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Engine ties the OTP store, rate limiter and credential issuer together
// behind the three boundary operations. Engine instances are built once
// through the [Builder] and safe for concurrent use.
type Engine struct {
	config  Config
	otps    *otpStore
	limiter *rateLimiter
	keys    *apiKeyIssuer
	audit   *auditDispatcher
	metrics *Metrics
	users   UserStore
	mailer  MailDispatcher
	tokens  TokenGranter
}

const (
	auditEventOTPSend      = "otp_send"
	auditEventOTPVerify    = "otp_verify"
	auditEventRegister     = "register"
	auditEventRateLimited  = "otp_rate_limited"
	auditEventKeyExhausted = "api_key_exhausted"
	auditEventFlowReset    = "flow_reset"
)

// Close shuts down the audit dispatcher, draining buffered events.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded because the
// buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

// PurgeExpiredOTPs removes dead passcode records and reports how many
// were swept. Optional hygiene hook for long-lived hosts; expiry is
// otherwise enforced lazily on access.
func (e *Engine) PurgeExpiredOTPs() int {
	if e == nil || e.otps == nil {
		return 0
	}
	return e.otps.PurgeExpired()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	email, flowID string,
	failure error,
	metadata func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	event := AuditEvent{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		EventType: eventType,
		Email:     email,
		FlowID:    flowID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
	}
	if failure != nil {
		event.Error = failure.Error()
	}
	if metadata != nil {
		event.Metadata = metadata()
	}

	e.audit.Emit(ctx, event)
}
