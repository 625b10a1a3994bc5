package mailauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Register creates a new account for a verified email: validates the
// inputs, mints a globally unique API key, optionally seeds it with free
// analysis tokens, and persists through the user store.
//
// Failure modes: [ErrInvalidEmail], [ErrInvalidName],
// [ErrKeyIssuanceExhausted] (systemic, audited loudly), and
// [ErrUserStoreUnavailable] for grant or persistence failures. When
// persistence fails after a key was minted, the key is simply discarded
// — it was never stored anywhere, so there is nothing to clean up.
func (e *Engine) Register(ctx context.Context, email, name string) (*Account, error) {
	return e.registerForFlow(ctx, normalizeEmail(email), name, "")
}

// registerForFlow expects an already-normalized email.
func (e *Engine) registerForFlow(ctx context.Context, email, name, flowID string) (*Account, error) {
	if e == nil || e.keys == nil || e.users == nil {
		return nil, ErrEngineNotReady
	}

	if !validEmail(email, e.config.Validation.AllowedDomains) {
		e.emitAudit(ctx, auditEventRegister, false, email, flowID, ErrInvalidEmail, nil)
		return nil, ErrInvalidEmail
	}

	trimmedName := strings.TrimSpace(name)
	if !validName(trimmedName, e.config.Validation) {
		e.metricInc(MetricRegisterInvalidName)
		e.emitAudit(ctx, auditEventRegister, false, email, flowID, ErrInvalidName, nil)
		return nil, ErrInvalidName
	}

	apiKey, err := e.keys.IssueUnique(ctx)
	if err != nil {
		if errors.Is(err, ErrKeyIssuanceExhausted) {
			e.metricInc(MetricKeyIssuanceExhausted)
			e.emitAudit(ctx, auditEventKeyExhausted, false, email, flowID, err, nil)
		} else {
			e.metricInc(MetricUserStoreFailure)
			e.emitAudit(ctx, auditEventRegister, false, email, flowID, err, nil)
		}
		return nil, err
	}

	if e.tokens != nil {
		if err := e.tokens.GrantFreeTokens(ctx, apiKey); err != nil {
			e.emitAudit(ctx, auditEventRegister, false, email, flowID, err, func() map[string]string {
				return map[string]string{"stage": "token_grant"}
			})
			return nil, fmt.Errorf("%w: free token grant: %v", ErrUserStoreUnavailable, err)
		}
	}

	account, err := e.users.CreateAccount(ctx, CreateAccountInput{
		Email:    email,
		Name:     trimmedName,
		APIKey:   apiKey,
		JoinDate: time.Now().UTC(),
	})
	if err != nil {
		e.metricInc(MetricUserStoreFailure)
		e.emitAudit(ctx, auditEventRegister, false, email, flowID, ErrUserStoreUnavailable, func() map[string]string {
			return map[string]string{"stage": "persist", "cause": err.Error()}
		})
		if errors.Is(err, ErrAccountExists) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUserStoreUnavailable, err)
	}

	e.metricInc(MetricRegisterSuccess)
	e.emitAudit(ctx, auditEventRegister, true, email, flowID, nil, nil)
	return &account, nil
}
