package mailauth

import (
	"context"
	"fmt"

	"github.com/sentivox/mailauth/internal"
)

// apiKeyIssuer mints long-lived API keys and guarantees global
// uniqueness against the user store with a bounded generate-and-check
// loop. The keyspace (64 symbols over 64 positions) makes a collision
// astronomically unlikely, so exhausting the bound means the random
// source is broken and the request must fail loudly rather than retry
// forever.
type apiKeyIssuer struct {
	cfg   APIKeyConfig
	users UserStore
}

func newAPIKeyIssuer(cfg APIKeyConfig, users UserStore) *apiKeyIssuer {
	return &apiKeyIssuer{cfg: cfg, users: users}
}

// IssueUnique returns the first candidate the user store reports as
// unused. Store failures abort immediately: the retry bound covers
// collisions only, never infrastructure errors.
func (i *apiKeyIssuer) IssueUnique(ctx context.Context) (string, error) {
	for attempt := 0; attempt < i.cfg.MaxIssueAttempts; attempt++ {
		key, err := internal.Code(i.cfg.Length, i.cfg.Alphabet)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrKeyIssuanceExhausted, err)
		}

		unique, err := i.users.IsAPIKeyUnique(ctx, key)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrUserStoreUnavailable, err)
		}
		if unique {
			return key, nil
		}
	}

	return "", ErrKeyIssuanceExhausted
}
