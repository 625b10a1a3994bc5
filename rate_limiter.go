package mailauth

import (
	"sync"
	"time"
)

// rateLimitRecord tracks sends for one email. count reflects requests
// since windowAnchor; lastAttempt drives both the cooldown and the
// fixed-lookback window reset.
type rateLimitRecord struct {
	count        int
	windowAnchor time.Time
	lastAttempt  time.Time
}

// rateDecision is the outcome of one CheckAndRecord call.
type rateDecision struct {
	allowed    bool
	reason     ThrottleReason
	retryAfter time.Duration
}

// rateLimiter enforces the per-email resend cooldown and hourly quota.
// Records live for the process lifetime; a record whose last attempt is
// older than the window is logically reset on the next check. This is
// advisory throttling to protect the mail channel, not a security
// boundary: a caller who can vary the email trivially sidesteps it.
type rateLimiter struct {
	mu      sync.Mutex
	records map[string]*rateLimitRecord
	cfg     RateLimitConfig
	now     func() time.Time
}

func newRateLimiter(cfg RateLimitConfig) *rateLimiter {
	return &rateLimiter{
		records: make(map[string]*rateLimitRecord),
		cfg:     cfg,
		now:     time.Now,
	}
}

// CheckAndRecord evaluates the policy for the email and, when allowed,
// records the attempt in the same critical section. Rules in order:
// cooldown since the last attempt, quota within the lookback window,
// window reset when the last attempt is stale.
func (l *rateLimiter) CheckAndRecord(email string) rateDecision {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	record, ok := l.records[email]
	if ok {
		elapsed := now.Sub(record.lastAttempt)

		if elapsed < l.cfg.Cooldown {
			return rateDecision{
				reason:     ThrottleCooldown,
				retryAfter: l.cfg.Cooldown - elapsed,
			}
		}

		if record.count >= l.cfg.MaxPerWindow && elapsed < l.cfg.Window {
			return rateDecision{
				reason:     ThrottleQuota,
				retryAfter: l.cfg.Window - elapsed,
			}
		}

		if elapsed >= l.cfg.Window {
			record.count = 0
			record.windowAnchor = now
		}
	} else {
		record = &rateLimitRecord{windowAnchor: now}
		l.records[email] = record
	}

	record.count++
	record.lastAttempt = now

	return rateDecision{allowed: true}
}
