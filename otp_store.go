package mailauth

import (
	"crypto/sha256"
	"crypto/subtle"
	"sync"
	"time"

	"github.com/sentivox/mailauth/internal"
)

// otpRecord is the single pending passcode for one email. The plaintext
// code is never retained; verification compares SHA-256 digests in
// constant time.
type otpRecord struct {
	codeHash  [32]byte
	issuedAt  time.Time
	expiresAt time.Time
}

// otpStore holds at most one live passcode per normalized email behind a
// single lock. Expiry is lazy on read plus the explicit Expire/
// PurgeExpired paths; there is exactly one deletion site per access, so
// consumption can never race a background timer.
type otpStore struct {
	mu       sync.Mutex
	pending  map[string]otpRecord
	length   int
	alphabet string
	ttl      time.Duration
	now      func() time.Time
}

func newOTPStore(cfg OTPConfig) *otpStore {
	return &otpStore{
		pending:  make(map[string]otpRecord),
		length:   cfg.CodeLength,
		alphabet: cfg.Alphabet,
		ttl:      cfg.TTL,
		now:      time.Now,
	}
}

// Issue generates a fresh code for the email, replacing any pending
// record (the old code is dead the moment a new one is issued), and
// returns the plaintext for delivery.
func (s *otpStore) Issue(email string) (string, error) {
	code, err := internal.Code(s.length, s.alphabet)
	if err != nil {
		return "", err
	}

	now := s.now()
	record := otpRecord{
		codeHash:  sha256.Sum256([]byte(code)),
		issuedAt:  now,
		expiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	s.pending[email] = record
	s.mu.Unlock()

	return code, nil
}

// Verify atomically checks the candidate against the pending record and
// consumes it on match. It reports false (never an error) when no record
// exists, the record expired, or the code differs. A successful verify
// deletes the record inside the same critical section, so a concurrent
// replay of the same code loses.
func (s *otpStore) Verify(email, candidate string) bool {
	candidateHash := sha256.Sum256([]byte(candidate))

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.pending[email]
	if !ok {
		return false
	}
	if !s.now().Before(record.expiresAt) {
		delete(s.pending, email)
		return false
	}
	if subtle.ConstantTimeCompare(record.codeHash[:], candidateHash[:]) != 1 {
		return false
	}

	delete(s.pending, email)
	return true
}

// Expire removes the pending record for the email, if any. Used as a
// safety net when a send fails after issuance and by callers that want
// to invalidate eagerly.
func (s *otpStore) Expire(email string) {
	s.mu.Lock()
	delete(s.pending, email)
	s.mu.Unlock()
}

// PurgeExpired sweeps dead records and returns how many were removed.
// Purely a memory-hygiene aid for long-lived processes; correctness does
// not depend on it.
func (s *otpStore) PurgeExpired() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for email, record := range s.pending {
		if !now.Before(record.expiresAt) {
			delete(s.pending, email)
			removed++
		}
	}
	return removed
}

func (s *otpStore) pendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
