package mailauth

import (
	"testing"
	"time"
)

func newTestOTPStore() *otpStore {
	return newOTPStore(DefaultConfig().OTP)
}

func TestOTPStoreVerifyConsumesExactlyOnce(t *testing.T) {
	store := newTestOTPStore()

	code, err := store.Issue("alice@gmail.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected 6-character code, got %q", code)
	}

	if !store.Verify("alice@gmail.com", code) {
		t.Fatal("first verify should succeed")
	}
	if store.Verify("alice@gmail.com", code) {
		t.Fatal("second verify with the same code should fail")
	}
}

func TestOTPStoreRejectsWrongCode(t *testing.T) {
	store := newTestOTPStore()

	code, err := store.Issue("alice@gmail.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if store.Verify("alice@gmail.com", "zzzzzz") {
		t.Fatal("wrong code should not verify")
	}
	// A failed attempt must not consume the record.
	if !store.Verify("alice@gmail.com", code) {
		t.Fatal("correct code should still verify after a miss")
	}
}

func TestOTPStoreRejectsUnknownEmail(t *testing.T) {
	store := newTestOTPStore()
	if store.Verify("nobody@gmail.com", "abc123") {
		t.Fatal("verify without a record should fail")
	}
}

func TestOTPStoreExpiry(t *testing.T) {
	store := newTestOTPStore()

	code, err := store.Issue("alice@gmail.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Issue at t=0, verify at t=301: past the 300s TTL.
	expired := time.Now().Add(301 * time.Second)
	store.now = func() time.Time { return expired }

	if store.Verify("alice@gmail.com", code) {
		t.Fatal("expired code should not verify")
	}
	if store.pendingCount() != 0 {
		t.Fatal("expired record should be removed on read")
	}
}

func TestOTPStoreReissueInvalidatesPriorCode(t *testing.T) {
	store := newTestOTPStore()

	first, err := store.Issue("alice@gmail.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	second, err := store.Issue("alice@gmail.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if first != second && store.Verify("alice@gmail.com", first) {
		t.Fatal("overwritten code should not verify")
	}
	if !store.Verify("alice@gmail.com", second) {
		t.Fatal("latest code should verify")
	}
}

func TestOTPStoreExplicitExpire(t *testing.T) {
	store := newTestOTPStore()

	code, err := store.Issue("alice@gmail.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	store.Expire("alice@gmail.com")
	if store.Verify("alice@gmail.com", code) {
		t.Fatal("explicitly expired code should not verify")
	}
}

func TestOTPStorePurgeExpired(t *testing.T) {
	store := newTestOTPStore()

	if _, err := store.Issue("a@gmail.com"); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := store.Issue("b@gmail.com"); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	future := time.Now().Add(10 * time.Minute)
	store.now = func() time.Time { return future }

	if removed := store.PurgeExpired(); removed != 2 {
		t.Fatalf("expected 2 purged records, got %d", removed)
	}
	if store.pendingCount() != 0 {
		t.Fatal("expected empty store after purge")
	}
}
