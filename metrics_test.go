package mailauth

import (
	"context"
	"errors"
	"testing"
)

func TestMetricsCountSendOutcomes(t *testing.T) {
	users := newMockUserStore()
	mailer := &mockMailer{}
	engine := newTestEngine(t, users, mailer)

	if err := engine.SendOTP(context.Background(), "alice@gmail.com"); err != nil {
		t.Fatalf("SendOTP failed: %v", err)
	}
	if err := engine.SendOTP(context.Background(), "x@yahoo.com"); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
	if err := engine.SendOTP(context.Background(), "alice@gmail.com"); !errors.Is(err, ErrOTPRateLimited) {
		t.Fatalf("expected ErrOTPRateLimited, got %v", err)
	}

	snap := engine.MetricsSnapshot()
	if got := snap.Counters[MetricOTPSent]; got != 1 {
		t.Fatalf("MetricOTPSent = %d, want 1", got)
	}
	if got := snap.Counters[MetricOTPSendInvalidEmail]; got != 1 {
		t.Fatalf("MetricOTPSendInvalidEmail = %d, want 1", got)
	}
	if got := snap.Counters[MetricOTPSendRateLimited]; got != 1 {
		t.Fatalf("MetricOTPSendRateLimited = %d, want 1", got)
	}
}

func TestMetricsCountVerifyAndRegister(t *testing.T) {
	users := newMockUserStore()
	mailer := &mockMailer{}
	engine := newTestEngine(t, users, mailer)

	code := sendAndCapture(t, engine, mailer, "alice@gmail.com")
	if _, err := engine.VerifyOTP(context.Background(), "alice@gmail.com", code); err != nil {
		t.Fatalf("VerifyOTP failed: %v", err)
	}
	if _, err := engine.VerifyOTP(context.Background(), "alice@gmail.com", code); !errors.Is(err, ErrOTPInvalid) {
		t.Fatalf("expected ErrOTPInvalid, got %v", err)
	}
	if _, err := engine.Register(context.Background(), "alice@gmail.com", "Alice"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	snap := engine.MetricsSnapshot()
	if got := snap.Counters[MetricOTPVerifySuccess]; got != 1 {
		t.Fatalf("MetricOTPVerifySuccess = %d, want 1", got)
	}
	if got := snap.Counters[MetricOTPVerifyFailure]; got != 1 {
		t.Fatalf("MetricOTPVerifyFailure = %d, want 1", got)
	}
	if got := snap.Counters[MetricRegistrationRequired]; got != 1 {
		t.Fatalf("MetricRegistrationRequired = %d, want 1", got)
	}
	if got := snap.Counters[MetricRegisterSuccess]; got != 1 {
		t.Fatalf("MetricRegisterSuccess = %d, want 1", got)
	}
}

func TestMetricsDisabledSnapshotIsEmpty(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricOTPSent)
	if got := m.Get(MetricOTPSent); got != 0 {
		t.Fatalf("disabled metrics should stay zero, got %d", got)
	}
	if snap := m.Snapshot(); len(snap.Counters) != 0 {
		t.Fatalf("disabled snapshot should be empty, got %v", snap.Counters)
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.Inc(MetricOTPSent)
	if got := m.Get(MetricOTPSent); got != 0 {
		t.Fatalf("nil metrics Get = %d, want 0", got)
	}
	if snap := m.Snapshot(); len(snap.Counters) != 0 {
		t.Fatalf("nil snapshot should be empty, got %v", snap.Counters)
	}
}

func TestMetricsOutOfRangeIDIgnored(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(metricIDCount + 10)
	if got := m.Get(metricIDCount + 10); got != 0 {
		t.Fatalf("out-of-range Get = %d, want 0", got)
	}
}
