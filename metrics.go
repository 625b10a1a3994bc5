package mailauth

import "sync/atomic"

// MetricID identifies one in-process counter.
type MetricID uint16

const (
	// MetricOTPSent counts passcodes issued and handed to the dispatcher.
	MetricOTPSent MetricID = iota
	// MetricOTPSendInvalidEmail counts sends rejected by validation.
	MetricOTPSendInvalidEmail
	// MetricOTPSendRateLimited counts sends denied by cooldown or quota.
	MetricOTPSendRateLimited
	// MetricOTPDeliveryFailure counts mail dispatcher failures.
	MetricOTPDeliveryFailure
	// MetricOTPVerifySuccess counts passcodes consumed successfully.
	MetricOTPVerifySuccess
	// MetricOTPVerifyFailure counts absent/expired/mismatched submissions.
	MetricOTPVerifyFailure
	// MetricOTPAttemptsExceeded counts flows reset after burning the
	// verification attempt cap.
	MetricOTPAttemptsExceeded
	// MetricLoginExisting counts verifications that resolved to an
	// existing account.
	MetricLoginExisting
	// MetricRegistrationRequired counts verifications for unknown emails.
	MetricRegistrationRequired
	// MetricRegisterSuccess counts accounts created.
	MetricRegisterSuccess
	// MetricRegisterInvalidName counts registrations rejected on the name.
	MetricRegisterInvalidName
	// MetricKeyIssuanceExhausted counts key minting giving up at the
	// attempt bound.
	MetricKeyIssuanceExhausted
	// MetricUserStoreFailure counts user store errors across operations.
	MetricUserStoreFailure

	metricIDCount
)

// Metrics holds the engine's atomic counters. All methods are nil-safe
// no-ops when metrics are disabled.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]atomic.Uint64
}

// MetricsSnapshot is a point-in-time copy of every counter.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// NewMetrics creates a Metrics instance; when cfg.Enabled is false every
// operation is a no-op and Snapshot returns an empty map.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Inc increments one counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	m.counters[id].Add(1)
}

// Get reads one counter.
func (m *Metrics) Get(id MetricID) uint64 {
	if m == nil || !m.enabled || id >= metricIDCount {
		return 0
	}
	return m.counters[id].Load()
}

// Snapshot deep-copies all counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{Counters: map[MetricID]uint64{}}
	if m == nil || !m.enabled {
		return snap
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		snap.Counters[id] = m.counters[id].Load()
	}
	return snap
}
