package adminauth

import "sync/atomic"

// MetricID defines a public type used by adminauth APIs.
//
// MetricID instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricID uint16

const (
	// MetricLoginSuccess is an exported constant or variable used by the session controller.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure is an exported constant or variable used by the session controller.
	MetricLoginFailure
	// MetricOAuthLoginSuccess is an exported constant or variable used by the session controller.
	MetricOAuthLoginSuccess
	// MetricOAuthLoginFailure is an exported constant or variable used by the session controller.
	MetricOAuthLoginFailure
	// MetricSecondFactorRequired is an exported constant or variable used by the session controller.
	MetricSecondFactorRequired
	// MetricSecondFactorSuccess is an exported constant or variable used by the session controller.
	MetricSecondFactorSuccess
	// MetricSecondFactorFailure is an exported constant or variable used by the session controller.
	MetricSecondFactorFailure
	// MetricMalformedCodeRejected is an exported constant or variable used by the session controller.
	MetricMalformedCodeRejected
	// MetricRefreshSuccess is an exported constant or variable used by the session controller.
	MetricRefreshSuccess
	// MetricRefreshFailure is an exported constant or variable used by the session controller.
	MetricRefreshFailure
	// MetricRefreshCoalesced is an exported constant or variable used by the session controller.
	MetricRefreshCoalesced
	// MetricForcedLogout is an exported constant or variable used by the session controller.
	MetricForcedLogout
	// MetricLogout is an exported constant or variable used by the session controller.
	MetricLogout
	// MetricInviteValidated is an exported constant or variable used by the session controller.
	MetricInviteValidated
	// MetricInviteRejected is an exported constant or variable used by the session controller.
	MetricInviteRejected
	// MetricRegistrationStarted is an exported constant or variable used by the session controller.
	MetricRegistrationStarted
	// MetricRegistrationCompleted is an exported constant or variable used by the session controller.
	MetricRegistrationCompleted
	// MetricBootstrapStarted is an exported constant or variable used by the session controller.
	MetricBootstrapStarted
	// MetricStaleContextDiscarded is an exported constant or variable used by the session controller.
	MetricStaleContextDiscarded

	metricIDCount
)

// Metrics holds lock-free counters for the controller's lifecycle events.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]atomic.Uint64
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// NewMetrics creates a new [Metrics] instance. When Enabled is false, all
// operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Inc describes the inc operation and its observable behavior.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	m.counters[id].Add(1)
}

// Get describes the get operation and its observable behavior.
func (m *Metrics) Get(id MetricID) uint64 {
	if m == nil || !m.enabled || id >= metricIDCount {
		return 0
	}
	return m.counters[id].Load()
}

// Snapshot describes the snapshot operation and its observable behavior.
func (m *Metrics) Snapshot() MetricsSnapshot {
	out := MetricsSnapshot{Counters: make(map[MetricID]uint64, metricIDCount)}
	if m == nil || !m.enabled {
		return out
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		out.Counters[id] = m.counters[id].Load()
	}
	return out
}
