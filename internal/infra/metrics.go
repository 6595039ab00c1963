package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	ticksGenerated  atomic.Uint64
	ordersSubmitted atomic.Uint64
	ordersFilled    atomic.Uint64
	errorsTotal     atomic.Uint64

	// Command latency tracking (simulator loop)
	latencySumNs atomic.Int64
	latencyCount atomic.Uint64

	// Gauges
	streamClients atomic.Int32
	connected     atomic.Int32 // 1 = live, 0 = offline
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordCommand records a processed loop command with latency.
func (m *Metrics) RecordCommand(latencyNs int64) {
	m.latencySumNs.Add(latencyNs)
	m.latencyCount.Add(1)
}

// RecordTick records a generated price tick.
func (m *Metrics) RecordTick() {
	m.ticksGenerated.Add(1)
}

// RecordOrderSubmitted records an accepted order submission.
func (m *Metrics) RecordOrderSubmitted() {
	m.ordersSubmitted.Add(1)
}

// RecordOrderFilled records a filled order.
func (m *Metrics) RecordOrderFilled() {
	m.ordersFilled.Add(1)
}

// RecordError records a rejected request or internal failure.
func (m *Metrics) RecordError() {
	m.errorsTotal.Add(1)
}

// SetConnected sets the account connectivity gauge.
func (m *Metrics) SetConnected(connected bool) {
	if connected {
		m.connected.Store(1)
	} else {
		m.connected.Store(0)
	}
}

// IncrementStreamClients increments connected stream clients by 1.
func (m *Metrics) IncrementStreamClients() {
	m.streamClients.Add(1)
}

// DecrementStreamClients decrements connected stream clients by 1.
func (m *Metrics) DecrementStreamClients() {
	m.streamClients.Add(-1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	TicksGenerated  uint64    `json:"ticks_generated"`
	OrdersSubmitted uint64    `json:"orders_submitted"`
	OrdersFilled    uint64    `json:"orders_filled"`
	ErrorsTotal     uint64    `json:"errors_total"`
	AvgLatencyNs    int64     `json:"avg_latency_ns"`
	StreamClients   int32     `json:"stream_clients"`
	Connected       bool      `json:"connected"`
	Timestamp       time.Time `json:"timestamp"`
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgLatency int64
	count := m.latencyCount.Load()
	if count > 0 {
		avgLatency = m.latencySumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		TicksGenerated:  m.ticksGenerated.Load(),
		OrdersSubmitted: m.ordersSubmitted.Load(),
		OrdersFilled:    m.ordersFilled.Load(),
		ErrorsTotal:     m.errorsTotal.Load(),
		AvgLatencyNs:    avgLatency,
		StreamClients:   m.streamClients.Load(),
		Connected:       m.connected.Load() == 1,
		Timestamp:       time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.ticksGenerated.Store(0)
	m.ordersSubmitted.Store(0)
	m.ordersFilled.Store(0)
	m.errorsTotal.Store(0)
	m.latencySumNs.Store(0)
	m.latencyCount.Store(0)
	m.streamClients.Store(0)
	m.connected.Store(0)
}
