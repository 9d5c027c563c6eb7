package observability

import (
	"strconv"
	"sync"
	"time"
)

// Assist pipeline outcomes tracked by Metrics.
const (
	AssistOutcomeReplied = "replied"
	AssistOutcomeHandoff = "handoff"
	AssistOutcomeError   = "error"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu             sync.Mutex
	requestCount   map[string]int64
	errorCount     map[string]int64
	assistOutcomes map[string]int64
	notifySent     int64
	notifyFailed   int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:   make(map[string]int64),
		errorCount:     make(map[string]int64),
		assistOutcomes: make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordAssistOutcome counts pipeline results per outcome.
func (m *Metrics) RecordAssistOutcome(outcome string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assistOutcomes[outcome]++
}

// RecordNotification counts delivery attempts by result.
func (m *Metrics) RecordNotification(success bool) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if success {
		m.notifySent++
	} else {
		m.notifyFailed++
	}
}

// AssistOutcome returns the count recorded for one outcome.
func (m *Metrics) AssistOutcome(outcome string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.assistOutcomes[outcome]
}
