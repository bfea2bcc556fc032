package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	domain "github.com/bryanwahyu/loglens/internal/domain/analysis"
)

// Outcome classifies a finished analysis attempt.
type Outcome int

const (
	OutcomeAnalyzed Outcome = iota
	OutcomeRejected
	OutcomeUnavailable
	OutcomeModelError
	numOutcomes
)

var riskLevels = []domain.RiskLevel{domain.RiskLow, domain.RiskMedium, domain.RiskHigh}

// Metrics counts responses by status class and analysis outcomes, and
// tracks remote model latency.
type Metrics struct {
	start    time.Time
	statuses [6]atomic.Uint64 // index = status / 100
	outcomes [numOutcomes]atomic.Uint64
	byRisk   [3]atomic.Uint64

	modelNanos    atomic.Int64
	modelMaxNanos atomic.Int64
}

func NewMetrics() *Metrics {
	return &Metrics{start: time.Now()}
}

var defaultMetrics = NewMetrics()

// Record counts an analysis attempt that produced no result.
func (m *Metrics) Record(o Outcome) {
	if o >= 0 && o < numOutcomes {
		m.outcomes[o].Add(1)
	}
}

// ObserveAnalysis counts a successful analysis with its model latency and
// parsed risk level.
func (m *Metrics) ObserveAnalysis(latency time.Duration, level domain.RiskLevel) {
	m.outcomes[OutcomeAnalyzed].Add(1)
	for i, l := range riskLevels {
		if l == level {
			m.byRisk[i].Add(1)
		}
	}

	n := int64(latency)
	m.modelNanos.Add(n)
	for {
		cur := m.modelMaxNanos.Load()
		if n <= cur || m.modelMaxNanos.CompareAndSwap(cur, n) {
			return
		}
	}
}

type AnalysisSnapshot struct {
	Succeeded         uint64            `json:"succeeded"`
	Rejected          uint64            `json:"rejected"`
	ModelUnavailable  uint64            `json:"model_unavailable"`
	ModelErrors       uint64            `json:"model_errors"`
	ByRisk            map[string]uint64 `json:"by_risk"`
	ModelLatencyAvgMS float64           `json:"model_latency_avg_ms"`
	ModelLatencyMaxMS float64           `json:"model_latency_max_ms"`
}

type Snapshot struct {
	UptimeSeconds  float64           `json:"uptime_seconds"`
	Responses      map[string]uint64 `json:"responses"`
	Analyses       AnalysisSnapshot  `json:"analyses"`
	Goroutines     int               `json:"goroutines"`
	HeapAllocBytes uint64            `json:"heap_alloc_bytes"`
}

func (m *Metrics) Snapshot() Snapshot {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	s := Snapshot{
		UptimeSeconds: time.Since(m.start).Seconds(),
		Responses:     make(map[string]uint64),
		Analyses: AnalysisSnapshot{
			Succeeded:        m.outcomes[OutcomeAnalyzed].Load(),
			Rejected:         m.outcomes[OutcomeRejected].Load(),
			ModelUnavailable: m.outcomes[OutcomeUnavailable].Load(),
			ModelErrors:      m.outcomes[OutcomeModelError].Load(),
			ByRisk:           make(map[string]uint64, len(riskLevels)),
		},
		Goroutines:     runtime.NumGoroutine(),
		HeapAllocBytes: mem.HeapAlloc,
	}
	for class := 1; class < len(m.statuses); class++ {
		if n := m.statuses[class].Load(); n > 0 {
			s.Responses[strconv.Itoa(class)+"xx"] = n
		}
	}
	for i, l := range riskLevels {
		s.Analyses.ByRisk[string(l)] = m.byRisk[i].Load()
	}
	if s.Analyses.Succeeded > 0 {
		s.Analyses.ModelLatencyAvgMS = float64(m.modelNanos.Load()) / float64(s.Analyses.Succeeded) / 1e6
	}
	s.Analyses.ModelLatencyMaxMS = float64(m.modelMaxNanos.Load()) / 1e6
	return s
}

// Middleware counts every response by status class.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		if class := wrapped.statusCode / 100; class > 0 && class < len(m.statuses) {
			m.statuses[class].Add(1)
		}
	})
}

func (m *Metrics) Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(m.Snapshot())
}

// RecordOutcome records on the process-wide metrics.
func RecordOutcome(o Outcome) { defaultMetrics.Record(o) }

// ObserveAnalysis records on the process-wide metrics.
func ObserveAnalysis(latency time.Duration, level domain.RiskLevel) {
	defaultMetrics.ObserveAnalysis(latency, level)
}

// MetricsMiddleware tracks responses on the process-wide metrics.
func MetricsMiddleware(next http.Handler) http.Handler { return defaultMetrics.Middleware(next) }

// MetricsHandler serves the process-wide metrics as JSON.
func MetricsHandler(w http.ResponseWriter, r *http.Request) { defaultMetrics.Handler(w, r) }
