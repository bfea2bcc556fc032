package analysis

import (
	"time"

	"github.com/google/uuid"
)

// ID identifier type
type ID string

// NewID returns a fresh random analysis ID.
func NewID() ID { return ID(uuid.New().String()) }

// Request is a single inbound log line to classify.
type Request struct {
	LogEntry string `json:"log_entry"`
}

// NewRequest validates the raw log entry. Only the empty string is rejected;
// whitespace and any other content is passed to the model verbatim.
func NewRequest(logEntry string) (Request, error) {
	if logEntry == "" {
		return Request{}, ErrEmptyLogEntry
	}
	return Request{LogEntry: logEntry}, nil
}

// Result is the outcome of a successful analysis.
type Result struct {
	ID        ID            `json:"id"`
	LogEntry  string        `json:"log_entry"`
	Analysis  string        `json:"analysis"`
	Report    Report        `json:"report"`
	Model     string        `json:"model"`
	CreatedAt time.Time     `json:"created_at"`
	Duration  time.Duration `json:"duration_ns"`
}

// Record is the archived, flattened form of a Result.
type Record struct {
	ID                   ID        `json:"id"`
	LogEntry             string    `json:"log_entry"`
	Analysis             string    `json:"analysis"`
	ThreatClassification string    `json:"threat_classification"`
	RiskScore            int       `json:"risk_score"`
	RiskLevel            string    `json:"risk_level"`
	Summary              string    `json:"summary"`
	Model                string    `json:"model"`
	DurationMS           int64     `json:"duration_ms"`
	CreatedAt            time.Time `json:"created_at"`
}

// ToRecord flattens r for storage.
func (r *Result) ToRecord() *Record {
	return &Record{
		ID:                   r.ID,
		LogEntry:             r.LogEntry,
		Analysis:             r.Analysis,
		ThreatClassification: r.Report.ThreatClassification,
		RiskScore:            r.Report.RiskScore,
		RiskLevel:            string(r.Report.RiskLevel),
		Summary:              r.Report.Summary,
		Model:                r.Model,
		DurationMS:           r.Duration.Milliseconds(),
		CreatedAt:            r.CreatedAt,
	}
}
