package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/bryanwahyu/loglens/internal/domain/analysis"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// EnsureSchema creates the archive table when missing.
func (r *AnalysisRepository) EnsureSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS log_analyses (
  id VARCHAR(64) NOT NULL PRIMARY KEY,
  log_entry MEDIUMTEXT NOT NULL,
  analysis MEDIUMTEXT NOT NULL,
  threat_classification TEXT NOT NULL,
  risk_score INT NOT NULL,
  risk_level VARCHAR(16) NOT NULL,
  summary TEXT NOT NULL,
  model VARCHAR(128) NOT NULL,
  duration_ms BIGINT NOT NULL,
  created_at DATETIME(6) NOT NULL,
  INDEX idx_log_analyses_created (created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`
	_, err := r.db.ExecContext(ctx, q)
	return err
}

// Save inserts an analysis record
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Record) error {
	const q = `
INSERT INTO log_analyses
  (id, log_entry, analysis, threat_classification, risk_score, risk_level, summary, model, duration_ms, created_at)
VALUES (?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  analysis=VALUES(analysis), threat_classification=VALUES(threat_classification),
  risk_score=VALUES(risk_score), risk_level=VALUES(risk_level), summary=VALUES(summary);
`
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		a.ID, a.LogEntry, a.Analysis, a.ThreatClassification, a.RiskScore,
		a.RiskLevel, a.Summary, stringOrDash(a.Model), a.DurationMS, createdAt.UTC())
	return err
}

// Recent returns the newest records first
func (r *AnalysisRepository) Recent(ctx context.Context, limit int) ([]*domain.Record, error) {
	const q = `
SELECT id, log_entry, analysis, threat_classification, risk_score, risk_level, summary, model, duration_ms, created_at
FROM log_analyses
ORDER BY created_at DESC, id DESC
LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Record{}
	for rows.Next() {
		var a domain.Record
		if err := rows.Scan(&a.ID, &a.LogEntry, &a.Analysis, &a.ThreatClassification, &a.RiskScore,
			&a.RiskLevel, &a.Summary, &a.Model, &a.DurationMS, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

// Ping is used by the health check.
func (r *AnalysisRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
