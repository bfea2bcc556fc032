package sqlite

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

func (r *AnalysisRepository) EnsureSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS log_analyses (
  id TEXT PRIMARY KEY,
  log_entry TEXT NOT NULL,
  analysis TEXT NOT NULL,
  threat_classification TEXT NOT NULL,
  risk_score INTEGER NOT NULL,
  risk_level TEXT NOT NULL,
  summary TEXT NOT NULL,
  model TEXT NOT NULL,
  duration_ms INTEGER NOT NULL,
  created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_log_analyses_created ON log_analyses (created_at);`
	_, err := r.db.ExecContext(ctx, q)
	return err
}

func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Record) error {
	const q = `
INSERT OR REPLACE INTO log_analyses
  (id, log_entry, analysis, threat_classification, risk_score, risk_level, summary, model, duration_ms, created_at)
VALUES (?,?,?,?,?,?,?,?,?,?);`
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		a.ID, a.LogEntry, a.Analysis, a.ThreatClassification, a.RiskScore,
		a.RiskLevel, a.Summary, a.Model, a.DurationMS, createdAt.UTC())
	return err
}

func (r *AnalysisRepository) Recent(ctx context.Context, limit int) ([]*domain.Record, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	const q = `
SELECT id, log_entry, analysis, threat_classification, risk_score, risk_level, summary, model, duration_ms, created_at
FROM log_analyses
ORDER BY created_at DESC, id DESC
LIMIT ?;`
	rows, err := r.db.QueryContext(ctx, q, limit)
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

func (r *AnalysisRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
