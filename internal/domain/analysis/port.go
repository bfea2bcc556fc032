package analysis

import "context"

// Generator is the remote model: one prompt in, free text out.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	// Name identifies the provider and model, e.g. "vertex/gemini-2.0-flash-lite-001".
	Name() string
}

// Archive port for keeping an audit trail of completed analyses
type Archive interface {
	Save(ctx context.Context, r *Record) error
}

// HistoryReader is implemented by archives that can list what they stored.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]*Record, error)
}
