package analysis

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/bryanwahyu/loglens/internal/domain/analysis"
)

// MultiArchive fans a record out to several archives. Listing is served by
// the first member that supports it.
type MultiArchive []domain.Archive

// Save writes to every member and joins their errors.
func (m MultiArchive) Save(ctx context.Context, r *domain.Record) error {
	var errs []error
	for i, a := range m {
		if err := a.Save(ctx, r); err != nil {
			errs = append(errs, fmt.Errorf("archive %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Recent implements domain.HistoryReader.
func (m MultiArchive) Recent(ctx context.Context, limit int) ([]*domain.Record, error) {
	for _, a := range m {
		if h, ok := a.(domain.HistoryReader); ok {
			return h.Recent(ctx, limit)
		}
	}
	return nil, domain.ErrNoHistory
}
