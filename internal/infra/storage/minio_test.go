package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	domain "github.com/bryanwahyu/loglens/internal/domain/analysis"
)

func TestObjectKey(t *testing.T) {
	r := &domain.Record{
		ID:        "4b1f6f0e-0000-4000-8000-000000000001",
		CreatedAt: time.Date(2025, 7, 10, 23, 30, 0, 0, time.FixedZone("WIB", 7*3600)),
	}

	assert.Equal(t, "analyses/2025/07/10/4b1f6f0e-0000-4000-8000-000000000001.json", ObjectKey(r))
}
