package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/loglens/internal/application"
	domain "github.com/bryanwahyu/loglens/internal/domain/analysis"
)

type fakeGenerator struct {
	mu      sync.Mutex
	text    string
	err     error
	prompts []string
	block   bool
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.text, f.err
}

func (f *fakeGenerator) Name() string { return "fake/model" }

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type memArchive struct {
	mu      sync.Mutex
	records []*domain.Record
	err     error
}

func (m *memArchive) Save(_ context.Context, r *domain.Record) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, r)
	return nil
}

func (m *memArchive) Recent(_ context.Context, limit int) ([]*domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Record, 0, len(m.records))
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

func TestAnalyze_Success(t *testing.T) {
	gen := &fakeGenerator{text: "**Threat Classification:** Brute-force Attack\n**Risk Score:** 8\n**Summary:** Password guessing."}
	at := time.Date(2025, 7, 10, 13, 55, 36, 0, time.UTC)
	svc := NewService(gen, WithClock(application.FixedClock{At: at}))

	res, err := svc.Analyze(context.Background(), "sshd[1234]: Failed password")
	require.NoError(t, err)

	assert.Equal(t, gen.text, res.Analysis)
	assert.Equal(t, "sshd[1234]: Failed password", res.LogEntry)
	assert.Equal(t, "fake/model", res.Model)
	assert.Equal(t, at, res.CreatedAt)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, 8, res.Report.RiskScore)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], `Log Entry: "sshd[1234]: Failed password"`)

	latest, ok := svc.Latest()
	require.True(t, ok)
	assert.Equal(t, "sshd[1234]: Failed password", latest.LogEntry)
	assert.Equal(t, gen.text, latest.Analysis)
}

func TestAnalyze_EmptyEntryNeverCallsModel(t *testing.T) {
	gen := &fakeGenerator{text: "x"}
	svc := NewService(gen)

	_, err := svc.Analyze(context.Background(), "")

	assert.ErrorIs(t, err, domain.ErrEmptyLogEntry)
	assert.Zero(t, gen.calls())
	_, ok := svc.Latest()
	assert.False(t, ok)
}

func TestAnalyze_DegradedMode(t *testing.T) {
	svc := NewService(nil)

	assert.False(t, svc.Ready())
	assert.Empty(t, svc.ModelName())

	_, err := svc.Analyze(context.Background(), "kernel: [UFW BLOCK]")
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
	_, ok := svc.Latest()
	assert.False(t, ok)
}

func TestAnalyze_DegradedModeStillValidatesFirst(t *testing.T) {
	_, err := NewService(nil).Analyze(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrEmptyLogEntry)
}

func TestAnalyze_RemoteFailureKeepsPreviousLatest(t *testing.T) {
	gen := &fakeGenerator{text: "first"}
	svc := NewService(gen)

	_, err := svc.Analyze(context.Background(), "line one")
	require.NoError(t, err)

	gen.err = errors.New("quota exhausted")
	_, err = svc.Analyze(context.Background(), "line two")

	var remote *domain.RemoteModelError
	require.ErrorAs(t, err, &remote)
	assert.Contains(t, err.Error(), "quota exhausted")
	assert.Equal(t, "fake/model", remote.Provider)

	latest, ok := svc.Latest()
	require.True(t, ok)
	assert.Equal(t, "line one", latest.LogEntry)
	assert.Equal(t, "first", latest.Analysis)
}

func TestAnalyze_TimeoutIsRemoteError(t *testing.T) {
	gen := &fakeGenerator{block: true}
	svc := NewService(gen, WithModelTimeout(20*time.Millisecond))

	_, err := svc.Analyze(context.Background(), "CRON[3123]: session opened")

	var remote *domain.RemoteModelError
	require.ErrorAs(t, err, &remote)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, gen.calls(), "no retries")
}

func TestAnalyze_ArchivesRecord(t *testing.T) {
	arch := &memArchive{}
	svc := NewService(&fakeGenerator{text: "Risk Score: 2"}, WithArchive(arch))

	res, err := svc.Analyze(context.Background(), "systemd: Started Daily apt upgrade")
	require.NoError(t, err)

	require.Len(t, arch.records, 1)
	assert.Equal(t, res.ID, arch.records[0].ID)
	assert.Equal(t, 2, arch.records[0].RiskScore)
	assert.Equal(t, "low", arch.records[0].RiskLevel)

	hist, err := svc.History(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, hist, 1)
}

func TestAnalyze_ArchiveFailureDoesNotFailAnalysis(t *testing.T) {
	svc := NewService(&fakeGenerator{text: "ok"}, WithArchive(&memArchive{err: errors.New("db down")}))

	res, err := svc.Analyze(context.Background(), "line")
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Analysis)
}

func TestHistory_NotConfigured(t *testing.T) {
	_, err := NewService(&fakeGenerator{}).History(context.Background(), 5)
	assert.ErrorIs(t, err, domain.ErrNoHistory)
}

func TestLatestStore_ConcurrentWritersKeepPairsIntact(t *testing.T) {
	store := NewLatestStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			n := fmt.Sprint(i)
			store.Set(domain.Result{LogEntry: "log-" + n, Analysis: "analysis-" + n})
		}(i)
	}
	wg.Wait()

	got, ok := store.Get()
	require.True(t, ok)
	assert.Equal(t, "log-"+got.Analysis[len("analysis-"):], got.LogEntry)
}

func TestMultiArchive(t *testing.T) {
	a, b := &memArchive{}, &memArchive{err: errors.New("bucket missing")}
	m := MultiArchive{b, a}

	err := m.Save(context.Background(), &domain.Record{ID: "1"})
	assert.ErrorContains(t, err, "bucket missing")
	assert.Len(t, a.records, 1)

	recs, err := m.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, recs, "first lister is b, which stored nothing")
}
