package ai

import (
	"context"
	"fmt"
	"io"

	"github.com/bryanwahyu/loglens/internal/config"
	"github.com/bryanwahyu/loglens/internal/domain/analysis"
	"github.com/bryanwahyu/loglens/internal/infra/ai/gemini"
	"github.com/bryanwahyu/loglens/internal/infra/ai/openai"
	"github.com/bryanwahyu/loglens/internal/infra/ai/vertex"
)

// NewGenerator validates the model settings and builds the client for the
// configured provider. The returned closer is never nil.
func NewGenerator(ctx context.Context, cfg *config.Config) (analysis.Generator, io.Closer, error) {
	if err := cfg.CheckModel(); err != nil {
		return nil, nopCloser{}, err
	}
	m := cfg.Model
	switch m.Provider {
	case config.ProviderVertex:
		c, err := vertex.NewClient(ctx, m.Project, m.Region, m.ModelName())
		if err != nil {
			return nil, nopCloser{}, err
		}
		return c, c, nil
	case config.ProviderGemini:
		c, err := gemini.NewClient(ctx, m.APIKey, m.ModelName())
		if err != nil {
			return nil, nopCloser{}, err
		}
		return c, c, nil
	case config.ProviderOpenAI:
		return openai.NewClient(m.APIKey, m.ModelName(), m.BaseURL), nopCloser{}, nil
	default:
		return nil, nopCloser{}, fmt.Errorf("unknown model provider %q", m.Provider)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
