package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bryanwahyu/loglens/internal/domain/analysis"
)

const (
	ProviderVertex = "vertex"
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	// DefaultGeminiModel is used by the vertex and gemini providers when no
	// model name is configured.
	DefaultGeminiModel = "gemini-2.0-flash-lite-001"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Model     ModelConfig     `yaml:"model"`
	Log       LogConfig       `yaml:"log"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors"`
	Archive   ArchiveConfig   `yaml:"archive"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	// RequireModel makes missing model configuration fatal at startup
	// instead of starting in degraded mode.
	RequireModel bool `yaml:"require_model"`
}

type ModelConfig struct {
	Provider string        `yaml:"provider"`
	Name     string        `yaml:"name"`
	Timeout  time.Duration `yaml:"timeout"`
	Project  string        `yaml:"project"`
	Region   string        `yaml:"region"`
	APIKey   string        `yaml:"api_key"`
	BaseURL  string        `yaml:"base_url"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // text | json
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type AuthConfig struct {
	// APIKeys maps a client name to its key. Empty disables auth.
	APIKeys map[string]string `yaml:"api_keys"`
}

type RateLimitConfig struct {
	Capacity   int `yaml:"capacity"`    // 0 disables
	RefillRate int `yaml:"refill_rate"` // tokens per second
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type ArchiveConfig struct {
	Driver string      `yaml:"driver"` // "" | mysql | postgres | sqlite
	DSN    string      `yaml:"dsn"`
	Minio  MinioConfig `yaml:"minio"`
}

type MinioConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"accessKey"`
	SecretKey  string `yaml:"secretKey"`
	BucketName string `yaml:"bucketName"`
	Region     string `yaml:"region"`
	UseSSL     bool   `yaml:"useSSL"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    90 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Model: ModelConfig{
			Provider: ProviderVertex,
			Timeout:  60 * time.Second,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
		RateLimit: RateLimitConfig{Capacity: 0, RefillRate: 1},
		CORS:      CORSConfig{AllowedOrigins: []string{"*"}},
	}
}

// Load reads the YAML file at path on top of the defaults, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.Model.Name = cfg.Model.ModelName()
	return &cfg, nil
}

// ModelName is Name, or the provider's default when Name is unset. The
// openai provider has no default here; its client picks one.
func (m ModelConfig) ModelName() string {
	if m.Name != "" {
		return m.Name
	}
	switch m.Provider {
	case ProviderVertex, ProviderGemini:
		return DefaultGeminiModel
	}
	return ""
}

func (c *Config) applyEnv() error {
	setString(&c.Model.Project, "GCP_PROJECT")
	setString(&c.Model.Region, "GCP_REGION")
	setString(&c.Model.Provider, "MODEL_PROVIDER")
	setString(&c.Model.Name, "MODEL_NAME")
	setString(&c.Model.BaseURL, "OPENAI_BASE_URL")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")
	setString(&c.Log.File, "LOG_FILE")
	setString(&c.Archive.Driver, "ARCHIVE_DRIVER")
	setString(&c.Archive.DSN, "ARCHIVE_DSN")

	switch c.Model.Provider {
	case ProviderGemini:
		setString(&c.Model.APIKey, "GEMINI_API_KEY")
	case ProviderOpenAI:
		setString(&c.Model.APIKey, "OPENAI_API_KEY")
	}

	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p <= 0 || p > 65535 {
			return fmt.Errorf("invalid PORT %q", v)
		}
		c.Server.Port = p
	}
	if v := os.Getenv("MODEL_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid MODEL_TIMEOUT %q: %w", v, err)
		}
		c.Model.Timeout = d
	}
	if v := os.Getenv("REQUIRE_MODEL"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid REQUIRE_MODEL %q: %w", v, err)
		}
		c.Server.RequireModel = b
	}
	return nil
}

// CheckModel reports which required model settings are missing for the
// selected provider.
func (c *Config) CheckModel() error {
	var missing []string
	switch c.Model.Provider {
	case ProviderVertex:
		if c.Model.Project == "" {
			missing = append(missing, "GCP_PROJECT")
		}
		if c.Model.Region == "" {
			missing = append(missing, "GCP_REGION")
		}
	case ProviderGemini:
		if c.Model.APIKey == "" {
			missing = append(missing, "GEMINI_API_KEY")
		}
	case ProviderOpenAI:
		if c.Model.APIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	default:
		return fmt.Errorf("unknown model provider %q (allowed: %s, %s, %s)",
			c.Model.Provider, ProviderVertex, ProviderGemini, ProviderOpenAI)
	}
	if len(missing) > 0 {
		return &analysis.StartupConfigError{Provider: c.Model.Provider, Missing: missing}
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}
