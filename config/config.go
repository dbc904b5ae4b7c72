package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/imranansari/render-deploy-wf/secrets"
)

// Config holds all configuration for the application
type Config struct {
	// Render API Configuration
	Render RenderConfig `envPrefix:"RENDER_"`

	// Temporal Configuration
	Temporal TemporalConfig `envPrefix:"TEMPORAL_"`

	// GitHub Configuration (deployment mirroring)
	GitHub GitHubConfig `envPrefix:"GITHUB_"`

	// Application Configuration
	App AppConfig `envPrefix:"APP_"`
}

type RenderConfig struct {
	// API key, either inline or read from API_KEY_FILE
	APIKey     string `env:"API_KEY"`
	APIKeyFile string `env:"API_KEY_FILE"`

	ServiceID string `env:"SERVICE_ID"`
	BaseURL   string `env:"BASE_URL" envDefault:"https://api.render.com"`

	// Transport timeout for a single API call
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`

	// Workflow polling
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"15s"`
	MaxWait      time.Duration `env:"MAX_WAIT" envDefault:"30m"`
	LogTail      int           `env:"LOG_TAIL" envDefault:"50"`
}

type TemporalConfig struct {
	HostPort      string        `env:"HOST" envDefault:"localhost:7233"`
	Namespace     string        `env:"NAMESPACE" envDefault:"default"`
	TaskQueue     string        `env:"TASK_QUEUE" envDefault:"render-deployment-tracker"`
	WorkerOptions WorkerOptions `envPrefix:"WORKER_"`
}

type WorkerOptions struct {
	MaxConcurrentActivityExecutionSize     int  `env:"MAX_CONCURRENT_ACTIVITY" envDefault:"20"`
	MaxConcurrentWorkflowTaskExecutionSize int  `env:"MAX_CONCURRENT_WORKFLOW" envDefault:"10"`
	EnableLoggingInReplay                  bool `env:"ENABLE_LOGGING_REPLAY" envDefault:"false"`
}

type GitHubConfig struct {
	// GitHub App ID, zero disables deployment mirroring
	AppID int64 `env:"APP_ID"`

	// Leave empty to use GitHub.com
	EnterpriseURL string `env:"ENTERPRISE_URL"`

	PrivateKeyPath string `env:"PRIVATE_KEY_PATH"`

	// Repository and environment the Render service deploys to
	Owner       string `env:"OWNER"`
	Repo        string `env:"REPO"`
	Environment string `env:"ENVIRONMENT" envDefault:"production"`

	RateLimit RateLimitConfig `envPrefix:"RATE_LIMIT_"`

	// Loaded from PrivateKeyPath
	PrivateKey []byte
}

type RateLimitConfig struct {
	MaxRetries        int           `env:"MAX_RETRIES" envDefault:"5"`
	InitialBackoff    time.Duration `env:"INITIAL_BACKOFF" envDefault:"1s"`
	MaxBackoff        time.Duration `env:"MAX_BACKOFF" envDefault:"60s"`
	BackoffMultiplier float64       `env:"BACKOFF_MULTIPLIER" envDefault:"2.0"`
}

type AppConfig struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"json"`
}

// Enabled reports whether Render deploys should be mirrored to GitHub.
func (c GitHubConfig) Enabled() bool {
	return c.AppID != 0
}

// Load loads configuration from environment variables and files
func Load() (*Config, error) {
	// Load .env file if exists (for local development)
	_ = godotenv.Load()

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := loadSecrets(cfg); err != nil {
		return nil, fmt.Errorf("failed to load secrets: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadSecrets resolves file-based secrets
func loadSecrets(cfg *Config) error {
	if cfg.Render.APIKey == "" && cfg.Render.APIKeyFile != "" {
		key, err := secrets.LoadFromFile(cfg.Render.APIKeyFile)
		if err != nil {
			return fmt.Errorf("failed to load Render API key: %w", err)
		}
		cfg.Render.APIKey = strings.TrimSpace(string(key))
	}

	if cfg.GitHub.Enabled() {
		defaultPath := fmt.Sprintf("%s/github-app.private-key.pem", secrets.GetSecretPath("SECRETS_PATH", ".private"))
		path := cfg.GitHub.PrivateKeyPath
		if path == "" {
			path = defaultPath
		}
		privateKey, err := secrets.LoadFromFile(path)
		if err != nil {
			return fmt.Errorf("failed to load GitHub App private key: %w", err)
		}
		cfg.GitHub.PrivateKey = privateKey
	}

	return nil
}

func validateConfig(cfg *Config) error {
	if cfg.Render.APIKey == "" {
		return fmt.Errorf("RENDER_API_KEY or RENDER_API_KEY_FILE is required")
	}
	if cfg.Render.ServiceID == "" {
		return fmt.Errorf("RENDER_SERVICE_ID is required")
	}
	if cfg.Render.PollInterval <= 0 {
		return fmt.Errorf("RENDER_POLL_INTERVAL must be positive")
	}
	if cfg.Render.MaxWait < cfg.Render.PollInterval {
		return fmt.Errorf("RENDER_MAX_WAIT must be at least RENDER_POLL_INTERVAL")
	}
	if cfg.GitHub.Enabled() {
		if len(cfg.GitHub.PrivateKey) == 0 {
			return fmt.Errorf("GitHub App private key is required")
		}
		if !IsValidEnvironment(cfg.GitHub.Environment) {
			return fmt.Errorf("unknown GitHub environment %q", cfg.GitHub.Environment)
		}
	}
	return nil
}
