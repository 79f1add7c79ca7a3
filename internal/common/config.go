package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string            `toml:"environment"` // "development" or "production"
	Server      ServerConfig      `toml:"server"`
	Storage     StorageConfig     `toml:"storage"`
	Logging     LoggingConfig     `toml:"logging"`
	Scheduler   SchedulerConfig   `toml:"scheduler"`
	Autopost    AutopostConfig    `toml:"autopost"`
	Generation  GenerationConfig  `toml:"generation"`
	Gemini      GeminiConfig      `toml:"gemini"`
	Claude      ClaudeConfig      `toml:"claude"`
	Credentials CredentialsConfig `toml:"credentials"`
	Publishers  PublishersConfig  `toml:"publishers"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Type   string       `toml:"type"` // "badger" or "memory"
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Format     string   `toml:"format"`      // "json" or "text"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05.000")
}

// SchedulerConfig drives the recurring sweep. The cron schedule, the poll
// interval, and the startup run all converge on the same sweep entry point.
type SchedulerConfig struct {
	Enabled      bool   `toml:"enabled"`
	CronSchedule string `toml:"cron_schedule"` // Cron expression for the sweep
	PollInterval string `toml:"poll_interval"` // Fixed-interval safety poll, e.g. "5m"
	RunOnStart   bool   `toml:"run_on_start"`  // Run a sweep immediately at process startup
}

// AutopostConfig contains engine-level autopost tuning.
type AutopostConfig struct {
	DefaultIntervalHours  int      `toml:"default_interval_hours"`  // Applied when a job has no interval override
	RecencyCap            int      `toml:"recency_cap"`             // Max entries per recency buffer
	MaxGenerationAttempts int      `toml:"max_generation_attempts"` // Bounded generation retries per run
	ImageCount            int      `toml:"image_count"`             // Images requested per generation call
	MaxHashtags           int      `toml:"max_hashtags"`            // Cap after hashtag normalization
	FallbackImageDir      string   `toml:"fallback_image_dir"`      // Directory scanned for stock fallback images
	FallbackImageURLs     []string `toml:"fallback_image_urls"`     // Explicit stock fallback image URLs
	FallbackVideoURLs     []string `toml:"fallback_video_urls"`     // Shared generic fallback video pool
}

// GenerationConfig selects the content generation provider and the image
// rendering endpoint shared by all providers.
type GenerationConfig struct {
	Provider     string `toml:"provider"`       // "gemini" or "claude"
	ImageBaseURL string `toml:"image_base_url"` // URL-keyed image renderer; the prompt is appended url-encoded
	ImageWidth   int    `toml:"image_width"`    // Rendered image width in pixels
	ImageHeight  int    `toml:"image_height"`   // Rendered image height in pixels
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`     // Google Gemini API key
	Model       string  `toml:"model"`       // Model for caption/content generation
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string
	Temperature float32 `toml:"temperature"` // Completion temperature
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key (ANTHROPIC_API_KEY or config)
	Model       string  `toml:"model"`       // Model for caption generation
	MaxTokens   int     `toml:"max_tokens"`  // Max tokens per completion
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string
	Temperature float32 `toml:"temperature"` // Completion temperature
}

// CredentialsConfig controls credential layering and secrets-at-rest.
type CredentialsConfig struct {
	EncryptionKey  string   `toml:"encryption_key"`  // 32-byte hex key for AES-256-GCM field encryption
	SeedDir        string   `toml:"seed_dir"`        // Directory of TOML credential seed files loaded at startup
	PrimaryTenants []string `toml:"primary_tenants"` // Allow-list of tenants that receive platform default credentials
}

// PublishersConfig configures the HTTP bridge publishers.
type PublishersConfig struct {
	BridgeURL      string            `toml:"bridge_url"`      // Base URL of the publishing bridge
	Endpoints      map[string]string `toml:"endpoints"`       // Per-channel endpoint overrides
	RequestTimeout time.Duration     `toml:"request_timeout"` // HTTP request timeout
	RateLimit      string            `toml:"rate_limit"`      // Min interval between publishes per channel, e.g. "2s"
}

// NewDefaultConfig returns the built-in defaults, overridden by files then env.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Type: "badger",
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
		Scheduler: SchedulerConfig{
			Enabled:      true,
			CronSchedule: "*/15 * * * *", // Sweep every 15 minutes
			PollInterval: "5m",           // Safety poll in case cron entries are lost
			RunOnStart:   true,
		},
		Autopost: AutopostConfig{
			DefaultIntervalHours:  24,
			RecencyCap:            20,
			MaxGenerationAttempts: 3,
			ImageCount:            3,
			MaxHashtags:           8,
		},
		Generation: GenerationConfig{
			Provider:     "gemini",
			ImageBaseURL: "https://image.pollinations.ai/prompt",
			ImageWidth:   1024,
			ImageHeight:  1024,
		},
		Gemini: GeminiConfig{
			APIKey:      "", // User must provide API key
			Model:       "gemini-3-flash-preview",
			Timeout:     "2m",
			Temperature: 0.9,
		},
		Claude: ClaudeConfig{
			APIKey:      "", // User must provide API key (ANTHROPIC_API_KEY or config)
			Model:       "claude-haiku-3-5-20241022",
			MaxTokens:   2048,
			Timeout:     "2m",
			Temperature: 0.9,
		},
		Credentials: CredentialsConfig{
			SeedDir: "./credentials",
		},
		Publishers: PublishersConfig{
			RequestTimeout: 30 * time.Second,
			RateLimit:      "2s",
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env. Later files override earlier ones.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("CADENCE_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("CADENCE_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("CADENCE_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if storageType := os.Getenv("CADENCE_STORAGE_TYPE"); storageType != "" {
		config.Storage.Type = storageType
	}
	if badgerPath := os.Getenv("CADENCE_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("CADENCE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("CADENCE_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Scheduler configuration
	if schedule := os.Getenv("CADENCE_SCHEDULER_CRON"); schedule != "" {
		config.Scheduler.CronSchedule = schedule
	}
	if poll := os.Getenv("CADENCE_SCHEDULER_POLL_INTERVAL"); poll != "" {
		config.Scheduler.PollInterval = poll
	}

	// Generation providers
	if provider := os.Getenv("CADENCE_GENERATION_PROVIDER"); provider != "" {
		config.Generation.Provider = provider
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" && config.Gemini.APIKey == "" {
		config.Gemini.APIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" && config.Claude.APIKey == "" {
		config.Claude.APIKey = key
	}

	// Credentials
	if key := os.Getenv("CADENCE_ENCRYPTION_KEY"); key != "" {
		config.Credentials.EncryptionKey = key
	}

	// Publishers
	if bridge := os.Getenv("CADENCE_BRIDGE_URL"); bridge != "" {
		config.Publishers.BridgeURL = bridge
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// ValidateCronSchedule validates a standard 5-field cron expression.
func ValidateCronSchedule(schedule string) error {
	if schedule == "" {
		return fmt.Errorf("schedule cannot be empty")
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", schedule, err)
	}
	return nil
}

// IsProduction returns true when running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Environment)
	return env == "production" || env == "prod"
}
