// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration for the acquisition core.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger" yaml:"logger"`
	Engine    EngineConfig    `mapstructure:"engine" yaml:"engine"`
	Retry     RetryConfig     `mapstructure:"retry" yaml:"retry"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit" yaml:"ratelimit"`
	Quality   QualityConfig   `mapstructure:"quality" yaml:"quality"`

	// Platforms overrides pacing and attempt budgets per platform identity.
	// Unlisted platforms inherit the generic defaults baked into the
	// resolver's profile table.
	Platforms map[string]PlatformConfig `mapstructure:"platforms" yaml:"platforms"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color names for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// EngineConfig configures the external extraction engine and the delivery
// ceiling enforced on its output.
type EngineConfig struct {
	// ExtractorPath is the binary the extractor adapter shells out to.
	ExtractorPath string `mapstructure:"extractor_path" yaml:"extractor_path"`
	// OutputDir is where fetched artifacts are written.
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
	// AttemptTimeout bounds a single engine call.
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout" yaml:"attempt_timeout"`
	// DeliveryMaxBytes is the ceiling an artifact must fit under before the
	// quality cascade kicks in.
	DeliveryMaxBytes int64 `mapstructure:"delivery_max_bytes" yaml:"delivery_max_bytes"`
	// FetchConcurrency caps parallel acquisitions in batch mode. Attempts
	// within one acquisition are always sequential regardless.
	FetchConcurrency int `mapstructure:"fetch_concurrency" yaml:"fetch_concurrency"`
	// CascadeMaxSteps caps quality downgrades per variant.
	CascadeMaxSteps int `mapstructure:"cascade_max_steps" yaml:"cascade_max_steps"`
}

// RetryConfig tunes the strategy family registered per error kind.
type RetryConfig struct {
	BaseDelay time.Duration `mapstructure:"base_delay" yaml:"base_delay"`
	MaxDelay  time.Duration `mapstructure:"max_delay" yaml:"max_delay"`
	// JitterPct perturbs exponential delays by up to this fraction either way.
	JitterPct float64 `mapstructure:"jitter_pct" yaml:"jitter_pct"`
	// AdaptiveWindow is the rolling-outcome window size shared across all
	// acquisitions.
	AdaptiveWindow int `mapstructure:"adaptive_window" yaml:"adaptive_window"`
	// AdaptiveFailureThreshold is the per-kind failure count past which the
	// adaptive strategy gives up one attempt earlier.
	AdaptiveFailureThreshold int `mapstructure:"adaptive_failure_threshold" yaml:"adaptive_failure_threshold"`
}

// RateLimitConfig tunes inter-request spacing toward the platforms.
type RateLimitConfig struct {
	// DefaultInterval is the minimum spacing for platforms without an
	// explicit override.
	DefaultInterval time.Duration `mapstructure:"default_interval" yaml:"default_interval"`
	// JitterMax is the upper bound of the uniform jitter added per wait.
	JitterMax time.Duration `mapstructure:"jitter_max" yaml:"jitter_max"`
}

// QualityConfig declares the descending resolution ladder the cascade walks.
type QualityConfig struct {
	// LadderHeights are resolution caps in strictly descending order. A
	// trailing zero step means "smallest available".
	LadderHeights []int `mapstructure:"ladder_heights" yaml:"ladder_heights"`
}

// PlatformConfig overrides per-platform acquisition behavior.
type PlatformConfig struct {
	MinInterval time.Duration `mapstructure:"min_interval" yaml:"min_interval"`
	MaxAttempts int           `mapstructure:"max_attempts" yaml:"max_attempts"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "grabbit-cli")
	v.SetDefault("logger.log_file", "grabbit.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Engine --
	v.SetDefault("engine.extractor_path", "yt-dlp")
	v.SetDefault("engine.output_dir", "downloads")
	v.SetDefault("engine.attempt_timeout", "3m")
	v.SetDefault("engine.delivery_max_bytes", int64(50*1024*1024))
	v.SetDefault("engine.fetch_concurrency", 3)
	v.SetDefault("engine.cascade_max_steps", 3)

	// -- Retry --
	v.SetDefault("retry.base_delay", "2s")
	v.SetDefault("retry.max_delay", "2m")
	v.SetDefault("retry.jitter_pct", 0.2)
	v.SetDefault("retry.adaptive_window", 50)
	v.SetDefault("retry.adaptive_failure_threshold", 10)

	// -- Rate Limit --
	v.SetDefault("ratelimit.default_interval", "2s")
	v.SetDefault("ratelimit.jitter_max", "500ms")

	// -- Quality --
	v.SetDefault("quality.ladder_heights", []int{1080, 720, 480, 360, 0})

	// -- Platforms --
	v.SetDefault("platforms.youtube.min_interval", "3s")
	v.SetDefault("platforms.youtube.max_attempts", 3)
	v.SetDefault("platforms.tiktok.min_interval", "5s")
	v.SetDefault("platforms.tiktok.max_attempts", 2)
	v.SetDefault("platforms.instagram.min_interval", "8s")
	v.SetDefault("platforms.instagram.max_attempts", 2)
	v.SetDefault("platforms.twitter.min_interval", "4s")
	v.SetDefault("platforms.twitter.max_attempts", 3)
	v.SetDefault("platforms.reddit.min_interval", "3s")
	v.SetDefault("platforms.reddit.max_attempts", 3)
	v.SetDefault("platforms.generic.min_interval", "2s")
	v.SetDefault("platforms.generic.max_attempts", 2)
}

// NewDefaultConfig creates a configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Cannot happen with compiled-in defaults.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper creates a validated configuration from a viper instance.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Engine.ExtractorPath == "" {
		return fmt.Errorf("engine.extractor_path is a required configuration field")
	}
	if c.Engine.AttemptTimeout <= 0 {
		return fmt.Errorf("engine.attempt_timeout must be a positive duration")
	}
	if c.Engine.DeliveryMaxBytes <= 0 {
		return fmt.Errorf("engine.delivery_max_bytes must be positive")
	}
	if c.Engine.FetchConcurrency <= 0 {
		return fmt.Errorf("engine.fetch_concurrency must be a positive integer")
	}
	if c.Engine.CascadeMaxSteps <= 0 {
		return fmt.Errorf("engine.cascade_max_steps must be a positive integer")
	}
	if c.Retry.BaseDelay <= 0 || c.Retry.MaxDelay < c.Retry.BaseDelay {
		return fmt.Errorf("retry.base_delay must be positive and retry.max_delay must not be smaller")
	}
	if c.Retry.JitterPct < 0 || c.Retry.JitterPct >= 1.0 {
		return fmt.Errorf("retry.jitter_pct must be in [0.0, 1.0)")
	}
	if c.Retry.AdaptiveWindow <= 0 {
		return fmt.Errorf("retry.adaptive_window must be a positive integer")
	}
	if c.RateLimit.DefaultInterval < 0 || c.RateLimit.JitterMax < 0 {
		return fmt.Errorf("ratelimit intervals must not be negative")
	}
	if err := validateLadder(c.Quality.LadderHeights); err != nil {
		return err
	}
	for name, pc := range c.Platforms {
		if pc.MaxAttempts <= 0 {
			return fmt.Errorf("platforms.%s.max_attempts must be a positive integer", name)
		}
		if pc.MinInterval < 0 {
			return fmt.Errorf("platforms.%s.min_interval must not be negative", name)
		}
	}
	return nil
}

// validateLadder enforces a non-empty, strictly descending quality ladder.
func validateLadder(heights []int) error {
	if len(heights) == 0 {
		return fmt.Errorf("quality.ladder_heights must not be empty")
	}
	for i := 1; i < len(heights); i++ {
		if heights[i] >= heights[i-1] {
			return fmt.Errorf("quality.ladder_heights must be strictly descending (step %d: %d >= %d)",
				i, heights[i], heights[i-1])
		}
	}
	return nil
}
