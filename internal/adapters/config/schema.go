package config

import "time"

// Config is the pkgdeck configuration file.
type Config struct {
	Elevation  []string         `yaml:"elevation" validate:"dive,required"`
	Credential CredentialConfig `yaml:"credential"`
	Workers    WorkersConfig    `yaml:"workers"`
	Risk       RiskConfig       `yaml:"risk"`
	Cache      CacheConfig      `yaml:"cache"`
	Watch      WatchConfig      `yaml:"watch"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	AUR        AURConfig        `yaml:"aur"`
}

// CredentialConfig holds the patterns used to detect prompts in process output.
type CredentialConfig struct {
	Prompts    []string `yaml:"prompts" validate:"min=1,dive,required"`
	Rejections []string `yaml:"rejections" validate:"dive,required"`
	Lockouts   []string `yaml:"lockouts" validate:"dive,required"`
	RetryLimit int      `yaml:"retry_limit" validate:"gte=0,lte=5"`
}

// WorkersConfig bounds background computations.
type WorkersConfig struct {
	Timeout        time.Duration `yaml:"timeout" validate:"gt=0"`
	NetworkTimeout time.Duration `yaml:"network_timeout" validate:"gt=0"`
	QueueSize      int           `yaml:"queue_size" validate:"gte=1,lte=4096"`
}

// RiskConfig tunes risk bucketing.
type RiskConfig struct {
	Medium       int      `yaml:"medium" validate:"gte=1"`
	High         int      `yaml:"high" validate:"gtfield=Medium"`
	CorePackages []string `yaml:"core_packages" validate:"dive,required"`
}

// CacheConfig controls fragment persistence.
type CacheConfig struct {
	Path    string        `yaml:"path"`
	Persist bool          `yaml:"persist"`
	MaxAge  time.Duration `yaml:"max_age" validate:"gte=0"`
}

// WatchConfig controls the package database watcher.
type WatchConfig struct {
	DatabasePath string        `yaml:"database_path" validate:"required"`
	Debounce     time.Duration `yaml:"debounce" validate:"gte=0"`
}

// TelemetryConfig controls span export.
type TelemetryConfig struct {
	TraceFile string `yaml:"trace_file"`
}

// MetricsConfig controls metrics export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// AURConfig configures the third-party source.
type AURConfig struct {
	BaseURL           string  `yaml:"base_url" validate:"required,url"`
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"gt=0"`
}
