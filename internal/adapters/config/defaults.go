package config

import (
	"time"

	"go.trai.ch/pkgdeck/internal/core/domain"
)

// DefaultCorePackages are packages whose change can leave the system unbootable.
var DefaultCorePackages = []string{
	"linux", "linux-lts", "linux-zen", "systemd", "glibc",
	"openssl", "pacman", "bash", "util-linux", "filesystem",
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Elevation: []string{"sudo"},
		Credential: CredentialConfig{
			Prompts: []string{
				`(?i)\[sudo\] password for [^:]*:\s*$`,
				`(?i)^password( for [^:]*)?:\s*$`,
				`(?i)enter passphrase.*:\s*$`,
			},
			Rejections: []string{`(?i)sorry, try again`, `(?i)authentication failure`},
			Lockouts: []string{
				`(?i)account (is )?locked`,
				`(?i)faillock`,
				`(?i)\d+ incorrect password attempts`,
			},
			RetryLimit: 1,
		},
		Workers: WorkersConfig{
			Timeout:        2 * time.Minute,
			NetworkTimeout: 30 * time.Second,
			QueueSize:      64,
		},
		Risk: RiskConfig{
			Medium:       1,
			High:         5,
			CorePackages: DefaultCorePackages,
		},
		Cache: CacheConfig{
			Path:    domain.DefaultCachePath(),
			Persist: true,
			MaxAge:  time.Hour,
		},
		Watch: WatchConfig{
			DatabasePath: domain.DefaultDatabasePath,
			Debounce:     500 * time.Millisecond,
		},
		AUR: AURConfig{
			BaseURL:           "https://aur.archlinux.org",
			RequestsPerSecond: 5,
		},
	}
}
