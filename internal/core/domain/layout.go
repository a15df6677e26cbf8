package domain

import (
	"os"
	"path/filepath"
)

const (
	// AppDirName is the directory name used under the user config and cache roots.
	AppDirName = "pkgdeck"

	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "config.yaml"

	// CacheFileName is the name of the persisted plan fragment cache.
	CacheFileName = "fragments.json"

	// DefaultDatabasePath is the pacman local package database.
	DefaultDatabasePath = "/var/lib/pacman/local"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// DefaultConfigPath returns $XDG_CONFIG_HOME/pkgdeck/config.yaml.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join("."+AppDirName, ConfigFileName)
	}
	return filepath.Join(dir, AppDirName, ConfigFileName)
}

// DefaultCachePath returns $XDG_CACHE_HOME/pkgdeck/fragments.json.
func DefaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join("."+AppDirName, CacheFileName)
	}
	return filepath.Join(dir, AppDirName, CacheFileName)
}
