// Package config loads and validates the pkgdeck configuration file.
package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
	"go.trai.ch/pkgdeck/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader reads the configuration file.
type Loader struct {
	validate *validator.Validate
}

// NewLoader creates a new Loader.
func NewLoader() *Loader {
	return &Loader{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Load reads path over the defaults. A missing file yields the defaults.
func (l *Loader) Load(path string) (*Config, error) {
	cfg := Default()

	//nolint:gosec // path is the user's own config file
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return cfg, nil
	case err != nil:
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", path)
	}

	if err := l.Validate(cfg); err != nil {
		return nil, zerr.With(err, "path", path)
	}

	return cfg, nil
}

// Validate checks cfg against its struct tags.
func (l *Loader) Validate(cfg *Config) error {
	if err := l.validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return zerr.With(zerr.Wrap(err, domain.ErrConfigInvalid.Error()), "field", verrs[0].Namespace())
		}
		return zerr.Wrap(err, domain.ErrConfigInvalid.Error())
	}
	return nil
}
