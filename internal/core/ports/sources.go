package ports

import (
	"context"

	"go.trai.ch/pkgdeck/internal/core/domain"
)

// LocalDatabase queries the installed package set.
//
//go:generate mockgen -source=sources.go -destination=mocks/mock_sources.go -package=mocks
type LocalDatabase interface {
	// Installed returns every installed package with its declared metadata.
	Installed(ctx context.Context) ([]domain.Package, error)

	// InstalledFiles returns the files owned by an installed package.
	InstalledFiles(ctx context.Context, name string) ([]string, error)
}

// Repository queries the official sync repositories.
type Repository interface {
	// Lookup returns candidate packages for the given names. Unknown names are omitted.
	Lookup(ctx context.Context, names []string) ([]domain.Package, error)

	// RemoteFiles returns the files a repository package would install.
	RemoteFiles(ctx context.Context, name string) ([]string, error)
}

// ThirdPartyIndex queries the third-party (AUR) source.
type ThirdPartyIndex interface {
	// Info returns manifests for the given names. Unknown names are omitted.
	Info(ctx context.Context, names []string) ([]domain.Package, error)

	// BuildInfo returns the build manifest of one package with its dependency arrays.
	BuildInfo(ctx context.Context, name string) (domain.Package, error)
}

// ServiceManager queries the init system.
type ServiceManager interface {
	// ActiveUnits returns the names of currently active service units.
	ActiveUnits(ctx context.Context) ([]string, error)
}
