package pacman

import (
	"context"

	"go.trai.ch/pkgdeck/internal/core/domain"
	"go.trai.ch/zerr"
)

// Client implements ports.LocalDatabase and ports.Repository.
type Client struct {
	r runner
}

// NewClient creates a Client that runs the pacman binary found on PATH.
func NewClient() *Client {
	return &Client{r: runner{bin: Binary}}
}

// Installed returns every installed package, including backup files.
func (c *Client) Installed(ctx context.Context) ([]domain.Package, error) {
	out, err := c.r.run(ctx, "-Qii")
	if err != nil {
		return nil, err
	}
	pkgs, err := parseInfo(out, domain.SourceOfficial)
	if err != nil {
		return pkgs, domain.Classify(domain.KindParseError, zerr.With(err, "query", "-Qii"))
	}
	return pkgs, nil
}

// InstalledFiles returns the files owned by an installed package.
func (c *Client) InstalledFiles(ctx context.Context, name string) ([]string, error) {
	out, err := c.r.run(ctx, "-Ql", "--", name)
	if err != nil {
		return nil, err
	}
	return parseFileList(out), nil
}

// Lookup returns sync database entries for names. Unknown names are omitted.
func (c *Client) Lookup(ctx context.Context, names []string) ([]domain.Package, error) {
	if len(names) == 0 {
		return nil, nil
	}
	out, err := c.r.run(ctx, append([]string{"-Si", "--"}, names...)...)
	if err != nil {
		return nil, err
	}
	pkgs, err := parseInfo(out, domain.SourceOfficial)
	if err != nil {
		return pkgs, domain.Classify(domain.KindParseError, zerr.With(err, "query", "-Si"))
	}
	return pkgs, nil
}

// RemoteFiles returns the files a sync package would install, from the files database.
func (c *Client) RemoteFiles(ctx context.Context, name string) ([]string, error) {
	out, err := c.r.run(ctx, "-Fl", "--", name)
	if err != nil {
		return nil, err
	}
	return parseFileList(out), nil
}
