// Package aur queries the Arch User Repository over its RPC and cgit endpoints.
package aur

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.trai.ch/pkgdeck/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/time/rate"
)

// maxBody caps how much of a response is read.
const maxBody = 8 << 20

// Client implements ports.ThirdPartyIndex.
type Client struct {
	base    *url.URL
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Client. Each request is bounded by timeout and requests
// are spaced to at most rps per second.
func NewClient(baseURL string, timeout time.Duration, rps float64) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "invalid AUR base URL"), "url", baseURL)
	}
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &Client{
		base:    base,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, 1),
	}, nil
}

type rpcResponse struct {
	Version     int         `json:"version"`
	Type        string      `json:"type"`
	ResultCount int         `json:"resultcount"`
	Results     []rpcResult `json:"results"`
	Error       string      `json:"error"`
}

type rpcResult struct {
	Name         string   `json:"Name"`
	Version      string   `json:"Version"`
	Description  string   `json:"Description"`
	URL          string   `json:"URL"`
	Maintainer   string   `json:"Maintainer"`
	NumVotes     int      `json:"NumVotes"`
	License      []string `json:"License"`
	Depends      []string `json:"Depends"`
	MakeDepends  []string `json:"MakeDepends"`
	CheckDepends []string `json:"CheckDepends"`
	OptDepends   []string `json:"OptDepends"`
	Conflicts    []string `json:"Conflicts"`
	Provides     []string `json:"Provides"`
	Replaces     []string `json:"Replaces"`
}

// Info returns RPC manifests for names. Unknown names are omitted.
func (c *Client) Info(ctx context.Context, names []string) ([]domain.Package, error) {
	if len(names) == 0 {
		return nil, nil
	}

	q := url.Values{}
	for _, n := range names {
		q.Add("arg[]", n)
	}
	body, err := c.get(ctx, "/rpc/v5/info", q)
	if err != nil {
		return nil, err
	}

	var resp rpcResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, domain.Classify(domain.KindParseError, zerr.Wrap(err, domain.ErrMetadataParseFailed.Error()))
	}
	if resp.Type == "error" {
		return nil, zerr.With(domain.ErrSourceRequestFailed, "reason", resp.Error)
	}

	pkgs := make([]domain.Package, 0, len(resp.Results))
	for _, r := range resp.Results {
		pkgs = append(pkgs, domain.Package{
			Name:         r.Name,
			Version:      r.Version,
			Description:  r.Description,
			URL:          r.URL,
			Source:       domain.SourceThirdParty,
			Repository:   "aur",
			Maintainer:   r.Maintainer,
			Licenses:     r.License,
			Votes:        r.NumVotes,
			Depends:      r.Depends,
			MakeDepends:  r.MakeDepends,
			CheckDepends: r.CheckDepends,
			OptDepends:   r.OptDepends,
			Conflicts:    r.Conflicts,
			Provides:     r.Provides,
			Replaces:     r.Replaces,
		})
	}
	return pkgs, nil
}

// BuildInfo fetches and parses the .SRCINFO of one package.
func (c *Client) BuildInfo(ctx context.Context, name string) (domain.Package, error) {
	body, err := c.get(ctx, "/cgit/aur.git/plain/.SRCINFO", url.Values{"h": {name}})
	if err != nil {
		return domain.Package{}, err
	}
	pkg, err := ParseSrcinfo(body, name)
	if err != nil {
		return domain.Package{}, domain.Classify(domain.KindParseError, zerr.With(err, "package", name))
	}
	return pkg, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, c.transportError(ctx, err, path)
	}

	u := *c.base
	u.Path += path
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrSourceRequestFailed.Error()), "url", u.String())
	}
	req.Header.Set("User-Agent", "pkgdeck")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, err, path)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, c.transportError(ctx, err, path)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, zerr.With(zerr.Wrap(domain.ErrPackageNotFound, "aur"), "path", path)
	case resp.StatusCode >= http.StatusBadRequest:
		failed := zerr.With(domain.ErrSourceRequestFailed, "status", resp.StatusCode)
		return nil, zerr.With(failed, "path", path)
	}
	return body, nil
}

// transportError classifies deadline expiry as a timeout and cancellation as cancelled.
func (c *Client) transportError(ctx context.Context, err error, path string) error {
	var netErr interface{ Timeout() bool }
	switch {
	case errors.Is(ctx.Err(), context.Canceled) || errors.Is(err, context.Canceled):
		return domain.Classify(domain.KindCancelled, zerr.With(err, "path", path))
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return domain.Classify(domain.KindTimeout, zerr.With(zerr.Wrap(err, domain.ErrSourceTimeout.Error()), "path", path))
	}
	return zerr.With(zerr.Wrap(err, domain.ErrSourceRequestFailed.Error()), "path", path)
}
