package aur_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pkgdeck/internal/adapters/aur"
	"go.trai.ch/pkgdeck/internal/core/domain"
)

const infoResponse = `{
  "version": 5,
  "type": "multiinfo",
  "resultcount": 1,
  "results": [{
    "Name": "yay-bin",
    "Version": "12.4.2-1",
    "Description": "Pacman wrapper",
    "URL": "https://github.com/Jguer/yay",
    "Maintainer": "jguer",
    "NumVotes": 512,
    "License": ["GPL-3.0-or-later"],
    "Depends": ["pacman>6.1", "git"],
    "Conflicts": ["yay"],
    "Provides": ["yay"]
  }]
}`

func newClient(t *testing.T, h http.HandlerFunc) *aur.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := aur.NewClient(srv.URL, time.Second, 0)
	require.NoError(t, err)
	return c
}

func TestClient_Info(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rpc/v5/info", r.URL.Path)
		assert.Equal(t, []string{"yay-bin", "missing"}, r.URL.Query()["arg[]"])
		_, _ = w.Write([]byte(infoResponse))
	})

	pkgs, err := c.Info(context.Background(), []string{"yay-bin", "missing"})
	require.NoError(t, err)
	require.Len(t, pkgs, 1)
	assert.Equal(t, domain.SourceThirdParty, pkgs[0].Source)
	assert.Equal(t, 512, pkgs[0].Votes)
	assert.Equal(t, []string{"yay"}, pkgs[0].Conflicts)
}

func TestClient_InfoMalformed(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	})

	_, err := c.Info(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.Equal(t, domain.KindParseError, domain.KindOf(err))
}

func TestClient_InfoRPCError(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"version":5,"type":"error","resultcount":0,"results":[],"error":"Too many package results."}`))
	})

	_, err := c.Info(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrSourceRequestFailed.Error())
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c, err := aur.NewClient(srv.URL, 50*time.Millisecond, 0)
	require.NoError(t, err)

	_, err = c.Info(context.Background(), []string{"slow"})
	require.Error(t, err)
	assert.Equal(t, domain.KindTimeout, domain.KindOf(err))
}

func TestClient_Cancelled(t *testing.T) {
	arrived := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		close(arrived)
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	c, err := aur.NewClient(srv.URL, time.Minute, 0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-arrived
		cancel()
	}()

	_, err = c.Info(ctx, []string{"slow"})
	require.Error(t, err)
	assert.Equal(t, domain.KindCancelled, domain.KindOf(err))
}

func TestClient_BuildInfo(t *testing.T) {
	srcinfo, err := os.ReadFile("testdata/yay-bin.SRCINFO")
	require.NoError(t, err)

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cgit/aur.git/plain/.SRCINFO", r.URL.Path)
		if r.URL.Query().Get("h") != "yay-bin" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(srcinfo)
	})

	pkg, err := c.BuildInfo(context.Background(), "yay-bin")
	require.NoError(t, err)
	assert.Equal(t, "12.4.2-1", pkg.Version)
	assert.Equal(t, []string{"pacman>6.1", "git", "glibc"}, pkg.Depends)
	assert.Equal(t, []string{"git"}, pkg.MakeDepends)
	assert.Len(t, pkg.OptDepends, 2)

	_, err = c.BuildInfo(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPackageNotFound))
}

func TestParseSrcinfo_SplitPackage(t *testing.T) {
	data, err := os.ReadFile("testdata/yay-bin.SRCINFO")
	require.NoError(t, err)

	pkg, err := aur.ParseSrcinfo(data, "yay-bin-debug")
	require.NoError(t, err)
	assert.Equal(t, []string{"yay-bin"}, pkg.Depends, "package section overrides pkgbase")
	assert.Equal(t, []string{"git"}, pkg.MakeDepends)
}

func TestParseSrcinfo_Malformed(t *testing.T) {
	_, err := aur.ParseSrcinfo([]byte("not a srcinfo"), "x")
	require.Error(t, err)

	_, err = aur.ParseSrcinfo([]byte("pkgname = x\n"), "x")
	require.Error(t, err)
}
