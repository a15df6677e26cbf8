package domain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pkgdeck/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestNewSignature_OrderIndependent(t *testing.T) {
	a := domain.NewSignature(domain.WorkDependencies, domain.ActionInstall, []domain.Target{
		{Name: "foo"}, {Name: "baz"},
	}, "v1")
	b := domain.NewSignature(domain.WorkDependencies, domain.ActionInstall, []domain.Target{
		{Name: "baz"}, {Name: "foo"}, {Name: "foo"},
	}, "v1")

	assert.Equal(t, a, b)
	assert.Len(t, string(a), 16)
}

func TestNewSignature_Inputs(t *testing.T) {
	base := domain.NewSignature(domain.WorkDependencies, domain.ActionInstall, []domain.Target{{Name: "foo"}}, "v1")

	tests := []struct {
		name string
		sig  domain.Signature
	}{
		{"kind", domain.NewSignature(domain.WorkFiles, domain.ActionInstall, []domain.Target{{Name: "foo"}}, "v1")},
		{"action", domain.NewSignature(domain.WorkDependencies, domain.ActionRemove, []domain.Target{{Name: "foo"}}, "v1")},
		{"source", domain.NewSignature(domain.WorkDependencies, domain.ActionInstall, []domain.Target{
			{Name: "foo", Source: domain.SourceThirdParty},
		}, "v1")},
		{"state version", domain.NewSignature(domain.WorkDependencies, domain.ActionInstall, []domain.Target{{Name: "foo"}}, "v2")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, base, tt.sig)
		})
	}
}

func TestParseTarget(t *testing.T) {
	assert.Equal(t, domain.Target{Name: "yay", Source: domain.SourceThirdParty}, domain.ParseTarget("aur/yay"))
	assert.Equal(t, domain.Target{Name: "vim", Source: domain.SourceOfficial}, domain.ParseTarget("vim"))
	assert.Len(t, domain.ParseTargets([]string{"a", "", "aur/b"}), 2)
}

func TestParseDependency(t *testing.T) {
	tests := []struct {
		in   string
		want domain.Dependency
	}{
		{"glibc", domain.Dependency{Name: "glibc"}},
		{"glibc>=2.38", domain.Dependency{Name: "glibc", Operator: ">=", Version: "2.38"}},
		{"python<3.13", domain.Dependency{Name: "python", Operator: "<", Version: "3.13"}},
		{"libfoo.so=1-64", domain.Dependency{Name: "libfoo.so", Operator: "=", Version: "1-64"}},
		{"git: for VCS sources", domain.Dependency{Name: "git", Annotation: "for VCS sources"}},
		{"  zlib  ", domain.Dependency{Name: "zlib"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.ParseDependency(tt.in))
		})
	}
}

func TestInstalled_Provider(t *testing.T) {
	idx := domain.NewInstalled([]domain.Package{
		{Name: "openssl", Version: "3.2.0"},
		{Name: "jre-openjdk", Version: "21", Provides: []string{"java-runtime=21"}},
	})

	p, ok := idx.Provider("java-runtime")
	require.True(t, ok)
	assert.Equal(t, "jre-openjdk", p.Name)

	_, ok = idx.Provider("nothing")
	assert.False(t, ok)
	assert.Equal(t, 2, idx.Len())
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.2.0", "1.10.0", -1},
		{"2.0-1", "1.9-3", 1},
		{"1.0", "1.0.1", -1},
		{"1:1.0", "2.0", 1},
		{"1.0a", "1.0b", -1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.CompareVersions(tt.a, tt.b))
		})
	}
}

func TestIsMajorBump(t *testing.T) {
	assert.True(t, domain.IsMajorBump("1.9.3-1", "2.0.0-1"))
	assert.False(t, domain.IsMajorBump("1.2.0", "1.3.0"))
	assert.False(t, domain.IsMajorBump("", "2.0"))
	assert.False(t, domain.IsMajorBump("2.0", "1.0"))
}

func TestKindOf_ThroughZerrWraps(t *testing.T) {
	err := domain.Classify(domain.KindNotFound, zerr.With(domain.ErrToolNotFound, "tool", "pacman"))
	wrapped := zerr.With(zerr.Wrap(err, "dependency resolution failed"), "worker", "dependencies")

	assert.Equal(t, domain.KindNotFound, domain.KindOf(wrapped))
	assert.True(t, domain.IsKind(wrapped, domain.KindNotFound))
	assert.Equal(t, domain.KindUnknown, domain.KindOf(errors.New("plain")))
	assert.NoError(t, domain.Classify(domain.KindFatal, nil))
	assert.ErrorIs(t, domain.Classify(domain.KindTimeout, context.DeadlineExceeded), context.DeadlineExceeded)
}

func TestSessionState_Transitions(t *testing.T) {
	assert.True(t, domain.SessionIdle.CanTransition(domain.SessionRunning))
	assert.False(t, domain.SessionIdle.CanTransition(domain.SessionWaitingForCredential))
	assert.True(t, domain.SessionRunning.CanTransition(domain.SessionWaitingForCredential))
	assert.True(t, domain.SessionWaitingForCredential.CanTransition(domain.SessionRunning))
	assert.True(t, domain.SessionRunning.CanTransition(domain.SessionAborted))
	assert.False(t, domain.SessionCompleted.CanTransition(domain.SessionRunning))
	assert.True(t, domain.SessionFailed.Terminal())
}

func TestCommand_Expand(t *testing.T) {
	cmd := domain.Command{Argv: []string{"pacman", "-S", "foo"}, NeedsElevation: true}
	assert.Equal(t, []string{"sudo", "pacman", "-S", "foo"}, cmd.Expand([]string{"sudo"}))

	cmd.NeedsElevation = false
	assert.Equal(t, []string{"pacman", "-S", "foo"}, cmd.Expand([]string{"sudo"}))
	assert.Equal(t, "DRY RUN: sudo pacman -S foo", domain.DryRunLine([]string{"sudo", "pacman", "-S", "foo"}))
}

func TestDecodeFragment(t *testing.T) {
	in := &domain.ServiceReport{Impacts: []domain.ServiceImpact{{Unit: "sshd.service", Active: true}}}
	data, err := domain.EncodeFragment(in)
	require.NoError(t, err)

	out, err := domain.DecodeFragment(domain.WorkServices, data)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = domain.DecodeFragment(domain.WorkKind(99), data)
	assert.Error(t, err)
}
