package workers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pkgdeck/internal/core/domain"
	"go.trai.ch/pkgdeck/internal/engine/workers"
	"go.uber.org/mock/gomock"
)

func TestFiles_UpdatePredictsPacnew(t *testing.T) {
	s := newSources(t)
	s.local.EXPECT().Installed(gomock.Any()).Return([]domain.Package{
		{Name: "openssh", Version: "9.7-1", Backup: []string{"/etc/ssh/sshd_config"}},
	}, nil)
	s.local.EXPECT().InstalledFiles(gomock.Any(), "openssh").Return([]string{
		"/etc/ssh/sshd_config", "/usr/bin/ssh", "/usr/bin/slogin",
	}, nil)
	s.repo.EXPECT().RemoteFiles(gomock.Any(), "openssh").Return([]string{
		"/etc/ssh/sshd_config", "/usr/bin/ssh", "/usr/bin/sshd-session",
	}, nil)

	frag, err := workers.NewFiles(s.local, s.repo).
		Compute(t.Context(), item(domain.WorkFiles, domain.ActionUpdate, "openssh"))
	require.NoError(t, err)

	assert.Equal(t, []domain.FileChange{
		{Package: "openssh", Path: "/etc/ssh/sshd_config", Kind: domain.FileChanged, ConfigConflict: true, PredictedSave: "/etc/ssh/sshd_config.pacnew"},
		{Package: "openssh", Path: "/usr/bin/slogin", Kind: domain.FileRemoved},
		{Package: "openssh", Path: "/usr/bin/ssh", Kind: domain.FileChanged},
		{Package: "openssh", Path: "/usr/bin/sshd-session", Kind: domain.FileNew},
	}, frag.(*domain.FileReport).Changes)
}

func TestFiles_InstallListsNewFiles(t *testing.T) {
	s := newSources(t)
	s.local.EXPECT().Installed(gomock.Any()).Return(nil, nil)
	s.repo.EXPECT().RemoteFiles(gomock.Any(), "ripgrep").Return([]string{"/usr/bin/rg"}, nil)

	frag, err := workers.NewFiles(s.local, s.repo).
		Compute(t.Context(), item(domain.WorkFiles, domain.ActionInstall, "ripgrep", "aur/yay-bin"))
	require.NoError(t, err)
	report := frag.(*domain.FileReport)

	assert.Equal(t, []domain.FileChange{{Package: "ripgrep", Path: "/usr/bin/rg", Kind: domain.FileNew}}, report.Changes)
	assert.True(t, report.Incomplete)
	require.Len(t, report.Notes, 1)
	assert.Contains(t, report.Notes[0], "yay-bin")
}

func TestFiles_RemovePredictsPacsave(t *testing.T) {
	s := newSources(t)
	s.local.EXPECT().Installed(gomock.Any()).Return([]domain.Package{
		{Name: "libbar", Version: "1", Backup: []string{"/etc/bar.conf"}},
	}, nil)
	s.local.EXPECT().InstalledFiles(gomock.Any(), "libbar").Return([]string{"/etc/bar.conf", "/usr/lib/libbar.so"}, nil)

	frag, err := workers.NewFiles(s.local, s.repo).
		Compute(t.Context(), item(domain.WorkFiles, domain.ActionRemove, "libbar"))
	require.NoError(t, err)

	assert.Equal(t, []domain.FileChange{
		{Package: "libbar", Path: "/etc/bar.conf", Kind: domain.FileRemoved, ConfigConflict: true, PredictedSave: "/etc/bar.conf.pacsave"},
		{Package: "libbar", Path: "/usr/lib/libbar.so", Kind: domain.FileRemoved},
	}, frag.(*domain.FileReport).Changes)
}

func TestFiles_MissingToolFailsSection(t *testing.T) {
	s := newSources(t)
	s.local.EXPECT().Installed(gomock.Any()).Return(nil, nil)
	s.repo.EXPECT().RemoteFiles(gomock.Any(), "ripgrep").
		Return(nil, domain.Classify(domain.KindNotFound, domain.ErrToolNotFound))

	_, err := workers.NewFiles(s.local, s.repo).
		Compute(t.Context(), item(domain.WorkFiles, domain.ActionInstall, "ripgrep"))
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestFiles_UnsyncedFileDatabaseIsNote(t *testing.T) {
	s := newSources(t)
	s.local.EXPECT().Installed(gomock.Any()).Return(nil, nil)
	s.repo.EXPECT().RemoteFiles(gomock.Any(), "ripgrep").Return(nil, domain.ErrToolFailed)

	frag, err := workers.NewFiles(s.local, s.repo).
		Compute(t.Context(), item(domain.WorkFiles, domain.ActionInstall, "ripgrep"))
	require.NoError(t, err)
	report := frag.(*domain.FileReport)
	assert.Empty(t, report.Changes)
	assert.True(t, report.Incomplete)
}
