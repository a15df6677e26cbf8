package pacman_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pkgdeck/internal/adapters/pacman"
	"go.trai.ch/pkgdeck/internal/core/domain"
)

func TestCommandBuilder_Install(t *testing.T) {
	fakeTool(t, "paru", "exit 0\n")

	cmds := pacman.NewCommandBuilder().Build(domain.ActionInstall,
		domain.ParseTargets([]string{"ripgrep", "aur/yay-bin", "fd"}), false)

	require.Len(t, cmds, 2)
	assert.Equal(t, []string{"pacman", "-S", "--needed", "--noconfirm", "ripgrep", "fd"}, cmds[0].Argv)
	assert.True(t, cmds[0].NeedsElevation)
	assert.True(t, cmds[0].Abortable)

	assert.Equal(t, []string{"paru", "-S", "--needed", "--noconfirm", "yay-bin"}, cmds[1].Argv)
	assert.False(t, cmds[1].NeedsElevation)
}

func TestCommandBuilder_RemoveIsNotAbortable(t *testing.T) {
	cmds := pacman.NewCommandBuilder().Build(domain.ActionRemove,
		domain.ParseTargets([]string{"libbar", "aur/foo-git"}), true)

	require.Len(t, cmds, 1)
	assert.Equal(t, []string{"pacman", "-Rns", "--noconfirm", "libbar", "foo-git"}, cmds[0].Argv)
	assert.False(t, cmds[0].Abortable)
	assert.True(t, cmds[0].DryRun)
}

func TestCommandBuilder_FullUpgrade(t *testing.T) {
	cmds := pacman.NewCommandBuilder().Build(domain.ActionUpdate, nil, false)

	require.Len(t, cmds, 1)
	assert.Equal(t, []string{"pacman", "-Syu", "--noconfirm"}, cmds[0].Argv)
}

func TestCommandBuilder_FallbackHelper(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	fakeTool(t, "yay", "exit 0\n")

	cmds := pacman.NewCommandBuilder().Build(domain.ActionUpdate, domain.ParseTargets([]string{"aur/foo"}), false)

	require.Len(t, cmds, 1)
	assert.Equal(t, []string{"yay", "-S", "--needed", "--noconfirm", "foo"}, cmds[0].Argv)
}
