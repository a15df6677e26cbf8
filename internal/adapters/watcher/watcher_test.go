package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pkgdeck/internal/adapters/watcher"
	"go.trai.ch/pkgdeck/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestWatcher_ReportsNewVersion(t *testing.T) {
	root := t.TempDir()
	db := filepath.Join(root, "local")
	require.NoError(t, os.Mkdir(db, 0o755))

	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()).AnyTimes()

	w := watcher.NewWatcher(db, 20*time.Millisecond, log)
	initial := w.Version()
	require.NotEqual(t, "missing", initial)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// The watch is registered asynchronously; keep touching until an event lands.
	var got string
	require.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(db, "ripgrep-14.1.1-1"), []byte("x"), 0o644)
		select {
		case got = <-w.Changes():
			return true
		default:
			return false
		}
	}, 5*time.Second, 50*time.Millisecond)

	assert.NotEqual(t, initial, got)
	assert.NotEqual(t, initial, w.Version())

	cancel()
	require.NoError(t, <-done)
}

func TestWatcher_MissingDirectory(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)

	w := watcher.NewWatcher(filepath.Join(t.TempDir(), "nope", "local"), time.Millisecond, log)
	assert.Equal(t, "missing", w.Version())
	require.Error(t, w.Run(context.Background()))
}

func TestWatcher_VersionFollowsSyncDatabase(t *testing.T) {
	root := t.TempDir()
	db := filepath.Join(root, "local")
	syncDir := filepath.Join(root, "sync")
	require.NoError(t, os.Mkdir(db, 0o755))
	require.NoError(t, os.Mkdir(syncDir, 0o755))

	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)

	before := watcher.NewWatcher(db, time.Millisecond, log).Version()

	refreshed := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(syncDir, refreshed, refreshed))
	after := watcher.NewWatcher(db, time.Millisecond, log).Version()

	assert.NotEqual(t, before, after, "a sync database refresh changes the version across runs")
}
