package metrics_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pkgdeck/internal/adapters/metrics"
)

func TestPrometheus_Counters(t *testing.T) {
	m := metrics.NewPrometheus("")

	m.CacheLookup("dependencies", true)
	m.CacheLookup("dependencies", false)
	m.CacheLookup("dependencies", false)
	m.Computation("files", "ok")
	m.Coalesced("dependencies")
	m.StaleDiscarded("services")
	m.SessionFinished("completed")

	n, err := testutil.GatherAndCount(m.Gatherer(), "pkgdeck_cache_lookups_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "one series per result label")

	n, err = testutil.GatherAndCount(m.Gatherer())
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	require.NoError(t, m.Flush(), "flush without a textfile is a no-op")
}

func TestPrometheus_FlushTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics", "pkgdeck.prom")
	m := metrics.NewPrometheus(path)
	m.SessionFinished("failed")

	require.NoError(t, m.Flush())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `pkgdeck_execution_sessions_total{state="failed"} 1`)
}
