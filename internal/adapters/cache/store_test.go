package cache_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pkgdeck/internal/adapters/cache"
	"go.trai.ch/pkgdeck/internal/core/domain"
)

func report(unit string) *domain.ServiceReport {
	return &domain.ServiceReport{Impacts: []domain.ServiceImpact{{Unit: unit, Active: true}}}
}

func TestStore_PutGet(t *testing.T) {
	s := cache.NewStore("")

	_, ok := s.Get("sig")
	assert.False(t, ok)

	put := s.Put("sig", report("sshd.service"))
	got, ok := s.Get("sig")
	require.True(t, ok)
	assert.Equal(t, put, got)
	assert.Equal(t, uint64(1), got.Generation)
	assert.False(t, got.ComputedAt.IsZero())
}

func TestStore_AdvanceHidesWithoutEvicting(t *testing.T) {
	s := cache.NewStore("")
	s.Put("old", report("a.service"))

	gen := s.Advance()
	assert.Equal(t, uint64(2), gen)

	_, ok := s.Get("old")
	assert.False(t, ok, "entries below the floor are filtered on read")
	assert.Equal(t, 1, s.Len(), "filtered entries stay in memory")

	s.Put("new", report("b.service"))
	entry, ok := s.Get("new")
	require.True(t, ok)
	assert.Equal(t, uint64(2), entry.Generation)

	assert.Equal(t, 1, s.Prune())
	assert.Equal(t, 1, s.Len())
}

func TestStore_InvalidateBeforeNeverMovesBack(t *testing.T) {
	s := cache.NewStore("")
	s.Put("a", report("a.service"))
	s.Advance()
	s.Advance()

	s.InvalidateBefore(1)
	_, ok := s.Get("a")
	assert.False(t, ok)
}

func TestStore_OverwriteRestoresVisibility(t *testing.T) {
	s := cache.NewStore("")
	s.Put("a", report("a.service"))
	s.Advance()
	s.Put("a", report("a2.service"))

	entry, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "a2.service", entry.Payload.(*domain.ServiceReport).Impacts[0].Unit)
}

func TestStore_ConcurrentReadersAndWriter(t *testing.T) {
	s := cache.NewStore("")
	var wg sync.WaitGroup

	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				if i == 0 {
					s.Put("shared", report("x.service"))
					continue
				}
				if entry, ok := s.Get("shared"); ok {
					assert.Equal(t, domain.Signature("shared"), entry.Signature)
				}
			}
		}()
	}
	wg.Wait()
}

func TestStore_PersistAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "fragments.json")

	s := cache.NewStore(path)
	s.Put("hidden", report("old.service"))
	s.Advance()
	s.Put("kept", &domain.DependencyReport{
		Action: domain.ActionRemove,
		Nodes:  []domain.DependencyNode{{Name: "app", ReverseDependent: true, Direct: true}},
	})
	require.NoError(t, s.Persist())

	loaded := cache.NewStore(path)
	n, err := loaded.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	entry, ok := loaded.Get("kept")
	require.True(t, ok)
	assert.Equal(t, uint64(2), entry.Generation)
	deps, ok := entry.Payload.(*domain.DependencyReport)
	require.True(t, ok)
	assert.Equal(t, "app", deps.Nodes[0].Name)

	_, ok = loaded.Get("hidden")
	assert.False(t, ok)
	assert.Equal(t, uint64(2), loaded.Generation())
}

func TestStore_LoadSkipsUnknownSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fragments.json")
	content := `[
		{"schema": 99, "signature": "future", "generation": 1, "kind": 3, "payload": {}},
		{"schema": 1, "signature": "bad-kind", "generation": 1, "kind": 42, "payload": {}},
		{"schema": 1, "signature": "ok", "generation": 1, "kind": 3, "payload": {"impacts": []}}
	]`
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))

	s := cache.NewStore(path)
	n, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, ok := s.Get("future")
	assert.False(t, ok)
	_, ok = s.Get("ok")
	assert.True(t, ok)
}

func TestStore_LoadCorruptFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fragments.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), domain.FilePerm))

	n, err := cache.NewStore(path).Load()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fragments.json")
	s := cache.NewStore(path)
	s.Put("a", report("a.service"))
	require.NoError(t, s.Persist())

	require.NoError(t, s.Clear())
	assert.Zero(t, s.Len())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestStore_NoPathIsNoop(t *testing.T) {
	s := cache.NewStore("")
	s.Put("a", report("a.service"))

	require.NoError(t, s.Persist())
	n, err := s.Load()
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, s.Path())
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func TestStore_MaxAgeHidesOldEntries(t *testing.T) {
	c := &clock{now: time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)}
	s := cache.NewStore("", cache.WithMaxAge(time.Hour), cache.WithClock(c.Now))
	s.Put("sig", report("sshd.service"))

	c.now = c.now.Add(59 * time.Minute)
	_, ok := s.Get("sig")
	assert.True(t, ok)

	c.now = c.now.Add(2 * time.Minute)
	_, ok = s.Get("sig")
	assert.False(t, ok, "expired entries are filtered on read")
	assert.Equal(t, 1, s.Prune())
	assert.Zero(t, s.Len())
}

func TestStore_LoadSkipsExpiredRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fragments.json")
	c := &clock{now: time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)}

	s := cache.NewStore(path, cache.WithClock(c.Now))
	s.Put("old", report("old.service"))
	c.now = c.now.Add(3 * time.Hour)
	s.Put("fresh", report("fresh.service"))
	require.NoError(t, s.Persist())

	c.now = c.now.Add(30 * time.Minute)
	loaded := cache.NewStore(path, cache.WithMaxAge(time.Hour), cache.WithClock(c.Now))
	n, err := loaded.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, ok := loaded.Get("old")
	assert.False(t, ok)
	entry, ok := loaded.Get("fresh")
	require.True(t, ok)
	assert.True(t, entry.ComputedAt.Equal(c.now.Add(-30*time.Minute)))
}

func TestStore_ZeroMaxAgeKeepsEntries(t *testing.T) {
	c := &clock{now: time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)}
	s := cache.NewStore("", cache.WithClock(c.Now))
	s.Put("sig", report("sshd.service"))

	c.now = c.now.Add(24 * 365 * time.Hour)
	_, ok := s.Get("sig")
	assert.True(t, ok)
}
