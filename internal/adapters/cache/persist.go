package cache

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/pkgdeck/internal/core/domain"
	"go.trai.ch/zerr"
)

// SchemaVersion is the record layout written by Persist.
const SchemaVersion = 1

type record struct {
	Schema     int              `json:"schema"`
	Signature  domain.Signature `json:"signature"`
	Generation uint64           `json:"generation"`
	ComputedAt time.Time        `json:"computed_at"`
	Kind       domain.WorkKind  `json:"kind"`
	Payload    json.RawMessage  `json:"payload"`
}

// Load reads persisted records into the store. Records with an unknown schema,
// an undecodable payload or an expired computed_at are skipped. It returns the number of entries loaded.
func (s *Store) Load() (int, error) {
	if s.path == "" {
		return 0, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, zerr.With(zerr.Wrap(err, domain.ErrCacheReadFailed.Error()), "path", s.path)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		// A corrupt file is treated like a missing one.
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	loaded := 0
	maxGen := s.generation.Load()
	now := s.now()
	for _, raw := range records {
		var rec record
		if err := json.Unmarshal(raw, &rec); err != nil || rec.Schema != SchemaVersion {
			continue
		}
		if s.expired(rec.ComputedAt, now) {
			continue
		}
		payload, err := domain.DecodeFragment(rec.Kind, rec.Payload)
		if err != nil {
			continue
		}
		s.entries[rec.Signature] = domain.CacheEntry{
			Signature:  rec.Signature,
			Payload:    payload,
			ComputedAt: rec.ComputedAt,
			Generation: rec.Generation,
		}
		maxGen = max(maxGen, rec.Generation)
		loaded++
	}
	s.generation.Store(maxGen)

	return loaded, nil
}

// Persist prunes hidden entries and writes the rest to disk atomically.
func (s *Store) Persist() error {
	if s.path == "" {
		return nil
	}
	s.Prune()

	s.mu.RLock()
	records := make([]record, 0, len(s.entries))
	for _, entry := range s.entries {
		payload, err := domain.EncodeFragment(entry.Payload)
		if err != nil {
			s.mu.RUnlock()
			return err
		}
		records = append(records, record{
			Schema:     SchemaVersion,
			Signature:  entry.Signature,
			Generation: entry.Generation,
			ComputedAt: entry.ComputedAt,
			Kind:       entry.Payload.FragmentKind(),
			Payload:    payload,
		})
	}
	s.mu.RUnlock()

	data, err := json.Marshal(records)
	if err != nil {
		return zerr.Wrap(err, domain.ErrCacheMarshalFailed.Error())
	}

	if err := os.MkdirAll(filepath.Dir(s.path), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "path", s.path)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "path", tmp)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "path", s.path)
	}
	return nil
}

// Clear drops every entry and removes the persisted file.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.entries = make(map[domain.Signature]domain.CacheEntry)
	s.mu.Unlock()

	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "path", s.path)
	}
	return nil
}

// Path returns the persistence file, or "" when persistence is disabled.
func (s *Store) Path() string {
	return s.path
}
