package core

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/go-hclog"
	"github.com/huangsam/csmstyle/internal/contract"
	"github.com/huangsam/csmstyle/schema"
)

// currentStateVersion defines the version of the persisted suppression list.
const currentStateVersion = 1

// StorageKey scopes the persisted suppression set to one workspace root.
func StorageKey(workspaceRoot string) string {
	return fmt.Sprintf("%s:%016x", schema.IgnoredViolationsKey, xxhash.Sum64String(filepath.Clean(workspaceRoot)))
}

// SuppressionStore is the in-memory set of ignored violation keys for a
// workspace, backed by a StateStore. It is safe for concurrent use.
type SuppressionStore struct {
	mu     sync.RWMutex
	keys   map[string]struct{}
	state  contract.StateStore
	key    string
	logger hclog.Logger
	now    contract.Clock
}

// NewSuppressionStore creates an empty store. Call Load to read persisted keys.
// A nil state store keeps the set in memory only.
func NewSuppressionStore(state contract.StateStore, workspaceRoot string, logger hclog.Logger) *SuppressionStore {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &SuppressionStore{
		keys:   make(map[string]struct{}),
		state:  state,
		key:    StorageKey(workspaceRoot),
		logger: logger,
		now:    time.Now,
	}
}

// Load replaces the in-memory set with the persisted one and returns its size.
// Missing, unreadable, or outdated data yields an empty set.
func (s *SuppressionStore) Load() int {
	keys := make(map[string]struct{})
	for _, k := range s.readPersisted() {
		keys[k] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = keys
	return len(keys)
}

// readPersisted fetches the stored key list, logging instead of failing.
func (s *SuppressionStore) readPersisted() []string {
	if s.state == nil {
		return nil
	}
	data, version, _, err := s.state.Get(s.key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		s.logger.Warn("failed to load ignored violations", "error", err)
		return nil
	}
	if version != currentStateVersion {
		s.logger.Warn("ignoring ignored violations with unknown version", "version", version)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		s.logger.Warn("failed to decode ignored violations", "error", err)
		return nil
	}
	return list
}

// Add inserts one key.
func (s *SuppressionStore) Add(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = struct{}{}
}

// AddMany inserts several keys.
func (s *SuppressionStore) AddMany(keys []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		s.keys[k] = struct{}{}
	}
}

// Remove deletes one key. Absent keys are ignored.
func (s *SuppressionStore) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
}

// RemoveMany deletes several keys.
func (s *SuppressionStore) RemoveMany(keys []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.keys, k)
	}
}

// Clear empties the set.
func (s *SuppressionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.keys)
}

// Contains reports whether the finding identified by path, line, and message is suppressed.
func (s *SuppressionStore) Contains(path string, line int, message string) bool {
	return s.Has(ViolationKey(path, line, message))
}

// Has reports whether a key is in the set.
func (s *SuppressionStore) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.keys[key]
	return ok
}

// Len returns the number of suppressed keys.
func (s *SuppressionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}

// Keys returns a sorted snapshot of the set.
func (s *SuppressionStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Entries returns the decoded snapshot of the set. Keys that fail to decode
// are still returned with the whole key as the message.
func (s *SuppressionStore) Entries() []schema.ViolationEntry {
	keys := s.Keys()
	entries := make([]schema.ViolationEntry, 0, len(keys))
	for _, k := range keys {
		entry, err := DecodeViolationKey(k)
		if err != nil {
			entry = schema.ViolationEntry{Key: k, Message: k}
		}
		entries = append(entries, entry)
	}
	return entries
}

// Persist writes the entire set to the state store, replacing prior contents.
func (s *SuppressionStore) Persist() error {
	if s.state == nil {
		return nil
	}
	data, err := json.Marshal(s.Keys())
	if err != nil {
		return fmt.Errorf("failed to encode ignored violations: %w", err)
	}
	if err := s.state.Set(s.key, data, currentStateVersion, s.now().Unix()); err != nil {
		return fmt.Errorf("failed to persist ignored violations: %w", err)
	}
	return nil
}
