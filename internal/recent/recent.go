// Package recent keeps the bounded, most-recent-first list of searched city names.
package recent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Leeky19/meteo/internal/storage"
	"github.com/Leeky19/meteo/internal/weather"
)

const (
	DefaultKey   = "recent_searches"
	DefaultLimit = 5
)

// Store mirrors the persisted list in memory. All mutations go through one mutex so
// the list stays capped and duplicate-free under concurrent searches.
type Store struct {
	kv     storage.KV
	key    string
	limit  int
	logger *zap.Logger

	mu    sync.Mutex
	items []string
}

func NewStore(kv storage.KV, key string, limit int, logger *zap.Logger) *Store {
	if key == "" {
		key = DefaultKey
	}
	if limit <= 0 || limit > DefaultLimit {
		limit = DefaultLimit
	}
	return &Store{
		kv:     kv,
		key:    key,
		limit:  limit,
		logger: logger,
	}
}

// Load reads the persisted list. A missing key is an empty list; any other failure
// leaves the list empty and is reported as weather.ErrStorage.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		s.items = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", weather.ErrStorage, err)
	}

	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return fmt.Errorf("%w: %v", weather.ErrStorage, err)
	}

	// Normalize whatever was on disk.
	var normalized []string
	for i := len(items) - 1; i >= 0; i-- {
		normalized = Push(normalized, items[i], s.limit)
	}
	s.items = normalized

	s.logger.Debug("Recent searches loaded", zap.Int("count", len(s.items)))
	return nil
}

// Add moves name to the front and persists the list. The in-memory list is updated
// even when persisting fails.
func (s *Store) Add(ctx context.Context, name string) error {
	if name == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = Push(s.items, name, s.limit)

	data, err := json.Marshal(s.items)
	if err != nil {
		return fmt.Errorf("%w: %v", weather.ErrStorage, err)
	}
	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("%w: %v", weather.ErrStorage, err)
	}
	return nil
}

// List returns a copy of the current list.
func (s *Store) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// Push returns a new list with name first, any earlier occurrence removed, capped at limit.
func Push(list []string, name string, limit int) []string {
	out := make([]string, 0, limit)
	out = append(out, name)
	for _, item := range list {
		if len(out) == limit {
			break
		}
		if item != name {
			out = append(out, item)
		}
	}
	return out
}
