package preferences

import (
	"context"
	"sync"
)

// Store persists per-user widget preference documents shaped like
// options.WidgetSnapshot output, e.g. {"widget": {"empty_text": "..."}}.
type Store interface {
	// Get returns nil without error when userID has no preferences.
	Get(ctx context.Context, userID int64) (map[string]any, error)
	Put(ctx context.Context, userID int64, prefs map[string]any) error
	Delete(ctx context.Context, userID int64) error
}

// MemoryStore keeps preference documents in a map.
type MemoryStore struct {
	mu    sync.RWMutex
	prefs map[int64]map[string]any
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{prefs: map[int64]map[string]any{}}
}

func (s *MemoryStore) Get(_ context.Context, userID int64) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.prefs[userID]
	if !ok {
		return nil, nil
	}
	return cloneDoc(doc), nil
}

func (s *MemoryStore) Put(_ context.Context, userID int64, prefs map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[userID] = cloneDoc(prefs)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.prefs, userID)
	return nil
}

func cloneDoc(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for k, v := range src {
		if nested, ok := v.(map[string]any); ok {
			out[k] = cloneDoc(nested)
			continue
		}
		out[k] = v
	}
	return out
}
