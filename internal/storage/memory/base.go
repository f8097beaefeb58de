package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-notification-list/pkg/interfaces/store"
)

// recordMeta exposes the bookkeeping fields the base repository manages.
type recordMeta struct {
	ID        *int64
	Timestamp *time.Time
	CreatedAt *time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
}

type baseMemoryRepo[T any] struct {
	mu        sync.RWMutex
	records   map[int64]T
	nextID    int64
	extract   func(*T) recordMeta
	entityStr string
}

func newBaseMemoryRepo[T any](entity string, extract func(*T) recordMeta) baseMemoryRepo[T] {
	return baseMemoryRepo[T]{
		records:   make(map[int64]T),
		extract:   extract,
		entityStr: entity,
	}
}

func (r *baseMemoryRepo[T]) create(ctx context.Context, record *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	base := r.extract(record)
	if *base.ID <= 0 {
		r.nextID++
		*base.ID = r.nextID
	} else if *base.ID > r.nextID {
		r.nextID = *base.ID
	}
	now := time.Now().UTC()
	if base.CreatedAt.IsZero() {
		*base.CreatedAt = now
	}
	if base.Timestamp.IsZero() {
		*base.Timestamp = now
	}
	*base.UpdatedAt = now
	r.records[*base.ID] = *record
	return nil
}

func (r *baseMemoryRepo[T]) update(ctx context.Context, record *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	base := r.extract(record)
	if *base.ID <= 0 {
		return store.ErrNotFound
	}
	existing, ok := r.records[*base.ID]
	if !ok || !r.extract(&existing).DeletedAt.IsZero() {
		return store.ErrNotFound
	}
	*base.UpdatedAt = time.Now().UTC()
	r.records[*base.ID] = *record
	return nil
}

func (r *baseMemoryRepo[T]) getByID(ctx context.Context, id int64, includeDeleted bool) (*T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if !includeDeleted && !r.extract(&record).DeletedAt.IsZero() {
		return nil, store.ErrNotFound
	}
	copy := record
	return &copy, nil
}

func (r *baseMemoryRepo[T]) list(ctx context.Context, opts store.ListOptions, keep func(*T) bool) (store.ListResult[T], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var filtered []T
	for _, record := range r.records {
		base := r.extract(&record)
		if !opts.IncludeSoftDeleted && !base.DeletedAt.IsZero() {
			continue
		}
		if !opts.Since.IsZero() && base.Timestamp.Before(opts.Since) {
			continue
		}
		if !opts.Until.IsZero() && base.Timestamp.After(opts.Until) {
			continue
		}
		if keep != nil && !keep(&record) {
			continue
		}
		filtered = append(filtered, record)
	}

	sort.Slice(filtered, func(i, j int) bool {
		a, b := r.extract(&filtered[i]), r.extract(&filtered[j])
		if a.Timestamp.Equal(*b.Timestamp) {
			return *a.ID > *b.ID
		}
		return a.Timestamp.After(*b.Timestamp)
	})

	total := len(filtered)
	start := opts.Offset
	if start > total {
		start = total
	}
	end := total
	if opts.Limit > 0 && start+opts.Limit < end {
		end = start + opts.Limit
	}

	result := store.ListResult[T]{
		Items: filtered[start:end],
		Total: total,
	}
	return result, nil
}

// mutate applies fn to every live record accepted by match and returns how
// many were changed.
func (r *baseMemoryRepo[T]) mutate(match func(*T) bool, fn func(*T) bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed := 0
	now := time.Now().UTC()
	for id, record := range r.records {
		base := r.extract(&record)
		if !base.DeletedAt.IsZero() || !match(&record) {
			continue
		}
		if fn(&record) {
			*base.UpdatedAt = now
			r.records[id] = record
			changed++
		}
	}
	return changed
}

func (r *baseMemoryRepo[T]) softDelete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[id]
	if !ok {
		return store.ErrNotFound
	}
	base := r.extract(&record)
	if !base.DeletedAt.IsZero() {
		return store.ErrNotFound
	}
	*base.DeletedAt = time.Now().UTC()
	r.records[id] = record
	return nil
}
