// Package options layers widget settings per scope (system defaults, tenant,
// user) with go-options and exposes the merged result with traces.
package options

import (
	"errors"
	"fmt"

	opts "github.com/goliatone/go-options"
	layering "github.com/goliatone/go-options/layering"
)

// Snapshot captures the immutable payload associated with a scope layer.
type Snapshot struct {
	Scope      opts.Scope
	Data       map[string]any
	SnapshotID string
}

// Resolver wraps a merged go-options value.
type Resolver struct {
	options *opts.Options[map[string]any]
}

var (
	// ErrNoSnapshots signals that at least one scope snapshot must be provided.
	ErrNoSnapshots = errors.New("options: at least one snapshot is required")

	errResolverNotInitialised = errors.New("options: resolver not initialised")
)

// SystemScope is the lowest priority layer, usually fed from configuration.
func SystemScope() opts.Scope {
	return opts.NewScope("system", opts.ScopePrioritySystem, opts.WithScopeLabel("System"))
}

// UserScope holds per-user overrides.
func UserScope() opts.Scope {
	return opts.NewScope("user", opts.ScopePriorityUser, opts.WithScopeLabel("User"))
}

// NewResolver merges the snapshots ordered by scope priority.
func NewResolver(snapshots ...Snapshot) (*Resolver, error) {
	if len(snapshots) == 0 {
		return nil, ErrNoSnapshots
	}

	layers := make([]opts.Layer[map[string]any], 0, len(snapshots))
	for _, snap := range snapshots {
		if snap.Scope.Name == "" {
			return nil, fmt.Errorf("options: snapshot scope name is required")
		}
		var layerOpts []opts.LayerOption[map[string]any]
		if snap.SnapshotID != "" {
			layerOpts = append(layerOpts, opts.WithSnapshotID[map[string]any](snap.SnapshotID))
		}
		layers = append(layers, opts.NewLayer(snap.Scope, cloneMap(snap.Data), layerOpts...))
	}

	stack, err := opts.NewStack(layers...)
	if err != nil {
		return nil, err
	}
	merged, err := stack.Merge()
	if err != nil {
		return nil, err
	}
	return &Resolver{options: merged}, nil
}

// Options returns a clone of the merged go-options value.
func (r *Resolver) Options() *opts.Options[map[string]any] {
	if r == nil || r.options == nil {
		return nil
	}
	return r.options.Clone()
}

// Resolve fetches the value stored at path with the layers that provided it.
func (r *Resolver) Resolve(path string) (any, opts.Trace, error) {
	if r == nil || r.options == nil {
		return nil, opts.Trace{Path: path}, errResolverNotInitialised
	}
	return r.options.ResolveWithTrace(path)
}

// ResolveString resolves the value at path and ensures it is a string.
func (r *Resolver) ResolveString(path string) (string, opts.Trace, error) {
	return resolveAs[string](r, path, "a string")
}

// ResolveBool resolves the value at path and ensures it is a boolean.
func (r *Resolver) ResolveBool(path string) (bool, opts.Trace, error) {
	return resolveAs[bool](r, path, "a boolean")
}

// ResolveStringMap resolves a nested object whose leaves are strings. Keys are
// merged across layers, stronger layers winning per key.
func (r *Resolver) ResolveStringMap(path string) (map[string]string, opts.Trace, error) {
	_, trace, err := r.Resolve(path)
	if err != nil {
		return nil, trace, err
	}
	value, err := r.options.Get(path)
	if err != nil {
		return nil, trace, err
	}
	switch v := value.(type) {
	case map[string]string:
		out := make(map[string]string, len(v))
		for k, s := range v {
			out[k] = s
		}
		return out, trace, nil
	case map[string]any:
		out := make(map[string]string, len(v))
		for k, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, trace, fmt.Errorf("options: path %s.%s is not a string", path, k)
			}
			out[k] = s
		}
		return out, trace, nil
	default:
		return nil, trace, fmt.Errorf("options: path %s is not a string map", path)
	}
}

// Schema exports the schema associated with the merged snapshot.
func (r *Resolver) Schema() (opts.SchemaDocument, error) {
	if r == nil || r.options == nil {
		return opts.SchemaDocument{}, errResolverNotInitialised
	}
	return r.options.Schema()
}

func resolveAs[T any](r *Resolver, path, kind string) (T, opts.Trace, error) {
	var zero T
	value, trace, err := r.Resolve(path)
	if err != nil {
		return zero, trace, err
	}
	typed, ok := value.(T)
	if !ok {
		return zero, trace, fmt.Errorf("options: path %s is not %s", path, kind)
	}
	return typed, trace, nil
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	return layering.Clone(src)
}
