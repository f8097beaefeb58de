package templates

import (
	"sort"
	"sync"

	gotemplate "github.com/goliatone/go-template"
)

// helperRegistry mirrors the helper funcs pushed into the go-template engine.
type helperRegistry struct {
	mu       sync.RWMutex
	funcs    map[string]any
	renderer *gotemplate.Engine
}

func newHelperRegistry(renderer *gotemplate.Engine) *helperRegistry {
	return &helperRegistry{
		funcs:    make(map[string]any),
		renderer: renderer,
	}
}

// Register adds funcs; a nil value removes the helper from the mirror.
func (r *helperRegistry) Register(funcs map[string]any) {
	if r == nil || len(funcs) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	live := make(map[string]any, len(funcs))
	for name, fn := range funcs {
		if fn == nil {
			delete(r.funcs, name)
			continue
		}
		r.funcs[name] = fn
		live[name] = fn
	}
	if len(live) > 0 {
		gotemplate.WithTemplateFunc(live)(r.renderer)
	}
}

// Names lists the registered helpers.
func (r *helperRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
