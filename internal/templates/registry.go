package templates

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-notification-list/pkg/domain"
)

// registry stores type definitions as code -> locale -> definition. A
// definition registered without a locale answers for any locale.
type registry struct {
	mu    sync.RWMutex
	types map[string]map[string]domain.TypeDefinition
}

const anyLocale = ""

func newRegistry() *registry {
	return &registry{
		types: make(map[string]map[string]domain.TypeDefinition),
	}
}

func (r *registry) Upsert(def domain.TypeDefinition) {
	codeKey := normalizeKey(def.Code)
	localeKey := normalizeLocale(def.Locale)

	r.mu.Lock()
	defer r.mu.Unlock()

	variants := r.types[codeKey]
	if variants == nil {
		variants = make(map[string]domain.TypeDefinition)
		r.types[codeKey] = variants
	}
	variants[localeKey] = cloneDefinition(def)
}

func (r *registry) Has(code string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types[normalizeKey(code)]) > 0
}

func (r *registry) Codes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.types))
	for _, variants := range r.types {
		for _, def := range variants {
			out = append(out, def.Code)
			break
		}
	}
	sort.Strings(out)
	return out
}

// Resolve returns the first variant found along locales, then the
// locale-agnostic variant.
func (r *registry) Resolve(code string, locales []string) (domain.TypeDefinition, string, error) {
	if strings.TrimSpace(code) == "" {
		return domain.TypeDefinition{}, "", ErrTypeNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	variants := r.types[normalizeKey(code)]
	if len(variants) == 0 {
		return domain.TypeDefinition{}, "", ErrTypeNotFound
	}

	seen := make(map[string]struct{}, len(locales))
	for _, candidate := range locales {
		locKey := normalizeLocale(candidate)
		if locKey == "" {
			continue
		}
		if _, ok := seen[locKey]; ok {
			continue
		}
		seen[locKey] = struct{}{}
		if def, ok := variants[locKey]; ok {
			return def, candidate, nil
		}
	}
	if def, ok := variants[anyLocale]; ok {
		locale := ""
		if len(locales) > 0 {
			locale = locales[0]
		}
		return def, locale, nil
	}
	return domain.TypeDefinition{}, "", ErrTypeNotFound
}

func normalizeKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func normalizeLocale(value string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), "_", "-")
}

func cloneDefinition(def domain.TypeDefinition) domain.TypeDefinition {
	if def.Text.Templates != nil {
		templates := make(map[string]string, len(def.Text.Templates))
		for k, v := range def.Text.Templates {
			templates[k] = v
		}
		def.Text.Templates = templates
	}
	return def
}
