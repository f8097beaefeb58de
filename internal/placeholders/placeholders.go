// Package placeholders extracts {token} placeholders from template strings
// and substitutes them in a single non-recursive pass.
package placeholders

import (
	"regexp"
	"strings"
)

// SectionRoot is the only root resolved while compiling a template.
const SectionRoot = "section"

var tokenPattern = regexp.MustCompile(`\{([^}]+)\}`)

// Scope answers dotted-path lookups while a table is resolved.
type Scope interface {
	Lookup(path string) (string, bool)
}

// ScopeFunc adapts a function to Scope.
type ScopeFunc func(path string) (string, bool)

func (f ScopeFunc) Lookup(path string) (string, bool) { return f(path) }

// EmptyScope resolves nothing.
var EmptyScope Scope = ScopeFunc(func(string) (string, bool) { return "", false })

// Resolver computes a placeholder value at render time.
type Resolver func(scope Scope) string

type kind uint8

const (
	kindPassthrough kind = iota
	kindLiteral
	kindResolver
)

// Value is what a placeholder is bound to after compilation.
type Value struct {
	kind    kind
	literal string
	fn      Resolver
}

// Literal binds a placeholder to a fixed string.
func Literal(s string) Value { return Value{kind: kindLiteral, literal: s} }

// Func binds a placeholder to a resolver. A nil resolver renders empty.
func Func(fn Resolver) Value { return Value{kind: kindResolver, fn: fn} }

// Passthrough binds a placeholder to its own key. At resolve time the key is
// looked up in the scope first.
func Passthrough(key string) Value { return Value{kind: kindPassthrough, literal: key} }

// IsPassthrough reports whether the value is an unresolved key.
func (v Value) IsPassthrough() bool { return v.kind == kindPassthrough }

// IsResolver reports whether the value is computed at render time.
func (v Value) IsResolver() bool { return v.kind == kindResolver }

// Resolve produces the replacement string for this value within scope.
func (v Value) Resolve(scope Scope) string {
	switch v.kind {
	case kindLiteral:
		return v.literal
	case kindResolver:
		if v.fn == nil {
			return ""
		}
		if scope == nil {
			scope = EmptyScope
		}
		return v.fn(scope)
	default:
		if scope != nil {
			if out, ok := scope.Lookup(v.literal); ok {
				return out
			}
		}
		return v.literal
	}
}

// Entry is one distinct placeholder of a compiled template.
type Entry struct {
	// Token is the placeholder including braces, e.g. "{section.title}".
	Token string
	// Key is the text between the braces.
	Key   string
	Value Value
}

// Table is the compiled placeholder table of a template. The zero value is
// an empty table.
type Table struct {
	entries []Entry
}

// Compile scans template for every {key} occurrence and binds each distinct
// key to a section value or to a passthrough.
func Compile(template string, sections map[string]Value) Table {
	matches := tokenPattern.FindAllStringSubmatch(template, -1)
	if len(matches) == 0 {
		return Table{}
	}
	seen := make(map[string]struct{}, len(matches))
	entries := make([]Entry, 0, len(matches))
	for _, m := range matches {
		token, key := m[0], m[1]
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		entries = append(entries, Entry{Token: token, Key: key, Value: bind(key, sections)})
	}
	return Table{entries: entries}
}

func bind(key string, sections map[string]Value) Value {
	root, rest := SplitPath(key)
	if root != SectionRoot || rest == "" || strings.Contains(rest, ".") {
		return Passthrough(key)
	}
	if v, ok := sections[rest]; ok {
		return v
	}
	return Passthrough(key)
}

// SplitPath splits a key at its first dot.
func SplitPath(key string) (root, rest string) {
	root, rest, _ = strings.Cut(key, ".")
	return root, rest
}

// Len returns the number of distinct placeholders.
func (t Table) Len() int { return len(t.entries) }

// Entries returns a copy of the compiled entries in first-seen order.
func (t Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Resolve evaluates every entry against scope and returns token -> value.
func (t Table) Resolve(scope Scope) map[string]string {
	out := make(map[string]string, len(t.entries))
	for _, e := range t.entries {
		out[e.Token] = e.Value.Resolve(scope)
	}
	return out
}

// Substitute replaces every token in template with its value in one pass.
// Entries in fixed win over resolved ones. Replacement values are never
// scanned again.
func Substitute(template string, resolved, fixed map[string]string) string {
	if len(resolved) == 0 && len(fixed) == 0 {
		return template
	}
	merged := make(map[string]string, len(resolved)+len(fixed))
	for k, v := range resolved {
		merged[k] = v
	}
	for k, v := range fixed {
		merged[k] = v
	}
	pairs := make([]string, 0, len(merged)*2)
	for k, v := range merged {
		if k == "" {
			continue
		}
		pairs = append(pairs, k, v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
