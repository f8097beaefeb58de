package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/uptrace/bun"
)

// JSONMap persists arbitrary notification payload fields as JSON.
type JSONMap map[string]any

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("null"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(value any) error {
	if m == nil {
		return errors.New("JSONMap: Scan on nil pointer")
	}
	switch v := value.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("JSONMap: unsupported type %T", value)
	}
}

// Clone returns a shallow copy of the map.
func (m JSONMap) Clone() JSONMap {
	if m == nil {
		return nil
	}
	out := make(JSONMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Notification is a stored, per-user notification. Text is filled in by the
// manager at read time and never persisted.
type Notification struct {
	bun.BaseModel `bun:"table:notifications,alias:n"`

	ID        int64        `bun:",pk,autoincrement" json:"id"`
	UserID    int64        `bun:",notnull" json:"user_id"`
	Type      string       `bun:",notnull" json:"type"`
	Data      JSONMap      `bun:"type:jsonb,nullzero" json:"data,omitempty"`
	Timestamp time.Time    `bun:",notnull" json:"timestamp"`
	IsRead    bool         `bun:",notnull,default:false" json:"is_read"`
	ReadAt    *time.Time   `bun:",nullzero" json:"read_at,omitempty"`
	CreatedAt time.Time    `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time    `bun:",nullzero,notnull,default:current_timestamp" json:"updated_at"`
	DeletedAt time.Time    `bun:",soft_delete,nullzero" json:"deleted_at,omitempty"`
	Text      CompiledText `bun:"-" json:"text"`
}

// CompiledText is a notification's display text: either a single string or a
// mapping from sub-key to string.
type CompiledText struct {
	plain  string
	fields map[string]string
}

// PlainText builds a single-string compiled text.
func PlainText(s string) CompiledText {
	return CompiledText{plain: s}
}

// FieldText builds a keyed compiled text. The map is copied.
func FieldText(fields map[string]string) CompiledText {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return CompiledText{fields: out}
}

// IsMap reports whether the text is keyed.
func (t CompiledText) IsMap() bool {
	return t.fields != nil
}

// Field returns the sub-key value of a keyed text.
func (t CompiledText) Field(key string) (string, bool) {
	if t.fields == nil {
		return "", false
	}
	v, ok := t.fields[key]
	return v, ok
}

// Keys returns the sorted sub-keys of a keyed text.
func (t CompiledText) Keys() []string {
	keys := make([]string, 0, len(t.fields))
	for k := range t.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String returns the plain text, or the keyed values joined by a space in key
// order.
func (t CompiledText) String() string {
	if t.fields == nil {
		return t.plain
	}
	var out string
	for i, k := range t.Keys() {
		if i > 0 {
			out += " "
		}
		out += t.fields[k]
	}
	return out
}

// MarshalJSON encodes a plain text as a JSON string and a keyed text as an
// object.
func (t CompiledText) MarshalJSON() ([]byte, error) {
	if t.fields != nil {
		return json.Marshal(t.fields)
	}
	return json.Marshal(t.plain)
}

// UnmarshalJSON accepts either a JSON string or an object of strings.
func (t *CompiledText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = PlainText(s)
		return nil
	}
	var fields map[string]string
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("CompiledText: %w", err)
	}
	*t = FieldText(fields)
	return nil
}

// TextSpec is the source of a notification type's text: a single template or
// a map of sub-key templates.
type TextSpec struct {
	Template  string            `json:"template,omitempty" yaml:"template,omitempty"`
	Templates map[string]string `json:"templates,omitempty" yaml:"templates,omitempty"`
}

// IsZero reports whether no template was supplied.
func (s TextSpec) IsZero() bool {
	return s.Template == "" && len(s.Templates) == 0
}

// TypeDefinition maps a notification type code to its display text for one
// locale.
type TypeDefinition struct {
	Code   string   `json:"code" yaml:"code"`
	Locale string   `json:"locale,omitempty" yaml:"locale,omitempty"`
	Text   TextSpec `json:"text" yaml:"text"`
}
