package templates

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-notification-list/pkg/domain"
)

func defaultHelperFuncs() map[string]any {
	return map[string]any{
		"field": fieldHelper,
	}
}

// fieldHelper reads a dotted path from a data map, returning "" when absent.
func fieldHelper(data any, path string) string {
	var root map[string]any
	switch v := data.(type) {
	case map[string]any:
		root = v
	case domain.JSONMap:
		root = map[string]any(v)
	default:
		return ""
	}
	value, ok := lookupPath(root, path)
	if !ok {
		return ""
	}
	return stringFromTemplateValue(value)
}

func lookupPath(data map[string]any, path string) (any, bool) {
	if len(data) == 0 || path == "" {
		return nil, false
	}
	current := any(data)
	for _, part := range strings.Split(path, ".") {
		switch typed := current.(type) {
		case map[string]any:
			val, ok := typed[part]
			if !ok {
				return nil, false
			}
			current = val
		case domain.JSONMap:
			val, ok := typed[part]
			if !ok {
				return nil, false
			}
			current = val
		default:
			return nil, false
		}
	}
	return current, current != nil
}

func stringFromTemplateValue(value any) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
