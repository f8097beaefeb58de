package templates

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-notification-list/pkg/domain"
)

func validateDefinition(def domain.TypeDefinition) error {
	if strings.TrimSpace(def.Code) == "" {
		return fmt.Errorf("%w: code is required", ErrInvalidDefinition)
	}
	if def.Text.IsZero() {
		return fmt.Errorf("%w: %s has no text", ErrInvalidDefinition, def.Code)
	}
	for key := range def.Text.Templates {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("%w: %s has an empty text key", ErrInvalidDefinition, def.Code)
		}
	}
	return nil
}

// cloneData deep copies the payload and writes numbers in their shortest
// decimal form. The template engine round-trips data through JSON, which
// would otherwise print every number as a float with six decimals.
func cloneData(input map[string]any) map[string]any {
	if len(input) == 0 {
		return make(map[string]any)
	}
	out := make(map[string]any, len(input))
	for k, v := range input {
		out[k] = templateValue(v)
	}
	return out
}

func templateValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneData(val)
	case domain.JSONMap:
		return cloneData(map[string]any(val))
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = templateValue(item)
		}
		return out
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.FormatInt(int64(val), 10)
	case int8:
		return strconv.FormatInt(int64(val), 10)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint8:
		return strconv.FormatUint(uint64(val), 10)
	case uint16:
		return strconv.FormatUint(uint64(val), 10)
	case uint32:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case json.Number:
		return val.String()
	default:
		return v
	}
}
