package manager

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	masker "github.com/goliatone/go-masker"
)

const maskRule = "preserveEnds(2,2)"

var sensitiveDataKeys = []string{
	"email", "phone", "token", "access_token",
	"password", "secret", "api_key", "iban", "card_number",
}

var (
	sensitiveMu    sync.RWMutex
	sensitiveExtra = map[string]struct{}{}
)

func init() {
	for _, field := range sensitiveDataKeys {
		masker.Default.RegisterMaskField(field, maskRule)
	}
}

// RegisterSensitiveKey marks an additional data key for masking in logs.
func RegisterSensitiveKey(key string) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return
	}
	masker.Default.RegisterMaskField(key, maskRule)
	sensitiveMu.Lock()
	sensitiveExtra[key] = struct{}{}
	sensitiveMu.Unlock()
}

func isSensitive(key string) bool {
	key = strings.ToLower(key)
	for _, field := range sensitiveDataKeys {
		if field == key {
			return true
		}
	}
	sensitiveMu.RLock()
	_, ok := sensitiveExtra[key]
	sensitiveMu.RUnlock()
	return ok
}

// maskData returns a loggable copy of data with sensitive values masked.
// Nested values are summarised by type.
func maskData(data map[string]any) map[string]any {
	if len(data) == 0 {
		return nil
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(map[string]any, len(data))
	for _, k := range keys {
		v := data[k]
		switch typed := v.(type) {
		case map[string]any, []any:
			out[k] = fmt.Sprintf("<%T>", typed)
			continue
		}
		if isSensitive(k) {
			out[k] = maskString(fmt.Sprint(v))
			continue
		}
		out[k] = v
	}
	return out
}

func maskString(value string) string {
	if value == "" {
		return ""
	}
	if masked, err := masker.Default.String(maskRule, value); err == nil {
		return masked
	}
	runes := []rune(value)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:2]) + strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-2:])
}
