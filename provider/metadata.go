package provider

import (
	"encoding/json"
	"reflect"
	"time"
)

// SanitizeMetadata returns a copy of metadata safe for storage and
// transport: nil values and values that cannot be serialized to JSON
// (functions, channels, complex numbers) are dropped, time.Time values are
// normalized to RFC 3339 strings. A nil input returns nil.
func SanitizeMetadata(metadata map[string]any) map[string]any {
	if metadata == nil {
		return nil
	}

	sanitized := make(map[string]any, len(metadata))
	for key, value := range metadata {
		if value == nil {
			continue
		}

		switch reflect.TypeOf(value).Kind() {
		case reflect.Func, reflect.Chan, reflect.UnsafePointer:
			continue
		}

		if t, ok := value.(time.Time); ok {
			sanitized[key] = t.UTC().Format(time.RFC3339)
			continue
		}

		// Anything else must survive a JSON round trip
		if _, err := json.Marshal(value); err != nil {
			continue
		}

		sanitized[key] = value
	}

	return sanitized
}

// MergeMetadata overlays extra onto base without mutating either. Keys in
// extra win.
func MergeMetadata(base, extra map[string]any) map[string]any {
	if base == nil && extra == nil {
		return nil
	}

	merged := make(map[string]any, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}
