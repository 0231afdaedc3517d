package provider

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeMetadata(t *testing.T) {
	input := map[string]any{
		"order_id": "ORDER-001",
		"amount":   799.00,
		"count":    3,
		"nested":   map[string]any{"key": "value"},
		"nil":      nil,
		"callback": func() {},
		"channel":  make(chan int),
	}

	got := SanitizeMetadata(input)

	assert.Equal(t, "ORDER-001", got["order_id"])
	assert.Equal(t, 799.00, got["amount"])
	assert.Equal(t, 3, got["count"])
	assert.Contains(t, got, "nested")
	assert.NotContains(t, got, "nil")
	assert.NotContains(t, got, "callback")
	assert.NotContains(t, got, "channel")
}

func TestSanitizeMetadata_Time(t *testing.T) {
	created := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	got := SanitizeMetadata(map[string]any{"created_at": created})

	assert.Equal(t, "2025-03-14T09:26:53Z", got["created_at"])
}

func TestSanitizeMetadata_Nil(t *testing.T) {
	assert.Nil(t, SanitizeMetadata(nil))
}

func TestMergeMetadata(t *testing.T) {
	base := map[string]any{"a": 1, "b": 2}
	extra := map[string]any{"b": 3, "c": 4}

	got := MergeMetadata(base, extra)

	assert.Equal(t, 1, got["a"])
	assert.Equal(t, 3, got["b"])
	assert.Equal(t, 4, got["c"])

	// Inputs untouched
	assert.Equal(t, 2, base["b"])
}

func TestMergeMetadata_Nil(t *testing.T) {
	assert.Nil(t, MergeMetadata(nil, nil))
	assert.Equal(t, map[string]any{"a": 1}, MergeMetadata(map[string]any{"a": 1}, nil))
}
