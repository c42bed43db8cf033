package config_test

import (
	"testing"

	"github.com/randalmurphal/eventstudio/pkg/eventstudio/config"
	"github.com/stretchr/testify/assert"
)

// TestNew verifies Config creation from maps.
func TestNew(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
	}{
		{"nil map", nil},
		{"empty map", map[string]any{}},
		{"with values", map[string]any{"key": "value"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New(tt.data)
			assert.NotNil(t, cfg.Raw())
		})
	}
}

// TestDottedKeys verifies lookup through nested sections.
func TestDottedKeys(t *testing.T) {
	cfg := config.New(map[string]any{
		"audit": map[string]any{
			"driver": "sqlite",
			"nested": map[any]any{"depth": 2},
		},
		"literal.key": "wins",
		"literal":     map[string]any{"key": "loses"},
		"scalar":      "not a map",
	})

	assert.Equal(t, "sqlite", cfg.String("audit.driver", ""))
	assert.Equal(t, 2, cfg.Int("audit.nested.depth", 0))
	assert.Equal(t, "wins", cfg.String("literal.key", ""))
	assert.False(t, cfg.Has("scalar.child"))
	assert.False(t, cfg.Has("audit.missing"))
	assert.True(t, cfg.Has("audit"))

	assert.Equal(t, "sqlite", cfg.Sub("audit").String("driver", ""))
	assert.Empty(t, cfg.Sub("scalar").Raw())
	assert.Empty(t, cfg.Sub("missing").Raw())
}

// TestString verifies string extraction with defaults.
func TestString(t *testing.T) {
	tests := []struct {
		name       string
		data       map[string]any
		key        string
		defaultVal string
		want       string
	}{
		{"key exists", map[string]any{"name": "orders"}, "name", "default", "orders"},
		{"key missing", map[string]any{"other": "value"}, "name", "default", "default"},
		{"empty string", map[string]any{"name": ""}, "name", "default", ""},
		{"wrong type int", map[string]any{"name": 123}, "name", "default", "default"},
		{"nil map", nil, "name", "default", "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, config.New(tt.data).String(tt.key, tt.defaultVal))
		})
	}
}

// TestBool verifies boolean extraction with string coercion.
func TestBool(t *testing.T) {
	tests := []struct {
		name       string
		data       map[string]any
		defaultVal bool
		want       bool
	}{
		{"true value", map[string]any{"enabled": true}, false, true},
		{"false value", map[string]any{"enabled": false}, true, false},
		{"string true", map[string]any{"enabled": "true"}, false, true},
		{"string 0", map[string]any{"enabled": " 0 "}, true, false},
		{"invalid string", map[string]any{"enabled": "maybe"}, true, true},
		{"wrong type int", map[string]any{"enabled": 1}, false, false},
		{"key missing", map[string]any{}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, config.New(tt.data).Bool("enabled", tt.defaultVal))
		})
	}
}

// TestInt verifies integer extraction with type coercion.
func TestInt(t *testing.T) {
	tests := []struct {
		name       string
		data       map[string]any
		defaultVal int
		want       int
	}{
		{"int value", map[string]any{"count": 42}, 0, 42},
		{"int64 value", map[string]any{"count": int64(100)}, 0, 100},
		{"float64 whole", map[string]any{"count": 50.0}, 0, 50},
		{"float64 fractional", map[string]any{"count": 50.5}, 99, 99},
		{"numeric string", map[string]any{"count": " 12 "}, 99, 12},
		{"invalid string", map[string]any{"count": "twelve"}, 99, 99},
		{"wrong type bool", map[string]any{"count": true}, 99, 99},
		{"negative int", map[string]any{"count": -5}, 0, -5},
		{"nil map", nil, 99, 99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, config.New(tt.data).Int("count", tt.defaultVal))
		})
	}
}

// TestAny verifies raw value access.
func TestAny(t *testing.T) {
	cfg := config.New(map[string]any{"list": []any{1, "two"}})
	assert.Equal(t, []any{1, "two"}, cfg.Any("list", nil))
	assert.Equal(t, "fallback", cfg.Any("missing", "fallback"))
}
