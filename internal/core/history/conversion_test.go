package history

import (
	"encoding/json"
	"testing"

	"github.com/artpar/workermeta/internal/core/converter"
	"github.com/artpar/workermeta/internal/core/wrangler"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConversion(t *testing.T) {
	cfg := &wrangler.Config{
		Name:         "api",
		Routes:       []wrangler.Route{{Pattern: "a.example.com/*"}, {Pattern: "b.example.com/*"}},
		KVNamespaces: []wrangler.KVNamespace{{Binding: "KV", ID: "abc"}},
		Migrations:   []wrangler.MigrationStep{{Tag: "v1"}, {Tag: "v2"}},
	}
	result := converter.Convert(cfg, nil, "v1")

	c, err := NewConversion(result, "v1")
	require.NoError(t, err)

	_, err = uuid.Parse(c.ID)
	assert.NoError(t, err)
	assert.Equal(t, "api", c.ScriptName)
	assert.Equal(t, "v1", c.OldTag)
	assert.Equal(t, "v2", c.NewTag)
	assert.Equal(t, 2, c.RouteCount)
	assert.Equal(t, 1, c.BindingCount)
	assert.False(t, c.CreatedAt.IsZero())
	assert.True(t, c.AdvancesTag())

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(c.Result, &decoded))
	assert.Equal(t, "api", decoded["scriptName"])
}

func TestNewConversion_NoMigrations(t *testing.T) {
	result := converter.Convert(&wrangler.Config{}, nil, "")

	c, err := NewConversion(result, "")
	require.NoError(t, err)

	assert.Equal(t, converter.DefaultScriptName, c.ScriptName)
	assert.Empty(t, c.NewTag)
	assert.False(t, c.AdvancesTag())
}

func TestNewConversion_NilResult(t *testing.T) {
	_, err := NewConversion(nil, "")
	assert.ErrorIs(t, err, ErrNilResult)
}

func TestNewConversion_UniqueIDs(t *testing.T) {
	result := converter.Convert(&wrangler.Config{Name: "api"}, nil, "")

	a, err := NewConversion(result, "")
	require.NoError(t, err)
	b, err := NewConversion(result, "")
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}
