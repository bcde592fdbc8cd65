package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, Debug, ParseLevel("DEBUG"))
	assert.Equal(t, Warn, ParseLevel(" warning "))
	assert.Equal(t, Info, ParseLevel(""))
	assert.Equal(t, Info, ParseLevel("nope"))
	assert.Equal(t, "error", Error.String())
}

func TestJSONLogger_WritesFieldsAndFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Info, Format: FormatJSON, App: "case-tracker", Output: &buf})

	l.Debug("hidden", nil)
	require.Zero(t, buf.Len())

	l.With(map[string]any{"case_id": "c-1"}).Warn("backup failed", map[string]any{
		"err": errors.New("disk full"),
		"":    "ignored",
	})

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "backup failed", got["msg"])
	assert.Equal(t, "warning", got["level"])
	assert.Equal(t, "case-tracker", got["app"])
	assert.Equal(t, "c-1", got["case_id"])
	assert.Equal(t, "disk full", got["err"])
	assert.Contains(t, got, "ts")
	assert.NotContains(t, got, "")
}
