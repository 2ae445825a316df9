package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfoWritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stdout) })

	Info("session restored", map[string]any{"client": "abc", "user_present": true})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "session restored", entry["message"])
	assert.Equal(t, "abc", entry["client"])
	assert.Equal(t, true, entry["user_present"])
}

func TestNilFieldsAreAllowed(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stdout) })

	Warn("no fields", nil)

	assert.Contains(t, buf.String(), `"message":"no fields"`)
	assert.Contains(t, buf.String(), `"level":"warn"`)
}
