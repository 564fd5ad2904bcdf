package logs

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogJSON(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel("info")
	defer SetOutput(os.Stdout)

	LogJSON("WARN", "Post not found", map[string]interface{}{
		"route":  "/api/posts/:id",
		"userID": 42,
	})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warning", entry["severity"])
	assert.Equal(t, "Post not found", entry["message"])
	assert.Equal(t, "/api/posts/:id", entry["route"])
	assert.EqualValues(t, 42, entry["userID"])
	assert.NotEmpty(t, entry["time"])
}

func TestSetLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel("warn")
	defer func() {
		SetOutput(os.Stdout)
		SetLevel("info")
	}()

	LogJSON("INFO", "ignored", nil)
	LogJSON("DEBUG", "ignored too", nil)
	assert.Zero(t, buf.Len())

	LogJSON("ERROR", "kept", nil)
	assert.Contains(t, buf.String(), "kept")
}
