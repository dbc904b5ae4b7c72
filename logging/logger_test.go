package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLoggerLevels(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{level: "debug", want: zerolog.DebugLevel},
		{level: "warn", want: zerolog.WarnLevel},
		{level: "", want: zerolog.InfoLevel},
		{level: "chatty", want: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			initLogger(&bytes.Buffer{}, tt.level, "json")
			assert.Equal(t, tt.want, zerolog.GlobalLevel())
		})
	}
}

func TestComponentLoggersAddFields(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	initLogger(&buf, "info", "json")

	logger := RenderLogger("srv-1")
	logger.Info().Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "render-deploy-wf", entry["service"])
	assert.Equal(t, "render", entry["component"])
	assert.Equal(t, "srv-1", entry["render_service_id"])
	assert.Equal(t, "hello", entry["message"])

	buf.Reset()
	activityLogger := ActivityLogger("TriggerRenderDeploy", "wf-1", "run-1")
	activityLogger.Info().Msg("activity")
	entry = map[string]any{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "TriggerRenderDeploy", entry["activity"])
	assert.Equal(t, "wf-1", entry["workflow_id"])
}
