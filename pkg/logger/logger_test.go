package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polisdoc/polisdoc-backend/pkg/logger"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), buf.String())
	return entry
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "extract-service").
		WithComponent("policy-service").
		WithRequestID("req-1")

	log.Info().Msg("policy extraction completed")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "extract-service", entry["service"])
	assert.Equal(t, "policy-service", entry["component"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "info", entry["level"])
	assert.Contains(t, entry, "time")
}

func TestLogger_SetLevel(t *testing.T) {
	tests := []struct {
		level      string
		wantLogged bool
	}{
		{"debug", true},
		{"info", false},
		{"warn", false},
		{"", true},
		{"verbose", true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			log := logger.NewWithWriter(&buf, "test")
			log.SetLevel(tt.level)

			log.Debug().Msg("debug line")
			assert.Equal(t, tt.wantLogged, buf.Len() > 0)
		})
	}
}
