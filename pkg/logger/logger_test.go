package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Rentabodega-api/pkg/logger"
)

func TestComponent_AgregaCampo(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewWithWriter(logger.Config{Env: "production", Level: "info"}, &buf)

	log := l.Component("ledger")
	log.Info().Str("request_id", "req-1").Msg("retiro liquidado")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ledger", entry["component"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "info", entry["level"])
}

func TestNivel_FiltraDebug(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewWithWriter(logger.Config{Env: "production", Level: "warn"}, &buf)
	l.Info().Msg("no debe salir")
	assert.Zero(t, buf.Len())
	l.Warn().Msg("sí sale")
	assert.NotZero(t, buf.Len())
}
