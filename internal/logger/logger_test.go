package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	SetLevel("warn")
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	SetLevel("nonsense")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	SetLevel("")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func TestErrorWithStack(t *testing.T) {
	t.Run("plain error gets the caller stack", func(t *testing.T) {
		buf := captureLog(t)

		ErrorWithStack(fmt.Errorf("boom")).Msg("failed")

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "error", line["level"])
		assert.Equal(t, "boom", line["error"])
		assert.Contains(t, line["stack"], "TestErrorWithStack")
	})

	t.Run("existing stack is kept", func(t *testing.T) {
		buf := captureLog(t)
		err := wrapped()

		ErrorWithStack(err).Msg("failed")

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Contains(t, line["stack"], "logger.wrapped")
	})
}

func wrapped() error {
	return errors.Wrap(errors.New("inner"), "outer")
}
