package logger

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupRejectsUnknownLevel(t *testing.T) {
	err := Setup(LogConfig{Level: "loud", Format: "json", Output: "stderr"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loud")
}

func TestWithPeriodAddsFields(t *testing.T) {
	prev := GetLogger()
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	var buf bytes.Buffer
	SetOutput(&buf)

	start := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	l := WithPeriod("balance", start, end)
	l.Info().Msg("hello")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "balance", entry["component"])
	assert.Equal(t, "2024-07-01", entry["period_start"])
	assert.Equal(t, "2025-06-30", entry["period_end"])
	assert.Equal(t, "hello", entry["message"])
}
