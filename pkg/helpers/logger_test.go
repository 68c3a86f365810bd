package helpers

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerProductionJSON(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "roommate-finder", "production")
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())

	buf.Reset()
	LogError(l, "save failed", errors.New("boom"), logrus.Fields{"user_id": "u1"})

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "save failed", line["msg"])
	assert.Equal(t, "boom", line["error"])
	assert.Equal(t, "u1", line["user_id"])
}

func TestNewLoggerDevelopmentText(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "roommate-finder", "development")
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	assert.True(t, strings.Contains(buf.String(), "logger initialized"))
}

func TestLogHelpersNilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		LogError(nil, "x", errors.New("y"), nil)
		LogWarn(nil, "x", nil, nil)
		LogInfo(nil, "x", nil)
	})
}
