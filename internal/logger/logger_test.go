package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONWithServiceField(t *testing.T) {
	l := New("adrena-api", "debug")
	var buf bytes.Buffer
	l.SetOutput(&buf)

	l.WithField("k", "v").Info("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["message"])
	assert.Equal(t, "adrena-api", line["service"])
	assert.Equal(t, "v", line["k"])
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
}

func TestNew_UnknownLevelDefaultsToInfo(t *testing.T) {
	l := New("svc", "verbose")
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
}
