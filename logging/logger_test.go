package logging

import (
	"bytes"
	"testing"

	"github.com/chatbridge/bridge/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewLogger_Singleton(t *testing.T) {
	a := NewLogger("test-singleton")
	b := NewLogger("test-singleton")
	assert.Same(t, a, b)
}

func TestNewLogger_DistinctComponents(t *testing.T) {
	a := NewLogger("test-component-a")
	b := NewLogger("test-component-b")
	assert.NotSame(t, a, b)
	assert.Equal(t, "test-component-a", a.Data["component"])
	assert.Equal(t, "test-component-b", b.Data["component"])
}

func TestTextFormatter_Format(t *testing.T) {
	f := &TextFormatter{Config: config.FormatConfig{DisableTimestamp: true}}
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Data:    logrus.Fields{"component": "router"},
		Message: "dispatched",
		Level:   logrus.InfoLevel,
	}

	out, err := f.Format(entry)
	assert.NoError(t, err)
	assert.Contains(t, string(out), "[INFO]")
	assert.Contains(t, string(out), "router")
	assert.Contains(t, string(out), "dispatched")
}

func TestTextFormatter_SimplePreset(t *testing.T) {
	f := &TextFormatter{Config: config.FormatConfig{DisableTimestamp: true, DisableComponent: true}}
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Data:    logrus.Fields{"component": "router"},
		Message: "dispatched",
		Level:   logrus.WarnLevel,
	}

	out, err := f.Format(entry)
	assert.NoError(t, err)
	assert.Contains(t, string(out), "[WARN]")
	assert.NotContains(t, string(out), "router")
}

func TestSetConfig_AffectsNewLoggers(t *testing.T) {
	SetConfig(config.LoggingConfig{Level: "debug"})
	defer SetConfig(config.LoggingConfig{})

	entry := NewLogger("test-debug-level")
	assert.Equal(t, logrus.DebugLevel, entry.Logger.GetLevel())
}

func TestTextFormatter_WritesToBuffer(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&TextFormatter{Config: config.FormatConfig{DisableTimestamp: true}})

	logger.WithField("component", "fetch").Info("download complete")
	assert.Contains(t, buf.String(), "download complete")
}
