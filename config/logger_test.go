package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestInitLogger(t *testing.T) {
	original := logger
	defer SetLogger(original)

	for _, level := range []string{"debug", "info", "warn", "error", "bogus", ""} {
		l, err := InitLogger(level)
		assert.NoError(t, err, "level %q", level)
		assert.NotNil(t, l)
		assert.Same(t, l, Logger())
	}
}

func TestLogger_FallbackBeforeInit(t *testing.T) {
	original := logger
	defer SetLogger(original)

	SetLogger(nil)
	l := Logger()
	assert.NotNil(t, l, "Logger should never return nil")

	// The no-op fallback must be safe to use
	l.Info("message before init")
}

func TestSetLogger(t *testing.T) {
	original := logger
	defer SetLogger(original)

	custom := zap.NewNop()
	SetLogger(custom)
	assert.Same(t, custom, Logger())
}
