package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"":      zapcore.InfoLevel,
		"loud":  zapcore.InfoLevel,
	}

	for level, expected := range tests {
		t.Run(level, func(t *testing.T) {
			assert.Equal(t, expected, ParseLevel(level))
		})
	}
}

func TestNew(t *testing.T) {
	assert.NotNil(t, New("debug", true))
	assert.NotNil(t, New("info", false))
	assert.NotNil(t, Nop())
}
