package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestSetMode(t *testing.T) {
	t.Cleanup(func() { SetMode("release") })

	SetMode("debug")
	if Level() != zapcore.DebugLevel {
		t.Errorf("debug mode level = %v, want debug", Level())
	}
	SetMode("release")
	if Level() != zapcore.InfoLevel {
		t.Errorf("release mode level = %v, want info", Level())
	}
}
