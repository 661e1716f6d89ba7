package jalur

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// Light smoke tests ensuring exported logger APIs do not panic and remain
// callable. If richer logging behavior (format, sinks, filtering) is added
// later, expand assertions here.
func TestSimpleLoggerLevels(t *testing.T) {
	logger := NewSimpleLogger()

	logger.Debug("debug message")
	logger.Info("info message", "route", "users.list")
	logger.Warn("warn message")
	logger.Error("error message", "kind", ErrorKindNetwork)
}

func TestSimpleLoggerReusability(t *testing.T) {
	logger := NewSimpleLogger()
	for i := 0; i < 5; i++ {
		logger.Info("loop message")
	}
}

func TestZapLoggerAdapter(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	logger := NewZapLogger(zap.New(core))

	logger.Debug("dispatching call", "route", "users.get", "kind", "query")
	logger.Info("call complete", "status", 200)
	logger.Warn("slow call")
	logger.Error("call failed", "kind", ErrorKindRemote)

	if got := recorded.Len(); got != 4 {
		t.Fatalf("Expected 4 log entries, got %d", got)
	}

	first := recorded.All()[0]
	if first.Message != "dispatching call" {
		t.Errorf("Expected message 'dispatching call', got %q", first.Message)
	}
	fields := first.ContextMap()
	if fields["route"] != "users.get" {
		t.Errorf("Expected route field, got %v", fields)
	}
}
