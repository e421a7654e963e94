package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func newBufferLogger(level string) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, level)
	logger.log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return logger, &buf
}

func TestNew_DefaultLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	logger := New()
	if logger.log.GetLevel() != logrus.InfoLevel {
		t.Errorf("expected default level Info, got %v", logger.log.GetLevel())
	}
}

func TestNew_LevelFromEnv(t *testing.T) {
	tests := []struct {
		envValue string
		expected logrus.Level
	}{
		{"trace", logrus.TraceLevel},
		{"debug", logrus.DebugLevel},
		{"info", logrus.InfoLevel},
		{"warn", logrus.WarnLevel},
		{"warning", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"invalid", logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.envValue, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.envValue)

			logger := New()
			if logger.log.GetLevel() != tt.expected {
				t.Errorf("for LOG_LEVEL=%s, expected level %v, got %v", tt.envValue, tt.expected, logger.log.GetLevel())
			}
		})
	}
}

func TestSetLevel(t *testing.T) {
	logger, _ := newBufferLogger("info")

	logger.SetLevel("debug")
	if logger.log.GetLevel() != logrus.DebugLevel {
		t.Errorf("SetLevel(debug) = %v; want debug", logger.log.GetLevel())
	}

	logger.SetLevel("bogus")
	if logger.log.GetLevel() != logrus.DebugLevel {
		t.Errorf("SetLevel(bogus) changed level to %v; want debug kept", logger.log.GetLevel())
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	// Must not panic or write anywhere.
	logger.Error("dropped %d", 1)
	if logger.GetLogrus() == nil {
		t.Fatal("GetLogrus() returned nil")
	}
}

func TestDebug_HiddenAtInfo(t *testing.T) {
	logger, buf := newBufferLogger("info")
	logger.Debug("hidden %s", "line")
	if buf.Len() != 0 {
		t.Errorf("Debug at info level wrote %q; want nothing", buf.String())
	}

	logger.SetLevel("debug")
	logger.Debug("visible %s", "line")
	if !strings.Contains(buf.String(), "visible line") {
		t.Errorf("expected Debug output at debug level, got: %s", buf.String())
	}
}

func TestLevelsWithFields(t *testing.T) {
	tests := []struct {
		name  string
		write func(*Logger)
		want  []string
	}{
		{"debug", func(l *Logger) { l.DebugWithFields(logrus.Fields{"id": "123"}, "debug %s", "msg") }, []string{"debug msg", "id=123"}},
		{"info", func(l *Logger) { l.InfoWithFields(logrus.Fields{"status": "ok"}, "info msg") }, []string{"info msg", "status=ok"}},
		{"warn", func(l *Logger) { l.WarnWithFields(logrus.Fields{"reason": "timeout"}, "warn msg") }, []string{"warn msg", "reason=timeout"}},
		{"error", func(l *Logger) { l.ErrorWithFields(logrus.Fields{"code": "500"}, "error msg") }, []string{"error msg", "code=500"}},
		{"plain", func(l *Logger) { l.Info("plain %d", 7) }, []string{"plain 7"}},
		{"entry", func(l *Logger) { l.WithFields(logrus.Fields{"user": "john"}).Warn("entry msg") }, []string{"entry msg", "user=john"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newBufferLogger("debug")
			tt.write(logger)
			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("expected %q in output, got: %s", w, buf.String())
				}
			}
		})
	}
}
