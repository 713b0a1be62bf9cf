package logger

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestToZapLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		InfoLevel:  zapcore.InfoLevel,
		WarnLevel:  zapcore.WarnLevel,
		ErrorLevel: zapcore.ErrorLevel,
		DebugLevel: zapcore.DebugLevel,
		"bogus":    defaultZapLevel,
	}
	for in, want := range cases {
		if got := toZapLevel(in); got != want {
			t.Errorf("toZapLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(WarnLevel, JSONFormat, zapcore.AddSync(&buf))

	log.Infow("dropped", "k", 1)
	log.Warnw("kept", "user_id", 7)
	_ = log.Sync()

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info line should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"kept"`) || !strings.Contains(out, `"user_id":7`) {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestNamed_AddsLoggerName(t *testing.T) {
	var buf bytes.Buffer
	log := New(DebugLevel, JSONFormat, zapcore.AddSync(&buf)).Named("reminders")
	log.Infow("sweep_done")
	_ = log.Sync()

	if !strings.Contains(buf.String(), `"logger":"reminders"`) {
		t.Fatalf("expected logger name in output: %s", buf.String())
	}
}
