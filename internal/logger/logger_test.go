package logger

import (
	"context"
	"errors"
	"testing"
)

func TestShouldLog(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
		msgLevel string
		want     bool
	}{
		{"debug logger allows debug", "debug", "debug", true},
		{"info logger blocks debug", "info", "debug", false},
		{"info logger allows warn", "info", "warn", true},
		{"error logger blocks info", "error", "info", false},
		{"error logger allows error", "error", "error", true},
		{"unknown logger level defaults to info", "bogus", "debug", false},
		{"unknown message level always logs", "error", "bogus", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(tt.logLevel).(*implLogger)
			if got := l.shouldLog(tt.msgLevel); got != tt.want {
				t.Errorf("shouldLog(%q) = %v, want %v", tt.msgLevel, got, tt.want)
			}
		})
	}
}

func TestLogMethodsDoNotPanic(t *testing.T) {
	ctx := context.Background()
	l := New("debug")

	l.Debug(ctx, "debug %d", 1)
	l.Info(ctx, "info %s", "x")
	l.Warn(ctx, "warn")
	l.Error(ctx, "error %v", errors.New("boom"))
}

func TestFormatError(t *testing.T) {
	if got := FormatError(nil); got != "" {
		t.Errorf("FormatError(nil) = %q, want empty", got)
	}
	if got := FormatError(errors.New("boom")); got != "boom" {
		t.Errorf("FormatError() = %q, want boom", got)
	}
}
