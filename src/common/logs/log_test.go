package logs

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
	}{
		{"debug", log.DebugLevel},
		{"INFO", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"warning", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"bogus", log.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewWithWriter_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, Config{Level: "warn", Prefix: "rowkeep"})

	l.Info("hidden message")
	l.Warn("visible message", "table", "tributes")

	out := buf.String()
	if strings.Contains(out, "hidden message") {
		t.Fatalf("info message should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "visible message") || !strings.Contains(out, "tributes") {
		t.Fatalf("expected warn message with key/value, got: %s", out)
	}
}

func TestNew_StderrOutput(t *testing.T) {
	l := New(Config{Output: OutputStderr, Level: "info"})
	if l.Output() != OutputStderr {
		t.Fatalf("expected stderr output, got %s", l.Output())
	}
}
