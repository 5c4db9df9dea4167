package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestWriterReceivesFields(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(WithWriter(&buf), WithLevel(zerolog.DebugLevel))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	l.Debug("drag started", "app", "terminal", "pointer", 1)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["message"] != "drag started" {
		t.Errorf("message = %v", entry["message"])
	}
	if entry["app"] != "terminal" {
		t.Errorf("app = %v", entry["app"])
	}
	if entry["level"] != "debug" {
		t.Errorf("level = %v", entry["level"])
	}
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(WithWriter(&buf), WithLevel(zerolog.WarnLevel))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info written at warn level: %q", buf.String())
	}
	ipcLog := l.Component("ipc")
	ipcLog.Warn().Msg("shown")
	if !strings.Contains(buf.String(), `"component":"ipc"`) {
		t.Errorf("missing component field: %q", buf.String())
	}
}

func TestWithFileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deskshell.log")
	l, err := New(WithFile(path))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	l.Info("view mode changed", "to", "phone")
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "view mode changed") {
		t.Errorf("log file missing message: %q", string(data))
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{"", zerolog.InfoLevel, false},
		{"debug", zerolog.DebugLevel, false},
		{" WARN ", zerolog.WarnLevel, false},
		{"loud", zerolog.NoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
