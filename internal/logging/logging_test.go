package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewHandlerLevels(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		wantDebug bool
		wantInfo  bool
	}{
		{name: "default", opts: Options{}, wantInfo: true},
		{name: "verbose", opts: Options{Verbose: true}, wantDebug: true, wantInfo: true},
		{name: "warn level", opts: Options{Level: "warn"}},
		{name: "unknown level falls back to info", opts: Options{Level: "chatty"}, wantInfo: true},
		{name: "json verbose", opts: Options{Format: "json", Verbose: true}, wantDebug: true, wantInfo: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := NewHandler(&bytes.Buffer{}, tt.opts)
			if err != nil {
				t.Fatalf("NewHandler failed: %v", err)
			}
			ctx := context.Background()
			if got := h.Enabled(ctx, slog.LevelDebug); got != tt.wantDebug {
				t.Errorf("Debug enabled = %v, want %v", got, tt.wantDebug)
			}
			if got := h.Enabled(ctx, slog.LevelInfo); got != tt.wantInfo {
				t.Errorf("Info enabled = %v, want %v", got, tt.wantInfo)
			}
		})
	}
}

func TestNewHandlerFormats(t *testing.T) {
	var buf bytes.Buffer
	h, err := NewHandler(&buf, Options{Format: "json"})
	if err != nil {
		t.Fatalf("NewHandler failed: %v", err)
	}
	slog.New(h).Info("Contact created", "id", "c1")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "Contact created" || entry["id"] != "c1" {
		t.Errorf("Unexpected entry %v", entry)
	}

	buf.Reset()
	h, err = NewHandler(&buf, Options{})
	if err != nil {
		t.Fatalf("NewHandler failed: %v", err)
	}
	slog.New(h).Info("Contact created", "id", "c1")
	if out := buf.String(); !strings.Contains(out, "id=c1") || strings.Contains(out, "\x1b[") {
		t.Errorf("Expected plain text output without colour, got %q", out)
	}

	if _, err := NewHandler(&buf, Options{Format: "xml"}); err == nil {
		t.Error("Expected an error for an unknown format")
	}
}
