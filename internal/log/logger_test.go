// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected valid JSON output, got error: %v (%s)", err, buf.String())
	}
	return entry
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != "info" {
		t.Errorf("expected default level 'info', got %q", cfg.Level)
	}
	if cfg.Format != FormatJSON {
		t.Errorf("expected default format 'json', got %q", cfg.Format)
	}
	if cfg.Output != os.Stderr {
		t.Errorf("expected default output to be os.Stderr")
	}
	if cfg.AddSource {
		t.Errorf("expected default AddSource to be false")
	}
}

func TestFromEnv(t *testing.T) {
	tests := []struct {
		name       string
		envVars    map[string]string
		wantLevel  string
		wantFormat Format
		wantSource bool
	}{
		{
			name:       "defaults when no env vars",
			envVars:    map[string]string{},
			wantLevel:  "info",
			wantFormat: FormatJSON,
		},
		{
			name:       "LOG_LEVEL=DEBUG (case insensitive)",
			envVars:    map[string]string{"LOG_LEVEL": "DEBUG"},
			wantLevel:  "debug",
			wantFormat: FormatJSON,
		},
		{
			name:       "LOG_FORMAT=text",
			envVars:    map[string]string{"LOG_FORMAT": "text"},
			wantLevel:  "info",
			wantFormat: FormatText,
		},
		{
			name:       "LOG_SOURCE=1",
			envVars:    map[string]string{"LOG_SOURCE": "1"},
			wantLevel:  "info",
			wantFormat: FormatJSON,
			wantSource: true,
		},
		{
			name:       "REPOPACKER_LOG_LEVEL overrides LOG_LEVEL",
			envVars:    map[string]string{"REPOPACKER_LOG_LEVEL": "warn", "LOG_LEVEL": "debug"},
			wantLevel:  "warn",
			wantFormat: FormatJSON,
		},
		{
			name:       "REPOPACKER_DEBUG wins over every level variable",
			envVars:    map[string]string{"REPOPACKER_DEBUG": "true", "REPOPACKER_LOG_LEVEL": "error", "LOG_LEVEL": "warn"},
			wantLevel:  "debug",
			wantFormat: FormatJSON,
			wantSource: true,
		},
		{
			name:       "REPOPACKER_DEBUG=1",
			envVars:    map[string]string{"REPOPACKER_DEBUG": "1"},
			wantLevel:  "debug",
			wantFormat: FormatJSON,
			wantSource: true,
		},
	}

	keys := []string{"REPOPACKER_DEBUG", "REPOPACKER_LOG_LEVEL", "LOG_LEVEL", "LOG_FORMAT", "LOG_SOURCE"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range keys {
				t.Setenv(k, "")
			}
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := FromEnv()
			if cfg.Level != tt.wantLevel {
				t.Errorf("expected level %q, got %q", tt.wantLevel, cfg.Level)
			}
			if cfg.Format != tt.wantFormat {
				t.Errorf("expected format %q, got %q", tt.wantFormat, cfg.Format)
			}
			if cfg.AddSource != tt.wantSource {
				t.Errorf("expected AddSource %v, got %v", tt.wantSource, cfg.AddSource)
			}
		})
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "debug", Format: FormatJSON, Output: &buf})
	logger.Info("test message", "key", "value")

	entry := decodeEntry(t, &buf)
	if entry["msg"] != "test message" {
		t.Errorf("expected msg field to be 'test message', got: %v", entry["msg"])
	}
	if entry["key"] != "value" {
		t.Errorf("expected key field to be 'value', got: %v", entry["key"])
	}
	if entry["level"] != "INFO" {
		t.Errorf("expected level field to be 'INFO', got: %v", entry["level"])
	}
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "info", Format: FormatText, Output: &buf})
	logger.Info("test message", "key", "value")

	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Errorf("expected output to contain 'test message', got: %s", output)
	}
	if !strings.Contains(output, "key=value") {
		t.Errorf("expected output to contain 'key=value', got: %s", output)
	}
}

func TestNilConfig(t *testing.T) {
	if New(nil) == nil {
		t.Fatal("expected logger from nil config")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"trace":   LevelTrace,
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLogLevel_Filtering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "warn", Format: FormatText, Output: &buf})

	logger.Debug("debug entry")
	logger.Info("info entry")
	logger.Warn("warn entry")
	logger.Error("error entry")

	output := buf.String()
	for _, hidden := range []string{"debug entry", "info entry"} {
		if strings.Contains(output, hidden) {
			t.Errorf("expected %q to be filtered, got: %s", hidden, output)
		}
	}
	for _, shown := range []string{"warn entry", "error entry"} {
		if !strings.Contains(output, shown) {
			t.Errorf("expected %q in output, got: %s", shown, output)
		}
	}
}

func TestTrace(t *testing.T) {
	var buf bytes.Buffer
	Trace(New(&Config{Level: "debug", Format: FormatText, Output: &buf}), "hidden")
	if buf.Len() != 0 {
		t.Errorf("expected trace entry to be filtered at debug, got: %s", buf.String())
	}

	Trace(New(&Config{Level: "trace", Format: FormatJSON, Output: &buf}), "allocation", Int("header", 3))
	entry := decodeEntry(t, &buf)
	if entry["msg"] != "allocation" {
		t.Errorf("expected msg 'allocation', got: %v", entry["msg"])
	}
	if entry["header"] != float64(3) {
		t.Errorf("expected header=3, got: %v", entry["header"])
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Error("nothing")
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Error("expected discard logger to be disabled at error level")
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := WithComponent(New(&Config{Level: "info", Format: FormatJSON, Output: &buf}), "engine")
	logger.Info("ready")

	if entry := decodeEntry(t, &buf); entry[ComponentKey] != "engine" {
		t.Errorf("expected component 'engine', got: %v", entry[ComponentKey])
	}
}

func TestWithRunContext(t *testing.T) {
	var buf bytes.Buffer
	logger := WithRunContext(New(&Config{Level: "info", Format: FormatJSON, Output: &buf}), "run-1", "/src")
	logger.Info("packing")

	entry := decodeEntry(t, &buf)
	if entry[RunIDKey] != "run-1" {
		t.Errorf("expected run_id 'run-1', got: %v", entry[RunIDKey])
	}
	if entry["root"] != "/src" {
		t.Errorf("expected root '/src', got: %v", entry["root"])
	}
}

func TestWithFileContext(t *testing.T) {
	var buf bytes.Buffer
	base := New(&Config{Level: "info", Format: FormatJSON, Output: &buf})

	WithFileContext(base, "main.go", "go").Info("truncated")
	entry := decodeEntry(t, &buf)
	if entry[FileKey] != "main.go" || entry[LanguageKey] != "go" {
		t.Errorf("expected file and language fields, got: %v", entry)
	}

	buf.Reset()
	WithFileContext(base, "README", "").Info("skipped")
	entry = decodeEntry(t, &buf)
	if _, ok := entry[LanguageKey]; ok {
		t.Errorf("expected no language field, got: %v", entry[LanguageKey])
	}
}

func TestAttrHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "info", Format: FormatJSON, Output: &buf})
	logger.LogAttrs(context.Background(), slog.LevelInfo, "attrs",
		String("s", "v"),
		Int("i", 42),
		Bool("b", true),
		Duration("parse", 15),
		Error(errors.New("boom")),
	)

	entry := decodeEntry(t, &buf)
	if entry["s"] != "v" {
		t.Errorf("expected s=v, got: %v", entry["s"])
	}
	if entry["i"] != float64(42) {
		t.Errorf("expected i=42, got: %v", entry["i"])
	}
	if entry["b"] != true {
		t.Errorf("expected b=true, got: %v", entry["b"])
	}
	if entry["parse_ms"] != float64(15) {
		t.Errorf("expected parse_ms=15, got: %v", entry["parse_ms"])
	}
	if entry["error"] != "boom" {
		t.Errorf("expected error=boom, got: %v", entry["error"])
	}
}
