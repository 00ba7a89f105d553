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

package server

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tombee/repopacker/internal/config"
	"github.com/tombee/repopacker/internal/linelimit"
)

func newTestServer(t *testing.T, defaults *config.Config) *Server {
	t.Helper()
	engine := linelimit.New()
	srv, err := NewServer(ServerConfig{Name: "test-server", Version: "1.0.0", Engine: engine, Defaults: defaults})
	if err != nil {
		t.Fatalf("NewServer() failed: %v", err)
	}
	t.Cleanup(func() { srv.Shutdown(context.Background()) })
	return srv
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) != 1 {
		t.Fatalf("expected one content item, got %d", len(result.Content))
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want mcp.TextContent", result.Content[0])
	}
	return text.Text
}

func TestNewServer(t *testing.T) {
	srv := newTestServer(t, nil)
	if srv.name != "test-server" || srv.version != "1.0.0" {
		t.Errorf("server = %q %q", srv.name, srv.version)
	}
	if srv.defaults.LineLimit != config.Default().LineLimit {
		t.Errorf("defaults.LineLimit = %d", srv.defaults.LineLimit)
	}

	if _, err := NewServer(ServerConfig{}); err == nil {
		t.Error("NewServer() without engine should fail")
	}

	engine := linelimit.New()
	defer engine.Dispose()
	srv, err := NewServer(ServerConfig{Engine: engine})
	if err != nil {
		t.Fatalf("NewServer() failed: %v", err)
	}
	if srv.name != "repopacker" || srv.version != "dev" {
		t.Errorf("defaults = %q %q", srv.name, srv.version)
	}
}

func goSource(functions int) string {
	var b strings.Builder
	b.WriteString("package main\n\nimport \"fmt\"\n")
	for i := 0; i < functions; i++ {
		b.WriteString("\nfunc helper() int {\n\tif true {\n\t\treturn 1\n\t}\n\treturn 0\n}\n")
	}
	b.WriteString("\nfunc main() {\n\tfmt.Println(helper())\n}")
	return b.String()
}

func TestApplyLineLimit(t *testing.T) {
	srv := newTestServer(t, nil)

	result, err := srv.handleApplyLineLimit(context.Background(), callRequest(toolApplyLineLimit, map[string]any{
		"content":    goSource(5),
		"file_path":  "main.go",
		"line_limit": float64(12),
	}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool error: %s", resultText(t, result))
	}

	text := resultText(t, result)
	parts := strings.SplitN(text, "\n\n{", 2)
	if len(parts) != 2 {
		t.Fatalf("missing JSON summary in %q", text)
	}
	var summary LineLimitSummary
	if err := json.Unmarshal([]byte("{"+parts[1]), &summary); err != nil {
		t.Fatalf("summary is not JSON: %v", err)
	}
	if summary.Language != "go" || !summary.Truncated || summary.LimitedLineCount != 12 {
		t.Errorf("summary = %+v", summary)
	}
	if !strings.HasPrefix(parts[0], "package main") {
		t.Errorf("text does not start with the package clause: %q", parts[0])
	}
	if !strings.Contains(parts[0], "lines truncated ...") {
		t.Errorf("text has no indicator comment: %q", parts[0])
	}
}

func TestApplyLineLimit_Errors(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing content", map[string]any{"file_path": "a.go"}, "'content'"},
		{"missing path", map[string]any{"content": "x"}, "'file_path'"},
		{"unsupported", map[string]any{"content": "a\nb\nc", "file_path": "notes.txt", "line_limit": float64(2)}, "UNSUPPORTED_LANGUAGE"},
		{"limit too small", map[string]any{"content": "x", "file_path": "a.go", "line_limit": float64(0)}, "LIMIT_TOO_SMALL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := srv.handleApplyLineLimit(context.Background(), callRequest(toolApplyLineLimit, tt.args))
			if err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if !result.IsError {
				t.Fatal("expected a tool error")
			}
			if got := resultText(t, result); !strings.Contains(got, tt.want) {
				t.Errorf("error text %q does not contain %q", got, tt.want)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	defaults := config.Default()
	defaults.MCP.RequestsPerSecond = 0.001
	defaults.MCP.Burst = 1
	srv := newTestServer(t, defaults)

	args := map[string]any{"content": "package main", "file_path": "main.go"}
	first, _ := srv.handleApplyLineLimit(context.Background(), callRequest(toolApplyLineLimit, args))
	if first.IsError {
		t.Fatalf("first call failed: %s", resultText(t, first))
	}
	second, _ := srv.handleApplyLineLimit(context.Background(), callRequest(toolApplyLineLimit, args))
	if !second.IsError || !strings.Contains(resultText(t, second), "Rate limit exceeded") {
		t.Errorf("second call should be rate limited")
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	for i := 0; i < 100; i++ {
		if !rl.AllowCall() {
			t.Fatalf("call %d rejected with limiting disabled", i)
		}
	}
}

func TestPackDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "main.go"), []byte(goSource(5)), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("REPOPACKER_ALLOWED_PATHS", dir)

	srv := newTestServer(t, nil)
	result, err := srv.handlePackDirectory(context.Background(), callRequest(toolPackDirectory, map[string]any{
		"path":       dir,
		"line_limit": float64(10),
	}))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool error: %s", resultText(t, result))
	}

	text := resultText(t, result)
	for _, want := range []string{"File: main.go", "Files: 1 processed, 1 truncated, 0 skipped", "main.go:"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestPackDirectory_RejectsTraversal(t *testing.T) {
	srv := newTestServer(t, nil)
	result, _ := srv.handlePackDirectory(context.Background(), callRequest(toolPackDirectory, map[string]any{"path": "../outside"}))
	if !result.IsError || !strings.Contains(resultText(t, result), "Invalid path") {
		t.Errorf("expected traversal rejection")
	}
}

func TestListLanguages(t *testing.T) {
	srv := newTestServer(t, nil)
	result, err := srv.handleListLanguages(context.Background(), callRequest(toolListLanguages, nil))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var langs []LanguageInfo
	if err := json.Unmarshal([]byte(resultText(t, result)), &langs); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if len(langs) != 14 {
		t.Fatalf("got %d languages, want 14", len(langs))
	}
	for _, l := range langs {
		if l.Language == "typescript" {
			if strings.Join(l.Extensions, ",") != ".cts,.mts,.ts,.tsx" {
				t.Errorf("typescript extensions = %v", l.Extensions)
			}
		}
	}
}
