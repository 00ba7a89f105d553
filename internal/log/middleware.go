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
	"context"
	"log/slog"
	"time"
)

// ToolCall describes an incoming MCP tool invocation for logging purposes.
type ToolCall struct {
	// Tool is the name of the invoked tool (e.g. "apply_line_limit").
	Tool string

	// RequestID is the JSON-RPC request ID, when the client sent one.
	RequestID string

	// File is the file path argument, if any.
	File string

	// Metadata contains additional request attributes.
	Metadata map[string]any
}

// ToolResult summarizes how a tool invocation finished.
type ToolResult struct {
	Success    bool
	Error      string
	DurationMs int64
	Metadata   map[string]any
}

func (c *ToolCall) attrs() []any {
	attrs := []any{"tool", c.Tool}
	if c.RequestID != "" {
		attrs = append(attrs, "request_id", c.RequestID)
	}
	if c.File != "" {
		attrs = append(attrs, FileKey, c.File)
	}
	return attrs
}

// LogToolCall logs an incoming tool invocation at debug level.
func LogToolCall(logger *slog.Logger, call *ToolCall) {
	attrs := append([]any{EventKey, "tool_call"}, call.attrs()...)
	for k, v := range call.Metadata {
		attrs = append(attrs, k, v)
	}
	logger.Debug("tool call received", attrs...)
}

// LogToolResult logs the outcome of a tool invocation. Failures are
// logged at warn level; they are reported back to the client as tool
// errors rather than crashing the server.
func LogToolResult(logger *slog.Logger, call *ToolCall, res *ToolResult) {
	attrs := append([]any{
		EventKey, "tool_result",
		"success", res.Success,
		DurationKey, res.DurationMs,
	}, call.attrs()...)
	if res.Error != "" {
		attrs = append(attrs, "error", res.Error)
	}
	for k, v := range res.Metadata {
		attrs = append(attrs, k, v)
	}

	level := slog.LevelInfo
	message := "tool call completed"
	if !res.Success {
		level = slog.LevelWarn
		message = "tool call failed"
	}
	logger.Log(context.Background(), level, message, attrs...)
}

// ToolMiddleware wraps tool handlers with request and result logging.
type ToolMiddleware struct {
	logger *slog.Logger
}

// NewToolMiddleware creates a new tool logging middleware.
func NewToolMiddleware(logger *slog.Logger) *ToolMiddleware {
	return &ToolMiddleware{logger: logger}
}

// Handle runs handler and logs the call and its result. The metadata
// returned by handler is attached to the result entry.
func (m *ToolMiddleware) Handle(call *ToolCall, handler func() (map[string]any, error)) (map[string]any, error) {
	start := time.Now()
	LogToolCall(m.logger, call)

	metadata, err := handler()

	res := &ToolResult{
		Success:    err == nil,
		DurationMs: time.Since(start).Milliseconds(),
		Metadata:   metadata,
	}
	if err != nil {
		res.Error = err.Error()
	}
	LogToolResult(m.logger, call, res)

	return metadata, err
}
