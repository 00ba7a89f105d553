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

// Package server implements an MCP server that exposes the line-limit
// engine and the pack runner as tools.
package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tombee/repopacker/internal/config"
	"github.com/tombee/repopacker/internal/linelimit"
	"github.com/tombee/repopacker/internal/log"
)

// Server wraps the MCP server and provides repopacker tools
type Server struct {
	mcpServer   *server.MCPServer
	name        string
	version     string
	engine      *linelimit.Engine
	defaults    *config.Config
	rateLimiter *RateLimiter
	middleware  *log.ToolMiddleware
	logger      *slog.Logger
}

// ServerConfig configures the MCP server
type ServerConfig struct {
	// Name is the server name (default: "repopacker")
	Name string

	// Version is the repopacker version
	Version string

	// Engine is shared by every tool call. Required.
	Engine *linelimit.Engine

	// Defaults supplies values for omitted tool arguments and the rate
	// limit. Default: config.Default()
	Defaults *config.Config

	// Logger receives tool call logs. It must not write to stdout, which
	// carries the stdio protocol.
	Logger *slog.Logger
}

// NewServer creates a new MCP server instance
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if cfg.Name == "" {
		cfg.Name = "repopacker"
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	if cfg.Defaults == nil {
		cfg.Defaults = config.Default()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = log.WithComponent(logger, "mcp")

	s := &Server{
		mcpServer:   server.NewMCPServer(cfg.Name, cfg.Version, server.WithToolCapabilities(false)),
		name:        cfg.Name,
		version:     cfg.Version,
		engine:      cfg.Engine,
		defaults:    cfg.Defaults,
		rateLimiter: NewRateLimiter(cfg.Defaults.MCP.RequestsPerSecond, cfg.Defaults.MCP.Burst),
		middleware:  log.NewToolMiddleware(logger),
		logger:      logger,
	}
	s.registerTools()
	return s, nil
}

// registerTools registers all repopacker tools with the MCP server
func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(toolApplyLineLimit,
		mcp.WithDescription("Reduce source code to at most line_limit lines, keeping imports, the most complex functions and the entry point. Returns the kept text with comments marking omitted spans, plus a JSON summary."),
		mcp.WithString("content", mcp.Required(), mcp.Description("The complete file content")),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("File name or path; the extension selects the language")),
		mcp.WithNumber("line_limit", mcp.Description("Maximum number of lines to keep (default from configuration)")),
		mcp.WithBoolean("preserve_structure", mcp.Description("Allocate lines to header, core and footer zones (default: true)")),
		mcp.WithBoolean("show_indicators", mcp.Description("Insert comments where lines were omitted (default: true)")),
	), s.handleApplyLineLimit)

	s.mcpServer.AddTool(mcp.NewTool(toolPackDirectory,
		mcp.WithDescription("Pack every supported file under a directory into one text document, limiting each file to line_limit lines."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Directory to pack, within the server's working directory")),
		mcp.WithNumber("line_limit", mcp.Description("Maximum number of lines per file (default from configuration)")),
		mcp.WithArray("include", mcp.Description("Glob patterns of files to include"), mcp.WithStringItems()),
		mcp.WithArray("ignore", mcp.Description("Glob patterns of files to skip, added to the configured ones"), mcp.WithStringItems()),
		mcp.WithBoolean("remove_comments", mcp.Description("Delete comments before limiting (default: false)")),
		mcp.WithBoolean("remove_empty_lines", mcp.Description("Delete blank lines before limiting (default: false)")),
		mcp.WithBoolean("show_line_numbers", mcp.Description("Prefix kept lines with their line number (default: false)")),
	), s.handlePackDirectory)

	s.mcpServer.AddTool(mcp.NewTool(toolListLanguages,
		mcp.WithDescription("List the languages the line limiter understands and their file extensions."),
	), s.handleListLanguages)
}

// Run serves the MCP protocol on stdin and stdout until the input closes.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting repopacker MCP server", slog.String("version", s.version))

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}

// Shutdown releases the engine's parsers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down repopacker MCP server")
	s.engine.Dispose()
	return nil
}

// errorResponse creates a tool error result
func errorResponse(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(message)
}

// textResponse creates a text tool result
func textResponse(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}
