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


package mcpserver

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tombee/repopacker/internal/commands/shared"
	"github.com/tombee/repopacker/internal/linelimit"
	"github.com/tombee/repopacker/internal/mcp/server"
)

// NewCommand creates the mcp-server command
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Start the repopacker MCP server",
		Long: `Start the repopacker MCP (Model Context Protocol) server on stdio.

AI coding assistants can call the line limit engine directly through it.

Configuration example (~/.config/claude/config.json):
  {
    "mcpServers": {
      "repopacker": {
        "command": "repopacker",
        "args": ["mcp-server"]
      }
    }
  }

The server exposes these tools:
  - apply_line_limit: Truncate one file's content to a line limit
  - pack_directory: Pack a directory under REPOPACKER_ALLOWED_PATHS
  - list_languages: List supported languages and extensions

Omitted tool arguments take their values from the configuration file.
Logs go to stderr; stdout carries the protocol.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCPServer()
		},
	}

	return cmd
}

func runMCPServer() error {
	cfg, err := shared.LoadConfig()
	if err != nil {
		return err
	}
	logger := shared.NewLogger(cfg)
	versionStr, _, _ := shared.GetVersion()

	engine := linelimit.New(append(cfg.EngineOptions(), linelimit.WithLogger(logger))...)

	srv, err := server.NewServer(server.ServerConfig{
		Name:     "repopacker",
		Version:  versionStr,
		Engine:   engine,
		Defaults: cfg,
		Logger:   logger,
	})
	if err != nil {
		engine.Dispose()
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
		case <-ctx.Done():
			return
		}
		logger.Info("received shutdown signal, shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
		cancel()
	}()

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return srv.Shutdown(context.Background())
}
