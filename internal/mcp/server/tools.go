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
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tombee/repopacker/internal/linelimit"
	"github.com/tombee/repopacker/internal/log"
	"github.com/tombee/repopacker/internal/pack"
)

const (
	toolApplyLineLimit = "apply_line_limit"
	toolPackDirectory  = "pack_directory"
	toolListLanguages  = "list_languages"

	maxContentSize = 10 * 1024 * 1024
)

// LineLimitSummary is the JSON block returned with apply_line_limit text.
type LineLimitSummary struct {
	Language           string                          `json:"language"`
	OriginalLineCount  int                             `json:"original_line_count"`
	LimitedLineCount   int                             `json:"limited_line_count"`
	Truncated          bool                            `json:"truncated"`
	TruncatedFunctions []string                        `json:"truncated_functions,omitempty"`
	Allocation         linelimit.Allocation            `json:"allocation"`
	Indicators         []linelimit.TruncationIndicator `json:"indicators,omitempty"`
}

// LanguageInfo is one entry of the list_languages result.
type LanguageInfo struct {
	Language   string   `json:"language"`
	Extensions []string `json:"extensions"`
}

// handleApplyLineLimit implements the apply_line_limit tool
func (s *Server) handleApplyLineLimit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}

	content, err := request.RequireString("content")
	if err != nil {
		return errorResponse("Missing or invalid 'content' argument"), nil
	}
	filePath, err := request.RequireString("file_path")
	if err != nil {
		return errorResponse("Missing or invalid 'file_path' argument"), nil
	}
	if len(content) > maxContentSize {
		return errorResponse(fmt.Sprintf("Content exceeds maximum size of %d bytes", maxContentSize)), nil
	}

	cfg := s.defaults.EngineConfig()
	cfg.LineLimit = int(request.GetFloat("line_limit", float64(cfg.LineLimit)))
	cfg.PreserveStructure = request.GetBool("preserve_structure", cfg.PreserveStructure)
	cfg.ShowTruncationIndicators = request.GetBool("show_indicators", cfg.ShowTruncationIndicators)

	var text string
	call := &log.ToolCall{Tool: toolApplyLineLimit, File: filePath, Metadata: map[string]any{"line_limit": cfg.LineLimit}}
	_, err = s.middleware.Handle(call, func() (map[string]any, error) {
		result, err := s.engine.ApplyLineLimit(ctx, content, filePath, cfg)
		if err != nil {
			return nil, err
		}

		summary := LineLimitSummary{
			Language:          result.Metadata.Language,
			OriginalLineCount: result.OriginalLineCount,
			LimitedLineCount:  result.LimitedLineCount,
			Truncated:         result.Truncated(),
			Allocation:        result.Metadata.Allocation,
			Indicators:        result.TruncationIndicators,
		}
		for _, fn := range result.TruncatedFunctions {
			summary.TruncatedFunctions = append(summary.TruncatedFunctions, fn.Name)
		}
		encoded, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode summary: %w", err)
		}

		text = s.engine.Render(result, strings.Split(content, "\n")) + "\n\n" + string(encoded)
		return map[string]any{
			"language":  summary.Language,
			"truncated": summary.Truncated,
		}, nil
	})
	if err != nil {
		return errorResponse(err.Error()), nil
	}
	return textResponse(text), nil
}

// handlePackDirectory implements the pack_directory tool
func (s *Server) handlePackDirectory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}

	root, err := request.RequireString("path")
	if err != nil {
		return errorResponse("Missing or invalid 'path' argument"), nil
	}
	if err := ValidatePath(root); err != nil {
		return errorResponse(fmt.Sprintf("Invalid path: %v", err)), nil
	}

	limit := s.defaults.EngineConfig()
	limit.LineLimit = int(request.GetFloat("line_limit", float64(limit.LineLimit)))
	opts := pack.Options{
		Root:        root,
		Include:     request.GetStringSlice("include", s.defaults.Include),
		Ignore:      append(append([]string(nil), s.defaults.Ignore...), request.GetStringSlice("ignore", nil)...),
		Limit:       limit,
		Concurrency: s.defaults.Concurrency,

		RemoveComments:   request.GetBool("remove_comments", false),
		RemoveEmptyLines: request.GetBool("remove_empty_lines", false),
		ShowLineNumbers:  request.GetBool("show_line_numbers", false),
	}

	var out strings.Builder
	call := &log.ToolCall{Tool: toolPackDirectory, File: root, Metadata: map[string]any{"line_limit": limit.LineLimit}}
	_, err = s.middleware.Handle(call, func() (map[string]any, error) {
		summary, err := pack.NewRunner(s.engine, s.logger, opts).Run(ctx, &out)
		if err != nil {
			return nil, err
		}
		out.WriteString("\n")
		if err := summary.WriteText(&out, true); err != nil {
			return nil, err
		}
		return map[string]any{
			"files":     summary.FilesProcessed,
			"truncated": summary.FilesTruncated,
		}, nil
	})
	if err != nil {
		return errorResponse(err.Error()), nil
	}
	return textResponse(out.String()), nil
}

// handleListLanguages implements the list_languages tool
func (s *Server) handleListLanguages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	languages := Languages()
	encoded, err := json.MarshalIndent(languages, "", "  ")
	if err != nil {
		return errorResponse(fmt.Sprintf("Failed to encode languages: %v", err)), nil
	}
	return textResponse(string(encoded)), nil
}

// Languages lists every language with a registered extension, sorted by
// language id.
func Languages() []LanguageInfo {
	var out []LanguageInfo
	for _, lang := range linelimit.Languages() {
		out = append(out, LanguageInfo{Language: lang, Extensions: linelimit.ExtensionsFor(lang)})
	}
	return out
}
