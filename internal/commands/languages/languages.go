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


package languages

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/tombee/repopacker/internal/commands/shared"
	"github.com/tombee/repopacker/internal/linelimit"
	"github.com/tombee/repopacker/internal/syntax"
)

// Analysis modes reported per language.
const (
	AnalysisTree    = "tree-sitter"
	AnalysisTextual = "textual"
)

// Language describes one supported language.
type Language struct {
	ID         string   `json:"id"`
	Extensions []string `json:"extensions"`
	Analysis   string   `json:"analysis"`
}

// LanguagesResponse is the JSON output of the languages command.
type LanguagesResponse struct {
	shared.JSONResponse
	Languages []Language `json:"languages"`
}

// NewCommand creates the languages command
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "languages",
		Aliases: []string{"langs"},
		Short:   "List supported languages",
		Long: `List every language the line limit engine understands, the file
extensions mapped to it and how it is analyzed.

Languages analyzed with tree-sitter fall back to textual analysis when a
file does not parse. Files with other extensions are kept whole when they
fit the limit and truncated to their first lines otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			langs := List()
			out := cmd.OutOrStdout()
			if shared.GetJSON() {
				return shared.EmitJSON(out, LanguagesResponse{
					JSONResponse: shared.JSONResponse{Version: "1.0", Command: "languages", Success: true},
					Languages:    langs,
				})
			}
			_, err := fmt.Fprintln(out, render(langs, shared.UseColor(out)))
			return err
		},
	}
}

// List returns every built-in language sorted by id.
func List() []Language {
	ids := linelimit.Languages()
	out := make([]Language, 0, len(ids))
	for _, id := range ids {
		exts := linelimit.ExtensionsFor(id)
		analysis := AnalysisTextual
		if len(exts) > 0 {
			if _, ok := syntax.GrammarKey(id, "file"+exts[0]); ok {
				analysis = AnalysisTree
			}
		}
		out = append(out, Language{ID: id, Extensions: exts, Analysis: analysis})
	}
	return out
}

func render(langs []Language, color bool) string {
	rows := make([][]string, len(langs))
	for i, l := range langs {
		rows[i] = []string{l.ID, strings.Join(l.Extensions, " "), l.Analysis}
	}

	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("LANGUAGE", "EXTENSIONS", "ANALYSIS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow && color {
				return cell.Inherit(shared.Header)
			}
			return cell
		}).
		String()
}
