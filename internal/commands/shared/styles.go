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

package shared

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/tombee/repopacker/internal/pack"
)

// CLI style colors using lipgloss
var (
	// StatusOK styles success indicators
	StatusOK = lipgloss.NewStyle().Foreground(lipgloss.Color("42")) // green

	// StatusWarn styles warning indicators
	StatusWarn = lipgloss.NewStyle().Foreground(lipgloss.Color("214")) // orange

	// StatusError styles error indicators
	StatusError = lipgloss.NewStyle().Foreground(lipgloss.Color("196")) // red

	// Muted styles secondary text
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("245")) // gray

	// Header styles section headers
	Header = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")) // blue bold
)

// Symbols for status indicators
const (
	SymbolOK    = "✓"
	SymbolWarn  = "⚠"
	SymbolError = "✗"
)

// Styler renders strings with or without color.
type Styler struct {
	color bool
}

// NewStyler returns a Styler. With color false every style is a no-op.
func NewStyler(color bool) Styler {
	return Styler{color: color}
}

func (s Styler) render(style lipgloss.Style, text string) string {
	if !s.color {
		return text
	}
	return style.Render(text)
}

// Header renders a section header.
func (s Styler) Header(text string) string { return s.render(Header, text) }

// Muted renders secondary text.
func (s Styler) Muted(text string) string { return s.render(Muted, text) }

// OK renders a success message with a green checkmark.
func (s Styler) OK(msg string) string { return s.render(StatusOK, SymbolOK) + " " + msg }

// Warn renders a warning message with an orange symbol.
func (s Styler) Warn(msg string) string { return s.render(StatusWarn, SymbolWarn) + " " + msg }

// Error renders an error message with a red X.
func (s Styler) Error(msg string) string { return s.render(StatusError, SymbolError) + " " + msg }

// FileStatus renders the one-line status of a packed file for watch and
// verbose output.
func (s Styler) FileStatus(f pack.FileReport) string {
	switch {
	case f.Method == pack.MethodSkipped:
		return s.Error(fmt.Sprintf("%s skipped: %s", f.Path, f.Error))
	case f.Method == pack.MethodHead:
		return s.Warn(fmt.Sprintf("%s %d -> %d lines (head)", f.Path, f.OriginalLines, f.TruncatedLines))
	case f.Truncated():
		return s.OK(fmt.Sprintf("%s %d -> %d lines", f.Path, f.OriginalLines, f.TruncatedLines))
	}
	return s.OK(fmt.Sprintf("%s %d lines", f.Path, f.OriginalLines))
}
