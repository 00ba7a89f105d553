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

package pack

import (
	"io"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Method names how a file's lines were chosen.
type Method string

const (
	// MethodPassthrough means the file fit within the limit.
	MethodPassthrough Method = "passthrough"
	// MethodStructural means the line-limit engine selected the lines.
	MethodStructural Method = "structural"
	// MethodHead means the first lines were kept because the engine could
	// not handle the file.
	MethodHead Method = "head"
	// MethodSkipped means the file was left out of the output.
	MethodSkipped Method = "skipped"
)

// FileReport describes one packed file.
type FileReport struct {
	Path               string   `json:"path"`
	Language           string   `json:"language,omitempty"`
	Method             Method   `json:"method"`
	OriginalLines      int      `json:"original_lines"`
	TruncatedLines     int      `json:"truncated_lines"`
	OriginalTokens     int      `json:"original_tokens"`
	TruncatedTokens    int      `json:"truncated_tokens"`
	TruncatedFunctions []string `json:"truncated_functions,omitempty"`
	Error              string   `json:"error,omitempty"`
}

// Truncated reports whether lines were omitted from the file.
func (f FileReport) Truncated() bool {
	return f.Method != MethodSkipped && f.TruncatedLines < f.OriginalLines
}

// Summary describes a pack run.
type Summary struct {
	RunID           string       `json:"run_id"`
	Root            string       `json:"root"`
	LineLimit       int          `json:"line_limit"`
	FilesProcessed  int          `json:"files_processed"`
	FilesTruncated  int          `json:"files_truncated"`
	FilesSkipped    int          `json:"files_skipped"`
	FilesFallback   int          `json:"files_fallback"`
	OriginalLines   int          `json:"original_lines"`
	TruncatedLines  int          `json:"truncated_lines"`
	OriginalTokens  int          `json:"original_tokens"`
	TruncatedTokens int          `json:"truncated_tokens"`
	DurationMs      int64        `json:"duration_ms"`
	Files           []FileReport `json:"files"`
}

// add folds a file report into the totals.
func (s *Summary) add(f FileReport) {
	s.Files = append(s.Files, f)
	if f.Method == MethodSkipped {
		s.FilesSkipped++
		return
	}
	s.FilesProcessed++
	if f.Truncated() {
		s.FilesTruncated++
	}
	if f.Method == MethodHead {
		s.FilesFallback++
	}
	s.OriginalLines += f.OriginalLines
	s.TruncatedLines += f.TruncatedLines
	s.OriginalTokens += f.OriginalTokens
	s.TruncatedTokens += f.TruncatedTokens
}

// ReductionPercent is the share of lines removed, from 0 to 100.
func (s *Summary) ReductionPercent() float64 {
	if s.OriginalLines == 0 {
		return 0
	}
	return float64(s.OriginalLines-s.TruncatedLines) * 100 / float64(s.OriginalLines)
}

// WriteText writes a human-readable summary. With detailed set each
// truncated, fallback or skipped file gets its own line.
func (s *Summary) WriteText(w io.Writer, detailed bool) error {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	p.Fprintf(&b, "Line limit: %d lines per file\n", s.LineLimit)
	p.Fprintf(&b, "Files: %d processed, %d truncated, %d skipped\n",
		s.FilesProcessed, s.FilesTruncated, s.FilesSkipped)
	if s.FilesFallback > 0 {
		p.Fprintf(&b, "Fallback: %d files truncated by head\n", s.FilesFallback)
	}
	p.Fprintf(&b, "Lines: %d -> %d (%.1f%% reduction)\n",
		s.OriginalLines, s.TruncatedLines, s.ReductionPercent())
	p.Fprintf(&b, "Tokens (estimated): %d -> %d\n", s.OriginalTokens, s.TruncatedTokens)
	p.Fprintf(&b, "Duration: %v\n", time.Duration(s.DurationMs)*time.Millisecond)

	if detailed {
		for _, f := range s.Files {
			switch {
			case f.Method == MethodSkipped:
				p.Fprintf(&b, "  %s: skipped (%s)\n", f.Path, f.Error)
			case f.Truncated():
				p.Fprintf(&b, "  %s: %d -> %d lines [%s]", f.Path, f.OriginalLines, f.TruncatedLines, f.Method)
				if len(f.TruncatedFunctions) > 0 {
					p.Fprintf(&b, " truncated: %s", strings.Join(f.TruncatedFunctions, ", "))
				}
				b.WriteByte('\n')
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// EstimateTokens approximates the token count of text at four characters
// per token.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}
