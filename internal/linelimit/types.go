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

// Package linelimit selects which lines of a source file to keep under a
// line budget. It splits the budget into header, core and footer zones and
// fills them from the structure a language strategy reports, falling back to
// textual heuristics when a file does not parse.
package linelimit

import (
	"github.com/tombee/repopacker/internal/truncate"
)

// Section is the zone a selected line was allocated to.
type Section string

const (
	SectionHeader Section = "header"
	SectionCore   Section = "core"
	SectionFooter Section = "footer"
)

// Zone shares of the line limit. Each budget is floor(limit * share).
const (
	HeaderShare = 0.3
	CoreShare   = 0.6
	FooterShare = 0.1
)

// Config controls one ApplyLineLimit call.
type Config struct {
	// LineLimit is the maximum number of lines to keep. Values below 1 are
	// rejected.
	LineLimit int `json:"lineLimit" yaml:"line_limit"`

	// PreserveStructure allocates lines by zone. When false every selected
	// line is tagged core and units compete on a single priority scale.
	PreserveStructure bool `json:"preserveStructure" yaml:"preserve_structure"`

	// ShowTruncationIndicators adds one indicator per omitted span.
	ShowTruncationIndicators bool `json:"showTruncationIndicators" yaml:"show_truncation_indicators"`

	// EnableCaching stores results keyed by content, language and config.
	EnableCaching bool `json:"enableCaching" yaml:"enable_caching"`
}

// DefaultConfig returns a Config with structure preservation, indicators and
// caching enabled.
func DefaultConfig(lineLimit int) Config {
	return Config{
		LineLimit:                lineLimit,
		PreserveStructure:        true,
		ShowTruncationIndicators: true,
		EnableCaching:            true,
	}
}

// SourceLine is one kept line of the input.
type SourceLine struct {
	LineNumber int     `json:"lineNumber"` // 0-based
	Content    string  `json:"content"`
	Section    Section `json:"section"`
}

// IndicatorType distinguishes indicators covering whole lines from those
// placed within a line.
type IndicatorType string

const (
	IndicatorBlock  IndicatorType = "block"
	IndicatorInline IndicatorType = "inline"
)

// IndicatorLocation is an inclusive, 0-based line span of the original file.
type IndicatorLocation struct {
	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine"`
}

// TruncationIndicator describes one omitted span.
type TruncationIndicator struct {
	Type        IndicatorType     `json:"type"`
	Location    IndicatorLocation `json:"location"`
	Description string            `json:"description"`
}

// Allocation counts the selected lines per section.
type Allocation struct {
	HeaderLines int `json:"headerLines"`
	CoreLines   int `json:"coreLines"`
	FooterLines int `json:"footerLines"`
}

// Metadata describes how a result was produced.
type Metadata struct {
	Language   string     `json:"language"`
	Allocation Allocation `json:"allocation"`
}

// Result is the outcome of ApplyLineLimit.
type Result struct {
	SelectedLines        []SourceLine                `json:"selectedLines"`
	OriginalLineCount    int                         `json:"originalLineCount"`
	LimitedLineCount     int                         `json:"limitedLineCount"`
	TruncatedFunctions   []truncate.FunctionAnalysis `json:"truncatedFunctions"`
	TruncationIndicators []TruncationIndicator       `json:"truncationIndicators"`
	Metadata             Metadata                    `json:"metadata"`
}

// Truncated reports whether any line was omitted.
func (r *Result) Truncated() bool {
	return r.LimitedLineCount < r.OriginalLineCount
}

// Lines returns the content of the selected lines in order.
func (r *Result) Lines() []string {
	out := make([]string, len(r.SelectedLines))
	for i, l := range r.SelectedLines {
		out[i] = l.Content
	}
	return out
}

// clone returns a deep copy so cached results are never shared.
func (r *Result) clone() *Result {
	c := *r
	c.SelectedLines = append([]SourceLine(nil), r.SelectedLines...)
	c.TruncatedFunctions = append([]truncate.FunctionAnalysis(nil), r.TruncatedFunctions...)
	c.TruncationIndicators = append([]TruncationIndicator(nil), r.TruncationIndicators...)
	return &c
}
