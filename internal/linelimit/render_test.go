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

package linelimit

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/repopacker/internal/truncate"
)

func TestRender_IndicatorComments(t *testing.T) {
	original := []string{"import os", "def f():", "    x = 1", "    return x", "print(f())", ""}
	r := &Result{
		SelectedLines: []SourceLine{
			{LineNumber: 0, Content: original[0], Section: SectionHeader},
			{LineNumber: 1, Content: original[1], Section: SectionCore},
			{LineNumber: 4, Content: original[4], Section: SectionFooter},
		},
		OriginalLineCount: 6,
		LimitedLineCount:  3,
		TruncationIndicators: []TruncationIndicator{
			{Type: IndicatorBlock, Location: IndicatorLocation{StartLine: 2, EndLine: 3}, Description: "2 lines truncated"},
			{Type: IndicatorBlock, Location: IndicatorLocation{StartLine: 5, EndLine: 5}, Description: "1 line truncated"},
		},
		Metadata: Metadata{Language: "python"},
	}

	want := strings.Join([]string{
		"import os",
		"def f():",
		"    # ... 2 lines truncated ...",
		"print(f())",
		"# ... 1 line truncated ...",
	}, "\n")
	assert.Equal(t, want, Render(r, original))
}

func TestRender_LeadingSpanAndBlankFirstLine(t *testing.T) {
	original := []string{"", "a", "b", "c"}
	r := &Result{
		SelectedLines: []SourceLine{
			{LineNumber: 0, Content: ""},
			{LineNumber: 3, Content: "c"},
		},
		OriginalLineCount: 4,
		TruncationIndicators: []TruncationIndicator{
			{Type: IndicatorBlock, Location: IndicatorLocation{StartLine: 1, EndLine: 2}, Description: "2 lines truncated"},
		},
		Metadata: Metadata{Language: "go"},
	}
	assert.Equal(t, "\n// ... 2 lines truncated ...\nc", Render(r, original))
}

func TestRender_WithoutIndicators(t *testing.T) {
	original := []string{"a", "b", "c"}
	r := &Result{
		SelectedLines:     []SourceLine{{LineNumber: 0, Content: "a"}, {LineNumber: 2, Content: "c"}},
		OriginalLineCount: 3,
		Metadata:          Metadata{Language: "ruby"},
	}
	assert.Equal(t, "a\nc", Render(r, original))
}

func TestRender_FromEngine(t *testing.T) {
	e := newTestEngine(t)
	r, err := e.ApplyLineLimit(context.Background(), goSample, "main.go", DefaultConfig(10))
	require.NoError(t, err)

	out := Render(r, strings.Split(goSample, "\n"))
	assert.Contains(t, out, "lines truncated ...")
	assert.True(t, strings.HasPrefix(out, "package main"))
	assert.Equal(t, r.LimitedLineCount+len(r.TruncationIndicators), len(strings.Split(out, "\n")))
}

// dashComments reports SQL-style comment syntax.
type dashComments struct{ panicStrategy }

func (dashComments) CommentSyntax() (string, string, string) { return "--", "", "" }

func TestEngineRender_UsesEngineRegistry(t *testing.T) {
	reg := truncate.NewRegistry()
	reg.RegisterStrategy("go", dashComments{})
	e := newTestEngine(t, WithRegistry(reg))

	original := []string{"a", "b", "c"}
	r := &Result{
		SelectedLines:     []SourceLine{{LineNumber: 0, Content: "a"}},
		OriginalLineCount: 3,
		TruncationIndicators: []TruncationIndicator{
			{Type: IndicatorBlock, Location: IndicatorLocation{StartLine: 1, EndLine: 2}, Description: "2 lines truncated"},
		},
		Metadata: Metadata{Language: "go"},
	}
	assert.Equal(t, "a\n-- ... 2 lines truncated ...", e.Render(r, original))
	assert.Equal(t, "a\n// ... 2 lines truncated ...", Render(r, original))
}

func TestEngineRenderNumbered(t *testing.T) {
	e := newTestEngine(t)

	original := make([]string, 12)
	for i := range original {
		original[i] = "x"
	}
	r := &Result{
		SelectedLines: []SourceLine{
			{LineNumber: 0, Content: "package main"},
			{LineNumber: 11, Content: "}"},
		},
		OriginalLineCount: 12,
		TruncationIndicators: []TruncationIndicator{
			{Type: IndicatorBlock, Location: IndicatorLocation{StartLine: 1, EndLine: 10}, Description: "10 lines truncated"},
		},
		Metadata: Metadata{Language: "go"},
	}

	want := strings.Join([]string{
		" 1: package main",
		"    // ... 10 lines truncated ...",
		"12: }",
	}, "\n")
	assert.Equal(t, want, e.RenderNumbered(r, original))
}

func TestHead(t *testing.T) {
	lines := []string{"a", "b", "c", "d"}

	r := Head(lines, 2, "", true)
	assert.Equal(t, []string{"a", "b"}, r.Lines())
	assert.Equal(t, 4, r.OriginalLineCount)
	assert.Equal(t, 2, r.LimitedLineCount)
	assert.True(t, r.Truncated())
	assert.Equal(t, "a\nb\n// ... 2 lines truncated ...", Render(r, lines))

	assert.Empty(t, Head(lines, 2, "", false).TruncationIndicators)

	whole := Head(lines, 10, "", true)
	assert.False(t, whole.Truncated())
	assert.Len(t, whole.SelectedLines, 4)
}
