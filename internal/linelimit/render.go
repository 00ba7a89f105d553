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
	"fmt"
	"strconv"
	"strings"

	"github.com/tombee/repopacker/internal/truncate"
)

// Render joins the selected lines of r, inserting an indicator comment
// where each truncation indicator starts. original must be the lines the
// result was computed from. Comment syntax comes from the default registry.
func Render(r *Result, original []string) string {
	return render(r, original, truncate.DefaultRegistry(), false)
}

// Render is the package-level Render using the comment syntax of the
// engine's registry.
func (e *Engine) Render(r *Result, original []string) string {
	return render(r, original, e.registry, false)
}

// RenderNumbered is Render with every kept line prefixed by its 1-based
// line number in original. Indicator lines are padded to the same column.
func (e *Engine) RenderNumbered(r *Result, original []string) string {
	return render(r, original, e.registry, true)
}

func render(r *Result, original []string, registry *truncate.Registry, numbered bool) string {
	opener, closer := commentDelimiters(registry, r.Metadata.Language)
	width := len(strconv.Itoa(r.OriginalLineCount))

	starts := make(map[int]TruncationIndicator, len(r.TruncationIndicators))
	for _, ind := range r.TruncationIndicators {
		starts[ind.Location.StartLine] = ind
	}

	var (
		b       strings.Builder
		written int
	)
	write := func(number int, line string) {
		if written > 0 {
			b.WriteByte('\n')
		}
		if numbered {
			if number > 0 {
				fmt.Fprintf(&b, "%*d: ", width, number)
			} else {
				b.WriteString(strings.Repeat(" ", width+2))
			}
		}
		b.WriteString(line)
		written++
	}
	emit := func(at int) {
		ind, ok := starts[at]
		if !ok {
			return
		}
		indent := ""
		if at < len(original) {
			indent = leadingWhitespace(original[at])
		}
		write(0, indent+indicatorComment(opener, closer, ind.Description))
	}

	next := 0
	for _, sl := range r.SelectedLines {
		if sl.LineNumber > next {
			emit(next)
		}
		write(sl.LineNumber+1, sl.Content)
		next = sl.LineNumber + 1
	}
	if next < r.OriginalLineCount {
		emit(next)
	}
	return b.String()
}

// commentDelimiters returns the comment syntax used for indicators. Languages
// without a line comment use their block comment.
func commentDelimiters(registry *truncate.Registry, language string) (string, string) {
	if c, ok := registry.GetStrategy(language).(truncate.Commenter); ok {
		single, multiOpen, multiClose := c.CommentSyntax()
		if single != "" {
			return single, ""
		}
		if multiOpen != "" {
			return multiOpen, multiClose
		}
	}
	return "//", ""
}

func indicatorComment(opener, closer, description string) string {
	if closer != "" {
		return fmt.Sprintf("%s ... %s ... %s", opener, description, closer)
	}
	return fmt.Sprintf("%s ... %s ...", opener, description)
}

func leadingWhitespace(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}
