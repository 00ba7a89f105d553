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

import "fmt"

// indicators returns one block indicator per contiguous run of omitted
// lines, in file order.
func indicators(sel *selection) []TruncationIndicator {
	var out []TruncationIndicator
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		out = append(out, TruncationIndicator{
			Type:        IndicatorBlock,
			Location:    IndicatorLocation{StartLine: start, EndLine: end},
			Description: describeSpan(end - start + 1),
		})
		start = -1
	}
	for i := range sel.sections {
		if sel.selected(i) {
			flush(i - 1)
			continue
		}
		if start < 0 {
			start = i
		}
	}
	flush(len(sel.sections) - 1)
	return out
}

// describeSpan is the indicator text for n omitted lines.
func describeSpan(n int) string {
	if n == 1 {
		return "1 line truncated"
	}
	return fmt.Sprintf("%d lines truncated", n)
}
