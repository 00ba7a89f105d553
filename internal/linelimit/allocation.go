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
	"math"
	"sort"

	"github.com/tombee/repopacker/internal/truncate"
)

// structure is what a strategy reported about one file.
type structure struct {
	header    []int
	footer    []int
	functions []truncate.FunctionAnalysis
}

// selection records the section of every chosen line; "" means omitted.
type selection struct {
	sections  []Section
	remaining int
}

func newSelection(n, limit int) *selection {
	return &selection{sections: make([]Section, n), remaining: limit}
}

func (s *selection) selected(i int) bool {
	return s.sections[i] != ""
}

func (s *selection) add(i int, sec Section) bool {
	if s.remaining == 0 || s.selected(i) {
		return false
	}
	s.sections[i] = sec
	s.remaining--
	return true
}

// missing counts the unselected lines of a function.
func (s *selection) missing(fn truncate.FunctionAnalysis) int {
	n := 0
	for i := fn.StartLine; i <= fn.EndLine; i++ {
		if !s.selected(i) {
			n++
		}
	}
	return n
}

// addFunction selects every remaining line of fn if they all fit.
func (s *selection) addFunction(fn truncate.FunctionAnalysis, sec Section) bool {
	need := s.missing(fn)
	if need > s.remaining {
		return false
	}
	for i := fn.StartLine; i <= fn.EndLine; i++ {
		s.add(i, sec)
	}
	return true
}

func (s *selection) count() int {
	n := 0
	for _, sec := range s.sections {
		if sec != "" {
			n++
		}
	}
	return n
}

// budgets splits a limit into header, core and footer line budgets.
func budgets(limit int) (header, core, footer int) {
	return share(limit, HeaderShare), share(limit, CoreShare), share(limit, FooterShare)
}

// share returns floor(limit * fraction).
func share(limit int, fraction float64) int {
	return int(math.Floor(float64(limit) * fraction))
}

// normalize clamps strategy output to the file and removes duplicates.
func normalize(st structure, n int) structure {
	out := structure{
		header: uniqueLines(st.header, n),
		footer: uniqueLines(st.footer, n),
	}
	for _, fn := range st.functions {
		if fn.StartLine < 0 || fn.StartLine >= n || fn.EndLine < fn.StartLine {
			continue
		}
		if fn.EndLine >= n {
			fn.EndLine = n - 1
		}
		fn.LineCount = fn.EndLine - fn.StartLine + 1
		out.functions = append(out.functions, fn)
	}
	return out
}

func uniqueLines(lines []int, n int) []int {
	seen := make(map[int]bool, len(lines))
	out := make([]int, 0, len(lines))
	for _, l := range lines {
		if l < 0 || l >= n || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	sort.Ints(out)
	return out
}

// outermost drops functions nested in or overlapping an earlier one.
func outermost(fns []truncate.FunctionAnalysis) []truncate.FunctionAnalysis {
	sorted := append([]truncate.FunctionAnalysis(nil), fns...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].StartLine != sorted[j].StartLine {
			return sorted[i].StartLine < sorted[j].StartLine
		}
		return sorted[i].EndLine > sorted[j].EndLine
	})
	var out []truncate.FunctionAnalysis
	end := -1
	for _, fn := range sorted {
		if fn.StartLine <= end {
			continue
		}
		out = append(out, fn)
		end = fn.EndLine
	}
	return out
}

// byComplexity returns fns stable-sorted by descending complexity.
func byComplexity(fns []truncate.FunctionAnalysis) []truncate.FunctionAnalysis {
	sorted := append([]truncate.FunctionAnalysis(nil), fns...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Complexity > sorted[j].Complexity
	})
	return sorted
}

func (s *selection) intersects(fn truncate.FunctionAnalysis) bool {
	for i := fn.StartLine; i <= fn.EndLine; i++ {
		if s.selected(i) {
			return true
		}
	}
	return false
}

// allocateZones fills the header, core and footer budgets in turn and spends
// what is left in the residual pass.
func allocateZones(n, limit int, st structure) (*selection, []truncate.FunctionAnalysis) {
	sel := newSelection(n, min(limit, n))
	hb, cb, fb := budgets(limit)

	taken := 0
	for _, l := range st.header {
		if taken == hb {
			break
		}
		if sel.add(l, SectionHeader) {
			taken++
		}
	}

	isHeader := make(map[int]bool, len(st.header))
	for _, l := range st.header {
		isHeader[l] = true
	}
	var footer []int
	for _, l := range st.footer {
		if !isHeader[l] {
			footer = append(footer, l)
		}
	}
	taken = 0
	for i := len(footer) - 1; i >= 0 && taken < fb; i-- {
		if sel.add(footer[i], SectionFooter) {
			taken++
		}
	}

	var skipped []truncate.FunctionAnalysis
	used := 0
	for _, fn := range byComplexity(outermost(st.functions)) {
		if sel.intersects(fn) {
			continue
		}
		if used+fn.LineCount <= cb && sel.addFunction(fn, SectionCore) {
			used += fn.LineCount
			continue
		}
		skipped = append(skipped, fn)
	}

	residual(sel, st, skipped, st.header, footer, zoneSection)
	return sel, truncatedFunctions(sel, skipped)
}

// allocateFlat ranks header lines, functions and footer lines on one
// priority scale and takes them first-fit. Every line is tagged core.
func allocateFlat(n, limit int, st structure) (*selection, []truncate.FunctionAnalysis) {
	sel := newSelection(n, min(limit, n))

	type unit struct {
		priority float64
		fn       truncate.FunctionAnalysis
	}
	var units []unit
	for _, l := range st.header {
		units = append(units, unit{priority: 1.0, fn: truncate.FunctionAnalysis{StartLine: l, EndLine: l, LineCount: 1}})
	}
	fns := outermost(st.functions)
	for _, fn := range fns {
		units = append(units, unit{priority: fn.Complexity, fn: fn})
	}
	for _, l := range st.footer {
		units = append(units, unit{priority: 0.75, fn: truncate.FunctionAnalysis{StartLine: l, EndLine: l, LineCount: 1}})
	}
	sort.SliceStable(units, func(i, j int) bool {
		return units[i].priority > units[j].priority
	})
	for _, u := range units {
		sel.addFunction(u.fn, SectionCore)
	}

	var skipped []truncate.FunctionAnalysis
	for _, fn := range byComplexity(fns) {
		if sel.missing(fn) > 0 {
			skipped = append(skipped, fn)
		}
	}
	residual(sel, st, skipped, st.header, st.footer, flatSection)
	return sel, truncatedFunctions(sel, skipped)
}

func zoneSection(s Section) Section { return s }

func flatSection(Section) Section { return SectionCore }

// residual spends budget left over after the zones: whole skipped
// functions, header candidates, footer candidates from the end, lines
// outside every function, signatures of skipped functions, then any line.
func residual(sel *selection, st structure, skipped []truncate.FunctionAnalysis, header, footer []int, tag func(Section) Section) {
	if sel.remaining == 0 {
		return
	}
	for _, fn := range skipped {
		sel.addFunction(fn, tag(SectionCore))
	}
	for _, l := range header {
		sel.add(l, tag(SectionHeader))
	}
	for i := len(footer) - 1; i >= 0; i-- {
		sel.add(footer[i], tag(SectionFooter))
	}
	if sel.remaining == 0 {
		return
	}

	// Nested functions overlap, so coverage is summed from span edges.
	edges := make([]int, len(sel.sections)+1)
	for _, fn := range st.functions {
		edges[fn.StartLine]++
		edges[fn.EndLine+1]--
	}
	covered := 0
	for i := range sel.sections {
		covered += edges[i]
		if covered == 0 {
			sel.add(i, tag(SectionCore))
		}
	}
	for _, fn := range skipped {
		sel.add(fn.StartLine, tag(SectionCore))
	}
	for i := range sel.sections {
		if sel.remaining == 0 {
			return
		}
		sel.add(i, tag(SectionCore))
	}
}

// truncatedFunctions returns the skipped functions that lost at least one
// line, in file order.
func truncatedFunctions(sel *selection, skipped []truncate.FunctionAnalysis) []truncate.FunctionAnalysis {
	var out []truncate.FunctionAnalysis
	for _, fn := range skipped {
		if sel.missing(fn) > 0 {
			out = append(out, fn)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartLine < out[j].StartLine
	})
	return out
}

// allocation counts selected lines per section.
func (s *selection) allocation() Allocation {
	var a Allocation
	for _, sec := range s.sections {
		switch sec {
		case SectionHeader:
			a.HeaderLines++
		case SectionFooter:
			a.FooterLines++
		case SectionCore:
			a.CoreLines++
		}
	}
	return a
}
