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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/repopacker/internal/truncate"
)

func fn(name string, start, end int, complexity float64) truncate.FunctionAnalysis {
	return truncate.FunctionAnalysis{
		Name:       name,
		StartLine:  start,
		EndLine:    end,
		LineCount:  end - start + 1,
		Complexity: complexity,
	}
}

func sectionsOf(sel *selection) map[int]Section {
	out := make(map[int]Section)
	for i, sec := range sel.sections {
		if sec != "" {
			out[i] = sec
		}
	}
	return out
}

func names(fns []truncate.FunctionAnalysis) []string {
	var out []string
	for _, f := range fns {
		out = append(out, f.Name)
	}
	return out
}

func TestBudgets(t *testing.T) {
	tests := []struct {
		limit                int
		header, core, footer int
	}{
		{limit: 1, header: 0, core: 0, footer: 0},
		{limit: 3, header: 0, core: 1, footer: 0},
		{limit: 7, header: 2, core: 4, footer: 0},
		{limit: 10, header: 3, core: 6, footer: 1},
		{limit: 25, header: 7, core: 15, footer: 2},
		{limit: 100, header: 30, core: 60, footer: 10},
	}
	for _, tt := range tests {
		h, c, f := budgets(tt.limit)
		assert.Equal(t, tt.header, h, "header budget for %d", tt.limit)
		assert.Equal(t, tt.core, c, "core budget for %d", tt.limit)
		assert.Equal(t, tt.footer, f, "footer budget for %d", tt.limit)
	}
}

func TestBudgets_FollowShares(t *testing.T) {
	for limit := 1; limit <= 5000; limit++ {
		h, c, f := budgets(limit)
		require.Equal(t, limit*3/10, h, "header budget for %d", limit)
		require.Equal(t, limit*6/10, c, "core budget for %d", limit)
		require.Equal(t, limit/10, f, "footer budget for %d", limit)
		require.LessOrEqual(t, h+c+f, limit)
	}
}

func TestNormalize(t *testing.T) {
	st := normalize(structure{
		header: []int{3, 1, 1, -1, 40},
		footer: []int{9, 9, 8},
		functions: []truncate.FunctionAnalysis{
			fn("ok", 2, 4, 0.2),
			fn("clamped", 7, 30, 0.3),
			fn("outside", 12, 14, 0.3),
			{Name: "inverted", StartLine: 5, EndLine: 4},
		},
	}, 10)

	assert.Equal(t, []int{1, 3}, st.header)
	assert.Equal(t, []int{8, 9}, st.footer)
	require.Len(t, st.functions, 2)
	assert.Equal(t, "clamped", st.functions[1].Name)
	assert.Equal(t, 9, st.functions[1].EndLine)
	assert.Equal(t, 3, st.functions[1].LineCount)
}

func TestOutermost(t *testing.T) {
	got := outermost([]truncate.FunctionAnalysis{
		fn("inner", 3, 4, 0.9),
		fn("outer", 2, 8, 0.1),
		fn("overlap", 7, 10, 0.5),
		fn("next", 11, 12, 0.2),
	})
	assert.Equal(t, []string{"outer", "next"}, names(got))
}

func TestByComplexity_Stable(t *testing.T) {
	got := byComplexity([]truncate.FunctionAnalysis{
		fn("a", 0, 1, 0.3),
		fn("b", 2, 3, 0.9),
		fn("c", 4, 5, 0.3),
	})
	assert.Equal(t, []string{"b", "a", "c"}, names(got))
}

func TestAllocateZones(t *testing.T) {
	st := structure{
		header: []int{0, 1, 2, 3},
		footer: []int{18, 19},
		functions: []truncate.FunctionAnalysis{
			fn("alpha", 5, 8, 0.9),
			fn("nested", 6, 7, 0.95),
			fn("beta", 10, 14, 0.3),
		},
	}

	sel, truncated := allocateZones(20, 10, st)

	assert.Equal(t, map[int]Section{
		0: SectionHeader, 1: SectionHeader, 2: SectionHeader, 3: SectionHeader,
		5: SectionCore, 6: SectionCore, 7: SectionCore, 8: SectionCore,
		18: SectionFooter, 19: SectionFooter,
	}, sectionsOf(sel))
	assert.Equal(t, []string{"beta"}, names(truncated))
	assert.Equal(t, Allocation{HeaderLines: 4, CoreLines: 4, FooterLines: 2}, sel.allocation())
	assert.Equal(t, 0, sel.remaining)
}

func TestAllocateZones_FunctionsTouchingZonesAreNotCore(t *testing.T) {
	// main doubles as the footer; once a footer line is taken the function
	// is no longer offered to the core zone.
	st := structure{
		header:    []int{0},
		footer:    []int{6, 7, 8, 9},
		functions: []truncate.FunctionAnalysis{fn("helper", 2, 4, 0.2), fn("main", 6, 9, 0.9)},
	}

	sel, truncated := allocateZones(12, 10, st)

	sections := sectionsOf(sel)
	for _, l := range []int{2, 3, 4} {
		assert.Equal(t, SectionCore, sections[l], "line %d", l)
	}
	for _, l := range []int{6, 7, 8, 9} {
		assert.Equal(t, SectionFooter, sections[l], "line %d", l)
	}
	assert.Empty(t, truncated)
	assert.Equal(t, 10, sel.count())
}

func TestAllocateZones_ResidualOrder(t *testing.T) {
	st := structure{
		header:    []int{0},
		footer:    []int{11},
		functions: []truncate.FunctionAnalysis{fn("big", 2, 9, 0.5)},
	}

	sel, truncated := allocateZones(12, 8, st)

	assert.Equal(t, map[int]Section{
		0:  SectionHeader,
		1:  SectionCore,
		2:  SectionCore,
		3:  SectionCore,
		4:  SectionCore,
		5:  SectionCore,
		10: SectionCore,
		11: SectionFooter,
	}, sectionsOf(sel))
	assert.Equal(t, []string{"big"}, names(truncated))
}

func TestAllocateZones_ResidualTakesWholeFunctionFirst(t *testing.T) {
	// Core budget is 6 but the file has room for both functions once the
	// empty header and footer zones leave their budget unused.
	st := structure{
		functions: []truncate.FunctionAnalysis{fn("a", 0, 4, 0.7), fn("b", 5, 8, 0.6)},
	}

	sel, truncated := allocateZones(12, 10, st)

	assert.Empty(t, truncated)
	for i := 0; i <= 8; i++ {
		assert.Equal(t, SectionCore, sel.sections[i], "line %d", i)
	}
	assert.Equal(t, 10, sel.count())
}

func TestAllocateFlat(t *testing.T) {
	st := structure{
		header:    []int{0, 1},
		footer:    []int{9},
		functions: []truncate.FunctionAnalysis{fn("g", 3, 5, 0.8), fn("h", 6, 8, 1.2)},
	}

	sel, truncated := allocateFlat(10, 5, st)

	assert.Equal(t, map[int]Section{
		0: SectionCore, 1: SectionCore,
		6: SectionCore, 7: SectionCore, 8: SectionCore,
	}, sectionsOf(sel))
	assert.Equal(t, []string{"g"}, names(truncated))
}

func TestAllocate_AlwaysFillsLimit(t *testing.T) {
	st := structure{
		header:    []int{0, 1, 2},
		footer:    []int{27, 28, 29},
		functions: []truncate.FunctionAnalysis{fn("a", 4, 12, 0.4), fn("b", 14, 25, 0.8)},
	}
	for limit := 1; limit <= 30; limit++ {
		zones, _ := allocateZones(30, limit, st)
		flat, _ := allocateFlat(30, limit, st)
		assert.Equal(t, limit, zones.count(), "zones at limit %d", limit)
		assert.Equal(t, limit, flat.count(), "flat at limit %d", limit)
	}
}

func TestIndicators(t *testing.T) {
	sel := newSelection(8, 8)
	for _, i := range []int{0, 3, 4, 7} {
		sel.add(i, SectionCore)
	}

	got := indicators(sel)

	assert.Equal(t, []TruncationIndicator{
		{Type: IndicatorBlock, Location: IndicatorLocation{StartLine: 1, EndLine: 2}, Description: "2 lines truncated"},
		{Type: IndicatorBlock, Location: IndicatorLocation{StartLine: 5, EndLine: 6}, Description: "2 lines truncated"},
	}, got)
}

func TestIndicators_EdgesAndSingleLine(t *testing.T) {
	sel := newSelection(5, 5)
	sel.add(1, SectionCore)
	sel.add(2, SectionCore)
	sel.add(3, SectionCore)

	got := indicators(sel)

	require.Len(t, got, 2)
	assert.Equal(t, IndicatorLocation{StartLine: 0, EndLine: 0}, got[0].Location)
	assert.Equal(t, "1 line truncated", got[0].Description)
	assert.Equal(t, IndicatorLocation{StartLine: 4, EndLine: 4}, got[1].Location)
}

func TestIndicators_NothingOmitted(t *testing.T) {
	sel := newSelection(2, 2)
	sel.add(0, SectionCore)
	sel.add(1, SectionCore)
	assert.Empty(t, indicators(sel))
}
