package truncate

import (
	"regexp"
	"sort"
	"strings"
)

// statementKeywords never start a function signature, even when a line
// looks like "keyword name(".
var statementKeywords = map[string]bool{
	"if": true, "else": true, "for": true, "foreach": true, "while": true, "do": true,
	"switch": true, "case": true, "catch": true, "return": true, "new": true,
	"throw": true, "throws": true, "delete": true, "await": true, "yield": true,
	"goto": true, "sizeof": true, "typeof": true, "echo": true, "print": true,
	"elif": true, "except": true, "with": true, "assert": true, "raise": true,
	"match": true, "when": true, "using": true, "lock": true, "fixed": true,
	"unless": true, "until": true, "guard": true, "defer": true, "go": true,
	"import": true, "package": true, "super": true, "this": true, "not": true,
	"and": true, "or": true, "in": true, "is": true, "as": true,
	"static_assert": true, "loop": true,
}

func matchAny(res []*regexp.Regexp, line string) bool {
	for _, re := range res {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

func countMatches(re *regexp.Regexp, line string) int {
	if re == nil {
		return 0
	}
	return len(re.FindAllStringIndex(line, -1))
}

func firstWord(line string) string {
	fields := strings.FieldsFunc(line, func(r rune) bool { return !isWordRune(r) })
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func (s *structural) isDecoratorLine(line string) bool {
	return s.text.decorator != nil && s.text.decorator.MatchString(line)
}

func (s *structural) textHeader(lines []string) []int {
	stripped := s.stripLines(lines)
	blocks := s.newBlockFinder(stripped)
	out := newLineSet(len(lines))
	var pending []int
	flush := func() {
		for _, p := range pending {
			out.addRange(p, p)
		}
		pending = nil
	}

scan:
	for i := 0; i < len(lines); i++ {
		code := strings.TrimSpace(stripped[i])
		switch {
		case matchAny(s.text.header, lines[i]):
			flush()
			end := statementEnd(stripped, i)
			out.addRange(i, end)
			i = end
		case code == "":
			continue
		case s.isDecoratorLine(lines[i]):
			pending = append(pending, i)
		case matchAny(s.text.containers, lines[i]):
			// Namespace bodies continue the header.
			flush()
			end := s.openerLine(stripped, i)
			out.addRange(i, end)
			i = end
		case matchAny(s.text.openers, lines[i]):
			flush()
			end := statementEnd(stripped, i)
			if s.opensBlock(stripped, i) {
				if e := blocks.end(i); e > end {
					end = e
				}
			}
			if end-i+1 <= maxDeclarationLines {
				out.addRange(i, end)
				i = end
				continue
			}
			out.addRange(i, s.openerLine(stripped, i))
			break scan
		default:
			break scan
		}
	}

	if len(out.seen) == 0 {
		return headLines(len(lines))
	}
	return out.sorted()
}

// opensBlock reports whether the declaration starting at line i has a body.
func (s *structural) opensBlock(stripped []string, i int) bool {
	code := strings.TrimSpace(stripped[i])
	switch s.text.style {
	case indentBlocks:
		return strings.HasSuffix(code, ":")
	case endBlocks:
		return true
	}
	if strings.Contains(code, "{") {
		return true
	}
	return i+1 < len(stripped) && strings.HasPrefix(strings.TrimSpace(stripped[i+1]), "{")
}

// openerLine returns the line on which a declaration's body opens.
func (s *structural) openerLine(stripped []string, start int) int {
	for j := start; j < len(stripped) && j-start < maxSignatureLines; j++ {
		code := strings.TrimSpace(stripped[j])
		if strings.Contains(code, "{") || (s.text.style == indentBlocks && strings.HasSuffix(code, ":")) {
			return j
		}
		if s.text.style == endBlocks {
			return j
		}
	}
	return start
}

// matchFunction returns the function name declared on a stripped line.
// Lines ending in a semicolon without a body, such as prototypes or
// constructor-style variable declarations, are not functions.
func (s *structural) matchFunction(line string) (string, bool) {
	if statementKeywords[firstWord(line)] {
		return "", false
	}
	if code := strings.TrimSpace(line); strings.HasSuffix(code, ";") &&
		!strings.Contains(code, "{") && !strings.Contains(code, "=>") {
		return "", false
	}
	for _, re := range s.text.functions {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		for _, name := range m[1:] {
			if name == "" {
				continue
			}
			if statementKeywords[name] {
				return "", false
			}
			return name, true
		}
	}
	return "", false
}

// textBlocks approximates function boundaries from keywords and brace,
// indentation or end-keyword structure. A block that never closes stops
// before the next function.
func (s *structural) textBlocks(lines, stripped []string) []Block {
	var (
		starts []int
		names  []string
	)
	for i := range stripped {
		if name, ok := s.matchFunction(stripped[i]); ok {
			starts = append(starts, i)
			names = append(names, name)
		}
	}

	finder := s.newBlockFinder(stripped)
	var blocks []Block
	for k, i := range starts {
		end, closed := finder.span(i)
		if end < i {
			continue
		}
		if !closed && k+1 < len(starts) && starts[k+1] <= end {
			end = starts[k+1] - 1
		}
		start := i
		for start > 0 && s.isDecoratorLine(lines[start-1]) {
			start--
		}
		blocks = append(blocks, Block{Type: "function", Name: names[k], StartLine: start, EndLine: end})
	}
	return blocks
}

func (s *structural) textFunctions(lines []string) []FunctionAnalysis {
	stripped := s.stripLines(lines)
	blocks := s.textBlocks(lines, stripped)
	if len(blocks) == 0 {
		blocks = []Block{wholeFile(len(lines))}
	}

	stats := s.newLineStats(stripped)
	out := make([]FunctionAnalysis, 0, len(blocks))
	for _, b := range blocks {
		name := b.Name
		if name == "" {
			name = anonymousName
		}
		out = append(out, FunctionAnalysis{
			Name:       name,
			StartLine:  b.StartLine,
			EndLine:    b.EndLine,
			LineCount:  b.EndLine - b.StartLine + 1,
			Complexity: score(s.textFeatures(lines, stripped, stats, b)),
		})
	}
	sortFunctions(out)
	return out
}

// callName matches a name followed by an opening parenthesis.
var callName = regexp.MustCompile(`\b([A-Za-z_]\w*[?!=]?)\s*\(`)

// maxNesting is the nesting depth at which nestingCap is reached.
const maxNesting = 4

// lineStats holds per-line keyword counts as prefix sums, so the features
// of any line range are read without rescanning it.
type lineStats struct {
	control     []int
	exceptions  []int
	concurrency []int
	heavy       []int
	levels      map[int][]int    // indentation to lines with a control keyword
	calls       map[string][]int // called name to lines
}

func (s *structural) newLineStats(stripped []string) *lineStats {
	n := len(stripped)
	st := &lineStats{
		control:     make([]int, n+1),
		exceptions:  make([]int, n+1),
		concurrency: make([]int, n+1),
		heavy:       make([]int, n+1),
		levels:      make(map[int][]int),
		calls:       make(map[string][]int),
	}
	for j, code := range stripped {
		c := countMatches(s.text.control, code)
		if c > 0 {
			indent := indentation(code)
			st.levels[indent] = append(st.levels[indent], j)
		}
		st.control[j+1] = st.control[j] + c
		st.exceptions[j+1] = st.exceptions[j] + countMatches(s.text.exception, code)
		st.concurrency[j+1] = st.concurrency[j] + countMatches(s.text.concurrency, code)
		st.heavy[j+1] = st.heavy[j] + countMatches(s.text.heavy, code)
		for _, m := range callName.FindAllStringSubmatch(code, -1) {
			if list := st.calls[m[1]]; len(list) == 0 || list[len(list)-1] != j {
				st.calls[m[1]] = append(list, j)
			}
		}
	}
	return st
}

// anyIn reports whether a sorted line list has an entry in [from, to].
func anyIn(list []int, from, to int) bool {
	i := sort.SearchInts(list, from)
	return i < len(list) && list[i] <= to
}

// textFeatures collects complexity features by keyword counts.
func (s *structural) textFeatures(lines, stripped []string, st *lineStats, b Block) features {
	f := features{lines: b.EndLine - b.StartLine + 1}

	sig := b.StartLine
	for sig < b.EndLine && s.isDecoratorLine(lines[sig]) {
		f.decorators++
		sig++
	}
	if s.text.asyncMarker != nil && s.text.asyncMarker.MatchString(stripped[sig]) {
		f.async = true
	}
	if s.text.generic != nil && s.text.generic.MatchString(stripped[sig]) {
		f.generic = true
	}

	from, to := sig, b.EndLine+1
	f.control = st.control[to] - st.control[from]
	f.exceptions = st.exceptions[to] - st.exceptions[from]
	f.concurrency = st.concurrency[to] - st.concurrency[from]
	f.heavy = st.heavy[to] - st.heavy[from]
	if b.Name != "" && isWordRune(rune(b.Name[0])) {
		f.recursive = anyIn(st.calls[b.Name], sig+1, b.EndLine)
	}
	if f.control > 0 {
		for _, list := range st.levels {
			if anyIn(list, sig, b.EndLine) {
				f.nesting++
				if f.nesting == maxNesting {
					break
				}
			}
		}
	}
	return f
}

func (s *structural) textFooter(lines []string) []int {
	stripped := s.stripLines(lines)
	blocks := s.newBlockFinder(stripped)
	out := newLineSet(len(lines))

	for i := range lines {
		if out.has(i) || !matchAny(s.text.footer, lines[i]) {
			continue
		}
		if strings.TrimSpace(stripped[i]) == "" {
			// Matched inside a comment or string.
			continue
		}
		end := blocks.end(i)
		if end < i {
			end = i
		}
		start := i
		for start > 0 && s.isDecoratorLine(lines[start-1]) {
			start--
		}
		out.addRange(start, end)
	}

	if s.text.bootstrap != nil {
		for j := len(lines) - 1; j >= 0; j-- {
			if strings.TrimSpace(stripped[j]) == "" {
				continue
			}
			if indentation(lines[j]) > 0 || !s.text.bootstrap.MatchString(lines[j]) {
				break
			}
			out.addRange(j, j)
		}
	}

	if len(out.seen) == 0 {
		return tailLines(lines)
	}
	return out.sorted()
}
