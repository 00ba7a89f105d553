package truncate

import (
	"regexp"
	"strings"
)

const (
	// maxSignatureLines bounds how far a signature may run before its body.
	maxSignatureLines = 12
	// maxStatementLines bounds multi-line import and expression statements.
	maxStatementLines = 200

	fallbackHeaderLines = 5
	fallbackFooterLines = 3
)

var (
	rubyOpener  = regexp.MustCompile(`^\s*(?:def|class|module|if|unless|while|until|case|begin|for)\b`)
	rubyDo      = regexp.MustCompile(`\bdo\b`)
	rubyEnd     = regexp.MustCompile(`\bend\b`)
	rubyEndless = regexp.MustCompile(`^\s*def\s+[\w.?!]+\s*(?:\([^)]*\))?\s*=\s*\S`)
)

// headLines returns the first lines of a file, used when no header
// construct is recognized.
func headLines(n int) []int {
	if n > fallbackHeaderLines {
		n = fallbackHeaderLines
	}
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// tailLines returns the last non-blank lines of a file, used when no footer
// construct is recognized.
func tailLines(lines []string) []int {
	var out []int
	for i := len(lines) - 1; i >= 0 && len(out) < fallbackFooterLines; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			out = append([]int{i}, out...)
		}
	}
	if len(out) == 0 && len(lines) > 0 {
		out = []int{len(lines) - 1}
	}
	return out
}

// wholeFile treats the entire content as one function-sized block.
func wholeFile(n int) Block {
	return Block{Type: "block", Name: "", StartLine: 0, EndLine: n - 1}
}

// indentation returns the number of leading spaces/tabs in a line.
// Tabs are counted as 4 spaces for consistency.
func indentation(line string) int {
	indent := 0
	for _, ch := range line {
		if ch == ' ' {
			indent++
		} else if ch == '\t' {
			indent += 4
		} else {
			break
		}
	}
	return indent
}

// depthIndex holds the running block depth before every line and, for each
// line boundary, the next boundary at which the depth is back at that level
// or below. Block ends are looked up in it instead of rescanning the rest of
// the file for every signature.
type depthIndex struct {
	before []int // depth before line k; len(lines)+1 entries
	next   []int // first k' > k with before[k'] <= before[k], or -1
}

func newDepthIndex(lines []string, delta func(string) int) *depthIndex {
	n := len(lines)
	ix := &depthIndex{before: make([]int, n+1), next: make([]int, n+1)}
	for k, line := range lines {
		ix.before[k+1] = ix.before[k] + delta(line)
	}
	var stack []int
	for k := n; k >= 0; k-- {
		for len(stack) > 0 && ix.before[stack[len(stack)-1]] > ix.before[k] {
			stack = stack[:len(stack)-1]
		}
		ix.next[k] = -1
		if len(stack) > 0 {
			ix.next[k] = stack[len(stack)-1]
		}
		stack = append(stack, k)
	}
	return ix
}

// blockFinder finds block ends over the stripped lines of one file.
type blockFinder struct {
	style    blockStyle
	exprBody *regexp.Regexp
	stripped []string
	depth    *depthIndex
}

func (s *structural) newBlockFinder(stripped []string) *blockFinder {
	b := &blockFinder{style: s.text.style, exprBody: s.text.exprBody, stripped: stripped}
	switch s.text.style {
	case braceBlocks:
		b.depth = newDepthIndex(stripped, braceDelta)
	case endBlocks:
		b.depth = newDepthIndex(stripped, endDelta)
	}
	return b
}

// end returns the last line of the block whose signature starts at start,
// or -1 when no body follows. An unclosed block runs to the end of the file.
func (b *blockFinder) end(start int) int {
	end, _ := b.span(start)
	return end
}

// span is end that also reports whether the block was closed.
func (b *blockFinder) span(start int) (int, bool) {
	switch b.style {
	case indentBlocks:
		return indentBlockEnd(b.stripped, start), true
	case endBlocks:
		return endBlockEndAt(b.stripped, b.depth, start)
	default:
		if b.exprBody != nil && b.exprBody.MatchString(b.stripped[start]) {
			return expressionEnd(b.stripped, start), true
		}
		return braceBlockEndAt(b.stripped, b.depth, start)
	}
}

// braceBlockEnd tracks brace depth from the signature line. A semicolon
// before any brace ends a body-less declaration.
func braceBlockEnd(stripped []string, start int) int {
	end, _ := braceBlockEndAt(stripped, newDepthIndex(stripped, braceDelta), start)
	return end
}

func braceBlockEndAt(stripped []string, ix *depthIndex, start int) (int, bool) {
	depth, parens := 0, 0
	for j := start; j < len(stripped) && j-start < maxSignatureLines; j++ {
		opened := false
		for _, ch := range stripped[j] {
			switch ch {
			case '(', '[':
				parens++
			case ')', ']':
				parens--
			case '{':
				depth++
				opened = true
			case '}':
				depth--
			case ';':
				if !opened && parens <= 0 {
					return j, true
				}
			}
		}
		if !opened {
			continue
		}
		if depth <= 0 {
			return j, true
		}
		base := ix.before[start]
		if ix.before[j] == base {
			if k := ix.next[j]; k >= 0 {
				return k - 1, true
			}
			return len(stripped) - 1, false
		}
		// A closing brace in the signature shifted the depth.
		for k := j + 1; k < len(stripped); k++ {
			if ix.before[k+1] <= base {
				return k, true
			}
		}
		return len(stripped) - 1, false
	}
	return -1, true
}

func braceDelta(line string) int {
	return strings.Count(line, "{") - strings.Count(line, "}")
}

// expressionEnd finds the end of an expression-bodied declaration: a
// statement-ending semicolon, or the last line before indentation drops back.
func expressionEnd(stripped []string, start int) int {
	base := indentation(stripped[start])
	depth := 0
	end := start
	for j := start; j < len(stripped) && j-start < maxStatementLines; j++ {
		code := strings.TrimSpace(stripped[j])
		if j > start && code != "" && depth <= 0 && indentation(stripped[j]) <= base {
			return end
		}
		depth += bracketDelta(stripped[j])
		if code != "" {
			end = j
		}
		if depth <= 0 && strings.HasSuffix(code, ";") {
			return j
		}
	}
	return end
}

// indentBlockEnd finds the end of an indentation-delimited block whose
// header may span several lines before its trailing colon.
func indentBlockEnd(stripped []string, start int) int {
	sigEnd := -1
	depth := 0
	for j := start; j < len(stripped) && j-start < maxSignatureLines; j++ {
		depth += bracketDelta(stripped[j])
		if depth <= 0 {
			if !strings.Contains(stripped[j], ":") {
				return -1
			}
			sigEnd = j
			break
		}
	}
	if sigEnd < 0 {
		return -1
	}
	if tail := strings.TrimSpace(stripped[sigEnd]); !strings.HasSuffix(tail, ":") {
		// One-line body: def f(): return 1
		return sigEnd
	}

	base := indentation(stripped[start])
	end := sigEnd
	for j := sigEnd + 1; j < len(stripped); j++ {
		trimmed := strings.TrimSpace(stripped[j])
		// Skip empty lines and comments (don't update end - might be trailing)
		if trimmed == "" {
			continue
		}
		if indentation(stripped[j]) <= base {
			break
		}
		end = j
	}
	return end
}

// endBlockEnd matches block openers against "end" keywords.
func endBlockEnd(stripped []string, start int) int {
	end, _ := endBlockEndAt(stripped, newDepthIndex(stripped, endDelta), start)
	return end
}

func endBlockEndAt(stripped []string, ix *depthIndex, start int) (int, bool) {
	if rubyEndless.MatchString(stripped[start]) {
		return start, true
	}
	if k := ix.next[start]; k >= 0 {
		return k - 1, true
	}
	return len(stripped) - 1, false
}

func endDelta(line string) int {
	d := len(rubyDo.FindAllStringIndex(line, -1)) - len(rubyEnd.FindAllStringIndex(line, -1))
	if rubyOpener.MatchString(line) {
		d++
	}
	return d
}

// statementEnd returns the last line of a statement that may continue over
// several lines through open brackets or a trailing backslash.
func statementEnd(stripped []string, start int) int {
	depth := 0
	for j := start; j < len(stripped) && j-start < maxStatementLines; j++ {
		depth += bracketDelta(stripped[j])
		continued := strings.HasSuffix(strings.TrimSpace(stripped[j]), "\\")
		if depth <= 0 && !continued {
			return j
		}
	}
	return start
}

func bracketDelta(line string) int {
	d := 0
	for _, ch := range line {
		switch ch {
		case '(', '[', '{':
			d++
		case ')', ']', '}':
			d--
		}
	}
	return d
}
