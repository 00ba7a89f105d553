package truncate

import (
	"regexp"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/tombee/repopacker/internal/syntax"
)

// nodeSet is a set of tree-sitter node types.
type nodeSet map[string]bool

func newNodeSet(types ...string) nodeSet {
	s := make(nodeSet, len(types))
	for _, t := range types {
		s[t] = true
	}
	return s
}

// blockStyle tells the textual path how a block's extent is delimited.
type blockStyle int

const (
	braceBlocks  blockStyle = iota // { ... }
	indentBlocks                   // Python-style indentation
	endBlocks                      // Ruby-style def ... end
)

// commentSyntax is a language's comment and literal syntax.
type commentSyntax struct {
	single       string
	multiOpen    string
	multiClose   string
	extraSingle  string
	charLiterals bool
}

// treeRules drive the syntax tree path of a structural strategy.
type treeRules struct {
	imports      nodeSet // import, package and include nodes
	containers   nodeSet // namespace or module nodes whose body continues the header
	declarations nodeSet // leading declarations kept whole when short
	openers      nodeSet // class-like declarations kept up to the start of their body
	functions    nodeSet
	lambdas      nodeSet // only counted when spanning several lines
	wrappers     nodeSet // parents that attach decorators to a definition
	decorators   nodeSet
	control      nodeSet
	exceptions   nodeSet
	concurrency  nodeSet
	generics     nodeSet
	heavy        nodeSet
	calls        nodeSet
	bootstrap    nodeSet // top-level statements that may form a trailing bootstrap run
	asyncWords   []string

	// isDeclaration reports extra leading declarations not covered by a node type.
	isDeclaration func(n *sitter.Node, src []byte) bool
	// isPreamble reports nodes skipped before the header, such as docstrings.
	isPreamble func(n *sitter.Node, src []byte) bool
	// isFooter reports entry points, initializers, exports and test blocks.
	isFooter func(n *sitter.Node, src []byte) bool
	// isHeavy reports heavy constructs that need more than a node type to spot.
	isHeavy func(n *sitter.Node, src []byte) bool
}

// textRules drive the textual path of a structural strategy.
type textRules struct {
	style       blockStyle
	header      []*regexp.Regexp
	containers  []*regexp.Regexp // namespace openers whose body continues the header
	openers     []*regexp.Regexp
	functions   []*regexp.Regexp // first non-empty submatch is the name
	footer      []*regexp.Regexp
	bootstrap   *regexp.Regexp
	decorator   *regexp.Regexp
	exprBody    *regexp.Regexp // signature followed by an expression body
	control     *regexp.Regexp
	exception   *regexp.Regexp
	concurrency *regexp.Regexp
	asyncMarker *regexp.Regexp
	generic     *regexp.Regexp
	heavy       *regexp.Regexp
}

// structural is the rule-driven Strategy shared by every built-in language.
// Each public method runs the syntax tree path when the tree is usable and
// the textual path otherwise.
type structural struct {
	id       string
	comments commentSyntax
	tree     treeRules
	text     textRules
}

var _ Strategy = (*structural)(nil)
var _ Commenter = (*structural)(nil)
var _ CommentRemover = (*structural)(nil)

// ID returns the language id the strategy was built for.
func (s *structural) ID() string {
	return s.id
}

// CommentSyntax implements Commenter.
func (s *structural) CommentSyntax() (single string, multiOpen string, multiClose string) {
	return s.comments.single, s.comments.multiOpen, s.comments.multiClose
}

func (s *structural) useTree(tree *syntax.Tree) bool {
	return tree.Usable() && len(s.tree.functions) > 0
}

// IdentifyHeaderLines implements Strategy.
func (s *structural) IdentifyHeaderLines(lines []string, tree *syntax.Tree) []int {
	if len(lines) == 0 {
		return nil
	}
	if s.useTree(tree) {
		if out := s.treeHeader(tree, len(lines)); len(out) > 0 {
			return out
		}
		if !tree.HasErrors() {
			return headLines(len(lines))
		}
	}
	return s.textHeader(lines)
}

// AnalyzeFunctions implements Strategy.
func (s *structural) AnalyzeFunctions(lines []string, tree *syntax.Tree) []FunctionAnalysis {
	if len(lines) == 0 {
		return nil
	}
	if s.useTree(tree) {
		if out := s.treeFunctions(tree, len(lines)); len(out) > 0 || !tree.HasErrors() {
			return out
		}
	}
	return s.textFunctions(lines)
}

// IdentifyFooterLines implements Strategy.
func (s *structural) IdentifyFooterLines(lines []string, tree *syntax.Tree) []int {
	if len(lines) == 0 {
		return nil
	}
	if s.useTree(tree) {
		if out := s.treeFooter(tree, len(lines)); len(out) > 0 {
			return out
		}
		if !tree.HasErrors() {
			return tailLines(lines)
		}
	}
	return s.textFooter(lines)
}

// CalculateComplexity implements Strategy.
func (s *structural) CalculateComplexity(node *sitter.Node, source []byte) float64 {
	if node == nil {
		return baseScore
	}
	name := anonymousName
	if s.tree.functions[node.Type()] {
		name = nodeName(node, source)
	}
	fr := s.newFrame(node, node, source, name, 0)
	s.collectFeatures(node, source, map[spanKey][]*fnFrame{keyOf(node): {fr}})
	return score(fr.f)
}

// stripper returns a stripper for the strategy's comment syntax.
func (s *structural) stripper(extra ...StripperOption) *Stripper {
	opts := extra
	if s.comments.charLiterals {
		opts = append(opts, WithCharLiterals())
	}
	if s.comments.extraSingle != "" {
		opts = append(opts, WithLineComment(s.comments.extraSingle))
	}
	return NewStripper(s.comments.single, s.comments.multiOpen, s.comments.multiClose, opts...)
}

// RemoveComments implements CommentRemover. Lines that held only a comment
// are dropped and lines that ended in one lose the trailing whitespace left
// behind, so the result may have fewer lines than content.
func (s *structural) RemoveComments(content string) (string, error) {
	blanked, err := s.stripper(WithStringsKept()).Strip(content)
	if err != nil {
		return "", err
	}

	original := strings.Split(content, "\n")
	lines := strings.Split(blanked, "\n")
	if len(lines) != len(original) {
		return content, nil
	}
	kept := lines[:0]
	for i, line := range lines {
		if line == original[i] {
			kept = append(kept, line)
			continue
		}
		trimmed := strings.TrimRight(line, " \t")
		if strings.TrimSpace(trimmed) == "" {
			continue
		}
		kept = append(kept, trimmed)
	}
	return strings.Join(kept, "\n"), nil
}

// stripLines blanks comments and literals, keeping one entry per line.
func (s *structural) stripLines(lines []string) []string {
	content := strings.Join(lines, "\n")
	stripped, err := s.stripper().Strip(content)
	if err != nil {
		return lines
	}
	out := strings.Split(stripped, "\n")
	if len(out) != len(lines) {
		return lines
	}
	return out
}

// lineSet collects 0-indexed line numbers within [0, n).
type lineSet struct {
	n    int
	seen map[int]bool
}

func newLineSet(n int) *lineSet {
	return &lineSet{n: n, seen: make(map[int]bool)}
}

func (l *lineSet) addRange(start, end int) {
	if start < 0 {
		start = 0
	}
	if end >= l.n {
		end = l.n - 1
	}
	for i := start; i <= end; i++ {
		l.seen[i] = true
	}
}

func (l *lineSet) has(i int) bool {
	return l.seen[i]
}

func (l *lineSet) sorted() []int {
	out := make([]int, 0, len(l.seen))
	for i := range l.seen {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

func sortFunctions(fns []FunctionAnalysis) {
	sort.SliceStable(fns, func(i, j int) bool {
		if fns[i].StartLine != fns[j].StartLine {
			return fns[i].StartLine < fns[j].StartLine
		}
		return fns[i].EndLine > fns[j].EndLine
	})
}

func mustCompileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}
