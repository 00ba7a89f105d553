package truncate

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/tombee/repopacker/internal/syntax"
)

// SimpleComplexityThreshold separates simple functions from complex ones.
// Functions scoring at or above it are preferred when the core budget is tight.
const SimpleComplexityThreshold = 0.5

// Block represents a code block (function, class, method, etc.) with its boundaries.
type Block struct {
	Type      string // "function", "class", "method", "block"
	Name      string // Identifier name if available
	StartLine int    // Line number where block starts (0-indexed)
	EndLine   int    // Line number where block ends (0-indexed, inclusive)
}

// FunctionAnalysis describes one function-like construct found in a file.
type FunctionAnalysis struct {
	Name       string  `json:"name"`
	StartLine  int     `json:"startLine"` // 0-indexed, includes attached decorators
	EndLine    int     `json:"endLine"`   // 0-indexed, inclusive
	LineCount  int     `json:"lineCount"`
	Complexity float64 `json:"complexity"`
}

// Strategy is the per-language structural analysis used by the line-limit
// engine. Every method accepts a nil or unusable tree and then answers from
// the raw lines instead, so results are never empty for non-empty input.
type Strategy interface {
	// IdentifyHeaderLines returns 0-indexed lines holding imports, package or
	// namespace openers and the declarations that directly follow them, in
	// file order.
	IdentifyHeaderLines(lines []string, tree *syntax.Tree) []int

	// AnalyzeFunctions returns every function, method, constructor and
	// multi-line lambda, ordered by StartLine.
	AnalyzeFunctions(lines []string, tree *syntax.Tree) []FunctionAnalysis

	// IdentifyFooterLines returns 0-indexed lines holding entry points,
	// initializers, trailing exports, bootstrap calls and test blocks, in
	// file order.
	IdentifyFooterLines(lines []string, tree *syntax.Tree) []int

	// CalculateComplexity scores a function node. The score is greater than
	// zero for any function.
	CalculateComplexity(node *sitter.Node, source []byte) float64
}

// Commenter is implemented by strategies that know their language's comment
// syntax. Empty strings indicate no support for that comment type.
type Commenter interface {
	CommentSyntax() (single string, multiOpen string, multiClose string)
}

// CommentRemover is implemented by strategies that can delete comments while
// leaving string literals intact.
type CommentRemover interface {
	RemoveComments(content string) (string, error)
}
