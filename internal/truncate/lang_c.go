package truncate

import (
	sitter "github.com/smacker/go-tree-sitter"
)

var cControlNodes = []string{
	"if_statement", "for_statement", "while_statement", "do_statement",
	"switch_statement", "conditional_expression",
}

var cDeclarationNodes = []string{
	"preproc_def", "preproc_function_def", "type_definition", "declaration",
	"struct_specifier", "enum_specifier", "union_specifier",
}

const (
	cHeader   = `^\s*#\s*(?:include|import|pragma|define|ifndef|ifdef|if|endif|undef)\b`
	cMainLine = `^\s*(?:static\s+)?(?:int|void)\s+main\s*\(`
)

func newCStrategy() *structural {
	return &structural{
		id:       "c",
		comments: commentSyntax{single: "//", multiOpen: "/*", multiClose: "*/", charLiterals: true},
		tree: treeRules{
			imports:      newNodeSet("preproc_include"),
			containers:   newNodeSet("preproc_ifdef", "preproc_if"),
			declarations: newNodeSet(cDeclarationNodes...),
			functions:    newNodeSet("function_definition"),
			control:      newNodeSet(cControlNodes...),
			calls:        newNodeSet("call_expression"),

			isFooter: cIsMain,
			isHeavy:  cIsPreprocInBody,
		},
		text: textRules{
			style:       braceBlocks,
			header:      mustCompileAll(cHeader),
			openers:     mustCompileAll(`^\s*(?:typedef\s+)?(?:struct|enum|union)\b[^;(]*$`, `^\s*typedef\b`),
			functions:   mustCompileAll(cStyleFunction),
			footer:      mustCompileAll(cMainLine),
			control:     re(cStyleControl),
			exception:   re(`\b(?:setjmp|longjmp|errno|abort)\b`),
			concurrency: re(`\bpthread_\w+|\bmtx_\w+|\batomic_\w+`),
			heavy:       re(`^\s*#\s*(?:if|ifdef|ifndef|define)\b`),
		},
	}
}

// cIsMain matches the program entry point.
func cIsMain(n *sitter.Node, src []byte) bool {
	return n.Type() == "function_definition" && nodeName(n, src) == "main"
}

// cIsPreprocInBody counts conditional compilation inside a function.
func cIsPreprocInBody(n *sitter.Node, src []byte) bool {
	switch n.Type() {
	case "preproc_if", "preproc_ifdef", "preproc_call":
		return true
	}
	return false
}
