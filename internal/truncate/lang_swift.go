package truncate

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

const swiftModifiers = `(?:(?:public|private|internal|fileprivate|open|final|static|class|override|mutating|nonisolated|convenience|required)\s+)*`

func newSwiftStrategy() *structural {
	return &structural{
		id:       "swift",
		comments: commentSyntax{single: "//", multiOpen: "/*", multiClose: "*/"},
		tree: treeRules{
			imports:      newNodeSet("import_declaration"),
			openers:      newNodeSet("class_declaration", "protocol_declaration"),
			declarations: newNodeSet("property_declaration", "typealias_declaration", "protocol_property_declaration"),
			functions: newNodeSet(
				"function_declaration", "init_declaration", "deinit_declaration",
				"protocol_function_declaration", "subscript_declaration",
			),
			lambdas:    newNodeSet("lambda_literal"),
			decorators: newNodeSet("attribute"),
			control: newNodeSet(
				"if_statement", "guard_statement", "for_statement", "while_statement",
				"repeat_while_statement", "switch_statement", "ternary_expression",
			),
			exceptions:  newNodeSet("do_statement", "catch_block", "try_expression", "throw_keyword"),
			concurrency: newNodeSet("await_expression"),
			generics:    newNodeSet("type_parameters", "type_constraints"),
			calls:       newNodeSet("call_expression"),
			bootstrap:   newNodeSet("call_expression"),
			asyncWords:  []string{"async"},

			isFooter: swiftIsMain,
		},
		text: textRules{
			style: braceBlocks,
			header: mustCompileAll(
				`^\s*(?:@testable\s+|@_exported\s+)?import\s+\w+`,
			),
			openers: mustCompileAll(
				`^\s*` + swiftModifiers + `(?:class|struct|enum|protocol|extension|actor|typealias)\s+\w+`,
				`^\s*(?:(?:public|private|internal|fileprivate)\s+)?(?:let|var)\s+\w+`,
			),
			functions: mustCompileAll(
				`^\s*(?:@\w+\s+)*` + swiftModifiers + `func\s+([A-Za-z_]\w*)`,
				`^\s*` + swiftModifiers + `(init|deinit)\b`,
			),
			footer:      mustCompileAll(`^@main\b`),
			bootstrap:   re(`^(?:try\s+)?(?:await\s+)?[A-Za-z_][\w.]*\s*\(.*\)\s*$`),
			decorator:   re(`^\s*@\w+(?:\(.*\))?\s*$`),
			control:     re(`\b(?:if|guard|for|while|repeat|switch)\b`),
			exception:   re(`\bdo\s*\{|\bcatch\b|\btry[?!]?\s|\bthrow\b`),
			concurrency: re(`\bawait\b|\bTask\s*\{|\bTaskGroup\b|\bDispatchQueue\b|\bactor\b`),
			asyncMarker: re(`\basync\b`),
			generic:     re(`\bfunc\s+\w+\s*<`),
			heavy:       re(`\}\s*\.(?:map|filter|compactMap|flatMap|reduce|sorted)\s*[({]|\bMirror\(`),
		},
	}
}

// swiftIsMain matches a type marked as the program entry point.
func swiftIsMain(n *sitter.Node, src []byte) bool {
	if n.Type() != "class_declaration" {
		return false
	}
	head := n.Content(src)
	if body := bodyOf(n); body != nil {
		head = string(src[n.StartByte():body.StartByte()])
	}
	return strings.Contains(head, "@main")
}
