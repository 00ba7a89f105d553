package truncate

import (
	sitter "github.com/smacker/go-tree-sitter"
)

func newGoStrategy() *structural {
	return &structural{
		id:       "go",
		comments: commentSyntax{single: "//", multiOpen: "/*", multiClose: "*/", charLiterals: true},
		tree: treeRules{
			imports:      newNodeSet("package_clause", "import_declaration"),
			declarations: newNodeSet("type_declaration", "const_declaration", "var_declaration"),
			functions:    newNodeSet("function_declaration", "method_declaration"),
			lambdas:      newNodeSet("func_literal"),
			control: newNodeSet(
				"if_statement", "for_statement", "expression_switch_statement",
				"type_switch_statement", "select_statement",
			),
			exceptions:  newNodeSet("defer_statement"),
			concurrency: newNodeSet("go_statement", "select_statement", "send_statement"),
			generics:    newNodeSet("type_parameter_list"),
			calls:       newNodeSet("call_expression"),

			isFooter: goIsFooter,
			isHeavy:  goIsReflection,
		},
		text: textRules{
			style: braceBlocks,
			header: mustCompileAll(
				`^\s*package\s+\w+`,
				`^\s*import\b`,
			),
			openers: mustCompileAll(
				`^\s*type\s+\w+`,
				`^\s*(?:const|var)\b`,
			),
			functions:   mustCompileAll(`^func\s+(?:\([^)]*\)\s*)?([A-Za-z_]\w*)`),
			footer:      mustCompileAll(`^func\s+main\s*\(`, `^func\s+init\s*\(`),
			control:     re(`\b(?:if|for|switch|select)\b`),
			exception:   re(`\b(?:panic|recover|defer)\b`),
			concurrency: re(`\bgo\s+(?:func\b|[\w.]+\()|\bselect\s*\{|<-|\bsync\.|\.Lock\(\)`),
			generic:     re(`^func\s+(?:\([^)]*\)\s*)?\w+\[`),
			heavy:       re(`\breflect\.`),
		},
	}
}

// goIsFooter matches main and init functions.
func goIsFooter(n *sitter.Node, src []byte) bool {
	if n.Type() != "function_declaration" {
		return false
	}
	name := n.ChildByFieldName("name")
	if name == nil {
		return false
	}
	switch name.Content(src) {
	case "main", "init":
		return true
	}
	return false
}

// goIsReflection matches calls into the reflect package.
func goIsReflection(n *sitter.Node, src []byte) bool {
	if n.Type() != "selector_expression" {
		return false
	}
	operand := n.ChildByFieldName("operand")
	return operand != nil && operand.Content(src) == "reflect"
}
