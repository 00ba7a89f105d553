package truncate

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

func newPythonStrategy() *structural {
	return &structural{
		id:       "python",
		comments: commentSyntax{single: "#", multiOpen: `"""`, multiClose: `"""`},
		tree: treeRules{
			imports:     newNodeSet("import_statement", "import_from_statement", "future_import_statement"),
			openers:     newNodeSet("class_definition"),
			functions:   newNodeSet("function_definition"),
			lambdas:     newNodeSet("lambda"),
			wrappers:    newNodeSet("decorated_definition"),
			decorators:  newNodeSet("decorator"),
			control:     newNodeSet("if_statement", "for_statement", "while_statement", "match_statement", "conditional_expression"),
			exceptions:  newNodeSet("try_statement", "raise_statement"),
			concurrency: newNodeSet("await"),
			generics:    newNodeSet("type_parameter"),
			heavy:       newNodeSet("list_comprehension", "dictionary_comprehension", "set_comprehension", "generator_expression"),
			calls:       newNodeSet("call"),
			bootstrap:   newNodeSet("expression_statement"),
			asyncWords:  []string{"async"},

			isDeclaration: pythonIsDeclaration,
			isPreamble:    pythonIsDocstring,
			isFooter:      pythonIsMainGuard,
		},
		text: textRules{
			style: indentBlocks,
			header: mustCompileAll(
				`^(?:import|from)\s+[\w.]+`,
				`^#!`,
				`^#.*coding[:=]`,
			),
			openers:     mustCompileAll(`^class\s+\w+`, `^[A-Z_][A-Z0-9_]*\s*(?::[^=]+)?=`),
			functions:   mustCompileAll(`^\s*(?:async\s+)?def\s+([A-Za-z_]\w*)`),
			footer:      mustCompileAll(`^if\s+__name__\s*==\s*['"]__main__['"]\s*:`, `^\s*unittest\.main\(`),
			bootstrap:   re(`^[A-Za-z_][\w.]*\(.*\)\s*$`),
			decorator:   re(`^\s*@[\w.]+`),
			control:     re(`\b(?:if|elif|for|while|match)\b`),
			exception:   re(`\b(?:try|except|raise|finally)\b`),
			concurrency: re(`\bawait\b|\basync\s+(?:with|for)\b|\bthreading\.|\bmultiprocessing\.|\bLock\(\)`),
			asyncMarker: re(`\basync\s+def\b`),
			generic:     re(`def\s+\w+\[`),
			heavy:       re(`\[[^\]]*\bfor\b[^\]]*\bin\b|\bsetattr\(|\bgetattr\(|\bmetaclass\b`),
		},
	}
}

// pythonIsDeclaration accepts module-level assignments and type aliases.
func pythonIsDeclaration(n *sitter.Node, src []byte) bool {
	switch n.Type() {
	case "type_alias_statement":
		return true
	case "expression_statement":
		if n.NamedChildCount() == 0 {
			return false
		}
		first := n.NamedChild(0).Type()
		return first == "assignment" || first == "augmented_assignment"
	}
	return false
}

func pythonIsDocstring(n *sitter.Node, src []byte) bool {
	return n.Type() == "expression_statement" && n.NamedChildCount() == 1 && n.NamedChild(0).Type() == "string"
}

func pythonIsMainGuard(n *sitter.Node, src []byte) bool {
	if n.Type() != "if_statement" {
		return false
	}
	cond := n.ChildByFieldName("condition")
	return cond != nil && strings.Contains(cond.Content(src), "__name__")
}
