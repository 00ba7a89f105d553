package truncate

import (
	sitter "github.com/smacker/go-tree-sitter"
)

var phpIncludes = map[string]bool{
	"require": true, "require_once": true, "include": true, "include_once": true, "define": true,
}

func newPHPStrategy() *structural {
	return &structural{
		id:       "php",
		comments: commentSyntax{single: "//", multiOpen: "/*", multiClose: "*/", extraSingle: "#"},
		tree: treeRules{
			imports:      newNodeSet("php_tag", "namespace_use_declaration", "declare_statement"),
			containers:   newNodeSet("namespace_definition"),
			declarations: newNodeSet("const_declaration", "property_declaration", "use_declaration"),
			openers: newNodeSet(
				"class_declaration", "interface_declaration", "trait_declaration", "enum_declaration",
			),
			functions:  newNodeSet("function_definition", "method_declaration"),
			lambdas:    newNodeSet("anonymous_function_creation_expression", "anonymous_function", "arrow_function"),
			decorators: newNodeSet("attribute_list"),
			control: newNodeSet(
				"if_statement", "for_statement", "foreach_statement", "while_statement",
				"do_statement", "switch_statement", "match_expression", "conditional_expression",
			),
			exceptions: newNodeSet("try_statement", "throw_expression", "throw_statement"),
			heavy:      newNodeSet("dynamic_variable_name", "shell_command_expression"),
			calls: newNodeSet(
				"function_call_expression", "member_call_expression", "scoped_call_expression",
				"nullsafe_member_call_expression",
			),
			bootstrap: newNodeSet("expression_statement"),

			isDeclaration: phpIsInclude,
			isFooter:      phpIsReturn,
		},
		text: textRules{
			style: braceBlocks,
			header: mustCompileAll(
				`^\s*<\?php`,
				`^\s*namespace\s+[\w\\]+\s*;`,
				`^\s*use\s+[\w\\]+`,
				`^\s*declare\s*\(`,
				`^\s*(?:require|include)(?:_once)?\b`,
			),
			openers: mustCompileAll(
				`^\s*(?:(?:abstract|final|readonly)\s+)*(?:class|interface|trait|enum)\s+\w+`,
				`^\s*(?:const\s+\w+|define\s*\()`,
			),
			functions: mustCompileAll(
				`^\s*(?:(?:public|private|protected|static|abstract|final)\s+)*function\s+&?\s*([A-Za-z_]\w*)`,
			),
			footer:      mustCompileAll(`^return\b`),
			bootstrap:   re(`^\$?[A-Za-z_]\w*(?:(?:->|::)[A-Za-z_]\w*)*\s*\(.*\)\s*;\s*$`),
			decorator:   re(`^\s*#\[.*\]\s*$`),
			control:     re(`\b(?:if|elseif|for|foreach|while|switch|match)\b`),
			exception:   re(cStyleException),
			concurrency: re(`\bFiber\b|\bpcntl_fork\b|\bflock\(`),
			generic:     re(`@template\b`),
			heavy:       re(`\$\$\w+|\bcall_user_func(?:_array)?\(|\beval\(|\bReflection\w+`),
		},
	}
}

// phpIsInclude accepts top-level require, include and define statements.
func phpIsInclude(n *sitter.Node, src []byte) bool {
	if n.Type() != "expression_statement" {
		return false
	}
	return phpIncludes[firstWordOf(n, src)]
}

// phpIsReturn matches a top-level return, as in configuration files.
func phpIsReturn(n *sitter.Node, src []byte) bool {
	if n.Type() != "return_statement" {
		return false
	}
	p := n.Parent()
	return p != nil && p.Type() == "program"
}
