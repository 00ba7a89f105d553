package truncate

import (
	sitter "github.com/smacker/go-tree-sitter"
)

func newCSharpStrategy() *structural {
	return &structural{
		id:       "csharp",
		comments: commentSyntax{single: "//", multiOpen: "/*", multiClose: "*/", charLiterals: true},
		tree: treeRules{
			imports:    newNodeSet("using_directive", "extern_alias_directive", "global_attribute_list", "global_attribute"),
			containers: newNodeSet("namespace_declaration", "file_scoped_namespace_declaration"),
			openers: newNodeSet(
				"class_declaration", "interface_declaration", "struct_declaration",
				"record_declaration", "record_struct_declaration",
			),
			declarations: newNodeSet(
				"enum_declaration", "delegate_declaration", "field_declaration",
				"property_declaration", "event_field_declaration",
			),
			functions: newNodeSet(
				"method_declaration", "constructor_declaration", "destructor_declaration",
				"operator_declaration", "conversion_operator_declaration", "local_function_statement",
			),
			lambdas:    newNodeSet("lambda_expression", "anonymous_method_expression"),
			decorators: newNodeSet("attribute_list"),
			control: newNodeSet(
				"if_statement", "for_statement", "for_each_statement", "foreach_statement",
				"while_statement", "do_statement", "switch_statement", "switch_expression",
				"conditional_expression",
			),
			exceptions:  newNodeSet("try_statement", "throw_statement", "throw_expression"),
			concurrency: newNodeSet("await_expression", "lock_statement"),
			generics:    newNodeSet("type_parameter_list", "type_parameter_constraints_clause"),
			heavy:       newNodeSet("query_expression"),
			calls:       newNodeSet("invocation_expression"),
			bootstrap:   newNodeSet("global_statement"),
			asyncWords:  []string{"async"},

			isFooter: csharpIsMain,
		},
		text: textRules{
			style: braceBlocks,
			header: mustCompileAll(
				`^\s*(?:global\s+)?using\s+[\w.=\s]+;`,
				`^\s*namespace\s+[\w.]+\s*;`,
				`^\s*\[assembly:`,
				`^\s*#(?:nullable|define|region)\b`,
			),
			containers: mustCompileAll(`^\s*namespace\s+[\w.]+\s*\{?\s*$`),
			openers: mustCompileAll(
				`^\s*(?:(?:public|private|protected|internal|static|abstract|sealed|partial|readonly|ref|unsafe|file)\s+)*(?:class|interface|struct|record|enum)\s+\w+`,
			),
			functions: mustCompileAll(cStyleFunction),
			footer: mustCompileAll(
				`^\s*(?:(?:public|private|internal|static|async)\s+)*(?:void|int|Task(?:<int>)?)\s+Main\s*\(`,
			),
			bootstrap:   re(`^(?:await\s+)?[A-Za-z_][\w.]*(?:<[^>]*>)?\s*\(.*\)\s*;\s*$`),
			decorator:   re(`^\s*\[[^\]]*\]\s*$`),
			exprBody:    re(`\)\s*=>`),
			control:     re(`\b(?:if|for|foreach|while|switch)\b`),
			exception:   re(cStyleException),
			concurrency: re(`\bawait\b|\block\s*\(|\bTask\.(?:Run|WhenAll|WhenAny)\b|\bParallel\.`),
			asyncMarker: re(`\basync\b`),
			generic:     re(`\w` + genericSignature + `\s*\(|\bwhere\s+\w+\s*:`),
			heavy:       re(`\bfrom\s+\w+\s+in\b|\.(?:Select|Where|OrderBy|GroupBy|Aggregate|SelectMany)\(`),
		},
	}
}

// csharpIsMain matches the Main entry point.
func csharpIsMain(n *sitter.Node, src []byte) bool {
	if n.Type() != "method_declaration" {
		return false
	}
	name := n.ChildByFieldName("name")
	return name != nil && name.Content(src) == "Main"
}
