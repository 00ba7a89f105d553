package truncate

func newCppStrategy() *structural {
	return &structural{
		id:       "cpp",
		comments: commentSyntax{single: "//", multiOpen: "/*", multiClose: "*/", charLiterals: true},
		tree: treeRules{
			imports:    newNodeSet("preproc_include", "using_declaration", "namespace_alias_definition"),
			containers: newNodeSet("preproc_ifdef", "preproc_if", "namespace_definition", "linkage_specification"),
			declarations: newNodeSet(append([]string{
				"alias_declaration", "field_declaration", "access_specifier", "static_assert_declaration",
			}, cDeclarationNodes...)...),
			openers:     newNodeSet("class_specifier"),
			functions:   newNodeSet("function_definition"),
			lambdas:     newNodeSet("lambda_expression"),
			wrappers:    newNodeSet("template_declaration"),
			decorators:  newNodeSet("attribute_declaration"),
			control:     newNodeSet(append([]string{"for_range_loop"}, cControlNodes...)...),
			exceptions:  newNodeSet("try_statement", "throw_statement"),
			concurrency: newNodeSet("co_await_expression", "co_yield_statement", "co_return_statement"),
			generics:    newNodeSet("template_parameter_list", "requires_clause"),
			heavy:       newNodeSet("lambda_expression"),
			calls:       newNodeSet("call_expression"),

			isFooter: cIsMain,
			isHeavy:  cIsPreprocInBody,
		},
		text: textRules{
			style: braceBlocks,
			header: mustCompileAll(
				cHeader,
				`^\s*using\s+namespace\b`,
				`^\s*using\s+[\w:]+\s*;`,
				`^\s*import\s+[\w.<"]`,
			),
			openers: mustCompileAll(
				`^\s*(?:template\s*<[^>]*>\s*)?(?:typedef\s+)?(?:struct|class|union|enum(?:\s+class)?)\b[^;(]*$`,
				`^\s*using\s+\w+\s*=`,
			),
			containers:  mustCompileAll(`^\s*namespace\s+[\w:]+\s*\{?\s*$`),
			functions:   mustCompileAll(cStyleFunction),
			footer:      mustCompileAll(cMainLine),
			decorator:   re(`^\s*template\s*<.*>\s*$`),
			control:     re(cStyleControl),
			exception:   re(cStyleException),
			concurrency: re(`\bstd::(?:thread|jthread|mutex|async|lock_guard|unique_lock|scoped_lock|atomic)\b|\bco_await\b`),
			generic:     re(`\brequires\b`),
			heavy:       re(`\[[^\]]*\]\s*\([^)]*\)\s*(?:->\s*[\w:<>]+\s*)?\{|\bstd::ranges::|\|\s*std::views::`),
		},
	}
}
