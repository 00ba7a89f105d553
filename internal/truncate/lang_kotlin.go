package truncate

import (
	sitter "github.com/smacker/go-tree-sitter"
)

const kotlinModifiers = `(?:(?:public|private|internal|protected|override|open|abstract|final|suspend|inline|operator|infix|tailrec|external)\s+)*`

func newKotlinStrategy() *structural {
	return &structural{
		id:       "kotlin",
		comments: commentSyntax{single: "//", multiOpen: "/*", multiClose: "*/", charLiterals: true},
		tree: treeRules{
			imports:      newNodeSet("package_header", "import_list", "import_header", "file_annotation"),
			openers:      newNodeSet("class_declaration", "object_declaration", "companion_object"),
			declarations: newNodeSet("property_declaration", "type_alias"),
			functions:    newNodeSet("function_declaration", "secondary_constructor", "getter", "setter"),
			lambdas:      newNodeSet("lambda_literal", "anonymous_function"),
			decorators:   newNodeSet("annotation"),
			control: newNodeSet(
				"if_expression", "when_expression", "for_statement", "while_statement", "do_while_statement",
			),
			exceptions: newNodeSet("try_expression", "catch_block"),
			generics:   newNodeSet("type_parameters", "type_constraints"),
			calls:      newNodeSet("call_expression"),
			bootstrap:  newNodeSet("call_expression"),
			asyncWords: []string{"suspend"},

			isFooter: kotlinIsFooter,
			isHeavy:  kotlinIsCoroutineBuilder,
		},
		text: textRules{
			style: braceBlocks,
			header: mustCompileAll(
				`^\s*(?:package|import)\s+[\w.*]+`,
				`^\s*@file:`,
			),
			openers: mustCompileAll(
				`^\s*(?:(?:public|private|internal|protected|abstract|open|sealed|data|enum|annotation|inner|value|final)\s+)*(?:class|interface|object)\s+\w+`,
				`^\s*(?:(?:private|internal|public|const)\s+)*(?:val|var)\s+\w+`,
				`^\s*typealias\s+\w+`,
			),
			functions: mustCompileAll(
				`^\s*` + kotlinModifiers + `fun\s+(?:<[^>]*>\s*)?(?:[\w.<>?]+\.)?([A-Za-z_]\w*)`,
			),
			footer: mustCompileAll(
				`^(?:suspend\s+)?fun\s+main\s*\(`,
				`^\s*init\s*\{`,
			),
			decorator:   re(annotationLine),
			exprBody:    re(`\)\s*(?::\s*[^={]+)?=[^=]`),
			control:     re(`\b(?:if|when|for|while)\b`),
			exception:   re(cStyleException),
			concurrency: re(`\blaunch\s*\{|\basync\s*\{|\bwithContext\(|\brunBlocking\b|\bMutex\b|\bsynchronized\(`),
			asyncMarker: re(`\bsuspend\b`),
			generic:     re(`\bfun\s*<`),
			heavy:       re(`\}\s*\.(?:map|filter|flatMap|fold|reduce|groupBy|associate)\s*[({]`),
		},
	}
}

// kotlinIsFooter matches fun main and init blocks.
func kotlinIsFooter(n *sitter.Node, src []byte) bool {
	switch n.Type() {
	case "anonymous_initializer":
		return true
	case "function_declaration":
		return nodeName(n, src) == "main"
	}
	return false
}

// kotlinIsCoroutineBuilder matches launch, async and runBlocking calls.
func kotlinIsCoroutineBuilder(n *sitter.Node, src []byte) bool {
	if n.Type() != "call_expression" || n.NamedChildCount() == 0 {
		return false
	}
	switch calleeSegment(n.NamedChild(0), src) {
	case "launch", "async", "runBlocking", "withContext":
		return true
	}
	return false
}
