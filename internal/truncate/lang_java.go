package truncate

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

var streamMethods = map[string]bool{
	"stream": true, "map": true, "filter": true, "collect": true, "flatMap": true,
	"reduce": true, "forEach": true, "sorted": true, "mapToObj": true, "groupingBy": true,
}

func newJavaStrategy() *structural {
	return &structural{
		id:       "java",
		comments: commentSyntax{single: "//", multiOpen: "/*", multiClose: "*/", charLiterals: true},
		tree: treeRules{
			imports:      newNodeSet("package_declaration", "import_declaration", "module_declaration"),
			openers:      newNodeSet("class_declaration", "interface_declaration", "enum_declaration", "record_declaration", "annotation_type_declaration"),
			declarations: newNodeSet("field_declaration", "constant_declaration"),
			functions:    newNodeSet("method_declaration", "constructor_declaration", "compact_constructor_declaration"),
			lambdas:      newNodeSet("lambda_expression"),
			decorators:   newNodeSet("marker_annotation", "annotation"),
			control: newNodeSet(
				"if_statement", "for_statement", "enhanced_for_statement", "while_statement",
				"do_statement", "switch_statement", "switch_expression", "ternary_expression",
			),
			exceptions:  newNodeSet("try_statement", "try_with_resources_statement", "throw_statement"),
			concurrency: newNodeSet("synchronized_statement"),
			generics:    newNodeSet("type_parameters"),
			calls:       newNodeSet("method_invocation"),
			asyncWords:  []string{"synchronized"},

			isFooter: javaIsFooter,
			isHeavy:  javaIsStream,
		},
		text: textRules{
			style: braceBlocks,
			header: mustCompileAll(
				`^\s*(?:package|import)\s+[\w.]+`,
			),
			openers: mustCompileAll(
				`^\s*(?:(?:public|private|protected|abstract|final|static|sealed|non-sealed|strictfp)\s+)*(?:class|interface|enum|record|@interface)\s+\w+`,
			),
			functions: mustCompileAll(cStyleFunction),
			footer: mustCompileAll(
				`^\s*public\s+static\s+void\s+main\s*\(`,
				`^\s*static\s*\{`,
			),
			decorator:   re(annotationLine),
			control:     re(cStyleControl),
			exception:   re(cStyleException),
			concurrency: re(`\bsynchronized\b|\bExecutorService\b|\bCompletableFuture\b|\bnew\s+Thread\b|\.lock\(\)`),
			asyncMarker: re(`\bsynchronized\b`),
			generic:     re(genericSignature + `\s+[\w<>\[\]]+\s+\w+\s*\(`),
			heavy:       re(`\.stream\(\)|\.collect\(`),
		},
	}
}

func javaIsFooter(n *sitter.Node, src []byte) bool {
	switch n.Type() {
	case "static_initializer":
		return true
	case "method_declaration":
		name := n.ChildByFieldName("name")
		if name == nil || name.Content(src) != "main" {
			return false
		}
		sig := n.Content(src)
		if body := n.ChildByFieldName("body"); body != nil {
			sig = string(src[n.StartByte():body.StartByte()])
		}
		return strings.Contains(sig, "static")
	}
	return false
}

// javaIsStream matches a stream pipeline stage called on another call.
func javaIsStream(n *sitter.Node, src []byte) bool {
	if n.Type() != "method_invocation" {
		return false
	}
	name := n.ChildByFieldName("name")
	obj := n.ChildByFieldName("object")
	if name == nil || obj == nil {
		return false
	}
	return streamMethods[name.Content(src)] && obj.Type() == "method_invocation"
}
