package truncate

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

const rustVisibility = `(?:pub(?:\([^)]*\))?\s+)?`

func newRustStrategy() *structural {
	return &structural{
		id:       "rust",
		comments: commentSyntax{single: "//", multiOpen: "/*", multiClose: "*/", charLiterals: true},
		tree: treeRules{
			imports: newNodeSet("use_declaration", "extern_crate_declaration", "inner_attribute_item"),
			declarations: newNodeSet(
				"struct_item", "enum_item", "union_item", "type_item", "const_item",
				"static_item", "macro_definition",
			),
			openers:     newNodeSet("trait_item", "impl_item"),
			functions:   newNodeSet("function_item", "function_signature_item"),
			lambdas:     newNodeSet("closure_expression"),
			decorators:  newNodeSet("attribute_item"),
			control:     newNodeSet("if_expression", "match_expression", "for_expression", "while_expression", "loop_expression"),
			exceptions:  newNodeSet("try_expression"),
			concurrency: newNodeSet("await_expression", "async_block"),
			generics:    newNodeSet("type_parameters", "where_clause"),
			heavy:       newNodeSet("macro_invocation", "unsafe_block"),
			calls:       newNodeSet("call_expression"),
			asyncWords:  []string{"async"},

			isDeclaration: rustIsModDeclaration,
			isFooter:      rustIsFooter,
		},
		text: textRules{
			style: braceBlocks,
			header: mustCompileAll(
				`^\s*` + rustVisibility + `use\s+`,
				`^\s*extern\s+crate\b`,
				`^\s*#!\[`,
				`^\s*` + rustVisibility + `mod\s+\w+\s*;`,
			),
			openers: mustCompileAll(
				`^\s*` + rustVisibility + `(?:unsafe\s+)?(?:struct|enum|union|trait|impl|type|const|static)\b`,
			),
			functions: mustCompileAll(
				`^\s*` + rustVisibility + `(?:(?:const|async|unsafe|extern(?:\s+"[^"]*")?)\s+)*fn\s+([A-Za-z_]\w*)`,
			),
			footer: mustCompileAll(
				`^(?:async\s+)?fn\s+main\s*\(`,
				`^#\[cfg\(test\)\]`,
			),
			decorator:   re(`^\s*#\[.*\]\s*$`),
			control:     re(`\b(?:if|match|for|while|loop)\b`),
			exception:   re(`\?\s*[;)]|\bpanic!|\.unwrap\(\)|\.expect\(|\bErr\(`),
			concurrency: re(`\.await\b|\basync\s+(?:move\s*)?\{|\bthread::spawn\b|\btokio::spawn\b|\bMutex\b|\bArc<`),
			asyncMarker: re(`\basync\s+fn\b`),
			generic:     re(`\bfn\s+\w+\s*<`),
			heavy:       re(`\b\w+!\s*[(\[{]|\bunsafe\s*\{`),
		},
	}
}

// rustIsModDeclaration accepts a module declared without a body.
func rustIsModDeclaration(n *sitter.Node, src []byte) bool {
	return n.Type() == "mod_item" && n.ChildByFieldName("body") == nil
}

// rustIsFooter matches fn main and #[cfg(test)] modules.
func rustIsFooter(n *sitter.Node, src []byte) bool {
	switch n.Type() {
	case "function_item":
		return nodeName(n, src) == "main"
	case "mod_item":
		for sib := n.PrevNamedSibling(); sib != nil && sib.Type() == "attribute_item"; sib = sib.PrevNamedSibling() {
			if strings.Contains(sib.Content(src), "cfg(test)") {
				return true
			}
		}
	}
	return false
}
