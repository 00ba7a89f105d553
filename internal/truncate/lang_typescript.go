package truncate

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/tombee/repopacker/internal/syntax"
)

var pipelineMethods = map[string]bool{
	"map": true, "filter": true, "reduce": true, "flatMap": true, "pipe": true,
	"then": true, "forEach": true, "sort": true,
}

// ecmaTreeRules are shared by the TypeScript and JavaScript grammars.
func ecmaTreeRules() treeRules {
	return treeRules{
		imports:      newNodeSet("import_statement", "import_alias"),
		containers:   newNodeSet("internal_module", "module"),
		declarations: newNodeSet("type_alias_declaration", "interface_declaration", "enum_declaration", "ambient_declaration"),
		openers:      newNodeSet("class_declaration", "abstract_class_declaration"),
		functions: newNodeSet(
			"function_declaration", "generator_function_declaration", "method_definition",
			"method_signature", "abstract_method_signature", "function_signature",
		),
		lambdas:     newNodeSet("arrow_function", "function", "function_expression", "generator_function"),
		wrappers:    newNodeSet("export_statement", "variable_declarator", "lexical_declaration", "variable_declaration"),
		decorators:  newNodeSet("decorator"),
		control:     newNodeSet("if_statement", "for_statement", "for_in_statement", "while_statement", "do_statement", "switch_statement", "ternary_expression"),
		exceptions:  newNodeSet("try_statement", "throw_statement"),
		concurrency: newNodeSet("await_expression"),
		generics:    newNodeSet("type_parameters"),
		calls:       newNodeSet("call_expression"),
		bootstrap:   newNodeSet("expression_statement"),
		asyncWords:  []string{"async"},

		isDeclaration: ecmaIsDeclaration,
		isPreamble:    ecmaIsDirective,
		isFooter:      ecmaIsFooter,
		isHeavy:       ecmaIsPipeline,
	}
}

// ecmaIsDeclaration accepts variable declarations that do not bind a
// function or class, optionally behind an export.
func ecmaIsDeclaration(n *sitter.Node, src []byte) bool {
	if n.Type() == "export_statement" {
		decl := n.ChildByFieldName("declaration")
		if decl == nil {
			return false
		}
		n = decl
	}
	if n.Type() != "lexical_declaration" && n.Type() != "variable_declaration" {
		return false
	}
	for _, d := range syntax.NamedChildren(n) {
		if d.Type() != "variable_declarator" {
			continue
		}
		if v := d.ChildByFieldName("value"); v != nil {
			switch v.Type() {
			case "arrow_function", "function", "function_expression", "class", "generator_function":
				return false
			}
		}
	}
	return true
}

// ecmaIsDirective matches "use strict" style directives.
func ecmaIsDirective(n *sitter.Node, src []byte) bool {
	if n.Type() != "expression_statement" || n.NamedChildCount() != 1 {
		return false
	}
	return n.NamedChild(0).Type() == "string"
}

func ecmaIsFooter(n *sitter.Node, src []byte) bool {
	switch n.Type() {
	case "export_statement":
		text := n.Content(src)
		return strings.HasPrefix(text, "export default") || n.ChildByFieldName("declaration") == nil
	case "expression_statement":
		text := strings.TrimSpace(n.Content(src))
		return strings.HasPrefix(text, "module.exports") || strings.HasPrefix(text, "exports.")
	case "if_statement":
		if cond := n.ChildByFieldName("condition"); cond != nil {
			return strings.Contains(cond.Content(src), "require.main")
		}
	}
	return false
}

// ecmaIsPipeline matches a chained collection call such as a.filter(f).map(g).
func ecmaIsPipeline(n *sitter.Node, src []byte) bool {
	if n.Type() != "call_expression" {
		return false
	}
	fn := n.ChildByFieldName("function")
	if fn == nil || fn.Type() != "member_expression" {
		return false
	}
	prop := fn.ChildByFieldName("property")
	obj := fn.ChildByFieldName("object")
	if prop == nil || obj == nil {
		return false
	}
	return pipelineMethods[prop.Content(src)] && obj.Type() == "call_expression"
}

func ecmaTextRules() textRules {
	return textRules{
		style: braceBlocks,
		header: mustCompileAll(
			`^\s*import\b`,
			`^\s*(?:const|let|var)\s+[\w${},\s]+=\s*require\(`,
			`^\s*export\s+(?:\*|\{[^}]*\})\s+from\b`,
			`^\s*['"]use (?:strict|client|server)['"]`,
		),
		openers: mustCompileAll(
			`^\s*(?:export\s+)?(?:default\s+)?(?:declare\s+)?(?:abstract\s+)?(?:class|interface|enum|type|namespace|module)\s+[A-Za-z_$]`,
		),
		functions: mustCompileAll(
			`^\s*(?:export\s+)?(?:default\s+)?(?:declare\s+)?(?:async\s+)?function\s*\*?\s*([A-Za-z_$][\w$]*)`,
			`^\s*(?:export\s+)?(?:const|let|var)\s+([A-Za-z_$][\w$]*)\s*(?::[^=]*)?=\s*(?:async\s+)?(?:function\b|\([^)]*\)\s*(?::\s*[^=]+)?=>|[A-Za-z_$][\w$]*\s*=>)`,
			`^\s*(?:(?:public|private|protected|static|async|readonly|abstract|override|get|set)\s+)*\*?([A-Za-z_$][\w$]*)\s*(?:<[^>]*>)?\s*\([^;]*\)\s*(?::\s*[^;{=]+)?\{\s*$`,
		),
		footer: mustCompileAll(
			`^\s*export\s+default\b`,
			`^\s*export\s*\{`,
			`^\s*export\s*\*`,
			`^\s*module\.exports\b`,
			`^\s*exports\.[\w$]+\s*=`,
			`^if\s*\(\s*require\.main\s*===?\s*module\s*\)`,
		),
		bootstrap:   re(`^(?:await\s+)?[A-Za-z_$][\w$.]*\s*\(.*\)\s*;?\s*$`),
		decorator:   re(`^\s*@[\w.]+`),
		exprBody:    re(`=>\s*[^\s{]`),
		control:     re(cStyleControl),
		exception:   re(cStyleException),
		concurrency: re(`\bawait\b|\bPromise\.(?:all|race|any|allSettled)\b|\bnew\s+Worker\b`),
		asyncMarker: re(`\basync\b`),
		generic:     re(`[\w$]\s*<[^<>()]+>\s*\(`),
		heavy:       re(`\)\s*\.(?:map|filter|reduce|flatMap|pipe)\(`),
	}
}

func newTypeScriptStrategy() *structural {
	return &structural{
		id:       "typescript",
		comments: commentSyntax{single: "//", multiOpen: "/*", multiClose: "*/"},
		tree:     ecmaTreeRules(),
		text:     ecmaTextRules(),
	}
}
