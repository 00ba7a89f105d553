package truncate

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// rubyDeclarations are calls that behave like leading declarations.
var rubyDeclarations = map[string]bool{
	"require": true, "require_relative": true, "load": true, "autoload": true,
	"include": true, "extend": true, "prepend": true,
	"attr_reader": true, "attr_writer": true, "attr_accessor": true,
}

var rubyMetaprogramming = map[string]bool{
	"define_method": true, "method_missing": true, "send": true, "public_send": true,
	"instance_variable_get": true, "instance_variable_set": true,
	"class_eval": true, "instance_eval": true, "module_eval": true,
}

func newRubyStrategy() *structural {
	return &structural{
		id:       "ruby",
		comments: commentSyntax{single: "#", multiOpen: "=begin", multiClose: "=end"},
		tree: treeRules{
			containers: newNodeSet("module"),
			openers:    newNodeSet("class", "singleton_class"),
			functions:  newNodeSet("method", "singleton_method"),
			lambdas:    newNodeSet("lambda", "do_block"),
			control: newNodeSet(
				"if", "unless", "while", "until", "for", "case", "case_match", "conditional",
				"if_modifier", "unless_modifier", "while_modifier", "until_modifier",
			),
			exceptions: newNodeSet("rescue", "ensure", "rescue_modifier"),
			calls:      newNodeSet("call", "method_call"),
			bootstrap:  newNodeSet("call", "method_call"),

			isDeclaration: rubyIsDeclaration,
			isFooter:      rubyIsMainGuard,
			isHeavy:       rubyIsMetaprogramming,
		},
		text: textRules{
			style: endBlocks,
			header: mustCompileAll(
				`^\s*(?:require|require_relative|load)\b`,
				`^#!`,
				`^#\s*(?:frozen_string_literal|encoding):`,
			),
			openers: mustCompileAll(
				`^\s*(?:class|module)\s+[A-Z]`,
				`^\s*[A-Z][A-Z0-9_]*\s*=`,
			),
			functions:   mustCompileAll(`^\s*def\s+(?:self\.)?([A-Za-z_]\w*[?!=]?)`),
			footer:      mustCompileAll(`^if\s+(?:__FILE__\s*==\s*\$(?:0|PROGRAM_NAME)|\$(?:0|PROGRAM_NAME)\s*==\s*__FILE__)`),
			bootstrap:   re(`^(?:[A-Z]\w*(?:::\w+)*\.\w+|main)\b`),
			control:     re(`\b(?:if|unless|while|until|for|case)\b`),
			exception:   re(`\b(?:begin|rescue|ensure|raise)\b`),
			concurrency: re(`\bThread\.new\b|\bMutex\b|\bQueue\.new\b|\bFiber\b|\bRactor\b`),
			heavy:       re(`\b(?:define_method|method_missing|instance_variable_[gs]et|class_eval|instance_eval|public_send|send)\b`),
		},
	}
}

// rubyIsDeclaration accepts requires, mixins, attribute macros and
// constant assignments.
func rubyIsDeclaration(n *sitter.Node, src []byte) bool {
	switch n.Type() {
	case "call", "method_call", "identifier":
		return rubyDeclarations[firstWordOf(n, src)]
	case "assignment":
		left := n.ChildByFieldName("left")
		return left != nil && (left.Type() == "constant" || left.Type() == "scope_resolution")
	}
	return false
}

func rubyIsMainGuard(n *sitter.Node, src []byte) bool {
	if n.Type() != "if" {
		return false
	}
	cond := n.ChildByFieldName("condition")
	return cond != nil && strings.Contains(cond.Content(src), "__FILE__")
}

func rubyIsMetaprogramming(n *sitter.Node, src []byte) bool {
	if n.Type() != "call" && n.Type() != "method_call" {
		return false
	}
	m := n.ChildByFieldName("method")
	return m != nil && rubyMetaprogramming[m.Content(src)]
}
