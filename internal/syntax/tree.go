// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package syntax

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// maxErrorShare is the fraction of top-level lines that may be covered by
// error nodes before a tree is considered unusable.
const maxErrorShare = 0.5

// Tree is a parsed source file. A nil *Tree is valid and reports itself as
// unusable, which is how strategies receive "no parse" results.
type Tree struct {
	tree   *sitter.Tree
	root   *sitter.Node
	source []byte
}

func newTree(t *sitter.Tree, src []byte) *Tree {
	return &Tree{tree: t, root: t.RootNode(), source: src}
}

// Root returns the root node, or nil for a nil tree.
func (t *Tree) Root() *sitter.Node {
	if t == nil {
		return nil
	}
	return t.root
}

// Source returns the bytes the tree was parsed from.
func (t *Tree) Source() []byte {
	if t == nil {
		return nil
	}
	return t.source
}

// HasErrors reports whether the tree contains error or missing nodes.
func (t *Tree) HasErrors() bool {
	if t == nil || t.root == nil {
		return false
	}
	return t.root.HasError()
}

// Usable reports whether structural analysis should trust the tree. A tree
// is unusable when it is nil, has an ERROR root, has no named top-level
// nodes, or when error nodes cover more than half of the top-level lines.
func (t *Tree) Usable() bool {
	if t == nil || t.root == nil {
		return false
	}
	if t.root.Type() == "ERROR" || t.root.IsMissing() {
		return false
	}
	count := int(t.root.NamedChildCount())
	if count == 0 {
		return false
	}
	if !t.root.HasError() {
		return true
	}

	total, broken := 0, 0
	for i := 0; i < count; i++ {
		child := t.root.NamedChild(i)
		if child == nil {
			continue
		}
		span := int(child.EndPoint().Row-child.StartPoint().Row) + 1
		total += span
		if child.Type() == "ERROR" || child.IsMissing() {
			broken += span
		}
	}
	if total == 0 {
		return false
	}
	return float64(broken)/float64(total) <= maxErrorShare
}

// Close frees the underlying tree. Safe on a nil tree.
func (t *Tree) Close() {
	if t == nil || t.tree == nil {
		return
	}
	t.tree.Close()
	t.tree = nil
	t.root = nil
}

// StartLine returns the 0-based first line of n.
func StartLine(n *sitter.Node) int {
	return int(n.StartPoint().Row)
}

// EndLine returns the 0-based last line of n. A node ending at column 0 of
// a line does not occupy that line.
func EndLine(n *sitter.Node) int {
	end := n.EndPoint()
	if end.Column == 0 && end.Row > n.StartPoint().Row {
		return int(end.Row) - 1
	}
	return int(end.Row)
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the children of the visited node.
func Walk(n *sitter.Node, fn func(*sitter.Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		Walk(n.Child(i), fn)
	}
}

// NamedChildren returns the named children of n.
func NamedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	count := int(n.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		if c := n.NamedChild(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}
