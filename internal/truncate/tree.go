package truncate

import (
	"bytes"
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/tombee/repopacker/internal/syntax"
)

const (
	// maxDeclarationLines is the size up to which a leading declaration is
	// kept whole in the header. Larger ones keep only their opening lines.
	maxDeclarationLines = 8

	anonymousName = "<anonymous>"

	// maxCalleeBytes bounds the callee text compared against function names.
	maxCalleeBytes = 256
)

// constructorNames names declarations that carry no identifier of their own.
var constructorNames = map[string]string{
	"init_declaration":      "init",
	"deinit_declaration":    "deinit",
	"secondary_constructor": "constructor",
	"anonymous_initializer": "init",
	"static_initializer":    "static",
}

var identifierTypes = newNodeSet(
	"identifier", "simple_identifier", "field_identifier", "property_identifier",
	"type_identifier", "name", "constant", "qualified_identifier", "destructor_name",
	"operator_name",
)

func isComment(nodeType string) bool {
	return nodeType == "comment" || strings.HasSuffix(nodeType, "_comment")
}

// unwrap returns the definition carried by a wrapper node, such as a Python
// decorated_definition or a TypeScript export_statement.
func (s *structural) unwrap(n *sitter.Node) *sitter.Node {
	for s.tree.wrappers[n.Type()] {
		inner := n.ChildByFieldName("definition")
		if inner == nil {
			inner = n.ChildByFieldName("declaration")
		}
		if inner == nil {
			return n
		}
		n = inner
	}
	return n
}

// bodyOf returns the node holding a declaration's members, or nil.
func bodyOf(n *sitter.Node) *sitter.Node {
	if body := n.ChildByFieldName("body"); body != nil {
		return body
	}
	for _, c := range syntax.NamedChildren(n) {
		t := c.Type()
		if strings.HasSuffix(t, "_body") || strings.HasSuffix(t, "declaration_list") ||
			t == "block" || t == "compound_statement" {
			return c
		}
	}
	return nil
}

// members returns the child declarations of a class-like or namespace node.
// Without a body node, children starting below the first line are used.
func members(n *sitter.Node) []*sitter.Node {
	if body := bodyOf(n); body != nil {
		return syntax.NamedChildren(body)
	}
	first := syntax.StartLine(n)
	var out []*sitter.Node
	for _, c := range syntax.NamedChildren(n) {
		if syntax.StartLine(c) > first {
			out = append(out, c)
		}
	}
	return out
}

// openerEnd returns the last line of a declaration's opening, up to the line
// where its body starts.
func openerEnd(n *sitter.Node, src []byte) int {
	start := syntax.StartLine(n)
	body := bodyOf(n)
	if body == nil {
		return start
	}
	bodyStart := syntax.StartLine(body)
	if int(body.StartByte()) < len(src) && src[body.StartByte()] != '{' && bodyStart > start {
		return bodyStart - 1
	}
	return bodyStart
}

func (s *structural) isDeclaration(n, inner *sitter.Node, src []byte) bool {
	if s.tree.declarations[inner.Type()] {
		return true
	}
	return s.tree.isDeclaration != nil && s.tree.isDeclaration(n, src)
}

func (s *structural) isPreamble(n *sitter.Node, src []byte) bool {
	return s.tree.isPreamble != nil && s.tree.isPreamble(n, src)
}

func (s *structural) treeHeader(tree *syntax.Tree, n int) []int {
	out := newLineSet(n)
	s.scanHeader(syntax.NamedChildren(tree.Root()), tree.Source(), out)
	return out.sorted()
}

// scanHeader adds header nodes from a sibling list and reports whether it
// reached a node that ends the header.
func (s *structural) scanHeader(nodes []*sitter.Node, src []byte, out *lineSet) bool {
	var pending []*sitter.Node
	flush := func() {
		for _, d := range pending {
			out.addRange(syntax.StartLine(d), syntax.EndLine(d))
		}
		pending = nil
	}

	for _, n := range nodes {
		inner := s.unwrap(n)
		t := inner.Type()
		switch {
		case isComment(n.Type()) || s.isPreamble(n, src):
			continue
		case s.tree.decorators[n.Type()]:
			pending = append(pending, n)
		case s.tree.imports[t]:
			flush()
			out.addRange(syntax.StartLine(n), syntax.EndLine(n))
		case s.tree.containers[t]:
			flush()
			out.addRange(syntax.StartLine(n), openerEnd(inner, src))
			if s.scanHeader(members(inner), src, out) {
				return true
			}
		case s.tree.openers[t]:
			flush()
			out.addRange(syntax.StartLine(n), openerEnd(inner, src))
			s.scanMembers(members(inner), src, out)
			return true
		case s.isDeclaration(n, inner, src):
			flush()
			s.addDeclaration(n, inner, src, out)
		default:
			return true
		}
	}
	return false
}

// scanMembers adds the leading field-like declarations of a class body.
func (s *structural) scanMembers(nodes []*sitter.Node, src []byte, out *lineSet) {
	var pending []*sitter.Node
	for _, n := range nodes {
		inner := s.unwrap(n)
		switch {
		case isComment(n.Type()) || s.isPreamble(n, src):
			continue
		case s.tree.decorators[n.Type()]:
			pending = append(pending, n)
		case s.isDeclaration(n, inner, src) && !s.tree.functions[inner.Type()]:
			for _, d := range pending {
				out.addRange(syntax.StartLine(d), syntax.EndLine(d))
			}
			pending = nil
			s.addDeclaration(n, inner, src, out)
		default:
			return
		}
	}
}

func (s *structural) addDeclaration(n, inner *sitter.Node, src []byte, out *lineSet) {
	start, end := syntax.StartLine(n), syntax.EndLine(n)
	if end-start+1 > maxDeclarationLines {
		end = openerEnd(inner, src)
		if end < start {
			end = start
		}
	}
	out.addRange(start, end)
}

func (s *structural) isFunctionNode(n *sitter.Node) bool {
	t := n.Type()
	if s.tree.functions[t] {
		return true
	}
	return s.tree.lambdas[t] && syntax.EndLine(n) > syntax.StartLine(n)
}

// spanKey identifies a node within one tree.
type spanKey struct {
	start, end uint32
	typ        string
}

func keyOf(n *sitter.Node) spanKey {
	return spanKey{start: n.StartByte(), end: n.EndByte(), typ: n.Type()}
}

// fnFrame accumulates the features of one function during a tree walk.
type fnFrame struct {
	analysis  FunctionAnalysis
	f         features
	name      string // matched against callees, "" when anonymous
	sigEnd    uint32
	baseDepth int
	maxDepth  int
}

// pathEntry is a node on the walk path with the named siblings before it.
type pathEntry struct {
	node     *sitter.Node
	siblings []*sitter.Node
}

// walkPaths visits every node below root depth-first with its ancestors.
func walkPaths(root *sitter.Node, fn func(path []pathEntry)) {
	c := sitter.NewTreeCursor(root)
	defer c.Close()

	path := []pathEntry{{node: root}}
	var visit func()
	visit = func() {
		fn(path)
		if !c.GoToFirstChild() {
			return
		}
		var named []*sitter.Node
		for {
			child := c.CurrentNode()
			path = append(path, pathEntry{node: child, siblings: named})
			visit()
			path = path[:len(path)-1]
			if child.IsNamed() {
				named = append(named, child)
			}
			if !c.GoToNextSibling() {
				break
			}
		}
		c.GoToParent()
	}
	visit()
}

func (s *structural) treeFunctions(tree *syntax.Tree, n int) []FunctionAnalysis {
	src := tree.Source()
	var frames []*fnFrame
	bySpan := make(map[spanKey][]*fnFrame)

	walkPaths(tree.Root(), func(path []pathEntry) {
		node := path[len(path)-1].node
		if !s.isFunctionNode(node) {
			return
		}
		// Climb through wrappers that carry decorators or a binding.
		i := len(path) - 1
		for i > 0 && s.tree.wrappers[path[i-1].node.Type()] {
			i--
		}
		span := path[i].node
		start, end := syntax.StartLine(span), syntax.EndLine(span)
		decorators := 0
		for j := len(path[i].siblings) - 1; j >= 0 && s.tree.decorators[path[i].siblings[j].Type()]; j-- {
			start = syntax.StartLine(path[i].siblings[j])
			decorators++
		}
		if end >= n {
			end = n - 1
		}
		if start > end {
			return
		}

		var name string
		if s.tree.functions[node.Type()] {
			name = nodeName(node, src)
		} else {
			var parent *sitter.Node
			if len(path) > 1 {
				parent = path[len(path)-2].node
			}
			name = boundName(node, parent, src)
		}
		fr := s.newFrame(span, node, src, name, decorators)
		fr.f.lines = end - start + 1
		fr.analysis = FunctionAnalysis{Name: name, StartLine: start, EndLine: end, LineCount: end - start + 1}
		frames = append(frames, fr)
		bySpan[keyOf(span)] = append(bySpan[keyOf(span)], fr)
	})

	s.collectFeatures(tree.Root(), src, bySpan)

	out := make([]FunctionAnalysis, 0, len(frames))
	for _, fr := range frames {
		fr.analysis.Complexity = score(fr.f)
		out = append(out, fr.analysis)
	}
	sortFunctions(out)
	return out
}

func (s *structural) newFrame(span, fn *sitter.Node, src []byte, name string, decorators int) *fnFrame {
	fr := &fnFrame{
		f: features{
			lines:      syntax.EndLine(span) - syntax.StartLine(span) + 1,
			decorators: decorators,
		},
		sigEnd: signatureEnd(span, fn, src),
	}
	if name != anonymousName {
		fr.name = name
	}
	if fr.sigEnd > span.StartByte() && int(fr.sigEnd) <= len(src) {
		fr.f.async = containsWord(string(src[span.StartByte():fr.sigEnd]), s.tree.asyncWords)
	}
	return fr
}

// signatureEnd returns the byte offset where a function's signature ends:
// the start of its body, or the end of its first line when it has none.
func signatureEnd(span, fn *sitter.Node, src []byte) uint32 {
	if body := bodyOf(fn); body != nil {
		return body.StartByte()
	}
	start, end := span.StartByte(), span.EndByte()
	if int(end) > len(src) || start > end {
		return end
	}
	if i := bytes.IndexByte(src[start:end], '\n'); i >= 0 {
		return start + uint32(i)
	}
	return end
}

// collectFeatures fills the frames keyed in bySpan in one pass over the
// tree. Counts found inside a nested function are added to every function
// enclosing it when the nested one is left.
func (s *structural) collectFeatures(root *sitter.Node, src []byte, bySpan map[spanKey][]*fnFrame) {
	r := &s.tree
	var stack []*fnFrame
	active := make(map[string][]*fnFrame)

	c := sitter.NewTreeCursor(root)
	defer c.Close()

	var visit func(depth int)
	visit = func(depth int) {
		node := c.CurrentNode()
		entered := bySpan[keyOf(node)]
		for _, fr := range entered {
			fr.baseDepth, fr.maxDepth = depth, depth
			stack = append(stack, fr)
			if fr.name != "" {
				active[fr.name] = append(active[fr.name], fr)
			}
		}

		descend := true
		if len(stack) > 0 {
			top := stack[len(stack)-1]
			t := node.Type()
			inSignature := node.StartByte() < top.sigEnd
			switch {
			case r.decorators[t] && inSignature:
				top.f.decorators++
				descend = false
			case r.generics[t] && inSignature:
				top.f.generic = true
			case r.control[t]:
				top.f.control++
				depth++
				if depth > top.maxDepth {
					top.maxDepth = depth
				}
			case r.exceptions[t]:
				top.f.exceptions++
			case r.concurrency[t]:
				top.f.concurrency++
			case r.heavy[t] || (r.isHeavy != nil && r.isHeavy(node, src)):
				top.f.heavy++
			case r.calls[t] && len(active) > 0:
				for _, fr := range active[calleeName(node, src)] {
					fr.f.recursive = true
				}
			}
		}

		if descend && c.GoToFirstChild() {
			for {
				visit(depth)
				if !c.GoToNextSibling() {
					break
				}
			}
			c.GoToParent()
		}

		for range entered {
			fr := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if fr.name != "" {
				list := active[fr.name]
				if len(list) == 1 {
					delete(active, fr.name)
				} else {
					active[fr.name] = list[:len(list)-1]
				}
			}
			fr.f.nesting = fr.maxDepth - fr.baseDepth
			if len(stack) == 0 {
				continue
			}
			parent := stack[len(stack)-1]
			parent.f.control += fr.f.control
			parent.f.exceptions += fr.f.exceptions
			parent.f.concurrency += fr.f.concurrency
			parent.f.heavy += fr.f.heavy
			if fr.maxDepth > parent.maxDepth {
				parent.maxDepth = fr.maxDepth
			}
		}
	}
	visit(0)
}

// nodeName returns the name of a named declaration.
func nodeName(n *sitter.Node, src []byte) string {
	if name := n.ChildByFieldName("name"); name != nil {
		return name.Content(src)
	}
	if d := n.ChildByFieldName("declarator"); d != nil {
		for {
			if identifierTypes[d.Type()] {
				return d.Content(src)
			}
			next := d.ChildByFieldName("declarator")
			if next == nil {
				break
			}
			d = next
		}
		if id := firstIdentifier(d); id != nil {
			return id.Content(src)
		}
	}
	for _, c := range syntax.NamedChildren(n) {
		if identifierTypes[c.Type()] {
			return c.Content(src)
		}
	}
	if name, ok := constructorNames[n.Type()]; ok {
		return name
	}
	return anonymousName
}

// boundName returns the name a lambda is bound to through its parent, such
// as the left side of an assignment.
func boundName(n, parent *sitter.Node, src []byte) string {
	if name := n.ChildByFieldName("name"); name != nil {
		return name.Content(src)
	}
	if parent != nil {
		for _, field := range []string{"name", "left", "key", "method"} {
			if c := parent.ChildByFieldName(field); c != nil && c.StartByte() < n.StartByte() {
				return c.Content(src)
			}
		}
	}
	return anonymousName
}

func firstIdentifier(n *sitter.Node) *sitter.Node {
	var found *sitter.Node
	syntax.Walk(n, func(c *sitter.Node) bool {
		if found != nil {
			return false
		}
		if identifierTypes[c.Type()] {
			found = c
			return false
		}
		return true
	})
	return found
}

// calleeName returns the last path segment of the function a call invokes.
func calleeName(call *sitter.Node, src []byte) string {
	for _, field := range []string{"function", "method", "name"} {
		if c := call.ChildByFieldName(field); c != nil {
			return calleeSegment(c, src)
		}
	}
	if call.NamedChildCount() > 0 {
		return calleeSegment(call.NamedChild(0), src)
	}
	return ""
}

// calleeSegment reads the last name of a callee expression. Long callees,
// such as call chains, are skipped rather than copied for every call in
// the chain.
func calleeSegment(n *sitter.Node, src []byte) string {
	for _, field := range []string{"property", "field", "attribute", "name"} {
		if c := n.ChildByFieldName(field); c != nil {
			n = c
			break
		}
	}
	if n.EndByte()-n.StartByte() > maxCalleeBytes {
		return ""
	}
	return lastSegment(n.Content(src))
}

func lastSegment(s string) string {
	if i := strings.LastIndexAny(s, ".:>"); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}

// containsWord reports whether text contains any of words as a whole word.
func containsWord(text string, words []string) bool {
	for _, w := range words {
		for idx := 0; ; {
			i := strings.Index(text[idx:], w)
			if i < 0 {
				break
			}
			i += idx
			before := i == 0 || !isWordRune(rune(text[i-1]))
			after := i+len(w) >= len(text) || !isWordRune(rune(text[i+len(w)]))
			if before && after {
				return true
			}
			idx = i + len(w)
		}
	}
	return false
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (s *structural) treeFooter(tree *syntax.Tree, n int) []int {
	src := tree.Source()
	out := newLineSet(n)
	top := syntax.NamedChildren(tree.Root())

	if s.tree.isFooter != nil {
		var visit func(nodes []*sitter.Node, depth int)
		visit = func(nodes []*sitter.Node, depth int) {
			for _, node := range nodes {
				if s.tree.isFooter(node, src) {
					start := syntax.StartLine(node)
					for sib := node.PrevNamedSibling(); sib != nil && s.tree.decorators[sib.Type()]; sib = sib.PrevNamedSibling() {
						start = syntax.StartLine(sib)
					}
					out.addRange(start, syntax.EndLine(node))
					continue
				}
				inner := s.unwrap(node)
				if depth < 2 && (s.tree.containers[inner.Type()] || s.tree.openers[inner.Type()]) {
					visit(members(inner), depth+1)
				}
			}
		}
		visit(top, 0)
	}

	// Trailing bootstrap statements such as main() or app.listen(...).
	for i := len(top) - 1; i >= 0; i-- {
		node := top[i]
		if isComment(node.Type()) {
			continue
		}
		if !s.tree.bootstrap[node.Type()] || !s.isCallStatement(node) {
			break
		}
		out.addRange(syntax.StartLine(node), syntax.EndLine(node))
	}
	return out.sorted()
}

// isCallStatement reports whether a statement is a call, possibly awaited.
func (s *structural) isCallStatement(n *sitter.Node) bool {
	for depth := 0; n != nil && depth < 3; depth++ {
		if s.tree.calls[n.Type()] {
			return true
		}
		if n.NamedChildCount() == 0 {
			return false
		}
		n = n.NamedChild(0)
	}
	return false
}

// firstWordOf returns the leading identifier of a node's text.
func firstWordOf(n *sitter.Node, src []byte) string {
	text := strings.TrimSpace(n.Content(src))
	end := strings.IndexFunc(text, func(r rune) bool { return !isWordRune(r) })
	if end < 0 {
		return text
	}
	return text[:end]
}
