package truncate

// newJavaScriptStrategy shares the TypeScript rules. The JavaScript grammar
// is a subset of the TypeScript one, so the same node types apply and the
// type-only ones simply never occur.
func newJavaScriptStrategy() *structural {
	s := newTypeScriptStrategy()
	s.id = "javascript"
	return s
}
