package truncate

import (
	"regexp"
	"sort"
	"sync"
)

// Patterns shared by the C-family and other brace languages.
const (
	cStyleFunction   = `^\s*(?:[\w$.:<>\[\],?*&~@]+\s+)+[*&]*(?:[\w$<>]+::)*([A-Za-z_~$][\w$]*)\s*\(`
	cStyleControl    = `\b(?:if|for|foreach|while|switch)\b`
	cStyleException  = `\b(?:try|catch|throw|finally)\b`
	annotationLine   = `^\s*@[\w.]+(?:\(.*\))?\s*$`
	genericSignature = `<[^<>()]+>`
)

var (
	builtinOnce sync.Once
	builtinSet  map[string]Strategy
)

// builtinStrategies returns the shared built-in strategies keyed by language
// id. Strategies are immutable and safe for concurrent use.
func builtinStrategies() map[string]Strategy {
	builtinOnce.Do(func() {
		builtinSet = map[string]Strategy{
			"typescript": newTypeScriptStrategy(),
			"javascript": newJavaScriptStrategy(),
			"python":     newPythonStrategy(),
			"java":       newJavaStrategy(),
			"go":         newGoStrategy(),
			"c":          newCStrategy(),
			"cpp":        newCppStrategy(),
			"csharp":     newCSharpStrategy(),
			"rust":       newRustStrategy(),
			"php":        newPHPStrategy(),
			"ruby":       newRubyStrategy(),
			"swift":      newSwiftStrategy(),
			"kotlin":     newKotlinStrategy(),
			"dart":       newDartStrategy(),
		}
	})
	out := make(map[string]Strategy, len(builtinSet))
	for id, s := range builtinSet {
		out[id] = s
	}
	return out
}

// BuiltinLanguages returns the ids of the built-in strategies.
func BuiltinLanguages() []string {
	ids := make([]string, 0, 14)
	for id := range builtinStrategies() {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func re(pattern string) *regexp.Regexp {
	return regexp.MustCompile(pattern)
}
