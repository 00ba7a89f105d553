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

// Package syntax wraps tree-sitter grammars, pooled parsers and parse trees
// for the languages the line-limit engine analyzes.
package syntax

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/kotlin"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/swift"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// GrammarTSX is the grammar key used for .tsx files, which need the TSX
// dialect of the TypeScript grammar.
const GrammarTSX = "tsx"

// grammarLoaders maps a grammar key to the function returning its language.
// Keys equal language ids except for GrammarTSX.
var grammarLoaders = map[string]func() *sitter.Language{
	"typescript": typescript.GetLanguage,
	GrammarTSX:   tsx.GetLanguage,
	"javascript": javascript.GetLanguage,
	"python":     python.GetLanguage,
	"java":       java.GetLanguage,
	"go":         golang.GetLanguage,
	"c":          c.GetLanguage,
	"cpp":        cpp.GetLanguage,
	"csharp":     csharp.GetLanguage,
	"rust":       rust.GetLanguage,
	"php":        php.GetLanguage,
	"ruby":       ruby.GetLanguage,
	"swift":      swift.GetLanguage,
	"kotlin":     kotlin.GetLanguage,
}

var (
	loadedMu sync.Mutex
	loaded   = make(map[string]*sitter.Language)
)

// GrammarKey returns the grammar key for a language id and file path.
// The second return value is false when no grammar is bundled for the
// language, in which case callers analyze the file textually.
func GrammarKey(language, filePath string) (string, bool) {
	if language == "typescript" && strings.EqualFold(filepath.Ext(filePath), ".tsx") {
		return GrammarTSX, true
	}
	if _, ok := grammarLoaders[language]; !ok {
		return "", false
	}
	return language, true
}

// Load returns the tree-sitter language for a grammar key. Languages are
// loaded once per process and shared by every caller.
func Load(key string) (*sitter.Language, bool) {
	loadedMu.Lock()
	defer loadedMu.Unlock()

	if lang, ok := loaded[key]; ok {
		return lang, true
	}
	loader, ok := grammarLoaders[key]
	if !ok {
		return nil, false
	}
	lang := loader()
	loaded[key] = lang
	return lang, true
}

// Grammars returns the sorted list of bundled grammar keys.
func Grammars() []string {
	keys := make([]string, 0, len(grammarLoaders))
	for k := range grammarLoaders {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
