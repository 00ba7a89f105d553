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

package linelimit

import (
	"path/filepath"
	"sort"
	"strings"
)

var languageExtensions = []struct {
	language   string
	extensions []string
}{
	{"typescript", []string{".ts", ".mts", ".cts", ".tsx"}},
	{"javascript", []string{".js", ".jsx", ".mjs", ".cjs"}},
	{"python", []string{".py", ".pyw", ".pyi"}},
	{"java", []string{".java"}},
	{"go", []string{".go"}},
	{"c", []string{".c", ".h"}},
	{"cpp", []string{".cpp", ".cc", ".cxx", ".c++", ".hpp", ".hh", ".hxx"}},
	{"csharp", []string{".cs"}},
	{"rust", []string{".rs"}},
	{"php", []string{".php"}},
	{"ruby", []string{".rb", ".rake"}},
	{"swift", []string{".swift"}},
	{"kotlin", []string{".kt", ".kts"}},
	{"dart", []string{".dart"}},
}

// ExtensionTable maps lower-case file extensions to language ids.
var ExtensionTable = func() map[string]string {
	table := make(map[string]string)
	for _, le := range languageExtensions {
		for _, ext := range le.extensions {
			table[ext] = le.language
		}
	}
	return table
}()

// LanguageForPath returns the language id for a file path by extension.
// Matching is case-insensitive. The second value is false for unmapped or
// missing extensions.
func LanguageForPath(filePath string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(filePath))
	if ext == "" {
		return "", false
	}
	lang, ok := ExtensionTable[ext]
	return lang, ok
}

// ExtensionsFor returns the sorted extensions mapped to a language id.
func ExtensionsFor(language string) []string {
	var exts []string
	for ext, lang := range ExtensionTable {
		if lang == language {
			exts = append(exts, ext)
		}
	}
	sort.Strings(exts)
	return exts
}

// Languages returns the sorted language ids that have extensions.
func Languages() []string {
	langs := make([]string, 0, len(languageExtensions))
	for _, le := range languageExtensions {
		langs = append(langs, le.language)
	}
	sort.Strings(langs)
	return langs
}
