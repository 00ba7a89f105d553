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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tombee/repopacker/internal/truncate"
)

func TestLanguageForPath(t *testing.T) {
	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"src/app.ts", "typescript", true},
		{"src/App.TSX", "typescript", true},
		{"lib/util.cjs", "javascript", true},
		{"stubs/mod.pyi", "python", true},
		{"Main.java", "java", true},
		{"cmd/main.go", "go", true},
		{"include/api.h", "c", true},
		{"src/vec.c++", "cpp", true},
		{"src/vec.hh", "cpp", true},
		{"Program.cs", "csharp", true},
		{"src/lib.rs", "rust", true},
		{"index.php", "php", true},
		{"Rakefile.rake", "ruby", true},
		{"App.swift", "swift", true},
		{"build.gradle.kts", "kotlin", true},
		{"lib/main.dart", "dart", true},
		{"notes.txt", "", false},
		{"Makefile", "", false},
		{".gitignore", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := LanguageForPath(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtensionTable_CoversBuiltinLanguages(t *testing.T) {
	for _, lang := range truncate.BuiltinLanguages() {
		assert.NotEmpty(t, ExtensionsFor(lang), "no extension for %s", lang)
	}
	for ext, lang := range ExtensionTable {
		assert.True(t, truncate.HasStrategy(lang), "%s maps to %s which has no strategy", ext, lang)
	}
}

func TestExtensionsFor(t *testing.T) {
	assert.Equal(t, []string{".c++", ".cc", ".cpp", ".cxx", ".hh", ".hpp", ".hxx"}, ExtensionsFor("cpp"))
	assert.Empty(t, ExtensionsFor("cobol"))
}

func TestLanguages(t *testing.T) {
	langs := Languages()
	assert.Len(t, langs, 14)
	assert.Equal(t, "c", langs[0])
	assert.IsNonDecreasing(t, langs)
	for _, lang := range langs {
		assert.NotEmpty(t, ExtensionsFor(lang), lang)
	}
}
