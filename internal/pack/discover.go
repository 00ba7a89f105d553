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

package pack

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/tombee/repopacker/internal/linelimit"
	rperrors "github.com/tombee/repopacker/pkg/errors"
)

// Discover walks root and returns the slash-separated paths, relative to
// root, of the files to pack in lexical order. With no include patterns
// every file with a known extension is returned. Directories matching an
// ignore pattern are not descended into.
func Discover(root string, include, ignore []string) ([]string, error) {
	for _, p := range append(append([]string(nil), include...), ignore...) {
		if !doublestar.ValidatePattern(p) {
			return nil, &rperrors.ValidationError{
				Field:      "pattern",
				Message:    fmt.Sprintf("invalid glob pattern: %q", p),
				Suggestion: "check brackets and braces in --include and --ignore",
			}
		}
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if Matches(ignore, rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || Matches(ignore, rel) {
			return nil
		}
		if len(include) == 0 {
			if _, ok := linelimit.LanguageForPath(rel); ok {
				files = append(files, rel)
			}
			return nil
		}
		if Matches(include, rel) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, rperrors.Wrapf(err, "discovering files under %s", root)
	}

	sort.Strings(files)
	return files, nil
}

// Matches reports whether the slash-separated relative path matches any
// pattern. A pattern ending in "/**" also matches the directory itself.
func Matches(patterns []string, path string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, path); ok {
			return true
		}
		if dir, found := strings.CutSuffix(p, "/**"); found {
			if ok, _ := doublestar.Match(dir, strings.TrimSuffix(path, "/")); ok {
				return true
			}
		}
	}
	return false
}
