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
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/repopacker/internal/commands/shared"
	rperrors "github.com/tombee/repopacker/pkg/errors"
)

// longGo returns a Go file with n small functions.
func longGo(n int) string {
	var b strings.Builder
	b.WriteString("package main\n\nimport \"fmt\"\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "\nfunc f%d(x int) int {\n\tif x > %d {\n\t\treturn x\n\t}\n\treturn %d\n}\n", i, i, i)
	}
	b.WriteString("\nfunc main() {\n\tfmt.Println(f0(1))\n}\n")
	return b.String()
}

// setup isolates configuration and returns a tree with one long and one
// short source file.
func setup(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("NO_COLOR", "1")
	for _, key := range []string{"REPOPACKER_LINE_LIMIT", "REPOPACKER_CONCURRENCY", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(key, "")
	}
	t.Setenv("REPOPACKER_LOG_LEVEL", "error")

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte(longGo(20)), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "util.py"), []byte("def one():\n    return 1\n"), 0o644))
	return root
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	root := &cobra.Command{Use: "repopacker", SilenceUsage: true, SilenceErrors: true}
	verbose, quiet, jsonOut, cfgPath := shared.RegisterFlagPointers()
	root.PersistentFlags().BoolVarP(verbose, "verbose", "v", false, "")
	root.PersistentFlags().BoolVarP(quiet, "quiet", "q", false, "")
	root.PersistentFlags().BoolVar(jsonOut, "json", false, "")
	root.PersistentFlags().StringVar(cfgPath, "config", "", "")
	t.Cleanup(func() {
		*verbose, *quiet, *jsonOut, *cfgPath = false, false, false, ""
	})
	root.AddCommand(NewCommand())

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"pack"}, args...))
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func TestPack_ToStdout(t *testing.T) {
	root := setup(t)

	stdout, stderr, err := execute(t, root, "--line-limit", "30")
	require.NoError(t, err)

	assert.Contains(t, stdout, "File: main.go")
	assert.Contains(t, stdout, "File: util.py")
	assert.Contains(t, stdout, "lines truncated ...")
	assert.Less(t, strings.Index(stdout, "File: main.go"), strings.Index(stdout, "File: util.py"))

	assert.Contains(t, stderr, "Files: 2 processed, 1 truncated, 0 skipped")
	assert.NotContains(t, stdout, "Files: 2 processed")
}

func TestPack_ContentFlags(t *testing.T) {
	root := setup(t)

	stdout, _, err := execute(t, root, "-q")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "This file is a merged representation"))
	assert.Less(t, strings.Index(stdout, "File Summary"), strings.Index(stdout, "File: main.go"))
	assert.Contains(t, stdout, "def one():\n    return 1\n")

	stdout, _, err = execute(t, root, "-q", "--no-file-summary", "--remove-empty-lines", "--output-show-line-numbers", "--remove-comments")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "File Summary")
	assert.Contains(t, stdout, "1: def one():\n2:     return 1\n")
}

func TestPack_OutputFileIsNotPackedAgain(t *testing.T) {
	root := setup(t)
	output := filepath.Join(root, "packed.txt")

	for i := 0; i < 2; i++ {
		stdout, _, err := execute(t, root, "-l", "30", "-o", output, "--detailed")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Files: 2 processed")
		assert.Contains(t, stdout, "✓ main.go")
	}

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "File: packed.txt")
	assert.Contains(t, string(data), "File: main.go")
}

func TestPack_NoIndicators(t *testing.T) {
	root := setup(t)

	stdout, _, err := execute(t, root, "-l", "30", "--no-indicators", "--no-preserve-structure", "--no-cache")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "lines truncated")
}

func TestPack_IncludeAndIgnore(t *testing.T) {
	root := setup(t)

	stdout, _, err := execute(t, root, "--include", "**/*.py")
	require.NoError(t, err)
	assert.Contains(t, stdout, "File: util.py")
	assert.NotContains(t, stdout, "File: main.go")

	stdout, _, err = execute(t, root, "--ignore", "*.py")
	require.NoError(t, err)
	assert.Contains(t, stdout, "File: main.go")
	assert.NotContains(t, stdout, "File: util.py")
}

func TestPack_JSON(t *testing.T) {
	root := setup(t)
	output := filepath.Join(t.TempDir(), "out.txt")

	stdout, _, err := execute(t, root, "-l", "30", "-o", output, "--json")
	require.NoError(t, err)

	var resp PackResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "pack", resp.Command)
	require.NotNil(t, resp.Summary)
	assert.Equal(t, 2, resp.Summary.FilesProcessed)
	assert.Equal(t, 1, resp.Summary.FilesTruncated)
	assert.Equal(t, 30, resp.Summary.LineLimit)
	assert.Len(t, resp.Summary.Files, 2)
}

func TestPack_JQ(t *testing.T) {
	root := setup(t)
	output := filepath.Join(t.TempDir(), "out.txt")

	stdout, _, err := execute(t, root, "-l", "30", "-o", output, "--jq", ".files[] | select(.truncated_lines < .original_lines) | .path")
	require.NoError(t, err)
	assert.Equal(t, "main.go\n", stdout)

	stdout, _, err = execute(t, root, "-o", output, "--jq", "{n: .files_processed}")
	require.NoError(t, err)
	assert.Equal(t, "{\"n\":2}\n", stdout)
}

func TestPack_Metrics(t *testing.T) {
	root := setup(t)
	output := filepath.Join(t.TempDir(), "out.txt")

	stdout, _, err := execute(t, root, "-l", "30", "-o", output, "--metrics", "-q")
	require.NoError(t, err)
	assert.Contains(t, stdout, "repopacker_linelimit_files_total")
	assert.NotContains(t, stdout, "go_goroutines")
}

func TestPack_Trace(t *testing.T) {
	root := setup(t)
	output := filepath.Join(t.TempDir(), "out.txt")

	_, stderr, err := execute(t, root, "-l", "30", "-o", output, "--trace", "-q")
	require.NoError(t, err)
	assert.Contains(t, stderr, "ApplyLineLimit")
}

func TestPack_Errors(t *testing.T) {
	root := setup(t)

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"zero line limit", []string{root, "-l", "0"}, shared.ExitInvalidConfig},
		{"bad jq", []string{root, "--jq", ".["}, shared.ExitInvalidConfig},
		{"bad glob", []string{root, "--include", "[a"}, shared.ExitInvalidConfig},
		{"missing path", []string{filepath.Join(root, "nope")}, shared.ExitUnsupportedInput},
		{"file path", []string{filepath.Join(root, "main.go")}, shared.ExitUnsupportedInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.code, shared.ExitCode(err))
		})
	}
}

func TestPack_MissingPathIsNotFound(t *testing.T) {
	missing := filepath.Join(setup(t), "nope")

	_, _, err := execute(t, missing)
	require.Error(t, err)

	var notFound *rperrors.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "path", notFound.Resource)
	assert.Equal(t, missing, notFound.ID)
}

func TestPack_JSONError(t *testing.T) {
	root := setup(t)

	stdout, _, err := execute(t, root, "-l", "0", "--json")
	require.Error(t, err)

	var resp struct {
		Success bool `json:"success"`
		Errors  []struct {
			Code string `json:"code"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.False(t, resp.Success)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "INVALID_CONFIG", resp.Errors[0].Code)
}

func TestOutputWithin(t *testing.T) {
	root := t.TempDir()

	rel, ok := outputWithin(root, filepath.Join(root, "sub", "out.txt"))
	assert.True(t, ok)
	assert.Equal(t, "sub/out.txt", rel)

	_, ok = outputWithin(root, filepath.Join(filepath.Dir(root), "elsewhere.txt"))
	assert.False(t, ok)

	_, ok = outputWithin(root, "")
	assert.False(t, ok)
}
