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
	"time"

	"github.com/spf13/cobra"
)

// options holds pack command flags.
type options struct {
	lineLimit        int
	noPreserve       bool
	noIndicators     bool
	noCache          bool
	include          []string
	ignore           []string
	output           string
	detailed         bool
	watch            bool
	jqExpr           string
	metrics          bool
	trace            bool
	concurrency      int
	fileTimeout      time.Duration
	removeComments   bool
	removeEmptyLines bool
	lineNumbers      bool
	noFileSummary    bool
}

// NewCommand creates the pack command
func NewCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "pack [path]",
		Short: "Pack a directory with line limits applied",
		Annotations: map[string]string{
			"group": "packing",
		},
		Long: `Pack concatenates every supported source file under path (default ".")
into one document. Files longer than the line limit are truncated: imports
and declarations, the most complex functions and entry points are kept, and
each omitted span is marked with a comment in the file's own syntax.

Files the structural analysis cannot handle fall back to keeping their
first lines. Binary and oversized files are skipped.

The packed document goes to stdout, or to --output. The run summary goes
to stderr when the document is on stdout and to stdout otherwise.

Settings come from flags, then REPOPACKER_* environment variables, then the
config file, then defaults.`,
		Example: `  # Pack the current directory with a 100 line limit
  repopacker pack . --line-limit 100 > context.txt

  # Only Go and Python files, with per-file detail
  repopacker pack ./src --include '**/*.go' --include '**/*.py' -o out.txt --detailed

  # Print the five files that lost the most lines
  repopacker pack . -o out.txt --jq '.files | sort_by(.truncated_lines - .original_lines) | .[:5] | .[].path'

  # Smaller output: no comments or blank lines, numbered lines
  repopacker pack . --remove-comments --remove-empty-lines --output-show-line-numbers

  # Re-pack whenever a file changes
  repopacker pack . -o out.txt --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			return runPack(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&opts.lineLimit, "line-limit", "l", 0, "Maximum lines kept per file (default from config, 200)")
	f.BoolVar(&opts.noPreserve, "no-preserve-structure", false, "Rank all code on one scale instead of header/core/footer zones")
	f.BoolVar(&opts.noIndicators, "no-indicators", false, "Do not mark omitted spans")
	f.BoolVar(&opts.noCache, "no-cache", false, "Disable the result cache")
	f.StringArrayVar(&opts.include, "include", nil, "Glob of files to pack, relative to path (repeatable)")
	f.StringArrayVar(&opts.ignore, "ignore", nil, "Glob of files to skip, added to the configured ignores (repeatable)")
	f.StringVarP(&opts.output, "output", "o", "", "Write the packed document to a file")
	f.BoolVar(&opts.detailed, "detailed", false, "Show per-file results in the summary")
	f.BoolVarP(&opts.watch, "watch", "w", false, "Re-pack when files change")
	f.StringVar(&opts.jqExpr, "jq", "", "Filter the JSON run summary with a jq expression")
	f.BoolVar(&opts.metrics, "metrics", false, "Print engine metrics after the run")
	f.BoolVar(&opts.trace, "trace", false, "Print trace spans to stderr")
	f.IntVar(&opts.concurrency, "concurrency", 0, "Files processed in parallel (default from config)")
	f.DurationVar(&opts.fileTimeout, "file-timeout", 30*time.Second, "Time allowed for one file before falling back")
	f.BoolVar(&opts.removeComments, "remove-comments", false, "Delete comments before applying the line limit")
	f.BoolVar(&opts.removeEmptyLines, "remove-empty-lines", false, "Delete blank lines before applying the line limit")
	f.BoolVar(&opts.lineNumbers, "output-show-line-numbers", false, "Prefix every kept line with its line number")
	f.BoolVar(&opts.noFileSummary, "no-file-summary", false, "Omit the summary preamble at the top of the packed document")

	return cmd
}
