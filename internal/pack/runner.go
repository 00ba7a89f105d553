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

// Package pack concatenates the files of a directory tree into one text
// artifact, limiting each file with the line-limit engine.
package pack

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tombee/repopacker/internal/linelimit"
	"github.com/tombee/repopacker/internal/log"
	rperrors "github.com/tombee/repopacker/pkg/errors"
)

// DefaultMaxFileBytes is the largest file read into a pack.
const DefaultMaxFileBytes = 10 * 1024 * 1024

const separator = "================"

// Options configures a Runner.
type Options struct {
	// Root is the directory to pack.
	Root string

	// Include and Ignore are doublestar patterns relative to Root.
	Include []string
	Ignore  []string

	// Limit is passed to the engine for every file.
	Limit linelimit.Config

	// Concurrency is the number of files processed at once.
	Concurrency int

	// FileTimeout bounds the engine call for one file. Zero means no bound.
	FileTimeout time.Duration

	// MaxFileBytes skips larger files. Zero means DefaultMaxFileBytes.
	MaxFileBytes int64

	// RemoveComments and RemoveEmptyLines rewrite each file before the
	// engine sees it, so the line limit and the reported counts apply to
	// what remains.
	RemoveComments   bool
	RemoveEmptyLines bool

	// ShowLineNumbers prefixes kept lines with their number in the file as
	// given to the engine.
	ShowLineNumbers bool

	// FileSummary writes a preamble describing the document's layout ahead
	// of the first file.
	FileSummary bool
}

// Runner packs a directory tree.
type Runner struct {
	engine *linelimit.Engine
	logger *slog.Logger
	opts   Options
}

// NewRunner creates a Runner. The engine is shared and not disposed by the
// runner.
func NewRunner(engine *linelimit.Engine, logger *slog.Logger, opts Options) *Runner {
	if logger == nil {
		logger = log.Discard()
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.MaxFileBytes <= 0 {
		opts.MaxFileBytes = DefaultMaxFileBytes
	}
	return &Runner{
		engine: engine,
		logger: log.WithComponent(logger, "pack"),
		opts:   opts,
	}
}

// packedFile is one processed file waiting to be written.
type packedFile struct {
	report FileReport
	body   string
}

// Run packs the tree and writes the artifact to w. Files are written in
// lexical path order regardless of the order they finish in. A failure on
// one file is recorded in the summary and does not stop the run.
func (r *Runner) Run(ctx context.Context, w io.Writer) (*Summary, error) {
	start := time.Now()
	runID := uuid.New().String()
	logger := log.WithRunContext(r.logger, runID, r.opts.Root)

	files, err := Discover(r.opts.Root, r.opts.Include, r.opts.Ignore)
	if err != nil {
		return nil, &rperrors.FileError{Path: r.opts.Root, Op: "walk", Cause: err}
	}
	logger.Info("pack started", log.Int("files", len(files)), log.Int("line_limit", r.opts.Limit.LineLimit))

	results := make([]packedFile, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)
	for i, rel := range files {
		g.Go(func() error {
			pf, err := r.packFile(gctx, logger, rel)
			if err != nil {
				return err
			}
			results[i] = pf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &Summary{
		RunID:     runID,
		Root:      r.opts.Root,
		LineLimit: r.opts.Limit.LineLimit,
	}
	if r.opts.FileSummary {
		if err := writeFileSummary(w, r.opts); err != nil {
			return nil, &rperrors.FileError{Path: r.opts.Root, Op: "write", Cause: err}
		}
	}
	for _, pf := range results {
		summary.add(pf.report)
		if pf.report.Method == MethodSkipped {
			continue
		}
		if err := writeFile(w, pf.report.Path, pf.body); err != nil {
			return nil, &rperrors.FileError{Path: pf.report.Path, Op: "write", Cause: err}
		}
	}
	summary.DurationMs = time.Since(start).Milliseconds()

	logger.Info("pack completed",
		log.Int("processed", summary.FilesProcessed),
		log.Int("truncated", summary.FilesTruncated),
		log.Int("skipped", summary.FilesSkipped),
		log.Duration("duration", summary.DurationMs),
	)
	return summary, nil
}

// packFile limits one file. Only cancellation of ctx is returned as an
// error; everything else is recorded on the report.
func (r *Runner) packFile(ctx context.Context, logger *slog.Logger, rel string) (packedFile, error) {
	if err := ctx.Err(); err != nil {
		return packedFile{}, err
	}
	report := FileReport{Path: rel}
	language, _ := linelimit.LanguageForPath(rel)
	report.Language = language
	logger = log.WithFileContext(logger, rel, language)

	skip := func(err error) (packedFile, error) {
		report.Method = MethodSkipped
		report.Error = err.Error()
		logger.Debug("file skipped", log.Error(err))
		return packedFile{report: report}, nil
	}

	abs := filepath.Join(r.opts.Root, filepath.FromSlash(rel))
	info, err := os.Stat(abs)
	if err != nil {
		return skip(&rperrors.FileError{Path: rel, Op: "stat", Cause: err})
	}
	if info.Size() > r.opts.MaxFileBytes {
		return skip(&rperrors.FileError{
			Path:  rel,
			Op:    "read",
			Cause: fmt.Errorf("file is %d bytes, limit is %d", info.Size(), r.opts.MaxFileBytes),
		})
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return skip(&rperrors.FileError{Path: rel, Op: "read", Cause: err})
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return skip(&rperrors.FileError{Path: rel, Op: "read", Cause: errors.New("binary content")})
	}

	content := r.prepare(logger, rel, string(data))
	lines := strings.Split(content, "\n")
	limit := r.opts.Limit

	callCtx := ctx
	if r.opts.FileTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.opts.FileTimeout)
		defer cancel()
	}

	result, err := r.engine.ApplyLineLimit(callCtx, content, rel, limit)
	switch {
	case err == nil:
		report.Method = MethodStructural
		if !result.Truncated() {
			report.Method = MethodPassthrough
		}
		for _, fn := range result.TruncatedFunctions {
			report.TruncatedFunctions = append(report.TruncatedFunctions, fn.Name)
		}
	case ctx.Err() != nil:
		return packedFile{}, ctx.Err()
	case linelimit.IsLimitTooSmall(err):
		return packedFile{}, err
	default:
		if errors.Is(err, context.DeadlineExceeded) {
			err = &rperrors.TimeoutError{Operation: "line limit " + rel, Duration: r.opts.FileTimeout, Cause: err}
		}
		if !linelimit.IsUnsupportedLanguage(err) {
			report.Error = err.Error()
			logger.Warn("line limit failed, keeping leading lines", log.Error(err))
		}
		result = linelimit.Head(lines, limit.LineLimit, language, limit.ShowTruncationIndicators)
		report.Method = MethodPassthrough
		if result.Truncated() {
			report.Method = MethodHead
		}
	}

	render := r.engine.Render
	if r.opts.ShowLineNumbers {
		render = r.engine.RenderNumbered
	}
	body := render(result, lines)
	report.OriginalLines = result.OriginalLineCount
	report.TruncatedLines = result.LimitedLineCount
	report.OriginalTokens = EstimateTokens(content)
	report.TruncatedTokens = EstimateTokens(body)
	return packedFile{report: report, body: body}, nil
}

// prepare applies the content rewrites that run ahead of the engine.
func (r *Runner) prepare(logger *slog.Logger, rel, content string) string {
	if r.opts.RemoveComments {
		stripped, err := r.engine.RemoveComments(content, rel)
		switch {
		case err == nil:
			content = stripped
		case !linelimit.IsUnsupportedLanguage(err):
			logger.Warn("comment removal failed, keeping comments", log.Error(err))
		}
	}
	if r.opts.RemoveEmptyLines {
		content = removeEmptyLines(content)
	}
	return content
}

// removeEmptyLines drops lines holding only whitespace.
func removeEmptyLines(content string) string {
	lines := strings.Split(content, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// writeFileSummary writes the preamble that explains the document to a
// reader who sees only the packed output.
func writeFileSummary(w io.Writer, opts Options) error {
	var b strings.Builder
	fmt.Fprintf(&b, "This file is a merged representation of the source files under %s,\n", opts.Root)
	fmt.Fprintf(&b, "with each file limited to %d lines.\n\n", opts.Limit.LineLimit)
	fmt.Fprintf(&b, "%s\nFile Summary\n%s\n\n", separator, separator)
	b.WriteString("Format:\nEach file follows a header holding its path between separator lines.\n\n")
	b.WriteString("Notes:\n")
	b.WriteString("- Longer files keep their imports, highest ranked functions and closing lines.\n")
	if opts.Limit.ShowTruncationIndicators {
		b.WriteString("- Omitted spans are marked by a comment in the file's own syntax.\n")
	}
	if opts.RemoveComments {
		b.WriteString("- Comments have been removed.\n")
	}
	if opts.RemoveEmptyLines {
		b.WriteString("- Empty lines have been removed.\n")
	}
	if opts.ShowLineNumbers {
		b.WriteString("- Lines are prefixed with their line number.\n")
	}
	b.WriteString("- Binary and oversized files are left out.\n\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func writeFile(w io.Writer, path, body string) error {
	_, err := fmt.Fprintf(w, "%s\nFile: %s\n%s\n%s\n\n", separator, path, separator, body)
	return err
}
