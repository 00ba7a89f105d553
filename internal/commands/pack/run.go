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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tombee/repopacker/internal/commands/shared"
	"github.com/tombee/repopacker/internal/config"
	"github.com/tombee/repopacker/internal/jq"
	"github.com/tombee/repopacker/internal/linelimit"
	"github.com/tombee/repopacker/internal/log"
	"github.com/tombee/repopacker/internal/pack"
	"github.com/tombee/repopacker/internal/tracing"
	"github.com/tombee/repopacker/internal/watch"
	rperrors "github.com/tombee/repopacker/pkg/errors"
)

// packer holds everything one pack invocation shares across runs.
type packer struct {
	cmd    *cobra.Command
	cfg    *config.Config
	opts   options
	root   string
	engine *linelimit.Engine
	logger *slog.Logger
}

func runPack(cmd *cobra.Command, root string, opts options) error {
	err := doPack(cmd, root, opts)
	if err != nil && shared.GetJSON() {
		_ = shared.EmitJSONError(cmd.OutOrStdout(), "pack", err)
	}
	return err
}

func doPack(cmd *cobra.Command, root string, opts options) error {
	cfg, err := shared.LoadConfig()
	if err != nil {
		return err
	}
	if err := opts.apply(cmd, cfg, root); err != nil {
		return err
	}
	if opts.jqExpr != "" {
		if _, err := jq.Compile(opts.jqExpr); err != nil {
			return shared.NewInvalidConfigError("invalid --jq expression", err)
		}
	}

	info, err := os.Stat(root)
	if errors.Is(err, fs.ErrNotExist) {
		err = &rperrors.NotFoundError{Resource: "path", ID: root}
	}
	if err != nil {
		return shared.NewUnsupportedInputError(fmt.Sprintf("cannot pack %s", root), err)
	}
	if !info.IsDir() {
		return shared.NewUnsupportedInputError(fmt.Sprintf("cannot pack %s", root), errors.New("not a directory"))
	}

	logger := shared.NewLogger(cfg)
	engineOpts := append(cfg.EngineOptions(), linelimit.WithLogger(logger))
	if opts.trace {
		version, _, _ := shared.GetVersion()
		provider, err := tracing.NewConsoleProvider(cmd.ErrOrStderr(), "repopacker", version)
		if err != nil {
			return shared.NewFailedError("failed to start tracing", err)
		}
		defer func() { _ = provider.Shutdown(context.Background()) }()
		engineOpts = append(engineOpts, linelimit.WithTracerProvider(provider.TracerProvider()))
	}
	engine := linelimit.New(engineOpts...)
	defer engine.Dispose()

	p := &packer{cmd: cmd, cfg: cfg, opts: opts, root: root, engine: engine, logger: logger}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := p.packOnce(ctx); err != nil {
		return err
	}
	if !opts.watch {
		return nil
	}
	return p.watch(ctx)
}

// apply layers flag values over the loaded configuration.
func (o options) apply(cmd *cobra.Command, cfg *config.Config, root string) error {
	flags := cmd.Flags()
	if flags.Changed("line-limit") {
		cfg.LineLimit = o.lineLimit
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = o.concurrency
	}
	if o.noPreserve {
		cfg.PreserveStructure = false
	}
	if o.noIndicators {
		cfg.ShowIndicators = false
	}
	if o.noCache {
		cfg.EnableCaching = false
	}
	if len(o.include) > 0 {
		cfg.Include = o.include
	}
	cfg.Ignore = append(slices.Clone(cfg.Ignore), o.ignore...)
	if rel, ok := outputWithin(root, o.output); ok {
		cfg.Ignore = append(cfg.Ignore, rel)
	}

	if err := cfg.Validate(); err != nil {
		return shared.NewInvalidConfigError("invalid pack options", err)
	}
	return nil
}

// outputWithin returns the output file's slash path relative to root when
// it lies inside root, so packing and watching never read it back.
func outputWithin(root, output string) (string, bool) {
	if output == "" {
		return "", false
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", false
	}
	absOut, err := filepath.Abs(output)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(absRoot, absOut)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// packOnce runs one pack and reports its summary.
func (p *packer) packOnce(ctx context.Context) error {
	out, closeOut, err := p.openOutput()
	if err != nil {
		return shared.NewFailedError("failed to open output", err)
	}

	runner := pack.NewRunner(p.engine, p.logger, pack.Options{
		Root:        p.root,
		Include:     p.cfg.Include,
		Ignore:      p.cfg.Ignore,
		Limit:       p.cfg.EngineConfig(),
		Concurrency: p.cfg.Concurrency,
		FileTimeout: p.opts.fileTimeout,

		RemoveComments:   p.opts.removeComments,
		RemoveEmptyLines: p.opts.removeEmptyLines,
		ShowLineNumbers:  p.opts.lineNumbers,
		FileSummary:      !p.opts.noFileSummary,
	})
	summary, err := runner.Run(ctx, out)
	if cerr := closeOut(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return shared.Classify("pack failed", err)
	}
	return p.report(ctx, summary)
}

// openOutput returns a buffered writer for the packed document and a
// function that flushes and closes it.
func (p *packer) openOutput() (io.Writer, func() error, error) {
	if p.opts.output == "" {
		bw := bufio.NewWriter(p.cmd.OutOrStdout())
		return bw, bw.Flush, nil
	}
	f, err := os.Create(p.opts.output)
	if err != nil {
		return nil, nil, err
	}
	bw := bufio.NewWriter(f)
	return bw, func() error {
		if err := bw.Flush(); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}, nil
}

// summaryWriter keeps the summary off stdout while stdout carries the
// packed document.
func (p *packer) summaryWriter() io.Writer {
	if p.opts.output == "" {
		return p.cmd.ErrOrStderr()
	}
	return p.cmd.OutOrStdout()
}

func (p *packer) watch(ctx context.Context) error {
	w, err := watch.New(watch.Options{Root: p.root, Ignore: p.cfg.Ignore, Logger: p.logger})
	if err != nil {
		return shared.NewFailedError("failed to start watcher", err)
	}
	defer w.Close()

	err = w.Run(ctx, func(ctx context.Context, paths []string) error {
		p.logger.Info("repacking", log.Int("changed", len(paths)), log.String("first", paths[0]))
		if err := p.packOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logger.Error("pack failed", log.Error(err))
		}
		return nil
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	if err != nil {
		return shared.NewFailedError("watch stopped", err)
	}
	return nil
}
