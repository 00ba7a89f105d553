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
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tombee/repopacker/internal/log"
	"github.com/tombee/repopacker/internal/syntax"
	"github.com/tombee/repopacker/internal/truncate"
)

const tracerName = "github.com/tombee/repopacker/internal/linelimit"

// Engine applies line limits to source files. It is safe for concurrent
// use; each call borrows a parser from a per-grammar pool.
type Engine struct {
	registry  *truncate.Registry
	logger    *slog.Logger
	tracer    trace.Tracer
	poolSize  int
	cacheSize int
	cache     *resultCache

	mu       sync.Mutex
	pools    map[string]*syntax.Pool
	disposed bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithRegistry resolves strategies from r instead of the default registry.
func WithRegistry(r *truncate.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithTracerProvider sets the provider spans are created from.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Engine) { e.tracer = tp.Tracer(tracerName) }
}

// WithParserPoolSize sets how many idle parsers each grammar pool keeps.
func WithParserPoolSize(n int) Option {
	return func(e *Engine) { e.poolSize = n }
}

// WithCacheSize sets the number of cached results.
func WithCacheSize(n int) Option {
	return func(e *Engine) { e.cacheSize = n }
}

// New creates an engine. Call Dispose when done to release parsers.
func New(opts ...Option) *Engine {
	e := &Engine{
		registry:  truncate.DefaultRegistry(),
		logger:    slog.Default(),
		poolSize:  syntax.DefaultPoolSize,
		cacheSize: DefaultCacheSize,
		pools:     make(map[string]*syntax.Pool),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.tracer == nil {
		e.tracer = otel.GetTracerProvider().Tracer(tracerName)
	}
	e.logger = log.WithComponent(e.logger, "linelimit")
	if c, err := newResultCache(e.cacheSize); err == nil {
		e.cache = c
	}
	return e
}

// Initialize resolves the language of filePath and prepares its parser
// pool. It returns the language id. Calling it is optional; ApplyLineLimit
// initializes lazily.
func (e *Engine) Initialize(ctx context.Context, filePath string) (string, error) {
	ctx, span := e.tracer.Start(ctx, "linelimit.Initialize",
		trace.WithAttributes(attribute.String("file", filePath)))
	defer span.End()

	language, _, err := e.resolve(filePath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetAttributes(attribute.String("language", language))

	if _, err := e.pool(ctx, language, filePath); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return language, nil
}

// ApplyLineLimit selects at most cfg.LineLimit lines of content. filePath
// only selects the language; the file is not read. Content that already
// fits is returned whole before the language is resolved, so an unmapped
// extension only fails when truncation is needed.
func (e *Engine) ApplyLineLimit(ctx context.Context, content, filePath string, cfg Config) (*Result, error) {
	ctx, span := e.tracer.Start(ctx, "linelimit.ApplyLineLimit", trace.WithAttributes(
		attribute.String("file", filePath),
		attribute.Int("line_limit", cfg.LineLimit),
	))
	defer span.End()

	result, err := e.apply(ctx, content, filePath, cfg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("language", result.Metadata.Language),
		attribute.Int("original_lines", result.OriginalLineCount),
		attribute.Int("limited_lines", result.LimitedLineCount),
	)
	return result, nil
}

func (e *Engine) apply(ctx context.Context, content, filePath string, cfg Config) (*Result, error) {
	if e.isDisposed() {
		return nil, ErrEngineDisposed
	}
	if cfg.LineLimit < 1 {
		return nil, NewLimitTooSmallError(cfg.LineLimit)
	}

	// Content within the limit is returned unchanged even when no strategy
	// handles its extension.
	lines := strings.Split(content, "\n")
	if len(lines) <= cfg.LineLimit {
		language, _ := LanguageForPath(filePath)
		recordOutcome(language, outcomePassthrough)
		return passthrough(lines, language), nil
	}

	language, strategy, err := e.resolve(filePath)
	if err != nil {
		return nil, err
	}
	if strings.IndexByte(content, 0) >= 0 {
		recordOutcome(language, outcomeError)
		return nil, NewParseError(filePath, "content contains NUL bytes")
	}

	logger := log.WithFileContext(e.logger, filePath, language)
	var key cacheKey
	if cfg.EnableCaching && e.cache != nil {
		key = newCacheKey(content, language, cfg)
		if r, ok := e.cache.get(key); ok {
			recordCache(true)
			logger.Debug("line limit cache hit")
			recordOutcome(language, outcomeTruncated)
			return r, nil
		}
		recordCache(false)
	}

	start := time.Now()
	result, err := e.compute(ctx, logger, content, lines, filePath, language, strategy, cfg)
	if err != nil {
		recordOutcome(language, outcomeError)
		return nil, err
	}
	observeDuration(language, time.Since(start).Seconds())
	recordOutcome(language, outcomeTruncated)
	recordTruncatedFunctions(language, len(result.TruncatedFunctions))

	if cfg.EnableCaching && e.cache != nil {
		e.cache.put(key, result)
	}
	return result, nil
}

func (e *Engine) compute(ctx context.Context, logger *slog.Logger, content string, lines []string, filePath, language string, strategy truncate.Strategy, cfg Config) (*Result, error) {
	tree, err := e.parse(ctx, language, filePath, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()
	if !tree.Usable() {
		recordFallback(language)
		logger.Debug("using textual fallback", "has_tree", tree != nil)
	}

	st, err := analyze(strategy, lines, tree)
	if err != nil {
		logger.Warn("structural analysis failed", log.Error(err))
		return nil, newAnalysisError(filePath, language, err)
	}
	st = normalize(st, len(lines))

	var (
		sel       *selection
		truncated []truncate.FunctionAnalysis
	)
	if cfg.PreserveStructure {
		sel, truncated = allocateZones(len(lines), cfg.LineLimit, st)
	} else {
		sel, truncated = allocateFlat(len(lines), cfg.LineLimit, st)
	}

	result := &Result{
		OriginalLineCount:  len(lines),
		TruncatedFunctions: truncated,
		Metadata: Metadata{
			Language:   language,
			Allocation: sel.allocation(),
		},
	}
	for i, sec := range sel.sections {
		if sec != "" {
			result.SelectedLines = append(result.SelectedLines, SourceLine{LineNumber: i, Content: lines[i], Section: sec})
		}
	}
	result.LimitedLineCount = len(result.SelectedLines)
	if cfg.ShowTruncationIndicators {
		result.TruncationIndicators = indicators(sel)
	}

	a := result.Metadata.Allocation
	log.Trace(logger, "line limit applied",
		log.Int("header", a.HeaderLines),
		log.Int("core", a.CoreLines),
		log.Int("footer", a.FooterLines),
		log.Int("truncated_functions", len(truncated)),
	)
	return result, nil
}

// analyze runs the strategy, converting a panic into an error.
func analyze(strategy truncate.Strategy, lines []string, tree *syntax.Tree) (st structure, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("strategy panic: %v", r)
		}
	}()
	st.header = strategy.IdentifyHeaderLines(lines, tree)
	st.functions = strategy.AnalyzeFunctions(lines, tree)
	st.footer = strategy.IdentifyFooterLines(lines, tree)
	return st, nil
}

// parse returns a tree for content, or nil when the language has no
// grammar or the parser fails. Only cancellation is reported as an error.
func (e *Engine) parse(ctx context.Context, language, filePath, content string) (*syntax.Tree, error) {
	pool, err := e.pool(ctx, language, filePath)
	if err != nil || pool == nil {
		return nil, err
	}

	ctx, span := e.tracer.Start(ctx, "linelimit.parse", trace.WithAttributes(attribute.String("language", language)))
	defer span.End()

	tree, err := pool.Parse(ctx, []byte(content))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		span.RecordError(err)
		return nil, nil
	}
	span.SetAttributes(attribute.Bool("usable", tree.Usable()))
	return tree, nil
}

// pool returns the parser pool for the grammar of language, creating it on
// first use. It returns nil for languages without a bundled grammar.
func (e *Engine) pool(ctx context.Context, language, filePath string) (*syntax.Pool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key, ok := syntax.GrammarKey(language, filePath)
	if !ok {
		return nil, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return nil, ErrEngineDisposed
	}
	if p, ok := e.pools[key]; ok {
		return p, nil
	}
	lang, ok := syntax.Load(key)
	if !ok {
		return nil, nil
	}
	p := syntax.NewPool(lang, e.poolSize)
	e.pools[key] = p
	return p, nil
}

// RemoveComments deletes the comments of content using the comment syntax of
// filePath's language. Lines that held only a comment are dropped. Content
// whose strategy cannot remove comments is returned unchanged.
func (e *Engine) RemoveComments(content, filePath string) (string, error) {
	_, strategy, err := e.resolve(filePath)
	if err != nil {
		return "", err
	}
	remover, ok := strategy.(truncate.CommentRemover)
	if !ok {
		return content, nil
	}
	out, err := remover.RemoveComments(content)
	if err != nil {
		return "", NewParseError(filePath, err.Error())
	}
	return out, nil
}

func (e *Engine) resolve(filePath string) (string, truncate.Strategy, error) {
	if e.isDisposed() {
		return "", nil, ErrEngineDisposed
	}
	language, ok := LanguageForPath(filePath)
	if !ok {
		return "", nil, NewUnsupportedLanguageError(filePath, "")
	}
	strategy := e.registry.GetStrategy(language)
	if strategy == nil {
		return "", nil, NewUnsupportedLanguageError(filePath, language)
	}
	return language, strategy, nil
}

func (e *Engine) isDisposed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.disposed
}

// Dispose closes every parser pool and drops cached results. It is
// idempotent; later calls to Initialize or ApplyLineLimit fail with
// ErrEngineDisposed.
func (e *Engine) Dispose() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return
	}
	e.disposed = true
	for key, p := range e.pools {
		p.Close()
		delete(e.pools, key)
	}
	if e.cache != nil {
		e.cache.purge()
	}
}

// passthrough keeps every line as core.
func passthrough(lines []string, language string) *Result {
	selected := make([]SourceLine, len(lines))
	for i, l := range lines {
		selected[i] = SourceLine{LineNumber: i, Content: l, Section: SectionCore}
	}
	return &Result{
		SelectedLines:     selected,
		OriginalLineCount: len(lines),
		LimitedLineCount:  len(lines),
		Metadata: Metadata{
			Language:   language,
			Allocation: Allocation{CoreLines: len(lines)},
		},
	}
}

// Head keeps the first lineLimit lines. Callers use it when the engine
// cannot analyze a file at all, such as an unsupported extension.
func Head(lines []string, lineLimit int, language string, showIndicators bool) *Result {
	if lineLimit < 0 {
		lineLimit = 0
	}
	if len(lines) <= lineLimit {
		return passthrough(lines, language)
	}
	r := passthrough(lines[:lineLimit], language)
	r.OriginalLineCount = len(lines)
	if showIndicators {
		r.TruncationIndicators = []TruncationIndicator{{
			Type:        IndicatorBlock,
			Location:    IndicatorLocation{StartLine: lineLimit, EndLine: len(lines) - 1},
			Description: describeSpan(len(lines) - lineLimit),
		}}
	}
	return r
}
