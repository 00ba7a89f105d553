package sdk

import (
	"context"
	"strings"
	"sync"

	"github.com/tombee/repopacker/internal/linelimit"
	rperrors "github.com/tombee/repopacker/pkg/errors"
)

var (
	sharedEngineOnce sync.Once
	sharedEngine     *linelimit.Engine
)

// engine returns the process-wide engine, creating it on first use.
func engine() *linelimit.Engine {
	sharedEngineOnce.Do(func() {
		sharedEngine = linelimit.New()
	})
	return sharedEngine
}

// ApplyLineLimit keeps at most lineLimit lines of content, choosing them by
// the structure of the language that filePath's extension maps to. Omitted
// spans are replaced by a comment line such as
//
//	// ... 12 lines truncated ...
//
// using the comment syntax of the language. Indicator comments do not count
// against lineLimit.
//
// ApplyLineLimit is safe for concurrent use. All calls share one engine, so
// repeated calls with the same input are served from its cache.
//
// Example usage:
//
//	out, err := sdk.ApplyLineLimit(ctx, src, "server.go", 200, sdk.LineLimitOptions{})
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("kept %d of %d lines\n", out.TruncatedLineCount, out.OriginalLineCount)
//
// Returns an error if:
//   - lineLimit is below 1 (linelimit.IsLimitTooSmall)
//   - the extension maps to no supported language (linelimit.IsUnsupportedLanguage)
//   - content exceeds MaxBytes or options are invalid (*LineLimitError)
func ApplyLineLimit(ctx context.Context, content, filePath string, lineLimit int, opts LineLimitOptions) (LineLimitText, error) {
	if err := validateLineLimitOptions(opts); err != nil {
		return LineLimitText{}, err
	}
	maxBytes := opts.MaxBytes
	if maxBytes == 0 {
		maxBytes = DefaultMaxBytes
	}
	if len(content) > maxBytes {
		return LineLimitText{}, NewInputTooLargeError()
	}

	cfg := linelimit.Config{
		LineLimit:                lineLimit,
		PreserveStructure:        !opts.FlattenStructure,
		ShowTruncationIndicators: !opts.HideIndicators,
		EnableCaching:            !opts.DisableCache,
	}
	result, err := engine().ApplyLineLimit(ctx, content, filePath, cfg)
	if err != nil {
		return LineLimitText{}, err
	}

	rendered := engine().Render(result, strings.Split(content, "\n"))
	return LineLimitText{
		Content:            rendered,
		Truncated:          result.Truncated(),
		OriginalLineCount:  result.OriginalLineCount,
		TruncatedLineCount: result.LimitedLineCount,
		LineLimit:          lineLimit,
		Language:           result.Metadata.Language,
		EstimatedTokens:    estimateTokens(rendered),
	}, nil
}

// validateLineLimitOptions checks that all options are valid.
func validateLineLimitOptions(opts LineLimitOptions) error {
	if opts.MaxBytes < 0 {
		err := NewInvalidOptionsError("MaxBytes cannot be negative")
		err.Cause = &rperrors.ValidationError{
			Field:      "MaxBytes",
			Message:    "cannot be negative",
			Suggestion: "use 0 for the default limit",
		}
		return err
	}
	return nil
}

// estimateTokens estimates the token count using the chars/4 heuristic.
func estimateTokens(content string) int {
	return (len(content) + 3) / 4 // Round up
}
