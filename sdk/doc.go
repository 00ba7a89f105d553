// Package sdk exposes the repopacker line-limit engine to Go programs that
// want structure-aware truncation without running the CLI.
//
// # Quick Start
//
//	import "github.com/tombee/repopacker/sdk"
//
//	func summarize(ctx context.Context, path string) (string, error) {
//		src, err := os.ReadFile(path)
//		if err != nil {
//			return "", err
//		}
//		out, err := sdk.ApplyLineLimit(ctx, string(src), path, 120, sdk.LineLimitOptions{})
//		if err != nil {
//			return "", err
//		}
//		return out.Content, nil
//	}
//
// The language is chosen from the file extension. Lines are kept by zone:
// imports and leading declarations first, then whole functions ranked by a
// complexity score, then entry points near the end of the file. Omitted spans
// are marked with comments in the language's own syntax.
//
// # Errors
//
// Engine failures are *linelimit.Error values; use linelimit.IsLimitTooSmall
// and linelimit.IsUnsupportedLanguage to tell them apart. Inputs rejected
// before reaching the engine return *LineLimitError.
//
// # Thread Safety
//
// ApplyLineLimit is safe for concurrent use. All calls share one engine and
// its result cache for the life of the process.
package sdk
