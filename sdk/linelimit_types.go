package sdk

// LineLimitOptions configures ApplyLineLimit.
type LineLimitOptions struct {
	// FlattenStructure ranks all units on one priority scale instead of
	// allocating header, core and footer zones.
	FlattenStructure bool

	// HideIndicators omits the comment lines that mark truncated spans.
	HideIndicators bool

	// DisableCache skips the shared engine's result cache.
	DisableCache bool

	// MaxBytes is the maximum input size in bytes.
	// If 0, defaults to 10MB. Inputs exceeding this are rejected.
	MaxBytes int
}

// LineLimitText is the rendered outcome of ApplyLineLimit.
type LineLimitText struct {
	// Content is the kept lines joined with newlines, with indicator comments
	// in place of omitted spans.
	Content string

	// Truncated indicates whether any line was omitted.
	Truncated bool

	// OriginalLineCount is the line count of the input.
	OriginalLineCount int

	// TruncatedLineCount is the number of source lines kept, not counting
	// indicator comments.
	TruncatedLineCount int

	// LineLimit is the limit that was applied.
	LineLimit int

	// Language is the language id resolved from the file path.
	Language string

	// EstimatedTokens is the estimated token count of Content (chars/4).
	EstimatedTokens int
}

// DefaultMaxBytes is the default maximum input size (10MB).
const DefaultMaxBytes = 10 * 1024 * 1024
