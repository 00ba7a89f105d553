package truncate

import (
	"errors"
	"strings"
)

const (
	defaultMaxNestingDepth = 1000
)

var (
	ErrMaxNestingDepthExceeded = errors.New("maximum nesting depth exceeded")
)

// stripState represents the current parsing state in the stripper state machine.
type stripState int

const (
	stateNormal stripState = iota
	stateSingleLineComment
	stateMultiLineComment
	stateDoubleQuoteString
	stateSingleQuoteString
	stateBacktickString
	stateTripleDoubleQuoteString
	stateTripleSingleQuoteString
)

// Stripper removes string literals and comments from code while preserving
// structure (line breaks, character positions) for bracket counting.
type Stripper struct {
	singleLineComment string
	extraLineComment  string
	multiOpen         string
	multiClose        string
	charLiterals      bool
	keepStrings       bool
	maxDepth          int
}

// StripperOption configures a Stripper.
type StripperOption func(*Stripper)

// WithCharLiterals treats a single quote as a character literal only when it
// closes within a few bytes. Other single quotes (Rust lifetimes, Kotlin
// generics variance) are left as code.
func WithCharLiterals() StripperOption {
	return func(s *Stripper) {
		s.charLiterals = true
	}
}

// WithLineComment adds a second single-line comment prefix, such as "#" in PHP.
func WithLineComment(prefix string) StripperOption {
	return func(s *Stripper) {
		s.extraLineComment = prefix
	}
}

// WithStringsKept leaves string and character literals in place so that only
// comments are blanked.
func WithStringsKept() StripperOption {
	return func(s *Stripper) {
		s.keepStrings = true
	}
}

// NewStripper creates a stripper for the given comment syntax.
// Pass empty strings for unsupported comment types.
func NewStripper(singleLineComment, multiOpen, multiClose string, opts ...StripperOption) *Stripper {
	s := &Stripper{
		singleLineComment: singleLineComment,
		multiOpen:         multiOpen,
		multiClose:        multiClose,
		maxDepth:          defaultMaxNestingDepth,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Strip removes strings and comments from content, replacing them with spaces.
// Line structure and character positions are preserved for accurate bracket counting.
// Returns error if nesting depth exceeds safety limit.
func (s *Stripper) Strip(content string) (string, error) {
	if content == "" {
		return "", nil
	}

	var result strings.Builder
	result.Grow(len(content))

	state := stateNormal
	escaped := false
	depth := 0
	i := 0

	for i < len(content) {
		ch := content[i]

		// Check nesting depth to prevent stack overflow attacks
		if depth > s.maxDepth {
			return "", ErrMaxNestingDepthExceeded
		}

		switch state {
		case stateNormal:
			// Check for triple-quoted strings first (Python)
			if i+2 < len(content) && content[i:i+3] == `"""` {
				result.WriteString(s.literalText(content[i : i+3]))
				i += 3
				state = stateTripleDoubleQuoteString
				depth++
				continue
			}
			if i+2 < len(content) && content[i:i+3] == "'''" {
				result.WriteString(s.literalText(content[i : i+3]))
				i += 3
				state = stateTripleSingleQuoteString
				depth++
				continue
			}

			// Check for multi-line comment
			if s.multiOpen != "" && strings.HasPrefix(content[i:], s.multiOpen) {
				result.WriteString(strings.Repeat(" ", len(s.multiOpen)))
				i += len(s.multiOpen)
				state = stateMultiLineComment
				depth++
				continue
			}

			// Check for single-line comment
			if prefix := s.lineCommentAt(content, i); prefix != "" {
				result.WriteString(strings.Repeat(" ", len(prefix)))
				i += len(prefix)
				state = stateSingleLineComment
				depth++
				continue
			}

			// Check for string literals
			if ch == '"' {
				s.literal(&result, ch)
				i++
				state = stateDoubleQuoteString
				depth++
				continue
			}
			if ch == '\'' && s.charLiterals {
				if n := charLiteralLen(content, i); n > 0 {
					result.WriteString(s.literalText(content[i : i+n]))
					i += n
					continue
				}
				result.WriteByte(ch)
				i++
				continue
			}
			if ch == '\'' {
				s.literal(&result, ch)
				i++
				state = stateSingleQuoteString
				depth++
				continue
			}
			if ch == '`' {
				s.literal(&result, ch)
				i++
				state = stateBacktickString
				depth++
				continue
			}

			// Normal code character
			result.WriteByte(ch)
			i++

		case stateSingleLineComment:
			if ch == '\n' {
				result.WriteByte('\n')
				state = stateNormal
				depth--
			} else {
				result.WriteByte(' ')
			}
			i++

		case stateMultiLineComment:
			if s.multiClose != "" && strings.HasPrefix(content[i:], s.multiClose) {
				result.WriteString(strings.Repeat(" ", len(s.multiClose)))
				i += len(s.multiClose)
				state = stateNormal
				depth--
				continue
			}

			// Preserve newlines for line structure
			if ch == '\n' {
				result.WriteByte('\n')
			} else {
				result.WriteByte(' ')
			}
			i++

		case stateDoubleQuoteString:
			if escaped {
				s.literal(&result, ch)
				escaped = false
				i++
				continue
			}

			if ch == '\\' {
				s.literal(&result, ch)
				escaped = true
				i++
				continue
			}

			if ch == '"' {
				s.literal(&result, ch)
				state = stateNormal
				depth--
				i++
				continue
			}

			// Preserve newlines (though uncommon in non-raw strings)
			if ch == '\n' {
				result.WriteByte('\n')
			} else {
				s.literal(&result, ch)
			}
			i++

		case stateSingleQuoteString:
			if escaped {
				s.literal(&result, ch)
				escaped = false
				i++
				continue
			}

			if ch == '\\' {
				s.literal(&result, ch)
				escaped = true
				i++
				continue
			}

			if ch == '\'' {
				s.literal(&result, ch)
				state = stateNormal
				depth--
				i++
				continue
			}

			// Preserve newlines
			if ch == '\n' {
				result.WriteByte('\n')
			} else {
				s.literal(&result, ch)
			}
			i++

		case stateBacktickString:
			// Backquote strings (Go raw strings, JS template literals)
			// No escape sequences in Go raw strings
			// JS template literals can have ${} but we're just stripping
			if ch == '`' {
				s.literal(&result, ch)
				state = stateNormal
				depth--
				i++
				continue
			}

			// Preserve newlines
			if ch == '\n' {
				result.WriteByte('\n')
			} else {
				s.literal(&result, ch)
			}
			i++

		case stateTripleDoubleQuoteString:
			if strings.HasPrefix(content[i:], `"""`) {
				result.WriteString(s.literalText(content[i : i+3]))
				i += 3
				state = stateNormal
				depth--
				continue
			}

			// Preserve newlines
			if ch == '\n' {
				result.WriteByte('\n')
			} else {
				s.literal(&result, ch)
			}
			i++

		case stateTripleSingleQuoteString:
			if strings.HasPrefix(content[i:], "'''") {
				result.WriteString(s.literalText(content[i : i+3]))
				i += 3
				state = stateNormal
				depth--
				continue
			}

			// Preserve newlines
			if ch == '\n' {
				result.WriteByte('\n')
			} else {
				s.literal(&result, ch)
			}
			i++
		}
	}

	return result.String(), nil
}

// literal writes one byte of a string literal.
func (s *Stripper) literal(b *strings.Builder, ch byte) {
	if s.keepStrings || ch == '\n' {
		b.WriteByte(ch)
		return
	}
	b.WriteByte(' ')
}

func (s *Stripper) literalText(text string) string {
	if s.keepStrings {
		return text
	}
	return strings.Repeat(" ", len(text))
}

func (s *Stripper) lineCommentAt(content string, i int) string {
	if s.singleLineComment != "" && strings.HasPrefix(content[i:], s.singleLineComment) {
		return s.singleLineComment
	}
	if s.extraLineComment != "" && strings.HasPrefix(content[i:], s.extraLineComment) {
		return s.extraLineComment
	}
	return ""
}

// charLiteralLen returns the byte length of the character literal starting
// at content[i], or 0 when the quote does not open one.
func charLiteralLen(content string, i int) int {
	const maxLiteral = 12
	limit := i + maxLiteral
	if limit > len(content) {
		limit = len(content)
	}
	if i+1 >= limit {
		return 0
	}
	if content[i+1] == '\\' {
		for j := i + 3; j < limit; j++ {
			if content[j] == '\n' {
				return 0
			}
			if content[j] == '\'' {
				return j - i + 1
			}
		}
		return 0
	}
	// Plain literal: one rune followed by the closing quote.
	for j := i + 2; j < limit && j <= i+5; j++ {
		if content[j] == '\'' {
			if content[i+1] == '\n' {
				return 0
			}
			if j == i+2 || content[i+1] >= 0x80 {
				return j - i + 1
			}
			return 0
		}
	}
	return 0
}
