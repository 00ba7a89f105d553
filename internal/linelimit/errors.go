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
	"errors"
	"fmt"

	rperrors "github.com/tombee/repopacker/pkg/errors"
)

// ErrorCode classifies line-limit failures.
type ErrorCode string

// Error codes reported by the engine.
const (
	CodeUnsupportedLanguage ErrorCode = "UNSUPPORTED_LANGUAGE"
	CodeLimitTooSmall       ErrorCode = "LIMIT_TOO_SMALL"
	CodeParseError          ErrorCode = "PARSE_ERROR"
	CodeAnalysisFailed      ErrorCode = "ANALYSIS_FAILED"
)

// Error is returned by Engine operations. Match it with errors.Is against the
// sentinels below or with the Is* helpers.
type Error struct {
	Code     ErrorCode
	Message  string
	FilePath string
	Language string
	Cause    error
}

func (e *Error) Error() string {
	if e.FilePath != "" {
		return fmt.Sprintf("line limit error [%s] %s: %s", e.Code, e.FilePath, e.Message)
	}
	return fmt.Sprintf("line limit error [%s]: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// IsUserVisible implements errors.UserVisibleError. Analysis failures are
// internal and the pack runner recovers from them.
func (e *Error) IsUserVisible() bool { return e.Code != CodeAnalysisFailed }

// UserMessage implements errors.UserVisibleError.
func (e *Error) UserMessage() string { return e.Message }

// Suggestion implements errors.UserVisibleError.
func (e *Error) Suggestion() string {
	switch e.Code {
	case CodeUnsupportedLanguage:
		return "Run 'repopacker languages' to list supported file extensions"
	case CodeLimitTooSmall:
		return "Use a line limit of at least 1"
	case CodeParseError:
		return "The file does not look like text; exclude it with --ignore"
	}
	return ""
}

// ErrorType implements errors.ErrorClassifier.
func (e *Error) ErrorType() string {
	switch e.Code {
	case CodeUnsupportedLanguage:
		return "unsupported_language"
	case CodeLimitTooSmall:
		return "validation"
	case CodeParseError:
		return "parse"
	}
	return "analysis"
}

// IsRetryable implements errors.ErrorClassifier.
func (e *Error) IsRetryable() bool { return false }

var (
	_ rperrors.UserVisibleError = (*Error)(nil)
	_ rperrors.ErrorClassifier  = (*Error)(nil)
)

// Sentinels for errors.Is.
var (
	ErrUnsupportedLanguage = &Error{Code: CodeUnsupportedLanguage, Message: "unsupported language"}
	ErrLimitTooSmall       = &Error{Code: CodeLimitTooSmall, Message: "line limit must be at least 1"}
	ErrParse               = &Error{Code: CodeParseError, Message: "content could not be parsed"}
	ErrAnalysisFailed      = &Error{Code: CodeAnalysisFailed, Message: "structural analysis failed"}

	// ErrEngineDisposed is returned by every call made after Dispose.
	ErrEngineDisposed = errors.New("line limit engine disposed")
)

// NewUnsupportedLanguageError reports a file whose extension maps to no
// registered strategy.
func NewUnsupportedLanguageError(filePath, language string) *Error {
	msg := "no language registered for file extension"
	if language != "" {
		msg = fmt.Sprintf("no strategy registered for language %q", language)
	}
	return &Error{Code: CodeUnsupportedLanguage, Message: msg, FilePath: filePath, Language: language}
}

// NewLimitTooSmallError reports a line limit below 1.
func NewLimitTooSmallError(limit int) *Error {
	return &Error{Code: CodeLimitTooSmall, Message: fmt.Sprintf("line limit must be at least 1, got %d", limit)}
}

// NewParseError reports content the engine cannot treat as source text.
func NewParseError(filePath, reason string) *Error {
	return &Error{Code: CodeParseError, Message: reason, FilePath: filePath}
}

func newAnalysisError(filePath, language string, cause error) *Error {
	return &Error{
		Code:     CodeAnalysisFailed,
		Message:  "structural analysis failed",
		FilePath: filePath,
		Language: language,
		Cause:    cause,
	}
}

// IsUnsupportedLanguage reports whether err is an unsupported-language error.
func IsUnsupportedLanguage(err error) bool { return errors.Is(err, ErrUnsupportedLanguage) }

// IsLimitTooSmall reports whether err is a limit-too-small error.
func IsLimitTooSmall(err error) bool { return errors.Is(err, ErrLimitTooSmall) }

// IsParseError reports whether err is a parse error.
func IsParseError(err error) bool { return errors.Is(err, ErrParse) }

// IsAnalysisFailed reports whether err is a recovered analysis failure.
func IsAnalysisFailed(err error) bool { return errors.Is(err, ErrAnalysisFailed) }
