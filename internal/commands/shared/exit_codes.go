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

package shared

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tombee/repopacker/internal/linelimit"
	rperrors "github.com/tombee/repopacker/pkg/errors"
)

// Exit codes for repopacker commands
const (
	ExitSuccess          = 0
	ExitFailed           = 1
	ExitInvalidConfig    = 2
	ExitUnsupportedInput = 3
)

// ExitError is an error that carries an exit code
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewFailedError creates an error for a run that could not complete
func NewFailedError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitFailed, Message: msg, Cause: cause}
}

// NewInvalidConfigError creates an error for bad configuration or flags
func NewInvalidConfigError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitInvalidConfig, Message: msg, Cause: cause}
}

// NewUnsupportedInputError creates an error for input the engine cannot handle
func NewUnsupportedInputError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitUnsupportedInput, Message: msg, Cause: cause}
}

// Classify wraps err in an ExitError chosen from its type. ExitErrors are
// returned unchanged.
func Classify(msg string, err error) error {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}

	var cfgErr *rperrors.ConfigError
	var valErr *rperrors.ValidationError
	switch {
	case errors.As(err, &cfgErr), errors.As(err, &valErr), linelimit.IsLimitTooSmall(err):
		return NewInvalidConfigError(msg, err)
	case linelimit.IsUnsupportedLanguage(err), linelimit.IsParseError(err):
		return NewUnsupportedInputError(msg, err)
	}
	return NewFailedError(msg, err)
}

// ExitCode returns the process exit code for err.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailed
}

// HandleExitError prints err and exits with its code
func HandleExitError(err error) {
	if err == nil {
		return
	}
	printError(os.Stderr, err)
	os.Exit(ExitCode(err))
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, "Error:", err.Error())
	printUserVisibleSuggestion(w, err)
}

// printUserVisibleSuggestion prints the suggestion of the first
// UserVisibleError in the chain.
func printUserVisibleSuggestion(w io.Writer, err error) {
	for err != nil {
		if userErr, ok := err.(rperrors.UserVisibleError); ok {
			if userErr.IsUserVisible() {
				if suggestion := userErr.Suggestion(); suggestion != "" {
					fmt.Fprintf(w, "\nSuggestion: %s\n", suggestion)
				}
			}
			return
		}
		err = errors.Unwrap(err)
	}
}
