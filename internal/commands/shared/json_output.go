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
	"encoding/json"
	"errors"
	"io"

	"github.com/tombee/repopacker/internal/linelimit"
)

// JSONResponse is the base envelope for all JSON output
type JSONResponse struct {
	Version string `json:"@version"`
	Command string `json:"command"`
	Success bool   `json:"success"`
}

// JSONError represents a structured error with code, message and suggestion
type JSONError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	File       string `json:"file,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// EmitJSON writes v to w as indented JSON.
func EmitJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// EmitJSONError writes a failed response envelope for err.
func EmitJSONError(w io.Writer, command string, err error) error {
	type errorResponse struct {
		JSONResponse
		Errors []JSONError `json:"errors"`
	}

	return EmitJSON(w, errorResponse{
		JSONResponse: JSONResponse{Version: "1.0", Command: command, Success: false},
		Errors:       []JSONError{toJSONError(err)},
	})
}

func toJSONError(err error) JSONError {
	je := JSONError{Code: "FAILED", Message: err.Error()}

	var llErr *linelimit.Error
	if errors.As(err, &llErr) {
		je.Code = string(llErr.Code)
		je.File = llErr.FilePath
		je.Suggestion = llErr.Suggestion()
		return je
	}
	switch ExitCode(err) {
	case ExitInvalidConfig:
		je.Code = "INVALID_CONFIG"
	case ExitUnsupportedInput:
		je.Code = "UNSUPPORTED_INPUT"
	}
	return je
}
