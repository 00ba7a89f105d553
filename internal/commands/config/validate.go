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


package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tombee/repopacker/internal/commands/shared"
	"github.com/tombee/repopacker/internal/config"
	rperrors "github.com/tombee/repopacker/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ValidationResult represents the result of config validation.
type ValidationResult struct {
	Path     string   `json:"path"`
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// NewValidateCommand creates the 'config validate' subcommand.
func NewValidateCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validate the configuration file.

Checks performed:
  - YAML syntax and structure
  - Unknown keys (reported as warnings)
  - Value ranges for limits, pool sizes and concurrency
  - Log level and format names

Environment overrides are not applied. With --strict, warnings are
treated as errors.`,
		Example: `  repopacker config validate
  repopacker config validate --strict
  repopacker config validate --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				result := ValidationResult{
					Path:   path,
					Errors: []string{fmt.Sprintf("cannot read config file: %v. Run 'repopacker config init' to create one.", err)},
				}
				return outputValidationResult(cmd.OutOrStdout(), result, strict)
			}
			return outputValidationResult(cmd.OutOrStdout(), validateConfig(path, data), strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as errors")

	return cmd
}

// validateConfig checks raw config file contents on top of the defaults.
func validateConfig(path string, data []byte) ValidationResult {
	result := ValidationResult{Path: path}

	strictDec := yaml.NewDecoder(bytes.NewReader(data))
	strictDec.KnownFields(true)
	if err := strictDec.Decode(config.Default()); err != nil && !errors.Is(err, io.EOF) {
		var typeErr *yaml.TypeError
		if !errors.As(err, &typeErr) {
			result.Errors = append(result.Errors, fmt.Sprintf("YAML parsing error: %v", err))
			return result
		}
		for _, msg := range typeErr.Errors {
			if strings.Contains(msg, "not found in type") {
				result.Warnings = append(result.Warnings, msg)
			} else {
				result.Errors = append(result.Errors, msg)
			}
		}
	}

	cfg := config.Default()
	if err := yaml.Unmarshal(data, cfg); err != nil && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("YAML parsing error: %v", err))
	}
	if len(result.Errors) == 0 {
		if err := cfg.Validate(); err != nil {
			var cfgErr *rperrors.ConfigError
			if errors.As(err, &cfgErr) {
				result.Errors = append(result.Errors, strings.Split(cfgErr.Reason, "; ")...)
			} else {
				result.Errors = append(result.Errors, err.Error())
			}
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

func outputValidationResult(w io.Writer, result ValidationResult, strict bool) error {
	failed := !result.Valid || (strict && len(result.Warnings) > 0)

	if shared.GetJSON() {
		if err := shared.EmitJSON(w, result); err != nil {
			return err
		}
	} else {
		styler := shared.NewStyler(shared.UseColor(w))
		for _, e := range result.Errors {
			fmt.Fprintln(w, styler.Error(e))
		}
		for _, warn := range result.Warnings {
			fmt.Fprintln(w, styler.Warn(warn))
		}
		if !failed {
			fmt.Fprintln(w, styler.OK("Configuration is valid: "+result.Path))
		}
	}

	if failed {
		return shared.NewInvalidConfigError(fmt.Sprintf("configuration %s is invalid", result.Path), nil)
	}
	return nil
}
