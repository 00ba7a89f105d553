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
	"log/slog"
	"os"

	"github.com/tombee/repopacker/internal/config"
	"github.com/tombee/repopacker/internal/log"
)

// Global flag values - set by root command
var (
	verboseFlag bool
	quietFlag   bool
	jsonFlag    bool
	configFlag  string

	// Build-time version information
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// RegisterFlagPointers returns pointers to flag variables for binding.
// Called by root command to register flags.
func RegisterFlagPointers() (*bool, *bool, *bool, *string) {
	return &verboseFlag, &quietFlag, &jsonFlag, &configFlag
}

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	version = v
	commit = c
	buildDate = b
}

// GetVerbose returns the verbose flag value
func GetVerbose() bool {
	return verboseFlag
}

// GetQuiet returns the quiet flag value
func GetQuiet() bool {
	return quietFlag
}

// GetJSON returns the JSON output flag value
func GetJSON() bool {
	return jsonFlag
}

// GetConfigPath returns the config file path
func GetConfigPath() string {
	return configFlag
}

// GetVersion returns version information
func GetVersion() (string, string, string) {
	return version, commit, buildDate
}

// SetConfigPathForTest sets the config path for testing purposes
func SetConfigPathForTest(path string) {
	configFlag = path
}

// LoadConfig loads configuration from --config, the default path and the
// environment.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, NewInvalidConfigError("failed to load configuration", err)
	}
	return cfg, nil
}

// NewLogger builds the command logger. Logs go to stderr so stdout carries
// only command output. --verbose lowers the level to debug and --quiet
// raises it to error.
func NewLogger(cfg *config.Config) *slog.Logger {
	logCfg := log.FromEnv()
	logCfg.Output = os.Stderr
	if cfg != nil && os.Getenv("REPOPACKER_LOG_LEVEL") == "" && os.Getenv("REPOPACKER_DEBUG") == "" {
		logCfg.Level = cfg.Log.Level
		logCfg.Format = log.Format(cfg.Log.Format)
	}
	switch {
	case verboseFlag:
		logCfg.Level = "debug"
	case quietFlag:
		logCfg.Level = "error"
	}
	return log.New(logCfg)
}
