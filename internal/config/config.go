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

// Package config loads repopacker settings from a YAML file, a .env file,
// REPOPACKER_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tombee/repopacker/internal/linelimit"
	"github.com/tombee/repopacker/internal/syntax"
	rperrors "github.com/tombee/repopacker/pkg/errors"
)

// Config holds all repopacker settings.
type Config struct {
	// LineLimit is the maximum number of lines kept per file.
	LineLimit int `json:"line_limit" yaml:"line_limit"`

	// PreserveStructure allocates lines to header, core and footer zones.
	PreserveStructure bool `json:"preserve_structure" yaml:"preserve_structure"`

	// ShowIndicators marks omitted spans in the output.
	ShowIndicators bool `json:"show_indicators" yaml:"show_indicators"`

	// EnableCaching reuses results for identical inputs within a process.
	EnableCaching bool `json:"enable_caching" yaml:"enable_caching"`

	// CacheSize is the number of results the engine caches.
	CacheSize int `json:"cache_size" yaml:"cache_size"`

	// ParserPoolSize is the number of idle parsers kept per grammar.
	ParserPoolSize int `json:"parser_pool_size" yaml:"parser_pool_size"`

	// Concurrency is the number of files processed in parallel.
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// Include lists doublestar patterns of files to pack. Empty means every
	// file with a supported extension.
	Include []string `json:"include,omitempty" yaml:"include,omitempty"`

	// Ignore lists doublestar patterns of files to skip.
	Ignore []string `json:"ignore,omitempty" yaml:"ignore,omitempty"`

	// Log configures logging.
	Log LogConfig `json:"log" yaml:"log"`

	// MCP configures the MCP tool server.
	MCP MCPConfig `json:"mcp" yaml:"mcp"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `json:"level" yaml:"level"`

	// Format is json or text.
	Format string `json:"format" yaml:"format"`
}

// MCPConfig configures the MCP tool server.
type MCPConfig struct {
	// RequestsPerSecond limits tool calls. Zero disables limiting.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`

	// Burst is the number of calls allowed at once above the rate.
	Burst int `json:"burst" yaml:"burst"`
}

// DefaultIgnore lists patterns skipped unless the config replaces them.
var DefaultIgnore = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/vendor/**",
	"**/dist/**",
	"**/build/**",
	"**/*.min.js",
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		LineLimit:         200,
		PreserveStructure: true,
		ShowIndicators:    true,
		EnableCaching:     true,
		CacheSize:         linelimit.DefaultCacheSize,
		ParserPoolSize:    syntax.DefaultPoolSize,
		Concurrency:       4,
		Ignore:            append([]string(nil), DefaultIgnore...),
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		MCP: MCPConfig{
			RequestsPerSecond: 20,
			Burst:             40,
		},
	}
}

// Load loads configuration from an optional YAML file and then from the
// environment. A .env file in the working directory is loaded first; it never
// overrides variables already set. If configPath is empty the default path
// is used when that file exists.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	path := configPath
	if path == "" {
		if p, err := ConfigPath(); err == nil {
			if _, statErr := os.Stat(p); statErr == nil {
				path = p
			}
		}
	}
	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, &rperrors.ConfigError{
				Key:    "config_file",
				Reason: fmt.Sprintf("failed to load from %s", path),
				Cause:  err,
			}
		}
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func (c *Config) loadFromFile(path string) error {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return rperrors.Wrap(err, "failed to get home directory")
		}
		path = filepath.Join(home, path[2:])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return rperrors.Wrap(err, "failed to read config file")
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return rperrors.Wrapf(err, "failed to parse YAML in %s", path)
	}
	return nil
}

// loadFromEnv applies REPOPACKER_* overrides.
func (c *Config) loadFromEnv() error {
	ints := []struct {
		key string
		dst *int
	}{
		{"REPOPACKER_LINE_LIMIT", &c.LineLimit},
		{"REPOPACKER_CACHE_SIZE", &c.CacheSize},
		{"REPOPACKER_PARSER_POOL_SIZE", &c.ParserPoolSize},
		{"REPOPACKER_CONCURRENCY", &c.Concurrency},
	}
	for _, e := range ints {
		val := os.Getenv(e.key)
		if val == "" {
			continue
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			return &rperrors.ConfigError{Key: e.key, Reason: fmt.Sprintf("not an integer: %q", val), Cause: err}
		}
		*e.dst = n
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"REPOPACKER_PRESERVE_STRUCTURE", &c.PreserveStructure},
		{"REPOPACKER_SHOW_INDICATORS", &c.ShowIndicators},
		{"REPOPACKER_ENABLE_CACHING", &c.EnableCaching},
	}
	for _, e := range bools {
		val := os.Getenv(e.key)
		if val == "" {
			continue
		}
		b, err := strconv.ParseBool(val)
		if err != nil {
			return &rperrors.ConfigError{Key: e.key, Reason: fmt.Sprintf("not a boolean: %q", val), Cause: err}
		}
		*e.dst = b
	}

	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = strings.ToLower(val)
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = strings.ToLower(val)
	}
	return nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs []string

	if c.LineLimit < 1 {
		errs = append(errs, fmt.Sprintf("line_limit must be at least 1, got %d", c.LineLimit))
	}
	if c.CacheSize < 1 {
		errs = append(errs, fmt.Sprintf("cache_size must be positive, got %d", c.CacheSize))
	}
	if c.ParserPoolSize < 1 {
		errs = append(errs, fmt.Sprintf("parser_pool_size must be positive, got %d", c.ParserPoolSize))
	}
	if c.Concurrency < 1 {
		errs = append(errs, fmt.Sprintf("concurrency must be positive, got %d", c.Concurrency))
	}

	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level must be one of [trace, debug, info, warn, error], got %q", c.Log.Level))
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("log.format must be one of [json, text], got %q", c.Log.Format))
	}

	if c.MCP.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Sprintf("mcp.requests_per_second cannot be negative, got %v", c.MCP.RequestsPerSecond))
	}
	if c.MCP.RequestsPerSecond > 0 && c.MCP.Burst < 1 {
		errs = append(errs, fmt.Sprintf("mcp.burst must be positive when rate limiting, got %d", c.MCP.Burst))
	}

	if len(errs) > 0 {
		return &rperrors.ConfigError{
			Key:    "validation",
			Reason: strings.Join(errs, "; "),
		}
	}
	return nil
}

// EngineConfig returns the per-call engine settings.
func (c *Config) EngineConfig() linelimit.Config {
	return linelimit.Config{
		LineLimit:                c.LineLimit,
		PreserveStructure:        c.PreserveStructure,
		ShowTruncationIndicators: c.ShowIndicators,
		EnableCaching:            c.EnableCaching,
	}
}

// EngineOptions returns the engine constructor options.
func (c *Config) EngineOptions() []linelimit.Option {
	return []linelimit.Option{
		linelimit.WithCacheSize(c.CacheSize),
		linelimit.WithParserPoolSize(c.ParserPoolSize),
	}
}
