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


/*
Package cli provides the root command for the repopacker CLI.

It creates the Cobra command tree root and owns the global concerns:
version information, persistent flags and exit code handling. Individual
commands live in the internal/commands subpackages.

# Command Tree

	repopacker
	├── pack          Pack a directory with line limits applied
	├── languages     List supported languages
	├── config        Show, create and validate configuration
	├── mcp-server    Serve the engine over MCP (stdio)
	├── version       Show version
	└── help          Show help

# Usage

From main.go:

	cli.SetVersion(version, commit, date)
	rootCmd := cli.NewRootCommand()
	// ... add commands ...
	if err := rootCmd.Execute(); err != nil {
	    cli.HandleExitError(err)
	}

# Global Flags

	--verbose, -v    Enable debug logging
	--quiet, -q      Suppress non-error output
	--json           Output in JSON format
	--config         Path to config file

# Exit Codes

  - 0: Success
  - 1: Run failed
  - 2: Invalid configuration or flags
  - 3: Unsupported input
*/
package cli
