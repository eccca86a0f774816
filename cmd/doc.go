// Package cmd implements the command-line interface for calboard.
//
// This package provides the following commands:
//   - serve: Start the HTTP API, or the MCP server with --transport stdio
//   - events: Print the aggregated agenda once as JSON
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// The serve command is the default command when no subcommand is specified.
package cmd
