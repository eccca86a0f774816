package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the calboard application
var rootCmd = &cobra.Command{
	Use:   "calboard",
	Short: "Aggregates calendars into a single read-only agenda",
	Long: `calboard fetches events from several Google calendars and ICS feeds in
parallel, merges them into one list sorted by start time and serves the
result as JSON.

It can run as:
  - An HTTP server with /api/events and /api/wall (default)
  - An MCP (Model Context Protocol) server for AI assistants over stdio
  - A one-shot CLI printing the agenda (events)`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "calboard version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
