// Package cmd contains the docuchat CLI commands.
//
// Design: following the pattern used by kubectl, hugo, and other
// standard Go CLI tools, all application logic is contained in
// the cmd package, leaving main.go as a minimal entry point.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "docuchat",
	Short: "docuchat - ask questions about ingested documents",
	Long: `docuchat is an HTTP service that ingests documents (web pages or
PDF uploads), converts them into semantic embeddings, and answers
natural-language questions against the stored content.

Running docuchat without a subcommand starts the HTTP server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
