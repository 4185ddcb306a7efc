/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/stocktray/stocktray/internal/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stocktray",
	Short: "A notification tray for your inventory platform, in the terminal.",
	Long: `A notification tray for your inventory platform, in the terminal.

Streams pushed notifications over the realtime channel, reconciles them
with the server's notification store and keeps a local unread count.
Run without a subcommand to open the interactive tray.`,
	RunE: runTray,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = version.String()
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.SilenceUsage = true
}
