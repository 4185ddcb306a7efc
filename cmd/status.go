/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/stocktray/stocktray/internal/app"
	"github.com/stocktray/stocktray/internal/colors"
	"github.com/stocktray/stocktray/internal/domain"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show notification status summary",
	Long: `Show notification status summary.

Prints the total and unread counts plus per-category breakdown. Falls
back to the locally cached list when the store is unreachable.

OPTIONS:
    --json    Output as JSON`,
	RunE: runStatus,
}

var statusJSON bool

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	session, err := app.NewSession()
	if err != nil {
		return err
	}
	defer session.Close()

	session.Store.Begin()
	if cached, err := session.Cache.Load(); err == nil && len(cached) > 0 {
		session.Store.RestoreFromCache(cached)
	}
	if _, err := session.Store.LoadSnapshot(cmd.Context(), 1, domain.FilterAll); err != nil {
		colors.Warning("store unreachable, showing cached notifications")
	}

	uc := app.NewStatusUseCase(session.Store)
	return uc.Execute(app.StatusOptions{JSON: statusJSON}, cmd.OutOrStdout())
}
