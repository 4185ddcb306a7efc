/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/stocktray/stocktray/internal/app"
	"github.com/stocktray/stocktray/internal/domain"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications from the store",
	Long: `List notifications from the store.

OPTIONS:
    --filter <filter>  Filter: all, unread, stock, approvals (default: all)
    --all              Fetch every page, not just the first
    --json             Output as JSON

EXAMPLES:
    stocktray list                    # First page, newest first
    stocktray list --filter unread    # Only unread
    stocktray list --all --json       # Everything, machine-readable`,
	RunE: runList,
}

var (
	listFilter string
	listAll    bool
	listJSON   bool
)

func init() {
	listCmd.Flags().StringVar(&listFilter, "filter", "all", "filter: all, unread, stock, approvals")
	listCmd.Flags().BoolVar(&listAll, "all", false, "fetch every page")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	filter, err := domain.ParseFilter(listFilter)
	if err != nil {
		return err
	}

	session, err := app.NewSession()
	if err != nil {
		return err
	}
	defer session.Close()
	session.Store.Begin()

	uc := app.NewListUseCase(session.Store)
	return uc.Execute(cmd.Context(), app.ListOptions{
		Filter: filter,
		All:    listAll,
		JSON:   listJSON,
	}, cmd.OutOrStdout())
}
