/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/stocktray/stocktray/internal/app"
	"github.com/stocktray/stocktray/internal/domain"
)

// followCmd represents the follow command
var followCmd = &cobra.Command{
	Use:   "follow",
	Short: "Stream pushed notifications in real-time",
	Long: `Stream pushed notifications in real-time.

Connects to the realtime channel and prints each notification as it
arrives. Dropped connections are retried with exponential backoff.

OPTIONS:
    --filter <filter>  Filter: all, unread, stock, approvals (default: all)

EXAMPLES:
    stocktray follow
    stocktray follow --filter stock`,
	RunE: runFollow,
}

var followFilter string

func init() {
	followCmd.Flags().StringVar(&followFilter, "filter", "all", "filter: all, unread, stock, approvals")
	rootCmd.AddCommand(followCmd)
}

func runFollow(cmd *cobra.Command, args []string) error {
	filter, err := domain.ParseFilter(followFilter)
	if err != nil {
		return err
	}

	session, err := app.NewSession()
	if err != nil {
		return err
	}
	defer session.Close()

	uc := app.NewFollowUseCase()
	return uc.Execute(cmd.Context(), app.FollowOptions{
		Channel: session.Channel,
		Token:   session.Token,
		Filter:  filter,
		Output:  cmd.OutOrStdout(),
	})
}
