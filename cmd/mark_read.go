/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/stocktray/stocktray/internal/app"
	"github.com/stocktray/stocktray/internal/domain"
)

// markReadCmd represents the mark-read command
var markReadCmd = &cobra.Command{
	Use:   "mark-read [id]",
	Short: "Mark a notification as read",
	Long: `Mark a notification as read.

Applies the change locally first and then confirms it with the server;
a server failure leaves the local state read and reports the error.

EXAMPLES:
    stocktray mark-read 1a2b3c     # Mark one notification
    stocktray mark-read --all      # Mark everything`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMarkRead,
}

var markReadAll bool

func init() {
	markReadCmd.Flags().BoolVar(&markReadAll, "all", false, "mark every notification as read")
	rootCmd.AddCommand(markReadCmd)
}

func runMarkRead(cmd *cobra.Command, args []string) error {
	session, err := app.NewSession()
	if err != nil {
		return err
	}
	defer session.Close()

	session.Store.Begin()
	if _, err := session.Store.LoadSnapshot(cmd.Context(), 1, domain.FilterAll); err != nil {
		return err
	}

	uc := app.NewMarkReadUseCase(session.Store)
	if markReadAll {
		return uc.ExecuteAll(cmd.Context())
	}
	if len(args) == 0 {
		return cmd.Help()
	}
	return uc.Execute(cmd.Context(), args[0])
}
