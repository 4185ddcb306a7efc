/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/stocktray/stocktray/internal/app"
	"github.com/stocktray/stocktray/internal/credential"
)

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.NewLoginUseCase(credential.NewStore()).ExecuteLogout()
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
