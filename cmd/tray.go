/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/stocktray/stocktray/internal/app"
	"github.com/stocktray/stocktray/internal/tui"
)

// trayCmd represents the tray command
var trayCmd = &cobra.Command{
	Use:   "tray",
	Short: "Open the interactive notification tray",
	Long: `Open the interactive notification tray.

Shows live notifications with an unread badge and connection indicator.
Pushed notifications appear as they arrive; the list is reconciled with
the server's notification store in the background.

KEYS:
    ↑/k, ↓/j    Move
    enter/r     Mark selected as read
    a           Mark all as read
    g           Refresh from the store
    m           Load more
    q           Quit`,
	RunE: runTray,
}

func init() {
	rootCmd.AddCommand(trayCmd)
}

func runTray(cmd *cobra.Command, args []string) error {
	session, err := app.NewSession()
	if err != nil {
		return err
	}
	defer session.Close()

	session.Start(cmd.Context())

	model := tui.NewModel(session.Store, session.Logger)
	program := tea.NewProgram(model, tea.WithAltScreen())
	session.Store.SetOnChange(tui.ChangeListener(program))

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tray: %w", err)
	}
	return nil
}
