/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/stocktray/stocktray/internal/api"
	"github.com/stocktray/stocktray/internal/app"
	"github.com/stocktray/stocktray/internal/config"
	"github.com/stocktray/stocktray/internal/credential"
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a session token in the system keyring",
	Long: `Store a session token in the system keyring.

The token is read from the --token flag or, when omitted, from stdin.
When a server is configured the token is verified against it before
being stored.

EXAMPLES:
    stocktray login --token eyJhbGci...
    cat token.txt | stocktray login`,
	RunE: runLogin,
}

var loginToken string

func init() {
	loginCmd.Flags().StringVar(&loginToken, "token", "", "session token (read from stdin when omitted)")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	token := loginToken
	if token == "" {
		reader := bufio.NewReader(cmd.InOrStdin())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("login: failed to read token from stdin: %w", err)
		}
		token = strings.TrimSpace(line)
	}

	uc := app.NewLoginUseCase(credential.NewStore())

	var verifier app.TokenVerifier
	cfg, err := config.Load()
	if err == nil && cfg.ServerURL != "" {
		verifier = api.NewClient(cfg.ServerURL, token, 10*time.Second)
	} else if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not load config, skipping token verification: %v\n", err)
	}

	return uc.Execute(cmd.Context(), token, verifier)
}
