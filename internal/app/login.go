package app

import (
	"context"
	"fmt"

	"github.com/stocktray/stocktray/internal/colors"
)

// TokenStore defines the credential operations login/logout need.
type TokenStore interface {
	SaveToken(token string) error
	DeleteToken() error
}

// TokenVerifier checks a token against the server before storing it.
type TokenVerifier interface {
	Verify(ctx context.Context) error
}

// LoginUseCase coordinates storing and removing the session token.
type LoginUseCase struct {
	store TokenStore
}

// NewLoginUseCase creates a new login use-case.
func NewLoginUseCase(store TokenStore) *LoginUseCase {
	if store == nil {
		panic("NewLoginUseCase: store dependency cannot be nil")
	}
	return &LoginUseCase{store: store}
}

// Execute verifies the token when a verifier is given and stores it in
// the system keyring.
func (u *LoginUseCase) Execute(ctx context.Context, token string, verifier TokenVerifier) error {
	if token == "" {
		return fmt.Errorf("login: token is required")
	}
	if verifier != nil {
		if err := verifier.Verify(ctx); err != nil {
			return fmt.Errorf("login: token rejected by server: %w", err)
		}
	}
	if err := u.store.SaveToken(token); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	colors.Success("Logged in")
	return nil
}

// ExecuteLogout removes the stored token. Logging out while not logged
// in is not an error.
func (u *LoginUseCase) ExecuteLogout() error {
	if err := u.store.DeleteToken(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	colors.Success("Logged out")
	return nil
}
