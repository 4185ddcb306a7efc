package app

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocktray/stocktray/internal/colors"
)

type fakeTokenStore struct {
	saved   string
	deleted bool
	err     error
}

func (f *fakeTokenStore) SaveToken(token string) error {
	f.saved = token
	return f.err
}

func (f *fakeTokenStore) DeleteToken() error {
	f.deleted = true
	return f.err
}

type fakeVerifier struct {
	err error
}

func (f *fakeVerifier) Verify(ctx context.Context) error { return f.err }

func TestLoginUseCase_Execute(t *testing.T) {
	var out, errOut bytes.Buffer
	restore := colors.SetOutputs(&out, &errOut)
	defer restore()

	store := &fakeTokenStore{}
	uc := NewLoginUseCase(store)

	err := uc.Execute(context.Background(), "secret-token", &fakeVerifier{})
	require.NoError(t, err)
	assert.Equal(t, "secret-token", store.saved)
	assert.Contains(t, out.String(), "Logged in")
}

func TestLoginUseCase_EmptyToken(t *testing.T) {
	uc := NewLoginUseCase(&fakeTokenStore{})

	err := uc.Execute(context.Background(), "", nil)
	require.Error(t, err)
}

func TestLoginUseCase_VerifierRejects(t *testing.T) {
	store := &fakeTokenStore{}
	uc := NewLoginUseCase(store)

	err := uc.Execute(context.Background(), "bad", &fakeVerifier{err: errors.New("401")})
	require.Error(t, err)
	assert.Empty(t, store.saved, "rejected token must not be stored")
}

func TestLoginUseCase_Logout(t *testing.T) {
	var out, errOut bytes.Buffer
	restore := colors.SetOutputs(&out, &errOut)
	defer restore()

	store := &fakeTokenStore{}
	uc := NewLoginUseCase(store)

	require.NoError(t, uc.ExecuteLogout())
	assert.True(t, store.deleted)
	assert.Contains(t, out.String(), "Logged out")
}
