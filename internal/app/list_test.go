package app

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocktray/stocktray/internal/domain"
)

type fakeListClient struct {
	pages         map[int]bool
	loadedPages   []int
	loadedFilters []domain.Filter
	err           error
	notifications []domain.Notification
}

func (f *fakeListClient) LoadSnapshot(ctx context.Context, page int, filter domain.Filter) (bool, error) {
	f.loadedPages = append(f.loadedPages, page)
	f.loadedFilters = append(f.loadedFilters, filter)
	if f.err != nil {
		return false, f.err
	}
	return f.pages[page], nil
}

func (f *fakeListClient) Notifications() []domain.Notification {
	return f.notifications
}

func listFixture() []domain.Notification {
	created := time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC)
	return []domain.Notification{
		{ID: "a", Category: domain.CategoryStockAlert, Title: "Low stock", Message: "m", Priority: domain.PriorityHigh, CreatedAt: created},
		{ID: "b", Category: domain.CategorySystem, Title: "Maintenance", Message: "m", Priority: domain.PriorityLow, Read: true, CreatedAt: created},
	}
}

func TestListUseCase_SinglePage(t *testing.T) {
	client := &fakeListClient{notifications: listFixture()}
	uc := NewListUseCase(client)

	var buf bytes.Buffer
	err := uc.Execute(context.Background(), ListOptions{Filter: domain.FilterAll}, &buf)
	require.NoError(t, err)

	assert.Equal(t, []int{1}, client.loadedPages)
	assert.Contains(t, buf.String(), "Low stock")
	assert.Contains(t, buf.String(), "Maintenance")
}

func TestListUseCase_AllPages(t *testing.T) {
	client := &fakeListClient{
		pages:         map[int]bool{1: true, 2: true, 3: false},
		notifications: listFixture(),
	}
	uc := NewListUseCase(client)

	var buf bytes.Buffer
	err := uc.Execute(context.Background(), ListOptions{Filter: domain.FilterAll, All: true}, &buf)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, client.loadedPages)
}

func TestListUseCase_FilterAppliedLocally(t *testing.T) {
	client := &fakeListClient{notifications: listFixture()}
	uc := NewListUseCase(client)

	var buf bytes.Buffer
	err := uc.Execute(context.Background(), ListOptions{Filter: domain.FilterUnread}, &buf)
	require.NoError(t, err)

	assert.Equal(t, []domain.Filter{domain.FilterUnread}, client.loadedFilters)
	assert.Contains(t, buf.String(), "Low stock")
	assert.NotContains(t, buf.String(), "Maintenance")
}

func TestListUseCase_JSON(t *testing.T) {
	client := &fakeListClient{notifications: listFixture()}
	uc := NewListUseCase(client)

	var buf bytes.Buffer
	err := uc.Execute(context.Background(), ListOptions{Filter: domain.FilterAll, JSON: true}, &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"id": "a"`)
}

func TestListUseCase_FetchError(t *testing.T) {
	client := &fakeListClient{err: errors.New("boom")}
	uc := NewListUseCase(client)

	var buf bytes.Buffer
	err := uc.Execute(context.Background(), ListOptions{Filter: domain.FilterAll}, &buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestListUseCase_InvalidFilter(t *testing.T) {
	uc := NewListUseCase(&fakeListClient{})

	var buf bytes.Buffer
	err := uc.Execute(context.Background(), ListOptions{Filter: domain.Filter("bogus")}, &buf)
	require.Error(t, err)
}

func TestNewListUseCase_NilClientPanics(t *testing.T) {
	assert.Panics(t, func() { NewListUseCase(nil) })
}
