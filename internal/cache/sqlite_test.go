package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocktray/stocktray/internal/domain"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "notifications.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func fixture(id string, read bool) domain.Notification {
	return domain.Notification{
		ID:        id,
		Category:  domain.CategoryStockAlert,
		Title:     "Low stock",
		Message:   "Widget below reorder point",
		Priority:  domain.PriorityMedium,
		Read:      read,
		CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Data:      map[string]any{"productName": "Widget"},
	}
}

func TestOpen_EmptyPathRejected(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestSaveAndLoad_PreservesOrderAndFields(t *testing.T) {
	c := openTestCache(t)

	saved := []domain.Notification{
		fixture("n3", false),
		fixture("n1", true),
		fixture("n2", false),
	}
	require.NoError(t, c.Save(saved))

	loaded, err := c.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 3)

	assert.Equal(t, "n3", loaded[0].ID)
	assert.Equal(t, "n1", loaded[1].ID)
	assert.Equal(t, "n2", loaded[2].ID)

	assert.Equal(t, domain.CategoryStockAlert, loaded[0].Category)
	assert.Equal(t, domain.PriorityMedium, loaded[0].Priority)
	assert.True(t, loaded[1].Read)
	assert.False(t, loaded[2].Read)
	assert.Equal(t, "Widget", loaded[0].DataString("productName"))
	assert.Equal(t, saved[0].CreatedAt, loaded[0].CreatedAt)
}

func TestSave_ReplacesPreviousContents(t *testing.T) {
	c := openTestCache(t)

	require.NoError(t, c.Save([]domain.Notification{fixture("n1", false), fixture("n2", false)}))
	require.NoError(t, c.Save([]domain.Notification{fixture("n9", true)}))

	loaded, err := c.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "n9", loaded[0].ID)
}

func TestLoad_EmptyCache(t *testing.T) {
	c := openTestCache(t)

	loaded, err := c.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestUnreadCount(t *testing.T) {
	c := openTestCache(t)

	require.NoError(t, c.Save([]domain.Notification{
		fixture("n1", false),
		fixture("n2", true),
		fixture("n3", false),
	}))

	count, err := c.UnreadCount()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSave_NilPayload(t *testing.T) {
	c := openTestCache(t)

	n := fixture("n1", false)
	n.Data = nil
	require.NoError(t, c.Save([]domain.Notification{n}))

	loaded, err := c.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Nil(t, loaded[0].Data)
}
