package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocktray/stocktray/internal/domain"
	"github.com/stocktray/stocktray/internal/store"
)

type fakeTray struct {
	notifications []domain.Notification
	phase         store.Phase
	markedIDs     []string
	markedAll     bool
	snapshotPages []int
	snapshotMore  bool
	snapshotErr   error
	markErr       error
}

func (f *fakeTray) Notifications() []domain.Notification { return f.notifications }
func (f *fakeTray) UnreadCount() int                     { return domain.CountUnread(f.notifications) }
func (f *fakeTray) Phase() store.Phase                   { return f.phase }

func (f *fakeTray) LoadSnapshot(ctx context.Context, page int, filter domain.Filter) (bool, error) {
	f.snapshotPages = append(f.snapshotPages, page)
	return f.snapshotMore, f.snapshotErr
}

func (f *fakeTray) MarkRead(ctx context.Context, id string) error {
	f.markedIDs = append(f.markedIDs, id)
	if f.markErr != nil {
		return f.markErr
	}
	for i := range f.notifications {
		if f.notifications[i].ID == id {
			f.notifications[i].Read = true
		}
	}
	return nil
}

func (f *fakeTray) MarkAllRead(ctx context.Context) error {
	f.markedAll = true
	for i := range f.notifications {
		f.notifications[i].Read = true
	}
	return f.markErr
}

func trayFixture() *fakeTray {
	created := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	return &fakeTray{
		phase: store.PhaseLive,
		notifications: []domain.Notification{
			{ID: "n-1", Category: domain.CategoryStockAlert, Title: "Low stock", Message: "m", Priority: domain.PriorityHigh, CreatedAt: created},
			{ID: "n-2", Category: domain.CategoryApprovalRequest, Title: "Approval", Message: "m", Priority: domain.PriorityMedium, CreatedAt: created},
			{ID: "n-3", Category: domain.CategorySystem, Title: "Notice", Message: "m", Priority: domain.PriorityLow, Read: true, CreatedAt: created},
		},
	}
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
}

func TestModel_Navigation(t *testing.T) {
	m := NewModel(trayFixture(), nil)

	assert.Equal(t, 0, m.cursor)

	m.Update(keyMsg("down"))
	assert.Equal(t, 1, m.cursor)

	m.Update(keyMsg("j"))
	assert.Equal(t, 2, m.cursor)

	// clamped at the last row
	m.Update(keyMsg("down"))
	assert.Equal(t, 2, m.cursor)

	m.Update(keyMsg("up"))
	m.Update(keyMsg("k"))
	m.Update(keyMsg("up"))
	assert.Equal(t, 0, m.cursor)
}

func TestModel_MarkRead(t *testing.T) {
	tray := trayFixture()
	m := NewModel(tray, nil)

	_, cmd := m.Update(keyMsg("enter"))
	require.NotNil(t, cmd)

	msg := cmd()
	done, ok := msg.(markDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.err)
	assert.Equal(t, []string{"n-1"}, tray.markedIDs)

	m.Update(done)
	assert.True(t, m.rows[0].Read)
}

func TestModel_MarkRead_AlreadyReadNoCommand(t *testing.T) {
	tray := trayFixture()
	m := NewModel(tray, nil)
	m.cursor = 2 // already read

	_, cmd := m.Update(keyMsg("r"))
	assert.Nil(t, cmd)
	assert.Empty(t, tray.markedIDs)
}

func TestModel_MarkAllRead(t *testing.T) {
	tray := trayFixture()
	m := NewModel(tray, nil)

	_, cmd := m.Update(keyMsg("a"))
	require.NotNil(t, cmd)
	m.Update(cmd())

	assert.True(t, tray.markedAll)
	assert.True(t, m.rows[1].Read)
}

func TestModel_Refresh(t *testing.T) {
	tray := trayFixture()
	tray.snapshotMore = true
	m := NewModel(tray, nil)

	_, cmd := m.Update(keyMsg("g"))
	require.NotNil(t, cmd)
	assert.True(t, m.loading)

	msg := cmd()
	m.Update(msg)
	assert.False(t, m.loading)
	assert.Equal(t, []int{1}, tray.snapshotPages)

	// load-more fetches the next page
	_, cmd = m.Update(keyMsg("m"))
	require.NotNil(t, cmd)
	m.Update(cmd())
	assert.Equal(t, []int{1, 2}, tray.snapshotPages)
}

func TestModel_RefreshError(t *testing.T) {
	tray := trayFixture()
	tray.snapshotErr = errors.New("store unavailable")
	m := NewModel(tray, nil)

	_, cmd := m.Update(keyMsg("g"))
	require.NotNil(t, cmd)
	m.Update(cmd())

	assert.Error(t, m.lastErr)
	assert.Contains(t, m.View(), "store unavailable")
}

func TestModel_TrayChangedReloads(t *testing.T) {
	tray := trayFixture()
	m := NewModel(tray, nil)

	tray.notifications = append([]domain.Notification{{
		ID: "n-0", Category: domain.CategoryStockAlert, Title: "Fresh", Message: "m",
		Priority: domain.PriorityHigh, CreatedAt: time.Now(),
	}}, tray.notifications...)

	m.Update(trayChangedMsg{})
	assert.Len(t, m.rows, 4)
	assert.Equal(t, "n-0", m.rows[0].ID)
}

func TestModel_CursorClampedAfterShrink(t *testing.T) {
	tray := trayFixture()
	m := NewModel(tray, nil)
	m.cursor = 2

	tray.notifications = tray.notifications[:1]
	m.Update(trayChangedMsg{})
	assert.Equal(t, 0, m.cursor)
}

func TestModel_Quit(t *testing.T) {
	m := NewModel(trayFixture(), nil)

	_, cmd := m.Update(keyMsg("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_ViewShowsUnreadBadge(t *testing.T) {
	m := NewModel(trayFixture(), nil)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	view := m.View()
	assert.Contains(t, view, "stocktray")
	assert.Contains(t, view, "2 unread")
	assert.Contains(t, view, "live")
	assert.Contains(t, view, "Low stock")
}

func TestModel_ViewDegraded(t *testing.T) {
	tray := trayFixture()
	tray.phase = store.PhaseDegraded
	m := NewModel(tray, nil)

	assert.Contains(t, m.View(), "degraded")
}

func TestModel_ViewEmpty(t *testing.T) {
	m := NewModel(&fakeTray{phase: store.PhaseLive}, nil)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	assert.Contains(t, m.View(), "No notifications")
}
