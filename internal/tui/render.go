package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/stocktray/stocktray/internal/domain"
	"github.com/stocktray/stocktray/internal/store"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)

	badgeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("1")).
			Padding(0, 1)

	liveStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	degradedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	selectedStyle = lipgloss.NewStyle().Reverse(true)
	readStyle     = lipgloss.NewStyle().Faint(true)

	highStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	mediumStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	helpStyle = lipgloss.NewStyle().Faint(true)
)

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m *Model) renderHeader() string {
	title := titleStyle.Render("stocktray")

	badge := ""
	if unread := m.tray.UnreadCount(); unread > 0 {
		badge = " " + badgeStyle.Render(fmt.Sprintf("%d unread", unread))
	}

	health := liveStyle.Render("● live")
	switch m.tray.Phase() {
	case store.PhaseDegraded:
		health = degradedStyle.Render("○ degraded")
	case store.PhaseSyncing, store.PhaseUninitialized:
		health = m.spinner.View() + "syncing"
	}

	loading := ""
	if m.loading {
		loading = " " + m.spinner.View()
	}

	return fmt.Sprintf("%s%s  %s%s", title, badge, health, loading)
}

func (m *Model) renderRows() string {
	if len(m.rows) == 0 {
		return "No notifications"
	}
	var b strings.Builder
	for i, n := range m.rows {
		b.WriteString(m.renderRow(n, i == m.cursor))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderRow(n domain.Notification, selected bool) string {
	marker := " "
	if !n.Read {
		marker = "*"
	}

	line := fmt.Sprintf("%s %s  [%-6s]  %s: %s",
		marker,
		n.CreatedAt.Local().Format(time.DateTime),
		n.Priority.String(),
		n.Title,
		n.Message,
	)
	if len(line) > m.width && m.width > 3 {
		line = line[:m.width-3] + "..."
	}

	switch {
	case selected:
		return selectedStyle.Render(line)
	case n.Read:
		return readStyle.Render(line)
	case n.Priority == domain.PriorityHigh:
		return highStyle.Render(line)
	case n.Priority == domain.PriorityMedium:
		return mediumStyle.Render(line)
	default:
		return line
	}
}

func (m *Model) renderFooter() string {
	if m.lastErr != nil {
		return errStyle.Render("error: " + m.lastErr.Error())
	}
	help := "↑/↓ move  enter mark read  a mark all  g refresh"
	if m.hasMore {
		help += "  m more"
	}
	help += "  q quit"
	return helpStyle.Render(help)
}
