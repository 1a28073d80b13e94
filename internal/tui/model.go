// Package tui 終端機前端：左側電影清單，右側詳細資訊。
// 畫面資料來自 dispatcher 的 Subscribe 串流，按鍵轉成 dispatch.Command。
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"film-ticket-desk/internal/dispatch"
	"film-ticket-desk/internal/model"
	apperrors "film-ticket-desk/pkg/app_errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const commandTimeout = 10 * time.Second

type screenMsg model.Screen

type updatesClosedMsg struct{}

type commandDoneMsg struct {
	err error
}

type Model struct {
	commander dispatch.Commander
	updates   <-chan model.Screen
	keys      KeyMap

	screen model.Screen
	cursor int
	status string
	width  int
}

func New(commander dispatch.Commander, updates <-chan model.Screen) Model {
	return Model{
		commander: commander,
		updates:   updates,
		keys:      DefaultKeyMap,
	}
}

func (m Model) Init() tea.Cmd {
	return waitForScreen(m.updates)
}

func waitForScreen(updates <-chan model.Screen) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-updates
		if !ok {
			return updatesClosedMsg{}
		}
		return screenMsg(s)
	}
}

func (m Model) run(cmd dispatch.Command) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		_, err := m.commander.Do(ctx, cmd)
		return commandDoneMsg{err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case screenMsg:
		m.screen = model.Screen(msg)
		m.clampCursor()
		return m, waitForScreen(m.updates)

	case updatesClosedMsg:
		return m, tea.Quit

	case commandDoneMsg:
		m.status = statusFor(msg.err)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.screen.Sidebar)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Select):
		if entry, ok := m.selected(); ok {
			return m, m.run(dispatch.SelectFilm{FilmID: entry.FilmID})
		}
	case key.Matches(msg, m.keys.Buy):
		// 與網頁一樣，購買的是詳細面板上的電影
		if m.screen.Detail != nil {
			return m, m.run(dispatch.BuyTicket{FilmID: m.screen.Detail.FilmID})
		}
	case key.Matches(msg, m.keys.Delete):
		if entry, ok := m.selected(); ok && entry.Deletable {
			return m, m.run(dispatch.DeleteSoldOut{FilmID: entry.FilmID})
		}
	case key.Matches(msg, m.keys.Reload):
		return m, m.run(dispatch.LoadCatalog{})
	}
	return m, nil
}

func (m Model) selected() (model.SidebarEntry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.screen.Sidebar) {
		return model.SidebarEntry{}, false
	}
	return m.screen.Sidebar[m.cursor], true
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.screen.Sidebar) {
		m.cursor = len(m.screen.Sidebar) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func statusFor(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, apperrors.ErrSoldOut):
		return model.AlertSoldOut
	case errors.Is(err, apperrors.ErrUpstream), errors.Is(err, apperrors.ErrMalformedResponse):
		return "films api unavailable"
	default:
		return err.Error()
	}
}

var (
	paneStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	titleStyle    = lipgloss.NewStyle().Bold(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	soldOutStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true)
	alertStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

func (m Model) View() string {
	sidebar := paneStyle.Render(m.renderSidebar())
	detail := paneStyle.Render(m.renderDetail())
	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, detail)

	var footer strings.Builder
	if m.screen.Alert != "" {
		footer.WriteString(alertStyle.Render(m.screen.Alert))
		footer.WriteString("\n")
	} else if m.status != "" {
		footer.WriteString(alertStyle.Render(m.status))
		footer.WriteString("\n")
	}
	footer.WriteString(helpStyle.Render(m.renderHelp()))

	return lipgloss.JoinVertical(lipgloss.Left, body, footer.String())
}

func (m Model) renderSidebar() string {
	if len(m.screen.Sidebar) == 0 {
		return "No films"
	}
	lines := make([]string, 0, len(m.screen.Sidebar))
	for i, entry := range m.screen.Sidebar {
		prefix := "  "
		title := entry.Title
		if entry.SoldOut {
			title = soldOutStyle.Render(title)
		}
		if entry.Deletable {
			title += " [d]elete"
		}
		if i == m.cursor {
			prefix = cursorStyle.Render("> ")
		}
		lines = append(lines, prefix+title)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderDetail() string {
	d := m.screen.Detail
	if d == nil {
		return "Loading..."
	}
	button := fmt.Sprintf("[ %s ]", d.ButtonLabel)
	if d.ButtonDisabled {
		button = disabledStyle.Render(button)
	}
	return strings.Join([]string{
		titleStyle.Render(d.Title),
		d.Description,
		d.RuntimeText,
		d.ShowtimeText,
		d.TicketsText,
		button,
	}, "\n")
}

func (m Model) renderHelp() string {
	parts := make([]string, 0, len(m.keys.help()))
	for _, b := range m.keys.help() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}
