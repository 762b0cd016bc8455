package history

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"loadcompose/internal/storage"
	"loadcompose/internal/tui/styles"
)

var columns = []table.Column{
	{Title: "Time", Width: 20},
	{Title: "Target", Width: 36},
	{Title: "Result", Width: 12},
	{Title: "Status", Width: 11},
	{Title: "Reqs", Width: 8},
	{Title: "Fail", Width: 6},
	{Title: "RPS", Width: 8},
	{Title: "Avg (ms)", Width: 9},
}

type Model struct {
	Table table.Model

	Width  int
	Height int
}

func NewModel(items []storage.HistoryItem, focused bool) Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(Rows(items)),
		table.WithFocused(focused),
		table.WithHeight(min(len(items)+3, 20)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.ColorBorder).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.ColorPrimary)
	if focused {
		s.Selected = s.Selected.
			Foreground(styles.ColorBg).
			Background(styles.ColorPrimary).
			Bold(true)
	} else {
		s.Selected = lipgloss.NewStyle()
	}
	t.SetStyles(s)

	return Model{Table: t}
}

// Rows turns history items into table rows, newest first as stored.
func Rows(items []storage.HistoryItem) []table.Row {
	rows := make([]table.Row, len(items))
	for i, item := range items {
		result := item.ResultID
		if len(result) > 12 {
			result = result[:12]
		}
		if result == "" {
			result = "-"
		}
		rows[i] = table.Row{
			item.Timestamp.Local().Format(time.DateTime),
			item.Target,
			result,
			item.Summary.Status,
			fmt.Sprintf("%d", item.Summary.TotalRequests),
			fmt.Sprintf("%d", item.Summary.Fail),
			fmt.Sprintf("%.1f", item.Summary.RequestsPerSecond),
			fmt.Sprintf("%.2f", item.Summary.AvgLatencyMs),
		}
	}
	return rows
}

// Render is the static table for non-interactive output.
func Render(items []storage.HistoryItem) string {
	if len(items) == 0 {
		return styles.Subtle.Render("No runs recorded yet.")
	}
	return NewModel(items, false).View()
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Table.SetWidth(msg.Width - 4)
		m.Table.SetHeight(msg.Height - 4)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}

	m.Table, cmd = m.Table.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return styles.Box.Render(m.Table.View()) + "\n"
}

// Browse opens the table interactively.
func Browse(items []storage.HistoryItem) error {
	_, err := tea.NewProgram(NewModel(items, true)).Run()
	return err
}
