// Package tui holds the terminal views: the live watcher for a running
// result and the run history table.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"loadcompose/internal/remote"
	"loadcompose/internal/tui/live"
	"loadcompose/internal/tui/styles"

	tea "github.com/charmbracelet/bubbletea"
)

// Source is what the watcher polls.
type Source interface {
	Status(ctx context.Context, resultID string) (*remote.Status, error)
	Statistics(ctx context.Context, resultID string) (map[string]any, error)
	Stop(ctx context.Context, resultID string, force bool) error
}

type pollMsg struct {
	status *remote.Status
	stats  map[string]any
	err    error
}

type tickMsg time.Time

type stopMsg struct {
	sent bool
	err  error
}

type Model struct {
	ctx      context.Context
	src      Source
	resultID string
	interval time.Duration
	stopper  *remote.Stopper

	Live   live.Model
	Final  *remote.Status
	Err    error
	Notice string

	Quitting bool
	Width    int
}

func NewModel(ctx context.Context, src Source, resultID string, interval time.Duration) Model {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return Model{
		ctx:      ctx,
		src:      src,
		resultID: resultID,
		interval: interval,
		stopper:  remote.NewStopper(resultID, src.Stop),
		Live:     live.NewModel(),
	}
}

func (m Model) Init() tea.Cmd {
	return m.poll()
}

func (m Model) poll() tea.Cmd {
	return func() tea.Msg {
		st, err := m.src.Status(m.ctx, m.resultID)
		if err != nil {
			return pollMsg{err: err}
		}
		stats, err := m.src.Statistics(m.ctx, m.resultID)
		if err != nil {
			// Statistics lag behind the status right after a start.
			stats = map[string]any{}
		}
		return pollMsg{status: st, stats: stats}
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) interrupt() tea.Cmd {
	return func() tea.Msg {
		sent, err := m.stopper.Interrupt(m.ctx)
		return stopMsg{sent: sent, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		var cmd tea.Cmd
		m.Live, cmd = m.Live.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, m.interrupt()
		}
		return m, nil

	case stopMsg:
		switch {
		case msg.err != nil:
			m.Notice = styles.Error.Render("stop failed: " + msg.err.Error())
		case msg.sent && m.stopper.Count() == 1:
			m.Notice = styles.Warn.Render("Stopping (graceful). Press ctrl+c again to terminate.")
		case msg.sent:
			m.Notice = styles.Error.Render("Terminating.")
		}
		return m, nil

	case tickMsg:
		return m, m.poll()

	case pollMsg:
		if msg.err != nil {
			m.Err = msg.err
			m.Quitting = true
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.Live, cmd = m.Live.Update(live.FromRemote(msg.status, msg.stats))
		if remote.IsTerminal(msg.status.Status) {
			m.Final = msg.status
			m.Quitting = true
			return m, tea.Quit
		}
		return m, tea.Batch(cmd, m.tick())

	default:
		var cmd tea.Cmd
		m.Live, cmd = m.Live.Update(msg)
		return m, cmd
	}
}

func (m Model) View() string {
	s := strings.Builder{}
	s.WriteString(styles.Title.Render(fmt.Sprintf("Result %s", m.resultID)))
	s.WriteString("\n\n")
	s.WriteString(m.Live.View())
	s.WriteString("\n")
	if m.Notice != "" {
		s.WriteString(m.Notice)
		s.WriteString("\n")
	}
	if !m.Quitting {
		s.WriteString(styles.RenderKey("ctrl+c", "stop test"))
		s.WriteString("\n")
	}
	return s.String()
}

// Watch runs the live view until the result ends.
func Watch(ctx context.Context, src Source, resultID string, interval time.Duration, out io.Writer) (*remote.Status, error) {
	m := NewModel(ctx, src, resultID, interval)
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if out != nil {
		opts = append(opts, tea.WithOutput(out))
	}
	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return nil, fmt.Errorf("live view: %w", err)
	}
	fm := final.(Model)
	if fm.Err != nil {
		return nil, fm.Err
	}
	return fm.Final, nil
}
