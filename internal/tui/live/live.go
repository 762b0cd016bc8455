package live

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"loadcompose/internal/remote"
	"loadcompose/internal/tui/components"
	"loadcompose/internal/tui/styles"
)

// Snapshot is one poll of a running result.
type Snapshot struct {
	Status   string
	Quality  string
	Progress float64 // 0..100
	Elapsed  time.Duration

	Requests uint64
	Fail     uint64
	Bytes    uint64
	AvgMs    float64
}

// FromRemote combines a status and a statistics document.
func FromRemote(st *remote.Status, stats map[string]any) Snapshot {
	success := remote.Uint(stats, "totalRequestCountSuccess")
	fail := remote.Uint(stats, "totalRequestCountFailure")
	return Snapshot{
		Status:   st.Status,
		Quality:  st.QualityStatus,
		Progress: st.Progress,
		Elapsed:  time.Duration(st.Duration) * time.Millisecond,
		Requests: success + fail,
		Fail:     fail,
		Bytes:    remote.Uint(stats, "totalGlobalDownloadedBytes"),
		AvgMs:    remote.Float(stats, "totalRequestDurationAverage"),
	}
}

type Model struct {
	Stats    Snapshot
	Progress progress.Model

	RpsLine     components.Sparkline
	LatencyLine components.Sparkline

	LastElapsed time.Duration
	LastReqs    uint64

	Width  int
	Height int
}

func NewModel() Model {
	return Model{
		Progress:    progress.New(progress.WithDefaultGradient()),
		RpsLine:     components.NewSparkline(40, "RPS", "req/s", styles.Active),
		LatencyLine: components.NewSparkline(40, "Avg latency", "ms", styles.Warn),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case Snapshot:
		// Rates come from the service clock, not from poll arrival.
		dt := (msg.Elapsed - m.LastElapsed).Seconds()
		if dt > 0 && msg.Requests >= m.LastReqs {
			m.RpsLine.Add(float64(msg.Requests-m.LastReqs) / dt)
			m.LatencyLine.Add(msg.AvgMs)
		}

		m.Stats = msg
		m.LastReqs = msg.Requests
		m.LastElapsed = msg.Elapsed

		pct := msg.Progress / 100
		if remote.IsTerminal(msg.Status) || pct > 1 {
			pct = 1
		}
		return m, m.Progress.SetPercent(pct)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Progress.Width = msg.Width - 4

		half := (msg.Width / 2) - 6
		if half < 10 {
			half = 10
		}
		m.RpsLine.Width = half
		m.LatencyLine.Width = half
		return m, nil

	case progress.FrameMsg:
		prog, cmd := m.Progress.Update(msg)
		m.Progress = prog.(progress.Model)
		return m, cmd
	}

	return m, nil
}

func (m Model) ErrorRate() float64 {
	if m.Stats.Requests == 0 {
		return 0
	}
	return float64(m.Stats.Fail) / float64(m.Stats.Requests) * 100
}

func (m Model) View() string {
	s := strings.Builder{}

	errRate := m.ErrorRate()
	errColor := styles.Active
	if errRate > 5.0 {
		errColor = styles.Error
	} else if errRate > 1.0 {
		errColor = styles.Warn
	}

	quality := m.Stats.Quality
	if quality == "" {
		quality = "?"
	}
	col1 := fmt.Sprintf("STATUS: %s\nQUALITY: %s",
		styles.StatusStyle(m.Stats.Status).Render(m.Stats.Status),
		styles.StatusStyle(quality).Render(quality),
	)
	col2 := fmt.Sprintf("REQ: %d\nTIME: %s", m.Stats.Requests, m.Stats.Elapsed.Round(time.Second))
	col3 := errColor.Render(fmt.Sprintf("ERR: %.2f%%\nFAIL: %d", errRate, m.Stats.Fail))
	col4 := fmt.Sprintf("AVG: %.2f ms\nKB: %d", m.Stats.AvgMs, m.Stats.Bytes/1024)

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		styles.Box.Render(col1),
		styles.Box.Render(col2),
		styles.Box.Render(col3),
		styles.Box.Render(col4),
	))
	s.WriteString("\n\n")

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		styles.Box.Render(m.RpsLine.View()),
		styles.Box.Render(m.LatencyLine.View()),
	))
	s.WriteString("\n\n")

	s.WriteString(m.Progress.View())

	return s.String()
}
