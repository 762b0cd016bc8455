package components

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestSparkline_Window(t *testing.T) {
	s := NewSparkline(3, "RPS", "req/s", lipgloss.NewStyle())
	for _, v := range []float64{1, 2, 3, 4, -1} {
		s.Add(v)
	}
	assert.Equal(t, []float64{3, 4, 0}, s.Data)
	assert.Equal(t, 4.0, s.Max())
	assert.Equal(t, 0.0, s.Last())
}

func TestSparkline_Graph(t *testing.T) {
	s := NewSparkline(4, "x", "", lipgloss.NewStyle())
	s.Add(0)
	s.Add(8)
	assert.Equal(t, " █  ", s.Graph())

	empty := NewSparkline(2, "x", "", lipgloss.NewStyle())
	assert.Equal(t, "  ", empty.Graph())
	assert.Equal(t, "", NewSparkline(0, "x", "", lipgloss.NewStyle()).View())
}
