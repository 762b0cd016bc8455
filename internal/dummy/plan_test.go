package dummy

import (
	"testing"
	"time"

	"loadcompose/internal/ab"
	"loadcompose/internal/project"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLoadDuration(t *testing.T) {
	cases := []struct {
		in    string
		iters int
		dur   time.Duration
	}{
		{"1 iteration", 1, 0},
		{"12 iterations", 12, 0},
		{"30s", 0, 30 * time.Second},
		{"2m", 0, 2 * time.Minute},
	}
	for _, tc := range cases {
		it, d, err := parseLoadDuration(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.iters, it, tc.in)
		assert.Equal(t, tc.dur, d, tc.in)
	}

	for _, bad := range []string{"", "0 iterations", "x iteration", "forever", "-5s"} {
		_, _, err := parseLoadDuration(bad)
		assert.Error(t, err, bad)
	}
}

func TestShareUsers(t *testing.T) {
	assert.Equal(t, 10, shareUsers(10, 100))
	assert.Equal(t, 5, shareUsers(10, 50))
	assert.Equal(t, 1, shareUsers(1, 10))
	assert.Equal(t, 0, shareUsers(10, 0))
	assert.Equal(t, 0, shareUsers(0, 100))
}

func TestPlanScenario_FromABProject(t *testing.T) {
	opts, err := ab.Parse(`-n 4 -c 3 -m POST -H "X-Key: 1" https://api.example.com:8443/v1/items?x=1`)
	require.NoError(t, err)
	p := project.FromOptions(opts)

	pl, err := planScenario(p, "")
	require.NoError(t, err)
	assert.Equal(t, project.DefaultScenario, pl.Scenario)
	assert.Equal(t, 3, pl.Users)
	assert.Equal(t, 4, pl.Iterations)
	assert.Equal(t, uint64(12), pl.expected())

	require.Len(t, pl.Jobs, 1)
	job := pl.Jobs[0]
	assert.Equal(t, 3, job.NumUsers)
	require.Len(t, job.Steps, 1)
	assert.Equal(t, "https://api.example.com:8443/v1/items?x=1", job.Steps[0].URL)
	assert.Equal(t, "POST", job.Steps[0].Method)
	assert.Equal(t, "1", job.Steps[0].Headers["X-Key"])
}

func TestPlanScenario_TimeLimit(t *testing.T) {
	opts, err := ab.Parse("-t 5 http://example.com/")
	require.NoError(t, err)

	pl, err := planScenario(project.FromOptions(opts), project.DefaultScenario)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, pl.Duration)
	assert.Equal(t, 0, pl.Iterations)
	assert.Equal(t, 5, pl.Jobs[0].SteadyDur)
}

func TestPlanScenario_Errors(t *testing.T) {
	opts, err := ab.Parse("http://example.com/")
	require.NoError(t, err)

	p := project.FromOptions(opts)
	_, err = planScenario(p, "Other")
	assert.Error(t, err)

	p = project.FromOptions(opts)
	p.Servers = nil
	_, err = planScenario(p, "")
	assert.Error(t, err)

	p = project.FromOptions(opts)
	p.Scenarios[0].Populations[0].ConstantLoad = nil
	_, err = planScenario(p, "")
	assert.Error(t, err)
}
