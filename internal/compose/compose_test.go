package compose

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"loadcompose/internal/ab"
	"loadcompose/internal/dummy"
	"loadcompose/internal/layout"
	"loadcompose/internal/remote"
	"loadcompose/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type exitCoder interface{ ExitCode() int }

func TestRun_ModelErrors(t *testing.T) {
	for _, model := range []string{"", "  ", "jmeter"} {
		err := Run(context.Background(), Request{Model: model, Meta: "http://example.com/"}, Deps{Out: &bytes.Buffer{}})
		var unknown *UnknownModelError
		require.ErrorAs(t, err, &unknown, model)
		assert.Equal(t, 2, unknown.ExitCode())
	}

	err := Run(context.Background(), Request{Model: ""}, Deps{Out: &bytes.Buffer{}})
	assert.Contains(t, err.Error(), "model is mandatory")
}

func TestRun_EmptyMeta(t *testing.T) {
	err := Run(context.Background(), Request{Model: "AB", Meta: "   "}, Deps{Out: &bytes.Buffer{}})
	var malformed *ab.MalformedOptionsError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "Model 'ab' requires a string containing all Apache Benchmark options.", err.Error())
	assert.Equal(t, 2, malformed.ExitCode())
}

func TestRun_MalformedOptions(t *testing.T) {
	err := Run(context.Background(), Request{Model: "ab", Meta: "-n x http://example.com/"}, Deps{Out: &bytes.Buffer{}})
	var ec exitCoder
	require.ErrorAs(t, err, &ec)
	assert.Equal(t, 2, ec.ExitCode())
}

func TestRun_Help(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), Request{Model: "ab", Meta: "-h"}, Deps{Out: &out}))
	assert.Equal(t, ab.Usage, out.String())
}

func TestRun_PrintsYAML(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Run(context.Background(), Request{Model: "ab", Meta: "-n 5 -c 2 https://example.com/a?b=1"}, Deps{Out: &out}))

	assert.Contains(t, out.String(), "name: converted-ab-project")
	assert.Contains(t, out.String(), "url: /a?b=1")
	assert.Contains(t, out.String(), "duration: 5 iterations")
}

func TestRun_WriteTo(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "proj")
	req := Request{Model: "ab", Meta: "http://example.com/", WriteTo: dir}
	require.NoError(t, Run(context.Background(), req, Deps{Out: &bytes.Buffer{}}))
	assert.FileExists(t, filepath.Join(dir, layout.RootFile))
	assert.FileExists(t, filepath.Join(dir, "paths", "Path1.nl.yaml"))

	err := Run(context.Background(), req, Deps{Out: &bytes.Buffer{}})
	var persist *layout.PersistError
	require.ErrorAs(t, err, &persist)
	assert.ErrorIs(t, err, layout.ErrExists)

	req.Overwrite = true
	require.NoError(t, Run(context.Background(), req, Deps{Out: &bytes.Buffer{}}))
}

type fakeService struct {
	info       *remote.ProjectInfo
	uploaded   string
	uploadSeen bool
	runReq     remote.RunRequest
	summary    *remote.Summary
}

func (f *fakeService) UploadProject(ctx context.Context, name, path string) (*remote.ProjectInfo, error) {
	f.uploaded = path
	_, err := os.Stat(path)
	f.uploadSeen = err == nil
	return f.info, nil
}

func (f *fakeService) Run(ctx context.Context, req remote.RunRequest) (string, error) {
	f.runReq = req
	return "r-1", nil
}

func (f *fakeService) Status(ctx context.Context, id string) (*remote.Status, error) {
	return &remote.Status{ID: id, Status: remote.StatusTerminated}, nil
}

func (f *fakeService) Statistics(ctx context.Context, id string) (map[string]any, error) {
	return f.summary.Statistics, nil
}

func (f *fakeService) Summary(ctx context.Context, id string) (*remote.Summary, error) {
	return f.summary, nil
}

func (f *fakeService) Stop(ctx context.Context, id string, force bool) error {
	return errors.New("not running")
}

func newFake(scenarios ...remote.ScenarioInfo) *fakeService {
	return &fakeService{
		info: &remote.ProjectInfo{Scenarios: scenarios},
		summary: &remote.Summary{
			Result: map[string]any{"duration": json.Number("1500")},
			Statistics: map[string]any{
				"totalRequestCountSuccess":   json.Number("7"),
				"totalRequestCountFailure":   json.Number("1"),
				"totalRequestCountPerSecond": json.Number("5.33"),
			},
		},
	}
}

func TestRun_UploadUsesTempFileAndReservation(t *testing.T) {
	cases := []struct {
		scenarios []remote.ScenarioInfo
		scenario  string
		webVU     int
	}{
		{nil, "Scenario1", 20},
		{[]remote.ScenarioInfo{{Name: "S", VUs: 3}}, "S", 20},
		{[]remote.ScenarioInfo{{Name: "Big", VUs: 50}, {Name: "Other", VUs: 100}}, "Big", 50},
	}
	for _, tc := range cases {
		svc := newFake(tc.scenarios...)
		var out bytes.Buffer
		err := Run(context.Background(), Request{Model: "ab", Meta: "-c 3 http://example.com/", UploadAndRunAs: "my-test"},
			Deps{Service: svc, Out: &out, PollInterval: time.Millisecond})
		require.NoError(t, err)

		assert.True(t, svc.uploadSeen)
		assert.Equal(t, layout.RootFile, filepath.Base(svc.uploaded))
		assert.NoFileExists(t, svc.uploaded)
		assert.Equal(t, tc.scenario, svc.runReq.Scenario)
		assert.Equal(t, tc.webVU, svc.runReq.WebVU)
		assert.Equal(t, "my-test", svc.runReq.NameOrID)

		assert.Contains(t, out.String(), "Running an ApacheBenchmark-like test")
		assert.Contains(t, out.String(), "Complete requests:      7")
		assert.Contains(t, out.String(), "Time taken for tests:   1500 ms")
		assert.Contains(t, out.String(), "Concurrency Level:      3")
		assert.Contains(t, out.String(), "Server Software:        ?")
	}
}

func TestRun_UploadWithWriteToAndHistory(t *testing.T) {
	svc := newFake(remote.ScenarioInfo{Name: "Scenario1", VUs: 1})
	dir := filepath.Join(t.TempDir(), "proj")
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "history.json"))
	require.NoError(t, err)

	err = Run(context.Background(),
		Request{Model: "ab", Meta: "http://example.com/", WriteTo: dir, UploadAndRunAs: "t"},
		Deps{Service: svc, Out: &bytes.Buffer{}, History: store, MinWebVUs: 5, PollInterval: time.Millisecond})
	require.NoError(t, err)

	assert.Equal(t, dir, svc.uploaded)
	assert.DirExists(t, dir)
	assert.Equal(t, 5, svc.runReq.WebVU)

	items := store.List()
	require.Len(t, items, 1)
	assert.Equal(t, "r-1", items[0].ResultID)
	assert.Equal(t, "http://example.com/", items[0].Target)
	assert.Equal(t, uint64(8), items[0].Summary.TotalRequests)
	assert.Equal(t, remote.StatusTerminated, items[0].Summary.Status)
}

func TestRun_AgainstDummyService(t *testing.T) {
	svc := dummy.NewService()
	srv := httptest.NewServer(svc.Handler())
	defer srv.Close()
	defer svc.Close()

	var out bytes.Buffer
	err := Run(context.Background(),
		Request{Model: "ab", Meta: "-n 2 -c 2 -H 'Accept: text/plain' " + srv.URL + "/sample/fast", UploadAndRunAs: "e2e", Probe: true},
		Deps{Service: remote.NewClient(srv.URL, "", "default"), Out: &out, PollInterval: 20 * time.Millisecond})
	require.NoError(t, err)

	report := out.String()
	assert.Contains(t, report, "Server Hostname:        127.0.0.1")
	assert.Contains(t, report, "Document Path:          /sample/fast")
	assert.Contains(t, report, "Document Length:        13")
	assert.Contains(t, report, "Complete requests:      4")
	assert.Contains(t, report, "Failed requests:        0")
	assert.NotContains(t, report, "{{statistics-")
}
