// Package compose turns a model invocation into a project and, on request,
// runs it on the execution service and prints the model's report.
package compose

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"loadcompose/internal/ab"
	"loadcompose/internal/cli"
	"loadcompose/internal/config"
	"loadcompose/internal/layout"
	"loadcompose/internal/probe"
	"loadcompose/internal/project"
	"loadcompose/internal/remote"
	"loadcompose/internal/report"
	"loadcompose/internal/storage"
	"loadcompose/internal/tui"

	"github.com/rs/zerolog/log"
)

const (
	ModelAB = "ab"

	// MinWebVUs is the smallest reservation a run asks for.
	MinWebVUs = 20
)

var modelNames = map[string]string{
	ModelAB: "ApacheBenchmark-like",
}

// Service is the execution service as compose uses it.
type Service interface {
	UploadProject(ctx context.Context, nameOrID, path string) (*remote.ProjectInfo, error)
	Run(ctx context.Context, req remote.RunRequest) (string, error)
	Status(ctx context.Context, resultID string) (*remote.Status, error)
	Statistics(ctx context.Context, resultID string) (map[string]any, error)
	Summary(ctx context.Context, resultID string) (*remote.Summary, error)
	Stop(ctx context.Context, resultID string, force bool) error
}

type Request struct {
	Model          string
	Meta           string
	WriteTo        string
	Overwrite      bool
	UploadAndRunAs string
	Live           bool
	Probe          bool
}

type Deps struct {
	Service      Service
	Out          io.Writer
	History      *storage.Store
	PollInterval time.Duration
	MinWebVUs    int
	Interrupts   <-chan os.Signal
	// HTTP is used by the probe; nil means http.DefaultClient.
	HTTP *http.Client
}

// Run executes one compose invocation.
func Run(ctx context.Context, req Request, deps Deps) error {
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	model := strings.ToLower(strings.TrimSpace(req.Model))
	if model == "" {
		return &UnknownModelError{}
	}
	if model != ModelAB {
		return &UnknownModelError{Model: req.Model}
	}
	if strings.TrimSpace(req.Meta) == "" {
		return &ab.MalformedOptionsError{Msg: "Model 'ab' requires a string containing all Apache Benchmark options."}
	}

	opts, err := ab.Parse(req.Meta)
	if err != nil {
		return err
	}
	if opts.Help {
		fmt.Fprint(deps.Out, ab.Usage)
		return nil
	}
	p := project.FromOptions(opts)

	upload := req.UploadAndRunAs != ""
	if upload && deps.Service == nil {
		return fmt.Errorf("no execution service configured")
	}

	projectPath, cleanup, err := persist(p, req, deps.Out)
	if err != nil {
		return err
	}
	defer cleanup()
	if !upload {
		return nil
	}

	if req.Probe {
		runProbe(ctx, opts, p, deps.HTTP)
	}
	return uploadAndRun(ctx, model, opts, projectPath, cleanup, req, deps)
}

// persist writes the project where the request asks. With no target and no
// upload the YAML goes to out. cleanup is always safe to call.
func persist(p *project.Project, req Request, out io.Writer) (string, func(), error) {
	noop := func() {}

	if req.WriteTo != "" {
		target := config.ExpandHome(req.WriteTo)
		root, err := layout.Save(p, layout.Target{Path: target, Overwrite: req.Overwrite})
		if err != nil {
			return "", noop, err
		}
		log.Info().Str("path", root).Msg("project written")
		return target, noop, nil
	}

	if req.UploadAndRunAs != "" {
		dir, err := os.MkdirTemp("", "loadcompose-*")
		if err != nil {
			return "", noop, &layout.PersistError{Op: "mkdir", Path: os.TempDir(), Err: err}
		}
		cleanup := sync.OnceFunc(func() {
			log.Debug().Str("dir", dir).Msg("removing temp project")
			_ = os.RemoveAll(dir)
		})
		path, err := layout.Save(p, layout.Target{Path: filepath.Join(dir, layout.RootFile), Temp: true})
		if err != nil {
			cleanup()
			return "", noop, err
		}
		return path, cleanup, nil
	}

	data, err := layout.Marshal(p)
	if err != nil {
		return "", noop, err
	}
	_, err = out.Write(data)
	return "", noop, err
}

func runProbe(ctx context.Context, opts *ab.Options, p *project.Project, client *http.Client) {
	headers := map[string]string{}
	if path, ok := p.UserPath(project.DefaultPath); ok {
		for _, r := range path.Requests() {
			for _, h := range r.Headers {
				for k, v := range h {
					headers[k] = v
				}
			}
		}
	}
	f, err := probe.Probe(ctx, client, opts.URL, opts.Method, headers)
	if err != nil {
		log.Warn().Err(err).Msg("probe failed, report fields stay unknown")
		return
	}
	opts.ServerHeader = f.ServerHeader
	opts.TLSVersion = f.TLSVersion
	opts.RequestLength = f.RequestLength
}

func uploadAndRun(ctx context.Context, model string, opts *ab.Options, projectPath string, cleanup func(), req Request, deps Deps) error {
	svc := deps.Service
	name := req.UploadAndRunAs

	info, err := svc.UploadProject(ctx, name, projectPath)
	cleanup()
	if err != nil {
		return err
	}

	scenario := project.DefaultScenario
	webVU := 0
	if sc, ok := info.Primary(); ok {
		scenario, webVU = sc.Name, sc.VUs
	}
	minVUs := deps.MinWebVUs
	if minVUs <= 0 {
		minVUs = MinWebVUs
	}
	if webVU < minVUs {
		log.Info().Int("requested", webVU).Int("reserved", minVUs).Msg("raising web VU reservation")
		webVU = minVUs
	}

	fmt.Fprintf(deps.Out, "Running an %s test using the execution service; since this is using remote resources, it may take a few moments to initialize\n", modelNames[model])

	resultID, err := svc.Run(ctx, remote.RunRequest{NameOrID: name, WebVU: webVU, Scenario: scenario})
	if err != nil {
		return err
	}

	final, err := wait(ctx, resultID, req.Live, deps)
	if err != nil {
		return err
	}

	sum, err := svc.Summary(ctx, resultID)
	if err != nil {
		return err
	}
	fmt.Fprintln(deps.Out, report.Render(report.ABTemplate, opts.ReportFields(), sum.Maps()))

	record(deps.History, model, req, opts, resultID, final, sum)
	return nil
}

func wait(ctx context.Context, resultID string, live bool, deps Deps) (*remote.Status, error) {
	if live {
		return tui.Watch(ctx, deps.Service, resultID, deps.PollInterval, nil)
	}
	return cli.Wait(ctx, cli.WatchOptions{
		Source:     deps.Service,
		ResultID:   resultID,
		Interval:   deps.PollInterval,
		Out:        deps.Out,
		Interrupts: deps.Interrupts,
	})
}

func record(store *storage.Store, model string, req Request, opts *ab.Options, resultID string, final *remote.Status, sum *remote.Summary) {
	if store == nil {
		return
	}
	item := storage.NewItem()
	item.Model = model
	item.Options = req.Meta
	item.Target = opts.URL
	item.Test = req.UploadAndRunAs
	item.ResultID = resultID

	success := sum.Int("totalRequestCountSuccess")
	fail := sum.Int("totalRequestCountFailure")
	item.Summary = storage.RunSummary{
		TotalRequests:     success + fail,
		Success:           success,
		Fail:              fail,
		AvgLatencyMs:      sum.Float("totalRequestDurationAverage"),
		RequestsPerSecond: sum.Float("totalRequestCountPerSecond"),
	}
	if final != nil {
		item.Summary.Status = final.Status
	}
	if err := store.Save(item); err != nil {
		log.Warn().Err(err).Msg("failed to record run history")
	}
}
