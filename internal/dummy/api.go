package dummy

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"loadcompose/internal/layout"
	"loadcompose/internal/project"
	"loadcompose/internal/remote"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

const maxUploadBytes = 32 << 20

type uploadedTest struct {
	name    string
	project *project.Project
}

func (s *Service) handleUpload(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["test"]

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body: %v", err)
		return
	}
	f, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file part: %v", err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read upload: %v", err)
		return
	}

	p, err := loadArchive(data)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "%v", err)
		return
	}

	s.mu.Lock()
	s.tests[name] = &uploadedTest{name: name, project: p}
	s.mu.Unlock()
	log.Info().Str("test", name).Str("project", p.Name).Msg("project uploaded")

	info := remote.ProjectInfo{ProjectName: p.Name}
	for _, sc := range p.Scenarios {
		vus := 0
		for _, sp := range sc.Populations {
			if sp.ConstantLoad != nil {
				vus += sp.ConstantLoad.Users
			}
		}
		info.Scenarios = append(info.Scenarios, remote.ScenarioInfo{Name: sc.Name, VUs: vus})
	}
	writeJSON(w, http.StatusOK, info)
}

func loadArchive(data []byte) (*project.Project, error) {
	dir, err := os.MkdirTemp("", "loadcompose-upload-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	if err := layout.Extract(data, dir); err != nil {
		return nil, err
	}
	p, err := layout.Load(dir)
	if err != nil {
		return nil, err
	}
	if len(p.Scenarios) == 0 {
		return nil, fmt.Errorf("project %q has no scenario", p.Name)
	}
	return p, nil
}

func (s *Service) handleExecute(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["test"]

	var req remote.RunRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			writeError(w, http.StatusBadRequest, "invalid body: %v", err)
			return
		}
	}

	s.mu.RLock()
	t, ok := s.tests[name]
	s.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, "test %q not found", name)
		return
	}

	pl, err := planScenario(t.project, req.Scenario)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "%v", err)
		return
	}
	if req.WebVU > 0 && pl.Users > req.WebVU {
		writeError(w, http.StatusConflict, "scenario needs %d web VUs, %d reserved", pl.Users, req.WebVU)
		return
	}

	rn := newRun(name, t.project.Name, pl)
	s.mu.Lock()
	s.results[rn.id] = rn
	s.mu.Unlock()

	s.metrics.runsActive.Inc()
	rn.start(s.ctx, func(status string) {
		s.metrics.runsActive.Dec()
		s.metrics.runsTotal.WithLabelValues(status).Inc()
	})
	log.Info().Str("test", name).Str("scenario", pl.Scenario).Str("result", rn.id).Int("users", pl.Users).Msg("run started")

	writeJSON(w, http.StatusOK, map[string]string{"resultId": rn.id})
}

func (s *Service) lookupRun(w http.ResponseWriter, r *http.Request) (*run, bool) {
	id := mux.Vars(r)["id"]
	s.mu.RLock()
	rn, ok := s.results[id]
	s.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, "result %q not found", id)
	}
	return rn, ok
}

func (s *Service) handleResult(w http.ResponseWriter, r *http.Request) {
	if rn, ok := s.lookupRun(w, r); ok {
		writeJSON(w, http.StatusOK, rn.result())
	}
}

func (s *Service) handleStatistics(w http.ResponseWriter, r *http.Request) {
	if rn, ok := s.lookupRun(w, r); ok {
		writeJSON(w, http.StatusOK, rn.statistics())
	}
}

func (s *Service) handleStop(w http.ResponseWriter, r *http.Request) {
	rn, ok := s.lookupRun(w, r)
	if !ok {
		return
	}
	var body struct {
		StopPolicy string `json:"stopPolicy"`
	}
	if r.ContentLength != 0 {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	force := strings.EqualFold(body.StopPolicy, remote.StopTerminate)
	if !rn.stop(force) {
		writeError(w, http.StatusConflict, "result %s already ended", rn.id)
		return
	}
	log.Info().Str("result", rn.id).Bool("force", force).Msg("stop requested")
	w.WriteHeader(http.StatusAccepted)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}

func writeError(w http.ResponseWriter, code int, format string, args ...any) {
	writeJSON(w, code, map[string]string{"message": fmt.Sprintf(format, args...)})
}
