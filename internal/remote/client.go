// Package remote talks to the load-test execution service: project upload,
// run, status polling, result summary and stop.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"loadcompose/internal/layout"

	"github.com/rs/zerolog/log"
)

const (
	apiVersion  = "/v3"
	tokenHeader = "accountToken"
)

type Client struct {
	BaseURL   string
	Token     string
	Workspace string
	HTTP      *http.Client
}

func NewClient(baseURL, token, workspace string) *Client {
	return &Client{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		Token:     token,
		Workspace: workspace,
		HTTP:      &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) endpoint(parts ...string) string {
	segs := []string{apiVersion, "workspaces", url.PathEscape(c.Workspace)}
	for _, p := range parts {
		segs = append(segs, url.PathEscape(p))
	}
	return path.Join(segs...)
}

// UploadProject zips the project at projectPath and uploads it to the test
// nameOrID.
func (c *Client) UploadProject(ctx context.Context, nameOrID, projectPath string) (*ProjectInfo, error) {
	data, err := layout.Archive(projectPath)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "project.zip")
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var info ProjectInfo
	err = c.do(ctx, http.MethodPost, c.endpoint("tests", nameOrID, "project"), mw.FormDataContentType(), &body, &info)
	if err != nil {
		return nil, fmt.Errorf("upload project to %q: %w", nameOrID, err)
	}
	log.Debug().Str("test", nameOrID).Int("bytes", len(data)).Int("scenarios", len(info.Scenarios)).Msg("project uploaded")
	return &info, nil
}

// Run starts the test and returns the result id.
func (c *Client) Run(ctx context.Context, req RunRequest) (string, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	var out runResponse
	err = c.do(ctx, http.MethodPost, c.endpoint("tests", req.NameOrID, "execute"), "application/json", bytes.NewReader(b), &out)
	if err != nil {
		return "", fmt.Errorf("run test %q: %w", req.NameOrID, err)
	}
	if out.ResultID == "" {
		return "", fmt.Errorf("run test %q: no result id in response", req.NameOrID)
	}
	return out.ResultID, nil
}

func (c *Client) Status(ctx context.Context, resultID string) (*Status, error) {
	var st Status
	if err := c.do(ctx, http.MethodGet, c.endpoint("test-results", resultID), "", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) Summary(ctx context.Context, resultID string) (*Summary, error) {
	s := &Summary{}
	if err := c.do(ctx, http.MethodGet, c.endpoint("test-results", resultID), "", nil, &s.Result); err != nil {
		return nil, fmt.Errorf("fetch result %s: %w", resultID, err)
	}
	stats, err := c.Statistics(ctx, resultID)
	if err != nil {
		return nil, err
	}
	s.Statistics = stats
	if s.Result == nil {
		s.Result = map[string]any{}
	}
	return s, nil
}

// Statistics fetches the running totals of a result; never nil on success.
func (c *Client) Statistics(ctx context.Context, resultID string) (map[string]any, error) {
	var out map[string]any
	if err := c.do(ctx, http.MethodGet, c.endpoint("test-results", resultID, "statistics"), "", nil, &out); err != nil {
		return nil, fmt.Errorf("fetch statistics %s: %w", resultID, err)
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

func (c *Client) Stop(ctx context.Context, resultID string, force bool) error {
	policy := StopGraceful
	if force {
		policy = StopTerminate
	}
	b, _ := json.Marshal(map[string]string{"stopPolicy": policy})
	if err := c.do(ctx, http.MethodPost, c.endpoint("test-results", resultID, "stop"), "application/json", bytes.NewReader(b), nil); err != nil {
		return fmt.Errorf("stop %s (%s): %w", resultID, policy, err)
	}
	log.Debug().Str("result", resultID).Str("policy", policy).Msg("stop requested")
	return nil
}

func (c *Client) do(ctx context.Context, method, p, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+p, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set(tokenHeader, c.Token)
	}

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Method: method, Path: p, Status: resp.StatusCode, Body: string(b)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("decode %s %s: %w", method, p, err)
	}
	return nil
}
