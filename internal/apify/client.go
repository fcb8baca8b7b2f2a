// Package apify runs actors on the Apify platform over its REST API.
package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"pulse-ai/internal/apperr"
)

const DefaultBaseURL = "https://api.apify.com"

// Item is one record of an actor's output dataset.
type Item map[string]any

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New builds a client. httpClient may be nil. No timeout is set: actor runs
// block until the platform answers.
func New(baseURL, token string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), token: token, http: httpClient}
}

type runResponse struct {
	Data struct {
		ID               string `json:"id"`
		Status           string `json:"status"`
		DefaultDatasetID string `json:"defaultDatasetId"`
	} `json:"data"`
}

// RunActor starts actorID with input, waits for the run to finish and
// returns its dataset items.
func (c *Client) RunActor(ctx context.Context, actorID string, input any) ([]Item, error) {
	if c.token == "" {
		return nil, apperr.Configuration("actor platform token is not configured")
	}
	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("encode actor input: %w", err)
	}

	// "user/actor" ids are addressed as "user~actor"
	actorPath := url.PathEscape(strings.ReplaceAll(actorID, "/", "~"))
	runURL := fmt.Sprintf("%s/v2/acts/%s/runs?waitForFinish=%d", c.baseURL, actorPath, 60)

	start := time.Now()
	var run runResponse
	if err := c.do(ctx, http.MethodPost, runURL, body, &run); err != nil {
		return nil, err
	}
	// waitForFinish is capped server-side, keep polling until the run ends
	for run.Data.Status != "" && !finished(run.Data.Status) {
		runStatusURL := fmt.Sprintf("%s/v2/actor-runs/%s?waitForFinish=%d", c.baseURL, url.PathEscape(run.Data.ID), 60)
		if err := c.do(ctx, http.MethodGet, runStatusURL, nil, &run); err != nil {
			return nil, err
		}
	}
	if run.Data.Status != "SUCCEEDED" {
		return nil, apperr.Upstream("actor run did not succeed", 0, fmt.Errorf("run %s finished with status %s", run.Data.ID, run.Data.Status))
	}
	logrus.WithFields(logrus.Fields{"actor": actorID, "run": run.Data.ID, "took": time.Since(start)}).Info("🕷️ Actor run finished")

	itemsURL := fmt.Sprintf("%s/v2/datasets/%s/items?format=json&clean=true", c.baseURL, url.PathEscape(run.Data.DefaultDatasetID))
	var items []Item
	if err := c.do(ctx, http.MethodGet, itemsURL, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func finished(status string) bool {
	switch status {
	case "SUCCEEDED", "FAILED", "ABORTED", "TIMED-OUT":
		return true
	}
	return false
}

func (c *Client) do(ctx context.Context, method, u string, body []byte, out any) error {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return apperr.Upstream("actor platform unreachable", 0, err)
	}
	defer func(b io.ReadCloser) {
		_ = b.Close()
	}(resp.Body)
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.Upstream("read actor platform response", resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperr.Upstream("actor platform error", resp.StatusCode, fmt.Errorf("%s %s: %s", method, u, truncate(string(data), 300)))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperr.Upstream("decode actor platform response", resp.StatusCode, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
