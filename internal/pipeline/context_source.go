package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"pulse-ai/internal/selection"
	"pulse-ai/internal/storage"
)

// ContextSource yields the currently selected event record.
type ContextSource interface {
	Name() string
	Fetch(ctx context.Context) (*selection.Record, error)
}

// HTTPContextSource reads the context through the running API server.
type HTTPContextSource struct {
	baseURL string
	client  *http.Client
}

func NewHTTPContextSource(baseURL string, client *http.Client) *HTTPContextSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPContextSource{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (s *HTTPContextSource) Name() string { return "api" }

func (s *HTTPContextSource) Fetch(ctx context.Context) (*selection.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/context", nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func(b io.ReadCloser) {
		_ = b.Close()
	}(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("context endpoint returned %d", resp.StatusCode)
	}
	var body struct {
		Success bool             `json:"success"`
		Data    selection.Record `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode context response: %w", err)
	}
	if !body.Success {
		return nil, fmt.Errorf("context endpoint reported failure")
	}
	return &body.Data, nil
}

// StoreContextSource reads the persisted record directly, bypassing the API.
type StoreContextSource struct {
	kv storage.Store
}

func NewStoreContextSource(kv storage.Store) *StoreContextSource {
	return &StoreContextSource{kv: kv}
}

func (s *StoreContextSource) Name() string { return "store" }

func (s *StoreContextSource) Fetch(ctx context.Context) (*selection.Record, error) {
	var rec selection.Record
	found, err := storage.LoadJSON(ctx, s.kv, storage.KeyUserContext, &rec)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, storage.ErrNotFound
	}
	return &rec, nil
}

// FetchContext tries sources in order and returns the first record found.
// Total failure yields nil, never an error.
func FetchContext(ctx context.Context, sources ...ContextSource) *selection.Record {
	for _, src := range sources {
		rec, err := src.Fetch(ctx)
		if err != nil {
			logrus.WithError(err).WithField("source", src.Name()).Warn("⚠️ Context source unavailable")
			continue
		}
		logrus.WithField("source", src.Name()).Debug("Context loaded")
		return rec
	}
	return nil
}
